package handler

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.mongodb.org/mongo-driver/v2/bson"

	"github.com/advancelms/lms-api/internal/middleware"
	"github.com/advancelms/lms-api/internal/model"
	"github.com/advancelms/lms-api/internal/payload"
	"github.com/advancelms/lms-api/internal/usecase"
)

type stubPaymentUsecase struct {
	payment         *model.Payment
	alreadyEnrolled bool
	err             error
	lastParams      usecase.PurchaseParams
}

func (s *stubPaymentUsecase) Purchase(_ context.Context, params usecase.PurchaseParams) (*model.Payment, bool, error) {
	s.lastParams = params
	return s.payment, s.alreadyEnrolled, s.err
}

func postCreateOrder(t *testing.T, stub *stubPaymentUsecase, user *model.User, body string) *httptest.ResponseRecorder {
	t.Helper()

	validator, err := payload.NewValidator()
	require.NoError(t, err)
	logger := zerolog.Nop()
	h := NewPaymentHandler(stub, validator, &logger)

	req := httptest.NewRequest(http.MethodPost, "/api/payment/create-order", strings.NewReader(body))
	if user != nil {
		req = req.WithContext(middleware.WithUser(req.Context(), user))
	}
	rec := httptest.NewRecorder()
	h.CreateOrder(rec, req)
	return rec
}

func TestCreateOrderHandler(t *testing.T) {
	user := &model.User{ID: bson.NewObjectID()}
	courseID := bson.NewObjectID()
	stub := &stubPaymentUsecase{
		payment: &model.Payment{
			ID:            bson.NewObjectID(),
			TransactionID: "dummy_2f4c0a9e",
		},
	}

	rec := postCreateOrder(t, stub, user,
		`{"courseId":"`+courseID.Hex()+`","amount":499,"paymentMethod":"card"}`)

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, user.ID.Hex(), stub.lastParams.UserID)
	assert.Equal(t, courseID.Hex(), stub.lastParams.CourseID)

	var body struct {
		Success       bool   `json:"success"`
		TransactionID string `json:"transactionId"`
		Message       string `json:"message"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	assert.True(t, body.Success)
	assert.Equal(t, "dummy_2f4c0a9e", body.TransactionID)
	assert.Equal(t, "Payment successful", body.Message)
}

func TestCreateOrderHandlerAlreadyEnrolled(t *testing.T) {
	user := &model.User{ID: bson.NewObjectID()}
	stub := &stubPaymentUsecase{alreadyEnrolled: true}

	rec := postCreateOrder(t, stub, user,
		`{"courseId":"`+bson.NewObjectID().Hex()+`","amount":499,"paymentMethod":"card"}`)

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.JSONEq(t, `{"success":true,"message":"User is already enrolled in this course"}`, rec.Body.String())
}

func TestCreateOrderHandlerWithoutSession(t *testing.T) {
	rec := postCreateOrder(t, &stubPaymentUsecase{}, nil,
		`{"courseId":"`+bson.NewObjectID().Hex()+`","amount":499,"paymentMethod":"card"}`)

	assert.Equal(t, http.StatusUnauthorized, rec.Code)
}

func TestCreateOrderHandlerValidation(t *testing.T) {
	user := &model.User{ID: bson.NewObjectID()}

	rec := postCreateOrder(t, &stubPaymentUsecase{}, user, `{"amount":0}`)

	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestCreateOrderHandlerCourseNotFound(t *testing.T) {
	user := &model.User{ID: bson.NewObjectID()}
	stub := &stubPaymentUsecase{err: usecase.ErrCourseNotFound}

	rec := postCreateOrder(t, stub, user,
		`{"courseId":"`+bson.NewObjectID().Hex()+`","amount":499,"paymentMethod":"card"}`)

	assert.Equal(t, http.StatusNotFound, rec.Code)
	assert.JSONEq(t, `{"success":false,"message":"course not found"}`, rec.Body.String())
}
