package handler

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/rs/zerolog"

	"github.com/advancelms/lms-api/internal/httputil"
	"github.com/advancelms/lms-api/internal/middleware"
	"github.com/advancelms/lms-api/internal/payload"
	"github.com/advancelms/lms-api/internal/usecase"
)

type PaymentHandler struct {
	paymentUsecase usecase.PaymentUsecase
	validator      *payload.Validator
	logger         *zerolog.Logger
}

func NewPaymentHandler(
	paymentUsecase usecase.PaymentUsecase,
	validator *payload.Validator,
	logger *zerolog.Logger,
) *PaymentHandler {
	return &PaymentHandler{
		paymentUsecase: paymentUsecase,
		validator:      validator,
		logger:         logger,
	}
}

// CreateOrder handles POST /api/payment/create-order.
func (h *PaymentHandler) CreateOrder(w http.ResponseWriter, r *http.Request) {
	user, ok := middleware.UserFromContext(r.Context())
	if !ok {
		httputil.WriteError(w, http.StatusUnauthorized, "please login to access this resource")
		return
	}

	var req payload.CreateOrderRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		httputil.WriteError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	if err := h.validator.Validate(req); err != nil {
		httputil.WriteError(w, http.StatusBadRequest, err.Error())
		return
	}

	payment, alreadyEnrolled, err := h.paymentUsecase.Purchase(r.Context(), usecase.PurchaseParams{
		CourseID:      req.CourseID,
		UserID:        user.ID.Hex(),
		Amount:        req.Amount,
		PaymentMethod: req.PaymentMethod,
	})
	if err != nil {
		switch {
		case errors.Is(err, usecase.ErrInvalidID):
			httputil.WriteError(w, http.StatusBadRequest, "invalid id format")
		case errors.Is(err, usecase.ErrCourseNotFound):
			httputil.WriteError(w, http.StatusNotFound, "course not found")
		case errors.Is(err, usecase.ErrUserNotFound):
			httputil.WriteError(w, http.StatusNotFound, "user not found")
		default:
			h.logger.Error().Err(err).Msg("failed to process payment")
			httputil.WriteError(w, http.StatusInternalServerError, "something went wrong")
		}
		return
	}

	if alreadyEnrolled {
		httputil.WriteJSON(w, http.StatusOK, map[string]any{
			"success": true,
			"message": "User is already enrolled in this course",
		})
		return
	}

	httputil.WriteJSON(w, http.StatusOK, map[string]any{
		"success":       true,
		"transactionId": payment.TransactionID,
		"paymentId":     payment.ID,
		"message":       "Payment successful",
	})
}
