package usecase

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
	"go.mongodb.org/mongo-driver/v2/bson"
	"go.mongodb.org/mongo-driver/v2/mongo"

	"github.com/advancelms/lms-api/internal/model"
	"github.com/advancelms/lms-api/internal/repository"
)

// PaymentUsecase defines the interface for purchase use cases.
type PaymentUsecase interface {
	// Purchase records a stub payment and enrolls the user. When the user is
	// already enrolled it reports success without writing anything.
	Purchase(ctx context.Context, params PurchaseParams) (*model.Payment, bool, error)
}

// PurchaseParams defines the parameters for purchasing a course.
type PurchaseParams struct {
	CourseID      string
	UserID        string
	Amount        int64
	PaymentMethod string
}

type paymentUsecase struct {
	paymentRepo repository.PaymentRepository
	courseRepo  repository.CourseRepository
	userRepo    repository.UserRepository
}

func NewPaymentUsecase(
	paymentRepo repository.PaymentRepository,
	courseRepo repository.CourseRepository,
	userRepo repository.UserRepository,
) PaymentUsecase {
	return &paymentUsecase{
		paymentRepo: paymentRepo,
		courseRepo:  courseRepo,
		userRepo:    userRepo,
	}
}

func (u *paymentUsecase) Purchase(
	ctx context.Context,
	params PurchaseParams,
) (*model.Payment, bool, error) {
	courseID, err := bson.ObjectIDFromHex(params.CourseID)
	if err != nil {
		return nil, false, ErrInvalidID
	}

	if _, err := u.courseRepo.GetCourse(ctx, params.CourseID); err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, false, ErrCourseNotFound
		}

		return nil, false, err
	}

	user, err := u.userRepo.GetUser(ctx, params.UserID)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, false, ErrUserNotFound
		}

		return nil, false, err
	}

	if user.EnrolledIn(courseID) {
		return nil, true, nil
	}

	payment := &model.Payment{
		CourseID:      courseID,
		UserID:        user.ID,
		Amount:        params.Amount,
		Currency:      "INR",
		PaymentMethod: params.PaymentMethod,
		Status:        model.PaymentCompleted,
		TransactionID: "dummy_" + uuid.NewString(),
	}

	enrollment := model.Enrollment{
		CourseID:   courseID,
		EnrolledAt: time.Now(),
	}

	payment, err = u.paymentRepo.RecordPurchase(ctx, payment, enrollment)
	if err != nil {
		// A concurrent purchase won the race; treat it like the short-circuit above.
		if errors.Is(err, repository.ErrAlreadyEnrolled) {
			return nil, true, nil
		}

		return nil, false, err
	}

	return payment, false, nil
}
