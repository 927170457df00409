package repository

import (
	"context"
	"errors"
	"time"

	"github.com/rs/zerolog"
	"go.mongodb.org/mongo-driver/v2/bson"
	"go.mongodb.org/mongo-driver/v2/mongo"
	"go.mongodb.org/mongo-driver/v2/mongo/options"

	"github.com/advancelms/lms-api/internal/model"
)

// ErrAlreadyEnrolled is returned by RecordPurchase when the user already holds
// an enrollment entry for the course; the whole transaction is rolled back.
var ErrAlreadyEnrolled = errors.New("user is already enrolled in this course")

// PaymentRepository defines the interface for payment-related database operations.
type PaymentRepository interface {
	// RecordPurchase writes the payment record and appends the enrollment
	// entry to the user inside one session transaction, so a crash can never
	// leave a completed payment without its enrollment.
	RecordPurchase(ctx context.Context, payment *model.Payment, enrollment model.Enrollment) (*model.Payment, error)
}

const paymentCollection = "payments"

type paymentMongoRepository struct {
	client   *mongo.Client
	db       *mongo.Database
	userRepo UserRepository
}

func NewPaymentMongoRepository(
	ctx context.Context,
	logger *zerolog.Logger,
	client *mongo.Client,
	db *mongo.Database,
	userRepo UserRepository,
) PaymentRepository {
	collection := db.Collection(paymentCollection)

	indexes := []mongo.IndexModel{
		{
			Keys:    bson.D{{Key: "transaction_id", Value: 1}},
			Options: options.Index().SetUnique(true),
		},
		{
			Keys: bson.D{{Key: "user_id", Value: 1}},
		},
	}

	_, err := collection.Indexes().CreateMany(ctx, indexes)
	if err != nil {
		logger.Fatal().Err(err).Msg("failed to create payment indexes")
	}

	return &paymentMongoRepository{client: client, db: db, userRepo: userRepo}
}

func (r *paymentMongoRepository) RecordPurchase(
	ctx context.Context,
	payment *model.Payment,
	enrollment model.Enrollment,
) (*model.Payment, error) {
	payment.CreatedAt = time.Now()

	session, err := r.client.StartSession()
	if err != nil {
		return nil, err
	}
	defer session.EndSession(ctx)

	_, err = session.WithTransaction(ctx, func(ctx context.Context) (any, error) {
		result, err := r.db.Collection(paymentCollection).InsertOne(ctx, payment)
		if err != nil {
			return nil, err
		}

		if objectID, ok := result.InsertedID.(bson.ObjectID); ok {
			payment.ID = objectID
		} else {
			return nil, errors.New("failed to convert inserted ID to ObjectID")
		}

		added, err := r.userRepo.AddEnrollment(ctx, payment.UserID.Hex(), enrollment)
		if err != nil {
			return nil, err
		}

		// A lost race with a concurrent purchase aborts the transaction and
		// rolls back the payment insert.
		if !added {
			return nil, ErrAlreadyEnrolled
		}

		return nil, nil
	})
	if err != nil {
		return nil, err
	}

	return payment, nil
}
