package model

import (
	"time"

	"go.mongodb.org/mongo-driver/v2/bson"
)

// PaymentStatus is the lifecycle state of a purchase transaction.
type PaymentStatus string

const (
	PaymentPending   PaymentStatus = "pending"
	PaymentCompleted PaymentStatus = "completed"
	PaymentFailed    PaymentStatus = "failed"
)

// Payment records a course purchase. Payments are immutable once written.
type Payment struct {
	ID            bson.ObjectID `bson:"_id,omitempty"  json:"_id"`
	CourseID      bson.ObjectID `bson:"course_id"      json:"courseId"`
	UserID        bson.ObjectID `bson:"user_id"        json:"userId"`
	Amount        int64         `bson:"amount"         json:"amount"`
	Currency      string        `bson:"currency"       json:"currency"`
	PaymentMethod string        `bson:"payment_method" json:"paymentMethod"`
	Status        PaymentStatus `bson:"status"         json:"status"`
	TransactionID string        `bson:"transaction_id" json:"transactionId"`
	CreatedAt     time.Time     `bson:"created_at"     json:"createdAt"`
}
