package payload

type CreateOrderRequest struct {
	CourseID      string `json:"courseId"      validate:"required"`
	Amount        int64  `json:"amount"        validate:"required,gt=0"`
	PaymentMethod string `json:"paymentMethod" validate:"required"`
}
