package payload

type CreateCourseRequest struct {
	Title       string `json:"title"       validate:"required,min=2,max=50"`
	Description string `json:"description" validate:"required,min=20"`
	Category    string `json:"category"    validate:"required"`
	CreatedBy   string `json:"createdBy"   validate:"required"`
	Price       int64  `json:"price"       validate:"omitempty,gte=0"`
}

type AddLectureRequest struct {
	Title       string  `json:"title"       validate:"required"`
	Description string  `json:"description" validate:"required"`
	Duration    float64 `json:"duration"    validate:"omitempty,gte=0"`
}

type DeleteLectureRequest struct {
	CourseID  string `json:"courseId"  validate:"required"`
	LectureID string `json:"lectureId" validate:"required"`
}
