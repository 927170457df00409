package model

import (
	"time"

	"go.mongodb.org/mongo-driver/v2/bson"
)

// Role is the closed set of user roles understood by the authorization gates.
type Role string

const (
	RoleUser  Role = "user"
	RoleAdmin Role = "admin"
)

// Valid reports whether r is one of the known roles.
func (r Role) Valid() bool {
	return r == RoleUser || r == RoleAdmin
}

// Enrollment links a user to a course they have purchased.
type Enrollment struct {
	CourseID   bson.ObjectID `bson:"course_id"   json:"courseId"`
	EnrolledAt time.Time     `bson:"enrolled_at" json:"enrolledAt"`
	Completed  bool          `bson:"completed"   json:"completed"`
}

// User represents an account in the platform. The password hash and the
// password reset fields are never serialized to clients.
type User struct {
	ID                     bson.ObjectID `bson:"_id,omitempty"                      json:"_id"`
	Name                   string        `bson:"name"                               json:"name"`
	Email                  string        `bson:"email"                              json:"email"`
	PasswordHash           string        `bson:"password_hash"                      json:"-"`
	Role                   Role          `bson:"role"                               json:"role"`
	Avatar                 MediaAsset    `bson:"avatar"                             json:"avatar"`
	EnrolledCourses        []Enrollment  `bson:"enrolled_courses"                   json:"enrolledCourses"`
	ResetPasswordToken     string        `bson:"reset_password_token,omitempty"     json:"-"`
	ResetPasswordExpiresAt time.Time     `bson:"reset_password_expires_at,omitempty" json:"-"`
	CreatedAt              time.Time     `bson:"created_at"                         json:"createdAt"`
	UpdatedAt              time.Time     `bson:"updated_at"                         json:"updatedAt"`
}

// EnrolledIn reports whether the user already has an enrollment entry for the
// given course.
func (u *User) EnrolledIn(courseID bson.ObjectID) bool {
	for _, e := range u.EnrolledCourses {
		if e.CourseID == courseID {
			return true
		}
	}
	return false
}
