package usecase

import (
	"context"
	"errors"
	"io"
	"time"

	"go.mongodb.org/mongo-driver/v2/bson"
	"go.mongodb.org/mongo-driver/v2/mongo"

	"github.com/advancelms/lms-api/internal/media"
	"github.com/advancelms/lms-api/internal/model"
	"github.com/advancelms/lms-api/internal/repository"
)

// In-memory repository fakes mirroring the mongo implementations closely
// enough for usecase tests: not-found surfaces as mongo.ErrNoDocuments and
// duplicate emails as a code-11000 write exception.

type fakeCourseRepo struct {
	courses map[string]*model.Course
}

func newFakeCourseRepo() *fakeCourseRepo {
	return &fakeCourseRepo{courses: make(map[string]*model.Course)}
}

func cloneCourse(c *model.Course) *model.Course {
	clone := *c
	clone.Lectures = append([]model.Lecture(nil), c.Lectures...)
	return &clone
}

func (f *fakeCourseRepo) CreateCourse(_ context.Context, course *model.Course) (*model.Course, error) {
	course.ID = bson.NewObjectID()
	if course.Lectures == nil {
		course.Lectures = []model.Lecture{}
	}
	course.NumOfVideos = len(course.Lectures)
	course.CreatedAt = time.Now()
	course.UpdatedAt = course.CreatedAt

	f.courses[course.ID.Hex()] = cloneCourse(course)
	return course, nil
}

func (f *fakeCourseRepo) GetCourse(_ context.Context, id string) (*model.Course, error) {
	course, ok := f.courses[id]
	if !ok {
		return nil, mongo.ErrNoDocuments
	}
	return cloneCourse(course), nil
}

func (f *fakeCourseRepo) GetCourseAndIncrementViews(_ context.Context, id string) (*model.Course, error) {
	course, ok := f.courses[id]
	if !ok {
		return nil, mongo.ErrNoDocuments
	}
	course.Views++
	return cloneCourse(course), nil
}

func (f *fakeCourseRepo) ListCourses(_ context.Context) ([]*model.Course, error) {
	var out []*model.Course
	for _, course := range f.courses {
		clone := cloneCourse(course)
		clone.Lectures = nil
		out = append(out, clone)
	}
	return out, nil
}

func (f *fakeCourseRepo) AddLecture(_ context.Context, courseID string, lecture model.Lecture) (*model.Course, error) {
	course, ok := f.courses[courseID]
	if !ok {
		return nil, mongo.ErrNoDocuments
	}
	if lecture.ID.IsZero() {
		lecture.ID = bson.NewObjectID()
	}
	lecture.CreatedAt = time.Now()
	course.Lectures = append(course.Lectures, lecture)
	course.NumOfVideos = len(course.Lectures)
	course.UpdatedAt = time.Now()
	return cloneCourse(course), nil
}

func (f *fakeCourseRepo) RemoveLecture(_ context.Context, courseID, lectureID string) (*model.Course, error) {
	course, ok := f.courses[courseID]
	if !ok {
		return nil, mongo.ErrNoDocuments
	}
	for i, lecture := range course.Lectures {
		if lecture.ID.Hex() == lectureID {
			course.Lectures = append(course.Lectures[:i], course.Lectures[i+1:]...)
			course.NumOfVideos = len(course.Lectures)
			course.UpdatedAt = time.Now()
			return cloneCourse(course), nil
		}
	}
	return nil, mongo.ErrNoDocuments
}

func (f *fakeCourseRepo) DeleteCourse(_ context.Context, id string) (*model.Course, error) {
	course, ok := f.courses[id]
	if !ok {
		return nil, mongo.ErrNoDocuments
	}
	delete(f.courses, id)
	return course, nil
}

type fakeMediaHost struct {
	uploads    []media.UploadParams
	destroyed  []string
	uploadErr  error
	destroyErr error
}

func (f *fakeMediaHost) Upload(_ context.Context, r io.Reader, params media.UploadParams) (*model.MediaAsset, error) {
	if f.uploadErr != nil {
		return nil, f.uploadErr
	}
	if r != nil {
		_, _ = io.Copy(io.Discard, r)
	}
	f.uploads = append(f.uploads, params)

	publicID := params.Folder + "/" + params.Filename
	return &model.MediaAsset{
		PublicID: publicID,
		URL:      "https://media.test/" + publicID,
	}, nil
}

func (f *fakeMediaHost) Destroy(_ context.Context, publicID string) error {
	if f.destroyErr != nil {
		return f.destroyErr
	}
	f.destroyed = append(f.destroyed, publicID)
	return nil
}

var errDuplicateKey = mongo.WriteException{
	WriteErrors: []mongo.WriteError{{Code: 11000}},
}

type fakeUserRepo struct {
	users map[string]*model.User
}

func newFakeUserRepo() *fakeUserRepo {
	return &fakeUserRepo{users: make(map[string]*model.User)}
}

func cloneUser(u *model.User) *model.User {
	clone := *u
	clone.EnrolledCourses = append([]model.Enrollment(nil), u.EnrolledCourses...)
	return &clone
}

func (f *fakeUserRepo) CreateUser(_ context.Context, user *model.User) (*model.User, error) {
	for _, existing := range f.users {
		if existing.Email == user.Email {
			return nil, errDuplicateKey
		}
	}
	user.ID = bson.NewObjectID()
	if user.Role == "" {
		user.Role = model.RoleUser
	}
	if user.EnrolledCourses == nil {
		user.EnrolledCourses = []model.Enrollment{}
	}
	user.CreatedAt = time.Now()
	user.UpdatedAt = user.CreatedAt

	f.users[user.ID.Hex()] = cloneUser(user)
	return user, nil
}

func (f *fakeUserRepo) GetUser(_ context.Context, id string) (*model.User, error) {
	user, ok := f.users[id]
	if !ok {
		return nil, mongo.ErrNoDocuments
	}
	return cloneUser(user), nil
}

func (f *fakeUserRepo) GetUserByEmail(_ context.Context, email string) (*model.User, error) {
	for _, user := range f.users {
		if user.Email == email {
			return cloneUser(user), nil
		}
	}
	return nil, mongo.ErrNoDocuments
}

func (f *fakeUserRepo) UpdateUser(_ context.Context, id string, params repository.UpdateUserParams) (*model.User, error) {
	user, ok := f.users[id]
	if !ok {
		return nil, mongo.ErrNoDocuments
	}
	if params.Name != nil {
		user.Name = *params.Name
	}
	if params.Email != nil {
		user.Email = *params.Email
	}
	if params.PasswordHash != nil {
		user.PasswordHash = *params.PasswordHash
	}
	if params.Avatar != nil {
		user.Avatar = *params.Avatar
	}
	user.UpdatedAt = time.Now()
	return cloneUser(user), nil
}

func (f *fakeUserRepo) DeleteUser(_ context.Context, id string) (*model.User, error) {
	user, ok := f.users[id]
	if !ok {
		return nil, mongo.ErrNoDocuments
	}
	delete(f.users, id)
	return user, nil
}

func (f *fakeUserRepo) ListUsers(_ context.Context) ([]*model.User, error) {
	var out []*model.User
	for _, user := range f.users {
		out = append(out, cloneUser(user))
	}
	return out, nil
}

func (f *fakeUserRepo) UpdateRole(_ context.Context, id string, role model.Role) (*model.User, error) {
	user, ok := f.users[id]
	if !ok {
		return nil, mongo.ErrNoDocuments
	}
	user.Role = role
	user.UpdatedAt = time.Now()
	return cloneUser(user), nil
}

func (f *fakeUserRepo) AddEnrollment(_ context.Context, id string, enrollment model.Enrollment) (bool, error) {
	user, ok := f.users[id]
	if !ok {
		return false, mongo.ErrNoDocuments
	}
	if user.EnrolledIn(enrollment.CourseID) {
		return false, nil
	}
	user.EnrolledCourses = append(user.EnrolledCourses, enrollment)
	user.UpdatedAt = time.Now()
	return true, nil
}

func (f *fakeUserRepo) SetResetToken(_ context.Context, id, tokenHash string, expiresAt time.Time) error {
	user, ok := f.users[id]
	if !ok {
		return mongo.ErrNoDocuments
	}
	user.ResetPasswordToken = tokenHash
	user.ResetPasswordExpiresAt = expiresAt
	return nil
}

func (f *fakeUserRepo) GetUserByResetToken(_ context.Context, tokenHash string) (*model.User, error) {
	for _, user := range f.users {
		if user.ResetPasswordToken == tokenHash && user.ResetPasswordExpiresAt.After(time.Now()) {
			return cloneUser(user), nil
		}
	}
	return nil, mongo.ErrNoDocuments
}

func (f *fakeUserRepo) ClearResetToken(_ context.Context, id string) error {
	user, ok := f.users[id]
	if !ok {
		return mongo.ErrNoDocuments
	}
	user.ResetPasswordToken = ""
	user.ResetPasswordExpiresAt = time.Time{}
	return nil
}

// fakePaymentRepo mimics RecordPurchase's all-or-nothing behavior using the
// fake user repo as its enrollment target.
type fakePaymentRepo struct {
	userRepo *fakeUserRepo
	payments []*model.Payment
}

func (f *fakePaymentRepo) RecordPurchase(
	ctx context.Context,
	payment *model.Payment,
	enrollment model.Enrollment,
) (*model.Payment, error) {
	added, err := f.userRepo.AddEnrollment(ctx, payment.UserID.Hex(), enrollment)
	if err != nil {
		return nil, err
	}
	if !added {
		return nil, repository.ErrAlreadyEnrolled
	}

	payment.ID = bson.NewObjectID()
	payment.CreatedAt = time.Now()
	f.payments = append(f.payments, payment)
	return payment, nil
}

type fakeMailer struct {
	to      []string
	subject string
	body    string
	err     error
}

func (f *fakeMailer) SendHTML(to []string, subject, htmlBody string) error {
	if f.err != nil {
		return f.err
	}
	f.to = to
	f.subject = subject
	f.body = htmlBody
	return nil
}

type fakeCompleter struct {
	reply  string
	err    error
	called int
}

func (f *fakeCompleter) Complete(_ context.Context, _ string) (string, error) {
	f.called++
	if f.err != nil {
		return "", f.err
	}
	return f.reply, nil
}

var errUpstream = errors.New("upstream failure")
