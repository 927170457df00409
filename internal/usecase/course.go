package usecase

import (
	"context"
	"errors"
	"fmt"
	"io"
	"strings"

	"github.com/rs/zerolog"
	"go.mongodb.org/mongo-driver/v2/bson"
	"go.mongodb.org/mongo-driver/v2/mongo"

	"github.com/advancelms/lms-api/internal/media"
	"github.com/advancelms/lms-api/internal/model"
	"github.com/advancelms/lms-api/internal/repository"
)

// MaxVideoSize is the upload ceiling for lecture videos.
const MaxVideoSize = 100 << 20 // 100 MB

// UploadFile carries an uploaded file through a usecase without buffering it.
type UploadFile struct {
	Reader      io.Reader
	Filename    string
	ContentType string
	Size        int64
}

// CourseUsecase defines the interface for course-related use cases.
type CourseUsecase interface {
	ListCourses(ctx context.Context) ([]*model.Course, error)

	// GetCourseDetails returns the course including lectures and increments
	// its view counter by exactly 1 on every call.
	GetCourseDetails(ctx context.Context, id string) (*model.Course, error)

	CreateCourse(ctx context.Context, params CreateCourseParams) (*model.Course, error)
	AddLecture(ctx context.Context, courseID string, params AddLectureParams) (*model.Lecture, *model.Course, error)
	DeleteCourse(ctx context.Context, id string) error
	DeleteLecture(ctx context.Context, courseID, lectureID string) (*model.Course, error)
}

// CreateCourseParams defines the parameters for creating a course.
type CreateCourseParams struct {
	Title       string
	Description string
	Category    string
	CreatedBy   string
	Price       int64
	Poster      *UploadFile
}

// AddLectureParams defines the parameters for appending a lecture to a course.
type AddLectureParams struct {
	Title       string
	Description string
	Duration    float64
	Video       *UploadFile
}

var (
	ErrInvalidID       = errors.New("invalid id format")
	ErrCourseNotFound  = errors.New("course not found")
	ErrLectureNotFound = errors.New("lecture not found in course")
	ErrFileRequired    = errors.New("file is required")
	ErrNotVideoFile    = errors.New("only video files are allowed")
	ErrFileTooLarge    = errors.New("file size must be less than 100MB")
	ErrUploadFailed    = errors.New("failed to process upload")
)

const (
	posterFolder  = "course_posters"
	lectureFolder = "lectures"
)

type courseUsecase struct {
	courseRepo repository.CourseRepository
	mediaHost  media.Host
	logger     *zerolog.Logger
}

func NewCourseUsecase(
	courseRepo repository.CourseRepository,
	mediaHost media.Host,
	logger *zerolog.Logger,
) CourseUsecase {
	return &courseUsecase{
		courseRepo: courseRepo,
		mediaHost:  mediaHost,
		logger:     logger,
	}
}

func (u *courseUsecase) ListCourses(ctx context.Context) ([]*model.Course, error) {
	return u.courseRepo.ListCourses(ctx)
}

func (u *courseUsecase) GetCourseDetails(ctx context.Context, id string) (*model.Course, error) {
	if _, err := bson.ObjectIDFromHex(id); err != nil {
		return nil, ErrInvalidID
	}

	course, err := u.courseRepo.GetCourseAndIncrementViews(ctx, id)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, ErrCourseNotFound
		}

		return nil, err
	}

	return course, nil
}

func (u *courseUsecase) CreateCourse(ctx context.Context, params CreateCourseParams) (*model.Course, error) {
	if params.Poster == nil {
		return nil, ErrFileRequired
	}

	poster, err := u.mediaHost.Upload(ctx, params.Poster.Reader, media.UploadParams{
		Folder:      posterFolder,
		Filename:    params.Poster.Filename,
		ContentType: params.Poster.ContentType,
		Size:        params.Poster.Size,
	})
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrUploadFailed, err)
	}

	return u.courseRepo.CreateCourse(ctx, &model.Course{
		Title:       strings.TrimSpace(params.Title),
		Description: strings.TrimSpace(params.Description),
		Category:    params.Category,
		CreatedBy:   params.CreatedBy,
		Price:       params.Price,
		Poster:      *poster,
	})
}

func (u *courseUsecase) AddLecture(
	ctx context.Context,
	courseID string,
	params AddLectureParams,
) (*model.Lecture, *model.Course, error) {
	if _, err := bson.ObjectIDFromHex(courseID); err != nil {
		return nil, nil, ErrInvalidID
	}

	// The course must exist before anything is uploaded; an upstream failure
	// later must leave the record untouched either way.
	if _, err := u.courseRepo.GetCourse(ctx, courseID); err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, nil, ErrCourseNotFound
		}

		return nil, nil, err
	}

	if params.Video == nil {
		return nil, nil, ErrFileRequired
	}
	if !strings.HasPrefix(params.Video.ContentType, "video/") {
		return nil, nil, ErrNotVideoFile
	}
	if params.Video.Size > MaxVideoSize {
		return nil, nil, ErrFileTooLarge
	}

	video, err := u.mediaHost.Upload(ctx, params.Video.Reader, media.UploadParams{
		Folder:      lectureFolder,
		Filename:    params.Video.Filename,
		ContentType: params.Video.ContentType,
		Size:        params.Video.Size,
		Renditions:  []media.Rendition{{Width: 640, Height: 360}},
	})
	if err != nil {
		return nil, nil, fmt.Errorf("%w: %v", ErrUploadFailed, err)
	}

	lecture := model.Lecture{
		ID:          bson.NewObjectID(),
		Title:       strings.TrimSpace(params.Title),
		Description: strings.TrimSpace(params.Description),
		Video:       *video,
		Duration:    params.Duration,
	}

	course, err := u.courseRepo.AddLecture(ctx, courseID, lecture)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, nil, ErrCourseNotFound
		}

		return nil, nil, err
	}

	return course.LectureByID(lecture.ID), course, nil
}

func (u *courseUsecase) DeleteCourse(ctx context.Context, id string) error {
	if _, err := bson.ObjectIDFromHex(id); err != nil {
		return ErrInvalidID
	}

	course, err := u.courseRepo.GetCourse(ctx, id)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return ErrCourseNotFound
		}

		return err
	}

	// Remote cleanup is best-effort across the board: a media host failure
	// never blocks the database deletion.
	u.destroyAsset(ctx, course.Poster.PublicID)
	for _, lecture := range course.Lectures {
		u.destroyAsset(ctx, lecture.Video.PublicID)
	}

	if _, err := u.courseRepo.DeleteCourse(ctx, id); err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return ErrCourseNotFound
		}

		return err
	}

	return nil
}

func (u *courseUsecase) DeleteLecture(ctx context.Context, courseID, lectureID string) (*model.Course, error) {
	if _, err := bson.ObjectIDFromHex(courseID); err != nil {
		return nil, ErrInvalidID
	}
	lectureObjectID, err := bson.ObjectIDFromHex(lectureID)
	if err != nil {
		return nil, ErrInvalidID
	}

	course, err := u.courseRepo.GetCourse(ctx, courseID)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, ErrCourseNotFound
		}

		return nil, err
	}

	lecture := course.LectureByID(lectureObjectID)
	if lecture == nil {
		return nil, ErrLectureNotFound
	}

	u.destroyAsset(ctx, lecture.Video.PublicID)

	updated, err := u.courseRepo.RemoveLecture(ctx, courseID, lectureID)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, ErrLectureNotFound
		}

		return nil, err
	}

	return updated, nil
}

func (u *courseUsecase) destroyAsset(ctx context.Context, publicID string) {
	if publicID == "" {
		return
	}

	if err := u.mediaHost.Destroy(ctx, publicID); err != nil {
		u.logger.Error().Err(err).Str("public_id", publicID).Msg("failed to delete media asset")
	}
}
