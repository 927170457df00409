package usecase

import (
	"context"
	"strings"
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/advancelms/lms-api/internal/model"
)

func testFile(name, contentType string, size int64) *UploadFile {
	return &UploadFile{
		Reader:      strings.NewReader("file data"),
		Filename:    name,
		ContentType: contentType,
		Size:        size,
	}
}

func newTestCourseUsecase() (*fakeCourseRepo, *fakeMediaHost, CourseUsecase) {
	courseRepo := newFakeCourseRepo()
	mediaHost := &fakeMediaHost{}
	logger := zerolog.Nop()

	return courseRepo, mediaHost, NewCourseUsecase(courseRepo, mediaHost, &logger)
}

func createTestCourse(t *testing.T, u CourseUsecase) *model.Course {
	t.Helper()

	course, err := u.CreateCourse(context.Background(), CreateCourseParams{
		Title:       "Intro to Testing",
		Description: "A course about writing tests that actually catch bugs.",
		Category:    "QA",
		CreatedBy:   "Jane",
		Poster:      testFile("poster.png", "image/png", 1<<20),
	})
	require.NoError(t, err)

	return course
}

func TestCreateCourse(t *testing.T) {
	_, mediaHost, u := newTestCourseUsecase()

	course := createTestCourse(t, u)

	assert.False(t, course.ID.IsZero())
	assert.Equal(t, "Intro to Testing", course.Title)
	assert.Equal(t, 0, course.NumOfVideos)
	assert.Empty(t, course.Lectures)
	assert.Equal(t, "course_posters/poster.png", course.Poster.PublicID)
	require.Len(t, mediaHost.uploads, 1)
	assert.Equal(t, "course_posters", mediaHost.uploads[0].Folder)
}

func TestCreateCourseWithoutPoster(t *testing.T) {
	_, mediaHost, u := newTestCourseUsecase()

	_, err := u.CreateCourse(context.Background(), CreateCourseParams{
		Title:       "Intro to Testing",
		Description: "A course about writing tests that actually catch bugs.",
		Category:    "QA",
		CreatedBy:   "Jane",
	})

	assert.ErrorIs(t, err, ErrFileRequired)
	assert.Empty(t, mediaHost.uploads)
}

func TestCreateCourseUploadFailure(t *testing.T) {
	courseRepo, mediaHost, u := newTestCourseUsecase()
	mediaHost.uploadErr = errUpstream

	_, err := u.CreateCourse(context.Background(), CreateCourseParams{
		Title:       "Intro to Testing",
		Description: "A course about writing tests that actually catch bugs.",
		Category:    "QA",
		CreatedBy:   "Jane",
		Poster:      testFile("poster.png", "image/png", 1<<20),
	})

	assert.ErrorIs(t, err, ErrUploadFailed)
	assert.Empty(t, courseRepo.courses)
}

func TestGetCourseDetailsIncrementsViews(t *testing.T) {
	_, _, u := newTestCourseUsecase()
	course := createTestCourse(t, u)

	for want := int64(1); want <= 3; want++ {
		got, err := u.GetCourseDetails(context.Background(), course.ID.Hex())
		require.NoError(t, err)
		assert.Equal(t, want, got.Views)
	}
}

func TestGetCourseDetailsNotFound(t *testing.T) {
	_, _, u := newTestCourseUsecase()

	_, err := u.GetCourseDetails(context.Background(), "64b0c1a2e4b0f1a2b3c4d5e6")

	assert.ErrorIs(t, err, ErrCourseNotFound)
}

func TestGetCourseDetailsInvalidID(t *testing.T) {
	_, _, u := newTestCourseUsecase()

	_, err := u.GetCourseDetails(context.Background(), "not-a-hex-id")

	assert.ErrorIs(t, err, ErrInvalidID)
}

func TestAddLecture(t *testing.T) {
	_, mediaHost, u := newTestCourseUsecase()
	course := createTestCourse(t, u)

	lecture, updated, err := u.AddLecture(context.Background(), course.ID.Hex(), AddLectureParams{
		Title:       "Getting Started",
		Description: "Setting up the test harness from an empty project.",
		Duration:    420,
		Video:       testFile("lecture1.mp4", "video/mp4", 5<<20),
	})

	require.NoError(t, err)
	require.NotNil(t, lecture)
	assert.False(t, lecture.ID.IsZero())
	assert.Equal(t, "Getting Started", lecture.Title)
	assert.Equal(t, 1, updated.NumOfVideos)
	assert.Len(t, updated.Lectures, 1)

	require.Len(t, mediaHost.uploads, 2) // poster + video
	video := mediaHost.uploads[1]
	assert.Equal(t, "lectures", video.Folder)
	require.Len(t, video.Renditions, 1)
	assert.Equal(t, 640, video.Renditions[0].Width)
	assert.Equal(t, 360, video.Renditions[0].Height)
}

func TestAddLectureValidation(t *testing.T) {
	tests := []struct {
		name    string
		video   *UploadFile
		wantErr error
	}{
		{"missing file", nil, ErrFileRequired},
		{"not a video", testFile("notes.pdf", "application/pdf", 1 << 20), ErrNotVideoFile},
		{"too large", testFile("raw.mp4", "video/mp4", MaxVideoSize + 1), ErrFileTooLarge},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			courseRepo, mediaHost, u := newTestCourseUsecase()
			course := createTestCourse(t, u)

			_, _, err := u.AddLecture(context.Background(), course.ID.Hex(), AddLectureParams{
				Title:       "Getting Started",
				Description: "Setting up the test harness from an empty project.",
				Video:       tt.video,
			})

			assert.ErrorIs(t, err, tt.wantErr)

			// The course record must be untouched.
			stored := courseRepo.courses[course.ID.Hex()]
			assert.Equal(t, 0, stored.NumOfVideos)
			assert.Empty(t, stored.Lectures)
			assert.Len(t, mediaHost.uploads, 1) // only the poster
		})
	}
}

func TestAddLectureCourseNotFound(t *testing.T) {
	_, mediaHost, u := newTestCourseUsecase()

	_, _, err := u.AddLecture(context.Background(), "64b0c1a2e4b0f1a2b3c4d5e6", AddLectureParams{
		Title:       "Getting Started",
		Description: "Setting up the test harness from an empty project.",
		Video:       testFile("lecture1.mp4", "video/mp4", 5<<20),
	})

	assert.ErrorIs(t, err, ErrCourseNotFound)
	assert.Empty(t, mediaHost.uploads)
}

func TestAddLectureUploadFailureLeavesCourseUntouched(t *testing.T) {
	courseRepo, mediaHost, u := newTestCourseUsecase()
	course := createTestCourse(t, u)
	mediaHost.uploadErr = errUpstream

	_, _, err := u.AddLecture(context.Background(), course.ID.Hex(), AddLectureParams{
		Title:       "Getting Started",
		Description: "Setting up the test harness from an empty project.",
		Video:       testFile("lecture1.mp4", "video/mp4", 5<<20),
	})

	assert.ErrorIs(t, err, ErrUploadFailed)
	assert.Equal(t, 0, courseRepo.courses[course.ID.Hex()].NumOfVideos)
}

func TestDeleteLecture(t *testing.T) {
	_, mediaHost, u := newTestCourseUsecase()
	course := createTestCourse(t, u)

	lecture, _, err := u.AddLecture(context.Background(), course.ID.Hex(), AddLectureParams{
		Title:       "Getting Started",
		Description: "Setting up the test harness from an empty project.",
		Video:       testFile("lecture1.mp4", "video/mp4", 5<<20),
	})
	require.NoError(t, err)

	updated, err := u.DeleteLecture(context.Background(), course.ID.Hex(), lecture.ID.Hex())

	require.NoError(t, err)
	assert.Equal(t, 0, updated.NumOfVideos)
	assert.Empty(t, updated.Lectures)
	assert.Contains(t, mediaHost.destroyed, lecture.Video.PublicID)
}

func TestDeleteLectureDestroyFailureIgnored(t *testing.T) {
	_, mediaHost, u := newTestCourseUsecase()
	course := createTestCourse(t, u)

	lecture, _, err := u.AddLecture(context.Background(), course.ID.Hex(), AddLectureParams{
		Title:       "Getting Started",
		Description: "Setting up the test harness from an empty project.",
		Video:       testFile("lecture1.mp4", "video/mp4", 5<<20),
	})
	require.NoError(t, err)

	mediaHost.destroyErr = errUpstream

	updated, err := u.DeleteLecture(context.Background(), course.ID.Hex(), lecture.ID.Hex())

	require.NoError(t, err)
	assert.Equal(t, 0, updated.NumOfVideos)
}

func TestDeleteLectureNotFound(t *testing.T) {
	_, _, u := newTestCourseUsecase()
	course := createTestCourse(t, u)

	_, err := u.DeleteLecture(context.Background(), course.ID.Hex(), "64b0c1a2e4b0f1a2b3c4d5e6")

	assert.ErrorIs(t, err, ErrLectureNotFound)
}

func TestDeleteCourse(t *testing.T) {
	_, mediaHost, u := newTestCourseUsecase()
	course := createTestCourse(t, u)

	lecture, _, err := u.AddLecture(context.Background(), course.ID.Hex(), AddLectureParams{
		Title:       "Getting Started",
		Description: "Setting up the test harness from an empty project.",
		Video:       testFile("lecture1.mp4", "video/mp4", 5<<20),
	})
	require.NoError(t, err)

	require.NoError(t, u.DeleteCourse(context.Background(), course.ID.Hex()))

	assert.Contains(t, mediaHost.destroyed, course.Poster.PublicID)
	assert.Contains(t, mediaHost.destroyed, lecture.Video.PublicID)

	_, err = u.GetCourseDetails(context.Background(), course.ID.Hex())
	assert.ErrorIs(t, err, ErrCourseNotFound)
}

func TestDeleteCourseMediaFailureStillDeletes(t *testing.T) {
	_, mediaHost, u := newTestCourseUsecase()
	course := createTestCourse(t, u)
	mediaHost.destroyErr = errUpstream

	require.NoError(t, u.DeleteCourse(context.Background(), course.ID.Hex()))

	_, err := u.GetCourseDetails(context.Background(), course.ID.Hex())
	assert.ErrorIs(t, err, ErrCourseNotFound)
}

func TestListCoursesOmitsLectures(t *testing.T) {
	_, _, u := newTestCourseUsecase()
	course := createTestCourse(t, u)

	_, _, err := u.AddLecture(context.Background(), course.ID.Hex(), AddLectureParams{
		Title:       "Getting Started",
		Description: "Setting up the test harness from an empty project.",
		Video:       testFile("lecture1.mp4", "video/mp4", 5<<20),
	})
	require.NoError(t, err)

	courses, err := u.ListCourses(context.Background())

	require.NoError(t, err)
	require.Len(t, courses, 1)
	assert.Empty(t, courses[0].Lectures)
	assert.Equal(t, 1, courses[0].NumOfVideos)
}
