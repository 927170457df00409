package handler

import (
	"encoding/json"
	"errors"
	"mime/multipart"
	"net/http"
	"strconv"
	"strings"

	"github.com/go-chi/chi/v5"
	"github.com/rs/zerolog"

	"github.com/advancelms/lms-api/internal/httputil"
	"github.com/advancelms/lms-api/internal/model"
	"github.com/advancelms/lms-api/internal/payload"
	"github.com/advancelms/lms-api/internal/usecase"
)

// multipartMemory caps the in-memory portion of a multipart parse; larger
// files spill to disk.
const multipartMemory = 32 << 20

type CourseHandler struct {
	courseUsecase usecase.CourseUsecase
	validator     *payload.Validator
	logger        *zerolog.Logger
}

func NewCourseHandler(
	courseUsecase usecase.CourseUsecase,
	validator *payload.Validator,
	logger *zerolog.Logger,
) *CourseHandler {
	return &CourseHandler{
		courseUsecase: courseUsecase,
		validator:     validator,
		logger:        logger,
	}
}

// List handles GET /api/course/courses.
func (h *CourseHandler) List(w http.ResponseWriter, r *http.Request) {
	courses, err := h.courseUsecase.ListCourses(r.Context())
	if err != nil {
		h.logger.Error().Err(err).Msg("failed to list courses")
		httputil.WriteError(w, http.StatusInternalServerError, "failed to list courses")
		return
	}

	if courses == nil {
		courses = []*model.Course{}
	}

	httputil.WriteJSON(w, http.StatusOK, map[string]any{
		"success": true,
		"course":  courses,
	})
}

// Get handles GET /api/course/{id} and increments the view counter.
func (h *CourseHandler) Get(w http.ResponseWriter, r *http.Request) {
	course, err := h.courseUsecase.GetCourseDetails(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		h.writeCourseError(w, err, "failed to get course")
		return
	}

	httputil.WriteJSON(w, http.StatusOK, map[string]any{
		"success": true,
		"course":  course,
	})
}

// Create handles POST /api/course/createcourse (multipart).
func (h *CourseHandler) Create(w http.ResponseWriter, r *http.Request) {
	if err := r.ParseMultipartForm(multipartMemory); err != nil {
		httputil.WriteError(w, http.StatusBadRequest, "invalid multipart form")
		return
	}

	price, _ := strconv.ParseInt(r.FormValue("price"), 10, 64)
	req := payload.CreateCourseRequest{
		Title:       r.FormValue("title"),
		Description: r.FormValue("description"),
		Category:    r.FormValue("category"),
		CreatedBy:   r.FormValue("createdBy"),
		Price:       price,
	}
	if err := h.validator.Validate(req); err != nil {
		httputil.WriteError(w, http.StatusBadRequest, err.Error())
		return
	}

	poster, cleanup, err := formFile(r, "file")
	if err != nil {
		httputil.WriteError(w, http.StatusBadRequest, "course poster is required")
		return
	}
	defer cleanup()

	course, err := h.courseUsecase.CreateCourse(r.Context(), usecase.CreateCourseParams{
		Title:       req.Title,
		Description: req.Description,
		Category:    req.Category,
		CreatedBy:   req.CreatedBy,
		Price:       req.Price,
		Poster:      poster,
	})
	if err != nil {
		h.writeCourseError(w, err, "failed to create course")
		return
	}

	httputil.WriteJSON(w, http.StatusCreated, map[string]any{
		"success": true,
		"message": "Course created successfully",
		"course":  course,
	})
}

// AddLecture handles POST /api/course/{id} (multipart).
func (h *CourseHandler) AddLecture(w http.ResponseWriter, r *http.Request) {
	if err := r.ParseMultipartForm(multipartMemory); err != nil {
		httputil.WriteError(w, http.StatusBadRequest, "invalid multipart form")
		return
	}

	duration, _ := strconv.ParseFloat(r.FormValue("duration"), 64)
	req := payload.AddLectureRequest{
		Title:       strings.TrimSpace(r.FormValue("title")),
		Description: strings.TrimSpace(r.FormValue("description")),
		Duration:    duration,
	}
	if err := h.validator.Validate(req); err != nil {
		httputil.WriteError(w, http.StatusBadRequest, err.Error())
		return
	}

	video, cleanup, err := formFile(r, "file")
	if err != nil {
		httputil.WriteError(w, http.StatusBadRequest, "lecture video file is required")
		return
	}
	defer cleanup()

	lecture, course, err := h.courseUsecase.AddLecture(r.Context(), chi.URLParam(r, "id"), usecase.AddLectureParams{
		Title:       req.Title,
		Description: req.Description,
		Duration:    req.Duration,
		Video:       video,
	})
	if err != nil {
		h.writeCourseError(w, err, "failed to add lecture")
		return
	}

	httputil.WriteJSON(w, http.StatusCreated, map[string]any{
		"success": true,
		"message": "Lecture added successfully",
		"lecture": lecture,
		"course":  course,
	})
}

// Delete handles DELETE /api/course/{id}.
func (h *CourseHandler) Delete(w http.ResponseWriter, r *http.Request) {
	if err := h.courseUsecase.DeleteCourse(r.Context(), chi.URLParam(r, "id")); err != nil {
		h.writeCourseError(w, err, "failed to delete course")
		return
	}

	httputil.WriteJSON(w, http.StatusOK, map[string]any{
		"success": true,
		"message": "Course deleted successfully",
	})
}

// DeleteLecture handles DELETE /api/course/lecture.
func (h *CourseHandler) DeleteLecture(w http.ResponseWriter, r *http.Request) {
	var req payload.DeleteLectureRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		httputil.WriteError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	if err := h.validator.Validate(req); err != nil {
		httputil.WriteError(w, http.StatusBadRequest, err.Error())
		return
	}

	course, err := h.courseUsecase.DeleteLecture(r.Context(), req.CourseID, req.LectureID)
	if err != nil {
		h.writeCourseError(w, err, "failed to delete lecture")
		return
	}

	httputil.WriteJSON(w, http.StatusOK, map[string]any{
		"success": true,
		"message": "Lecture deleted successfully",
		"course":  course,
	})
}

func (h *CourseHandler) writeCourseError(w http.ResponseWriter, err error, logMsg string) {
	switch {
	case errors.Is(err, usecase.ErrInvalidID):
		httputil.WriteError(w, http.StatusBadRequest, "invalid id format")
	case errors.Is(err, usecase.ErrCourseNotFound):
		httputil.WriteError(w, http.StatusNotFound, "course not found")
	case errors.Is(err, usecase.ErrLectureNotFound):
		httputil.WriteError(w, http.StatusNotFound, "lecture not found in course")
	case errors.Is(err, usecase.ErrFileRequired):
		httputil.WriteError(w, http.StatusBadRequest, "file is required")
	case errors.Is(err, usecase.ErrNotVideoFile):
		httputil.WriteError(w, http.StatusBadRequest, "only video files are allowed")
	case errors.Is(err, usecase.ErrFileTooLarge):
		httputil.WriteError(w, http.StatusBadRequest, "file size must be less than 100MB")
	case errors.Is(err, usecase.ErrUploadFailed):
		h.logger.Error().Err(err).Msg(logMsg)
		httputil.WriteError(w, http.StatusInternalServerError, "failed to process upload")
	default:
		h.logger.Error().Err(err).Msg(logMsg)
		httputil.WriteError(w, http.StatusInternalServerError, "something went wrong")
	}
}

// formFile opens a multipart file as an upload parameter. The returned cleanup
// must be called after the usecase finishes reading.
func formFile(r *http.Request, field string) (*usecase.UploadFile, func(), error) {
	file, header, err := r.FormFile(field)
	if err != nil {
		return nil, nil, err
	}

	return &usecase.UploadFile{
		Reader:      file,
		Filename:    header.Filename,
		ContentType: contentType(header),
		Size:        header.Size,
	}, func() { file.Close() }, nil
}

func contentType(header *multipart.FileHeader) string {
	if ct := header.Header.Get("Content-Type"); ct != "" {
		return ct
	}
	return "application/octet-stream"
}
