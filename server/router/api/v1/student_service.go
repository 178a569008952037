package v1

import (
	"errors"
	"net/http"
	"strconv"
	"time"

	"github.com/labstack/echo/v4"
	"github.com/lithammer/shortuuid/v4"

	"github.com/campusmind/campusmind/store"
)

const (
	listStudentsDefaultPageSize = 20
	listStudentsMaxPageSize     = 100
)

type createStudentRequest struct {
	StudentID  string `json:"student_id"`
	Name       string `json:"name"`
	Email      string `json:"email"`
	Department string `json:"department"`
	Year       int32  `json:"year"`
}

type updateStudentRequest struct {
	Name       *string `json:"name"`
	Email      *string `json:"email"`
	Department *string `json:"department"`
	Year       *int32  `json:"year"`
	Status     *string `json:"status"`
}

type studentResponse struct {
	StudentID    string  `json:"student_id"`
	Name         string  `json:"name"`
	Email        string  `json:"email"`
	Department   string  `json:"department"`
	Year         int32   `json:"year"`
	Status       string  `json:"status"`
	JoinedAt     string  `json:"joined_at"`
	LastActiveAt *string `json:"last_active_at,omitempty"`
}

type listStudentsResponse struct {
	Students []studentResponse `json:"students"`
	Count    int               `json:"count"`
}

func toStudentResponse(s *store.Student) studentResponse {
	response := studentResponse{
		StudentID:  s.StudentID,
		Name:       s.Name,
		Email:      s.Email,
		Department: s.Department,
		Year:       s.Year,
		Status:     string(s.Status),
		JoinedAt:   time.Unix(s.JoinedTs, 0).UTC().Format(time.RFC3339),
	}
	if s.LastActiveTs != nil {
		lastActive := time.Unix(*s.LastActiveTs, 0).UTC().Format(time.RFC3339)
		response.LastActiveAt = &lastActive
	}
	return response
}

// CreateStudent registers a student record.
func (s *APIV1Service) CreateStudent(c echo.Context) error {
	request := &createStudentRequest{}
	if err := c.Bind(request); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "malformed request body")
	}
	if err := validateNewStudent(request); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}

	student, err := s.store.CreateStudent(c.Request().Context(), &store.Student{
		UID:        shortuuid.New(),
		StudentID:  request.StudentID,
		Name:       request.Name,
		Email:      request.Email,
		Department: request.Department,
		Year:       request.Year,
		Status:     store.StudentStatusActive,
	})
	if err != nil {
		if field, ok := store.IsDuplicate(err); ok {
			return echo.NewHTTPError(http.StatusConflict, field+" already exists")
		}
		return echo.NewHTTPError(http.StatusInternalServerError, "failed to create student")
	}
	return c.JSON(http.StatusCreated, toStudentResponse(student))
}

func validateNewStudent(request *createStudentRequest) error {
	if err := store.ValidateStudentID(request.StudentID); err != nil {
		return err
	}
	if err := store.ValidateStudentName(request.Name); err != nil {
		return err
	}
	if err := store.ValidateEmail(request.Email); err != nil {
		return err
	}
	if err := store.ValidateDepartment(request.Department); err != nil {
		return err
	}
	return store.ValidateYear(request.Year)
}

// GetStudent returns one student by student_id.
func (s *APIV1Service) GetStudent(c echo.Context) error {
	studentID := c.Param("id")
	student, err := s.store.GetStudent(c.Request().Context(), &store.FindStudent{StudentID: &studentID})
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return echo.NewHTTPError(http.StatusNotFound, "student not found")
		}
		return echo.NewHTTPError(http.StatusInternalServerError, "failed to get student")
	}
	return c.JSON(http.StatusOK, toStudentResponse(student))
}

// ListStudents returns students filtered by query parameters.
func (s *APIV1Service) ListStudents(c echo.Context) error {
	limit := listStudentsDefaultPageSize
	if raw := c.QueryParam("limit"); raw != "" {
		parsed, err := strconv.Atoi(raw)
		if err != nil {
			return echo.NewHTTPError(http.StatusBadRequest, "limit must be an integer")
		}
		if parsed < 1 {
			parsed = 1
		}
		if parsed > listStudentsMaxPageSize {
			parsed = listStudentsMaxPageSize
		}
		limit = parsed
	}

	find := &store.FindStudent{Limit: &limit}
	if raw := c.QueryParam("offset"); raw != "" {
		parsed, err := strconv.Atoi(raw)
		if err != nil || parsed < 0 {
			return echo.NewHTTPError(http.StatusBadRequest, "offset must be a non-negative integer")
		}
		find.Offset = &parsed
	}
	if v := c.QueryParam("department"); v != "" {
		find.Department = &v
	}
	if v := c.QueryParam("status"); v != "" {
		status := store.StudentStatus(v)
		if err := store.ValidateStudentStatus(status); err != nil {
			return echo.NewHTTPError(http.StatusBadRequest, err.Error())
		}
		find.Status = &status
	}
	if v := c.QueryParam("q"); v != "" {
		find.Search = &v
	}

	students, err := s.store.ListStudents(c.Request().Context(), find)
	if err != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, "failed to list students")
	}
	response := listStudentsResponse{Students: make([]studentResponse, 0, len(students))}
	for _, student := range students {
		response.Students = append(response.Students, toStudentResponse(student))
	}
	response.Count = len(response.Students)
	return c.JSON(http.StatusOK, response)
}

// UpdateStudent applies a partial update to a student.
func (s *APIV1Service) UpdateStudent(c echo.Context) error {
	request := &updateStudentRequest{}
	if err := c.Bind(request); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "malformed request body")
	}

	update := &store.UpdateStudent{StudentID: c.Param("id")}
	if request.Name != nil {
		if err := store.ValidateStudentName(*request.Name); err != nil {
			return echo.NewHTTPError(http.StatusBadRequest, err.Error())
		}
		update.Name = request.Name
	}
	if request.Email != nil {
		if err := store.ValidateEmail(*request.Email); err != nil {
			return echo.NewHTTPError(http.StatusBadRequest, err.Error())
		}
		update.Email = request.Email
	}
	if request.Department != nil {
		if err := store.ValidateDepartment(*request.Department); err != nil {
			return echo.NewHTTPError(http.StatusBadRequest, err.Error())
		}
		update.Department = request.Department
	}
	if request.Year != nil {
		if err := store.ValidateYear(*request.Year); err != nil {
			return echo.NewHTTPError(http.StatusBadRequest, err.Error())
		}
		update.Year = request.Year
	}
	if request.Status != nil {
		status := store.StudentStatus(*request.Status)
		if err := store.ValidateStudentStatus(status); err != nil {
			return echo.NewHTTPError(http.StatusBadRequest, err.Error())
		}
		update.Status = &status
	}

	student, err := s.store.UpdateStudent(c.Request().Context(), update)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return echo.NewHTTPError(http.StatusNotFound, "student not found")
		}
		if field, ok := store.IsDuplicate(err); ok {
			return echo.NewHTTPError(http.StatusConflict, field+" already exists")
		}
		return echo.NewHTTPError(http.StatusInternalServerError, "failed to update student")
	}
	return c.JSON(http.StatusOK, toStudentResponse(student))
}

// DeleteStudent removes a student record.
func (s *APIV1Service) DeleteStudent(c echo.Context) error {
	studentID := c.Param("id")
	if err := s.store.DeleteStudent(c.Request().Context(), &store.DeleteStudent{StudentID: studentID}); err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return echo.NewHTTPError(http.StatusNotFound, "student not found")
		}
		return echo.NewHTTPError(http.StatusInternalServerError, "failed to delete student")
	}
	return c.NoContent(http.StatusNoContent)
}
