package httpserver

import (
	"bytes"
	"errors"
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/Skotchmaster/edu_platform/internal/service"
	"github.com/Skotchmaster/edu_platform/internal/transport"
	"github.com/Skotchmaster/edu_platform/pkg/logging"
	authmw "github.com/Skotchmaster/edu_platform/pkg/middleware/auth"
)

type ClassroomHTTP struct {
	Svc *service.ClassroomService
}

func internalError(c echo.Context, handler string, err error) error {
	logging.FromContext(c.Request().Context()).Error("request_error", "handler", handler, "status", 500, "error", err)
	return echo.NewHTTPError(http.StatusInternalServerError, "internal server error")
}

func (h *ClassroomHTTP) Students(c echo.Context) error {
	students, err := h.Svc.Students(c.Request().Context())
	if err != nil {
		return internalError(c, "teacher_students", err)
	}
	return c.JSON(http.StatusOK, echo.Map{"students": students})
}

func (h *ClassroomHTTP) Lessons(c echo.Context) error {
	lessons, err := h.Svc.Lessons(c.Request().Context())
	if err != nil {
		return internalError(c, "teacher_lessons", err)
	}
	return c.JSON(http.StatusOK, echo.Map{"lessons": lessons})
}

func (h *ClassroomHTTP) Classrooms(c echo.Context) error {
	id, _ := authmw.IdentityFrom(c)
	classrooms, err := h.Svc.Classrooms(c.Request().Context(), id.TeacherID)
	if err != nil {
		return internalError(c, "teacher_classrooms", err)
	}
	return c.JSON(http.StatusOK, echo.Map{"classrooms": classrooms})
}

func (h *ClassroomHTTP) Assign(c echo.Context) error {
	var req transport.AssignRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid body")
	}
	if err := c.Validate(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "student_id and item_id required")
	}

	a, err := h.Svc.Assign(c.Request().Context(), req.StudentID, req.ItemID)
	if err != nil {
		if errors.Is(err, service.ErrValidation) {
			return echo.NewHTTPError(http.StatusBadRequest, "student_id and item_id required")
		}
		return internalError(c, "teacher_assign", err)
	}
	return c.JSON(http.StatusOK, echo.Map{"status": "ok", "assignment_id": a.ID})
}

// Assignments serves both the teacher view and the student's own view; the
// route decides who may call it.
func (h *ClassroomHTTP) Assignments(c echo.Context) error {
	rows, err := h.Svc.Assignments(c.Request().Context(), c.Param("student_id"))
	if err != nil {
		return internalError(c, "student_assignments", err)
	}
	return c.JSON(http.StatusOK, echo.Map{"assignments": rows})
}

func (h *ClassroomHTTP) SubmitResponse(c echo.Context) error {
	var req transport.ResponseRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid body")
	}
	if err := c.Validate(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "item_id required")
	}

	sr, err := h.Svc.SubmitResponse(c.Request().Context(), c.Param("student_id"), req.ItemID, req.Answer, req.Correct)
	if err != nil {
		if errors.Is(err, service.ErrValidation) {
			return echo.NewHTTPError(http.StatusBadRequest, "item_id required")
		}
		return internalError(c, "student_response", err)
	}
	return c.JSON(http.StatusOK, echo.Map{"status": "ok", "response_id": sr.ID})
}

func (h *ClassroomHTTP) Responses(c echo.Context) error {
	rows, err := h.Svc.Responses(c.Request().Context(), c.Param("student_id"))
	if err != nil {
		return internalError(c, "student_responses", err)
	}
	return c.JSON(http.StatusOK, echo.Map{"responses": rows})
}

func (h *ClassroomHTTP) ExportAssignments(c echo.Context) error {
	var buf bytes.Buffer
	if err := h.Svc.ExportCSV(c.Request().Context(), &buf); err != nil {
		return internalError(c, "export_assignments", err)
	}
	c.Response().Header().Set(echo.HeaderContentDisposition, `attachment; filename="assignments.csv"`)
	return c.Blob(http.StatusOK, "text/csv; charset=utf-8", buf.Bytes())
}
