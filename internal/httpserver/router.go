package httpserver

import (
	"context"
	"log/slog"
	"net/http"

	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/Skotchmaster/edu_platform/internal/authlog"
	"github.com/Skotchmaster/edu_platform/pkg/identity"
	authmw "github.com/Skotchmaster/edu_platform/pkg/middleware/auth"
	loggingmw "github.com/Skotchmaster/edu_platform/pkg/middleware/logging"
)

type Deps struct {
	AuthHandler      *AuthHTTP
	ClassroomHandler *ClassroomHTTP
	Gate             *authmw.Gate
	Events           authlog.Recorder
	Logger           *slog.Logger
	Ready            func(ctx context.Context) error
}

// New builds the echo instance with the shared middleware chain and all routes.
func New(d *Deps) *echo.Echo {
	e := echo.New()
	e.HideBanner = true
	e.HidePort = true
	e.Validator = newValidator()

	logger := d.Logger
	if logger == nil {
		logger = slog.Default()
	}
	var events authlog.Recorder = authlog.Nop{}
	if d.Events != nil {
		events = d.Events
	}

	e.Use(middleware.Recover())
	e.Use(middleware.RequestID())
	e.Use(loggingmw.RequestLogger(logger))
	e.Use(authlog.Middleware(events))

	Register(e, d)
	return e
}

func Register(e *echo.Echo, d *Deps) {
	e.GET("/health/live", func(c echo.Context) error { return c.NoContent(http.StatusOK) })
	e.GET("/health/ready", func(c echo.Context) error {
		if d.Ready != nil {
			if err := d.Ready(c.Request().Context()); err != nil {
				return c.NoContent(http.StatusServiceUnavailable)
			}
		}
		return c.NoContent(http.StatusOK)
	})
	e.GET("/metrics", echo.WrapHandler(promhttp.Handler()))

	ah := d.AuthHandler
	e.POST("/token", ah.Login)
	e.POST("/token/refresh", ah.Refresh)
	e.POST("/logout", ah.LogOut)

	gate := d.Gate.RequireAuth
	e.GET("/me", ah.Me, gate)
	e.GET("/admin-only", ah.Hello, gate, authmw.RequireRole(identity.RoleAdmin))
	e.GET("/teacher-only", ah.Hello, gate, authmw.RequireRole(identity.RoleTeacher))
	e.GET("/student-only", ah.Hello, gate, authmw.RequireRole(identity.RoleStudent))

	admin := e.Group("/admin", gate, authmw.RequireRole(identity.RoleAdmin))
	admin.GET("/auth_logs", ah.AuthLogs)

	ch := d.ClassroomHandler
	teacher := e.Group("/teacher", gate, authmw.RequireRole(identity.RoleTeacher))
	teacher.GET("/students", ch.Students)
	teacher.GET("/lessons", ch.Lessons)
	teacher.GET("/classrooms", ch.Classrooms)
	teacher.POST("/assign", ch.Assign)
	teacher.GET("/student/:student_id/assignments", ch.Assignments)
	teacher.GET("/export_assignments", ch.ExportAssignments)

	students := e.Group("/students/:student_id", gate)
	students.GET("/assignments", ch.Assignments, authmw.RequireSelfOr("student_id", identity.RoleTeacher))
	students.POST("/responses", ch.SubmitResponse, authmw.RequireSelfOr("student_id", identity.RoleTeacher))
	students.GET("/responses", ch.Responses, authmw.RequireRole(identity.RoleTeacher))
}
