package echoapi

import (
	"net/http"
	"strings"

	"github.com/labstack/echo/v4"
	"github.com/pkg/errors"

	"github.com/dmtshikala/academia/core/academic"
	"github.com/dmtshikala/academia/core/access"
)

type (
	EnrollmentStatusRequest struct {
		Status string `json:"estado"`
	}

	DashboardResponse struct {
		Role  string      `json:"rol"`
		Stats interface{} `json:"estadisticas"`
	}
)

func registerEnrollmentAPI(g *echo.Group, jwt echo.MiddlewareFunc, api *academicApi) {
	admin := adminMiddleware()
	staff := staffMiddleware()

	ig := g.Group("/inscripciones", jwt)
	ig.GET("", api.queryEnrollments, admin)
	ig.GET("/:id", api.retrieveEnrollment, staff)
	ig.GET("/estudiante/:id", api.queryStudentEnrollments)
	ig.POST("", api.createEnrollment, admin)
	ig.PUT("/:id/estado", api.setEnrollmentStatus, admin)
	ig.DELETE("/:id", api.destroyEnrollment, admin)

	cg := g.Group("/calificaciones", jwt)
	cg.GET("/inscripcion/:id", api.queryEnrollmentGrades)
	cg.GET("/estudiante/:id", api.queryStudentGrades)
	cg.POST("", api.createGrade, staff)
	cg.PUT("/:id", api.updateGrade, staff)
	cg.DELETE("/:id", api.destroyGrade, admin)

	g.GET("/dashboard/estadisticas", api.dashboardStats, jwt, authedMiddleware())
}

// canAccessStudent lets staff through; a student only reaches their own record.
func (api *academicApi) canAccessStudent(ctx echo.Context, studentID string) error {
	claims, err := getContextClaims(ctx)
	if err != nil {
		return err
	}
	if claims.IsAdmin || claims.IsTeacher {
		return nil
	}

	s, err := api.svc.GetStudent(ctx.Request().Context(), studentID)
	if err != nil {
		if errors.Cause(err) == academic.ErrNotFound {
			return errHttpNotFound
		}
		return errors.Wrap(err, "finding student")
	}
	if !strings.EqualFold(s.Email, claims.Email) {
		return errHttpForbidden
	}
	return nil
}

// Inscripciones

func (api *academicApi) queryEnrollments(ctx echo.Context) error {
	enrollments, err := api.svc.QueryEnrollments(ctx.Request().Context())
	if err != nil {
		return errors.Wrap(err, "querying enrollments")
	}
	if enrollments == nil {
		enrollments = []academic.Enrollment{}
	}
	return jsonData(ctx, http.StatusOK, enrollments)
}

func (api *academicApi) retrieveEnrollment(ctx echo.Context) error {
	e, err := api.svc.GetEnrollment(ctx.Request().Context(), ctx.Param("id"))
	if err != nil {
		if errors.Cause(err) == academic.ErrNotFound {
			return errHttpNotFound
		}
		return errors.Wrap(err, "finding enrollment")
	}
	return jsonData(ctx, http.StatusOK, e)
}

func (api *academicApi) queryStudentEnrollments(ctx echo.Context) error {
	studentID := ctx.Param("id")
	if err := api.canAccessStudent(ctx, studentID); err != nil {
		return err
	}

	enrollments, err := api.svc.QueryEnrollmentsByStudent(ctx.Request().Context(), studentID)
	if err != nil {
		return errors.Wrap(err, "querying student enrollments")
	}
	if enrollments == nil {
		enrollments = []academic.Enrollment{}
	}
	return jsonData(ctx, http.StatusOK, enrollments)
}

func (api *academicApi) createEnrollment(ctx echo.Context) error {
	var data academic.EnrollmentForm
	if err := ctx.Bind(&data); err != nil {
		return errors.Wrap(err, "binding to EnrollmentForm")
	}
	if err := data.Validate(); err != nil {
		return err
	}

	e, err := api.svc.CreateEnrollment(ctx.Request().Context(), data)
	if err != nil {
		return err
	}
	return jsonData(ctx, http.StatusCreated, e)
}

func (api *academicApi) setEnrollmentStatus(ctx echo.Context) error {
	var data EnrollmentStatusRequest
	if err := ctx.Bind(&data); err != nil {
		return errors.Wrap(err, "binding to EnrollmentStatusRequest")
	}
	switch data.Status {
	case academic.EnrollmentActive, academic.EnrollmentWithdrawn, academic.EnrollmentCompleted:
	default:
		return echo.NewHTTPError(http.StatusBadRequest, "estado de inscripción inválido")
	}

	e, err := api.svc.SetEnrollmentStatus(ctx.Request().Context(), ctx.Param("id"), data.Status)
	if err != nil {
		if errors.Cause(err) == academic.ErrNotFound {
			return errHttpNotFound
		}
		return err
	}
	return jsonData(ctx, http.StatusOK, e)
}

func (api *academicApi) destroyEnrollment(ctx echo.Context) error {
	if err := api.svc.DeleteEnrollments(ctx.Request().Context(), ctx.Param("id")); err != nil {
		return errors.Wrap(err, "deleting enrollment")
	}
	return ctx.NoContent(http.StatusNoContent)
}

// Calificaciones

func (api *academicApi) queryEnrollmentGrades(ctx echo.Context) error {
	e, err := api.svc.GetEnrollment(ctx.Request().Context(), ctx.Param("id"))
	if err != nil {
		if errors.Cause(err) == academic.ErrNotFound {
			return errHttpNotFound
		}
		return errors.Wrap(err, "finding enrollment")
	}
	if err := api.canAccessStudent(ctx, e.StudentID); err != nil {
		return err
	}

	grades, err := api.svc.QueryGradesByEnrollment(ctx.Request().Context(), e.ID)
	if err != nil {
		return errors.Wrap(err, "querying enrollment grades")
	}
	if grades == nil {
		grades = []academic.Grade{}
	}
	return jsonData(ctx, http.StatusOK, grades)
}

func (api *academicApi) queryStudentGrades(ctx echo.Context) error {
	studentID := ctx.Param("id")
	if err := api.canAccessStudent(ctx, studentID); err != nil {
		return err
	}

	grades, err := api.svc.QueryGradesByStudent(ctx.Request().Context(), studentID)
	if err != nil {
		return errors.Wrap(err, "querying student grades")
	}
	if grades == nil {
		grades = []academic.Grade{}
	}
	return jsonData(ctx, http.StatusOK, grades)
}

func (api *academicApi) createGrade(ctx echo.Context) error {
	var data academic.GradeForm
	if err := ctx.Bind(&data); err != nil {
		return errors.Wrap(err, "binding to GradeForm")
	}
	if err := data.Validate(); err != nil {
		return err
	}

	g, err := api.svc.CreateGrade(ctx.Request().Context(), data)
	if err != nil {
		return err
	}
	return jsonData(ctx, http.StatusCreated, g)
}

func (api *academicApi) updateGrade(ctx echo.Context) error {
	var data academic.GradeForm
	if err := ctx.Bind(&data); err != nil {
		return errors.Wrap(err, "binding to GradeForm")
	}
	if err := data.ValidatePartial(); err != nil {
		return err
	}

	g, err := api.svc.UpdateGrade(ctx.Request().Context(), ctx.Param("id"), data)
	if err != nil {
		if errors.Cause(err) == academic.ErrNotFound {
			return errHttpNotFound
		}
		return err
	}
	return jsonData(ctx, http.StatusOK, g)
}

func (api *academicApi) destroyGrade(ctx echo.Context) error {
	if err := api.svc.DeleteGrades(ctx.Request().Context(), ctx.Param("id")); err != nil {
		return errors.Wrap(err, "deleting grade")
	}
	return ctx.NoContent(http.StatusNoContent)
}

// Dashboard

func (api *academicApi) dashboardStats(ctx echo.Context) error {
	claims, err := getContextClaims(ctx)
	if err != nil {
		return err
	}
	rctx := ctx.Request().Context()

	switch {
	case claims.IsAdmin:
		stats, err := api.svc.AdminStats(rctx)
		if err != nil {
			return errors.Wrap(err, "computing admin stats")
		}
		return jsonData(ctx, http.StatusOK, DashboardResponse{Role: access.RoleAdmin, Stats: stats})

	case claims.IsTeacher:
		t, err := api.findTeacherByEmail(ctx, claims.Email)
		if err != nil {
			return err
		}
		stats, err := api.svc.TeacherStats(rctx, t.ID)
		if err != nil {
			return errors.Wrap(err, "computing teacher stats")
		}
		return jsonData(ctx, http.StatusOK, DashboardResponse{Role: access.RoleTeacher, Stats: stats})

	case claims.IsStudent:
		s, err := api.findStudentByEmail(ctx, claims.Email)
		if err != nil {
			return err
		}
		stats, err := api.svc.StudentStats(rctx, s.ID)
		if err != nil {
			return errors.Wrap(err, "computing student stats")
		}
		return jsonData(ctx, http.StatusOK, DashboardResponse{Role: access.RoleStudent, Stats: stats})
	}
	return errHttpForbidden
}

func (api *academicApi) findTeacherByEmail(ctx echo.Context, email string) (academic.Teacher, error) {
	teachers, err := api.svc.QueryTeachers(ctx.Request().Context())
	if err != nil {
		return academic.Teacher{}, errors.Wrap(err, "querying teachers")
	}
	for _, t := range teachers {
		if strings.EqualFold(t.Email, email) {
			return t, nil
		}
	}
	return academic.Teacher{}, errHttpNotFound
}

func (api *academicApi) findStudentByEmail(ctx echo.Context, email string) (academic.Student, error) {
	students, err := api.svc.QueryStudents(ctx.Request().Context(), academic.StudentFilter{})
	if err != nil {
		return academic.Student{}, errors.Wrap(err, "querying students")
	}
	for _, s := range students {
		if strings.EqualFold(s.Email, email) {
			return s, nil
		}
	}
	return academic.Student{}, errHttpNotFound
}
