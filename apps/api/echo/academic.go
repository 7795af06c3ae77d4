package echoapi

import (
	"net/http"

	"github.com/labstack/echo/v4"
	"github.com/pkg/errors"

	"github.com/dmtshikala/academia/core/academic"
	"github.com/dmtshikala/academia/core/user"
)

type academicApi struct {
	usrSvc *user.Service
	svc    *academic.Service
}

func registerAcademicAPI(g *echo.Group, jwt echo.MiddlewareFunc, helper *jwtHelper, usrSvc *user.Service, svc *academic.Service) {
	api := academicApi{usrSvc: usrSvc, svc: svc}

	admin := adminMiddleware()
	staff := staffMiddleware()

	mg := g.Group("/menciones", jwt)
	mg.GET("", api.queryMentions)
	mg.GET("/:id", api.retrieveMention)
	mg.POST("", api.createMention, admin)
	mg.PUT("/:id", api.updateMention, admin)
	mg.DELETE("/:id", api.destroyMention, admin)

	dg := g.Group("/docentes", jwt)
	dg.GET("", api.queryTeachers)
	dg.GET("/:id", api.retrieveTeacher)
	dg.GET("/:id/materias", api.queryTeacherSubjects)
	dg.POST("", api.createTeacher, admin)
	dg.PUT("/:id", api.updateTeacher, admin)
	dg.DELETE("/:id", api.destroyTeacher, admin)

	eg := g.Group("/estudiantes", jwt, staff)
	eg.GET("", api.queryStudents)
	eg.GET("/:id", api.retrieveStudent)
	eg.POST("", api.createStudent, admin)
	eg.PUT("/:id", api.updateStudent, admin)
	eg.DELETE("/:id", api.destroyStudent, admin)

	sg := g.Group("/materias", jwt)
	sg.GET("", api.querySubjects)
	sg.GET("/:id", api.retrieveSubject)
	sg.POST("", api.createSubject, admin)
	sg.PUT("/:id", api.updateSubject, admin)
	sg.DELETE("/:id", api.destroySubject, admin)

	registerEnrollmentAPI(g, jwt, &api)
}

// Menciones

func (api *academicApi) queryMentions(ctx echo.Context) error {
	mentions, err := api.svc.QueryMentions(ctx.Request().Context())
	if err != nil {
		return errors.Wrap(err, "querying mentions")
	}
	if mentions == nil {
		mentions = []academic.Mention{}
	}
	return jsonData(ctx, http.StatusOK, mentions)
}

func (api *academicApi) retrieveMention(ctx echo.Context) error {
	m, err := api.svc.GetMention(ctx.Request().Context(), ctx.Param("id"))
	if err != nil {
		if errors.Cause(err) == academic.ErrNotFound {
			return errHttpNotFound
		}
		return errors.Wrap(err, "finding mention")
	}
	return jsonData(ctx, http.StatusOK, m)
}

func (api *academicApi) createMention(ctx echo.Context) error {
	var data academic.MentionForm
	if err := ctx.Bind(&data); err != nil {
		return errors.Wrap(err, "binding to MentionForm")
	}
	if err := data.Validate(); err != nil {
		return err
	}

	m, err := api.svc.CreateMention(ctx.Request().Context(), data)
	if err != nil {
		return err
	}
	return jsonData(ctx, http.StatusCreated, m)
}

func (api *academicApi) updateMention(ctx echo.Context) error {
	var data academic.MentionForm
	if err := ctx.Bind(&data); err != nil {
		return errors.Wrap(err, "binding to MentionForm")
	}
	if err := data.ValidatePartial(); err != nil {
		return err
	}

	m, err := api.svc.UpdateMention(ctx.Request().Context(), ctx.Param("id"), data)
	if err != nil {
		if errors.Cause(err) == academic.ErrNotFound {
			return errHttpNotFound
		}
		return err
	}
	return jsonData(ctx, http.StatusOK, m)
}

func (api *academicApi) destroyMention(ctx echo.Context) error {
	if err := api.svc.DeleteMentions(ctx.Request().Context(), ctx.Param("id")); err != nil {
		return errors.Wrap(err, "deleting mention")
	}
	return ctx.NoContent(http.StatusNoContent)
}

// Docentes

func (api *academicApi) queryTeachers(ctx echo.Context) error {
	teachers, err := api.svc.QueryTeachers(ctx.Request().Context())
	if err != nil {
		return errors.Wrap(err, "querying teachers")
	}
	if teachers == nil {
		teachers = []academic.Teacher{}
	}
	return jsonData(ctx, http.StatusOK, teachers)
}

func (api *academicApi) retrieveTeacher(ctx echo.Context) error {
	t, err := api.svc.GetTeacher(ctx.Request().Context(), ctx.Param("id"))
	if err != nil {
		if errors.Cause(err) == academic.ErrNotFound {
			return errHttpNotFound
		}
		return errors.Wrap(err, "finding teacher")
	}
	return jsonData(ctx, http.StatusOK, t)
}

func (api *academicApi) queryTeacherSubjects(ctx echo.Context) error {
	subjects, err := api.svc.QuerySubjectsByTeacher(ctx.Request().Context(), ctx.Param("id"))
	if err != nil {
		return errors.Wrap(err, "querying teacher subjects")
	}
	if subjects == nil {
		subjects = []academic.Subject{}
	}
	return jsonData(ctx, http.StatusOK, subjects)
}

func (api *academicApi) createTeacher(ctx echo.Context) error {
	var data academic.TeacherForm
	if err := ctx.Bind(&data); err != nil {
		return errors.Wrap(err, "binding to TeacherForm")
	}
	if err := data.Validate(); err != nil {
		return err
	}

	t, err := api.svc.CreateTeacher(ctx.Request().Context(), data)
	if err != nil {
		return err
	}
	return jsonData(ctx, http.StatusCreated, t)
}

func (api *academicApi) updateTeacher(ctx echo.Context) error {
	var data academic.TeacherForm
	if err := ctx.Bind(&data); err != nil {
		return errors.Wrap(err, "binding to TeacherForm")
	}
	if err := data.ValidatePartial(); err != nil {
		return err
	}

	t, err := api.svc.UpdateTeacher(ctx.Request().Context(), ctx.Param("id"), data)
	if err != nil {
		if errors.Cause(err) == academic.ErrNotFound {
			return errHttpNotFound
		}
		return err
	}
	return jsonData(ctx, http.StatusOK, t)
}

func (api *academicApi) destroyTeacher(ctx echo.Context) error {
	if err := api.svc.DeleteTeachers(ctx.Request().Context(), ctx.Param("id")); err != nil {
		return errors.Wrap(err, "deleting teacher")
	}
	return ctx.NoContent(http.StatusNoContent)
}

// Estudiantes

func (api *academicApi) queryStudents(ctx echo.Context) error {
	filter := new(academic.StudentFilter)
	if err := ctx.Bind(filter); err != nil {
		return jsonData(ctx, http.StatusOK, []academic.Student{})
	}

	students, err := api.svc.QueryStudents(ctx.Request().Context(), *filter)
	if err != nil {
		return errors.Wrap(err, "querying students")
	}
	if students == nil {
		students = []academic.Student{}
	}
	return jsonData(ctx, http.StatusOK, students)
}

func (api *academicApi) retrieveStudent(ctx echo.Context) error {
	s, err := api.svc.GetStudent(ctx.Request().Context(), ctx.Param("id"))
	if err != nil {
		if errors.Cause(err) == academic.ErrNotFound {
			return errHttpNotFound
		}
		return errors.Wrap(err, "finding student")
	}
	return jsonData(ctx, http.StatusOK, s)
}

func (api *academicApi) createStudent(ctx echo.Context) error {
	var data academic.StudentForm
	if err := ctx.Bind(&data); err != nil {
		return errors.Wrap(err, "binding to StudentForm")
	}
	if err := data.Validate(); err != nil {
		return err
	}

	s, err := api.svc.CreateStudent(ctx.Request().Context(), data)
	if err != nil {
		return err
	}
	return jsonData(ctx, http.StatusCreated, s)
}

func (api *academicApi) updateStudent(ctx echo.Context) error {
	var data academic.StudentForm
	if err := ctx.Bind(&data); err != nil {
		return errors.Wrap(err, "binding to StudentForm")
	}
	if err := data.ValidatePartial(); err != nil {
		return err
	}

	s, err := api.svc.UpdateStudent(ctx.Request().Context(), ctx.Param("id"), data)
	if err != nil {
		if errors.Cause(err) == academic.ErrNotFound {
			return errHttpNotFound
		}
		return err
	}
	return jsonData(ctx, http.StatusOK, s)
}

func (api *academicApi) destroyStudent(ctx echo.Context) error {
	if err := api.svc.DeleteStudents(ctx.Request().Context(), ctx.Param("id")); err != nil {
		return errors.Wrap(err, "deleting student")
	}
	return ctx.NoContent(http.StatusNoContent)
}

// Materias

func (api *academicApi) querySubjects(ctx echo.Context) error {
	rctx := ctx.Request().Context()

	var subjects []academic.Subject
	var err error
	if teacherID := ctx.QueryParam("docente_id"); teacherID != "" {
		subjects, err = api.svc.QuerySubjectsByTeacher(rctx, teacherID)
	} else {
		subjects, err = api.svc.QuerySubjects(rctx)
	}
	if err != nil {
		return errors.Wrap(err, "querying subjects")
	}
	if subjects == nil {
		subjects = []academic.Subject{}
	}
	return jsonData(ctx, http.StatusOK, subjects)
}

func (api *academicApi) retrieveSubject(ctx echo.Context) error {
	s, err := api.svc.GetSubject(ctx.Request().Context(), ctx.Param("id"))
	if err != nil {
		if errors.Cause(err) == academic.ErrNotFound {
			return errHttpNotFound
		}
		return errors.Wrap(err, "finding subject")
	}
	return jsonData(ctx, http.StatusOK, s)
}

func (api *academicApi) createSubject(ctx echo.Context) error {
	var data academic.SubjectForm
	if err := ctx.Bind(&data); err != nil {
		return errors.Wrap(err, "binding to SubjectForm")
	}
	if err := data.Validate(); err != nil {
		return err
	}

	s, err := api.svc.CreateSubject(ctx.Request().Context(), data)
	if err != nil {
		return err
	}
	return jsonData(ctx, http.StatusCreated, s)
}

func (api *academicApi) updateSubject(ctx echo.Context) error {
	var data academic.SubjectForm
	if err := ctx.Bind(&data); err != nil {
		return errors.Wrap(err, "binding to SubjectForm")
	}
	if err := data.ValidatePartial(); err != nil {
		return err
	}

	s, err := api.svc.UpdateSubject(ctx.Request().Context(), ctx.Param("id"), data)
	if err != nil {
		if errors.Cause(err) == academic.ErrNotFound {
			return errHttpNotFound
		}
		return err
	}
	return jsonData(ctx, http.StatusOK, s)
}

func (api *academicApi) destroySubject(ctx echo.Context) error {
	if err := api.svc.DeleteSubjects(ctx.Request().Context(), ctx.Param("id")); err != nil {
		return errors.Wrap(err, "deleting subject")
	}
	return ctx.NoContent(http.StatusNoContent)
}
