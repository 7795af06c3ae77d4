package client_test

import (
	"context"
	"io"
	"log"
	"net/http/httptest"
	"os"
	"path/filepath"
	"runtime"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	echoapi "github.com/dmtshikala/academia/apps/api/echo"
	"github.com/dmtshikala/academia/client"
	"github.com/dmtshikala/academia/core"
	"github.com/dmtshikala/academia/core/academic"
	"github.com/dmtshikala/academia/core/access"
	"github.com/dmtshikala/academia/core/session"
	"github.com/dmtshikala/academia/core/user"
	emailsvc "github.com/dmtshikala/academia/services/email"
	"github.com/dmtshikala/academia/storage/cache"
	inmemdb "github.com/dmtshikala/academia/storage/database/inmem"
)

type testEnv struct {
	client  *client.Client
	usrSvc  *user.Service
	acadSvc *academic.Service
	logger  core.Logger
}

func setup(t *testing.T) *testEnv {
	t.Helper()

	conf := core.NewConfig()
	conf.TestMode = true
	conf.Debug = false

	db, err := inmemdb.Open()
	require.NoError(t, err)

	logger := core.NewStdLogger(log.New(io.Discard, "", 0))
	mailSvc := emailsvc.NewConsoleServiceMock(conf)
	usrSvc := user.NewService(inmemdb.NewUserRepository(db), mailSvc, logger)
	acadSvc := academic.NewService(inmemdb.NewAcademicRepository(db), cache.NewMemoryCache(), logger)

	server := echoapi.NewServer(&echoapi.Options{
		Conf:           conf,
		Logger:         logger,
		UserSvc:        usrSvc,
		AcademicSvc:    acadSvc,
		DisableReqLogs: true,
	})
	ts := httptest.NewServer(server)
	t.Cleanup(ts.Close)

	return &testEnv{
		client:  client.New(ts.URL, logger),
		usrSvc:  usrSvc,
		acadSvc: acadSvc,
		logger:  logger,
	}
}

func (env *testEnv) createUser(t *testing.T, name, email, pwd string, roles ...string) user.User {
	t.Helper()
	usr, err := env.usrSvc.Create(context.Background(), user.NewUser{
		Name:            name,
		Email:           email,
		Password:        pwd,
		PasswordConfirm: pwd,
		Roles:           roles,
	})
	require.NoError(t, err)
	return usr
}

func TestClientLogin(t *testing.T) {
	env := setup(t)
	ctx := context.Background()
	env.createUser(t, "Admin Uno", "admin@academia.edu", "S3guridad!X", access.RoleAdmin)

	t.Run("ok", func(t *testing.T) {
		principal, token, err := env.client.Login(ctx, "admin@academia.edu", "S3guridad!X")
		require.NoError(t, err)
		require.NotEmpty(t, token)
		require.Equal(t, "Admin Uno", principal.Name)
		require.Equal(t, "admin@academia.edu", principal.Email)
		require.Equal(t, []string{access.RoleAdmin}, principal.Roles)
	})

	t.Run("wrong password", func(t *testing.T) {
		_, _, err := env.client.Login(ctx, "admin@academia.edu", "nope")
		var apiErr *client.Error
		require.ErrorAs(t, err, &apiErr)
		require.Equal(t, "credenciales inválidas", apiErr.Message)
	})

	t.Run("missing email is a field error", func(t *testing.T) {
		_, _, err := env.client.Login(ctx, "", "S3guridad!X")
		var vErr *core.ValidationError
		require.ErrorAs(t, err, &vErr)
		fields := make(map[string]string, len(vErr.Fields))
		for _, f := range vErr.Fields {
			fields[f.Field] = f.Error
		}
		require.Contains(t, fields, "correo")
	})
}

func TestClientVerify(t *testing.T) {
	env := setup(t)
	ctx := context.Background()
	env.createUser(t, "Admin Uno", "admin@academia.edu", "S3guridad!X", access.RoleAdmin)

	_, token, err := env.client.Login(ctx, "admin@academia.edu", "S3guridad!X")
	require.NoError(t, err)

	principal, err := env.client.Verify(ctx, token)
	require.NoError(t, err)
	require.Equal(t, "admin@academia.edu", principal.Email)

	_, err = env.client.Verify(ctx, "not-a-token")
	require.Error(t, err)

	require.NoError(t, env.client.Logout(ctx, token))
}

func TestClientChangePassword(t *testing.T) {
	env := setup(t)
	ctx := context.Background()
	env.createUser(t, "Admin Uno", "admin@academia.edu", "S3guridad!X", access.RoleAdmin)

	_, token, err := env.client.Login(ctx, "admin@academia.edu", "S3guridad!X")
	require.NoError(t, err)

	err = env.client.ChangePassword(ctx, token, client.ChangePassword{
		Current: "wrong",
		New:     "NuevaClave9!",
		Confirm: "NuevaClave9!",
	})
	var vErr *core.ValidationError
	require.ErrorAs(t, err, &vErr)
	require.Equal(t, "password_actual", vErr.Fields[0].Field)

	err = env.client.ChangePassword(ctx, token, client.ChangePassword{
		Current: "S3guridad!X",
		New:     "NuevaClave9!",
		Confirm: "NuevaClave9!",
	})
	require.NoError(t, err)

	_, _, err = env.client.Login(ctx, "admin@academia.edu", "S3guridad!X")
	require.Error(t, err)
	_, _, err = env.client.Login(ctx, "admin@academia.edu", "NuevaClave9!")
	require.NoError(t, err)
}

func TestClientUpdateProfile(t *testing.T) {
	env := setup(t)
	ctx := context.Background()
	env.createUser(t, "Admin Uno", "admin@academia.edu", "S3guridad!X", access.RoleAdmin)

	_, token, err := env.client.Login(ctx, "admin@academia.edu", "S3guridad!X")
	require.NoError(t, err)

	principal, err := env.client.UpdateProfile(ctx, token, user.UpdateProfile{Name: "Admin Renombrado"})
	require.NoError(t, err)
	require.Equal(t, "Admin Renombrado", principal.Name)
	require.Equal(t, "admin@academia.edu", principal.Email)
}

func TestClientListings(t *testing.T) {
	env := setup(t)
	ctx := context.Background()
	env.createUser(t, "Admin Uno", "admin@academia.edu", "S3guridad!X", access.RoleAdmin)

	mention, err := env.acadSvc.CreateMention(ctx, academic.MentionForm{Name: "Ingeniería de Software"})
	require.NoError(t, err)
	teacher, err := env.acadSvc.CreateTeacher(ctx, academic.TeacherForm{
		Name: "Luis Rocha", CI: "1234567", Email: "luis@academia.edu", Specialty: "Redes",
	})
	require.NoError(t, err)
	student, err := env.acadSvc.CreateStudent(ctx, academic.StudentForm{
		Name: "Ana Díaz", CI: "7894561", Email: "ana@academia.edu",
		BirthDate: "2005-04-12", MentionID: mention.ID,
	})
	require.NoError(t, err)
	subject, err := env.acadSvc.CreateSubject(ctx, academic.SubjectForm{
		Name: "Introducción a la Informática", Code: "inf101", Credits: 4,
		MentionID: mention.ID, TeacherID: teacher.ID,
	})
	require.NoError(t, err)
	enrollment, err := env.acadSvc.CreateEnrollment(ctx, academic.EnrollmentForm{
		StudentID: student.ID, SubjectID: subject.ID, Term: "2026-2", ClosesAt: "2027-02-01",
	})
	require.NoError(t, err)
	_, err = env.acadSvc.CreateGrade(ctx, academic.GradeForm{
		EnrollmentID: enrollment.ID, Score: 87, Remarks: "parcial 1",
	})
	require.NoError(t, err)

	_, token, err := env.client.Login(ctx, "admin@academia.edu", "S3guridad!X")
	require.NoError(t, err)

	mentions, err := env.client.Mentions(ctx, token)
	require.NoError(t, err)
	require.Len(t, mentions, 1)

	teachers, err := env.client.Teachers(ctx, token)
	require.NoError(t, err)
	require.Len(t, teachers, 1)

	students, err := env.client.Students(ctx, token)
	require.NoError(t, err)
	require.Len(t, students, 1)

	subjects, err := env.client.Subjects(ctx, token)
	require.NoError(t, err)
	require.Len(t, subjects, 1)

	byTeacher, err := env.client.SubjectsByTeacher(ctx, token, teacher.ID)
	require.NoError(t, err)
	require.Len(t, byTeacher, 1)
	require.Equal(t, subject.ID, byTeacher[0].ID)

	enrollments, err := env.client.EnrollmentsByStudent(ctx, token, student.ID)
	require.NoError(t, err)
	require.Len(t, enrollments, 1)

	grades, err := env.client.GradesByEnrollment(ctx, token, enrollment.ID)
	require.NoError(t, err)
	require.Len(t, grades, 1)
	require.Equal(t, float64(87), grades[0].Score)

	byStudent, err := env.client.GradesByStudent(ctx, token, student.ID)
	require.NoError(t, err)
	require.Len(t, byStudent, 1)

	dash, err := env.client.DashboardStats(ctx, token)
	require.NoError(t, err)
	require.Equal(t, access.RoleAdmin, dash.Role)
}

func TestFileTokenStore(t *testing.T) {
	store := client.NewFileTokenStore(t.TempDir())

	token, err := store.Load()
	require.NoError(t, err)
	require.Empty(t, token)

	require.NoError(t, store.Save("abc123"))
	token, err = store.Load()
	require.NoError(t, err)
	require.Equal(t, "abc123", token)

	require.NoError(t, store.Clear())
	token, err = store.Load()
	require.NoError(t, err)
	require.Empty(t, token)

	require.NoError(t, store.Clear()) // idempotent
}

func TestFileTokenStorePermissions(t *testing.T) {
	if runtime.GOOS == "windows" {
		t.Skip("file modes are not meaningful on windows")
	}
	dir := t.TempDir()
	store := client.NewFileTokenStore(dir)
	require.NoError(t, store.Save("abc123"))

	info, err := os.Stat(filepath.Join(dir, "academia_token"))
	require.NoError(t, err)
	require.Equal(t, os.FileMode(0o600), info.Mode().Perm())
}

func TestSessionManagerWithClient(t *testing.T) {
	env := setup(t)
	ctx := context.Background()
	env.createUser(t, "Admin Uno", "admin@academia.edu", "S3guridad!X", access.RoleAdmin)

	store := client.NewFileTokenStore(t.TempDir())
	mgr := session.NewManager(env.client, store, env.logger, 0)

	mgr.Start(ctx)
	require.Equal(t, session.Unauthenticated, mgr.Current().State)

	require.Error(t, mgr.Login(ctx, "admin@academia.edu", "nope"))
	require.Equal(t, session.Unauthenticated, mgr.Current().State)

	require.NoError(t, mgr.Login(ctx, "admin@academia.edu", "S3guridad!X"))
	sess := mgr.Current()
	require.True(t, sess.Authenticated())
	require.Equal(t, "admin@academia.edu", sess.Principal.Email)

	stored, err := store.Load()
	require.NoError(t, err)
	require.Equal(t, sess.Token, stored)

	// a fresh manager silently restores from the stored token
	mgr2 := session.NewManager(env.client, store, env.logger, time.Minute)
	mgr2.Start(ctx)
	require.True(t, mgr2.Current().Authenticated())
	mgr2.Stop()

	mgr.Logout(ctx)
	require.Equal(t, session.Unauthenticated, mgr.Current().State)
	stored, err = store.Load()
	require.NoError(t, err)
	require.Empty(t, stored)
}

func TestNavigator(t *testing.T) {
	env := setup(t)
	ctx := context.Background()
	env.createUser(t, "Est Uno", "est@academia.edu", "S3guridad!X", access.RoleStudent)

	store := client.NewFileTokenStore(t.TempDir())
	mgr := session.NewManager(env.client, store, env.logger, 0)
	nav := client.NewNavigator(mgr, nil)

	t.Run("anonymous", func(t *testing.T) {
		d := nav.Navigate("/dashboard")
		require.Equal(t, access.RedirectToLogin, d.Kind)
		require.Equal(t, "/login?next=%2Fdashboard", d.Target)

		require.Equal(t, access.Render, nav.Navigate("/login").Kind)
	})

	require.NoError(t, mgr.Login(ctx, "est@academia.edu", "S3guridad!X"))

	t.Run("student", func(t *testing.T) {
		require.Equal(t, access.Render, nav.Navigate("/dashboard").Kind)
		require.Equal(t, access.Render, nav.Navigate("/inscripciones").Kind)
		require.Equal(t, access.Render, nav.Navigate("/inscripciones/123").Kind)

		d := nav.Navigate("/usuarios")
		require.Equal(t, access.RedirectToUnauthorized, d.Kind)
		require.Equal(t, "/unauthorized", d.Target)

		d = nav.Navigate("/menciones")
		require.Equal(t, access.RedirectToFallback, d.Kind)
		require.Equal(t, access.DefaultFallback, d.Target)

		d = nav.Navigate("/login")
		require.Equal(t, access.RedirectToFallback, d.Kind)
	})
}
