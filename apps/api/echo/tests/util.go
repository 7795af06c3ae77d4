package tests

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"log"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/require"

	echoapi "github.com/dmtshikala/academia/apps/api/echo"
	"github.com/dmtshikala/academia/core"
	"github.com/dmtshikala/academia/core/academic"
	"github.com/dmtshikala/academia/core/access"
	"github.com/dmtshikala/academia/core/user"
	emailsvc "github.com/dmtshikala/academia/services/email"
	"github.com/dmtshikala/academia/storage/cache"
	inmemdb "github.com/dmtshikala/academia/storage/database/inmem"
)

type testApp struct {
	conf    *core.Config
	server  echoapi.Server
	usrSvc  *user.Service
	acadSvc *academic.Service
}

func setup(t *testing.T) *testApp {
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
	return &testApp{conf: conf, server: server, usrSvc: usrSvc, acadSvc: acadSvc}
}

type envelope struct {
	Success bool              `json:"success"`
	Data    json.RawMessage   `json:"data"`
	Message string            `json:"message"`
	Errors  map[string]string `json:"errors"`
}

func newAuthRequest(method, path, token string, data ...interface{}) (*http.Request, *httptest.ResponseRecorder) {
	var body bytes.Buffer
	if len(data) > 0 {
		_ = json.NewEncoder(&body).Encode(data[0])
	}
	req := httptest.NewRequest(method, path, &body)
	req.Header.Set("Content-Type", "application/json")
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	rec := httptest.NewRecorder()
	return req, rec
}

func newRequest(method, path string, data ...interface{}) (*http.Request, *httptest.ResponseRecorder) {
	return newAuthRequest(method, path, "", data...)
}

func (app *testApp) do(t *testing.T, req *http.Request, rec *httptest.ResponseRecorder, wantCode int) envelope {
	t.Helper()
	app.server.ServeHTTP(rec, req)
	require.Equal(t, wantCode, rec.Code, "body: %s", rec.Body.String())

	var env envelope
	if rec.Body.Len() > 0 {
		require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &env))
	}
	return env
}

func (app *testApp) createUser(t *testing.T, name, email, pwd string, roles ...string) user.User {
	t.Helper()
	usr, err := app.usrSvc.Create(context.Background(), user.NewUser{
		Name:            name,
		Email:           email,
		Password:        pwd,
		PasswordConfirm: pwd,
		Roles:           roles,
	})
	require.NoError(t, err)
	return usr
}

func (app *testApp) createAdmin(t *testing.T) user.User {
	return app.createUser(t, "Admin Uno", "admin@academia.edu", "S3guridad!X", access.RoleAdmin)
}

func (app *testApp) getToken(t *testing.T, usr user.User) string {
	t.Helper()
	token, err := echoapi.GenerateToken(app.conf, echoapi.GetUserClaims(app.conf, usr))
	require.NoError(t, err)
	return token
}

func decodeData(t *testing.T, env envelope, dst interface{}) {
	t.Helper()
	require.True(t, env.Success)
	require.NoError(t, json.Unmarshal(env.Data, dst))
}
