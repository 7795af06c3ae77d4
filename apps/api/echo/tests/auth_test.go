package tests

import (
	"context"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	echoapi "github.com/dmtshikala/academia/apps/api/echo"
	"github.com/dmtshikala/academia/core/access"
	"github.com/dmtshikala/academia/core/user"
)

func TestLogin(t *testing.T) {
	app := setup(t)
	app.createAdmin(t)

	t.Run("ok", func(t *testing.T) {
		req, rec := newRequest(http.MethodPost, "/v1/auth/login",
			echoapi.LoginRequest{Email: "Admin@Academia.edu", Password: "S3guridad!X"})
		env := app.do(t, req, rec, http.StatusOK)

		var resp echoapi.LoginResponse
		decodeData(t, env, &resp)
		assert.NotEmpty(t, resp.Tokens.AccessToken)
		assert.Equal(t, "admin@academia.edu", resp.User.Email)
		assert.Equal(t, []string{access.RoleAdmin}, resp.User.Roles)
	})

	t.Run("wrong password", func(t *testing.T) {
		req, rec := newRequest(http.MethodPost, "/v1/auth/login",
			echoapi.LoginRequest{Email: "admin@academia.edu", Password: "nope1234"})
		env := app.do(t, req, rec, http.StatusBadRequest)
		assert.False(t, env.Success)
		assert.Equal(t, "credenciales inválidas", env.Message)
	})

	t.Run("unknown user", func(t *testing.T) {
		req, rec := newRequest(http.MethodPost, "/v1/auth/login",
			echoapi.LoginRequest{Email: "nadie@academia.edu", Password: "nope1234"})
		env := app.do(t, req, rec, http.StatusBadRequest)
		assert.False(t, env.Success)
	})

	t.Run("missing fields", func(t *testing.T) {
		req, rec := newRequest(http.MethodPost, "/v1/auth/login", echoapi.LoginRequest{})
		env := app.do(t, req, rec, http.StatusBadRequest)
		assert.False(t, env.Success)
		assert.Contains(t, env.Errors, "correo")
		assert.Contains(t, env.Errors, "password")
	})

	t.Run("deactivated account", func(t *testing.T) {
		usr := app.createUser(t, "Baja Temporal", "baja@academia.edu", "S3guridad!X", access.RoleStudent)
		inactive := false
		_, err := app.usrSvc.Update(context.Background(), usr.ID, user.UpdateUser{IsActive: &inactive})
		require.NoError(t, err)

		r, rec := newRequest(http.MethodPost, "/v1/auth/login",
			echoapi.LoginRequest{Email: "baja@academia.edu", Password: "S3guridad!X"})
		env := app.do(t, r, rec, http.StatusForbidden)
		assert.Equal(t, "cuenta desactivada", env.Message)
	})
}

func TestVerify(t *testing.T) {
	app := setup(t)
	admin := app.createAdmin(t)
	token := app.getToken(t, admin)

	t.Run("ok", func(t *testing.T) {
		r, rec := newAuthRequest(http.MethodGet, "/v1/auth/verify", token)
		env := app.do(t, r, rec, http.StatusOK)

		var resp echoapi.VerifyResponse
		decodeData(t, env, &resp)
		assert.Equal(t, admin.ID, resp.User.ID)
	})

	t.Run("missing token", func(t *testing.T) {
		r, rec := newRequest(http.MethodGet, "/v1/auth/verify")
		env := app.do(t, r, rec, http.StatusUnauthorized)
		assert.False(t, env.Success)
	})

	t.Run("garbage token", func(t *testing.T) {
		r, rec := newAuthRequest(http.MethodGet, "/v1/auth/verify", "not.a.token")
		app.do(t, r, rec, http.StatusUnauthorized)
	})
}

func TestTokenRefresh(t *testing.T) {
	app := setup(t)
	admin := app.createAdmin(t)
	token := app.getToken(t, admin)

	r, rec := newAuthRequest(http.MethodPost, "/v1/auth/token-refresh", token)
	env := app.do(t, r, rec, http.StatusOK)

	var tokens echoapi.Tokens
	decodeData(t, env, &tokens)
	assert.NotEmpty(t, tokens.AccessToken)
}

func TestChangePassword(t *testing.T) {
	app := setup(t)
	usr := app.createUser(t, "Carla Mamani", "carla@academia.edu", "S3guridad!X", access.RoleStudent)
	token := app.getToken(t, usr)

	t.Run("wrong current password is a field error", func(t *testing.T) {
		r, rec := newAuthRequest(http.MethodPut, "/v1/auth/password", token, user.ChangePassword{
			PasswordActual:  "equivocada1",
			PasswordNueva:   "NuevaClave9!",
			PasswordConfirm: "NuevaClave9!",
		})
		env := app.do(t, r, rec, http.StatusBadRequest)
		assert.Equal(t, "Contraseña actual incorrecta", env.Errors["password_actual"])
	})

	t.Run("mismatched confirmation", func(t *testing.T) {
		r, rec := newAuthRequest(http.MethodPut, "/v1/auth/password", token, user.ChangePassword{
			PasswordActual:  "S3guridad!X",
			PasswordNueva:   "NuevaClave9!",
			PasswordConfirm: "OtraClave9!",
		})
		env := app.do(t, r, rec, http.StatusBadRequest)
		assert.Equal(t, "Las contraseñas no coinciden", env.Errors["password_confirm"])
	})

	t.Run("ok, old password stops working", func(t *testing.T) {
		r, rec := newAuthRequest(http.MethodPut, "/v1/auth/password", token, user.ChangePassword{
			PasswordActual:  "S3guridad!X",
			PasswordNueva:   "NuevaClave9!",
			PasswordConfirm: "NuevaClave9!",
		})
		app.do(t, r, rec, http.StatusOK)

		r, rec = newRequest(http.MethodPost, "/v1/auth/login",
			echoapi.LoginRequest{Email: "carla@academia.edu", Password: "S3guridad!X"})
		app.do(t, r, rec, http.StatusBadRequest)

		r, rec = newRequest(http.MethodPost, "/v1/auth/login",
			echoapi.LoginRequest{Email: "carla@academia.edu", Password: "NuevaClave9!"})
		app.do(t, r, rec, http.StatusOK)
	})
}

func TestUpdateProfile(t *testing.T) {
	app := setup(t)
	usr := app.createUser(t, "Carla Mamani", "carla@academia.edu", "S3guridad!X", access.RoleStudent)
	token := app.getToken(t, usr)

	r, rec := newAuthRequest(http.MethodPut, "/v1/auth/profile", token, user.UpdateProfile{
		Name:  "Carla Mamani Flores",
		Phone: "+591 77712345",
	})
	env := app.do(t, r, rec, http.StatusOK)

	var resp echoapi.VerifyResponse
	decodeData(t, env, &resp)
	assert.Equal(t, "Carla Mamani Flores", resp.User.Name)
	assert.Equal(t, "+591 77712345", resp.User.Phone)
	assert.Equal(t, "carla@academia.edu", resp.User.Email, "email unchanged")
}
