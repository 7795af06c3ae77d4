package user

import (
	"testing"

	"github.com/go-playground/validator/v10"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dmtshikala/academia/core"
	"github.com/dmtshikala/academia/core/access"
)

func TestSetCheckPassword(t *testing.T) {
	var usr User
	require.NoError(t, usr.SetPassword("S3guridad!X"))
	require.NotEmpty(t, usr.PasswordHash)

	assert.NoError(t, usr.CheckPassword("S3guridad!X"))
	assert.Error(t, usr.CheckPassword("s3guridad!x"))
}

func TestRoleHelpers(t *testing.T) {
	usr := User{Roles: []string{access.RoleTeacher}}
	assert.True(t, usr.IsTeacher())
	assert.False(t, usr.IsAdmin())
	assert.False(t, usr.IsStudent())
	assert.True(t, usr.HasRole(access.RoleTeacher))
}

func TestPasswordPolicy(t *testing.T) {
	tests := []struct {
		name    string
		pwd     string
		wantTag string
	}{
		{name: "too short", pwd: "Ab1!", wantTag: pwdMinLenTag},
		{name: "whitespace", pwd: "Ab 1!cdef", wantTag: pwdNoSpaceTag},
		{name: "all numeric", pwd: "12345678", wantTag: pwdNotAllNumTag},
		{name: "no uppercase", pwd: "abcdef1!", wantTag: pwdComplexityTag},
		{name: "no special", pwd: "Abcdefg1", wantTag: pwdComplexityTag},
		{name: "similar to email", pwd: "John.doe1@Mail", wantTag: pwdAttrSimTag},
		{name: "ok", pwd: "S3guridad!X"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			nu := NewUser{
				Name:            "John Doe",
				Email:           "john.doe1@mail.com",
				Password:        tt.pwd,
				PasswordConfirm: tt.pwd,
			}
			err := core.Validate.Struct(&nu)
			if tt.wantTag == "" {
				require.NoError(t, err)
				return
			}

			var vErrs validator.ValidationErrors
			require.ErrorAs(t, err, &vErrs)
			tags := make([]string, 0, len(vErrs))
			for _, fe := range vErrs {
				tags = append(tags, fe.Tag())
			}
			assert.Contains(t, tags, tt.wantTag)
		})
	}
}

func TestChangePasswordValidate(t *testing.T) {
	cp := ChangePassword{
		PasswordActual:  "S3guridad!X",
		PasswordNueva:   "NuevaClave9!",
		PasswordConfirm: "otra",
	}
	err := cp.Validate()

	var vErr *core.ValidationError
	require.ErrorAs(t, err, &vErr)
	fields := make(map[string]string, len(vErr.Fields))
	for _, f := range vErr.Fields {
		fields[f.Field] = f.Error
	}
	assert.Equal(t, "Las contraseñas no coinciden", fields["password_confirm"])
}
