// Package client is the Go SDK for the academia HTTP API. It speaks the
// API's response envelope, normalizes failures into core errors and
// implements session.Verifier so a session.Manager can drive it directly.
package client

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/url"
	"time"

	"github.com/pkg/errors"

	"github.com/dmtshikala/academia/core"
	"github.com/dmtshikala/academia/core/academic"
	"github.com/dmtshikala/academia/core/session"
	"github.com/dmtshikala/academia/core/user"
)

const defaultTimeout = 15 * time.Second

type (
	Client struct {
		baseURL string
		http    *http.Client
		logger  core.Logger
	}

	// Error is a non-validation API failure carrying the server's message
	// and the HTTP status code.
	Error struct {
		StatusCode int
		Message    string
	}

	envelope struct {
		Success bool              `json:"success"`
		Data    json.RawMessage   `json:"data"`
		Message string            `json:"message"`
		Errors  map[string]string `json:"errors"`
	}

	loginRequest struct {
		Email    string `json:"correo"`
		Password string `json:"password"`
	}

	tokens struct {
		AccessToken string `json:"access_token"`
	}

	loginResponse struct {
		Tokens tokens    `json:"tokens"`
		User   user.User `json:"usuario"`
	}

	verifyResponse struct {
		User user.User `json:"usuario"`
	}

	// ChangePassword is the password-change payload. The current password is
	// verified server-side; a mismatch comes back as a field error on
	// "password_actual" so forms can re-prompt without losing other fields.
	ChangePassword struct {
		Current string `json:"password_actual"`
		New     string `json:"password_nueva"`
		Confirm string `json:"password_confirm"`
	}

	// Dashboard is the role-scoped statistics payload; Stats decodes into
	// academic.AdminStats, TeacherStats or StudentStats depending on Role.
	Dashboard struct {
		Role  string          `json:"rol"`
		Stats json.RawMessage `json:"estadisticas"`
	}
)

func (e *Error) Error() string { return e.Message }

func New(baseURL string, logger core.Logger) *Client {
	return &Client{
		baseURL: baseURL,
		http:    &http.Client{Timeout: defaultTimeout},
		logger:  logger,
	}
}

// do performs the request and unwraps the envelope into out. Validation
// failures surface as *core.ValidationError; other API failures as *Error.
func (c *Client) do(ctx context.Context, method, path, token string, body, out interface{}) error {
	var reqBody *bytes.Buffer
	if body != nil {
		reqBody = new(bytes.Buffer)
		if err := json.NewEncoder(reqBody).Encode(body); err != nil {
			return errors.Wrap(err, "encoding request body")
		}
	} else {
		reqBody = bytes.NewBuffer(nil)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, reqBody)
	if err != nil {
		return errors.Wrap(err, "creating request")
	}
	req.Header.Set("Content-Type", "application/json")
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}

	res, err := c.http.Do(req)
	if err != nil {
		return errors.Wrap(err, method+" "+path)
	}
	defer res.Body.Close()
	c.logger.Debug("api: "+method+" "+path, res.StatusCode)

	if res.StatusCode == http.StatusNoContent {
		return nil
	}

	var env envelope
	if err := json.NewDecoder(res.Body).Decode(&env); err != nil {
		return errors.Wrap(err, "decoding response body")
	}
	if !env.Success {
		if len(env.Errors) > 0 {
			fieldErrs := make([]core.FieldError, 0, len(env.Errors))
			for field, msg := range env.Errors {
				fieldErrs = append(fieldErrs, core.FieldError{Field: field, Error: msg})
			}
			return core.NewValidationError(nil, fieldErrs...)
		}
		return &Error{StatusCode: res.StatusCode, Message: env.Message}
	}
	if out != nil {
		if err := json.Unmarshal(env.Data, out); err != nil {
			return errors.Wrap(err, "decoding response data")
		}
	}
	return nil
}

func (c *Client) get(ctx context.Context, path, token string, out interface{}) error {
	return c.do(ctx, http.MethodGet, path, token, nil, out)
}

func principalOf(usr user.User) session.Principal {
	return session.Principal{
		ID:    usr.ID,
		Name:  usr.Name,
		Email: usr.Email,
		Roles: usr.Roles,
	}
}

// Login implements session.Verifier.
func (c *Client) Login(ctx context.Context, correo, password string) (session.Principal, string, error) {
	var resp loginResponse
	err := c.do(ctx, http.MethodPost, "/v1/auth/login", "", loginRequest{Email: correo, Password: password}, &resp)
	if err != nil {
		return session.Principal{}, "", err
	}
	return principalOf(resp.User), resp.Tokens.AccessToken, nil
}

// Verify implements session.Verifier.
func (c *Client) Verify(ctx context.Context, token string) (session.Principal, error) {
	var resp verifyResponse
	if err := c.get(ctx, "/v1/auth/verify", token, &resp); err != nil {
		return session.Principal{}, err
	}
	return principalOf(resp.User), nil
}

// Logout implements session.Verifier. The server side is stateless; this is
// best-effort notification.
func (c *Client) Logout(ctx context.Context, token string) error {
	return c.do(ctx, http.MethodPost, "/v1/auth/logout", token, nil, nil)
}

// RefreshToken exchanges a still-valid token for a fresh one.
func (c *Client) RefreshToken(ctx context.Context, token string) (string, error) {
	var resp tokens
	if err := c.do(ctx, http.MethodPost, "/v1/auth/token-refresh", token, nil, &resp); err != nil {
		return "", err
	}
	return resp.AccessToken, nil
}

func (c *Client) ChangePassword(ctx context.Context, token string, data ChangePassword) error {
	return c.do(ctx, http.MethodPut, "/v1/auth/password", token, data, nil)
}

// UpdateProfile partially updates the authenticated user's own profile and
// returns the merged principal.
func (c *Client) UpdateProfile(ctx context.Context, token string, data user.UpdateProfile) (session.Principal, error) {
	var resp verifyResponse
	if err := c.do(ctx, http.MethodPut, "/v1/auth/profile", token, data, &resp); err != nil {
		return session.Principal{}, err
	}
	return principalOf(resp.User), nil
}

func (c *Client) Mentions(ctx context.Context, token string) ([]academic.Mention, error) {
	var mentions []academic.Mention
	err := c.get(ctx, "/v1/menciones", token, &mentions)
	return mentions, err
}

func (c *Client) Teachers(ctx context.Context, token string) ([]academic.Teacher, error) {
	var teachers []academic.Teacher
	err := c.get(ctx, "/v1/docentes", token, &teachers)
	return teachers, err
}

func (c *Client) Students(ctx context.Context, token string) ([]academic.Student, error) {
	var students []academic.Student
	err := c.get(ctx, "/v1/estudiantes", token, &students)
	return students, err
}

func (c *Client) Subjects(ctx context.Context, token string) ([]academic.Subject, error) {
	var subjects []academic.Subject
	err := c.get(ctx, "/v1/materias", token, &subjects)
	return subjects, err
}

func (c *Client) SubjectsByTeacher(ctx context.Context, token, teacherID string) ([]academic.Subject, error) {
	var subjects []academic.Subject
	err := c.get(ctx, "/v1/materias?docente_id="+url.QueryEscape(teacherID), token, &subjects)
	return subjects, err
}

func (c *Client) EnrollmentsByStudent(ctx context.Context, token, studentID string) ([]academic.Enrollment, error) {
	var enrollments []academic.Enrollment
	err := c.get(ctx, "/v1/inscripciones/estudiante/"+url.PathEscape(studentID), token, &enrollments)
	return enrollments, err
}

func (c *Client) GradesByStudent(ctx context.Context, token, studentID string) ([]academic.Grade, error) {
	var grades []academic.Grade
	err := c.get(ctx, "/v1/calificaciones/estudiante/"+url.PathEscape(studentID), token, &grades)
	return grades, err
}

func (c *Client) GradesByEnrollment(ctx context.Context, token, enrollmentID string) ([]academic.Grade, error) {
	var grades []academic.Grade
	err := c.get(ctx, "/v1/calificaciones/inscripcion/"+url.PathEscape(enrollmentID), token, &grades)
	return grades, err
}

// DashboardStats fetches the role-scoped dashboard payload.
func (c *Client) DashboardStats(ctx context.Context, token string) (Dashboard, error) {
	var dash Dashboard
	err := c.get(ctx, "/v1/dashboard/estadisticas", token, &dash)
	return dash, err
}
