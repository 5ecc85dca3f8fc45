// AngelaMos | 2026
// handler_test.go

package auth

import (
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/carterperez-dev/membership/internal/core"
	"github.com/carterperez-dev/membership/internal/middleware"
)

func newTestRouter(env *testEnv) http.Handler {
	r := chi.NewRouter()
	NewHandler(env.svc).RegisterRoutes(r, middleware.OptionalAuth(env.jwt))
	return r
}

func doJSON(t *testing.T, h http.Handler, path, body string) *httptest.ResponseRecorder {
	t.Helper()
	req := httptest.NewRequest(http.MethodPost, path, strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	return rec
}

func decodeError(t *testing.T, rec *httptest.ResponseRecorder) core.ErrorBody {
	t.Helper()
	var resp core.ErrorResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	assert.False(t, resp.Success)
	return resp.Error
}

func TestHandler_RegisterThenLoginFlow(t *testing.T) {
	env := newTestEnv(t)
	h := newTestRouter(env)

	rec := doJSON(t, h, "/auth/register", `{"email":"New@Example.com","password":"secret1","name":"Ana"}`)
	require.Equal(t, http.StatusCreated, rec.Code)

	var registered AuthResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &registered))
	assert.NotEmpty(t, registered.Token)
	assert.Equal(t, "new@example.com", registered.User.Email)
	assert.Equal(t, "Ana", registered.User.Name)

	rec = doJSON(t, h, "/auth/login", `{"email":"new@example.com","password":"secret1"}`)
	assert.Equal(t, http.StatusForbidden, rec.Code)

	token := env.notifier.last(t, "verification").token
	rec = doJSON(t, h, "/auth/verify-email", `{"email":"new@example.com","token":"`+token+`"}`)
	require.Equal(t, http.StatusOK, rec.Code)

	rec = doJSON(t, h, "/auth/login", `{"email":"NEW@example.com","password":"secret1"}`)
	require.Equal(t, http.StatusOK, rec.Code)

	var loggedIn AuthResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &loggedIn))
	assert.True(t, loggedIn.User.IsVerified)
	assert.NotEmpty(t, loggedIn.Token)
}

func TestHandler_RegisterValidation(t *testing.T) {
	env := newTestEnv(t)
	h := newTestRouter(env)

	tests := []struct {
		name string
		body string
	}{
		{"missing email", `{"password":"secret1"}`},
		{"bad email", `{"email":"nope","password":"secret1"}`},
		{"short password", `{"email":"a@example.com","password":"12345"}`},
		{"malformed json", `{"email":`},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec := doJSON(t, h, "/auth/register", tt.body)
			assert.Equal(t, http.StatusBadRequest, rec.Code)
		})
	}
}

func TestHandler_RegisterDuplicateIsBadRequest(t *testing.T) {
	env := newTestEnv(t)
	h := newTestRouter(env)

	rec := doJSON(t, h, "/auth/register", `{"email":"a@example.com","password":"secret1"}`)
	require.Equal(t, http.StatusCreated, rec.Code)

	rec = doJSON(t, h, "/auth/register", `{"email":"A@EXAMPLE.COM","password":"secret1"}`)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestHandler_LoginWrongPasswordIsUnauthorized(t *testing.T) {
	env := newTestEnv(t)
	h := newTestRouter(env)

	rec := doJSON(t, h, "/auth/login", `{"email":"ghost@example.com","password":"secret1"}`)
	require.Equal(t, http.StatusUnauthorized, rec.Code)
	assert.Equal(t, "invalid email or password", decodeError(t, rec).Message)
}

func TestHandler_ResetPasswordErrors(t *testing.T) {
	env := newTestEnv(t)
	h := newTestRouter(env)
	env.register(t, "a@example.com", "secret1")

	rec := doJSON(t, h, "/auth/forgot-password", `{"email":"a@example.com"}`)
	require.Equal(t, http.StatusOK, rec.Code)
	token := env.notifier.last(t, "reset").token

	rec = doJSON(t, h, "/auth/reset-password", `{"email":"a@example.com","token":"wrong","password":"new-secret"}`)
	require.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Equal(t, "invalid or expired token", decodeError(t, rec).Message)

	env.advance(31 * time.Minute)

	rec = doJSON(t, h, "/auth/reset-password", `{"email":"a@example.com","token":"`+token+`","password":"new-secret"}`)
	require.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Equal(t, "token expired", decodeError(t, rec).Message)
}

func TestHandler_ForgotPasswordIsGeneric(t *testing.T) {
	env := newTestEnv(t)
	h := newTestRouter(env)

	rec := doJSON(t, h, "/auth/forgot-password", `{"email":"ghost@example.com"}`)
	require.Equal(t, http.StatusOK, rec.Code)

	var resp MessageResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	assert.Equal(t, msgForgotGeneric, resp.Message)
}

func TestHandler_LogoutWithAndWithoutBearer(t *testing.T) {
	env := newTestEnv(t)
	h := newTestRouter(env)
	registered := env.register(t, "a@example.com", "secret1")

	rec := doJSON(t, h, "/auth/logout", `{}`)
	assert.Equal(t, http.StatusOK, rec.Code)

	req := httptest.NewRequest(http.MethodPost, "/auth/logout", nil)
	req.Header.Set("Authorization", "Bearer "+registered.Token)
	rec = httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	assert.Equal(t, http.StatusOK, rec.Code)
}

func TestHandler_MultibytePasswordOverBcryptLimit(t *testing.T) {
	env := newTestEnv(t)
	h := newTestRouter(env)
	long := strings.Repeat("é", 72)

	rec := doJSON(t, h, "/auth/register", `{"email":"a@example.com","password":"`+long+`"}`)
	require.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Equal(t, "password must be at most 72 bytes", decodeError(t, rec).Message)

	env.register(t, "b@example.com", "secret1")
	rec = doJSON(t, h, "/auth/forgot-password", `{"email":"b@example.com"}`)
	require.Equal(t, http.StatusOK, rec.Code)
	token := env.notifier.last(t, "reset").token

	rec = doJSON(t, h, "/auth/reset-password", `{"email":"b@example.com","token":"`+token+`","password":"`+long+`"}`)
	require.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Equal(t, "password must be at most 72 bytes", decodeError(t, rec).Message)

	rec = doJSON(t, h, "/auth/register", `{"email":"c@example.com","password":"`+strings.Repeat("é", 36)+`"}`)
	assert.Equal(t, http.StatusCreated, rec.Code)
}

func TestWriteServiceError_PasswordTooLong(t *testing.T) {
	rec := httptest.NewRecorder()
	writeServiceError(rec, fmt.Errorf("hash password: %w", core.ErrPasswordTooLong))

	require.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Equal(t, "password must be at most 72 bytes", decodeError(t, rec).Message)
}
