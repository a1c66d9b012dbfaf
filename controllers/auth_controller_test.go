package controllers_test

import (
	"errors"
	"net/http"
	"net/http/httptest"
	"regexp"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"vanlife-api/config"
	"vanlife-api/services"
)

func TestRegisterThenLogin(t *testing.T) {
	e := newEnv(t)

	w := e.request(http.MethodPost, "/register", map[string]interface{}{
		"name": "  aNN ", "surname": "lee", "email": " Ann@Mail.COM ", "password": testPassword,
	}, "")
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())
	assert.Equal(t, "User registered", decode(t, w)["message"])

	require.Len(t, e.dispatcher.jobs, 1)
	assert.Equal(t, "ann@mail.com", e.dispatcher.jobs[0].To)
	assert.Equal(t, services.RegistrationSubject, e.dispatcher.jobs[0].Subject)

	access, refresh := e.login("ann@mail.com")
	assert.NotEmpty(t, access)
	assert.NotEmpty(t, refresh)

	w = e.request(http.MethodGet, "/getUser", nil, access)
	require.Equal(t, http.StatusOK, w.Code)
	user := decode(t, w)["logged_user"].(map[string]interface{})
	assert.Equal(t, "Ann", user["name"])
	assert.Equal(t, "Lee", user["surname"])
	assert.Equal(t, e.cfg.DefaultUserImage, user["avatar"])
}

func TestRegisterRejections(t *testing.T) {
	e := newEnv(t)
	e.register("Ann", "Lee", "ann@mail.com")

	tests := []struct {
		name    string
		body    map[string]interface{}
		message string
		flag    string
	}{
		{
			name:    "missing field",
			body:    map[string]interface{}{"name": "Bob", "surname": "Ray", "email": "bob@mail.com"},
			message: "Required data missing",
		},
		{
			name:    "long name",
			body:    map[string]interface{}{"name": strings.Repeat("a", 41), "surname": "Ray", "email": "bob@mail.com", "password": testPassword},
			message: "Name is too long",
		},
		{
			name:    "bad email",
			body:    map[string]interface{}{"name": "Bob", "surname": "Ray", "email": "bob@mail", "password": testPassword},
			message: "Invalid email",
		},
		{
			name:    "duplicate email",
			body:    map[string]interface{}{"name": "Bob", "surname": "Ray", "email": "ANN@mail.com", "password": testPassword},
			message: "This email is taken",
			flag:    "emailErr",
		},
		{
			name:    "short password",
			body:    map[string]interface{}{"name": "Bob", "surname": "Ray", "email": "bob@mail.com", "password": "short"},
			message: "Password must be at least 8 characters",
			flag:    "pwErr",
		},
		{
			name:    "duplicate wins over short password",
			body:    map[string]interface{}{"name": "Bob", "surname": "Ray", "email": "ann@mail.com", "password": "short"},
			message: "This email is taken",
			flag:    "emailErr",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			w := e.request(http.MethodPost, "/register", tt.body, "")
			assert.Equal(t, http.StatusBadRequest, w.Code)
			body := decode(t, w)
			assert.Equal(t, tt.message, body["message"])
			if tt.flag != "" {
				assert.Equal(t, true, body[tt.flag])
			}
		})
	}
}

func TestRegisterRejectsMalformedJSON(t *testing.T) {
	e := newEnv(t)

	w := e.request(http.MethodPost, "/register", `{"name":`, "")
	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Equal(t, "Invalid JSON", decode(t, w)["message"])

	w = e.request(http.MethodPost, "/register", `["not", "an", "object"]`, "")
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestRegisterCommitFailure(t *testing.T) {
	e := newEnv(t)
	e.store.FailCommits(errors.New("disk full"))

	w := e.request(http.MethodPost, "/register", map[string]interface{}{
		"name": "Ann", "surname": "Lee", "email": "ann@mail.com", "password": testPassword,
	}, "")
	assert.Equal(t, http.StatusInternalServerError, w.Code)
	assert.Equal(t, "Server Error", decode(t, w)["message"])
	assert.Empty(t, e.dispatcher.jobs)

	e.store.FailCommits(nil)
	w = e.request(http.MethodPost, "/login", map[string]interface{}{"email": "ann@mail.com", "password": testPassword}, "")
	assert.Equal(t, http.StatusUnauthorized, w.Code)
}

func TestLoginRejections(t *testing.T) {
	e := newEnv(t)
	e.register("Ann", "Lee", "ann@mail.com")

	w := e.request(http.MethodPost, "/login", map[string]interface{}{"email": "ann@mail.com"}, "")
	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Equal(t, "Required data missing", decode(t, w)["message"])

	w = e.request(http.MethodPost, "/login", map[string]interface{}{"email": "ann@mail.com", "password": "wrong-password"}, "")
	assert.Equal(t, http.StatusUnauthorized, w.Code)
	assert.Equal(t, "Wrong email or password", decode(t, w)["message"])

	w = e.request(http.MethodPost, "/login", map[string]interface{}{"email": "nobody@mail.com", "password": testPassword}, "")
	assert.Equal(t, http.StatusUnauthorized, w.Code)
	assert.Equal(t, "Wrong email or password", decode(t, w)["message"])
}

func TestBearerTokenErrors(t *testing.T) {
	e := newEnv(t)
	access := e.signUp("ann@mail.com")
	_, refresh := e.login("ann@mail.com")
	foreign, err := services.NewTokenService(&config.Config{SecretKey: "other-secret", AccessTokenTTL: time.Minute}).
		WithClock(e.clock.now).
		IssueAccess("ann@mail.com")
	require.NoError(t, err)

	tests := []struct {
		name   string
		method string
		path   string
		header string
		status int
		msg    string
	}{
		{"missing header", http.MethodGet, "/getUser", "", http.StatusUnauthorized, "Missing Authorization Header"},
		{"not bearer", http.MethodGet, "/getUser", "Token " + access, http.StatusUnprocessableEntity, "Bad Authorization header. Expected 'Authorization: Bearer <JWT>'"},
		{"malformed", http.MethodGet, "/getUser", "Bearer abc", http.StatusUnprocessableEntity, "Not enough segments"},
		{"foreign signature", http.MethodGet, "/getUser", "Bearer " + foreign, http.StatusUnprocessableEntity, "Signature verification failed"},
		{"refresh as access", http.MethodGet, "/getUser", "Bearer " + refresh, http.StatusUnprocessableEntity, "Only non-refresh tokens are allowed"},
		{"access as refresh", http.MethodPost, "/refreshToken", "Bearer " + access, http.StatusUnprocessableEntity, "Only refresh tokens are allowed"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := httptest.NewRequest(tt.method, tt.path, nil)
			if tt.header != "" {
				req.Header.Set("Authorization", tt.header)
			}
			w := httptest.NewRecorder()
			e.router.ServeHTTP(w, req)

			assert.Equal(t, tt.status, w.Code)
			body := decode(t, w)
			assert.Equal(t, tt.msg, body["msg"])
			assert.Equal(t, "Not Authorized", body["statusText"])
		})
	}
}

func TestExpiredAccessToken(t *testing.T) {
	e := newEnv(t)
	access := e.signUp("ann@mail.com")

	e.clock.advance(6 * time.Second)
	w := e.request(http.MethodGet, "/getUser", nil, access)
	assert.Equal(t, http.StatusUnauthorized, w.Code)
	assert.Equal(t, "Token has expired", decode(t, w)["msg"])
}

func TestRefreshIssuesAccessToken(t *testing.T) {
	e := newEnv(t)
	e.register("Ann", "Lee", "ann@mail.com")
	_, refresh := e.login("ann@mail.com")

	e.clock.advance(10 * time.Second)
	w := e.request(http.MethodPost, "/refreshToken", nil, refresh)
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	access := decode(t, w)["JWToken"].(string)

	w = e.request(http.MethodGet, "/getUser", nil, access)
	assert.Equal(t, http.StatusOK, w.Code)
}

var resetLink = regexp.MustCompile(`/reset-password/([A-Za-z0-9_\-.]+)`)

func (e *env) requestReset(email string) string {
	e.t.Helper()
	w := e.request(http.MethodPost, "/sendReset", map[string]interface{}{"email": email}, "")
	require.Equal(e.t, http.StatusOK, w.Code, w.Body.String())
	mail := e.mailer.last()
	require.Equal(e.t, services.ResetSubject, mail.Subject)
	m := resetLink.FindStringSubmatch(mail.HTML)
	require.Len(e.t, m, 2)
	return m[1]
}

func TestPasswordResetFlow(t *testing.T) {
	e := newEnv(t)
	e.register("Ann", "Lee", "ann@mail.com")
	token := e.requestReset("ann@mail.com")
	assert.Contains(t, e.mailer.last().HTML, "http://front.test/reset-password/"+token)

	w := e.request(http.MethodPost, "/validateToken", map[string]interface{}{"token": token}, "")
	assert.Equal(t, true, decode(t, w)["tokenValid"])

	w = e.request(http.MethodPost, "/resetPassword", map[string]interface{}{"token": token, "newPassword": "brand-new-pass"}, "")
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	assert.Equal(t, "User password updated", decode(t, w)["message"])

	w = e.request(http.MethodPost, "/login", map[string]interface{}{"email": "ann@mail.com", "password": "brand-new-pass"}, "")
	assert.Equal(t, http.StatusOK, w.Code)

	// single use
	w = e.request(http.MethodPost, "/validateToken", map[string]interface{}{"token": token}, "")
	assert.Equal(t, false, decode(t, w)["tokenValid"])
	w = e.request(http.MethodPost, "/resetPassword", map[string]interface{}{"token": token, "newPassword": "another-pass"}, "")
	assert.Equal(t, http.StatusUnauthorized, w.Code)
	assert.Equal(t, "Cannot update password", decode(t, w)["message"])
}

func TestResetTokenSurvivesFailedCommit(t *testing.T) {
	e := newEnv(t)
	e.register("Ann", "Lee", "ann@mail.com")
	token := e.requestReset("ann@mail.com")
	body := map[string]interface{}{"token": token, "newPassword": "brand-new-pass"}

	e.store.FailCommits(errors.New("disk full"))
	w := e.request(http.MethodPost, "/resetPassword", body, "")
	assert.Equal(t, http.StatusInternalServerError, w.Code)
	e.store.FailCommits(nil)

	w = e.request(http.MethodPost, "/validateToken", map[string]interface{}{"token": token}, "")
	assert.Equal(t, true, decode(t, w)["tokenValid"])

	w = e.request(http.MethodPost, "/login", map[string]interface{}{"email": "ann@mail.com", "password": testPassword}, "")
	assert.Equal(t, http.StatusOK, w.Code, "old password still works")

	w = e.request(http.MethodPost, "/resetPassword", body, "")
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())

	w = e.request(http.MethodPost, "/validateToken", map[string]interface{}{"token": token}, "")
	assert.Equal(t, false, decode(t, w)["tokenValid"])
}

func TestResetTokenExpires(t *testing.T) {
	e := newEnv(t)
	e.register("Ann", "Lee", "ann@mail.com")
	token := e.requestReset("ann@mail.com")

	e.clock.advance(5 * time.Second)
	w := e.request(http.MethodPost, "/validateToken", map[string]interface{}{"token": token}, "")
	assert.Equal(t, true, decode(t, w)["tokenValid"])

	e.clock.advance(time.Second)
	w = e.request(http.MethodPost, "/validateToken", map[string]interface{}{"token": token}, "")
	assert.Equal(t, false, decode(t, w)["tokenValid"])

	w = e.request(http.MethodPost, "/resetPassword", map[string]interface{}{"token": token, "newPassword": "brand-new-pass"}, "")
	assert.Equal(t, http.StatusUnauthorized, w.Code)
}

func TestResetPasswordRejections(t *testing.T) {
	e := newEnv(t)
	e.register("Ann", "Lee", "ann@mail.com")
	token := e.requestReset("ann@mail.com")

	w := e.request(http.MethodPost, "/resetPassword", map[string]interface{}{"token": token}, "")
	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Equal(t, "Enter the new password", decode(t, w)["message"])

	w = e.request(http.MethodPost, "/resetPassword", map[string]interface{}{"token": token, "newPassword": "short"}, "")
	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Equal(t, "Password must be at least 8 characters", decode(t, w)["message"])

	// rejected attempts do not burn the token
	w = e.request(http.MethodPost, "/validateToken", map[string]interface{}{"token": token}, "")
	assert.Equal(t, true, decode(t, w)["tokenValid"])

	w = e.request(http.MethodPost, "/resetPassword", map[string]interface{}{"token": "garbage", "newPassword": "brand-new-pass"}, "")
	assert.Equal(t, http.StatusUnauthorized, w.Code)
}

func TestSendResetRejections(t *testing.T) {
	e := newEnv(t)
	e.register("Ann", "Lee", "ann@mail.com")

	w := e.request(http.MethodPost, "/sendReset", map[string]interface{}{}, "")
	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Equal(t, "Required data missing", decode(t, w)["message"])

	w = e.request(http.MethodPost, "/sendReset", map[string]interface{}{"email": "nobody@mail.com"}, "")
	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Equal(t, "Email is not registered", decode(t, w)["message"])

	e.mailer.err = errors.New("smtp down")
	w = e.request(http.MethodPost, "/sendReset", map[string]interface{}{"email": "ann@mail.com"}, "")
	assert.Equal(t, http.StatusInternalServerError, w.Code)
}
