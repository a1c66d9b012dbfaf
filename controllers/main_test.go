package controllers_test

import (
	"bytes"
	"context"
	"encoding/json"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"sync"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus/hooks/test"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"
	"vanlife-api/config"
	"vanlife-api/middleware"
	"vanlife-api/repositories/memory"
	"vanlife-api/routes"
	"vanlife-api/services"
)

const (
	testPassword = "password1"
	unknownUUID  = "3f1c2a8e-7b5d-4e2a-9c61-0d8e4b7a5f90"
)

type fakeMailer struct {
	mu   sync.Mutex
	sent []services.MailJob
	err  error
}

func (m *fakeMailer) Send(job services.MailJob) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.err != nil {
		return m.err
	}
	m.sent = append(m.sent, job)
	return nil
}

func (m *fakeMailer) last() services.MailJob {
	m.mu.Lock()
	defer m.mu.Unlock()
	if len(m.sent) == 0 {
		return services.MailJob{}
	}
	return m.sent[len(m.sent)-1]
}

type fakeDispatcher struct {
	mu   sync.Mutex
	jobs []services.MailJob
}

func (d *fakeDispatcher) Submit(job services.MailJob) {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.jobs = append(d.jobs, job)
}

func (d *fakeDispatcher) Close(context.Context) error { return nil }

type clock struct {
	mu sync.Mutex
	t  time.Time
}

func (c *clock) now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.t
}

func (c *clock) advance(d time.Duration) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.t = c.t.Add(d)
}

type env struct {
	t          *testing.T
	router     *gin.Engine
	cfg        *config.Config
	store      *memory.Store
	tokens     *services.TokenService
	media      *services.MediaStore
	mailer     *fakeMailer
	dispatcher *fakeDispatcher
	clock      *clock
}

// newEnv builds the full router over an in-memory store. The clock starts
// at 2024-05-10 12:00 UTC, which is also the server timezone.
func newEnv(t *testing.T) *env {
	t.Helper()
	gin.SetMode(gin.TestMode)

	root := t.TempDir()
	cfg := &config.Config{
		Environment:      config.EnvTest,
		SecretKey:        "test-secret",
		Salt:             "test-salt",
		AccessTokenTTL:   5 * time.Second,
		RefreshTokenTTL:  time.Minute,
		ResetTokenTTL:    5 * time.Second,
		ServerTimezone:   time.UTC,
		FrontendURL:      "http://front.test",
		StaticFolder:     root,
		DefaultUserImage: "static/user/.default/default.png",
		DefaultVanImage:  "static/vans/.default/default.jpg",
		AdminUsername:    "admin",
		AdminPassword:    "admin-pass",
		AdminSessionTTL:  time.Hour,
	}
	for _, def := range []string{"user/.default/default.png", "vans/.default/default.jpg"} {
		full := filepath.Join(root, filepath.FromSlash(def))
		require.NoError(t, os.MkdirAll(filepath.Dir(full), 0o755))
		require.NoError(t, os.WriteFile(full, []byte("default"), 0o644))
	}

	c := &clock{t: time.Date(2024, 5, 10, 12, 0, 0, 0, time.UTC)}
	log, _ := test.NewNullLogger()
	tokens := services.NewTokenService(cfg).WithClock(c.now)
	ledger := services.NewMemoryTokenLedger().WithClock(c.now)

	e := &env{
		t:          t,
		cfg:        cfg,
		store:      memory.NewStore(),
		tokens:     tokens,
		media:      services.NewMediaStore(root, cfg.DefaultUserImage, cfg.DefaultVanImage),
		mailer:     &fakeMailer{},
		dispatcher: &fakeDispatcher{},
		clock:      c,
	}
	e.router = routes.NewRouter(routes.Dependencies{
		Config:     cfg,
		Store:      e.store,
		Tokens:     tokens,
		Resets:     services.NewResetService(tokens, ledger, log),
		Hasher:     services.NewBcryptHasher(bcrypt.MinCost),
		Media:      e.media,
		Mailer:     e.mailer,
		Dispatcher: e.dispatcher,
		Metrics:    middleware.NewMetrics(),
		Log:        log,
		Clock:      c.now,
	})
	return e
}

// request sends body as JSON; a string body is sent verbatim.
func (e *env) request(method, path string, body interface{}, token string) *httptest.ResponseRecorder {
	e.t.Helper()
	var reader *bytes.Reader
	switch b := body.(type) {
	case nil:
		reader = bytes.NewReader(nil)
	case string:
		reader = bytes.NewReader([]byte(b))
	default:
		raw, err := json.Marshal(b)
		require.NoError(e.t, err)
		reader = bytes.NewReader(raw)
	}

	req := httptest.NewRequest(method, path, reader)
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	w := httptest.NewRecorder()
	e.router.ServeHTTP(w, req)
	return w
}

func (e *env) upload(path, token string, fields map[string]string, fileField, filename string, content []byte) *httptest.ResponseRecorder {
	e.t.Helper()
	var buf bytes.Buffer
	mw := multipart.NewWriter(&buf)
	for k, v := range fields {
		require.NoError(e.t, mw.WriteField(k, v))
	}
	if fileField != "" {
		part, err := mw.CreateFormFile(fileField, filename)
		require.NoError(e.t, err)
		_, err = part.Write(content)
		require.NoError(e.t, err)
	}
	require.NoError(e.t, mw.Close())

	req := httptest.NewRequest(http.MethodPost, path, &buf)
	req.Header.Set("Content-Type", mw.FormDataContentType())
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	w := httptest.NewRecorder()
	e.router.ServeHTTP(w, req)
	return w
}

func decode(t *testing.T, w *httptest.ResponseRecorder) map[string]interface{} {
	t.Helper()
	var body map[string]interface{}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &body), w.Body.String())
	return body
}

func (e *env) register(name, surname, email string) {
	e.t.Helper()
	w := e.request(http.MethodPost, "/register", map[string]interface{}{
		"name": name, "surname": surname, "email": email, "password": testPassword,
	}, "")
	require.Equal(e.t, http.StatusCreated, w.Code, w.Body.String())
}

// login returns the access and refresh tokens.
func (e *env) login(email string) (string, string) {
	e.t.Helper()
	w := e.request(http.MethodPost, "/login", map[string]interface{}{
		"email": email, "password": testPassword,
	}, "")
	require.Equal(e.t, http.StatusOK, w.Code, w.Body.String())
	body := decode(e.t, w)
	return body["JWToken"].(string), body["RFToken"].(string)
}

// signUp registers and logs in a user and returns the access token.
func (e *env) signUp(email string) string {
	e.t.Helper()
	e.register("Ann", "Lee", email)
	access, _ := e.login(email)
	return access
}

func (e *env) addVan(token, name string, price int) string {
	e.t.Helper()
	w := e.request(http.MethodPost, "/addVan", map[string]interface{}{
		"name": name, "description": "A cosy van", "type": "Simple", "pricePerDay": price,
	}, token)
	require.Equal(e.t, http.StatusCreated, w.Code, w.Body.String())
	return decode(e.t, w)["vanUUID"].(string)
}
