// Package handler provides unit tests for the HTTP front end.
package handler

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"net/url"
	"strings"
	"testing"
	"time"

	"github.com/api-debugger/internal/backend"
	"github.com/api-debugger/internal/config"
	"github.com/api-debugger/internal/rules"
	"github.com/api-debugger/internal/service"
	"github.com/api-debugger/internal/session"
	"github.com/api-debugger/pkg/sanitizer"
	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

func init() {
	gin.SetMode(gin.TestMode)
}

const testSecret = "handler-test-secret"

func newTestRouter(t *testing.T, client backend.Client) *gin.Engine {
	t.Helper()
	if client == nil {
		engine := rules.NewEngine(rules.DefaultRules(), rules.DefaultThreshold, zap.NewNop())
		client = backend.NewMockClient(engine, zap.NewNop())
	}
	return NewRouter(RouterOptions{
		Client:       client,
		Workspaces:   service.NewWorkspaces(client, sanitizer.New(4096), time.Hour, zap.NewNop()),
		Verifier:     session.NewVerifier(testSecret, false),
		WorkspaceTTL: time.Hour,
		Logger:       zap.NewNop(),
	})
}

func testToken(t *testing.T) string {
	t.Helper()
	return tokenFor(t, session.Identity{Subject: "user-1", Name: "Ada Lovelace", Email: "ada@example.com"})
}

func tokenFor(t *testing.T, id session.Identity) string {
	t.Helper()
	token, err := session.NewVerifier(testSecret, false).Issue(id, time.Hour)
	if err != nil {
		t.Fatalf("Issue() error = %v", err)
	}
	return token
}

// browser replays cookies between requests.
type browser struct {
	t       *testing.T
	router  *gin.Engine
	cookies map[string]*http.Cookie
}

func newBrowser(t *testing.T, router *gin.Engine, signedIn bool) *browser {
	b := &browser{t: t, router: router, cookies: map[string]*http.Cookie{}}
	if signedIn {
		b.cookies[session.CookieName] = &http.Cookie{Name: session.CookieName, Value: testToken(t)}
	}
	return b
}

func (b *browser) do(req *http.Request) *httptest.ResponseRecorder {
	for _, c := range b.cookies {
		req.AddCookie(c)
	}
	w := httptest.NewRecorder()
	b.router.ServeHTTP(w, req)
	for _, c := range w.Result().Cookies() {
		b.cookies[c.Name] = c
	}
	return w
}

func (b *browser) get(path string) *httptest.ResponseRecorder {
	return b.do(httptest.NewRequest(http.MethodGet, path, nil))
}

func (b *browser) postForm(path string, values url.Values) *httptest.ResponseRecorder {
	req := httptest.NewRequest(http.MethodPost, path, strings.NewReader(values.Encode()))
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	return b.do(req)
}

func (b *browser) postJSON(path, body string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(http.MethodPost, path, strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	return b.do(req)
}

func TestHealthAndReady(t *testing.T) {
	router := newTestRouter(t, nil)

	w := httptest.NewRecorder()
	router.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/health", nil))
	if w.Code != http.StatusOK || !strings.Contains(w.Body.String(), "healthy") {
		t.Errorf("/health = %d %s", w.Code, w.Body.String())
	}
	if w.Header().Get("X-Request-ID") == "" {
		t.Error("missing X-Request-ID header")
	}

	w = httptest.NewRecorder()
	router.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/ready", nil))
	if w.Code != http.StatusOK || w.Body.String() != `{"status":"healthy","mode":"mock"}` {
		t.Errorf("/ready = %d %s", w.Code, w.Body.String())
	}
}

func TestReady_BackendDown(t *testing.T) {
	server := httptest.NewServer(http.NotFoundHandler())
	baseURL := server.URL
	server.Close()

	client := backend.NewHTTPClient(&config.BackendConfig{BaseURL: baseURL, Timeout: time.Second}, sanitizer.New(4096), zap.NewNop())
	router := newTestRouter(t, client)

	w := httptest.NewRecorder()
	router.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/ready", nil))
	if w.Code != http.StatusServiceUnavailable {
		t.Errorf("/ready = %d, want 503", w.Code)
	}
}

func TestLanding(t *testing.T) {
	router := newTestRouter(t, nil)

	anon := newBrowser(t, router, false).get("/")
	if anon.Code != http.StatusOK || strings.Contains(anon.Body.String(), "Continue as") {
		t.Errorf("anonymous landing = %d", anon.Code)
	}

	signed := newBrowser(t, router, true).get("/")
	if !strings.Contains(signed.Body.String(), "Continue as Ada Lovelace") {
		t.Error("signed-in landing should greet the user")
	}
}

func TestDashboard_RequiresIdentity(t *testing.T) {
	router := newTestRouter(t, nil)
	b := newBrowser(t, router, false)

	w := b.get("/dashboard")
	if w.Code != http.StatusSeeOther || w.Header().Get("Location") != "/" {
		t.Errorf("GET /dashboard = %d %s", w.Code, w.Header().Get("Location"))
	}

	w = b.postJSON("/api/v1/debug", `{"issue":"x"}`)
	if w.Code != http.StatusUnauthorized {
		t.Errorf("POST /api/v1/debug = %d, want 401", w.Code)
	}
}

func TestDashboard_ExampleThenDebug(t *testing.T) {
	router := newTestRouter(t, nil)
	b := newBrowser(t, router, true)

	w := b.get("/dashboard")
	if w.Code != http.StatusOK {
		t.Fatalf("GET /dashboard = %d", w.Code)
	}
	if !strings.Contains(w.Body.String(), "Ready to Debug") {
		t.Error("fresh dashboard should show the placeholder")
	}
	if _, ok := b.cookies[WorkspaceCookie]; !ok {
		t.Fatal("workspace cookie not issued")
	}

	w = b.postForm("/dashboard/example/401", nil)
	if w.Code != http.StatusSeeOther {
		t.Fatalf("load example = %d", w.Code)
	}
	page := b.get("/dashboard").Body.String()
	if !strings.Contains(page, "https://api.github.com/user") || !strings.Contains(page, "Ready to Debug") {
		t.Error("example should fill the form without touching the result panel")
	}

	w = b.postForm("/dashboard/debug", url.Values{
		"issue":       {"Getting 401 Unauthorized error when trying to access the API"},
		"method":      {"GET"},
		"url":         {"https://api.github.com/user"},
		"headers":     {`{"Authorization": "Bearer expired_token_123"}`},
		"status_code": {"401"},
		"auth_type":   {"bearer"},
	})
	if w.Code != http.StatusSeeOther {
		t.Fatalf("submit = %d", w.Code)
	}
	page = b.get("/dashboard").Body.String()
	for _, want := range []string{"Analysis Complete", "Root Cause", "Solution", "Detailed Analysis"} {
		if !strings.Contains(page, want) {
			t.Errorf("result page missing %q", want)
		}
	}

	w = b.postForm("/dashboard/debug", url.Values{"issue": {"x"}, "url": {"https://x"}, "headers": {"{broken"}})
	page = b.get("/dashboard").Body.String()
	if !strings.Contains(page, "headers must be a JSON object") {
		t.Error("validation failure should be shown in the error slot")
	}

	if w := b.postForm("/dashboard/example/418", nil); w.Code != http.StatusNotFound {
		t.Errorf("unknown example = %d, want 404", w.Code)
	}
}

func TestAPI_Debug(t *testing.T) {
	tests := []struct {
		name       string
		body       string
		wantStatus int
		wantPhase  service.Phase
	}{
		{
			name:       "diagnosed",
			body:       `{"issue":"Getting 429","status_code":"429","response_body":"Too Many Requests"}`,
			wantStatus: http.StatusOK,
			wantPhase:  service.PhaseSucceeded,
		},
		{
			name:       "validation failure",
			body:       `{"issue":"   "}`,
			wantStatus: http.StatusBadRequest,
			wantPhase:  service.PhaseFailed,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			b := newBrowser(t, newTestRouter(t, nil), true)
			w := b.postJSON("/api/v1/debug", tt.body)

			if w.Code != tt.wantStatus {
				t.Fatalf("status = %d, want %d: %s", w.Code, tt.wantStatus, w.Body.String())
			}
			var resp StateResponse
			if err := json.Unmarshal(w.Body.Bytes(), &resp); err != nil {
				t.Fatalf("decode: %v", err)
			}
			if resp.State.Phase != tt.wantPhase {
				t.Errorf("phase = %s, want %s", resp.State.Phase, tt.wantPhase)
			}
			if tt.wantPhase == service.PhaseSucceeded && (resp.View.RootCause == nil || !resp.View.Complete) {
				t.Errorf("view = %+v", resp.View)
			}
			if tt.wantPhase == service.PhaseFailed && resp.View.Error == nil {
				t.Errorf("view = %+v", resp.View)
			}

			state := b.get("/api/v1/state")
			if !strings.Contains(state.Body.String(), string(tt.wantPhase)) {
				t.Errorf("state endpoint = %s", state.Body.String())
			}
		})
	}
}

func TestWorkspace_NotSharedBetweenUsers(t *testing.T) {
	router := newTestRouter(t, nil)
	b := newBrowser(t, router, true)

	w := b.postJSON("/api/v1/debug", `{"issue":"Getting 401","method":"GET","url":"https://api.github.com/user",`+
		`"headers":"{\"Authorization\": \"Bearer USER_ONE_SECRET\"}","status_code":"401","auth_type":"bearer"}`)
	if w.Code != http.StatusOK {
		t.Fatalf("debug as user-1 = %d %s", w.Code, w.Body.String())
	}
	firstWorkspace := b.cookies[WorkspaceCookie].Value

	b.cookies[session.CookieName] = &http.Cookie{
		Name:  session.CookieName,
		Value: tokenFor(t, session.Identity{Subject: "user-2", Name: "Grace Hopper"}),
	}

	state := b.get("/api/v1/state")
	if state.Code != http.StatusOK {
		t.Fatalf("state as user-2 = %d", state.Code)
	}
	if strings.Contains(state.Body.String(), "USER_ONE_SECRET") {
		t.Error("user-2 sees user-1's workspace")
	}
	if !strings.Contains(state.Body.String(), string(service.PhaseIdle)) {
		t.Errorf("user-2 should start idle: %s", state.Body.String())
	}
	if b.cookies[WorkspaceCookie].Value == firstWorkspace {
		t.Error("workspace cookie should be reissued for the new user")
	}

	page := b.get("/dashboard").Body.String()
	if strings.Contains(page, "USER_ONE_SECRET") {
		t.Error("dashboard leaks user-1's headers to user-2")
	}
}

func TestAPI_Examples(t *testing.T) {
	router := newTestRouter(t, nil)
	b := newBrowser(t, router, false)

	w := b.get("/api/v1/examples")
	if w.Code != http.StatusOK || !strings.Contains(w.Body.String(), "Rate Limit") {
		t.Errorf("/api/v1/examples = %d %s", w.Code, w.Body.String())
	}

	w = b.get("/api/v1/examples/401")
	if w.Code != http.StatusOK || !strings.Contains(w.Body.String(), "Bad credentials") {
		t.Errorf("/api/v1/examples/401 = %d %s", w.Code, w.Body.String())
	}

	if w := b.get("/api/v1/examples/500"); w.Code != http.StatusNotFound {
		t.Errorf("unknown example = %d", w.Code)
	}
}

func TestAPI_MeAndTestRequest(t *testing.T) {
	router := newTestRouter(t, nil)

	anon := newBrowser(t, router, false).get("/api/v1/me")
	if !strings.Contains(anon.Body.String(), `"signed_in":false`) {
		t.Errorf("anonymous /me = %s", anon.Body.String())
	}

	b := newBrowser(t, router, true)
	me := b.get("/api/v1/me")
	if !strings.Contains(me.Body.String(), "ada@example.com") {
		t.Errorf("/me = %s", me.Body.String())
	}

	echo := b.postJSON("/api/v1/test-request", `{"method":"POST","url":"https://x"}`)
	if echo.Code != http.StatusOK || !strings.Contains(echo.Body.String(), `"mode":"mock"`) {
		t.Errorf("/test-request = %d %s", echo.Code, echo.Body.String())
	}
}

func TestTheme(t *testing.T) {
	router := newTestRouter(t, nil)
	b := newBrowser(t, router, false)

	w := b.postForm("/theme", url.Values{"return": {"//evil.example"}})
	if w.Code != http.StatusSeeOther || w.Header().Get("Location") != "/" {
		t.Errorf("theme redirect = %d %s", w.Code, w.Header().Get("Location"))
	}
	if c := b.cookies[ThemeCookie]; c == nil || c.Value != "dark" {
		t.Fatalf("theme cookie = %+v", c)
	}
	if !strings.Contains(b.get("/").Body.String(), `data-theme="dark"`) {
		t.Error("page should render the dark theme")
	}

	b.postForm("/theme", url.Values{"return": {"/dashboard"}})
	if c := b.cookies[ThemeCookie]; c.Value != "light" {
		t.Errorf("theme cookie after second toggle = %q", c.Value)
	}
}
