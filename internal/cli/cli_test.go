package cli

import (
	"bytes"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync/atomic"
	"testing"

	"github.com/fatih/color"
)

func init() {
	color.NoColor = true
}

func execute(t *testing.T, args ...string) (string, string, error) {
	t.Helper()
	t.Setenv("API_URL", "")
	t.Setenv("BACKEND_MOCK_MODE", "")

	var out, errOut bytes.Buffer
	root := NewRootCmd("test")
	root.SetOut(&out)
	root.SetErr(&errOut)
	root.SetArgs(args)
	err := root.Execute()
	return out.String(), errOut.String(), err
}

func TestVersion(t *testing.T) {
	out, _, err := execute(t, "version")
	if err != nil || out != "apidebug version test\n" {
		t.Errorf("version = %q, %v", out, err)
	}
}

func TestExample(t *testing.T) {
	out, _, err := execute(t, "example", "401")
	if err != nil {
		t.Fatalf("example error = %v", err)
	}
	if !strings.Contains(out, "url: https://api.github.com/user") || !strings.Contains(out, "auth_type: bearer") {
		t.Errorf("example output = %s", out)
	}

	if _, _, err := execute(t, "example", "999"); err == nil {
		t.Error("unknown example should fail")
	}

	out, _, _ = execute(t, "example", "-o", "json")
	if !strings.Contains(out, `"label": "Rate Limit"`) {
		t.Errorf("catalogue output = %s", out)
	}
}

func TestDebug_Mock(t *testing.T) {
	out, _, err := execute(t, "debug", "--mock", "--example", "401", "-o", "json")
	if err != nil {
		t.Fatalf("debug error = %v", err)
	}
	var decoded struct {
		State struct {
			Phase string `json:"phase"`
		} `json:"state"`
	}
	if err := json.Unmarshal([]byte(out), &decoded); err != nil {
		t.Fatalf("invalid json: %v\n%s", err, out)
	}
	if decoded.State.Phase != "succeeded" {
		t.Errorf("phase = %q", decoded.State.Phase)
	}
}

func TestDebug_ValidationFailure(t *testing.T) {
	out, _, err := execute(t, "debug", "--mock", "issue", "--url", "https://x", "--headers", "{bad")
	if !errors.Is(err, ErrDiagnosisFailed) {
		t.Fatalf("error = %v, want ErrDiagnosisFailed", err)
	}
	if !strings.Contains(out, "headers must be a JSON object") {
		t.Errorf("output = %s", out)
	}
}

func TestDebug_Backend(t *testing.T) {
	var calls int32
	var got map[string]any
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		atomic.AddInt32(&calls, 1)
		body, _ := io.ReadAll(r.Body)
		json.Unmarshal(body, &got)
		w.WriteHeader(http.StatusInternalServerError)
		io.WriteString(w, `{"detail":"Agent pipeline failed"}`)
	}))
	defer server.Close()

	out, _, err := execute(t, "debug", "--api-url", server.URL, "--example", "429", "--status", "503")
	if !errors.Is(err, ErrDiagnosisFailed) {
		t.Fatalf("error = %v", err)
	}
	if calls != 1 {
		t.Errorf("backend called %d times, want 1", calls)
	}
	if !strings.Contains(out, "Agent pipeline failed") {
		t.Errorf("output = %s", out)
	}
	resp, _ := got["api_response"].(map[string]any)
	if resp["status_code"] != float64(503) {
		t.Errorf("flag override not applied: %v", got)
	}
}

func TestHealth(t *testing.T) {
	out, _, err := execute(t, "health", "--mock", "-o", "json")
	if err != nil || !strings.Contains(out, `"mode": "mock"`) {
		t.Errorf("health = %q, %v", out, err)
	}
}

func TestTestRequest(t *testing.T) {
	if _, _, err := execute(t, "test-request", "--mock"); err == nil {
		t.Error("missing --url should fail")
	}

	out, _, err := execute(t, "test-request", "--mock", "--url", "https://x", "-X", "POST", "-d", `{"a":1}`)
	if err != nil {
		t.Fatalf("test-request error = %v", err)
	}
	if !strings.Contains(out, "method: POST") {
		t.Errorf("output = %s", out)
	}
}

func TestUnknownOutputFormat(t *testing.T) {
	if _, _, err := execute(t, "example", "-o", "xml"); err == nil {
		t.Error("unknown output format should fail")
	}
}
