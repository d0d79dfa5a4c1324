package api

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/charmbracelet/log"

	"github.com/matzehuels/regalloc/pkg/errors"
	"github.com/matzehuels/regalloc/pkg/observability"
)

const triangleJSON = `{
  "registers": 2,
  "classes": [{"name": "gpr", "range": "r0-r1"}],
  "nodes": [{"name": "a", "class": "gpr"}, {"name": "b", "class": "gpr"}, {"name": "c", "class": "gpr"}],
  "interferences": [["a", "b"], ["b", "c"], ["a", "c"]]
}`

func newTestServer(t *testing.T) (http.Handler, *bytes.Buffer) {
	t.Helper()
	var logs bytes.Buffer
	return NewServer(nil, log.New(&logs)), &logs
}

func post(t *testing.T, h http.Handler, path, body string) *httptest.ResponseRecorder {
	t.Helper()
	req := httptest.NewRequest(http.MethodPost, path, strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	return rec
}

func decodeBody[T any](t *testing.T, rec *httptest.ResponseRecorder) T {
	t.Helper()
	var v T
	if err := json.NewDecoder(rec.Body).Decode(&v); err != nil {
		t.Fatalf("decode response: %v", err)
	}
	return v
}

func TestHealthz(t *testing.T) {
	h, _ := newTestServer(t)
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/healthz", nil))

	if rec.Code != http.StatusOK || rec.Body.String() != "ok" {
		t.Errorf("GET /healthz = %d %q, want 200 ok", rec.Code, rec.Body.String())
	}
}

func TestVersion(t *testing.T) {
	h, _ := newTestServer(t)
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/version", nil))

	info := decodeBody[map[string]string](t, rec)
	if info["version"] == "" {
		t.Errorf("GET /version = %v, want a version", info)
	}
}

func TestAllocate(t *testing.T) {
	h, logs := newTestServer(t)
	rec := post(t, h, "/v1/allocate", `{"problem": `+triangleJSON+`, "options": {"formats": ["dot"], "trace": true}}`)

	if rec.Code != http.StatusOK {
		t.Fatalf("POST /v1/allocate = %d: %s", rec.Code, rec.Body.String())
	}
	resp := decodeBody[AllocateResponse](t, rec)
	if !resp.Success || len(resp.Spilled) != 1 || resp.Spilled[0] != "a" {
		t.Errorf("response = %+v, want success after spilling a", resp.Result)
	}
	if resp.Assignments["b"] == resp.Assignments["c"] {
		t.Errorf("interfering b and c share %s", resp.Assignments["b"])
	}
	if !strings.HasPrefix(resp.Artifacts["dot"], "graph G {") {
		t.Errorf("dot artifact = %q", resp.Artifacts["dot"])
	}
	if len(resp.Trace) == 0 {
		t.Error("trace requested but empty")
	}
	if !strings.Contains(logs.String(), "/v1/allocate") {
		t.Errorf("request not logged:\n%s", logs.String())
	}
}

func TestAllocateErrors(t *testing.T) {
	unspillable := strings.Replace(triangleJSON, `"nodes": [{"name": "a", "class": "gpr"}, {"name": "b", "class": "gpr"}, {"name": "c", "class": "gpr"}]`,
		`"nodes": [{"name": "a", "class": "gpr", "spill_cost": 0}, {"name": "b", "class": "gpr", "spill_cost": 0}, {"name": "c", "class": "gpr", "spill_cost": 0}]`, 1)

	tests := []struct {
		name   string
		body   string
		status int
		code   errors.Code
	}{
		{"malformed json", `{"problem": `, http.StatusBadRequest, errors.ErrCodeInvalidFormat},
		{"unknown envelope key", `{"problem": ` + triangleJSON + `, "colour": 1}`, http.StatusBadRequest, errors.ErrCodeInvalidFormat},
		{"missing problem", `{}`, http.StatusBadRequest, errors.ErrCodeInvalidInput},
		{"unknown class", `{"problem": {"registers": 1, "classes": [{"name": "x", "members": ["r0"]}], "nodes": [{"name": "a", "class": "y"}]}}`, http.StatusBadRequest, errors.ErrCodeInvalidInput},
		{"bad heuristic", `{"problem": ` + triangleJSON + `, "options": {"heuristic": "dice"}}`, http.StatusBadRequest, errors.ErrCodeInvalidInput},
		{"spill required", `{"problem": ` + unspillable + `}`, http.StatusUnprocessableEntity, errors.ErrCodeSpillRequired},
		{"register count over limit", `{"problem": {"registers": 40000, "classes": [{"name": "a", "range": "r0-r1"}], "nodes": [{"name": "x", "class": "a"}]}}`, http.StatusBadRequest, errors.ErrCodeInvalidInput},
		{"layout base over limit", `{"problem": {"layout": {"base": 200000, "sizes": [1]}, "nodes": [{"name": "x", "class": "size1"}]}}`, http.StatusBadRequest, errors.ErrCodeInvalidInput},
	}

	h, _ := newTestServer(t)
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec := post(t, h, "/v1/allocate", tt.body)
			if rec.Code != tt.status {
				t.Fatalf("status = %d, want %d: %s", rec.Code, tt.status, rec.Body.String())
			}
			resp := decodeBody[ErrorResponse](t, rec)
			if resp.Code != tt.code {
				t.Errorf("code = %s, want %s", resp.Code, tt.code)
			}
			if resp.RequestID == "" {
				t.Error("error response missing request id")
			}
			if tt.code == errors.ErrCodeSpillRequired && (resp.Attempts != 1 || len(resp.Remaining) != 1) {
				t.Errorf("spill details = %d attempts, remaining %v", resp.Attempts, resp.Remaining)
			}
		})
	}
}

func TestGeometryRejectsOversizeRegisterFile(t *testing.T) {
	h, _ := newTestServer(t)
	rec := post(t, h, "/v1/geometry", `{"problem": {"registers": 40000, "classes": [{"name": "a", "range": "r0-r1"}], "nodes": []}}`)
	if rec.Code != http.StatusBadRequest {
		t.Fatalf("status = %d, want %d: %s", rec.Code, http.StatusBadRequest, rec.Body.String())
	}
	if resp := decodeBody[ErrorResponse](t, rec); resp.Code != errors.ErrCodeInvalidInput {
		t.Errorf("code = %s, want %s", resp.Code, errors.ErrCodeInvalidInput)
	}
}

func TestAllocateRejectsOtherContentTypes(t *testing.T) {
	h, _ := newTestServer(t)
	req := httptest.NewRequest(http.MethodPost, "/v1/allocate", strings.NewReader(`registers = 2`))
	req.Header.Set("Content-Type", "application/toml")
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)

	if rec.Code != http.StatusUnsupportedMediaType {
		t.Errorf("status = %d, want %d", rec.Code, http.StatusUnsupportedMediaType)
	}
}

func TestGeometry(t *testing.T) {
	h, _ := newTestServer(t)
	body := `{"problem": {"layout": {"base": 4, "sizes": [1, 2]}, "nodes": [{"name": "v", "class": "size2"}]}}`
	rec := post(t, h, "/v1/geometry", body)

	if rec.Code != http.StatusOK {
		t.Fatalf("POST /v1/geometry = %d: %s", rec.Code, rec.Body.String())
	}
	resp := decodeBody[GeometryResponse](t, rec)
	if resp.Registers != 7 || resp.Nodes != 1 || len(resp.Classes) != 2 {
		t.Fatalf("response = %+v", resp)
	}
	if c := resp.Classes[1]; c.Name != "size2" || c.P != 3 || c.Members[0] != "g0-g1" {
		t.Errorf("size2 class = %+v", c)
	}
	want := [][]int{{1, 2}, {2, 3}}
	for b := range want {
		for c := range want[b] {
			if resp.Q[b][c] != want[b][c] {
				t.Errorf("q[%d][%d] = %d, want %d", b, c, resp.Q[b][c], want[b][c])
			}
		}
	}
}

func TestHTTPHooks(t *testing.T) {
	hooks := &recordingHTTPHooks{}
	observability.SetHTTPHooks(hooks)
	t.Cleanup(observability.Reset)

	h, _ := newTestServer(t)
	post(t, h, "/v1/allocate", `{}`)

	hooks.mu.Lock()
	defer hooks.mu.Unlock()
	if hooks.requests != 1 || len(hooks.statuses) != 1 || hooks.statuses[0] != http.StatusBadRequest {
		t.Errorf("requests = %d, statuses = %v", hooks.requests, hooks.statuses)
	}
}

type recordingHTTPHooks struct {
	observability.NoopHTTPHooks

	mu       sync.Mutex
	requests int
	statuses []int
}

func (h *recordingHTTPHooks) OnRequest(context.Context, string, string) {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.requests++
}

func (h *recordingHTTPHooks) OnResponse(_ context.Context, _, _ string, status int, _ time.Duration) {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.statuses = append(h.statuses, status)
}
