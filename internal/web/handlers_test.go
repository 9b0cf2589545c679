package web

import (
	"bytes"
	"encoding/json"
	"io"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/partstash/partstash/internal/bom"
	"github.com/partstash/partstash/internal/config"
	"github.com/partstash/partstash/internal/parts"
	"github.com/partstash/partstash/internal/store"
)

func newTestServer() *Server {
	return newTestServerWithCap(1 << 20)
}

func newTestServerWithCap(maxFileSize int64) *Server {
	cfg := &config.Config{
		Server: config.ServerConfig{
			Host:            "127.0.0.1",
			Port:            0,
			RequestTimeout:  30 * time.Second,
			ShutdownTimeout: time.Second,
		},
		Store:   config.StoreConfig{Backend: config.BackendMemory},
		Ingest:  config.IngestConfig{MaxFileSize: maxFileSize},
		LPN:     config.LPNConfig{Prefix: "PRT"},
		Rate:    config.RateLimitConfig{Enabled: false},
		Logging: config.LoggingConfig{Level: "error", Format: "text"},
	}
	svc := parts.NewService(store.NewMemory(), cfg.LPN.Prefix, nil)
	return NewServer(svc, cfg)
}

func doRequest(t *testing.T, srv *Server, method, path, contentType string, body io.Reader) *httptest.ResponseRecorder {
	t.Helper()
	req := httptest.NewRequest(method, path, body)
	req.Header.Set("X-User-ID", "u1")
	if contentType != "" {
		req.Header.Set("Content-Type", contentType)
	}
	rec := httptest.NewRecorder()
	srv.Router().ServeHTTP(rec, req)
	return rec
}

func decodeBody(t *testing.T, rec *httptest.ResponseRecorder, v any) {
	t.Helper()
	if err := json.NewDecoder(rec.Body).Decode(v); err != nil {
		t.Fatalf("decode response: %v (body: %s)", err, rec.Body.String())
	}
}

func importCSV(t *testing.T, srv *Server, project, csv string) *parts.ImportResult {
	t.Helper()
	rec := doRequest(t, srv, http.MethodPost, "/api/projects/"+project+"/imports", "text/csv", strings.NewReader(csv))
	if rec.Code != http.StatusCreated {
		t.Fatalf("import status = %d, body: %s", rec.Code, rec.Body.String())
	}
	var res parts.ImportResult
	decodeBody(t, rec, &res)
	return &res
}

func TestHealthz(t *testing.T) {
	srv := newTestServer()
	req := httptest.NewRequest(http.MethodGet, "/healthz", nil)
	rec := httptest.NewRecorder()
	srv.Router().ServeHTTP(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200", rec.Code)
	}
	if ct := rec.Header().Get("Content-Type"); ct != "application/json" {
		t.Errorf("Content-Type = %q", ct)
	}
}

func TestAPIRequiresUser(t *testing.T) {
	srv := newTestServer()
	req := httptest.NewRequest(http.MethodGet, "/api/projects/amp/components", nil)
	rec := httptest.NewRecorder()
	srv.Router().ServeHTTP(rec, req)

	if rec.Code != http.StatusUnauthorized {
		t.Fatalf("status = %d, want 401", rec.Code)
	}
	var resp ErrorResponse
	decodeBody(t, rec, &resp)
	if resp.Code != "AUTH_MISSING_USER" {
		t.Errorf("code = %q", resp.Code)
	}
}

func TestImportHandler(t *testing.T) {
	srv := newTestServer()
	res := importCSV(t, srv, "amp", "Designator,Value\nR1,100k\nC1;C2,10uF")

	if res.Imported != 3 || res.Pending != 0 {
		t.Errorf("Imported/Pending = %d/%d, want 3/0", res.Imported, res.Pending)
	}
	if res.DesignatorColumn != "Designator" {
		t.Errorf("DesignatorColumn = %q", res.DesignatorColumn)
	}
}

func TestImportHandlerMultipart(t *testing.T) {
	srv := newTestServer()

	var buf bytes.Buffer
	mw := multipart.NewWriter(&buf)
	fw, err := mw.CreateFormFile("file", "bom.csv")
	if err != nil {
		t.Fatal(err)
	}
	fw.Write([]byte("Designator,Value\nR1,100k"))
	mw.Close()

	rec := doRequest(t, srv, http.MethodPost, "/api/projects/amp/imports", mw.FormDataContentType(), &buf)
	if rec.Code != http.StatusCreated {
		t.Fatalf("status = %d, body: %s", rec.Code, rec.Body.String())
	}

	var res parts.ImportResult
	decodeBody(t, rec, &res)
	if res.Imported != 1 {
		t.Errorf("Imported = %d, want 1", res.Imported)
	}
}

func TestImportHandlerErrors(t *testing.T) {
	srv := newTestServer()

	tests := []struct {
		name       string
		path       string
		body       string
		wantStatus int
		wantCode   string
	}{
		{
			name:       "empty input",
			path:       "/api/projects/amp/imports",
			body:       "   ",
			wantStatus: http.StatusBadRequest,
			wantCode:   "PARSE_EMPTY",
		},
		{
			name:       "no designator column",
			path:       "/api/projects/amp/imports",
			body:       "Part,Value\nX,1",
			wantStatus: http.StatusUnprocessableEntity,
			wantCode:   "NO_DESIGNATOR_COLUMN",
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec := doRequest(t, srv, http.MethodPost, tt.path, "text/csv", strings.NewReader(tt.body))
			if rec.Code != tt.wantStatus {
				t.Fatalf("status = %d, want %d (body: %s)", rec.Code, tt.wantStatus, rec.Body.String())
			}
			var resp ErrorResponse
			decodeBody(t, rec, &resp)
			if resp.Code != tt.wantCode {
				t.Errorf("code = %q, want %q", resp.Code, tt.wantCode)
			}
			if tt.wantCode == "NO_DESIGNATOR_COLUMN" && len(resp.Headers) != 2 {
				t.Errorf("headers = %v, want the parsed header list", resp.Headers)
			}
		})
	}
}

func TestImportHandlerSizeCap(t *testing.T) {
	srv := newTestServerWithCap(32)

	body := "Designator,Value\nR1,100k\nR2,100k\nR3,100k"
	rec := doRequest(t, srv, http.MethodPost, "/api/projects/amp/imports", "text/csv", strings.NewReader(body))
	if rec.Code != http.StatusRequestEntityTooLarge {
		t.Fatalf("status = %d, want 413 (body: %s)", rec.Code, rec.Body.String())
	}
	var resp ErrorResponse
	decodeBody(t, rec, &resp)
	if resp.Code != "UPLOAD_TOO_LARGE" {
		t.Errorf("code = %q, want UPLOAD_TOO_LARGE", resp.Code)
	}
}

func TestComponentLifecycle(t *testing.T) {
	srv := newTestServer()
	res := importCSV(t, srv, "amp", "Designator,Value,MPN\nR1,10k,RC0603FR-0710KL")
	id := res.Components[0].ID

	t.Run("get", func(t *testing.T) {
		rec := doRequest(t, srv, http.MethodGet, "/api/projects/amp/components/"+id, "", nil)
		if rec.Code != http.StatusOK {
			t.Fatalf("status = %d", rec.Code)
		}
		var comp bom.Component
		decodeBody(t, rec, &comp)
		if comp.Fields["Value"] != "10k" {
			t.Errorf("Value = %q", comp.Fields["Value"])
		}
	})

	t.Run("get missing", func(t *testing.T) {
		rec := doRequest(t, srv, http.MethodGet, "/api/projects/amp/components/nope", "", nil)
		if rec.Code != http.StatusNotFound {
			t.Fatalf("status = %d, want 404", rec.Code)
		}
	})

	t.Run("patch", func(t *testing.T) {
		body := `{"fields":{"Value":"12k"}}`
		rec := doRequest(t, srv, http.MethodPatch, "/api/projects/amp/components/"+id, "application/json", strings.NewReader(body))
		if rec.Code != http.StatusOK {
			t.Fatalf("status = %d, body: %s", rec.Code, rec.Body.String())
		}
		var comp bom.Component
		decodeBody(t, rec, &comp)
		if comp.Fields["Value"] != "12k" {
			t.Errorf("Value = %q, want 12k", comp.Fields["Value"])
		}
	})

	t.Run("patch empty fields", func(t *testing.T) {
		rec := doRequest(t, srv, http.MethodPatch, "/api/projects/amp/components/"+id, "application/json", strings.NewReader(`{}`))
		if rec.Code != http.StatusBadRequest {
			t.Fatalf("status = %d, want 400", rec.Code)
		}
	})

	t.Run("assign lpn", func(t *testing.T) {
		rec := doRequest(t, srv, http.MethodPost, "/api/projects/amp/components/"+id+"/lpn", "", nil)
		if rec.Code != http.StatusOK {
			t.Fatalf("status = %d, body: %s", rec.Code, rec.Body.String())
		}
		var resp map[string]string
		decodeBody(t, rec, &resp)
		if !strings.HasPrefix(resp["lpn"], "PRT-00001-") {
			t.Errorf("lpn = %q", resp["lpn"])
		}
	})

	t.Run("assign again conflicts", func(t *testing.T) {
		rec := doRequest(t, srv, http.MethodPost, "/api/projects/amp/components/"+id+"/lpn", "", nil)
		if rec.Code != http.StatusConflict {
			t.Fatalf("status = %d, want 409", rec.Code)
		}
		var resp ErrorResponse
		decodeBody(t, rec, &resp)
		if resp.Code != "LPN_ALREADY_ASSIGNED" {
			t.Errorf("code = %q", resp.Code)
		}
	})

	t.Run("mpn now locked", func(t *testing.T) {
		body := `{"fields":{"Mfr. Part #":"OTHER"}}`
		rec := doRequest(t, srv, http.MethodPatch, "/api/projects/amp/components/"+id, "application/json", strings.NewReader(body))
		if rec.Code != http.StatusConflict {
			t.Fatalf("status = %d, want 409 (body: %s)", rec.Code, rec.Body.String())
		}
		var resp ErrorResponse
		decodeBody(t, rec, &resp)
		if resp.Code != "FIELD_LOCKED" {
			t.Errorf("code = %q", resp.Code)
		}
	})

	t.Run("lock query", func(t *testing.T) {
		rec := doRequest(t, srv, http.MethodGet, "/api/projects/amp/components/"+id+"/locks?field=Mfr.+Part+%23", "", nil)
		if rec.Code != http.StatusOK {
			t.Fatalf("status = %d", rec.Code)
		}
		var resp struct {
			Field  string `json:"field"`
			Locked bool   `json:"locked"`
		}
		decodeBody(t, rec, &resp)
		if !resp.Locked {
			t.Error("Locked = false, want true after assignment")
		}
	})

	t.Run("delete", func(t *testing.T) {
		rec := doRequest(t, srv, http.MethodDelete, "/api/projects/amp/components/"+id, "", nil)
		if rec.Code != http.StatusNoContent {
			t.Fatalf("status = %d, want 204", rec.Code)
		}
		rec = doRequest(t, srv, http.MethodGet, "/api/projects/amp/components/"+id, "", nil)
		if rec.Code != http.StatusNotFound {
			t.Fatalf("status after delete = %d, want 404", rec.Code)
		}
	})
}

func TestAssignLPNMissingMPN(t *testing.T) {
	srv := newTestServer()
	res := importCSV(t, srv, "amp", "Designator,Value\nR1,10k")
	id := res.Components[0].ID

	rec := doRequest(t, srv, http.MethodPost, "/api/projects/amp/components/"+id+"/lpn", "", nil)
	if rec.Code != http.StatusUnprocessableEntity {
		t.Fatalf("status = %d, want 422", rec.Code)
	}
	var resp ErrorResponse
	decodeBody(t, rec, &resp)
	if resp.Code != "LPN_MISSING_MPN" {
		t.Errorf("code = %q", resp.Code)
	}
}

func TestAssignLPNBatchHandler(t *testing.T) {
	srv := newTestServer()
	res := importCSV(t, srv, "amp", "Designator,MPN\nR1,LM358N\nR2,LM358N")

	body, _ := json.Marshal(map[string][]string{
		"ids": {res.Components[0].ID, res.Components[1].ID, "ghost"},
	})
	rec := doRequest(t, srv, http.MethodPost, "/api/projects/amp/lpn/batch", "application/json", bytes.NewReader(body))
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, body: %s", rec.Code, rec.Body.String())
	}

	var batch struct {
		Assigned map[string]string `json:"assigned"`
		Failures map[string]string `json:"failures"`
		Total    int               `json:"total"`
	}
	decodeBody(t, rec, &batch)
	if batch.Total != 3 || len(batch.Assigned) != 2 || len(batch.Failures) != 1 {
		t.Errorf("batch = %+v", batch)
	}
	if batch.Assigned[res.Components[0].ID] != batch.Assigned[res.Components[1].ID] {
		t.Error("same MPN got different LPNs")
	}
}

func TestPendingAndResolutions(t *testing.T) {
	srv := newTestServer()
	importCSV(t, srv, "amp", "Designator,Qty\n\"R1, R2\",2")

	rec := doRequest(t, srv, http.MethodGet, "/api/projects/amp/pending", "", nil)
	if rec.Code != http.StatusOK {
		t.Fatalf("pending status = %d", rec.Code)
	}
	var pendingResp struct {
		Pending []bom.AmbiguousComponent `json:"pending"`
	}
	decodeBody(t, rec, &pendingResp)
	if len(pendingResp.Pending) != 1 {
		t.Fatalf("pending = %d, want 1", len(pendingResp.Pending))
	}

	body, _ := json.Marshal(map[string]map[string]string{
		"resolutions": {pendingResp.Pending[0].ID: "flatten"},
	})
	rec = doRequest(t, srv, http.MethodPost, "/api/projects/amp/pending/resolutions", "application/json", bytes.NewReader(body))
	if rec.Code != http.StatusOK {
		t.Fatalf("resolve status = %d, body: %s", rec.Code, rec.Body.String())
	}
	var resolveResp struct {
		Resolved []bom.Component `json:"resolved"`
	}
	decodeBody(t, rec, &resolveResp)
	if len(resolveResp.Resolved) != 2 {
		t.Errorf("resolved = %d, want 2", len(resolveResp.Resolved))
	}

	t.Run("invalid policy", func(t *testing.T) {
		body := `{"resolutions":{"x":"expand"}}`
		rec := doRequest(t, srv, http.MethodPost, "/api/projects/amp/pending/resolutions", "application/json", strings.NewReader(body))
		if rec.Code != http.StatusBadRequest {
			t.Fatalf("status = %d, want 400", rec.Code)
		}
		var resp ErrorResponse
		decodeBody(t, rec, &resp)
		if resp.Code != "INVALID_POLICY" {
			t.Errorf("code = %q", resp.Code)
		}
	})
}

func TestRateLimiter(t *testing.T) {
	rl := newRateLimiter(2, time.Minute)

	if !rl.allow("1.2.3.4") || !rl.allow("1.2.3.4") {
		t.Fatal("first two requests should pass")
	}
	if rl.allow("1.2.3.4") {
		t.Error("third request within the window should be rejected")
	}
	if !rl.allow("5.6.7.8") {
		t.Error("distinct IPs have separate buckets")
	}

	// Window expiry refills the bucket.
	rl.mu.Lock()
	rl.visitors["1.2.3.4"].lastReset = time.Now().Add(-2 * time.Minute)
	rl.mu.Unlock()
	if !rl.allow("1.2.3.4") {
		t.Error("expired window should refill tokens")
	}
}
