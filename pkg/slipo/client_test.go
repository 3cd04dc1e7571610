package slipo

import (
	"context"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"testing"
	"time"
)

func testConfig(url string) Config {
	return DefaultConfig().
		WithBaseURL(url).
		WithAPIKey("test-key").
		WithInsecure().
		WithRetries(2, time.Millisecond)
}

func testClient(t *testing.T, handler http.HandlerFunc) (*Client, *httptest.Server) {
	t.Helper()
	srv := httptest.NewServer(handler)
	t.Cleanup(srv.Close)

	c, err := NewClient(testConfig(srv.URL), nil)
	if err != nil {
		t.Fatalf("NewClient: %v", err)
	}
	return c, srv
}

func TestNewClient_ConfigValidation(t *testing.T) {
	tests := []struct {
		name    string
		config  Config
		wantErr error
	}{
		{
			name:    "missing api key",
			config:  DefaultConfig(),
			wantErr: ErrMissingAPIKey,
		},
		{
			name:   "plain http rejected when ssl required",
			config: DefaultConfig().WithAPIKey("k").WithBaseURL("http://insecure.local/"),
		},
		{
			name:   "plain http allowed when insecure",
			config: DefaultConfig().WithAPIKey("k").WithBaseURL("http://insecure.local/").WithInsecure(),
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := NewClient(tt.config, nil)
			switch tt.name {
			case "plain http allowed when insecure":
				if err != nil {
					t.Errorf("NewClient: %v", err)
				}
			default:
				if err == nil {
					t.Error("NewClient succeeded, want error")
				}
				if tt.wantErr != nil && !errors.Is(err, tt.wantErr) {
					t.Errorf("error = %v, want %v", err, tt.wantErr)
				}
			}
		})
	}
}

func TestClient_SendsAuthHeaders(t *testing.T) {
	var gotKey, gotReqID string
	c, _ := testClient(t, func(w http.ResponseWriter, r *http.Request) {
		gotKey = r.Header.Get("X-API-Key")
		gotReqID = r.Header.Get("X-Request-Id")
		w.Write([]byte(`{"success": true, "errors": [], "result": {}}`))
	})

	if _, err := c.FileBrowse(context.Background(), BrowseOptions{}); err != nil {
		t.Fatalf("FileBrowse: %v", err)
	}
	if gotKey != "test-key" {
		t.Errorf("X-API-Key = %q, want %q", gotKey, "test-key")
	}
	if gotReqID == "" {
		t.Error("X-Request-Id header missing")
	}
}

func TestClient_EnvelopeError(t *testing.T) {
	c, _ := testClient(t, func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusForbidden)
		w.Write([]byte(`{"success": false, "errors": [
			{"code": "BasicErrorCode.NOT_AUTHENTICATED", "description": "invalid key"}
		], "result": null}`))
	})

	_, err := c.FileBrowse(context.Background(), BrowseOptions{})
	if err == nil {
		t.Fatal("FileBrowse succeeded, want error")
	}
	var apiErr *Error
	if !errors.As(err, &apiErr) {
		t.Fatalf("error %T is not *Error", err)
	}
	if apiErr.Code != ErrCodeNotAuthenticated {
		t.Errorf("code = %q, want %q", apiErr.Code, ErrCodeNotAuthenticated)
	}
	if !IsAuthError(err) {
		t.Error("IsAuthError = false")
	}
}

func TestClient_RetriesTransientFailures(t *testing.T) {
	var calls int
	c, _ := testClient(t, func(w http.ResponseWriter, r *http.Request) {
		calls++
		if calls < 3 {
			w.WriteHeader(http.StatusServiceUnavailable)
			return
		}
		w.Write([]byte(`{"success": true, "errors": [], "result": {}}`))
	})

	if _, err := c.FileBrowse(context.Background(), BrowseOptions{}); err != nil {
		t.Fatalf("FileBrowse after retries: %v", err)
	}
	if calls != 3 {
		t.Errorf("server calls = %d, want 3", calls)
	}
}

func TestClient_DoesNotRetryClientErrors(t *testing.T) {
	var calls int
	c, _ := testClient(t, func(w http.ResponseWriter, r *http.Request) {
		calls++
		w.WriteHeader(http.StatusBadRequest)
		w.Write([]byte(`bad request`))
	})

	_, err := c.FileBrowse(context.Background(), BrowseOptions{})
	if err == nil {
		t.Fatal("FileBrowse succeeded, want error")
	}
	var httpErr *HTTPError
	if !errors.As(err, &httpErr) || httpErr.StatusCode != http.StatusBadRequest {
		t.Errorf("error = %v, want HTTP 400", err)
	}
	// The failure carries the operation it happened in.
	var apiErr *Error
	if !errors.As(err, &apiErr) || apiErr.Op != "FileBrowse" {
		t.Errorf("error = %v, want operation context FileBrowse", err)
	}
	if calls != 1 {
		t.Errorf("server calls = %d, want 1 (no retries)", calls)
	}
}

func TestClient_RetriesExhausted(t *testing.T) {
	var calls int
	c, _ := testClient(t, func(w http.ResponseWriter, r *http.Request) {
		calls++
		w.WriteHeader(http.StatusInternalServerError)
	})

	_, err := c.FileBrowse(context.Background(), BrowseOptions{})
	if err == nil {
		t.Fatal("FileBrowse succeeded, want error")
	}
	// Initial attempt plus MaxRetries.
	if calls != 3 {
		t.Errorf("server calls = %d, want 3", calls)
	}
}

func TestFileBrowse_FlattensAndSorts(t *testing.T) {
	c, _ := testClient(t, func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{"success": true, "errors": [], "result": {
			"files": [{"name": "new.csv", "modified": 2000, "size": 2048, "path": "/new.csv"}],
			"folders": [{
				"files": [{"name": "old.csv", "modified": 1000, "size": 10, "path": "/arch/old.csv"}]
			}]
		}}`))
	})

	f, err := c.FileBrowse(context.Background(), BrowseOptions{FormatSize: true})
	if err != nil {
		t.Fatalf("FileBrowse: %v", err)
	}
	if f.Len() != 2 {
		t.Fatalf("rows = %d, want 2", f.Len())
	}
	// Default ascending sort on modified.
	if f.Row(0)["name"] != "old.csv" || f.Row(1)["name"] != "new.csv" {
		t.Errorf("sort order: %v then %v", f.Row(0)["name"], f.Row(1)["name"])
	}
	if got := f.Row(1)["size"].(string); got != "2.0 kB" {
		t.Errorf("formatted size = %q, want %q", got, "2.0 kB")
	}
}

func TestFileBrowse_UnknownSortColumnFallsBack(t *testing.T) {
	c, _ := testClient(t, func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{"success": true, "errors": [], "result": {
			"files": [
				{"name": "b", "modified": 2000, "size": 1, "path": "/b"},
				{"name": "a", "modified": 1000, "size": 1, "path": "/a"}
			]
		}}`))
	})

	// An unrecognized sort column is not a fault; it falls back to modified.
	f, err := c.FileBrowse(context.Background(), BrowseOptions{SortBy: "nonsense"})
	if err != nil {
		t.Fatalf("FileBrowse: %v", err)
	}
	if f.Row(0)["name"] != "a" {
		t.Errorf("fallback sort first row = %v, want a", f.Row(0)["name"])
	}
}

func TestProcessStatus_EndToEnd(t *testing.T) {
	c, _ := testClient(t, func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/api/v1/process/42/7" {
			t.Errorf("path = %s", r.URL.Path)
		}
		w.Write([]byte(`{"success": true, "errors": [], "result": ` + pairRecord + `}`))
	})

	p, err := c.ProcessStatus(context.Background(), 42, 7)
	if err != nil {
		t.Fatalf("ProcessStatus: %v", err)
	}
	if p.ID() != 42 || p.Version() != 7 || p.Status() != StatusCompleted {
		t.Errorf("process = %s", p)
	}

	out, ok := p.Output("")
	if !ok || out.ID() != 11 {
		t.Errorf("output = %v ok = %v", out, ok)
	}
}

func TestProcessQuery_FlattensRevisions(t *testing.T) {
	c, _ := testClient(t, func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{"success": true, "errors": [], "result": {"items": [
			{"id": 1, "version": 2, "name": "current", "revisions": [
				{"id": 1, "version": 1, "name": "v1"},
				{"id": 1, "version": 2, "name": "v2"}
			]}
		]}}`))
	})

	f, err := c.ProcessQuery(context.Background(), QueryOptions{Term: "poi"})
	if err != nil {
		t.Fatalf("ProcessQuery: %v", err)
	}
	if f.Len() != 2 {
		t.Errorf("rows = %d, want 2", f.Len())
	}
}

func TestCatalogQuery(t *testing.T) {
	c, _ := testClient(t, func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/api/v1/resource" {
			t.Errorf("path = %s", r.URL.Path)
		}
		w.Write([]byte(`{"success": true, "errors": [], "result": {"items": [
			{"id": 9, "name": "osm-pois", "description": "d", "size": 100,
			 "numberOfEntities": 5, "tableName": "t", "createdOn": 1000, "boundingBox": "bb"}
		]}}`))
	})

	f, err := c.CatalogQuery(context.Background(), QueryOptions{})
	if err != nil {
		t.Fatalf("CatalogQuery: %v", err)
	}
	if f.Len() != 1 || f.Row(0)["name"] != "osm-pois" {
		t.Errorf("unexpected frame: %v", f)
	}
}

func TestDownload_WritesTarget(t *testing.T) {
	const content = "poi,name\n1,cafe\n"
	c, _ := testClient(t, func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(content))
	})

	target := filepath.Join(t.TempDir(), "nested", "out.csv")
	if err := c.FileDownload(context.Background(), "remote/out.csv", target); err != nil {
		t.Fatalf("FileDownload: %v", err)
	}

	data, err := os.ReadFile(target)
	if err != nil {
		t.Fatalf("reading target: %v", err)
	}
	if string(data) != content {
		t.Errorf("target content = %q, want %q", data, content)
	}
}

func TestDownload_EnvelopeError(t *testing.T) {
	c, _ := testClient(t, func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusNotFound)
		w.Write([]byte(`{"success": false, "errors": [
			{"code": "BasicErrorCode.RESOURCE_NOT_FOUND", "description": "no such file"}
		], "result": null}`))
	})

	err := c.CatalogDownload(context.Background(), 1, 1, filepath.Join(t.TempDir(), "x"))
	if err == nil {
		t.Fatal("CatalogDownload succeeded, want error")
	}
	if !IsNotFoundError(err) {
		t.Errorf("IsNotFoundError(%v) = false", err)
	}
}

func TestOperations_SubmitAndWrapStatus(t *testing.T) {
	var gotPath string
	c, _ := testClient(t, func(w http.ResponseWriter, r *http.Request) {
		gotPath = r.URL.Path
		w.Write([]byte(`{"success": true, "errors": [], "result": {
			"id": 900, "processId": 50, "processVersion": 1, "status": "RUNNING",
			"taskType": "API", "name": "interlink-op", "startedOn": 1000
		}}`))
	})

	p, err := c.Interlink(context.Background(), "SLIPO_default",
		ResourceInput{ID: 1, Version: 1}, PathInput("right.nt"))
	if err != nil {
		t.Fatalf("Interlink: %v", err)
	}
	if gotPath != "/api/v1/toolkit/interlink" {
		t.Errorf("path = %s", gotPath)
	}
	if p.ID() != 50 || p.Version() != 1 || p.Status() != StatusRunning {
		t.Errorf("process = %s", p)
	}
}

func TestFileUpload(t *testing.T) {
	source := filepath.Join(t.TempDir(), "pois.csv")
	if err := os.WriteFile(source, []byte("id,name\n"), 0o644); err != nil {
		t.Fatal(err)
	}

	var gotQuery string
	var gotBody []byte
	c, _ := testClient(t, func(w http.ResponseWriter, r *http.Request) {
		gotQuery = r.URL.RawQuery
		gotBody, _ = io.ReadAll(r.Body)
		w.Write([]byte(`{"success": true, "errors": [], "result": null}`))
	})

	if err := c.FileUpload(context.Background(), source, "data/pois.csv", true); err != nil {
		t.Fatalf("FileUpload: %v", err)
	}
	if gotQuery != "overwrite=true&path=data%2Fpois.csv" {
		t.Errorf("query = %q", gotQuery)
	}
	if string(gotBody) != "id,name\n" {
		t.Errorf("body = %q", gotBody)
	}
}
