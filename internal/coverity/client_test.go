package coverity

import (
	"context"
	"encoding/base64"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/hpungsan/coverity-mcp/internal/config"
	"github.com/hpungsan/coverity-mcp/internal/errors"
)

// testConfig returns a fully configured Config for tests.
func testConfig() *config.Config {
	cfg := config.DefaultConfig()
	cfg.Host = "cov.example.com"
	cfg.User = "alice"
	cfg.AuthKey = "s3cret"
	return cfg
}

// newTestClient starts an httptest server around mux and returns a Client aimed at it.
func newTestClient(t *testing.T, mux *http.ServeMux) *Client {
	t.Helper()
	srv := httptest.NewServer(mux)
	t.Cleanup(srv.Close)
	return New(testConfig(), WithBaseURL(srv.URL))
}

// writeJSON writes v as a JSON response body.
func writeJSON(t *testing.T, w http.ResponseWriter, v any) {
	t.Helper()
	w.Header().Set("Content-Type", "application/json")
	if err := json.NewEncoder(w).Encode(v); err != nil {
		t.Errorf("encode response: %v", err)
	}
}

func TestNew_BaseURL(t *testing.T) {
	cfg := testConfig()
	if got := New(cfg).BaseURL(); got != "https://cov.example.com:8443" {
		t.Errorf("BaseURL() = %q, want https default", got)
	}

	off := false
	cfg.SSL = &off
	cfg.Port = 8080
	if got := New(cfg).BaseURL(); got != "http://cov.example.com:8080" {
		t.Errorf("BaseURL() = %q, want http when ssl disabled", got)
	}

	if got := New(cfg, WithBaseURL("http://127.0.0.1:9/")).BaseURL(); got != "http://127.0.0.1:9" {
		t.Errorf("BaseURL() = %q, want override without trailing slash", got)
	}
}

func TestNew_AcceptsSelfSignedTLS(t *testing.T) {
	srv := httptest.NewTLSServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/api/v2/projects" {
			t.Errorf("path = %q", r.URL.Path)
		}
		writeJSON(t, w, map[string]any{"projects": []map[string]any{{"name": "alpha"}}})
	}))
	defer srv.Close()

	c := New(testConfig(), WithBaseURL(srv.URL))
	if c.http == http.DefaultClient {
		t.Fatal("client uses http.DefaultClient, which rejects self-signed certificates")
	}

	projects, err := c.ListProjects(context.Background())
	if err != nil {
		t.Fatalf("ListProjects() against self-signed server: %v", err)
	}
	if len(projects) != 1 || projects[0].Name != "alpha" {
		t.Errorf("projects = %+v", projects)
	}

	// The default client must fail the same handshake.
	resp, err := http.DefaultClient.Get(srv.URL + "/api/v2/projects")
	if err == nil {
		resp.Body.Close()
		t.Fatal("http.DefaultClient accepted a self-signed certificate")
	}
}

func TestNew_PlainHTTPWhenSSLDisabled(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.TLS != nil {
			t.Error("request arrived over TLS, want plain http")
		}
		writeJSON(t, w, map[string]any{"projects": []map[string]any{}})
	}))
	defer srv.Close()

	cfg := testConfig()
	off := false
	cfg.SSL = &off
	if got := New(cfg).BaseURL(); !strings.HasPrefix(got, "http://") {
		t.Errorf("BaseURL() = %q, want http scheme", got)
	}

	c := New(cfg, WithBaseURL(srv.URL))
	if _, err := c.ListProjects(context.Background()); err != nil {
		t.Fatalf("ListProjects() over plain http: %v", err)
	}
}

func TestListProjects(t *testing.T) {
	wantAuth := "Basic " + base64.StdEncoding.EncodeToString([]byte("alice:s3cret"))

	mux := http.NewServeMux()
	mux.HandleFunc("GET /api/v2/projects", func(w http.ResponseWriter, r *http.Request) {
		if got := r.Header.Get("Authorization"); got != wantAuth {
			t.Errorf("Authorization = %q, want %q", got, wantAuth)
		}
		if got := r.Header.Get("Accept"); got != "application/json" {
			t.Errorf("Accept = %q, want application/json", got)
		}
		if got := r.URL.Query().Get("includeStreams"); got != "true" {
			t.Errorf("includeStreams = %q, want true", got)
		}
		writeJSON(t, w, map[string]any{
			"projects": []map[string]any{
				{"name": "zeta", "projectKey": 2, "streams": []map[string]any{{"name": "zeta-main"}}},
				{"name": "alpha", "projectKey": 1, "description": "first"},
			},
		})
	})
	client := newTestClient(t, mux)

	projects, err := client.ListProjects(context.Background())
	if err != nil {
		t.Fatalf("ListProjects() error = %v", err)
	}
	if len(projects) != 2 {
		t.Fatalf("len(projects) = %d, want 2", len(projects))
	}
	if projects[0].Name != "zeta" || projects[1].Name != "alpha" {
		t.Errorf("order = [%s %s], want server order [zeta alpha]", projects[0].Name, projects[1].Name)
	}
	if len(projects[0].Streams) != 1 || projects[0].Streams[0].Name != "zeta-main" {
		t.Errorf("streams = %+v, want [zeta-main]", projects[0].Streams)
	}
	if projects[1].ProjectKey != 1 || projects[1].Description != "first" {
		t.Errorf("projects[1] = %+v", projects[1])
	}
}

func TestListProjects_Empty(t *testing.T) {
	mux := http.NewServeMux()
	mux.HandleFunc("GET /api/v2/projects", func(w http.ResponseWriter, r *http.Request) {
		writeJSON(t, w, map[string]any{})
	})
	client := newTestClient(t, mux)

	projects, err := client.ListProjects(context.Background())
	if err != nil {
		t.Fatalf("ListProjects() error = %v", err)
	}
	if projects == nil || len(projects) != 0 {
		t.Errorf("projects = %#v, want empty non-nil slice", projects)
	}
}

func TestListProjects_RemoteErrors(t *testing.T) {
	tests := []struct {
		name    string
		handler http.HandlerFunc
	}{
		{
			name: "non-success status",
			handler: func(w http.ResponseWriter, r *http.Request) {
				http.Error(w, "license expired", http.StatusServiceUnavailable)
			},
		},
		{
			name: "malformed json",
			handler: func(w http.ResponseWriter, r *http.Request) {
				io.WriteString(w, `{"projects": [`)
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			mux := http.NewServeMux()
			mux.HandleFunc("GET /api/v2/projects", tt.handler)
			client := newTestClient(t, mux)

			_, err := client.ListProjects(context.Background())
			if !errors.Is(err, errors.ErrRemote) {
				t.Fatalf("ListProjects() error = %v, want REMOTE", err)
			}
		})
	}
}

func TestListProjects_Unreachable(t *testing.T) {
	srv := httptest.NewServer(http.NotFoundHandler())
	url := srv.URL
	srv.Close()

	client := New(testConfig(), WithBaseURL(url))
	if _, err := client.ListProjects(context.Background()); !errors.Is(err, errors.ErrRemote) {
		t.Fatalf("ListProjects() error = %v, want REMOTE", err)
	}
}

func TestListStreams_ByProject(t *testing.T) {
	mux := http.NewServeMux()
	mux.HandleFunc("GET /api/v2/projects/{name}", func(w http.ResponseWriter, r *http.Request) {
		if got := r.PathValue("name"); got != "My Project" {
			t.Errorf("project name = %q, want %q", got, "My Project")
		}
		if got := r.URL.Query().Get("includeStreams"); got != "true" {
			t.Errorf("includeStreams = %q, want true", got)
		}
		writeJSON(t, w, map[string]any{
			"projects": []map[string]any{{
				"name": "My Project",
				"streams": []map[string]any{
					{"name": "s2", "language": "CXX"},
					{"name": "s1", "primaryProjectName": "My Project"},
				},
			}},
		})
	})
	mux.HandleFunc("GET /api/v2/streams", func(w http.ResponseWriter, r *http.Request) {
		t.Error("global listing must not be called when a project is given")
	})
	client := newTestClient(t, mux)

	streams, err := client.ListStreams(context.Background(), "My Project")
	if err != nil {
		t.Fatalf("ListStreams() error = %v", err)
	}
	if len(streams) != 2 || streams[0].Name != "s2" || streams[1].Name != "s1" {
		t.Fatalf("streams = %+v, want [s2 s1] in server order", streams)
	}
	if streams[0].Language != "CXX" || streams[1].PrimaryProjectName != "My Project" {
		t.Errorf("stream fields not decoded: %+v", streams)
	}
}

func TestListStreams_ProjectAbsent(t *testing.T) {
	for _, body := range []string{`{}`, `{"projects": []}`, `{"projects": [{"name": "p"}]}`} {
		t.Run(body, func(t *testing.T) {
			mux := http.NewServeMux()
			mux.HandleFunc("GET /api/v2/projects/{name}", func(w http.ResponseWriter, r *http.Request) {
				io.WriteString(w, body)
			})
			client := newTestClient(t, mux)

			streams, err := client.ListStreams(context.Background(), "p")
			if err != nil {
				t.Fatalf("ListStreams() error = %v", err)
			}
			if streams == nil || len(streams) != 0 {
				t.Errorf("streams = %#v, want empty non-nil slice", streams)
			}
		})
	}
}

func TestListStreams_Global(t *testing.T) {
	mux := http.NewServeMux()
	mux.HandleFunc("GET /api/v2/streams", func(w http.ResponseWriter, r *http.Request) {
		if r.URL.RawQuery != "" {
			t.Errorf("query = %q, want none", r.URL.RawQuery)
		}
		writeJSON(t, w, map[string]any{
			"streams": []map[string]any{{"name": "a"}, {"name": "b"}, {"name": "c", "outdated": true}},
		})
	})
	client := newTestClient(t, mux)

	streams, err := client.ListStreams(context.Background(), "")
	if err != nil {
		t.Fatalf("ListStreams() error = %v", err)
	}
	if len(streams) != 3 {
		t.Fatalf("len(streams) = %d, want full global listing of 3", len(streams))
	}
	if !streams[2].Outdated {
		t.Error("streams[2].Outdated = false, want true")
	}
}

func TestEncodeQuery_DropsEmpty(t *testing.T) {
	got := encodeQuery(map[string]string{"cid": "7", "streamName": "", "offset": "0"})
	if strings.Contains(got, "streamName") {
		t.Errorf("encodeQuery() = %q, empty value should be dropped", got)
	}
	if got != "cid=7&offset=0" {
		t.Errorf("encodeQuery() = %q, want %q", got, "cid=7&offset=0")
	}
	if encodeQuery(nil) != "" {
		t.Error("encodeQuery(nil) should be empty")
	}
}
