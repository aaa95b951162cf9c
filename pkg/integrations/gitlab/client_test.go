package gitlab

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/modelscore/modelscore/pkg/cache"
	"github.com/modelscore/modelscore/pkg/errors"
	"github.com/modelscore/modelscore/pkg/integrations"
	"github.com/modelscore/modelscore/pkg/score"
)

func testClient(serverURL string) *Client {
	return &Client{
		Client:  integrations.NewClient(cache.NewNullCache(), "gl:", time.Hour, nil),
		baseURL: serverURL,
	}
}

func TestClient_Fetch(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		// GitLab project IDs keep the slash percent-encoded in the path.
		switch r.URL.EscapedPath() {
		case "/api/v4/projects/inkscape%2Finkscape":
			if r.URL.Query().Get("license") != "true" {
				t.Error("project request should ask for license data")
			}
			json.NewEncoder(w).Encode(map[string]any{
				"star_count":       3200,
				"default_branch":   "master",
				"last_activity_at": "2024-04-10T10:00:00Z",
				"license":          map[string]any{"key": "GPL-3.0"},
			})
		case "/api/v4/projects/inkscape%2Finkscape/repository/contributors":
			json.NewEncoder(w).Encode([]map[string]any{
				{"name": "alice", "commits": 80},
				{"name": "bob", "commits": 20},
			})
		case "/api/v4/projects/inkscape%2Finkscape/repository/tree":
			json.NewEncoder(w).Encode([]map[string]any{
				{"path": "src/main.cpp", "type": "blob"},
				{"path": "testfiles/unit.cpp", "type": "blob"},
				{"path": "src", "type": "tree"},
			})
		case "/inkscape/inkscape/-/raw/master/README.md":
			w.Write([]byte("# Inkscape"))
		default:
			http.NotFound(w, r)
		}
	}))
	defer server.Close()

	rec, err := testClient(server.URL).Fetch(context.Background(), "inkscape/inkscape", score.CategoryCode)
	if err != nil {
		t.Fatalf("Fetch() error: %v", err)
	}

	if rec.Stars != 3200 {
		t.Errorf("Stars = %d, want 3200", rec.Stars)
	}
	if rec.LicenseID() != "gpl-3.0" {
		t.Errorf("license = %q, want gpl-3.0", rec.LicenseID())
	}
	if rec.Contributors != 2 {
		t.Errorf("Contributors = %d, want 2", rec.Contributors)
	}
	if rec.TopContributorPct == nil || *rec.TopContributorPct != 0.8 {
		t.Errorf("TopContributorPct = %v, want 0.8", rec.TopContributorPct)
	}
	if !rec.HasTests {
		t.Error("HasTests should be true")
	}
	if len(rec.Files) != 2 {
		t.Errorf("Files = %v, want 2 blobs", rec.Files)
	}
	if rec.ReadmeText == nil {
		t.Error("ReadmeText should be present")
	}
}

func TestClient_FetchMinimalProject(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.EscapedPath() == "/api/v4/projects/solo%2Fquiet" {
			json.NewEncoder(w).Encode(map[string]any{"star_count": 1})
			return
		}
		http.NotFound(w, r)
	}))
	defer server.Close()

	rec, err := testClient(server.URL).Fetch(context.Background(), "solo/quiet", score.CategoryCode)
	if err != nil {
		t.Fatalf("Fetch() error: %v", err)
	}
	if rec.License != nil {
		t.Error("License should be absent")
	}
	if rec.ReadmeText != nil {
		t.Error("ReadmeText should be absent")
	}
	if rec.HasTests {
		t.Error("HasTests should default to false")
	}
}

func TestClient_FetchNotFound(t *testing.T) {
	server := httptest.NewServer(http.NotFoundHandler())
	defer server.Close()

	_, err := testClient(server.URL).Fetch(context.Background(), "group/missing", score.CategoryCode)
	if !errors.Is(err, errors.ErrCodeFetchFailed) {
		t.Errorf("Fetch() error code = %q, want FETCH_FAILED", errors.GetCode(err))
	}
}
