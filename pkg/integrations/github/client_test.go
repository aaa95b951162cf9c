package github

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
		Client:  integrations.NewClient(cache.NewNullCache(), "gh:", time.Hour, nil),
		baseURL: serverURL,
	}
}

func repoHandler(t *testing.T) http.Handler {
	t.Helper()
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		switch r.URL.Path {
		case "/repos/pallets/flask":
			json.NewEncoder(w).Encode(map[string]any{
				"stargazers_count": 65000,
				"size":             9800,
				"pushed_at":        "2024-05-20T08:30:00Z",
				"default_branch":   "main",
				"license":          map[string]any{"spdx_id": "BSD-3-Clause"},
			})
		case "/repos/pallets/flask/contributors":
			json.NewEncoder(w).Encode([]map[string]any{
				{"login": "alice", "contributions": 600, "type": "User"},
				{"login": "bob", "contributions": 300, "type": "User"},
				{"login": "ci-bot", "contributions": 5000, "type": "Bot"},
				{"login": "carol", "contributions": 100, "type": "User"},
			})
		case "/repos/pallets/flask/git/trees/main":
			json.NewEncoder(w).Encode(map[string]any{
				"tree": []map[string]any{
					{"path": "src/flask/app.py", "type": "blob"},
					{"path": "tests/test_basic.py", "type": "blob"},
					{"path": "tests", "type": "tree"},
					{"path": "pyproject.toml", "type": "blob"},
				},
			})
		case "/repos/pallets/flask/readme":
			if r.Header.Get("Accept") != "application/vnd.github.raw+json" {
				t.Errorf("readme Accept header = %q", r.Header.Get("Accept"))
			}
			w.Write([]byte("# Flask\n\nA web framework."))
		default:
			http.NotFound(w, r)
		}
	})
}

func TestClient_Fetch(t *testing.T) {
	server := httptest.NewServer(repoHandler(t))
	defer server.Close()

	rec, err := testClient(server.URL).Fetch(context.Background(), "pallets/flask", score.CategoryCode)
	if err != nil {
		t.Fatalf("Fetch() error: %v", err)
	}

	if rec.Stars != 65000 {
		t.Errorf("Stars = %d, want 65000", rec.Stars)
	}
	if rec.LicenseID() != "bsd-3-clause" {
		t.Errorf("license = %q, want bsd-3-clause", rec.LicenseID())
	}
	if rec.SizeBytes == nil || *rec.SizeBytes != 9800*1024 {
		t.Errorf("SizeBytes = %v, want %d", rec.SizeBytes, 9800*1024)
	}
	if rec.Contributors != 3 {
		t.Errorf("Contributors = %d, want 3 (bots excluded)", rec.Contributors)
	}
	if rec.TopContributorPct == nil || *rec.TopContributorPct != 0.6 {
		t.Errorf("TopContributorPct = %v, want 0.6", rec.TopContributorPct)
	}
	if !rec.HasTests {
		t.Error("HasTests should be true for a tree containing tests/")
	}
	if len(rec.Files) != 3 {
		t.Errorf("Files = %v, want 3 blobs", rec.Files)
	}
	if rec.ReadmeText == nil {
		t.Error("ReadmeText should be present")
	}
	if rec.UpdatedAt == nil {
		t.Error("UpdatedAt should be present")
	}
}

func TestClient_FetchMissingExtrasDegradeFields(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path == "/repos/solo/quiet" {
			json.NewEncoder(w).Encode(map[string]any{
				"stargazers_count": 3,
				"license":          map[string]any{"spdx_id": "NOASSERTION"},
			})
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
		t.Error("NOASSERTION should map to absent license")
	}
	if rec.SizeBytes != nil {
		t.Error("zero size should map to absent SizeBytes")
	}
	if rec.Contributors != 0 || rec.TopContributorPct != nil {
		t.Error("missing contributor data should leave defaults")
	}
	if rec.ReadmeText != nil {
		t.Error("missing README should leave ReadmeText absent")
	}
}

func TestClient_FetchNotFound(t *testing.T) {
	server := httptest.NewServer(http.NotFoundHandler())
	defer server.Close()

	_, err := testClient(server.URL).Fetch(context.Background(), "owner/missing", score.CategoryCode)
	if !errors.Is(err, errors.ErrCodeFetchFailed) {
		t.Errorf("Fetch() error code = %q, want FETCH_FAILED", errors.GetCode(err))
	}
}

func TestClient_FetchRejectsBadID(t *testing.T) {
	server := httptest.NewServer(http.NotFoundHandler())
	defer server.Close()

	for _, id := range []string{"", "owner/../etc", "owneronly"} {
		if _, err := testClient(server.URL).Fetch(context.Background(), id, score.CategoryCode); err == nil {
			t.Errorf("Fetch(%q) should fail", id)
		}
	}
}

func TestTopContributorShare(t *testing.T) {
	tests := []struct {
		name     string
		contribs []contributorResponse
		want     float64
	}{
		{"empty", nil, 0},
		{"single", []contributorResponse{{Contributions: 10}}, 1.0},
		{"split", []contributorResponse{{Contributions: 75}, {Contributions: 25}}, 0.75},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := topContributorShare(tt.contribs); got != tt.want {
				t.Errorf("topContributorShare() = %v, want %v", got, tt.want)
			}
		})
	}
}
