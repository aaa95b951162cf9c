// Package gitlab fetches project metadata from the GitLab REST API and
// normalizes it into score.ArtifactRecord.
package gitlab

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/modelscore/modelscore/pkg/cache"
	"github.com/modelscore/modelscore/pkg/errors"
	"github.com/modelscore/modelscore/pkg/integrations"
	"github.com/modelscore/modelscore/pkg/score"
)

// Client provides access to the GitLab API with optional authentication.
// All methods are safe for concurrent use.
type Client struct {
	*integrations.Client
	baseURL string
}

// NewClient creates a GitLab client. Pass an empty token for
// unauthenticated requests.
func NewClient(backend cache.Cache, token string, cacheTTL time.Duration) *Client {
	var headers map[string]string
	if token != "" {
		headers = map[string]string{"PRIVATE-TOKEN": token}
	}
	return &Client{
		Client:  integrations.NewClient(backend, "gl:", cacheTTL, headers),
		baseURL: "https://gitlab.com",
	}
}

// Source implements score.Adapter.
func (c *Client) Source() score.Source { return score.SourceGitLab }

// Fetch retrieves one project ("group/project") and normalizes it. The
// file tree, contributor list, and README are best-effort.
func (c *Client) Fetch(ctx context.Context, id string, category score.Category) (*score.ArtifactRecord, error) {
	if err := errors.ValidateArtifactID(id); err != nil {
		return nil, err
	}

	key := string(category) + ":" + id
	var rec score.ArtifactRecord
	err := c.Cached(ctx, key, false, &rec, func() error {
		return c.fetch(ctx, id, category, &rec)
	})
	if err != nil {
		return nil, err
	}
	return &rec, nil
}

func (c *Client) fetch(ctx context.Context, id string, category score.Category, rec *score.ArtifactRecord) error {
	encoded := integrations.URLEncode(id)

	var data projectResponse
	url := fmt.Sprintf("%s/api/v4/projects/%s?license=true", c.baseURL, encoded)
	if err := c.Get(ctx, url, &data); err != nil {
		return errors.Wrap(errors.ErrCodeFetchFailed, err, "gitlab project %s", id)
	}

	*rec = score.ArtifactRecord{
		ID:        id,
		Source:    score.SourceGitLab,
		Category:  category,
		Stars:     data.StarCount,
		UpdatedAt: data.LastActivityAt,
		Raw: map[string]any{
			"star_count":     data.StarCount,
			"default_branch": data.DefaultBranch,
			"archived":       data.Archived,
		},
	}

	if data.License.Key != "" {
		lic := strings.ToLower(data.License.Key)
		rec.License = &lic
	}

	if contribs, err := c.fetchContributors(ctx, encoded); err == nil {
		rec.Contributors = len(contribs)
		if pct := topContributorShare(contribs); pct > 0 {
			rec.TopContributorPct = &pct
		}
	}

	if files, err := c.fetchTree(ctx, encoded); err == nil {
		rec.Files = files
		rec.HasTests = hasTestFiles(files)
	}

	branch := data.DefaultBranch
	if branch == "" {
		branch = "main"
	}
	readmeURL := fmt.Sprintf("%s/%s/-/raw/%s/README.md", c.baseURL, id, branch)
	if readme, err := c.GetText(ctx, readmeURL); err == nil && readme != "" {
		rec.ReadmeText = &readme
	}
	return nil
}

func (c *Client) fetchContributors(ctx context.Context, encoded string) ([]contributorResponse, error) {
	var data []contributorResponse
	url := fmt.Sprintf("%s/api/v4/projects/%s/repository/contributors?per_page=100", c.baseURL, encoded)
	if err := c.Get(ctx, url, &data); err != nil {
		return nil, err
	}
	return data, nil
}

func (c *Client) fetchTree(ctx context.Context, encoded string) ([]string, error) {
	var data []treeEntry
	url := fmt.Sprintf("%s/api/v4/projects/%s/repository/tree?recursive=true&per_page=100", c.baseURL, encoded)
	if err := c.Get(ctx, url, &data); err != nil {
		return nil, err
	}
	var files []string
	for _, entry := range data {
		if entry.Type == "blob" {
			files = append(files, entry.Path)
		}
	}
	return files, nil
}

func topContributorShare(contribs []contributorResponse) float64 {
	total := 0
	top := 0
	for _, cr := range contribs {
		total += cr.Commits
		if cr.Commits > top {
			top = cr.Commits
		}
	}
	if total == 0 {
		return 0
	}
	return float64(top) / float64(total)
}

func hasTestFiles(files []string) bool {
	for _, f := range files {
		if strings.Contains(strings.ToLower(f), "test") {
			return true
		}
	}
	return false
}

type projectResponse struct {
	StarCount      int        `json:"star_count"`
	DefaultBranch  string     `json:"default_branch"`
	LastActivityAt *time.Time `json:"last_activity_at"`
	Archived       bool       `json:"archived"`
	License        struct {
		Key string `json:"key"`
	} `json:"license"`
}

type contributorResponse struct {
	Name    string `json:"name"`
	Commits int    `json:"commits"`
}

type treeEntry struct {
	Path string `json:"path"`
	Type string `json:"type"`
}
