// Package github fetches repository metadata from the GitHub REST API and
// normalizes it into score.ArtifactRecord.
package github

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

// Client provides access to the GitHub API with optional authentication.
// All methods are safe for concurrent use.
type Client struct {
	*integrations.Client
	baseURL string
}

// NewClient creates a GitHub client. Pass an empty token for
// unauthenticated requests (lower rate limits).
func NewClient(backend cache.Cache, token string, cacheTTL time.Duration) *Client {
	headers := map[string]string{"Accept": "application/vnd.github+json"}
	if token != "" {
		headers["Authorization"] = "Bearer " + token
	}
	return &Client{
		Client:  integrations.NewClient(backend, "gh:", cacheTTL, headers),
		baseURL: "https://api.github.com",
	}
}

// Source implements score.Adapter.
func (c *Client) Source() score.Source { return score.SourceGitHub }

// Fetch retrieves one repository ("owner/repo") and normalizes it. The
// contributor list, file tree, and README are each best-effort; their
// absence degrades individual fields, not the record.
func (c *Client) Fetch(ctx context.Context, id string, category score.Category) (*score.ArtifactRecord, error) {
	if err := errors.ValidateArtifactID(id); err != nil {
		return nil, err
	}
	owner, repo, err := integrations.OwnerRepo("https://github.com/" + id)
	if err != nil {
		return nil, err
	}

	key := string(category) + ":" + id
	var rec score.ArtifactRecord
	err = c.Cached(ctx, key, false, &rec, func() error {
		return c.fetch(ctx, owner, repo, category, &rec)
	})
	if err != nil {
		return nil, err
	}
	return &rec, nil
}

func (c *Client) fetch(ctx context.Context, owner, repo string, category score.Category, rec *score.ArtifactRecord) error {
	var data repoResponse
	url := fmt.Sprintf("%s/repos/%s/%s", c.baseURL, owner, repo)
	if err := c.Get(ctx, url, &data); err != nil {
		return errors.Wrap(errors.ErrCodeFetchFailed, err, "github repo %s/%s", owner, repo)
	}

	*rec = score.ArtifactRecord{
		ID:        owner + "/" + repo,
		Source:    score.SourceGitHub,
		Category:  category,
		Stars:     data.Stars,
		UpdatedAt: data.PushedAt,
		Raw: map[string]any{
			"stargazers_count": data.Stars,
			"size":             data.SizeKB,
			"default_branch":   data.DefaultBranch,
			"archived":         data.Archived,
		},
	}

	if data.License.SPDXID != "" && data.License.SPDXID != "NOASSERTION" {
		lic := strings.ToLower(data.License.SPDXID)
		rec.License = &lic
	}
	if data.SizeKB > 0 {
		size := int64(data.SizeKB) * 1024
		rec.SizeBytes = &size
	}

	if contribs, err := c.fetchContributors(ctx, owner, repo); err == nil {
		rec.Contributors = len(contribs)
		if pct := topContributorShare(contribs); pct > 0 {
			rec.TopContributorPct = &pct
		}
	}

	branch := data.DefaultBranch
	if branch == "" {
		branch = "main"
	}
	if files, err := c.fetchTree(ctx, owner, repo, branch); err == nil {
		rec.Files = files
		rec.HasTests = hasTestFiles(files)
	}

	if readme, err := c.fetchReadme(ctx, owner, repo); err == nil && readme != "" {
		rec.ReadmeText = &readme
	}
	return nil
}

func (c *Client) fetchContributors(ctx context.Context, owner, repo string) ([]contributorResponse, error) {
	var data []contributorResponse
	url := fmt.Sprintf("%s/repos/%s/%s/contributors?per_page=100", c.baseURL, owner, repo)
	if err := c.Get(ctx, url, &data); err != nil {
		return nil, err
	}
	filtered := data[:0]
	for _, cr := range data {
		if cr.Type != "Bot" {
			filtered = append(filtered, cr)
		}
	}
	return filtered, nil
}

func (c *Client) fetchTree(ctx context.Context, owner, repo, branch string) ([]string, error) {
	var data treeResponse
	url := fmt.Sprintf("%s/repos/%s/%s/git/trees/%s?recursive=1", c.baseURL, owner, repo, branch)
	if err := c.Get(ctx, url, &data); err != nil {
		return nil, err
	}
	var files []string
	for _, entry := range data.Tree {
		if entry.Type == "blob" {
			files = append(files, entry.Path)
		}
	}
	return files, nil
}

// fetchReadme asks for the raw media type so GitHub returns file content
// instead of a base64 JSON envelope.
func (c *Client) fetchReadme(ctx context.Context, owner, repo string) (string, error) {
	url := fmt.Sprintf("%s/repos/%s/%s/readme", c.baseURL, owner, repo)
	return c.GetTextWithHeaders(ctx, url, map[string]string{"Accept": "application/vnd.github.raw+json"})
}

// topContributorShare returns the top contributor's fraction of total
// commits. Zero when the list is empty.
func topContributorShare(contribs []contributorResponse) float64 {
	total := 0
	top := 0
	for _, cr := range contribs {
		total += cr.Contributions
		if cr.Contributions > top {
			top = cr.Contributions
		}
	}
	if total == 0 {
		return 0
	}
	return float64(top) / float64(total)
}

func hasTestFiles(files []string) bool {
	for _, f := range files {
		lower := strings.ToLower(f)
		if strings.Contains(lower, "test") || strings.HasPrefix(lower, "spec/") {
			return true
		}
	}
	return false
}

type repoResponse struct {
	Stars         int        `json:"stargazers_count"`
	SizeKB        int        `json:"size"`
	PushedAt      *time.Time `json:"pushed_at"`
	DefaultBranch string     `json:"default_branch"`
	Archived      bool       `json:"archived"`
	License       struct {
		SPDXID string `json:"spdx_id"`
	} `json:"license"`
}

type contributorResponse struct {
	Login         string `json:"login"`
	Contributions int    `json:"contributions"`
	Type          string `json:"type"`
}

type treeResponse struct {
	Tree []struct {
		Path string `json:"path"`
		Type string `json:"type"`
	} `json:"tree"`
}
