// Package huggingface fetches model, dataset, and space metadata from the
// Hugging Face Hub API and normalizes it into score.ArtifactRecord.
package huggingface

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"github.com/modelscore/modelscore/pkg/cache"
	"github.com/modelscore/modelscore/pkg/errors"
	"github.com/modelscore/modelscore/pkg/integrations"
	"github.com/modelscore/modelscore/pkg/score"
)

const licenseTagPrefix = "license:"

// Client provides access to the Hugging Face Hub API.
// All methods are safe for concurrent use.
type Client struct {
	*integrations.Client
	baseURL string
}

// NewClient creates a Hub client with the given cache backend. Pass an
// empty token for unauthenticated requests; gated repos then fetch as
// degraded records.
func NewClient(backend cache.Cache, token string, cacheTTL time.Duration) *Client {
	var headers map[string]string
	if token != "" {
		headers = map[string]string{"Authorization": "Bearer " + token}
	}
	return &Client{
		Client:  integrations.NewClient(backend, "hf:", cacheTTL, headers),
		baseURL: "https://huggingface.co",
	}
}

// Source implements score.Adapter.
func (c *Client) Source() score.Source { return score.SourceHuggingFace }

// Fetch retrieves one Hub artifact and normalizes it. Models and datasets
// use their dedicated API endpoints; the code category maps to Spaces.
// The README is fetched best-effort: a missing card leaves ReadmeText
// absent rather than failing the record.
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
	var raw map[string]any
	if err := c.Get(ctx, c.apiURL(id, category), &raw); err != nil {
		return errors.Wrap(errors.ErrCodeFetchFailed, err, "huggingface %s %s", category, id)
	}

	var data repoResponse
	if payload, err := json.Marshal(raw); err == nil {
		_ = json.Unmarshal(payload, &data)
	}

	*rec = score.ArtifactRecord{
		ID:        id,
		Source:    score.SourceHuggingFace,
		Category:  category,
		Tags:      data.Tags,
		Downloads: data.Downloads,
		Stars:     data.Likes,
		UpdatedAt: data.LastModified,
		Raw:       raw,
	}

	if lic := extractLicense(data.CardData, data.Tags); lic != "" {
		rec.License = &lic
	}
	if size := artifactSize(data); size > 0 {
		rec.SizeBytes = &size
	}
	for _, s := range data.Siblings {
		rec.Files = append(rec.Files, s.Rfilename)
	}
	rec.HasTests = hasTestFiles(rec.Files)

	if readme, err := c.GetText(ctx, c.readmeURL(id, category)); err == nil && readme != "" {
		rec.ReadmeText = &readme
	}
	return nil
}

func (c *Client) apiURL(id string, category score.Category) string {
	switch category {
	case score.CategoryDataset:
		return fmt.Sprintf("%s/api/datasets/%s", c.baseURL, id)
	case score.CategoryCode:
		return fmt.Sprintf("%s/api/spaces/%s", c.baseURL, id)
	default:
		return fmt.Sprintf("%s/api/models/%s", c.baseURL, id)
	}
}

func (c *Client) readmeURL(id string, category score.Category) string {
	switch category {
	case score.CategoryDataset:
		return fmt.Sprintf("%s/datasets/%s/raw/main/README.md", c.baseURL, id)
	case score.CategoryCode:
		return fmt.Sprintf("%s/spaces/%s/raw/main/README.md", c.baseURL, id)
	default:
		return fmt.Sprintf("%s/%s/raw/main/README.md", c.baseURL, id)
	}
}

// extractLicense resolves the license identifier from card data, falling
// back to the "license:x" tag convention. Identifiers are lowercased to
// match the compatible-license set.
func extractLicense(cardData map[string]any, tags []string) string {
	switch v := cardData["license"].(type) {
	case string:
		return strings.ToLower(strings.TrimSpace(v))
	case []any:
		if len(v) > 0 {
			if s, ok := v[0].(string); ok {
				return strings.ToLower(strings.TrimSpace(s))
			}
		}
	}
	for _, tag := range tags {
		if strings.HasPrefix(tag, licenseTagPrefix) {
			return strings.ToLower(strings.TrimPrefix(tag, licenseTagPrefix))
		}
	}
	return ""
}

// artifactSize prefers the Hub's usedStorage figure and falls back to
// summing sibling file sizes when it is missing.
func artifactSize(data repoResponse) int64 {
	if data.UsedStorage > 0 {
		return data.UsedStorage
	}
	var sum int64
	for _, s := range data.Siblings {
		if s.Size > 0 {
			sum += s.Size
		}
	}
	return sum
}

func hasTestFiles(files []string) bool {
	for _, f := range files {
		lower := strings.ToLower(f)
		if strings.Contains(lower, "test") {
			return true
		}
	}
	return false
}

type repoResponse struct {
	Tags         []string       `json:"tags"`
	Downloads    int            `json:"downloads"`
	Likes        int            `json:"likes"`
	LastModified *time.Time     `json:"lastModified"`
	CardData     map[string]any `json:"cardData"`
	UsedStorage  int64          `json:"usedStorage"`
	Siblings     []sibling      `json:"siblings"`
}

type sibling struct {
	Rfilename string `json:"rfilename"`
	Size      int64  `json:"size"`
}
