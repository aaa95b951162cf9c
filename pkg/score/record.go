// Package score defines the domain model for artifact trust scoring: the
// normalized ArtifactRecord produced by source adapters, the MetricResult
// and AggregateRecord output shapes, and the scoring configuration.
package score

import "time"

// Category classifies what kind of artifact a URL points at.
type Category string

const (
	CategoryModel   Category = "model"
	CategoryDataset Category = "dataset"
	CategoryCode    Category = "code"
)

// Source identifies which remote API an artifact was fetched from.
type Source string

const (
	SourceHuggingFace Source = "huggingface"
	SourceGitHub      Source = "github"
	SourceGitLab      Source = "gitlab"
)

// ArtifactRecord is the normalized view of one remote artifact. ID, Source,
// and Category are always present; every other field is optional. Optional
// scalars are pointers so that absence is distinguishable from a zero value,
// and metrics must treat absence as "unknown" rather than as zero.
type ArtifactRecord struct {
	ID       string   `json:"id"`
	Source   Source   `json:"source"`
	Category Category `json:"category"`

	License    *string  `json:"license,omitempty"`
	ReadmeText *string  `json:"readme_text,omitempty"`
	Tags       []string `json:"tags,omitempty"`
	SizeBytes  *int64   `json:"size_bytes,omitempty"`

	Downloads         int      `json:"downloads"`
	Stars             int      `json:"stars"`
	Contributors      int      `json:"contributors"`
	TopContributorPct *float64 `json:"top_contributor_pct,omitempty"`

	HasTests  bool       `json:"has_tests"`
	Files     []string   `json:"files,omitempty"`
	UpdatedAt *time.Time `json:"updated_at,omitempty"`

	// Availability of the companion URLs in the same manifest group.
	LinkedCode    bool `json:"linked_code"`
	LinkedDataset bool `json:"linked_dataset"`
	LinksOK       bool `json:"links_ok"`

	// Degraded marks a record whose fetch failed; all optional fields are
	// absent and metrics score from their documented minimums.
	Degraded bool `json:"degraded"`

	// Raw retains the original API payload for metrics that need fields
	// outside the normalized set.
	Raw map[string]any `json:"-"`
}

// NewDegradedRecord builds the safe-default record substituted when a
// fetch fails. Every optional field is absent.
func NewDegradedRecord(id string, source Source, category Category) *ArtifactRecord {
	return &ArtifactRecord{
		ID:       id,
		Source:   source,
		Category: category,
		Degraded: true,
	}
}

// Readme returns the readme text, or empty string when absent.
func (r *ArtifactRecord) Readme() string {
	if r.ReadmeText == nil {
		return ""
	}
	return *r.ReadmeText
}

// LicenseID returns the license identifier, or empty string when absent.
func (r *ArtifactRecord) LicenseID() string {
	if r.License == nil {
		return ""
	}
	return *r.License
}

// Name returns the display name for output records: the last segment of
// the artifact ID (e.g. "owner/bert-base" -> "bert-base").
func (r *ArtifactRecord) Name() string {
	id := r.ID
	for i := len(id) - 1; i >= 0; i-- {
		if id[i] == '/' {
			return id[i+1:]
		}
	}
	return id
}
