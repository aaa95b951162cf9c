// Package genai provides an optional Gemini-backed assessor used by the
// bus-factor metric. When no API key is configured the metric falls back
// to its contributor-share heuristic; this package is never required for
// a run to complete.
package genai

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"

	"github.com/google/generative-ai-go/genai"
	"google.golang.org/api/option"

	"github.com/modelscore/modelscore/pkg/errors"
	"github.com/modelscore/modelscore/pkg/score"
)

const modelName = "gemini-2.5-flash-lite"

// Assessor asks Gemini for a maintainer-sustainability judgement of one
// artifact based on its normalized metadata.
type Assessor struct {
	client *genai.Client
	model  *genai.GenerativeModel
}

type assessment struct {
	BusFactorScore float64 `json:"bus_factor_score"`
	Rationale      string  `json:"rationale"`
}

// NewAssessor creates a Gemini-backed assessor with the given API key.
func NewAssessor(ctx context.Context, apiKey string) (*Assessor, error) {
	client, err := genai.NewClient(ctx, option.WithAPIKey(apiKey))
	if err != nil {
		return nil, errors.Wrap(errors.ErrCodeNetwork, err, "creating gemini client")
	}

	model := client.GenerativeModel(modelName)
	model.ResponseMIMEType = "application/json"

	return &Assessor{client: client, model: model}, nil
}

// Close releases the underlying API client.
func (a *Assessor) Close() error {
	return a.client.Close()
}

// AssessBusFactor returns a score in [0,1] expressing how resilient the
// project is to losing its most active maintainer (1 = many active
// maintainers, 0 = single point of failure).
func (a *Assessor) AssessBusFactor(ctx context.Context, rec *score.ArtifactRecord) (float64, error) {
	prompt := buildPrompt(rec)

	resp, err := a.model.GenerateContent(ctx, genai.Text(prompt))
	if err != nil {
		return 0, errors.Wrap(errors.ErrCodeMetricFault, err, "gemini call failed")
	}
	if len(resp.Candidates) == 0 || len(resp.Candidates[0].Content.Parts) == 0 {
		return 0, errors.New(errors.ErrCodeMetricFault, "gemini returned no content")
	}

	part, ok := resp.Candidates[0].Content.Parts[0].(genai.Text)
	if !ok {
		return 0, errors.New(errors.ErrCodeMetricFault, "gemini returned non-text content")
	}
	return parseAssessment(string(part))
}

func buildPrompt(rec *score.ArtifactRecord) string {
	var b strings.Builder
	fmt.Fprintf(&b, "You are assessing the maintainer sustainability (bus factor) of an open source artifact.\n\n")
	fmt.Fprintf(&b, "Artifact: %s (%s, %s)\n", rec.ID, rec.Source, rec.Category)
	fmt.Fprintf(&b, "Known contributors: %d\n", rec.Contributors)
	if rec.TopContributorPct != nil {
		fmt.Fprintf(&b, "Top contributor commit share: %.0f%%\n", *rec.TopContributorPct*100)
	}
	if rec.UpdatedAt != nil {
		fmt.Fprintf(&b, "Last updated: %s\n", rec.UpdatedAt.Format("2006-01-02"))
	}
	if readme := rec.Readme(); readme != "" {
		excerpt := readme
		if len(excerpt) > 2000 {
			excerpt = excerpt[:2000]
		}
		fmt.Fprintf(&b, "\nREADME excerpt:\n%s\n", excerpt)
	}
	b.WriteString(`
Return strict JSON with exactly these fields:
1. bus_factor_score (number between 0 and 1, where 1 means the project survives losing its top maintainer and 0 means a single point of failure)
2. rationale (one sentence)

Return JSON only, no markdown fences.`)
	return b.String()
}

// parseAssessment extracts the score from the model output. Responses are
// sometimes wrapped in markdown fences or use a 0-100 scale, both of which
// are tolerated.
func parseAssessment(raw string) (float64, error) {
	start := strings.Index(raw, "{")
	end := strings.LastIndex(raw, "}")
	if start == -1 || end <= start {
		return 0, errors.New(errors.ErrCodeMetricFault, "no JSON object in gemini output: %.80s", raw)
	}

	var res assessment
	if err := json.Unmarshal([]byte(raw[start:end+1]), &res); err != nil {
		return 0, errors.Wrap(errors.ErrCodeMetricFault, err, "parsing gemini output")
	}

	s := res.BusFactorScore
	if s > 1 && s <= 100 {
		s = s / 100
	}
	if s < 0 {
		s = 0
	}
	if s > 1 {
		s = 1
	}
	return s, nil
}
