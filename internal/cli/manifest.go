package cli

import (
	"bufio"
	"io"
	"regexp"
	"strings"

	"github.com/modelscore/modelscore/pkg/errors"
	"github.com/modelscore/modelscore/pkg/score"
	"github.com/modelscore/modelscore/pkg/score/runner"
)

// URL classification patterns. Order matters: the dataset and space forms
// must be tried before the generic Hub form.
var (
	hfDatasetRE = regexp.MustCompile(`^https?://(?:www\.)?huggingface\.co/datasets/([\w.-]+(?:/[\w.-]+)?)`)
	hfSpaceRE   = regexp.MustCompile(`^https?://(?:www\.)?huggingface\.co/spaces/([\w.-]+/[\w.-]+)`)
	hfModelRE   = regexp.MustCompile(`^https?://(?:www\.)?huggingface\.co/([\w.-]+(?:/[\w.-]+)?)`)
	githubRE    = regexp.MustCompile(`^https?://(?:www\.)?github\.com/([\w.-]+/[\w.-]+)`)
	gitlabRE    = regexp.MustCompile(`^https?://(?:www\.)?gitlab\.com/([\w.-]+(?:/[\w.-]+)+)`)
)

// classifyURL maps a raw URL to its target: source, category, and the
// source-specific identifier.
func classifyURL(raw string) (runner.Target, error) {
	raw = strings.TrimSpace(raw)
	if err := errors.ValidateURL(raw); err != nil {
		return runner.Target{}, err
	}

	if m := hfDatasetRE.FindStringSubmatch(raw); m != nil {
		return newTarget(raw, m[1], score.SourceHuggingFace, score.CategoryDataset), nil
	}
	if m := hfSpaceRE.FindStringSubmatch(raw); m != nil {
		return newTarget(raw, m[1], score.SourceHuggingFace, score.CategoryCode), nil
	}
	if m := hfModelRE.FindStringSubmatch(raw); m != nil {
		return newTarget(raw, m[1], score.SourceHuggingFace, score.CategoryModel), nil
	}
	if m := githubRE.FindStringSubmatch(raw); m != nil {
		return newTarget(raw, m[1], score.SourceGitHub, score.CategoryCode), nil
	}
	if m := gitlabRE.FindStringSubmatch(raw); m != nil {
		return newTarget(raw, m[1], score.SourceGitLab, score.CategoryCode), nil
	}
	return runner.Target{}, errors.New(errors.ErrCodeInvalidURL, "unsupported URL: %s", raw)
}

func newTarget(url, id string, source score.Source, category score.Category) runner.Target {
	return runner.Target{
		URL:      url,
		ID:       strings.TrimSuffix(id, ".git"),
		Source:   source,
		Category: category,
	}
}

// parseManifest reads URL groups from r: one comma-separated
// "code_url, dataset_url, model_url" triple per line, blank slots
// allowed. The primary scored artifact is the model when present,
// otherwise the dataset, otherwise the code URL.
func parseManifest(r io.Reader) ([]runner.Group, error) {
	var groups []runner.Group
	lineNo := 0

	scanner := bufio.NewScanner(r)
	for scanner.Scan() {
		lineNo++
		line := strings.TrimSpace(scanner.Text())
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}

		g, err := parseGroup(line)
		if err != nil {
			return nil, errors.Wrap(errors.ErrCodeInvalidInput, err, "manifest line %d", lineNo)
		}
		groups = append(groups, g)
	}
	if err := scanner.Err(); err != nil {
		return nil, errors.Wrap(errors.ErrCodeInvalidInput, err, "reading manifest")
	}
	if len(groups) == 0 {
		return nil, errors.New(errors.ErrCodeInvalidInput, "manifest contains no URLs")
	}
	return groups, nil
}

func parseGroup(line string) (runner.Group, error) {
	parts := strings.Split(line, ",")
	if len(parts) > 3 {
		return runner.Group{}, errors.New(errors.ErrCodeInvalidInput, "expected at most 3 URLs, got %d", len(parts))
	}
	// Pad so a bare model URL still lands in the model slot.
	for len(parts) < 3 {
		parts = append([]string{""}, parts...)
	}

	var g runner.Group
	if codeURL := strings.TrimSpace(parts[0]); codeURL != "" {
		t, err := classifyURL(codeURL)
		if err != nil {
			return runner.Group{}, err
		}
		g.Code = &t
	}
	if datasetURL := strings.TrimSpace(parts[1]); datasetURL != "" {
		t, err := classifyURL(datasetURL)
		if err != nil {
			return runner.Group{}, err
		}
		// The slot decides the role: a plain Hub URL in the dataset
		// position is still a dataset.
		t.Category = score.CategoryDataset
		g.Dataset = &t
	}
	if modelURL := strings.TrimSpace(parts[2]); modelURL != "" {
		t, err := classifyURL(modelURL)
		if err != nil {
			return runner.Group{}, err
		}
		g.Primary = t
		return g, nil
	}

	// No model URL: score the dataset, or failing that the code repo.
	switch {
	case g.Dataset != nil:
		g.Primary = *g.Dataset
		g.Dataset = nil
	case g.Code != nil:
		g.Primary = *g.Code
		g.Code = nil
	default:
		return runner.Group{}, errors.New(errors.ErrCodeInvalidInput, "no URLs in group")
	}
	return g, nil
}
