package heuristics

import (
	"strings"
)

var packagingMarkers = []string{
	"pyproject.toml", "setup.py", "setup.cfg", "requirements.txt",
	"go.mod", "package.json", "cargo.toml", "pom.xml",
}

var ciMarkers = []string{
	".github/workflows/", ".gitlab-ci.yml", ".travis.yml", "azure-pipelines.yml",
}

var docMarkers = []string{
	"readme", "docs/", "contributing", "changelog",
}

// CodeQuality scores a repository's engineering hygiene from its file
// list: tests present, packaging metadata, CI configuration, and
// documentation, each worth a quarter. An empty file list scores zero.
func CodeQuality(files []string, hasTests bool) float64 {
	if len(files) == 0 {
		return 0
	}

	signals := 0
	if hasTests {
		signals++
	}
	if containsAny(files, packagingMarkers) {
		signals++
	}
	if containsAny(files, ciMarkers) {
		signals++
	}
	if containsAny(files, docMarkers) {
		signals++
	}
	return float64(signals) / 4
}

// DatasetQuality scores a dataset from three boolean signals averaged
// together: substantive documentation, provenance description, and
// split/label structure. Each is derived from the readme and tags only.
func DatasetQuality(readme string, tags []string) float64 {
	lower := strings.ToLower(readme)

	signals := 0
	if len(readme) >= 200 {
		signals++
	}
	if strings.Contains(lower, "source") || strings.Contains(lower, "collect") ||
		strings.Contains(lower, "annotat") || strings.Contains(lower, "curat") {
		signals++
	}
	if strings.Contains(lower, "split") || strings.Contains(lower, "label") ||
		strings.Contains(lower, "class") || hasTaskTag(tags) {
		signals++
	}
	return float64(signals) / 3
}

func hasTaskTag(tags []string) bool {
	for _, tag := range tags {
		if strings.HasPrefix(tag, "task_categories:") || strings.HasPrefix(tag, "task_ids:") {
			return true
		}
	}
	return false
}

func containsAny(files []string, markers []string) bool {
	for _, f := range files {
		lower := strings.ToLower(f)
		for _, m := range markers {
			if strings.Contains(lower, m) {
				return true
			}
		}
	}
	return false
}
