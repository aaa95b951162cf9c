package integrations

import (
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/modelscore/modelscore/pkg/errors"
)

const httpTimeout = 10 * time.Second

// NewHTTPClient creates an HTTP client with a standard timeout for source
// API requests.
func NewHTTPClient() *http.Client {
	return &http.Client{Timeout: httpTimeout}
}

var repoURLReplacer = strings.NewReplacer(
	"git@github.com:", "https://github.com/",
	"git://github.com/", "https://github.com/",
	"git@gitlab.com:", "https://gitlab.com/",
)

// NormalizeRepoURL converts various repository URL formats to canonical
// HTTPS form. Handles git@, git://, and git+ prefixes, and removes .git
// suffixes. Returns empty string if raw is empty.
func NormalizeRepoURL(raw string) string {
	if raw == "" {
		return ""
	}
	s := strings.TrimSpace(raw)
	s = strings.TrimPrefix(s, "git+")
	s = repoURLReplacer.Replace(s)
	return strings.TrimSuffix(s, ".git")
}

// OwnerRepo extracts the owner and repository name from a forge URL such as
// https://github.com/owner/repo or https://gitlab.com/group/project. Extra
// path segments (tree/main, blob/...) are ignored.
func OwnerRepo(rawURL string) (owner, repo string, err error) {
	u, parseErr := url.Parse(NormalizeRepoURL(rawURL))
	if parseErr != nil {
		return "", "", errors.Wrap(errors.ErrCodeInvalidURL, parseErr, "parsing repository URL %q", rawURL)
	}
	parts := strings.Split(strings.Trim(u.Path, "/"), "/")
	if len(parts) < 2 || parts[0] == "" || parts[1] == "" {
		return "", "", errors.New(errors.ErrCodeInvalidURL, "repository URL %q has no owner/repo path", rawURL)
	}
	return parts[0], strings.TrimSuffix(parts[1], ".git"), nil
}

// URLEncode percent-encodes a string for use as a single URL path or query
// component. Slashes are encoded, which GitLab requires for project IDs.
func URLEncode(s string) string { return url.QueryEscape(s) }
