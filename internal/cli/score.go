package cli

import (
	"context"
	"os"
	"strings"
	"sync"

	"github.com/charmbracelet/log"
	"github.com/joho/godotenv"
	"github.com/spf13/cobra"

	"github.com/modelscore/modelscore/pkg/cache"
	"github.com/modelscore/modelscore/pkg/errors"
	"github.com/modelscore/modelscore/pkg/integrations"
	"github.com/modelscore/modelscore/pkg/integrations/genai"
	"github.com/modelscore/modelscore/pkg/integrations/github"
	"github.com/modelscore/modelscore/pkg/integrations/gitlab"
	"github.com/modelscore/modelscore/pkg/integrations/huggingface"
	"github.com/modelscore/modelscore/pkg/score"
	"github.com/modelscore/modelscore/pkg/score/metrics"
	"github.com/modelscore/modelscore/pkg/score/runner"
)

var tokenWarnOnce sync.Once

// newScoreCmd creates the score command: read a URL manifest, score every
// group, and write NDJSON records to stdout.
func newScoreCmd() *cobra.Command {
	var (
		configPath   string
		workers      int
		cacheBackend string
		redisAddr    string
	)

	cmd := &cobra.Command{
		Use:   "score <manifest>",
		Short: "Score the trustworthiness of model, dataset, and code URLs",
		Long: `Score reads a manifest with one comma-separated URL group per line
(code_url, dataset_url, model_url; blank slots allowed), fetches metadata
for each primary artifact, computes the metric catalog, and writes one
NDJSON record per group to stdout in input order.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			logger := loggerFromContext(ctx)

			// Best-effort: a missing .env file is fine.
			_ = godotenv.Load()
			warnBadGitHubToken()

			cfg, err := score.LoadConfig(configPath)
			if err != nil {
				return err
			}
			if workers > 0 {
				cfg.Workers = workers
			}

			backend, err := openCache(ctx, cacheBackend, redisAddr)
			if err != nil {
				return err
			}
			defer backend.Close()

			assessor, closeAssessor := newAssessor(ctx, logger)
			defer closeAssessor()

			registry, err := metrics.NewCatalog(cfg, assessor)
			if err != nil {
				return err
			}

			r, err := runner.New(cfg, buildAdapters(backend, cfg), registry, logger)
			if err != nil {
				return err
			}
			r.SetProber(integrations.NewClient(backend, "probe:", cfg.CacheTTL.Duration, nil))

			f, err := os.Open(args[0])
			if err != nil {
				return errors.Wrap(errors.ErrCodeInvalidInput, err, "opening manifest %s", args[0])
			}
			groups, parseErr := parseManifest(f)
			f.Close()
			if parseErr != nil {
				return parseErr
			}

			if err := r.Run(ctx, groups, os.Stdout); err != nil {
				return err
			}
			printSuccess("Scored %d URL groups", len(groups))
			return nil
		},
	}

	cmd.Flags().StringVarP(&configPath, "config", "c", "", "TOML config overriding weights and thresholds")
	cmd.Flags().IntVarP(&workers, "workers", "w", 0, "bound on concurrent fetches (default from config)")
	cmd.Flags().StringVar(&cacheBackend, "cache", "file", "response cache backend: file, memory, redis, none")
	cmd.Flags().StringVar(&redisAddr, "redis-addr", "localhost:6379", "redis address for --cache redis")
	return cmd
}

// buildAdapters wires one adapter per supported source, authenticated
// from the conventional environment variables when present.
func buildAdapters(backend cache.Cache, cfg *score.Config) map[score.Source]score.Adapter {
	ttl := cfg.CacheTTL.Duration
	return map[score.Source]score.Adapter{
		score.SourceHuggingFace: huggingface.NewClient(backend, os.Getenv("HF_TOKEN"), ttl),
		score.SourceGitHub:      github.NewClient(backend, os.Getenv("GITHUB_TOKEN"), ttl),
		score.SourceGitLab:      gitlab.NewClient(backend, os.Getenv("GITLAB_TOKEN"), ttl),
	}
}

// newAssessor returns the Gemini bus-factor assessor when GEMINI_API_KEY
// is set. Failures fall back to the heuristic rather than aborting.
func newAssessor(ctx context.Context, logger *log.Logger) (metrics.BusFactorAssessor, func()) {
	key := os.Getenv("GEMINI_API_KEY")
	if key == "" {
		return nil, func() {}
	}
	a, err := genai.NewAssessor(ctx, key)
	if err != nil {
		logger.Warn("gemini assessor unavailable, using heuristic bus factor", "err", err)
		return nil, func() {}
	}
	return a, func() { _ = a.Close() }
}

func openCache(ctx context.Context, backend, redisAddr string) (cache.Cache, error) {
	switch backend {
	case "file":
		return cache.NewFileCache("")
	case "memory":
		return cache.NewMemoryCache(cache.DefaultMemoryEntries)
	case "redis":
		return cache.NewRedisCache(ctx, redisAddr)
	case "none":
		return cache.NewNullCache(), nil
	default:
		return nil, errors.New(errors.ErrCodeInvalidInput, "unknown cache backend %q", backend)
	}
}

// warnBadGitHubToken flags a GITHUB_TOKEN that cannot be a valid token
// (wrong prefix), once per process. The run continues unauthenticated.
func warnBadGitHubToken() {
	token := os.Getenv("GITHUB_TOKEN")
	if token == "" {
		return
	}
	if strings.HasPrefix(token, "ghp_") || strings.HasPrefix(token, "github_pat_") ||
		strings.HasPrefix(token, "gho_") {
		return
	}
	tokenWarnOnce.Do(func() {
		printWarning("GITHUB_TOKEN does not look like a GitHub token; requests may be rejected")
	})
}
