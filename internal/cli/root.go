package cli

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"
)

var (
	version = "dev" // semantic version (e.g., "v1.2.3")
	commit  string  // git commit SHA
	date    string  // build timestamp
)

// SetVersion sets the version information displayed by --version. Called
// by the main package with values injected via ldflags at build time.
func SetVersion(v, c, d string) {
	version = v
	commit = c
	date = d
}

// Execute runs the modelscore CLI under ctx and returns the first command
// error. The logger is built from --verbose plus the LOG_LEVEL and
// LOG_FILE environment variables and attached to the command context.
func Execute(ctx context.Context) error {
	var (
		verbose bool
		cleanup = func() {}
	)

	root := &cobra.Command{
		Use:          "modelscore",
		Short:        "Modelscore rates the trustworthiness of ML models, datasets, and code",
		Long: `Modelscore fetches metadata for Hugging Face, GitHub, and GitLab URLs,
computes a catalog of trust metrics per artifact, and emits one NDJSON
record per URL group on stdout.`,
		Version:      version,
		SilenceUsage: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			logger, done, err := loggerFromEnv(verbose)
			if err != nil {
				return err
			}
			cleanup = done
			cmd.SetContext(withLogger(cmd.Context(), logger))
			return nil
		},
	}
	defer func() { cleanup() }()

	root.SetVersionTemplate(fmt.Sprintf("modelscore %s\ncommit: %s\nbuilt: %s\n", version, commit, date))
	root.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "enable verbose logging")

	root.AddCommand(newScoreCmd())
	root.AddCommand(newCacheCmd())

	return root.ExecuteContext(ctx)
}
