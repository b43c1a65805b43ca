package cmd

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/oshokin/screeps-uploader/internal/config"
	"github.com/oshokin/screeps-uploader/internal/logger"
	"github.com/oshokin/screeps-uploader/internal/service/deploy"
	"github.com/oshokin/screeps-uploader/internal/service/uploader"
	"github.com/oshokin/screeps-uploader/internal/version"
)

var (
	// configPath to the YAML settings file.
	configPath string
	// envPath to the dotenv file.
	envPath string
	// serverURL overrides the configured server.
	serverURL string
	// logLevel is the minimum level written to stderr.
	logLevel string
	// dryRun prints the request body instead of uploading.
	dryRun bool

	// errUsage marks command-line mistakes: wrong argument count, bad flags or flag values.
	errUsage = errors.New("invalid usage")

	// rootCmd uploads a zip archive or a directory of modules.
	rootCmd = &cobra.Command{
		Use:   version.Name + " <archive.zip|directory>",
		Short: "Upload JavaScript and WebAssembly modules to Screeps.",
		Long: `Collects every .js and .wasm file from a zip archive or a directory tree
and uploads them as the "default" branch through the Screeps code API.

Scripts become text modules named after their relative path without the
extension (sub/dir/foo.js -> sub/dir/foo); .wasm files are sent base64 encoded.
Scripts that are not valid UTF-8 are skipped with a warning.

The API token is read from ` + config.TokenEnvVar + `, which may also be set in a
dotenv file. On success the JSON response of the server is printed to stdout.

The "version" subcommand takes precedence over a source directory of the
same name; upload such a directory as ./version.`,
		Args:          exactlyOneSource,
		SilenceErrors: true,
		PersistentPreRunE: func(_ *cobra.Command, _ []string) error {
			level, ok := logger.ParseLogLevel(logLevel)
			if !ok {
				return fmt.Errorf("%w: unknown log level %q", errUsage, logLevel)
			}

			logger.SetLevel(level)

			return nil
		},
		RunE: func(cmd *cobra.Command, args []string) error {
			// Arguments are valid past this point; failures are not usage errors.
			cmd.SilenceUsage = true

			// Setup graceful shutdown handling.
			ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGTERM, syscall.SIGINT)
			defer stop()

			options := &deploy.Options{
				Source:     args[0],
				ConfigPath: configPath,
				EnvPath:    envPath,
				ServerURL:  serverURL,
				DryRun:     dryRun,
				Output:     cmd.OutOrStdout(),
			}

			return deploy.Run(ctx, options)
		},
	}
)

// Execute runs the CLI and exits with status 1 on error.
func Execute() {
	if code := run(context.Background()); code != 0 {
		os.Exit(code)
	}
}

// run executes the root command and returns the process exit code.
func run(ctx context.Context) int {
	err := rootCmd.ExecuteContext(ctx)
	if err != nil {
		reportError(rootCmd.ErrOrStderr(), err)
	}

	logger.Sync()

	if err != nil {
		return 1
	}

	return 0
}

// exactlyOneSource requires the single source path argument.
func exactlyOneSource(cmd *cobra.Command, args []string) error {
	if err := cobra.ExactArgs(1)(cmd, args); err != nil {
		return fmt.Errorf("%w: %w", errUsage, err)
	}

	return nil
}

// flagError marks flag parsing failures as usage errors.
func flagError(_ *cobra.Command, err error) error {
	return fmt.Errorf("%w: %w", errUsage, err)
}

// reportError prints usage and configuration problems as a single line and logs everything else in full.
func reportError(w io.Writer, err error) {
	var uploadErr *uploader.UploadError

	switch {
	case errors.Is(err, errUsage),
		errors.Is(err, config.ErrTokenRequired),
		errors.Is(err, config.ErrInvalidServerURL):
		_, _ = fmt.Fprintln(w, "Error:", err)
	case errors.As(err, &uploadErr):
		logger.ErrorKV(context.Background(), "Upload rejected by server",
			"status", uploadErr.StatusCode,
			"reason", uploadErr.Reason,
			"body", uploadErr.Body)
	default:
		logger.ErrorKV(context.Background(), "Command failed", "error", err)
	}
}

//nolint:gochecknoinits // Required by Cobra CLI framework architecture.
func init() {
	rootCmd.SetFlagErrorFunc(flagError)
	version.AttachCobraVersionCommand(rootCmd)

	// Setup command flags with consistent naming and descriptions.
	rootCmd.Flags().StringVarP(&configPath, "config", "c", "",
		"path to YAML settings file (default "+config.DefaultConfigFilename+" if present)")
	rootCmd.Flags().StringVarP(&envPath, "env-file", "e", "",
		"path to dotenv file (default "+config.DefaultEnvFilename+" if present)")
	rootCmd.Flags().StringVarP(&serverURL, "server", "s", "",
		"server URL (default "+config.DefaultServerURL+")")
	rootCmd.Flags().BoolVarP(&dryRun, "dry-run", "n", false,
		"print the request body instead of uploading")
	rootCmd.PersistentFlags().StringVarP(&logLevel, "log-level", "l", "info",
		"log level: debug, info, warn or error")
}
