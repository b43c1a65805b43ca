package deploy

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os"

	"github.com/oshokin/screeps-uploader/internal/config"
	"github.com/oshokin/screeps-uploader/internal/domain/module"
	"github.com/oshokin/screeps-uploader/internal/logger"
	"github.com/oshokin/screeps-uploader/internal/service/bundle"
	"github.com/oshokin/screeps-uploader/internal/service/uploader"
)

// Options contains inputs for the deploy entry point.
type Options struct {
	// Source is the .zip archive or directory to upload.
	Source string
	// ConfigPath is an optional YAML settings file (defaults to screeps-upload.yaml when present).
	ConfigPath string
	// EnvPath is an optional dotenv file (defaults to .env when present).
	EnvPath string
	// ServerURL overrides the configured server.
	ServerURL string
	// DryRun collects modules and prints the request body without uploading.
	DryRun bool
	// HTTPClient replaces the default transport; used by tests.
	HTTPClient uploader.Doer
	// Output receives the command result; defaults to os.Stdout.
	Output io.Writer
}

// errSourceRequired is returned when no source path is given.
var errSourceRequired = errors.New("source path must be provided")

// Run executes the deploy workflow.
func Run(ctx context.Context, opts *Options) error {
	ctx = logger.WithName(ctx, "screeps-upload")

	if opts.Source == "" {
		return errSourceRequired
	}

	cfg, err := config.Load(&config.Options{
		ConfigPath:   opts.ConfigPath,
		EnvPath:      opts.EnvPath,
		ServerURL:    opts.ServerURL,
		RequireToken: !opts.DryRun,
	})
	if err != nil {
		return err
	}

	result, err := bundle.Collect(ctx, opts.Source)
	if err != nil {
		return fmt.Errorf("collect modules: %w", err)
	}

	logModules(ctx, result)

	output := opts.Output
	if output == nil {
		output = os.Stdout
	}

	if opts.DryRun {
		logger.Info(ctx, "Dry run, nothing uploaded")

		return writeJSON(output, module.NewUploadRequest(result.Modules))
	}

	client, err := uploader.New(cfg.ServerURL, cfg.Token, uploader.WithHTTPClient(opts.HTTPClient))
	if err != nil {
		return fmt.Errorf("initialize uploader: %w", err)
	}

	response, err := client.Upload(ctx, result.Modules)
	if err != nil {
		return err
	}

	logger.InfoKV(ctx, "Upload completed", "url", client.Endpoint())

	return writeJSON(output, response)
}

// logModules prints one line per module and a summary of skipped scripts.
func logModules(ctx context.Context, result *bundle.Result) {
	for _, name := range result.Modules.Names() {
		m := result.Modules[name]
		logger.DebugKV(ctx, "Module", "name", name, "kind", m.Kind().String(), "size", m.Size())
	}

	if len(result.Skipped) == 0 {
		return
	}

	skipped := make([]string, 0, len(result.Skipped))
	for _, decodeErr := range result.Skipped {
		skipped = append(skipped, decodeErr.Path)
	}

	logger.WarnKV(ctx, "Scripts left out of the upload", "files", skipped)
}

// writeJSON writes v as indented JSON followed by a newline.
func writeJSON(w io.Writer, v any) error {
	encoder := json.NewEncoder(w)
	encoder.SetIndent("", "  ")

	if err := encoder.Encode(v); err != nil {
		return fmt.Errorf("write result: %w", err)
	}

	return nil
}
