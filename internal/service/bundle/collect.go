package bundle

import (
	"archive/zip"
	"bytes"
	"context"
	"fmt"
	"io"
	"io/fs"
	"os"
	"path/filepath"
	"strings"

	"golang.org/x/text/encoding"
	"golang.org/x/text/transform"

	"github.com/oshokin/screeps-uploader/internal/domain/module"
	"github.com/oshokin/screeps-uploader/internal/logger"
)

const (
	// ArchiveExtension marks a source path as a zip archive.
	ArchiveExtension = ".zip"
	// ScriptExtension marks files uploaded as text modules.
	ScriptExtension = ".js"
	// BinaryExtension marks files uploaded as binary modules.
	BinaryExtension = ".wasm"
)

// utf8BOM is stripped from the start of scripts.
var utf8BOM = []byte{0xEF, 0xBB, 0xBF}

// Result is the outcome of collecting a source.
type Result struct {
	// Modules holds every collected module by name.
	Modules module.Collection
	// Skipped lists scripts left out because they failed to decode.
	Skipped []*DecodeError
	// Overwritten lists module names that were replaced by a later file, in order.
	Overwritten []string
}

// Collect reads every .js and .wasm file under source, which must be a path ending
// in .zip or an existing directory.
func Collect(ctx context.Context, source string) (*Result, error) {
	ctx = logger.WithKV(logger.WithName(ctx, "bundle"), "source", source)

	c := &collector{
		result: &Result{
			Modules: module.NewCollection(),
		},
	}

	var err error

	switch {
	case strings.HasSuffix(source, ArchiveExtension):
		err = c.collectArchive(ctx, source)
	case isDirectory(source):
		err = c.collectDirectory(ctx, source)
	default:
		return nil, fmt.Errorf("%s: %w", source, ErrInvalidSource)
	}

	if err != nil {
		return nil, err
	}

	logger.InfoKV(ctx, "Collected modules",
		"modules", len(c.result.Modules),
		"skipped", len(c.result.Skipped),
		"overwritten", len(c.result.Overwritten))

	return c.result, nil
}

// collector accumulates modules for a single Collect call.
type collector struct {
	result *Result
}

// collectArchive adds matching entries of a zip archive in archive order.
func (c *collector) collectArchive(ctx context.Context, archivePath string) error {
	reader, err := zip.OpenReader(archivePath)
	if err != nil {
		return fmt.Errorf("open archive: %w", err)
	}

	defer func() {
		_ = reader.Close()
	}()

	for _, file := range reader.File {
		if err = ctx.Err(); err != nil {
			return err
		}

		name, kind, ok := moduleName(file.Name)
		if !ok {
			logger.DebugKV(ctx, "Ignoring archive entry", "entry", file.Name)
			continue
		}

		var data []byte

		data, err = readArchiveFile(file)
		if err != nil {
			return fmt.Errorf("read archive entry %s: %w", file.Name, err)
		}

		c.add(ctx, file.Name, name, kind, data)
	}

	return nil
}

// collectDirectory adds matching files under root in lexical walk order.
// A symlinked root is resolved first since WalkDir does not follow it.
func (c *collector) collectDirectory(ctx context.Context, root string) error {
	resolved, err := filepath.EvalSymlinks(root)
	if err != nil {
		return fmt.Errorf("resolve %s: %w", root, err)
	}

	root = resolved

	return filepath.WalkDir(root, func(path string, entry fs.DirEntry, walkErr error) error {
		if walkErr != nil {
			return walkErr
		}

		if err := ctx.Err(); err != nil {
			return err
		}

		if entry.IsDir() {
			return nil
		}

		relPath, err := filepath.Rel(root, path)
		if err != nil {
			return fmt.Errorf("relative path of %s: %w", path, err)
		}

		relPath = filepath.ToSlash(relPath)

		name, kind, ok := moduleName(relPath)
		if !ok {
			logger.DebugKV(ctx, "Ignoring file", "file", relPath)
			return nil
		}

		data, err := os.ReadFile(path)
		if err != nil {
			return fmt.Errorf("read %s: %w", relPath, err)
		}

		c.add(ctx, relPath, name, kind, data)

		return nil
	})
}

// add converts data into a module and stores it. Undecodable scripts are recorded and skipped.
func (c *collector) add(ctx context.Context, path, name string, kind module.Kind, data []byte) {
	m, err := toModule(kind, data)
	if err != nil {
		decodeErr := &DecodeError{
			Path: path,
			Err:  err,
		}

		c.result.Skipped = append(c.result.Skipped, decodeErr)
		logger.WarnKV(ctx, "Skipping script that is not valid UTF-8", "file", path, "error", err)

		return
	}

	if c.result.Modules.Put(name, m) {
		c.result.Overwritten = append(c.result.Overwritten, name)
		logger.DebugKV(ctx, "Module replaced by a later file", "module", name, "file", path)
	}
}

// moduleName maps a slash-separated path to its module name and kind.
// ok is false for files that are not uploaded.
func moduleName(path string) (name string, kind module.Kind, ok bool) {
	switch {
	case strings.HasSuffix(path, ScriptExtension):
		return strings.TrimSuffix(path, ScriptExtension), module.KindText, true
	case strings.HasSuffix(path, BinaryExtension):
		return strings.TrimSuffix(path, BinaryExtension), module.KindBinary, true
	default:
		return "", 0, false
	}
}

// toModule builds the module for file contents of the given kind.
func toModule(kind module.Kind, data []byte) (module.Module, error) {
	if kind == module.KindBinary {
		return module.NewBinary(data), nil
	}

	text, err := decodeScript(data)
	if err != nil {
		return module.Module{}, err
	}

	return module.NewText(text), nil
}

// decodeScript strips one leading BOM and rejects invalid UTF-8.
func decodeScript(data []byte) (string, error) {
	data = bytes.TrimPrefix(data, utf8BOM)

	validated, _, err := transform.Bytes(encoding.UTF8Validator, data)
	if err != nil {
		return "", err
	}

	return string(validated), nil
}

// readArchiveFile returns the uncompressed contents of a zip entry.
func readArchiveFile(file *zip.File) ([]byte, error) {
	rc, err := file.Open()
	if err != nil {
		return nil, err
	}

	defer func() {
		_ = rc.Close()
	}()

	return io.ReadAll(rc)
}

// isDirectory reports whether path exists and is a directory.
func isDirectory(path string) bool {
	info, err := os.Stat(path)

	return err == nil && info.IsDir()
}
