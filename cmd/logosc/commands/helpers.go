package commands

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/Brahmastra-Labs/logicaffeine-sub008/colors"
	"github.com/Brahmastra-Labs/logicaffeine-sub008/internal/astio"
	"github.com/Brahmastra-Labs/logicaffeine-sub008/internal/config"
	"github.com/Brahmastra-Labs/logicaffeine-sub008/internal/diagnostics"
)

// diagnosable is satisfied by typed analysis errors that carry a
// renderable diagnostic.
type diagnosable interface {
	Diagnostic() *diagnostics.Diagnostic
}

// loadUnit reads and decodes a serialized compilation unit.
func loadUnit(path string) (*astio.Unit, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read unit %s: %w", path, err)
	}
	unit, err := astio.Decode(data)
	if err != nil {
		return nil, fmt.Errorf("failed to decode unit %s: %w", path, err)
	}
	return unit, nil
}

// loadConfig resolves the effective build configuration: an explicit
// -c path wins, otherwise logos.yaml from the working directory when
// present, otherwise defaults.
func loadConfig(path string) (*config.Config, error) {
	if path != "" {
		return config.LoadFromFile(path)
	}
	return config.Load()
}

// reportError renders a compile error to stderr. Typed errors go
// through the diagnostics bag so the user sees labeled source
// locations; anything else gets a plain one-liner.
func reportError(err error) {
	var d diagnosable
	if errors.As(err, &d) {
		bag := diagnostics.NewBag()
		bag.Add(d.Diagnostic())
		bag.EmitAll(os.Stderr)
		return
	}
	colors.RED.Fprintf(os.Stderr, "error: %v\n", err)
}

// unitBaseName strips the directory and extension from a unit path,
// leaving a name usable for output artifacts.
func unitBaseName(path string) string {
	base := filepath.Base(path)
	return strings.TrimSuffix(base, filepath.Ext(base))
}

// writeArtifact writes content under dir, creating dir if needed.
func writeArtifact(dir, name, content string) (string, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return "", fmt.Errorf("failed to create output directory %s: %w", dir, err)
	}
	path := filepath.Join(dir, name)
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		return "", fmt.Errorf("failed to write %s: %w", path, err)
	}
	return path, nil
}
