package core

import (
	"errors"
	"fmt"
	"strings"

	"github.com/redactyl/shadowscan/internal/detectors"
	"github.com/redactyl/shadowscan/internal/engine"
	"github.com/redactyl/shadowscan/internal/types"
)

// Re-export selected internal types as a stable public API surface.
type (
	Options  = engine.Options
	Result   = types.Result
	Finding  = types.Finding
	Metadata = types.Metadata
	Rule     = detectors.Info
)

// Sentinel errors callers can test with errors.Is.
var (
	ErrInvalidInput  = errors.New("invalid input")
	ErrInputTooLarge = engine.ErrInputTooLarge
	ErrInternal      = engine.ErrInternal
)

// Request is one text to scan.
type Request struct {
	Text     string
	FileType string
	Options  Options
}

// Validate reports missing or malformed fields. Empty text is valid.
func (r Request) Validate() error {
	if strings.TrimSpace(r.FileType) == "" {
		return fmt.Errorf("%w: file type is required", ErrInvalidInput)
	}
	if r.Options.ContextWindow < 0 || r.Options.ProximityWindow < 0 {
		return fmt.Errorf("%w: windows must not be negative", ErrInvalidInput)
	}
	return nil
}

// Scan validates req and runs the detection engine on it.
func Scan(req Request) (Result, error) {
	if err := req.Validate(); err != nil {
		return Result{}, err
	}
	return engine.Scan(req.Text, req.FileType, req.Options)
}

// Rules lists every pattern, context and keyword rule the engine knows.
func Rules() []Rule { return detectors.List() }

// FileTypeFor infers the file type of a path, for callers scanning files.
func FileTypeFor(path string) string { return engine.FileTypeFor(path) }
