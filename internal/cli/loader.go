package cli

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/roach88/seqsync/internal/diff"
	"github.com/roach88/seqsync/internal/value"
)

// Error code constants, unified across all CLI commands.
const (
	ErrCodeGeneric     = "E001" // Generic/unknown error
	ErrCodeReadFailed  = "E002" // File could not be read
	ErrCodeParseFailed = "E003" // File is not valid JSON/YAML
	ErrCodeDecode      = "E004" // Elements or update records could not be decoded
	ErrCodeNotFound    = "E005" // Path not found
	ErrCodeWriteFailed = "E007" // File write error

	// Update application errors
	ErrCodeUnrecognized = "E101" // Update is not one of the known variants
	ErrCodeBounds       = "E102" // Index or length outside the sequence
)

// LoadError represents an error that occurred while loading an input file.
type LoadError struct {
	Code    string
	Message string
	Err     error
}

func (e *LoadError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %s: %v", e.Code, e.Message, e.Err)
	}
	return fmt.Sprintf("%s: %s", e.Code, e.Message)
}

func (e *LoadError) Unwrap() error {
	return e.Err
}

// isYAML reports whether path should be parsed as YAML.
func isYAML(path string) bool {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".yaml", ".yml":
		return true
	}
	return false
}

// readJSON reads path and returns its content as JSON. YAML files are
// converted so that every input format shares the JSON decoders.
func readJSON(path string) ([]byte, error) {
	data, err := os.ReadFile(path)
	if errors.Is(err, os.ErrNotExist) {
		return nil, &LoadError{Code: ErrCodeNotFound, Message: fmt.Sprintf("file not found: %s", path)}
	}
	if err != nil {
		return nil, &LoadError{Code: ErrCodeReadFailed, Message: fmt.Sprintf("read %s", path), Err: err}
	}
	if !isYAML(path) {
		return data, nil
	}

	var doc any
	if err := yaml.Unmarshal(data, &doc); err != nil {
		return nil, &LoadError{Code: ErrCodeParseFailed, Message: fmt.Sprintf("parse %s", path), Err: err}
	}
	converted, err := json.Marshal(doc)
	if err != nil {
		return nil, &LoadError{Code: ErrCodeParseFailed, Message: fmt.Sprintf("convert %s", path), Err: err}
	}
	return converted, nil
}

// LoadSequence reads a snapshot: a JSON or YAML list of elements.
func LoadSequence(path string) ([]value.Value, error) {
	data, err := readJSON(path)
	if err != nil {
		return nil, err
	}
	seq, err := value.DecodeSequence(data)
	if err != nil {
		return nil, &LoadError{Code: ErrCodeDecode, Message: fmt.Sprintf("decode snapshot %s", path), Err: err}
	}
	return seq, nil
}

// LoadBatch reads a JSON or YAML list of update records.
func LoadBatch(path string) ([]diff.Update[value.Value], error) {
	data, err := readJSON(path)
	if err != nil {
		return nil, err
	}
	updates, err := diff.DecodeBatch(data, value.Decode)
	if err != nil {
		code := ErrCodeDecode
		if diff.IsUnrecognizedUpdate(err) {
			code = ErrCodeUnrecognized
		}
		return nil, &LoadError{Code: code, Message: fmt.Sprintf("decode updates %s", path), Err: err}
	}
	return updates, nil
}

// codeForDiffError maps diff error codes to CLI error codes.
func codeForDiffError(err error) string {
	switch diff.CodeOf(err) {
	case diff.ErrCodeUnrecognizedUpdate:
		return ErrCodeUnrecognized
	case diff.ErrCodeBoundsViolation:
		return ErrCodeBounds
	default:
		return ErrCodeGeneric
	}
}

// loadErrorCode extracts the CLI code of err.
func loadErrorCode(err error) string {
	var le *LoadError
	if errors.As(err, &le) {
		return le.Code
	}
	return ErrCodeGeneric
}
