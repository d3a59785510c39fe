package cli

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/roach88/seqsync/internal/schema"
)

// FileValidation holds the validation outcome of one update file.
type FileValidation struct {
	File   string                   `json:"file"`
	Valid  bool                     `json:"valid"`
	Errors []schema.ValidationError `json:"errors,omitempty"`
}

// ValidationResult holds validation results.
type ValidationResult struct {
	Valid bool             `json:"valid"`
	Files []FileValidation `json:"files"`
}

// NewValidateCommand creates the validate command.
func NewValidateCommand(rootOpts *RootOptions) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "validate <updates>...",
		Short: "Validate update files against the wire schema",
		Long: `Check update files against the CUE schema of the wire format and
decode every carried element.

The schema is strict: records must name exactly one variant, carry exactly
the payload fields of that variant, and use non-negative indices and
lengths. Every violation in a file is reported, not just the first.

Examples:
  seqsync validate updates.json
  seqsync validate batches/*.yaml --format json`,
		Args:          cobra.MinimumNArgs(1),
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runValidate(rootOpts, args, cmd)
		},
	}
	return cmd
}

func runValidate(opts *RootOptions, paths []string, cmd *cobra.Command) error {
	f := newFormatter(opts, cmd)

	validator, err := schema.New()
	if err != nil {
		return fail(f, ExitCommandError, schema.ErrSchemaBuild, err.Error(), nil)
	}

	result := ValidationResult{Valid: true, Files: make([]FileValidation, 0, len(paths))}
	for _, path := range paths {
		fv, err := validateFile(validator, path)
		if err != nil {
			return failLoad(f, err)
		}
		f.VerboseLog("%s: %d error(s)", path, len(fv.Errors))
		if !fv.Valid {
			result.Valid = false
		}
		result.Files = append(result.Files, fv)
	}

	if result.Valid {
		return outputValidateSuccess(f, result)
	}
	return outputValidationErrors(f, result)
}

// validateFile runs the schema and then the wire decoder over one file.
// The decoder catches what the schema cannot, such as floats in elements.
func validateFile(v *schema.Validator, path string) (FileValidation, error) {
	data, err := os.ReadFile(path)
	if errors.Is(err, os.ErrNotExist) {
		return FileValidation{}, &LoadError{Code: ErrCodeNotFound, Message: fmt.Sprintf("file not found: %s", path)}
	}
	if err != nil {
		return FileValidation{}, &LoadError{Code: ErrCodeReadFailed, Message: fmt.Sprintf("read %s", path), Err: err}
	}

	fv := FileValidation{File: path}
	fv.Errors = v.ValidateBatch(data, path)

	if len(fv.Errors) == 0 {
		if _, err := LoadBatch(path); err != nil {
			fv.Errors = append(fv.Errors, schema.ValidationError{
				Field:   "decode",
				Message: err.Error(),
				Code:    loadErrorCode(err),
			})
		}
	}

	fv.Valid = len(fv.Errors) == 0
	return fv, nil
}

func outputValidateSuccess(f *OutputFormatter, result ValidationResult) error {
	if f.JSON() {
		return f.Success(result)
	}
	fmt.Fprintf(f.Writer, "✓ All update files valid (%d)\n", len(result.Files))
	return nil
}

func outputValidationErrors(f *OutputFormatter, result ValidationResult) error {
	count := 0
	var first schema.ValidationError
	for _, fv := range result.Files {
		if count == 0 && len(fv.Errors) > 0 {
			first = fv.Errors[0]
		}
		count += len(fv.Errors)
	}
	summary := fmt.Sprintf("validation failed with %d error(s)", count)

	if f.JSON() {
		response := CLIResponse{
			Status: "error",
			Data:   result,
			Error:  &CLIError{Code: first.Code, Message: first.Message},
		}
		encoder := json.NewEncoder(f.Writer)
		encoder.SetIndent("", "  ")
		if err := encoder.Encode(response); err != nil {
			return err
		}
		return NewExitError(ExitFailure, summary)
	}

	fmt.Fprintln(f.Writer, "✗ Validation failed")
	fmt.Fprintln(f.Writer)
	for _, fv := range result.Files {
		for _, err := range fv.Errors {
			if err.Line > 0 {
				fmt.Fprintf(f.Writer, "%s:%d\n", fv.File, err.Line)
			} else {
				fmt.Fprintf(f.Writer, "%s\n", fv.File)
			}
			fmt.Fprintf(f.Writer, "  %s: %s: %s\n\n", err.Code, err.Field, err.Message)
		}
	}
	return NewExitError(ExitFailure, summary)
}
