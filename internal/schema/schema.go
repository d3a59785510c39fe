// Package schema validates update files against the wire shape of a
// sequence update, using an embedded CUE definition.
//
// The diff package decodes leniently: keys that are not variant names are
// ignored. The schema is strict and rejects them, so it serves as a linter
// for fixtures and captured upstream traffic.
package schema

import (
	_ "embed"
	"fmt"
	"path/filepath"
	"strings"

	"cuelang.org/go/cue"
	"cuelang.org/go/cue/cuecontext"
	"cuelang.org/go/cue/errors"
	"cuelang.org/go/cue/token"
	cueyaml "cuelang.org/go/encoding/yaml"
)

//go:embed update.cue
var updateSchema string

// Validation error codes (E200-E299)
const (
	ErrSchemaBuild   = "E200" // embedded schema failed to compile
	ErrParse         = "E201" // input is not valid JSON/YAML
	ErrNotList       = "E202" // batch file is not a list
	ErrInvalidUpdate = "E203" // record does not match #Update
)

// ValidationError represents one schema violation.
type ValidationError struct {
	Field   string `json:"field"`
	Message string `json:"message"`
	Code    string `json:"code"`
	Line    int    `json:"line,omitempty"`
}

// Error implements the error interface.
func (e ValidationError) Error() string {
	if e.Line > 0 {
		return fmt.Sprintf("[%s] line %d: %s: %s", e.Code, e.Line, e.Field, e.Message)
	}
	return fmt.Sprintf("[%s] %s: %s", e.Code, e.Field, e.Message)
}

// CompileError reports a failure to build CUE input, with its position.
type CompileError struct {
	Field   string
	Message string
	Pos     token.Pos
}

func (e *CompileError) Error() string {
	if e.Pos.IsValid() {
		return fmt.Sprintf("%s:%d:%d: %s: %s",
			e.Pos.Filename(), e.Pos.Line(), e.Pos.Column(),
			e.Field, e.Message)
	}
	return fmt.Sprintf("%s: %s", e.Field, e.Message)
}

// Validator checks update files against the #Update and #Batch definitions.
// A Validator is not safe for concurrent use; cue.Context is not.
type Validator struct {
	ctx    *cue.Context
	update cue.Value
	batch  cue.Value
}

// New compiles the embedded schema.
func New() (*Validator, error) {
	ctx := cuecontext.New()
	v := ctx.CompileString(updateSchema, cue.Filename("update.cue"))
	if err := v.Err(); err != nil {
		return nil, formatCUEError("schema", err)
	}

	val := &Validator{
		ctx:    ctx,
		update: v.LookupPath(cue.ParsePath("#Update")),
		batch:  v.LookupPath(cue.ParsePath("#Batch")),
	}
	if !val.update.Exists() || !val.batch.Exists() {
		return nil, &CompileError{Field: "schema", Message: "#Update or #Batch missing from embedded schema"}
	}
	return val, nil
}

// ValidateBatch checks data (a JSON or YAML list of update records) and
// returns every violation found. It does not fail fast: each record is
// checked on its own so one report covers the whole file.
//
// filename selects the parser by extension (.yaml/.yml are YAML, anything
// else JSON) and labels error positions.
func (v *Validator) ValidateBatch(data []byte, filename string) []ValidationError {
	doc, err := v.build(data, filename)
	if err != nil {
		return []ValidationError{fromCompileError(ErrParse, "input", err)}
	}

	if doc.IncompleteKind() != cue.ListKind {
		return []ValidationError{{
			Field:   "input",
			Message: fmt.Sprintf("batch must be a list, got %s", doc.IncompleteKind()),
			Code:    ErrNotList,
			Line:    doc.Pos().Line(),
		}}
	}

	iter, err := doc.List()
	if err != nil {
		return []ValidationError{fromCompileError(ErrParse, "input", formatCUEError("input", err))}
	}

	var errs []ValidationError
	for i := 0; iter.Next(); i++ {
		rec := iter.Value()
		field := fmt.Sprintf("batch[%d]", i)
		if err := v.update.Unify(rec).Validate(cue.Concrete(true)); err != nil {
			ve := fromCompileError(ErrInvalidUpdate, field, formatCUEError(field, err))
			// Report the record's own line; CUE may point into the schema.
			if line := rec.Pos().Line(); line > 0 {
				ve.Line = line
			}
			errs = append(errs, ve)
		}
	}
	return errs
}

// ValidateUpdate checks a single update record.
func (v *Validator) ValidateUpdate(data []byte, filename string) []ValidationError {
	doc, err := v.build(data, filename)
	if err != nil {
		return []ValidationError{fromCompileError(ErrParse, "input", err)}
	}
	if err := v.update.Unify(doc).Validate(cue.Concrete(true)); err != nil {
		return []ValidationError{fromCompileError(ErrInvalidUpdate, "update", formatCUEError("update", err))}
	}
	return nil
}

// build compiles JSON or YAML input into a CUE value.
func (v *Validator) build(data []byte, filename string) (cue.Value, error) {
	if filename == "" {
		filename = "input.json"
	}

	switch strings.ToLower(filepath.Ext(filename)) {
	case ".yaml", ".yml":
		file, err := cueyaml.Extract(filename, data)
		if err != nil {
			return cue.Value{}, formatCUEError("input", err)
		}
		doc := v.ctx.BuildFile(file)
		if err := doc.Err(); err != nil {
			return cue.Value{}, formatCUEError("input", err)
		}
		return doc, nil
	default:
		doc := v.ctx.CompileBytes(data, cue.Filename(filename))
		if err := doc.Err(); err != nil {
			return cue.Value{}, formatCUEError("input", err)
		}
		return doc, nil
	}
}

// formatCUEError extracts position info from CUE errors.
// CUE errors may bundle several; the first one with a position wins.
func formatCUEError(field string, err error) error {
	if err == nil {
		return nil
	}

	errs := errors.Errors(err)
	if len(errs) == 0 {
		return err
	}

	first := errs[0]
	msgs := make([]string, 0, len(errs))
	for _, e := range errs {
		msgs = append(msgs, e.Error())
	}

	ce := &CompileError{Field: field, Message: strings.Join(msgs, "; ")}
	if positions := errors.Positions(first); len(positions) > 0 {
		ce.Pos = positions[0]
	}
	return ce
}

func fromCompileError(code, field string, err error) ValidationError {
	ve := ValidationError{Field: field, Message: err.Error(), Code: code}
	if ce, ok := err.(*CompileError); ok {
		ve.Message = ce.Message
		if ce.Pos.IsValid() {
			ve.Line = ce.Pos.Line()
		}
	}
	return ve
}
