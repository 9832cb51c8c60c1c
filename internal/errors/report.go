package errors

import (
	"encoding/json"
	"errors"

	"github.com/pole-lang/polec/internal/ast"
)

// SchemaV1 identifies the Report wire format.
const SchemaV1 = "pole.error/v1"

// Fix is a suggested remediation attached to a Report.
type Fix struct {
	Suggestion string  `json:"suggestion"`
	Confidence float64 `json:"confidence"`
}

// Report is the canonical structured error type for the compiler. All error
// builders return *Report, which can be wrapped as ReportError so structured
// detail survives ordinary error-chain handling.
type Report struct {
	Schema  string         `json:"schema"`         // Always SchemaV1
	Code    string         `json:"code"`           // Error code (PAR001, TYP002, etc.)
	Phase   string         `json:"phase"`          // Phase: "parser", "typecheck", "codegen", "emit", "arena"
	Message string         `json:"message"`        // Human-readable message
	Span    *ast.Span      `json:"span,omitempty"` // Source location (optional)
	Data    map[string]any `json:"data,omitempty"` // Structured data (sorted keys)
	Fix     *Fix           `json:"fix,omitempty"`  // Suggested fix (optional)
}

// ReportError wraps a Report as an error
// This allows structured reports to survive errors.As() unwrapping
type ReportError struct {
	Rep *Report
}

// Error implements the error interface
func (e *ReportError) Error() string {
	if e.Rep == nil {
		return "unknown error"
	}
	return e.Rep.Code + ": " + e.Rep.Message
}

// AsReport attempts to extract a Report from an error chain
// Returns the Report and true if found, nil and false otherwise
func AsReport(err error) (*Report, bool) {
	var re *ReportError
	if errors.As(err, &re) {
		return re.Rep, true
	}
	return nil, false
}

// WrapReport wraps a Report as a ReportError
// Call sites should return errors.WrapReport(report) to preserve structure
func WrapReport(r *Report) error {
	if r == nil {
		return nil
	}
	return &ReportError{Rep: r}
}

// ToJSON converts a Report to JSON (deterministic, sorted keys)
func (r *Report) ToJSON(compact bool) (string, error) {
	var data []byte
	var err error

	if compact {
		data, err = json.Marshal(r)
	} else {
		data, err = json.MarshalIndent(r, "", "  ")
	}

	if err != nil {
		return "", err
	}
	return string(data), nil
}

// New creates a Report for code at pos with message, optionally carrying
// structured data describing the failure.
func New(code, phase string, pos ast.Pos, message string, data map[string]any) *Report {
	span := &ast.Span{Start: pos, End: pos}
	return &Report{
		Schema:  SchemaV1,
		Code:    code,
		Phase:   phase,
		Message: message,
		Span:    span,
		Data:    data,
	}
}

// NewGeneric creates a generic error report carrying only a message,
// for failures that have no single source position (e.g. OOM, emit I/O).
func NewGeneric(phase string, err error) *Report {
	return &Report{
		Schema:  SchemaV1,
		Code:    "RUNTIME",
		Phase:   phase,
		Message: err.Error(),
		Data:    map[string]any{},
	}
}
