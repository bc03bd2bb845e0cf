package herrors

import (
	stderrors "errors"
	"fmt"

	"github.com/honelang/hone/internal/span"
)

// Report is the canonical structured diagnostic for hone. Every error raised
// by the evaluator, resolver, type checker, or pipeline driver is reported
// through a *Report so that callers always get a code, a primary span, and a
// help string, never a bare string error.
type Report struct {
	Code    string         `json:"code"`
	Phase   string         `json:"phase"`
	Message string         `json:"message"`
	Span    *span.Location  `json:"span,omitempty"`
	Help    string         `json:"help,omitempty"`
	Data    map[string]any `json:"data,omitempty"`
	// Secondary carries additional labeled spans, e.g. the first `from`
	// statement when reporting MultipleFrom.
	Secondary []SecondaryLabel `json:"secondary,omitempty"`
}

// SecondaryLabel attaches an explanatory note to a non-primary span.
type SecondaryLabel struct {
	Span  span.Location `json:"span"`
	Label string       `json:"label"`
}

// ReportError wraps a Report so it survives errors.As/errors.Is unwrapping
// while still behaving like a normal Go error at call sites.
type ReportError struct {
	Rep *Report
}

func (e *ReportError) Error() string {
	if e.Rep == nil {
		return "unknown hone error"
	}
	return fmt.Sprintf("%s: %s", e.Rep.Code, e.Rep.Message)
}

// AsReport extracts the *Report carried by err, if any.
func AsReport(err error) (*Report, bool) {
	var re *ReportError
	if stderrors.As(err, &re) {
		return re.Rep, true
	}
	return nil, false
}

// Wrap turns a Report into an error. Every constructor in this package
// returns the result of Wrap so call sites never build bare errors.
func Wrap(r *Report) error {
	if r == nil {
		return nil
	}
	return &ReportError{Rep: r}
}

// New is a convenience constructor for simple diagnostics that only need a
// code, phase, message and optional span/help.
func New(code, phase, message string, span *span.Location, help string) error {
	return Wrap(&Report{Code: code, Phase: phase, Message: message, Span: span, Help: help})
}

// WithData attaches structured data fields to a report and returns the same
// error value, to keep constructors terse.
func WithData(err error, data map[string]any) error {
	if r, ok := AsReport(err); ok {
		r.Data = data
	}
	return err
}
