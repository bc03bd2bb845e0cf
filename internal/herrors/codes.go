// Package herrors provides the closed, tagged error taxonomy for the hone
// compiler core, along with structured diagnostic reporting.
package herrors

// Error codes are grouped by phase, following the families fixed by the
// language's stable error-code surface: E00xx syntax, E01xx imports,
// E02xx types, E03xx merge, E04xx evaluation, E05xx dependency,
// E06xx functions, E07xx control flow, E08xx hermeticity, E09xx resource.
const (
	// Syntax (E00xx)
	UnexpectedToken      = "E0001"
	UnterminatedString   = "E0002"
	InvalidEscape        = "E0003"
	UnexpectedCharacter  = "E0004"
	ReservedWordAsKey    = "E0005"
	UndefinedVariable    = "E0006"

	// Imports (E01xx)
	ImportNotFound   = "E0101"
	CircularImport   = "E0102"
	ImportResolution = "E0103"

	// Types (E02xx)
	TypeMismatch      = "E0201"
	ValueOutOfRange   = "E0202"
	PatternMismatch   = "E0203"
	MissingField      = "E0204"
	UnknownField      = "E0205"
	RequiredFieldNull = "E0206"
	InvalidPattern    = "E0207"
	SchemaRedeclared  = "E0208"
	UnknownSchema     = "E0209"

	// Merge (E03xx)
	TypeConflict        = "E0301"
	MultipleFrom         = "E0302"
	AppendToNonArray     = "E0303"
	FromInPreamble       = "E0304"
	NoMatchingDocument   = "E0305"
	InheritFromMultiDoc  = "E0306"

	// Evaluation (E04xx)
	DivisionByZero     = "E0401"
	ArithmeticOverflow = "E0402"
	IndexOutOfBounds   = "E0403"
	ForAtTopLevel      = "E0404"
	AssertionFailed    = "E0405"
	NoVariantSelection = "E0406"
	UnknownBuiltin     = "E0407"

	// Dependency (E05xx)
	CircularDependency = "E0501"

	// Functions / policy (E06xx)
	PolicyDenied = "E0601"

	// Control flow (E07xx) -- reserved for future control-flow-only errors.

	// Hermeticity (E08xx)
	EnvNotAllowed  = "E0801"
	SecretInOutput = "E0802"

	// Resource (E09xx)
	RecursionLimitExceeded = "E0901"
	IoError                = "E0902"
)
