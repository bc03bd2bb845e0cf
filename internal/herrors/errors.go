package herrors

import (
	"fmt"
	"strings"

	"github.com/honelang/hone/internal/span"
)

// Constructors below build the diagnostics named in the error taxonomy.
// Each attaches a stable code, a phase tag, a primary span, structured
// data, and a help string proposing a fix.

func NewUnexpectedToken(span span.Location, got, want string) error {
	return Wrap(&Report{
		Code: UnexpectedToken, Phase: "parser",
		Message: fmt.Sprintf("unexpected token %q, expected %s", got, want),
		Span:    &span,
		Help:    fmt.Sprintf("replace %q with %s", got, want),
	})
}

func NewUnterminatedString(span span.Location) error {
	return Wrap(&Report{
		Code: UnterminatedString, Phase: "lexer",
		Message: "unterminated string literal", Span: &span,
		Help: "add a closing quote",
	})
}

func NewInvalidEscape(span span.Location, seq string) error {
	return Wrap(&Report{
		Code: InvalidEscape, Phase: "lexer",
		Message: fmt.Sprintf("invalid escape sequence %q", seq), Span: &span,
		Help: `use one of \n \t \r \\ \" \$ \uXXXX`,
	})
}

func NewUnexpectedCharacter(span span.Location, ch rune) error {
	return Wrap(&Report{
		Code: UnexpectedCharacter, Phase: "lexer",
		Message: fmt.Sprintf("unexpected character %q", ch), Span: &span,
	})
}

func NewReservedWordAsKey(span span.Location, word string) error {
	return Wrap(&Report{
		Code: ReservedWordAsKey, Phase: "parser",
		Message: fmt.Sprintf("%q is a reserved word and cannot be used as a bare key", word),
		Span:    &span,
		Help:    fmt.Sprintf(`quote it: "%s": value`, word),
	})
}

func NewUndefinedVariable(span span.Location, name string, suggestions []string) error {
	help := "define it with `let` before use, or check for a typo"
	if len(suggestions) > 0 {
		help = "did you mean: " + strings.Join(suggestions, ", ") + "?"
	}
	return Wrap(&Report{
		Code: UndefinedVariable, Phase: "evaluator",
		Message: fmt.Sprintf("undefined variable %q", name), Span: &span,
		Help: help,
		Data: map[string]any{"name": name, "suggestions": suggestions},
	})
}

func NewImportNotFound(span span.Location, path string) error {
	return Wrap(&Report{
		Code: ImportNotFound, Phase: "resolver",
		Message: fmt.Sprintf("import target not found: %q", path), Span: &span,
		Help: "check the path is correct and relative to the importing file",
		Data: map[string]any{"path": path},
	})
}

func NewImportResolution(span span.Location, reason string) error {
	return Wrap(&Report{
		Code: ImportResolution, Phase: "resolver",
		Message: "import path could not be resolved: " + reason, Span: &span,
		Help: "import/from targets must be literal strings, not interpolated expressions",
	})
}

func NewCircularImport(span span.Location, chain []string) error {
	return Wrap(&Report{
		Code: CircularImport, Phase: "resolver",
		Message: "circular import detected: " + strings.Join(chain, " -> "),
		Span:    &span,
		Help:    "break the cycle by extracting the shared declarations into a separate file",
		Data:    map[string]any{"chain": chain},
	})
}

func NewTypeMismatch(span span.Location, path, expected, found string) error {
	return Wrap(&Report{
		Code: TypeMismatch, Phase: "typechecker",
		Message: fmt.Sprintf("type mismatch at %q: expected %s, found %s", path, expected, found),
		Span:    &span,
		Help:    fmt.Sprintf("change the value at %q to match type %s", path, expected),
		Data:    map[string]any{"path": path, "expected": expected, "found": found},
	})
}

func NewValueOutOfRange(span span.Location, path, expected, value string) error {
	return Wrap(&Report{
		Code: ValueOutOfRange, Phase: "typechecker",
		Message: fmt.Sprintf("value %s at %q is out of range for %s", value, path, expected),
		Span:    &span,
		Help:    fmt.Sprintf("pick a value that satisfies %s", expected),
		Data:    map[string]any{"path": path, "expected": expected, "value": value},
	})
}

func NewPatternMismatch(span span.Location, path, pattern, value string) error {
	return Wrap(&Report{
		Code: PatternMismatch, Phase: "typechecker",
		Message: fmt.Sprintf("value at %q does not match pattern /%s/", path, pattern),
		Span:    &span,
		Help:    "adjust the value so it matches the declared pattern",
		Data:    map[string]any{"path": path, "pattern": pattern, "value": value},
	})
}

func NewMissingField(span span.Location, path, field, schema string) error {
	return Wrap(&Report{
		Code: MissingField, Phase: "typechecker",
		Message: fmt.Sprintf("missing required field %q of schema %s at %q", field, schema, path),
		Span:    &span,
		Help:    fmt.Sprintf("add a value for %q, or mark it optional in schema %s", field, schema),
		Data:    map[string]any{"path": path, "field": field, "schema": schema},
	})
}

func NewUnknownField(span span.Location, path, field, schema string) error {
	return Wrap(&Report{
		Code: UnknownField, Phase: "typechecker",
		Message: fmt.Sprintf("unknown field %q at %q (schema %s is closed)", field, path, schema),
		Span:    &span,
		Help:    fmt.Sprintf("remove %q, or declare schema %s with trailing `...` to accept extra fields", field, schema),
		Data:    map[string]any{"path": path, "field": field, "schema": schema},
	})
}

func NewRequiredFieldNull(span span.Location, path, field string) error {
	return Wrap(&Report{
		Code: RequiredFieldNull, Phase: "typechecker",
		Message: fmt.Sprintf("required field %q at %q is null", field, path),
		Span:    &span,
		Help:    "provide a non-null value or mark the field optional",
	})
}

func NewInvalidPattern(span span.Location, pattern, reason string) error {
	return Wrap(&Report{
		Code: InvalidPattern, Phase: "typechecker",
		Message: fmt.Sprintf("invalid regex pattern %q: %s", pattern, reason), Span: &span,
	})
}

func NewSchemaRedeclared(span span.Location, name string) error {
	return Wrap(&Report{
		Code: SchemaRedeclared, Phase: "typechecker",
		Message: fmt.Sprintf("schema %q redeclared with a different structure", name), Span: &span,
		Help: "schemas with the same name must be structurally identical across imported files",
	})
}

func NewUnknownSchema(span span.Location, name string) error {
	return Wrap(&Report{
		Code: UnknownSchema, Phase: "typechecker",
		Message: fmt.Sprintf("undefined schema %q", name), Span: &span,
		Help: fmt.Sprintf("define schema %s before using it, or import it from another file", name),
	})
}

func NewTypeConflict(span span.Location, path string) error {
	return Wrap(&Report{
		Code: TypeConflict, Phase: "merger",
		Message: fmt.Sprintf("type conflict merging %q: incompatible value kinds", path), Span: &span,
	})
}

func NewMultipleFrom(span, first span.Location) error {
	return Wrap(&Report{
		Code: MultipleFrom, Phase: "merger",
		Message: "a file may declare at most one `from`", Span: &span,
		Secondary: []SecondaryLabel{{Span: first, Label: "first `from` declared here"}},
		Help:      "remove all but one `from` declaration",
	})
}

func NewAppendToNonArray(span span.Location, key string) error {
	return Wrap(&Report{
		Code: AppendToNonArray, Phase: "merger",
		Message: fmt.Sprintf("%q is not absent or an array; cannot use `+:`", key), Span: &span,
	})
}

func NewFromInPreamble(span span.Location) error {
	return Wrap(&Report{
		Code: FromInPreamble, Phase: "merger",
		Message: "`from` is not allowed in the preamble of a multi-document file", Span: &span,
		Help: "move `from` into the document's own preamble",
	})
}

func NewNoMatchingDocument(span span.Location, name string) error {
	return Wrap(&Report{
		Code: NoMatchingDocument, Phase: "merger",
		Message: fmt.Sprintf("no document named %q", name), Span: &span,
	})
}

func NewInheritFromMultiDoc(span span.Location, path string) error {
	return Wrap(&Report{
		Code: InheritFromMultiDoc, Phase: "merger",
		Message: fmt.Sprintf("cannot `from` %q: inheriting from a multi-document file is not allowed", path),
		Span:    &span,
	})
}

func NewDivisionByZero(span span.Location) error {
	return Wrap(&Report{Code: DivisionByZero, Phase: "evaluator", Message: "division by zero", Span: &span})
}

func NewArithmeticOverflow(span span.Location, op string) error {
	return Wrap(&Report{
		Code: ArithmeticOverflow, Phase: "evaluator",
		Message: fmt.Sprintf("arithmetic overflow in %s", op), Span: &span,
	})
}

func NewIndexOutOfBounds(span span.Location, index, length int) error {
	return Wrap(&Report{
		Code: IndexOutOfBounds, Phase: "evaluator",
		Message: fmt.Sprintf("index %d out of bounds for array of length %d", index, length), Span: &span,
		Data: map[string]any{"index": index, "length": length},
	})
}

func NewForAtTopLevel(span span.Location) error {
	return Wrap(&Report{
		Code: ForAtTopLevel, Phase: "evaluator",
		Message: "`for` is not allowed at the top level of a file body", Span: &span,
		Help: "move the `for` loop inside an array or object literal",
	})
}

func NewAssertionFailed(span span.Location, cond string, freeVars map[string]string, msg string) error {
	message := fmt.Sprintf("assertion failed: %s", cond)
	if msg != "" {
		message = msg
	}
	return Wrap(&Report{
		Code: AssertionFailed, Phase: "evaluator",
		Message: message, Span: &span,
		Data: map[string]any{"condition": cond, "values": freeVars},
	})
}

func NewNoVariantSelection(span span.Location, variant string) error {
	return Wrap(&Report{
		Code: NoVariantSelection, Phase: "evaluator",
		Message: fmt.Sprintf("no case selected for variant %q and no default case", variant), Span: &span,
		Help: fmt.Sprintf("pass a selection for variant %q, or mark one case `default`", variant),
	})
}

func NewUnknownBuiltin(span span.Location, name string) error {
	return Wrap(&Report{
		Code: UnknownBuiltin, Phase: "evaluator",
		Message: fmt.Sprintf("unknown builtin function %q", name), Span: &span,
	})
}

func NewCircularDependency(span span.Location, chain []string) error {
	return Wrap(&Report{
		Code: CircularDependency, Phase: "pipeline",
		Message: "circular dependency: " + strings.Join(chain, " -> "), Span: &span,
	})
}

func NewPolicyDenied(span span.Location, name, message string) error {
	return Wrap(&Report{
		Code: PolicyDenied, Phase: "policy",
		Message: fmt.Sprintf("policy %q violated: %s", name, message), Span: &span,
		Data: map[string]any{"policy": name},
	})
}

func NewEnvNotAllowed(span span.Location, fn string) error {
	return Wrap(&Report{
		Code: EnvNotAllowed, Phase: "evaluator",
		Message: fmt.Sprintf("%s() requires allow_env", fn), Span: &span,
		Help: "pass allow_env: true in the compile configuration to permit this build to read its environment",
	})
}

func NewSecretInOutput(span span.Location, paths []string) error {
	return Wrap(&Report{
		Code: SecretInOutput, Phase: "pipeline",
		Message: "unresolved secret placeholders remain in output: " + strings.Join(paths, ", "),
		Span:    &span,
		Help:    "resolve the secrets or switch secrets_mode to \"placeholder\"",
		Data:    map[string]any{"paths": paths},
	})
}

func NewRecursionLimitExceeded(span span.Location, limit int) error {
	return Wrap(&Report{
		Code: RecursionLimitExceeded, Phase: "evaluator",
		Message: fmt.Sprintf("recursion limit of %d exceeded", limit), Span: &span,
	})
}

func NewIoError(reason string) error {
	return Wrap(&Report{Code: IoError, Phase: "io", Message: reason})
}
