package types

import (
	"fmt"
	"sort"
	"strings"
	"unicode/utf8"

	"github.com/honelang/hone/internal/herrors"
	"github.com/honelang/hone/internal/span"
	"github.com/honelang/hone/internal/value"
)

// Checker validates Values against Types, honoring the registry's schemas
// and a per-check set of `@unchecked` paths (§4.2.7, §4.4).
type Checker struct {
	Registry  *Registry
	Unchecked map[string]bool
	File      string
	Warnings  []herrors.Warning
}

func NewChecker(reg *Registry, unchecked map[string]bool, file string) *Checker {
	if unchecked == nil {
		unchecked = map[string]bool{}
	}
	return &Checker{Registry: reg, Unchecked: unchecked, File: file}
}

// fail reports err against path when it isn't annotated `@unchecked`;
// otherwise it is suppressed here (the exact-path warning is emitted
// uniformly by Check, whether or not err is nil — see §4.2.7/§4.4: every
// annotated path produces a "type check skipped" warning when reached,
// not only the ones that would have failed). fail remains for checks on
// paths other than the one Check itself is dispatching on (a schema's
// missing/unknown field, keyed by its own fieldPath), which never go
// through Check's wrapper and so need their own suppression here.
func (c *Checker) fail(path string, err error) error {
	if err == nil {
		return nil
	}
	if c.Unchecked[path] {
		c.Warnings = append(c.Warnings, herrors.Warning{
			Message: fmt.Sprintf("type check skipped at %q (@unchecked): %s", path, err.Error()),
			File:    c.File,
		})
		return nil
	}
	return err
}

// Check validates v against t at loc, reporting errors against the dotted
// field path. Every call is the single place §4.2.7/§4.4's "@unchecked"
// warning is reported: when path is annotated, the underlying check in
// checkKind still runs (so descendants are still checked under their own
// paths) but its result — pass or fail — is always recorded as a warning
// here and the error is suppressed, rather than only on failure.
func (c *Checker) Check(v value.Value, t Type, loc span.Location, path string) error {
	err := c.checkKind(v, t, loc, path)
	if !c.Unchecked[path] {
		return err
	}
	msg := "ok"
	if err != nil {
		msg = err.Error()
	}
	c.Warnings = append(c.Warnings, herrors.Warning{
		Message: fmt.Sprintf("type check skipped at %q (@unchecked): %s", path, msg),
		File:    c.File,
	})
	return nil
}

func (c *Checker) checkKind(v value.Value, t Type, loc span.Location, path string) error {
	switch t.Kind {
	case KAny:
		return nil

	case KNull:
		if _, ok := v.(value.Null); !ok {
			return herrors.NewTypeMismatch(loc, path, "null", v.Kind().String())
		}
		return nil

	case KBool:
		if _, ok := v.(value.Bool); !ok {
			return herrors.NewTypeMismatch(loc, path, "bool", v.Kind().String())
		}
		return nil

	case KInt:
		if _, ok := v.(value.Int); !ok {
			return herrors.NewTypeMismatch(loc, path, "int", v.Kind().String())
		}
		return nil

	case KFloat:
		if _, ok := v.(value.Float); !ok {
			return herrors.NewTypeMismatch(loc, path, "float", v.Kind().String())
		}
		return nil

	case KNumber:
		switch v.(type) {
		case value.Int, value.Float:
			return nil
		default:
			return herrors.NewTypeMismatch(loc, path, "number", v.Kind().String())
		}

	case KString:
		if _, ok := v.(value.String); !ok {
			return herrors.NewTypeMismatch(loc, path, "string", v.Kind().String())
		}
		return nil

	case KIntConstrained:
		iv, ok := v.(value.Int)
		if !ok {
			return herrors.NewTypeMismatch(loc, path, t.String(), v.Kind().String())
		}
		if (t.IntMin != nil && int64(iv) < *t.IntMin) || (t.IntMax != nil && int64(iv) > *t.IntMax) {
			return herrors.NewValueOutOfRange(loc, path, t.String(), fmt.Sprintf("%d", iv))
		}
		return nil

	case KFloatConstrained:
		var fv float64
		switch n := v.(type) {
		case value.Float:
			fv = float64(n)
		case value.Int:
			fv = float64(n)
		default:
			return herrors.NewTypeMismatch(loc, path, t.String(), v.Kind().String())
		}
		if (t.FloatMin != nil && fv < *t.FloatMin) || (t.FloatMax != nil && fv > *t.FloatMax) {
			return herrors.NewValueOutOfRange(loc, path, t.String(), fmt.Sprintf("%g", fv))
		}
		return nil

	case KStringConstrained:
		sv, ok := v.(value.String)
		if !ok {
			return herrors.NewTypeMismatch(loc, path, t.String(), v.Kind().String())
		}
		n := utf8.RuneCountInString(string(sv))
		if (t.StrMinLen != nil && n < *t.StrMinLen) || (t.StrMaxLen != nil && n > *t.StrMaxLen) {
			return herrors.NewValueOutOfRange(loc, path, t.String(), string(sv))
		}
		if t.Pattern != "" {
			ok, err := c.Registry.Patterns().Match(t.Pattern, string(sv))
			if err != nil {
				return herrors.NewInvalidPattern(loc, t.Pattern, err.Error())
			}
			if !ok {
				return herrors.NewPatternMismatch(loc, path, t.Pattern, string(sv))
			}
		}
		return nil

	case KStringLiteral:
		sv, ok := v.(value.String)
		if !ok || string(sv) != t.Literal {
			return herrors.NewTypeMismatch(loc, path, fmt.Sprintf("%q", t.Literal), v.Kind().String())
		}
		return nil

	case KArray:
		av, ok := v.(value.Array)
		if !ok {
			return herrors.NewTypeMismatch(loc, path, "array", v.Kind().String())
		}
		for i, elem := range av {
			elemPath := fmt.Sprintf("%s[%d]", path, i)
			if err := c.Check(elem, *t.Elem, loc, elemPath); err != nil {
				return err
			}
		}
		return nil

	case KObject:
		ov, ok := v.(*value.Object)
		if !ok {
			return herrors.NewTypeMismatch(loc, path, "object", v.Kind().String())
		}
		if t.Value == nil {
			return nil
		}
		for _, k := range ov.Keys() {
			fv, _ := ov.Get(k)
			if err := c.Check(fv, *t.Value, loc, joinPath(path, k)); err != nil {
				return err
			}
		}
		return nil

	case KMap:
		ov, ok := v.(*value.Object)
		if !ok {
			return herrors.NewTypeMismatch(loc, path, "map", v.Kind().String())
		}
		for _, k := range ov.Keys() {
			fv, _ := ov.Get(k)
			if err := c.Check(fv, *t.Value, loc, joinPath(path, k)); err != nil {
				return err
			}
		}
		return nil

	case KSchema:
		return c.checkSchema(v, t.SchemaName, loc, path)

	case KUnion:
		return c.checkUnion(v, t, loc, path)

	case KOptional:
		if _, ok := v.(value.Null); ok {
			return nil
		}
		return c.checkKind(v, *t.Elem, loc, path)

	default:
		return fmt.Errorf("unknown type kind %d", t.Kind)
	}
}

func joinPath(path, field string) string {
	if path == "" {
		return field
	}
	return path + "." + field
}

func (c *Checker) checkSchema(v value.Value, schemaName string, loc span.Location, path string) error {
	ov, ok := v.(*value.Object)
	if !ok {
		return herrors.NewTypeMismatch(loc, path, schemaName, v.Kind().String())
	}

	fields, open, err := c.Registry.ResolveFields(schemaName)
	if err != nil {
		return err
	}
	if _, declared := c.Registry.SchemaDef(schemaName); !declared {
		return herrors.NewUnknownSchema(loc, schemaName)
	}

	known := make(map[string]bool, len(fields))
	for _, f := range fields {
		known[f.Name] = true
		fieldPath := joinPath(path, f.Name)
		fv, present := ov.Get(f.Name)
		if !present {
			if f.Optional {
				continue
			}
			if err := c.fail(fieldPath, herrors.NewMissingField(loc, path, f.Name, schemaName)); err != nil {
				return err
			}
			continue
		}
		if _, isNull := fv.(value.Null); isNull && !f.Optional && f.Type.Kind != KOptional && f.Type.Kind != KNull && f.Type.Kind != KAny {
			if err := c.fail(fieldPath, herrors.NewRequiredFieldNull(loc, path, f.Name)); err != nil {
				return err
			}
			continue
		}
		if err := c.Check(fv, f.Type, loc, fieldPath); err != nil {
			return err
		}
	}

	if !open {
		extra := make([]string, 0)
		for _, k := range ov.Keys() {
			if !known[k] {
				extra = append(extra, k)
			}
		}
		sort.Strings(extra)
		for _, k := range extra {
			if err := c.fail(joinPath(path, k), herrors.NewUnknownField(loc, path, k, schemaName)); err != nil {
				return err
			}
		}
	}
	return nil
}

// checkUnion tries each branch in order, ignoring any warnings produced by
// failed attempts, and commits only the first successful branch's
// warnings. If no branch matches, the reported error quotes all of them.
func (c *Checker) checkUnion(v value.Value, t Type, loc span.Location, path string) error {
	var branchErrs []string
	for _, opt := range t.Options {
		probe := &Checker{Registry: c.Registry, Unchecked: c.Unchecked, File: c.File}
		if err := probe.Check(v, opt, loc, path); err == nil {
			c.Warnings = append(c.Warnings, probe.Warnings...)
			return nil
		} else {
			branchErrs = append(branchErrs, opt.String())
		}
	}
	return herrors.NewTypeMismatch(loc, path, strings.Join(branchErrs, " | "), v.Kind().String())
}
