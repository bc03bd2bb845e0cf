package types

import (
	"github.com/honelang/hone/internal/herrors"
	"github.com/honelang/hone/internal/span"
)

// Field is one declared field of a Schema.
type Field struct {
	Name     string
	Type     Type
	Optional bool
}

// SchemaDef is the registry's nominal record type: a name, an optional
// parent to inherit fields from, its own fields, and whether it accepts
// unknown keys (open, declared with trailing `...`). Not to be confused
// with the Schema() constructor, which builds a Type referencing a
// SchemaDef by name.
type SchemaDef struct {
	Name    string
	Extends string
	Fields  []Field
	Open    bool
}

// FieldsEqual reports structural equality between two field lists, in
// declared order (order does not affect acceptance but does affect this
// equality check, matching identical re-declarations having identical
// source).
func fieldsEqual(a, b []Field) bool {
	if len(a) != len(b) {
		return false
	}
	for i := range a {
		if a[i].Name != b[i].Name || a[i].Optional != b[i].Optional || !Equal(a[i].Type, b[i].Type) {
			return false
		}
	}
	return true
}

func schemaEqual(a, b SchemaDef) bool {
	return a.Extends == b.Extends && a.Open == b.Open && fieldsEqual(a.Fields, b.Fields)
}

// Registry collects SchemaDef and type-alias declarations across the root
// file and every transitively imported file (§4.4). Identical
// redeclarations of the same name are permitted; structurally different
// ones are a SchemaRedeclared error.
type Registry struct {
	schemas map[string]SchemaDef
	aliases map[string]Type
	cache   *PatternCache
}

func NewRegistry() *Registry {
	return &Registry{
		schemas: make(map[string]SchemaDef),
		aliases: make(map[string]Type),
		cache:   NewPatternCache(),
	}
}

// Patterns returns the registry's shared compiled-regex cache.
func (r *Registry) Patterns() *PatternCache { return r.cache }

// AddSchema registers a schema declaration at loc. A structurally
// identical redeclaration is a no-op; a conflicting one is an error.
func (r *Registry) AddSchema(name string, s SchemaDef, loc span.Location) error {
	if existing, ok := r.schemas[name]; ok {
		if schemaEqual(existing, s) {
			return nil
		}
		return herrors.NewSchemaRedeclared(loc, name)
	}
	r.schemas[name] = s
	return nil
}

// AddTypeAlias registers a type alias, with the same identical-redeclaration
// tolerance as schemas.
func (r *Registry) AddTypeAlias(name string, t Type, loc span.Location) error {
	if existing, ok := r.aliases[name]; ok {
		if Equal(existing, t) {
			return nil
		}
		return herrors.NewSchemaRedeclared(loc, name)
	}
	r.aliases[name] = t
	return nil
}

func (r *Registry) SchemaDef(name string) (SchemaDef, bool) {
	s, ok := r.schemas[name]
	return s, ok
}

func (r *Registry) Alias(name string) (Type, bool) {
	t, ok := r.aliases[name]
	return t, ok
}

// ResolveField returns a schema's fully-inherited field list: parent
// fields first (recursively), then the schema's own, per "extends inherits
// parent fields; the child must also satisfy the parent (checked
// transitively)" (§3.3).
func (r *Registry) ResolveFields(name string) ([]Field, bool, error) {
	s, ok := r.schemas[name]
	if !ok {
		return nil, false, nil
	}
	var fields []Field
	open := s.Open
	if s.Extends != "" {
		parentFields, parentOpen, parentFound, err := r.resolveFieldsChecked(s.Extends, map[string]bool{name: true})
		if err != nil {
			return nil, false, err
		}
		if parentFound {
			fields = append(fields, parentFields...)
			open = open || parentOpen
		}
	}
	fields = append(fields, s.Fields...)
	return fields, open, nil
}

func (r *Registry) resolveFieldsChecked(name string, seen map[string]bool) ([]Field, bool, bool, error) {
	if seen[name] {
		return nil, false, false, nil // cycle in extends chain; treated as no further inheritance
	}
	seen[name] = true
	s, ok := r.schemas[name]
	if !ok {
		return nil, false, false, nil
	}
	var fields []Field
	open := s.Open
	if s.Extends != "" {
		parentFields, parentOpen, found, err := r.resolveFieldsChecked(s.Extends, seen)
		if err != nil {
			return nil, false, false, err
		}
		if found {
			fields = append(fields, parentFields...)
			open = open || parentOpen
		}
	}
	fields = append(fields, s.Fields...)
	return fields, open, true, nil
}
