// Package ast defines the syntax tree produced by the hone parser, per the
// data model in the language specification (§3.2): a File of preamble
// declarations and body items, optionally split into multiple documents.
package ast

import (
	"github.com/honelang/hone/internal/span"
	"github.com/honelang/hone/internal/types"
)

// Location is the source-location type attached to every node.
type Location = span.Location

// File is the root of a parsed source file.
type File struct {
	Preamble  []PreambleItem
	Body      []BodyItem
	Documents []*Document
	Loc       Location
}

// Document is one `---name` section of a multi-document file. File.Documents
// is non-empty iff a document separator appeared after the shared body.
type Document struct {
	Name     string // empty means unnamed
	HasName  bool
	Preamble []PreambleItem
	Body     []BodyItem
	Loc      Location
}

// Node is implemented by every AST node so callers can recover a span for
// diagnostics uniformly.
type Node interface {
	Location() Location
}

// ---------------------------------------------------------------------
// Preamble items
// ---------------------------------------------------------------------

// PreambleItem is implemented by every preamble declaration kind.
type PreambleItem interface {
	Node
	preambleItem()
}

type LetDecl struct {
	Name string
	Expr Expr
	Loc  Location
}

func (n *LetDecl) Location() Location { return n.Loc }
func (*LetDecl) preambleItem()        {}

type FromDecl struct {
	Path string // literal import path, no interpolation
	Loc  Location
}

func (n *FromDecl) Location() Location { return n.Loc }
func (*FromDecl) preambleItem()        {}

// ImportKind distinguishes `import "p" as X` from `import { a, b as c } from "p"`.
type ImportKind int

const (
	ImportWhole ImportKind = iota
	ImportNamed
)

type ImportedName struct {
	Name  string
	Alias string // empty if no alias
}

type ImportDecl struct {
	Kind  ImportKind
	Path  string
	Alias string         // ImportWhole only; empty means derive from filename stem
	Names []ImportedName // ImportNamed only
	Loc   Location
}

func (n *ImportDecl) Location() Location { return n.Loc }
func (*ImportDecl) preambleItem()        {}

// SchemaField is one field of a schema declaration.
type SchemaField struct {
	Name     string
	Type     types.Type
	Optional bool
	Default  Expr // nil if none
	Loc      Location
}

type SchemaDecl struct {
	Name    string
	Extends string // empty if none
	Fields  []SchemaField
	Open    bool
	Loc     Location
}

func (n *SchemaDecl) Location() Location { return n.Loc }
func (*SchemaDecl) preambleItem()        {}

type TypeAliasDecl struct {
	Name string
	Type types.Type
	Loc  Location
}

func (n *TypeAliasDecl) Location() Location { return n.Loc }
func (*TypeAliasDecl) preambleItem()        {}

type UseDecl struct {
	SchemaName string
	Loc        Location
}

func (n *UseDecl) Location() Location { return n.Loc }
func (*UseDecl) preambleItem()        {}

type VariantCase struct {
	Name      string
	IsDefault bool
	Body      []BodyItem
	Loc       Location
}

type VariantDecl struct {
	Name  string
	Cases []VariantCase
	Loc   Location
}

func (n *VariantDecl) Location() Location { return n.Loc }
func (*VariantDecl) preambleItem()        {}

type ExpectDecl struct {
	Path     []string
	TypeName string
	Default  Expr // nil if none
	Loc      Location
}

func (n *ExpectDecl) Location() Location { return n.Loc }
func (*ExpectDecl) preambleItem()        {}

type SecretDecl struct {
	Name     string
	Provider string // e.g. "env:NAME" or "vault:path"
	Loc      Location
}

func (n *SecretDecl) Location() Location { return n.Loc }
func (*SecretDecl) preambleItem()        {}

type PolicyLevel int

const (
	PolicyDeny PolicyLevel = iota
	PolicyWarn
)

type PolicyDecl struct {
	Name    string
	Level   PolicyLevel
	Cond    Expr
	Message string // empty if none
	Loc     Location
}

func (n *PolicyDecl) Location() Location { return n.Loc }
func (*PolicyDecl) preambleItem()        {}

// ---------------------------------------------------------------------
// Body items
// ---------------------------------------------------------------------

// BodyItem is implemented by every statement kind that can appear in a
// file/object/document body.
type BodyItem interface {
	Node
	bodyItem()
}

// AssignOp selects one of the three merge strategies for a KeyValue item.
type AssignOp int

const (
	AssignNormal AssignOp = iota // :
	AssignAppend                 // +:
	AssignReplace                // !:
)

// Key is either a bare identifier or a quoted string; quoting lets reserved
// words be used as keys.
type Key struct {
	Name   string
	Quoted bool
}

type KeyValueItem struct {
	Key        Key
	Op         AssignOp
	Value      Expr
	Unchecked  bool // `@unchecked` annotation present
	Loc        Location
}

func (n *KeyValueItem) Location() Location { return n.Loc }
func (*KeyValueItem) bodyItem()            {}

type WhenItem struct {
	Cond Expr
	Body []BodyItem
	Else []BodyItem // nil if no else
	Loc  Location
}

func (n *WhenItem) Location() Location { return n.Loc }
func (*WhenItem) bodyItem()            {}

type ForItem struct {
	Binding string
	Iter    Expr
	Body    []BodyItem
	Loc     Location
}

func (n *ForItem) Location() Location { return n.Loc }
func (*ForItem) bodyItem()            {}

type AssertItem struct {
	Cond    Expr
	Message string // empty if none
	Loc     Location
}

func (n *AssertItem) Location() Location { return n.Loc }
func (*AssertItem) bodyItem()            {}

// LetItem is the body-level form of `let`, scoping a name for subsequent
// body items without writing into the output object.
type LetItem struct {
	Name string
	Expr Expr
	Loc  Location
}

func (n *LetItem) Location() Location { return n.Loc }
func (*LetItem) bodyItem()            {}

type SpreadItem struct {
	Expr Expr
	Loc  Location
}

func (n *SpreadItem) Location() Location { return n.Loc }
func (*SpreadItem) bodyItem()            {}

// Block is sugar for KeyValueItem{Key: name, Op: Normal, Value: ObjectLit},
// kept distinct so the parser/printer can round-trip `name { ... }` syntax;
// the evaluator treats it identically to its desugared KeyValueItem form.
type Block struct {
	Name Key
	Body []BodyItem
	Loc  Location
}

func (n *Block) Location() Location { return n.Loc }
func (*Block) bodyItem()            {}
