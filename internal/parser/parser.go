// Package parser implements the recursive-descent parser that turns a
// token stream from internal/lexer into the internal/ast tree described
// in §3.2.
package parser

import (
	"fmt"
	"strconv"

	"github.com/honelang/hone/internal/ast"
	"github.com/honelang/hone/internal/herrors"
	"github.com/honelang/hone/internal/lexer"
	"github.com/honelang/hone/internal/span"
	"github.com/honelang/hone/internal/types"
)

// Parser consumes a token stream and builds an ast.File.
type Parser struct {
	lex  *lexer.Lexer
	file string
	cur  lexer.Token
	peek lexer.Token
}

// Parse lexes and parses src (already Normalize-d) under filename.
func Parse(src []byte, filename string) (*ast.File, error) {
	p := &Parser{lex: lexer.New(string(src), filename), file: filename}
	if err := p.advance(); err != nil {
		return nil, err
	}
	if err := p.advance(); err != nil {
		return nil, err
	}
	return p.parseFile()
}

func (p *Parser) advance() error {
	p.cur = p.peek
	tok, err := p.lex.NextToken()
	if err != nil {
		return err
	}
	p.peek = tok
	return nil
}

func (p *Parser) loc() span.Location {
	return span.Location{File: p.file, Line: p.cur.Line, Column: p.cur.Column, ByteOffset: p.cur.Offset}
}

func (p *Parser) expect(t lexer.TokenType) error {
	if p.cur.Type != t {
		return herrors.NewUnexpectedToken(p.loc(), p.cur.Literal, t.String())
	}
	return p.advance()
}

func (p *Parser) expectIdent() (string, error) {
	if p.cur.Type != lexer.IDENT {
		return "", herrors.NewUnexpectedToken(p.loc(), p.cur.Literal, "identifier")
	}
	name := p.cur.Literal
	return name, p.advance()
}

func (p *Parser) expectString() (string, error) {
	if p.cur.Type != lexer.STRING {
		return "", herrors.NewImportResolution(p.loc(), "path must be a plain string literal")
	}
	s := p.cur.Literal
	return s, p.advance()
}

func isKeywordToken(t lexer.TokenType) bool {
	return t >= lexer.LET && t <= lexer.FALSE
}

// ---------------------------------------------------------------------
// File / documents
// ---------------------------------------------------------------------

func (p *Parser) parseFile() (*ast.File, error) {
	loc := p.loc()
	preamble, body, err := p.parseItems()
	if err != nil {
		return nil, err
	}
	file := &ast.File{Preamble: preamble, Body: body, Loc: loc}

	for p.cur.Type == lexer.DOC_SEP {
		docLoc := p.loc()
		if err := p.advance(); err != nil {
			return nil, err
		}
		name := ""
		hasName := false
		if p.cur.Type == lexer.IDENT {
			name = p.cur.Literal
			hasName = true
			if err := p.advance(); err != nil {
				return nil, err
			}
		}
		docPreamble, docBody, err := p.parseItems()
		if err != nil {
			return nil, err
		}
		file.Documents = append(file.Documents, &ast.Document{
			Name: name, HasName: hasName, Preamble: docPreamble, Body: docBody, Loc: docLoc,
		})
	}

	if p.cur.Type != lexer.EOF {
		return nil, herrors.NewUnexpectedToken(p.loc(), p.cur.Literal, "end of file")
	}
	return file, nil
}

// parseItems parses preamble and body items up to EOF or a document
// separator. `let` is routed to the preamble until the first true body
// item appears, after which it is treated as a body-scoped let (§3.2).
func (p *Parser) parseItems() ([]ast.PreambleItem, []ast.BodyItem, error) {
	var preamble []ast.PreambleItem
	var body []ast.BodyItem
	seenBody := false

	for p.cur.Type != lexer.EOF && p.cur.Type != lexer.DOC_SEP {
		switch p.cur.Type {
		case lexer.FROM:
			item, err := p.parseFromDecl()
			if err != nil {
				return nil, nil, err
			}
			preamble = append(preamble, item)
		case lexer.IMPORT:
			item, err := p.parseImportDecl()
			if err != nil {
				return nil, nil, err
			}
			preamble = append(preamble, item)
		case lexer.SCHEMA:
			item, err := p.parseSchemaDecl()
			if err != nil {
				return nil, nil, err
			}
			preamble = append(preamble, item)
		case lexer.TYPE:
			item, err := p.parseTypeAliasDecl()
			if err != nil {
				return nil, nil, err
			}
			preamble = append(preamble, item)
		case lexer.USE:
			item, err := p.parseUseDecl()
			if err != nil {
				return nil, nil, err
			}
			preamble = append(preamble, item)
		case lexer.VARIANT:
			item, err := p.parseVariantDecl()
			if err != nil {
				return nil, nil, err
			}
			preamble = append(preamble, item)
		case lexer.EXPECT:
			item, err := p.parseExpectDecl()
			if err != nil {
				return nil, nil, err
			}
			preamble = append(preamble, item)
		case lexer.SECRET:
			item, err := p.parseSecretDecl()
			if err != nil {
				return nil, nil, err
			}
			preamble = append(preamble, item)
		case lexer.POLICY:
			item, err := p.parsePolicyDecl()
			if err != nil {
				return nil, nil, err
			}
			preamble = append(preamble, item)
		case lexer.LET:
			if !seenBody {
				item, err := p.parseLetDecl()
				if err != nil {
					return nil, nil, err
				}
				preamble = append(preamble, item)
				continue
			}
			item, err := p.parseLetItem()
			if err != nil {
				return nil, nil, err
			}
			body = append(body, item)
		default:
			item, err := p.parseBodyItem()
			if err != nil {
				return nil, nil, err
			}
			body = append(body, item)
			seenBody = true
		}
	}
	return preamble, body, nil
}

// ---------------------------------------------------------------------
// Preamble items
// ---------------------------------------------------------------------

func (p *Parser) parseLetDecl() (*ast.LetDecl, error) {
	loc := p.loc()
	if err := p.advance(); err != nil {
		return nil, err
	}
	name, err := p.expectIdent()
	if err != nil {
		return nil, err
	}
	if err := p.expect(lexer.EQ); err != nil {
		return nil, err
	}
	e, err := p.parseExpr()
	if err != nil {
		return nil, err
	}
	return &ast.LetDecl{Name: name, Expr: e, Loc: loc}, nil
}

func (p *Parser) parseFromDecl() (*ast.FromDecl, error) {
	loc := p.loc()
	if err := p.advance(); err != nil {
		return nil, err
	}
	path, err := p.expectString()
	if err != nil {
		return nil, err
	}
	return &ast.FromDecl{Path: path, Loc: loc}, nil
}

func (p *Parser) parseImportDecl() (*ast.ImportDecl, error) {
	loc := p.loc()
	if err := p.advance(); err != nil {
		return nil, err
	}

	if p.cur.Type == lexer.LBRACE {
		if err := p.advance(); err != nil {
			return nil, err
		}
		var names []ast.ImportedName
		for p.cur.Type != lexer.RBRACE {
			name, err := p.expectIdent()
			if err != nil {
				return nil, err
			}
			alias := ""
			if p.cur.Type == lexer.AS {
				if err := p.advance(); err != nil {
					return nil, err
				}
				alias, err = p.expectIdent()
				if err != nil {
					return nil, err
				}
			}
			names = append(names, ast.ImportedName{Name: name, Alias: alias})
			if p.cur.Type == lexer.COMMA {
				if err := p.advance(); err != nil {
					return nil, err
				}
				continue
			}
			break
		}
		if err := p.expect(lexer.RBRACE); err != nil {
			return nil, err
		}
		if err := p.expect(lexer.FROM); err != nil {
			return nil, err
		}
		path, err := p.expectString()
		if err != nil {
			return nil, err
		}
		return &ast.ImportDecl{Kind: ast.ImportNamed, Names: names, Path: path, Loc: loc}, nil
	}

	path, err := p.expectString()
	if err != nil {
		return nil, err
	}
	alias := ""
	if p.cur.Type == lexer.AS {
		if err := p.advance(); err != nil {
			return nil, err
		}
		alias, err = p.expectIdent()
		if err != nil {
			return nil, err
		}
	}
	return &ast.ImportDecl{Kind: ast.ImportWhole, Path: path, Alias: alias, Loc: loc}, nil
}

func (p *Parser) parseSchemaDecl() (*ast.SchemaDecl, error) {
	loc := p.loc()
	if err := p.advance(); err != nil {
		return nil, err
	}
	name, err := p.expectIdent()
	if err != nil {
		return nil, err
	}
	extends := ""
	if p.cur.Type == lexer.EXTENDS {
		if err := p.advance(); err != nil {
			return nil, err
		}
		extends, err = p.expectIdent()
		if err != nil {
			return nil, err
		}
	}
	if err := p.expect(lexer.LBRACE); err != nil {
		return nil, err
	}

	var fields []ast.SchemaField
	open := false
	for p.cur.Type != lexer.RBRACE {
		if p.cur.Type == lexer.ELLIPSIS {
			open = true
			if err := p.advance(); err != nil {
				return nil, err
			}
			if p.cur.Type == lexer.COMMA {
				if err := p.advance(); err != nil {
					return nil, err
				}
			}
			continue
		}
		fieldLoc := p.loc()
		fname, err := p.expectIdent()
		if err != nil {
			return nil, err
		}
		optional := false
		if p.cur.Type == lexer.QUESTION {
			optional = true
			if err := p.advance(); err != nil {
				return nil, err
			}
		}
		if err := p.expect(lexer.COLON); err != nil {
			return nil, err
		}
		ftype, err := p.parseTypeExpr()
		if err != nil {
			return nil, err
		}
		var def ast.Expr
		if p.cur.Type == lexer.EQ {
			if err := p.advance(); err != nil {
				return nil, err
			}
			def, err = p.parseExpr()
			if err != nil {
				return nil, err
			}
		}
		fields = append(fields, ast.SchemaField{Name: fname, Type: ftype, Optional: optional, Default: def, Loc: fieldLoc})
		if p.cur.Type == lexer.COMMA {
			if err := p.advance(); err != nil {
				return nil, err
			}
		}
	}
	if err := p.expect(lexer.RBRACE); err != nil {
		return nil, err
	}
	return &ast.SchemaDecl{Name: name, Extends: extends, Fields: fields, Open: open, Loc: loc}, nil
}

func (p *Parser) parseTypeAliasDecl() (*ast.TypeAliasDecl, error) {
	loc := p.loc()
	if err := p.advance(); err != nil {
		return nil, err
	}
	name, err := p.expectIdent()
	if err != nil {
		return nil, err
	}
	if err := p.expect(lexer.EQ); err != nil {
		return nil, err
	}
	t, err := p.parseTypeExpr()
	if err != nil {
		return nil, err
	}
	return &ast.TypeAliasDecl{Name: name, Type: t, Loc: loc}, nil
}

func (p *Parser) parseUseDecl() (*ast.UseDecl, error) {
	loc := p.loc()
	if err := p.advance(); err != nil {
		return nil, err
	}
	name, err := p.expectIdent()
	if err != nil {
		return nil, err
	}
	return &ast.UseDecl{SchemaName: name, Loc: loc}, nil
}

func (p *Parser) parseVariantDecl() (*ast.VariantDecl, error) {
	loc := p.loc()
	if err := p.advance(); err != nil {
		return nil, err
	}
	name, err := p.expectIdent()
	if err != nil {
		return nil, err
	}
	if err := p.expect(lexer.LBRACE); err != nil {
		return nil, err
	}
	var cases []ast.VariantCase
	for p.cur.Type != lexer.RBRACE {
		caseLoc := p.loc()
		caseName, err := p.expectIdent()
		if err != nil {
			return nil, err
		}
		if err := p.expect(lexer.LBRACE); err != nil {
			return nil, err
		}
		body, err := p.parseBodyItems(lexer.RBRACE)
		if err != nil {
			return nil, err
		}
		if err := p.expect(lexer.RBRACE); err != nil {
			return nil, err
		}
		cases = append(cases, ast.VariantCase{Name: caseName, IsDefault: caseName == "default", Body: body, Loc: caseLoc})
	}
	if err := p.expect(lexer.RBRACE); err != nil {
		return nil, err
	}
	return &ast.VariantDecl{Name: name, Cases: cases, Loc: loc}, nil
}

func (p *Parser) parseExpectDecl() (*ast.ExpectDecl, error) {
	loc := p.loc()
	if err := p.advance(); err != nil {
		return nil, err
	}
	first, err := p.expectIdent()
	if err != nil {
		return nil, err
	}
	path := []string{first}
	for p.cur.Type == lexer.DOT {
		if err := p.advance(); err != nil {
			return nil, err
		}
		next, err := p.expectIdent()
		if err != nil {
			return nil, err
		}
		path = append(path, next)
	}
	if err := p.expect(lexer.COLON); err != nil {
		return nil, err
	}
	typeName, err := p.expectIdent()
	if err != nil {
		return nil, err
	}
	var def ast.Expr
	if p.cur.Type == lexer.EQ {
		if err := p.advance(); err != nil {
			return nil, err
		}
		def, err = p.parseExpr()
		if err != nil {
			return nil, err
		}
	}
	return &ast.ExpectDecl{Path: path, TypeName: typeName, Default: def, Loc: loc}, nil
}

func (p *Parser) parseSecretDecl() (*ast.SecretDecl, error) {
	loc := p.loc()
	if err := p.advance(); err != nil {
		return nil, err
	}
	name, err := p.expectIdent()
	if err != nil {
		return nil, err
	}
	if err := p.expect(lexer.FROM); err != nil {
		return nil, err
	}
	provider, err := p.expectString()
	if err != nil {
		return nil, err
	}
	return &ast.SecretDecl{Name: name, Provider: provider, Loc: loc}, nil
}

func (p *Parser) parsePolicyDecl() (*ast.PolicyDecl, error) {
	loc := p.loc()
	if err := p.advance(); err != nil {
		return nil, err
	}
	name, err := p.expectIdent()
	if err != nil {
		return nil, err
	}
	var level ast.PolicyLevel
	switch p.cur.Type {
	case lexer.DENY:
		level = ast.PolicyDeny
	case lexer.WARN:
		level = ast.PolicyWarn
	default:
		return nil, herrors.NewUnexpectedToken(p.loc(), p.cur.Literal, "deny or warn")
	}
	if err := p.advance(); err != nil {
		return nil, err
	}
	if err := p.expect(lexer.WHEN); err != nil {
		return nil, err
	}
	cond, err := p.parseExpr()
	if err != nil {
		return nil, err
	}
	message := ""
	if p.cur.Type == lexer.LBRACE {
		if err := p.advance(); err != nil {
			return nil, err
		}
		if p.cur.Type == lexer.STRING {
			message = p.cur.Literal
			if err := p.advance(); err != nil {
				return nil, err
			}
		}
		if err := p.expect(lexer.RBRACE); err != nil {
			return nil, err
		}
	}
	return &ast.PolicyDecl{Name: name, Level: level, Cond: cond, Message: message, Loc: loc}, nil
}

// ---------------------------------------------------------------------
// Body items
// ---------------------------------------------------------------------

func (p *Parser) parseBodyItems(end lexer.TokenType) ([]ast.BodyItem, error) {
	var items []ast.BodyItem
	for p.cur.Type != end && p.cur.Type != lexer.EOF {
		item, err := p.parseBodyItem()
		if err != nil {
			return nil, err
		}
		items = append(items, item)
		if p.cur.Type == lexer.COMMA {
			if err := p.advance(); err != nil {
				return nil, err
			}
		}
	}
	return items, nil
}

func (p *Parser) parseBodyItem() (ast.BodyItem, error) {
	switch p.cur.Type {
	case lexer.WHEN:
		return p.parseWhenItem()
	case lexer.FOR:
		return p.parseForItem()
	case lexer.ASSERT:
		return p.parseAssertItem()
	case lexer.LET:
		return p.parseLetItem()
	case lexer.ELLIPSIS:
		loc := p.loc()
		if err := p.advance(); err != nil {
			return nil, err
		}
		e, err := p.parseExpr()
		if err != nil {
			return nil, err
		}
		return &ast.SpreadItem{Expr: e, Loc: loc}, nil
	default:
		return p.parseKeyValueOrBlock()
	}
}

func (p *Parser) parseKey() (ast.Key, error) {
	switch {
	case p.cur.Type == lexer.STRING:
		k := ast.Key{Name: p.cur.Literal, Quoted: true}
		return k, p.advance()
	case p.cur.Type == lexer.IDENT:
		k := ast.Key{Name: p.cur.Literal, Quoted: false}
		return k, p.advance()
	case isKeywordToken(p.cur.Type):
		return ast.Key{}, herrors.NewReservedWordAsKey(p.loc(), p.cur.Type.String())
	default:
		return ast.Key{}, herrors.NewUnexpectedToken(p.loc(), p.cur.Literal, "key")
	}
}

func (p *Parser) parseKeyValueOrBlock() (ast.BodyItem, error) {
	loc := p.loc()
	key, err := p.parseKey()
	if err != nil {
		return nil, err
	}

	if p.cur.Type == lexer.LBRACE {
		if err := p.advance(); err != nil {
			return nil, err
		}
		body, err := p.parseBodyItems(lexer.RBRACE)
		if err != nil {
			return nil, err
		}
		if err := p.expect(lexer.RBRACE); err != nil {
			return nil, err
		}
		return &ast.Block{Name: key, Body: body, Loc: loc}, nil
	}

	var op ast.AssignOp
	switch p.cur.Type {
	case lexer.COLON:
		op = ast.AssignNormal
	case lexer.COLON_PLUS:
		op = ast.AssignAppend
	case lexer.COLON_BANG:
		op = ast.AssignReplace
	default:
		return nil, herrors.NewUnexpectedToken(p.loc(), p.cur.Literal, ": or +: or !:")
	}
	if err := p.advance(); err != nil {
		return nil, err
	}
	value, err := p.parseExpr()
	if err != nil {
		return nil, err
	}

	unchecked := false
	if p.cur.Type == lexer.AT {
		if err := p.advance(); err != nil {
			return nil, err
		}
		word, err := p.expectIdent()
		if err != nil {
			return nil, err
		}
		if word != "unchecked" {
			return nil, herrors.NewUnexpectedToken(p.loc(), word, "unchecked")
		}
		unchecked = true
	}

	return &ast.KeyValueItem{Key: key, Op: op, Value: value, Unchecked: unchecked, Loc: loc}, nil
}

func (p *Parser) parseWhenItem() (*ast.WhenItem, error) {
	loc := p.loc()
	if err := p.advance(); err != nil {
		return nil, err
	}
	cond, err := p.parseExpr()
	if err != nil {
		return nil, err
	}
	if err := p.expect(lexer.LBRACE); err != nil {
		return nil, err
	}
	body, err := p.parseBodyItems(lexer.RBRACE)
	if err != nil {
		return nil, err
	}
	if err := p.expect(lexer.RBRACE); err != nil {
		return nil, err
	}

	var elseBody []ast.BodyItem
	if p.cur.Type == lexer.ELSE {
		if err := p.advance(); err != nil {
			return nil, err
		}
		if p.cur.Type == lexer.WHEN {
			nested, err := p.parseWhenItem()
			if err != nil {
				return nil, err
			}
			elseBody = []ast.BodyItem{nested}
		} else {
			if err := p.expect(lexer.LBRACE); err != nil {
				return nil, err
			}
			elseBody, err = p.parseBodyItems(lexer.RBRACE)
			if err != nil {
				return nil, err
			}
			if err := p.expect(lexer.RBRACE); err != nil {
				return nil, err
			}
		}
	}

	return &ast.WhenItem{Cond: cond, Body: body, Else: elseBody, Loc: loc}, nil
}

func (p *Parser) parseForItem() (*ast.ForItem, error) {
	loc := p.loc()
	if err := p.advance(); err != nil {
		return nil, err
	}
	binding, err := p.expectIdent()
	if err != nil {
		return nil, err
	}
	if err := p.expect(lexer.IN); err != nil {
		return nil, err
	}
	iter, err := p.parseExpr()
	if err != nil {
		return nil, err
	}
	if err := p.expect(lexer.LBRACE); err != nil {
		return nil, err
	}
	body, err := p.parseBodyItems(lexer.RBRACE)
	if err != nil {
		return nil, err
	}
	if err := p.expect(lexer.RBRACE); err != nil {
		return nil, err
	}
	return &ast.ForItem{Binding: binding, Iter: iter, Body: body, Loc: loc}, nil
}

func (p *Parser) parseAssertItem() (*ast.AssertItem, error) {
	loc := p.loc()
	if err := p.advance(); err != nil {
		return nil, err
	}
	cond, err := p.parseExpr()
	if err != nil {
		return nil, err
	}
	message := ""
	if p.cur.Type == lexer.COLON {
		if err := p.advance(); err != nil {
			return nil, err
		}
		if p.cur.Type != lexer.STRING {
			return nil, herrors.NewUnexpectedToken(p.loc(), p.cur.Literal, "string")
		}
		message = p.cur.Literal
		if err := p.advance(); err != nil {
			return nil, err
		}
	}
	return &ast.AssertItem{Cond: cond, Message: message, Loc: loc}, nil
}

func (p *Parser) parseLetItem() (*ast.LetItem, error) {
	loc := p.loc()
	if err := p.advance(); err != nil {
		return nil, err
	}
	name, err := p.expectIdent()
	if err != nil {
		return nil, err
	}
	if err := p.expect(lexer.EQ); err != nil {
		return nil, err
	}
	e, err := p.parseExpr()
	if err != nil {
		return nil, err
	}
	return &ast.LetItem{Name: name, Expr: e, Loc: loc}, nil
}

// ---------------------------------------------------------------------
// Expressions
// ---------------------------------------------------------------------

func (p *Parser) parseExpr() (ast.Expr, error) {
	return p.parseTernary()
}

func (p *Parser) parseTernary() (ast.Expr, error) {
	loc := p.loc()
	cond, err := p.parseBinary(1)
	if err != nil {
		return nil, err
	}
	if p.cur.Type != lexer.QUESTION {
		return cond, nil
	}
	if err := p.advance(); err != nil {
		return nil, err
	}
	thenE, err := p.parseExpr()
	if err != nil {
		return nil, err
	}
	if err := p.expect(lexer.COLON); err != nil {
		return nil, err
	}
	elseE, err := p.parseTernary()
	if err != nil {
		return nil, err
	}
	return &ast.TernaryExpr{Cond: cond, Then: thenE, Else: elseE, Loc: loc}, nil
}

// binOpInfo mirrors the original compiler's precedence table: Or=1,
// And=2, equality=3, relational=4, null-coalesce=5, additive=6,
// multiplicative=7 (higher binds tighter).
func binOpInfo(t lexer.TokenType) (prec int, op string, ok bool) {
	switch t {
	case lexer.OROR:
		return 1, "||", true
	case lexer.ANDAND:
		return 2, "&&", true
	case lexer.EQEQ:
		return 3, "==", true
	case lexer.NOTEQ:
		return 3, "!=", true
	case lexer.LT:
		return 4, "<", true
	case lexer.GT:
		return 4, ">", true
	case lexer.LTEQ:
		return 4, "<=", true
	case lexer.GTEQ:
		return 4, ">=", true
	case lexer.QQ:
		return 5, "??", true
	case lexer.PLUS:
		return 6, "+", true
	case lexer.MINUS:
		return 6, "-", true
	case lexer.STAR:
		return 7, "*", true
	case lexer.SLASH:
		return 7, "/", true
	case lexer.PERCENT:
		return 7, "%", true
	default:
		return 0, "", false
	}
}

func (p *Parser) parseBinary(minPrec int) (ast.Expr, error) {
	left, err := p.parseUnary()
	if err != nil {
		return nil, err
	}
	for {
		prec, op, ok := binOpInfo(p.cur.Type)
		if !ok || prec < minPrec {
			return left, nil
		}
		loc := p.loc()
		if err := p.advance(); err != nil {
			return nil, err
		}
		right, err := p.parseBinary(prec + 1)
		if err != nil {
			return nil, err
		}
		left = &ast.BinaryExpr{Op: op, Left: left, Right: right, Loc: loc}
	}
}

func (p *Parser) parseUnary() (ast.Expr, error) {
	switch p.cur.Type {
	case lexer.NOT:
		loc := p.loc()
		if err := p.advance(); err != nil {
			return nil, err
		}
		e, err := p.parseUnary()
		if err != nil {
			return nil, err
		}
		return &ast.UnaryExpr{Op: "!", Expr: e, Loc: loc}, nil
	case lexer.MINUS:
		loc := p.loc()
		if err := p.advance(); err != nil {
			return nil, err
		}
		e, err := p.parseUnary()
		if err != nil {
			return nil, err
		}
		return &ast.UnaryExpr{Op: "-", Expr: e, Loc: loc}, nil
	default:
		return p.parsePostfix()
	}
}

func (p *Parser) parsePostfix() (ast.Expr, error) {
	e, err := p.parsePrimary()
	if err != nil {
		return nil, err
	}
	for {
		switch p.cur.Type {
		case lexer.DOT:
			loc := p.loc()
			if err := p.advance(); err != nil {
				return nil, err
			}
			name, err := p.expectIdent()
			if err != nil {
				return nil, err
			}
			e = &ast.FieldAccess{Target: e, Field: name, Loc: loc}
		case lexer.LBRACKET:
			loc := p.loc()
			if err := p.advance(); err != nil {
				return nil, err
			}
			idx, err := p.parseExpr()
			if err != nil {
				return nil, err
			}
			if err := p.expect(lexer.RBRACKET); err != nil {
				return nil, err
			}
			e = &ast.IndexExpr{Target: e, Index: idx, Loc: loc}
		default:
			return e, nil
		}
	}
}

func (p *Parser) parsePrimary() (ast.Expr, error) {
	loc := p.loc()
	switch p.cur.Type {
	case lexer.NULL:
		return &ast.NullLit{Loc: loc}, p.advance()
	case lexer.TRUE:
		if err := p.advance(); err != nil {
			return nil, err
		}
		return &ast.BoolLit{Value: true, Loc: loc}, nil
	case lexer.FALSE:
		if err := p.advance(); err != nil {
			return nil, err
		}
		return &ast.BoolLit{Value: false, Loc: loc}, nil
	case lexer.INT:
		lit := p.cur.Literal
		n, err := strconv.ParseInt(lit, 10, 64)
		if err != nil {
			return nil, herrors.Wrap(&herrors.Report{Code: herrors.UnexpectedToken, Phase: "parser", Message: fmt.Sprintf("invalid integer literal %q", lit), Span: &loc})
		}
		return &ast.IntLit{Value: n, Loc: loc}, p.advance()
	case lexer.FLOAT:
		lit := p.cur.Literal
		f, err := strconv.ParseFloat(lit, 64)
		if err != nil {
			return nil, herrors.Wrap(&herrors.Report{Code: herrors.UnexpectedToken, Phase: "parser", Message: fmt.Sprintf("invalid float literal %q", lit), Span: &loc})
		}
		return &ast.FloatLit{Value: f, Loc: loc}, p.advance()
	case lexer.STRING:
		lit := &ast.StringLit{Parts: []ast.StringPart{{Literal: p.cur.Literal}}, Triple: p.cur.Triple, Loc: loc}
		return lit, p.advance()
	case lexer.STRING_START:
		return p.parseInterpolatedString()
	case lexer.IDENT:
		name := p.cur.Literal
		if err := p.advance(); err != nil {
			return nil, err
		}
		if p.cur.Type == lexer.LPAREN {
			if err := p.advance(); err != nil {
				return nil, err
			}
			args, err := p.parseArgs()
			if err != nil {
				return nil, err
			}
			if err := p.expect(lexer.RPAREN); err != nil {
				return nil, err
			}
			return &ast.CallExpr{Callee: name, Args: args, Loc: loc}, nil
		}
		return &ast.Ident{Name: name, Loc: loc}, nil
	case lexer.LPAREN:
		if err := p.advance(); err != nil {
			return nil, err
		}
		e, err := p.parseExpr()
		if err != nil {
			return nil, err
		}
		if err := p.expect(lexer.RPAREN); err != nil {
			return nil, err
		}
		return e, nil
	case lexer.LBRACKET:
		return p.parseArrayLit()
	case lexer.LBRACE:
		return p.parseObjectLit()
	default:
		return nil, herrors.NewUnexpectedToken(loc, p.cur.Literal, "expression")
	}
}

func (p *Parser) parseInterpolatedString() (ast.Expr, error) {
	loc := p.loc()
	triple := p.cur.Triple
	parts := []ast.StringPart{{Literal: p.cur.Literal}}
	if err := p.advance(); err != nil {
		return nil, err
	}
	for {
		e, err := p.parseExpr()
		if err != nil {
			return nil, err
		}
		if p.cur.Type != lexer.STRING_MID && p.cur.Type != lexer.STRING_END {
			return nil, herrors.NewUnexpectedToken(p.loc(), p.cur.Literal, "end of interpolation")
		}
		parts = append(parts, ast.StringPart{Interp: e})
		parts = append(parts, ast.StringPart{Literal: p.cur.Literal})
		isEnd := p.cur.Type == lexer.STRING_END
		if err := p.advance(); err != nil {
			return nil, err
		}
		if isEnd {
			break
		}
	}
	return &ast.StringLit{Parts: parts, Triple: triple, Loc: loc}, nil
}

func (p *Parser) parseArgs() ([]ast.Expr, error) {
	var args []ast.Expr
	for p.cur.Type != lexer.RPAREN {
		e, err := p.parseExpr()
		if err != nil {
			return nil, err
		}
		args = append(args, e)
		if p.cur.Type == lexer.COMMA {
			if err := p.advance(); err != nil {
				return nil, err
			}
			continue
		}
		break
	}
	return args, nil
}

func (p *Parser) parseArrayLit() (*ast.ArrayLit, error) {
	loc := p.loc()
	if err := p.advance(); err != nil {
		return nil, err
	}
	var elems []ast.ArrayElement
	for p.cur.Type != lexer.RBRACKET {
		elem, err := p.parseArrayElement()
		if err != nil {
			return nil, err
		}
		elems = append(elems, elem)
		if p.cur.Type == lexer.COMMA {
			if err := p.advance(); err != nil {
				return nil, err
			}
			continue
		}
		break
	}
	if err := p.expect(lexer.RBRACKET); err != nil {
		return nil, err
	}
	return &ast.ArrayLit{Elements: elems, Loc: loc}, nil
}

func (p *Parser) parseArrayElement() (ast.ArrayElement, error) {
	loc := p.loc()
	switch p.cur.Type {
	case lexer.FOR:
		if err := p.advance(); err != nil {
			return nil, err
		}
		binding, err := p.expectIdent()
		if err != nil {
			return nil, err
		}
		if err := p.expect(lexer.IN); err != nil {
			return nil, err
		}
		iter, err := p.parseExpr()
		if err != nil {
			return nil, err
		}
		if err := p.expect(lexer.LBRACE); err != nil {
			return nil, err
		}
		body, err := p.parseArrayElements(lexer.RBRACE)
		if err != nil {
			return nil, err
		}
		if err := p.expect(lexer.RBRACE); err != nil {
			return nil, err
		}
		return &ast.ForElement{Binding: binding, Iter: iter, Body: body, Loc: loc}, nil
	case lexer.ELLIPSIS:
		if err := p.advance(); err != nil {
			return nil, err
		}
		e, err := p.parseExpr()
		if err != nil {
			return nil, err
		}
		return &ast.SpreadElement{Expr: e, Loc: loc}, nil
	default:
		e, err := p.parseExpr()
		if err != nil {
			return nil, err
		}
		return &ast.PlainElement{Expr: e, Loc: loc}, nil
	}
}

func (p *Parser) parseArrayElements(end lexer.TokenType) ([]ast.ArrayElement, error) {
	var elems []ast.ArrayElement
	for p.cur.Type != end && p.cur.Type != lexer.EOF {
		elem, err := p.parseArrayElement()
		if err != nil {
			return nil, err
		}
		elems = append(elems, elem)
		if p.cur.Type == lexer.COMMA {
			if err := p.advance(); err != nil {
				return nil, err
			}
		}
	}
	return elems, nil
}

func (p *Parser) parseObjectLit() (*ast.ObjectLit, error) {
	loc := p.loc()
	if err := p.advance(); err != nil {
		return nil, err
	}
	body, err := p.parseBodyItems(lexer.RBRACE)
	if err != nil {
		return nil, err
	}
	if err := p.expect(lexer.RBRACE); err != nil {
		return nil, err
	}
	return &ast.ObjectLit{Body: body, Loc: loc}, nil
}

// ---------------------------------------------------------------------
// Type expressions
// ---------------------------------------------------------------------

func (p *Parser) parseTypeExpr() (types.Type, error) {
	first, err := p.parseTypeUnionTerm()
	if err != nil {
		return types.Type{}, err
	}
	if p.cur.Type != lexer.PIPE {
		return first, nil
	}
	options := []types.Type{first}
	for p.cur.Type == lexer.PIPE {
		if err := p.advance(); err != nil {
			return types.Type{}, err
		}
		next, err := p.parseTypeUnionTerm()
		if err != nil {
			return types.Type{}, err
		}
		options = append(options, next)
	}
	return types.Union(options), nil
}

func (p *Parser) parseTypeUnionTerm() (types.Type, error) {
	t, err := p.parseTypeAtom()
	if err != nil {
		return types.Type{}, err
	}
	if p.cur.Type == lexer.QUESTION {
		if err := p.advance(); err != nil {
			return types.Type{}, err
		}
		return types.Optional(t), nil
	}
	return t, nil
}

func (p *Parser) parseTypeAtom() (types.Type, error) {
	loc := p.loc()
	if p.cur.Type == lexer.STRING {
		lit := p.cur.Literal
		return types.StringLiteral(lit), p.advance()
	}
	if p.cur.Type != lexer.IDENT {
		return types.Type{}, herrors.NewUnexpectedToken(loc, p.cur.Literal, "type")
	}
	name := p.cur.Literal
	if err := p.advance(); err != nil {
		return types.Type{}, err
	}

	switch name {
	case "any":
		return types.Any(), nil
	case "null":
		return types.Null(), nil
	case "bool":
		return types.Bool(), nil
	case "number":
		return types.Number(), nil
	case "int":
		if p.cur.Type != lexer.LPAREN {
			return types.Int(), nil
		}
		min, max, err := p.parseIntBounds()
		if err != nil {
			return types.Type{}, err
		}
		return types.IntConstrained(min, max), nil
	case "float":
		if p.cur.Type != lexer.LPAREN {
			return types.Float(), nil
		}
		min, max, err := p.parseFloatBounds()
		if err != nil {
			return types.Type{}, err
		}
		return types.FloatConstrained(min, max), nil
	case "string":
		if p.cur.Type != lexer.LPAREN {
			return types.String(), nil
		}
		minLen, maxLen, pattern, err := p.parseStringBounds()
		if err != nil {
			return types.Type{}, err
		}
		return types.StringConstrained(minLen, maxLen, pattern), nil
	case "array":
		if err := p.expect(lexer.LT); err != nil {
			return types.Type{}, err
		}
		elem, err := p.parseTypeExpr()
		if err != nil {
			return types.Type{}, err
		}
		if err := p.expect(lexer.GT); err != nil {
			return types.Type{}, err
		}
		return types.Array(elem), nil
	case "map":
		if err := p.expect(lexer.LT); err != nil {
			return types.Type{}, err
		}
		elem, err := p.parseTypeExpr()
		if err != nil {
			return types.Type{}, err
		}
		if err := p.expect(lexer.GT); err != nil {
			return types.Type{}, err
		}
		return types.Map(elem), nil
	case "object":
		if p.cur.Type != lexer.LT {
			return types.Object(nil), nil
		}
		if err := p.advance(); err != nil {
			return types.Type{}, err
		}
		elem, err := p.parseTypeExpr()
		if err != nil {
			return types.Type{}, err
		}
		if err := p.expect(lexer.GT); err != nil {
			return types.Type{}, err
		}
		return types.Object(&elem), nil
	default:
		return types.Schema(name), nil
	}
}

func (p *Parser) parseIntBounds() (min, max *int64, err error) {
	if err = p.advance(); err != nil { // consume '('
		return nil, nil, err
	}
	if p.cur.Type != lexer.COMMA {
		min, err = p.parseOptIntLit()
		if err != nil {
			return nil, nil, err
		}
	}
	if err = p.expect(lexer.COMMA); err != nil {
		return nil, nil, err
	}
	if p.cur.Type != lexer.RPAREN {
		max, err = p.parseOptIntLit()
		if err != nil {
			return nil, nil, err
		}
	}
	return min, max, p.expect(lexer.RPAREN)
}

func (p *Parser) parseOptIntLit() (*int64, error) {
	neg := false
	if p.cur.Type == lexer.MINUS {
		neg = true
		if err := p.advance(); err != nil {
			return nil, err
		}
	}
	if p.cur.Type != lexer.INT {
		return nil, herrors.NewUnexpectedToken(p.loc(), p.cur.Literal, "integer")
	}
	n, err := strconv.ParseInt(p.cur.Literal, 10, 64)
	if err != nil {
		return nil, herrors.NewUnexpectedToken(p.loc(), p.cur.Literal, "integer")
	}
	if neg {
		n = -n
	}
	return &n, p.advance()
}

func (p *Parser) parseFloatBounds() (min, max *float64, err error) {
	if err = p.advance(); err != nil {
		return nil, nil, err
	}
	if p.cur.Type != lexer.COMMA {
		min, err = p.parseOptFloatLit()
		if err != nil {
			return nil, nil, err
		}
	}
	if err = p.expect(lexer.COMMA); err != nil {
		return nil, nil, err
	}
	if p.cur.Type != lexer.RPAREN {
		max, err = p.parseOptFloatLit()
		if err != nil {
			return nil, nil, err
		}
	}
	return min, max, p.expect(lexer.RPAREN)
}

func (p *Parser) parseOptFloatLit() (*float64, error) {
	neg := false
	if p.cur.Type == lexer.MINUS {
		neg = true
		if err := p.advance(); err != nil {
			return nil, err
		}
	}
	var f float64
	var err error
	switch p.cur.Type {
	case lexer.FLOAT, lexer.INT:
		f, err = strconv.ParseFloat(p.cur.Literal, 64)
	default:
		return nil, herrors.NewUnexpectedToken(p.loc(), p.cur.Literal, "number")
	}
	if err != nil {
		return nil, herrors.NewUnexpectedToken(p.loc(), p.cur.Literal, "number")
	}
	if neg {
		f = -f
	}
	return &f, p.advance()
}

func (p *Parser) parseStringBounds() (minLen, maxLen *int, pattern string, err error) {
	if err = p.advance(); err != nil {
		return nil, nil, "", err
	}
	if p.cur.Type != lexer.COMMA && p.cur.Type != lexer.RPAREN {
		minLen, err = p.parseOptIntBoundAsInt()
		if err != nil {
			return nil, nil, "", err
		}
	}
	if p.cur.Type == lexer.RPAREN {
		return minLen, nil, "", p.advance()
	}
	if err = p.expect(lexer.COMMA); err != nil {
		return nil, nil, "", err
	}
	if p.cur.Type != lexer.COMMA && p.cur.Type != lexer.RPAREN {
		maxLen, err = p.parseOptIntBoundAsInt()
		if err != nil {
			return nil, nil, "", err
		}
	}
	if p.cur.Type == lexer.RPAREN {
		return minLen, maxLen, "", p.advance()
	}
	if err = p.expect(lexer.COMMA); err != nil {
		return nil, nil, "", err
	}
	if p.cur.Type == lexer.STRING {
		pattern = p.cur.Literal
		if err = p.advance(); err != nil {
			return nil, nil, "", err
		}
	}
	return minLen, maxLen, pattern, p.expect(lexer.RPAREN)
}

func (p *Parser) parseOptIntBoundAsInt() (*int, error) {
	if p.cur.Type != lexer.INT {
		return nil, herrors.NewUnexpectedToken(p.loc(), p.cur.Literal, "integer")
	}
	n, err := strconv.Atoi(p.cur.Literal)
	if err != nil {
		return nil, herrors.NewUnexpectedToken(p.loc(), p.cur.Literal, "integer")
	}
	return &n, p.advance()
}
