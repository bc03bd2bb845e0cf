// Package span defines the source-location type shared by the lexer,
// parser, evaluator, type checker, and error reporter. It has no
// dependencies so every other package can depend on it without risk of
// import cycles.
package span

import "fmt"

// Location pins a node to a byte range in a source file, per the
// SourceLocation contract: file is optional (unset for synthetic nodes),
// line/column are 1-based, and ByteOffset/ByteLength delimit the span in
// the original UTF-8 source.
type Location struct {
	File       string
	Line       int
	Column     int
	ByteOffset int
	ByteLength int
}

func (l Location) String() string {
	file := l.File
	if file == "" {
		file = "<input>"
	}
	return fmt.Sprintf("%s:%d:%d", file, l.Line, l.Column)
}

// Zero reports whether l is the unset location.
func (l Location) Zero() bool {
	return l == Location{}
}
