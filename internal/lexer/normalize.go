package lexer

import (
	"bytes"

	"golang.org/x/text/unicode/norm"
)

var bomUTF8 = []byte{0xEF, 0xBB, 0xBF}

// Normalize performs input normalization at the lexer boundary: strip a
// UTF-8 BOM if present, then apply Unicode NFC normalization, so lexically
// equivalent source produces identical token streams regardless of
// encoding variations (and so StringConstrained length counting is stable
// across normalization forms).
func Normalize(src []byte) []byte {
	src = bytes.TrimPrefix(src, bomUTF8)
	if !norm.NFC.IsNormal(src) {
		src = norm.NFC.Bytes(src)
	}
	return src
}
