package domain

import (
	"strings"
	"unicode"
)

// NormalizeTitle devuelve la clave de deduplicación de un título:
// minúsculas, sin puntuación ni símbolos, espacios colapsados.
//
//	"Will BTC hit 100k?"  → "will btc hit 100k"
//	"will btc hit 100k??" → "will btc hit 100k"
func NormalizeTitle(title string) string {
	var sb strings.Builder
	sb.Grow(len(title))
	pendingSpace := false
	for _, r := range title {
		switch {
		case unicode.IsLetter(r) || unicode.IsDigit(r):
			if pendingSpace && sb.Len() > 0 {
				sb.WriteByte(' ')
			}
			pendingSpace = false
			sb.WriteRune(unicode.ToLower(r))
		case unicode.IsSpace(r):
			pendingSpace = true
		default:
			// puntuación: se elimina sin separar palabras ("100k's" → "100ks")
		}
	}
	return sb.String()
}
