// Package content convierte un pick en el texto de un post corto con la voz
// de Miyomi. Hay dos generadores: uno determinista basado en plantilla y
// otro que usa un LLM compatible con la API de OpenAI.
package content

import (
	"fmt"
	"strings"
	"unicode/utf8"

	"github.com/alejandrodnm/miyomi/internal/domain"
)

// MaxPostBytes es el límite de un cast de Farcaster.
const MaxPostBytes = 320

// Trim recorta text a max bytes sin partir un rune. Si recorta, intenta
// cortar en el último espacio y agrega "…".
func Trim(text string, max int) string {
	text = strings.TrimSpace(text)
	if len(text) <= max {
		return text
	}
	const ellipsis = "…"
	limit := max - len(ellipsis)
	if limit <= 0 {
		return cutRunes(text, max)
	}
	cut := cutRunes(text, limit)
	if i := strings.LastIndexByte(cut, ' '); i > limit/2 {
		cut = cut[:i]
	}
	return strings.TrimRight(cut, " ,.;:") + ellipsis
}

// cutRunes devuelve el prefijo más largo de s con a lo sumo n bytes que
// termina en un límite de rune.
func cutRunes(s string, n int) string {
	if len(s) <= n {
		return s
	}
	for n > 0 && !utf8.RuneStart(s[n]) {
		n--
	}
	return s[:n]
}

// callLine resume la postura en una línea: "NO on "Will BTC hit 100k?" at 9¢".
func callLine(p domain.Pick) string {
	m := p.Opportunity.Market
	return fmt.Sprintf("%s on %q at %d¢", p.Position(), domain.TruncateTitle(m.Title, m.ID, 90), p.Opportunity.SidePrice())
}
