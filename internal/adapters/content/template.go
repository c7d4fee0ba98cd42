package content

import (
	"context"
	"fmt"
	"strings"

	"github.com/alejandrodnm/miyomi/internal/domain"
)

// Template genera posts deterministas a partir del pick. No necesita red;
// es el generador por defecto y el fallback del LLM.
type Template struct{}

// NewTemplate crea el generador.
func NewTemplate() *Template {
	return &Template{}
}

// Generate implementa ports.ContentGenerator.
func (t *Template) Generate(_ context.Context, pick domain.Pick) (string, error) {
	if pick.Position() == domain.PositionSkip || pick.Position() == "" {
		return "", fmt.Errorf("content.Template: %w: pick has no position", domain.ErrValidation)
	}

	var sb strings.Builder
	fmt.Fprintf(&sb, "Miyomi's call: %s.", callLine(pick))
	if len(pick.Thesis) > 0 {
		fmt.Fprintf(&sb, " %s.", strings.TrimSuffix(pick.Thesis[0], "."))
	}
	fmt.Fprintf(&sb, " Target %d¢, stop %d¢.", pick.TargetPrice, pick.StopLoss)
	if len(pick.Thesis) > 1 {
		fmt.Fprintf(&sb, " %s.", strings.TrimSuffix(pick.Thesis[1], "."))
	}
	sb.WriteString(" Not financial advice.")

	return Trim(sb.String(), MaxPostBytes), nil
}
