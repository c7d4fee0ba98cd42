package notify

import (
	"context"
	"fmt"
	"io"
	"os"
	"strings"
	"time"

	"github.com/alejandrodnm/miyomi/internal/domain"
	"github.com/olekukonko/tablewriter"
)

const (
	compactShown = 3
	tableTitle   = 48
	detailShown  = 3
)

// Console implementa ports.Notifier.
type Console struct {
	out         io.Writer
	table       bool
	detail      bool
	ineffWeight float64
	cultWeight  float64
}

// NewConsole crea un notificador que escribe a stdout.
func NewConsole(table, detail bool) *Console {
	return NewConsoleWriter(os.Stdout, table, detail)
}

// NewConsoleWriter crea un notificador para tests.
func NewConsoleWriter(w io.Writer, table, detail bool) *Console {
	def := domain.DefaultWeights()
	return &Console{
		out:         w,
		table:       table,
		detail:      detail,
		ineffWeight: def.InefficiencyWeight,
		cultWeight:  def.CulturalWeight,
	}
}

// SetScoreWeights ajusta la leyenda del score a los pesos en uso.
func (c *Console) SetScoreWeights(w domain.ScoringWeights) {
	c.ineffWeight = w.InefficiencyWeight
	c.cultWeight = w.CulturalWeight
}

// Notify imprime el output en el modo configurado. Las oportunidades llegan
// ya ordenadas por score.
func (c *Console) Notify(_ context.Context, opportunities []domain.Opportunity, pick *domain.Pick) error {
	if len(opportunities) == 0 {
		fmt.Fprintf(c.out, "[%s] no opportunities found\n", time.Now().Format("15:04:05"))
		return nil
	}

	if c.table {
		c.printFull(opportunities)
	} else {
		c.printCompact(opportunities)
	}

	if c.detail {
		c.printDetail(opportunities)
	}

	c.printPick(pick)
	return nil
}

// printCompact imprime lo esencial en una línea.
func (c *Console) printCompact(opps []domain.Opportunity) {
	now := time.Now().Format("15:04:05")
	yes, no := countByPosition(opps)

	var sb strings.Builder
	fmt.Fprintf(&sb, "[%s] %d opps → YES:%d NO:%d", now, len(opps), yes, no)

	for i, opp := range opps {
		if i >= compactShown {
			break
		}
		fmt.Fprintf(&sb, " | %s %s %.0f", opp.RecommendedPosition,
			domain.TruncateTitle(opp.Market.Title, opp.Market.ID, 25), opp.Score)
	}

	fmt.Fprintln(c.out, sb.String())
}

// printFull imprime el encabezado y la tabla de oportunidades.
func (c *Console) printFull(opps []domain.Opportunity) {
	now := time.Now().Format("15:04:05")
	yes, no := countByPosition(opps)

	fmt.Fprintf(c.out, "\n[%s] %d opportunities: YES:%d NO:%d\n", now, len(opps), yes, no)
	c.printTable(opps)
}

func (c *Console) printTable(opps []domain.Opportunity) {
	table := tablewriter.NewWriter(c.out)
	table.Header("#", "Src", "Market", "YES", "Δ24h", "Closes", "Cult", "Score", "Pos")

	for i, opp := range opps {
		m := opp.Market
		table.Append(
			fmt.Sprintf("%d", i+1),
			sourceLabel(m.Source),
			domain.TruncateTitle(m.Title, m.ID, tableTitle),
			fmt.Sprintf("%d¢", m.YesPrice),
			deltaLabel(opp),
			hoursLabel(opp.TimeToClose),
			fmt.Sprintf("%.0f", opp.Signals.CulturalRelevance),
			fmt.Sprintf("%.1f", opp.Score),
			string(opp.RecommendedPosition),
		)
	}

	table.Render()
	fmt.Fprintf(c.out, "  Cult = relevancia cultural (0-100) | Score = %g×ineficiencia + %g×cultural\n",
		c.ineffWeight, c.cultWeight)
}

// printDetail imprime el razonamiento completo de las mejores.
func (c *Console) printDetail(opps []domain.Opportunity) {
	top := opps
	if len(top) > detailShown {
		top = opps[:detailShown]
	}

	fmt.Fprintln(c.out, "=== REASONING ===")
	for i, opp := range top {
		s := opp.Signals
		fmt.Fprintf(c.out, "\n--- #%d: %s [%s] ---\n", i+1, opp.Market.Title, opp.RecommendedPosition)
		fmt.Fprintf(c.out, "  p=%.2f  ext=%.2f  vol×%.1f  ineff=%.1f  cult=%.0f\n",
			s.Probability, s.Extremity, s.VolumeRatio, s.Inefficiency, s.CulturalRelevance)
		for _, r := range opp.Reasoning {
			fmt.Fprintf(c.out, "  • %s\n", r)
		}
	}
	fmt.Fprintln(c.out)
}

func (c *Console) printPick(pick *domain.Pick) {
	if pick == nil {
		fmt.Fprintln(c.out, "  no pick this cycle")
		return
	}
	m := pick.Opportunity.Market
	fmt.Fprintf(c.out, "\n=== PICK %s ===\n", pick.ID)
	fmt.Fprintf(c.out, "  %s  %s (%s)\n", pick.Position(), m.Title, m.Source)
	fmt.Fprintf(c.out, "  entry %d¢  target %d¢  stop %d¢  confidence %.0f%%\n",
		pick.Opportunity.SidePrice(), pick.TargetPrice, pick.StopLoss, pick.Confidence*100)
	fmt.Fprintf(c.out, "  expires %s\n", pick.ExpiresAt.UTC().Format(time.RFC3339))
	for _, line := range pick.Thesis {
		fmt.Fprintf(c.out, "  • %s\n", line)
	}
	fmt.Fprintln(c.out)
}

// --- helpers ---

func countByPosition(opps []domain.Opportunity) (yes, no int) {
	for _, o := range opps {
		switch o.RecommendedPosition {
		case domain.PositionYes:
			yes++
		case domain.PositionNo:
			no++
		}
	}
	return
}

func sourceLabel(s domain.Source) string {
	switch s {
	case domain.SourcePolymarket:
		return "PM"
	case domain.SourceKalshi:
		return "KX"
	}
	return string(s)
}

func deltaLabel(opp domain.Opportunity) string {
	if !opp.Market.HasPriceChange {
		return "-"
	}
	return fmt.Sprintf("%+.0f", opp.Delta24h)
}

func hoursLabel(h float64) string {
	switch {
	case h <= 0:
		return "closed"
	case h < 48:
		return fmt.Sprintf("%.0fh", h)
	default:
		return fmt.Sprintf("%.0fd", h/24)
	}
}
