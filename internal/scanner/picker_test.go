package scanner_test

import (
	"testing"
	"time"

	"github.com/alejandrodnm/miyomi/internal/domain"
	"github.com/alejandrodnm/miyomi/internal/scanner"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var pickNow = time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)

func opp(id string, score float64, pos domain.Position, p float64) domain.Opportunity {
	return domain.Opportunity{
		Market: domain.MarketRecord{
			Source:   domain.SourcePolymarket,
			ID:       id,
			Title:    "Market " + id,
			YesPrice: int(p * 100),
			NoPrice:  100 - int(p*100),
			ClosesAt: pickNow.Add(30 * 24 * time.Hour),
		},
		Score:               score,
		Reasoning:           []string{"rule " + id},
		RecommendedPosition: pos,
		Signals:             domain.Signals{Probability: p},
	}
}

func TestPick_EmptyAndAllSkip(t *testing.T) {
	assert.Nil(t, scanner.Pick(nil, pickNow, time.Hour))
	assert.Nil(t, scanner.Pick([]domain.Opportunity{}, pickNow, time.Hour))

	allSkip := []domain.Opportunity{
		opp("a", 90, domain.PositionSkip, 0.5),
		opp("b", 80, domain.PositionSkip, 0.5),
	}
	assert.Nil(t, scanner.Pick(allSkip, pickNow, time.Hour))
}

func TestPick_HighestScore(t *testing.T) {
	opps := []domain.Opportunity{
		opp("a", 10, domain.PositionYes, 0.4),
		opp("b", 95, domain.PositionNo, 0.6),
		opp("c", 40, domain.PositionYes, 0.3),
	}

	p := scanner.Pick(opps, pickNow, time.Hour)

	require.NotNil(t, p)
	assert.Equal(t, "b", p.Opportunity.Market.ID)
	assert.Equal(t, 95.0, p.Opportunity.Score)
	assert.NotEmpty(t, p.ID)
	assert.Equal(t, pickNow, p.Timestamp)
	assert.Equal(t, []string{"rule b"}, p.Thesis)
}

func TestPick_IgnoresSkipEvenIfHigher(t *testing.T) {
	opps := []domain.Opportunity{
		opp("skip", 99, domain.PositionSkip, 0.5),
		opp("real", 20, domain.PositionYes, 0.3),
	}
	p := scanner.Pick(opps, pickNow, time.Hour)
	require.NotNil(t, p)
	assert.Equal(t, "real", p.Opportunity.Market.ID)
}

func TestPick_PricesAndConfidence(t *testing.T) {
	cases := []struct {
		name       string
		pos        domain.Position
		p          float64
		score      float64
		target     int
		stop       int
		confidence float64
	}{
		{"fade YES at 90", domain.PositionNo, 0.90, 62, 30, 5, 0.62},
		{"fade NO at 20", domain.PositionYes, 0.20, 45, 40, 10, 0.45},
		{"target clamped high", domain.PositionYes, 0.85, 30, 95, 75, 0.30},
		{"confidence capped", domain.PositionNo, 0.60, 150, 60, 30, 0.9},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			p := scanner.Pick([]domain.Opportunity{opp("x", tc.score, tc.pos, tc.p)}, pickNow, time.Hour)
			require.NotNil(t, p)
			assert.Equal(t, tc.target, p.TargetPrice)
			assert.Equal(t, tc.stop, p.StopLoss)
			assert.InDelta(t, tc.confidence, p.Confidence, 1e-9)
		})
	}
}

func TestPick_ExpiresAtMarketCloseIfSooner(t *testing.T) {
	o := opp("x", 50, domain.PositionNo, 0.9)
	o.Market.ClosesAt = pickNow.Add(2 * time.Hour)

	p := scanner.Pick([]domain.Opportunity{o}, pickNow, 24*time.Hour)
	require.NotNil(t, p)
	assert.Equal(t, o.Market.ClosesAt, p.ExpiresAt)

	p = scanner.Pick([]domain.Opportunity{opp("y", 50, domain.PositionNo, 0.9)}, pickNow, 24*time.Hour)
	require.NotNil(t, p)
	assert.Equal(t, pickNow.Add(24*time.Hour), p.ExpiresAt)
}

func TestRank_TiesByKey(t *testing.T) {
	in := []domain.Opportunity{
		opp("b", 50, domain.PositionYes, 0.4),
		opp("a", 50, domain.PositionYes, 0.4),
		opp("c", 70, domain.PositionYes, 0.4),
	}
	out := scanner.Rank(in)

	assert.Equal(t, "c", out[0].Market.ID)
	assert.Equal(t, "a", out[1].Market.ID)
	assert.Equal(t, "b", out[2].Market.ID)
	assert.Equal(t, "b", in[0].Market.ID, "Rank no muta la entrada")
}
