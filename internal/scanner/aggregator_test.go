package scanner_test

import (
	"fmt"
	"testing"

	"github.com/alejandrodnm/miyomi/internal/domain"
	"github.com/alejandrodnm/miyomi/internal/scanner"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func rec(src domain.Source, id, title string, vol24h, volTotal float64) domain.MarketRecord {
	return domain.MarketRecord{
		Source:      src,
		ID:          id,
		Title:       title,
		YesPrice:    50,
		NoPrice:     50,
		Volume24h:   vol24h,
		VolumeTotal: volTotal,
	}
}

func TestAggregate_DedupNormalizedTitle(t *testing.T) {
	lists := [][]domain.MarketRecord{
		{rec(domain.SourcePolymarket, "pm-1", "Will BTC hit 100k?", 100, 0)},
		{rec(domain.SourceKalshi, "kx-1", "will btc hit 100k??", 100_000, 0)},
	}

	out := scanner.Aggregate(lists, nil, 0)

	require.Len(t, out, 1)
	assert.Equal(t, "pm-1", out[0].ID, "el primero en orden de prioridad gana")
}

func TestAggregate_PriorityWinsRegardlessOfListOrder(t *testing.T) {
	// Kalshi llegó antes, pero Polymarket tiene mejor rango
	lists := [][]domain.MarketRecord{
		{rec(domain.SourceKalshi, "kx-1", "Fed cuts in March", 0, 0)},
		{rec(domain.SourcePolymarket, "pm-1", "Fed cuts in March!", 0, 0)},
	}

	out := scanner.Aggregate(lists, scanner.DefaultPriority(), 0)

	require.Len(t, out, 1)
	assert.Equal(t, domain.SourcePolymarket, out[0].Source)
}

func TestAggregate_SortsByImportance(t *testing.T) {
	lists := [][]domain.MarketRecord{
		{
			rec(domain.SourcePolymarket, "small", "Small market", 10, 0),
			rec(domain.SourcePolymarket, "big", "Big market", 1_000, 5_000),
		},
		{rec(domain.SourceKalshi, "mid", "Mid market", 500, 0)},
	}

	out := scanner.Aggregate(lists, nil, 0)

	require.Len(t, out, 3)
	// big: 2000+5000+1000, mid: 1000+0+500, small: 20+0+1000
	assert.Equal(t, []string{"big", "mid", "small"}, ids(out))
}

func TestAggregate_TieBreakIsDeterministic(t *testing.T) {
	lists := [][]domain.MarketRecord{
		{rec(domain.SourceKalshi, "b", "Market B", 0, 0)},
		{rec(domain.SourceKalshi, "a", "Market A", 0, 0)},
	}

	first := scanner.Aggregate(lists, nil, 0)
	second := scanner.Aggregate([][]domain.MarketRecord{lists[1], lists[0]}, nil, 0)

	assert.Equal(t, []string{"a", "b"}, ids(first))
	assert.Equal(t, ids(first), ids(second))
}

func TestAggregate_Limit(t *testing.T) {
	var list []domain.MarketRecord
	for i := 0; i < 10; i++ {
		list = append(list, rec(domain.SourcePolymarket, fmt.Sprint(i), fmt.Sprintf("Market %d", i), float64(i), 0))
	}

	assert.Len(t, scanner.Aggregate([][]domain.MarketRecord{list}, nil, 3), 3)
	assert.Len(t, scanner.Aggregate([][]domain.MarketRecord{list}, nil, 0), 10)
	assert.Empty(t, scanner.Aggregate(nil, nil, 5))
}

func TestAggregate_NoDuplicateTitles(t *testing.T) {
	titles := []string{"Will X win?", "will x win", "WILL X WIN!!", "Will Y win?", "will  y   win", "???", "!!!"}
	var pm, kx []domain.MarketRecord
	for i, title := range titles {
		pm = append(pm, rec(domain.SourcePolymarket, fmt.Sprintf("pm-%d", i), title, float64(i), 0))
		kx = append(kx, rec(domain.SourceKalshi, fmt.Sprintf("kx-%d", i), title, float64(i*10), 0))
	}

	out := scanner.Aggregate([][]domain.MarketRecord{kx, pm}, nil, 0)

	seen := map[string]bool{}
	for _, m := range out {
		key := domain.NormalizeTitle(m.Title)
		if key == "" {
			continue // títulos sin texto comparable no se deduplican entre sí
		}
		assert.False(t, seen[key], "duplicate title %q", key)
		seen[key] = true
	}
	assert.Len(t, seen, 2)
}

func ids(ms []domain.MarketRecord) []string {
	out := make([]string, len(ms))
	for i, m := range ms {
		out[i] = m.ID
	}
	return out
}
