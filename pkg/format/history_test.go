package format

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestHistorySummary(t *testing.T) {
	from := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
	to := time.Date(2024, 1, 10, 0, 0, 0, 0, time.UTC)

	points := [][2]float64{
		{1704067200000, 100},
		{1704153600000, 110},
		{1704240000000, 90},
		{1704326400000, 120},
		{1704412800000, 130},
		{1704499200000, 125},
		{1704585600000, 140},
		{1704672000000, 135},
		{1704758400000, 150},
	}

	summary := HistorySummary("Bitcoin", points, from, to)

	assert.Contains(t, summary, "Bitcoin price history from 2024-01-01 00:00:00 to 2024-01-10 00:00:00")
	assert.Contains(t, summary, "$100.00")
	assert.Contains(t, summary, "$150.00")
	assert.Contains(t, summary, "50%")
	assert.Contains(t, summary, "$90.00")
	// nine samples is enough for the distribution section
	assert.Contains(t, summary, "Price distribution:")
}

func TestHistorySummaryNoSamples(t *testing.T) {
	now := time.Now()
	summary := HistorySummary("Bitcoin", nil, now.Add(-time.Hour), now)
	assert.Contains(t, summary, "No samples in this range.")
}

func TestHistorySummarySingleSample(t *testing.T) {
	now := time.Now()
	summary := HistorySummary("Bitcoin", [][2]float64{{0, 42}}, now.Add(-time.Hour), now)
	assert.Contains(t, summary, "$42.00")
	assert.NotContains(t, summary, "NaN")
	assert.NotContains(t, summary, "Price distribution:")
}
