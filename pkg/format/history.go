package format

import (
	"bytes"
	"fmt"
	"time"

	"github.com/aybabtme/uniplot/histogram"
	"github.com/olekukonko/tablewriter"
	"github.com/samber/lo"
	"gonum.org/v1/gonum/stat"
)

const (
	historyDateLayout = "2006-01-02 15:04:05"
	histogramBins     = 9
	histogramWidth    = 24
)

// HistorySummary renders a plain-text report for a price history window:
// a stats table followed by an ASCII distribution of the sampled prices.
// The output is meant for a monospace block; image charts are out of scope.
func HistorySummary(name string, points [][2]float64, from, to time.Time) string {
	buffer := bytes.NewBuffer(nil)
	fmt.Fprintf(buffer, "%s price history from %s to %s\n\n",
		name, from.Format(historyDateLayout), to.Format(historyDateLayout))

	prices := lo.Map(points, func(point [2]float64, _ int) float64 {
		return point[1]
	})

	if len(prices) == 0 {
		buffer.WriteString("No samples in this range.\n")
		return buffer.String()
	}

	first, last := prices[0], prices[len(prices)-1]
	low, high := prices[0], prices[0]
	for _, price := range prices {
		if price < low {
			low = price
		}
		if price > high {
			high = price
		}
	}

	change := placeholder
	if first != 0 {
		change = PercentString((last - first) / first * 100)
	}

	stdDev := 0.0
	if len(prices) > 1 {
		stdDev = stat.StdDev(prices, nil)
	}

	table := tablewriter.NewWriter(buffer)
	table.SetHeader([]string{"Samples", "First", "Last", "Change", "Low", "High", "Mean", "Std Dev"})
	table.Append([]string{
		fmt.Sprintf("%d", len(prices)),
		PriceString(first, "USD"),
		PriceString(last, "USD"),
		change,
		PriceString(low, "USD"),
		PriceString(high, "USD"),
		PriceString(stat.Mean(prices, nil), "USD"),
		PriceString(stdDev, "USD"),
	})
	table.Render()

	if len(prices) >= histogramBins {
		buffer.WriteString("\nPrice distribution:\n")
		hist := histogram.Hist(histogramBins, prices)
		if err := histogram.Fprint(buffer, hist, histogram.Linear(histogramWidth)); err != nil {
			fmt.Fprintf(buffer, "distribution unavailable: %v\n", err)
		}
	}

	return buffer.String()
}
