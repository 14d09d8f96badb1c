// Package format turns CoinGecko payloads into display documents. Everything
// here is a pure function of its input.
package format

import (
	"fmt"
	"html"
	"math"
	"strconv"
	"strings"

	"github.com/microcosm-cc/bluemonday"
	"github.com/raykavin/geckobot/pkg/coingecko"
	"github.com/raykavin/geckobot/pkg/core"
)

const (
	coinURLBase      = "https://www.coingecko.com/en/coins/"
	noDescription    = "No description provided."
	placeholder      = "---"
	missingThumbnail = "missing_small.png"
)

var stripPolicy = bluemonday.StrictPolicy()

// PriceString renders a monetary value with the minimal necessary number of
// decimals, keeping at least two. Very small values that a fixed rendering
// would collapse to zero fall back to their native representation.
// USD is prefixed with "$", any other currency is a suffix.
func PriceString(price float64, target string) string {
	s := strconv.FormatFloat(price, 'g', -1, 64)
	if strings.ContainsAny(s, "eE") {
		fixed := strings.TrimRight(strconv.FormatFloat(price, 'f', 18, 64), "0")
		if fixed != "0." && fixed != "-0." {
			s = fixed
		}
	}
	s = padDecimals(s)

	if target == "" || target == "USD" {
		return "$" + s
	}
	return s + " " + target
}

// padDecimals guarantees at least two digits after the decimal point for
// plain decimal strings. Exponent forms are left alone.
func padDecimals(s string) string {
	if strings.ContainsAny(s, "eE") {
		return s
	}

	dot := strings.IndexByte(s, '.')
	if dot < 0 {
		return s + ".00"
	}
	if decimals := len(s) - dot - 1; decimals < 2 {
		return s + strings.Repeat("0", 2-decimals)
	}
	return s
}

// CoinInfo builds the information document for a coin detail.
func CoinInfo(detail *coingecko.CoinDetail) core.Document {
	if detail == nil {
		return core.Document{
			Title:       "Error",
			Description: "Could not query info for coin",
		}
	}

	doc := core.Document{
		Title:       title(detail),
		Description: Description(detail.Description["en"]),
		URL:         coinURLBase + strings.ToLower(detail.ID),
		Thumbnail:   thumbnail(detail),
	}

	if len(detail.Links.Homepage) > 0 {
		doc.Website = detail.Links.Homepage[0]
	}

	return doc
}

// PriceInfo builds the price document: current price, 24h high/low and the
// percentage-change ladder.
func PriceInfo(detail *coingecko.CoinDetail) core.Document {
	if detail == nil {
		return core.Document{
			Title:       "Error",
			Description: "Could not get price info for coin",
		}
	}

	doc := core.Document{
		Title:     title(detail),
		URL:       coinURLBase + strings.ToLower(detail.ID),
		Thumbnail: thumbnail(detail),
	}

	md := detail.MarketData
	if md == nil {
		md = &coingecko.CoinMarketData{}
	}

	doc.Fields = append(doc.Fields,
		core.Field{Name: "Price", Value: PriceString(md.CurrentPrice["usd"], "USD")},
		core.Field{Name: "24h High", Value: PriceString(md.High24h["usd"], "USD")},
		core.Field{Name: "24h Low", Value: PriceString(md.Low24h["usd"], "USD")},
	)
	doc.Fields = append(doc.Fields, changeLadder(md)...)

	return doc
}

// changeLadder renders the percentage changes over the fixed lookback
// windows. Walking from the longest window down, zero or absent values are
// placeholders until the first non-trivial value breaks the streak; after
// that a zero renders as a number. Fields come out shortest window first.
func changeLadder(md *coingecko.CoinMarketData) []core.Field {
	oneHour, ok := md.ChangePct1hInCurrency["usd"]
	var oneHourPtr *float64
	if ok {
		oneHourPtr = &oneHour
	}

	windows := []struct {
		label string
		value *float64
	}{
		{"1y", md.ChangePct1y},
		{"30d", md.ChangePct30d},
		{"14d", md.ChangePct14d},
		{"7d", md.ChangePct7d},
		{"24h", md.ChangePct24h},
		{"1h", oneHourPtr},
	}

	rendered := make([]core.Field, len(windows))
	broken := false
	for i, w := range windows {
		value := placeholder
		switch {
		case w.value == nil:
		case *w.value == 0 && !broken:
		default:
			value = PercentString(*w.value)
			if *w.value != 0 {
				broken = true
			}
		}
		// reverse so the shortest window comes first
		rendered[len(windows)-1-i] = core.Field{Name: w.label, Value: value}
	}

	return rendered
}

// PercentString renders a percentage rounded to two decimals with minimal
// digits.
func PercentString(value float64) string {
	rounded := math.Round(value*100) / 100
	return strconv.FormatFloat(rounded, 'f', -1, 64) + "%"
}

// Description reduces the HTML-bearing long-form description to plain text.
// Empty or placeholder content yields a fixed string; the text is truncated
// at the first embedded double line break.
func Description(raw string) string {
	if raw == "" || raw == "\r\n" {
		return noDescription
	}

	if idx := strings.Index(raw, "\r\n\r"); idx >= 0 {
		raw = raw[:idx]
	}

	text := html.UnescapeString(stripPolicy.Sanitize(raw))
	text = strings.TrimSpace(text)
	if text == "" {
		return noDescription
	}
	return text
}

func title(detail *coingecko.CoinDetail) string {
	rank := ""
	if detail.MarketCapRank > 0 {
		rank = fmt.Sprintf(" #%d", detail.MarketCapRank)
	}
	return fmt.Sprintf("%s (%s)%s", detail.Name, strings.ToUpper(detail.Symbol), rank)
}

func thumbnail(detail *coingecko.CoinDetail) string {
	if detail.Image.Small == "" || strings.HasSuffix(detail.Image.Small, missingThumbnail) {
		return ""
	}
	return detail.Image.Small
}
