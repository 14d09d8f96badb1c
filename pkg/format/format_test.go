package format

import (
	"testing"

	"github.com/raykavin/geckobot/pkg/coingecko"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestPriceString(t *testing.T) {
	tt := []struct {
		name     string
		price    float64
		target   string
		expected string
	}{
		{"usd with padding", 1234.5, "USD", "$1234.50"},
		{"integer gets two decimals", 7, "EUR", "7.00 EUR"},
		{"zero", 0, "USD", "$0.00"},
		{"already two decimals", 19.99, "USD", "$19.99"},
		{"more than two decimals kept", 0.123456, "USD", "$0.123456"},
		{"tiny value stays non-zero", 0.00000001234, "USD", "$0.00000001234"},
		{"below fixed precision falls back", 1e-19, "USD", "$1e-19"},
		{"large value", 100000000, "USD", "$100000000.00"},
		{"negative", -3.1, "USD", "$-3.10"},
		{"empty target means usd", 2.5, "", "$2.50"},
	}

	for _, tc := range tt {
		t.Run(tc.name, func(t *testing.T) {
			assert.Equal(t, tc.expected, PriceString(tc.price, tc.target))
		})
	}
}

func TestPercentString(t *testing.T) {
	assert.Equal(t, "5.68%", PercentString(5.678))
	assert.Equal(t, "0%", PercentString(0))
	assert.Equal(t, "-12.35%", PercentString(-12.345))
	assert.Equal(t, "100%", PercentString(100))
}

func TestDescription(t *testing.T) {
	assert.Equal(t, noDescription, Description(""))
	assert.Equal(t, noDescription, Description("\r\n"))
	assert.Equal(t, noDescription, Description("<p></p>"))
	assert.Equal(t, "Hello world", Description("Hello <b>world</b>"))
	assert.Equal(t, "first paragraph", Description("first paragraph\r\n\rsecond paragraph"))
	assert.Equal(t, "A & B", Description("A &amp; B"))
}

func ptr(v float64) *float64 { return &v }

func TestChangeLadder(t *testing.T) {
	md := &coingecko.CoinMarketData{
		ChangePct1y:           nil,
		ChangePct30d:          nil,
		ChangePct14d:          ptr(2.5),
		ChangePct7d:           ptr(0),
		ChangePct24h:          ptr(-1.2),
		ChangePct1hInCurrency: map[string]float64{"usd": 0},
	}

	fields := changeLadder(md)
	require.Len(t, fields, 6)

	// shortest window first; leading placeholders until the 14d value breaks
	// the streak, zeros after the break render as numbers
	assert.Equal(t, "1h", fields[0].Name)
	assert.Equal(t, "0%", fields[0].Value)
	assert.Equal(t, "24h", fields[1].Name)
	assert.Equal(t, "-1.2%", fields[1].Value)
	assert.Equal(t, "7d", fields[2].Name)
	assert.Equal(t, "0%", fields[2].Value)
	assert.Equal(t, "14d", fields[3].Name)
	assert.Equal(t, "2.5%", fields[3].Value)
	assert.Equal(t, "30d", fields[4].Name)
	assert.Equal(t, placeholder, fields[4].Value)
	assert.Equal(t, "1y", fields[5].Name)
	assert.Equal(t, placeholder, fields[5].Value)
}

func TestChangeLadderAllMissing(t *testing.T) {
	fields := changeLadder(&coingecko.CoinMarketData{})
	require.Len(t, fields, 6)
	for _, field := range fields {
		assert.Equal(t, placeholder, field.Value)
	}
}

func TestCoinInfo(t *testing.T) {
	detail := &coingecko.CoinDetail{
		ID:            "Bitcoin",
		Symbol:        "btc",
		Name:          "Bitcoin",
		MarketCapRank: 1,
		Description:   map[string]string{"en": "Digital <b>gold</b>."},
	}
	detail.Image.Small = "https://example.com/btc_small.png"
	detail.Links.Homepage = []string{"https://bitcoin.org", "https://ignored.example"}

	doc := CoinInfo(detail)
	assert.Equal(t, "Bitcoin (BTC) #1", doc.Title)
	assert.Equal(t, "Digital gold.", doc.Description)
	assert.Equal(t, "https://www.coingecko.com/en/coins/bitcoin", doc.URL)
	assert.Equal(t, "https://example.com/btc_small.png", doc.Thumbnail)
	assert.Equal(t, "https://bitcoin.org", doc.Website)
}

func TestCoinInfoSkipsMissingThumbnail(t *testing.T) {
	detail := &coingecko.CoinDetail{ID: "newcoin", Symbol: "new", Name: "NewCoin"}
	detail.Image.Small = "https://static.coingecko.com/missing_small.png"

	doc := CoinInfo(detail)
	assert.Equal(t, "NewCoin (NEW)", doc.Title)
	assert.Empty(t, doc.Thumbnail)
	assert.Equal(t, noDescription, doc.Description)
}

func TestCoinInfoNilDetail(t *testing.T) {
	doc := CoinInfo(nil)
	assert.Equal(t, "Error", doc.Title)
}

func TestPriceInfo(t *testing.T) {
	detail := &coingecko.CoinDetail{
		ID:     "bitcoin",
		Symbol: "btc",
		Name:   "Bitcoin",
		MarketData: &coingecko.CoinMarketData{
			CurrentPrice: map[string]float64{"usd": 50000},
			High24h:      map[string]float64{"usd": 51000},
			Low24h:       map[string]float64{"usd": 49000.5},
			ChangePct24h: ptr(1.5),
		},
	}

	doc := PriceInfo(detail)
	require.GreaterOrEqual(t, len(doc.Fields), 3)
	assert.Equal(t, "Price", doc.Fields[0].Name)
	assert.Equal(t, "$50000.00", doc.Fields[0].Value)
	assert.Equal(t, "24h High", doc.Fields[1].Name)
	assert.Equal(t, "$51000.00", doc.Fields[1].Value)
	assert.Equal(t, "24h Low", doc.Fields[2].Name)
	assert.Equal(t, "$49000.50", doc.Fields[2].Value)
}

func TestPriceInfoNoMarketData(t *testing.T) {
	doc := PriceInfo(&coingecko.CoinDetail{ID: "x", Symbol: "x", Name: "X"})
	require.GreaterOrEqual(t, len(doc.Fields), 3)
	assert.Equal(t, "$0.00", doc.Fields[0].Value)
}
