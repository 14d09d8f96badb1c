package coingecko

// CoinDetail is the decoded payload of GET /coins/{id}.
type CoinDetail struct {
	ID               string            `json:"id"`
	Symbol           string            `json:"symbol"`
	Name             string            `json:"name"`
	MarketCapRank    int               `json:"market_cap_rank"`
	Image            CoinImage         `json:"image"`
	Description      map[string]string `json:"description"`
	Links            CoinLinks         `json:"links"`
	SentimentVotesUp float64           `json:"sentiment_votes_up_percentage"`
	MarketData       *CoinMarketData   `json:"market_data"`
}

// CoinImage holds the icon URLs of a coin.
type CoinImage struct {
	Thumb string `json:"thumb"`
	Small string `json:"small"`
	Large string `json:"large"`
}

// CoinLinks holds the external links of a coin.
type CoinLinks struct {
	Homepage []string `json:"homepage"`
}

// CoinMarketData holds the price section of a coin detail. Percentage
// changes are pointers so an absent value can be told apart from zero.
type CoinMarketData struct {
	CurrentPrice map[string]float64 `json:"current_price"`
	High24h      map[string]float64 `json:"high_24h"`
	Low24h       map[string]float64 `json:"low_24h"`

	ChangePct1hInCurrency map[string]float64 `json:"price_change_percentage_1h_in_currency"`
	ChangePct24h          *float64           `json:"price_change_percentage_24h"`
	ChangePct7d           *float64           `json:"price_change_percentage_7d"`
	ChangePct14d          *float64           `json:"price_change_percentage_14d"`
	ChangePct30d          *float64           `json:"price_change_percentage_30d"`
	ChangePct1y           *float64           `json:"price_change_percentage_1y"`
}

// MarketChart is the decoded payload of GET /coins/{id}/market_chart/range.
// Each entry is a [unix milliseconds, value] pair.
type MarketChart struct {
	Prices       [][2]float64 `json:"prices"`
	MarketCaps   [][2]float64 `json:"market_caps"`
	TotalVolumes [][2]float64 `json:"total_volumes"`
}

// MarketTicker is one row of GET /coins/markets.
type MarketTicker struct {
	ID                string  `json:"id"`
	Symbol            string  `json:"symbol"`
	Name              string  `json:"name"`
	CurrentPrice      float64 `json:"current_price"`
	MarketCap         float64 `json:"market_cap"`
	MarketCapRank     int     `json:"market_cap_rank"`
	PriceChangePct24h float64 `json:"price_change_percentage_24h"`
}
