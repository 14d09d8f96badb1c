// Package binance provides an optional spot-market cross quote used to
// enrich price replies with the live exchange price of a coin.
package binance

import (
	"context"
	"fmt"
	"strconv"
	"strings"

	"github.com/adshao/go-binance/v2"
	"github.com/raykavin/geckobot/pkg/core"
	"github.com/raykavin/geckobot/pkg/logger"
)

// QuoteAsset is the quote currency used for cross quotes.
const QuoteAsset = "USDT"

// SpotQuoter fetches last-trade prices from the Binance spot market.
type SpotQuoter struct {
	client *binance.Client
	log    logger.Logger
}

// NewSpotQuoter creates a spot quoter. Credentials may be empty; public
// market data does not require them.
func NewSpotQuoter(apiKey, secretKey string, log logger.Logger) *SpotQuoter {
	return &SpotQuoter{
		client: binance.NewClient(apiKey, secretKey),
		log:    log,
	}
}

// LastQuote returns the last spot price of <SYMBOL>USDT. Symbols without a
// USDT pair yield core.ErrNoData.
func (q *SpotQuoter) LastQuote(ctx context.Context, symbol string) (float64, error) {
	pair := strings.ToUpper(strings.TrimSpace(symbol)) + QuoteAsset

	prices, err := q.client.NewListPricesService().Symbol(pair).Do(ctx)
	if err != nil {
		q.log.WithError(err).WithField("pair", pair).Debug("binance quote failed")
		return 0, fmt.Errorf("%w: %v", core.ErrNoData, err)
	}
	if len(prices) == 0 {
		return 0, core.ErrNoData
	}

	quote, err := strconv.ParseFloat(prices[0].Price, 64)
	if err != nil {
		return 0, fmt.Errorf("%w: bad price %q", core.ErrNoData, prices[0].Price)
	}
	return quote, nil
}
