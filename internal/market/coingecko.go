// Package market fetches USD prices for the whitelisted assets. Prices only
// enrich the wallet summary sent to the assistant; nothing in the transfer
// pipeline depends on them.
package market

import (
	"context"
	"fmt"
	"strconv"
	"time"

	"github.com/ENuel20/SoNa/internal/httpx"
	"github.com/ENuel20/SoNa/internal/log"
	"github.com/ENuel20/SoNa/internal/retry"
)

const (
	defaultBaseURL = "https://api.coingecko.com"

	solPriceID   = "solana"
	sonicPriceID = "sonic-token"
)

// Prices is one quote pair. Values are decimal strings.
type Prices struct {
	SolUSD    string
	SonicUSD  string
	FetchedAt time.Time
}

type Client struct {
	http    *httpx.Client
	baseURL string
	policy  retry.Policy
	now     func() time.Time

	lastGood *Prices
}

func New(httpClient *httpx.Client) *Client {
	return &Client{
		http:    httpClient,
		baseURL: defaultBaseURL,
		policy:  retry.Default(),
		now:     time.Now,
	}
}

// Prices fetches current quotes, retrying transient failures under the
// shared policy. On failure it falls back to the last good quote if one
// exists: stale prices beat no prices for conversational context.
func (c *Client) Prices(ctx context.Context) (Prices, error) {
	var out struct {
		Solana struct {
			USD float64 `json:"usd"`
		} `json:"solana"`
		SonicToken struct {
			USD float64 `json:"usd"`
		} `json:"sonic-token"`
	}

	url := fmt.Sprintf("%s/api/v3/simple/price?ids=%s,%s&vs_currencies=usd",
		c.baseURL, solPriceID, sonicPriceID)
	err := c.policy.Do(ctx, func(ctx context.Context) error {
		_, reqErr := c.http.GetJSON(ctx, url, nil, &out)
		return reqErr
	})
	if err != nil {
		if c.lastGood != nil {
			log.Market.Debug().Err(err).Msg("price fetch failed, serving last good quote")
			return *c.lastGood, nil
		}
		return Prices{}, err
	}

	prices := Prices{
		SolUSD:    strconv.FormatFloat(out.Solana.USD, 'f', -1, 64),
		SonicUSD:  strconv.FormatFloat(out.SonicToken.USD, 'f', -1, 64),
		FetchedAt: c.now(),
	}
	c.lastGood = &prices
	return prices, nil
}
