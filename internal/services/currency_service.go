// internal/services/currency_service.go
package services

import (
	"encoding/json"
	"fmt"
	"math"
	"net/http"
	"net/url"
	"time"

	"github.com/sirupsen/logrus"

	"github.com/beathaus/beathaus-backend/internal/config"
)

// CurrencyService converts catalog prices into the settlement currency
// charged by the gateway. The live rate service is best-effort: any failure
// degrades to the configured fallback rate so checkout stays available.
type CurrencyService struct {
	cfg    config.CurrencyConfig
	client *http.Client
}

type rateResponse struct {
	Success bool    `json:"success"`
	Result  float64 `json:"result"`
}

func NewCurrencyService(cfg config.CurrencyConfig) *CurrencyService {
	return &CurrencyService{
		cfg: cfg,
		client: &http.Client{
			Timeout: time.Duration(cfg.Timeout) * time.Second,
		},
	}
}

// Convert returns amount expressed in the to currency, rounded to two
// decimals. It never returns an error: the fallback rate keeps the purchase
// path alive during rate-service outages at the cost of precision.
func (s *CurrencyService) Convert(amount float64, from, to string) float64 {
	converted, err := s.fetchLive(amount, from, to)
	if err != nil {
		logrus.WithError(err).WithFields(logrus.Fields{
			"from":          from,
			"to":            to,
			"fallback_rate": s.cfg.FallbackRate,
		}).Warn("Currency API failed, using fallback rate")
		return round2(amount * s.cfg.FallbackRate)
	}
	return round2(converted)
}

// ToSettlement converts from the base (catalog) currency into the settlement
// currency and also returns the gateway minor-unit integer amount.
func (s *CurrencyService) ToSettlement(amount float64) (float64, int64) {
	settled := s.Convert(amount, s.cfg.BaseCurrency, s.cfg.SettlementCurrency)
	return settled, int64(math.Round(settled * 100))
}

func (s *CurrencyService) SettlementCurrency() string {
	return s.cfg.SettlementCurrency
}

func (s *CurrencyService) fetchLive(amount float64, from, to string) (float64, error) {
	q := url.Values{}
	q.Set("from", from)
	q.Set("to", to)
	q.Set("amount", fmt.Sprintf("%.2f", amount))

	resp, err := s.client.Get(s.cfg.RateAPIURL + "?" + q.Encode())
	if err != nil {
		return 0, fmt.Errorf("rate service unreachable: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return 0, fmt.Errorf("rate service returned status %d", resp.StatusCode)
	}

	var rr rateResponse
	if err := json.NewDecoder(resp.Body).Decode(&rr); err != nil {
		return 0, fmt.Errorf("failed to decode rate response: %w", err)
	}

	if !rr.Success {
		return 0, fmt.Errorf("rate service reported failure")
	}

	return rr.Result, nil
}

func round2(v float64) float64 {
	return math.Round(v*100) / 100
}
