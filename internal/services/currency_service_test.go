// internal/services/currency_service_test.go
package services

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/beathaus/beathaus-backend/internal/config"
)

func currencyConfig(apiURL string) config.CurrencyConfig {
	return config.CurrencyConfig{
		RateAPIURL:         apiURL,
		BaseCurrency:       "USD",
		SettlementCurrency: "KES",
		FallbackRate:       130,
		Timeout:            2,
	}
}

func TestConvertUsesLiveRate(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "USD", r.URL.Query().Get("from"))
		assert.Equal(t, "KES", r.URL.Query().Get("to"))
		assert.Equal(t, "40.00", r.URL.Query().Get("amount"))
		w.Write([]byte(`{"success":true,"result":5166.4}`))
	}))
	defer server.Close()

	svc := NewCurrencyService(currencyConfig(server.URL))
	assert.InDelta(t, 5166.4, svc.Convert(40, "USD", "KES"), 0.001)
}

func TestConvertFallsBackWhenServiceDown(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusServiceUnavailable)
	}))
	defer server.Close()

	svc := NewCurrencyService(currencyConfig(server.URL))
	assert.Equal(t, 5200.0, svc.Convert(40, "USD", "KES"))
}

func TestConvertFallsBackOnFailureFlag(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{"success":false}`))
	}))
	defer server.Close()

	svc := NewCurrencyService(currencyConfig(server.URL))
	assert.Equal(t, 5200.0, svc.Convert(40, "USD", "KES"))
}

func TestToSettlementMinorUnits(t *testing.T) {
	// Unreachable endpoint forces the deterministic fallback rate.
	svc := NewCurrencyService(currencyConfig("http://127.0.0.1:1"))

	settled, minor := svc.ToSettlement(40)
	assert.Equal(t, 5200.0, settled)
	assert.Equal(t, int64(520000), minor)
	assert.Equal(t, "KES", svc.SettlementCurrency())
}
