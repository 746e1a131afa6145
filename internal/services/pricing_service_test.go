// internal/services/pricing_service_test.go
package services

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"

	"github.com/beathaus/beathaus-backend/internal/config"
	"github.com/beathaus/beathaus-backend/internal/models"
)

// The rate endpoint points at a closed port so conversion always lands on
// the fallback rate and the quotes below stay deterministic.
func newPricingWithDB(db *gorm.DB) *PricingService {
	currency := NewCurrencyService(config.CurrencyConfig{
		RateAPIURL:         "http://127.0.0.1:1",
		BaseCurrency:       "USD",
		SettlementCurrency: "KES",
		FallbackRate:       130,
		Timeout:            1,
	})
	return NewPricingService(db, currency)
}

func TestResolvePriceBeatTierWithDiscount(t *testing.T) {
	db := newTestDB(t)
	svc := newPricingWithDB(db)

	producer := createUser(t, db, "Kaha", "kaha@example.com", models.RoleProducer)
	beat := createBeat(t, db, producer.ID, "Nairobi Nights", map[models.FileType]float64{
		models.FileTypeMP3: 50,
		models.FileTypeWAV: 80,
	})

	code := "LAUNCH20"
	require.NoError(t, db.Create(&models.Discount{Code: &code, Percentage: 20, IsActive: true}).Error)

	quote, err := svc.ResolvePrice(models.ItemTypeBeat, beat.ID, models.FileTypeMP3, "LAUNCH20")
	require.NoError(t, err)
	assert.Equal(t, models.FileTypeMP3, quote.FileType)
	assert.InDelta(t, 50.0, quote.BasePrice, 0.001)
	assert.InDelta(t, 40.0, quote.FinalPrice, 0.001)
	assert.InDelta(t, 5200.0, quote.SettledPrice, 0.001)
	assert.Equal(t, int64(520000), quote.SettledMinor)
	assert.Equal(t, "KES", quote.Currency)
	require.NotNil(t, quote.AppliedDiscount)
}

func TestResolvePriceRejectsSoldExclusive(t *testing.T) {
	db := newTestDB(t)
	svc := newPricingWithDB(db)

	producer := createUser(t, db, "Kaha", "kaha@example.com", models.RoleProducer)
	beat := createBeat(t, db, producer.ID, "Last Matatu", map[models.FileType]float64{
		models.FileTypeMP3:       50,
		models.FileTypeExclusive: 300,
	})
	require.NoError(t, db.Model(beat).Update("is_sold_exclusive", true).Error)

	_, err := svc.ResolvePrice(models.ItemTypeBeat, beat.ID, models.FileTypeExclusive, "")
	assert.ErrorIs(t, err, ErrExclusiveSold)

	// Non-exclusive tiers of the same beat stay purchasable.
	quote, err := svc.ResolvePrice(models.ItemTypeBeat, beat.ID, models.FileTypeMP3, "")
	require.NoError(t, err)
	assert.InDelta(t, 50.0, quote.FinalPrice, 0.001)
}

func TestResolvePriceRejectsMissingTier(t *testing.T) {
	db := newTestDB(t)
	svc := newPricingWithDB(db)

	producer := createUser(t, db, "Kaha", "kaha@example.com", models.RoleProducer)
	beat := createBeat(t, db, producer.ID, "Nairobi Nights", map[models.FileType]float64{
		models.FileTypeMP3: 50,
	})

	_, err := svc.ResolvePrice(models.ItemTypeBeat, beat.ID, models.FileTypeTrackout, "")
	assert.ErrorIs(t, err, ErrFileTierUnavailable)

	_, err = svc.ResolvePrice(models.ItemTypeBeat, beat.ID, models.FileType("flac"), "")
	assert.ErrorIs(t, err, ErrFileTierUnavailable)
}

func TestResolvePriceRejectsUnknownDiscountCode(t *testing.T) {
	db := newTestDB(t)
	svc := newPricingWithDB(db)

	producer := createUser(t, db, "Kaha", "kaha@example.com", models.RoleProducer)
	beat := createBeat(t, db, producer.ID, "Nairobi Nights", map[models.FileType]float64{
		models.FileTypeMP3: 50,
	})

	_, err := svc.ResolvePrice(models.ItemTypeBeat, beat.ID, models.FileTypeMP3, "NOSUCHCODE")
	assert.ErrorIs(t, err, ErrDiscountInvalid)
}

func TestResolvePriceSoundPackCollapsesToPackTier(t *testing.T) {
	db := newTestDB(t)
	svc := newPricingWithDB(db)

	producer := createUser(t, db, "Kaha", "kaha@example.com", models.RoleProducer)
	pack := &models.SoundPack{
		Name:       "Drum Essentials",
		Price:      25,
		FileURL:    "https://cdn.example.com/packs/drums.zip",
		ProducerID: producer.ID,
	}
	require.NoError(t, db.Create(pack).Error)

	quote, err := svc.ResolvePrice(models.ItemTypeSoundPack, pack.ID, "", "")
	require.NoError(t, err)
	assert.Equal(t, models.FileTypePack, quote.FileType)
	assert.InDelta(t, 25.0, quote.FinalPrice, 0.001)
}

func TestResolvePriceUnknownItem(t *testing.T) {
	db := newTestDB(t)
	svc := newPricingWithDB(db)

	_, err := svc.ResolvePrice(models.ItemTypeBeat, 999, models.FileTypeMP3, "")
	assert.ErrorIs(t, err, ErrItemNotFound)
}
