// internal/services/checkout_service_test.go
package services

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	"github.com/beathaus/beathaus-backend/internal/models"
	"github.com/beathaus/beathaus-backend/internal/utils"
)

func TestCheckoutRequestValidation(t *testing.T) {
	for _, tier := range []string{"mp3", "wav", "trackout", "exclusive"} {
		req := &CheckoutRequest{ItemType: "beat", ItemID: 7, FileType: tier}
		assert.NoError(t, utils.ValidateStruct(req), tier)
	}

	// Beat purchases must name a real license tier.
	assert.Error(t, utils.ValidateStruct(&CheckoutRequest{ItemType: "beat", ItemID: 7, FileType: "flac"}))
	assert.Error(t, utils.ValidateStruct(&CheckoutRequest{ItemType: "beat", ItemID: 7, FileType: "pack"}))
	assert.Error(t, utils.ValidateStruct(&CheckoutRequest{ItemType: "beat", ItemID: 7}))

	// Soundpack purchases carry no tier; the server collapses it to pack.
	assert.NoError(t, utils.ValidateStruct(&CheckoutRequest{ItemType: "soundpack", ItemID: 3}))

	assert.Error(t, utils.ValidateStruct(&CheckoutRequest{ItemType: "concert", ItemID: 3}))
	assert.Error(t, utils.ValidateStruct(&CheckoutRequest{ItemType: "beat", FileType: "mp3"}))
}

func TestBuildReference(t *testing.T) {
	at := time.Unix(1716720000, 0)

	ref := BuildReference(models.ItemTypeBeat, models.FileTypeMP3, 12, at)
	assert.Equal(t, "BEAT_MP3_12_1716720000", ref)

	ref = BuildReference(models.ItemTypeSoundPack, models.FileTypePack, 305, at)
	assert.Equal(t, "SOUNDPACK_PACK_305_1716720000", ref)
}

func TestParseReference(t *testing.T) {
	id, ok := ParseReference("BEAT_MP3_12_1716720000")
	assert.True(t, ok)
	assert.Equal(t, uint(12), id)

	id, ok = ParseReference("SOUNDPACK_PACK_305_1716720000")
	assert.True(t, ok)
	assert.Equal(t, uint(305), id)

	_, ok = ParseReference("")
	assert.False(t, ok)

	_, ok = ParseReference("BEAT_MP3_12")
	assert.False(t, ok)

	_, ok = ParseReference("BEAT_MP3_notanumber_1716720000")
	assert.False(t, ok)

	_, ok = ParseReference("BEAT_MP3_0_1716720000")
	assert.False(t, ok)
}

func TestReferenceRoundTrip(t *testing.T) {
	for _, paymentID := range []uint{1, 42, 99999} {
		ref := BuildReference(models.ItemTypeBeat, models.FileTypeExclusive, paymentID, time.Now())
		parsed, ok := ParseReference(ref)
		assert.True(t, ok)
		assert.Equal(t, paymentID, parsed)
	}
}
