// internal/services/testdb_test.go
package services

import (
	"testing"

	"github.com/glebarez/sqlite"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"github.com/beathaus/beathaus-backend/internal/models"
)

// sqlite cannot parse the postgres text[] column type on the beats table, so
// that one table is created by hand. Column names follow gorm's defaults.
const beatsTableDDL = `
CREATE TABLE IF NOT EXISTS beats (
	id INTEGER PRIMARY KEY AUTOINCREMENT,
	created_at DATETIME,
	updated_at DATETIME,
	deleted_at DATETIME,
	title TEXT,
	description TEXT,
	genre TEXT,
	bpm INTEGER,
	"key" TEXT,
	tags TEXT,
	price REAL,
	cover_url TEXT,
	preview_url TEXT,
	exclusive_available NUMERIC,
	is_sold_exclusive NUMERIC,
	producer_id INTEGER
)`

// newTestDB opens a throwaway in-memory database with the full schema. Each
// call gets its own database, so tests stay independent.
func newTestDB(t *testing.T) *gorm.DB {
	t.Helper()

	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{
		Logger:                                   logger.Default.LogMode(logger.Silent),
		DisableForeignKeyConstraintWhenMigrating: true,
	})
	require.NoError(t, err)

	require.NoError(t, db.Exec(beatsTableDDL).Error)
	require.NoError(t, db.AutoMigrate(
		&models.User{},
		&models.BeatFile{},
		&models.SoundPack{},
		&models.Discount{},
		&models.ContractTemplate{},
		&models.Contract{},
		&models.Payment{},
		&models.Sale{},
		&models.Wishlist{},
	))

	return db
}

func createUser(t *testing.T, db *gorm.DB, name, email string, role models.Role) *models.User {
	t.Helper()

	user := &models.User{
		Name:         name,
		Email:        email,
		PasswordHash: "not-a-real-hash",
		Role:         role,
	}
	require.NoError(t, db.Create(user).Error)
	return user
}

func createBeat(t *testing.T, db *gorm.DB, producerID uint, title string, tiers map[models.FileType]float64) *models.Beat {
	t.Helper()

	beat := &models.Beat{
		Title:              title,
		Genre:              "afrobeat",
		BPM:                102,
		Price:              tiers[models.FileTypeMP3],
		ExclusiveAvailable: true,
		ProducerID:         producerID,
	}
	require.NoError(t, db.Create(beat).Error)

	for fileType, price := range tiers {
		require.NoError(t, db.Create(&models.BeatFile{
			BeatID:   beat.ID,
			FileType: fileType,
			FileURL:  "https://cdn.example.com/beats/" + string(fileType),
			Price:    price,
		}).Error)
	}
	return beat
}
