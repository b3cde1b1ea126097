package database

import (
	"errors"
	"testing"

	"github.com/goplaynow/playdate-api/internal/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
)

func TestOptions_Logging(t *testing.T) {
	core, logs := observer.New(zapcore.DebugLevel)
	db, err := gorm.Open(sqlite.Open(":memory:"), Options(zap.New(core)))
	require.NoError(t, err)
	sqlDB, err := db.DB()
	require.NoError(t, err)
	sqlDB.SetMaxOpenConns(1)
	require.NoError(t, Migrate(db))
	logs.TakeAll()

	var p models.Playdate
	err = db.First(&p, "id = ?", "missing").Error
	assert.True(t, errors.Is(err, gorm.ErrRecordNotFound))
	assert.Zero(t, logs.Len(), "a missing row should not be logged")

	var n int
	err = db.Raw("SELECT count(*) FROM no_such_table").Scan(&n).Error
	require.Error(t, err)
	entries := logs.FilterLoggerName("gorm").All()
	require.NotEmpty(t, entries)
	assert.Equal(t, zapcore.WarnLevel, entries[0].Level)
}

func TestOptions_NilLogger(t *testing.T) {
	cfg := Options(nil)
	assert.True(t, cfg.TranslateError)
	assert.NotNil(t, cfg.Logger)
}
