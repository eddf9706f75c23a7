// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package types

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestDefaultConfig(t *testing.T) {
	cfg := DefaultConfig()

	assert.Equal(t, DefaultModel, cfg.Oracle.DefaultModel)
	assert.Equal(t, 10*time.Second, cfg.Oracle.Timeout)
	assert.Equal(t, 10*time.Second, cfg.Lookup.Timeout)
	assert.Equal(t, DefaultMatchThreshold, cfg.Lookup.MatchThreshold)
	assert.Equal(t, 0, cfg.Lookup.MaxRetries)
	assert.Equal(t, CacheMemory, cfg.Cache.Backend)
	assert.Equal(t, 10000, cfg.Cache.MaxEntries)
	assert.Equal(t, ExtractorNative, cfg.Document.Backend)
	assert.Equal(t, ":8000", cfg.Server.Addr)
	assert.Equal(t, 100*time.Millisecond, cfg.Pacing.VerifyDelay)
}

func TestWithDefaults_KeepsExplicitValues(t *testing.T) {
	cfg := Config{
		Oracle: OracleConfig{DefaultModel: "deepseek-chat"},
		Lookup: LookupConfig{MatchThreshold: 90, HTTPConfig: HTTPConfig{UserAgent: "me/1"}},
		Pacing: PacingConfig{VerifyDelay: time.Second},
		Server: ServerConfig{AllowOrigins: []string{"*"}},
	}.WithDefaults()

	assert.Equal(t, "deepseek-chat", cfg.Oracle.DefaultModel)
	assert.Equal(t, 90, cfg.Lookup.MatchThreshold)
	assert.Equal(t, "me/1", cfg.Lookup.UserAgent)
	assert.Equal(t, []string{"*"}, cfg.Server.AllowOrigins)

	// Pacing is left alone once any delay is set.
	assert.Equal(t, PacingConfig{VerifyDelay: time.Second}, cfg.Pacing)
}
