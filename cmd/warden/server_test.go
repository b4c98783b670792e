package main

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func testConfig() Config {
	return Config{
		DatabaseURL:    "sqlite://:memory:",
		ClassifierKind: "lexical",
		BaselineRating: 50,
		MuteDuration:   30 * time.Second,
		MinMessageLen:  3,
		RestoreBonus:   20,
	}
}

func TestServerPolicyFromConfig(t *testing.T) {
	assert := assert.New(t)

	config := testConfig()
	config.BaselineRating = 75
	config.MuteDuration = 10 * time.Second

	srv, err := NewServer(context.Background(), config)
	require.NoError(t, err)
	assert.Equal(75, srv.pipeline.Policy.BaselineRating)
	assert.Equal(75, srv.pipeline.Ledger.Baseline)
	assert.Equal(10*time.Second, srv.pipeline.Policy.MuteDuration)
}

func TestServerZeroBaseline(t *testing.T) {
	assert := assert.New(t)

	// a zero starting allowance is a valid policy, not an unset flag
	config := testConfig()
	config.BaselineRating = 0

	srv, err := NewServer(context.Background(), config)
	require.NoError(t, err)
	assert.Equal(0, srv.pipeline.Policy.BaselineRating)
	assert.Equal(0, srv.pipeline.Ledger.Baseline)
}
