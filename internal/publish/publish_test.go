package publish

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/gravadigital/konkatsu-api/internal/config"
	"github.com/gravadigital/konkatsu-api/internal/domain/vote"
)

func TestObjectKey(t *testing.T) {
	assert.Equal(t, "summer-party-0a1b2c/interim/seating.json", ObjectKey("summer-party-0a1b2c", vote.RoundInterim))
}

func TestNewWithoutEndpoint(t *testing.T) {
	p, err := New(&config.Config{})
	require.NoError(t, err)
	assert.IsType(t, Noop{}, p)
	assert.NoError(t, p.Publish(context.Background(), Snapshot{}))
}

func TestNewMinioPublisher(t *testing.T) {
	cfg := &config.Config{}
	cfg.MinIO.Endpoint = "localhost:9000"
	cfg.MinIO.Bucket = "seating"

	p, err := New(cfg)
	require.NoError(t, err)
	assert.IsType(t, &MinioPublisher{}, p)

	_, err = NewMinioPublisher("localhost:9000", "", "", "", false)
	assert.Error(t, err)
}
