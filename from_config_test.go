package stract

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/TheIronBorn/stract/config"
)

func TestNewFromConfig(t *testing.T) {
	cfg := config.Default()
	gens := testGenerations(t)

	s, store, err := NewFromConfig(context.Background(), cfg, gens)
	require.NoError(t, err)
	defer s.Close()
	require.NotNil(t, store)

	resp, err := s.Search(context.Background(), Request{Query: "rust programming", K: 10})
	require.NoError(t, err)
	assert.Len(t, resp.Results, 3)
}

func TestNewFromConfigLocalStorage(t *testing.T) {
	cfg := config.Default()
	cfg.Storage.Kind = "local"
	cfg.Storage.Dir = t.TempDir()

	s, _, err := NewFromConfig(context.Background(), cfg, testGenerations(t))
	require.NoError(t, err)
	defer s.Close()
}

func TestOpenBlobStoreUnknownKind(t *testing.T) {
	_, err := OpenBlobStore(config.StorageConfig{Kind: "ftp"})
	assert.Error(t, err)
}
