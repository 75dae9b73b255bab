package repomanager

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestOpen_Memory(t *testing.T) {
	db, m, err := Open(context.Background(), MemoryDSN)
	require.NoError(t, err)
	assert.Nil(t, db)
	assert.IsType(t, &InMemoryRepositoryManager{}, m)

	// every call hands out the same store
	assert.Same(t, m.Users(nil), m.Users(nil))
}

func TestOpen_UnreachablePostgres(t *testing.T) {
	_, _, err := Open(context.Background(), "postgres://nobody@127.0.0.1:1/none?sslmode=disable&connect_timeout=1")
	assert.Error(t, err)
}
