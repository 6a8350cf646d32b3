package redis

import (
	"context"
	"testing"

	"github.com/alicebob/miniredis/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestOpen(t *testing.T) {
	mr := miniredis.RunT(t)

	c, err := Open(context.Background(), mr.Addr(), "", 0)
	require.NoError(t, err)
	t.Cleanup(func() { c.Close() })

	assert.NoError(t, c.Ping(context.Background()).Err())
}

func TestOpen_EmptyAddr(t *testing.T) {
	_, err := Open(context.Background(), "", "", 0)
	assert.Error(t, err)
}
