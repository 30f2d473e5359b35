package log

import (
	"errors"
	"io"
	"testing"

	"github.com/stretchr/testify/assert"
)

type trackingCloser struct {
	closed int
	synced int
	err    error
}

func (c *trackingCloser) Close() error {
	c.closed++
	return c.err
}

func (c *trackingCloser) Sync() error {
	c.synced++
	return nil
}

func TestCloser_ClosesAllOnce(t *testing.T) {
	a, b := &trackingCloser{}, &trackingCloser{err: errors.New("close failed")}
	h := &hook{}
	c := &closer{hook: h, writers: []io.Closer{a, nil, b}}

	err := c.Close()
	assert.ErrorContains(t, err, "close failed")
	assert.True(t, h.closed)
	assert.Equal(t, 1, a.closed)
	assert.Equal(t, 1, a.synced)
	assert.Equal(t, 1, b.closed)

	assert.NoError(t, c.Close())
	assert.Equal(t, 1, a.closed)
}
