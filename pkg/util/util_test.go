package util

import (
	"bytes"
	"math/rand"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRandBytes(t *testing.T) {
	r := rand.New(rand.NewSource(1))
	b := make([]byte, 64)
	RandBytes(r, b)
	for _, c := range b {
		require.True(t, bytes.IndexByte(letters, c) >= 0, "unexpected byte %q", c)
	}
}

func TestBufPool(t *testing.T) {
	p := NewBufPool(16)
	buf := p.Get()
	assert.Len(t, buf, 0)
	assert.True(t, cap(buf) >= 16)
	buf = append(buf, "hello"...)
	p.Put(buf)

	again := p.Get()
	assert.Len(t, again, 0)
}

func TestHash64NonNegative(t *testing.T) {
	for _, n := range []int64{0, 1, -1, 1 << 62, -1 << 63} {
		assert.True(t, Hash64(n) >= 0)
	}
	assert.Equal(t, Hash64(7), Hash64(7))
	assert.NotEqual(t, Hash64(7), Hash64(8))
}

func TestRenderString(t *testing.T) {
	var buf bytes.Buffer
	RenderString(&buf, "%-6s - %s\n", []string{"Operation", "Count"}, [][]string{{"READ", "3"}})
	assert.Equal(t, "READ   - Count: 3\n", buf.String())
}

func TestRenderJson(t *testing.T) {
	var buf bytes.Buffer
	RenderJson(&buf, []string{"Operation", "Count"}, [][]string{{"READ", "3"}})
	assert.Equal(t, "[{\"Count\":\"3\",\"Operation\":\"READ\"}]\n", buf.String())
}

func TestRenderUnknownStyle(t *testing.T) {
	var buf bytes.Buffer
	err := Render(&buf, "yaml", []string{"Operation"}, [][]string{{"READ"}})
	require.Error(t, err)
	require.NoError(t, Render(&buf, OutputStyleTable, []string{"Operation", "Count"}, [][]string{{"READ", "1"}}))
	assert.Contains(t, buf.String(), "READ")
}

func TestHash64KeepsDistinctNegatives(t *testing.T) {
	seen := make(map[int64]int64)
	for n := int64(-1000); n < 1000; n++ {
		h := Hash64(n)
		prev, dup := seen[h]
		require.False(t, dup, "%d and %d collide", prev, n)
		seen[h] = n
	}
}
