package ycsb

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestValueVariants(t *testing.T) {
	n := NumericValue(math.MinInt64)
	require.True(t, n.IsNumeric())
	v, ok := n.Int64()
	require.True(t, ok)
	assert.Equal(t, int64(math.MinInt64), v)
	assert.Equal(t, "-9223372036854775808", n.String())

	txt := TextValue([]byte{0x00, 0xff, 0x80})
	require.False(t, txt.IsNumeric())
	_, ok = txt.Int64()
	assert.False(t, ok)
	assert.Equal(t, []byte{0x00, 0xff, 0x80}, txt.Bytes())
}

func TestRecordIsNumeric(t *testing.T) {
	assert.False(t, Record{}.IsNumeric())
	assert.True(t, Record{"balance": NumericValue(700)}.IsNumeric())
	assert.False(t, Record{"balance": NumericValue(700), "name": TextValue([]byte("x"))}.IsNumeric())
}

func TestRecordFieldsSorted(t *testing.T) {
	r := NewTextRecord(map[string][]byte{"f2": []byte("b"), "f1": []byte("a"), "f0": nil})
	assert.Equal(t, []string{"f0", "f1", "f2"}, r.Fields())
	assert.Equal(t, []byte("a"), r.TextMap()["f1"])
}

func TestStatusString(t *testing.T) {
	assert.Equal(t, "OK", OK.String())
	assert.Equal(t, "ERROR", Error.String())
	assert.Equal(t, "NOT_IMPLEMENTED", NotImplemented.String())
	assert.True(t, OK.IsOK())
	assert.False(t, NotImplemented.IsOK())
}
