package pagination

import (
	"math"
	"net/url"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const maxInt = math.MaxInt32

func TestOffset(t *testing.T) {
	tests := []struct {
		page, size int64
		offset     int64
		err        error
	}{
		{1, 20, 0, nil},
		{2, 20, 20, nil},
		{3, 7, 14, nil},
		{maxInt, 1, maxInt - 1, nil},
		{1, maxInt, 0, nil},
		{2, maxInt, maxInt, nil},
		{3, maxInt, 0, ErrOffsetTooLarge},
		{maxInt, maxInt, 0, ErrOffsetTooLarge},
		{0, 20, 0, ErrInvalidPage},
		{1, 0, 0, ErrInvalidPage},
	}

	for _, tt := range tests {
		offset, err := Offset(tt.page, tt.size, maxInt)
		if tt.err != nil {
			assert.ErrorIs(t, err, tt.err, "page=%d size=%d", tt.page, tt.size)
			continue
		}
		require.NoError(t, err)
		assert.Equal(t, tt.offset, offset, "page=%d size=%d", tt.page, tt.size)
	}
}

func TestOffsetProperty(t *testing.T) {
	for page := int64(1); page <= 50; page++ {
		for size := int64(1); size <= 50; size++ {
			offset, err := Offset(page, size, maxInt)
			require.NoError(t, err)
			assert.Equal(t, (page-1)*size, offset)
		}
	}
}

func TestGateParse(t *testing.T) {
	gate := Gate{Max: maxInt, DefaultSize: 20}

	p, err := gate.Parse(url.Values{})
	require.NoError(t, err)
	assert.Equal(t, Page{Number: 1, Size: 20, Offset: 0}, p)
	assert.Equal(t, int64(20), p.Limit())

	p, err = gate.Parse(url.Values{"page": {"3"}, "size": {"10"}})
	require.NoError(t, err)
	assert.Equal(t, int64(20), p.Offset)

	for _, q := range []url.Values{
		{"page": {"0"}},
		{"size": {"0"}},
		{"page": {"-1"}},
		{"page": {"abc"}},
		{"size": {"2147483648"}},
	} {
		_, err := gate.Parse(q)
		assert.ErrorIs(t, err, ErrInvalidPage, q.Encode())
	}

	_, err = gate.Parse(url.Values{"page": {"2147483647"}, "size": {"2147483647"}})
	assert.ErrorIs(t, err, ErrOffsetTooLarge)
}

func TestCheck(t *testing.T) {
	assert.ErrorIs(t, Check(0), ErrEmptyPage)
	assert.NoError(t, Check(3))
}
