package gziputil

import (
	"bytes"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestGzip(t *testing.T) {
	t.Run("test RoundTrip", testRoundTrip)
	t.Run("test IsGzipped", testIsGzipped)
	t.Run("test DoubleGzip", testDoubleGzip)
	t.Run("test EmptyGzip", testEmptyGzip)
	t.Run("test CorruptGunzip", testCorruptGunzip)
}

func testRoundTrip(t *testing.T) {
	inputs := [][]byte{
		[]byte("hello cache"),
		bytes.Repeat([]byte("abcdefgh"), 10000),
		{0, 1, 2, 3, 4, 5},
	}

	for _, input := range inputs {
		gzipped, err := Gzip(input)
		assert.NoError(t, err)

		output, err := Gunzip(gzipped)
		assert.NoError(t, err)
		assert.Equal(t, input, output)
	}
}

func testIsGzipped(t *testing.T) {
	gzipped, err := Gzip([]byte("some content"))
	assert.NoError(t, err)
	assert.True(t, IsGzipped(gzipped))

	assert.False(t, IsGzipped(nil))
	assert.False(t, IsGzipped([]byte{}))
	assert.False(t, IsGzipped([]byte{0x1f}))
	assert.False(t, IsGzipped([]byte("plain text")))
}

func testDoubleGzip(t *testing.T) {
	gzipped, err := Gzip([]byte("some content"))
	assert.NoError(t, err)

	_, err = Gzip(gzipped)
	assert.Error(t, err)
}

func testEmptyGzip(t *testing.T) {
	gzipped, err := Gzip(nil)
	assert.NoError(t, err)

	assert.Equal(t, EmptyGzipSize(), len(gzipped))
	assert.True(t, IsEmptyGzip(gzipped))

	inflated, err := Gunzip(gzipped)
	assert.NoError(t, err)
	assert.Empty(t, inflated)

	nonEmpty, err := Gzip([]byte("some content that is clearly not empty at all"))
	assert.NoError(t, err)
	assert.False(t, IsEmptyGzip(nonEmpty))
}

func testCorruptGunzip(t *testing.T) {
	_, err := Gunzip([]byte("this is not a gzip stream"))
	assert.Error(t, err)

	// valid magic bytes, garbage after
	corrupt := []byte{0x1f, 0x8b, 0xff, 0xff, 0xff, 0xff, 0xff, 0xff}
	_, err = Gunzip(corrupt)
	assert.Error(t, err)
}
