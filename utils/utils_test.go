package utils

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestUtils(t *testing.T) {
	t.Run("test MakeHash", testMakeHash)
	t.Run("test HTTPDate", testHTTPDate)
}

func testMakeHash(t *testing.T) {
	hash1 := MakeHash("/home?lang=en")
	hash2 := MakeHash("/home?lang=fr")

	assert.NotEqual(t, hash1, hash2)
	assert.Equal(t, hash1, MakeHash("/home?lang=en"))

	// hex output, usable as a file name
	assert.Regexp(t, "^[0-9a-f]+$", hash1)
}

func testHTTPDate(t *testing.T) {
	date := time.Date(2026, time.March, 14, 9, 26, 53, 0, time.UTC)

	formatted := FormatHTTPDate(date)
	assert.Equal(t, "Sat, 14 Mar 2026 09:26:53 GMT", formatted)

	parsed, err := ParseHTTPDate(formatted)
	assert.NoError(t, err)
	assert.Equal(t, date, parsed)

	_, err = ParseHTTPDate("not a date")
	assert.Error(t, err)
}
