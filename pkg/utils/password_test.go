package utils

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestHashPasswordRoundTrip(t *testing.T) {
	h := HashPassword("pw123")
	require.NotEmpty(t, h)
	assert.NotContains(t, h, "pw123")

	assert.True(t, CheckPassword("pw123", h))
	assert.False(t, CheckPassword("pw124", h))
	assert.False(t, CheckPassword("", h))
}

func TestHashPasswordSalted(t *testing.T) {
	h1 := HashPassword("same-input")
	h2 := HashPassword("same-input")
	// 盐不同 → 哈希字节不同，但都能通过校验
	assert.NotEqual(t, h1, h2)
	assert.True(t, CheckPassword("same-input", h1))
	assert.True(t, CheckPassword("same-input", h2))
}

func TestCheckPasswordMalformedHash(t *testing.T) {
	assert.False(t, CheckPassword("pw123", "not-a-bcrypt-hash"))
}

func TestNewID(t *testing.T) {
	assert.NotEqual(t, NewID(), NewID())
}
