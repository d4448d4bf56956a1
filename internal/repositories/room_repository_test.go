package repositories

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestCanonicalPairOrdersIdentifiers(t *testing.T) {
	a, b := canonicalPair(42, 7)
	assert.Equal(t, int64(7), a)
	assert.Equal(t, int64(42), b)

	a, b = canonicalPair(7, 42)
	assert.Equal(t, int64(7), a)
	assert.Equal(t, int64(42), b)
}
