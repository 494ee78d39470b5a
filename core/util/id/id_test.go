package id

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestGenerate(t *testing.T) {
	first := Generate()
	second := Generate()

	assert.Len(t, first, 36)
	assert.NotEqual(t, first, second)
}
