package utilities

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestNewKSUID(t *testing.T) {
	a := NewKSUID()
	b := NewKSUID()

	assert.Len(t, a, 27)
	assert.NotEqual(t, a, b)
}

func TestNewSnowflakeID(t *testing.T) {
	a := NewSnowflakeID()
	b := NewSnowflakeID()

	assert.NotEmpty(t, a)
	assert.NotEqual(t, a, b)
}
