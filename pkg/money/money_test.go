package money

import (
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
)

func TestRound2(t *testing.T) {
	tests := []struct {
		input    string
		expected string
	}{
		{"1.005", "1.01"}, // half rounds up
		{"1.004", "1.00"},
		{"1.9999", "2.00"},
		{"-1.005", "-1.01"},
		{"0", "0.00"},
		{"123.456789", "123.46"},
	}

	for _, tt := range tests {
		got := Round2(decimal.RequireFromString(tt.input))
		assert.Equal(t, tt.expected, got.StringFixed(2), "input %s", tt.input)
	}
}

func TestPercent(t *testing.T) {
	got := Percent(decimal.NewFromInt(10000), decimal.NewFromInt(3))
	assert.True(t, got.Equal(decimal.NewFromInt(300)), "got %s", got)

	fractional := Percent(decimal.NewFromInt(1437), decimal.NewFromFloat(2.5))
	assert.True(t, fractional.Equal(decimal.NewFromFloat(35.925)), "got %s", fractional)
}

func TestIsZero(t *testing.T) {
	assert.True(t, IsZero(decimal.Zero))
	assert.True(t, IsZero(decimal.NewFromFloat(0.005)))
	assert.True(t, IsZero(decimal.NewFromFloat(-0.01)))
	assert.False(t, IsZero(decimal.NewFromFloat(0.02)))
}

func TestWithinTolerance(t *testing.T) {
	tol := decimal.NewFromFloat(0.05)
	assert.True(t, WithinTolerance(decimal.NewFromFloat(1.00), decimal.NewFromFloat(1.04), tol))
	assert.False(t, WithinTolerance(decimal.NewFromFloat(1.00), decimal.NewFromFloat(1.10), tol))
}

func TestClampFloor(t *testing.T) {
	assert.True(t, ClampFloor(decimal.NewFromInt(-5), decimal.Zero).IsZero())
	assert.True(t, ClampFloor(decimal.NewFromInt(5), decimal.Zero).Equal(decimal.NewFromInt(5)))
}
