package amazonfps

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestFormatAmount(t *testing.T) {
	assert.Equal(t, "0.00", formatAmount(0))
	assert.Equal(t, "0.01", formatAmount(1))
	assert.Equal(t, "25.00", formatAmount(2500))
	assert.Equal(t, "1234.56", formatAmount(123456))
}

func TestParseAmount(t *testing.T) {
	testCases := []struct {
		value    string
		expected int64
		hasError bool
	}{
		{value: "25.00", expected: 2500},
		{value: "25", expected: 2500},
		{value: "0.1", expected: 10},
		{value: "-1.50", expected: -150},
		{value: "1.005", hasError: true},
		{value: "abc", hasError: true},
		{value: "", hasError: true},
	}
	for _, tc := range testCases {
		t.Run(tc.value, func(t *testing.T) {
			amount, err := parseAmount(tc.value)
			if tc.hasError {
				assert.Error(t, err)
				return
			}
			assert.NoError(t, err)
			assert.Equal(t, tc.expected, amount)
		})
	}
}
