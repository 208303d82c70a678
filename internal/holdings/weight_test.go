package holdings

import (
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseWeight(t *testing.T) {
	tests := []struct {
		in      string
		want    string
		wantErr bool
	}{
		{"5.23%", "5.23", false},
		{" 5.23 ", "5.23", false},
		{"12 %", "12", false},
		{"0.00%", "0", false},
		{"5,23", "", true},
		{"", "", true},
		{"%", "", true},
		{"-1.5%", "", true},
		{"n/a", "", true},
	}
	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			got, err := ParseWeight(tt.in)
			if tt.wantErr {
				assert.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.True(t, decimal.RequireFromString(tt.want).Equal(got), "got %s", got)
		})
	}
}

func TestParseHoldings_DropsBadWeights(t *testing.T) {
	got := ParseHoldings(map[string]string{
		"aapl": "7.1%",
		"MSFT": "bogus",
		" ":    "1%",
	})
	require.Len(t, got, 1)
	assert.Equal(t, "AAPL", got[0].Symbol)
	assert.Equal(t, "7.1%", got[0].WeightRaw)
	assert.Equal(t, "7.1", got[0].Weight.String())
}
