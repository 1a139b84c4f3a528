package model

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseAmount(t *testing.T) {
	tests := []struct {
		name    string
		input   string
		want    Amount
		wantErr bool
	}{
		{name: "whole", input: "12", want: 1200},
		{name: "cents", input: "-17.05", want: -1705},
		{name: "one decimal", input: "0.5", want: 50},
		{name: "too precise", input: "1.005", wantErr: true},
		{name: "not a number", input: "abc", wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := ParseAmount(tt.input)
			if tt.wantErr {
				require.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestAmount_String(t *testing.T) {
	assert.Equal(t, "-17.00", Amount(-1700).String())
	assert.Equal(t, "0.05", Amount(5).String())
	assert.Equal(t, "10599.00", Amount(1059900).String())
}

func TestSum(t *testing.T) {
	assert.Equal(t, Amount(0), Sum())
	assert.Equal(t, Amount(-90), Sum(10, -100))
}
