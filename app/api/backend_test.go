package main

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/x-xyz/musicnft/domain"
)

func TestMarketOperator(t *testing.T) {
	tests := []struct {
		desc   string
		raw    string
		exp    domain.Address
		expErr bool
	}{
		{"checksummed", "0x000000000000000000000000000000000000dEaD", "0x000000000000000000000000000000000000dead", false},
		{"lower case", "0x000000000000000000000000000000000000dead", "0x000000000000000000000000000000000000dead", false},
		{"unset", "", "", true},
		{"zero address", "0x0000000000000000000000000000000000000000", "", true},
		{"no prefix", "000000000000000000000000000000000000dead", "", true},
		{"too short", "0xdead", "", true},
	}
	for _, tt := range tests {
		got, err := marketOperator(tt.raw)
		if tt.expErr {
			require.True(t, errors.Is(err, domain.ErrInvalidArgument), tt.desc)
			continue
		}
		require.NoError(t, err, tt.desc)
		require.Equal(t, tt.exp, got, tt.desc)
	}
}
