package utils_test

import (
	"math/big"
	"os"
	"path/filepath"
	"testing"

	"orbix_wallet/internal/pkg/utils"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestToBaseUnits(t *testing.T) {
	wei, err := utils.ToBaseUnits(1.5, 18)
	require.NoError(t, err)
	assert.Equal(t, "1500000000000000000", wei.String())

	wei, err = utils.ToBaseUnits(0.001, 18)
	require.NoError(t, err)
	assert.Equal(t, "1000000000000000", wei.String())

	wei, err = utils.ToBaseUnits(0.1, 18)
	require.NoError(t, err)
	assert.Equal(t, "100000000000000000", wei.String())

	_, err = utils.ToBaseUnits(-1, 18)
	require.Error(t, err)
}

func TestFromBaseUnits(t *testing.T) {
	wei, ok := new(big.Int).SetString("2500000000000000000", 10)
	require.True(t, ok)
	assert.InDelta(t, 2.5, utils.FromBaseUnits(wei, 18), 1e-12)
	assert.Equal(t, 0.0, utils.FromBaseUnits(nil, 18))
}

func TestFormatBigInt(t *testing.T) {
	v, ok := new(big.Int).SetString("1234500000000000000", 10)
	require.True(t, ok)

	got, err := utils.FormatBigInt(v, 18)
	require.NoError(t, err)
	assert.Equal(t, "1.2345", got)

	got, err = utils.FormatBigInt(big.NewInt(2000), 3)
	require.NoError(t, err)
	assert.Equal(t, "2", got)

	got, err = utils.FormatBigInt(big.NewInt(0), 18)
	require.NoError(t, err)
	assert.Equal(t, "0", got)

	got, err = utils.FormatBigInt(big.NewInt(42), 0)
	require.NoError(t, err)
	assert.Equal(t, "42", got)
}

func TestFormatAddressAndAmount(t *testing.T) {
	assert.Equal(t, "0x1234...cdef", utils.FormatAddress("0x1234567890abcdef1234567890abcdef12cdef"))
	assert.Equal(t, "0x12", utils.FormatAddress("0x12"))
	assert.Equal(t, "1.500000", utils.FormatAmount(1.5, "MON"))
	assert.Equal(t, "1.50", utils.FormatAmount(1.5, "usdc"))
	assert.Equal(t, "1.5000", utils.FormatAmount(1.5, "ETH"))
}

func TestLoadTokensFromJSON(t *testing.T) {
	path := filepath.Join(t.TempDir(), "tokens.json")
	require.NoError(t, os.WriteFile(path, []byte(`[{"chainId":10143,"name":"Monad","symbol":"MON","decimals":18,"isNative":true,"minAmount":0.001}]`), 0o600))

	tokens, err := utils.LoadTokensFromJSON(path)
	require.NoError(t, err)
	require.Len(t, tokens, 1)
	assert.Equal(t, "MON", tokens[0].Symbol)
	assert.True(t, tokens[0].IsNative)
	assert.Equal(t, 0.001, tokens[0].MinAmount)
}
