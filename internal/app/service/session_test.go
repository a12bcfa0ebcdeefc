package service_test

import (
	"testing"

	"orbix_wallet/internal/app/service"

	"github.com/stretchr/testify/assert"
)

func TestNewSessionIsDisconnected(t *testing.T) {
	s := service.NewSession()
	assert.False(t, s.Connected())
	assert.Equal(t, "", s.Address())
	assert.Equal(t, 0.0, s.Balance("MON"))
	assert.Empty(t, s.Balances())
}

func TestSessionBalancesAreCopied(t *testing.T) {
	h := newHarness(t, harnessConfig{balanceMON: 2})
	h.connect(t)

	balances := h.session.Balances()
	balances["MON"] = 99
	assert.Equal(t, 2.0, h.session.Balance("mon"))
	assert.Equal(t, 0.0, h.session.Balance("USDC"))

	h.session.Clear()
	assert.False(t, h.session.Connected())
	assert.Equal(t, 0.0, h.session.Balance(""))
}
