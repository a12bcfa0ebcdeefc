package service

import (
	"strings"
	"sync"

	"orbix_wallet/internal/domain/entity"
)

// Session is the single connected-account state shared by every operation.
// It is created once per process, mutated only by the wallet service, and
// cleared on disconnect.
type Session struct {
	mu         sync.RWMutex
	address    string
	balances   map[string]float64
	connecting bool
}

// NewSession returns an empty, disconnected session.
func NewSession() *Session {
	return &Session{balances: make(map[string]float64)}
}

// Address returns the connected account, or "" when disconnected.
func (s *Session) Address() string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.address
}

// Connected reports whether an account is set.
func (s *Session) Connected() bool {
	return s.Address() != ""
}

// Balance returns the cached balance for symbol. USDC is a placeholder and stays 0.
func (s *Session) Balance(symbol string) float64 {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.balances[entity.NormalizeSymbol(symbol)]
}

// Balances returns a copy of all cached balances.
func (s *Session) Balances() map[string]float64 {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make(map[string]float64, len(s.balances))
	for k, v := range s.balances {
		out[k] = v
	}
	return out
}

func (s *Session) setAccount(address string, nativeBalance float64) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.address = address
	s.balances = map[string]float64{
		entity.SymbolMON:  nativeBalance,
		entity.SymbolUSDC: 0,
	}
}

// setBalance updates the cached balance only if address is still the session account.
func (s *Session) setBalance(address, symbol string, amount float64) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.address == "" || !strings.EqualFold(s.address, address) {
		return false
	}
	s.balances[entity.NormalizeSymbol(symbol)] = amount
	return true
}

// beginConnect claims the in-flight flag. It returns false if a connect is already running.
func (s *Session) beginConnect() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.connecting {
		return false
	}
	s.connecting = true
	return true
}

func (s *Session) endConnect() {
	s.mu.Lock()
	s.connecting = false
	s.mu.Unlock()
}

// Clear drops the account and every cached balance.
func (s *Session) Clear() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.address = ""
	s.balances = make(map[string]float64)
}
