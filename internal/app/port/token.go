package port

import "orbix_wallet/internal/domain/entity"

// TokenProvider defines the interface for fetching token definitions.
type TokenProvider interface {
	// GetTokens returns the catalog for the given network.
	GetTokens(network entity.NetworkDefinition) ([]entity.TokenInfo, error)
}
