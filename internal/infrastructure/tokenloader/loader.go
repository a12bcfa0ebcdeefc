package tokenloader

import (
	"errors"
	"fmt"
	"io/fs"
	"path/filepath"
	"strings"

	"orbix_wallet/internal/app/port"
	"orbix_wallet/internal/domain/entity"
	"orbix_wallet/internal/pkg/utils"
)

// DefaultTokenDirectoryPath holds one <network identifier>.json catalog per network.
const DefaultTokenDirectoryPath = "data/tokens"

// TokenFileLoader implements the port.TokenProvider interface.
type TokenFileLoader struct {
	tokenDirPath string
	filePath     string
	logger       port.Logger
}

// NewTokenLoader creates a new TokenFileLoader. filePath, when set, replaces the
// per-network lookup in the token directory.
func NewTokenLoader(filePath string, logger port.Logger) *TokenFileLoader {
	return &TokenFileLoader{
		tokenDirPath: DefaultTokenDirectoryPath,
		filePath:     filePath,
		logger:       logger,
	}
}

// WithDirectory points the loader at another token directory.
func (l *TokenFileLoader) WithDirectory(dir string) *TokenFileLoader {
	l.tokenDirPath = dir
	return l
}

// GetTokens reads the catalog for network, drops entries for other chains and
// falls back to the built-in MON/USDC catalog when no file exists.
func (l *TokenFileLoader) GetTokens(network entity.NetworkDefinition) ([]entity.TokenInfo, error) {
	path := l.filePath
	if path == "" {
		path = filepath.Join(l.tokenDirPath, network.Identifier+".json")
	}

	tokensInFile, err := utils.LoadTokensFromJSON(path)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			l.logger.Info("Token file not found, using built-in catalog", "path", path, "network", network.Identifier)
			return entity.DefaultTokens(network.ChainID), nil
		}
		return nil, fmt.Errorf("failed to load tokens from %s: %w", path, err)
	}

	valid := make([]entity.TokenInfo, 0, len(tokensInFile))
	seen := make(map[string]bool, len(tokensInFile))
	for _, token := range tokensInFile {
		if token.ChainID != network.ChainID {
			l.logger.Warn("Token has mismatched ChainID in file, skipping token.",
				"file", path, "token_symbol", token.Symbol,
				"token_chain_id", token.ChainID, "expected_chain_id", network.ChainID)
			continue
		}
		token.Symbol = entity.NormalizeSymbol(token.Symbol)
		if seen[token.Symbol] {
			l.logger.Warn("Duplicate token symbol in file, skipping token.", "file", path, "token_symbol", token.Symbol)
			continue
		}
		if token.Address != "" && !entity.IsValidAddress(token.Address) {
			l.logger.Warn("Token has invalid contract address, skipping token.", "file", path, "token_symbol", token.Symbol, "address", token.Address)
			continue
		}
		seen[token.Symbol] = true
		valid = append(valid, token)
	}

	if !seen[entity.SymbolMON] {
		return nil, fmt.Errorf("token file %s has no %s entry for chain %d", path, entity.SymbolMON, network.ChainID)
	}

	l.logger.Info("Loaded token catalog", "network", network.Identifier, "file", filepath.Base(path), "count", len(valid))
	return valid, nil
}

// Symbols lists the symbols of a catalog in order, upper-cased.
func Symbols(tokens []entity.TokenInfo) []string {
	out := make([]string, 0, len(tokens))
	for _, t := range tokens {
		out = append(out, strings.ToUpper(t.Symbol))
	}
	return out
}
