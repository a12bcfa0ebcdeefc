package entity

import (
	"errors"
	"fmt"
)

var (
	ErrProviderUnavailable    = errors.New("no Web3 provider found, install a wallet to continue")
	ErrNoAccounts             = errors.New("no accounts found")
	ErrUserRejected           = errors.New("user rejected the request")
	ErrUnrecognizedChain      = errors.New("unrecognized chain id")
	ErrWalletNotConnected     = errors.New("wallet not connected")
	ErrConnectInProgress      = errors.New("wallet connection already in progress")
	ErrTokenNotTransferable   = errors.New("token has no on-chain transfer path")
	ErrVATContractNotDeployed = errors.New("VAT refund smart contract not deployed, deploy the contract first")
	ErrLowConfidence          = errors.New("receipt extraction confidence too low")
)

// Provider error codes from EIP-1193 and EIP-3326.
const (
	CodeUserRejected       = 4001
	CodeUnrecognizedChain  = 4902
	CodeChainDisconnected  = 4901
	CodeProviderDisconnect = 4900
)

// RPCError is any failure returned by the wallet provider. Callers that need finer
// distinctions match on the wrapped sentinel or on Message.
type RPCError struct {
	Method  string
	Code    int
	Message string
	Err     error
}

func (e *RPCError) Error() string {
	if e.Code != 0 {
		return fmt.Sprintf("%s failed (code %d): %s", e.Method, e.Code, e.Message)
	}
	return fmt.Sprintf("%s failed: %s", e.Method, e.Message)
}

func (e *RPCError) Unwrap() error {
	return e.Err
}

// NewRPCError classifies a provider failure by its code.
func NewRPCError(method string, code int, message string) *RPCError {
	e := &RPCError{Method: method, Code: code, Message: message}
	switch code {
	case CodeUserRejected:
		e.Err = ErrUserRejected
	case CodeUnrecognizedChain:
		e.Err = ErrUnrecognizedChain
	}
	return e
}

// ValidationError is scoped to one input field and is raised before any network call.
type ValidationError struct {
	Field   string `json:"field"`
	Message string `json:"error"`
	Err     error  `json:"-"`
}

func (e *ValidationError) Error() string {
	return e.Message
}

func (e *ValidationError) Unwrap() error {
	return e.Err
}

// NewValidationError builds a ValidationError for field.
func NewValidationError(field, format string, args ...any) *ValidationError {
	return &ValidationError{Field: field, Message: fmt.Sprintf(format, args...)}
}

// IsValidationError reports whether err carries a ValidationError.
func IsValidationError(err error) bool {
	var ve *ValidationError
	return errors.As(err, &ve)
}
