package restapi

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"orbix_wallet/internal/app/service"
	"orbix_wallet/internal/domain/entity"
)

// APIError is the body of every non-2xx response.
type APIError struct {
	Error string `json:"error"`
	Field string `json:"field,omitempty"`
}

func statusFor(err error) int {
	var ve *entity.ValidationError
	switch {
	case errors.Is(err, entity.ErrLowConfidence):
		return http.StatusUnprocessableEntity
	case errors.As(err, &ve):
		return http.StatusBadRequest
	case errors.Is(err, entity.ErrProviderUnavailable), errors.Is(err, service.ErrExtractorUnavailable):
		return http.StatusServiceUnavailable
	case errors.Is(err, entity.ErrWalletNotConnected):
		return http.StatusUnauthorized
	case errors.Is(err, entity.ErrUserRejected), errors.Is(err, entity.ErrConnectInProgress), errors.Is(err, entity.ErrNoAccounts):
		return http.StatusConflict
	case errors.Is(err, entity.ErrVATContractNotDeployed):
		return http.StatusNotImplemented
	default:
		return http.StatusBadGateway
	}
}

func writeError(c *gin.Context, err error) {
	body := APIError{Error: err.Error()}
	var ve *entity.ValidationError
	if errors.As(err, &ve) {
		body.Field = ve.Field
	}
	c.AbortWithStatusJSON(statusFor(err), body)
}

func badRequest(c *gin.Context, msg string) {
	c.AbortWithStatusJSON(http.StatusBadRequest, APIError{Error: msg})
}
