package aiclient

import (
	"context"
	"encoding/base64"
	"errors"
	"fmt"
	"strings"
	"time"

	jsoniter "github.com/json-iterator/go"
	"github.com/valyala/fasthttp"
	"go.uber.org/zap"
	"golang.org/x/time/rate"

	"orbix_wallet/internal/domain/entity"
)

var json = jsoniter.ConfigCompatibleWithStandardLibrary

const extractPath = "/v1/receipts/extract"

// ErrNotConfigured is returned when no base URL was configured.
var ErrNotConfigured = errors.New("receipt extraction service is not configured")

type extractRequest struct {
	FileName    string `json:"fileName"`
	ContentType string `json:"contentType"`
	Data        string `json:"data"`
}

type extractResponse struct {
	MerchantName          string  `json:"merchantName"`
	MerchantAddress       string  `json:"merchantAddress"`
	ReceiptNumber         string  `json:"receiptNumber"`
	PurchaseDate          string  `json:"purchaseDate"`
	VATRegistrationNumber string  `json:"vatRegistrationNumber"`
	TotalAmount           float64 `json:"totalAmount"`
	VATAmount             float64 `json:"vatAmount"`
	Confidence            float64 `json:"confidence"`
	ExtractedText         string  `json:"extractedText"`
}

type errorResponse struct {
	Error string `json:"error"`
}

// ReceiptClient calls the external AI service that turns a receipt image into
// structured VAT data.
type ReceiptClient struct {
	client  *fasthttp.Client
	baseURL string
	apiKey  string
	timeout time.Duration
	limiter *rate.Limiter
	logger  *zap.Logger
}

// NewReceiptClient creates a new ReceiptClient. requestsPerSecond <= 0 disables rate limiting.
func NewReceiptClient(baseURL, apiKey string, timeout time.Duration, requestsPerSecond int, logger *zap.Logger) *ReceiptClient {
	limit := rate.Inf
	if requestsPerSecond > 0 {
		limit = rate.Limit(requestsPerSecond)
	}
	return &ReceiptClient{
		client:  &fasthttp.Client{},
		baseURL: strings.TrimRight(baseURL, "/"),
		apiKey:  apiKey,
		timeout: timeout,
		limiter: rate.NewLimiter(limit, 1),
		logger:  logger.Named("ReceiptClient"),
	}
}

// ExtractReceipt uploads file and returns the extracted receipt data.
func (c *ReceiptClient) ExtractReceipt(ctx context.Context, file entity.ReceiptFile) (entity.VATReceipt, error) {
	if c.baseURL == "" {
		return entity.VATReceipt{}, ErrNotConfigured
	}
	if err := c.limiter.Wait(ctx); err != nil {
		return entity.VATReceipt{}, fmt.Errorf("receipt extraction rate limit wait: %w", err)
	}

	body, err := json.Marshal(extractRequest{
		FileName:    file.Name,
		ContentType: file.ContentType,
		Data:        base64.StdEncoding.EncodeToString(file.Data),
	})
	if err != nil {
		return entity.VATReceipt{}, fmt.Errorf("failed to encode extraction request: %w", err)
	}

	requestURL := c.baseURL + extractPath
	c.logger.Debug("Requesting receipt extraction",
		zap.String("url", requestURL),
		zap.String("file", file.Name),
		zap.Int("size", len(file.Data)))

	req := fasthttp.AcquireRequest()
	defer fasthttp.ReleaseRequest(req)
	req.SetRequestURI(requestURL)
	req.Header.SetMethod(fasthttp.MethodPost)
	req.Header.SetContentType("application/json")
	if c.apiKey != "" {
		req.Header.Set(fasthttp.HeaderAuthorization, "Bearer "+c.apiKey)
	}
	req.SetBody(body)

	resp := fasthttp.AcquireResponse()
	defer fasthttp.ReleaseResponse(resp)

	start := time.Now()
	if deadline, ok := ctx.Deadline(); ok {
		err = c.client.DoDeadline(req, resp, deadline)
	} else {
		err = c.client.DoTimeout(req, resp, c.timeout)
	}
	if err != nil {
		c.logger.Error("Failed to execute receipt extraction request", zap.String("url", requestURL), zap.Error(err))
		return entity.VATReceipt{}, fmt.Errorf("failed to execute request to %s: %w", requestURL, err)
	}

	rawBody := resp.Body()
	if resp.StatusCode() != fasthttp.StatusOK {
		var apiErr errorResponse
		msg := string(rawBody)
		if json.Unmarshal(rawBody, &apiErr) == nil && apiErr.Error != "" {
			msg = apiErr.Error
		}
		c.logger.Error("Receipt extraction request failed",
			zap.String("url", requestURL),
			zap.Int("statusCode", resp.StatusCode()),
			zap.String("error", msg))
		return entity.VATReceipt{}, fmt.Errorf("receipt extraction failed with status %d: %s", resp.StatusCode(), msg)
	}

	var out extractResponse
	if err := json.Unmarshal(rawBody, &out); err != nil {
		c.logger.Error("Failed to unmarshal receipt extraction response", zap.ByteString("responseBody", rawBody), zap.Error(err))
		return entity.VATReceipt{}, fmt.Errorf("failed to unmarshal receipt extraction response: %w", err)
	}
	if out.Confidence < 0 || out.Confidence > 1 {
		return entity.VATReceipt{}, fmt.Errorf("receipt extraction returned confidence %v outside [0, 1]", out.Confidence)
	}

	c.logger.Debug("Receipt extracted",
		zap.String("merchant", out.MerchantName),
		zap.Float64("confidence", out.Confidence),
		zap.Duration("took", time.Since(start)))

	return entity.VATReceipt{
		MerchantName:          out.MerchantName,
		MerchantAddress:       out.MerchantAddress,
		ReceiptNumber:         out.ReceiptNumber,
		PurchaseDate:          out.PurchaseDate,
		VATRegistrationNumber: out.VATRegistrationNumber,
		TotalAmount:           out.TotalAmount,
		VATAmount:             out.VATAmount,
		Confidence:            out.Confidence,
		RawText:               out.ExtractedText,
	}, nil
}
