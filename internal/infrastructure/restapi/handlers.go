package restapi

import (
	"io"
	"math"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"orbix_wallet/internal/app/service"
	"orbix_wallet/internal/domain/entity"
)

const defaultActiveTab = "payment"

// WalletStatusResponse describes the session for the wallet header.
type WalletStatusResponse struct {
	Available bool                  `json:"available"`
	Connected bool                  `json:"connected"`
	Address   string                `json:"address,omitempty"`
	Network   string                `json:"network"`
	ChainID   uint64                `json:"chainId"`
	Explorer  string                `json:"explorer"`
	Faucet    string                `json:"faucet,omitempty"`
	Balances  []entity.AssetBalance `json:"balances"`
}

type accountsChangedRequest struct {
	Accounts []string `json:"accounts"`
}

type demoRefundRequest struct {
	WalletAddress string `json:"walletAddress"`
}

type activeTabRequest struct {
	Tab string `json:"tab" binding:"required"`
}

// Handler serves the wallet, payment and refund endpoints.
type Handler struct {
	wallet   *service.WalletService
	payments *service.PaymentService
	bulk     *service.BulkPaymentService
	refunds  *service.RefundService
	fees     *service.FeeCalculator
	business *service.BusinessMetricsService
	maxFile  int64
}

// NewHandler creates a new Handler. maxUploadBytes caps receipt uploads.
func NewHandler(
	wallet *service.WalletService,
	payments *service.PaymentService,
	bulk *service.BulkPaymentService,
	refunds *service.RefundService,
	fees *service.FeeCalculator,
	business *service.BusinessMetricsService,
	maxUploadBytes int64,
) *Handler {
	return &Handler{
		wallet:   wallet,
		payments: payments,
		bulk:     bulk,
		refunds:  refunds,
		fees:     fees,
		business: business,
		maxFile:  maxUploadBytes,
	}
}

func (h *Handler) status() WalletStatusResponse {
	network := h.wallet.Network()
	session := h.wallet.Session()
	resp := WalletStatusResponse{
		Available: h.wallet.IsAvailable(),
		Connected: session.Connected(),
		Address:   session.Address(),
		Network:   network.Name,
		ChainID:   network.ChainID,
		Explorer:  network.BlockExplorerURL,
		Faucet:    network.FaucetURL,
		Balances:  []entity.AssetBalance{},
	}
	if resp.Connected {
		resp.Balances = h.wallet.Balances()
	}
	return resp
}

// WalletStatus returns the session state.
func (h *Handler) WalletStatus(c *gin.Context) {
	c.JSON(http.StatusOK, h.status())
}

// Connect prompts the wallet for accounts and switches it to the configured chain.
func (h *Handler) Connect(c *gin.Context) {
	if _, err := h.wallet.Connect(c.Request.Context()); err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, h.status())
}

// Reconnect restores a session from already authorized accounts.
func (h *Handler) Reconnect(c *gin.Context) {
	if _, err := h.wallet.Reconnect(c.Request.Context()); err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, h.status())
}

// Disconnect clears the session.
func (h *Handler) Disconnect(c *gin.Context) {
	if err := h.wallet.Disconnect(c.Request.Context()); err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, h.status())
}

// AccountsChanged relays the wallet's accountsChanged event.
func (h *Handler) AccountsChanged(c *gin.Context) {
	var req accountsChangedRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, "Invalid request body: "+err.Error())
		return
	}
	if _, err := h.wallet.HandleAccountsChanged(c.Request.Context(), req.Accounts); err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, h.status())
}

// Balance re-reads the native balance of the connected account.
func (h *Handler) Balance(c *gin.Context) {
	if _, err := h.wallet.RefreshBalance(c.Request.Context()); err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, h.wallet.Balances())
}

// TransactionStatus looks up a submitted transaction.
func (h *Handler) TransactionStatus(c *gin.Context) {
	hash := c.Param("hash")
	if len(hash) != 66 || hash[:2] != "0x" {
		badRequest(c, "Invalid transaction hash")
		return
	}
	c.JSON(http.StatusOK, h.wallet.GetTransactionStatus(c.Request.Context(), hash))
}

// SendPayment sends a single payment. Transfer failures come back as a 200
// with success=false so the form can show the message.
func (h *Handler) SendPayment(c *gin.Context) {
	var req entity.PaymentRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, "Invalid request body: "+err.Error())
		return
	}
	result, err := h.payments.SendPayment(c.Request.Context(), req)
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, result)
}

// SendBulkPayment pays every recipient of the batch in order.
func (h *Handler) SendBulkPayment(c *gin.Context) {
	var req entity.BulkPaymentRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, "Invalid request body: "+err.Error())
		return
	}
	result, err := h.bulk.SendBulkPayment(c.Request.Context(), req)
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, result)
}

// FeeQuote returns the fee and net amount for ?amount=.
func (h *Handler) FeeQuote(c *gin.Context) {
	amount, ok := floatQuery(c, "amount")
	if !ok {
		return
	}
	if amount <= 0 {
		badRequest(c, "Amount must be greater than 0")
		return
	}
	c.JSON(http.StatusOK, h.fees.Quote(amount))
}

// RefundQuote returns the refund breakdown for ?vatAmount=, or for a
// VAT-inclusive bill given as ?billAmount=&vatRate=.
func (h *Handler) RefundQuote(c *gin.Context) {
	var (
		quote entity.RefundQuote
		err   error
	)
	if c.Query("billAmount") != "" {
		bill, ok := floatQuery(c, "billAmount")
		if !ok {
			return
		}
		rate, ok := floatQuery(c, "vatRate")
		if !ok {
			return
		}
		quote, err = h.refunds.QuoteRefundFromBill(bill, rate)
	} else {
		vat, ok := floatQuery(c, "vatAmount")
		if !ok {
			return
		}
		quote, err = h.refunds.QuoteRefund(vat)
	}
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, quote)
}

// ExtractReceipt reads the multipart "file" field and runs AI extraction.
func (h *Handler) ExtractReceipt(c *gin.Context) {
	fh, err := c.FormFile("file")
	if err != nil {
		badRequest(c, "Please select a receipt file")
		return
	}
	if h.maxFile > 0 && fh.Size > h.maxFile {
		writeError(c, entity.NewValidationError("file", "File size must be less than %d MB", h.maxFile/(1024*1024)))
		return
	}
	f, err := fh.Open()
	if err != nil {
		badRequest(c, "Failed to read upload: "+err.Error())
		return
	}
	defer f.Close()
	data, err := io.ReadAll(f)
	if err != nil {
		badRequest(c, "Failed to read upload: "+err.Error())
		return
	}

	extraction, err := h.refunds.ExtractReceipt(c.Request.Context(), entity.ReceiptFile{
		Name:        fh.Filename,
		ContentType: fh.Header.Get("Content-Type"),
		Data:        data,
	})
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, extraction)
}

// SendDemoRefund pays the fixed demo refund to the given address.
func (h *Handler) SendDemoRefund(c *gin.Context) {
	var req demoRefundRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, "Invalid request body: "+err.Error())
		return
	}
	result, err := h.refunds.SendDemoRefund(c.Request.Context(), req.WalletAddress)
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, result)
}

// SubmitVATRefund submits an on-chain refund claim.
func (h *Handler) SubmitVATRefund(c *gin.Context) {
	var claim entity.VATRefundClaim
	if err := c.ShouldBindJSON(&claim); err != nil {
		badRequest(c, "Invalid request body: "+err.Error())
		return
	}
	if err := h.refunds.SubmitVATRefund(c.Request.Context(), claim); err != nil {
		writeError(c, err)
		return
	}
	c.Status(http.StatusAccepted)
}

// RefundHistory lists refunds of the connected account, ?limit= optional.
func (h *Handler) RefundHistory(c *gin.Context) {
	limit := 0
	if v := c.Query("limit"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil || n < 0 {
			badRequest(c, "limit must be a non-negative integer")
			return
		}
		limit = n
	}
	records, err := h.refunds.RefundHistory(c.Request.Context(), limit)
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, records)
}

// BusinessMetrics summarises the local payment ledger.
func (h *Handler) BusinessMetrics(c *gin.Context) {
	m, err := h.business.Summarize(c.Request.Context())
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, m)
}

// ActiveTab returns the persisted UI tab.
func (h *Handler) ActiveTab(c *gin.Context) {
	tab, err := h.wallet.ActiveTab(defaultActiveTab)
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"tab": tab})
}

// SetActiveTab persists the UI tab.
func (h *Handler) SetActiveTab(c *gin.Context) {
	var req activeTabRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, "tab is required")
		return
	}
	if err := h.wallet.SetActiveTab(req.Tab); err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"tab": req.Tab})
}

func floatQuery(c *gin.Context, name string) (float64, bool) {
	v, err := strconv.ParseFloat(c.Query(name), 64)
	if err != nil || math.IsNaN(v) || math.IsInf(v, 0) {
		badRequest(c, name+" must be a number")
		return 0, false
	}
	return v, true
}
