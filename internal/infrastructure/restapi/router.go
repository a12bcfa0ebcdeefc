package restapi

import (
	"net/http"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/zap"
)

// RouterOptions configures SetupRouter.
type RouterOptions struct {
	AllowOrigins []string // empty allows all origins
	Logger       *zap.Logger
}

// SetupRouter builds the gin engine with CORS, request logging, recovery,
// the /api/v1 routes and the Prometheus /metrics endpoint.
func SetupRouter(h *Handler, opts RouterOptions) *gin.Engine {
	router := gin.New()

	corsConfig := cors.DefaultConfig()
	if len(opts.AllowOrigins) == 0 {
		corsConfig.AllowAllOrigins = true
	} else {
		corsConfig.AllowOrigins = opts.AllowOrigins
	}
	corsConfig.AllowMethods = []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"}
	corsConfig.AllowHeaders = []string{"Origin", "Content-Type", "Accept", "Authorization"}
	router.Use(cors.New(corsConfig))

	if opts.Logger != nil {
		router.Use(ZapLoggerMiddleware(opts.Logger))
	}
	router.Use(gin.Recovery())

	router.GET("/healthz", func(c *gin.Context) { c.Status(http.StatusOK) })
	router.GET("/metrics", gin.WrapH(promhttp.Handler()))

	v1 := router.Group("/api/v1")
	{
		wallet := v1.Group("/wallet")
		wallet.GET("/status", h.WalletStatus)
		wallet.POST("/connect", h.Connect)
		wallet.POST("/reconnect", h.Reconnect)
		wallet.POST("/disconnect", h.Disconnect)
		wallet.POST("/accounts-changed", h.AccountsChanged)
		wallet.GET("/balance", h.Balance)

		v1.GET("/transactions/:hash", h.TransactionStatus)

		v1.POST("/payments", h.SendPayment)
		v1.POST("/payments/bulk", h.SendBulkPayment)
		v1.GET("/fees/quote", h.FeeQuote)

		v1.POST("/receipts", h.ExtractReceipt)
		v1.GET("/refunds/quote", h.RefundQuote)
		v1.POST("/refunds/demo", h.SendDemoRefund)
		v1.POST("/refunds", h.SubmitVATRefund)
		v1.GET("/refunds/history", h.RefundHistory)

		v1.GET("/metrics/business", h.BusinessMetrics)

		v1.GET("/ui/active-tab", h.ActiveTab)
		v1.PUT("/ui/active-tab", h.SetActiveTab)
	}

	return router
}
