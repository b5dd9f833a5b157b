package api

import (
	"log/slog"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/mutualaid-ledger/internal/api/handler"
	"github.com/mutualaid-ledger/internal/api/middleware"
)

// setupRouter configures API routes and middleware for the application
func setupRouter(
	logger *slog.Logger,
	r *gin.Engine,
	billingHandler *handler.BillingHandler,
	paymentHandler *handler.PaymentHandler,
	benefitHandler *handler.BenefitHandler,
	queryHandler *handler.QueryHandler,
) {
	r.Use(middleware.Recovery(logger))
	r.Use(middleware.Logger(logger))
	r.Use(middleware.CorrelationID())

	// API v1 endpoints
	v1 := r.Group("/api/v1")
	{
		// Dues billing
		bills := v1.Group("/bills")
		{
			bills.POST("/generate", billingHandler.GenerateBills)
			bills.POST("", billingHandler.CreateBill)
			bills.GET("/:id", billingHandler.GetBill)
			bills.DELETE("/:id", billingHandler.DeleteBill)
			bills.GET("/:id/payments", billingHandler.ListBillPayments)
		}

		// Household statement
		households := v1.Group("/households")
		{
			households.GET("/:key/bills", queryHandler.GetHouseholdStatement)
		}

		// Bills by billing period
		periods := v1.Group("/periods")
		{
			periods.GET("/:period/bills", billingHandler.ListPeriodBills)
		}

		// Payment submission and review
		payments := v1.Group("/payments")
		{
			payments.POST("", paymentHandler.SubmitPayment)
			payments.GET("/pending", paymentHandler.ListPendingPayments)
			payments.GET("/:id", paymentHandler.GetPayment)
			payments.POST("/:id/approve", paymentHandler.ApprovePayment)
			payments.POST("/:id/reject", paymentHandler.RejectPayment)
		}

		// Death records and benefits
		deaths := v1.Group("/deaths")
		{
			deaths.POST("", benefitHandler.RecordDeath)
			deaths.GET("/:id", benefitHandler.GetDeathRecord)
			deaths.POST("/:id/reverse", benefitHandler.ReverseDeath)
		}
		benefits := v1.Group("/benefits")
		{
			benefits.GET("", benefitHandler.ListBenefits)
			benefits.GET("/:id", benefitHandler.GetBenefit)
			benefits.POST("/:id/disburse", benefitHandler.DisburseBenefit)
		}

		// Cash ledger
		ledger := v1.Group("/ledger")
		{
			ledger.GET("", queryHandler.ListLedgerEntries)
			ledger.GET("/balance", queryHandler.GetBalance)
		}

		// Archived domain event history
		v1.GET("/events", queryHandler.ListAggregateEvents)
	}

	// Health check endpoint for monitoring
	r.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok", "timestamp": time.Now().UTC()})
	})
}
