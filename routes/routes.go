package routes

import (
	"os"
	"strings"

	"maidgroup-backend/config"
	"maidgroup-backend/controllers"
	"maidgroup-backend/utils"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
)

func SetupRouter(invoiceCtl *controllers.InvoiceController, consultationCtl *controllers.ConsultationController) *gin.Engine {
	r := gin.Default()

	origins := []string{"http://localhost:3000"}
	if env := os.Getenv("CORS_ORIGINS"); env != "" {
		origins = strings.Split(env, ",")
	}
	r.Use(cors.New(cors.Config{
		AllowOrigins:     origins,
		AllowMethods:     []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
		AllowHeaders:     []string{"Origin", "Authorization", "Content-Type"},
		ExposeHeaders:    []string{"Content-Length"},
		AllowCredentials: true,
	}))

	r.Use(config.PerformanceLogger())

	auth := r.Group("/auth")
	{
		auth.POST("/register", controllers.Register)
		auth.POST("/login", controllers.Login)

		auth.Use(utils.AuthMiddleware())
		auth.GET("/me", controllers.Me)
	}

	// Inbound channels from external systems carry their own authentication
	// (webhook signature, sender phone number) and bypass the JWT middleware.
	r.POST("/invoices/webhook", invoiceCtl.HandleWebhook)
	r.POST("/consultations/sms/reply", consultationCtl.HandleInboundSMS)

	api := r.Group("/api")
	api.Use(utils.AuthMiddleware())
	{
		// Invoice routes
		invoices := api.Group("/invoices")
		{
			invoices.POST("", invoiceCtl.Create)
			invoices.GET("", invoiceCtl.GetInvoices)
			invoices.GET("/:id", invoiceCtl.GetInvoice)
			invoices.GET("/order/:orderReference", invoiceCtl.GetInvoiceByOrderReference)
			invoices.PUT("/:id", invoiceCtl.Update)
			invoices.DELETE("/:id", invoiceCtl.Delete)
			invoices.DELETE("/order/:orderReference", invoiceCtl.DeleteByOrderReference)
			invoices.POST("/:id/send-link", invoiceCtl.SendPaymentLink)
			invoices.POST("/order/:orderReference/send", invoiceCtl.SendInvoiceDocument)
		}

		// Consultation routes
		consultations := api.Group("/consultations")
		{
			consultations.POST("", consultationCtl.Create)
			consultations.GET("", consultationCtl.GetConsultations)
			consultations.GET("/:id", consultationCtl.GetConsultation)
			consultations.PUT("/:id", consultationCtl.Update)
			consultations.DELETE("/:id", consultationCtl.Delete)
		}
	}

	return r
}
