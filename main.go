package main

import (
	"fmt"
	"log"
	"os"

	"maidgroup-backend/config"
	"maidgroup-backend/controllers"
	"maidgroup-backend/models"
	"maidgroup-backend/payments"
	"maidgroup-backend/routes"
	"maidgroup-backend/services"

	"github.com/gin-gonic/gin"
	"github.com/joho/godotenv"
)

func init() {
	// Load environment variables
	if err := godotenv.Load(); err != nil {
		log.Println("No .env file found")
	}
	config.ConnectDB()

	config.DB.AutoMigrate(
		&models.User{},
		&models.Invoice{},
		&models.InvoiceItem{},
		&models.Consultation{},
	)
}

func main() {
	cfg := config.Load()

	square, err := payments.NewClient(cfg.SquareAccessToken, cfg.SquareBaseURL)
	if err != nil {
		log.Fatalf("Failed to create payment client: %v", err)
	}
	verifier := payments.NewSignatureVerifier(cfg.SquareSignatureKey, cfg.SquareNotificationURL)

	sms := services.NewTwilioSMS(cfg.TwilioFromNumber)
	mailer := services.NewSMTPMailer(cfg.SMTPHost, cfg.SMTPPort, cfg.SMTPUser, cfg.SMTPPass, cfg.SMTPFrom)

	invoiceService := services.NewInvoiceService(config.DB, square, mailer, sms, cfg.SquareLocationID)
	consultationService := services.NewConsultationService(config.DB, sms, cfg.AdminPhone)

	reminders := services.NewReminderService(config.DB, invoiceService, cfg.ReminderAfterDays)
	reminders.StartScheduler()

	invoiceCtl := controllers.NewInvoiceController(invoiceService, verifier)
	consultationCtl := controllers.NewConsultationController(consultationService)

	port := os.Getenv("PORT")
	if port == "" {
		port = "8080"
	}
	r := routes.SetupRouter(invoiceCtl, consultationCtl)
	printRoutes(r)
	r.Run(":" + port)
}

func printRoutes(r *gin.Engine) {
	routes := r.Routes()
	for _, route := range routes {
		fmt.Printf("%-6s %s\n", route.Method, route.Path)
	}
}
