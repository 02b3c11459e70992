package main

import (
	"log"
	"os"

	"github.com/go-playground/validator/v10"
	"github.com/joho/godotenv"
	"github.com/labstack/echo/v4"
	echoMiddleware "github.com/labstack/echo/v4/middleware"

	"github.com/rescuenear/rescuenear_backend/config"
	"github.com/rescuenear/rescuenear_backend/controllers"
	"github.com/rescuenear/rescuenear_backend/middleware"
	"github.com/rescuenear/rescuenear_backend/repositories"
	"github.com/rescuenear/rescuenear_backend/routes"
	"github.com/rescuenear/rescuenear_backend/services"
)

// CustomValidator is a custom validator for Echo
type CustomValidator struct {
	validator *validator.Validate
}

// Validate validates the request body
func (cv *CustomValidator) Validate(i interface{}) error {
	return cv.validator.Struct(i)
}

func main() {
	// Load .env file
	err := godotenv.Load()
	if err != nil {
		log.Println("Warning: .env file not found")
	}

	// Connect to database
	client := config.ConnectDB()

	// Create a new Echo instance
	e := echo.New()

	// Initialize custom validator
	customValidator := &CustomValidator{validator: validator.New()}
	e.Validator = customValidator

	// Middleware
	e.Use(echoMiddleware.Logger())
	e.Use(echoMiddleware.Recover())
	e.Use(middleware.GlobalCORS())
	e.Use(echoMiddleware.Secure())

	e.GET("/health", func(c echo.Context) error {
		return c.JSON(200, map[string]string{
			"status":   "healthy",
			"database": "connected",
		})
	})

	// Initialize repositories
	userRepo := repositories.NewUserRepository(client)
	patientRepo := repositories.NewPatientRepository(client)

	// Initialize services
	otpService := services.NewOTPService(userRepo)
	mailer := services.NewSMTPMailer()
	paystackService := services.NewPaystackService()

	// Initialize controllers
	authController := controllers.NewAuthController(userRepo, otpService, mailer, paystackService)
	patientController := controllers.NewPatientController(patientRepo)

	// Register routes
	routes.RegisterAuthRoutes(e, authController)
	routes.RegisterPatientRoutes(e, patientController)

	// Serve the frontend (slide.html plus its assets) from public/
	e.File("/", "public/slide.html")
	e.Static("/", "public")

	// Start server
	port := os.Getenv("PORT")
	if port == "" {
		port = "3000"
	}
	e.Logger.Fatal(e.Start(":" + port))
}
