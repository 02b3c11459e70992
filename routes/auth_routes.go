package routes

import (
	"github.com/labstack/echo/v4"

	"github.com/rescuenear/rescuenear_backend/controllers"
)

// RegisterAuthRoutes sets up all authentication routes
func RegisterAuthRoutes(e *echo.Echo, authController *controllers.AuthController) {
	e.POST("/api/signup", authController.Signup)
	e.POST("/api/login", authController.Login)
	e.POST("/api/verify", authController.VerifyOTP)
	e.POST("/api/verify-payment", authController.VerifyPayment)
}
