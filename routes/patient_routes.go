package routes

import (
	"github.com/labstack/echo/v4"

	"github.com/rescuenear/rescuenear_backend/controllers"
)

// RegisterPatientRoutes sets up the patient intake routes
func RegisterPatientRoutes(e *echo.Echo, patientController *controllers.PatientController) {
	e.POST("/api/patient", patientController.CreatePatient)
	e.GET("/api/patient/latest", patientController.GetLatestPatient)
}
