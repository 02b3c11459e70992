package controllers

import (
	"context"
	"errors"
	"log"
	"net/http"
	"os"
	"time"

	"github.com/labstack/echo/v4"

	"github.com/rescuenear/rescuenear_backend/models"
	"github.com/rescuenear/rescuenear_backend/repositories"
)

// PatientController handles the intake record log
type PatientController struct {
	patients repositories.PatientRepository
	logger   *log.Logger
}

// NewPatientController creates a new patient controller
func NewPatientController(patients repositories.PatientRepository) *PatientController {
	return &PatientController{
		patients: patients,
		logger:   log.New(os.Stdout, "[PATIENT] ", log.LstdFlags),
	}
}

// CreatePatient appends a new intake record
func (pc *PatientController) CreatePatient(c echo.Context) error {
	ctx, cancel := context.WithTimeout(c.Request().Context(), 10*time.Second)
	defer cancel()

	var req models.PatientRequest
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, models.Response{
			Success: false,
			Message: "Invalid request body",
		})
	}
	if err := c.Validate(&req); err != nil {
		return c.JSON(http.StatusBadRequest, models.Response{
			Success: false,
			Message: "Missing fields",
		})
	}

	patient := &models.Patient{
		Fullname:  req.Fullname,
		Age:       req.Age,
		Location:  req.Location,
		Condition: req.Condition,
	}
	if err := pc.patients.Create(ctx, patient); err != nil {
		pc.logger.Printf("patient save error: %v", err)
		return c.JSON(http.StatusInternalServerError, models.Response{
			Success: false,
			Message: "Server error",
		})
	}

	return c.JSON(http.StatusOK, models.Response{
		Success: true,
		Message: "Patient registered successfully",
	})
}

// GetLatestPatient returns the most recently registered patient
func (pc *PatientController) GetLatestPatient(c echo.Context) error {
	ctx, cancel := context.WithTimeout(c.Request().Context(), 10*time.Second)
	defer cancel()

	patient, err := pc.patients.FindLatest(ctx)
	if err != nil {
		if errors.Is(err, repositories.ErrNoPatients) {
			return c.JSON(http.StatusOK, models.Response{
				Success: false,
				Message: "No patient found",
			})
		}
		pc.logger.Printf("fetch patient error: %v", err)
		return c.JSON(http.StatusInternalServerError, models.Response{
			Success: false,
			Message: "Server error",
		})
	}

	return c.JSON(http.StatusOK, models.Response{
		Success: true,
		Message: "Latest patient",
		Data:    patient,
	})
}
