package controllers

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/avaldez21/clinica-backend/internal/citas/services"
)

type MedicoController struct {
	Service *services.MedicoService
}

func NewMedicoController(service *services.MedicoService) *MedicoController {
	return &MedicoController{Service: service}
}

// GET /api/medicos
func (mc *MedicoController) ListMedicos(c echo.Context) error {
	list, err := mc.Service.ListMedicos()
	if err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{
			"status":  http.StatusInternalServerError,
			"message": "Failed to retrieve medicos: " + err.Error(),
			"data":    nil,
		})
	}
	return c.JSON(http.StatusOK, echo.Map{
		"status":  http.StatusOK,
		"message": "Medicos retrieved successfully",
		"data":    list,
	})
}

// GET /api/especialidades
func (mc *MedicoController) ListEspecialidades(c echo.Context) error {
	list, err := mc.Service.ListEspecialidades()
	if err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{
			"status":  http.StatusInternalServerError,
			"message": "Failed to retrieve especialidades: " + err.Error(),
			"data":    nil,
		})
	}
	return c.JSON(http.StatusOK, echo.Map{
		"status":  http.StatusOK,
		"message": "Especialidades retrieved successfully",
		"data":    list,
	})
}
