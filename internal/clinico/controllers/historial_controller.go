package controllers

import (
	"net/http"
	"strconv"

	"github.com/labstack/echo/v4"

	"github.com/avaldez21/clinica-backend/internal/clinico/services"
)

type HistorialController struct {
	Service *services.HistorialService
}

func NewHistorialController(service *services.HistorialService) *HistorialController {
	return &HistorialController{Service: service}
}

// GET /api/historial?id_paciente=   (medico)
// GET /api/paciente/historial       (paciente, id ignored)
func (hc *HistorialController) Get(c echo.Context) error {
	p, done, err := principal(c)
	if done {
		return err
	}

	idPaciente, _ := strconv.Atoi(c.QueryParam("id_paciente"))
	h, err := hc.Service.GetHistorial(p, idPaciente)
	if err != nil {
		return serviceError(c, err)
	}
	return c.JSON(http.StatusOK, echo.Map{
		"status":  http.StatusOK,
		"message": "Historial clinico retrieved successfully",
		"data":    h,
	})
}
