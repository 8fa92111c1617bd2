package controllers

import (
	"errors"
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/avaldez21/clinica-backend/internal/clinico/services"
	"github.com/avaldez21/clinica-backend/internal/common/authz"
	"github.com/avaldez21/clinica-backend/internal/common/validation"
)

// serviceError maps the shared error taxonomy onto the response envelope.
// Validation failures carry the field map in data so the client can
// re-render the form with every message at once.
func serviceError(c echo.Context, err error) error {
	var vErr *validation.ValidationError
	switch {
	case errors.Is(err, authz.ErrRoleForbidden):
		return c.JSON(http.StatusForbidden, echo.Map{
			"status":  http.StatusForbidden,
			"message": "Tu rol no permite esta operacion",
			"data":    nil,
		})
	case errors.Is(err, authz.ErrOwnershipForbidden):
		return c.JSON(http.StatusForbidden, echo.Map{
			"status":  http.StatusForbidden,
			"message": "No tienes permisos sobre este registro",
			"data":    nil,
		})
	case errors.Is(err, authz.ErrNotFound):
		return c.JSON(http.StatusNotFound, echo.Map{
			"status":  http.StatusNotFound,
			"message": "Registro no encontrado",
			"data":    nil,
		})
	case errors.Is(err, services.ErrDiagnosticoEnUso):
		return c.JSON(http.StatusConflict, echo.Map{
			"status":  http.StatusConflict,
			"message": "El diagnostico tiene tratamientos asociados",
			"data":    nil,
		})
	case errors.As(err, &vErr):
		return c.JSON(http.StatusUnprocessableEntity, echo.Map{
			"status":  http.StatusUnprocessableEntity,
			"message": "Datos invalidos",
			"data":    vErr.Fields,
		})
	default:
		return c.JSON(http.StatusInternalServerError, echo.Map{
			"status":  http.StatusInternalServerError,
			"message": "Error interno: " + err.Error(),
			"data":    nil,
		})
	}
}
