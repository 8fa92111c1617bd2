package controllers

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/labstack/echo/v4"

	"github.com/avaldez21/clinica-backend/internal/common/authz"
	"github.com/avaldez21/clinica-backend/internal/common/middlewares"
	"github.com/avaldez21/clinica-backend/internal/common/validation"
	"github.com/avaldez21/clinica-backend/internal/pacientes/models"
	"github.com/avaldez21/clinica-backend/internal/pacientes/services"
)

type PacienteController struct {
	Service *services.PacienteService
}

func NewPacienteController(service *services.PacienteService) *PacienteController {
	return &PacienteController{Service: service}
}

func principal(c echo.Context) (*authz.Principal, bool, error) {
	p, err := middlewares.PrincipalFromContext(c)
	if err == nil {
		return p, false, nil
	}
	if errors.Is(err, authz.ErrProfileMissing) {
		return nil, true, c.JSON(http.StatusInternalServerError, echo.Map{
			"status":  http.StatusInternalServerError,
			"message": "El usuario no tiene perfil vinculado",
			"data":    nil,
		})
	}
	return nil, true, c.JSON(http.StatusUnauthorized, echo.Map{
		"status":  http.StatusUnauthorized,
		"message": "Invalid or missing token claims",
		"data":    nil,
	})
}

func serviceError(c echo.Context, err error) error {
	var vErr *validation.ValidationError
	switch {
	case errors.Is(err, authz.ErrRoleForbidden):
		return c.JSON(http.StatusForbidden, echo.Map{
			"status":  http.StatusForbidden,
			"message": "Tu rol no permite esta operacion",
			"data":    nil,
		})
	case errors.Is(err, authz.ErrNotFound):
		return c.JSON(http.StatusNotFound, echo.Map{
			"status":  http.StatusNotFound,
			"message": "Paciente no encontrado",
			"data":    nil,
		})
	case errors.Is(err, services.ErrPacienteEnUso):
		return c.JSON(http.StatusConflict, echo.Map{
			"status":  http.StatusConflict,
			"message": "El paciente tiene registros asociados",
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

// GET /api/medico/pacientes?nombre=&page=
func (pc *PacienteController) List(c echo.Context) error {
	p, done, err := principal(c)
	if done {
		return err
	}

	page, _ := strconv.Atoi(c.QueryParam("page"))
	filter := models.PacienteFilter{Nombre: c.QueryParam("nombre")}

	list, err := pc.Service.ListPacientes(p, filter, page)
	if err != nil {
		return serviceError(c, err)
	}
	return c.JSON(http.StatusOK, echo.Map{
		"status":  http.StatusOK,
		"message": "Pacientes retrieved successfully",
		"data":    list,
	})
}

// GET /api/medico/pacientes/:id
func (pc *PacienteController) Get(c echo.Context) error {
	p, done, err := principal(c)
	if done {
		return err
	}
	id, err := strconv.Atoi(c.Param("id"))
	if err != nil {
		return serviceError(c, authz.ErrNotFound)
	}

	pa, err := pc.Service.GetPaciente(p, id)
	if err != nil {
		return serviceError(c, err)
	}
	return c.JSON(http.StatusOK, echo.Map{
		"status":  http.StatusOK,
		"message": "Paciente retrieved successfully",
		"data":    pa,
	})
}

// POST /api/medico/pacientes
func (pc *PacienteController) Create(c echo.Context) error {
	p, done, err := principal(c)
	if done {
		return err
	}

	var req models.PacienteRequest
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{
			"status":  http.StatusBadRequest,
			"message": "Invalid request payload: " + err.Error(),
			"data":    nil,
		})
	}

	id, err := pc.Service.CreatePaciente(p, req)
	if err != nil {
		return serviceError(c, err)
	}
	return c.JSON(http.StatusCreated, echo.Map{
		"status":  http.StatusCreated,
		"message": "Paciente registrado exitosamente",
		"data":    echo.Map{"id_paciente": id},
	})
}

// PUT /api/medico/pacientes/:id
func (pc *PacienteController) Update(c echo.Context) error {
	p, done, err := principal(c)
	if done {
		return err
	}
	id, err := strconv.Atoi(c.Param("id"))
	if err != nil {
		return serviceError(c, authz.ErrNotFound)
	}

	var req models.PacienteUpdateRequest
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{
			"status":  http.StatusBadRequest,
			"message": "Invalid request payload: " + err.Error(),
			"data":    nil,
		})
	}

	if err := pc.Service.UpdatePaciente(p, id, req); err != nil {
		return serviceError(c, err)
	}
	return c.JSON(http.StatusOK, echo.Map{
		"status":  http.StatusOK,
		"message": "Paciente actualizado exitosamente",
		"data":    nil,
	})
}

// POST /api/medico/pacientes/:id/toggle-status
func (pc *PacienteController) ToggleEstado(c echo.Context) error {
	p, done, err := principal(c)
	if done {
		return err
	}
	id, err := strconv.Atoi(c.Param("id"))
	if err != nil {
		return serviceError(c, authz.ErrNotFound)
	}

	activo, err := pc.Service.ToggleEstado(p, id)
	if err != nil {
		return serviceError(c, err)
	}
	return c.JSON(http.StatusOK, echo.Map{
		"status":  http.StatusOK,
		"message": "Estado del paciente actualizado exitosamente",
		"data":    echo.Map{"activo": activo},
	})
}

// DELETE /api/medico/pacientes/:id
func (pc *PacienteController) Delete(c echo.Context) error {
	p, done, err := principal(c)
	if done {
		return err
	}
	id, err := strconv.Atoi(c.Param("id"))
	if err != nil {
		return serviceError(c, authz.ErrNotFound)
	}

	if err := pc.Service.DeletePaciente(p, id); err != nil {
		return serviceError(c, err)
	}
	return c.JSON(http.StatusOK, echo.Map{
		"status":  http.StatusOK,
		"message": "Paciente eliminado exitosamente",
		"data":    nil,
	})
}
