package controllers

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/labstack/echo/v4"

	"github.com/avaldez21/clinica-backend/internal/citas/models"
	"github.com/avaldez21/clinica-backend/internal/citas/services"
	"github.com/avaldez21/clinica-backend/internal/common/authz"
	"github.com/avaldez21/clinica-backend/internal/common/middlewares"
	"github.com/avaldez21/clinica-backend/internal/common/validation"
)

type CitaController struct {
	Service *services.CitaService
}

func NewCitaController(service *services.CitaService) *CitaController {
	return &CitaController{Service: service}
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
	case errors.Is(err, services.ErrSlotOcupado), errors.Is(err, services.ErrEstadoInvalido):
		return c.JSON(http.StatusConflict, echo.Map{
			"status":  http.StatusConflict,
			"message": err.Error(),
			"data":    nil,
		})
	case errors.Is(err, services.ErrFueraDeHorario):
		return c.JSON(http.StatusUnprocessableEntity, echo.Map{
			"status":  http.StatusUnprocessableEntity,
			"message": "Datos invalidos",
			"data":    map[string]string{"fecha_hora": "fuera del horario de consulta"},
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

// GET /api/citas?estado=&fecha=&page=
func (cc *CitaController) List(c echo.Context) error {
	p, done, err := principal(c)
	if done {
		return err
	}

	page, _ := strconv.Atoi(c.QueryParam("page"))
	filter := models.CitaFilter{
		Estado: c.QueryParam("estado"),
		Fecha:  c.QueryParam("fecha"),
	}

	list, err := cc.Service.ListCitas(p, filter, page)
	if err != nil {
		return serviceError(c, err)
	}
	return c.JSON(http.StatusOK, echo.Map{
		"status":  http.StatusOK,
		"message": "Citas retrieved successfully",
		"data":    list,
	})
}

// GET /api/citas/:id
func (cc *CitaController) Get(c echo.Context) error {
	p, done, err := principal(c)
	if done {
		return err
	}
	id, err := strconv.Atoi(c.Param("id"))
	if err != nil {
		return serviceError(c, authz.ErrNotFound)
	}

	cita, err := cc.Service.GetCita(p, id)
	if err != nil {
		return serviceError(c, err)
	}
	return c.JSON(http.StatusOK, echo.Map{
		"status":  http.StatusOK,
		"message": "Cita retrieved successfully",
		"data":    cita,
	})
}

// POST /api/citas
func (cc *CitaController) Create(c echo.Context) error {
	p, done, err := principal(c)
	if done {
		return err
	}

	var req models.CitaRequest
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{
			"status":  http.StatusBadRequest,
			"message": "Invalid request payload: " + err.Error(),
			"data":    nil,
		})
	}

	id, err := cc.Service.CreateCita(p, req)
	if err != nil {
		return serviceError(c, err)
	}
	return c.JSON(http.StatusCreated, echo.Map{
		"status":  http.StatusCreated,
		"message": "Cita creada exitosamente",
		"data":    echo.Map{"id_cita": id},
	})
}

// POST /api/citas/:id/confirmar
func (cc *CitaController) Confirmar(c echo.Context) error {
	return cc.estadoChange(c, cc.Service.Confirmar, "Cita confirmada exitosamente")
}

// POST /api/citas/:id/completar
func (cc *CitaController) Completar(c echo.Context) error {
	return cc.estadoChange(c, cc.Service.Completar, "Cita completada exitosamente")
}

// POST /api/citas/:id/cancelar
func (cc *CitaController) Cancelar(c echo.Context) error {
	return cc.estadoChange(c, cc.Service.Cancelar, "Cita cancelada exitosamente")
}

func (cc *CitaController) estadoChange(c echo.Context, op func(*authz.Principal, int) error, okMsg string) error {
	p, done, err := principal(c)
	if done {
		return err
	}
	id, err := strconv.Atoi(c.Param("id"))
	if err != nil {
		return serviceError(c, authz.ErrNotFound)
	}

	if err := op(p, id); err != nil {
		return serviceError(c, err)
	}
	return c.JSON(http.StatusOK, echo.Map{
		"status":  http.StatusOK,
		"message": okMsg,
		"data":    nil,
	})
}

// GET /api/citas/disponibilidad?id_medico=&fecha=
func (cc *CitaController) Disponibilidad(c echo.Context) error {
	if _, done, err := principal(c); done {
		return err
	}

	idMedico, err := strconv.Atoi(c.QueryParam("id_medico"))
	if err != nil || idMedico <= 0 {
		return serviceError(c, &validation.ValidationError{
			Fields: map[string]string{"id_medico": "el campo es obligatorio"},
		})
	}

	slots, err := cc.Service.Disponibilidad(idMedico, c.QueryParam("fecha"))
	if err != nil {
		return serviceError(c, err)
	}

	horas := make([]string, 0, len(slots))
	for _, s := range slots {
		horas = append(horas, s.Format("15:04"))
	}
	return c.JSON(http.StatusOK, echo.Map{
		"status":  http.StatusOK,
		"message": "Disponibilidad retrieved successfully",
		"data":    horas,
	})
}
