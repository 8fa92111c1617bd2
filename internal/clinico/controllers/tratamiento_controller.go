package controllers

import (
	"net/http"
	"strconv"

	"github.com/labstack/echo/v4"

	"github.com/avaldez21/clinica-backend/internal/clinico/models"
	"github.com/avaldez21/clinica-backend/internal/clinico/services"
	"github.com/avaldez21/clinica-backend/internal/common/authz"
)

type TratamientoController struct {
	Service *services.TratamientoService
}

func NewTratamientoController(service *services.TratamientoService) *TratamientoController {
	return &TratamientoController{Service: service}
}

// GET /api/tratamientos?paciente=&estado=&page=
func (tc *TratamientoController) List(c echo.Context) error {
	p, done, err := principal(c)
	if done {
		return err
	}

	page, _ := strconv.Atoi(c.QueryParam("page"))
	filter := models.TratamientoFilter{
		Paciente: c.QueryParam("paciente"),
		Estado:   c.QueryParam("estado"),
	}

	list, err := tc.Service.ListTratamientos(p, filter, page)
	if err != nil {
		return serviceError(c, err)
	}
	return c.JSON(http.StatusOK, echo.Map{
		"status":  http.StatusOK,
		"message": "Tratamientos retrieved successfully",
		"data":    list,
	})
}

// GET /api/paciente/tratamientos?page=
func (tc *TratamientoController) ListPaciente(c echo.Context) error {
	p, done, err := principal(c)
	if done {
		return err
	}

	page, _ := strconv.Atoi(c.QueryParam("page"))
	list, err := tc.Service.ListTratamientosPaciente(p, page)
	if err != nil {
		return serviceError(c, err)
	}
	return c.JSON(http.StatusOK, echo.Map{
		"status":  http.StatusOK,
		"message": "Tratamientos retrieved successfully",
		"data":    list,
	})
}

// GET /api/tratamientos/:id
func (tc *TratamientoController) Get(c echo.Context) error {
	p, done, err := principal(c)
	if done {
		return err
	}
	id, err := pathID(c)
	if err != nil {
		return serviceError(c, authz.ErrNotFound)
	}

	t, err := tc.Service.GetTratamiento(p, id)
	if err != nil {
		return serviceError(c, err)
	}
	return c.JSON(http.StatusOK, echo.Map{
		"status":  http.StatusOK,
		"message": "Tratamiento retrieved successfully",
		"data":    t,
	})
}

// POST /api/tratamientos
func (tc *TratamientoController) Create(c echo.Context) error {
	p, done, err := principal(c)
	if done {
		return err
	}

	var req models.TratamientoRequest
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{
			"status":  http.StatusBadRequest,
			"message": "Invalid request payload: " + err.Error(),
			"data":    nil,
		})
	}

	id, err := tc.Service.CreateTratamiento(p, req)
	if err != nil {
		return serviceError(c, err)
	}
	return c.JSON(http.StatusCreated, echo.Map{
		"status":  http.StatusCreated,
		"message": "Tratamiento creado exitosamente",
		"data":    echo.Map{"id_tratamiento": id},
	})
}

// PUT /api/tratamientos/:id
func (tc *TratamientoController) Update(c echo.Context) error {
	p, done, err := principal(c)
	if done {
		return err
	}
	id, err := pathID(c)
	if err != nil {
		return serviceError(c, authz.ErrNotFound)
	}

	var req models.TratamientoUpdateRequest
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{
			"status":  http.StatusBadRequest,
			"message": "Invalid request payload: " + err.Error(),
			"data":    nil,
		})
	}

	if err := tc.Service.UpdateTratamiento(p, id, req); err != nil {
		return serviceError(c, err)
	}
	return c.JSON(http.StatusOK, echo.Map{
		"status":  http.StatusOK,
		"message": "Tratamiento actualizado exitosamente",
		"data":    nil,
	})
}

// POST /api/tratamientos/:id/toggle-status
func (tc *TratamientoController) ToggleEstado(c echo.Context) error {
	p, done, err := principal(c)
	if done {
		return err
	}
	id, err := pathID(c)
	if err != nil {
		return serviceError(c, authz.ErrNotFound)
	}

	activo, err := tc.Service.ToggleEstado(p, id)
	if err != nil {
		return serviceError(c, err)
	}
	return c.JSON(http.StatusOK, echo.Map{
		"status":  http.StatusOK,
		"message": "Estado del tratamiento actualizado exitosamente",
		"data":    echo.Map{"activo": activo},
	})
}

// DELETE /api/tratamientos/:id
func (tc *TratamientoController) Delete(c echo.Context) error {
	p, done, err := principal(c)
	if done {
		return err
	}
	id, err := pathID(c)
	if err != nil {
		return serviceError(c, authz.ErrNotFound)
	}

	if err := tc.Service.DeleteTratamiento(p, id); err != nil {
		return serviceError(c, err)
	}
	return c.JSON(http.StatusOK, echo.Map{
		"status":  http.StatusOK,
		"message": "Tratamiento eliminado exitosamente",
		"data":    nil,
	})
}
