package controllers

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/labstack/echo/v4"

	"github.com/avaldez21/clinica-backend/internal/clinico/models"
	"github.com/avaldez21/clinica-backend/internal/clinico/services"
	"github.com/avaldez21/clinica-backend/internal/common/authz"
	"github.com/avaldez21/clinica-backend/internal/common/middlewares"
)

type DiagnosticoController struct {
	Service *services.DiagnosticoService
}

func NewDiagnosticoController(service *services.DiagnosticoService) *DiagnosticoController {
	return &DiagnosticoController{Service: service}
}

// principal resolves the caller or writes the appropriate failure. The
// bool reports whether the response was already written.
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

func pathID(c echo.Context) (int, error) {
	return strconv.Atoi(c.Param("id"))
}

// GET /api/diagnosticos?paciente=&fecha=&page=
func (dc *DiagnosticoController) List(c echo.Context) error {
	p, done, err := principal(c)
	if done {
		return err
	}

	page, _ := strconv.Atoi(c.QueryParam("page"))
	filter := models.DiagnosticoFilter{
		Paciente: c.QueryParam("paciente"),
		Fecha:    c.QueryParam("fecha"),
	}

	list, err := dc.Service.ListDiagnosticos(p, filter, page)
	if err != nil {
		return serviceError(c, err)
	}
	return c.JSON(http.StatusOK, echo.Map{
		"status":  http.StatusOK,
		"message": "Diagnosticos retrieved successfully",
		"data":    list,
	})
}

// GET /api/diagnosticos/:id
func (dc *DiagnosticoController) Get(c echo.Context) error {
	p, done, err := principal(c)
	if done {
		return err
	}
	id, err := pathID(c)
	if err != nil {
		return serviceError(c, authz.ErrNotFound)
	}

	d, err := dc.Service.GetDiagnostico(p, id)
	if err != nil {
		return serviceError(c, err)
	}
	return c.JSON(http.StatusOK, echo.Map{
		"status":  http.StatusOK,
		"message": "Diagnostico retrieved successfully",
		"data":    d,
	})
}

// POST /api/diagnosticos
func (dc *DiagnosticoController) Create(c echo.Context) error {
	p, done, err := principal(c)
	if done {
		return err
	}

	var req models.DiagnosticoRequest
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{
			"status":  http.StatusBadRequest,
			"message": "Invalid request payload: " + err.Error(),
			"data":    nil,
		})
	}

	id, err := dc.Service.CreateDiagnostico(p, req)
	if err != nil {
		return serviceError(c, err)
	}
	return c.JSON(http.StatusCreated, echo.Map{
		"status":  http.StatusCreated,
		"message": "Diagnostico creado exitosamente",
		"data":    echo.Map{"id_diagnostico": id},
	})
}

// PUT /api/diagnosticos/:id
func (dc *DiagnosticoController) Update(c echo.Context) error {
	p, done, err := principal(c)
	if done {
		return err
	}
	id, err := pathID(c)
	if err != nil {
		return serviceError(c, authz.ErrNotFound)
	}

	var req models.DiagnosticoUpdateRequest
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{
			"status":  http.StatusBadRequest,
			"message": "Invalid request payload: " + err.Error(),
			"data":    nil,
		})
	}

	if err := dc.Service.UpdateDiagnostico(p, id, req); err != nil {
		return serviceError(c, err)
	}
	return c.JSON(http.StatusOK, echo.Map{
		"status":  http.StatusOK,
		"message": "Diagnostico actualizado exitosamente",
		"data":    nil,
	})
}

// DELETE /api/diagnosticos/:id
func (dc *DiagnosticoController) Delete(c echo.Context) error {
	p, done, err := principal(c)
	if done {
		return err
	}
	id, err := pathID(c)
	if err != nil {
		return serviceError(c, authz.ErrNotFound)
	}

	if err := dc.Service.DeleteDiagnostico(p, id); err != nil {
		return serviceError(c, err)
	}
	return c.JSON(http.StatusOK, echo.Map{
		"status":  http.StatusOK,
		"message": "Diagnostico eliminado exitosamente",
		"data":    nil,
	})
}
