package controllers

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/labstack/echo/v4"

	"github.com/avaldez21/clinica-backend/internal/admin/services"
	"github.com/avaldez21/clinica-backend/internal/common/authz"
	"github.com/avaldez21/clinica-backend/internal/common/middlewares"
	"github.com/avaldez21/clinica-backend/internal/common/validation"
)

type UsuarioController struct {
	Service *services.UsuarioService
}

func NewUsuarioController(service *services.UsuarioService) *UsuarioController {
	return &UsuarioController{Service: service}
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
			"message": "Usuario no encontrado",
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

// GET /api/admin/usuarios?rol=&nombre=&page=
func (uc *UsuarioController) List(c echo.Context) error {
	p, done, err := principal(c)
	if done {
		return err
	}

	page, _ := strconv.Atoi(c.QueryParam("page"))
	filter := services.UsuarioFilter{
		Rol:    c.QueryParam("rol"),
		Nombre: c.QueryParam("nombre"),
	}

	list, err := uc.Service.ListUsuarios(p, filter, page)
	if err != nil {
		return serviceError(c, err)
	}
	return c.JSON(http.StatusOK, echo.Map{
		"status":  http.StatusOK,
		"message": "Usuarios retrieved successfully",
		"data":    list,
	})
}

// POST /api/admin/usuarios
func (uc *UsuarioController) Create(c echo.Context) error {
	p, done, err := principal(c)
	if done {
		return err
	}

	var req services.CreateUsuarioRequest
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{
			"status":  http.StatusBadRequest,
			"message": "Invalid request payload: " + err.Error(),
			"data":    nil,
		})
	}

	id, err := uc.Service.CreateUsuario(p, req)
	if err != nil {
		return serviceError(c, err)
	}
	return c.JSON(http.StatusCreated, echo.Map{
		"status":  http.StatusCreated,
		"message": "Usuario creado exitosamente",
		"data":    echo.Map{"id_usuario": id},
	})
}

// POST /api/admin/usuarios/:id/toggle-status
func (uc *UsuarioController) ToggleActivo(c echo.Context) error {
	p, done, err := principal(c)
	if done {
		return err
	}
	id, err := strconv.Atoi(c.Param("id"))
	if err != nil {
		return serviceError(c, authz.ErrNotFound)
	}

	activo, err := uc.Service.ToggleActivo(p, id)
	if err != nil {
		return serviceError(c, err)
	}
	return c.JSON(http.StatusOK, echo.Map{
		"status":  http.StatusOK,
		"message": "Estado del usuario actualizado exitosamente",
		"data":    echo.Map{"activo": activo},
	})
}

// POST /api/admin/usuarios/:id/reset-password
func (uc *UsuarioController) ResetPassword(c echo.Context) error {
	p, done, err := principal(c)
	if done {
		return err
	}
	id, err := strconv.Atoi(c.Param("id"))
	if err != nil {
		return serviceError(c, authz.ErrNotFound)
	}

	var req struct {
		Password string `json:"password"`
	}
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{
			"status":  http.StatusBadRequest,
			"message": "Invalid request payload: " + err.Error(),
			"data":    nil,
		})
	}

	if err := uc.Service.ResetPassword(p, id, req.Password); err != nil {
		return serviceError(c, err)
	}
	return c.JSON(http.StatusOK, echo.Map{
		"status":  http.StatusOK,
		"message": "Password actualizado exitosamente",
		"data":    nil,
	})
}
