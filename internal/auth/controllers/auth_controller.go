package controllers

import (
	"net/http"
	"time"

	"github.com/labstack/echo/v4"

	"github.com/avaldez21/clinica-backend/internal/auth/models"
	"github.com/avaldez21/clinica-backend/internal/auth/services"
	"github.com/avaldez21/clinica-backend/internal/common/authz"
	"github.com/avaldez21/clinica-backend/internal/common/middlewares"
	"github.com/avaldez21/clinica-backend/pkg/utils"
)

type AuthController struct {
	Service *services.AuthService
}

func NewAuthController(service *services.AuthService) *AuthController {
	return &AuthController{Service: service}
}

// POST /api/login
func (ac *AuthController) Login(c echo.Context) error {
	var req models.LoginRequest
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{
			"status":  http.StatusBadRequest,
			"message": "Invalid request payload: " + err.Error(),
			"data":    nil,
		})
	}
	if req.Email == "" || req.Password == "" {
		return c.JSON(http.StatusBadRequest, echo.Map{
			"status":  http.StatusBadRequest,
			"message": "Email and password are required",
			"data":    nil,
		})
	}

	p, err := ac.Service.Authenticate(req.Email, req.Password)
	if err != nil {
		switch err {
		case services.ErrInvalidCredentials:
			return c.JSON(http.StatusUnauthorized, echo.Map{
				"status":  http.StatusUnauthorized,
				"message": "Email o password incorrectos",
				"data":    nil,
			})
		case services.ErrUsuarioInactivo:
			return c.JSON(http.StatusForbidden, echo.Map{
				"status":  http.StatusForbidden,
				"message": "La cuenta esta desactivada",
				"data":    nil,
			})
		case authz.ErrProfileMissing:
			// data integrity defect, not a client error
			return c.JSON(http.StatusInternalServerError, echo.Map{
				"status":  http.StatusInternalServerError,
				"message": "El usuario no tiene perfil vinculado",
				"data":    nil,
			})
		default:
			return c.JSON(http.StatusInternalServerError, echo.Map{
				"status":  http.StatusInternalServerError,
				"message": "Login failed: " + err.Error(),
				"data":    nil,
			})
		}
	}

	exp := time.Now().Add(8 * time.Hour)
	token, err := utils.GenerateJWTToken(p.IDUsuario, p.Rol, p.IDMedico, p.IDPaciente, p.Nombre, exp)
	if err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{
			"status":  http.StatusInternalServerError,
			"message": "Failed to generate token: " + err.Error(),
			"data":    nil,
		})
	}

	return c.JSON(http.StatusOK, echo.Map{
		"status":  http.StatusOK,
		"message": "Login exitoso",
		"data": models.LoginResponse{
			Token:      token,
			IDUsuario:  p.IDUsuario,
			Nombre:     p.Nombre,
			Rol:        p.Rol,
			IDMedico:   p.IDMedico,
			IDPaciente: p.IDPaciente,
		},
	})
}

// GET /api/session
func (ac *AuthController) CheckSession(c echo.Context) error {
	claims, ok := c.Get(string(middlewares.ContextKeyClaims)).(*utils.Claims)
	if !ok || claims == nil {
		return c.JSON(http.StatusUnauthorized, echo.Map{
			"status":  http.StatusUnauthorized,
			"message": "Invalid or missing token claims",
			"data":    nil,
		})
	}
	return c.JSON(http.StatusOK, echo.Map{
		"status":  http.StatusOK,
		"message": "Session activa",
		"data": echo.Map{
			"active":     true,
			"id_usuario": claims.IDUsuario,
			"rol":        claims.Rol,
		},
	})
}
