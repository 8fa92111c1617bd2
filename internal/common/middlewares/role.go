package middlewares

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/avaldez21/clinica-backend/pkg/utils"
)

// RequireRole rejects the request unless the JWT role matches one of the
// given roles. Must run after JWTMiddleware.
func RequireRole(roles ...string) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			rawClaims := c.Get(string(ContextKeyClaims))
			claims, ok := rawClaims.(*utils.Claims)
			if !ok || claims == nil {
				return c.JSON(http.StatusUnauthorized, echo.Map{
					"status":  http.StatusUnauthorized,
					"message": "Missing or invalid JWT claims",
					"data":    nil,
				})
			}

			for _, r := range roles {
				if claims.Rol == r {
					return next(c)
				}
			}

			return c.JSON(http.StatusForbidden, echo.Map{
				"status":  http.StatusForbidden,
				"message": "No tienes permisos para acceder a este recurso",
				"data":    nil,
			})
		}
	}
}
