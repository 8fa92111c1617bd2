package middlewares

import (
	"errors"

	"github.com/labstack/echo/v4"

	"github.com/avaldez21/clinica-backend/internal/common/authz"
	"github.com/avaldez21/clinica-backend/pkg/utils"
)

var ErrNoClaims = errors.New("missing or invalid token claims")

// PrincipalFromContext rebuilds the Principal from the claims stored by
// JWTMiddleware.
func PrincipalFromContext(c echo.Context) (*authz.Principal, error) {
	claims, ok := c.Get(string(ContextKeyClaims)).(*utils.Claims)
	if !ok || claims == nil {
		return nil, ErrNoClaims
	}
	return authz.FromClaims(claims)
}
