package middlewares

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/labstack/echo/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/avaldez21/clinica-backend/pkg/utils"
)

func okHandler(c echo.Context) error {
	return c.String(http.StatusOK, "ok")
}

func doRequest(t *testing.T, mw echo.MiddlewareFunc, header string) *httptest.ResponseRecorder {
	t.Helper()
	e := echo.New()
	req := httptest.NewRequest(http.MethodGet, "/api/diagnosticos", nil)
	if header != "" {
		req.Header.Set("Authorization", header)
	}
	rec := httptest.NewRecorder()
	c := e.NewContext(req, rec)

	err := mw(okHandler)(c)
	require.NoError(t, err)
	return rec
}

func TestJWTMiddlewareSinHeader(t *testing.T) {
	t.Setenv("JWT_SECRET", "test-secret")
	rec := doRequest(t, JWTMiddleware(), "")
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
}

func TestJWTMiddlewareHeaderMalformado(t *testing.T) {
	t.Setenv("JWT_SECRET", "test-secret")
	rec := doRequest(t, JWTMiddleware(), "Token abc")
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
}

func TestJWTMiddlewareTokenInvalido(t *testing.T) {
	t.Setenv("JWT_SECRET", "test-secret")
	rec := doRequest(t, JWTMiddleware(), "Bearer basura")
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
}

func TestJWTMiddlewareTokenValido(t *testing.T) {
	t.Setenv("JWT_SECRET", "test-secret")

	token, err := utils.GenerateJWTToken(5, "medico", 2, 0, "Dr. Vega", time.Now().Add(time.Hour))
	require.NoError(t, err)

	rec := doRequest(t, JWTMiddleware(), "Bearer "+token)
	assert.Equal(t, http.StatusOK, rec.Code)
}

func TestRequireRole(t *testing.T) {
	t.Setenv("JWT_SECRET", "test-secret")
	e := echo.New()

	run := func(rol string, idMedico, idPaciente int, allowed ...string) int {
		claims := &utils.Claims{IDUsuario: 1, Rol: rol, IDMedico: idMedico, IDPaciente: idPaciente}
		req := httptest.NewRequest(http.MethodGet, "/", nil)
		rec := httptest.NewRecorder()
		c := e.NewContext(req, rec)
		c.Set(string(ContextKeyClaims), claims)

		err := RequireRole(allowed...)(okHandler)(c)
		require.NoError(t, err)
		return rec.Code
	}

	assert.Equal(t, http.StatusOK, run("medico", 2, 0, "medico", "paciente"))
	assert.Equal(t, http.StatusOK, run("paciente", 0, 3, "medico", "paciente"))
	assert.Equal(t, http.StatusForbidden, run("paciente", 0, 3, "administrador"))
}

func TestPrincipalFromContextPerfilFaltante(t *testing.T) {
	e := echo.New()
	req := httptest.NewRequest(http.MethodGet, "/", nil)
	c := e.NewContext(req, httptest.NewRecorder())
	c.Set(string(ContextKeyClaims), &utils.Claims{IDUsuario: 1, Rol: "medico"})

	_, err := PrincipalFromContext(c)
	assert.Error(t, err)
}
