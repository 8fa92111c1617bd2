package validation

import (
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCollectorReportaTodosLosCampos(t *testing.T) {
	v := NewCollector()
	v.Require("nombre", "", 255)
	v.Require("dosis", "", 255)
	v.RequireDate("fecha_inicio", "ayer")
	v.RequireID("id_paciente", 0)

	err := v.Err()
	require.Error(t, err)

	vErr, ok := err.(*ValidationError)
	require.True(t, ok)
	assert.Len(t, vErr.Fields, 4)
	assert.Contains(t, vErr.Fields, "nombre")
	assert.Contains(t, vErr.Fields, "dosis")
	assert.Contains(t, vErr.Fields, "fecha_inicio")
	assert.Contains(t, vErr.Fields, "id_paciente")
}

func TestCollectorSinErrores(t *testing.T) {
	v := NewCollector()
	v.Require("nombre", "Paracetamol", 255)
	fecha := v.RequireDate("fecha", "2024-01-10")
	assert.NoError(t, v.Err())
	assert.Equal(t, time.Date(2024, 1, 10, 0, 0, 0, 0, time.UTC), fecha)
}

func TestRequireMaximo(t *testing.T) {
	v := NewCollector()
	v.Require("descripcion", strings.Repeat("a", 1001), 1000)
	err := v.Err()
	require.Error(t, err)
	assert.Contains(t, err.(*ValidationError).Fields, "descripcion")
}

func TestRequireMaximoCuentaCaracteres(t *testing.T) {
	// ñ is two bytes; 255 of them still fit a max of 255 characters
	v := NewCollector()
	v.Require("nombre", strings.Repeat("ñ", 255), 255)
	assert.NoError(t, v.Err())

	v = NewCollector()
	v.Require("nombre", strings.Repeat("ñ", 256), 255)
	require.Error(t, v.Err())
}

func TestOptionalVacioPasa(t *testing.T) {
	v := NewCollector()
	v.Optional("observaciones", "", 255)
	assert.NoError(t, v.Err())
}

func TestAddPrimerMensajeGana(t *testing.T) {
	v := NewCollector()
	v.Add("email", "primero")
	v.Add("email", "segundo")
	assert.Equal(t, "primero", v.Err().(*ValidationError).Fields["email"])
}
