package services

import (
	"database/sql"
	"regexp"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/avaldez21/clinica-backend/internal/clinico/models"
	"github.com/avaldez21/clinica-backend/internal/common/authz"
	"github.com/avaldez21/clinica-backend/internal/common/validation"
)

func setupTratamientoService(t *testing.T) (*TratamientoService, sqlmock.Sqlmock) {
	t.Helper()
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })
	return NewTratamientoService(db), mock
}

func tratamientoRows(rows ...[]driverValue) *sqlmock.Rows {
	r := sqlmock.NewRows([]string{
		"id_tratamiento", "id_paciente", "id_medico", "id_diagnostico",
		"nombre", "dosis", "frecuencia", "duracion", "observaciones",
		"fecha_inicio", "activo", "nombre_paciente", "nombre_medico",
		"descripcion_diagnostico",
	})
	for _, row := range rows {
		r.AddRow(row...)
	}
	return r
}

func validTratamientoRequest() models.TratamientoRequest {
	return models.TratamientoRequest{
		IDPaciente:    9,
		IDDiagnostico: 3,
		Nombre:        "Amoxicilina",
		Dosis:         "500mg",
		Frecuencia:    "cada 8 horas",
		Duracion:      "7 dias",
		FechaInicio:   "2024-01-12",
	}
}

func expectPacienteExiste(mock sqlmock.Sqlmock, id int) {
	mock.ExpectQuery(regexp.QuoteMeta("SELECT 1 FROM pacientes WHERE id_paciente = ?")).
		WithArgs(id).
		WillReturnRows(sqlmock.NewRows([]string{"1"}).AddRow(1))
}

func expectDiagnosticoOwner(mock sqlmock.Sqlmock, id, owner int) {
	mock.ExpectQuery(regexp.QuoteMeta("SELECT id_medico FROM diagnosticos WHERE id_diagnostico = ?")).
		WithArgs(id).
		WillReturnRows(sqlmock.NewRows([]string{"id_medico"}).AddRow(owner))
}

func TestCreateTratamientoOK(t *testing.T) {
	s, mock := setupTratamientoService(t)
	p := medicoPrincipal(1)

	expectPacienteExiste(mock, 9)
	expectDiagnosticoOwner(mock, 3, 1)
	mock.ExpectExec("INSERT INTO tratamientos").
		WithArgs(9, 1, 3, "Amoxicilina", "500mg", "cada 8 horas", "7 dias",
			sql.NullString{}, time.Date(2024, 1, 12, 0, 0, 0, 0, time.UTC)).
		WillReturnResult(sqlmock.NewResult(11, 1))

	id, err := s.CreateTratamiento(p, validTratamientoRequest())
	require.NoError(t, err)
	assert.Equal(t, int64(11), id)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestCreateTratamientoDosisFaltante(t *testing.T) {
	s, mock := setupTratamientoService(t)
	p := medicoPrincipal(1)

	expectPacienteExiste(mock, 9)
	expectDiagnosticoOwner(mock, 3, 1)

	req := validTratamientoRequest()
	req.Dosis = ""

	_, err := s.CreateTratamiento(p, req)
	var vErr *validation.ValidationError
	require.ErrorAs(t, err, &vErr)
	assert.Contains(t, vErr.Fields, "dosis")
	assert.Len(t, vErr.Fields, 1)
}

func TestCreateTratamientoVariosCamposEnUnaRespuesta(t *testing.T) {
	s, _ := setupTratamientoService(t)
	p := medicoPrincipal(1)

	// everything wrong at once: one response lists every failing field
	_, err := s.CreateTratamiento(p, models.TratamientoRequest{FechaInicio: "pronto"})
	var vErr *validation.ValidationError
	require.ErrorAs(t, err, &vErr)
	for _, campo := range []string{"id_paciente", "id_diagnostico", "nombre", "dosis", "frecuencia", "duracion", "fecha_inicio"} {
		assert.Contains(t, vErr.Fields, campo)
	}
}

func TestCreateTratamientoDiagnosticoDeOtroMedico(t *testing.T) {
	s, mock := setupTratamientoService(t)
	p := medicoPrincipal(1)

	expectPacienteExiste(mock, 9)
	expectDiagnosticoOwner(mock, 3, 2) // authored by someone else

	_, err := s.CreateTratamiento(p, validTratamientoRequest())
	var vErr *validation.ValidationError
	require.ErrorAs(t, err, &vErr)
	assert.Contains(t, vErr.Fields, "id_diagnostico")
}

func TestCreateTratamientoRolPaciente(t *testing.T) {
	s, mock := setupTratamientoService(t)

	_, err := s.CreateTratamiento(pacientePrincipal(9), validTratamientoRequest())
	assert.ErrorIs(t, err, authz.ErrRoleForbidden)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func expectTratamientoEstado(mock sqlmock.Sqlmock, id int, activo bool, owner int) {
	mock.ExpectQuery(regexp.QuoteMeta("SELECT activo, id_medico FROM tratamientos WHERE id_tratamiento = ?")).
		WithArgs(id).
		WillReturnRows(sqlmock.NewRows([]string{"activo", "id_medico"}).AddRow(activo, owner))
}

func TestToggleEstadoDosVecesVuelveAlOriginal(t *testing.T) {
	s, mock := setupTratamientoService(t)
	p := medicoPrincipal(1)

	expectTratamientoEstado(mock, 11, true, 1)
	mock.ExpectExec("UPDATE tratamientos SET activo").
		WithArgs(false, 11).
		WillReturnResult(sqlmock.NewResult(0, 1))

	primero, err := s.ToggleEstado(p, 11)
	require.NoError(t, err)
	assert.False(t, primero)

	expectTratamientoEstado(mock, 11, false, 1)
	mock.ExpectExec("UPDATE tratamientos SET activo").
		WithArgs(true, 11).
		WillReturnResult(sqlmock.NewResult(0, 1))

	segundo, err := s.ToggleEstado(p, 11)
	require.NoError(t, err)
	assert.True(t, segundo)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestToggleEstadoOtroMedico(t *testing.T) {
	s, mock := setupTratamientoService(t)

	expectTratamientoEstado(mock, 11, true, 1)

	_, err := s.ToggleEstado(medicoPrincipal(2), 11)
	assert.ErrorIs(t, err, authz.ErrOwnershipForbidden)
}

func TestToggleEstadoNotFound(t *testing.T) {
	s, mock := setupTratamientoService(t)

	mock.ExpectQuery(regexp.QuoteMeta("SELECT activo, id_medico FROM tratamientos WHERE id_tratamiento = ?")).
		WithArgs(404).
		WillReturnError(sql.ErrNoRows)

	_, err := s.ToggleEstado(medicoPrincipal(1), 404)
	assert.ErrorIs(t, err, authz.ErrNotFound)
}

func TestListTratamientosScopePaciente(t *testing.T) {
	s, mock := setupTratamientoService(t)
	p := pacientePrincipal(9)

	inicio := time.Date(2024, 1, 12, 0, 0, 0, 0, time.UTC)
	mock.ExpectQuery("WHERE t.id_paciente = ?").
		WithArgs(9).
		WillReturnRows(tratamientoRows(
			[]driverValue{11, 9, 1, 3, "Amoxicilina", "500mg", "cada 8 horas", "7 dias", "",
				inicio, true, "Ana Lopez", "Dr. Test", "gripe"},
		))

	list, err := s.ListTratamientos(p, models.TratamientoFilter{Estado: "activo"}, 1)
	require.NoError(t, err)
	require.Len(t, list, 1)
	assert.Equal(t, 9, list[0].IDPaciente)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestListTratamientosFiltroEstado(t *testing.T) {
	s, mock := setupTratamientoService(t)
	p := medicoPrincipal(1)

	mock.ExpectQuery("t.activo = TRUE").
		WithArgs(1).
		WillReturnRows(tratamientoRows())

	_, err := s.ListTratamientos(p, models.TratamientoFilter{Estado: "activo"}, 1)
	require.NoError(t, err)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestListTratamientosPacienteRolMedico(t *testing.T) {
	s, _ := setupTratamientoService(t)
	_, err := s.ListTratamientosPaciente(medicoPrincipal(1), 1)
	assert.ErrorIs(t, err, authz.ErrRoleForbidden)
}

func TestUpdateTratamientoConservaActivoSinCampo(t *testing.T) {
	s, mock := setupTratamientoService(t)
	p := medicoPrincipal(1)

	expectTratamientoEstado(mock, 11, true, 1)
	mock.ExpectExec("UPDATE tratamientos").
		WithArgs("Ibuprofeno", "400mg", "cada 12 horas", "5 dias",
			sql.NullString{String: "con comida", Valid: true}, true, 11).
		WillReturnResult(sqlmock.NewResult(0, 1))

	err := s.UpdateTratamiento(p, 11, models.TratamientoUpdateRequest{
		Nombre:        "Ibuprofeno",
		Dosis:         "400mg",
		Frecuencia:    "cada 12 horas",
		Duracion:      "5 dias",
		Observaciones: "con comida",
	})
	require.NoError(t, err)
	assert.NoError(t, mock.ExpectationsWereMet())
}
