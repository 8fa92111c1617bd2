package services

import (
	"database/sql"
	"regexp"
	"testing"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/avaldez21/clinica-backend/internal/citas/models"
	"github.com/avaldez21/clinica-backend/internal/common/authz"
	"github.com/avaldez21/clinica-backend/internal/common/validation"
)

func setupCitaService(t *testing.T) (*CitaService, sqlmock.Sqlmock) {
	t.Helper()
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })
	// nil hub: services under test broadcast nowhere
	return NewCitaService(db, nil), mock
}

func expectCitaEstado(mock sqlmock.Sqlmock, id int, estado string, idMedico, idPaciente int) {
	mock.ExpectQuery(regexp.QuoteMeta("SELECT estado, id_medico, id_paciente FROM citas WHERE id_cita = ?")).
		WithArgs(id).
		WillReturnRows(sqlmock.NewRows([]string{"estado", "id_medico", "id_paciente"}).
			AddRow(estado, idMedico, idPaciente))
}

func TestCreateCitaFueraDeGrilla(t *testing.T) {
	s, mock := setupCitaService(t)
	p := &authz.Principal{Rol: authz.RolPaciente, IDPaciente: 9}

	mock.ExpectQuery(regexp.QuoteMeta("SELECT 1 FROM pacientes WHERE id_paciente = ?")).
		WithArgs(9).
		WillReturnRows(sqlmock.NewRows([]string{"1"}).AddRow(1))
	mock.ExpectQuery(regexp.QuoteMeta("SELECT 1 FROM medicos WHERE id_medico = ?")).
		WithArgs(2).
		WillReturnRows(sqlmock.NewRows([]string{"1"}).AddRow(1))

	// 10:30 lands inside opening hours but between two hourly slots: that
	// is invalid input, never a slot conflict
	_, err := s.CreateCita(p, models.CitaRequest{
		IDMedico:  2,
		FechaHora: "2026-03-04 10:30",
		Motivo:    "control",
	})

	var vErr *validation.ValidationError
	require.ErrorAs(t, err, &vErr)
	assert.Contains(t, vErr.Fields, "fecha_hora")
	assert.NotErrorIs(t, err, ErrSlotOcupado)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestConfirmarCita(t *testing.T) {
	s, mock := setupCitaService(t)
	p := &authz.Principal{Rol: authz.RolMedico, IDMedico: 2}

	expectCitaEstado(mock, 4, models.EstadoPendiente, 2, 9)
	mock.ExpectExec("UPDATE citas SET estado").
		WithArgs(models.EstadoConfirmada, 4).
		WillReturnResult(sqlmock.NewResult(0, 1))

	require.NoError(t, s.Confirmar(p, 4))
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestConfirmarCitaDeOtroMedico(t *testing.T) {
	s, mock := setupCitaService(t)
	p := &authz.Principal{Rol: authz.RolMedico, IDMedico: 3}

	expectCitaEstado(mock, 4, models.EstadoPendiente, 2, 9)

	assert.ErrorIs(t, s.Confirmar(p, 4), authz.ErrOwnershipForbidden)
}

func TestCompletarCitaPendiente(t *testing.T) {
	s, mock := setupCitaService(t)
	p := &authz.Principal{Rol: authz.RolMedico, IDMedico: 2}

	// completar requires a confirmed cita first
	expectCitaEstado(mock, 4, models.EstadoPendiente, 2, 9)

	assert.ErrorIs(t, s.Completar(p, 4), ErrEstadoInvalido)
}

func TestCancelarCitaComoPaciente(t *testing.T) {
	s, mock := setupCitaService(t)
	p := &authz.Principal{Rol: authz.RolPaciente, IDPaciente: 9}

	expectCitaEstado(mock, 4, models.EstadoPendiente, 2, 9)
	mock.ExpectExec("UPDATE citas SET estado").
		WithArgs(models.EstadoCancelada, 4).
		WillReturnResult(sqlmock.NewResult(0, 1))

	require.NoError(t, s.Cancelar(p, 4))
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestCancelarCitaCompletada(t *testing.T) {
	s, mock := setupCitaService(t)
	p := &authz.Principal{Rol: authz.RolMedico, IDMedico: 2}

	expectCitaEstado(mock, 4, models.EstadoCompletada, 2, 9)

	assert.ErrorIs(t, s.Cancelar(p, 4), ErrEstadoInvalido)
}

func TestConfirmarCitaInexistente(t *testing.T) {
	s, mock := setupCitaService(t)
	p := &authz.Principal{Rol: authz.RolMedico, IDMedico: 2}

	mock.ExpectQuery(regexp.QuoteMeta("SELECT estado, id_medico, id_paciente FROM citas WHERE id_cita = ?")).
		WithArgs(404).
		WillReturnError(sql.ErrNoRows)

	assert.ErrorIs(t, s.Confirmar(p, 404), authz.ErrNotFound)
}

func TestListCitasScopeMedico(t *testing.T) {
	s, mock := setupCitaService(t)
	p := &authz.Principal{Rol: authz.RolMedico, IDMedico: 2}

	mock.ExpectQuery("WHERE c.id_medico = ?").
		WithArgs(2, models.EstadoPendiente).
		WillReturnRows(sqlmock.NewRows([]string{
			"id_cita", "id_paciente", "id_medico", "fecha_hora", "estado", "motivo",
			"nombre_paciente", "nombre_medico", "especialidad",
		}))

	_, err := s.ListCitas(p, models.CitaFilter{Estado: models.EstadoPendiente}, 1)
	require.NoError(t, err)
	assert.NoError(t, mock.ExpectationsWereMet())
}
