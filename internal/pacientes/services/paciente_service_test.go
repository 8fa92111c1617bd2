package services

import (
	"database/sql"
	"regexp"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/avaldez21/clinica-backend/internal/common/authz"
	"github.com/avaldez21/clinica-backend/internal/common/validation"
	"github.com/avaldez21/clinica-backend/internal/pacientes/models"
)

func setupPacienteService(t *testing.T) (*PacienteService, sqlmock.Sqlmock) {
	t.Helper()
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })
	return NewPacienteService(db), mock
}

func medicoPrincipal() *authz.Principal {
	return &authz.Principal{IDUsuario: 3, Rol: authz.RolMedico, IDMedico: 1, Nombre: "Dr. Test"}
}

func TestListPacientesFiltroNombre(t *testing.T) {
	s, mock := setupPacienteService(t)

	nacimiento := time.Date(1990, 5, 20, 0, 0, 0, 0, time.UTC)
	mock.ExpectQuery("LOWER\\(u.nombre\\) LIKE LOWER").
		WithArgs("%ana%").
		WillReturnRows(sqlmock.NewRows([]string{
			"id_paciente", "id_usuario", "nombre", "email",
			"fecha_nacimiento", "telefono", "activo",
		}).AddRow(9, 14, "Ana Lopez", "ana@clinica.test", nacimiento, "555-0101", true))

	list, err := s.ListPacientes(medicoPrincipal(), models.PacienteFilter{Nombre: "ana"}, 1)
	require.NoError(t, err)
	require.Len(t, list, 1)
	assert.Equal(t, "Ana Lopez", list[0].Nombre)
	assert.Equal(t, "1990-05-20", list[0].FechaNacimiento)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestListPacientesRolPaciente(t *testing.T) {
	s, mock := setupPacienteService(t)
	p := &authz.Principal{Rol: authz.RolPaciente, IDPaciente: 9}

	_, err := s.ListPacientes(p, models.PacienteFilter{}, 1)
	assert.ErrorIs(t, err, authz.ErrRoleForbidden)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestCreatePaciente(t *testing.T) {
	s, mock := setupPacienteService(t)

	mock.ExpectQuery(regexp.QuoteMeta("SELECT 1 FROM usuarios WHERE email = ?")).
		WithArgs("luis@clinica.test").
		WillReturnError(sql.ErrNoRows)
	mock.ExpectBegin()
	mock.ExpectExec("INSERT INTO usuarios").
		WillReturnResult(sqlmock.NewResult(14, 1))
	mock.ExpectExec("INSERT INTO pacientes").
		WillReturnResult(sqlmock.NewResult(9, 1))
	mock.ExpectCommit()

	id, err := s.CreatePaciente(medicoPrincipal(), models.PacienteRequest{
		Nombre:          "Luis Mora",
		Email:           "luis@clinica.test",
		Password:        "secreto123",
		FechaNacimiento: "1985-02-11",
		Telefono:        "555-0102",
	})
	require.NoError(t, err)
	assert.Equal(t, int64(9), id)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestCreatePacienteFechaInvalida(t *testing.T) {
	s, mock := setupPacienteService(t)

	mock.ExpectQuery(regexp.QuoteMeta("SELECT 1 FROM usuarios WHERE email = ?")).
		WithArgs("luis@clinica.test").
		WillReturnError(sql.ErrNoRows)

	_, err := s.CreatePaciente(medicoPrincipal(), models.PacienteRequest{
		Nombre:          "Luis Mora",
		Email:           "luis@clinica.test",
		Password:        "secreto123",
		FechaNacimiento: "11/02/1985",
	})

	var vErr *validation.ValidationError
	require.ErrorAs(t, err, &vErr)
	assert.Contains(t, vErr.Fields, "fecha_nacimiento")
}

func TestToggleEstadoPaciente(t *testing.T) {
	s, mock := setupPacienteService(t)

	mock.ExpectQuery("SELECT u.id_usuario, u.activo").
		WithArgs(9).
		WillReturnRows(sqlmock.NewRows([]string{"id_usuario", "activo"}).AddRow(14, true))
	mock.ExpectExec("UPDATE usuarios SET activo").
		WithArgs(false, 14).
		WillReturnResult(sqlmock.NewResult(0, 1))

	nuevo, err := s.ToggleEstado(medicoPrincipal(), 9)
	require.NoError(t, err)
	assert.False(t, nuevo)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestDeletePacienteConRegistros(t *testing.T) {
	s, mock := setupPacienteService(t)

	mock.ExpectQuery(regexp.QuoteMeta("SELECT id_usuario FROM pacientes WHERE id_paciente = ?")).
		WithArgs(9).
		WillReturnRows(sqlmock.NewRows([]string{"id_usuario"}).AddRow(14))
	mock.ExpectQuery("SELECT \\(SELECT COUNT").
		WithArgs(9, 9, 9).
		WillReturnRows(sqlmock.NewRows([]string{"dependientes"}).AddRow(3))

	err := s.DeletePaciente(medicoPrincipal(), 9)
	assert.ErrorIs(t, err, ErrPacienteEnUso)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestDeletePacienteSinRegistros(t *testing.T) {
	s, mock := setupPacienteService(t)

	mock.ExpectQuery(regexp.QuoteMeta("SELECT id_usuario FROM pacientes WHERE id_paciente = ?")).
		WithArgs(9).
		WillReturnRows(sqlmock.NewRows([]string{"id_usuario"}).AddRow(14))
	mock.ExpectQuery("SELECT \\(SELECT COUNT").
		WithArgs(9, 9, 9).
		WillReturnRows(sqlmock.NewRows([]string{"dependientes"}).AddRow(0))
	mock.ExpectBegin()
	mock.ExpectExec("DELETE FROM pacientes").
		WithArgs(9).
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectExec("DELETE FROM usuarios").
		WithArgs(14).
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectCommit()

	require.NoError(t, s.DeletePaciente(medicoPrincipal(), 9))
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestGetPacienteInexistente(t *testing.T) {
	s, mock := setupPacienteService(t)

	mock.ExpectQuery("WHERE pa.id_paciente = .").
		WithArgs(404).
		WillReturnRows(sqlmock.NewRows([]string{
			"id_paciente", "id_usuario", "nombre", "email",
			"fecha_nacimiento", "telefono", "activo",
		}))

	_, err := s.GetPaciente(medicoPrincipal(), 404)
	assert.ErrorIs(t, err, authz.ErrNotFound)
}
