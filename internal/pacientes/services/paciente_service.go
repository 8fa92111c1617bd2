package services

import (
	"database/sql"
	"errors"
	"fmt"
	"time"

	"golang.org/x/crypto/bcrypt"

	"github.com/avaldez21/clinica-backend/internal/common/authz"
	"github.com/avaldez21/clinica-backend/internal/common/validation"
	"github.com/avaldez21/clinica-backend/internal/pacientes/models"
)

const PageSize = 15

// ErrPacienteEnUso: the paciente still has clinical records or citas.
// Deletes are restricted, never cascaded.
var ErrPacienteEnUso = errors.New("el paciente tiene registros asociados")

const pacienteSelect = `
	SELECT pa.id_paciente, pa.id_usuario, u.nombre, u.email,
	       pa.fecha_nacimiento, pa.telefono, u.activo
	FROM pacientes pa
	JOIN usuarios u ON pa.id_usuario = u.id_usuario`

type PacienteService struct {
	DB *sql.DB
}

func NewPacienteService(db *sql.DB) *PacienteService {
	return &PacienteService{DB: db}
}

// ListPacientes returns one page of the roster, optionally narrowed by
// nombre substring. The roster is clinic-wide; record-level ownership
// applies to clinical data, not to knowing who the pacientes are.
func (s *PacienteService) ListPacientes(p *authz.Principal, f models.PacienteFilter, page int) ([]models.Paciente, error) {
	if err := authz.RequireMedico(p); err != nil {
		return nil, err
	}

	query := pacienteSelect + " WHERE 1=1"
	var args []interface{}
	if f.Nombre != "" {
		query += " AND LOWER(u.nombre) LIKE LOWER(?)"
		args = append(args, "%"+f.Nombre+"%")
	}

	if page <= 0 {
		page = 1
	}
	query += fmt.Sprintf(" ORDER BY u.nombre ASC LIMIT %d OFFSET %d", PageSize, (page-1)*PageSize)

	rows, err := s.DB.Query(query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var result []models.Paciente
	for rows.Next() {
		pa, err := scanPaciente(rows)
		if err != nil {
			return nil, err
		}
		result = append(result, *pa)
	}
	return result, rows.Err()
}

// GetPaciente fetches one roster row.
func (s *PacienteService) GetPaciente(p *authz.Principal, id int) (*models.Paciente, error) {
	if err := authz.RequireMedico(p); err != nil {
		return nil, err
	}

	row := s.DB.QueryRow(pacienteSelect+" WHERE pa.id_paciente = ?", id)
	pa, err := scanPaciente(row)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, authz.ErrNotFound
		}
		return nil, err
	}
	return pa, nil
}

// CreatePaciente registers a paciente: the usuario row (rol paciente,
// activo) and the profile row in one transaction.
func (s *PacienteService) CreatePaciente(p *authz.Principal, req models.PacienteRequest) (int64, error) {
	if err := authz.RequireMedico(p); err != nil {
		return 0, err
	}

	v := validation.NewCollector()
	v.Require("nombre", req.Nombre, 255)
	v.Require("email", req.Email, 255)
	v.Require("password", req.Password, 255)
	if req.Password != "" && len(req.Password) < 8 {
		v.Add("password", "minimo 8 caracteres")
	}
	v.Optional("telefono", req.Telefono, 50)
	if req.FechaNacimiento != "" {
		if _, err := time.Parse("2006-01-02", req.FechaNacimiento); err != nil {
			v.Add("fecha_nacimiento", "fecha invalida, formato esperado YYYY-MM-DD")
		}
	}

	if req.Email != "" {
		var dummy int
		err := s.DB.QueryRow("SELECT 1 FROM usuarios WHERE email = ?", req.Email).Scan(&dummy)
		if err == nil {
			v.Add("email", "el email ya esta registrado")
		} else if err != sql.ErrNoRows {
			return 0, err
		}
	}
	if err := v.Err(); err != nil {
		return 0, err
	}

	hashed, err := bcrypt.GenerateFromPassword([]byte(req.Password), bcrypt.DefaultCost)
	if err != nil {
		return 0, err
	}

	tx, err := s.DB.Begin()
	if err != nil {
		return 0, err
	}

	res, err := tx.Exec(
		`INSERT INTO usuarios (nombre, email, password, rol, activo)
		 VALUES (?, ?, ?, ?, TRUE)`,
		req.Nombre, req.Email, string(hashed), authz.RolPaciente,
	)
	if err != nil {
		tx.Rollback()
		return 0, err
	}
	idUsuario, err := res.LastInsertId()
	if err != nil {
		tx.Rollback()
		return 0, err
	}

	res, err = tx.Exec(
		`INSERT INTO pacientes (id_usuario, fecha_nacimiento, telefono)
		 VALUES (?, ?, ?)`,
		idUsuario,
		sql.NullString{String: req.FechaNacimiento, Valid: req.FechaNacimiento != ""},
		sql.NullString{String: req.Telefono, Valid: req.Telefono != ""},
	)
	if err != nil {
		tx.Rollback()
		return 0, err
	}
	idPaciente, err := res.LastInsertId()
	if err != nil {
		tx.Rollback()
		return 0, err
	}

	if err := tx.Commit(); err != nil {
		return 0, err
	}
	return idPaciente, nil
}

// UpdatePaciente updates the roster fields across both tables.
func (s *PacienteService) UpdatePaciente(p *authz.Principal, id int, req models.PacienteUpdateRequest) error {
	if err := authz.RequireMedico(p); err != nil {
		return err
	}

	idUsuario, err := s.pacienteUsuario(id)
	if err != nil {
		return err
	}

	v := validation.NewCollector()
	v.Require("nombre", req.Nombre, 255)
	v.Optional("telefono", req.Telefono, 50)
	if req.FechaNacimiento != "" {
		if _, err := time.Parse("2006-01-02", req.FechaNacimiento); err != nil {
			v.Add("fecha_nacimiento", "fecha invalida, formato esperado YYYY-MM-DD")
		}
	}
	if err := v.Err(); err != nil {
		return err
	}

	tx, err := s.DB.Begin()
	if err != nil {
		return err
	}
	if _, err := tx.Exec(
		"UPDATE usuarios SET nombre = ? WHERE id_usuario = ?", req.Nombre, idUsuario,
	); err != nil {
		tx.Rollback()
		return err
	}
	if _, err := tx.Exec(
		"UPDATE pacientes SET fecha_nacimiento = ?, telefono = ? WHERE id_paciente = ?",
		sql.NullString{String: req.FechaNacimiento, Valid: req.FechaNacimiento != ""},
		sql.NullString{String: req.Telefono, Valid: req.Telefono != ""},
		id,
	); err != nil {
		tx.Rollback()
		return err
	}
	return tx.Commit()
}

// ToggleEstado flips the activo flag of the paciente's usuario and
// returns the new value.
func (s *PacienteService) ToggleEstado(p *authz.Principal, id int) (bool, error) {
	if err := authz.RequireMedico(p); err != nil {
		return false, err
	}

	var (
		idUsuario int
		activo    bool
	)
	err := s.DB.QueryRow(
		`SELECT u.id_usuario, u.activo
		 FROM pacientes pa JOIN usuarios u ON pa.id_usuario = u.id_usuario
		 WHERE pa.id_paciente = ?`,
		id,
	).Scan(&idUsuario, &activo)
	if err == sql.ErrNoRows {
		return false, authz.ErrNotFound
	}
	if err != nil {
		return false, err
	}

	nuevo := !activo
	if _, err := s.DB.Exec(
		"UPDATE usuarios SET activo = ? WHERE id_usuario = ?", nuevo, idUsuario,
	); err != nil {
		return false, err
	}
	return nuevo, nil
}

// DeletePaciente removes a paciente and its usuario. Restricted while
// diagnosticos, tratamientos or citas still reference the paciente.
func (s *PacienteService) DeletePaciente(p *authz.Principal, id int) error {
	if err := authz.RequireMedico(p); err != nil {
		return err
	}

	idUsuario, err := s.pacienteUsuario(id)
	if err != nil {
		return err
	}

	var dependientes int
	if err := s.DB.QueryRow(
		`SELECT (SELECT COUNT(*) FROM diagnosticos WHERE id_paciente = ?)
		      + (SELECT COUNT(*) FROM tratamientos WHERE id_paciente = ?)
		      + (SELECT COUNT(*) FROM citas WHERE id_paciente = ?)`,
		id, id, id,
	).Scan(&dependientes); err != nil {
		return err
	}
	if dependientes > 0 {
		return ErrPacienteEnUso
	}

	tx, err := s.DB.Begin()
	if err != nil {
		return err
	}
	if _, err := tx.Exec("DELETE FROM pacientes WHERE id_paciente = ?", id); err != nil {
		tx.Rollback()
		return err
	}
	if _, err := tx.Exec("DELETE FROM usuarios WHERE id_usuario = ?", idUsuario); err != nil {
		tx.Rollback()
		return err
	}
	return tx.Commit()
}

func (s *PacienteService) pacienteUsuario(id int) (int, error) {
	var idUsuario int
	err := s.DB.QueryRow(
		"SELECT id_usuario FROM pacientes WHERE id_paciente = ?", id,
	).Scan(&idUsuario)
	if err == sql.ErrNoRows {
		return 0, authz.ErrNotFound
	}
	return idUsuario, err
}

type rowScanner interface {
	Scan(dest ...interface{}) error
}

func scanPaciente(r rowScanner) (*models.Paciente, error) {
	var (
		pa              models.Paciente
		fechaNacimiento sql.NullTime
		telefono        sql.NullString
	)
	if err := r.Scan(&pa.IDPaciente, &pa.IDUsuario, &pa.Nombre, &pa.Email,
		&fechaNacimiento, &telefono, &pa.Activo); err != nil {
		return nil, err
	}
	if fechaNacimiento.Valid {
		pa.FechaNacimiento = fechaNacimiento.Time.Format("2006-01-02")
	}
	pa.Telefono = telefono.String
	return &pa, nil
}
