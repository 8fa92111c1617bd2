package services

import (
	"database/sql"
	"errors"
	"fmt"

	"github.com/avaldez21/clinica-backend/internal/clinico/models"
	"github.com/avaldez21/clinica-backend/internal/common/authz"
	"github.com/avaldez21/clinica-backend/internal/common/validation"
)

// PageSize is the fixed page size for every listing.
const PageSize = 15

// ErrDiagnosticoEnUso: the diagnostico still has tratamientos referencing
// it. Deletes are restricted, never cascaded.
var ErrDiagnosticoEnUso = errors.New("el diagnostico tiene tratamientos asociados")

const diagnosticoSelect = `
	SELECT d.id_diagnostico, d.id_paciente, d.id_medico, d.fecha, d.descripcion,
	       up.nombre AS nombre_paciente, um.nombre AS nombre_medico
	FROM diagnosticos d
	JOIN pacientes p  ON d.id_paciente = p.id_paciente
	JOIN usuarios up  ON p.id_usuario  = up.id_usuario
	JOIN medicos m    ON d.id_medico   = m.id_medico
	JOIN usuarios um  ON m.id_usuario  = um.id_usuario`

type DiagnosticoService struct {
	DB *sql.DB
}

func NewDiagnosticoService(db *sql.DB) *DiagnosticoService {
	return &DiagnosticoService{DB: db}
}

// ListDiagnosticos returns one page of diagnosticos inside the principal's
// ownership scope. Medicos see their own rows and may narrow by paciente
// name substring and exact fecha; pacientes see their own rows, no
// filters. Filters narrow the scope, never widen it.
func (s *DiagnosticoService) ListDiagnosticos(p *authz.Principal, f models.DiagnosticoFilter, page int) ([]models.DiagnosticoDetail, error) {
	var (
		query string
		args  []interface{}
	)

	switch p.Rol {
	case authz.RolMedico:
		query = diagnosticoSelect + " WHERE d.id_medico = ?"
		args = append(args, p.IDMedico)
		if f.Paciente != "" {
			query += " AND LOWER(up.nombre) LIKE LOWER(?)"
			args = append(args, "%"+f.Paciente+"%")
		}
		if f.Fecha != "" {
			query += " AND d.fecha = ?"
			args = append(args, f.Fecha)
		}
	case authz.RolPaciente:
		query = diagnosticoSelect + " WHERE d.id_paciente = ?"
		args = append(args, p.IDPaciente)
	default:
		return nil, authz.ErrRoleForbidden
	}

	if page <= 0 {
		page = 1
	}
	query += fmt.Sprintf(" ORDER BY d.fecha DESC, d.id_diagnostico ASC LIMIT %d OFFSET %d",
		PageSize, (page-1)*PageSize)

	rows, err := s.DB.Query(query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var result []models.DiagnosticoDetail
	for rows.Next() {
		var d models.DiagnosticoDetail
		if err := rows.Scan(&d.IDDiagnostico, &d.IDPaciente, &d.IDMedico, &d.Fecha,
			&d.Descripcion, &d.NombrePaciente, &d.NombreMedico); err != nil {
			return nil, err
		}
		result = append(result, d)
	}
	return result, rows.Err()
}

// GetDiagnostico fetches one diagnostico and checks read ownership.
func (s *DiagnosticoService) GetDiagnostico(p *authz.Principal, id int) (*models.DiagnosticoDetail, error) {
	var d models.DiagnosticoDetail
	err := s.DB.QueryRow(diagnosticoSelect+" WHERE d.id_diagnostico = ?", id).
		Scan(&d.IDDiagnostico, &d.IDPaciente, &d.IDMedico, &d.Fecha,
			&d.Descripcion, &d.NombrePaciente, &d.NombreMedico)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, authz.ErrNotFound
		}
		return nil, err
	}
	if err := authz.AuthorizeRead(p, d.IDMedico, d.IDPaciente); err != nil {
		return nil, err
	}
	return &d, nil
}

// CreateDiagnostico inserts a diagnostico owned by the principal. The
// id_medico column is always the principal's own id, regardless of input.
func (s *DiagnosticoService) CreateDiagnostico(p *authz.Principal, req models.DiagnosticoRequest) (int64, error) {
	if err := authz.RequireMedico(p); err != nil {
		return 0, err
	}

	v := validation.NewCollector()
	v.RequireID("id_paciente", req.IDPaciente)
	fecha := v.RequireDate("fecha", req.Fecha)
	v.Require("descripcion", req.Descripcion, 1000)

	if req.IDPaciente > 0 {
		var dummy int
		err := s.DB.QueryRow("SELECT 1 FROM pacientes WHERE id_paciente = ?", req.IDPaciente).Scan(&dummy)
		if err == sql.ErrNoRows {
			v.Add("id_paciente", "el paciente no existe")
		} else if err != nil {
			return 0, err
		}
	}
	if err := v.Err(); err != nil {
		return 0, err
	}

	res, err := s.DB.Exec(
		`INSERT INTO diagnosticos (id_paciente, id_medico, fecha, descripcion)
		 VALUES (?, ?, ?, ?)`,
		req.IDPaciente, p.IDMedico, fecha, req.Descripcion,
	)
	if err != nil {
		return 0, err
	}
	return res.LastInsertId()
}

// UpdateDiagnostico updates the allow-listed fields of an owned
// diagnostico. Fetch first so a missing id is NotFound, ownership before
// any payload validation.
func (s *DiagnosticoService) UpdateDiagnostico(p *authz.Principal, id int, req models.DiagnosticoUpdateRequest) error {
	owner, err := s.diagnosticoOwner(id)
	if err != nil {
		return err
	}
	if err := authz.AuthorizeWrite(p, owner); err != nil {
		return err
	}

	v := validation.NewCollector()
	fecha := v.RequireDate("fecha", req.Fecha)
	v.Require("descripcion", req.Descripcion, 1000)
	if err := v.Err(); err != nil {
		return err
	}

	_, err = s.DB.Exec(
		"UPDATE diagnosticos SET fecha = ?, descripcion = ? WHERE id_diagnostico = ?",
		fecha, req.Descripcion, id,
	)
	return err
}

// DeleteDiagnostico hard-deletes an owned diagnostico. Restricted while
// tratamientos still reference it.
func (s *DiagnosticoService) DeleteDiagnostico(p *authz.Principal, id int) error {
	owner, err := s.diagnosticoOwner(id)
	if err != nil {
		return err
	}
	if err := authz.AuthorizeWrite(p, owner); err != nil {
		return err
	}

	var dependientes int
	if err := s.DB.QueryRow(
		"SELECT COUNT(*) FROM tratamientos WHERE id_diagnostico = ?", id,
	).Scan(&dependientes); err != nil {
		return err
	}
	if dependientes > 0 {
		return ErrDiagnosticoEnUso
	}

	_, err = s.DB.Exec("DELETE FROM diagnosticos WHERE id_diagnostico = ?", id)
	return err
}

func (s *DiagnosticoService) diagnosticoOwner(id int) (int, error) {
	var owner int
	err := s.DB.QueryRow(
		"SELECT id_medico FROM diagnosticos WHERE id_diagnostico = ?", id,
	).Scan(&owner)
	if err == sql.ErrNoRows {
		return 0, authz.ErrNotFound
	}
	return owner, err
}
