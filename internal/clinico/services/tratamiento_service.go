package services

import (
	"database/sql"
	"fmt"

	"github.com/avaldez21/clinica-backend/internal/clinico/models"
	"github.com/avaldez21/clinica-backend/internal/common/authz"
	"github.com/avaldez21/clinica-backend/internal/common/validation"
)

const tratamientoSelect = `
	SELECT t.id_tratamiento, t.id_paciente, t.id_medico, t.id_diagnostico,
	       t.nombre, t.dosis, t.frecuencia, t.duracion,
	       COALESCE(t.observaciones, ''), t.fecha_inicio, t.activo,
	       up.nombre AS nombre_paciente, um.nombre AS nombre_medico,
	       d.descripcion AS descripcion_diagnostico
	FROM tratamientos t
	JOIN pacientes p     ON t.id_paciente    = p.id_paciente
	JOIN usuarios up     ON p.id_usuario     = up.id_usuario
	JOIN medicos m       ON t.id_medico      = m.id_medico
	JOIN usuarios um     ON m.id_usuario     = um.id_usuario
	JOIN diagnosticos d  ON t.id_diagnostico = d.id_diagnostico`

type TratamientoService struct {
	DB *sql.DB
}

func NewTratamientoService(db *sql.DB) *TratamientoService {
	return &TratamientoService{DB: db}
}

// ListTratamientos returns one page scoped to the principal. Medicos may
// narrow by paciente name and estado (activo/inactivo); pacientes get
// their own rows with no filters.
func (s *TratamientoService) ListTratamientos(p *authz.Principal, f models.TratamientoFilter, page int) ([]models.TratamientoDetail, error) {
	var (
		query string
		args  []interface{}
	)

	switch p.Rol {
	case authz.RolMedico:
		query = tratamientoSelect + " WHERE t.id_medico = ?"
		args = append(args, p.IDMedico)
		if f.Paciente != "" {
			query += " AND LOWER(up.nombre) LIKE LOWER(?)"
			args = append(args, "%"+f.Paciente+"%")
		}
		switch f.Estado {
		case "activo":
			query += " AND t.activo = TRUE"
		case "inactivo":
			query += " AND t.activo = FALSE"
		}
	case authz.RolPaciente:
		query = tratamientoSelect + " WHERE t.id_paciente = ?"
		args = append(args, p.IDPaciente)
	default:
		return nil, authz.ErrRoleForbidden
	}

	if page <= 0 {
		page = 1
	}
	query += fmt.Sprintf(" ORDER BY t.fecha_inicio DESC, t.id_tratamiento ASC LIMIT %d OFFSET %d",
		PageSize, (page-1)*PageSize)

	rows, err := s.DB.Query(query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var result []models.TratamientoDetail
	for rows.Next() {
		var t models.TratamientoDetail
		if err := rows.Scan(&t.IDTratamiento, &t.IDPaciente, &t.IDMedico, &t.IDDiagnostico,
			&t.Nombre, &t.Dosis, &t.Frecuencia, &t.Duracion,
			&t.Observaciones, &t.FechaInicio, &t.Activo,
			&t.NombrePaciente, &t.NombreMedico, &t.DescripcionDiagnostico); err != nil {
			return nil, err
		}
		result = append(result, t)
	}
	return result, rows.Err()
}

// ListTratamientosPaciente is the paciente-only read view
// (GET /api/paciente/tratamientos).
func (s *TratamientoService) ListTratamientosPaciente(p *authz.Principal, page int) ([]models.TratamientoDetail, error) {
	if err := authz.RequirePaciente(p); err != nil {
		return nil, err
	}
	return s.ListTratamientos(p, models.TratamientoFilter{}, page)
}

// GetTratamiento fetches one tratamiento and checks read ownership.
func (s *TratamientoService) GetTratamiento(p *authz.Principal, id int) (*models.TratamientoDetail, error) {
	var t models.TratamientoDetail
	err := s.DB.QueryRow(tratamientoSelect+" WHERE t.id_tratamiento = ?", id).
		Scan(&t.IDTratamiento, &t.IDPaciente, &t.IDMedico, &t.IDDiagnostico,
			&t.Nombre, &t.Dosis, &t.Frecuencia, &t.Duracion,
			&t.Observaciones, &t.FechaInicio, &t.Activo,
			&t.NombrePaciente, &t.NombreMedico, &t.DescripcionDiagnostico)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, authz.ErrNotFound
		}
		return nil, err
	}
	if err := authz.AuthorizeRead(p, t.IDMedico, t.IDPaciente); err != nil {
		return nil, err
	}
	return &t, nil
}

// CreateTratamiento inserts a tratamiento owned by the principal.
// id_medico is forced to the principal's own id and activo starts true.
// The referenced diagnostico must exist and belong to the same medico.
func (s *TratamientoService) CreateTratamiento(p *authz.Principal, req models.TratamientoRequest) (int64, error) {
	if err := authz.RequireMedico(p); err != nil {
		return 0, err
	}

	v := validation.NewCollector()
	v.RequireID("id_paciente", req.IDPaciente)
	v.RequireID("id_diagnostico", req.IDDiagnostico)
	v.Require("nombre", req.Nombre, 255)
	v.Require("dosis", req.Dosis, 255)
	v.Require("frecuencia", req.Frecuencia, 255)
	v.Require("duracion", req.Duracion, 255)
	fechaInicio := v.RequireDate("fecha_inicio", req.FechaInicio)

	if req.IDPaciente > 0 {
		var dummy int
		err := s.DB.QueryRow("SELECT 1 FROM pacientes WHERE id_paciente = ?", req.IDPaciente).Scan(&dummy)
		if err == sql.ErrNoRows {
			v.Add("id_paciente", "el paciente no existe")
		} else if err != nil {
			return 0, err
		}
	}
	if req.IDDiagnostico > 0 {
		var ownerDiagnostico int
		err := s.DB.QueryRow(
			"SELECT id_medico FROM diagnosticos WHERE id_diagnostico = ?", req.IDDiagnostico,
		).Scan(&ownerDiagnostico)
		switch {
		case err == sql.ErrNoRows:
			v.Add("id_diagnostico", "el diagnostico no existe")
		case err != nil:
			return 0, err
		case ownerDiagnostico != p.IDMedico:
			v.Add("id_diagnostico", "el diagnostico pertenece a otro medico")
		}
	}
	if err := v.Err(); err != nil {
		return 0, err
	}

	res, err := s.DB.Exec(
		`INSERT INTO tratamientos
		   (id_paciente, id_medico, id_diagnostico, nombre, dosis, frecuencia,
		    duracion, observaciones, fecha_inicio, activo)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, TRUE)`,
		req.IDPaciente, p.IDMedico, req.IDDiagnostico, req.Nombre, req.Dosis,
		req.Frecuencia, req.Duracion,
		sql.NullString{String: req.Observaciones, Valid: req.Observaciones != ""},
		fechaInicio,
	)
	if err != nil {
		return 0, err
	}
	return res.LastInsertId()
}

// UpdateTratamiento updates the allow-listed fields of an owned
// tratamiento. paciente and diagnostico references stay immutable.
func (s *TratamientoService) UpdateTratamiento(p *authz.Principal, id int, req models.TratamientoUpdateRequest) error {
	current, owner, err := s.tratamientoEstado(id)
	if err != nil {
		return err
	}
	if err := authz.AuthorizeWrite(p, owner); err != nil {
		return err
	}

	v := validation.NewCollector()
	v.Require("nombre", req.Nombre, 255)
	v.Require("dosis", req.Dosis, 255)
	v.Require("frecuencia", req.Frecuencia, 255)
	v.Require("duracion", req.Duracion, 255)
	if err := v.Err(); err != nil {
		return err
	}

	activo := current
	if req.Activo != nil {
		activo = *req.Activo
	}

	_, err = s.DB.Exec(
		`UPDATE tratamientos
		 SET nombre = ?, dosis = ?, frecuencia = ?, duracion = ?,
		     observaciones = ?, activo = ?
		 WHERE id_tratamiento = ?`,
		req.Nombre, req.Dosis, req.Frecuencia, req.Duracion,
		sql.NullString{String: req.Observaciones, Valid: req.Observaciones != ""},
		activo, id,
	)
	return err
}

// ToggleEstado flips the activo flag. Each call flips, it never sets a
// fixed state; callers must accept the non-idempotent semantics. Returns
// the new value.
func (s *TratamientoService) ToggleEstado(p *authz.Principal, id int) (bool, error) {
	current, owner, err := s.tratamientoEstado(id)
	if err != nil {
		return false, err
	}
	if err := authz.AuthorizeWrite(p, owner); err != nil {
		return false, err
	}

	nuevo := !current
	_, err = s.DB.Exec(
		"UPDATE tratamientos SET activo = ? WHERE id_tratamiento = ?", nuevo, id,
	)
	if err != nil {
		return false, err
	}
	return nuevo, nil
}

// DeleteTratamiento hard-deletes an owned tratamiento.
func (s *TratamientoService) DeleteTratamiento(p *authz.Principal, id int) error {
	_, owner, err := s.tratamientoEstado(id)
	if err != nil {
		return err
	}
	if err := authz.AuthorizeWrite(p, owner); err != nil {
		return err
	}

	_, err = s.DB.Exec("DELETE FROM tratamientos WHERE id_tratamiento = ?", id)
	return err
}

func (s *TratamientoService) tratamientoEstado(id int) (activo bool, owner int, err error) {
	err = s.DB.QueryRow(
		"SELECT activo, id_medico FROM tratamientos WHERE id_tratamiento = ?", id,
	).Scan(&activo, &owner)
	if err == sql.ErrNoRows {
		return false, 0, authz.ErrNotFound
	}
	return activo, owner, err
}
