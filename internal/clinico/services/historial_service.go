package services

import (
	"database/sql"

	"github.com/avaldez21/clinica-backend/internal/clinico/models"
	"github.com/avaldez21/clinica-backend/internal/common/authz"
)

// Historial is the combined clinical history of one paciente.
type Historial struct {
	IDPaciente     int                        `json:"id_paciente"`
	NombrePaciente string                     `json:"nombre_paciente"`
	Diagnosticos   []models.DiagnosticoDetail `json:"diagnosticos"`
	Tratamientos   []models.TratamientoDetail `json:"tratamientos"`
}

type HistorialService struct {
	DB *sql.DB
}

func NewHistorialService(db *sql.DB) *HistorialService {
	return &HistorialService{DB: db}
}

// GetHistorial assembles the clinical history scoped to the principal: a
// paciente sees their own full history, a medico sees only the records
// they authored for the given paciente.
func (s *HistorialService) GetHistorial(p *authz.Principal, idPaciente int) (*Historial, error) {
	switch p.Rol {
	case authz.RolPaciente:
		// pacientes can only ask for themselves
		idPaciente = p.IDPaciente
	case authz.RolMedico:
		if idPaciente <= 0 {
			return nil, authz.ErrNotFound
		}
	default:
		return nil, authz.ErrRoleForbidden
	}

	h := &Historial{IDPaciente: idPaciente}
	err := s.DB.QueryRow(
		`SELECT u.nombre
		 FROM pacientes pa JOIN usuarios u ON pa.id_usuario = u.id_usuario
		 WHERE pa.id_paciente = ?`,
		idPaciente,
	).Scan(&h.NombrePaciente)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, authz.ErrNotFound
		}
		return nil, err
	}

	query := diagnosticoSelect + " WHERE d.id_paciente = ?"
	args := []interface{}{idPaciente}
	if p.Rol == authz.RolMedico {
		query += " AND d.id_medico = ?"
		args = append(args, p.IDMedico)
	}
	query += " ORDER BY d.fecha DESC, d.id_diagnostico ASC"

	rows, err := s.DB.Query(query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	for rows.Next() {
		var d models.DiagnosticoDetail
		if err := rows.Scan(&d.IDDiagnostico, &d.IDPaciente, &d.IDMedico, &d.Fecha,
			&d.Descripcion, &d.NombrePaciente, &d.NombreMedico); err != nil {
			return nil, err
		}
		h.Diagnosticos = append(h.Diagnosticos, d)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}

	query = tratamientoSelect + " WHERE t.id_paciente = ?"
	args = []interface{}{idPaciente}
	if p.Rol == authz.RolMedico {
		query += " AND t.id_medico = ?"
		args = append(args, p.IDMedico)
	}
	query += " ORDER BY t.fecha_inicio DESC, t.id_tratamiento ASC"

	trows, err := s.DB.Query(query, args...)
	if err != nil {
		return nil, err
	}
	defer trows.Close()
	for trows.Next() {
		var t models.TratamientoDetail
		if err := trows.Scan(&t.IDTratamiento, &t.IDPaciente, &t.IDMedico, &t.IDDiagnostico,
			&t.Nombre, &t.Dosis, &t.Frecuencia, &t.Duracion,
			&t.Observaciones, &t.FechaInicio, &t.Activo,
			&t.NombrePaciente, &t.NombreMedico, &t.DescripcionDiagnostico); err != nil {
			return nil, err
		}
		h.Tratamientos = append(h.Tratamientos, t)
	}
	if err := trows.Err(); err != nil {
		return nil, err
	}

	// A medico only sees pacientes they have records for. An untreated
	// paciente must look exactly like a nonexistent one.
	if p.Rol == authz.RolMedico && len(h.Diagnosticos) == 0 && len(h.Tratamientos) == 0 {
		return nil, authz.ErrNotFound
	}
	return h, nil
}
