package services

import (
	"database/sql"

	"github.com/avaldez21/clinica-backend/internal/citas/models"
)

type MedicoService struct {
	DB *sql.DB
}

func NewMedicoService(db *sql.DB) *MedicoService {
	return &MedicoService{DB: db}
}

// ListMedicos returns every medico with their identity. Any authenticated
// role may call this; it backs the booking UI.
func (s *MedicoService) ListMedicos() ([]models.Medico, error) {
	rows, err := s.DB.Query(`
		SELECT m.id_medico, m.id_usuario, u.nombre, m.especialidad
		FROM medicos m
		JOIN usuarios u ON m.id_usuario = u.id_usuario
		ORDER BY u.nombre ASC`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var result []models.Medico
	for rows.Next() {
		var m models.Medico
		if err := rows.Scan(&m.IDMedico, &m.IDUsuario, &m.Nombre, &m.Especialidad); err != nil {
			return nil, err
		}
		result = append(result, m)
	}
	return result, rows.Err()
}

// ListEspecialidades returns the distinct set of specialties.
func (s *MedicoService) ListEspecialidades() ([]string, error) {
	rows, err := s.DB.Query(
		"SELECT DISTINCT especialidad FROM medicos ORDER BY especialidad ASC")
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var result []string
	for rows.Next() {
		var e string
		if err := rows.Scan(&e); err != nil {
			return nil, err
		}
		result = append(result, e)
	}
	return result, rows.Err()
}
