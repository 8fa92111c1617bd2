package services

import (
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/avaldez21/clinica-backend/internal/citas/models"
	"github.com/avaldez21/clinica-backend/internal/common/authz"
	"github.com/avaldez21/clinica-backend/internal/common/validation"
	"github.com/avaldez21/clinica-backend/ws"
)

// PageSize matches the fixed listing page size used across resources.
const PageSize = 15

var (
	ErrSlotOcupado    = errors.New("el horario ya esta ocupado")
	ErrEstadoInvalido = errors.New("transicion de estado invalida")
	ErrFueraDeHorario = errors.New("fuera del horario de consulta")
)

const citaSelect = `
	SELECT c.id_cita, c.id_paciente, c.id_medico, c.fecha_hora, c.estado, c.motivo,
	       up.nombre AS nombre_paciente, um.nombre AS nombre_medico, m.especialidad
	FROM citas c
	JOIN pacientes p ON c.id_paciente = p.id_paciente
	JOIN usuarios up ON p.id_usuario  = up.id_usuario
	JOIN medicos m   ON c.id_medico   = m.id_medico
	JOIN usuarios um ON m.id_usuario  = um.id_usuario`

type CitaService struct {
	DB  *sql.DB
	Hub *ws.Hub
}

func NewCitaService(db *sql.DB, hub *ws.Hub) *CitaService {
	return &CitaService{DB: db, Hub: hub}
}

// ListCitas returns one ownership-scoped page, newest first.
func (s *CitaService) ListCitas(p *authz.Principal, f models.CitaFilter, page int) ([]models.CitaDetail, error) {
	var (
		query string
		args  []interface{}
	)

	switch p.Rol {
	case authz.RolMedico:
		query = citaSelect + " WHERE c.id_medico = ?"
		args = append(args, p.IDMedico)
	case authz.RolPaciente:
		query = citaSelect + " WHERE c.id_paciente = ?"
		args = append(args, p.IDPaciente)
	default:
		return nil, authz.ErrRoleForbidden
	}

	if f.Estado != "" {
		query += " AND c.estado = ?"
		args = append(args, f.Estado)
	}
	if f.Fecha != "" {
		query += " AND DATE(c.fecha_hora) = ?"
		args = append(args, f.Fecha)
	}

	if page <= 0 {
		page = 1
	}
	query += fmt.Sprintf(" ORDER BY c.fecha_hora DESC, c.id_cita ASC LIMIT %d OFFSET %d",
		PageSize, (page-1)*PageSize)

	rows, err := s.DB.Query(query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var result []models.CitaDetail
	for rows.Next() {
		var c models.CitaDetail
		if err := rows.Scan(&c.IDCita, &c.IDPaciente, &c.IDMedico, &c.FechaHora,
			&c.Estado, &c.Motivo, &c.NombrePaciente, &c.NombreMedico, &c.Especialidad); err != nil {
			return nil, err
		}
		result = append(result, c)
	}
	return result, rows.Err()
}

// GetCita fetches one cita and checks read ownership.
func (s *CitaService) GetCita(p *authz.Principal, id int) (*models.CitaDetail, error) {
	var c models.CitaDetail
	err := s.DB.QueryRow(citaSelect+" WHERE c.id_cita = ?", id).
		Scan(&c.IDCita, &c.IDPaciente, &c.IDMedico, &c.FechaHora,
			&c.Estado, &c.Motivo, &c.NombrePaciente, &c.NombreMedico, &c.Especialidad)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, authz.ErrNotFound
		}
		return nil, err
	}
	if err := authz.AuthorizeRead(p, c.IDMedico, c.IDPaciente); err != nil {
		return nil, err
	}
	return &c, nil
}

// CreateCita books a slot. A paciente books for themselves with a chosen
// medico; a medico schedules for a chosen paciente. The principal's own
// side of the cita is never taken from the payload.
func (s *CitaService) CreateCita(p *authz.Principal, req models.CitaRequest) (int64, error) {
	switch p.Rol {
	case authz.RolMedico:
		req.IDMedico = p.IDMedico
	case authz.RolPaciente:
		req.IDPaciente = p.IDPaciente
	default:
		return 0, authz.ErrRoleForbidden
	}

	v := validation.NewCollector()
	v.RequireID("id_paciente", req.IDPaciente)
	v.RequireID("id_medico", req.IDMedico)
	v.Require("motivo", req.Motivo, 255)

	var fechaHora time.Time
	if req.FechaHora == "" {
		v.Add("fecha_hora", "el campo es obligatorio")
	} else {
		var err error
		fechaHora, err = time.ParseInLocation("2006-01-02 15:04", req.FechaHora, time.Local)
		if err != nil {
			v.Add("fecha_hora", "fecha invalida, formato esperado YYYY-MM-DD HH:MM")
		} else if fechaHora.Minute() != 0 {
			// the slot grid is hourly; off-grid times are a client error,
			// not a conflict with an existing cita
			v.Add("fecha_hora", "las citas comienzan a la hora en punto")
		}
	}

	if req.IDPaciente > 0 {
		var dummy int
		err := s.DB.QueryRow("SELECT 1 FROM pacientes WHERE id_paciente = ?", req.IDPaciente).Scan(&dummy)
		if err == sql.ErrNoRows {
			v.Add("id_paciente", "el paciente no existe")
		} else if err != nil {
			return 0, err
		}
	}
	if req.IDMedico > 0 {
		var dummy int
		err := s.DB.QueryRow("SELECT 1 FROM medicos WHERE id_medico = ?", req.IDMedico).Scan(&dummy)
		if err == sql.ErrNoRows {
			v.Add("id_medico", "el medico no existe")
		} else if err != nil {
			return 0, err
		}
	}
	if err := v.Err(); err != nil {
		return 0, err
	}

	if fechaHora.Hour() < horaApertura || fechaHora.Hour() >= horaCierre {
		return 0, ErrFueraDeHorario
	}

	libre, err := s.slotLibre(req.IDMedico, fechaHora)
	if err != nil {
		return 0, err
	}
	if !libre {
		return 0, ErrSlotOcupado
	}

	res, err := s.DB.Exec(
		`INSERT INTO citas (id_paciente, id_medico, fecha_hora, estado, motivo)
		 VALUES (?, ?, ?, ?, ?)`,
		req.IDPaciente, req.IDMedico, fechaHora, models.EstadoPendiente, req.Motivo,
	)
	if err != nil {
		return 0, err
	}
	id, err := res.LastInsertId()
	if err != nil {
		return 0, err
	}

	s.Hub.Publish(ws.Event{
		Tipo:       "cita_creada",
		IDCita:     int(id),
		IDMedico:   req.IDMedico,
		IDPaciente: req.IDPaciente,
		Estado:     models.EstadoPendiente,
	})
	return id, nil
}

// Confirmar moves a pendiente cita to confirmada. Only the owning medico.
func (s *CitaService) Confirmar(p *authz.Principal, id int) error {
	return s.transition(p, id, models.EstadoPendiente, models.EstadoConfirmada, "cita_confirmada")
}

// Completar moves a confirmada cita to completada. Only the owning medico.
func (s *CitaService) Completar(p *authz.Principal, id int) error {
	return s.transition(p, id, models.EstadoConfirmada, models.EstadoCompletada, "cita_completada")
}

// Cancelar cancels a cita that has not been completed yet. The owning
// medico or the owning paciente may cancel.
func (s *CitaService) Cancelar(p *authz.Principal, id int) error {
	var (
		estado     string
		idMedico   int
		idPaciente int
	)
	err := s.DB.QueryRow(
		"SELECT estado, id_medico, id_paciente FROM citas WHERE id_cita = ?", id,
	).Scan(&estado, &idMedico, &idPaciente)
	if err == sql.ErrNoRows {
		return authz.ErrNotFound
	}
	if err != nil {
		return err
	}
	if err := authz.AuthorizeRead(p, idMedico, idPaciente); err != nil {
		return err
	}
	if estado == models.EstadoCompletada || estado == models.EstadoCancelada {
		return ErrEstadoInvalido
	}

	if _, err := s.DB.Exec(
		"UPDATE citas SET estado = ? WHERE id_cita = ?", models.EstadoCancelada, id,
	); err != nil {
		return err
	}

	s.Hub.Publish(ws.Event{
		Tipo:       "cita_cancelada",
		IDCita:     id,
		IDMedico:   idMedico,
		IDPaciente: idPaciente,
		Estado:     models.EstadoCancelada,
	})
	return nil
}

// Disponibilidad returns the free slots of a medico on a given day.
func (s *CitaService) Disponibilidad(idMedico int, fecha string) ([]time.Time, error) {
	day, err := time.ParseInLocation("2006-01-02", fecha, time.Local)
	if err != nil {
		return nil, &validation.ValidationError{
			Fields: map[string]string{"fecha": "fecha invalida, formato esperado YYYY-MM-DD"},
		}
	}

	rows, err := s.DB.Query(
		`SELECT fecha_hora FROM citas
		 WHERE id_medico = ? AND DATE(fecha_hora) = ? AND estado != ?`,
		idMedico, fecha, models.EstadoCancelada,
	)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var booked []time.Time
	for rows.Next() {
		var t time.Time
		if err := rows.Scan(&t); err != nil {
			return nil, err
		}
		booked = append(booked, t)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}

	return AvailableSlots(day, booked), nil
}

func (s *CitaService) transition(p *authz.Principal, id int, desde, hacia, evento string) error {
	var (
		estado     string
		idMedico   int
		idPaciente int
	)
	err := s.DB.QueryRow(
		"SELECT estado, id_medico, id_paciente FROM citas WHERE id_cita = ?", id,
	).Scan(&estado, &idMedico, &idPaciente)
	if err == sql.ErrNoRows {
		return authz.ErrNotFound
	}
	if err != nil {
		return err
	}
	if err := authz.AuthorizeWrite(p, idMedico); err != nil {
		return err
	}
	if estado != desde {
		return ErrEstadoInvalido
	}

	if _, err := s.DB.Exec(
		"UPDATE citas SET estado = ? WHERE id_cita = ?", hacia, id,
	); err != nil {
		return err
	}

	s.Hub.Publish(ws.Event{
		Tipo:       evento,
		IDCita:     id,
		IDMedico:   idMedico,
		IDPaciente: idPaciente,
		Estado:     hacia,
	})
	return nil
}

func (s *CitaService) slotLibre(idMedico int, fechaHora time.Time) (bool, error) {
	day := fechaHora.Format("2006-01-02")
	rows, err := s.DB.Query(
		`SELECT fecha_hora FROM citas
		 WHERE id_medico = ? AND DATE(fecha_hora) = ? AND estado != ?`,
		idMedico, day, models.EstadoCancelada,
	)
	if err != nil {
		return false, err
	}
	defer rows.Close()

	var booked []time.Time
	for rows.Next() {
		var t time.Time
		if err := rows.Scan(&t); err != nil {
			return false, err
		}
		booked = append(booked, t)
	}
	if err := rows.Err(); err != nil {
		return false, err
	}

	for _, slot := range AvailableSlots(fechaHora, booked) {
		if slot.Equal(fechaHora) {
			return true, nil
		}
	}
	return false, nil
}
