package models

import "time"

const (
	EstadoPendiente  = "pendiente"
	EstadoConfirmada = "confirmada"
	EstadoCompletada = "completada"
	EstadoCancelada  = "cancelada"
)

// Cita is an appointment between one paciente and one medico.
type Cita struct {
	IDCita     int       `json:"id_cita"`
	IDPaciente int       `json:"id_paciente"`
	IDMedico   int       `json:"id_medico"`
	FechaHora  time.Time `json:"fecha_hora"`
	Estado     string    `json:"estado"`
	Motivo     string    `json:"motivo"`
}

type CitaDetail struct {
	Cita
	NombrePaciente string `json:"nombre_paciente"`
	NombreMedico   string `json:"nombre_medico"`
	Especialidad   string `json:"especialidad"`
}

// CitaRequest: a paciente books with a medico, a medico schedules for a
// paciente. The owner side is always forced from the principal.
type CitaRequest struct {
	IDPaciente int    `json:"id_paciente"`
	IDMedico   int    `json:"id_medico"`
	FechaHora  string `json:"fecha_hora"` // YYYY-MM-DD HH:MM
	Motivo     string `json:"motivo"`
}

type CitaFilter struct {
	Estado string
	Fecha  string // exact date, YYYY-MM-DD
}

// Medico row for the public listing endpoints.
type Medico struct {
	IDMedico     int    `json:"id_medico"`
	IDUsuario    int    `json:"id_usuario"`
	Nombre       string `json:"nombre"`
	Especialidad string `json:"especialidad"`
}
