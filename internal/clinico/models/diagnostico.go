package models

import "time"

// Diagnostico belongs to exactly one paciente and one medico.
type Diagnostico struct {
	IDDiagnostico int       `json:"id_diagnostico"`
	IDPaciente    int       `json:"id_paciente"`
	IDMedico      int       `json:"id_medico"`
	Fecha         time.Time `json:"fecha"`
	Descripcion   string    `json:"descripcion"`
}

// DiagnosticoDetail is the list/detail row joined with the paciente and
// medico names.
type DiagnosticoDetail struct {
	Diagnostico
	NombrePaciente string `json:"nombre_paciente"`
	NombreMedico   string `json:"nombre_medico"`
}

// DiagnosticoRequest is the create payload. id_medico is never taken from
// the client; it comes from the principal.
type DiagnosticoRequest struct {
	IDPaciente  int    `json:"id_paciente"`
	Fecha       string `json:"fecha"`
	Descripcion string `json:"descripcion"`
}

// DiagnosticoUpdateRequest is the allow-listed update payload. The paciente
// reference is immutable after creation.
type DiagnosticoUpdateRequest struct {
	Fecha       string `json:"fecha"`
	Descripcion string `json:"descripcion"`
}

// DiagnosticoFilter narrows a medico's own listing. Filters never widen the
// ownership scope; pacientes get no filters.
type DiagnosticoFilter struct {
	Paciente string // substring of the paciente name, case-insensitive
	Fecha    string // exact date, YYYY-MM-DD
}
