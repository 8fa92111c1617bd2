package models

import "time"

// Tratamiento belongs to one paciente, one medico and one diagnostico. The
// diagnostico must have been authored by the same medico.
type Tratamiento struct {
	IDTratamiento int       `json:"id_tratamiento"`
	IDPaciente    int       `json:"id_paciente"`
	IDMedico      int       `json:"id_medico"`
	IDDiagnostico int       `json:"id_diagnostico"`
	Nombre        string    `json:"nombre"`
	Dosis         string    `json:"dosis"`
	Frecuencia    string    `json:"frecuencia"`
	Duracion      string    `json:"duracion"`
	Observaciones string    `json:"observaciones,omitempty"`
	FechaInicio   time.Time `json:"fecha_inicio"`
	Activo        bool      `json:"activo"`
}

type TratamientoDetail struct {
	Tratamiento
	NombrePaciente         string `json:"nombre_paciente"`
	NombreMedico           string `json:"nombre_medico"`
	DescripcionDiagnostico string `json:"descripcion_diagnostico"`
}

type TratamientoRequest struct {
	IDPaciente    int    `json:"id_paciente"`
	IDDiagnostico int    `json:"id_diagnostico"`
	Nombre        string `json:"nombre"`
	Dosis         string `json:"dosis"`
	Frecuencia    string `json:"frecuencia"`
	Duracion      string `json:"duracion"`
	Observaciones string `json:"observaciones"`
	FechaInicio   string `json:"fecha_inicio"`
}

// TratamientoUpdateRequest: paciente and diagnostico references are
// immutable after creation.
type TratamientoUpdateRequest struct {
	Nombre        string `json:"nombre"`
	Dosis         string `json:"dosis"`
	Frecuencia    string `json:"frecuencia"`
	Duracion      string `json:"duracion"`
	Observaciones string `json:"observaciones"`
	Activo        *bool  `json:"activo"`
}

type TratamientoFilter struct {
	Paciente string // substring of the paciente name, case-insensitive
	Estado   string // "activo" | "inactivo" | "" (no filter)
}
