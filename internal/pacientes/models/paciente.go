package models

// Paciente is the roster row a medico works with: the profile joined
// with its usuario identity.
type Paciente struct {
	IDPaciente      int    `json:"id_paciente"`
	IDUsuario       int    `json:"id_usuario"`
	Nombre          string `json:"nombre"`
	Email           string `json:"email"`
	FechaNacimiento string `json:"fecha_nacimiento,omitempty"`
	Telefono        string `json:"telefono,omitempty"`
	Activo          bool   `json:"activo"`
}

// PacienteRequest registers a new paciente: the usuario identity plus
// the profile in one step.
type PacienteRequest struct {
	Nombre          string `json:"nombre"`
	Email           string `json:"email"`
	Password        string `json:"password"`
	FechaNacimiento string `json:"fecha_nacimiento"` // YYYY-MM-DD, optional
	Telefono        string `json:"telefono"`
}

// PacienteUpdateRequest: email and password stay out; credentials are
// reset through the admin flow.
type PacienteUpdateRequest struct {
	Nombre          string `json:"nombre"`
	FechaNacimiento string `json:"fecha_nacimiento"`
	Telefono        string `json:"telefono"`
}

type PacienteFilter struct {
	Nombre string // substring, case-insensitive
}
