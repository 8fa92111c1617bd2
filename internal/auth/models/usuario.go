package models

// Usuario is the identity record. Medicos and pacientes own exactly one
// profile row keyed by id_usuario.
type Usuario struct {
	IDUsuario int    `json:"id_usuario"`
	Nombre    string `json:"nombre"`
	Email     string `json:"email"`
	Password  string `json:"-"`
	Rol       string `json:"rol"`
	Activo    bool   `json:"activo"`
}

type LoginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

type LoginResponse struct {
	Token      string `json:"token"`
	IDUsuario  int    `json:"id_usuario"`
	Nombre     string `json:"nombre"`
	Rol        string `json:"rol"`
	IDMedico   int    `json:"id_medico,omitempty"`
	IDPaciente int    `json:"id_paciente,omitempty"`
}
