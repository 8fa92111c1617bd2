package services

import (
	"database/sql"
	"errors"

	"golang.org/x/crypto/bcrypt"

	"github.com/avaldez21/clinica-backend/internal/auth/models"
	"github.com/avaldez21/clinica-backend/internal/common/authz"
)

var (
	ErrInvalidCredentials = errors.New("email o password incorrectos")
	ErrUsuarioInactivo    = errors.New("la cuenta esta desactivada")
)

type AuthService struct {
	DB *sql.DB
}

func NewAuthService(db *sql.DB) *AuthService {
	return &AuthService{DB: db}
}

// Authenticate validates credentials and resolves the role profile into a
// Principal. A medico/paciente user without its profile row is broken
// referential integrity and surfaces as authz.ErrProfileMissing.
func (s *AuthService) Authenticate(email, password string) (*authz.Principal, error) {
	var u models.Usuario
	err := s.DB.QueryRow(
		`SELECT id_usuario, nombre, email, password, rol, activo
		 FROM usuarios
		 WHERE email = ?`,
		email,
	).Scan(&u.IDUsuario, &u.Nombre, &u.Email, &u.Password, &u.Rol, &u.Activo)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, ErrInvalidCredentials
		}
		return nil, err
	}

	if err := bcrypt.CompareHashAndPassword([]byte(u.Password), []byte(password)); err != nil {
		return nil, ErrInvalidCredentials
	}
	if !u.Activo {
		return nil, ErrUsuarioInactivo
	}

	p := &authz.Principal{
		IDUsuario: u.IDUsuario,
		Rol:       u.Rol,
		Nombre:    u.Nombre,
	}

	switch u.Rol {
	case authz.RolMedico:
		err = s.DB.QueryRow(
			"SELECT id_medico FROM medicos WHERE id_usuario = ?",
			u.IDUsuario,
		).Scan(&p.IDMedico)
	case authz.RolPaciente:
		err = s.DB.QueryRow(
			"SELECT id_paciente FROM pacientes WHERE id_usuario = ?",
			u.IDUsuario,
		).Scan(&p.IDPaciente)
	case authz.RolAdministrador:
		return p, nil
	default:
		return nil, authz.ErrRoleForbidden
	}
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, authz.ErrProfileMissing
		}
		return nil, err
	}

	return p, nil
}
