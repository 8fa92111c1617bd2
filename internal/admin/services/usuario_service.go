package services

import (
	"database/sql"
	"fmt"
	"strings"

	"golang.org/x/crypto/bcrypt"

	authmodels "github.com/avaldez21/clinica-backend/internal/auth/models"
	"github.com/avaldez21/clinica-backend/internal/common/authz"
	"github.com/avaldez21/clinica-backend/internal/common/validation"
)

const PageSize = 15

// CreateUsuarioRequest creates the identity row plus the role profile in
// one transaction.
type CreateUsuarioRequest struct {
	Nombre          string `json:"nombre"`
	Email           string `json:"email"`
	Password        string `json:"password"`
	Rol             string `json:"rol"`
	Especialidad    string `json:"especialidad"`     // medico only
	FechaNacimiento string `json:"fecha_nacimiento"` // paciente only
	Telefono        string `json:"telefono"`         // paciente only
}

type UsuarioFilter struct {
	Rol    string
	Nombre string
}

type UsuarioService struct {
	DB *sql.DB
}

func NewUsuarioService(db *sql.DB) *UsuarioService {
	return &UsuarioService{DB: db}
}

func requireAdministrador(p *authz.Principal) error {
	if p.Rol != authz.RolAdministrador {
		return authz.ErrRoleForbidden
	}
	return nil
}

// ListUsuarios returns one page of users, optionally narrowed by rol and
// nombre substring.
func (s *UsuarioService) ListUsuarios(p *authz.Principal, f UsuarioFilter, page int) ([]authmodels.Usuario, error) {
	if err := requireAdministrador(p); err != nil {
		return nil, err
	}

	query := "SELECT id_usuario, nombre, email, rol, activo FROM usuarios WHERE 1=1"
	var args []interface{}
	if f.Rol != "" {
		query += " AND rol = ?"
		args = append(args, f.Rol)
	}
	if f.Nombre != "" {
		query += " AND LOWER(nombre) LIKE LOWER(?)"
		args = append(args, "%"+f.Nombre+"%")
	}

	if page <= 0 {
		page = 1
	}
	query += fmt.Sprintf(" ORDER BY nombre ASC LIMIT %d OFFSET %d", PageSize, (page-1)*PageSize)

	rows, err := s.DB.Query(query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var result []authmodels.Usuario
	for rows.Next() {
		var u authmodels.Usuario
		if err := rows.Scan(&u.IDUsuario, &u.Nombre, &u.Email, &u.Rol, &u.Activo); err != nil {
			return nil, err
		}
		result = append(result, u)
	}
	return result, rows.Err()
}

// CreateUsuario inserts the usuario plus its medico/paciente profile row
// inside one transaction so a half-created account never survives.
func (s *UsuarioService) CreateUsuario(p *authz.Principal, req CreateUsuarioRequest) (int64, error) {
	if err := requireAdministrador(p); err != nil {
		return 0, err
	}

	req.Rol = strings.ToLower(strings.TrimSpace(req.Rol))

	v := validation.NewCollector()
	v.Require("nombre", req.Nombre, 255)
	v.Require("email", req.Email, 255)
	v.Require("password", req.Password, 255)
	if req.Password != "" && len(req.Password) < 8 {
		v.Add("password", "minimo 8 caracteres")
	}
	switch req.Rol {
	case authz.RolAdministrador, authz.RolPaciente:
	case authz.RolMedico:
		v.Require("especialidad", req.Especialidad, 255)
	default:
		v.Add("rol", "rol invalido")
	}

	if req.Email != "" {
		var dummy int
		err := s.DB.QueryRow("SELECT 1 FROM usuarios WHERE email = ?", req.Email).Scan(&dummy)
		if err == nil {
			v.Add("email", "el email ya esta registrado")
		} else if err != sql.ErrNoRows {
			return 0, err
		}
	}
	if err := v.Err(); err != nil {
		return 0, err
	}

	hashed, err := bcrypt.GenerateFromPassword([]byte(req.Password), bcrypt.DefaultCost)
	if err != nil {
		return 0, err
	}

	tx, err := s.DB.Begin()
	if err != nil {
		return 0, err
	}

	res, err := tx.Exec(
		`INSERT INTO usuarios (nombre, email, password, rol, activo)
		 VALUES (?, ?, ?, ?, TRUE)`,
		req.Nombre, req.Email, string(hashed), req.Rol,
	)
	if err != nil {
		tx.Rollback()
		return 0, err
	}
	idUsuario, err := res.LastInsertId()
	if err != nil {
		tx.Rollback()
		return 0, err
	}

	switch req.Rol {
	case authz.RolMedico:
		_, err = tx.Exec(
			"INSERT INTO medicos (id_usuario, especialidad) VALUES (?, ?)",
			idUsuario, req.Especialidad,
		)
	case authz.RolPaciente:
		_, err = tx.Exec(
			`INSERT INTO pacientes (id_usuario, fecha_nacimiento, telefono)
			 VALUES (?, ?, ?)`,
			idUsuario,
			sql.NullString{String: req.FechaNacimiento, Valid: req.FechaNacimiento != ""},
			sql.NullString{String: req.Telefono, Valid: req.Telefono != ""},
		)
	}
	if err != nil {
		tx.Rollback()
		return 0, err
	}

	if err := tx.Commit(); err != nil {
		return 0, err
	}
	return idUsuario, nil
}

// ToggleActivo flips the activo flag of a user and returns the new value.
func (s *UsuarioService) ToggleActivo(p *authz.Principal, idUsuario int) (bool, error) {
	if err := requireAdministrador(p); err != nil {
		return false, err
	}

	var activo bool
	err := s.DB.QueryRow(
		"SELECT activo FROM usuarios WHERE id_usuario = ?", idUsuario,
	).Scan(&activo)
	if err == sql.ErrNoRows {
		return false, authz.ErrNotFound
	}
	if err != nil {
		return false, err
	}

	nuevo := !activo
	if _, err := s.DB.Exec(
		"UPDATE usuarios SET activo = ? WHERE id_usuario = ?", nuevo, idUsuario,
	); err != nil {
		return false, err
	}
	return nuevo, nil
}

// ResetPassword replaces a user's password with a freshly hashed one.
func (s *UsuarioService) ResetPassword(p *authz.Principal, idUsuario int, password string) error {
	if err := requireAdministrador(p); err != nil {
		return err
	}

	v := validation.NewCollector()
	v.Require("password", password, 255)
	if password != "" && len(password) < 8 {
		v.Add("password", "minimo 8 caracteres")
	}
	if err := v.Err(); err != nil {
		return err
	}

	var dummy int
	err := s.DB.QueryRow("SELECT 1 FROM usuarios WHERE id_usuario = ?", idUsuario).Scan(&dummy)
	if err == sql.ErrNoRows {
		return authz.ErrNotFound
	}
	if err != nil {
		return err
	}

	hashed, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return err
	}
	_, err = s.DB.Exec(
		"UPDATE usuarios SET password = ? WHERE id_usuario = ?", string(hashed), idUsuario,
	)
	return err
}
