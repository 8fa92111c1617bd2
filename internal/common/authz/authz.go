// Package authz holds the role and ownership checks shared by every
// resource: who the caller is (Principal) and whether the caller may read
// or mutate a given clinical record.
package authz

import (
	"errors"

	"github.com/avaldez21/clinica-backend/pkg/utils"
)

const (
	RolAdministrador = "administrador"
	RolMedico        = "medico"
	RolPaciente      = "paciente"
)

var (
	// ErrRoleForbidden: the caller's role cannot perform the operation at all.
	ErrRoleForbidden = errors.New("rol no autorizado para esta operacion")
	// ErrOwnershipForbidden: right role, but the record belongs to someone else.
	ErrOwnershipForbidden = errors.New("el registro pertenece a otro usuario")
	// ErrNotFound: no record with the requested id.
	ErrNotFound = errors.New("registro no encontrado")
	// ErrProfileMissing: a medico/paciente user without its profile row.
	// Broken referential integrity, treated as a server fault.
	ErrProfileMissing = errors.New("usuario sin perfil vinculado")
)

// Principal is the authenticated actor behind a request. It is passed
// explicitly into every service method; there is no ambient current user.
type Principal struct {
	IDUsuario  int
	Rol        string
	IDMedico   int
	IDPaciente int
	Nombre     string
}

// FromClaims builds the Principal out of validated JWT claims. A medico or
// paciente token without its profile id means the login flow handed out a
// token for a user whose profile row is gone.
func FromClaims(claims *utils.Claims) (*Principal, error) {
	p := &Principal{
		IDUsuario:  claims.IDUsuario,
		Rol:        claims.Rol,
		IDMedico:   claims.IDMedico,
		IDPaciente: claims.IDPaciente,
		Nombre:     claims.Nombre,
	}
	switch p.Rol {
	case RolMedico:
		if p.IDMedico == 0 {
			return nil, ErrProfileMissing
		}
	case RolPaciente:
		if p.IDPaciente == 0 {
			return nil, ErrProfileMissing
		}
	case RolAdministrador:
		// no linked profile
	default:
		return nil, ErrRoleForbidden
	}
	return p, nil
}

// RequireMedico rejects any principal that is not a medico. Create
// operations on clinical records use this before touching the payload.
func RequireMedico(p *Principal) error {
	if p.Rol != RolMedico {
		return ErrRoleForbidden
	}
	return nil
}

// RequirePaciente rejects any principal that is not a paciente.
func RequirePaciente(p *Principal) error {
	if p.Rol != RolPaciente {
		return ErrRoleForbidden
	}
	return nil
}

// AuthorizeWrite decides whether p may mutate a record owned by
// idMedicoOwner. Only the owning medico may write; callers must have
// fetched the record first so that a missing id surfaces as ErrNotFound
// before any ownership verdict.
func AuthorizeWrite(p *Principal, idMedicoOwner int) error {
	if p.Rol != RolMedico {
		return ErrRoleForbidden
	}
	if p.IDMedico != idMedicoOwner {
		return ErrOwnershipForbidden
	}
	return nil
}

// AuthorizeRead decides whether p may view a record linked to the given
// medico and paciente. The owning medico and the owning paciente both
// qualify; nobody else does.
func AuthorizeRead(p *Principal, idMedico, idPaciente int) error {
	switch p.Rol {
	case RolMedico:
		if p.IDMedico != idMedico {
			return ErrOwnershipForbidden
		}
	case RolPaciente:
		if p.IDPaciente != idPaciente {
			return ErrOwnershipForbidden
		}
	default:
		return ErrRoleForbidden
	}
	return nil
}
