package authz

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/avaldez21/clinica-backend/pkg/utils"
)

func TestFromClaimsMedico(t *testing.T) {
	p, err := FromClaims(&utils.Claims{IDUsuario: 3, Rol: RolMedico, IDMedico: 7, Nombre: "Dra. Ruiz"})
	require.NoError(t, err)
	assert.Equal(t, RolMedico, p.Rol)
	assert.Equal(t, 7, p.IDMedico)
}

func TestFromClaimsPerfilFaltante(t *testing.T) {
	_, err := FromClaims(&utils.Claims{IDUsuario: 3, Rol: RolMedico})
	assert.ErrorIs(t, err, ErrProfileMissing)

	_, err = FromClaims(&utils.Claims{IDUsuario: 4, Rol: RolPaciente})
	assert.ErrorIs(t, err, ErrProfileMissing)
}

func TestFromClaimsAdministradorSinPerfil(t *testing.T) {
	p, err := FromClaims(&utils.Claims{IDUsuario: 1, Rol: RolAdministrador})
	require.NoError(t, err)
	assert.Zero(t, p.IDMedico)
	assert.Zero(t, p.IDPaciente)
}

func TestFromClaimsRolDesconocido(t *testing.T) {
	_, err := FromClaims(&utils.Claims{IDUsuario: 1, Rol: "recepcionista"})
	assert.ErrorIs(t, err, ErrRoleForbidden)
}

func TestAuthorizeWritePacienteSiempreDenegado(t *testing.T) {
	p := &Principal{Rol: RolPaciente, IDPaciente: 5}
	assert.ErrorIs(t, AuthorizeWrite(p, 1), ErrRoleForbidden)
}

func TestAuthorizeWriteOtroMedico(t *testing.T) {
	d2 := &Principal{Rol: RolMedico, IDMedico: 2}
	assert.ErrorIs(t, AuthorizeWrite(d2, 1), ErrOwnershipForbidden)
}

func TestAuthorizeWriteDuenio(t *testing.T) {
	d1 := &Principal{Rol: RolMedico, IDMedico: 1}
	assert.NoError(t, AuthorizeWrite(d1, 1))
}

func TestAuthorizeRead(t *testing.T) {
	medico := &Principal{Rol: RolMedico, IDMedico: 1}
	paciente := &Principal{Rol: RolPaciente, IDPaciente: 9}
	admin := &Principal{Rol: RolAdministrador}

	assert.NoError(t, AuthorizeRead(medico, 1, 9))
	assert.ErrorIs(t, AuthorizeRead(medico, 2, 9), ErrOwnershipForbidden)
	assert.NoError(t, AuthorizeRead(paciente, 2, 9))
	assert.ErrorIs(t, AuthorizeRead(paciente, 2, 8), ErrOwnershipForbidden)
	// administradores are not part of the clinical flows
	assert.ErrorIs(t, AuthorizeRead(admin, 1, 9), ErrRoleForbidden)
}

func TestRequireMedico(t *testing.T) {
	assert.NoError(t, RequireMedico(&Principal{Rol: RolMedico, IDMedico: 1}))
	assert.ErrorIs(t, RequireMedico(&Principal{Rol: RolPaciente, IDPaciente: 1}), ErrRoleForbidden)
	assert.ErrorIs(t, RequireMedico(&Principal{Rol: RolAdministrador}), ErrRoleForbidden)
}
