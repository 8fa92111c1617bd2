package utils

import (
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v4"

	"github.com/avaldez21/clinica-backend/config"
)

// Claims carries the authenticated user plus the resolved profile id for the
// role. IDMedico / IDPaciente are zero when the role does not apply.
type Claims struct {
	IDUsuario  int    `json:"id_usuario"`
	Rol        string `json:"rol"`
	IDMedico   int    `json:"id_medico,omitempty"`
	IDPaciente int    `json:"id_paciente,omitempty"`
	Nombre     string `json:"nombre"`
	jwt.RegisteredClaims
}

// GenerateJWTToken signs a token with the flat claim payload and the given
// expiry.
func GenerateJWTToken(idUsuario int, rol string, idMedico, idPaciente int, nombre string, exp time.Time) (string, error) {
	jwtKey := []byte(config.LoadConfig().JWTSecret)
	if len(jwtKey) == 0 {
		return "", fmt.Errorf("JWT secret key is missing")
	}

	claims := Claims{
		IDUsuario:  idUsuario,
		Rol:        rol,
		IDMedico:   idMedico,
		IDPaciente: idPaciente,
		Nombre:     nombre,
		RegisteredClaims: jwt.RegisteredClaims{
			ExpiresAt: jwt.NewNumericDate(exp),
			IssuedAt:  jwt.NewNumericDate(time.Now()),
		},
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	tokenString, err := token.SignedString(jwtKey)
	if err != nil {
		return "", err
	}
	return tokenString, nil
}

// ValidateJWTToken parses and validates a token and returns its claims.
func ValidateJWTToken(tokenString string) (*Claims, error) {
	jwtKey := []byte(config.LoadConfig().JWTSecret)
	if len(jwtKey) == 0 {
		return nil, fmt.Errorf("JWT secret key is missing")
	}

	claims := &Claims{}
	token, err := jwt.ParseWithClaims(tokenString, claims, func(token *jwt.Token) (interface{}, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method: %v", token.Header["alg"])
		}
		return jwtKey, nil
	})
	if err != nil {
		return nil, err
	}
	if !token.Valid {
		return nil, fmt.Errorf("invalid token")
	}
	return claims, nil
}
