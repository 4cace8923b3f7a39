package auth

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestGenerateAndValidate(t *testing.T) {
	svc := NewJWTService("secret", "aegis", time.Hour)

	token, err := svc.GenerateToken("nurse-1", "hosp-9", "nurse")
	require.NoError(t, err)

	claims, err := svc.ValidateToken(token)
	require.NoError(t, err)
	assert.Equal(t, "nurse-1", claims.StaffID)
	assert.Equal(t, "hosp-9", claims.HospitalID)
	assert.Equal(t, "nurse", claims.Role)
}

func TestValidateRejectsWrongSecret(t *testing.T) {
	token, err := NewJWTService("a", "aegis", time.Hour).GenerateToken("x", "", "nurse")
	require.NoError(t, err)

	_, err = NewJWTService("b", "aegis", time.Hour).ValidateToken(token)
	assert.ErrorIs(t, err, ErrInvalidToken)
}

func TestValidateRejectsExpired(t *testing.T) {
	svc := NewJWTService("secret", "aegis", time.Minute).(*jwtService)
	svc.now = func() time.Time { return time.Now().Add(-time.Hour) }
	token, err := svc.GenerateToken("x", "", "nurse")
	require.NoError(t, err)

	_, err = NewJWTService("secret", "aegis", time.Minute).ValidateToken(token)
	assert.ErrorIs(t, err, ErrInvalidToken)
}

func TestGenerateRequiresStaffID(t *testing.T) {
	_, err := NewJWTService("secret", "aegis", time.Hour).GenerateToken("", "", "")
	assert.Error(t, err)
}

func TestPatientToken(t *testing.T) {
	svc := NewJWTService("secret", "aegis", time.Hour)
	token, err := svc.GeneratePatientToken("p-7")
	require.NoError(t, err)

	claims, err := svc.ValidateToken(token)
	require.NoError(t, err)
	assert.True(t, claims.IsPatient())
	assert.Equal(t, "p-7", claims.PatientID)
	assert.Empty(t, claims.StaffID)

	_, err = svc.GeneratePatientToken("")
	assert.Error(t, err)
}

func TestStaffTokenCannotClaimPatientRole(t *testing.T) {
	_, err := NewJWTService("secret", "aegis", time.Hour).GenerateToken("s-1", "", RolePatient)
	assert.Error(t, err)
}
