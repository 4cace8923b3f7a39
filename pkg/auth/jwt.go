package auth

import (
	"errors"
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

var ErrInvalidToken = errors.New("invalid token")

const (
	// RoleAdmin may read every hospital's queue.
	RoleAdmin = "admin"
	// RolePatient tokens only unlock the records of PatientID.
	RolePatient = "patient"
)

// StaffClaims identifies the caller. Staff tokens carry StaffID and an
// optional HospitalID; patient tokens carry RolePatient and PatientID.
type StaffClaims struct {
	StaffID    string `json:"staff_id,omitempty"`
	PatientID  string `json:"patient_id,omitempty"`
	HospitalID string `json:"hospital_id,omitempty"`
	Role       string `json:"role"`
	jwt.RegisteredClaims
}

func (c *StaffClaims) IsPatient() bool {
	return c.Role == RolePatient
}

type JWTService interface {
	GenerateToken(staffID, hospitalID, role string) (string, error)
	GeneratePatientToken(patientID string) (string, error)
	ValidateToken(token string) (*StaffClaims, error)
}

type jwtService struct {
	secret []byte
	issuer string
	ttl    time.Duration
	now    func() time.Time
}

func NewJWTService(secret, issuer string, ttl time.Duration) JWTService {
	if ttl <= 0 {
		ttl = 12 * time.Hour
	}
	return &jwtService{
		secret: []byte(secret),
		issuer: issuer,
		ttl:    ttl,
		now:    time.Now,
	}
}

func (s *jwtService) GenerateToken(staffID, hospitalID, role string) (string, error) {
	if staffID == "" {
		return "", fmt.Errorf("staff id is required")
	}
	if role == RolePatient {
		return "", fmt.Errorf("role %q is reserved for patient tokens", role)
	}
	return s.sign(StaffClaims{
		StaffID:          staffID,
		HospitalID:       hospitalID,
		Role:             role,
		RegisteredClaims: s.registered(staffID),
	})
}

func (s *jwtService) GeneratePatientToken(patientID string) (string, error) {
	if patientID == "" {
		return "", fmt.Errorf("patient id is required")
	}
	return s.sign(StaffClaims{
		PatientID:        patientID,
		Role:             RolePatient,
		RegisteredClaims: s.registered(patientID),
	})
}

func (s *jwtService) registered(subject string) jwt.RegisteredClaims {
	now := s.now()
	return jwt.RegisteredClaims{
		Subject:   subject,
		Issuer:    s.issuer,
		IssuedAt:  jwt.NewNumericDate(now),
		ExpiresAt: jwt.NewNumericDate(now.Add(s.ttl)),
	}
}

func (s *jwtService) sign(claims StaffClaims) (string, error) {
	signed, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(s.secret)
	if err != nil {
		return "", fmt.Errorf("failed to sign token: %w", err)
	}
	return signed, nil
}

func (s *jwtService) ValidateToken(token string) (*StaffClaims, error) {
	claims := &StaffClaims{}
	parsed, err := jwt.ParseWithClaims(token, claims, func(t *jwt.Token) (interface{}, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method: %v", t.Header["alg"])
		}
		return s.secret, nil
	}, jwt.WithIssuer(s.issuer), jwt.WithTimeFunc(s.now))
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidToken, err)
	}
	if !parsed.Valid {
		return nil, ErrInvalidToken
	}
	if claims.IsPatient() {
		if claims.PatientID == "" || claims.StaffID != "" {
			return nil, fmt.Errorf("%w: malformed patient claims", ErrInvalidToken)
		}
	} else if claims.StaffID == "" {
		return nil, fmt.Errorf("%w: missing staff id", ErrInvalidToken)
	}
	return claims, nil
}
