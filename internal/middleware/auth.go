package middleware

import (
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/jwalitptl/aegis-triage/pkg/auth"
	"github.com/jwalitptl/aegis-triage/pkg/errors"
	"github.com/jwalitptl/aegis-triage/pkg/httputil"
)

const ContextStaffClaims = "staff_claims"

type AuthMiddleware struct {
	jwt auth.JWTService
}

func NewAuthMiddleware(jwt auth.JWTService) *AuthMiddleware {
	return &AuthMiddleware{jwt: jwt}
}

// Authenticate verifies the staff bearer token and stores its claims in the
// gin context. Patient tokens are refused.
func (m *AuthMiddleware) Authenticate() gin.HandlerFunc {
	return func(c *gin.Context) {
		claims, ok := m.bearer(c)
		if !ok {
			return
		}
		if claims.IsPatient() {
			httputil.RespondWithError(c, errors.Forbidden("staff token required"))
			return
		}
		c.Set(ContextStaffClaims, claims)
		c.Next()
	}
}

// AuthenticatePatient guards routes addressed by a patient id in param.
// Staff tokens pass. Patient tokens pass only for their own id.
func (m *AuthMiddleware) AuthenticatePatient(param string) gin.HandlerFunc {
	return func(c *gin.Context) {
		claims, ok := m.bearer(c)
		if !ok {
			return
		}
		if claims.IsPatient() && claims.PatientID != c.Param(param) {
			httputil.RespondWithError(c, errors.Forbidden("token does not grant access to this patient"))
			return
		}
		c.Set(ContextStaffClaims, claims)
		c.Next()
	}
}

func (m *AuthMiddleware) bearer(c *gin.Context) (*auth.StaffClaims, bool) {
	authHeader := c.GetHeader("Authorization")
	parts := strings.SplitN(authHeader, " ", 2)
	if len(parts) != 2 || !strings.EqualFold(parts[0], "Bearer") {
		httputil.RespondWithError(c, errors.Unauthorized(nil))
		return nil, false
	}

	claims, err := m.jwt.ValidateToken(parts[1])
	if err != nil {
		httputil.RespondWithError(c, errors.Unauthorized(err))
		return nil, false
	}
	return claims, true
}

// RequireRole rejects staff whose role is not in roles. It must run after
// Authenticate.
func (m *AuthMiddleware) RequireRole(roles ...string) gin.HandlerFunc {
	return func(c *gin.Context) {
		claims, ok := StaffClaims(c)
		if !ok {
			httputil.RespondWithError(c, errors.Unauthorized(nil))
			return
		}
		for _, r := range roles {
			if claims.Role == r {
				c.Next()
				return
			}
		}
		httputil.RespondWithError(c, errors.Forbidden("permission denied"))
	}
}

// StaffClaims returns the claims stored by Authenticate.
func StaffClaims(c *gin.Context) (*auth.StaffClaims, bool) {
	v, exists := c.Get(ContextStaffClaims)
	if !exists {
		return nil, false
	}
	claims, ok := v.(*auth.StaffClaims)
	return claims, ok
}

// HospitalVisible reports whether the caller may see a record assigned to
// hospitalID. Admins, patients and unauthenticated internal callers see
// everything; other staff see their hospital and the unassigned pool.
func HospitalVisible(c *gin.Context, hospitalID string) bool {
	claims, ok := StaffClaims(c)
	if !ok || claims.Role == auth.RoleAdmin || claims.IsPatient() {
		return true
	}
	return hospitalID == "" || hospitalID == claims.HospitalID
}
