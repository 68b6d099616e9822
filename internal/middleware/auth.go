package middleware

import (
	"errors"
	"strings"

	"nexum/internal/auth"

	"github.com/gin-gonic/gin"
	"github.com/golang-jwt/jwt/v5"
	"go.uber.org/zap"
)

const (
	claimKey         = "leader_claim"
	DemoLeaderHeader = "X-Demo-Leader"
)

// LeaderClaim reads the caller's claim from a bearer token and, when
// allowDemoHeader is set, from the X-Demo-Leader header. It never rejects a
// request: a missing, malformed or invalid token leaves the caller anonymous
// and routes that need a leader answer 403 themselves.
func LeaderClaim(jwtManager *auth.JWTManager, allowDemoHeader bool, logger *zap.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		var claim auth.LeaderClaim

		if userID, ok := bearerSubject(c.GetHeader("Authorization"), jwtManager, logger); ok {
			claim.UserID = userID
		}

		if allowDemoHeader && c.GetHeader(DemoLeaderHeader) == "true" {
			claim.DemoLeader = true
		}

		c.Set(claimKey, claim)
		c.Next()
	}
}

func bearerSubject(header string, jwtManager *auth.JWTManager, logger *zap.Logger) (string, bool) {
	if header == "" {
		return "", false
	}
	parts := strings.Split(header, " ")
	if len(parts) != 2 || parts[0] != "Bearer" {
		logger.Debug("Ignoring non-bearer Authorization header")
		return "", false
	}
	if jwtManager == nil {
		return "", false
	}

	claims, err := jwtManager.VerifyToken(parts[1])
	if err != nil {
		if errors.Is(err, jwt.ErrTokenExpired) {
			logger.Info("Ignoring expired JWT token")
		} else {
			logger.Warn("Ignoring invalid JWT token", zap.Error(err))
		}
		return "", false
	}
	return claims.Subject, true
}

// ClaimFrom returns the claim stored by LeaderClaim, or an anonymous one.
func ClaimFrom(c *gin.Context) auth.LeaderClaim {
	if v, ok := c.Get(claimKey); ok {
		if claim, ok := v.(auth.LeaderClaim); ok {
			return claim
		}
	}
	return auth.LeaderClaim{}
}
