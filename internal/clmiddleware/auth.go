package clmiddleware

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/golang-jwt/jwt/v5"
	"github.com/wasiahamad/Portfolio/internal/models/cllog"
)

const adminKey = "admin_subject"

type TokenParser interface {
	ParseToken(token string) (*jwt.RegisteredClaims, error)
}

// AuthRequired exige un en-tête Authorization: Bearer valide
func AuthRequired(parser TokenParser) gin.HandlerFunc {
	return func(c *gin.Context) {
		header := c.GetHeader("Authorization")
		scheme, token, found := strings.Cut(header, " ")
		if !found || !strings.EqualFold(scheme, "Bearer") || strings.TrimSpace(token) == "" {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"message": "No token provided"})
			return
		}

		claims, err := parser.ParseToken(strings.TrimSpace(token))
		if err != nil {
			cllog.Ctx(c.Request.Context()).Debug().Err(err).Str("ip", ClientAddress(c)).Msg("Token refusé")
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"message": "Invalid token"})
			return
		}

		c.Set(adminKey, claims.Subject)
		c.Next()
	}
}
