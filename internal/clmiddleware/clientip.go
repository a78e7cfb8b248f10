package clmiddleware

import (
	"strings"

	"github.com/gin-gonic/gin"
)

// ClientAddress récupère l'adresse du visiteur : premier X-Forwarded-For, X-Real-IP,
// puis l'adresse de la connexion, "unknown" sinon
func ClientAddress(c *gin.Context) string {
	if fwd := c.GetHeader("X-Forwarded-For"); fwd != "" {
		ip := strings.TrimSpace(strings.Split(fwd, ",")[0])
		if ip != "" {
			return ip
		}
	}
	if ip := strings.TrimSpace(c.GetHeader("X-Real-IP")); ip != "" {
		return ip
	}
	if ip := c.ClientIP(); ip != "" {
		return ip
	}
	return "unknown"
}
