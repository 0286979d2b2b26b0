package middleware

import (
	"fmt"
	"os"
	"strings"

	"github.com/AkshiGarg/nagarro-leave-manager/internal/shared/apperror"
	"github.com/AkshiGarg/nagarro-leave-manager/internal/shared/response"

	"github.com/gin-gonic/gin"
	"github.com/golang-jwt/jwt/v5"
)

// ChannelAuth authenticates the channel connector posting turns on the
// users' behalf. Connectors present an HS256 bearer token whose
// channel_id claim identifies them; end users themselves never
// authenticate to this service.
func ChannelAuth() gin.HandlerFunc {
	return func(c *gin.Context) {
		authHeader := c.GetHeader("Authorization")
		tokenString, found := strings.CutPrefix(authHeader, "Bearer ")
		if !found || tokenString == "" {
			writeAuthError(c, "Token not found")
			return
		}

		token, err := jwt.Parse(tokenString, func(token *jwt.Token) (interface{}, error) {
			if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
				return nil, fmt.Errorf("unexpected signing method")
			}
			return []byte(os.Getenv("CHANNEL_JWT_SECRET")), nil
		})
		if err != nil || !token.Valid {
			if err != nil && strings.Contains(err.Error(), "expired") {
				writeAuthError(c, "Token has expired")
				return
			}
			writeAuthError(c, "Invalid token")
			return
		}

		claims, ok := token.Claims.(jwt.MapClaims)
		if !ok {
			writeAuthError(c, "Invalid token claims")
			return
		}

		channelID, ok := claims["channel_id"].(string)
		if !ok || channelID == "" {
			writeAuthError(c, "Channel ID not found in token")
			return
		}

		c.Set("channel_id", channelID)
		c.Next()
	}
}

func writeAuthError(c *gin.Context, message string) {
	response.Error(c, apperror.ErrUnauthorized.HTTPStatus, apperror.ErrUnauthorized.Code, message, nil)
	c.Abort()
}
