package middleware

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"

	"github.com/kaumahan/harvest-market-api/internal/model"
)

const (
	ctxAccountID      = "accountID"
	ctxRole           = "accountRole"
	ctxStaff          = "accountStaff"
	ctxApprovedSeller = "accountApprovedSeller"
)

func AuthMiddleware(secret string) gin.HandlerFunc {
	return func(c *gin.Context) {
		header := c.GetHeader("Authorization")
		if !strings.HasPrefix(header, "Bearer ") {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "unauthorized"})
			return
		}

		token, err := jwt.Parse(header[7:], func(t *jwt.Token) (interface{}, error) {
			if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
				return nil, jwt.ErrSignatureInvalid
			}
			return []byte(secret), nil
		})
		if err != nil || !token.Valid {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "invalid token"})
			return
		}

		claims, ok := token.Claims.(jwt.MapClaims)
		if !ok {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "invalid claims"})
			return
		}

		sub, _ := claims["sub"].(string)
		accountID, err := uuid.Parse(sub)
		if err != nil {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "invalid account id"})
			return
		}

		role, _ := claims["role"].(string)
		staff, _ := claims["staff"].(bool)
		approved, _ := claims["approved"].(bool)

		c.Set(ctxAccountID, accountID)
		c.Set(ctxRole, role)
		c.Set(ctxStaff, staff)
		c.Set(ctxApprovedSeller, role == string(model.RoleSeller) && approved)
		c.Next()
	}
}

func RequireBuyer() gin.HandlerFunc {
	return func(c *gin.Context) {
		if GetRole(c) != model.RoleBuyer {
			c.AbortWithStatusJSON(http.StatusForbidden, gin.H{"error": "buyer account required"})
			return
		}
		c.Next()
	}
}

// RequireApprovedSeller distinguishes a wrong account type from a
// seller whose application is still pending.
func RequireApprovedSeller() gin.HandlerFunc {
	return func(c *gin.Context) {
		if GetRole(c) != model.RoleSeller {
			c.AbortWithStatusJSON(http.StatusForbidden, gin.H{"error": "seller account required"})
			return
		}
		if !IsApprovedSeller(c) {
			c.AbortWithStatusJSON(http.StatusForbidden, gin.H{"error": "seller approval pending"})
			return
		}
		c.Next()
	}
}

func RequireStaff() gin.HandlerFunc {
	return func(c *gin.Context) {
		if !IsStaff(c) {
			c.AbortWithStatusJSON(http.StatusForbidden, gin.H{"error": "staff only"})
			return
		}
		c.Next()
	}
}

func GetAccountID(c *gin.Context) uuid.UUID {
	id, _ := c.Get(ctxAccountID)
	uid, _ := id.(uuid.UUID)
	return uid
}

func GetRole(c *gin.Context) model.Role {
	role, _ := c.Get(ctxRole)
	r, _ := role.(string)
	return model.Role(r)
}

func IsStaff(c *gin.Context) bool {
	v, _ := c.Get(ctxStaff)
	staff, _ := v.(bool)
	return staff
}

func IsApprovedSeller(c *gin.Context) bool {
	v, _ := c.Get(ctxApprovedSeller)
	approved, _ := v.(bool)
	return approved
}
