// server/internal/api/middleware/auth.go
package middleware

import (
	"context"
	"net/http"
	"strings"
	"time"

	"courier-track-api-server/internal/auth"
	"courier-track-api-server/internal/models"

	"github.com/gin-gonic/gin"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
)

// Authenticate validates the bearer token and puts the user's identity
// into the request context.
func Authenticate(issuer *auth.TokenIssuer) gin.HandlerFunc {
	return func(c *gin.Context) {
		authHeader := c.GetHeader("Authorization")
		if authHeader == "" {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "Authorization header is required"})
			return
		}

		tokenString := strings.TrimPrefix(authHeader, "Bearer ")
		if tokenString == authHeader {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "Invalid token format"})
			return
		}

		claims, err := issuer.Parse(tokenString)
		if err != nil {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "Invalid or expired token"})
			return
		}

		c.Set("user_email", claims.Email)
		c.Set("user_role", claims.Role)
		c.Set("user_subject_id", claims.SubjectID)

		c.Next()
	}
}

// Authorize is a middleware factory that checks the caller's role.
func Authorize(allowedRoles ...string) gin.HandlerFunc {
	return func(c *gin.Context) {
		userRoleInterface, exists := c.Get("user_role")
		if !exists {
			// Should not happen when Authenticate runs first.
			c.AbortWithStatusJSON(http.StatusInternalServerError, gin.H{"error": "User role not found in context"})
			return
		}

		userRole, ok := userRoleInterface.(string)
		if !ok {
			c.AbortWithStatusJSON(http.StatusInternalServerError, gin.H{"error": "User role has an invalid type"})
			return
		}

		for _, role := range allowedRoles {
			if role == userRole {
				c.Next()
				return
			}
		}

		c.AbortWithStatusJSON(http.StatusForbidden, gin.H{"error": "You do not have permission to access this resource"})
	}
}

// RequireApprovedPartner re-checks the partner document on every request:
// a suspended or deactivated partner keeps a valid token until expiry, so
// the token alone is not enough.
func RequireApprovedPartner(db *mongo.Database) gin.HandlerFunc {
	return func(c *gin.Context) {
		subjectID := c.GetString("user_subject_id")
		oid, err := primitive.ObjectIDFromHex(subjectID)
		if err != nil {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "Invalid partner identity"})
			return
		}

		ctx, cancel := context.WithTimeout(c.Request.Context(), 5*time.Second)
		defer cancel()

		var partner models.Partner
		err = db.Collection("partners").FindOne(ctx, bson.M{"_id": oid}).Decode(&partner)
		if err != nil {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "Partner not found"})
			return
		}

		if partner.Status != models.PartnerApproved || !partner.IsActive {
			c.AbortWithStatusJSON(http.StatusForbidden, gin.H{"error": "Partner account is not approved or has been deactivated"})
			return
		}

		c.Set("partner", &partner)
		c.Next()
	}
}
