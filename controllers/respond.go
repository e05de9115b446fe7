package controllers

import (
	"net/http"

	"civicreport-be/models"
	"civicreport-be/services"

	"github.com/gin-gonic/gin"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

// respondError maps a service error to its structured JSON response;
// anything that is not a ServiceError becomes a 500.
func respondError(c *gin.Context, err error) {
	if se := services.AsServiceError(err); se != nil {
		c.JSON(se.Status, gin.H{"error": se.Message, "code": se.Code})
		return
	}
	c.JSON(http.StatusInternalServerError, gin.H{"error": "Something went wrong", "code": "INTERNAL"})
}

// actorFromContext reads the authenticated identity set by AuthMiddleware.
func actorFromContext(c *gin.Context) (services.Actor, bool) {
	userIDVal, exists := c.Get("user_id")
	if !exists {
		return services.Actor{}, false
	}
	userID, ok := userIDVal.(string)
	if !ok {
		return services.Actor{}, false
	}
	objID, err := primitive.ObjectIDFromHex(userID)
	if err != nil {
		return services.Actor{}, false
	}

	role := "citizen"
	if roleVal, exists := c.Get("user_role"); exists {
		if r, ok := roleVal.(string); ok && r != "" {
			role = r
		}
	}

	return services.Actor{ID: objID, Role: models.UserRole(role)}, true
}
