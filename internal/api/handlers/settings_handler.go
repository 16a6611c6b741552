// server/internal/api/handlers/settings_handler.go
package handlers

import (
	"context"
	"net/http"
	"time"

	"courier-track-api-server/internal/models"

	"github.com/gin-gonic/gin"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

type SettingsHandler struct {
	DB *mongo.Database
}

type UpdateSettingsRequest struct {
	BaseDeliveryCharge *float64 `json:"baseDeliveryCharge"`
	PerKmCharge        *float64 `json:"perKmCharge"`
	PerKgCharge        *float64 `json:"perKgCharge"`
	CODAvailable       *bool    `json:"codAvailable"`
	SupportEmail       *string  `json:"supportEmail"`
	SupportPhone       *string  `json:"supportPhone"`
}

// GetSettings returns the single settings document, defaults if none exists.
func (h *SettingsHandler) GetSettings(c *gin.Context) {
	var settings models.Settings
	err := h.DB.Collection("settings").FindOne(context.Background(), bson.M{}).Decode(&settings)
	if err != nil {
		if err == mongo.ErrNoDocuments {
			c.JSON(http.StatusOK, models.Settings{
				BaseDeliveryCharge: 50,
				PerKmCharge:        5,
				PerKgCharge:        10,
				CODAvailable:       true,
			})
			return
		}
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to retrieve settings"})
		return
	}

	c.JSON(http.StatusOK, settings)
}

// UpdateSettings upserts only the fields present in the request.
func (h *SettingsHandler) UpdateSettings(c *gin.Context) {
	var req UpdateSettingsRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	set := bson.M{
		"updatedAt": time.Now(),
		"updatedBy": c.GetString("user_email"),
	}
	if req.BaseDeliveryCharge != nil {
		set["baseDeliveryCharge"] = *req.BaseDeliveryCharge
	}
	if req.PerKmCharge != nil {
		set["perKmCharge"] = *req.PerKmCharge
	}
	if req.PerKgCharge != nil {
		set["perKgCharge"] = *req.PerKgCharge
	}
	if req.CODAvailable != nil {
		set["codAvailable"] = *req.CODAvailable
	}
	if req.SupportEmail != nil {
		set["supportEmail"] = *req.SupportEmail
	}
	if req.SupportPhone != nil {
		set["supportPhone"] = *req.SupportPhone
	}

	var settings models.Settings
	err := h.DB.Collection("settings").FindOneAndUpdate(context.Background(),
		bson.M{},
		bson.M{"$set": set},
		options.FindOneAndUpdate().SetUpsert(true).SetReturnDocument(options.After),
	).Decode(&settings)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to update settings"})
		return
	}

	c.JSON(http.StatusOK, settings)
}
