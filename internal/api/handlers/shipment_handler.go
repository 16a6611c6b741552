// server/internal/api/handlers/shipment_handler.go
package handlers

import (
	"context"
	"net/http"
	"strings"
	"time"

	"courier-track-api-server/internal/models"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
)

type ShipmentHandler struct {
	DB *mongo.Database
}

// --- Structs for request bodies ---

type PartyRequest struct {
	Name  string `json:"name" binding:"required"`
	Email string `json:"email" binding:"required,email"`
	Phone string `json:"phone" binding:"required"`
}

type CreateShipmentRequest struct {
	Sender        PartyRequest `json:"sender" binding:"required"`
	Receiver      PartyRequest `json:"receiver" binding:"required"`
	Origin        string       `json:"origin" binding:"required"`
	Destination   string       `json:"destination" binding:"required"`
	PaymentMethod string       `json:"paymentMethod" binding:"required,oneof=UPI COD CARD"`
	Amount        float64      `json:"amount" binding:"required,gt=0"`
}

// --- Handlers ---

// CreateShipment creates a new delivery in "Pending" status. The background
// assignment service picks it up on its next scan.
func (h *ShipmentHandler) CreateShipment(c *gin.Context) {
	var req CreateShipmentRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	now := time.Now()
	newDelivery := models.Delivery{
		TrackingID:  "CT-" + strings.ToUpper(uuid.New().String()[:8]),
		Sender:      models.Party(req.Sender),
		Receiver:    models.Party(req.Receiver),
		Origin:      req.Origin,
		Destination: req.Destination,
		Status:      models.StatusPending,
		History: []models.HistoryEntry{
			{
				Status:        models.StatusPending,
				Location:      req.Origin,
				Timestamp:     now,
				Notes:         "Shipment created",
				UpdatedBy:     req.Sender.Email,
				UpdatedByRole: "customer",
			},
		},
		Payment: models.PaymentInfo{
			Method: req.PaymentMethod,
			Status: models.PaymentPending,
			Amount: req.Amount,
		},
		CreatedAt: now,
		UpdatedAt: now,
	}

	result, err := h.DB.Collection("deliveries").InsertOne(context.Background(), newDelivery)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to create shipment"})
		return
	}

	if oid, ok := result.InsertedID.(primitive.ObjectID); ok {
		newDelivery.ID = oid
	}

	c.JSON(http.StatusCreated, newDelivery)
}

// TrackShipment returns the public tracking view for a tracking id.
func (h *ShipmentHandler) TrackShipment(c *gin.Context) {
	trackingID := c.Param("trackingID")

	var delivery models.Delivery
	err := h.DB.Collection("deliveries").FindOne(context.Background(), bson.M{"trackingID": trackingID}).Decode(&delivery)
	if err != nil {
		if err == mongo.ErrNoDocuments {
			c.JSON(http.StatusNotFound, gin.H{"error": "Shipment not found"})
		} else {
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to retrieve shipment"})
		}
		return
	}

	// Public view: strip payment internals, keep route and history.
	c.JSON(http.StatusOK, gin.H{
		"trackingID":      delivery.TrackingID,
		"status":          delivery.Status,
		"origin":          delivery.Origin,
		"destination":     delivery.Destination,
		"currentLocation": delivery.CurrentLocation,
		"history":         delivery.History,
		"createdAt":       delivery.CreatedAt,
		"deliveredAt":     delivery.DeliveredAt,
	})
}
