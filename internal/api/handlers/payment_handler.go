// server/internal/api/handlers/payment_handler.go
package handlers

import (
	"context"
	"net/http"
	"time"

	"courier-track-api-server/internal/models"
	"courier-track-api-server/internal/payment"

	"github.com/gin-gonic/gin"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
)

type PaymentHandler struct {
	DB      *mongo.Database
	Gateway *payment.Gateway
}

type CreateOrderRequest struct {
	TrackingID string `json:"trackingID" binding:"required"`
}

type VerifyPaymentRequest struct {
	TrackingID string `json:"trackingID" binding:"required"`
	OrderID    string `json:"razorpayOrderID" binding:"required"`
	PaymentID  string `json:"razorpayPaymentID" binding:"required"`
	Signature  string `json:"razorpaySignature" binding:"required"`
}

// CreateOrder creates a Razorpay order for a UPI/CARD shipment. COD
// shipments never hit the gateway.
func (h *PaymentHandler) CreateOrder(c *gin.Context) {
	var req CreateOrderRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	var d models.Delivery
	err := h.DB.Collection("deliveries").FindOne(context.Background(), bson.M{"trackingID": req.TrackingID}).Decode(&d)
	if err != nil {
		if err == mongo.ErrNoDocuments {
			c.JSON(http.StatusNotFound, gin.H{"error": "Shipment not found"})
		} else {
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to retrieve shipment"})
		}
		return
	}

	if d.Payment.Method == models.PaymentMethodCOD {
		c.JSON(http.StatusBadRequest, gin.H{"error": "COD shipments are settled on delivery"})
		return
	}
	if d.Payment.Status == models.PaymentCompleted {
		c.JSON(http.StatusConflict, gin.H{"error": "Payment already completed"})
		return
	}

	order, err := h.Gateway.CreateOrder(d.Payment.Amount, d.TrackingID)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to create payment order", "details": err.Error()})
		return
	}

	c.JSON(http.StatusCreated, order)
}

// VerifyPayment validates the checkout callback signature and marks the
// payment completed.
func (h *PaymentHandler) VerifyPayment(c *gin.Context) {
	var req VerifyPaymentRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	if !h.Gateway.VerifySignature(req.OrderID, req.PaymentID, req.Signature) {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid payment signature"})
		return
	}

	now := time.Now()
	result, err := h.DB.Collection("deliveries").UpdateOne(context.Background(),
		bson.M{"trackingID": req.TrackingID},
		bson.M{"$set": bson.M{
			"payment.status":        models.PaymentCompleted,
			"payment.transactionID": req.PaymentID,
			"payment.paidAt":        now,
			"updatedAt":             now,
		}})
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to record payment"})
		return
	}
	if result.MatchedCount == 0 {
		c.JSON(http.StatusNotFound, gin.H{"error": "Shipment not found"})
		return
	}

	c.JSON(http.StatusOK, gin.H{"status": "success"})
}
