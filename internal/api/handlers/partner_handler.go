// server/internal/api/handlers/partner_handler.go
package handlers

import (
	"context"
	"net/http"
	"strconv"
	"time"

	"courier-track-api-server/internal/assignment"
	"courier-track-api-server/internal/delivery"
	"courier-track-api-server/internal/models"
	"courier-track-api-server/internal/notify"
	"courier-track-api-server/internal/socket"

	"github.com/gin-gonic/gin"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

type PartnerHandler struct {
	DB          *mongo.Database
	Lifecycle   *delivery.Service
	Assignments *assignment.Service
	Hub         *socket.Hub
	Mailer      *notify.Mailer
}

type UpdateDeliveryStatusRequest struct {
	Status   string `json:"status" binding:"required"`
	Location string `json:"location"`
	Notes    string `json:"notes"`
}

type SetOnlineStatusRequest struct {
	IsOnline *bool `json:"isOnline" binding:"required"`
}

type UpdateLocationRequest struct {
	Location string `json:"location" binding:"required"`
}

// partnerFromContext returns the partner loaded by RequireApprovedPartner.
func partnerFromContext(c *gin.Context) *models.Partner {
	v, _ := c.Get("partner")
	partner, _ := v.(*models.Partner)
	return partner
}

// GetMyDeliveries lists deliveries assigned to the calling partner, with
// optional status filter and page/limit pagination.
func (h *PartnerHandler) GetMyDeliveries(c *gin.Context) {
	partner := partnerFromContext(c)

	filter := bson.M{"assignedPartner": partner.ID}
	if status := c.Query("status"); status != "" {
		filter["status"] = status
	}

	page, _ := strconv.ParseInt(c.DefaultQuery("page", "1"), 10, 64)
	limit, _ := strconv.ParseInt(c.DefaultQuery("limit", "10"), 10, 64)
	if page < 1 {
		page = 1
	}
	if limit < 1 || limit > 100 {
		limit = 10
	}

	collection := h.DB.Collection("deliveries")

	total, err := collection.CountDocuments(context.Background(), filter)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to count deliveries"})
		return
	}

	opts := options.Find().
		SetSort(bson.D{{Key: "createdAt", Value: -1}}).
		SetSkip((page - 1) * limit).
		SetLimit(limit)

	cursor, err := collection.Find(context.Background(), filter, opts)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to query deliveries"})
		return
	}
	defer cursor.Close(context.Background())

	var deliveries []models.Delivery
	if err = cursor.All(context.Background(), &deliveries); err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to decode deliveries"})
		return
	}
	if deliveries == nil {
		deliveries = []models.Delivery{}
	}

	c.JSON(http.StatusOK, gin.H{
		"deliveries": deliveries,
		"page":       page,
		"limit":      limit,
		"total":      total,
	})
}

// GetDashboard returns the partner's aggregate stats plus today's counters.
func (h *PartnerHandler) GetDashboard(c *gin.Context) {
	partner := partnerFromContext(c)

	startOfDay := time.Now().Truncate(24 * time.Hour)
	collection := h.DB.Collection("deliveries")

	pipeline := mongo.Pipeline{
		{{Key: "$match", Value: bson.M{
			"assignedPartner": partner.ID,
			"deliveredAt":     bson.M{"$gte": startOfDay},
		}}},
		{{Key: "$group", Value: bson.M{
			"_id":      nil,
			"count":    bson.M{"$sum": 1},
			"earnings": bson.M{"$sum": "$partnerEarnings"},
		}}},
	}

	cursor, err := collection.Aggregate(context.Background(), pipeline)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to aggregate dashboard stats"})
		return
	}
	defer cursor.Close(context.Background())

	today := struct {
		Count    int64   `bson:"count"`
		Earnings float64 `bson:"earnings"`
	}{}
	if cursor.Next(context.Background()) {
		_ = cursor.Decode(&today)
	}

	activeCount, err := collection.CountDocuments(context.Background(), bson.M{
		"assignedPartner": partner.ID,
		"deliveredAt":     bson.M{"$exists": false},
	})
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to count active deliveries"})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"partnerID":           partner.PartnerID,
		"isOnline":            partner.IsOnline,
		"rating":              partner.Rating,
		"totalDeliveries":     partner.TotalDeliveries,
		"completedDeliveries": partner.CompletedDeliveries,
		"totalEarnings":       partner.TotalEarnings,
		"activeDeliveries":    activeCount,
		"todayDeliveries":     today.Count,
		"todayEarnings":       today.Earnings,
	})
}

// UpdateDeliveryStatus lets the partner move one of their deliveries
// through the lifecycle. Delivered triggers the completion side effects.
func (h *PartnerHandler) UpdateDeliveryStatus(c *gin.Context) {
	partner := partnerFromContext(c)
	trackingID := c.Param("trackingID")

	var req UpdateDeliveryStatusRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	var d models.Delivery
	err := h.DB.Collection("deliveries").FindOne(context.Background(), bson.M{
		"trackingID":      trackingID,
		"assignedPartner": partner.ID,
	}).Decode(&d)
	if err != nil {
		if err == mongo.ErrNoDocuments {
			c.JSON(http.StatusNotFound, gin.H{"error": "Delivery not found or not assigned to you"})
		} else {
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to retrieve delivery"})
		}
		return
	}

	if err := h.Lifecycle.UpdateStatus(c.Request.Context(), &d, req.Status, req.Location, req.Notes, partner.PartnerID, "partner"); err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to update delivery status", "details": err.Error()})
		return
	}

	// Best-effort notifications.
	h.Mailer.SendStatusUpdate(d.Receiver.Email, d.TrackingID, req.Status, req.Location)
	h.Hub.Broadcast(socket.RoomAdmins, "delivery.status", gin.H{
		"trackingID": d.TrackingID,
		"status":     d.Status,
		"partnerID":  partner.PartnerID,
	})

	c.JSON(http.StatusOK, d)
}

// SetOnlineStatus toggles the partner's availability. Flipping online
// kicks off an assignment rescan so waiting deliveries get picked up.
func (h *PartnerHandler) SetOnlineStatus(c *gin.Context) {
	partner := partnerFromContext(c)

	var req SetOnlineStatusRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	_, err := h.DB.Collection("partners").UpdateOne(context.Background(),
		bson.M{"_id": partner.ID},
		bson.M{"$set": bson.M{"isOnline": *req.IsOnline, "updatedAt": time.Now()}},
	)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to update online status"})
		return
	}

	if *req.IsOnline {
		go h.Assignments.ProcessPartnerOnline(context.Background(), partner.PartnerID)
	}

	c.JSON(http.StatusOK, gin.H{"status": "success", "isOnline": *req.IsOnline})
}

// UpdateLocation records the partner's last reported location.
func (h *PartnerHandler) UpdateLocation(c *gin.Context) {
	partner := partnerFromContext(c)

	var req UpdateLocationRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	_, err := h.DB.Collection("partners").UpdateOne(context.Background(),
		bson.M{"_id": partner.ID},
		bson.M{"$set": bson.M{"currentLocation": req.Location, "updatedAt": time.Now()}},
	)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to update location"})
		return
	}

	c.JSON(http.StatusOK, gin.H{"status": "success"})
}
