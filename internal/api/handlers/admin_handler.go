// server/internal/api/handlers/admin_handler.go
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

type AdminHandler struct {
	DB          *mongo.Database
	Assigner    *assignment.Assigner
	Assignments *assignment.Service
	Lifecycle   *delivery.Service
	Hub         *socket.Hub
	Mailer      *notify.Mailer
}

type BulkDeleteRequest struct {
	TrackingIDs []string `json:"trackingIDs" binding:"required,min=1"`
}

type ReassignRequest struct {
	PartnerID string `json:"partnerID"` // optional: force a specific partner
}

type PartnerDecisionRequest struct {
	Reason string `json:"reason"`
}

// --- Deliveries ---

// ListDeliveries returns deliveries with optional status/paymentStatus/
// trackingID filters and page/limit pagination.
func (h *AdminHandler) ListDeliveries(c *gin.Context) {
	filter := bson.M{}
	if status := c.Query("status"); status != "" {
		filter["status"] = status
	}
	if paymentStatus := c.Query("paymentStatus"); paymentStatus != "" {
		filter["payment.status"] = paymentStatus
	}
	if trackingID := c.Query("trackingID"); trackingID != "" {
		filter["trackingID"] = trackingID
	}

	page, _ := strconv.ParseInt(c.DefaultQuery("page", "1"), 10, 64)
	limit, _ := strconv.ParseInt(c.DefaultQuery("limit", "20"), 10, 64)
	if page < 1 {
		page = 1
	}
	if limit < 1 || limit > 100 {
		limit = 20
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

// GetDelivery returns the full delivery document for an admin view.
func (h *AdminHandler) GetDelivery(c *gin.Context) {
	trackingID := c.Param("trackingID")

	var d models.Delivery
	err := h.DB.Collection("deliveries").FindOne(context.Background(), bson.M{"trackingID": trackingID}).Decode(&d)
	if err != nil {
		if err == mongo.ErrNoDocuments {
			c.JSON(http.StatusNotFound, gin.H{"error": "Delivery not found"})
		} else {
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to retrieve delivery"})
		}
		return
	}

	c.JSON(http.StatusOK, d)
}

// UpdateDeliveryStatus is the admin status override. Same lifecycle side
// effects as the partner path.
func (h *AdminHandler) UpdateDeliveryStatus(c *gin.Context) {
	trackingID := c.Param("trackingID")

	var req UpdateDeliveryStatusRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	var d models.Delivery
	err := h.DB.Collection("deliveries").FindOne(context.Background(), bson.M{"trackingID": trackingID}).Decode(&d)
	if err != nil {
		if err == mongo.ErrNoDocuments {
			c.JSON(http.StatusNotFound, gin.H{"error": "Delivery not found"})
		} else {
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to retrieve delivery"})
		}
		return
	}

	adminEmail := c.GetString("user_email")
	if err := h.Lifecycle.UpdateStatus(c.Request.Context(), &d, req.Status, req.Location, req.Notes, adminEmail, "admin"); err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to update delivery status", "details": err.Error()})
		return
	}

	h.Mailer.SendStatusUpdate(d.Receiver.Email, d.TrackingID, req.Status, req.Location)
	h.Hub.Broadcast(socket.RoomAdmins, "delivery.status", gin.H{
		"trackingID": d.TrackingID,
		"status":     d.Status,
	})

	c.JSON(http.StatusOK, d)
}

// BulkDeleteDeliveries hard-deletes deliveries by tracking id. This is the
// only code path that removes delivery documents.
func (h *AdminHandler) BulkDeleteDeliveries(c *gin.Context) {
	var req BulkDeleteRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	result, err := h.DB.Collection("deliveries").DeleteMany(context.Background(),
		bson.M{"trackingID": bson.M{"$in": req.TrackingIDs}})
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to delete deliveries"})
		return
	}

	c.JSON(http.StatusOK, gin.H{"status": "success", "deleted": result.DeletedCount})
}

// --- Assignment ---

// AssignDelivery runs auto-assignment for a single delivery on demand.
func (h *AdminHandler) AssignDelivery(c *gin.Context) {
	trackingID := c.Param("trackingID")

	var d models.Delivery
	err := h.DB.Collection("deliveries").FindOne(context.Background(), bson.M{"trackingID": trackingID}).Decode(&d)
	if err != nil {
		if err == mongo.ErrNoDocuments {
			c.JSON(http.StatusNotFound, gin.H{"error": "Delivery not found"})
		} else {
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to retrieve delivery"})
		}
		return
	}

	if d.AssignedPartner != nil {
		c.JSON(http.StatusConflict, gin.H{"error": "Delivery is already assigned"})
		return
	}
	if !models.IsAssignable(d.Status) {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Delivery status does not allow assignment"})
		return
	}

	partner, err := h.Assigner.AutoAssignPartner(c.Request.Context(), &d)
	if err != nil {
		if err == assignment.ErrNoPartnerAvailable {
			c.JSON(http.StatusConflict, gin.H{"error": "No delivery partner available"})
			return
		}
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to assign delivery", "details": err.Error()})
		return
	}

	h.Hub.Broadcast(socket.RoomAdmins, "delivery.assigned", gin.H{
		"trackingID": d.TrackingID,
		"partnerID":  partner.PartnerID,
	})

	c.JSON(http.StatusOK, gin.H{
		"status":    "success",
		"partnerID": partner.PartnerID,
		"delivery":  d,
	})
}

// ReassignDelivery clears the current assignment and either force-assigns
// the requested partner or reruns auto-assignment.
func (h *AdminHandler) ReassignDelivery(c *gin.Context) {
	trackingID := c.Param("trackingID")

	var req ReassignRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	var d models.Delivery
	err := h.DB.Collection("deliveries").FindOne(context.Background(), bson.M{"trackingID": trackingID}).Decode(&d)
	if err != nil {
		if err == mongo.ErrNoDocuments {
			c.JSON(http.StatusNotFound, gin.H{"error": "Delivery not found"})
		} else {
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to retrieve delivery"})
		}
		return
	}

	if d.DeliveredAt != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Delivered shipments cannot be reassigned"})
		return
	}

	adminEmail := c.GetString("user_email")
	now := time.Now()

	if req.PartnerID != "" {
		// Force-assign a specific approved partner.
		var partner models.Partner
		err := h.DB.Collection("partners").FindOne(context.Background(), bson.M{"partnerID": req.PartnerID}).Decode(&partner)
		if err != nil {
			c.JSON(http.StatusNotFound, gin.H{"error": "Partner not found"})
			return
		}
		if partner.Status != models.PartnerApproved {
			c.JSON(http.StatusBadRequest, gin.H{"error": "Partner is not approved"})
			return
		}

		d.AssignedPartner = &partner.ID
		d.Status = models.StatusAssigned
		d.AssignedAt = &now
		if d.PartnerEarnings == 0 {
			d.PartnerEarnings = h.Assigner.BaseEarning
		}
		d.UpdatedAt = now
		d.History = append(d.History, models.HistoryEntry{
			Status:        models.StatusAssigned,
			Timestamp:     now,
			Notes:         "Reassigned to partner " + partner.Name,
			UpdatedBy:     adminEmail,
			UpdatedByRole: "admin",
		})

		if _, err := h.DB.Collection("deliveries").ReplaceOne(context.Background(), bson.M{"_id": d.ID}, d); err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to reassign delivery"})
			return
		}
		_, _ = h.DB.Collection("partners").UpdateOne(context.Background(),
			bson.M{"_id": partner.ID},
			bson.M{"$inc": bson.M{"totalDeliveries": 1}})

		c.JSON(http.StatusOK, gin.H{"status": "success", "partnerID": partner.PartnerID, "delivery": d})
		return
	}

	// No partner given: unassign and rerun auto-assignment.
	d.AssignedPartner = nil
	d.AssignedAt = nil
	d.Status = models.StatusPending
	d.UpdatedAt = now
	d.History = append(d.History, models.HistoryEntry{
		Status:        models.StatusPending,
		Timestamp:     now,
		Notes:         "Unassigned by admin for reassignment",
		UpdatedBy:     adminEmail,
		UpdatedByRole: "admin",
	})
	if _, err := h.DB.Collection("deliveries").ReplaceOne(context.Background(), bson.M{"_id": d.ID}, d); err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to unassign delivery"})
		return
	}

	partner, err := h.Assigner.AutoAssignPartner(c.Request.Context(), &d)
	if err != nil {
		if err == assignment.ErrNoPartnerAvailable {
			c.JSON(http.StatusOK, gin.H{"status": "unassigned", "message": "No partner available, delivery queued for next scan"})
			return
		}
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to reassign delivery", "details": err.Error()})
		return
	}

	c.JSON(http.StatusOK, gin.H{"status": "success", "partnerID": partner.PartnerID, "delivery": d})
}

// TriggerAssignments reruns the background scan on demand.
func (h *AdminHandler) TriggerAssignments(c *gin.Context) {
	summary := h.Assignments.TriggerAssignment(c.Request.Context())
	c.JSON(http.StatusOK, gin.H{"status": "success", "summary": summary})
}

// AssignmentStatus reports whether the periodic scan is active.
func (h *AdminHandler) AssignmentStatus(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"running": h.Assignments.Status()})
}

// --- Partners ---

// ListPartners returns partners with an optional status filter.
func (h *AdminHandler) ListPartners(c *gin.Context) {
	filter := bson.M{}
	if status := c.Query("status"); status != "" {
		filter["status"] = status
	}

	cursor, err := h.DB.Collection("partners").Find(context.Background(), filter,
		options.Find().SetSort(bson.D{{Key: "createdAt", Value: -1}}))
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to query partners"})
		return
	}
	defer cursor.Close(context.Background())

	var partners []models.Partner
	if err = cursor.All(context.Background(), &partners); err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to decode partners"})
		return
	}
	if partners == nil {
		partners = []models.Partner{}
	}

	c.JSON(http.StatusOK, partners)
}

func (h *AdminHandler) decidePartner(c *gin.Context, status string, isActive bool, approved bool) {
	partnerID := c.Param("partnerID")

	var req PartnerDecisionRequest
	_ = c.ShouldBindJSON(&req) // reason is optional

	var partner models.Partner
	err := h.DB.Collection("partners").FindOneAndUpdate(context.Background(),
		bson.M{"partnerID": partnerID},
		bson.M{"$set": bson.M{"status": status, "isActive": isActive, "updatedAt": time.Now()}},
		options.FindOneAndUpdate().SetReturnDocument(options.After),
	).Decode(&partner)
	if err != nil {
		if err == mongo.ErrNoDocuments {
			c.JSON(http.StatusNotFound, gin.H{"error": "Partner not found"})
		} else {
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to update partner"})
		}
		return
	}

	if status == models.PartnerApproved || status == models.PartnerRejected {
		h.Mailer.SendPartnerApproval(partner.Email, partner.Name, approved)
	}

	c.JSON(http.StatusOK, partner)
}

// ApprovePartner moves a pending partner into the assignable pool.
func (h *AdminHandler) ApprovePartner(c *gin.Context) {
	h.decidePartner(c, models.PartnerApproved, true, true)
}

func (h *AdminHandler) RejectPartner(c *gin.Context) {
	h.decidePartner(c, models.PartnerRejected, false, false)
}

func (h *AdminHandler) SuspendPartner(c *gin.Context) {
	h.decidePartner(c, models.PartnerSuspended, false, false)
}

// --- Reports ---

// GetReports returns dashboard analytics: counts per status, revenue and a
// partner leaderboard.
func (h *AdminHandler) GetReports(c *gin.Context) {
	deliveries := h.DB.Collection("deliveries")

	statusPipeline := mongo.Pipeline{
		{{Key: "$group", Value: bson.M{
			"_id":   "$status",
			"count": bson.M{"$sum": 1},
		}}},
	}
	cursor, err := deliveries.Aggregate(context.Background(), statusPipeline)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to aggregate status counts"})
		return
	}
	var statusCounts []bson.M
	if err = cursor.All(context.Background(), &statusCounts); err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to decode status counts"})
		return
	}

	revenuePipeline := mongo.Pipeline{
		{{Key: "$match", Value: bson.M{"payment.status": models.PaymentCompleted}}},
		{{Key: "$group", Value: bson.M{
			"_id":     nil,
			"revenue": bson.M{"$sum": "$payment.amount"},
			"count":   bson.M{"$sum": 1},
		}}},
	}
	cursor, err = deliveries.Aggregate(context.Background(), revenuePipeline)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to aggregate revenue"})
		return
	}
	revenue := struct {
		Revenue float64 `bson:"revenue"`
		Count   int64   `bson:"count"`
	}{}
	if cursor.Next(context.Background()) {
		_ = cursor.Decode(&revenue)
	}

	leaderboardOpts := options.Find().
		SetSort(bson.D{{Key: "completedDeliveries", Value: -1}}).
		SetLimit(10)
	cursor, err = h.DB.Collection("partners").Find(context.Background(),
		bson.M{"status": models.PartnerApproved}, leaderboardOpts)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to query partner leaderboard"})
		return
	}
	var leaderboard []models.Partner
	if err = cursor.All(context.Background(), &leaderboard); err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to decode partner leaderboard"})
		return
	}
	if leaderboard == nil {
		leaderboard = []models.Partner{}
	}

	c.JSON(http.StatusOK, gin.H{
		"statusCounts":       statusCounts,
		"completedPayments":  revenue.Count,
		"totalRevenue":       revenue.Revenue,
		"partnerLeaderboard": leaderboard,
	})
}
