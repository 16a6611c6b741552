// server/internal/api/handlers/complaint_handler.go
package handlers

import (
	"context"
	"net/http"
	"strings"
	"time"

	"courier-track-api-server/internal/models"
	"courier-track-api-server/internal/socket"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

type ComplaintHandler struct {
	DB  *mongo.Database
	Hub *socket.Hub
}

type SubmitComplaintRequest struct {
	Category    string `json:"category" binding:"required"`
	Severity    string `json:"severity" binding:"required,oneof=low medium high"`
	Description string `json:"description" binding:"required"`
	Email       string `json:"email" binding:"required,email"`
}

type RespondComplaintRequest struct {
	Status        string `json:"status" binding:"required,oneof=resolved dismissed"`
	AdminResponse string `json:"adminResponse" binding:"required"`
}

// SubmitComplaint files a complaint against a delivery. The complaint is
// written to its own collection for dashboards and embedded on the
// delivery document.
func (h *ComplaintHandler) SubmitComplaint(c *gin.Context) {
	trackingID := c.Param("trackingID")

	var req SubmitComplaintRequest
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

	now := time.Now()
	complaintID := "CM-" + strings.ToUpper(uuid.New().String()[:8])

	embedded := models.EmbeddedComplaint{
		ComplaintID: complaintID,
		Category:    req.Category,
		Severity:    req.Severity,
		Description: req.Description,
		SubmittedBy: req.Email,
		Status:      "open",
		CreatedAt:   now,
	}

	_, err = h.DB.Collection("deliveries").UpdateOne(context.Background(),
		bson.M{"_id": d.ID},
		bson.M{
			"$push": bson.M{"complaints": embedded},
			"$set":  bson.M{"updatedAt": now},
		})
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to attach complaint to delivery"})
		return
	}

	complaint := models.Complaint{
		ComplaintID: complaintID,
		TrackingID:  trackingID,
		Category:    req.Category,
		Severity:    req.Severity,
		Description: req.Description,
		SubmittedBy: req.Email,
		Status:      "open",
		CreatedAt:   now,
	}
	if _, err := h.DB.Collection("complaints").InsertOne(context.Background(), complaint); err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to create complaint"})
		return
	}

	h.Hub.Broadcast(socket.RoomAdmins, "complaint.submitted", gin.H{
		"complaintID": complaintID,
		"trackingID":  trackingID,
		"severity":    req.Severity,
	})

	c.JSON(http.StatusCreated, complaint)
}

// ListComplaints returns complaints for the admin dashboard, optionally
// filtered by status or severity.
func (h *ComplaintHandler) ListComplaints(c *gin.Context) {
	filter := bson.M{}
	if status := c.Query("status"); status != "" {
		filter["status"] = status
	}
	if severity := c.Query("severity"); severity != "" {
		filter["severity"] = severity
	}

	cursor, err := h.DB.Collection("complaints").Find(context.Background(), filter,
		options.Find().SetSort(bson.D{{Key: "createdAt", Value: -1}}))
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to query complaints"})
		return
	}
	defer cursor.Close(context.Background())

	var complaints []models.Complaint
	if err = cursor.All(context.Background(), &complaints); err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to decode complaints"})
		return
	}
	if complaints == nil {
		complaints = []models.Complaint{}
	}

	c.JSON(http.StatusOK, complaints)
}

// RespondComplaint records the admin decision on both the standalone
// complaint and the embedded copy on the delivery.
func (h *ComplaintHandler) RespondComplaint(c *gin.Context) {
	complaintID := c.Param("complaintID")

	var req RespondComplaintRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	now := time.Now()

	var complaint models.Complaint
	err := h.DB.Collection("complaints").FindOneAndUpdate(context.Background(),
		bson.M{"complaintID": complaintID},
		bson.M{"$set": bson.M{
			"status":        req.Status,
			"adminResponse": req.AdminResponse,
			"resolvedAt":    now,
		}},
		options.FindOneAndUpdate().SetReturnDocument(options.After),
	).Decode(&complaint)
	if err != nil {
		if err == mongo.ErrNoDocuments {
			c.JSON(http.StatusNotFound, gin.H{"error": "Complaint not found"})
		} else {
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to update complaint"})
		}
		return
	}

	// Mirror onto the embedded copy. Best effort, the standalone record is
	// the source of truth for dashboards.
	_, _ = h.DB.Collection("deliveries").UpdateOne(context.Background(),
		bson.M{"trackingID": complaint.TrackingID, "complaints.complaintID": complaintID},
		bson.M{"$set": bson.M{
			"complaints.$.status":        req.Status,
			"complaints.$.adminResponse": req.AdminResponse,
			"complaints.$.resolvedAt":    now,
		}})

	c.JSON(http.StatusOK, complaint)
}
