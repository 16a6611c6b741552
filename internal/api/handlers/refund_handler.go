// server/internal/api/handlers/refund_handler.go
package handlers

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strconv"

	"courier-track-api-server/internal/delivery"
	"courier-track-api-server/internal/models"
	"courier-track-api-server/internal/notify"
	"courier-track-api-server/internal/s3"
	"courier-track-api-server/internal/socket"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

type RefundHandler struct {
	DB        *mongo.Database
	Lifecycle *delivery.Service
	Uploader  *s3.Uploader
	Mailer    *notify.Mailer
	Hub       *socket.Hub
}

type ResolveRefundRequest struct {
	AdminResponse string `json:"adminResponse"`
}

// RequestRefund opens a refund request. Multipart form: reason, category,
// email and up to 5 evidence images uploaded to S3.
func (h *RefundHandler) RequestRefund(c *gin.Context) {
	trackingID := c.Param("trackingID")

	reason := c.PostForm("reason")
	category := c.PostForm("category")
	email := c.PostForm("email")
	if reason == "" || category == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "reason and category are required"})
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

	// Only the sender may request a refund; checked via email because
	// customers track shipments without accounts.
	if email == "" || email != d.Sender.Email {
		c.JSON(http.StatusForbidden, gin.H{"error": "Refunds can only be requested by the shipment sender"})
		return
	}

	// Upload evidence images, if any.
	var images []models.MediaPointer
	form, err := c.MultipartForm()
	if err == nil && form != nil {
		files := form.File["images"]
		if len(files) > 5 {
			files = files[:5]
		}
		for i, fileHeader := range files {
			file, err := fileHeader.Open()
			if err != nil {
				continue
			}
			objectKey := fmt.Sprintf("refunds/%s/%s-%s", trackingID, strconv.Itoa(i), fileHeader.Filename)
			contentType := fileHeader.Header.Get("Content-Type")
			if contentType == "" {
				contentType = "image/jpeg"
			}
			url, err := h.Uploader.UploadFile(c.Request.Context(), file, objectKey, contentType)
			file.Close()
			if err != nil {
				c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to upload evidence image", "details": err.Error()})
				return
			}
			images = append(images, models.MediaPointer{
				ID:       uuid.New().String(),
				URL:      url,
				FileName: fileHeader.Filename,
				FileType: contentType,
			})
		}
	}

	if err := h.Lifecycle.RequestRefund(c.Request.Context(), &d, reason, category, email, images); err != nil {
		switch {
		case errors.Is(err, delivery.ErrRefundAlreadyRequested):
			c.JSON(http.StatusConflict, gin.H{"error": err.Error()})
		case errors.Is(err, delivery.ErrPaymentNotCompleted):
			c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		default:
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to request refund", "details": err.Error()})
		}
		return
	}

	h.Hub.Broadcast(socket.RoomAdmins, "refund.requested", gin.H{
		"trackingID": d.TrackingID,
		"category":   category,
	})

	c.JSON(http.StatusCreated, gin.H{"status": "success", "paymentStatus": d.Payment.Status})
}

// ListRefundRequests returns deliveries whose payment is in a refund state.
func (h *RefundHandler) ListRefundRequests(c *gin.Context) {
	status := c.DefaultQuery("status", models.PaymentRefundRequested)

	cursor, err := h.DB.Collection("deliveries").Find(context.Background(),
		bson.M{"payment.status": status},
		options.Find().SetSort(bson.D{{Key: "payment.refund.requestedAt", Value: -1}}))
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to query refund requests"})
		return
	}
	defer cursor.Close(context.Background())

	var deliveries []models.Delivery
	if err = cursor.All(context.Background(), &deliveries); err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to decode refund requests"})
		return
	}
	if deliveries == nil {
		deliveries = []models.Delivery{}
	}

	c.JSON(http.StatusOK, deliveries)
}

func (h *RefundHandler) resolve(c *gin.Context, approve bool) {
	trackingID := c.Param("trackingID")

	var req ResolveRefundRequest
	_ = c.ShouldBindJSON(&req) // adminResponse is optional

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
	if err := h.Lifecycle.ResolveRefund(c.Request.Context(), &d, approve, req.AdminResponse, adminEmail); err != nil {
		if errors.Is(err, delivery.ErrRefundNotPending) {
			c.JSON(http.StatusConflict, gin.H{"error": err.Error()})
			return
		}
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to resolve refund", "details": err.Error()})
		return
	}

	h.Mailer.SendRefundDecision(d.Sender.Email, d.TrackingID, approve, req.AdminResponse)
	h.Hub.Broadcast(socket.RoomAdmins, "refund.resolved", gin.H{
		"trackingID":    d.TrackingID,
		"paymentStatus": d.Payment.Status,
	})

	c.JSON(http.StatusOK, gin.H{"status": "success", "paymentStatus": d.Payment.Status})
}

// ApproveRefund: "Refund Requested" -> "Refunded".
func (h *RefundHandler) ApproveRefund(c *gin.Context) {
	h.resolve(c, true)
}

// RejectRefund: "Refund Requested" -> "Refund Rejected".
func (h *RefundHandler) RejectRefund(c *gin.Context) {
	h.resolve(c, false)
}
