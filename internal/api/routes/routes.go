// server/internal/api/routes/routes.go
package routes

import (
	"courier-track-api-server/internal/api/handlers"
	"courier-track-api-server/internal/api/middleware"
	"courier-track-api-server/internal/assignment"
	"courier-track-api-server/internal/auth"
	"courier-track-api-server/internal/delivery"
	"courier-track-api-server/internal/notify"
	"courier-track-api-server/internal/payment"
	"courier-track-api-server/internal/s3"
	"courier-track-api-server/internal/socket"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"go.mongodb.org/mongo-driver/mongo"
	"go.uber.org/zap"
)

// SetupRouter wires all dependencies into the HTTP surface.
func SetupRouter(
	db *mongo.Database,
	issuer *auth.TokenIssuer,
	assigner *assignment.Assigner,
	assignments *assignment.Service,
	lifecycle *delivery.Service,
	hub *socket.Hub,
	mailer *notify.Mailer,
	gateway *payment.Gateway,
	uploader *s3.Uploader,
	log *zap.Logger,
) *gin.Engine {
	router := gin.Default()
	router.Use(gin.Recovery())
	router.Use(cors.Default())

	// Handlers
	authHandler := &handlers.AuthHandler{DB: db, Issuer: issuer}
	shipmentHandler := &handlers.ShipmentHandler{DB: db}
	partnerHandler := &handlers.PartnerHandler{DB: db, Lifecycle: lifecycle, Assignments: assignments, Hub: hub, Mailer: mailer}
	adminHandler := &handlers.AdminHandler{DB: db, Assigner: assigner, Assignments: assignments, Lifecycle: lifecycle, Hub: hub, Mailer: mailer}
	refundHandler := &handlers.RefundHandler{DB: db, Lifecycle: lifecycle, Uploader: uploader, Mailer: mailer, Hub: hub}
	complaintHandler := &handlers.ComplaintHandler{DB: db, Hub: hub}
	settingsHandler := &handlers.SettingsHandler{DB: db}
	paymentHandler := &handlers.PaymentHandler{DB: db, Gateway: gateway}
	webSocketHandler := &handlers.WebSocketHandler{Hub: hub, Issuer: issuer, Log: log}

	api := router.Group("/api")
	{
		// WebSocket dashboard feed (token via query parameter)
		api.GET("/ws", webSocketHandler.ServeWs)

		// === PUBLIC ROUTES ===

		api.POST("/shipments", shipmentHandler.CreateShipment)
		api.GET("/track/:trackingID", shipmentHandler.TrackShipment)
		api.POST("/track/:trackingID/refund", refundHandler.RequestRefund)
		api.POST("/track/:trackingID/complaints", complaintHandler.SubmitComplaint)

		payments := api.Group("/payments")
		{
			payments.POST("/order", paymentHandler.CreateOrder)
			payments.POST("/verify", paymentHandler.VerifyPayment)
		}

		auth := api.Group("/auth")
		{
			auth.POST("/login", authHandler.Login)
		}

		partnerAuth := api.Group("/partner/auth")
		{
			partnerAuth.POST("/register", authHandler.PartnerRegister)
			partnerAuth.POST("/login", authHandler.PartnerLogin)
		}

		// === PARTNER ROUTES (approved + active partners only) ===

		partner := api.Group("/partner")
		partner.Use(middleware.Authenticate(issuer))
		partner.Use(middleware.Authorize("partner"))
		partner.Use(middleware.RequireApprovedPartner(db))
		{
			partner.GET("/deliveries", partnerHandler.GetMyDeliveries)
			partner.GET("/dashboard", partnerHandler.GetDashboard)
			partner.PUT("/deliveries/:trackingID/status", partnerHandler.UpdateDeliveryStatus)
			partner.PUT("/status", partnerHandler.SetOnlineStatus)
			partner.PUT("/location", partnerHandler.UpdateLocation)
		}

		// === ADMIN ROUTES ===

		admin := api.Group("/admin")
		admin.Use(middleware.Authenticate(issuer))
		admin.Use(middleware.Authorize("admin"))
		{
			deliveries := admin.Group("/deliveries")
			{
				deliveries.GET("/", adminHandler.ListDeliveries)
				deliveries.GET("/:trackingID", adminHandler.GetDelivery)
				deliveries.PUT("/:trackingID/status", adminHandler.UpdateDeliveryStatus)
				deliveries.POST("/:trackingID/assign", adminHandler.AssignDelivery)
				deliveries.POST("/:trackingID/reassign", adminHandler.ReassignDelivery)
				deliveries.POST("/bulk-delete", adminHandler.BulkDeleteDeliveries)
			}

			assignmentsGroup := admin.Group("/assignments")
			{
				assignmentsGroup.POST("/trigger", adminHandler.TriggerAssignments)
				assignmentsGroup.GET("/status", adminHandler.AssignmentStatus)
			}

			partners := admin.Group("/partners")
			{
				partners.GET("/", adminHandler.ListPartners)
				partners.POST("/:partnerID/approve", adminHandler.ApprovePartner)
				partners.POST("/:partnerID/reject", adminHandler.RejectPartner)
				partners.POST("/:partnerID/suspend", adminHandler.SuspendPartner)
			}

			refunds := admin.Group("/refunds")
			{
				refunds.GET("/", refundHandler.ListRefundRequests)
				refunds.POST("/:trackingID/approve", refundHandler.ApproveRefund)
				refunds.POST("/:trackingID/reject", refundHandler.RejectRefund)
			}

			complaints := admin.Group("/complaints")
			{
				complaints.GET("/", complaintHandler.ListComplaints)
				complaints.POST("/:complaintID/respond", complaintHandler.RespondComplaint)
			}

			settings := admin.Group("/settings")
			{
				settings.GET("/", settingsHandler.GetSettings)
				settings.PUT("/", settingsHandler.UpdateSettings)
			}

			admin.GET("/reports", adminHandler.GetReports)
		}
	}

	return router
}
