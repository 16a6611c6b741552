// server/internal/api/handlers/auth_handler.go
package handlers

import (
	"context"
	"net/http"
	"strings"
	"time"

	"courier-track-api-server/internal/auth"
	"courier-track-api-server/internal/models"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
)

type AuthHandler struct {
	DB     *mongo.Database
	Issuer *auth.TokenIssuer
}

type LoginRequest struct {
	Email    string `json:"email" binding:"required,email"`
	Password string `json:"password" binding:"required"`
}

type PartnerRegisterRequest struct {
	Name         string `json:"name" binding:"required"`
	Email        string `json:"email" binding:"required,email"`
	Phone        string `json:"phone" binding:"required"`
	Password     string `json:"password" binding:"required,min=8"`
	VehicleType  string `json:"vehicleType" binding:"required"`
	VehiclePlate string `json:"vehiclePlate" binding:"required"`
	VehicleModel string `json:"vehicleModel"`
}

// Login authenticates an admin or customer user.
func (h *AuthHandler) Login(c *gin.Context) {
	var req LoginRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	var user models.User
	err := h.DB.Collection("users").FindOne(context.Background(), bson.M{"email": req.Email}).Decode(&user)
	if err != nil {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "Invalid email or password"})
		return
	}

	if !auth.CheckPasswordHash(req.Password, user.Password) {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "Invalid email or password"})
		return
	}

	token, err := h.Issuer.Generate(user.Email, user.Role, user.ID.Hex())
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to generate token", "details": err.Error()})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"token": token,
		"user": gin.H{
			"email": user.Email,
			"name":  user.Name,
			"role":  user.Role,
		},
	})
}

// PartnerRegister creates a new delivery partner account in "pending"
// status. An admin has to approve it before the partner can log in.
func (h *AuthHandler) PartnerRegister(c *gin.Context) {
	var req PartnerRegisterRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	collection := h.DB.Collection("partners")

	count, err := collection.CountDocuments(context.Background(), bson.M{"email": req.Email})
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Database error checking for partner"})
		return
	}
	if count > 0 {
		c.JSON(http.StatusConflict, gin.H{"error": "A partner with this email already exists"})
		return
	}

	hashedPassword, err := auth.HashPassword(req.Password)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to hash password"})
		return
	}

	newPartner := models.Partner{
		PartnerID: "DP-" + strings.ToUpper(uuid.New().String()[:8]),
		Name:      req.Name,
		Email:     req.Email,
		Phone:     req.Phone,
		Password:  hashedPassword,
		Vehicle: models.VehicleInfo{
			Type:        req.VehicleType,
			PlateNumber: req.VehiclePlate,
			Model:       req.VehicleModel,
		},
		Status:    models.PartnerPending,
		IsActive:  false,
		IsOnline:  false,
		CreatedAt: time.Now(),
		UpdatedAt: time.Now(),
	}

	result, err := collection.InsertOne(context.Background(), newPartner)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to register partner"})
		return
	}

	if oid, ok := result.InsertedID.(primitive.ObjectID); ok {
		newPartner.ID = oid
	}

	c.JSON(http.StatusCreated, gin.H{
		"status":    "success",
		"message":   "Registration received. Your account is pending admin approval.",
		"partnerID": newPartner.PartnerID,
	})
}

// PartnerLogin authenticates a delivery partner. Pending or rejected
// partners get a token-less error so the frontend can show the right state.
func (h *AuthHandler) PartnerLogin(c *gin.Context) {
	var req LoginRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	var partner models.Partner
	err := h.DB.Collection("partners").FindOne(context.Background(), bson.M{"email": req.Email}).Decode(&partner)
	if err != nil {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "Invalid email or password"})
		return
	}

	if !auth.CheckPasswordHash(req.Password, partner.Password) {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "Invalid email or password"})
		return
	}

	if partner.Status != models.PartnerApproved || !partner.IsActive {
		c.JSON(http.StatusForbidden, gin.H{"error": "Your account is not approved or has been deactivated"})
		return
	}

	token, err := h.Issuer.Generate(partner.Email, "partner", partner.ID.Hex())
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to generate token", "details": err.Error()})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"token": token,
		"partner": gin.H{
			"partnerID": partner.PartnerID,
			"name":      partner.Name,
			"email":     partner.Email,
			"isOnline":  partner.IsOnline,
		},
	})
}
