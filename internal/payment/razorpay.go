// server/internal/payment/razorpay.go
package payment

import (
	"crypto/hmac"
	"crypto/sha256"
	"encoding/hex"
	"fmt"

	"courier-track-api-server/config"

	razorpay "github.com/razorpay/razorpay-go"
)

// Gateway wraps the Razorpay client for UPI/card payments. COD never goes
// through here, it is settled internally on delivery confirmation.
type Gateway struct {
	client    *razorpay.Client
	keySecret string
}

func NewGateway(cfg config.RazorpayConfig) *Gateway {
	return &Gateway{
		client:    razorpay.NewClient(cfg.KeyID, cfg.KeySecret),
		keySecret: cfg.KeySecret,
	}
}

// CreateOrder creates a Razorpay order for the given amount (in rupees).
// Razorpay expects the amount in paise.
func (g *Gateway) CreateOrder(amount float64, trackingID string) (map[string]interface{}, error) {
	data := map[string]interface{}{
		"amount":   int64(amount * 100),
		"currency": "INR",
		"receipt":  trackingID,
	}
	order, err := g.client.Order.Create(data, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to create razorpay order: %w", err)
	}
	return order, nil
}

// VerifySignature checks the checkout callback signature:
// HMAC-SHA256(orderID + "|" + paymentID, keySecret).
func (g *Gateway) VerifySignature(orderID, paymentID, signature string) bool {
	mac := hmac.New(sha256.New, []byte(g.keySecret))
	mac.Write([]byte(orderID + "|" + paymentID))
	expected := hex.EncodeToString(mac.Sum(nil))
	return hmac.Equal([]byte(expected), []byte(signature))
}
