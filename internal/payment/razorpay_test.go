package payment

import (
	"crypto/hmac"
	"crypto/sha256"
	"encoding/hex"
	"testing"

	"courier-track-api-server/config"
)

func TestVerifySignature(t *testing.T) {
	g := NewGateway(config.RazorpayConfig{KeyID: "rzp_test_key", KeySecret: "secret123"})

	orderID := "order_abc"
	paymentID := "pay_xyz"

	mac := hmac.New(sha256.New, []byte("secret123"))
	mac.Write([]byte(orderID + "|" + paymentID))
	valid := hex.EncodeToString(mac.Sum(nil))

	if !g.VerifySignature(orderID, paymentID, valid) {
		t.Fatal("valid signature rejected")
	}
	if g.VerifySignature(orderID, paymentID, "deadbeef") {
		t.Fatal("invalid signature accepted")
	}
	if g.VerifySignature(orderID, "pay_other", valid) {
		t.Fatal("signature for another payment accepted")
	}
}
