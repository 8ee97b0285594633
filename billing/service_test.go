package billing_test

import (
	"context"
	"testing"

	"github.com/JamieOgun/PixelPanel/billing"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
)

func TestCreditPackages(t *testing.T) {
	tests := []struct {
		packageID string
		price     int64
		credits   int
	}{
		{"credits_10", 500, 10},
		{"credits_25", 1000, 25},
		{"credits_50", 1800, 50},
		{"credits_100", 3000, 100},
	}

	for _, tt := range tests {
		t.Run(tt.packageID, func(t *testing.T) {
			pkg, ok := billing.CreditPackages[tt.packageID]
			assert.True(t, ok)
			assert.Equal(t, tt.price, pkg.Price)
			assert.Equal(t, tt.credits, pkg.Credits)
		})
	}
}

func TestCreatePaymentIntentRejectsUnknownPackage(t *testing.T) {
	svc := billing.NewService("sk_test_dummy", "whsec_dummy", nil)

	_, err := svc.CreatePaymentIntent(context.Background(), uuid.New(), "credits_9000")
	assert.ErrorIs(t, err, billing.ErrInvalidPackage)
}

func TestHandleWebhookRejectsBadSignature(t *testing.T) {
	svc := billing.NewService("sk_test_dummy", "whsec_dummy", nil)

	err := svc.HandleWebhook(context.Background(), []byte(`{}`), "t=1,v1=bad")
	assert.Error(t, err)
}
