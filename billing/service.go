package billing

import (
	"context"
	"encoding/json"
	"strconv"

	"github.com/JamieOgun/PixelPanel/credits"
	goerrors "github.com/goliatone/go-errors"
	"github.com/google/uuid"
	"github.com/stripe/stripe-go/v82"
	"github.com/stripe/stripe-go/v82/paymentintent"
	"github.com/stripe/stripe-go/v82/webhook"
)

// ErrInvalidPackage is returned when the requested package ID is unknown.
var ErrInvalidPackage = goerrors.New("Invalid package ID", goerrors.CategoryBadInput).
	WithTextCode("INVALID_PACKAGE")

// Service sells credit packages through Stripe. Payment intents carry
// the buyer and package in metadata so the webhook can grant credits
// without any extra state.
type Service struct {
	credits       *credits.Service
	webhookSecret string
	logger        Logger
}

// NewService configures the Stripe client and wires the credits ledger.
func NewService(secretKey, webhookSecret string, creditsService *credits.Service) *Service {
	stripe.Key = secretKey

	return &Service{
		credits:       creditsService,
		webhookSecret: webhookSecret,
		logger:        defLogger{},
	}
}

func (s *Service) WithLogger(logger Logger) *Service {
	if logger != nil {
		s.logger = logger
	}
	return s
}

// CreatePaymentIntent starts a purchase and returns the client secret
// the frontend needs to collect payment.
func (s *Service) CreatePaymentIntent(ctx context.Context, userID uuid.UUID, packageID string) (string, error) {
	pkg, ok := CreditPackages[packageID]
	if !ok {
		return "", ErrInvalidPackage
	}

	params := &stripe.PaymentIntentParams{
		Amount:   stripe.Int64(pkg.Price),
		Currency: stripe.String(string(stripe.CurrencyUSD)),
	}
	params.Context = ctx
	params.AddMetadata("userId", userID.String())
	params.AddMetadata("packageId", packageID)
	params.AddMetadata("credits", strconv.Itoa(pkg.Credits))

	intent, err := paymentintent.New(params)
	if err != nil {
		return "", goerrors.Wrap(err, goerrors.CategoryOperation, "failed to create payment intent")
	}

	return intent.ClientSecret, nil
}

// HandleWebhook verifies a Stripe event and grants credits on
// successful payments. Unknown event types are acknowledged and
// ignored.
func (s *Service) HandleWebhook(ctx context.Context, payload []byte, signature string) error {
	event, err := webhook.ConstructEvent(payload, signature, s.webhookSecret)
	if err != nil {
		return goerrors.Wrap(err, goerrors.CategoryAuth, "webhook signature verification failed").
			WithTextCode("INVALID_SIGNATURE")
	}

	if event.Type != "payment_intent.succeeded" {
		s.logger.Debug("ignoring stripe event %s", event.Type)
		return nil
	}

	var intent stripe.PaymentIntent
	if err := json.Unmarshal(event.Data.Raw, &intent); err != nil {
		return goerrors.Wrap(err, goerrors.CategoryBadInput, "failed to parse payment intent")
	}

	userID, err := uuid.Parse(intent.Metadata["userId"])
	if err != nil {
		return goerrors.Wrap(err, goerrors.CategoryBadInput, "payment intent has no valid userId")
	}

	amount, err := strconv.Atoi(intent.Metadata["credits"])
	if err != nil || amount <= 0 {
		return goerrors.New("payment intent has no valid credits amount", goerrors.CategoryBadInput)
	}

	balance, err := s.credits.AddCredits(ctx, userID, amount)
	if err != nil {
		return goerrors.Wrap(err, goerrors.CategoryInternal, "failed to grant purchased credits")
	}

	s.logger.Info("payment succeeded: user %s purchased %d credits (package %s), balance now %d",
		userID, amount, intent.Metadata["packageId"], balance)

	return nil
}
