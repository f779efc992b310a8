package booking

import (
	"context"
	"errors"
	"fmt"

	"github.com/stripe/stripe-go/v74"
	"github.com/stripe/stripe-go/v74/paymentintent"

	"github.com/Saurabhrajput1234/BookMySeat/internal/models"
)

// InitStripe sets the API key once at startup.
func InitStripe(secretKey string) {
	stripe.Key = secretKey
}

// CreatePaymentIntent creates (or reuses) a Stripe payment intent for a
// pending booking and records the intent ID on the booking row. The caller
// gets back the client secret needed to finish the payment in the browser.
func (s *Service) CreatePaymentIntent(ctx context.Context, bookingID int64, currency string) (*stripe.PaymentIntent, error) {
	b, err := s.store.GetBookingByID(ctx, bookingID, true)
	if err != nil {
		if errors.Is(err, ErrBookingNotFound) {
			return nil, err
		}
		s.logger.Error("PAYMENT", fmt.Sprintf("CreatePaymentIntent: failed to load booking=%d: %v", bookingID, err))
		return nil, ErrBookingFailed
	}

	if b.PaymentStatus == models.PaymentPaid {
		return nil, fmt.Errorf("booking %d is already paid", bookingID)
	}

	// Reuse an intent we already created for this booking if Stripe still
	// considers it payable.
	if b.PaymentIntentID != "" {
		intent, err := paymentintent.Get(b.PaymentIntentID, nil)
		if err != nil {
			s.logger.Warn("PAYMENT", fmt.Sprintf("CreatePaymentIntent: failed to retrieve intent %s: %v", b.PaymentIntentID, err))
		} else if intent.Status != stripe.PaymentIntentStatusCanceled && intent.Status != stripe.PaymentIntentStatusSucceeded {
			s.logger.Info("PAYMENT", fmt.Sprintf("Reusing payment intent %s for booking=%d", intent.ID, bookingID))
			return intent, nil
		}
	}

	if currency == "" {
		currency = "usd"
	}

	amountInCents := int64(2000) // flat seat price when the event has none
	if b.Event != nil && b.Event.Price > 0 {
		amountInCents = int64(b.Event.Price * 100)
	}

	params := &stripe.PaymentIntentParams{
		Amount:             stripe.Int64(amountInCents),
		Currency:           stripe.String(currency),
		PaymentMethodTypes: stripe.StringSlice([]string{"card"}),
	}
	params.AddMetadata("booking_id", fmt.Sprintf("%d", bookingID))

	intent, err := paymentintent.New(params)
	if err != nil {
		s.logger.Error("PAYMENT", fmt.Sprintf("CreatePaymentIntent: stripe error for booking=%d: %v", bookingID, err))
		return nil, fmt.Errorf("payment service error: %w", err)
	}

	b.PaymentIntentID = intent.ID
	if err := s.store.UpdateBooking(ctx, b); err != nil {
		s.logger.Error("PAYMENT", fmt.Sprintf("CreatePaymentIntent: failed to record intent on booking=%d: %v", bookingID, err))
		return nil, ErrBookingFailed
	}

	s.logger.LogBooking("PAYMENT_INTENT", bookingID, fmt.Sprintf("intent=%s amount=%d %s", intent.ID, amountInCents, currency))
	return intent, nil
}
