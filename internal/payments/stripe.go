// Package payments wraps the card-payment provider behind a small adapter:
// outbound hosted-checkout creation and inbound webhook verification.
package payments

import (
	"context"
	"encoding/json"
	"fmt"
	"math"
	"strconv"

	"github.com/Business-Integration-Technologies/EventNest/internal/models"
	"github.com/stripe/stripe-go/v78"
	"github.com/stripe/stripe-go/v78/checkout/session"
	"github.com/stripe/stripe-go/v78/webhook"
)

type Gateway struct {
	webhookSecret string
	clientURL     string
}

func New(apiKey, webhookSecret, clientURL string) *Gateway {
	stripe.Key = apiKey
	return &Gateway{
		webhookSecret: webhookSecret,
		clientURL:     clientURL,
	}
}

// CheckoutSession is the handle returned to the client: the session id for
// later correlation and the hosted payment page to redirect the buyer to.
type CheckoutSession struct {
	ID  string `json:"id"`
	URL string `json:"url"`
}

// Notification is a verified checkout completion, carrying the metadata that
// was attached when the session was created.
type Notification struct {
	SessionID string
	EventID   string
	UserID    string
	Quantity  int
}

// CreateCheckoutSession opens a hosted card-payment session for quantity
// tickets of the given event. The price is taken from the stored event, never
// from the client, and converted to minor currency units.
func (g *Gateway) CreateCheckoutSession(ctx context.Context, ev *models.Event, quantity int, buyerID string) (*CheckoutSession, error) {
	if quantity < 1 {
		quantity = 1
	}

	params := &stripe.CheckoutSessionParams{
		PaymentMethodTypes: stripe.StringSlice([]string{"card"}),
		Mode:               stripe.String(string(stripe.CheckoutSessionModePayment)),
		LineItems: []*stripe.CheckoutSessionLineItemParams{
			{
				PriceData: &stripe.CheckoutSessionLineItemPriceDataParams{
					Currency: stripe.String(string(stripe.CurrencyUSD)),
					ProductData: &stripe.CheckoutSessionLineItemPriceDataProductDataParams{
						Name: stripe.String(ev.Title),
					},
					UnitAmount: stripe.Int64(int64(math.Round(ev.Price * 100))),
				},
				Quantity: stripe.Int64(int64(quantity)),
			},
		},
		SuccessURL: stripe.String(fmt.Sprintf(
			"%s/payment-success?session_id={CHECKOUT_SESSION_ID}&eventId=%s&quantity=%d",
			g.clientURL, ev.ID.Hex(), quantity,
		)),
		CancelURL: stripe.String(fmt.Sprintf("%s/event-details/%s", g.clientURL, ev.ID.Hex())),
	}
	params.Context = ctx
	params.AddMetadata("eventId", ev.ID.Hex())
	params.AddMetadata("userId", buyerID)
	params.AddMetadata("quantity", strconv.Itoa(quantity))

	s, err := session.New(params)
	if err != nil {
		return nil, fmt.Errorf("failed to create checkout session: %v", err)
	}

	return &CheckoutSession{ID: s.ID, URL: s.URL}, nil
}

// VerifyNotification authenticates an inbound webhook delivery with a keyed
// signature check over the raw body. It fails closed: any mismatch is
// rejected with no side effect. Event types other than checkout completion
// verify successfully but return a nil Notification.
func (g *Gateway) VerifyNotification(rawBody []byte, signatureHeader string) (*Notification, error) {
	event, err := webhook.ConstructEventWithOptions(rawBody, signatureHeader, g.webhookSecret,
		webhook.ConstructEventOptions{IgnoreAPIVersionMismatch: true})
	if err != nil {
		return nil, fmt.Errorf("%w: %v", models.ErrSignatureInvalid, err)
	}

	if event.Type != stripe.EventTypeCheckoutSessionCompleted {
		return nil, nil
	}

	var s stripe.CheckoutSession
	if err := json.Unmarshal(event.Data.Raw, &s); err != nil {
		return nil, fmt.Errorf("failed to decode checkout session: %v", err)
	}

	quantity, err := strconv.Atoi(s.Metadata["quantity"])
	if err != nil || quantity < 1 {
		quantity = 1
	}

	return &Notification{
		SessionID: s.ID,
		EventID:   s.Metadata["eventId"],
		UserID:    s.Metadata["userId"],
		Quantity:  quantity,
	}, nil
}
