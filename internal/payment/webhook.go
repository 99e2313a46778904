package payment

import (
	"crypto/hmac"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"errors"
	"fmt"
	"strconv"
	"strings"
	"time"

	"cargo-shop/internal/model"
)

// EventCheckoutSessionCompleted is the only event type that drives business
// logic; every other type is acknowledged and ignored.
const EventCheckoutSessionCompleted = "checkout.session.completed"

// SignatureHeader is the request header carrying the provider signature.
const SignatureHeader = "Stripe-Signature"

// DefaultTolerance bounds the age of an accepted webhook signature.
const DefaultTolerance = 5 * time.Minute

// ErrSignatureVerification is returned when a webhook payload fails
// signature verification. It must be surfaced as a client error before any
// business logic runs.
var ErrSignatureVerification = errors.New("webhook signature verification failed")

// Event is a provider webhook event envelope.
type Event struct {
	ID   string `json:"id"`
	Type string `json:"type"`
	Data struct {
		Object json.RawMessage `json:"object"`
	} `json:"data"`
}

// Session is the checkout-session object carried by a completion event.
type Session struct {
	ID              string            `json:"id"`
	CustomerEmail   string            `json:"customer_email"`
	Metadata        map[string]string `json:"metadata"`
	CustomerDetails struct {
		Address struct {
			Line1      string `json:"line1"`
			City       string `json:"city"`
			PostalCode string `json:"postal_code"`
			Country    string `json:"country"`
		} `json:"address"`
	} `json:"customer_details"`
}

// Address maps the session's collected billing address onto the domain
// shipping address.
func (s Session) Address() model.Address {
	return model.Address{
		Street:  s.CustomerDetails.Address.Line1,
		City:    s.CustomerDetails.Address.City,
		ZipCode: s.CustomerDetails.Address.PostalCode,
		Country: s.CustomerDetails.Address.Country,
	}
}

// CheckoutSession decodes the event payload as a checkout session.
func (e Event) CheckoutSession() (Session, error) {
	var session Session
	if err := json.Unmarshal(e.Data.Object, &session); err != nil {
		return Session{}, fmt.Errorf("failed to decode checkout session: %w", err)
	}
	if session.ID == "" {
		return Session{}, fmt.Errorf("checkout session missing id")
	}
	return session, nil
}

// ConstructEvent verifies the provider signature header against the shared
// secret and decodes the event payload. The header carries a timestamp and
// one or more HMAC-SHA256 signatures over "<timestamp>.<payload>":
//
//	t=1699999999,v1=5257a869e7...
func ConstructEvent(payload []byte, sigHeader, secret string) (Event, error) {
	return constructEventAt(payload, sigHeader, secret, time.Now(), DefaultTolerance)
}

func constructEventAt(payload []byte, sigHeader, secret string, now time.Time, tolerance time.Duration) (Event, error) {
	timestamp, signatures, err := parseSignatureHeader(sigHeader)
	if err != nil {
		return Event{}, err
	}

	if now.Sub(time.Unix(timestamp, 0)) > tolerance {
		return Event{}, fmt.Errorf("%w: timestamp outside tolerance", ErrSignatureVerification)
	}

	signedPayload := strconv.FormatInt(timestamp, 10) + "." + string(payload)
	mac := hmac.New(sha256.New, []byte(secret))
	mac.Write([]byte(signedPayload))
	expected := mac.Sum(nil)

	verified := false
	for _, sig := range signatures {
		decoded, err := hex.DecodeString(sig)
		if err != nil {
			continue
		}
		if hmac.Equal(decoded, expected) {
			verified = true
			break
		}
	}
	if !verified {
		return Event{}, fmt.Errorf("%w: no matching signature", ErrSignatureVerification)
	}

	var event Event
	if err := json.Unmarshal(payload, &event); err != nil {
		return Event{}, fmt.Errorf("failed to decode webhook event: %w", err)
	}

	return event, nil
}

// parseSignatureHeader splits "t=<ts>,v1=<sig>[,v1=<sig>...]" into its
// timestamp and signature parts.
func parseSignatureHeader(header string) (int64, []string, error) {
	if strings.TrimSpace(header) == "" {
		return 0, nil, fmt.Errorf("%w: missing signature header", ErrSignatureVerification)
	}

	var timestamp int64 = -1
	var signatures []string

	for _, part := range strings.Split(header, ",") {
		key, value, found := strings.Cut(strings.TrimSpace(part), "=")
		if !found {
			continue
		}
		switch key {
		case "t":
			ts, err := strconv.ParseInt(value, 10, 64)
			if err != nil {
				return 0, nil, fmt.Errorf("%w: malformed timestamp", ErrSignatureVerification)
			}
			timestamp = ts
		case "v1":
			signatures = append(signatures, value)
		}
	}

	if timestamp < 0 {
		return 0, nil, fmt.Errorf("%w: missing timestamp", ErrSignatureVerification)
	}
	if len(signatures) == 0 {
		return 0, nil, fmt.Errorf("%w: missing v1 signature", ErrSignatureVerification)
	}

	return timestamp, signatures, nil
}
