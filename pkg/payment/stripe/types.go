package stripe

// IntentStatus is the lifecycle status of a payment intent.
type IntentStatus string

const (
	StatusRequiresPaymentMethod IntentStatus = "requires_payment_method"
	StatusRequiresConfirmation  IntentStatus = "requires_confirmation"
	StatusRequiresAction        IntentStatus = "requires_action"
	StatusProcessing            IntentStatus = "processing"
	StatusSucceeded             IntentStatus = "succeeded"
	StatusCanceled              IntentStatus = "canceled"
)

// PaymentIntent is the subset of the Stripe payment intent object the
// storefront needs: identity, the client secret handed to the card
// widget, and the status used to decide the checkout outcome.
type PaymentIntent struct {
	ID           string       `json:"id"`
	ClientSecret string       `json:"client_secret"`
	Status       IntentStatus `json:"status"`
	Amount       int64        `json:"amount"`
	Currency     string       `json:"currency"`
	ReceiptEmail string       `json:"receipt_email"`
}

// CreateIntentRequest holds the parameters for creating a payment intent.
// Amount is in the currency's minor unit (cents).
type CreateIntentRequest struct {
	Amount         int64
	Currency       string
	ReceiptEmail   string
	Description    string
	IdempotencyKey string
	Metadata       map[string]string
}

// ConfirmIntentRequest holds the parameters for confirming a payment
// intent with a payment method collected by the hosted card widget.
type ConfirmIntentRequest struct {
	IntentID      string
	PaymentMethod string
}

// apiError is Stripe's error envelope.
type apiError struct {
	Error struct {
		Type    string `json:"type"`
		Code    string `json:"code"`
		Message string `json:"message"`
	} `json:"error"`
}
