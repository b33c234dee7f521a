package stripe

import "errors"

var (
	// ErrInvalidRequest is returned when the request parameters are invalid
	ErrInvalidRequest = errors.New("invalid request parameters")

	// ErrPaymentFailed is returned when the payment process fails
	ErrPaymentFailed = errors.New("payment failed")

	// ErrCardDeclined is returned when the card is declined by the issuer
	ErrCardDeclined = errors.New("card declined")

	// ErrNetworkError is returned when there's a network communication error
	ErrNetworkError = errors.New("network error")

	// ErrUnauthorized is returned when the API key is invalid
	ErrUnauthorized = errors.New("unauthorized: invalid API key")
)
