package stripe

import (
	"context"
	"net/http"
	"net/http/httptest"
	"net/url"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func testConfig(baseURL string) Config {
	return Config{
		SecretKey: "sk_test_123",
		BaseURL:   baseURL,
		Currency:  "usd",
	}
}

func TestNewClient_InvalidConfig(t *testing.T) {
	_, err := NewClient(Config{})
	assert.Error(t, err)

	_, err = NewClient(Config{SecretKey: "sk_test_123", BaseURL: "https://api.stripe.com/v1"})
	assert.Error(t, err) // missing currency
}

func TestCreateIntent_Success(t *testing.T) {
	var gotForm url.Values
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, "/payment_intents", r.URL.Path)
		require.Equal(t, "Bearer sk_test_123", r.Header.Get("Authorization"))
		require.NoError(t, r.ParseForm())
		gotForm = r.PostForm

		w.Write([]byte(`{"id":"pi_1","client_secret":"pi_1_secret_x","status":"requires_confirmation","amount":1899,"currency":"usd"}`))
	}))
	defer server.Close()

	client, err := NewClient(testConfig(server.URL))
	require.NoError(t, err)

	intent, err := client.CreateIntent(context.Background(), CreateIntentRequest{
		Amount:       1899,
		ReceiptEmail: "diner@example.com",
		Metadata:     map[string]string{"user_id": "7"},
	})
	require.NoError(t, err)

	assert.Equal(t, "pi_1", intent.ID)
	assert.Equal(t, "pi_1_secret_x", intent.ClientSecret)
	assert.Equal(t, StatusRequiresConfirmation, intent.Status)

	assert.Equal(t, "1899", gotForm.Get("amount"))
	assert.Equal(t, "usd", gotForm.Get("currency"))
	assert.Equal(t, "diner@example.com", gotForm.Get("receipt_email"))
	assert.Equal(t, "7", gotForm.Get("metadata[user_id]"))
}

func TestCreateIntent_ZeroAmount(t *testing.T) {
	client, err := NewClient(testConfig("http://localhost:0"))
	require.NoError(t, err)

	_, err = client.CreateIntent(context.Background(), CreateIntentRequest{Amount: 0})
	assert.ErrorIs(t, err, ErrInvalidRequest)
}

func TestConfirmIntent_Succeeded(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, "/payment_intents/pi_1/confirm", r.URL.Path)
		require.NoError(t, r.ParseForm())
		require.Equal(t, "pm_card_visa", r.PostForm.Get("payment_method"))

		w.Write([]byte(`{"id":"pi_1","status":"succeeded"}`))
	}))
	defer server.Close()

	client, err := NewClient(testConfig(server.URL))
	require.NoError(t, err)

	intent, err := client.ConfirmIntent(context.Background(), ConfirmIntentRequest{
		IntentID:      "pi_1",
		PaymentMethod: "pm_card_visa",
	})
	require.NoError(t, err)
	assert.Equal(t, StatusSucceeded, intent.Status)
}

func TestConfirmIntent_CardDeclined(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusPaymentRequired)
		w.Write([]byte(`{"error":{"type":"card_error","code":"card_declined","message":"Your card was declined."}}`))
	}))
	defer server.Close()

	client, err := NewClient(testConfig(server.URL))
	require.NoError(t, err)

	_, err = client.ConfirmIntent(context.Background(), ConfirmIntentRequest{
		IntentID:      "pi_1",
		PaymentMethod: "pm_card_declined",
	})
	assert.ErrorIs(t, err, ErrCardDeclined)
	assert.Contains(t, err.Error(), "Your card was declined.")
}

func TestDoRequest_Unauthorized(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusUnauthorized)
		w.Write([]byte(`{"error":{"type":"invalid_request_error","message":"Invalid API Key provided"}}`))
	}))
	defer server.Close()

	client, err := NewClient(testConfig(server.URL))
	require.NoError(t, err)

	_, err = client.CreateIntent(context.Background(), CreateIntentRequest{Amount: 100})
	assert.ErrorIs(t, err, ErrUnauthorized)
}
