package payments

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
)

func TestNewClientRequiresSecretKey(t *testing.T) {
	if _, err := NewClient(ClientConfig{SecretKey: "  "}); !errors.Is(err, ErrMissingSecretKey) {
		t.Fatalf("expected ErrMissingSecretKey, got %v", err)
	}
}

func TestVerifyTransactionSuccess(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/transaction/verify/ref-123" {
			t.Fatalf("unexpected path %s", r.URL.Path)
		}
		if got := r.Header.Get("Authorization"); got != "Bearer sk_test_secret" {
			t.Fatalf("unexpected authorization header %q", got)
		}
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`{"status":true,"message":"Verification successful","data":{"status":"success","amount":15000,"currency":"GHS"}}`))
	}))
	defer server.Close()

	client, err := NewClient(ClientConfig{SecretKey: "sk_test_secret", APIURL: server.URL})
	if err != nil {
		t.Fatalf("failed to construct client: %v", err)
	}

	amount, currency, err := client.VerifyTransaction(context.Background(), "ref-123")
	if err != nil {
		t.Fatalf("unexpected verify error: %v", err)
	}
	if amount != 15000 {
		t.Fatalf("expected amount 15000, got %d", amount)
	}
	if currency != "GHS" {
		t.Fatalf("expected currency GHS, got %s", currency)
	}
}

func TestVerifyTransactionFailedCharge(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`{"status":true,"message":"Verification successful","data":{"status":"failed","amount":15000,"currency":"GHS"}}`))
	}))
	defer server.Close()

	client, err := NewClient(ClientConfig{SecretKey: "sk_test_secret", APIURL: server.URL})
	if err != nil {
		t.Fatalf("failed to construct client: %v", err)
	}

	if _, _, err := client.VerifyTransaction(context.Background(), "ref-123"); !errors.Is(err, ErrChargeNotVerified) {
		t.Fatalf("expected ErrChargeNotVerified, got %v", err)
	}
}

func TestVerifyTransactionUnknownReference(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusNotFound)
		w.Write([]byte(`{"status":false,"message":"Transaction reference not found"}`))
	}))
	defer server.Close()

	client, err := NewClient(ClientConfig{SecretKey: "sk_test_secret", APIURL: server.URL})
	if err != nil {
		t.Fatalf("failed to construct client: %v", err)
	}

	if _, _, err := client.VerifyTransaction(context.Background(), "ref-missing"); !errors.Is(err, ErrChargeNotVerified) {
		t.Fatalf("expected ErrChargeNotVerified, got %v", err)
	}
}

func TestVerifyTransactionServerError(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusInternalServerError)
	}))
	defer server.Close()

	client, err := NewClient(ClientConfig{SecretKey: "sk_test_secret", APIURL: server.URL})
	if err != nil {
		t.Fatalf("failed to construct client: %v", err)
	}

	_, _, err = client.VerifyTransaction(context.Background(), "ref-123")
	if err == nil {
		t.Fatalf("expected error on provider outage")
	}
	if errors.Is(err, ErrChargeNotVerified) {
		t.Fatalf("provider outage must not look like a declined charge: %v", err)
	}
}

func TestVerifyTransactionRequiresReference(t *testing.T) {
	client, err := NewClient(ClientConfig{SecretKey: "sk_test_secret"})
	if err != nil {
		t.Fatalf("failed to construct client: %v", err)
	}
	if _, _, err := client.VerifyTransaction(context.Background(), "  "); !errors.Is(err, ErrMissingReference) {
		t.Fatalf("expected ErrMissingReference, got %v", err)
	}
}
