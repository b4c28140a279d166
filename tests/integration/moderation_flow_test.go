package integration_test

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	sqlite "github.com/glebarez/sqlite"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"

	"github.com/sankofalabs/memorial/backend/client"
	"github.com/sankofalabs/memorial/backend/internal/auth"
	"github.com/sankofalabs/memorial/backend/internal/candles"
	"github.com/sankofalabs/memorial/backend/internal/donations"
	"github.com/sankofalabs/memorial/backend/internal/gallery"
	"github.com/sankofalabs/memorial/backend/internal/server"
	"github.com/sankofalabs/memorial/backend/internal/tributes"
)

const (
	adminEmail    = "admin@example.com"
	adminPassword = "correct-horse"
)

type memoryBlobStore struct{}

func (memoryBlobStore) Upload(_ context.Context, _, _ string, body io.Reader) error {
	_, err := io.ReadAll(body)
	return err
}

func (memoryBlobStore) PublicURL(key string) string {
	return "https://media.example.com/" + key
}

type settledVerifier struct {
	amountMinor int64
}

func (v settledVerifier) VerifyTransaction(_ context.Context, _ string) (int64, string, error) {
	return v.amountMinor, "GHS", nil
}

func startServer(testContext *testing.T) *httptest.Server {
	testContext.Helper()
	gin.SetMode(gin.TestMode)

	db, err := gorm.Open(sqlite.Open("file::memory:"), &gorm.Config{})
	if err != nil {
		testContext.Fatalf("failed to open sqlite: %v", err)
	}
	sqlDB, err := db.DB()
	if err != nil {
		testContext.Fatalf("failed to access sql db: %v", err)
	}
	sqlDB.SetMaxOpenConns(1)
	err = db.AutoMigrate(&candles.Candle{}, &tributes.Tribute{}, &gallery.Item{}, &donations.Donation{})
	if err != nil {
		testContext.Fatalf("failed to migrate: %v", err)
	}

	candleService, err := candles.NewService(candles.ServiceConfig{Database: db})
	if err != nil {
		testContext.Fatalf("failed to build candle service: %v", err)
	}
	tributeService, err := tributes.NewService(tributes.ServiceConfig{Database: db})
	if err != nil {
		testContext.Fatalf("failed to build tribute service: %v", err)
	}
	galleryService, err := gallery.NewService(gallery.ServiceConfig{Database: db, Blobs: memoryBlobStore{}})
	if err != nil {
		testContext.Fatalf("failed to build gallery service: %v", err)
	}
	donationService, err := donations.NewService(donations.ServiceConfig{
		Database: db,
		Verifier: settledVerifier{amountMinor: 25000},
		Currency: "GHS",
	})
	if err != nil {
		testContext.Fatalf("failed to build donation service: %v", err)
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(adminPassword), bcrypt.MinCost)
	if err != nil {
		testContext.Fatalf("failed to hash password: %v", err)
	}
	gate, err := auth.NewCredentialGate(adminEmail, string(hash))
	if err != nil {
		testContext.Fatalf("failed to build credential gate: %v", err)
	}
	issuer := auth.NewTokenIssuer(auth.TokenIssuerConfig{
		SigningSecret: []byte("integration-secret"),
		Issuer:        "memorial-api",
		Audience:      "memorial-admin",
		TokenTTL:      time.Hour,
	})

	handler, err := server.NewHTTPHandler(server.Dependencies{
		Candles:          candleService,
		Tributes:         tributeService,
		Gallery:          galleryService,
		Donations:        donationService,
		TokenManager:     issuer,
		Credentials:      gate,
		Realtime:         server.NewRealtimeDispatcher(),
		DonationGoal:     20000,
		DonationCurrency: "GHS",
	})
	if err != nil {
		testContext.Fatalf("failed to build handler: %v", err)
	}

	testServer := httptest.NewServer(handler)
	testContext.Cleanup(testServer.Close)
	return testServer
}

func TestModerationFlow(testContext *testing.T) {
	testServer := startServer(testContext)
	apiClient := client.New(testServer.URL)
	ctx := context.Background()

	if err := apiClient.SubmitTribute(ctx, "Abena", "Forever in our hearts", "Kumasi"); err != nil {
		testContext.Fatalf("tribute submission failed: %v", err)
	}
	if err := apiClient.SubmitTribute(ctx, "Kwame", "We miss you", ""); err != nil {
		testContext.Fatalf("tribute submission failed: %v", err)
	}

	wall, err := apiClient.Tributes(ctx)
	if err != nil {
		testContext.Fatalf("tribute wall fetch failed: %v", err)
	}
	if len(wall) != 0 {
		testContext.Fatalf("unapproved tributes must stay off the wall, got %d", len(wall))
	}

	if _, err := apiClient.PendingTributes(ctx); err != client.ErrUnauthorized {
		testContext.Fatalf("expected unauthorized review access, got %v", err)
	}

	if err := apiClient.SignIn(ctx, adminEmail, "wrong"); err != client.ErrInvalidCredentials {
		testContext.Fatalf("expected rejected sign-in, got %v", err)
	}
	if err := apiClient.SignIn(ctx, adminEmail, adminPassword); err != nil {
		testContext.Fatalf("sign-in failed: %v", err)
	}

	pending, err := apiClient.PendingTributes(ctx)
	if err != nil {
		testContext.Fatalf("pending fetch failed: %v", err)
	}
	if len(pending) != 2 {
		testContext.Fatalf("expected two pending tributes, got %d", len(pending))
	}
	// Newest submission leads the queue.
	if pending[0].Name != "Kwame" {
		testContext.Fatalf("expected newest first, got %s", pending[0].Name)
	}

	if err := apiClient.ApproveTribute(ctx, pending[1].ID); err != nil {
		testContext.Fatalf("approve failed: %v", err)
	}
	if err := apiClient.RejectTribute(ctx, pending[0].ID); err != nil {
		testContext.Fatalf("reject failed: %v", err)
	}

	wall, err = apiClient.Tributes(ctx)
	if err != nil {
		testContext.Fatalf("tribute wall fetch failed: %v", err)
	}
	if len(wall) != 1 || wall[0].Name != "Abena" {
		testContext.Fatalf("expected only the approved tribute on the wall, got %#v", wall)
	}

	hearts, err := apiClient.AddHeart(ctx, wall[0].ID)
	if err != nil {
		testContext.Fatalf("heart failed: %v", err)
	}
	if hearts != 1 {
		testContext.Fatalf("expected one heart, got %d", hearts)
	}
}

func TestLiveCounterAgainstServer(testContext *testing.T) {
	testServer := startServer(testContext)
	apiClient := client.New(testServer.URL)
	ctx := context.Background()

	if err := apiClient.LightCandle(ctx, "Kofi", "Rest well"); err != nil {
		testContext.Fatalf("candle submission failed: %v", err)
	}

	counter := apiClient.NewLiveCounter()
	if err := counter.Start(ctx); err != nil {
		testContext.Fatalf("counter start failed: %v", err)
	}
	defer counter.Stop()

	if got := counter.Count(); got != 1 {
		testContext.Fatalf("expected initial count 1, got %d", got)
	}

	if err := apiClient.LightCandle(ctx, "Ama", ""); err != nil {
		testContext.Fatalf("candle submission failed: %v", err)
	}
	if err := apiClient.LightCandle(ctx, "Yaw", ""); err != nil {
		testContext.Fatalf("candle submission failed: %v", err)
	}

	deadline := time.Now().Add(2 * time.Second)
	for time.Now().Before(deadline) {
		if counter.Count() == 3 {
			return
		}
		time.Sleep(10 * time.Millisecond)
	}
	testContext.Fatalf("counter never reached 3, stuck at %d", counter.Count())
}

func TestDonationFlow(testContext *testing.T) {
	testServer := startServer(testContext)

	payload, _ := json.Marshal(map[string]any{
		"reference":    "ref-xyz",
		"name":         "Yaw Ofori",
		"email":        "yaw@example.com",
		"amount":       100,
		"is_anonymous": true,
	})
	response, err := http.Post(testServer.URL+"/api/donations", "application/json", bytes.NewReader(payload))
	if err != nil {
		testContext.Fatalf("donation request failed: %v", err)
	}
	defer response.Body.Close()
	if response.StatusCode != http.StatusCreated {
		testContext.Fatalf("unexpected donation status: %d", response.StatusCode)
	}
	var donation struct {
		Name   string  `json:"name"`
		Amount float64 `json:"amount"`
	}
	if err := json.NewDecoder(response.Body).Decode(&donation); err != nil {
		testContext.Fatalf("failed to decode donation: %v", err)
	}
	if donation.Name != donations.AnonymousName {
		testContext.Fatalf("expected anonymous placeholder, got %q", donation.Name)
	}
	if donation.Amount != 250 {
		testContext.Fatalf("expected provider-settled amount 250, got %v", donation.Amount)
	}

	totalResponse, err := http.Get(testServer.URL + "/api/donations/total")
	if err != nil {
		testContext.Fatalf("total request failed: %v", err)
	}
	defer totalResponse.Body.Close()
	var totals struct {
		Total    float64 `json:"total"`
		Goal     float64 `json:"goal"`
		Currency string  `json:"currency"`
	}
	if err := json.NewDecoder(totalResponse.Body).Decode(&totals); err != nil {
		testContext.Fatalf("failed to decode total: %v", err)
	}
	if totals.Total != 250 || totals.Goal != 20000 || totals.Currency != "GHS" {
		testContext.Fatalf("unexpected totals: %#v", totals)
	}
}
