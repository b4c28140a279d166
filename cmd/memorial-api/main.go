package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/sankofalabs/memorial/backend/internal/auth"
	"github.com/sankofalabs/memorial/backend/internal/candles"
	"github.com/sankofalabs/memorial/backend/internal/config"
	"github.com/sankofalabs/memorial/backend/internal/database"
	"github.com/sankofalabs/memorial/backend/internal/donations"
	"github.com/sankofalabs/memorial/backend/internal/gallery"
	"github.com/sankofalabs/memorial/backend/internal/logging"
	"github.com/sankofalabs/memorial/backend/internal/media"
	"github.com/sankofalabs/memorial/backend/internal/payments"
	"github.com/sankofalabs/memorial/backend/internal/server"
	"github.com/sankofalabs/memorial/backend/internal/tributes"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
	"go.uber.org/zap"
)

var (
	cfgFile string
)

func main() {
	rootCmd := &cobra.Command{
		Use:   "memorial-api",
		Short: "Memorial website backend service",
		PreRunE: func(cmd *cobra.Command, args []string) error {
			return initConfig()
		},
		RunE: func(cmd *cobra.Command, args []string) error {
			return runServer(cmd.Context())
		},
	}

	setupFlags(rootCmd)

	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

func setupFlags(cmd *cobra.Command) {
	config.ApplyDefaults(viper.GetViper())
	defaults := config.NewViper()
	cmd.PersistentFlags().StringVar(&cfgFile, "config", "", "Path to configuration file")
	cmd.PersistentFlags().String("http-address", defaults.GetString("http.address"), "HTTP listen address")
	cmd.PersistentFlags().String("database-path", defaults.GetString("database.path"), "SQLite database path")
	cmd.PersistentFlags().String("log-level", defaults.GetString("log.level"), "Log level (debug, info, warn, error)")
	cmd.PersistentFlags().Int("token-ttl-minutes", defaults.GetInt("auth.token_ttl_minutes"), "Admin token TTL in minutes")
	cmd.PersistentFlags().String("admin-email", defaults.GetString("auth.admin_email"), "Administrator email")
	cmd.PersistentFlags().String("media-bucket", defaults.GetString("media.bucket"), "S3 bucket for gallery uploads")
	cmd.PersistentFlags().String("media-region", defaults.GetString("media.region"), "S3 region for gallery uploads")
	cmd.PersistentFlags().String("media-base-url", defaults.GetString("media.base_url"), "Public base URL override for gallery media")
	cmd.PersistentFlags().String("paystack-api-url", defaults.GetString("paystack.api_url"), "Paystack API base URL")
	cmd.PersistentFlags().String("donation-currency", defaults.GetString("donations.currency"), "Donation settlement currency")
	cmd.PersistentFlags().Float64("donation-goal", defaults.GetFloat64("donations.goal"), "Fundraising goal displayed on the donations page")

	bindFlag(cmd, "http.address", "http-address")
	bindFlag(cmd, "database.path", "database-path")
	bindFlag(cmd, "log.level", "log-level")
	bindFlag(cmd, "auth.token_ttl_minutes", "token-ttl-minutes")
	bindFlag(cmd, "auth.admin_email", "admin-email")
	bindFlag(cmd, "media.bucket", "media-bucket")
	bindFlag(cmd, "media.region", "media-region")
	bindFlag(cmd, "media.base_url", "media-base-url")
	bindFlag(cmd, "paystack.api_url", "paystack-api-url")
	bindFlag(cmd, "donations.currency", "donation-currency")
	bindFlag(cmd, "donations.goal", "donation-goal")
}

func bindFlag(cmd *cobra.Command, key, flag string) {
	if err := viper.BindPFlag(key, cmd.PersistentFlags().Lookup(flag)); err != nil {
		panic(err)
	}
}

func initConfig() error {
	if cfgFile != "" {
		viper.SetConfigFile(cfgFile)
	}

	if err := viper.ReadInConfig(); err != nil {
		var configNotFound viper.ConfigFileNotFoundError
		if cfgFile != "" && errors.As(err, &configNotFound) {
			return err
		}
	}

	return nil
}

func runServer(ctx context.Context) error {
	appConfig, err := config.Load(viper.GetViper())
	if err != nil {
		return err
	}

	logger, err := logging.NewLogger(appConfig.LogLevel)
	if err != nil {
		return err
	}
	defer logger.Sync() //nolint:errcheck

	db, err := database.OpenSQLite(appConfig.DatabasePath, logger)
	if err != nil {
		return err
	}
	sqlDB, err := db.DB()
	if err != nil {
		return err
	}
	defer sqlDB.Close()

	tokenManager := auth.NewTokenIssuer(auth.TokenIssuerConfig{
		SigningSecret: []byte(appConfig.SigningSecret),
		Issuer:        "memorial-api",
		Audience:      "memorial-admin",
		TokenTTL:      time.Duration(appConfig.TokenTTLMinutes) * time.Minute,
	})

	credentialGate, err := auth.NewCredentialGate(appConfig.AdminEmail, appConfig.AdminPasswordHash)
	if err != nil {
		return err
	}

	blobStore, err := media.NewS3Store(ctx, media.S3StoreConfig{
		Bucket:  appConfig.MediaBucket,
		Region:  appConfig.MediaRegion,
		BaseURL: appConfig.MediaBaseURL,
	})
	if err != nil {
		return err
	}

	paystackClient, err := payments.NewClient(payments.ClientConfig{
		SecretKey: appConfig.PaystackSecretKey,
		APIURL:    appConfig.PaystackAPIURL,
	})
	if err != nil {
		return err
	}

	candleService, err := candles.NewService(candles.ServiceConfig{Database: db, Logger: logger})
	if err != nil {
		return err
	}
	tributeService, err := tributes.NewService(tributes.ServiceConfig{Database: db, Logger: logger})
	if err != nil {
		return err
	}
	galleryService, err := gallery.NewService(gallery.ServiceConfig{Database: db, Blobs: blobStore, Logger: logger})
	if err != nil {
		return err
	}
	donationService, err := donations.NewService(donations.ServiceConfig{
		Database: db,
		Verifier: paystackClient,
		Currency: appConfig.DonationCurrency,
		Logger:   logger,
	})
	if err != nil {
		return err
	}

	handler, err := server.NewHTTPHandler(server.Dependencies{
		Candles:          candleService,
		Tributes:         tributeService,
		Gallery:          galleryService,
		Donations:        donationService,
		TokenManager:     tokenManager,
		Credentials:      credentialGate,
		Realtime:         server.NewRealtimeDispatcher(),
		Logger:           logger,
		DonationGoal:     appConfig.DonationGoal,
		DonationCurrency: appConfig.DonationCurrency,
	})
	if err != nil {
		return err
	}

	httpServer := &http.Server{
		Addr:    appConfig.HTTPAddress,
		Handler: handler,
	}

	signalCtx, stop := signal.NotifyContext(ctx, syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	errCh := make(chan error, 1)
	go func() {
		logger.Info("server starting", zap.String("address", appConfig.HTTPAddress))
		err := httpServer.ListenAndServe()
		if err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	select {
	case <-signalCtx.Done():
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		return httpServer.Shutdown(shutdownCtx)
	case err := <-errCh:
		return err
	}
}
