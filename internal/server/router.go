package server

import (
	"context"
	"errors"
	"net/http"
	"strings"
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/sankofalabs/memorial/backend/internal/candles"
	"github.com/sankofalabs/memorial/backend/internal/donations"
	"github.com/sankofalabs/memorial/backend/internal/gallery"
	"github.com/sankofalabs/memorial/backend/internal/tributes"
	"go.uber.org/zap"
)

const adminSubjectContextKey = "memorial_admin_subject"

var (
	errMissingCandleService   = errors.New("candle service dependency required")
	errMissingTributeService  = errors.New("tribute service dependency required")
	errMissingGalleryService  = errors.New("gallery service dependency required")
	errMissingDonationService = errors.New("donation service dependency required")
	errMissingTokenManager    = errors.New("token manager dependency required")
	errMissingCredentialGate  = errors.New("credential gate dependency required")
	errMissingDispatcher      = errors.New("realtime dispatcher dependency required")
	errInvalidAuthorization   = errors.New("authorization header missing or invalid")
)

// TokenManager issues and validates admin session tokens.
type TokenManager interface {
	IssueAdminToken(ctx context.Context, subject string) (string, int64, error)
	ValidateToken(token string) (string, error)
}

// CredentialGate checks the administrator's email and password pair.
type CredentialGate interface {
	Authenticate(email, password string) (string, error)
}

// Dependencies wires the HTTP layer to the domain services.
type Dependencies struct {
	Candles          *candles.Service
	Tributes         *tributes.Service
	Gallery          *gallery.Service
	Donations        *donations.Service
	TokenManager     TokenManager
	Credentials      CredentialGate
	Realtime         *RealtimeDispatcher
	Logger           *zap.Logger
	DonationGoal     float64
	DonationCurrency string
}

// NewHTTPHandler builds the gin router serving the memorial API.
func NewHTTPHandler(deps Dependencies) (http.Handler, error) {
	if deps.Candles == nil {
		return nil, errMissingCandleService
	}
	if deps.Tributes == nil {
		return nil, errMissingTributeService
	}
	if deps.Gallery == nil {
		return nil, errMissingGalleryService
	}
	if deps.Donations == nil {
		return nil, errMissingDonationService
	}
	if deps.TokenManager == nil {
		return nil, errMissingTokenManager
	}
	if deps.Credentials == nil {
		return nil, errMissingCredentialGate
	}
	if deps.Realtime == nil {
		return nil, errMissingDispatcher
	}

	logger := deps.Logger
	if logger == nil {
		logger = zap.NewNop()
	}

	router := gin.New()
	router.Use(gin.Recovery())
	router.Use(cors.New(cors.Config{
		AllowOrigins: []string{"*"},
		AllowMethods: []string{http.MethodGet, http.MethodPost, http.MethodDelete, http.MethodOptions},
		AllowHeaders: []string{"Authorization", "Content-Type"},
		MaxAge:       12 * time.Hour,
	}))

	handler := &httpHandler{
		candles:      deps.Candles,
		tributes:     deps.Tributes,
		gallery:      deps.Gallery,
		donations:    deps.Donations,
		tokens:       deps.TokenManager,
		credentials:  deps.Credentials,
		realtime:     deps.Realtime,
		logger:       logger,
		donationGoal: deps.DonationGoal,
		currency:     deps.DonationCurrency,
	}

	api := router.Group("/api")
	api.GET("/candles/count", handler.handleCandleCount)
	api.GET("/candles/stream", handler.handleCandleStream)
	api.POST("/candles", handler.handleLightCandle)

	api.GET("/tributes", handler.handleListTributes)
	api.POST("/tributes", handler.handleSubmitTribute)
	api.POST("/tributes/:id/hearts", handler.handleAddHeart)

	api.GET("/gallery", handler.handleListGallery)
	api.POST("/gallery", handler.handleSubmitGalleryItem)

	api.GET("/donations", handler.handleListDonations)
	api.GET("/donations/total", handler.handleDonationTotal)
	api.POST("/donations", handler.handleRecordDonation)

	api.POST("/admin/login", handler.handleAdminLogin)

	admin := api.Group("/admin")
	admin.Use(handler.authorizeRequest)
	admin.GET("/tributes/pending", handler.handlePendingTributes)
	admin.POST("/tributes/:id/approve", handler.handleApproveTribute)
	admin.DELETE("/tributes/:id", handler.handleRejectTribute)
	admin.GET("/gallery/pending", handler.handlePendingGallery)
	admin.POST("/gallery/:id/approve", handler.handleApproveGalleryItem)
	admin.DELETE("/gallery/:id", handler.handleRejectGalleryItem)

	return router, nil
}

type httpHandler struct {
	candles      *candles.Service
	tributes     *tributes.Service
	gallery      *gallery.Service
	donations    *donations.Service
	tokens       TokenManager
	credentials  CredentialGate
	realtime     *RealtimeDispatcher
	logger       *zap.Logger
	donationGoal float64
	currency     string
}

func (h *httpHandler) authorizeRequest(c *gin.Context) {
	header := c.GetHeader("Authorization")
	if !strings.HasPrefix(header, "Bearer ") {
		c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": errInvalidAuthorization.Error()})
		return
	}
	token := strings.TrimSpace(strings.TrimPrefix(header, "Bearer "))
	if token == "" {
		c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": errInvalidAuthorization.Error()})
		return
	}
	subject, err := h.tokens.ValidateToken(token)
	if err != nil {
		h.logger.Warn("token validation failed", zap.Error(err))
		c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "unauthorized"})
		return
	}
	c.Set(adminSubjectContextKey, subject)
	c.Next()
}
