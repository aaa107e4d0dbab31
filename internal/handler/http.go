package handler

import (
	"context"
	"crypto/subtle"
	"encoding/json"
	"errors"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/MichalMitros/coral-price-aggregator/internal/platform"
	"github.com/MichalMitros/coral-price-aggregator/internal/platform/models"
	"github.com/didip/tollbooth/v7"
	"github.com/didip/tollbooth/v7/limiter"
	"github.com/gorilla/mux"
	"github.com/rs/cors"
	"github.com/rs/zerolog"
	"github.com/samber/lo"
)

//go:generate mockery --name Runner --filename runner.go
//go:generate mockery --name ListingReader --filename listing_reader.go
//go:generate mockery --name Pinger --filename pinger.go

// Runner runs aggregation.
type Runner interface {
	Run(ctx context.Context) (*models.RunReport, error)
}

// ListingReader reads stored listings.
type ListingReader interface {
	QueryListings(ctx context.Context, filter models.ListingFilter) ([]models.Listing, error)
}

// Pinger checks storage connection.
type Pinger interface {
	Ping(ctx context.Context) error
}

type scrapeResponse struct {
	OK    bool                  `json:"ok"`
	Total int                   `json:"total"`
	Debug []models.SourceReport `json:"debug"`
}

type errorResponse struct {
	OK    bool   `json:"ok"`
	Error string `json:"error"`
}

type listingResponse struct {
	ID           int     `json:"id"`
	ShopID       string  `json:"shop_id"`
	Category     string  `json:"category"`
	Title        string  `json:"title"`
	URL          string  `json:"url"`
	ImageURL     *string `json:"image_url"`
	PriceCAD     *string `json:"price_cad"`
	SalePriceCAD *string `json:"sale_price_cad"`
	Status       string  `json:"status"`
	Variant      *string `json:"variant"`
	SaleMode     *string `json:"sale_mode"`
	UnitType     *string `json:"unit_type"`
	UnitCount    *int    `json:"unit_count"`
	CreatedAt    string  `json:"created_at"`
}

// HTTPOption is custom configuration of HTTPHandler.
type HTTPOption func(h *HTTPHandler)

// HTTPHandler serves trigger, listing and health endpoints.
type HTTPHandler struct {
	runner         Runner
	listings       ListingReader
	pinger         Pinger
	secret         string
	runCtx         context.Context
	requestsPerSec float64
	allowedOrigins []string
	logger         *zerolog.Logger
}

// NewHTTPHandler returns new HTTPHandler.
func NewHTTPHandler(runner Runner, listings ListingReader, pinger Pinger, ops ...HTTPOption) *HTTPHandler {
	nop := zerolog.Nop()

	h := &HTTPHandler{
		runner:         runner,
		listings:       listings,
		pinger:         pinger,
		runCtx:         context.Background(),
		requestsPerSec: 5,
		allowedOrigins: []string{"*"},
		logger:         &nop,
	}

	for _, op := range ops {
		op(h)
	}

	return h
}

// Router returns handler with all routes, rate limiting and CORS applied.
func (h *HTTPHandler) Router() http.Handler {
	lmt := tollbooth.NewLimiter(h.requestsPerSec, &limiter.ExpirableOptions{DefaultExpirationTTL: time.Hour})
	lmt.SetMessageContentType("application/json; charset=utf-8")
	lmt.SetMessage(`{"ok":false,"error":"too many requests"}`)

	r := mux.NewRouter()
	r.HandleFunc("/health", h.Health).Methods(http.MethodGet)

	api := r.PathPrefix("/api").Subrouter()
	api.Use(func(next http.Handler) http.Handler {
		return tollbooth.LimitHandler(lmt, next)
	})
	api.HandleFunc("/scrape", h.Scrape).Methods(http.MethodGet, http.MethodPost)
	api.HandleFunc("/listings", h.Listings).Methods(http.MethodGet)

	c := cors.New(cors.Options{
		AllowedOrigins: h.allowedOrigins,
		AllowedMethods: []string{http.MethodGet, http.MethodPost, http.MethodOptions},
		AllowedHeaders: []string{"Authorization", "Content-Type"},
	})

	return c.Handler(r)
}

// Scrape runs aggregation and responds with run report.
func (h *HTTPHandler) Scrape(w http.ResponseWriter, r *http.Request) {
	if !h.authorized(r) {
		writeJSON(w, http.StatusUnauthorized, errorResponse{Error: "unauthorized"})
		return
	}

	report, err := h.runner.Run(h.runCtx)
	if err != nil {
		status := http.StatusInternalServerError
		if errors.Is(err, platform.ErrAlreadyRunning) {
			status = http.StatusConflict
		}

		h.logger.Error().
			Err(err).
			Msg("scrape failed")

		writeJSON(w, status, errorResponse{Error: err.Error()})
		return
	}

	writeJSON(w, http.StatusOK, scrapeResponse{
		OK:    true,
		Total: report.Total,
		Debug: report.Sources,
	})
}

// Listings responds with stored listings matching query parameters.
func (h *HTTPHandler) Listings(w http.ResponseWriter, r *http.Request) {
	query := r.URL.Query()
	filter := models.ListingFilter{
		Category: query.Get("category"),
		Search:   query.Get("q"),
	}

	if raw := query.Get("limit"); raw != "" {
		limit, err := strconv.Atoi(raw)
		if err != nil {
			writeJSON(w, http.StatusBadRequest, errorResponse{Error: "invalid limit"})
			return
		}
		filter.Limit = limit
	}

	listings, err := h.listings.QueryListings(r.Context(), filter)
	if err != nil {
		h.logger.Error().
			Err(err).
			Msg("can't query listings")

		writeJSON(w, http.StatusInternalServerError, errorResponse{Error: "can't query listings"})
		return
	}

	resp := make([]listingResponse, 0, len(listings))
	for ix := range listings {
		resp = append(resp, toListingResponse(&listings[ix]))
	}

	writeJSON(w, http.StatusOK, resp)
}

// Health responds with 200 when storage is reachable.
func (h *HTTPHandler) Health(w http.ResponseWriter, r *http.Request) {
	if err := h.pinger.Ping(r.Context()); err != nil {
		writeJSON(w, http.StatusServiceUnavailable, errorResponse{Error: "storage unreachable"})
		return
	}

	writeJSON(w, http.StatusOK, map[string]bool{"ok": true})
}

// authorized accepts bearer token or secret query parameter. Every request passes when secret is not set.
func (h *HTTPHandler) authorized(r *http.Request) bool {
	if h.secret == "" {
		return true
	}

	token, ok := strings.CutPrefix(r.Header.Get("Authorization"), "Bearer ")
	if !ok {
		token = r.URL.Query().Get("secret")
	}

	return subtle.ConstantTimeCompare([]byte(strings.TrimSpace(token)), []byte(h.secret)) == 1
}

func toListingResponse(l *models.Listing) listingResponse {
	resp := listingResponse{
		ID:        l.ID,
		ShopID:    l.ShopID,
		Category:  l.Category,
		Title:     l.Title,
		URL:       l.URL,
		ImageURL:  l.ImageURL,
		Status:    l.Status,
		Variant:   l.Variant,
		SaleMode:  l.SaleMode,
		UnitType:  l.UnitType,
		UnitCount: l.UnitCount,
		CreatedAt: l.CreatedAt.UTC().Format(time.RFC3339),
	}

	if l.PriceCAD != nil {
		resp.PriceCAD = lo.ToPtr(l.PriceCAD.StringFixed(2))
	}
	if l.SalePriceCAD != nil {
		resp.SalePriceCAD = lo.ToPtr(l.SalePriceCAD.StringFixed(2))
	}

	return resp
}

func writeJSON(w http.ResponseWriter, status int, data any) {
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(data)
}

// WithSecret sets shared secret required by scrape endpoint.
func WithSecret(secret string) HTTPOption {
	return func(h *HTTPHandler) {
		h.secret = secret
	}
}

// WithRunContext sets context of triggered runs, runs outlive requests.
func WithRunContext(ctx context.Context) HTTPOption {
	return func(h *HTTPHandler) {
		h.runCtx = ctx
	}
}

// WithRateLimit sets allowed requests per second per client on API routes.
func WithRateLimit(requestsPerSec float64) HTTPOption {
	return func(h *HTTPHandler) {
		h.requestsPerSec = requestsPerSec
	}
}

// WithAllowedOrigins sets CORS allowed origins.
func WithAllowedOrigins(origins []string) HTTPOption {
	return func(h *HTTPHandler) {
		h.allowedOrigins = origins
	}
}

// WithHTTPLogger sets HTTPHandler's logger.
func WithHTTPLogger(logger *zerolog.Logger) HTTPOption {
	return func(h *HTTPHandler) {
		h.logger = logger
	}
}
