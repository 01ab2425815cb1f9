package chi

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/zap"

	"github.com/giuliontini/SoDiVino/internal/domain"
	"github.com/giuliontini/SoDiVino/internal/domain/cellar"
	"github.com/giuliontini/SoDiVino/internal/domain/preference"
	"github.com/giuliontini/SoDiVino/internal/domain/scoring"
	"github.com/giuliontini/SoDiVino/internal/domain/session"
	domusage "github.com/giuliontini/SoDiVino/internal/domain/usage"
	"github.com/giuliontini/SoDiVino/internal/domain/wine"
	logpkg "github.com/giuliontini/SoDiVino/internal/logger"
	healthuc "github.com/giuliontini/SoDiVino/internal/usecase/health"
	recommenduc "github.com/giuliontini/SoDiVino/internal/usecase/recommend"
)

// MenuService parses uploaded wine lists.
type MenuService interface {
	ParseImage(ctx context.Context, userID string, img domain.MenuImage, restaurantName *string) (session.ParsedList, error)
	ParseText(ctx context.Context, userID, text string, restaurantName *string) (session.ParsedList, error)
	Wines(ctx context.Context, userID, listID string) ([]wine.Item, error)
}

// RecommendService ranks wines.
type RecommendService interface {
	Profiles() []preference.Profile
	FromImage(ctx context.Context, req recommenduc.QuickRequest) (recommenduc.QuickResult, error)
	Recommend(ctx context.Context, userID string, req recommenduc.Request) ([]scoring.Recommendation, error)
}

// PersonaService manages personas.
type PersonaService interface {
	List(ctx context.Context, userID string) ([]cellar.Persona, error)
	Create(ctx context.Context, userID string, in cellar.PersonaInput) (cellar.Persona, error)
	Update(ctx context.Context, userID, id string, in cellar.PersonaInput) (cellar.Persona, error)
	Delete(ctx context.Context, userID, id string) error
}

// PreferencesService manages user preferences.
type PreferencesService interface {
	Get(ctx context.Context, userID string) (cellar.Preferences, error)
	Put(ctx context.Context, userID string, in cellar.PreferencesInput) (cellar.Preferences, error)
}

// TasteProfileService manages taste profiles.
type TasteProfileService interface {
	Create(ctx context.Context, userID string, in cellar.TasteProfileInput) (cellar.TasteProfile, error)
	Latest(ctx context.Context, userID string) (*cellar.TasteProfile, error)
}

// SessionService manages menu sessions.
type SessionService interface {
	Create(ctx context.Context, userID string, in session.Input) (session.MenuSession, error)
	Get(ctx context.Context, userID, id string) (session.MenuSession, error)
	Latest(ctx context.Context, userID string) (*session.MenuSession, error)
}

// UsageService reports token usage.
type UsageService interface {
	GetReports(ctx context.Context, period domusage.Period) []domusage.Report
}

// HealthService aggregates component health.
type HealthService interface {
	Check(ctx context.Context) healthuc.Report
}

// Services groups the use cases the server exposes.
type Services struct {
	Menus         MenuService
	Recommend     RecommendService
	Personas      PersonaService
	Preferences   PreferencesService
	TasteProfiles TasteProfileService
	Sessions      SessionService
	Usage         UsageService
	Health        HealthService
}

// Options tune request handling.
type Options struct {
	MaxUploadBytes int64
	// UploadLimiter wraps the image upload routes. Nil disables it.
	UploadLimiter func(http.Handler) http.Handler
}

// errorHandler tries to handle a domain error. Returns true if handled.
type errorHandler func(w http.ResponseWriter, err error) bool

// Server serves the HTTP API.
type Server struct {
	svc           Services
	opts          Options
	logger        *zap.Logger
	errorHandlers []errorHandler
}

// NewServer creates an HTTP API server.
func NewServer(svc Services, opts Options, logger *zap.Logger) *Server {
	if opts.MaxUploadBytes <= 0 {
		opts.MaxUploadBytes = 10 << 20
	}
	s := &Server{svc: svc, opts: opts, logger: logger}
	s.errorHandlers = []errorHandler{
		invalidInputHandler,
		sentinelHandler(domain.ErrUnauthenticated, http.StatusUnauthorized, CodeUnauthenticated, "Not authenticated"),
		sentinelHandler(domain.ErrPersonaNotFound, http.StatusNotFound, CodeNotFound, "No personas found for this user"),
		sentinelHandler(domain.ErrTasteProfileNotFound, http.StatusNotFound, CodeNotFound, "Taste profile not found"),
		sentinelHandler(domain.ErrListNotFound, http.StatusNotFound, CodeNotFound, "No wines found for the provided list"),
		sentinelHandler(domain.ErrNotFound, http.StatusNotFound, CodeNotFound, "Not found"),
		sentinelHandler(domain.ErrRateLimited, http.StatusTooManyRequests, CodeRateLimited, "Too many requests"),
		sentinelHandler(domain.ErrLLMQuotaExceeded, http.StatusPaymentRequired, CodeQuotaExceeded,
			"Language model token budget exhausted"),
		sentinelHandler(domain.ErrLLMUnavailable, http.StatusServiceUnavailable, CodeLLMUnavailable,
			"Language model is unavailable"),
		sentinelHandler(domain.ErrLLMProviderError, http.StatusBadGateway, CodeLLMProviderError,
			"Language model provider error"),
	}
	return s
}

// Routes mounts every endpoint on r.
func (s *Server) Routes(r chi.Router) {
	upload := s.opts.UploadLimiter
	if upload == nil {
		upload = func(next http.Handler) http.Handler { return next }
	}

	r.Get("/health", s.HealthCheck)
	r.Method(http.MethodGet, "/metrics", promhttp.Handler())

	r.Route("/api/v1", func(r chi.Router) {
		r.Get("/preferences", s.ListProfiles)
		r.With(upload).Post("/recommendations/from-image", s.RecommendFromImage)
		r.Get("/usage", s.GetUsage)

		r.Group(func(r chi.Router) {
			r.Use(RequireUser)

			r.With(upload).Post("/menus/parse", s.ParseMenuImage)
			r.Post("/menus/parse-text", s.ParseMenuText)
			r.Get("/parsed-wines", s.ListParsedWines)

			r.Get("/personas", s.ListPersonas)
			r.Post("/personas", s.CreatePersona)
			r.Put("/personas/{id}", s.UpdatePersona)
			r.Delete("/personas/{id}", s.DeletePersona)

			r.Get("/user-prefs", s.GetUserPrefs)
			r.Put("/user-prefs", s.PutUserPrefs)

			r.Get("/taste-profiles", s.GetTasteProfile)
			r.Post("/taste-profiles", s.CreateTasteProfile)

			r.Get("/menu-sessions", s.GetMenuSession)
			r.Post("/menu-sessions", s.CreateMenuSession)

			r.Post("/recommendations", s.Recommend)
		})
	})
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, status int, code ErrorCode, message string) {
	writeJSON(w, status, ErrorResponse{Code: code, Message: message})
}

// invalidInputHandler reports the client-facing message of a validation failure.
func invalidInputHandler(w http.ResponseWriter, err error) bool {
	var inv *domain.InvalidInputError
	if errors.As(err, &inv) {
		writeError(w, http.StatusBadRequest, CodeValidationFailed, inv.Message)
		return true
	}
	if errors.Is(err, domain.ErrInvalidInput) {
		writeError(w, http.StatusBadRequest, CodeValidationFailed, "Invalid input")
		return true
	}
	return false
}

// sentinelHandler returns an errorHandler that matches a single sentinel error.
func sentinelHandler(sentinel error, status int, code ErrorCode, msg string) errorHandler {
	return func(w http.ResponseWriter, err error) bool {
		if !errors.Is(err, sentinel) {
			return false
		}
		writeError(w, status, code, msg)
		return true
	}
}

func (s *Server) handleDomainError(w http.ResponseWriter, r *http.Request, err error) {
	log := logpkg.FromContextOr(r.Context(), s.logger)
	log.Warn("domain error", zap.Error(err))
	for _, h := range s.errorHandlers {
		if h(w, err) {
			return
		}
	}
	log.Error("internal error", zap.Error(err))
	writeError(w, http.StatusInternalServerError, CodeInternalError, "internal error")
}

// decodeObject reads a JSON object body. A missing, non-object or malformed
// body yields 400 "Body must be a JSON object".
func decodeObject(w http.ResponseWriter, r *http.Request) (map[string]any, bool) {
	var body map[string]any
	if err := json.NewDecoder(r.Body).Decode(&body); err != nil || body == nil {
		writeError(w, http.StatusBadRequest, CodeBadRequest, "Body must be a JSON object")
		return nil, false
	}
	return body, true
}
