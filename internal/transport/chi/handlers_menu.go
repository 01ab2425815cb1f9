package chi

import (
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"strconv"
	"strings"

	"go.uber.org/zap"

	"github.com/giuliontini/SoDiVino/internal/domain"
	"github.com/giuliontini/SoDiVino/internal/domain/preference"
	logpkg "github.com/giuliontini/SoDiVino/internal/logger"
	recommenduc "github.com/giuliontini/SoDiVino/internal/usecase/recommend"
	"github.com/giuliontini/SoDiVino/internal/validation"
)

const noWinesParsedMessage = "OCR worked but no wines were parsed. Adjust parsing logic for this menu format."

type parseTextRequest struct {
	Text           string  `json:"text" validate:"required,max=50000"`
	RestaurantName *string `json:"restaurantName"`
}

type parsedListResponse struct {
	ListID string `json:"listId"`
	Count  int    `json:"count"`
}

// ListProfiles handles GET /preferences.
func (s *Server) ListProfiles(w http.ResponseWriter, _ *http.Request) {
	profiles := s.svc.Recommend.Profiles()
	resp := make([]profileResponse, len(profiles))
	for i, p := range profiles {
		resp[i] = profileToResponse(p)
	}
	writeJSON(w, http.StatusOK, resp)
}

// RecommendFromImage handles POST /recommendations/from-image.
func (s *Server) RecommendFromImage(w http.ResponseWriter, r *http.Request) {
	img, ok := s.readImage(w, r, "image", "No image uploaded")
	if !ok {
		return
	}

	req := recommenduc.QuickRequest{
		Image:     img,
		ProfileID: r.FormValue("profileId"),
		Overrides: preference.Overrides{
			Budget:          nullableNumber(r.FormValue("budget")),
			DislikedTerms:   preference.SplitTerms(r.FormValue("dislikes")),
			Adventurousness: adventurousness(r.FormValue("adventurous")),
		},
	}

	ctx, usage := domain.NewContextWithUsage(r.Context())
	res, err := s.svc.Recommend.FromImage(ctx, req)
	setLLMHeaders(w, usage)
	if err != nil {
		s.handleDomainError(w, r, err)
		return
	}

	if res.ParsedCount == 0 {
		writeJSON(w, http.StatusOK, map[string]any{
			"wines":       []any{},
			"textPreview": res.TextPreview,
			"message":     noWinesParsedMessage,
		})
		return
	}

	top := make([]scoredWineResponse, len(res.Top))
	for i, sw := range res.Top {
		top[i] = scoredToResponse(sw)
	}
	writeJSON(w, http.StatusOK, map[string]any{
		"profile":     profileToResponse(res.Profile),
		"parsedCount": res.ParsedCount,
		"top":         top,
	})
}

// ParseMenuImage handles POST /menus/parse.
func (s *Server) ParseMenuImage(w http.ResponseWriter, r *http.Request) {
	img, ok := s.readImage(w, r, "file", "No image provided")
	if !ok {
		return
	}
	var restaurant *string
	if name := strings.TrimSpace(r.FormValue("restaurantName")); name != "" {
		restaurant = &name
	}

	ctx, usage := domain.NewContextWithUsage(r.Context())
	list, err := s.svc.Menus.ParseImage(ctx, UserID(r.Context()), img, restaurant)
	setLLMHeaders(w, usage)
	if err != nil {
		s.handleDomainError(w, r, err)
		return
	}

	logpkg.FromContextOr(r.Context(), s.logger).Info("Menu parsed",
		zap.String("list_id", list.ID()),
		zap.Int("wines", len(list.Wines())),
	)
	writeJSON(w, http.StatusOK, parsedListResponse{ListID: list.ID(), Count: len(list.Wines())})
}

// ParseMenuText handles POST /menus/parse-text.
func (s *Server) ParseMenuText(w http.ResponseWriter, r *http.Request) {
	var req parseTextRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, CodeBadRequest, "Body must be a JSON object")
		return
	}
	if err := validation.Struct(req); err != nil {
		s.handleDomainError(w, r, err)
		return
	}

	list, err := s.svc.Menus.ParseText(r.Context(), UserID(r.Context()), req.Text, req.RestaurantName)
	if err != nil {
		s.handleDomainError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, parsedListResponse{ListID: list.ID(), Count: len(list.Wines())})
}

// ListParsedWines handles GET /parsed-wines.
func (s *Server) ListParsedWines(w http.ResponseWriter, r *http.Request) {
	listID := r.URL.Query().Get("parsedListId")
	if listID == "" {
		writeError(w, http.StatusBadRequest, CodeBadRequest, "parsedListId is required")
		return
	}

	items, err := s.svc.Menus.Wines(r.Context(), UserID(r.Context()), listID)
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			err = domain.ErrListNotFound
		}
		s.handleDomainError(w, r, err)
		return
	}

	wines := make([]wineItemResponse, len(items))
	for i, it := range items {
		wines[i] = wineToResponse(it)
	}
	writeJSON(w, http.StatusOK, map[string]any{"wines": wines})
}

// readImage pulls one uploaded file out of a multipart form, bounded by MaxUploadBytes.
func (s *Server) readImage(w http.ResponseWriter, r *http.Request, field, missing string) (domain.MenuImage, bool) {
	r.Body = http.MaxBytesReader(w, r.Body, s.opts.MaxUploadBytes)
	if err := r.ParseMultipartForm(s.opts.MaxUploadBytes); err != nil {
		var tooLarge *http.MaxBytesError
		if errors.As(err, &tooLarge) {
			writeError(w, http.StatusRequestEntityTooLarge, CodePayloadTooLarge, "Image is too large")
			return domain.MenuImage{}, false
		}
		writeError(w, http.StatusBadRequest, CodeBadRequest, missing)
		return domain.MenuImage{}, false
	}

	file, header, err := r.FormFile(field)
	if err != nil {
		writeError(w, http.StatusBadRequest, CodeBadRequest, missing)
		return domain.MenuImage{}, false
	}
	defer func() { _ = file.Close() }()

	data, err := io.ReadAll(file)
	if err != nil || len(data) == 0 {
		writeError(w, http.StatusBadRequest, CodeBadRequest, missing)
		return domain.MenuImage{}, false
	}

	mime := header.Header.Get("Content-Type")
	if mime == "" || mime == "application/octet-stream" {
		mime = http.DetectContentType(data)
	}
	return domain.MenuImage{Data: data, MIMEType: mime}, true
}

func setLLMHeaders(w http.ResponseWriter, usage *domain.LLMUsage) {
	if usage.Used() {
		w.Header().Set("X-LLM-Tokens", strconv.Itoa(usage.TotalTokens()))
	}
}
