package chi

import (
	"net/http"
	"strings"

	"go.uber.org/zap"

	"github.com/giuliontini/SoDiVino/internal/domain"
	logpkg "github.com/giuliontini/SoDiVino/internal/logger"
	recommenduc "github.com/giuliontini/SoDiVino/internal/usecase/recommend"
)

// Recommend handles POST /recommendations.
func (s *Server) Recommend(w http.ResponseWriter, r *http.Request) {
	body, ok := decodeObject(w, r)
	if !ok {
		return
	}

	req, msg := recommendRequestFromBody(body)
	if msg != "" {
		writeError(w, http.StatusBadRequest, CodeValidationFailed, msg)
		return
	}

	ctx, usage := domain.NewContextWithUsage(r.Context())
	recs, err := s.svc.Recommend.Recommend(ctx, UserID(r.Context()), req)
	setLLMHeaders(w, usage)
	if err != nil {
		s.handleDomainError(w, r, err)
		return
	}

	logpkg.FromContextOr(r.Context(), s.logger).Info("Recommendations ready",
		zap.Int("personas", len(req.PersonaIDs)),
		zap.String("list_id", req.ListID),
		zap.Int("recommendations", len(recs)),
	)

	resp := make([]recommendationResponse, len(recs))
	for i, rec := range recs {
		resp[i] = recommendationToResponse(rec)
	}
	writeJSON(w, http.StatusOK, map[string]any{"recommendations": resp})
}

// recommendRequestFromBody maps the loosely typed body. A non-empty message
// is a client error the service cannot see, since it only gets decoded records.
func recommendRequestFromBody(body map[string]any) (recommenduc.Request, string) {
	var req recommenduc.Request

	if ids, ok := body["personaIds"].([]any); ok {
		seen := make(map[string]struct{}, len(ids))
		for _, v := range ids {
			id, _ := v.(string)
			id = strings.TrimSpace(id)
			if id == "" {
				continue
			}
			if _, dup := seen[id]; dup {
				continue
			}
			seen[id] = struct{}{}
			req.PersonaIDs = append(req.PersonaIDs, id)
		}
	}
	if id, ok := body["tasteProfileId"].(string); ok {
		req.TasteProfileID = strings.TrimSpace(id)
	}
	if id, ok := body["parsedListId"].(string); ok {
		req.ListID = strings.TrimSpace(id)
	} else if id, ok := body["listId"].(string); ok {
		req.ListID = strings.TrimSpace(id)
	}

	raw := body["wines"]
	wines, isArray := raw.([]any)
	if raw != nil && !isArray && req.ListID != "" &&
		(len(req.PersonaIDs) > 0 || req.TasteProfileID != "") {
		return req, "wines must be an array when provided"
	}
	// Non-object members stay as empty records for the normalizer to drop.
	for _, v := range wines {
		rec, _ := v.(map[string]any)
		if rec == nil {
			rec = map[string]any{}
		}
		req.Wines = append(req.Wines, rec)
	}
	return req, ""
}
