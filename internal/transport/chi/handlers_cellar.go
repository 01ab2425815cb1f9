package chi

import (
	"errors"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/giuliontini/SoDiVino/internal/domain"
	"github.com/giuliontini/SoDiVino/internal/domain/session"
)

// ListPersonas handles GET /personas.
func (s *Server) ListPersonas(w http.ResponseWriter, r *http.Request) {
	personas, err := s.svc.Personas.List(r.Context(), UserID(r.Context()))
	if err != nil {
		s.handleDomainError(w, r, err)
		return
	}
	resp := make([]personaResponse, len(personas))
	for i, p := range personas {
		resp[i] = personaToResponse(p)
	}
	writeJSON(w, http.StatusOK, map[string]any{"personas": resp})
}

// CreatePersona handles POST /personas.
func (s *Server) CreatePersona(w http.ResponseWriter, r *http.Request) {
	body, ok := decodeObject(w, r)
	if !ok {
		return
	}
	p, err := s.svc.Personas.Create(r.Context(), UserID(r.Context()), personaInputFromBody(body))
	if err != nil {
		s.handleDomainError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"persona": personaToResponse(p)})
}

// UpdatePersona handles PUT /personas/{id}.
func (s *Server) UpdatePersona(w http.ResponseWriter, r *http.Request) {
	body, ok := decodeObject(w, r)
	if !ok {
		return
	}
	p, err := s.svc.Personas.Update(r.Context(), UserID(r.Context()), chi.URLParam(r, "id"), personaInputFromBody(body))
	if err != nil {
		s.handleDomainError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"persona": personaToResponse(p)})
}

// DeletePersona handles DELETE /personas/{id}.
func (s *Server) DeletePersona(w http.ResponseWriter, r *http.Request) {
	if err := s.svc.Personas.Delete(r.Context(), UserID(r.Context()), chi.URLParam(r, "id")); err != nil {
		s.handleDomainError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"ok": true})
}

// GetUserPrefs handles GET /user-prefs. A first call creates the defaults.
func (s *Server) GetUserPrefs(w http.ResponseWriter, r *http.Request) {
	prefs, err := s.svc.Preferences.Get(r.Context(), UserID(r.Context()))
	if err != nil {
		s.handleDomainError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"preferences": preferencesToResponse(prefs)})
}

// PutUserPrefs handles PUT /user-prefs.
func (s *Server) PutUserPrefs(w http.ResponseWriter, r *http.Request) {
	body, ok := decodeObject(w, r)
	if !ok {
		return
	}
	prefs, err := s.svc.Preferences.Put(r.Context(), UserID(r.Context()), preferencesInputFromBody(body))
	if err != nil {
		s.handleDomainError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"preferences": preferencesToResponse(prefs)})
}

// GetTasteProfile handles GET /taste-profiles. Returns the most recent profile or null.
func (s *Server) GetTasteProfile(w http.ResponseWriter, r *http.Request) {
	tp, err := s.svc.TasteProfiles.Latest(r.Context(), UserID(r.Context()))
	if err != nil {
		s.handleDomainError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"profile": tasteProfileToResponse(tp)})
}

// CreateTasteProfile handles POST /taste-profiles.
func (s *Server) CreateTasteProfile(w http.ResponseWriter, r *http.Request) {
	body, ok := decodeObject(w, r)
	if !ok {
		return
	}
	tp, err := s.svc.TasteProfiles.Create(r.Context(), UserID(r.Context()), tasteProfileInputFromBody(body))
	if err != nil {
		s.handleDomainError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"profile": tasteProfileToResponse(&tp)})
}

// GetMenuSession handles GET /menu-sessions. With ?id= it looks up that
// session, otherwise the latest one; a miss is null.
func (s *Server) GetMenuSession(w http.ResponseWriter, r *http.Request) {
	userID := UserID(r.Context())

	var (
		ms  *session.MenuSession
		err error
	)
	if id := r.URL.Query().Get("id"); id != "" {
		var found session.MenuSession
		found, err = s.svc.Sessions.Get(r.Context(), userID, id)
		switch {
		case err == nil:
			ms = &found
		case errors.Is(err, domain.ErrNotFound):
			err = nil
		}
	} else {
		ms, err = s.svc.Sessions.Latest(r.Context(), userID)
	}
	if err != nil {
		s.handleDomainError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"session": sessionToResponse(ms)})
}

// CreateMenuSession handles POST /menu-sessions.
func (s *Server) CreateMenuSession(w http.ResponseWriter, r *http.Request) {
	body, ok := decodeObject(w, r)
	if !ok {
		return
	}
	ms, err := s.svc.Sessions.Create(r.Context(), UserID(r.Context()), sessionInputFromBody(body))
	if err != nil {
		s.handleDomainError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"session": sessionToResponse(&ms)})
}
