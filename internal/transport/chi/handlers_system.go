package chi

import (
	"net/http"

	domusage "github.com/giuliontini/SoDiVino/internal/domain/usage"
	healthuc "github.com/giuliontini/SoDiVino/internal/usecase/health"
	"github.com/giuliontini/SoDiVino/internal/validation"
)

type usageQuery struct {
	Period string `form:"period" validate:"omitempty,oneof=day month total"`
}

type healthResponse struct {
	Status string            `json:"status"`
	Checks map[string]string `json:"checks"`
}

// GetUsage handles GET /usage.
func (s *Server) GetUsage(w http.ResponseWriter, r *http.Request) {
	q := usageQuery{Period: r.URL.Query().Get("period")}
	if err := validation.Struct(q); err != nil {
		s.handleDomainError(w, r, err)
		return
	}
	period, _ := domusage.ParsePeriod(q.Period)

	reports := s.svc.Usage.GetReports(r.Context(), period)
	resp := make([]usageResponse, len(reports))
	for i, report := range reports {
		resp[i] = usageToResponse(report)
	}
	writeJSON(w, http.StatusOK, map[string]any{"period": string(period), "reports": resp})
}

// HealthCheck handles GET /health.
func (s *Server) HealthCheck(w http.ResponseWriter, r *http.Request) {
	report := s.svc.Health.Check(r.Context())

	checks := make(map[string]string, len(report.Checks))
	for k, v := range report.Checks {
		checks[k] = string(v)
	}

	httpStatus := http.StatusOK
	if report.Status != healthuc.Healthy {
		httpStatus = http.StatusServiceUnavailable
	}
	writeJSON(w, httpStatus, healthResponse{Status: string(report.Status), Checks: checks})
}
