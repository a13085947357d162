package handlers

import (
	"atm-route-service/internal/api/dto"
	"atm-route-service/internal/domain"
	"atm-route-service/internal/ports"
	"atm-route-service/internal/services"
	"errors"
	"log"
	"net/http"
	"time"
)

// PlanDefaults fill in what a plan request leaves out.
type PlanDefaults struct {
	Start             *domain.Coordinates
	Alpha             float64
	Beta              float64
	MaxExpansions     int
	MaxNodes          int
	SearchTimeout     time.Duration
	MatrixConcurrency int
}

type PlanHandler struct {
	Repo     ports.ATMRepository
	Provider ports.TravelTimeProvider
	Defaults PlanDefaults
}

// Plan orders a replenishment run over stored or inline ATMs.
// It coordinates target resolution, travel-time measurement and route search.
func (h *PlanHandler) Plan(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		w.Header().Set("Allow", http.MethodPost)
		writeError(w, r, http.StatusMethodNotAllowed, "method not allowed")
		return
	}

	var req dto.PlanRequest
	if err := decodeJSON(w, r, &req); err != nil {
		writeError(w, r, http.StatusBadRequest, err.Error())
		return
	}

	var start domain.Coordinates
	switch {
	case req.Start != nil:
		start = domain.Coordinates{Lon: req.Start.Lon, Lat: req.Start.Lat}
	case h.Defaults.Start != nil:
		start = *h.Defaults.Start
	default:
		writeError(w, r, http.StatusBadRequest, "start is required")
		return
	}

	alpha := h.Defaults.Alpha
	if req.Alpha != nil {
		alpha = *req.Alpha
	}
	beta := h.Defaults.Beta
	if req.Beta != nil {
		beta = *req.Beta
	}

	maxExpansions := h.Defaults.MaxExpansions
	if req.MaxExpansions < 0 {
		writeError(w, r, http.StatusBadRequest, "max_expansions must be non-negative")
		return
	}
	// Callers may lower the budget, never raise it above the server limit.
	if req.MaxExpansions > 0 && (maxExpansions == 0 || req.MaxExpansions < maxExpansions) {
		maxExpansions = req.MaxExpansions
	}

	depart := time.Now()
	if req.DepartAt != nil {
		depart = *req.DepartAt
	}

	svcReq := services.PlanReplenishmentRequest{
		Start:             start,
		ATMIDs:            req.ATMIDs,
		Alpha:             alpha,
		Beta:              beta,
		Algorithm:         req.Algorithm,
		DepartAt:          depart,
		MaxExpansions:     maxExpansions,
		MaxNodes:          h.Defaults.MaxNodes,
		SearchTimeout:     h.Defaults.SearchTimeout,
		MatrixConcurrency: h.Defaults.MatrixConcurrency,
	}

	var rejected []*domain.ValidationError
	if len(req.ATMs) > 0 {
		svcReq.ATMs, rejected = payloadsToATMs(req.ATMs)
		if len(svcReq.ATMs) == 0 {
			writeJSON(w, r, http.StatusBadRequest, map[string]any{
				"error":    "no valid atm records",
				"rejected": rejectedToDTO(rejected),
			})
			return
		}
	}

	res, err := services.PlanReplenishment(r.Context(), svcReq, h.Repo, h.Provider)
	if err != nil {
		switch {
		case errors.Is(err, domain.ErrInvalidCoordinates),
			errors.Is(err, services.ErrInvalidWeights),
			errors.Is(err, services.ErrUnknownAlgorithm):
			writeError(w, r, http.StatusBadRequest, err.Error())
		case errors.Is(err, services.ErrUnknownATMs):
			writeError(w, r, http.StatusNotFound, err.Error())
		default:
			log.Printf("plan replenishment failed: %v", err)
			writeError(w, r, http.StatusInternalServerError, "internal server error")
		}
		return
	}
	rejected = append(rejected, res.Rejected...)

	p := res.Plan
	out := dto.PlanResponse{
		Start:                dto.CoordinatesPayload{Lon: p.Start.Lon, Lat: p.Start.Lat},
		DepartAt:             p.DepartAt,
		Algorithm:            p.Algorithm,
		Alpha:                p.Alpha,
		Beta:                 p.Beta,
		TotalDurationSeconds: p.TotalDurationSeconds,
		TotalCost:            p.TotalCost,
		Expansions:           p.Expansions,
		Truncated:            p.Truncated,
		Stops:                make([]dto.PlanStopResponse, 0, len(p.Stops)),
		Waypoints:            p.Waypoints(),
		Rejected:             rejectedToDTO(rejected),
	}
	for _, s := range p.Stops {
		out.Stops = append(out.Stops, dto.PlanStopResponse{
			ATM:         atmToPayload(s.ATM),
			LegSeconds:  s.LegSeconds,
			ArriveAt:    s.ArriveAt,
			Unreachable: s.Unreachable,
		})
	}

	writeJSON(w, r, http.StatusOK, out)
}
