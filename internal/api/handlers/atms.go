package handlers

import (
	"atm-route-service/internal/api/dto"
	"atm-route-service/internal/ports"
	"log"
	"net/http"
	"strings"
)

// ATMHandler exposes ATM listing and bulk upsert.
type ATMHandler struct {
	Repo ports.ATMRepository
}

func (h *ATMHandler) ATMs(w http.ResponseWriter, r *http.Request) {
	switch r.Method {
	case http.MethodGet:
		h.list(w, r)
	case http.MethodPost:
		h.upsert(w, r)
	default:
		w.Header().Set("Allow", strings.Join([]string{http.MethodGet, http.MethodPost}, ", "))
		writeError(w, r, http.StatusMethodNotAllowed, "method not allowed")
	}
}

func (h *ATMHandler) list(w http.ResponseWriter, r *http.Request) {
	atms, err := h.Repo.ListATMs(r.Context())
	if err != nil {
		log.Printf("list atms failed: %v", err)
		writeError(w, r, http.StatusInternalServerError, "internal server error")
		return
	}

	res := dto.ListATMsResponse{
		ATMs: make([]dto.ATMPayload, 0, len(atms)),
	}
	for _, a := range atms {
		res.ATMs = append(res.ATMs, atmToPayload(a))
	}

	writeJSON(w, r, http.StatusOK, res)
}

// upsert stores every valid record and reports the rejected ones.
// A batch with no valid records is still a 200 with accepted=0.
func (h *ATMHandler) upsert(w http.ResponseWriter, r *http.Request) {
	var req dto.UpsertATMsRequest
	if err := decodeJSON(w, r, &req); err != nil {
		writeError(w, r, http.StatusBadRequest, err.Error())
		return
	}

	atms, rejected := payloadsToATMs(req.ATMs)
	for _, rej := range rejected {
		log.Printf("upsert atms: rejected record: %v", rej)
	}

	if err := h.Repo.UpsertATMs(r.Context(), atms); err != nil {
		log.Printf("upsert atms failed: %v", err)
		writeError(w, r, http.StatusInternalServerError, "internal server error")
		return
	}

	writeJSON(w, r, http.StatusOK, dto.UpsertATMsResponse{
		Accepted: len(atms),
		Rejected: rejectedToDTO(rejected),
	})
}
