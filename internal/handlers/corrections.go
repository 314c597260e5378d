package handlers

import (
	"encoding/json"
	"net/http"

	"github.com/findosh/slideomni/internal/models"
	"github.com/findosh/slideomni/internal/pkg/response"
)

// CorrectionCost is the omnicoin price of one correction request
const CorrectionCost = 1

// SubmitCorrection handles POST /api/corrections/submit. It charges one
// omnicoin and echoes the request back.
func (h *Handler) SubmitCorrection(w http.ResponseWriter, r *http.Request) {
	claims, ok := requireClaims(w, r)
	if !ok {
		return
	}

	var body json.RawMessage
	if err := decodeJSON(w, r, &body); err != nil {
		h.fail(w, r, err)
		return
	}

	if err := h.ledger.Charge(r.Context(), claims.Username, models.CounterCoins, CorrectionCost); err != nil {
		h.fail(w, r, err)
		return
	}
	response.OK(w, map[string]any{"ok": true, "received": body})
}
