package handlers

import (
	"fmt"
	"net/http"

	qrcode "github.com/skip2/go-qrcode"

	"github.com/lojf/campreg/internal/household"
	"github.com/lojf/campreg/internal/models"
)

// GET /api/camps/{id}/families?q=
func (h *Handlers) ListFamilies(w http.ResponseWriter, r *http.Request) {
	campID, err := urlID(r, "id")
	if err != nil {
		writeError(w, err)
		return
	}
	if err := visibleCamp(r, campID); err != nil {
		writeError(w, err)
		return
	}
	fams, err := h.Store.ListFamilies(r.Context(), campID)
	if err != nil {
		writeError(w, err)
		return
	}
	members, err := h.Store.ListIndividuals(r.Context(), campID)
	if err != nil {
		writeError(w, err)
		return
	}
	list := household.Search(household.Summaries(fams, members), r.URL.Query().Get("q"))
	writeJSON(w, http.StatusOK, map[string]any{"families": list, "count": len(list)})
}

type familyView struct {
	models.Family
	HeadID   *uint  `json:"head_id,omitempty"`
	HeadName string `json:"head_name"`
	SpouseID *uint  `json:"spouse_id,omitempty"`
}

// GET /api/families/{id}
func (h *Handlers) GetFamily(w http.ResponseWriter, r *http.Request) {
	id, err := urlID(r, "id")
	if err != nil {
		writeError(w, err)
		return
	}
	f, err := h.familyCamp(r, id)
	if err != nil {
		writeError(w, err)
		return
	}
	v := familyView{Family: f, HeadName: "-"}
	if i := household.HeadIndex(f.Members); i >= 0 {
		v.HeadID = &f.Members[i].ID
		v.HeadName = f.Members[i].Name
		if s := household.SpouseIndex(f.Members, i); s >= 0 {
			v.SpouseID = &f.Members[s].ID
		}
	}
	writeJSON(w, http.StatusOK, v)
}

// POST /api/families
func (h *Handlers) CreateFamily(w http.ResponseWriter, r *http.Request) {
	var f models.Family
	if err := decodeJSON(r, &f); err != nil {
		writeError(w, err)
		return
	}
	if err := visibleCamp(r, f.CampID); err != nil {
		writeError(w, err)
		return
	}
	if err := h.Registry.CreateFamily(r.Context(), &f); err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, f)
}

// PUT /api/families/{id}
// Moving a family is only possible between camps the caller can see.
func (h *Handlers) UpdateFamily(w http.ResponseWriter, r *http.Request) {
	id, err := urlID(r, "id")
	if err != nil {
		writeError(w, err)
		return
	}
	if _, err := h.familyCamp(r, id); err != nil {
		writeError(w, err)
		return
	}
	var f models.Family
	if err := decodeJSON(r, &f); err != nil {
		writeError(w, err)
		return
	}
	f.ID = id
	if err := visibleCamp(r, f.CampID); err != nil {
		writeError(w, err)
		return
	}
	if err := h.Registry.UpdateFamily(r.Context(), &f); err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, f)
}

// DELETE /api/families/{id}
func (h *Handlers) DeleteFamily(w http.ResponseWriter, r *http.Request) {
	id, err := urlID(r, "id")
	if err != nil {
		writeError(w, err)
		return
	}
	if _, err := h.familyCamp(r, id); err != nil {
		writeError(w, err)
		return
	}
	if err := h.Registry.DeleteFamily(r.Context(), id); err != nil {
		writeError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

type departedBody struct {
	Departed bool `json:"departed"`
}

// POST /api/families/{id}/departed
func (h *Handlers) SetFamilyDeparted(w http.ResponseWriter, r *http.Request) {
	id, err := urlID(r, "id")
	if err != nil {
		writeError(w, err)
		return
	}
	if _, err := h.familyCamp(r, id); err != nil {
		writeError(w, err)
		return
	}
	var body departedBody
	if err := decodeJSON(r, &body); err != nil {
		writeError(w, err)
		return
	}
	if err := h.Registry.SetFamilyDeparted(r.Context(), id, body.Departed); err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"family_id": id, "is_departed": body.Departed})
}

// GET /api/families/{id}/card.png
// The code encodes the family URL so scanning opens the record directly.
func (h *Handlers) FamilyCard(w http.ResponseWriter, r *http.Request) {
	id, err := urlID(r, "id")
	if err != nil {
		http.NotFound(w, r)
		return
	}
	f, err := h.familyCamp(r, id)
	if err != nil {
		writeError(w, err)
		return
	}

	scheme := "http"
	if r.TLS != nil {
		scheme = "https"
	}
	url := fmt.Sprintf("%s://%s/api/families/%d", scheme, r.Host, f.ID)

	png, err := qrcode.Encode(url, qrcode.Medium, 256)
	if err != nil {
		writeErrorMsg(w, http.StatusInternalServerError, "failed to generate qr")
		return
	}
	w.Header().Set("Content-Type", "image/png")
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write(png)
}
