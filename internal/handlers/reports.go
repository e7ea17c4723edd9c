package handlers

import (
	"fmt"
	"net/http"
	"sort"
	"time"

	"go.uber.org/zap"

	"github.com/lojf/campreg/internal/export"
	"github.com/lojf/campreg/internal/report"
)

// runReport decodes criteria, scopes them to the caller's camps, loads and
// runs the pipeline. ?preset= picks the column set when none is given.
func (h *Handlers) runReport(r *http.Request) (report.Result, error) {
	var c report.Criteria
	if r.ContentLength != 0 {
		if err := decodeJSON(r, &c); err != nil {
			return report.Result{}, err
		}
	}
	if len(c.Columns) == 0 {
		name := r.URL.Query().Get("preset")
		if name == "" {
			name = report.DefaultPreset
		}
		cols, err := report.Preset(name)
		if err != nil {
			return report.Result{}, err
		}
		c.Columns = cols
	}
	if err := c.Validate(); err != nil {
		return report.Result{}, err
	}

	ids, err := selectedOrVisible(r, c.CampIDs)
	if err != nil {
		return report.Result{}, err
	}
	if len(ids) == 0 {
		return report.Result{Columns: c.Columns, Rows: []report.Row{}}, nil
	}
	c.CampIDs = ids

	u, _ := sessionUser(r)
	ds, err := h.loader(u.ID).Load(r.Context(), ids)
	if err != nil {
		return report.Result{}, err
	}
	return h.Engine.Run(ds, c)
}

// POST /api/reports
// A load failure still answers with an empty row set next to the error.
func (h *Handlers) Report(w http.ResponseWriter, r *http.Request) {
	res, err := h.runReport(r)
	if err != nil {
		if statusFor(err) == http.StatusInternalServerError {
			writeJSON(w, http.StatusBadGateway, map[string]any{"error": err.Error(), "rows": []report.Row{}, "count": 0})
			return
		}
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, res)
}

// GET /api/reports/presets
func (h *Handlers) ListPresets(w http.ResponseWriter, r *http.Request) {
	names := report.PresetNames()
	sort.Strings(names)
	out := make(map[string][]report.Column, len(names))
	for _, name := range names {
		cols, err := report.Preset(name)
		if err != nil {
			writeError(w, err)
			return
		}
		out[name] = cols
	}
	writeJSON(w, http.StatusOK, map[string]any{"default": report.DefaultPreset, "names": names, "presets": out})
}

// POST /api/reports/export?format=xlsx|csv
func (h *Handlers) ExportReport(w http.ResponseWriter, r *http.Request) {
	format := r.URL.Query().Get("format")
	if format == "" {
		format = "xlsx"
	}
	if format != "xlsx" && format != "csv" {
		writeErrorMsg(w, http.StatusBadRequest, errText["bad_format"])
		return
	}
	res, err := h.runReport(r)
	if err != nil {
		writeError(w, err)
		return
	}

	filename := fmt.Sprintf("report-%s.%s", time.Now().Format("2006-01-02"), format)
	w.Header().Set("Content-Disposition", "attachment; filename="+filename)
	switch format {
	case "csv":
		w.Header().Set("Content-Type", "text/csv; charset=utf-8")
		err = export.WriteCSV(w, res)
	default:
		w.Header().Set("Content-Type", "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet")
		err = export.WriteXLSX(w, res, export.Options{RightToLeft: true})
	}
	if err != nil {
		h.Log.Error("write export", zap.String("format", format), zap.Error(err))
	}
}
