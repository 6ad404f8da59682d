package api

import (
	"bytes"
	"fmt"
	"net/http"
	"net/url"
	"strconv"
	"time"

	"buddhist-lent/pledgeboard/internal/constants"
	"buddhist-lent/pledgeboard/internal/export"
	"buddhist-lent/pledgeboard/internal/logging"
	"buddhist-lent/pledgeboard/internal/metrics"
	gormModels "buddhist-lent/pledgeboard/internal/models/gorm"
	"buddhist-lent/pledgeboard/internal/services"
)

// exportRequest is the export-specific part of the query string. The
// remaining parameters are the list parameters of the page being exported.
type exportRequest struct {
	format export.Format
	ids    []uint
	all    bool
	list   url.Values
}

func parseExportRequest(r *http.Request) (*exportRequest, error) {
	q := r.URL.Query()
	format, err := export.ParseFormat(q.Get("format"))
	if err != nil {
		return nil, invalidInput("format must be csv or xlsx", err)
	}
	ids, err := parseIDs(r)
	if err != nil {
		return nil, err
	}
	all := false
	if raw := q.Get("all"); raw != "" {
		if all, err = strconv.ParseBool(raw); err != nil {
			return nil, invalidInput(fmt.Sprintf("invalid all %q", raw), err)
		}
	}

	list := url.Values{}
	for k, v := range q {
		switch k {
		case "format", "ids", "all":
		default:
			list[k] = v
		}
	}
	return &exportRequest{format: format, ids: ids, all: all, list: list}, nil
}

// writeExport renders the selected rows into a buffer first so a failure
// still produces a proper error response.
func writeExport[T any](
	w http.ResponseWriter,
	initTime time.Time,
	m *metrics.MetricsRegistry,
	resource string,
	req *exportRequest,
	rows []T,
	cols []export.Column[T],
	id func(T) uint,
) {
	rows = export.Select(rows, req.ids, id)

	var buf bytes.Buffer
	if err := export.Write(&buf, req.format, rows, cols); err != nil {
		respondServiceError(w, initTime, err)
		return
	}

	if m != nil {
		m.ExportsTotal.WithLabelValues(resource, string(req.format)).Inc()
		m.ExportRows.WithLabelValues(resource).Observe(float64(len(rows)))
	}
	logging.Info("Export generated", "resource", resource, "format", req.format, "rows", len(rows))

	filename := fmt.Sprintf("%s-%s.%s", resource, time.Now().Format("20060102-150405"), req.format.Extension())
	w.Header().Set("Content-Type", req.format.ContentType())
	w.Header().Set("Content-Disposition", fmt.Sprintf(`attachment; filename="%s"`, filename))
	w.Header().Set("Content-Length", strconv.Itoa(buf.Len()))
	w.WriteHeader(http.StatusOK)
	if _, err := buf.WriteTo(w); err != nil {
		logging.Warn("Export: client went away", "resource", resource, "error", err)
	}
}

// ExportParticipants handles GET /api/v1/participants/export
//
// @Summary      Export participants
// @Description  Exports the page described by the list parameters, or every matching row with all=true. ids narrows the export to selected rows.
// @Tags         Participants
// @Produce      text/csv
// @Param        format  query  string  false  "csv or xlsx"
// @Param        ids     query  string  false  "Comma separated ids"
// @Param        all     query  bool    false  "Ignore paging"
// @Router       /api/v1/participants/export [get]
func (h *Handlers) ExportParticipants() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		initTime := time.Now()
		req, err := parseExportRequest(r)
		if err != nil {
			respondBadRequest(w, initTime, err)
			return
		}
		rows, err := h.deps.Services.Participants.Rows(r.Context(), req.list, req.all)
		if err != nil {
			respondServiceError(w, initTime, err)
			return
		}
		writeExport(w, initTime, h.deps.Metrics, constants.ResourceParticipants, req, rows, services.ParticipantColumns,
			func(p gormModels.Participant) uint { return p.ID })
	}
}

func (h *Handlers) ExportFormReturns() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		initTime := time.Now()
		req, err := parseExportRequest(r)
		if err != nil {
			respondBadRequest(w, initTime, err)
			return
		}
		rows, err := h.deps.Services.FormReturns.Rows(r.Context(), req.list, req.all)
		if err != nil {
			respondServiceError(w, initTime, err)
			return
		}
		cols := services.FormReturnColumns(h.deps.Services.Uploader.Store())
		writeExport(w, initTime, h.deps.Metrics, constants.ResourceFormReturns, req, rows, cols,
			func(f gormModels.FormReturn) uint { return f.ID })
	}
}

func (h *Handlers) ExportGroups() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		initTime := time.Now()
		req, err := parseExportRequest(r)
		if err != nil {
			respondBadRequest(w, initTime, err)
			return
		}
		rows, err := h.deps.Services.Groups.Rows(r.Context(), req.list, req.all)
		if err != nil {
			respondServiceError(w, initTime, err)
			return
		}
		writeExport(w, initTime, h.deps.Metrics, constants.ResourceGroups, req, rows, services.GroupColumns,
			func(g gormModels.Group) uint { return g.ID })
	}
}
