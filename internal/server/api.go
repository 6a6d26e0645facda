package server

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"strconv"
	"time"

	"github.com/UnknownOlympus/janus/internal/attendance"
	"github.com/UnknownOlympus/janus/internal/models"
	"github.com/UnknownOlympus/janus/internal/repository"
)

// scanTimeLayout is the timestamp format the RFID readers send.
const scanTimeLayout = "2006-01-02 15:04:05"

// scanRequest is the payload POSTed by a reader for every badge touch.
type scanRequest struct {
	Serial string `json:"serial"`
	Time   string `json:"time"`
}

type errorResponse struct {
	Error string `json:"error"`
}

// API exposes the scan ingress and summary endpoints consumed by the
// readers and the admin tooling.
type API struct {
	log *slog.Logger
	svc *attendance.Service
}

func NewAPI(log *slog.Logger, svc *attendance.Service) *API {
	return &API{log: log, svc: svc}
}

// Register mounts the API routes on the given mux.
func (a *API) Register(mux *http.ServeMux) {
	mux.HandleFunc("POST /api/attendance", a.handleScan)
	mux.HandleFunc("GET /api/summary", a.handleSummary)
}

// handleScan accepts one badge touch and replies synchronously with the
// classification outcome so the reader can show it on its display.
func (a *API) handleScan(writer http.ResponseWriter, req *http.Request) {
	var scan scanRequest
	if err := json.NewDecoder(req.Body).Decode(&scan); err != nil {
		a.log.WarnContext(req.Context(), "Malformed scan payload", "error", err)
		writeJSON(a.log, writer, http.StatusBadRequest, errorResponse{Error: "invalid json body"})
		return
	}
	if scan.Serial == "" {
		writeJSON(a.log, writer, http.StatusBadRequest, errorResponse{Error: "serial is required"})
		return
	}

	ts, err := time.ParseInLocation(scanTimeLayout, scan.Time, a.svc.Location())
	if err != nil {
		a.log.WarnContext(req.Context(), "Malformed scan timestamp", "time", scan.Time, "error", err)
		writeJSON(a.log, writer, http.StatusBadRequest, errorResponse{Error: "invalid time, expected YYYY-MM-DD HH:MM:SS"})
		return
	}

	result, err := a.svc.RecordScan(req.Context(), scan.Serial, ts)
	if err != nil {
		a.log.ErrorContext(req.Context(), "Failed to record scan", "serial", scan.Serial, "error", err)
		writeJSON(a.log, writer, http.StatusInternalServerError, errorResponse{Error: "internal error"})
		return
	}

	status := http.StatusOK
	if result.Status == models.ScanUnknownCard {
		status = http.StatusNotFound
	}
	writeJSON(a.log, writer, status, result)
}

// handleSummary returns one employee's day: the aggregate plus the raw
// event list.
func (a *API) handleSummary(writer http.ResponseWriter, req *http.Request) {
	employeeID, err := strconv.ParseInt(req.URL.Query().Get("employee_id"), 10, 64)
	if err != nil {
		writeJSON(a.log, writer, http.StatusBadRequest, errorResponse{Error: "employee_id is required"})
		return
	}

	date := req.URL.Query().Get("date")
	if date == "" {
		date = time.Now().In(a.svc.Location()).Format(models.DateLayout)
	}
	if _, err = time.Parse(models.DateLayout, date); err != nil {
		writeJSON(a.log, writer, http.StatusBadRequest, errorResponse{Error: "invalid date, expected YYYY-MM-DD"})
		return
	}

	summary, err := a.svc.DaySummary(req.Context(), employeeID, date)
	if err != nil {
		if errors.Is(err, repository.ErrEmployeeNotFound) {
			writeJSON(a.log, writer, http.StatusNotFound, errorResponse{Error: "employee not found"})
			return
		}
		a.log.ErrorContext(req.Context(), "Failed to build day summary", "employee_id", employeeID, "error", err)
		writeJSON(a.log, writer, http.StatusInternalServerError, errorResponse{Error: "internal error"})
		return
	}

	writeJSON(a.log, writer, http.StatusOK, summary)
}

func writeJSON(log *slog.Logger, writer http.ResponseWriter, status int, body any) {
	writer.Header().Set("Content-Type", "application/json")
	writer.WriteHeader(status)
	if err := json.NewEncoder(writer).Encode(body); err != nil {
		log.Error("Failed to write response", "error", err)
	}
}
