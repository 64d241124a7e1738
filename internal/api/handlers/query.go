package handlers

import (
	"context"
	"encoding/json"
	"io"
	"log/slog"
	"net/http"
	"ocean-query-service/internal/api/dto"
	"ocean-query-service/internal/platform/obs"
	"ocean-query-service/internal/services"
	"strings"
	"time"
)

const (
	maxK         = 50
	maxBatchSize = 20
	maxBodyBytes = 64 << 10
)

type QueryHandler struct {
	Service *services.QueryService
	Timeout time.Duration
	Logger  *slog.Logger
}

// Query answers a single free-text question.
func (h *QueryHandler) Query(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		w.Header().Set("Allow", http.MethodPost)
		writeError(w, r, http.StatusMethodNotAllowed, "method not allowed")
		return
	}

	var req dto.QueryRequest
	if !decodeBody(w, r, &req) {
		return
	}

	if strings.TrimSpace(req.Text) == "" {
		writeError(w, r, http.StatusBadRequest, "text is required")
		return
	}
	k, ok := normalizeK(req.K)
	if !ok {
		writeError(w, r, http.StatusBadRequest, "k must be between 1 and 50")
		return
	}

	ctx, cancel := h.withTimeout(r.Context())
	defer cancel()

	res, err := h.Service.Ask(ctx, req.Text, k)
	if err != nil {
		status, msg := statusFor(err)
		h.logFailure(ctx, status, err)
		writeError(w, r, status, msg)
		return
	}

	writeJSON(w, r, http.StatusOK, toQueryResponse(res))
}

// Batch answers several questions; each item carries its own status.
func (h *QueryHandler) Batch(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		w.Header().Set("Allow", http.MethodPost)
		writeError(w, r, http.StatusMethodNotAllowed, "method not allowed")
		return
	}

	var req dto.BatchQueryRequest
	if !decodeBody(w, r, &req) {
		return
	}

	if len(req.Queries) == 0 || len(req.Queries) > maxBatchSize {
		writeError(w, r, http.StatusBadRequest, "queries must contain between 1 and 20 items")
		return
	}
	k, ok := normalizeK(req.K)
	if !ok {
		writeError(w, r, http.StatusBadRequest, "k must be between 1 and 50")
		return
	}

	ctx, cancel := h.withTimeout(r.Context())
	defer cancel()

	results := h.Service.AskBatch(ctx, req.Queries, k)

	res := dto.BatchQueryResponse{Results: make([]dto.BatchItemResponse, 0, len(results))}
	for _, br := range results {
		item := dto.BatchItemResponse{Text: br.Text, Status: http.StatusOK}
		if br.Err != nil {
			status, msg := statusFor(br.Err)
			h.logFailure(ctx, status, br.Err)
			item.Status, item.Error = status, msg
		} else {
			qr := toQueryResponse(br.Result)
			item.Result = &qr
		}
		res.Results = append(res.Results, item)
	}

	writeJSON(w, r, http.StatusOK, res)
}

func (h *QueryHandler) withTimeout(ctx context.Context) (context.Context, context.CancelFunc) {
	if h.Timeout <= 0 {
		return context.WithCancel(ctx)
	}
	return context.WithTimeout(ctx, h.Timeout)
}

func (h *QueryHandler) logFailure(ctx context.Context, status int, err error) {
	logger := h.Logger
	if logger == nil {
		logger = slog.Default()
	}
	if status >= http.StatusInternalServerError {
		logger.ErrorContext(ctx, "query failed", "req_id", obs.RequestID(ctx), "status", status, "error", err)
		return
	}
	logger.InfoContext(ctx, "query rejected", "req_id", obs.RequestID(ctx), "status", status, "error", err)
}

func decodeBody(w http.ResponseWriter, r *http.Request, dst any) bool {
	dec := json.NewDecoder(http.MaxBytesReader(w, r.Body, maxBodyBytes))
	defer r.Body.Close()
	dec.DisallowUnknownFields()

	if err := dec.Decode(dst); err != nil {
		writeError(w, r, http.StatusBadRequest, "invalid json body")
		return false
	}
	if err := dec.Decode(&struct{}{}); err != io.EOF {
		writeError(w, r, http.StatusBadRequest, "body must contain only one JSON object")
		return false
	}
	return true
}

func normalizeK(k int) (int, bool) {
	if k == 0 {
		return 1, true
	}
	return k, k >= 1 && k <= maxK
}

func toQueryResponse(res *services.Result) dto.QueryResponse {
	q := res.Query
	out := dto.QueryResponse{
		Query: dto.ParsedQueryResponse{
			Text:      q.Text,
			Parameter: string(q.Parameter),
			Year:      q.Year,
			Place:     q.Place,
		},
		Answers: make([]dto.AnswerResponse, 0, len(res.Answers)),
	}
	if q.Target != nil {
		out.Query.Target = &dto.CoordinatesResponse{Lat: q.Target.Lat, Lon: q.Target.Lon}
	}

	for _, a := range res.Answers {
		out.Answers = append(out.Answers, dto.AnswerResponse{
			Parameter:            string(a.Parameter),
			RequestedYear:        a.RequestedYear,
			Year:                 a.Year,
			Value:                a.Value,
			SampleID:             a.SampleID,
			Location:             dto.CoordinatesResponse{Lat: a.Coordinates.Lat, Lon: a.Coordinates.Lon},
			Date:                 a.Date.Format(time.DateOnly),
			Target:               dto.CoordinatesResponse{Lat: a.Target.Lat, Lon: a.Target.Lon},
			DistanceKm:           a.DistanceKm,
			UsedFallbackYear:     a.UsedFallbackYear,
			UsedFallbackLocation: a.UsedFallbackLocation,
			Summary:              a.Summary(),
		})
	}
	return out
}
