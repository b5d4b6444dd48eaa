package balance

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strconv"

	"github.com/go-sod/smote/internal/encoder"
	"github.com/go-sod/smote/internal/httputil"
	"github.com/go-sod/smote/internal/logging"
	runDb "github.com/go-sod/smote/internal/run/database"
	"github.com/go-sod/smote/internal/smote"
	"github.com/go-sod/smote/internal/util"
	"github.com/google/uuid"
)

const maxBodyBytes = 64 * 1024 * 1024

type request struct {
	Name        string     `json:"name"`
	ClassColumn string     `json:"classColumn"`
	Header      []string   `json:"header"`
	Kinds       []string   `json:"kinds"`
	Rows        [][]string `json:"rows"`
	Seed        *int64     `json:"seed"`
}

func (r request) raw() (*encoder.Raw, error) {
	raw := &encoder.Raw{Header: r.Header, Rows: r.Rows, ClassIndex: len(r.Header) - 1}
	if r.ClassColumn != "" {
		idx, err := raw.ColumnIndex(r.ClassColumn)
		if err != nil {
			return nil, err
		}
		raw.ClassIndex = idx
	}
	if len(r.Kinds) > 0 {
		raw.Kinds = make([]encoder.RawKind, len(r.Kinds))
		for i, k := range r.Kinds {
			kind, err := encoder.ParseKind(k)
			if err != nil {
				return nil, err
			}
			raw.Kinds[i] = kind
		}
	}
	return raw, nil
}

func NewHandler(cfg *Config, manager Manager) (http.Handler, error) {
	if manager == nil {
		return nil, fmt.Errorf("balance manager is not set")
	}
	return &handler{
		manager: manager,
		cfg:     cfg,
	}, nil
}

type handler struct {
	manager Manager
	cfg     *Config
}

func (h *handler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), h.cfg.RequestTimeout)
	defer cancel()
	logger := logging.FromContext(ctx)

	switch r.Method {
	case http.MethodGet:
		h.get(ctx, w, r)
		return
	case http.MethodDelete:
		h.delete(ctx, w, r)
		return
	case http.MethodPost:
	default:
		httputil.RespMethodNotAllowed(ctx, w, r)
		return
	}

	if !httputil.RequireJSON(ctx, w, r) {
		return
	}

	defer r.Body.Close()

	var req request
	r.Body = http.MaxBytesReader(w, r.Body, maxBodyBytes)
	d := json.NewDecoder(r.Body)
	d.DisallowUnknownFields()
	if err := d.Decode(&req); err != nil {
		httputil.DecodeErr(ctx, w, err)
		return
	}

	if len(req.Rows) > h.cfg.MaxRows {
		httputil.RespBadRequest(ctx, w, `{"error": "too many rows, max allowed is %d"}`, h.cfg.MaxRows)
		return
	}
	raw, err := req.raw()
	if err != nil {
		httputil.RespBadRequest(ctx, w, `{"error": %q}`, err.Error())
		return
	}

	run, err := h.manager.Balance(ctx, Request{Name: req.Name, Raw: raw, Seed: req.Seed})
	switch {
	case errors.Is(err, encoder.ErrEncoding), errors.Is(err, smote.ErrConfiguration), errors.Is(err, smote.ErrProtectionExhausted):
		httputil.RespBadRequest(ctx, w, `{"error": %q}`, err.Error())
		return
	case err != nil:
		httputil.RespInternalError(ctx, w, `{"error": "balance processing error, %v"}`, err)
		return
	}

	logger.Infow("balance: run stored", "run.id", run.ID, "run.generated", run.Generated)
	httputil.RespJSON(ctx, w, run)
}

type table struct {
	Header []string   `json:"header"`
	Rows   [][]string `json:"rows"`
}

// runID reads the run query parameter. ok is false when the parameter is
// absent or the response has already been written.
func runID(ctx context.Context, w http.ResponseWriter, r *http.Request) (id uuid.UUID, ok bool) {
	v := r.URL.Query().Get("run")
	if v == "" {
		return uuid.Nil, false
	}
	id, err := uuid.Parse(v)
	if err != nil {
		httputil.RespBadRequest(ctx, w, `{"error": "invalid run id %q"}`, v)
		return uuid.Nil, false
	}
	return id, true
}

// runErr writes the response for a failed run lookup.
func runErr(ctx context.Context, w http.ResponseWriter, id uuid.UUID, err error) {
	switch {
	case errors.Is(err, runDb.ErrNotFound):
		httputil.RespStatus(ctx, w, http.StatusNotFound, `{"error": "run %s not found"}`, id)
	case errors.Is(err, ErrRunNotFitted):
		httputil.RespStatus(ctx, w, http.StatusConflict, `{"error": "run %s has no dataset"}`, id)
	default:
		httputil.RespInternalError(ctx, w, `{"error": "unable to load run, %v"}`, err)
	}
}

func (h *handler) get(ctx context.Context, w http.ResponseWriter, r *http.Request) {
	if r.URL.Query().Get("run") == "" {
		h.list(ctx, w)
		return
	}
	id, ok := runID(ctx, w, r)
	if !ok {
		return
	}

	withDataset, _ := strconv.ParseBool(r.URL.Query().Get("dataset"))
	if !withDataset {
		run, err := h.manager.Run(ctx, id)
		if err != nil {
			runErr(ctx, w, id, err)
			return
		}
		httputil.RespJSON(ctx, w, run)
		return
	}

	ds, err := h.manager.Dataset(ctx, id)
	if err != nil {
		runErr(ctx, w, id, err)
		return
	}
	header, rows := ds.Table()
	switch format := r.URL.Query().Get("format"); format {
	case "", "json":
		httputil.RespJSON(ctx, w, table{Header: header, Rows: rows})
	case "csv":
		if err := util.WithBuffer(func(buf *bytes.Buffer) error {
			if err := encoder.WriteCSV(buf, header, rows); err != nil {
				return err
			}
			w.Header().Set("content-type", "text/csv")
			w.WriteHeader(http.StatusOK)
			_, _ = w.Write(buf.Bytes())
			return nil
		}); err != nil {
			httputil.RespInternalError(ctx, w, `{"error": "unable to encode dataset, %v"}`, err)
		}
	default:
		httputil.RespBadRequest(ctx, w, `{"error": "unknown format %q"}`, format)
	}
}

func (h *handler) list(ctx context.Context, w http.ResponseWriter) {
	runs, err := h.manager.Runs(ctx)
	if err != nil {
		httputil.RespInternalError(ctx, w, `{"error": "unable to list runs, %v"}`, err)
		return
	}
	count, err := h.manager.Count(ctx)
	if err != nil {
		httputil.RespInternalError(ctx, w, `{"error": "unable to count runs, %v"}`, err)
		return
	}
	w.Header().Set("x-total-count", strconv.Itoa(count))
	httputil.RespJSON(ctx, w, runs)
}

func (h *handler) delete(ctx context.Context, w http.ResponseWriter, r *http.Request) {
	if r.URL.Query().Get("run") == "" {
		httputil.RespBadRequest(ctx, w, `{"error": "run is required"}`)
		return
	}
	id, ok := runID(ctx, w, r)
	if !ok {
		return
	}
	if err := h.manager.Delete(ctx, id); err != nil {
		runErr(ctx, w, id, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}
