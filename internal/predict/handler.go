package predict

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"

	"github.com/go-sod/smote/internal/balance"
	"github.com/go-sod/smote/internal/encoder"
	"github.com/go-sod/smote/internal/httputil"
	"github.com/go-sod/smote/internal/logging"
	runDb "github.com/go-sod/smote/internal/run/database"
	"github.com/go-sod/smote/internal/smote"
	"github.com/go-sod/smote/internal/util"
	"github.com/google/uuid"
	lru "github.com/hashicorp/golang-lru"
	"golang.org/x/sync/errgroup"
)

const maxBodyBytes = 64 * 1024 * 1024

type request struct {
	RunID uuid.UUID  `json:"run"`
	Rows  [][]string `json:"rows"`
}

type item struct {
	Row          []string  `json:"row"`
	Distribution []float64 `json:"distribution"`
	Class        string    `json:"class"`
}

type response struct {
	RunID uuid.UUID `json:"run"`
	Data  []item    `json:"data"`
}

type cacheKey struct {
	run  uuid.UUID
	hash [32]byte
}

func NewHandler(cfg *Config, classifiers balance.Classifiers) (http.Handler, error) {
	if classifiers == nil {
		return nil, fmt.Errorf("classifiers are not set")
	}
	cache, err := lru.New(cfg.CacheSize)
	if err != nil {
		return nil, fmt.Errorf("unable create prediction cache: %w", err)
	}
	return &handler{
		cfg:         cfg,
		classifiers: classifiers,
		cache:       cache,
	}, nil
}

type handler struct {
	classifiers balance.Classifiers
	cfg         *Config
	cache       *lru.Cache
}

func (h *handler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	var req request
	ctx, cancel := context.WithTimeout(r.Context(), h.cfg.RequestTimeout)
	defer cancel()
	logger := logging.FromContext(ctx)

	if r.Method != http.MethodPost {
		httputil.RespMethodNotAllowed(ctx, w, r)
		return
	}
	if !httputil.RequireJSON(ctx, w, r) {
		return
	}

	defer r.Body.Close()

	r.Body = http.MaxBytesReader(w, r.Body, maxBodyBytes)
	d := json.NewDecoder(r.Body)
	if err := d.Decode(&req); err != nil {
		httputil.DecodeErr(ctx, w, err)
		return
	}

	if len(req.Rows) > h.cfg.MaxDataItemsLen {
		httputil.RespBadRequest(ctx, w, `{"error": "data items is too large, max allowed len is %d"}`, h.cfg.MaxDataItemsLen)
		return
	}

	clf, err := h.classifiers.Classifier(ctx, req.RunID)
	switch {
	case errors.Is(err, runDb.ErrNotFound):
		httputil.RespStatus(ctx, w, http.StatusNotFound, `{"error": "run %s not found"}`, req.RunID)
		return
	case errors.Is(err, balance.ErrRunNotLoaded):
		httputil.RespStatus(ctx, w, http.StatusConflict, `{"error": "run %s is not loaded"}`, req.RunID)
		return
	case err != nil:
		httputil.RespInternalError(ctx, w, `{"error": "unable to load run, %v"}`, err)
		return
	}

	respData := make([]item, len(req.Rows))
	errGrp, gctx := errgroup.WithContext(ctx)
	for i, row := range req.Rows {
		i, row := i, row
		errGrp.Go(func() error {
			dist, err := h.distribution(gctx, req.RunID, clf, row)
			if err != nil {
				return fmt.Errorf("row %d: %w", i, err)
			}
			respData[i] = item{Row: row, Distribution: dist, Class: className(clf, dist)}
			return nil
		})
	}
	if err := errGrp.Wait(); err != nil {
		if errors.Is(err, encoder.ErrEncoding) {
			httputil.RespBadRequest(ctx, w, `{"error": %q}`, err.Error())
			return
		}
		httputil.RespInternalError(ctx, w, `{"error": "predict processing error, %v"}`, err)
		return
	}

	logger.Debugf("predict: %d rows for run %s", len(respData), req.RunID)
	httputil.RespJSON(ctx, w, response{RunID: req.RunID, Data: respData})
}

func (h *handler) distribution(ctx context.Context, runID uuid.UUID, clf *smote.Classifier, row []string) ([]float64, error) {
	e, err := clf.Encode(row)
	if err != nil {
		return nil, err
	}
	key := cacheKey{run: runID, hash: util.HashVector(e.Values)}
	if v, ok := h.cache.Get(key); ok {
		return v.([]float64), nil
	}
	dist, err := clf.DistributionForExample(ctx, e)
	if err != nil {
		return nil, err
	}
	h.cache.Add(key, dist)
	return dist, nil
}

// className picks the most probable class, the first one on ties.
func className(clf *smote.Classifier, dist []float64) string {
	best := -1
	for i, p := range dist {
		if best < 0 || p > dist[best] {
			best = i
		}
	}
	return clf.ClassName(best)
}
