package predict

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"testing"
	"time"

	"github.com/go-sod/smote/internal/balance"
	"github.com/go-sod/smote/internal/database"
	"github.com/go-sod/smote/internal/encoder"
	"github.com/go-sod/smote/internal/predictor"
	"github.com/go-sod/smote/internal/predictor/knn"
	"github.com/go-sod/smote/internal/smote"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func setup(t *testing.T) (http.Handler, uuid.UUID) {
	t.Helper()
	db, err := database.Open(filepath.Join(t.TempDir(), "smote.db"))
	require.NoError(t, err)
	t.Cleanup(func() {
		_ = db.Close(context.Background())
	})

	m, err := balance.New(db, smote.DefaultConfig(), func() (predictor.Handle, error) {
		k, err := knn.New(knn.WithKNum(3))
		if err != nil {
			return predictor.Handle{}, err
		}
		return knn.Handle(k), nil
	})
	require.NoError(t, err)

	run, err := m.Balance(context.Background(), balance.Request{
		Name: "toy",
		Raw: &encoder.Raw{
			Header:     []string{"x", "y", "class"},
			ClassIndex: 2,
			Rows: [][]string{
				{"10", "10", "no"},
				{"0", "0", "yes"},
				{"10", "12", "no"},
				{"0", "2", "yes"},
				{"12", "10", "no"},
			},
		},
	})
	require.NoError(t, err)

	h, err := NewHandler(&Config{RequestTimeout: 10 * time.Second, MaxDataItemsLen: 3, CacheSize: 16}, m)
	require.NoError(t, err)
	return h, run.ID
}

func post(h http.Handler, body string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(http.MethodPost, "/predict", bytes.NewBufferString(body))
	req.Header.Set("content-type", "application/json")
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	return rec
}

func TestHandler_Predict(t *testing.T) {
	h, id := setup(t)

	body := fmt.Sprintf(`{"run": %q, "rows": [["0", "1"], ["11", "11"], ["0", "1"]]}`, id)
	for i := 0; i < 2; i++ {
		rec := post(h, body)
		require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())

		var resp response
		require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
		require.Len(t, resp.Data, 3)
		assert.Equal(t, id, resp.RunID)
		assert.Equal(t, "yes", resp.Data[0].Class)
		assert.Equal(t, "no", resp.Data[1].Class)
		assert.Equal(t, resp.Data[0].Distribution, resp.Data[2].Distribution)
		for _, d := range resp.Data {
			var sum float64
			for _, p := range d.Distribution {
				sum += p
			}
			assert.InDelta(t, 1.0, sum, 1e-9)
		}
	}
}

func TestHandler_Errors(t *testing.T) {
	h, id := setup(t)

	tests := []struct {
		name string
		body string
		code int
	}{
		{name: "unknown_run", body: fmt.Sprintf(`{"run": %q, "rows": [["0", "1"]]}`, uuid.New()), code: http.StatusNotFound},
		{name: "too_many_rows", body: fmt.Sprintf(`{"run": %q, "rows": [["0"],["0"],["0"],["0"]]}`, id), code: http.StatusBadRequest},
		{name: "bad_row", body: fmt.Sprintf(`{"run": %q, "rows": [["0"]]}`, id), code: http.StatusBadRequest},
		{name: "malformed", body: `{"run": `, code: http.StatusBadRequest},
	}
	for _, test := range tests {
		t.Run(test.name, func(t *testing.T) {
			rec := post(h, test.body)
			assert.Equal(t, test.code, rec.Code, rec.Body.String())
		})
	}
}
