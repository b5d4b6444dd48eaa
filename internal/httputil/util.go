package httputil

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"

	"github.com/go-sod/smote/internal/logging"
)

const contentTypeJSON = "application/json"

// DecodeErr maps a json decoding error of a request body to a response.
func DecodeErr(ctx context.Context, w http.ResponseWriter, err error) {
	var (
		syntaxErr      *json.SyntaxError
		unmarshalError *json.UnmarshalTypeError
		maxBytesErr    *http.MaxBytesError
	)
	switch {
	case errors.As(err, &syntaxErr):
		RespBadRequest(ctx, w, `{"error": "malformed json at position %v"}`, syntaxErr.Offset)
	case errors.Is(err, io.ErrUnexpectedEOF):
		RespBadRequest(ctx, w, `{"error": "malformed json"}`)
	case errors.As(err, &unmarshalError):
		RespBadRequest(ctx, w, `{"error": "invalid value %v at position %v"}`, unmarshalError.Field, unmarshalError.Offset)
	case strings.HasPrefix(err.Error(), "json: unknown field"):
		fieldName := strings.TrimPrefix(err.Error(), "json: unknown field ")
		RespBadRequest(ctx, w, `{"error": "unknown field %s"}`, fieldName)
	case errors.Is(err, io.EOF):
		RespBadRequest(ctx, w, `{"error": "body must not be empty"}`)
	case errors.As(err, &maxBytesErr):
		RespStatus(ctx, w, http.StatusRequestEntityTooLarge, `{"error": "body is larger than %d bytes"}`, maxBytesErr.Limit)
	default:
		RespInternalError(ctx, w, `{"error": "failed to decode json %v"}`, err)
	}
}

// RequireJSON answers 415 and returns false unless the request carries a json
// body.
func RequireJSON(ctx context.Context, w http.ResponseWriter, r *http.Request) bool {
	if strings.HasPrefix(r.Header.Get("content-type"), contentTypeJSON) {
		return true
	}
	RespStatus(ctx, w, http.StatusUnsupportedMediaType, `{"error": "content-type is not %s"}`, contentTypeJSON)
	return false
}

func RespMethodNotAllowed(ctx context.Context, w http.ResponseWriter, r *http.Request) {
	RespStatus(ctx, w, http.StatusMethodNotAllowed, `{"error": "method %v is not allowed"}`, r.Method)
}

// RespStatus writes a formatted json error body with status.
func RespStatus(ctx context.Context, w http.ResponseWriter, status int, format string, args ...interface{}) {
	msg := fmt.Sprintf(format, args...)
	logging.FromContext(ctx).Debug(msg)
	w.Header().Set("content-type", contentTypeJSON)
	w.WriteHeader(status)
	_, _ = fmt.Fprint(w, msg)
}

func RespBadRequest(ctx context.Context, w http.ResponseWriter, format string, args ...interface{}) {
	RespStatus(ctx, w, http.StatusBadRequest, format, args...)
}

func RespInternalError(ctx context.Context, w http.ResponseWriter, format string, args ...interface{}) {
	logging.FromContext(ctx).Errorf(format, args...)
	http.Error(w, "Internal error", http.StatusInternalServerError)
}

// RespJSON writes v as a 200 json response.
func RespJSON(ctx context.Context, w http.ResponseWriter, v interface{}) {
	bytes, err := json.Marshal(v)
	if err != nil {
		RespInternalError(ctx, w, `{"error": "failed to encode output json %v"}`, err)
		return
	}
	w.Header().Set("content-type", contentTypeJSON)
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write(bytes)
}
