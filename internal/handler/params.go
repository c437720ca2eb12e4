package handler

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/oapi-codegen/runtime"
	openapi_types "github.com/oapi-codegen/runtime/types"
)

// pathID binds the {id} path parameter.
func pathID(r *http.Request) (int64, error) {
	var id int64
	err := runtime.BindStyledParameterWithOptions("simple", "id", chi.URLParam(r, "id"), &id,
		runtime.BindStyledParameterOptions{ParamLocation: runtime.ParamLocationPath, Required: true})
	if err != nil {
		return 0, fmt.Errorf("invalid id: %w", err)
	}
	if id <= 0 {
		return 0, errors.New("invalid id: must be positive")
	}
	return id, nil
}

// pathDate binds a YYYY-MM-DD path parameter.
func pathDate(r *http.Request, name string) (time.Time, error) {
	var d openapi_types.Date
	err := runtime.BindStyledParameterWithOptions("simple", name, chi.URLParam(r, name), &d,
		runtime.BindStyledParameterOptions{ParamLocation: runtime.ParamLocationPath, Required: true})
	if err != nil {
		return time.Time{}, fmt.Errorf("invalid %s: %w", name, err)
	}
	return d.Time, nil
}

// queryInt binds an optional integer query parameter. Absent yields nil.
func queryInt(r *http.Request, name string) (*int, error) {
	var v *int
	if err := runtime.BindQueryParameter("form", true, false, name, r.URL.Query(), &v); err != nil {
		return nil, fmt.Errorf("invalid %s: %w", name, err)
	}
	return v, nil
}

// queryString binds an optional string query parameter. Absent yields "".
func queryString(r *http.Request, name string) (string, error) {
	var v *string
	if err := runtime.BindQueryParameter("form", true, false, name, r.URL.Query(), &v); err != nil {
		return "", fmt.Errorf("invalid %s: %w", name, err)
	}
	return derefString(v), nil
}

// decodeJSON reads a JSON body into dst. Unknown fields are rejected.
func decodeJSON(r *http.Request, dst any) error {
	if r.Body == nil || r.Body == http.NoBody {
		return errors.New("request body is required")
	}
	dec := json.NewDecoder(r.Body)
	dec.DisallowUnknownFields()
	if err := dec.Decode(dst); err != nil {
		if errors.Is(err, io.EOF) {
			return errors.New("request body is required")
		}
		return fmt.Errorf("malformed request body: %w", err)
	}
	return nil
}

// writeJSON writes v as a JSON response with the given status.
func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	//nolint:errcheck // the client may have gone away; nothing left to do.
	json.NewEncoder(w).Encode(v)
}

func derefString(s *string) string {
	if s == nil {
		return ""
	}
	return *s
}
