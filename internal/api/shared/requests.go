package shared

import (
	"encoding/json"
	"errors"
	"net/http"
)

// maxRequestBody caps request bodies well above the answer length limit.
const maxRequestBody = 64 << 10

// DecodeJSON decodes the request body into the given destination,
// rejecting unknown fields and oversized bodies.
func DecodeJSON(r *http.Request, dst interface{}) error {
	if r.Body == nil {
		return errors.New("request body is empty")
	}

	decoder := json.NewDecoder(http.MaxBytesReader(nil, r.Body, maxRequestBody))
	decoder.DisallowUnknownFields()
	if err := decoder.Decode(dst); err != nil {
		return err
	}
	return nil
}
