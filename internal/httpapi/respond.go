package httpapi

import (
	"encoding/json"
	"errors"
	"net/http"
)

// maxRequestBody caps request body size for every endpoint.  Validation
// payloads are small (a QR token tops out near 1 KiB of hex); 4 KiB is a
// generous hard ceiling and anything beyond it is rejected at the
// transport level, independent of validation semantics.
const maxRequestBody = 4096

type errorBody struct {
	Error   string `json:"error"`
	Message string `json:"message"`
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, status int, code, msg string) {
	writeJSON(w, status, errorBody{Error: code, Message: msg})
}

// decodeBody decodes a JSON request body into dst under the size ceiling.
// It distinguishes only two failure classes: oversized (413) and
// malformed (400).  Both are transport-level rejections.
func decodeBody(w http.ResponseWriter, r *http.Request, dst any) bool {
	r.Body = http.MaxBytesReader(w, r.Body, maxRequestBody)

	dec := json.NewDecoder(r.Body)
	dec.DisallowUnknownFields()

	if err := dec.Decode(dst); err != nil {
		var tooLarge *http.MaxBytesError
		if errors.As(err, &tooLarge) {
			writeError(w, http.StatusRequestEntityTooLarge, "body_too_large", "request body exceeds limit")
			return false
		}
		writeError(w, http.StatusBadRequest, "bad_json", "invalid JSON body")
		return false
	}
	return true
}
