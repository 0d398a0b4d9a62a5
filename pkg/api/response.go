// Package api provides the JSON response envelope shared by every
// HTTP handler. Success and error payloads always carry the same
// top-level shape so clients can decode them uniformly.
package api

import (
	"encoding/json"
	"net/http"

	"github.com/RoyceAzure/lab/marketplace/pkg/er"
)

type Response struct {
	Data any `json:"data"`
	Meta any `json:"meta,omitempty"`
}

type ResponseError struct {
	Code    int    `json:"code"`
	Message string `json:"message"`
	Data    any    `json:"data,omitempty"`
}

func SuccessJSON(w http.ResponseWriter, data any, meta any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusOK)
	_ = json.NewEncoder(w).Encode(Response{Data: data, Meta: meta})
}

// ErrorJSON writes an error envelope. The err detail is optional and
// only its message is exposed, never the full chain.
func ErrorJSON(w http.ResponseWriter, code int, err error, message string) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(er.HTTPStatus(er.Code(code)))

	resp := ResponseError{Code: code, Message: message}
	if err != nil {
		resp.Data = err.Error()
	}
	_ = json.NewEncoder(w).Encode(resp)
}
