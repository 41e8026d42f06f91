// Package response holds the JSON envelope helpers shared by all API
// handlers. Successful payloads are wrapped as {"data": ...}; failures as
// {"error", "message", "code"}.
package response

import (
	"encoding/json"
	"net/http"
)

type dataEnvelope struct {
	Data interface{} `json:"data"`
}

type errorEnvelope struct {
	Error   string `json:"error"`
	Message string `json:"message,omitempty"`
	Code    int    `json:"code"`
}

// JSON writes data as a JSON body with the given status code.
func JSON(w http.ResponseWriter, status int, data interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if data == nil {
		return
	}
	if err := json.NewEncoder(w).Encode(data); err != nil {
		http.Error(w, "Failed to encode response", http.StatusInternalServerError)
	}
}

// Success writes a 200 response with data wrapped in the envelope.
func Success(w http.ResponseWriter, data interface{}) {
	JSON(w, http.StatusOK, dataEnvelope{Data: data})
}

// Created writes a 201 response with data wrapped in the envelope.
func Created(w http.ResponseWriter, data interface{}) {
	JSON(w, http.StatusCreated, dataEnvelope{Data: data})
}

// NoContent writes a bare 204.
func NoContent(w http.ResponseWriter) {
	w.WriteHeader(http.StatusNoContent)
}

// Error writes an error envelope with the given status code.
func Error(w http.ResponseWriter, status int, err error) {
	JSON(w, status, errorEnvelope{
		Error:   http.StatusText(status),
		Message: err.Error(),
		Code:    status,
	})
}

// BadRequest writes a 400 error envelope.
func BadRequest(w http.ResponseWriter, err error) {
	Error(w, http.StatusBadRequest, err)
}

// NotFound writes a 404 error envelope.
func NotFound(w http.ResponseWriter, err error) {
	Error(w, http.StatusNotFound, err)
}

// InternalError writes a 500 error envelope.
func InternalError(w http.ResponseWriter, err error) {
	Error(w, http.StatusInternalServerError, err)
}
