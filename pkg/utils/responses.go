package utils

import (
	"encoding/json"
	"net/http"
)

// Response is the envelope of every JSON reply
type Response struct {
	Success    bool   `json:"success"`
	StatusCode int    `json:"statusCode"`
	Message    string `json:"message"`
	Data       any    `json:"data,omitempty"`
	Errors     any    `json:"errors,omitempty"`
}

func ResponseJSON(w http.ResponseWriter, code int, success bool, message string, data, errors any) {
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(code)
	_ = json.NewEncoder(w).Encode(Response{
		Success:    success,
		StatusCode: code,
		Message:    message,
		Data:       data,
		Errors:     errors,
	})
}

func ResponseSuccess(w http.ResponseWriter, message string, data any) {
	ResponseJSON(w, http.StatusOK, true, message, data, nil)
}

func ResponseCreated(w http.ResponseWriter, message string, data any) {
	ResponseJSON(w, http.StatusCreated, true, message, data, nil)
}

// ResponseFail writes an error envelope; errors carries per-field details
func ResponseFail(w http.ResponseWriter, code int, message string, errors any) {
	ResponseJSON(w, code, false, message, nil, errors)
}

func ResponseBadRequest(w http.ResponseWriter, message string, errors any) {
	ResponseFail(w, http.StatusBadRequest, message, errors)
}

func ResponseUnauthorized(w http.ResponseWriter, message string) {
	ResponseFail(w, http.StatusUnauthorized, message, nil)
}

func ResponseForbidden(w http.ResponseWriter, message string) {
	ResponseFail(w, http.StatusForbidden, message, nil)
}

func ResponseInternalError(w http.ResponseWriter, message string) {
	ResponseFail(w, http.StatusInternalServerError, message, nil)
}
