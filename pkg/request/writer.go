package request

import "net/http"

// ClientWriter wraps a http.ResponseWriter and records the status code
// written to it, so that middleware can observe it after the handler ran.
type ClientWriter struct {
	http.ResponseWriter
	statusCode int
}

// NewClientWriter creates a new ClientWriter.
func NewClientWriter(w http.ResponseWriter) *ClientWriter {
	return &ClientWriter{
		ResponseWriter: w,
		statusCode:     http.StatusOK,
	}
}

// WriteHeader records the status code and forwards it.
func (w *ClientWriter) WriteHeader(statusCode int) {
	w.statusCode = statusCode
	w.ResponseWriter.WriteHeader(statusCode)
}

// StatusCode returns the recorded status code.
func (w *ClientWriter) StatusCode() int {
	return w.statusCode
}
