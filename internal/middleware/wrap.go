package middleware

import "net/http"

// ResponseRecorder wraps ResponseWriter, captures the status code and runs a
// hook right before the first byte or header is written.
type ResponseRecorder struct {
	http.ResponseWriter
	status      int
	wrote       bool
	beforeWrite func(http.ResponseWriter)
}

func NewResponseRecorder(w http.ResponseWriter) *ResponseRecorder {
	return &ResponseRecorder{ResponseWriter: w, status: http.StatusOK}
}

// SetBeforeWrite registers fn to run once, before headers are sent.
func (rw *ResponseRecorder) SetBeforeWrite(fn func(http.ResponseWriter)) {
	rw.beforeWrite = fn
}

func (rw *ResponseRecorder) fire() {
	if rw.wrote {
		return
	}
	rw.wrote = true
	if rw.beforeWrite != nil {
		rw.beforeWrite(rw.ResponseWriter)
	}
}

func (rw *ResponseRecorder) WriteHeader(statusCode int) {
	rw.fire()
	rw.status = statusCode
	rw.ResponseWriter.WriteHeader(statusCode)
}

func (rw *ResponseRecorder) Write(b []byte) (int, error) {
	rw.fire()
	return rw.ResponseWriter.Write(b)
}

// Flush forwards to the underlying writer when supported.
func (rw *ResponseRecorder) Flush() {
	rw.fire()
	if f, ok := rw.ResponseWriter.(http.Flusher); ok {
		f.Flush()
	}
}

func (rw *ResponseRecorder) Status() int { return rw.status }

// Wrote reports whether anything has been sent to the client.
func (rw *ResponseRecorder) Wrote() bool { return rw.wrote }
