package middleware

import (
	"bufio"
	"errors"
	"net"
	"net/http"
)

// statusRecorder is shared by every middleware in the chain. It records the
// status, the body size and the session user so Logging can report them after
// the handler returns. Hijack and Flush are forwarded for the websocket stream.
type statusRecorder struct {
	http.ResponseWriter
	status int
	bytes  int64
	userID int64
}

func (r *statusRecorder) WriteHeader(code int) {
	if r.status == 0 {
		r.status = code
	}
	r.ResponseWriter.WriteHeader(code)
}

func (r *statusRecorder) Write(b []byte) (int, error) {
	if r.status == 0 {
		r.status = http.StatusOK
	}
	n, err := r.ResponseWriter.Write(b)
	r.bytes += int64(n)
	return n, err
}

func (r *statusRecorder) Hijack() (net.Conn, *bufio.ReadWriter, error) {
	hj, ok := r.ResponseWriter.(http.Hijacker)
	if !ok {
		return nil, nil, errors.New("response writer does not support hijacking")
	}
	if r.status == 0 {
		r.status = http.StatusSwitchingProtocols
	}
	return hj.Hijack()
}

func (r *statusRecorder) Flush() {
	if f, ok := r.ResponseWriter.(http.Flusher); ok {
		f.Flush()
	}
}

func (r *statusRecorder) Unwrap() http.ResponseWriter {
	return r.ResponseWriter
}

func recorderFor(w http.ResponseWriter) *statusRecorder {
	if rec, ok := w.(*statusRecorder); ok {
		return rec
	}
	return &statusRecorder{ResponseWriter: w}
}

func (r *statusRecorder) code() int {
	if r.status == 0 {
		return http.StatusOK
	}
	return r.status
}

func (r *statusRecorder) started() bool {
	return r.status != 0
}

// noteUser records the session user on the shared recorder, if w is one.
func noteUser(w http.ResponseWriter, userID int64) {
	if rec, ok := w.(*statusRecorder); ok {
		rec.userID = userID
	}
}
