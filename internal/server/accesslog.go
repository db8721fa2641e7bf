package server

import (
	"log"
	"net/http"
	"time"

	"github.com/ribose/bibxml-browse/pkg/uuidv7"
)

type statusRecorder struct {
	http.ResponseWriter
	status int
}

func (w *statusRecorder) WriteHeader(status int) {
	w.status = status
	w.ResponseWriter.WriteHeader(status)
}

// withAccessLog logs one line per request with a time-ordered request id,
// echoed back in X-Request-ID.
func withAccessLog(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		rid, err := uuidv7.NewString()
		if err != nil {
			rid = "-"
		}
		w.Header().Set("X-Request-ID", rid)

		rec := &statusRecorder{ResponseWriter: w, status: http.StatusOK}
		start := time.Now()
		next.ServeHTTP(rec, r)
		log.Printf("%s %s %d %s rid=%s", r.Method, r.URL.Path, rec.status, time.Since(start).Round(time.Millisecond), rid)
	})
}
