package api

import (
	"encoding/json"
	"net"
	"net/http"

	"github.com/vocdoni/donations-backend/errors"
	"go.vocdoni.io/dvote/log"
)

// httpWriteJSON helper function allows to write a JSON response.
func httpWriteJSON(w http.ResponseWriter, data any) {
	body, err := json.Marshal(data)
	if err != nil {
		errors.ErrGenericInternalServerError.WithErr(err).Write(w)
		return
	}
	httpWriteRawJSON(w, body)
}

// httpWriteRawJSON helper function writes an already encoded JSON body with
// a 200 status.
func httpWriteRawJSON(w http.ResponseWriter, body []byte) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusOK)
	if _, err := w.Write(body); err != nil {
		log.Warnw("failed to write on response", "error", err)
	}
}

// httpWriteText helper function writes a plain text response.
func httpWriteText(w http.ResponseWriter, status int, text string) {
	w.Header().Set("Content-Type", "text/plain; charset=utf-8")
	w.WriteHeader(status)
	if _, err := w.Write([]byte(text)); err != nil {
		log.Warnw("failed to write on response", "error", err)
	}
}

// httpWriteError writes err as an API error response. Errors that are not
// errors.Error are reported as internal server errors.
func httpWriteError(w http.ResponseWriter, err error) {
	if apiErr, ok := err.(errors.Error); ok {
		apiErr.Write(w)
		return
	}
	errors.ErrGenericInternalServerError.WithErr(err).Write(w)
}

// remoteIP returns the IP address of the client, RemoteAddr is already
// rewritten by the RealIP middleware when behind a proxy.
func remoteIP(r *http.Request) string {
	host, _, err := net.SplitHostPort(r.RemoteAddr)
	if err != nil {
		return r.RemoteAddr
	}
	return host
}
