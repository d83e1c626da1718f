package errors

import (
	"encoding/json"
	"fmt"
	"net/http"
	"runtime"

	"go.vocdoni.io/dvote/log"
)

// Kind classifies an Error by who caused it and how it must be handled.
type Kind string

const (
	// KindValidation errors are caused by the client and are returned as 400.
	KindValidation Kind = "validation"
	// KindUpstream errors come from the payments processor or the bot
	// verification service.
	KindUpstream Kind = "upstream"
	// KindSignature errors are webhook signature mismatches.
	KindSignature Kind = "signature"
	// KindDelivery errors are mail relay failures. They are only logged.
	KindDelivery Kind = "delivery"
)

// Error is used by handler functions to wrap errors, assigning a unique error code
// and also specifying which HTTP Status should be used.
type Error struct {
	Err        error  // Original error
	Kind       Kind   // Error kind
	Code       int    // Error code
	HTTPstatus int    // HTTP status code to return
	LogLevel   string // Log level for this error (defaults to "debug")
}

// MarshalJSON returns a JSON containing only the human readable message of
// Err. Code and HTTPstatus are ignored, the message is shown to the donor
// next to the donation form.
//
// Example output: {"message":"Please specify an amount"}
func (e Error) MarshalJSON() ([]byte, error) {
	return json.Marshal(
		struct {
			Message string `json:"message"`
		}{
			Message: e.Error(),
		})
}

// Error returns the Message contained inside the Error
func (e Error) Error() string {
	if e.Err == nil {
		return ""
	}
	return e.Err.Error()
}

// Unwrap returns the wrapped error.
func (e Error) Unwrap() error {
	return e.Err
}

// Status returns the HTTP status of the error, 500 if none was set.
func (e Error) Status() int {
	if e.HTTPstatus == 0 {
		return http.StatusInternalServerError
	}
	return e.HTTPstatus
}

// Write serializes a JSON msg using Error.Err and writes it with the status of
// the error. It also logs the error with appropriate level.
func (e Error) Write(w http.ResponseWriter) {
	msg, err := json.Marshal(e)
	if err != nil {
		log.Warn(err)
		http.Error(w, "marshal failed", http.StatusInternalServerError)
		return
	}
	status := e.Status()

	// Get caller information for better logging
	pc, file, line, _ := runtime.Caller(1)
	caller := runtime.FuncForPC(pc).Name()

	if status >= 500 {
		log.Errorw(e.Err, fmt.Sprintf("API error response [%d]: %s (code: %d, kind: %s, caller: %s, file: %s:%d)",
			status, e.Error(), e.Code, e.Kind, caller, file, line))
	} else if log.Level() == log.LogLevelDebug {
		errMsg := fmt.Sprintf("API error response [%d]: %s (code: %d, kind: %s, caller: %s)",
			status, e.Error(), e.Code, e.Kind, caller)
		switch e.LogLevel {
		case "info":
			log.Infow(errMsg)
		case "warn":
			log.Warnw(errMsg)
		default:
			log.Debugw(errMsg)
		}
	}

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if _, err := w.Write(msg); err != nil {
		log.Warnw("failed to write on response", "error", err)
	}
}

// Withf returns a copy of Error with the Sprintf formatted string appended at the end of e.Err
func (e Error) Withf(format string, args ...any) Error {
	return e.With(fmt.Sprintf(format, args...))
}

// With returns a copy of Error with the string appended at the end of e.Err
func (e Error) With(s string) Error {
	return Error{
		Err:        fmt.Errorf("%w: %v", e.Err, s),
		Kind:       e.Kind,
		Code:       e.Code,
		HTTPstatus: e.HTTPstatus,
		LogLevel:   e.LogLevel,
	}
}

// WithErr returns a copy of Error with err.Error() appended at the end of e.Err
func (e Error) WithErr(err error) Error {
	return e.With(err.Error())
}

// WithLogLevel returns a copy of Error with the specified log level
func (e Error) WithLogLevel(level string) Error {
	return Error{
		Err:        e.Err,
		Kind:       e.Kind,
		Code:       e.Code,
		HTTPstatus: e.HTTPstatus,
		LogLevel:   level,
	}
}

// Is reports whether target is an Error with the same Code, so wrapped copies
// made with With, Withf or WithErr still match their definition.
func (e Error) Is(target error) bool {
	t, ok := target.(Error)
	if !ok {
		return false
	}
	return t.Code != 0 && t.Code == e.Code
}
