package api

import "net/http"

// corsResponseHeaders are set on every response.
var corsResponseHeaders = map[string]string{
	"Access-Control-Allow-Origin":  "*",
	"Access-Control-Allow-Methods": "GET, POST, OPTIONS, PUT, DELETE",
	"Access-Control-Allow-Headers": "Content-Type, Access-Control-Allow-Headers, X-Requested-With",
}

// corsHeaders is a middleware that sets the fixed permissive CORS headers
// before the request is routed, so they are part of every response,
// including not found routes, errors and recovered panics.
func corsHeaders(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		for k, v := range corsResponseHeaders {
			w.Header().Set(k, v)
		}
		next.ServeHTTP(w, r)
	})
}
