package handler

import (
	"encoding/json"
	"net/http"
	"strings"

	"github.com/authhybrid/backend/internal/apperr"
	"github.com/authhybrid/backend/internal/service"
)

func decodeJSON(r *http.Request, v any) error {
	if err := json.NewDecoder(r.Body).Decode(v); err != nil {
		return apperr.Wrap(apperr.KindValidation, "Invalid request body", err)
	}
	return nil
}

// clientMeta extracts the user-agent and client IP fingerprint stored
// with refresh and reset tokens. The first X-Forwarded-For hop wins
// over the socket address.
func clientMeta(r *http.Request) service.ClientMeta {
	ip := r.RemoteAddr
	if fwd := r.Header.Get("X-Forwarded-For"); fwd != "" {
		ip = strings.TrimSpace(strings.SplitN(fwd, ",", 2)[0])
	}
	return service.ClientMeta{
		UserAgent: r.UserAgent(),
		IP:        ip,
	}
}
