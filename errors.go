/*
Copyright © 2026 Seednode <seednode@seedno.de>
*/

package main

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strings"

	"github.com/Seednode/cineguess/internal/session"
)

var errBadBody = errors.New("malformed request body")

func logf(cfg *Config, format string, args ...any) {
	cfg.log.Debug().Msgf(format, args...)
}

func newPage(title, body string) string {
	var htmlBody strings.Builder

	htmlBody.WriteString(`<!DOCTYPE html><html lang="en"><head>`)
	htmlBody.WriteString(getFavicon(""))
	htmlBody.WriteString(`<style>`)
	htmlBody.WriteString(`html,body,a{display:block;height:100%;width:100%;text-decoration:none;color:inherit;cursor:auto;}</style>`)
	htmlBody.WriteString(fmt.Sprintf("<title>%s</title></head>", title))
	htmlBody.WriteString(fmt.Sprintf("<body><a href=\"/\">%s</a></body></html>", body))

	return htmlBody.String()
}

func statusOf(kind session.Kind) int {
	switch kind {
	case session.KindInvalidArgument:
		return http.StatusBadRequest
	case session.KindNotFound:
		return http.StatusNotFound
	case session.KindFailedPrecondition:
		return http.StatusConflict
	case session.KindPermissionDenied:
		return http.StatusForbidden
	case session.KindResourceExhausted:
		return http.StatusTooManyRequests
	default:
		return http.StatusInternalServerError
	}
}

// writeError renders err as {code, message}. Internal errors are logged
// and their text is not sent to the client.
func writeError(cfg *Config, w http.ResponseWriter, r *http.Request, err error) {
	kind := session.KindOf(err)
	if errors.Is(err, errBadBody) {
		kind = session.KindInvalidArgument
	}

	resp := session.ErrorResponse{Code: kind, Message: err.Error()}

	var e *session.Error
	if errors.As(err, &e) && e.Message != "" {
		resp.Message = e.Message
	}

	if kind == session.KindInternal {
		cfg.log.Error().Err(err).Str("path", r.URL.Path).Str("remote", realIP(r)).Msg("request failed")
		resp.Message = "internal error"
	}

	w.Header().Set("Content-Type", "application/json")
	securityHeaders(cfg, w)
	w.WriteHeader(statusOf(kind))

	_ = json.NewEncoder(w).Encode(resp)
}
