package httpapi

import (
	"net/http"
	"net/url"
	"strings"

	"github.com/go-chi/chi/v5"
	"github.com/skip2/go-qrcode"

	apperrors "github.com/mikeczech/codenames/internal/platform/errors"
)

const inviteQRSize = 256

// inviteURL joins the public base URL and the game path.
func inviteURL(base, gameID string) string {
	base = strings.TrimRight(strings.TrimSpace(base), "/")
	return base + "/games/" + url.PathEscape(gameID)
}

func (s *Server) handleInvite(w http.ResponseWriter, r *http.Request) {
	gameID := chi.URLParam(r, "gameID")
	if _, err := s.svc.GetGame(r.Context(), gameID); err != nil {
		writeError(w, r, err)
		return
	}
	base := s.opts.PublicURL
	if base == "" {
		base = "http://" + r.Host
	}
	png, err := qrcode.Encode(inviteURL(base, gameID), qrcode.Medium, inviteQRSize)
	if err != nil {
		writeError(w, r, apperrors.Wrap(apperrors.CodeInternal, "encode invite", err))
		return
	}
	w.Header().Set("Content-Type", "image/png")
	w.Header().Set("Cache-Control", "public, max-age=3600")
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write(png)
}
