// internal/app/features/liveclient/handler.go
//
// The websocket endpoint for the live channel. Authentication happens
// at upgrade time with the same JWT the REST surface uses: the cookie,
// the Authorization header, or a ?token= handshake field for clients
// that cannot set either. A failed credential gets an explicit error
// frame before the close so reconnecting clients can surface it.
package liveclient

import (
	"net/http"

	"github.com/gorilla/websocket"
	"github.com/loomhub/loomhub/internal/app/system/auth"
	"github.com/loomhub/loomhub/internal/app/system/live"
	"go.uber.org/zap"
)

type Handler struct {
	Hub *live.Hub
	JWT *auth.JWTManager
	Log *zap.Logger

	upgrader websocket.Upgrader
}

func NewHandler(hub *live.Hub, jwt *auth.JWTManager, logger *zap.Logger, checkOrigin func(*http.Request) bool) *Handler {
	return &Handler{
		Hub: hub,
		JWT: jwt,
		Log: logger,
		upgrader: websocket.Upgrader{
			ReadBufferSize:  1024,
			WriteBufferSize: 1024,
			CheckOrigin:     checkOrigin,
		},
	}
}

// HandleWS upgrades the connection and hands it to the hub. The
// credential is re-validated on every (re)connect attempt.
// GET /ws
func (h *Handler) HandleWS(w http.ResponseWriter, r *http.Request) {
	token := auth.TokenFromRequest(r)
	if token == "" {
		token = r.URL.Query().Get("token")
	}
	if token == "" {
		h.rejectHandshake(w, r, nil)
		return
	}

	claims, err := h.JWT.VerifyToken(token)
	if err != nil {
		h.rejectHandshake(w, r, err)
		return
	}

	ws, err := h.upgrader.Upgrade(w, r, nil)
	if err != nil {
		// Upgrade already wrote the HTTP error.
		h.Log.Debug("live: upgrade failed", zap.Error(err))
		return
	}
	live.NewConn(h.Hub, ws, claims.UserID)
}

// rejectHandshake upgrades just long enough to deliver the error frame
// the client protocol expects, then closes. Clients distinguish a
// credential failure (stop retrying, reauthenticate) from a transport
// failure (retry with backoff) by this frame.
func (h *Handler) rejectHandshake(w http.ResponseWriter, r *http.Request, cause error) {
	reason := "missing credential"
	if cause != nil {
		reason = cause.Error()
	}
	ws, err := h.upgrader.Upgrade(w, r, nil)
	if err != nil {
		return
	}
	defer ws.Close()
	_ = ws.WriteJSON(map[string]any{
		"event":   "error",
		"message": "Authentication error: " + reason,
	})
	_ = ws.WriteMessage(websocket.CloseMessage,
		websocket.FormatCloseMessage(websocket.ClosePolicyViolation, "authentication failed"))
	h.Log.Warn("live: handshake rejected", zap.String("reason", reason))
}
