// internal/app/features/liveclient/handler_test.go
package liveclient_test

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gorilla/websocket"
	"github.com/loomhub/loomhub/internal/app/features/liveclient"
	"github.com/loomhub/loomhub/internal/app/system/auth"
	"github.com/loomhub/loomhub/internal/app/system/live"
	"github.com/loomhub/loomhub/internal/domain/models"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.uber.org/zap"
)

func newWSServer(t *testing.T) (*httptest.Server, *auth.JWTManager) {
	t.Helper()
	jwt := auth.NewJWTManager("test-secret-0123456789ABCDEF", time.Hour)
	h := liveclient.NewHandler(live.NewHub(zap.NewNop()), jwt, zap.NewNop(),
		func(*http.Request) bool { return true })
	srv := httptest.NewServer(http.HandlerFunc(h.HandleWS))
	t.Cleanup(srv.Close)
	return srv, jwt
}

func dialWS(t *testing.T, srv *httptest.Server, query string) *websocket.Conn {
	t.Helper()
	url := "ws" + strings.TrimPrefix(srv.URL, "http") + "/ws" + query
	ws, _, err := websocket.DefaultDialer.Dial(url, nil)
	if err != nil {
		t.Fatalf("dial: %v", err)
	}
	t.Cleanup(func() { ws.Close() })
	_ = ws.SetReadDeadline(time.Now().Add(2 * time.Second))
	return ws
}

func TestHandshakeRejectsMissingToken(t *testing.T) {
	srv, _ := newWSServer(t)
	ws := dialWS(t, srv, "")

	var frame map[string]any
	if err := ws.ReadJSON(&frame); err != nil {
		t.Fatalf("read error frame: %v", err)
	}
	if frame["event"] != "error" {
		t.Fatalf("event: got %v, want error", frame["event"])
	}
	if frame["message"] != "Authentication error: missing credential" {
		t.Fatalf("message: got %v", frame["message"])
	}

	// The server closes right after the frame.
	_, _, err := ws.ReadMessage()
	if !websocket.IsCloseError(err, websocket.ClosePolicyViolation) {
		t.Fatalf("close: got %v, want policy violation", err)
	}
}

func TestHandshakeRejectsBadToken(t *testing.T) {
	srv, _ := newWSServer(t)
	ws := dialWS(t, srv, "?token=not-a-jwt")

	var frame map[string]any
	if err := ws.ReadJSON(&frame); err != nil {
		t.Fatalf("read error frame: %v", err)
	}
	msg, _ := frame["message"].(string)
	if !strings.HasPrefix(msg, "Authentication error: ") {
		t.Fatalf("message: got %q", msg)
	}
	if msg == "Authentication error: missing credential" {
		t.Fatalf("a supplied token must not report a missing credential")
	}
}

func TestHandshakeAcceptsValidToken(t *testing.T) {
	srv, jwt := newWSServer(t)
	user := models.User{
		ID:       primitive.NewObjectID(),
		FullName: "Tomas Reyes",
		Role:     models.RoleWorker,
	}
	token, err := jwt.GenerateToken(&user)
	if err != nil {
		t.Fatalf("generate token: %v", err)
	}
	ws := dialWS(t, srv, "?token="+token)

	if err := ws.WriteJSON(map[string]any{
		"action": "join_room", "room": user.ID.Hex(), "ack_id": "1",
	}); err != nil {
		t.Fatalf("send join: %v", err)
	}
	var reply map[string]any
	if err := ws.ReadJSON(&reply); err != nil {
		t.Fatalf("read join ack: %v", err)
	}
	if reply["event"] != "join_room" || reply["success"] != true {
		t.Fatalf("join ack: %v", reply)
	}
}
