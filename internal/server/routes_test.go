package server

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gorilla/websocket"

	"github.com/gravitas-games/domino/internal/hex"
	"github.com/gravitas-games/domino/internal/network"
	"github.com/gravitas-games/domino/internal/storage"
)

func newTestServer(t *testing.T) (*Server, *httptest.Server) {
	t.Helper()
	srv, err := newWithStore(testConfig(t, ""), storage.NewFS(t.TempDir()))
	if err != nil {
		t.Fatalf("server error: %v", err)
	}
	ts := httptest.NewServer(srv.Routes())
	t.Cleanup(func() {
		srv.cancel()
		ts.Close()
	})
	return srv, ts
}

func doRequest(t *testing.T, method, url, body string) (*http.Response, map[string]interface{}) {
	t.Helper()
	req, err := http.NewRequest(method, url, strings.NewReader(body))
	if err != nil {
		t.Fatalf("request error: %v", err)
	}
	resp, err := http.DefaultClient.Do(req)
	if err != nil {
		t.Fatalf("%s %s failed: %v", method, url, err)
	}
	defer resp.Body.Close()
	var out map[string]interface{}
	json.NewDecoder(resp.Body).Decode(&out)
	return resp, out
}

func TestHealth(t *testing.T) {
	_, ts := newTestServer(t)
	resp, body := doRequest(t, http.MethodGet, ts.URL+"/health", "")
	if resp.StatusCode != http.StatusOK || body["status"] != "ok" || body["storage"] != "fs" {
		t.Fatalf("unexpected health response %d %v", resp.StatusCode, body)
	}
}

func TestLayoutEndpoints(t *testing.T) {
	srv, ts := newTestServer(t)
	cell := hex.Axial{Q: 3, R: -2}
	p := srv.layout.CellToPixel(cell)

	resp, body := doRequest(t, http.MethodGet, ts.URL+"/api/layout/pixel?q=3&r=-2", "")
	if resp.StatusCode != http.StatusOK || body["x"] != p.X || body["y"] != p.Y {
		t.Fatalf("unexpected pixel response %d %v, want %+v", resp.StatusCode, body, p)
	}

	url := ts.URL + "/api/layout/cell?x=" + jsonNumber(p.X) + "&y=" + jsonNumber(p.Y)
	resp, body = doRequest(t, http.MethodGet, url, "")
	got, _ := body["cell"].([]interface{})
	if resp.StatusCode != http.StatusOK || len(got) != 2 || got[0] != float64(3) || got[1] != float64(-2) {
		t.Fatalf("unexpected cell response %d %v", resp.StatusCode, body)
	}

	resp, _ = doRequest(t, http.MethodGet, ts.URL+"/api/layout/cell?x=a&y=1", "")
	if resp.StatusCode != http.StatusBadRequest {
		t.Fatalf("expected 400 for bad pixel, got %d", resp.StatusCode)
	}
}

func jsonNumber(f float64) string {
	b, _ := json.Marshal(f)
	return string(b)
}

func TestBoardsAPI(t *testing.T) {
	_, ts := newTestServer(t)
	doc := `{"cards":[{"id":"a","text":"A","type":"plain"}],"placements":[{"cell":[1,1],"card":"a"}]}`

	resp, body := doRequest(t, http.MethodPut, ts.URL+"/api/boards/demo", doc)
	if resp.StatusCode != http.StatusOK || body["cards"] != float64(1) {
		t.Fatalf("unexpected put response %d %v", resp.StatusCode, body)
	}

	resp, body = doRequest(t, http.MethodGet, ts.URL+"/api/boards", "")
	if ids, _ := body["boards"].([]interface{}); resp.StatusCode != http.StatusOK || len(ids) != 1 || ids[0] != "demo" {
		t.Fatalf("unexpected list response %d %v", resp.StatusCode, body)
	}

	resp, body = doRequest(t, http.MethodGet, ts.URL+"/api/boards/demo", "")
	if placements, _ := body["placements"].([]interface{}); resp.StatusCode != http.StatusOK || len(placements) != 1 {
		t.Fatalf("unexpected get response %d %v", resp.StatusCode, body)
	}

	dup := `{"cards":[{"id":"a"},{"id":"b"}],"placements":[{"cell":[0,0],"card":"a"},{"cell":[0,0],"card":"b"}]}`
	if resp, _ = doRequest(t, http.MethodPut, ts.URL+"/api/boards/bad", dup); resp.StatusCode != http.StatusBadRequest {
		t.Fatalf("expected 400 for duplicate cells, got %d", resp.StatusCode)
	}
	if resp, _ = doRequest(t, http.MethodPut, ts.URL+"/api/boards/a.b", doc); resp.StatusCode != http.StatusBadRequest {
		t.Fatalf("expected 400 for invalid id, got %d", resp.StatusCode)
	}

	if resp, _ = doRequest(t, http.MethodDelete, ts.URL+"/api/boards/demo", ""); resp.StatusCode != http.StatusNoContent {
		t.Fatalf("expected 204 on delete, got %d", resp.StatusCode)
	}
	if resp, _ = doRequest(t, http.MethodGet, ts.URL+"/api/boards/demo", ""); resp.StatusCode != http.StatusNotFound {
		t.Fatalf("expected 404 after delete, got %d", resp.StatusCode)
	}
}

func TestWebSocketSession(t *testing.T) {
	_, ts := newTestServer(t)
	url := "ws" + strings.TrimPrefix(ts.URL, "http") + "/ws"

	ws, _, err := websocket.DefaultDialer.Dial(url, nil)
	if err != nil {
		t.Fatalf("dial error: %v", err)
	}
	defer ws.Close()
	ws.SetReadDeadline(time.Now().Add(5 * time.Second))

	var welcome struct {
		Type    string                 `json:"type"`
		Payload network.WelcomePayload `json:"payload"`
	}
	if err := ws.ReadJSON(&welcome); err != nil {
		t.Fatalf("read welcome: %v", err)
	}
	if welcome.Type != network.MsgTypeWelcome || welcome.Payload.SessionID == "" {
		t.Fatalf("unexpected welcome %+v", welcome)
	}

	place := map[string]interface{}{
		"type":    network.MsgTypePlace,
		"payload": map[string]interface{}{"cell": []int{0, 1}, "content": map[string]string{"text": "hello"}},
	}
	if err := ws.WriteJSON(place); err != nil {
		t.Fatalf("write place: %v", err)
	}

	var seen []string
	for len(seen) < 2 {
		var msg struct {
			Type    string          `json:"type"`
			Payload json.RawMessage `json:"payload"`
		}
		if err := ws.ReadJSON(&msg); err != nil {
			t.Fatalf("read: %v", err)
		}
		seen = append(seen, msg.Type)
	}
	if seen[0] != network.MsgTypeEvent || seen[1] != network.MsgTypeResult {
		t.Fatalf("expected event then result, got %v", seen)
	}
}

func TestExtractToken(t *testing.T) {
	r := httptest.NewRequest(http.MethodGet, "/ws", nil)
	r.Header.Set("Sec-WebSocket-Protocol", "access_token, abc")
	if got := extractTokenFromHeader(r); got != "abc" {
		t.Fatalf("subprotocol token: got %q", got)
	}

	r = httptest.NewRequest(http.MethodGet, "/ws", nil)
	r.Header.Set("Authorization", "Bearer xyz")
	if got := extractTokenFromHeader(r); got != "xyz" {
		t.Fatalf("bearer token: got %q", got)
	}

	r = httptest.NewRequest(http.MethodGet, "/ws?token=q1", nil)
	if got := extractTokenFromHeader(r); got != "q1" {
		t.Fatalf("query token: got %q", got)
	}
}

func TestAnonymousWhenAuthDisabled(t *testing.T) {
	srv, _ := newTestServer(t)
	editor, err := srv.authenticate(httptest.NewRequest(http.MethodGet, "/ws", nil).WithContext(context.Background()))
	if err != nil || !editor.CanEdit() || editor.AuthMethod != "anonymous" {
		t.Fatalf("expected anonymous editor, got %+v err=%v", editor, err)
	}
}
