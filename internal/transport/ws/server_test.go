package ws

import (
	"encoding/json"
	"io"
	"log"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/gorilla/websocket"

	"voxelgate.io/internal/gate"
	"voxelgate.io/internal/gate/rates"
	"voxelgate.io/internal/protocol"
	"voxelgate.io/internal/tuning"
)

type captureSink struct {
	mu      sync.Mutex
	entries []gate.AuditEntry
}

func (c *captureSink) WriteVerdict(e gate.AuditEntry) error {
	c.mu.Lock()
	c.entries = append(c.entries, e)
	c.mu.Unlock()
	return nil
}

func (c *captureSink) all() []gate.AuditEntry {
	c.mu.Lock()
	defer c.mu.Unlock()
	return append([]gate.AuditEntry(nil), c.entries...)
}

func newTestServer(t *testing.T, sinks ...VerdictSink) *Server {
	t.Helper()
	tune := tuning.Defaults()
	gw := gate.New(tune, rates.NewLimiter(time.Minute))
	return NewServer(gw, log.New(io.Discard, "", 0), sinks...)
}

func rawJSON(t *testing.T, v any) json.RawMessage {
	t.Helper()
	b, err := json.Marshal(v)
	if err != nil {
		t.Fatalf("marshal: %v", err)
	}
	return b
}

func TestProcessAct_ValidChat(t *testing.T) {
	sink := &captureSink{}
	s := newTestServer(t, sink)

	ack := s.ProcessAct("p1", protocol.ActMsg{
		Type:            protocol.TypeAct,
		ProtocolVersion: protocol.Version,
		ID:              "A1",
		Kind:            protocol.KindChatMessage,
		Payload:         rawJSON(t, map[string]any{"content": "hello", "channel": "global"}),
	})
	if !ack.Ok || ack.AckFor != "A1" || ack.Code != "" {
		t.Fatalf("ack=%+v", ack)
	}
	entries := sink.all()
	if len(entries) != 1 || !entries[0].OK || entries[0].PlayerID != "p1" {
		t.Fatalf("audit=%+v", entries)
	}
	if entries[0].ID == "" {
		t.Fatalf("audit entry missing id")
	}
}

func TestProcessAct_RejectionCarriesCode(t *testing.T) {
	s := newTestServer(t)

	ack := s.ProcessAct("p1", protocol.ActMsg{
		ID:   "A2",
		Kind: protocol.KindChatMessage,
		Payload: rawJSON(t, map[string]any{
			"content": strings.Repeat("a", 600),
		}),
	})
	if ack.Ok {
		t.Fatalf("want rejection, got %+v", ack)
	}
	if ack.Code != protocol.ErrRange {
		t.Fatalf("code=%q want %q", ack.Code, protocol.ErrRange)
	}
}

func TestProcessAct_MissingKind(t *testing.T) {
	s := newTestServer(t)
	ack := s.ProcessAct("p1", protocol.ActMsg{ID: "A3"})
	if ack.Ok || ack.Code != protocol.ErrProtoBadRequest {
		t.Fatalf("ack=%+v", ack)
	}
}

func TestProcessAct_UnknownKindFailsOpen(t *testing.T) {
	s := newTestServer(t)
	ack := s.ProcessAct("p1", protocol.ActMsg{ID: "A4", Kind: "future_kind"})
	if !ack.Ok || len(ack.Errors) != 0 {
		t.Fatalf("ack=%+v", ack)
	}
}

func TestProcessAct_VoxelBatchIndexesFailures(t *testing.T) {
	s := newTestServer(t)

	good := map[string]any{
		"position":   map[string]any{"x": 1, "y": 2, "z": 3},
		"oldBlockId": 0, "newBlockId": 1,
		"timestamp": 1, "playerId": "p1",
	}
	bad := map[string]any{
		"position":   map[string]any{"x": 99999, "y": 2, "z": 3},
		"oldBlockId": 0, "newBlockId": 1,
		"timestamp": 1, "playerId": "p1",
	}
	ack := s.ProcessAct("p1", protocol.ActMsg{
		ID:    "A5",
		Kind:  protocol.KindVoxelChange,
		Batch: []json.RawMessage{rawJSON(t, good), rawJSON(t, bad)},
	})
	if ack.Ok {
		t.Fatalf("want rejection")
	}
	found := false
	for _, e := range ack.Errors {
		if strings.HasPrefix(e, "Change 1: ") && strings.Contains(e, "outside valid range") {
			found = true
		}
		if strings.HasPrefix(e, "Change 0: ") {
			t.Fatalf("clean element flagged: %v", ack.Errors)
		}
	}
	if !found {
		t.Fatalf("missing indexed range error: %v", ack.Errors)
	}
}

func TestProcessAct_BatchOnlyForVoxelChange(t *testing.T) {
	s := newTestServer(t)
	ack := s.ProcessAct("p1", protocol.ActMsg{
		ID:    "A6",
		Kind:  protocol.KindChatMessage,
		Batch: []json.RawMessage{rawJSON(t, map[string]any{"content": "hi"})},
	})
	if ack.Ok || ack.Code != protocol.ErrProtoBadRequest {
		t.Fatalf("ack=%+v", ack)
	}
}

func TestProcessAct_RateLimitBreach(t *testing.T) {
	tune := tuning.Defaults()
	tune.RateLimits.ChatMessageWarn = 2
	tune.RateLimits.ChatMessageMax = 3
	gw := gate.New(tune, rates.NewLimiter(time.Minute))
	s := NewServer(gw, log.New(io.Discard, "", 0))

	payload := rawJSON(t, map[string]any{"content": "hi"})
	var last protocol.AckMsg
	for i := 0; i < 4; i++ {
		last = s.ProcessAct("p1", protocol.ActMsg{ID: "A", Kind: protocol.KindChatMessage, Payload: payload})
	}
	if last.Ok || last.Code != protocol.ErrRateLimit {
		t.Fatalf("fourth ack=%+v", last)
	}
}

func TestWS_HelloActAckRoundTrip(t *testing.T) {
	s := newTestServer(t)
	srv := httptest.NewServer(s.Handler())
	defer srv.Close()

	url := "ws" + strings.TrimPrefix(srv.URL, "http")
	conn, _, err := websocket.DefaultDialer.Dial(url, nil)
	if err != nil {
		t.Fatalf("dial: %v", err)
	}
	defer conn.Close()

	hello := protocol.HelloMsg{
		Type:            protocol.TypeHello,
		ProtocolVersion: protocol.Version,
		PlayerName:      "tester",
	}
	if err := conn.WriteJSON(hello); err != nil {
		t.Fatalf("write hello: %v", err)
	}

	var welcome protocol.WelcomeMsg
	if err := conn.ReadJSON(&welcome); err != nil {
		t.Fatalf("read welcome: %v", err)
	}
	if welcome.Type != protocol.TypeWelcome || welcome.PlayerID == "" {
		t.Fatalf("welcome=%+v", welcome)
	}

	act := protocol.ActMsg{
		Type:            protocol.TypeAct,
		ProtocolVersion: protocol.Version,
		ID:              "A1",
		Kind:            protocol.KindChatMessage,
		Payload:         rawJSON(t, map[string]any{"content": "hello", "channel": "global"}),
	}
	if err := conn.WriteJSON(act); err != nil {
		t.Fatalf("write act: %v", err)
	}

	var ack protocol.AckMsg
	if err := conn.ReadJSON(&ack); err != nil {
		t.Fatalf("read ack: %v", err)
	}
	if !ack.Ok || ack.AckFor != "A1" {
		t.Fatalf("ack=%+v", ack)
	}
}

func TestWS_RejectsWrongFirstMessage(t *testing.T) {
	s := newTestServer(t)
	srv := httptest.NewServer(s.Handler())
	defer srv.Close()

	url := "ws" + strings.TrimPrefix(srv.URL, "http")
	conn, _, err := websocket.DefaultDialer.Dial(url, nil)
	if err != nil {
		t.Fatalf("dial: %v", err)
	}
	defer conn.Close()

	if err := conn.WriteJSON(protocol.ActMsg{Type: protocol.TypeAct, ProtocolVersion: protocol.Version}); err != nil {
		t.Fatalf("write: %v", err)
	}
	_ = conn.SetReadDeadline(time.Now().Add(2 * time.Second))
	if _, _, err := conn.ReadMessage(); err == nil {
		t.Fatalf("expected close after non-HELLO first message")
	}
}
