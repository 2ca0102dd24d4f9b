package ws

import (
	"context"
	"encoding/json"
	"log"
	"net/http"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/gorilla/websocket"

	"voxelgate.io/internal/gate"
	"voxelgate.io/internal/protocol"
)

// VerdictSink receives one audit entry per processed action. Both the
// JSONL logger and the sqlite index satisfy it.
type VerdictSink interface {
	WriteVerdict(gate.AuditEntry) error
}

type Server struct {
	gw    *gate.Gateway
	log   *log.Logger
	sinks []VerdictSink

	upgrader websocket.Upgrader
}

func NewServer(gw *gate.Gateway, logger *log.Logger, sinks ...VerdictSink) *Server {
	s := &Server{
		gw:    gw,
		log:   logger,
		sinks: sinks,
		upgrader: websocket.Upgrader{
			ReadBufferSize:  64 * 1024,
			WriteBufferSize: 64 * 1024,
			CheckOrigin:     func(r *http.Request) bool { return true }, // dev default
		},
	}
	return s
}

func (s *Server) Handler() http.HandlerFunc {
	return func(rw http.ResponseWriter, r *http.Request) {
		conn, err := s.upgrader.Upgrade(rw, r, nil)
		if err != nil {
			return
		}
		defer conn.Close()

		playerID, out := s.handshake(conn)
		if playerID == "" {
			return
		}

		ctx, cancel := context.WithCancel(context.Background())
		defer cancel()

		// Writer goroutine.
		go func() {
			for {
				select {
				case <-ctx.Done():
					return
				case b, ok := <-out:
					if !ok {
						return
					}
					_ = conn.SetWriteDeadline(time.Now().Add(5 * time.Second))
					if err := conn.WriteMessage(websocket.TextMessage, b); err != nil {
						cancel()
						return
					}
				}
			}
		}()

		// Reader loop.
		for {
			_ = conn.SetReadDeadline(time.Now().Add(60 * time.Second))
			_, msg, err := conn.ReadMessage()
			if err != nil {
				cancel()
				break
			}
			base, err := protocol.DecodeBase(msg)
			if err != nil {
				continue
			}
			if base.Type != protocol.TypeAct {
				continue
			}
			var act protocol.ActMsg
			if err := json.Unmarshal(msg, &act); err != nil {
				continue
			}
			if act.ProtocolVersion != protocol.Version {
				continue
			}
			ack := s.ProcessAct(playerID, act)
			if b, err := json.Marshal(ack); err == nil {
				select {
				case out <- b:
				default:
					// Slow consumer; drop the ack rather than block validation.
				}
			}
		}
	}
}

// ProcessAct runs one submission through the gateway and produces its
// ACK. The rate-count snapshot for the context is taken before the
// pre-validation bump so the band check and the breach check agree on
// which submission crosses the threshold.
func (s *Server) ProcessAct(playerID string, act protocol.ActMsg) protocol.AckMsg {
	ack := protocol.AckMsg{
		Type:            protocol.TypeAck,
		ProtocolVersion: protocol.Version,
		AckFor:          act.ID,
	}
	if act.Kind == "" {
		ack.Code = protocol.ErrProtoBadRequest
		ack.Errors = []string{"missing kind"}
		s.audit(playerID, act.Kind, ack)
		return ack
	}
	if len(act.Batch) > 0 && act.Kind != protocol.KindVoxelChange {
		ack.Code = protocol.ErrProtoBadRequest
		ack.Errors = []string{"batch is only supported for voxel_change"}
		s.audit(playerID, act.Kind, ack)
		return ack
	}

	counts := s.gw.RateCounts(playerID)

	first := act.Payload
	if len(act.Batch) > 0 {
		first = act.Batch[0]
	}
	if ok, errMsg := s.gw.PreValidateAction(act.Kind, first, playerID); !ok {
		ack.Errors = []string{errMsg}
		ack.Code = gate.CodeFor(ack.Errors)
		s.audit(playerID, act.Kind, ack)
		return ack
	}

	vctx := &gate.Context{
		PlayerID:   playerID,
		Timestamp:  time.Now(),
		RateCounts: counts,
	}
	var res gate.Result
	if len(act.Batch) > 0 {
		res = s.gw.ValidateVoxelChanges(act.Batch, vctx)
	} else {
		res = s.gw.Validate(act.Kind, act.Payload, vctx)
	}

	ack.Ok = res.Valid
	ack.Errors = res.Errors
	ack.Warnings = res.Warnings
	if !res.Valid {
		ack.Code = gate.CodeFor(res.Errors)
	}
	s.audit(playerID, act.Kind, ack)
	return ack
}

func (s *Server) audit(playerID, kind string, ack protocol.AckMsg) {
	entry := gate.AuditEntry{
		ID:       uuid.NewString(),
		At:       time.Now().UTC(),
		PlayerID: playerID,
		Kind:     kind,
		OK:       ack.Ok,
		Code:     ack.Code,
		Errors:   ack.Errors,
		Warnings: ack.Warnings,
	}
	for _, sink := range s.sinks {
		if err := sink.WriteVerdict(entry); err != nil {
			s.log.Printf("verdict sink: %v", err)
		}
	}
}

func (s *Server) handshake(conn *websocket.Conn) (playerID string, out chan []byte) {
	_ = conn.SetReadDeadline(time.Now().Add(5 * time.Second))
	_, msg, err := conn.ReadMessage()
	if err != nil {
		return "", nil
	}

	base, err := protocol.DecodeBase(msg)
	if err != nil || base.Type != protocol.TypeHello {
		_ = conn.WriteControl(websocket.CloseMessage, websocket.FormatCloseMessage(websocket.ClosePolicyViolation, "expected HELLO"), time.Now().Add(time.Second))
		return "", nil
	}

	var hello protocol.HelloMsg
	if err := json.Unmarshal(msg, &hello); err != nil {
		return "", nil
	}
	if hello.ProtocolVersion != protocol.Version {
		_ = conn.WriteControl(websocket.CloseMessage, websocket.FormatCloseMessage(websocket.ClosePolicyViolation, "bad protocol_version"), time.Now().Add(time.Second))
		return "", nil
	}
	if strings.TrimSpace(hello.PlayerName) == "" {
		hello.PlayerName = "player"
	}

	playerID = "P_" + uuid.NewString()[:8]
	out = make(chan []byte, 16)

	welcome := protocol.WelcomeMsg{
		Type:            protocol.TypeWelcome,
		ProtocolVersion: protocol.Version,
		SessionID:       uuid.NewString(),
		PlayerID:        playerID,
	}
	b, err := json.Marshal(welcome)
	if err != nil {
		return "", nil
	}
	_ = conn.SetWriteDeadline(time.Now().Add(5 * time.Second))
	if err := conn.WriteMessage(websocket.TextMessage, b); err != nil {
		return "", nil
	}

	s.log.Printf("session %s joined as %s (%s)", welcome.SessionID, playerID, hello.PlayerName)
	return playerID, out
}
