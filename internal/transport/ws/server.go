package ws

import (
	"context"
	"encoding/hex"
	"encoding/json"
	"log"
	"net/http"
	"time"

	"github.com/google/uuid"
	"github.com/gorilla/websocket"

	"terrastream.world/internal/protocol"
	"terrastream.world/internal/sim/geom"
	"terrastream.world/internal/sim/world"
)

type Server struct {
	world *world.World
	log   *log.Logger

	upgrader websocket.Upgrader
}

func NewServer(w *world.World, logger *log.Logger) *Server {
	s := &Server{
		world: w,
		log:   logger,
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

		sessionID, observer, events := s.handshake(conn)
		if sessionID == "" {
			return
		}

		ctx, cancel := context.WithCancel(r.Context())
		defer cancel()

		// Direct replies (STATS) share the writer with the event stream so
		// the connection only ever has one writing goroutine.
		out := make(chan any, 8)

		// Writer goroutine: visibility events out, oldest first. The world
		// drops observers whose channel stops draining, so a dead writer
		// cannot back-pressure the tick loop.
		go func() {
			for {
				select {
				case <-ctx.Done():
					return
				case ev, ok := <-events:
					if !ok {
						return
					}
					if err := writeJSON(conn, s.eventMessage(ev)); err != nil {
						cancel()
						return
					}
				case m := <-out:
					if err := writeJSON(conn, m); err != nil {
						cancel()
						return
					}
				}
			}
		}()

		// Reader loop: viewer positions, discovery and stats requests in.
		for {
			_ = conn.SetReadDeadline(time.Now().Add(60 * time.Second))
			_, msg, err := conn.ReadMessage()
			if err != nil {
				cancel()
				break
			}
			s.route(msg, observer, out)
		}

		// Cleanup.
		s.world.ObserverLeave() <- sessionID
	}
}

// route applies one client message. Observer sessions are render-only:
// their POS and DISCOVER messages are dropped. Reports whether the
// message was applied.
func (s *Server) route(msg []byte, observer bool, out chan<- any) bool {
	base, err := protocol.DecodeBase(msg)
	if err != nil || base.ProtocolVersion != protocol.Version {
		return false
	}
	switch base.Type {
	case protocol.TypePos:
		if observer || protocol.ValidatePos(msg) != nil {
			return false
		}
		var pos protocol.PosMsg
		if json.Unmarshal(msg, &pos) != nil {
			return false
		}
		s.world.PosInbox() <- geom.Vec2{X: pos.Pos[0], Y: pos.Pos[1]}
		return true
	case protocol.TypeDiscover:
		if observer || protocol.ValidateDiscover(msg) != nil {
			return false
		}
		var disc protocol.DiscoverMsg
		if json.Unmarshal(msg, &disc) != nil {
			return false
		}
		s.world.DiscoverInbox() <- world.Discover{
			Pos:    geom.Vec2{X: disc.Pos[0], Y: disc.Pos[1]},
			Radius: disc.Radius,
		}
		return true
	case protocol.TypeStats:
		m := s.world.Metrics()
		reply := protocol.StatsMsg{
			Type:            protocol.TypeStats,
			ProtocolVersion: protocol.Version,
			Tick:            m.Tick,
			Chunks:          int(m.Chunks),
			Visible:         int(m.Visible),
		}
		select {
		case out <- reply:
			return true
		default:
			return false
		}
	}
	return false
}

func (s *Server) handshake(conn *websocket.Conn) (sessionID string, observer bool, events chan world.Event) {
	_ = conn.SetReadDeadline(time.Now().Add(5 * time.Second))
	_, msg, err := conn.ReadMessage()
	if err != nil {
		return "", false, nil
	}

	base, err := protocol.DecodeBase(msg)
	if err != nil || base.Type != protocol.TypeHello {
		_ = writeJSON(conn, badRequest("expected HELLO"))
		closePolicy(conn, "expected HELLO")
		return "", false, nil
	}
	if err := protocol.ValidateHello(msg); err != nil {
		s.log.Printf("rejected HELLO: %v", err)
		_ = writeJSON(conn, badRequest("bad HELLO"))
		closePolicy(conn, "bad HELLO")
		return "", false, nil
	}
	var hello protocol.HelloMsg
	if err := json.Unmarshal(msg, &hello); err != nil {
		return "", false, nil
	}
	if hello.ProtocolVersion != protocol.Version {
		_ = writeJSON(conn, protocol.ErrorMsg{
			Type:            protocol.TypeError,
			ProtocolVersion: protocol.Version,
			Code:            protocol.ErrVersionMismatch,
			Message:         "server speaks " + protocol.Version,
		})
		closePolicy(conn, "bad protocol_version")
		return "", false, nil
	}

	sessionID = uuid.NewString()
	cfg := s.world.Config()

	welcome := protocol.WelcomeMsg{
		Type:            protocol.TypeWelcome,
		ProtocolVersion: protocol.Version,
		SessionID:       sessionID,
		WorldID:         cfg.ID,
		WorldParams: protocol.WorldParams{
			TickRateHz:  cfg.TickRateHz,
			ChunkSize:   [2]int{cfg.Grid.ChunkSize.X, cfg.Grid.ChunkSize.Y},
			TileSize:    [2]float64{cfg.Grid.TileSize.X, cfg.Grid.TileSize.Y},
			SpawnRadius: cfg.SpawnRadius,
			LoadRadius:  cfg.LoadRadius,
			Seed:        cfg.Seed,
		},
	}
	if err := writeJSON(conn, welcome); err != nil {
		return "", false, nil
	}

	// The join replays the currently visible set, so the buffer must
	// absorb a full load square plus churn.
	events = make(chan world.Event, 256)
	s.world.ObserverJoin() <- world.ObserverJoin{ID: sessionID, Out: events}

	s.log.Printf("session %s joined (%s)", sessionID, hello.ClientName)
	return sessionID, hello.Observer, events
}

func badRequest(reason string) protocol.ErrorMsg {
	return protocol.ErrorMsg{
		Type:            protocol.TypeError,
		ProtocolVersion: protocol.Version,
		Code:            protocol.ErrProtoBadRequest,
		Message:         reason,
	}
}

func (s *Server) eventMessage(ev world.Event) any {
	tick := s.world.CurrentTick()
	switch ev.Kind {
	case world.EventChunkShow:
		return protocol.ChunkShowMsg{
			Type:            protocol.TypeChunkShow,
			ProtocolVersion: protocol.Version,
			Tick:            tick,
			Coord:           [2]int{ev.Coord.X, ev.Coord.Y},
			Encoding:        protocol.EncodingRLEZstd,
			Tiles:           protocol.EncodeTiles(ev.Tiles),
			Resources:       protocol.EncodeResources(ev.Resources),
			TileDigest:      hex.EncodeToString(ev.TileDigest[:]),
			ResourceDigest:  hex.EncodeToString(ev.ResourceDigest[:]),
		}
	default:
		return protocol.ChunkHideMsg{
			Type:            protocol.TypeChunkHide,
			ProtocolVersion: protocol.Version,
			Tick:            tick,
			Coord:           [2]int{ev.Coord.X, ev.Coord.Y},
		}
	}
}

func closePolicy(conn *websocket.Conn, reason string) {
	_ = conn.WriteControl(websocket.CloseMessage,
		websocket.FormatCloseMessage(websocket.ClosePolicyViolation, reason),
		time.Now().Add(time.Second))
}

func writeJSON(conn *websocket.Conn, v any) error {
	b, err := json.Marshal(v)
	if err != nil {
		return err
	}
	_ = conn.SetWriteDeadline(time.Now().Add(5 * time.Second))
	return conn.WriteMessage(websocket.TextMessage, b)
}
