package ws

import (
	"encoding/json"
	"log"
	"net/http"
	"sync"
	"time"

	"github.com/gorilla/websocket"

	"starlanes/internal/protocol"
	"starlanes/internal/sim/catalogs"
	"starlanes/internal/sim/session"
)

// Server exposes one game session over a websocket. Intents are applied
// under a single lock, so player actions are processed to completion one at
// a time no matter how many display clients are attached.
type Server struct {
	mu      sync.Mutex
	session *session.Session
	cats    *catalogs.Catalogs
	log     *log.Logger

	upgrader websocket.Upgrader
}

func NewServer(sess *session.Session, cats *catalogs.Catalogs, logger *log.Logger) *Server {
	return &Server{
		session: sess,
		cats:    cats,
		log:     logger,
		upgrader: websocket.Upgrader{
			ReadBufferSize:  64 * 1024,
			WriteBufferSize: 64 * 1024,
			CheckOrigin:     func(r *http.Request) bool { return true }, // dev default
		},
	}
}

func (s *Server) Handler() http.HandlerFunc {
	return func(rw http.ResponseWriter, r *http.Request) {
		conn, err := s.upgrader.Upgrade(rw, r, nil)
		if err != nil {
			return
		}
		defer conn.Close()

		if !s.handshake(conn) {
			return
		}

		for {
			_ = conn.SetReadDeadline(time.Now().Add(5 * time.Minute))
			_, msg, err := conn.ReadMessage()
			if err != nil {
				return
			}
			base, err := protocol.DecodeBase(msg)
			if err != nil || base.Type != protocol.TypeIntent {
				continue
			}
			var intent protocol.IntentMsg
			if err := json.Unmarshal(msg, &intent); err != nil {
				continue
			}
			if intent.ProtocolVersion != protocol.Version {
				s.writeAck(conn, intent.IntentID, false, protocol.ErrProtoBadRequest, "bad protocol_version")
				continue
			}
			s.dispatch(conn, intent)
		}
	}
}

func (s *Server) handshake(conn *websocket.Conn) bool {
	_ = conn.SetReadDeadline(time.Now().Add(5 * time.Second))
	_, msg, err := conn.ReadMessage()
	if err != nil {
		return false
	}
	base, err := protocol.DecodeBase(msg)
	if err != nil || base.Type != protocol.TypeHello {
		_ = conn.WriteControl(websocket.CloseMessage, websocket.FormatCloseMessage(websocket.ClosePolicyViolation, "expected HELLO"), time.Now().Add(time.Second))
		return false
	}
	var hello protocol.HelloMsg
	if err := json.Unmarshal(msg, &hello); err != nil {
		return false
	}
	if hello.ProtocolVersion != protocol.Version {
		_ = conn.WriteControl(websocket.CloseMessage, websocket.FormatCloseMessage(websocket.ClosePolicyViolation, "bad protocol_version"), time.Now().Add(time.Second))
		return false
	}
	if hello.PlayerName == "" {
		hello.PlayerName = "captain"
	}

	welcome := protocol.WelcomeMsg{
		Type:            protocol.TypeWelcome,
		ProtocolVersion: protocol.Version,
		PlayerName:      hello.PlayerName,
		Catalogs: protocol.CatalogDigests{
			ItemsDigest:        s.cats.Items.Digest,
			CategoriesDigest:   s.cats.Categories.Digest,
			SystemsDigest:      s.cats.Systems.Digest,
			ConnectionsDigest:  s.cats.Galaxy.Digest,
			CorrelationsDigest: s.cats.Correlations.Digest,
			EventsDigest:       s.cats.Events.Digest,
			ProductionDigest:   s.cats.Production.Digest,
			DemandDigest:       s.cats.Demand.Digest,
		},
	}
	s.mu.Lock()
	if s.session.Started() {
		st := s.session.Status()
		welcome.Status = &st
	}
	s.mu.Unlock()

	return s.writeJSON(conn, welcome) == nil
}

func (s *Server) dispatch(conn *websocket.Conn, intent protocol.IntentMsg) {
	s.mu.Lock()
	defer s.mu.Unlock()

	switch intent.Action {
	case "NEW_GAME":
		cfg := protocol.NewGameConfig{}
		if intent.Config != nil {
			cfg = *intent.Config
		}
		if err := s.session.NewGame(cfg); err != nil {
			s.writeAck(conn, intent.IntentID, false, session.CodeOf(err), err.Error())
			return
		}
		s.writeAck(conn, intent.IntentID, true, "", "")
		s.writeStatus(conn)

	case "TRAVEL":
		flash, err := s.session.Travel(intent.Destination)
		if err != nil {
			s.writeAck(conn, intent.IntentID, false, session.CodeOf(err), err.Error())
			return
		}
		s.writeAck(conn, intent.IntentID, true, "", "")
		if flash != nil {
			_ = s.writeJSON(conn, protocol.NewsMsg{
				Type:            protocol.TypeNews,
				ProtocolVersion: protocol.Version,
				Kind:            string(flash.Kind),
				EventID:         flash.EventID,
				Headline:        flash.Headline,
				Category:        flash.Category,
				Impact:          string(flash.Impact),
				Remaining:       flash.Remaining,
			})
		}
		s.writeStatus(conn)

	case "BUY":
		if _, err := s.session.Buy(intent.ItemID, intent.Quantity); err != nil {
			s.writeAck(conn, intent.IntentID, false, session.CodeOf(err), err.Error())
			return
		}
		s.writeAck(conn, intent.IntentID, true, "", "")
		s.writeStatus(conn)

	case "SELL":
		if _, err := s.session.Sell(intent.ItemID, intent.Quantity); err != nil {
			s.writeAck(conn, intent.IntentID, false, session.CodeOf(err), err.Error())
			return
		}
		s.writeAck(conn, intent.IntentID, true, "", "")
		s.writeStatus(conn)

	case "MARKET":
		msg, err := s.session.MarketListing()
		if err != nil {
			s.writeAck(conn, intent.IntentID, false, session.CodeOf(err), err.Error())
			return
		}
		_ = s.writeJSON(conn, msg)

	case "CARGO":
		msg, err := s.session.CargoListing()
		if err != nil {
			s.writeAck(conn, intent.IntentID, false, session.CodeOf(err), err.Error())
			return
		}
		_ = s.writeJSON(conn, msg)

	case "STATUS":
		if !s.session.Started() {
			s.writeAck(conn, intent.IntentID, false, protocol.ErrNoSession, "no game in progress")
			return
		}
		s.writeStatus(conn)

	default:
		s.writeAck(conn, intent.IntentID, false, protocol.ErrBadRequest, "unknown action "+intent.Action)
	}
}

func (s *Server) writeStatus(conn *websocket.Conn) {
	st := s.session.Status()
	st.Type = protocol.TypeStatus
	st.ProtocolVersion = protocol.Version
	_ = s.writeJSON(conn, st)
}

func (s *Server) writeAck(conn *websocket.Conn, intentID string, accepted bool, code, msg string) {
	_ = s.writeJSON(conn, protocol.AckMsg{
		Type:            protocol.TypeAck,
		ProtocolVersion: protocol.Version,
		AckFor:          intentID,
		Accepted:        accepted,
		Code:            code,
		Message:         msg,
	})
}

func (s *Server) writeJSON(conn *websocket.Conn, v any) error {
	b, err := json.Marshal(v)
	if err != nil {
		return err
	}
	_ = conn.SetWriteDeadline(time.Now().Add(5 * time.Second))
	return conn.WriteMessage(websocket.TextMessage, b)
}
