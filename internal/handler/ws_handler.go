package handler

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"sync"
	"time"

	"automarket/chat/internal/chat"
	"automarket/chat/internal/hub"

	"github.com/gin-gonic/gin"
	"github.com/gorilla/websocket"
)

var wsUpgrader = websocket.Upgrader{
	ReadBufferSize:  1024,
	WriteBufferSize: 1024,
	// Origins are enforced by the CORS layer and the token requirement.
	CheckOrigin: func(r *http.Request) bool { return true },
}

type inboundFrame struct {
	Type   string `json:"type"`
	RoomID uint   `json:"room_id,omitempty"`
}

type ackFrame struct {
	Type   string `json:"type"`
	RoomID uint   `json:"room_id,omitempty"`
	UserID uint   `json:"user_id,omitempty"`
}

type errorFrame struct {
	Type   string `json:"type"`
	Code   string `json:"code"`
	Error  string `json:"error"`
	RoomID uint   `json:"room_id,omitempty"`
}

// wsSession is one websocket and the room subscriptions it holds.
type wsSession struct {
	h         *Handler
	conn      *wsConn
	principal chat.Principal

	mu   sync.Mutex
	subs map[uint]*hub.Subscription
}

// Websocket godoc
// @Summary      Realtime websocket
// @Description  Upgrades to a websocket. Send {"type":"join","room_id":N} to receive a room's events and {"type":"leave","room_id":N} to stop.
// @Tags         events
// @Security     BearerAuth
// @Param        token  query  string  false  "Bearer token for clients that cannot set headers"
// @Success      101
// @Failure      401  {object}  ErrorResponse
// @Router       /ws [get]
func (h *Handler) Websocket(c *gin.Context) {
	p := principal(c)
	ws, err := wsUpgrader.Upgrade(c.Writer, c.Request, nil)
	if err != nil {
		// Upgrade already wrote the response.
		slog.Debug("handler: websocket upgrade failed", "error", err)
		return
	}

	s := &wsSession{
		h:         h,
		conn:      newWSConn(p.UserID, ws),
		principal: p,
		subs:      make(map[uint]*hub.Subscription),
	}
	go s.conn.writeLoop()
	defer func() {
		s.leaveAll()
		s.conn.Close(websocket.CloseNormalClosure, "session closed")
	}()

	ws.SetReadLimit(64 << 10)
	_ = ws.SetReadDeadline(time.Now().Add(readWait))
	ws.SetPongHandler(func(string) error {
		return ws.SetReadDeadline(time.Now().Add(readWait))
	})

	s.reply(ackFrame{Type: "connected", UserID: p.UserID})

	ctx := c.Request.Context()
	for {
		_, data, err := ws.ReadMessage()
		if err != nil {
			if !websocket.IsCloseError(err, websocket.CloseNormalClosure, websocket.CloseGoingAway, websocket.CloseNoStatusReceived) &&
				!errors.Is(err, websocket.ErrCloseSent) {
				slog.Debug("handler: websocket read", "user_id", p.UserID, "error", err)
			}
			return
		}
		_ = ws.SetReadDeadline(time.Now().Add(readWait))

		var frame inboundFrame
		if err := json.Unmarshal(data, &frame); err != nil {
			s.replyError("bad_request", "invalid payload", 0)
			continue
		}

		switch frame.Type {
		case "join":
			s.join(ctx, frame.RoomID)
		case "leave":
			s.leave(frame.RoomID)
		case "ping":
			s.reply(ackFrame{Type: "pong"})
		default:
			s.replyError("unsupported_type", "unknown frame type", frame.RoomID)
		}
	}
}

func (s *wsSession) join(ctx context.Context, roomID uint) {
	if roomID == 0 {
		s.replyError("bad_request", "room_id is required", 0)
		return
	}
	s.mu.Lock()
	_, joined := s.subs[roomID]
	s.mu.Unlock()
	if joined {
		s.reply(ackFrame{Type: "joined", RoomID: roomID})
		return
	}

	ctx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()
	sub, err := s.h.chat.Subscribe(ctx, s.principal, roomID)
	if err != nil {
		s.replyChatError(err, roomID)
		return
	}

	s.mu.Lock()
	s.subs[roomID] = sub
	s.mu.Unlock()
	s.reply(ackFrame{Type: "joined", RoomID: roomID})

	go s.pump(sub)
}

// pump forwards a subscription's events until it ends, either by leave or by revocation.
func (s *wsSession) pump(sub *hub.Subscription) {
	for {
		select {
		case data, ok := <-sub.C:
			if !ok {
				s.mu.Lock()
				if s.subs[sub.RoomID] == sub {
					delete(s.subs, sub.RoomID)
				}
				s.mu.Unlock()
				return
			}
			if err := s.conn.Send(data); err != nil {
				return
			}
		case <-s.conn.Done():
			return
		}
	}
}

func (s *wsSession) leave(roomID uint) {
	s.mu.Lock()
	sub, ok := s.subs[roomID]
	delete(s.subs, roomID)
	s.mu.Unlock()
	if ok {
		s.h.chat.Unsubscribe(sub)
	}
	s.reply(ackFrame{Type: "left", RoomID: roomID})
}

func (s *wsSession) leaveAll() {
	s.mu.Lock()
	subs := s.subs
	s.subs = make(map[uint]*hub.Subscription)
	s.mu.Unlock()
	for _, sub := range subs {
		s.h.chat.Unsubscribe(sub)
	}
}

func (s *wsSession) reply(frame any) {
	if payload, err := json.Marshal(frame); err == nil {
		_ = s.conn.Send(payload)
	}
}

func (s *wsSession) replyError(code, message string, roomID uint) {
	s.reply(errorFrame{Type: "error", Code: code, Error: message, RoomID: roomID})
}

func (s *wsSession) replyChatError(err error, roomID uint) {
	switch {
	case errors.Is(err, chat.ErrNotFound):
		s.replyError("not_found", "conversation not found", roomID)
	case errors.Is(err, chat.ErrUnauthorized):
		s.replyError("unauthorized", "you are not part of this conversation", roomID)
	default:
		slog.Error("handler: websocket join", "room_id", roomID, "error", err)
		s.replyError("internal_error", "unexpected error", roomID)
	}
}
