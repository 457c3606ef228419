package quiz

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"time"

	"github.com/gorilla/websocket"

	"github.com/zhouzirui/path-finder/backend/internal/handler/apierror"
	"github.com/zhouzirui/path-finder/backend/internal/middleware"
	quizService "github.com/zhouzirui/path-finder/backend/internal/service/quiz"
)

const (
	readTimeout  = 120 * time.Second
	pingInterval = 54 * time.Second
)

// Inbound message types.
const (
	msgStart  = "start"
	msgAnswer = "answer"
	msgRetry  = "retry"
)

type inboundMessage struct {
	Type   string `json:"type"`
	Answer string `json:"answer,omitempty"`
}

type outgoingMessage struct {
	Type      string      `json:"type"`
	Data      interface{} `json:"data,omitempty"`
	Timestamp int64       `json:"timestamp"`
}

// session is the per-connection quiz. The machine lives only as long as the socket.
type session struct {
	userID  string
	machine *quizService.Machine
}

// handleWebSocket runs an interactive quiz. The client sends "start", then one "answer" per
// question; "retry" repeats the last round after a failed generation call.
func (h *Handler) handleWebSocket(w http.ResponseWriter, r *http.Request) {
	userID := middleware.UserID(r.Context())

	conn, err := h.upgrader.Upgrade(w, r, nil)
	if err != nil {
		h.log.Warn("websocket upgrade failed", "error", err)
		return
	}
	defer conn.Close()

	ctx, cancel := context.WithCancel(r.Context())
	defer cancel()

	_ = conn.SetReadDeadline(time.Now().Add(readTimeout))
	conn.SetPongHandler(func(string) error {
		return conn.SetReadDeadline(time.Now().Add(readTimeout))
	})
	go h.pingLoop(ctx, conn)

	h.log.Debug("quiz socket connected", "user", userID)
	state := &session{userID: userID}
	h.send(conn, "connected", map[string]string{"user": userID})

	for {
		var msg inboundMessage
		if err := conn.ReadJSON(&msg); err != nil {
			var syntaxErr *json.SyntaxError
			var typeErr *json.UnmarshalTypeError
			if errors.As(err, &syntaxErr) || errors.As(err, &typeErr) {
				h.sendError(conn, "messages must be JSON")
				continue
			}
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseNormalClosure) {
				h.log.Debug("quiz socket read failed", "user", userID, "error", err)
			}
			return
		}
		_ = conn.SetReadDeadline(time.Now().Add(readTimeout))

		h.handleMessage(ctx, conn, state, msg)
	}
}

func (h *Handler) handleMessage(ctx context.Context, conn *websocket.Conn, state *session, msg inboundMessage) {
	switch msg.Type {
	case msgStart:
		state.machine = h.quizSvc.NewSession()
	case msgAnswer:
		if state.machine == nil {
			h.sendError(conn, "send start first")
			return
		}
		if err := state.machine.Answer(msg.Answer); err != nil {
			h.sendError(conn, err.Error())
			return
		}
	case msgRetry:
		if state.machine == nil {
			h.sendError(conn, "send start first")
			return
		}
	default:
		h.sendError(conn, "unknown message type: "+msg.Type)
		return
	}

	if h.limiter != nil && !h.limiter.Allow(state.userID) {
		h.sendError(conn, "too many requests, please slow down and send retry")
		return
	}

	out, err := h.quizSvc.Advance(ctx, state.userID, state.machine)
	if err != nil {
		if errors.Is(err, quizService.ErrQuizComplete) {
			h.sendError(conn, err.Error())
			return
		}
		_, message := apierror.Status(err)
		h.log.Warn("quiz round failed", "user", state.userID, "error", err)
		h.sendError(conn, message)
		return
	}

	if out.State == quizService.Complete {
		h.send(conn, "complete", newStepResponse(out))
		return
	}
	h.send(conn, "question", newStepResponse(out))
}

func (h *Handler) send(conn *websocket.Conn, msgType string, data interface{}) {
	msg := outgoingMessage{Type: msgType, Data: data, Timestamp: time.Now().Unix()}
	if err := conn.WriteJSON(msg); err != nil {
		h.log.Debug("quiz socket write failed", "type", msgType, "error", err)
	}
}

func (h *Handler) sendError(conn *websocket.Conn, message string) {
	h.send(conn, "error", map[string]string{"message": message})
}

func (h *Handler) pingLoop(ctx context.Context, conn *websocket.Conn) {
	ticker := time.NewTicker(pingInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			if err := conn.WriteControl(websocket.PingMessage, nil, time.Now().Add(5*time.Second)); err != nil {
				return
			}
		}
	}
}
