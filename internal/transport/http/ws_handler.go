package http

import (
	"context"
	"encoding/json"
	"net/http"
	"time"

	"drivequest/internal/screen"
	"drivequest/internal/validation"
	"github.com/gorilla/websocket"
	"go.uber.org/zap"
)

const closeTimeout = 2 * time.Second

// Loop runs work on the application's single UI thread.
type Loop interface {
	Post(fn func()) bool
	Do(ctx context.Context, fn func()) error
}

// ShellHandler binds one rendering shell per websocket to its own screen session. Every
// intent runs on the loop; the rendered session is pushed after each change.
type ShellHandler struct {
	loop       Loop
	newSession func() *screen.Session
	upgrader   websocket.Upgrader
	logger     *zap.Logger
}

func NewShellHandler(loop Loop, newSession func() *screen.Session, logger *zap.Logger) *ShellHandler {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &ShellHandler{
		loop:       loop,
		newSession: newSession,
		logger:     logger,
		upgrader: websocket.Upgrader{
			ReadBufferSize:  1024,
			WriteBufferSize: 1024,
			// The shell is served from a local file or webview, not from this origin.
			CheckOrigin: func(r *http.Request) bool { return true },
		},
	}
}

type inboundMessage struct {
	Type    string          `json:"type"`
	Payload json.RawMessage `json:"payload"`
}

type outboundMessage[T any] struct {
	Type    string `json:"type"`
	Payload T      `json:"payload"`
}

type errorPayload struct {
	Message string `json:"message"`
}

// ServeWS upgrades the request and runs the connection until the shell disconnects.
func (h *ShellHandler) ServeWS(w http.ResponseWriter, r *http.Request) {
	conn, err := h.upgrader.Upgrade(w, r, nil)
	if err != nil {
		h.logger.Warn("ws upgrade failed", zap.Error(err))
		return
	}
	defer conn.Close()

	// views holds at most the latest rendered session; older frames are replaced.
	views := make(chan screen.SessionView, 1)
	errs := make(chan outboundMessage[errorPayload], 16)
	closeSignals := make(chan struct{})
	writerDone := make(chan struct{})

	var session *screen.Session
	dirty := false
	flush := func() {
		dirty = false
		offer(views, session.Render())
	}
	markDirty := func() {
		if dirty {
			return
		}
		dirty = true
		if !h.loop.Post(flush) {
			dirty = false
		}
	}

	err = h.loop.Do(r.Context(), func() {
		session = h.newSession()
		session.OnChange(markDirty)
		offer(views, session.Render())
	})
	if err != nil {
		_ = conn.WriteJSON(outboundMessage[errorPayload]{Type: "error", Payload: errorPayload{Message: err.Error()}})
		return
	}
	defer func() {
		ctx, cancel := context.WithTimeout(context.Background(), closeTimeout)
		defer cancel()
		if err := h.loop.Do(ctx, session.Close); err != nil {
			h.logger.Debug("session close skipped", zap.Error(err))
		}
	}()

	go func() {
		defer close(writerDone)
		for {
			var err error
			select {
			case v := <-views:
				err = conn.WriteJSON(outboundMessage[screen.SessionView]{Type: "screen", Payload: v})
			case e := <-errs:
				err = conn.WriteJSON(e)
			case <-closeSignals:
				return
			}
			if err != nil {
				h.logger.Debug("ws write error", zap.Error(err))
				return
			}
		}
	}()

	sendErr := func(msg string) {
		select {
		case errs <- outboundMessage[errorPayload]{Type: "error", Payload: errorPayload{Message: msg}}:
		default:
			h.logger.Warn("ws error dropped", zap.String("message", msg))
		}
	}

	for {
		var inbound inboundMessage
		if err := conn.ReadJSON(&inbound); err != nil {
			break
		}
		if inbound.Type != "intent" {
			sendErr("unsupported message type")
			continue
		}
		var intent screen.Intent
		if err := json.Unmarshal(inbound.Payload, &intent); err != nil {
			sendErr("invalid intent payload")
			continue
		}
		if err := validation.Struct(intent); err != nil {
			sendErr(err.Error())
			continue
		}

		var dispatchErr error
		if err := h.loop.Do(r.Context(), func() { dispatchErr = session.Dispatch(intent) }); err != nil {
			break
		}
		if dispatchErr != nil {
			sendErr(dispatchErr.Error())
		}
	}

	close(closeSignals)
	<-writerDone
}

// offer replaces any pending value in a one-slot channel. Only the loop goroutine sends.
func offer[T any](ch chan T, v T) {
	for {
		select {
		case ch <- v:
			return
		default:
		}
		select {
		case <-ch:
		default:
		}
	}
}
