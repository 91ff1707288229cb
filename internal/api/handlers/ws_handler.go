package handlers

import (
	"encoding/json"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/gorilla/websocket"
	"github.com/sirupsen/logrus"

	"github.com/pollyhq/pollycoach/internal/session"
	"github.com/pollyhq/pollycoach/internal/utils"
)

const (
	writeWait       = 10 * time.Second
	pongWait        = 60 * time.Second
	maxMessageBytes = 8 << 20 // base64 frames and audio chunks
)

type WSHandler struct {
	registry *session.Registry
	log      *logrus.Logger
	upgrader websocket.Upgrader
}

func NewWSHandler(registry *session.Registry, log *logrus.Logger) *WSHandler {
	return &WSHandler{
		registry: registry,
		log:      log,
		upgrader: websocket.Upgrader{
			CheckOrigin: func(r *http.Request) bool { return true }, // TODO: restrict origin in prod
		},
	}
}

// SessionWS owns one connection's lifetime: create the session, pump
// outbound events with a single writer, feed inbound messages to the
// session's task in arrival order, and clean up on any exit path.
func (h *WSHandler) SessionWS(c *gin.Context) {
	sessionID := c.Param("session_id")
	if sessionID == "" {
		writeError(c, utils.E(utils.CodeInvalidArgument, "WSHandler.SessionWS", "missing session_id", nil))
		return
	}

	sess, err := h.registry.Create(sessionID)
	if err != nil {
		writeError(c, utils.E(utils.CodeConflict, "WSHandler.SessionWS", "session already connected", err))
		return
	}

	conn, err := h.upgrader.Upgrade(c.Writer, c.Request, nil)
	if err != nil {
		// upgrade already wrote a response in most cases
		h.registry.Remove(sessionID)
		return
	}

	log := h.log.WithField("session_id", sessionID)
	log.Info("session connected")

	defer func() {
		h.registry.Remove(sessionID)
		_ = conn.Close()
		log.Info("session disconnected")
	}()

	// writer: session events -> WS, in emit order
	go func() {
		for {
			select {
			case <-sess.Done():
				return
			case ev := <-sess.Out():
				data, merr := json.Marshal(ev)
				if merr != nil {
					log.WithError(merr).Warn("failed to encode event")
					continue
				}
				_ = conn.SetWriteDeadline(time.Now().Add(writeWait))
				if werr := conn.WriteMessage(websocket.TextMessage, data); werr != nil {
					return
				}
			}
		}
	}()

	// first event on every connection is the assigned topic
	sess.Enqueue(session.ClientMessage{Type: session.MsgRequestNewTopic})

	// reader: WS -> session mailbox
	conn.SetReadLimit(maxMessageBytes)
	_ = conn.SetReadDeadline(time.Now().Add(pongWait))
	conn.SetPongHandler(func(string) error {
		return conn.SetReadDeadline(time.Now().Add(pongWait))
	})

	for {
		_, data, rerr := conn.ReadMessage()
		if rerr != nil {
			return
		}
		_ = conn.SetReadDeadline(time.Now().Add(pongWait))

		var msg session.ClientMessage
		if uerr := json.Unmarshal(data, &msg); uerr != nil {
			sess.SendError("invalid json")
			continue
		}
		sess.Enqueue(msg)
	}
}
