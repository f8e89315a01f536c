package realtime

import (
	"context"
	"encoding/json"
	"net/http"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/gorilla/websocket"
	"github.com/techagentng/carefront/models"
	"go.uber.org/zap"
)

const dispatchTimeout = 10 * time.Second

// Verifier resolves a handshake credential into an identity.
type Verifier interface {
	Verify(credential string) (*models.Identity, error)
}

// MessageActions are the message operations reachable from the channel.
type MessageActions interface {
	Reply(ctx context.Context, id, replyText string, identity *models.Identity) (*models.Message, error)
	MarkStatus(ctx context.Context, id string, status models.MessageStatus) (*models.Message, error)
	NotifyTyping(identity string, isTyping bool)
}

// Gateway upgrades HTTP requests to realtime connections and handles the
// events clients send.
type Gateway struct {
	hub      *Hub
	verifier Verifier
	messages MessageActions
	upgrader websocket.Upgrader
	log      *zap.Logger
}

// NewGateway builds the websocket endpoint. An empty allowedOrigins accepts
// any origin.
func NewGateway(hub *Hub, verifier Verifier, messages MessageActions, allowedOrigins []string, log *zap.Logger) *Gateway {
	g := &Gateway{hub: hub, verifier: verifier, messages: messages, log: log}
	g.upgrader = websocket.Upgrader{
		ReadBufferSize:  1024,
		WriteBufferSize: 1024,
		CheckOrigin:     originChecker(allowedOrigins),
	}
	return g
}

func originChecker(allowed []string) func(r *http.Request) bool {
	return func(r *http.Request) bool {
		origin := r.Header.Get("Origin")
		if origin == "" || len(allowed) == 0 {
			return true
		}
		for _, a := range allowed {
			if a == "*" || strings.EqualFold(a, origin) {
				return true
			}
		}
		return false
	}
}

// handshakeCredential looks at the Authorization header, the token cookie and
// the token query parameter, in that order.
func handshakeCredential(r *http.Request) string {
	if h := r.Header.Get("Authorization"); h != "" {
		return h
	}
	if c, err := r.Cookie("token"); err == nil && c.Value != "" {
		return c.Value
	}
	return r.URL.Query().Get("token")
}

func (g *Gateway) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	var identity *models.Identity
	if credential := handshakeCredential(r); credential != "" {
		id, err := g.verifier.Verify(credential)
		if err != nil {
			// connection proceeds unprivileged
			g.log.Info("realtime handshake credential rejected", zap.Error(err))
		} else {
			identity = id
		}
	}

	conn, err := g.upgrader.Upgrade(w, r, nil)
	if err != nil {
		g.log.Warn("websocket upgrade failed", zap.Error(err))
		return
	}

	clientID := uuid.NewString()
	fields := []zap.Field{zap.String("client_id", clientID)}
	if identity != nil {
		fields = append(fields, zap.String("user_id", identity.ID))
	}
	c := newClient(clientID, conn, identity, g.log.With(fields...))
	g.hub.register(c)
	if identity.IsPrivileged() {
		g.hub.join(c, models.AdminsRoom)
	}

	hello, _ := json.Marshal(outFrame{Event: models.EventConnected, Data: models.ConnectedEvent{ID: clientID, Admin: identity.IsPrivileged()}})
	c.trySend(hello)

	go c.writePump()
	go c.readPump(g.hub, g.dispatch)
}

func (g *Gateway) dispatch(c *Client, frame models.Frame) {
	outcome := "ok"
	defer func() { inboundEvents.WithLabelValues(frame.Event, outcome).Inc() }()

	switch frame.Event {
	case models.EventJoinAdmins:
		if !c.identity.IsPrivileged() {
			outcome = "ignored"
			c.log.Info("join_admins from unprivileged connection ignored")
			return
		}
		g.hub.join(c, models.AdminsRoom)

	case models.EventReplyMessage:
		if !c.identity.IsPrivileged() {
			outcome = "ignored"
			c.log.Warn("reply_message from unprivileged connection ignored")
			return
		}
		var p models.ReplyMessagePayload
		if err := json.Unmarshal(frame.Data, &p); err != nil || p.MessageID == "" {
			outcome = "invalid"
			return
		}
		ctx, cancel := context.WithTimeout(context.Background(), dispatchTimeout)
		defer cancel()
		if _, err := g.messages.Reply(ctx, p.MessageID, p.ReplyText, c.identity); err != nil {
			outcome = "failed"
			c.log.Warn("channel reply failed", zap.String("message_id", p.MessageID), zap.Error(err))
		}

	case models.EventMessageDelivered, models.EventMessageRead:
		if !c.identity.IsPrivileged() {
			outcome = "ignored"
			c.log.Warn("status event from unprivileged connection ignored", zap.String("event", frame.Event))
			return
		}
		var p models.MessageRefPayload
		if err := json.Unmarshal(frame.Data, &p); err != nil || p.MessageID == "" {
			outcome = "invalid"
			return
		}
		status := models.MessageDelivered
		if frame.Event == models.EventMessageRead {
			status = models.MessageRead
		}
		ctx, cancel := context.WithTimeout(context.Background(), dispatchTimeout)
		defer cancel()
		if _, err := g.messages.MarkStatus(ctx, p.MessageID, status); err != nil {
			outcome = "failed"
			c.log.Warn("channel status update failed", zap.String("message_id", p.MessageID), zap.Error(err))
		}

	case models.EventTypingStart, models.EventTypingStop:
		var p models.TypingPayload
		_ = json.Unmarshal(frame.Data, &p)
		who := p.Email
		if who == "" && c.identity != nil {
			who = c.identity.Email
		}
		if who == "" {
			who = c.id
		}
		g.messages.NotifyTyping(who, frame.Event == models.EventTypingStart)

	default:
		outcome = "unknown"
	}
}
