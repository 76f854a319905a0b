package handlers

import (
	"context"
	"encoding/json"
	"sync"

	"github.com/escrow-marketplace/backend/internal/auth"
	"github.com/escrow-marketplace/backend/internal/config"
	"github.com/escrow-marketplace/backend/internal/events"
	"github.com/gofiber/contrib/websocket"
	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
	"go.uber.org/zap"
)

// WSHub pushes order lifecycle events to the connected parties of the order.
// Events without a recipient in their payload are dropped rather than
// broadcast; order state is not public.
type WSHub struct {
	cfg   *config.Config
	sub   events.Subscriber
	log   *zap.Logger
	mu    sync.RWMutex
	conns map[uuid.UUID]map[*websocket.Conn]struct{}
}

func NewWSHub(cfg *config.Config, sub events.Subscriber, log *zap.Logger) *WSHub {
	return &WSHub{
		cfg:   cfg,
		sub:   sub,
		log:   log,
		conns: make(map[uuid.UUID]map[*websocket.Conn]struct{}),
	}
}

// Start subscribes the hub to the order event stream.
func (h *WSHub) Start(ctx context.Context) {
	_ = h.sub.Subscribe(ctx, events.StreamOrders, h.dispatch)
}

func (h *WSHub) dispatch(event events.Event) {
	for _, key := range []string{"buyer_id", "seller_id"} {
		raw, ok := event.Payload[key].(string)
		if !ok {
			continue
		}
		if userID, err := uuid.Parse(raw); err == nil {
			h.SendToUser(userID, event)
		}
	}
}

func (h *WSHub) SendToUser(userID uuid.UUID, event events.Event) {
	data, err := json.Marshal(event)
	if err != nil {
		return
	}

	h.mu.RLock()
	defer h.mu.RUnlock()
	for conn := range h.conns[userID] {
		if err := conn.WriteMessage(websocket.TextMessage, data); err != nil {
			h.log.Debug("ws write failed", zap.String("user_id", userID.String()), zap.Error(err))
		}
	}
}

func (h *WSHub) register(userID uuid.UUID, conn *websocket.Conn) {
	h.mu.Lock()
	defer h.mu.Unlock()
	if h.conns[userID] == nil {
		h.conns[userID] = make(map[*websocket.Conn]struct{})
	}
	h.conns[userID][conn] = struct{}{}
}

func (h *WSHub) unregister(userID uuid.UUID, conn *websocket.Conn) {
	h.mu.Lock()
	defer h.mu.Unlock()
	delete(h.conns[userID], conn)
	if len(h.conns[userID]) == 0 {
		delete(h.conns, userID)
	}
}

// WSUpgradeMiddleware rejects plain HTTP requests to the websocket route.
func WSUpgradeMiddleware() fiber.Handler {
	return func(c *fiber.Ctx) error {
		if websocket.IsWebSocketUpgrade(c) {
			return c.Next()
		}
		return fiber.ErrUpgradeRequired
	}
}

// HandleWS authenticates the connection via the token query parameter and
// keeps it registered until the client goes away.
func (h *WSHub) HandleWS(conn *websocket.Conn) {
	defer conn.Close()

	claims, err := auth.ParseJWT(h.cfg.JWTSecret, conn.Query("token"))
	if err != nil {
		_ = conn.WriteMessage(websocket.TextMessage, []byte(`{"error":"invalid token"}`))
		return
	}

	userID := claims.UserID
	h.register(userID, conn)
	defer h.unregister(userID, conn)

	// Read loop keeps the connection alive; inbound payloads are ignored.
	for {
		if _, _, err := conn.ReadMessage(); err != nil {
			return
		}
	}
}
