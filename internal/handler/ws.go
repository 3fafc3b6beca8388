package handler

import (
	"encoding/json"
	"log"
	"time"

	"farmdirect-backend/internal/model"
	"farmdirect-backend/internal/service"

	"github.com/gofiber/contrib/websocket"
	"github.com/gofiber/fiber/v2"
)

type WSHandler struct {
	hub     *service.WSHub
	authSvc *service.AuthService
}

func NewWSHandler(hub *service.WSHub, authSvc *service.AuthService) *WSHandler {
	return &WSHandler{hub: hub, authSvc: authSvc}
}

func (h *WSHandler) Upgrade(c *fiber.Ctx) error {
	if websocket.IsWebSocketUpgrade(c) {
		// Browsers cannot set headers on websocket upgrades, so the token
		// rides in the query string.
		token := c.Query("token")
		if token == "" {
			return c.Status(401).JSON(fiber.Map{"error": "token required"})
		}

		userID, role, err := h.authSvc.ValidateAccessToken(token)
		if err != nil {
			return c.Status(401).JSON(fiber.Map{"error": "invalid token"})
		}

		c.Locals("user_id", userID)
		c.Locals("role", role)
		return websocket.New(h.handleConnection)(c)
	}
	return fiber.ErrUpgradeRequired
}

func (h *WSHandler) handleConnection(c *websocket.Conn) {
	userID, _ := c.Locals("user_id").(string)

	client := &service.WSClient{
		Conn:   c,
		UserID: userID,
		Name:   userID,
		Send:   make(chan []byte, 256),
	}

	h.hub.Register(client)
	defer h.hub.Unregister(client)

	// Writer goroutine
	go func() {
		defer c.Close()
		for msg := range client.Send {
			if err := c.WriteMessage(websocket.TextMessage, msg); err != nil {
				break
			}
		}
	}()

	// Reader loop
	c.SetReadDeadline(time.Now().Add(60 * time.Second))
	for {
		_, msg, err := c.ReadMessage()
		if err != nil {
			break
		}

		// Reset deadline on any message
		c.SetReadDeadline(time.Now().Add(60 * time.Second))

		var event model.WSEvent
		if err := json.Unmarshal(msg, &event); err != nil {
			continue
		}

		switch event.Type {
		case "ping":
			pong, _ := json.Marshal(model.WSEvent{Type: "pong"})
			select {
			case client.Send <- pong:
			default:
			}
		case "subscribe":
			var sub struct {
				AuctionID string `json:"auction_id"`
			}
			if err := json.Unmarshal(event.Data, &sub); err == nil && sub.AuctionID != "" {
				client.Subscribe(service.AuctionChannel(sub.AuctionID))
			}
		case "unsubscribe":
			var sub struct {
				AuctionID string `json:"auction_id"`
			}
			if err := json.Unmarshal(event.Data, &sub); err == nil && sub.AuctionID != "" {
				client.Unsubscribe(service.AuctionChannel(sub.AuctionID))
			}
		default:
			log.Printf("WS: unknown event type %s from %s", event.Type, userID)
		}
	}
}
