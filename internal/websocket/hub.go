package websocket

import (
	"context"
	"encoding/json"
	"sync"
	"time"

	"github.com/mithaqq/mithaqq-backend/internal/app/model"
	"github.com/mithaqq/mithaqq-backend/pkg/logger"
	"github.com/shopspring/decimal"
)

const (
	EventOrderCreated       = "order_created"
	EventOrderStatusChanged = "order_status_changed"

	clientSendBuffer = 256
)

// OrderEvent is what feed subscribers receive.
type OrderEvent struct {
	Type  string       `json:"type"`
	Order OrderSummary `json:"order"`
}

type OrderSummary struct {
	ID            uint                `json:"id"`
	UserID        uint                `json:"user_id"`
	Status        model.OrderStatus   `json:"status"`
	PaymentMethod model.PaymentMethod `json:"payment_method"`
	OrderTotal    decimal.Decimal     `json:"order_total"`
	OrderDate     time.Time           `json:"order_date"`
}

func summarize(order *model.Order) OrderSummary {
	return OrderSummary{
		ID:            order.ID,
		UserID:        order.UserID,
		Status:        order.Status,
		PaymentMethod: order.PaymentMethod,
		OrderTotal:    order.OrderTotal,
		OrderDate:     order.OrderDate,
	}
}

// Client is one admin session subscribed to the order feed.
type Client struct {
	Hub    *Hub
	Conn   *Conn
	UserID uint
	Send   chan []byte
}

func NewClient(hub *Hub, conn *Conn, userID uint) *Client {
	return &Client{
		Hub:    hub,
		Conn:   conn,
		UserID: userID,
		Send:   make(chan []byte, clientSendBuffer),
	}
}

// Hub fans order events out to every connected admin session.
type Hub struct {
	clients    map[*Client]bool
	register   chan *Client
	unregister chan *Client
	broadcast  chan []byte

	mu sync.RWMutex
}

func NewHub() *Hub {
	return &Hub{
		clients:    make(map[*Client]bool),
		register:   make(chan *Client, 64),
		unregister: make(chan *Client, 64),
		broadcast:  make(chan []byte, 1024),
	}
}

// Run processes registrations and broadcasts until ctx is cancelled.
func (h *Hub) Run(ctx context.Context) {
	for {
		select {
		case <-ctx.Done():
			h.mu.Lock()
			for client := range h.clients {
				close(client.Send)
				delete(h.clients, client)
			}
			h.mu.Unlock()
			return

		case client := <-h.register:
			h.mu.Lock()
			h.clients[client] = true
			total := len(h.clients)
			h.mu.Unlock()
			logger.Info("Order feed client registered", map[string]interface{}{
				"user_id":        client.UserID,
				"total_sessions": total,
			})

		case client := <-h.unregister:
			h.mu.Lock()
			if h.clients[client] {
				delete(h.clients, client)
				close(client.Send)
			}
			h.mu.Unlock()
			logger.Info("Order feed client unregistered", map[string]interface{}{
				"user_id": client.UserID,
			})

		case message := <-h.broadcast:
			h.mu.RLock()
			for client := range h.clients {
				select {
				case client.Send <- message:
				default:
					// slow consumer
					go h.Unregister(client)
					logger.Warn("Order feed send buffer full, disconnecting", map[string]interface{}{
						"user_id": client.UserID,
					})
				}
			}
			h.mu.RUnlock()
		}
	}
}

func (h *Hub) Register(client *Client) {
	h.register <- client
}

func (h *Hub) Unregister(client *Client) {
	h.unregister <- client
}

func (h *Hub) ClientCount() int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.clients)
}

// Publish never blocks the caller. Events are dropped when the queue is full.
func (h *Hub) Publish(event OrderEvent) {
	data, err := json.Marshal(event)
	if err != nil {
		logger.Error("Failed to marshal order event", err)
		return
	}
	select {
	case h.broadcast <- data:
	default:
		logger.Warn("Order feed queue full, event dropped", map[string]interface{}{
			"order_id": event.Order.ID,
			"type":     event.Type,
		})
	}
}

func (h *Hub) OrderCreated(order *model.Order) {
	h.Publish(OrderEvent{Type: EventOrderCreated, Order: summarize(order)})
}

func (h *Hub) OrderStatusChanged(order *model.Order) {
	h.Publish(OrderEvent{Type: EventOrderStatusChanged, Order: summarize(order)})
}
