package websocket

import (
	"sync"
	"time"

	"github.com/callwise/staffing/internal/logger"
	"github.com/callwise/staffing/pkg/config"
)

const (
	defaultBroadcastBuffer = 256
	defaultClientBuffer    = 256
	defaultWriteTimeout    = 10 * time.Second
	defaultPongTimeout     = 60 * time.Second
	defaultMaxMessageSize  = 512
)

type Hub struct {
	clients    map[*Client]bool
	broadcast  chan []byte
	register   chan *Client
	unregister chan *Client
	mu         sync.RWMutex

	clientBuffer   int
	writeTimeout   time.Duration
	pongTimeout    time.Duration
	pingInterval   time.Duration
	maxMessageSize int64
}

func NewHub(cfg *config.WebSocketConfig) *Hub {
	h := &Hub{
		clients:        make(map[*Client]bool),
		register:       make(chan *Client),
		unregister:     make(chan *Client),
		clientBuffer:   defaultClientBuffer,
		writeTimeout:   defaultWriteTimeout,
		pongTimeout:    defaultPongTimeout,
		maxMessageSize: defaultMaxMessageSize,
	}

	broadcastBuffer := defaultBroadcastBuffer
	if cfg != nil {
		if cfg.BroadcastBuffer > 0 {
			broadcastBuffer = cfg.BroadcastBuffer
		}
		if cfg.ClientBuffer > 0 {
			h.clientBuffer = cfg.ClientBuffer
		}
		if cfg.WriteTimeout > 0 {
			h.writeTimeout = cfg.WriteTimeout
		}
		if cfg.PongTimeout > 0 {
			h.pongTimeout = cfg.PongTimeout
		}
		if cfg.PingInterval > 0 {
			h.pingInterval = cfg.PingInterval
		}
		if cfg.MaxMessageSize > 0 {
			h.maxMessageSize = cfg.MaxMessageSize
		}
	}
	h.broadcast = make(chan []byte, broadcastBuffer)

	// Pings must arrive well inside the pong deadline.
	if h.pingInterval == 0 || h.pingInterval >= h.pongTimeout {
		h.pingInterval = (h.pongTimeout * 9) / 10
	}

	return h
}

func (h *Hub) Run() {
	for {
		select {
		case client := <-h.register:
			h.mu.Lock()
			h.clients[client] = true
			h.mu.Unlock()
			logger.Infof("WebSocket client connected (total: %d)", h.ClientCount())

		case client := <-h.unregister:
			h.mu.Lock()
			if _, ok := h.clients[client]; ok {
				delete(h.clients, client)
				close(client.send)
			}
			h.mu.Unlock()
			logger.Infof("WebSocket client disconnected (total: %d)", h.ClientCount())

		case message := <-h.broadcast:
			h.mu.RLock()
			for client := range h.clients {
				select {
				case client.send <- message:
				default:
				}
			}
			h.mu.RUnlock()
		}
	}
}

func (h *Hub) Broadcast(message []byte) {
	select {
	case h.broadcast <- message:
	default:
		logger.Warn("Broadcast channel full, dropping message")
	}
}

func (h *Hub) BroadcastToQueue(queueID string, message []byte) {
	h.mu.RLock()
	defer h.mu.RUnlock()

	for client := range h.clients {
		// Only send to clients that have explicitly subscribed to this queue
		if client.queueID == queueID {
			select {
			case client.send <- message:
			default:
			}
		}
	}
}

func (h *Hub) ClientCount() int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.clients)
}

func (h *Hub) Register(client *Client) {
	h.register <- client
}

func (h *Hub) Unregister(client *Client) {
	h.unregister <- client
}
