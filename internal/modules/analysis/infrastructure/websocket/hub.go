package websocket

import (
	"encoding/json"
	"log/slog"
	"sync"

	"github.com/saransh1220/snaplabel/internal/modules/analysis/domain"
)

// EventAnalysisCompleted is sent when an analysis for a watched key is stored.
const EventAnalysisCompleted = "analysis.completed"

// Event is the JSON frame pushed to subscribers.
type Event struct {
	Type     string           `json:"type"`
	Analysis *domain.Analysis `json:"analysis"`
}

type keyedMessage struct {
	Key     string
	Message []byte
}

// Hub maintains the set of active clients and routes analysis events to the
// clients watching the analysed storage key.
type Hub struct {
	// Registered clients.
	clients map[*Client]bool

	// Messages for the clients watching a key.
	publish chan keyedMessage

	// Register requests from the clients.
	register chan *Client

	// Unregister requests from clients.
	unregister chan *Client

	// Channel to signal termination
	stop     chan struct{}
	stopOnce sync.Once

	logger *slog.Logger
}

func NewHub(logger *slog.Logger) *Hub {
	return &Hub{
		publish:    make(chan keyedMessage),
		register:   make(chan *Client),
		unregister: make(chan *Client),

		clients: make(map[*Client]bool),
		stop:    make(chan struct{}),
		logger:  logger,
	}
}

func (h *Hub) Run() {
	for {
		select {
		case client := <-h.register:
			h.clients[client] = true
			h.logger.Debug("websocket client registered", "key", client.key, "clients", len(h.clients))
		case client := <-h.unregister:
			if _, ok := h.clients[client]; ok {
				delete(h.clients, client)
				close(client.send)
				h.logger.Debug("websocket client unregistered", "key", client.key, "clients", len(h.clients))
			}
		case msg := <-h.publish:
			for client := range h.clients {
				if client.key != msg.Key {
					continue
				}
				select {
				case client.send <- msg.Message:
				default:
					close(client.send)
					delete(h.clients, client)
				}
			}
		case <-h.stop:
			h.logger.Info("stopping websocket hub")
			for client := range h.clients {
				close(client.send)
				delete(h.clients, client)
			}
			return
		}
	}
}

// Publish sends message to every client watching key.
func (h *Hub) Publish(key string, message []byte) {
	select {
	case h.publish <- keyedMessage{Key: key, Message: message}:
	case <-h.stop:
	}
}

// AnalysisCompleted implements domain.Notifier.
func (h *Hub) AnalysisCompleted(a *domain.Analysis) {
	msg, err := json.Marshal(Event{Type: EventAnalysisCompleted, Analysis: a})
	if err != nil {
		h.logger.Error("failed to encode analysis event", "analysis_id", a.ID, "error", err)
		return
	}
	h.Publish(a.Key, msg)
}

func (h *Hub) Stop() {
	h.stopOnce.Do(func() {
		close(h.stop)
	})
}
