package services

import (
	"encoding/json"
	"fmt"
	"sync"

	"github.com/onegreenvn/booking-followup-backend/internal/models"
	"github.com/sirupsen/logrus"
)

// Event names written on the log stream
const (
	LogEventScheduled = "scheduled"
	LogEventUpdated   = "updated"
)

const allBookingsKey = "*"

// LogEventHub fans workflow log changes out to Server-Sent Events clients.
// Clients subscribe to one booking or, with an empty booking id, to every booking.
type LogEventHub struct {
	clients map[string]map[chan []byte]bool
	mu      sync.RWMutex
}

func NewLogEventHub() *LogEventHub {
	return &LogEventHub{
		clients: make(map[string]map[chan []byte]bool),
	}
}

func hubKey(bookingID string) string {
	if bookingID == "" {
		return allBookingsKey
	}
	return bookingID
}

// Subscribe registers a client channel
func (h *LogEventHub) Subscribe(bookingID string) chan []byte {
	h.mu.Lock()
	defer h.mu.Unlock()

	key := hubKey(bookingID)
	clientChan := make(chan []byte, 16)
	if h.clients[key] == nil {
		h.clients[key] = make(map[chan []byte]bool)
	}
	h.clients[key][clientChan] = true

	logrus.Debugf("Log stream client registered for %s (total clients: %d)", key, len(h.clients[key]))
	return clientChan
}

// Unsubscribe removes and closes a client channel
func (h *LogEventHub) Unsubscribe(bookingID string, clientChan chan []byte) {
	h.mu.Lock()
	defer h.mu.Unlock()

	key := hubKey(bookingID)
	if h.clients[key] == nil || !h.clients[key][clientChan] {
		return
	}
	delete(h.clients[key], clientChan)
	close(clientChan)
	if len(h.clients[key]) == 0 {
		delete(h.clients, key)
	}
}

// Publish sends a log entry to its booking's subscribers and to the global stream
func (h *LogEventHub) Publish(event string, entry *models.WorkflowLog) {
	if h == nil || entry == nil {
		return
	}

	payload, err := json.Marshal(ToLogResponse(entry))
	if err != nil {
		logrus.Errorf("Failed to marshal log event: %v", err)
		return
	}
	message := []byte(fmt.Sprintf("event: %s\ndata: %s\n\n", event, payload))

	h.mu.RLock()
	defer h.mu.RUnlock()
	h.sendLocked(entry.BookingID, message)
	h.sendLocked(allBookingsKey, message)
}

// sendLocked never blocks; a slow client misses the message
func (h *LogEventHub) sendLocked(key string, message []byte) {
	for clientChan := range h.clients[key] {
		select {
		case clientChan <- message:
		default:
			logrus.Warnf("Log stream client channel full, skipping: %s", key)
		}
	}
}

// ClientCount returns the number of subscribers for a booking, or for the global stream
func (h *LogEventHub) ClientCount(bookingID string) int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.clients[hubKey(bookingID)])
}
