package handlers

import (
	"context"
	"fmt"
	"net/http"
	"strings"
	"sync"
	"time"

	"pickem-app-go/metrics"
	"pickem-app-go/models"
	"pickem-app-go/services"
)

// sseClients guards the set of connected event-stream channels
var (
	sseMu      sync.Mutex
	sseClients = make(map[chan string]bool)
)

// SSEHandler handles GET /events - Server-Sent Events for live pick updates
func (h *GameHandler) SSEHandler(w http.ResponseWriter, r *http.Request) {
	h.logger.Infof("SSE: New client connected from %s", r.RemoteAddr)

	flusher, ok := w.(http.Flusher)
	if !ok {
		http.Error(w, "Streaming unsupported", http.StatusInternalServerError)
		return
	}

	// Set SSE headers
	w.Header().Set("Content-Type", "text/event-stream")
	w.Header().Set("Cache-Control", "no-cache")
	w.Header().Set("Connection", "keep-alive")

	clientChan := make(chan string, 10)
	sseMu.Lock()
	sseClients[clientChan] = true
	sseMu.Unlock()
	metrics.SSEClients.Inc()

	// Send initial connection confirmation
	fmt.Fprintf(w, "event: connected\n")
	fmt.Fprintf(w, "data: SSE connection established\n\n")
	flusher.Flush()

	defer func() {
		sseMu.Lock()
		delete(sseClients, clientChan)
		sseMu.Unlock()
		metrics.SSEClients.Dec()
		h.logger.Infof("SSE: Client disconnected from %s", r.RemoteAddr)
	}()

	for {
		select {
		case message := <-clientChan:
			fmt.Fprintf(w, "event: pickUpdate\n")
			for _, line := range strings.Split(message, "\n") {
				fmt.Fprintf(w, "data: %s\n", line)
			}
			fmt.Fprintf(w, "\n")
			flusher.Flush()
		case <-r.Context().Done():
			return
		case <-time.After(30 * time.Second):
			// Keepalive
			fmt.Fprintf(w, "event: keepalive\n")
			fmt.Fprintf(w, "data: ping\n\n")
			flusher.Flush()
		}
	}
}

// BroadcastPickUpdate re-renders the pick list for the changed game and
// pushes it to all connected SSE clients. Slow clients are skipped rather
// than blocked on.
func (h *GameHandler) BroadcastPickUpdate(event services.PickChangeEvent) {
	if event.GameID == "" {
		return
	}

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	card := GameCard{Game: models.GameRecord{GameID: event.GameID}}
	picks, err := h.picks.PicksForGame(ctx, event.GameID)
	if err != nil {
		h.logger.Errorf("SSE: Failed to load picks for broadcast: %v", err)
		return
	}
	card.Picks = picks
	if len(picks) == 0 {
		card.PicksMsg = "No picks yet."
	}

	var buf strings.Builder
	if err := h.templates.ExecuteTemplate(&buf, "pick-list", card); err != nil {
		h.logger.Errorf("SSE: Template error for broadcast: %v", err)
		return
	}

	sseMu.Lock()
	defer sseMu.Unlock()
	for clientChan := range sseClients {
		select {
		case clientChan <- buf.String():
		default:
			// Client channel is full, skip
		}
	}

	h.logger.Debugf("SSE: Broadcasted pick update for game %s to %d clients", event.GameID, len(sseClients))
}
