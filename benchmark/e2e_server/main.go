// E2E benchmark server for reval.
// Exposes a shared reactive counter with derived cells over HTTP and pushes
// every observed change to WebSocket clients, to measure real
// Set → notify → client roundtrip latency.
package main

import (
	"encoding/json"
	"flag"
	"fmt"
	"log"
	"net/http"
	"sync"
	"time"

	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"
	"github.com/gorilla/websocket"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/reval-dev/reval/pkg/instrument"
	"github.com/reval-dev/reval/pkg/reval"
)

var upgrader = websocket.Upgrader{
	CheckOrigin: func(r *http.Request) bool {
		return true // benchmark tool, allow all origins
	},
}

// update is the JSON frame pushed to clients on every state change.
type update struct {
	Counter int   `json:"counter"`
	Doubled int   `json:"doubled"`
	Even    bool  `json:"even"`
	Old     int   `json:"old"`
	SentAt  int64 `json:"sent_at_unix_nano"`
}

// hub fans state updates out to connected WebSocket clients.
type hub struct {
	mu      sync.Mutex
	clients map[*websocket.Conn]chan []byte
}

func newHub() *hub {
	return &hub{clients: make(map[*websocket.Conn]chan []byte)}
}

func (h *hub) add(conn *websocket.Conn) chan []byte {
	ch := make(chan []byte, 64)
	h.mu.Lock()
	h.clients[conn] = ch
	h.mu.Unlock()
	return ch
}

func (h *hub) remove(conn *websocket.Conn) {
	h.mu.Lock()
	if ch, ok := h.clients[conn]; ok {
		delete(h.clients, conn)
		close(ch)
	}
	h.mu.Unlock()
}

func (h *hub) broadcast(frame []byte) {
	h.mu.Lock()
	for _, ch := range h.clients {
		select {
		case ch <- frame:
		default:
			// Slow client: drop the frame rather than stall the notify path.
		}
	}
	h.mu.Unlock()
}

func main() {
	addr := flag.String("addr", ":8766", "listen address")
	flag.Parse()

	instrument.Prometheus()

	counter := reval.New(0)
	doubled := reval.Map(counter, func(v, _ int) int { return v * 2 })
	even := reval.Map(counter, func(v, _ int) bool { return v%2 == 0 })

	h := newHub()

	// One engine observer feeds every client; delivery happens on the
	// Set caller's goroutine, so the broadcast must not block.
	counter.AddObserver(func(new, old int) {
		frame, err := json.Marshal(update{
			Counter: new,
			Doubled: doubled.Get(),
			Even:    even.Get(),
			Old:     old,
			SentAt:  time.Now().UnixNano(),
		})
		if err != nil {
			log.Printf("marshal update: %v", err)
			return
		}
		h.broadcast(frame)
	}, reval.UpdatesOnly())

	r := chi.NewRouter()
	r.Use(chimw.Recoverer)

	r.Get("/state", func(w http.ResponseWriter, req *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		_ = json.NewEncoder(w).Encode(update{
			Counter: counter.Get(),
			Doubled: doubled.Get(),
			Even:    even.Get(),
		})
	})

	r.Post("/set", func(w http.ResponseWriter, req *http.Request) {
		var body struct {
			Value *int `json:"value"`
			Delta int  `json:"delta"`
		}
		if err := json.NewDecoder(req.Body).Decode(&body); err != nil {
			http.Error(w, err.Error(), http.StatusBadRequest)
			return
		}
		if body.Value != nil {
			_ = counter.Set(*body.Value)
		} else {
			_ = counter.Update(func(v int) int { return v + body.Delta })
		}
		w.WriteHeader(http.StatusNoContent)
	})

	r.Get("/ws", func(w http.ResponseWriter, req *http.Request) {
		conn, err := upgrader.Upgrade(w, req, nil)
		if err != nil {
			log.Printf("upgrade: %v", err)
			return
		}
		ch := h.add(conn)
		defer func() {
			h.remove(conn)
			conn.Close()
		}()

		// Reader goroutine drains the connection and detects close.
		done := make(chan struct{})
		go func() {
			defer close(done)
			for {
				if _, _, err := conn.ReadMessage(); err != nil {
					return
				}
			}
		}()

		for {
			select {
			case frame, ok := <-ch:
				if !ok {
					return
				}
				if err := conn.WriteMessage(websocket.TextMessage, frame); err != nil {
					return
				}
			case <-done:
				return
			}
		}
	})

	r.Handle("/metrics", promhttp.Handler())

	fmt.Printf("reval e2e benchmark server on %s\n", *addr)
	fmt.Printf("  GET  /state    current record\n")
	fmt.Printf("  POST /set      {\"value\": n} or {\"delta\": n}\n")
	fmt.Printf("  GET  /ws       change stream\n")
	fmt.Printf("  GET  /metrics  engine metrics\n")

	if err := http.ListenAndServe(*addr, r); err != nil {
		log.Fatal(err)
	}
}
