// E2E load generator for the reval benchmark server.
// Connects a fleet of WebSocket subscribers, drives counter writes over
// HTTP at a fixed rate, and reports push latency percentiles measured from
// the server-side send timestamp.
package main

import (
	"bytes"
	"encoding/json"
	"flag"
	"fmt"
	"log"
	"net/http"
	"sort"
	"sync"
	"sync/atomic"
	"time"

	"github.com/gorilla/websocket"
)

type serverUpdate struct {
	Counter int   `json:"counter"`
	SentAt  int64 `json:"sent_at_unix_nano"`
}

type counters struct {
	setsSent       atomic.Uint64
	setFailures    atomic.Uint64
	framesReceived atomic.Uint64
}

func main() {
	httpURL := flag.String("http", "http://localhost:8766", "server base URL")
	wsURL := flag.String("ws", "ws://localhost:8766/ws", "WebSocket endpoint")
	clients := flag.Int("clients", 50, "concurrent WebSocket subscribers")
	rps := flag.Float64("rps", 20, "counter writes per second")
	duration := flag.Duration("duration", 15*time.Second, "load duration")
	flag.Parse()

	var (
		cnt       counters
		latMu     sync.Mutex
		latencies []time.Duration
	)

	stop := make(chan struct{})
	var wg sync.WaitGroup

	for i := 0; i < *clients; i++ {
		conn, _, err := websocket.DefaultDialer.Dial(*wsURL, nil)
		if err != nil {
			log.Fatalf("client %d: dial: %v", i, err)
		}
		wg.Add(1)
		go func(conn *websocket.Conn) {
			defer wg.Done()
			defer conn.Close()
			for {
				select {
				case <-stop:
					return
				default:
				}
				conn.SetReadDeadline(time.Now().Add(time.Second))
				_, frame, err := conn.ReadMessage()
				if err != nil {
					if websocket.IsUnexpectedCloseError(err) {
						return
					}
					continue
				}
				var u serverUpdate
				if json.Unmarshal(frame, &u) != nil || u.SentAt == 0 {
					continue
				}
				cnt.framesReceived.Add(1)
				lat := time.Since(time.Unix(0, u.SentAt))
				latMu.Lock()
				latencies = append(latencies, lat)
				latMu.Unlock()
			}
		}(conn)
	}

	// Writer: one POST /set per tick.
	wg.Add(1)
	go func() {
		defer wg.Done()
		ticker := time.NewTicker(time.Duration(float64(time.Second) / *rps))
		defer ticker.Stop()
		for {
			select {
			case <-stop:
				return
			case <-ticker.C:
				body := bytes.NewBufferString(`{"delta": 1}`)
				resp, err := http.Post(*httpURL+"/set", "application/json", body)
				if err != nil {
					cnt.setFailures.Add(1)
					continue
				}
				resp.Body.Close()
				if resp.StatusCode >= 300 {
					cnt.setFailures.Add(1)
					continue
				}
				cnt.setsSent.Add(1)
			}
		}
	}()

	time.Sleep(*duration)
	close(stop)
	wg.Wait()

	latMu.Lock()
	sort.Slice(latencies, func(a, b int) bool { return latencies[a] < latencies[b] })
	pct := func(p float64) time.Duration {
		if len(latencies) == 0 {
			return 0
		}
		return latencies[int(p*float64(len(latencies)-1))]
	}
	n := len(latencies)
	p50, p95, p99 := pct(0.50), pct(0.95), pct(0.99)
	latMu.Unlock()

	fmt.Printf("clients=%d rps=%.1f duration=%s\n", *clients, *rps, *duration)
	fmt.Printf("  sets sent:       %d (%d failed)\n", cnt.setsSent.Load(), cnt.setFailures.Load())
	fmt.Printf("  frames received: %d (%d samples)\n", cnt.framesReceived.Load(), n)
	fmt.Printf("  push latency:    p50=%s p95=%s p99=%s\n", p50, p95, p99)
}
