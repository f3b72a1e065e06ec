package http

import (
	"encoding/json"
	"io"
	"net/http"
	"sync"
	"time"

	"github.com/deadlinr/backend/deadline"
	"github.com/deadlinr/backend/logger"
)

const keepAliveInterval = 15 * time.Second

// streamCountdown sends the remaining time as server-sent events once per
// second. The stream ends with an "expired" event.
func (s *HttpServer) streamCountdown(w http.ResponseWriter, r *http.Request) {
	sess, ok := sessionOrFail(w, r)
	if !ok {
		return
	}
	id, ok := uuidParamOrFail(w, r, "deadlineID")
	if !ok {
		return
	}
	d, err := s.deadlineSrvc.GetDeadline(r.Context(), sess, id)
	if err != nil {
		handleError(w, r, err)
		return
	}

	flusher, ok := w.(http.Flusher)
	if !ok {
		http.Error(w, "Streaming unsupported!", http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "text/event-stream")
	w.Header().Set("Cache-Control", "no-cache")
	w.Header().Set("Connection", "keep-alive")

	var writeMutex sync.Mutex
	safeWrite := func(data string) {
		writeMutex.Lock()
		defer writeMutex.Unlock()
		io.WriteString(w, data)
		flusher.Flush()
	}

	stopKeepAlive := startKeepAlive(keepAliveInterval, func() {
		safeWrite(": keep-alive\n\n")
	})
	defer stopKeepAlive()

	timer := deadline.NewCountdownTimer(d.Due)
	timer.Now = s.Now
	if s.NewTicker != nil {
		timer.NewTicker = s.NewTicker
	}

	log := logger.FromContext(r.Context())
	err = timer.Run(r.Context(), func(c deadline.Countdown) {
		marshalled, err := json.Marshal(c)
		if err != nil {
			log.Error("failed to marshal countdown", "error", err)
			return
		}
		event := "countdown"
		if c.Expired {
			event = "expired"
		}
		safeWrite("event: " + event + "\ndata: " + string(marshalled) + "\n\n")
	})
	if err != nil {
		log.Debug("countdown stream closed by client", "deadline_id", d.ID, "error", err)
	}
}

// startKeepAlive calls ping every interval until the returned stop function
// is called. Once stop returns, ping is not running and will not run again.
func startKeepAlive(interval time.Duration, ping func()) (stop func()) {
	ticker := time.NewTicker(interval)
	done := make(chan struct{})
	var wg sync.WaitGroup
	wg.Add(1)
	go func() {
		defer wg.Done()
		for {
			select {
			case <-done:
				return
			case <-ticker.C:
				select {
				case <-done:
					return
				default:
				}
				ping()
			}
		}
	}()
	return func() {
		ticker.Stop()
		close(done)
		wg.Wait()
	}
}
