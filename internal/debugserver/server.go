// Package debugserver exposes the explorer, console and watches over HTTP.
// Handlers never touch the scene themselves; every read or write runs on
// the frame loop through a Scheduler.
package debugserver

import (
	"bytes"
	"context"
	"errors"
	"io"
	"net/http"
	"strconv"
	"time"

	"scenedebug/internal/console"
	"scenedebug/internal/frame"
	"scenedebug/internal/inspect"
	"scenedebug/internal/watch"

	"github.com/goccy/go-json"
	"github.com/gorilla/websocket"
	log "github.com/sirupsen/logrus"
)

const (
	maxCommandBytes = 64 << 10
	writeWait       = 5 * time.Second
	streamBuffer    = 256
	maxTreeDepth    = 8
)

// Scheduler runs fn on the frame loop and waits for it.
type Scheduler interface {
	Do(ctx context.Context, fn func()) error
}

type Server struct {
	frame    Scheduler
	console  *console.Console
	upgrader websocket.Upgrader
	http     *http.Server
}

func New(sched Scheduler, c *console.Console) *Server {
	s := &Server{
		frame:   sched,
		console: c,
		upgrader: websocket.Upgrader{
			CheckOrigin: func(_ *http.Request) bool { return true },
		},
	}
	return s
}

func (s *Server) Handler() http.Handler {
	mux := http.NewServeMux()
	mux.HandleFunc("GET /debug/tree", s.handleTree)
	mux.HandleFunc("POST /debug/console", s.handleConsole)
	mux.HandleFunc("GET /debug/watches", s.handleWatches)
	mux.HandleFunc("GET /debug/history", s.handleHistory)
	mux.HandleFunc("GET /debug/stream", s.handleStream)
	return mux
}

// ListenAndServe serves on addr until ctx is cancelled.
func (s *Server) ListenAndServe(ctx context.Context, addr string) error {
	s.http = &http.Server{Addr: addr, Handler: s.Handler(), ReadHeaderTimeout: 5 * time.Second}
	errc := make(chan error, 1)
	go func() { errc <- s.http.ListenAndServe() }()
	log.WithField("addr", addr).Info("Debug server listening")

	select {
	case err := <-errc:
		return err
	case <-ctx.Done():
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
		defer cancel()
		if err := s.http.Shutdown(shutdownCtx); err != nil {
			return err
		}
		if err := <-errc; !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		return nil
	}
}

type errorResponse struct {
	Error string `json:"error"`
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		log.WithError(err).Debug("Failed to write response")
	}
}

func writeError(w http.ResponseWriter, status int, err error) {
	writeJSON(w, status, errorResponse{Error: err.Error()})
}

// do runs fn on the frame loop. A panic in fn answers 500, a loop that is
// gone or a cancelled request 503.
func (s *Server) do(w http.ResponseWriter, r *http.Request, fn func()) bool {
	err := s.frame.Do(r.Context(), fn)
	switch {
	case err == nil:
		return true
	case errors.Is(err, frame.ErrPanicked):
		log.WithError(err).WithField("url", r.URL.String()).Error("Debug request panicked")
		writeError(w, http.StatusInternalServerError, err)
	default:
		writeError(w, http.StatusServiceUnavailable, err)
	}
	return false
}

func (s *Server) handleTree(w http.ResponseWriter, r *http.Request) {
	path := r.URL.Query().Get("path")
	depth := 0
	if d := r.URL.Query().Get("depth"); d != "" {
		n, err := strconv.Atoi(d)
		if err != nil || n < 0 {
			writeError(w, http.StatusBadRequest, errors.New("depth must be a non-negative integer"))
			return
		}
		depth = min(n, maxTreeDepth)
	}

	var (
		nodes []*inspect.Node
		err   error
	)
	ok := s.do(w, r, func() {
		x := s.console.Explorer
		if path == "" {
			nodes = x.Build()
			return
		}
		c, perr := inspect.ParsePath(x.Scene(), path, x.Options().MaxDepth)
		if perr != nil {
			err = perr
			return
		}
		nodes = []*inspect.Node{x.BuildTree(c, depth)}
	})
	if !ok {
		return
	}
	switch {
	case errors.Is(err, inspect.ErrNotFound):
		writeError(w, http.StatusNotFound, err)
	case err != nil:
		writeError(w, http.StatusBadRequest, err)
	default:
		writeJSON(w, http.StatusOK, nodes)
	}
}

type consoleRequest struct {
	Command string `json:"command"`
}

type consoleResponse struct {
	Output string `json:"output"`
	Error  string `json:"error,omitempty"`
}

func (s *Server) handleConsole(w http.ResponseWriter, r *http.Request) {
	defer r.Body.Close()
	body, err := io.ReadAll(io.LimitReader(r.Body, maxCommandBytes))
	if err != nil {
		writeError(w, http.StatusBadRequest, err)
		return
	}
	var req consoleRequest
	if err := json.Unmarshal(body, &req); err != nil {
		writeError(w, http.StatusBadRequest, err)
		return
	}

	var (
		out    bytes.Buffer
		cmdErr error
	)
	if !s.do(w, r, func() { cmdErr = s.console.Exec(&out, req.Command) }) {
		return
	}
	resp := consoleResponse{Output: out.String()}
	status := http.StatusOK
	if cmdErr != nil {
		resp.Error = cmdErr.Error()
		status = http.StatusUnprocessableEntity
	}
	writeJSON(w, status, resp)
}

func (s *Server) handleWatches(w http.ResponseWriter, r *http.Request) {
	var snap []watch.Watch
	if !s.do(w, r, func() { snap = s.console.Watches.Snapshot() }) {
		return
	}
	if snap == nil {
		snap = []watch.Watch{}
	}
	writeJSON(w, http.StatusOK, snap)
}

// handleHistory reads the history directly; it is the one structure that
// is safe off the frame loop.
func (s *Server) handleHistory(w http.ResponseWriter, r *http.Request) {
	n := -1
	if v := r.URL.Query().Get("n"); v != "" {
		parsed, err := strconv.Atoi(v)
		if err != nil || parsed < 0 {
			writeError(w, http.StatusBadRequest, errors.New("n must be a non-negative integer"))
			return
		}
		n = parsed
	}
	writeJSON(w, http.StatusOK, s.console.History.Tail(n))
}

// handleStream pushes every console message to a websocket client until
// either side goes away.
func (s *Server) handleStream(w http.ResponseWriter, r *http.Request) {
	conn, err := s.upgrader.Upgrade(w, r, nil)
	if err != nil {
		log.WithError(err).Debug("Websocket upgrade failed")
		return
	}
	defer conn.Close()

	msgs, cancel := s.console.History.Subscribe(streamBuffer)
	defer cancel()

	// Reading is only needed to notice the client closing.
	closed := make(chan struct{})
	go func() {
		defer close(closed)
		for {
			if _, _, err := conn.ReadMessage(); err != nil {
				return
			}
		}
	}()

	for {
		select {
		case m, ok := <-msgs:
			if !ok {
				return
			}
			_ = conn.SetWriteDeadline(time.Now().Add(writeWait))
			if err := conn.WriteJSON(m); err != nil {
				return
			}
		case <-closed:
			return
		case <-r.Context().Done():
			return
		}
	}
}
