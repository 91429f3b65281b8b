// Package watch implements the live-reload dev server behind `sugarc
// watch`: it re-lexes/parses/lowers/idealizes/schedules a source file
// every time its mtime changes and pushes a fresh graphviz dump to
// connected browser clients over a websocket.
//
// WebSocket server/client bookkeeping is grounded on
// _examples/sentra-language-sentra/internal/network/websocket.go
// (WebSocketServer/Clients map, one goroutine per connection).
package watch

import (
	"log"
	"net/http"
	"os"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/gorilla/websocket"
)

// Update is one pushed frame: the graphviz dump of the post-idealization
// MIR plus the GCM block listing, regenerated on every file change.
type Update struct {
	Graphviz  string `json:"graphviz"`
	BlockList string `json:"blockList"`
	Err       string `json:"error,omitempty"`
}

// Compile re-runs the pipeline on source and renders an Update. Supplied
// by cmd/sugarc, which wraps internal/compiler.Compile, so watch never
// imports the compiler packages directly.
type Compile func(source string) Update

// Server pushes Updates to connected clients whenever path's contents
// change, polling mtime rather than using an OS-level filesystem
// notifier — the teacher's own network package has no fsnotify-style
// dependency to reach for, and a single watched file doesn't need one.
type Server struct {
	path    string
	compile Compile

	upgrader websocket.Upgrader

	mu      sync.RWMutex
	clients map[uuid.UUID]chan Update
}

func NewServer(path string, compile Compile) *Server {
	return &Server{
		path:    path,
		compile: compile,
		upgrader: websocket.Upgrader{
			ReadBufferSize:  1024,
			WriteBufferSize: 1024,
			CheckOrigin:     func(r *http.Request) bool { return true },
		},
		clients: make(map[uuid.UUID]chan Update),
	}
}

// ServeHTTP upgrades the connection and assigns it a fresh session id,
// which keys its entry in the client map and tags its log lines. A
// client that reconnects gets a new id; nothing links it to its earlier
// session.
func (s *Server) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	conn, err := s.upgrader.Upgrade(w, r, nil)
	if err != nil {
		log.Printf("watch: upgrade failed: %v", err)
		return
	}

	id := uuid.New()
	ch := make(chan Update, 4)

	s.mu.Lock()
	s.clients[id] = ch
	s.mu.Unlock()

	log.Printf("watch: session %s connected", id)

	defer func() {
		s.mu.Lock()
		delete(s.clients, id)
		s.mu.Unlock()
		conn.Close()
		log.Printf("watch: session %s disconnected", id)
	}()

	for update := range ch {
		if err := conn.WriteJSON(update); err != nil {
			return
		}
	}
}

// Run polls path for changes and broadcasts a fresh Update to every
// connected client on each change, plus once immediately on startup. It
// blocks until ctx-equivalent stop channel closes; callers typically run
// it in its own goroutine alongside an http.Server serving s.
func (s *Server) Run(stop <-chan struct{}, pollInterval time.Duration) {
	s.broadcastOnce()

	var lastMod time.Time
	if info, err := os.Stat(s.path); err == nil {
		lastMod = info.ModTime()
	}

	ticker := time.NewTicker(pollInterval)
	defer ticker.Stop()

	for {
		select {
		case <-stop:
			return
		case <-ticker.C:
			info, err := os.Stat(s.path)
			if err != nil {
				continue
			}
			if info.ModTime().After(lastMod) {
				lastMod = info.ModTime()
				s.broadcastOnce()
			}
		}
	}
}

func (s *Server) broadcastOnce() {
	source, err := os.ReadFile(s.path)
	var update Update
	if err != nil {
		update = Update{Err: err.Error()}
	} else {
		update = s.compile(string(source))
	}

	s.mu.RLock()
	defer s.mu.RUnlock()
	for id, ch := range s.clients {
		select {
		case ch <- update:
		default:
			log.Printf("watch: session %s is backed up, dropping update", id)
		}
	}
}
