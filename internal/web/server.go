package web

import (
	"context"
	"embed"
	"encoding/json"
	"errors"
	"io"
	"io/fs"
	"log"
	"net/http"
	"strconv"

	"github.com/coder/websocket"

	"github.com/peterkuimelis/omen/internal/deck"
	omennet "github.com/peterkuimelis/omen/internal/net"
)

//go:embed static
var staticFiles embed.FS

// Server is the omen web UI server. It serves one in-process session.
type Server struct {
	session *deck.Session
	width   float64 // default viewport width
	mux     *http.ServeMux
}

// NewServer creates a new web server for the session.
func NewServer(session *deck.Session, width float64) *Server {
	s := &Server{
		session: session,
		width:   width,
		mux:     http.NewServeMux(),
	}
	s.setupRoutes()
	return s
}

// Handler returns the HTTP handler for all routes.
func (s *Server) Handler() http.Handler {
	return s.mux
}

func (s *Server) setupRoutes() {
	// Embedded static files
	staticFS, _ := fs.Sub(staticFiles, "static")

	// Serve index.html at root
	s.mux.HandleFunc("GET /", func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/" {
			http.NotFound(w, r)
			return
		}
		w.Header().Set("Content-Type", "text/html; charset=utf-8")
		f, err := staticFS.Open("index.html")
		if err != nil {
			http.Error(w, "not found", http.StatusNotFound)
			return
		}
		defer f.Close()
		io.Copy(w, f.(io.Reader))
	})

	// Static CSS/JS
	s.mux.Handle("GET /static/", http.StripPrefix("/static/", http.FileServer(http.FS(staticFS))))

	// API endpoints
	s.mux.HandleFunc("GET /api/state", s.handleState)
	s.mux.HandleFunc("GET /api/events", s.handleEvents)
	s.mux.HandleFunc("GET /api/deck.yaml", s.handleDeckExport)
	s.mux.HandleFunc("POST /api/command", s.handleCommand)

	// Live updates
	s.mux.HandleFunc("GET /ws", s.handleWebSocket)
}

// viewportWidth reads ?width=, falling back to the server default.
func (s *Server) viewportWidth(r *http.Request) float64 {
	if v := r.URL.Query().Get("width"); v != "" {
		if w, err := strconv.ParseFloat(v, 64); err == nil && w >= deck.CardSize {
			return w
		}
	}
	return s.width
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(v)
}

func (s *Server) handleState(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, omennet.ServerMessage{
		Type:  "state",
		State: omennet.BuildStateView(s.session, s.viewportWidth(r)),
	})
}

func (s *Server) handleEvents(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, omennet.ServerMessage{
		Type:   "events",
		Events: omennet.EventViews(s.session.Events()),
	})
}

func (s *Server) handleCommand(w http.ResponseWriter, r *http.Request) {
	var msg omennet.ClientMessage
	if err := json.NewDecoder(r.Body).Decode(&msg); err != nil {
		writeJSON(w, http.StatusBadRequest, omennet.ServerMessage{Type: "error", Error: "invalid command JSON: " + err.Error()})
		return
	}
	if err := omennet.Apply(s.session, msg); err != nil {
		status := http.StatusBadRequest
		if errors.Is(err, deck.ErrInvalidState) {
			status = http.StatusConflict
		}
		writeJSON(w, status, omennet.ServerMessage{Type: "error", Error: err.Error()})
		return
	}
	width := s.width
	if msg.Width >= deck.CardSize {
		width = msg.Width
	}
	writeJSON(w, http.StatusOK, omennet.ServerMessage{
		Type:  "state",
		State: omennet.BuildStateView(s.session, width),
	})
}

func (s *Server) handleWebSocket(w http.ResponseWriter, r *http.Request) {
	wsConn, err := websocket.Accept(w, r, &websocket.AcceptOptions{
		InsecureSkipVerify: true, // Allow connections from any origin
	})
	if err != nil {
		log.Printf("WebSocket accept error: %v", err)
		return
	}
	defer wsConn.CloseNow()

	ctx, cancel := context.WithCancel(r.Context())
	defer cancel()

	changed, unsubscribe := s.session.Subscribe()
	defer unsubscribe()

	// Browser → session. Anything to send back goes through replies so the
	// loop below stays the only writer on the socket.
	replies := make(chan omennet.ServerMessage, 4)
	widths := make(chan float64, 1)
	reply := func(msg omennet.ServerMessage) {
		select {
		case replies <- msg:
		case <-ctx.Done():
		}
	}
	go func() {
		defer cancel()
		for {
			_, data, err := wsConn.Read(ctx)
			if err != nil {
				return
			}
			var msg omennet.ClientMessage
			if err := json.Unmarshal(data, &msg); err != nil {
				reply(omennet.ServerMessage{Type: "error", Error: "invalid command JSON: " + err.Error()})
				continue
			}
			if msg.Width >= deck.CardSize {
				select {
				case <-widths:
				default:
				}
				widths <- msg.Width
			}
			if err := omennet.Apply(s.session, msg); err != nil {
				reply(omennet.ServerMessage{Type: "error", Error: err.Error()})
				continue
			}
			if msg.Type == omennet.CmdState {
				reply(omennet.ServerMessage{Type: "refresh"})
			}
		}
	}()

	width := s.viewportWidth(r)
	send := func(msg omennet.ServerMessage) error {
		data, err := json.Marshal(msg)
		if err != nil {
			return err
		}
		return wsConn.Write(ctx, websocket.MessageText, data)
	}
	// A command's width is queued before the command runs, so picking it up
	// here keeps the state it triggered at the width it asked for.
	sendState := func() error {
		select {
		case nw := <-widths:
			width = nw
		default:
		}
		return send(omennet.ServerMessage{Type: "state", State: omennet.BuildStateView(s.session, width)})
	}

	if err := sendState(); err != nil {
		log.Printf("WebSocket write error: %v", err)
		return
	}

	// Session → browser
	for {
		select {
		case <-ctx.Done():
			wsConn.Close(websocket.StatusNormalClosure, "session closed")
			return
		case nw := <-widths:
			width = nw
		case msg := <-replies:
			if msg.Type == "refresh" {
				err = sendState()
			} else {
				err = send(msg)
			}
		case _, ok := <-changed:
			if !ok {
				wsConn.Close(websocket.StatusGoingAway, "session closed")
				return
			}
			err = sendState()
		}
		if err != nil {
			log.Printf("WebSocket write error: %v", err)
			return
		}
	}
}

// ListenAndServe starts the HTTP server.
func (s *Server) ListenAndServe(addr string) error {
	return http.ListenAndServe(addr, s.mux)
}
