package progress

import (
	"context"
	"fmt"
	"html/template"
	"io"
	"log"
	"net/http"
	"time"

	"github.com/gorilla/mux"
	"github.com/gorilla/websocket"
	"golang.org/x/sync/errgroup"
)

var upgrader = websocket.Upgrader{}

const (
	writeWait      = 1 * time.Second
	pubResolution  = 250 * time.Millisecond
	pingResolution = 500 * time.Millisecond
)

// Server exposes the dashboard index page and a websocket stream of
// Updates, routed through gorilla/mux.
type Server struct {
	addr        string
	broadcaster *Broadcaster
	router      *mux.Router
}

// NewServer wires the dashboard's routes. broadcaster is published to by
// the training loop's Progress callback.
func NewServer(addr string, broadcaster *Broadcaster) *Server {
	s := &Server{addr: addr, broadcaster: broadcaster, router: mux.NewRouter()}
	s.router.HandleFunc("/", s.serveIndex).Methods(http.MethodGet)
	s.router.HandleFunc("/ws", s.serveWebsocket).Methods(http.MethodGet)
	s.router.HandleFunc("/healthz", s.serveHealthz).Methods(http.MethodGet)
	return s
}

// Serve blocks, serving the dashboard until the process exits.
func (s *Server) Serve() error {
	if err := http.ListenAndServe(s.addr, s.router); err != nil {
		return fmt.Errorf("serve: %w", err)
	}
	return nil
}

func (s *Server) serveIndex(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "text/html")
	if err := indexTemplate.Execute(w, nil); err != nil {
		_, _ = io.WriteString(w, err.Error())
	}
}

func (s *Server) serveHealthz(w http.ResponseWriter, r *http.Request) {
	w.WriteHeader(http.StatusOK)
	_, _ = io.WriteString(w, "ok")
}

func (s *Server) serveWebsocket(w http.ResponseWriter, r *http.Request) {
	ws, err := upgrader.Upgrade(w, r, nil)
	if err != nil {
		http.Error(w, err.Error(), http.StatusInternalServerError)
		log.Println("upgrade:", err)
		return
	}
	defer s.closeWebsocket(ws)
	s.publishUpdates(r.Context(), ws)
}

// publishUpdates runs the connection's read pump and publish loop under one
// errgroup: either goroutine returning cancels the shared context, tearing
// down the other, so neither a dead client nor a write failure leaks a
// goroutine.
func (s *Server) publishUpdates(ctx context.Context, ws *websocket.Conn) {
	sub, initial := s.broadcaster.Subscribe()
	defer s.broadcaster.Unsubscribe(sub)

	g, gctx := errgroup.WithContext(ctx)

	pong := make(chan struct{})
	ws.SetPongHandler(func(string) error {
		select {
		case pong <- struct{}{}:
		case <-gctx.Done():
		}
		return nil
	})

	g.Go(func() error {
		for {
			if _, _, err := ws.ReadMessage(); err != nil {
				return err
			}
			select {
			case <-gctx.Done():
				return gctx.Err()
			default:
			}
		}
	})

	g.Go(func() error {
		if err := s.writeUpdate(ws, initial); err != nil {
			return err
		}

		ticker := time.NewTicker(pingResolution)
		defer ticker.Stop()
		lastPong := time.Now()
		last := time.Now()

		for {
			select {
			case <-gctx.Done():
				return gctx.Err()
			case <-ticker.C:
				if time.Since(lastPong) > pingResolution*2 {
					return fmt.Errorf("ping timeout")
				}
				if err := ws.WriteControl(websocket.PingMessage, nil, time.Now().Add(writeWait)); err != nil {
					return err
				}
			case <-pong:
				lastPong = time.Now()
			case update, ok := <-sub:
				if !ok {
					return nil
				}
				if time.Since(last) < pubResolution {
					continue
				}
				last = time.Now()
				if err := s.writeUpdate(ws, update); err != nil {
					return err
				}
			}
		}
	})

	_ = g.Wait()
}

func (s *Server) writeUpdate(ws *websocket.Conn, update Update) error {
	if err := ws.SetWriteDeadline(time.Now().Add(writeWait)); err != nil {
		return err
	}
	return ws.WriteJSON(update)
}

func (s *Server) closeWebsocket(ws *websocket.Conn) {
	_ = ws.SetWriteDeadline(time.Now().Add(writeWait))
	_ = ws.WriteMessage(websocket.CloseMessage, websocket.FormatCloseMessage(websocket.CloseNormalClosure, ""))
	ws.Close()
}

var indexTemplate = template.Must(template.New("index").Parse(`<!doctype html>
<html>
<head><title>psychometric duel training</title></head>
<body>
<h1>Psychometric Duel — training progress</h1>
<pre id="status">connecting...</pre>
<script>
const ws = new WebSocket("ws://" + location.host + "/ws");
ws.onmessage = (ev) => {
  document.getElementById("status").textContent = JSON.stringify(JSON.parse(ev.data), null, 2);
};
</script>
</body>
</html>
`))
