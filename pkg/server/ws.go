package server

import (
	"encoding/json"
	"net/http"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/gorilla/websocket"

	"github.com/matzehuels/topoview/pkg/errors"
	"github.com/matzehuels/topoview/pkg/graph"
	"github.com/matzehuels/topoview/pkg/rendering"
	"github.com/matzehuels/topoview/pkg/selection"
)

const (
	writeWait    = 10 * time.Second
	pongWait     = 60 * time.Second
	pingInterval = 54 * time.Second
	sendBuffer   = 16
)

// Message types exchanged over /ws.
const (
	msgHello   = "hello"   // server: session id and initial state
	msgFrame   = "frame"   // server: one rendered tick
	msgError   = "error"   // server: a client message was rejected
	msgSelect  = "select"  // client: replace the node selection
	msgResize  = "resize"  // client: container dimensions changed
	msgDrag    = "drag"    // client: pin a node at x, y
	msgRelease = "release" // client: unpin a node
)

// message is the envelope of every WebSocket message.
type message struct {
	Type    string       `json:"type"`
	Session string       `json:"session,omitempty"`
	State   *State       `json:"state,omitempty"`
	Frame   *graph.Frame `json:"frame,omitempty"`
	Error   string       `json:"error,omitempty"`

	Nodes  []int   `json:"nodes,omitempty"`
	ID     int     `json:"id,omitempty"`
	X      float64 `json:"x,omitempty"`
	Y      float64 `json:"y,omitempty"`
	Width  float64 `json:"width,omitempty"`
	Height float64 `json:"height,omitempty"`
}

// session is one WebSocket client. Frames are queued on out and written by
// a dedicated goroutine; a client that falls behind drops frames.
type session struct {
	id        string
	conn      *websocket.Conn
	out       chan []byte
	done      chan struct{}
	closeOnce sync.Once
}

// send queues a frame without blocking.
func (s *session) send(msg []byte) {
	select {
	case s.out <- msg:
	case <-s.done:
	default:
	}
}

func (s *session) close() {
	s.closeOnce.Do(func() {
		close(s.done)
		s.conn.Close()
	})
}

func (s *Server) handleWebSocket(w http.ResponseWriter, r *http.Request) {
	conn, err := s.upgrader.Upgrade(w, r, nil)
	if err != nil {
		s.logger.Warn("websocket upgrade failed", "error", err)
		return
	}
	sess := &session{
		id:   uuid.NewString(),
		conn: conn,
		out:  make(chan []byte, sendBuffer),
		done: make(chan struct{}),
	}

	var st State
	if err := s.Do(func(v *rendering.Rendering) { st = snapshot(v) }); err != nil {
		conn.Close()
		return
	}
	hello, _ := json.Marshal(message{Type: msgHello, Session: sess.id, State: &st})
	sess.out <- hello

	s.mu.Lock()
	s.sessions[sess.id] = sess
	s.mu.Unlock()
	if s.sessionHooks != nil {
		s.sessionHooks.OnSessionOpen()
	}
	s.logger.Debug("session opened", "session", sess.id)

	go s.writer(sess)
	s.reader(sess)

	s.mu.Lock()
	delete(s.sessions, sess.id)
	s.mu.Unlock()
	sess.close()
	if s.sessionHooks != nil {
		s.sessionHooks.OnSessionClose()
	}
	s.logger.Debug("session closed", "session", sess.id)
}

func (s *Server) writer(sess *session) {
	ticker := time.NewTicker(pingInterval)
	defer ticker.Stop()
	for {
		select {
		case msg := <-sess.out:
			sess.conn.SetWriteDeadline(time.Now().Add(writeWait))
			if err := sess.conn.WriteMessage(websocket.TextMessage, msg); err != nil {
				sess.close()
				return
			}
		case <-ticker.C:
			sess.conn.SetWriteDeadline(time.Now().Add(writeWait))
			if err := sess.conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				sess.close()
				return
			}
		case <-sess.done:
			return
		}
	}
}

func (s *Server) reader(sess *session) {
	sess.conn.SetReadDeadline(time.Now().Add(pongWait))
	sess.conn.SetPongHandler(func(string) error {
		return sess.conn.SetReadDeadline(time.Now().Add(pongWait))
	})
	for {
		var msg message
		if err := sess.conn.ReadJSON(&msg); err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseNormalClosure) {
				s.logger.Debug("session read failed", "session", sess.id, "error", err)
			}
			return
		}
		if err := s.dispatch(msg); err != nil {
			reply, _ := json.Marshal(message{Type: msgError, Error: err.Error()})
			select {
			case sess.out <- reply:
			case <-sess.done:
				return
			}
		}
	}
}

// dispatch applies one client message to the rendering.
func (s *Server) dispatch(msg message) error {
	if msg.Type == msgResize {
		if err := errors.ValidateGraphSize(msg.Width, msg.Height); err != nil {
			return err
		}
		s.container.Resize(msg.Width, msg.Height)
	}

	var opErr error
	err := s.Do(func(v *rendering.Rendering) {
		switch msg.Type {
		case msgSelect:
			opErr = v.SetNodeSelection(selection.NewNodeSet(msg.Nodes...))
		case msgResize:
			v.Resize()
		case msgDrag:
			opErr = v.Drag(msg.ID, msg.X, msg.Y)
		case msgRelease:
			opErr = v.Unpin(msg.ID)
		default:
			opErr = errors.New(errors.ErrCodeInvalidInput, "unknown message type %q", msg.Type)
		}
	})
	if err != nil {
		return err
	}
	return opErr
}
