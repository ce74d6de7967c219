package server

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"sync"
	"time"

	"github.com/charmbracelet/log"
	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/gorilla/websocket"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/matzehuels/topoview/pkg/graph"
	"github.com/matzehuels/topoview/pkg/layout"
	"github.com/matzehuels/topoview/pkg/rendering"
	"github.com/matzehuels/topoview/pkg/selection"
	"github.com/matzehuels/topoview/pkg/sizing"
)

// Option configures a Server.
type Option func(*Server)

// WithLogger sets the logger. The default discards output.
func WithLogger(l *log.Logger) Option {
	return func(s *Server) {
		if l != nil {
			s.logger = l
		}
	}
}

// WithFPS sets the frame rate of the render loop.
func WithFPS(fps int) Option {
	return func(s *Server) { s.fps = fps }
}

// WithLayoutConfig sets the simulation parameters.
func WithLayoutConfig(c layout.Config) Option {
	return func(s *Server) { s.layoutCfg = c }
}

// WithDimmedOpacity sets the opacity of unselected entities.
func WithDimmedOpacity(v float64) Option {
	return func(s *Server) { s.dimmed = v }
}

// SessionHooks is notified when WebSocket sessions open and close.
type SessionHooks interface {
	OnSessionOpen()
	OnSessionClose()
}

// WithSessionHooks registers session callbacks, typically a metrics gauge.
func WithSessionHooks(h SessionHooks) Option {
	return func(s *Server) { s.sessionHooks = h }
}

// Server serves one live rendering over HTTP and WebSocket.
//
// The rendering is owned by a [rendering.Loop]; handlers reach it through
// [rendering.Loop.Do], so every mutation is serialised onto the loop
// goroutine.
type Server struct {
	logger       *log.Logger
	fps          int
	layoutCfg    layout.Config
	dimmed       float64
	sessionHooks SessionHooks

	loop      *rendering.Loop
	view      *rendering.Rendering
	container *sizing.ResizableContainer
	router    chi.Router
	upgrader  websocket.Upgrader

	mu       sync.Mutex
	sessions map[string]*session

	closeOnce sync.Once
}

// New starts a render loop, renders ds and builds the router.
func New(ds *graph.Dataset, opts ...Option) (*Server, error) {
	s := &Server{
		logger:    log.New(io.Discard),
		fps:       60,
		dimmed:    selection.DimmedOpacity,
		container: sizing.NewResizableContainer(),
		sessions:  make(map[string]*session),
		upgrader: websocket.Upgrader{
			ReadBufferSize:  1024,
			WriteBufferSize: 4096,
			CheckOrigin:     func(*http.Request) bool { return true },
		},
	}
	for _, opt := range opts {
		opt(s)
	}

	s.loop = rendering.NewLoop(s.fps, s.logger)
	var initErr error
	err := s.loop.Do(func() {
		view, err := rendering.New(s.container,
			rendering.WithLogger(s.logger),
			rendering.WithScheduler(s.loop),
			rendering.WithLayoutConfig(s.layoutCfg),
			rendering.WithDimmedOpacity(s.dimmed),
		)
		if err != nil {
			initErr = err
			return
		}
		if err := view.SetDataset(ds); err != nil {
			view.Close()
			initErr = err
			return
		}
		if err := view.Render(); err != nil {
			view.Close()
			initErr = err
			return
		}
		view.OnFrame(s.broadcast)
		s.view = view
	})
	if err == nil {
		err = initErr
	}
	if err != nil {
		s.loop.Stop()
		return nil, err
	}

	s.router = s.routes()
	return s, nil
}

func (s *Server) routes() chi.Router {
	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.Recoverer)
	r.Use(s.requestLogger)

	r.Get("/healthz", func(w http.ResponseWriter, _ *http.Request) {
		w.Write([]byte("ok\n"))
	})
	r.Handle("/metrics", promhttp.Handler())
	r.Get("/graph.svg", s.handleSVG)
	r.Get("/ws", s.handleWebSocket)

	r.Route("/api", func(r chi.Router) {
		r.Get("/state", s.handleState)
		r.Get("/frame", s.handleFrame)
		r.Put("/selection", s.handleSelection)
		r.Put("/size", s.handleSize)
		r.Put("/container", s.handleContainer)
		r.Put("/dataset", s.handleDataset)
		r.Post("/pin", s.handlePin)
		r.Delete("/pin/{id}", s.handleUnpin)
	})
	return r
}

func (s *Server) requestLogger(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)
		start := time.Now()
		next.ServeHTTP(ww, r)
		s.logger.Debug("request",
			"method", r.Method,
			"path", r.URL.Path,
			"status", ww.Status(),
			"duration", time.Since(start),
			"id", middleware.GetReqID(r.Context()))
	})
}

// ServeHTTP implements http.Handler.
func (s *Server) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	s.router.ServeHTTP(w, r)
}

// Do runs fn with the rendering on the loop goroutine.
func (s *Server) Do(fn func(*rendering.Rendering)) error {
	return s.loop.Do(func() { fn(s.view) })
}

// SetDataset replaces the served dataset, for example after a file change.
func (s *Server) SetDataset(ds *graph.Dataset) error {
	var err error
	if doErr := s.Do(func(v *rendering.Rendering) { err = v.SetDataset(ds) }); doErr != nil {
		return doErr
	}
	return err
}

// ListenAndServe serves on addr until ctx is cancelled, then shuts down
// gracefully and closes the server.
func (s *Server) ListenAndServe(ctx context.Context, addr string) error {
	srv := &http.Server{
		Addr:              addr,
		Handler:           s,
		ReadHeaderTimeout: 10 * time.Second,
	}
	errCh := make(chan error, 1)
	go func() {
		s.logger.Info("serving", "addr", addr)
		errCh <- srv.ListenAndServe()
	}()

	select {
	case err := <-errCh:
		s.Close()
		return err
	case <-ctx.Done():
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	err := srv.Shutdown(shutdownCtx)
	s.Close()
	return err
}

// Close disconnects all sessions, closes the rendering and stops the loop.
func (s *Server) Close() {
	s.closeOnce.Do(func() {
		s.mu.Lock()
		for _, sess := range s.sessions {
			sess.close()
		}
		s.mu.Unlock()
		_ = s.loop.Do(func() { s.view.Close() })
		s.loop.Stop()
	})
}

// broadcast runs on the loop goroutine after every frame.
func (s *Server) broadcast(f graph.Frame) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if len(s.sessions) == 0 {
		return
	}
	msg, err := json.Marshal(message{Type: msgFrame, Frame: &f})
	if err != nil {
		s.logger.Error("encode frame", "error", err)
		return
	}
	for _, sess := range s.sessions {
		sess.send(msg)
	}
}
