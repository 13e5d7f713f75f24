package gateway

import (
	"context"
	"errors"
	"net"
	"net/http"
	"strconv"
	"sync"
	"time"

	ginzap "github.com/gin-contrib/zap"
	"github.com/gin-gonic/gin"
	reuseport "github.com/kavu/go_reuseport"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/multierr"
	"go.uber.org/zap"

	"github.com/luma/respwire/client"
	"github.com/luma/respwire/protocol"
)

type Options struct {
	// Host to listen on
	Host string

	// Port to listen for http requests on
	Port int

	// Client describes the server commands are forwarded to. Every request
	// gets its own connection.
	Client client.Options

	// DebugHTTP puts gin in debug mode
	DebugHTTP bool

	// Registry collects the gateway metrics. A new one is created when nil.
	Registry *prometheus.Registry

	Log *zap.Logger
}

// Server is an HTTP front end that forwards one command per request to a
// server and answers with the reply rendered as JSON.
type Server struct {
	options Options
	router  *gin.Engine
	metrics *metrics

	mu       sync.Mutex
	http     *http.Server
	listener net.Listener
	served   chan struct{}

	log *zap.Logger
}

func New(options Options) *Server {
	if options.Log == nil {
		options.Log = zap.NewNop()
	}

	if options.Registry == nil {
		options.Registry = prometheus.NewRegistry()
	}

	if options.Client.Log == nil {
		options.Client.Log = options.Log.Named("client")
	}

	s := &Server{
		options: options,
		metrics: newMetrics(options.Registry),
		log:     options.Log,
	}

	s.router = setupRouter(options.DebugHTTP, options.Log)

	// Ping test
	s.router.GET("/ping", func(c *gin.Context) {
		c.String(http.StatusOK, "pong")
	})

	s.router.POST("/query", s.query)
	s.router.GET("/metrics", gin.WrapH(promhttp.HandlerFor(options.Registry, promhttp.HandlerOpts{})))

	return s
}

func (s *Server) Handler() http.Handler {
	return s.router
}

// Start listens and serves in the background until Shutdown is called.
func (s *Server) Start(ctx context.Context) error {
	listener, err := reuseport.Listen("tcp", net.JoinHostPort(s.options.Host, strconv.Itoa(s.options.Port)))
	if err != nil {
		return err
	}

	s.mu.Lock()
	s.listener = listener
	s.served = make(chan struct{})
	s.http = &http.Server{
		Handler:     s.router,
		BaseContext: func(net.Listener) context.Context { return ctx },
	}
	s.mu.Unlock()

	s.log.Info("Listening", zap.String("addr", listener.Addr().String()))

	// Serving in a goroutine so that it won't block the graceful shutdown
	// handling of the caller
	go func() {
		defer close(s.served)

		if err := s.http.Serve(listener); err != nil && !errors.Is(err, http.ErrServerClosed) {
			s.log.Error("Http server errored", zap.Error(err))
		}
	}()

	return nil
}

// Addr returns the address the server is listening on, or an empty string
// before Start.
func (s *Server) Addr() string {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.listener == nil {
		return ""
	}

	return s.listener.Addr().String()
}

// Shutdown stops accepting requests and waits for in flight ones until ctx
// is done.
func (s *Server) Shutdown(ctx context.Context) error {
	s.mu.Lock()
	httpServer, served := s.http, s.served
	s.mu.Unlock()

	if httpServer == nil {
		return nil
	}

	httpServer.SetKeepAlivesEnabled(false)

	err := httpServer.Shutdown(ctx)
	if err != nil {
		err = multierr.Append(err, httpServer.Close())
	}

	select {
	case <-served:
	case <-ctx.Done():
		err = multierr.Append(err, ctx.Err())
	}

	return err
}

func (s *Server) query(c *gin.Context) {
	body, err := c.GetRawData()
	if err != nil {
		s.fail(c, http.StatusBadRequest, OutcomeBadRequest, "request", err)
		return
	}

	args, err := ParseArgs(body)
	if err != nil {
		s.fail(c, http.StatusBadRequest, OutcomeBadRequest, "request", err)
		return
	}

	ctx := c.Request.Context()
	start := time.Now()

	var reply protocol.Reply
	err = client.WithConn(ctx, s.options.Client, func(conn *client.Conn) (err error) {
		reply, err = conn.Do(ctx, args)
		return err
	})

	s.metrics.duration.Observe(time.Since(start).Seconds())

	switch {
	case err == nil:

	case protocol.IsServerError(err):
		s.fail(c, http.StatusUnprocessableEntity, OutcomeServerError, "server", err)
		return

	case protocol.IsProtocolError(err):
		s.fail(c, http.StatusBadGateway, OutcomeProtocolError, "protocol", err)
		return

	case errors.Is(err, context.Canceled), errors.Is(err, context.DeadlineExceeded):
		s.fail(c, http.StatusGatewayTimeout, OutcomeCommunicationError, "communication", err)
		return

	case protocol.IsCommunicationError(err):
		s.fail(c, http.StatusServiceUnavailable, OutcomeCommunicationError, "communication", err)
		return

	default:
		s.fail(c, http.StatusGatewayTimeout, OutcomeCommunicationError, "communication", err)
		return
	}

	rendered, err := RenderReply(reply)
	if err != nil {
		s.log.Error("Failed to render reply", zap.Error(err))
		c.Status(http.StatusInternalServerError)
		return
	}

	s.metrics.replies.WithLabelValues(reply.Kind.String()).Inc()
	c.Data(http.StatusOK, "application/json", rendered)
}

func (s *Server) fail(c *gin.Context, status int, outcome string, kind string, err error) {
	s.metrics.replies.WithLabelValues(outcome).Inc()
	c.Data(status, "application/json", RenderError(kind, err))
}

func setupRouter(debugHTTP bool, log *zap.Logger) *gin.Engine {
	gin.DisableConsoleColor()
	if !debugHTTP {
		gin.SetMode(gin.ReleaseMode)
	}

	r := gin.New()

	// Add a ginzap middleware, which:
	//   - Logs all requests, like a combined access and error log.
	//   - RFC3339 with UTC time format.
	r.Use(ginzap.GinzapWithConfig(log, &ginzap.Config{
		TimeFormat: time.RFC3339,
		UTC:        true,
		SkipPaths:  []string{"/ping", "/metrics"},
	}))

	// Logs all panic to error log
	//   - stack means whether output the stack info.
	r.Use(ginzap.RecoveryWithZap(log, true))

	return r
}
