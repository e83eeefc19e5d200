package server

import (
	"errors"
	"fmt"
	"io"
	"log/slog"

	"github.com/kfcemployee/bgserver/server/engine"
	"github.com/kfcemployee/bgserver/server/errs"
	"github.com/kfcemployee/bgserver/server/protocol"
	"github.com/kfcemployee/bgserver/server/router"
	"github.com/kfcemployee/bgserver/server/site"
)

// New()              - config defaults, file store, transport and routes
// Listen()           - bind and listen, Addr() is valid after it
// Serve()            - accept loop, one goroutine per connection
// ServeConn(c)       - read -> parse -> route -> respond -> write -> close for one conn
// Close()            - stop accepting and release io_uring resources

var errNotListening = errors.New("not listening")

type Server struct {
	cfg Config
	log *slog.Logger

	prs   protocol.HTTPParser
	r     *router.HTTPRouter
	store site.Store
	tr    engine.Transport
	ln    *engine.Listener
}

func New(cfg Config) (*Server, error) {
	cfg.setDefaults()
	srv := &Server{
		cfg: cfg,
		log: cfg.Logger,
		prs: protocol.HTTPParser{MaxHead: cfg.MaxHeadSize},
	}

	switch cfg.Store {
	case StoreDir:
		srv.store = site.DirStore{Root: cfg.Root}
	case StoreUring:
		rs, err := site.NewRingStore(cfg.Root)
		if err != nil {
			return nil, err
		}
		srv.store = rs
	default:
		return nil, fmt.Errorf("unknown store %q", cfg.Store)
	}

	switch cfg.Transport {
	case TransportSyscall:
		srv.tr = engine.SyscallTransport{}
	case TransportUring:
		tr, err := engine.NewRingTransport()
		if err != nil {
			srv.closeStore()
			return nil, err
		}
		srv.tr = tr
	default:
		srv.closeStore()
		return nil, fmt.Errorf("unknown transport %q", cfg.Transport)
	}

	static := site.NewStatic(srv.store)
	upload := site.NewUpload(srv.store, srv.log)

	srv.r = router.NewHTTPRouter(static.Respond)
	srv.r.Route(site.UploadRoute, upload.Respond)
	return srv, nil
}

func (srv *Server) Listen() error {
	ln, err := engine.Listen(srv.cfg.Addr, srv.cfg.Port, srv.cfg.Backlog)
	if err != nil {
		return err
	}
	srv.ln = ln
	srv.log.Info("listening", "addr", ln.Addr(), "root", srv.cfg.Root,
		"transport", srv.cfg.Transport, "store", srv.cfg.Store)
	return nil
}

// bound address, empty before Listen
func (srv *Server) Addr() string {
	if srv.ln == nil {
		return ""
	}
	return srv.ln.Addr()
}

// blocks until Close
func (srv *Server) Serve() error {
	if srv.ln == nil {
		return errs.New(errs.IOFailure, "serve", errNotListening)
	}
	return engine.Serve(srv.ln, srv.tr, srv.log, srv.handleConn)
}

func (srv *Server) ListenAndServe() error {
	if err := srv.Listen(); err != nil {
		return err
	}
	return srv.Serve()
}

func (srv *Server) Close() error {
	var err error
	if srv.ln != nil {
		err = srv.ln.Close()
	}
	srv.tr.Close()
	srv.closeStore()
	return err
}

func (srv *Server) closeStore() {
	if c, ok := srv.store.(io.Closer); ok {
		c.Close()
	}
}

func (srv *Server) handleConn(c engine.Conn) {
	if err := srv.ServeConn(c); err != nil {
		srv.log.Warn("connection dropped", "kind", errs.KindOf(err).Error(), "err", err)
	}
}

// one full exchange on c, c is closed on return.
// on error nothing is written, the caller only logs
func (srv *Server) ServeConn(c engine.Conn) error {
	defer c.Close()

	s := engine.AcquireSession(srv.cfg.MaxMessageSize)
	defer engine.ReleaseSession(s)

	var req protocol.Request
	err := s.Fill(c, func(s *engine.Session) (bool, error) {
		return srv.prs.Feed(s, &req)
	})
	if err != nil {
		return err
	}

	srv.log.Debug("request",
		"method", string(req.Method),
		"path", string(req.Path),
		"boundary", string(req.Boundary),
		"content_length", req.ContentLength,
		"received", s.Offset)

	resp, err := srv.r.Serve(&req)(&req)
	if err != nil {
		return err
	}

	srv.log.Debug("response", "code", resp.Code, "bytes", len(resp.Body))
	return engine.WriteBuf(c, resp.AppendTo)
}
