// Bgserver serves a directory over HTTP/1.1 and lets the page replace its
// background image through POST /upload_bg.
package main

import (
	"errors"
	"flag"
	"fmt"
	"log/slog"
	"net"
	"os"
	"os/signal"
	"syscall"

	"github.com/kfcemployee/bgserver/server"
	"github.com/kfcemployee/bgserver/server/engine"
)

// bgserver -root ./www
// bgserver -root ./www -transport uring -store uring -debug

func main() {
	var (
		addr  string
		debug bool
		cfg   = server.DefaultConfig()
	)
	flag.StringVar(&addr, "addr", "0.0.0.0", "ipv4 address to bind")
	flag.IntVar(&cfg.Port, "port", server.DefaultPort, "tcp port")
	flag.IntVar(&cfg.Backlog, "backlog", engine.DefaultBacklog, "listen backlog")
	flag.StringVar(&cfg.Root, "root", ".", "directory to serve")
	flag.IntVar(&cfg.MaxMessageSize, "max-size", server.DefaultMaxMessageSize, "max request size in bytes")
	flag.StringVar(&cfg.Transport, "transport", server.TransportSyscall, "socket i/o: syscall or uring")
	flag.StringVar(&cfg.Store, "store", server.StoreDir, "file i/o: os or uring")
	flag.BoolVar(&debug, "debug", false, "log every request")
	flag.Parse()

	ip := net.ParseIP(addr).To4()
	if ip == nil {
		fmt.Fprintf(os.Stderr, "bad ipv4 address %q\n", addr)
		os.Exit(2)
	}
	copy(cfg.Addr[:], ip)

	level := slog.LevelInfo
	if debug {
		level = slog.LevelDebug
	}
	cfg.Logger = slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: level}))

	srv, err := server.New(cfg)
	if err != nil {
		cfg.Logger.Error("init", "err", err)
		os.Exit(1)
	}

	sig := make(chan os.Signal, 1)
	signal.Notify(sig, syscall.SIGINT, syscall.SIGTERM)
	go func() {
		s := <-sig
		cfg.Logger.Info("shutting down", "signal", s.String())
		srv.Close()
	}()

	if err := srv.ListenAndServe(); err != nil && !errors.Is(err, net.ErrClosed) {
		cfg.Logger.Error("serve", "err", err)
		srv.Close()
		os.Exit(1)
	}
}
