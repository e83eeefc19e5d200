package server

import (
	"log/slog"
	"os"

	"github.com/kfcemployee/bgserver/server/engine"
	"github.com/kfcemployee/bgserver/server/protocol"
)

const (
	DefaultPort           = 8080
	DefaultMaxMessageSize = 1200000

	TransportSyscall = "syscall"
	TransportUring   = "uring"

	StoreDir   = "os"
	StoreUring = "uring"
)

// Config for server limits, sockets and file backends;
// start from DefaultConfig, Port 0 listens on a free port
type Config struct {
	Addr    [4]byte
	Port    int
	Backlog int

	Root string // serving directory

	MaxMessageSize int // head + body
	MaxHeadSize    int

	Transport string // TransportSyscall or TransportUring
	Store     string // StoreDir or StoreUring

	Logger *slog.Logger
}

func DefaultConfig() Config {
	return Config{
		Port:           DefaultPort,
		Backlog:        engine.DefaultBacklog,
		Root:           ".",
		MaxMessageSize: DefaultMaxMessageSize,
		MaxHeadSize:    protocol.DefaultMaxHead,
		Transport:      TransportSyscall,
		Store:          StoreDir,
		Logger:         slog.New(slog.NewTextHandler(os.Stderr, nil)),
	}
}

// fill zero values except Port
func (c *Config) setDefaults() {
	def := DefaultConfig()

	if c.Backlog <= 0 {
		c.Backlog = def.Backlog
	}
	if c.Root == "" {
		c.Root = def.Root
	}
	if c.MaxMessageSize <= 0 {
		c.MaxMessageSize = def.MaxMessageSize
	}
	if c.MaxHeadSize <= 0 {
		c.MaxHeadSize = def.MaxHeadSize
	}
	if c.Transport == "" {
		c.Transport = def.Transport
	}
	if c.Store == "" {
		c.Store = def.Store
	}
	if c.Logger == nil {
		c.Logger = def.Logger
	}
}
