package site

import (
	"os"
	"path/filepath"

	"github.com/kfcemployee/bgserver/server/errs"
)

// Store reads and writes whole files by slash-separated name under a root
type Store interface {
	// ReadFile fails with errs.FileNotFound if name is not a readable file
	// and with errs.IOFailure if reading it fails after open
	ReadFile(name string) ([]byte, error)
	// WriteFile creates or truncates name
	WriteFile(name string, data []byte) error
}

// DirStore is a Store on the os file API
type DirStore struct {
	Root string
}

func (d DirStore) path(name string) string {
	return filepath.Join(d.Root, filepath.FromSlash(name))
}

func (d DirStore) ReadFile(name string) ([]byte, error) {
	b, err := os.ReadFile(d.path(name))
	if err != nil {
		return nil, errs.New(errs.FileNotFound, "read "+name, err)
	}
	return b, nil
}

func (d DirStore) WriteFile(name string, data []byte) error {
	if err := os.WriteFile(d.path(name), data, 0o644); err != nil {
		return errs.New(errs.IOFailure, "write "+name, err)
	}
	return nil
}
