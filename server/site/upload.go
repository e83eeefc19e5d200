package site

import (
	"log/slog"

	"github.com/kfcemployee/bgserver/server/protocol"
)

const (
	UploadRoute    = "/upload_bg"
	UploadTarget   = "bg.jpg"
	UploadLocation = "/index.html"
)

// Upload replaces Target with the single part of a multipart POST
// and redirects to Location.
// Concurrent uploads are not serialized, the last write wins
type Upload struct {
	Store    Store
	Target   string
	Location string
	Marker   []byte // bytes right before the payload
	Log      *slog.Logger
}

func NewUpload(store Store, log *slog.Logger) *Upload {
	return &Upload{
		Store:    store,
		Target:   UploadTarget,
		Location: UploadLocation,
		Marker:   protocol.DefaultMarker,
		Log:      log,
	}
}

// non-POST only redirects; a body without the part is errs.MalformedMultipart
// and nothing is written; a failed write is logged and still redirects
func (u *Upload) Respond(req *protocol.Request) (*protocol.Response, error) {
	if req.IsMethod("POST") {
		part, err := protocol.Extract(req.Body, req.Boundary, u.Marker)
		if err != nil {
			return nil, err
		}

		if err := u.Store.WriteFile(u.Target, part.Of(req.Body)); err != nil {
			u.Log.Warn("upload not saved", "target", u.Target, "err", err)
		} else {
			u.Log.Info("upload saved", "target", u.Target, "bytes", part.Len())
		}
	}

	return protocol.SeeOther(u.Location), nil
}
