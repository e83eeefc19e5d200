// static pages and the background upload, both answer with protocol.Response
package site

import (
	"bytes"
	"errors"
	"path"

	"github.com/kfcemployee/bgserver/server/errs"
	"github.com/kfcemployee/bgserver/server/protocol"
)

const (
	IndexPage    = "index.html"
	NotFoundPage = "page_not_found.html"
)

// Static serves whole files from Store; a missing file becomes a 404
// carrying the NotFound page
type Static struct {
	Store    Store
	Index    string
	NotFound string
}

func NewStatic(store Store) *Static {
	return &Static{Store: store, Index: IndexPage, NotFound: NotFoundPage}
}

// map URL path to a store name: query cut, dot segments cleaned, / is the index
func (st *Static) Resolve(p []byte) string {
	if i := bytes.IndexByte(p, '?'); i != -1 {
		p = p[:i]
	}

	name := path.Clean("/" + string(p))
	if name == "/" {
		return st.Index
	}
	return name[1:]
}

func (st *Static) Respond(req *protocol.Request) (*protocol.Response, error) {
	name := st.Resolve(req.Path)

	body, err := st.Store.ReadFile(name)
	if err == nil {
		return protocol.OK(ContentType(name), body), nil
	}
	if !errors.Is(err, errs.FileNotFound) {
		return nil, err
	}

	body, err = st.Store.ReadFile(st.NotFound)
	if err != nil {
		return nil, errs.New(errs.IOFailure, "read not found page", err)
	}
	return protocol.NotFound(ContentType(st.NotFound), body), nil
}
