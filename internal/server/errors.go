package server

import (
	"bytes"
	"fmt"
	"net/http"
	"runtime/debug"
)

func (s *Server) serverError(w http.ResponseWriter, err error) {
	s.errorLog.Output(2, fmt.Sprintf("%s\n%s", err.Error(), debug.Stack()))
	http.Error(w, http.StatusText(http.StatusInternalServerError), http.StatusInternalServerError)
}

func (s *Server) notFound(w http.ResponseWriter) {
	s.mu.Lock()
	rd := s.renderer
	s.mu.Unlock()

	var buf bytes.Buffer
	if err := rd.RenderNotFound(&buf); err != nil {
		s.serverError(w, err)
		return
	}
	writePage(w, cachedPage{status: http.StatusNotFound, body: buf.Bytes()})
}
