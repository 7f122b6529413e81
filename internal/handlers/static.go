package handlers

import "net/http"

// StaticHandler serves the viewer assets
type StaticHandler struct {
	fileServer http.Handler
}

// NewStaticHandler creates a handler serving static files from a directory
func NewStaticHandler(dir string) *StaticHandler {
	return &StaticHandler{
		fileServer: http.FileServer(http.Dir(dir)),
	}
}

func (sh *StaticHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	sh.fileServer.ServeHTTP(w, r)
}
