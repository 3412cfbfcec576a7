package server

import "net/http"

// NewRouter wires HTTP routes to the server's handlers.
func NewRouter(s *Server) http.Handler {
	mux := http.NewServeMux()
	mux.HandleFunc("/inspect", s.handleInspect)
	mux.HandleFunc("/detect", s.handleDetect)
	mux.HandleFunc("/fix", s.handleFix)
	mux.HandleFunc("/manifest", s.handleManifest)
	mux.HandleFunc("/geometries", s.handleGeometries)
	mux.HandleFunc("/upload", s.handleUpload)
	mux.HandleFunc("/artifacts", s.handleArtifactList)
	mux.HandleFunc("/artifacts/", s.handleArtifactDownload)
	return mux
}
