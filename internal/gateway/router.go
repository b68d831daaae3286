package gateway

import (
	"net/http"
)

// Handler returns the gateway's full HTTP handler: public surface plus
// storage routes under the configured prefix, wrapped in the middleware
// chain.
func (s *Server) Handler() http.Handler {
	mux := http.NewServeMux()
	p := s.cfg.Prefix

	// Public surface
	mux.HandleFunc("GET /healthz", s.handleHealth)
	mux.HandleFunc("GET /hello", s.handleHello)
	mux.HandleFunc("GET /appointment", s.handleAppointments)
	mux.HandleFunc("GET "+p, s.handleRoot)

	// Bucket-level operations
	mux.HandleFunc("POST "+p+"/{bucket}", func(w http.ResponseWriter, r *http.Request) {
		s.handleCreateBucket(w, r, r.PathValue("bucket"))
	})
	mux.HandleFunc("GET "+p+"/{bucket}", func(w http.ResponseWriter, r *http.Request) {
		s.handleList(w, r, r.PathValue("bucket"))
	})
	mux.HandleFunc("POST "+p+"/{bucket}/upload", func(w http.ResponseWriter, r *http.Request) {
		s.handleUpload(w, r, r.PathValue("bucket"))
	})

	// Object-level operations
	mux.HandleFunc("GET "+p+"/{bucket}/download/{filename}", func(w http.ResponseWriter, r *http.Request) {
		s.handleDownload(w, r, r.PathValue("bucket"), r.PathValue("filename"))
	})
	mux.HandleFunc("DELETE "+p+"/{bucket}/{filename}", func(w http.ResponseWriter, r *http.Request) {
		s.handleDelete(w, r, r.PathValue("bucket"), r.PathValue("filename"))
	})
	mux.HandleFunc("GET "+p+"/{bucket}/link/{filename}", func(w http.ResponseWriter, r *http.Request) {
		s.handlePresign(w, r, r.PathValue("bucket"), r.PathValue("filename"), "")
	})
	mux.HandleFunc("GET "+p+"/{bucket}/link/{duration}/{filename}", func(w http.ResponseWriter, r *http.Request) {
		s.handlePresign(w, r, r.PathValue("bucket"), r.PathValue("filename"), r.PathValue("duration"))
	})

	return LogRequest(SlashFix(s.RequireAuthentication(Recoverer(mux))))
}
