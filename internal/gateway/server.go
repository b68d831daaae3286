// Package gateway exposes object-storage operations over HTTP: bucket
// creation, multipart file upload, streamed download, listing, deletion, and
// presigned-URL issuance, all backed by an S3-compatible store.
package gateway

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"strconv"
	"strings"

	"gluon/internal/appointments"
	"gluon/internal/auth"
	"gluon/internal/store"
	"gluon/internal/transfer"
)

// DefaultPrefix is the path prefix for storage routes when none is
// configured.
const DefaultPrefix = "/storage"

type Config struct {
	// Prefix is the path prefix for storage routes, e.g. "/storage".
	Prefix string

	// Store is the backing object store. Required.
	Store store.ObjectStore

	// Auth gates non-public routes. nil disables authentication.
	Auth auth.AuthEngine

	// Metadata holds appointment records and upload tag entries. Optional;
	// nil disables the appointment surface and tag recording.
	Metadata *appointments.Store
}

// Server translates HTTP requests into transfer-engine calls and maps
// results and errors to status codes. It holds no mutable state of its own;
// the store is the only shared resource.
type Server struct {
	cfg    Config
	engine *transfer.Engine
}

// NewServer validates the configuration and returns a new Server.
func NewServer(cfg Config) (*Server, error) {
	if cfg.Store == nil {
		return nil, errors.New("Store must not be nil")
	}

	if cfg.Prefix == "" {
		cfg.Prefix = DefaultPrefix
	}
	cfg.Prefix = strings.TrimSuffix(cfg.Prefix, "/")

	return &Server{
		cfg:    cfg,
		engine: transfer.NewEngine(cfg.Store),
	}, nil
}

// writeText writes a plain-text response with the given status.
func writeText(w http.ResponseWriter, status int, message string) {
	w.Header().Set("Content-Type", "text/plain; charset=utf-8")
	w.WriteHeader(status)
	_, _ = w.Write([]byte(message))
}

// writeJSON encodes v as JSON with a 200 OK status.
func writeJSON(w http.ResponseWriter, v any) error {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusOK)
	return json.NewEncoder(w).Encode(v)
}

// ------ Public surface ------

func (s *Server) handleRoot(w http.ResponseWriter, r *http.Request) {
	writeText(w, http.StatusOK, "Storage Gateway")
}

func (s *Server) handleHello(w http.ResponseWriter, r *http.Request) {
	writeText(w, http.StatusOK, "Hello from APP")
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	writeText(w, http.StatusOK, "ok")
}

func (s *Server) handleAppointments(w http.ResponseWriter, r *http.Request) {
	if s.cfg.Metadata == nil {
		writeText(w, http.StatusServiceUnavailable, "metadata store not configured")
		return
	}

	list, err := s.cfg.Metadata.ListAppointments(r.Context())
	if err != nil {
		slog.Error("List appointments", "err", err)
		writeText(w, http.StatusInternalServerError, "Error: "+err.Error())
		return
	}

	if err := writeJSON(w, list); err != nil {
		slog.Error("Encode appointments", "err", err)
	}
}

// ------ Storage operations ------

// handleCreateBucket implements POST {prefix}/{bucket}. Creating a bucket
// that already exists is not an error: the second call succeeds with a 200
// and a Location header pointing back at the bucket.
func (s *Server) handleCreateBucket(w http.ResponseWriter, r *http.Request, bucket string) {
	err := s.cfg.Store.CreateBucket(r.Context(), bucket)
	switch {
	case err == nil:
		writeText(w, http.StatusCreated, "Bucket created successfully")
	case errors.Is(err, store.ErrBucketExists):
		w.Header().Set("Location", r.URL.String())
		writeText(w, http.StatusOK, "Bucket already exists")
	default:
		slog.Error("Create bucket", "bucket", bucket, "err", err)
		writeText(w, http.StatusInternalServerError, "Error: "+err.Error())
	}
}

// handleUpload implements POST {prefix}/{bucket}/upload. Every multipart
// part named "file" is written to the bucket under its filename; the parts
// are stored concurrently and the response lists the filenames written, in
// no particular order.
func (s *Server) handleUpload(w http.ResponseWriter, r *http.Request, bucket string) {
	if identity, ok := IdentityFromContext(r.Context()); ok {
		slog.Debug("Upload", "bucket", bucket, "subject", identity.Subject)
	}

	parts, err := r.MultipartReader()
	if err != nil {
		writeText(w, http.StatusInternalServerError, "Error: "+err.Error())
		return
	}

	filenames, err := s.engine.UploadParts(r.Context(), bucket, parts)
	if err != nil {
		slog.Error("Upload files", "bucket", bucket, "err", err)
		writeText(w, http.StatusInternalServerError, "Error: "+err.Error())
		return
	}

	s.recordUploadTags(r, bucket, filenames)

	writeText(w, http.StatusOK, "Uploaded files: "+strings.Join(filenames, ", "))
}

// recordUploadTags persists any X-tag header values against the uploaded
// filenames. Tags never affect storage; a failed insert is logged and the
// upload still succeeds.
func (s *Server) recordUploadTags(r *http.Request, bucket string, filenames []string) {
	if s.cfg.Metadata == nil {
		return
	}

	tags := r.Header.Values("X-tag")
	for _, tag := range tags {
		for _, filename := range filenames {
			if err := s.cfg.Metadata.RecordUploadTag(r.Context(), bucket, filename, tag); err != nil {
				slog.Warn("Record upload tag", "bucket", bucket, "filename", filename, "err", err)
			}
		}
	}
}

// handleList implements GET {prefix}/{bucket}, returning a JSON array of
// object keys.
func (s *Server) handleList(w http.ResponseWriter, r *http.Request, bucket string) {
	keys, err := s.cfg.Store.ListObjects(r.Context(), bucket)
	if err != nil {
		slog.Error("List objects", "bucket", bucket, "err", err)
		writeText(w, http.StatusInternalServerError, "Error: "+err.Error())
		return
	}

	if err := writeJSON(w, keys); err != nil {
		slog.Error("Encode object keys", "bucket", bucket, "err", err)
	}
}

// handleDownload implements GET {prefix}/{bucket}/download/{filename}. The
// object's stream is copied to the response as it arrives from the store;
// the whole object is never held in memory. Every failure on this path is
// reported as 404.
func (s *Server) handleDownload(w http.ResponseWriter, r *http.Request, bucket string, filename string) {
	info, body, err := s.engine.Download(r.Context(), bucket, filename)
	if err != nil {
		if !errors.Is(err, store.ErrNotFound) {
			slog.Error("Download file", "bucket", bucket, "filename", filename, "err", err)
		}
		writeText(w, http.StatusNotFound, "File not found: "+err.Error())
		return
	}
	defer body.Close()

	contentType := info.ContentType
	if contentType == "" {
		contentType = transfer.DefaultContentType
	}

	w.Header().Set("Content-Type", contentType)
	w.Header().Set("Content-Length", strconv.FormatInt(info.Size, 10))
	w.Header().Set("Content-Disposition", fmt.Sprintf("attachment; filename=%q", filename))

	w.WriteHeader(http.StatusOK)
	if _, err := io.Copy(w, body); err != nil {
		// Headers are gone; all we can do is log the truncated transfer.
		slog.Error("Stream object", "bucket", bucket, "filename", filename, "err", err)
	}
}

// handleDelete implements DELETE {prefix}/{bucket}/{filename}, returning 202
// once the store acknowledges the delete.
func (s *Server) handleDelete(w http.ResponseWriter, r *http.Request, bucket string, filename string) {
	if err := s.cfg.Store.DeleteObject(r.Context(), bucket, filename); err != nil {
		if !errors.Is(err, store.ErrNotFound) {
			slog.Error("Delete file", "bucket", bucket, "filename", filename, "err", err)
		}
		writeText(w, http.StatusNotFound, "File not found: "+err.Error())
		return
	}

	w.WriteHeader(http.StatusAccepted)
}

// handlePresign implements GET {prefix}/{bucket}/link/{filename} and
// GET {prefix}/{bucket}/link/{duration}/{filename}. rawDuration is an
// ISO-8601 duration string; empty means the default expiry.
func (s *Server) handlePresign(w http.ResponseWriter, r *http.Request, bucket string, filename string, rawDuration string) {
	url, err := s.engine.PresignGet(r.Context(), bucket, filename, rawDuration)
	if err != nil {
		slog.Error("Presign link", "bucket", bucket, "filename", filename, "duration", rawDuration, "err", err)
		writeText(w, http.StatusInternalServerError, "Error: "+err.Error())
		return
	}

	writeText(w, http.StatusOK, url)
}
