package web

import (
	"encoding/json"
	"io"
	"mime"
	"net/http"
	"strings"

	"github.com/go-chi/chi/v5"

	"github.com/partstash/partstash/internal/bom"
	"github.com/partstash/partstash/internal/logging"
	"github.com/partstash/partstash/internal/web/middleware"
)

// handleImport ingests one BOM file for a project. The file arrives either
// as the raw request body or as a multipart "file" part; an optional
// designatorColumn query parameter overrides column discovery.
func (s *Server) handleImport(w http.ResponseWriter, r *http.Request) {
	user := middleware.UserFromContext(r.Context())
	project := chi.URLParam(r, "project")
	override := r.URL.Query().Get("designatorColumn")

	text, err := s.readUpload(w, r)
	if err != nil {
		s.respondError(w, r, err)
		return
	}

	res, err := s.service.Import(r.Context(), user, project, text, override)
	if err != nil {
		s.respondError(w, r, err)
		return
	}

	logging.FromContext(r.Context()).Info("import accepted",
		"project", project,
		"rows", res.Rows,
		"imported", res.Imported,
		"pending", res.Pending,
	)
	respondJSON(w, http.StatusCreated, res)
}

// readUpload extracts the BOM text from the request, honoring the
// configured size cap.
func (s *Server) readUpload(w http.ResponseWriter, r *http.Request) (string, error) {
	r.Body = http.MaxBytesReader(w, r.Body, s.cfg.Ingest.MaxFileSize)

	mediaType, _, _ := mime.ParseMediaType(r.Header.Get("Content-Type"))
	if strings.HasPrefix(mediaType, "multipart/") {
		file, _, err := r.FormFile("file")
		if err != nil {
			return "", err
		}
		defer file.Close()
		data, err := io.ReadAll(file)
		if err != nil {
			return "", err
		}
		return string(data), nil
	}

	data, err := io.ReadAll(r.Body)
	if err != nil {
		return "", err
	}
	return string(data), nil
}

func (s *Server) handleListComponents(w http.ResponseWriter, r *http.Request) {
	user := middleware.UserFromContext(r.Context())
	project := chi.URLParam(r, "project")

	comps, err := s.service.Components(r.Context(), user, project)
	if err != nil {
		s.respondError(w, r, err)
		return
	}
	respondJSON(w, http.StatusOK, map[string]any{"components": comps})
}

func (s *Server) handleGetComponent(w http.ResponseWriter, r *http.Request) {
	user := middleware.UserFromContext(r.Context())
	project := chi.URLParam(r, "project")
	id := chi.URLParam(r, "id")

	comp, err := s.service.Component(r.Context(), user, project, id)
	if err != nil {
		s.respondError(w, r, err)
		return
	}
	respondJSON(w, http.StatusOK, comp)
}

func (s *Server) handleUpdateComponent(w http.ResponseWriter, r *http.Request) {
	user := middleware.UserFromContext(r.Context())
	project := chi.URLParam(r, "project")
	id := chi.URLParam(r, "id")

	var req struct {
		Fields map[string]string `json:"fields"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondJSON(w, http.StatusBadRequest, ErrorResponse{Error: "invalid request body", Code: "BAD_REQUEST"})
		return
	}
	if len(req.Fields) == 0 {
		respondJSON(w, http.StatusBadRequest, ErrorResponse{Error: "fields must not be empty", Code: "BAD_REQUEST"})
		return
	}

	comp, err := s.service.UpdateComponent(r.Context(), user, project, id, req.Fields)
	if err != nil {
		s.respondError(w, r, err)
		return
	}
	respondJSON(w, http.StatusOK, comp)
}

func (s *Server) handleDeleteComponent(w http.ResponseWriter, r *http.Request) {
	user := middleware.UserFromContext(r.Context())
	project := chi.URLParam(r, "project")
	id := chi.URLParam(r, "id")

	if err := s.service.DeleteComponent(r.Context(), user, project, id); err != nil {
		s.respondError(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// handleFieldLock reports whether one field on a component is frozen by an
// assigned LPN.
func (s *Server) handleFieldLock(w http.ResponseWriter, r *http.Request) {
	user := middleware.UserFromContext(r.Context())
	project := chi.URLParam(r, "project")
	id := chi.URLParam(r, "id")

	field := r.URL.Query().Get("field")
	if field == "" {
		respondJSON(w, http.StatusBadRequest, ErrorResponse{Error: "field query parameter is required", Code: "BAD_REQUEST"})
		return
	}

	locked, err := s.service.IsLocked(r.Context(), user, project, id, field)
	if err != nil {
		s.respondError(w, r, err)
		return
	}
	respondJSON(w, http.StatusOK, map[string]any{"field": field, "locked": locked})
}

func (s *Server) handleAssignLPN(w http.ResponseWriter, r *http.Request) {
	user := middleware.UserFromContext(r.Context())
	project := chi.URLParam(r, "project")
	id := chi.URLParam(r, "id")

	assigned, err := s.service.AssignLPN(r.Context(), user, project, id)
	if err != nil {
		s.respondError(w, r, err)
		return
	}
	respondJSON(w, http.StatusOK, map[string]string{"id": id, "lpn": assigned})
}

func (s *Server) handleAssignLPNBatch(w http.ResponseWriter, r *http.Request) {
	user := middleware.UserFromContext(r.Context())
	project := chi.URLParam(r, "project")

	var req struct {
		IDs []string `json:"ids"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondJSON(w, http.StatusBadRequest, ErrorResponse{Error: "invalid request body", Code: "BAD_REQUEST"})
		return
	}
	if len(req.IDs) == 0 {
		respondJSON(w, http.StatusBadRequest, ErrorResponse{Error: "ids must not be empty", Code: "BAD_REQUEST"})
		return
	}

	res, err := s.service.AssignLPNBatch(r.Context(), user, project, req.IDs)
	if err != nil {
		s.respondError(w, r, err)
		return
	}
	respondJSON(w, http.StatusOK, res)
}

func (s *Server) handleListPending(w http.ResponseWriter, r *http.Request) {
	user := middleware.UserFromContext(r.Context())
	project := chi.URLParam(r, "project")

	pending, err := s.service.Pending(r.Context(), user, project)
	if err != nil {
		s.respondError(w, r, err)
		return
	}
	respondJSON(w, http.StatusOK, map[string]any{"pending": pending})
}

func (s *Server) handleResolve(w http.ResponseWriter, r *http.Request) {
	user := middleware.UserFromContext(r.Context())
	project := chi.URLParam(r, "project")

	var req struct {
		Resolutions map[string]bom.Policy `json:"resolutions"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondJSON(w, http.StatusBadRequest, ErrorResponse{Error: "invalid request body", Code: "BAD_REQUEST"})
		return
	}

	resolved, err := s.service.Resolve(r.Context(), user, project, req.Resolutions)
	if err != nil {
		s.respondError(w, r, err)
		return
	}
	respondJSON(w, http.StatusOK, map[string]any{"resolved": resolved})
}
