package server

import (
	"encoding/json"
	"errors"
	"net/http"
	"os"
	"path/filepath"
	"strconv"

	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"

	"github.com/hyperjump/mixingcompass/internal/config"
	"github.com/hyperjump/mixingcompass/internal/hsp"
	"github.com/hyperjump/mixingcompass/internal/models"
	"github.com/hyperjump/mixingcompass/internal/storage"
)

func (s *Server) handleMixture(w http.ResponseWriter, r *http.Request) {
	var req models.MixtureRequest
	if !s.decode(w, r, &req) {
		return
	}
	s.logger.Debug("mixture request", zap.Int("components", len(req.Components)))
	result, err := s.engine.Mix(r.Context(), &req)
	if err != nil {
		s.fail(w, "mixture failed", err)
		return
	}
	s.respondJSON(w, http.StatusOK, result)
}

func (s *Server) handleRED(w http.ResponseWriter, r *http.Request) {
	var req models.REDRequest
	if !s.decode(w, r, &req) {
		return
	}
	s.logger.Debug("red request", zap.Int("solvents", len(req.Solvents)), zap.Bool("all", req.All))
	result, err := s.engine.RED(r.Context(), &req)
	if err != nil {
		s.fail(w, "red failed", err)
		return
	}
	s.respondJSON(w, http.StatusOK, result)
}

func (s *Server) handleScene(w http.ResponseWriter, r *http.Request) {
	var req models.SceneRequest
	if !s.decode(w, r, &req) {
		return
	}
	s.logger.Debug("scene request",
		zap.Bool("comparison", req.Target2 != nil),
		zap.Int("solvents", len(req.Solvents)),
		zap.Bool("all_solvents", req.AllSolvents))
	result, err := s.engine.Scene(r.Context(), &req)
	if err != nil {
		s.fail(w, "scene failed", err)
		return
	}
	s.respondJSON(w, http.StatusOK, result)
}

func (s *Server) handleSearchSolvents(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	query := models.SolventQuery{Query: q.Get("q")}
	var err error
	if v := q.Get("limit"); v != "" {
		if query.Limit, err = strconv.Atoi(v); err != nil {
			s.respondError(w, http.StatusBadRequest, "limit must be an integer")
			return
		}
	}
	if v := q.Get("offset"); v != "" {
		if query.Offset, err = strconv.Atoi(v); err != nil {
			s.respondError(w, http.StatusBadRequest, "offset must be an integer")
			return
		}
	}
	if v := q.Get("fuzzy"); v != "" {
		if query.Fuzzy, err = strconv.ParseBool(v); err != nil {
			s.respondError(w, http.StatusBadRequest, "fuzzy must be a boolean")
			return
		}
	}
	s.logger.Debug("search request", zap.String("query", query.Query), zap.Int("limit", query.Limit))
	response, err := s.engine.SearchSolvents(r.Context(), &query)
	if err != nil {
		s.fail(w, "search failed", err)
		return
	}
	s.respondJSON(w, http.StatusOK, response)
}

func (s *Server) handleGetSolvent(w http.ResponseWriter, r *http.Request) {
	solvent, err := s.engine.Lookup(r.Context(), chi.URLParam(r, "name"))
	if err != nil {
		s.fail(w, "lookup failed", err)
		return
	}
	s.respondJSON(w, http.StatusOK, solvent)
}

func (s *Server) handleUpsertSolvent(w http.ResponseWriter, r *http.Request) {
	var solvent models.Solvent
	if !s.decode(w, r, &solvent) {
		return
	}
	s.logger.Debug("upsert solvent request", zap.String("name", solvent.Name))
	if err := s.importer.Upsert(r.Context(), &solvent); err != nil {
		s.fail(w, "upsert failed", err)
		return
	}
	s.respondJSON(w, http.StatusOK, &solvent)
}

func (s *Server) handleDeleteSolvent(w http.ResponseWriter, r *http.Request) {
	name := chi.URLParam(r, "name")
	s.logger.Debug("delete solvent request", zap.String("name", name))
	if err := s.importer.Delete(r.Context(), name); err != nil {
		s.fail(w, "deletion failed", err)
		return
	}
	s.respondJSON(w, http.StatusOK, map[string]string{"status": "deleted"})
}

type importRequest struct {
	Paths     []string `json:"paths"`
	Recursive *bool    `json:"recursive,omitempty"`
}

func (s *Server) handleImport(w http.ResponseWriter, r *http.Request) {
	var req importRequest
	if !s.decode(w, r, &req) {
		return
	}
	if len(req.Paths) == 0 {
		s.respondError(w, http.StatusBadRequest, "paths is required")
		return
	}
	for _, p := range req.Paths {
		if _, err := os.Stat(p); err != nil {
			s.respondError(w, http.StatusBadRequest, "cannot read "+p)
			return
		}
	}
	recursive := true
	if req.Recursive != nil {
		recursive = *req.Recursive
	}
	s.logger.Debug("import request", zap.Strings("paths", req.Paths), zap.Bool("recursive", recursive))
	summary, err := s.importer.ImportPaths(r.Context(), req.Paths, recursive)
	if err != nil {
		s.fail(w, "import failed", err)
		return
	}
	s.respondJSON(w, http.StatusOK, summary)
}

func (s *Server) handleStatus(w http.ResponseWriter, r *http.Request) {
	st, err := s.engine.Status(r.Context())
	if err != nil {
		s.fail(w, "status failed", err)
		return
	}
	s.respondJSON(w, http.StatusOK, st)
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	s.respondJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

func (s *Server) handleDirectoriesList(w http.ResponseWriter, r *http.Request) {
	if s.watch == nil {
		s.respondError(w, http.StatusNotImplemented, "watch not enabled")
		return
	}
	s.respondJSON(w, http.StatusOK, map[string]interface{}{"directories": s.watch.Directories()})
}

type directoryRequest struct {
	Path string `json:"path"`
	// Import loads the tables already in the directory; defaults to true.
	Import *bool `json:"import,omitempty"`
}

func (s *Server) handleDirectoriesAdd(w http.ResponseWriter, r *http.Request) {
	if s.watch == nil {
		s.respondError(w, http.StatusNotImplemented, "watch not enabled")
		return
	}
	var req directoryRequest
	if !s.decode(w, r, &req) {
		return
	}
	if req.Path == "" {
		s.respondError(w, http.StatusBadRequest, "path is required")
		return
	}
	abs, err := filepath.Abs(req.Path)
	if err != nil {
		s.respondError(w, http.StatusBadRequest, "invalid path")
		return
	}
	info, err := os.Stat(abs)
	if err != nil {
		if os.IsNotExist(err) {
			s.respondError(w, http.StatusNotFound, "directory not found")
			return
		}
		s.respondError(w, http.StatusInternalServerError, err.Error())
		return
	}
	if !info.IsDir() {
		s.respondError(w, http.StatusBadRequest, "path is not a directory")
		return
	}
	importExisting := req.Import == nil || *req.Import
	s.logger.Debug("add data directory request", zap.String("path", abs), zap.Bool("import_existing", importExisting))
	if err := s.watch.AddDirectory(abs, importExisting); err != nil {
		s.fail(w, "add data directory failed", err)
		return
	}
	s.persistDirectories()
	s.respondJSON(w, http.StatusCreated, map[string]string{"path": abs, "status": "added"})
}

func (s *Server) handleDirectoriesRemove(w http.ResponseWriter, r *http.Request) {
	if s.watch == nil {
		s.respondError(w, http.StatusNotImplemented, "watch not enabled")
		return
	}
	path := r.URL.Query().Get("path")
	if path == "" {
		var body directoryRequest
		if err := json.NewDecoder(r.Body).Decode(&body); err == nil {
			path = body.Path
		}
	}
	if path == "" {
		s.respondError(w, http.StatusBadRequest, "path is required (query or body)")
		return
	}
	abs, err := filepath.Abs(path)
	if err != nil {
		s.respondError(w, http.StatusBadRequest, "invalid path")
		return
	}
	s.logger.Debug("remove data directory request", zap.String("path", abs))
	if err := s.watch.RemoveDirectory(abs); err != nil {
		s.fail(w, "remove data directory failed", err)
		return
	}
	s.persistDirectories()
	s.respondJSON(w, http.StatusOK, map[string]string{"path": abs, "status": "removed"})
}

// persistDirectories writes the watched directories back to the config file.
func (s *Server) persistDirectories() {
	if s.configPath == "" {
		return
	}
	s.configMu.Lock()
	defer s.configMu.Unlock()
	s.config.Data.Directories = s.watch.Directories()
	if err := config.Save(s.configPath, s.config); err != nil {
		s.logger.Warn("failed to persist data directories", zap.Error(err))
	}
}

func (s *Server) decode(w http.ResponseWriter, r *http.Request, v interface{}) bool {
	if err := json.NewDecoder(r.Body).Decode(v); err != nil {
		s.respondError(w, http.StatusBadRequest, "invalid request body: "+err.Error())
		return false
	}
	return true
}

// fail maps err to a status: bad input 400, missing solvents 404, else 500.
func (s *Server) fail(w http.ResponseWriter, msg string, err error) {
	status := statusFor(err)
	if status == http.StatusInternalServerError {
		s.logger.Error(msg, zap.Error(err))
	} else {
		s.logger.Debug(msg, zap.Error(err))
	}
	s.respondError(w, status, err.Error())
}

func statusFor(err error) int {
	var domainErr *hsp.DomainError
	switch {
	case errors.Is(err, models.ErrInvalidRequest), errors.As(err, &domainErr):
		return http.StatusBadRequest
	case errors.Is(err, storage.ErrNotFound):
		return http.StatusNotFound
	default:
		return http.StatusInternalServerError
	}
}

func (s *Server) respondJSON(w http.ResponseWriter, status int, data interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(data)
}

func (s *Server) respondError(w http.ResponseWriter, status int, message string) {
	s.respondJSON(w, status, map[string]string{"error": message})
}
