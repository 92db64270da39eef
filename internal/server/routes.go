package server

import (
	"encoding/json"
	"errors"
	"io"
	"log"
	"net/http"
	"path/filepath"
	"strconv"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"

	"github.com/gravitas-games/domino/internal/board"
	"github.com/gravitas-games/domino/internal/hex"
	"github.com/gravitas-games/domino/internal/storage"
)

// maxDocumentSize bounds PUT bodies on the boards API
const maxDocumentSize = 8 << 20

// Routes configures all routes and returns the router
func (s *Server) Routes() http.Handler {
	r := chi.NewRouter()

	r.Use(middleware.Recoverer)
	r.Use(middleware.Logger)

	r.Get("/health", s.handleHealth)
	r.Get("/ws", s.handleWebSocket)

	r.Route("/api", func(r chi.Router) {
		r.Get("/boards", s.listBoards)
		r.Get("/boards/{id}", s.getBoard)
		r.Group(func(r chi.Router) {
			r.Use(s.requireEditor)
			r.Put("/boards/{id}", s.putBoard)
			r.Delete("/boards/{id}", s.deleteBoard)
		})

		r.Get("/layout/cell", s.pixelToCell)
		r.Get("/layout/pixel", s.cellToPixel)
	})

	if dir := s.config.Server.StaticDir; dir != "" {
		fileServer := http.FileServer(http.Dir(dir))
		r.Handle("/static/*", http.StripPrefix("/static", fileServer))
		r.Get("/", func(w http.ResponseWriter, r *http.Request) {
			http.ServeFile(w, r, filepath.Join(dir, "index.html"))
		})
	}

	return r
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	s.connMu.RLock()
	sessions := len(s.connections)
	s.connMu.RUnlock()

	respondJSON(w, http.StatusOK, map[string]interface{}{
		"status":   "ok",
		"sessions": sessions,
		"storage":  s.config.Storage.Backend,
	})
}

// requireEditor rejects requests whose token does not grant edit rights
func (s *Server) requireEditor(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		editor, err := s.authenticate(r)
		if err != nil {
			respondError(w, http.StatusUnauthorized, err.Error())
			return
		}
		if !editor.CanEdit() {
			respondError(w, http.StatusForbidden, "editor may not change boards")
			return
		}
		next.ServeHTTP(w, r)
	})
}

func (s *Server) listBoards(w http.ResponseWriter, r *http.Request) {
	ids, err := s.store.List(r.Context())
	if err != nil {
		log.Printf("Failed to list boards: %v", err)
		respondError(w, http.StatusInternalServerError, "failed to list boards")
		return
	}
	respondJSON(w, http.StatusOK, map[string][]string{"boards": ids})
}

func (s *Server) getBoard(w http.ResponseWriter, r *http.Request) {
	doc, err := s.store.Load(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		respondStorageError(w, err)
		return
	}
	respondJSON(w, http.StatusOK, doc)
}

func (s *Server) putBoard(w http.ResponseWriter, r *http.Request) {
	data, err := io.ReadAll(io.LimitReader(r.Body, maxDocumentSize))
	if err != nil {
		respondError(w, http.StatusBadRequest, "failed to read body")
		return
	}

	// Loading into a scratch board applies the same checks a session would
	scratch := board.New(s.layout)
	if err := scratch.Import(data); err != nil {
		respondError(w, http.StatusBadRequest, err.Error())
		return
	}

	id := chi.URLParam(r, "id")
	if err := s.store.Save(r.Context(), id, scratch.Serialize()); err != nil {
		respondStorageError(w, err)
		return
	}
	log.Printf("Stored board %s (%d cards)", id, scratch.Len())
	respondJSON(w, http.StatusOK, map[string]interface{}{"id": id, "cards": scratch.Len()})
}

func (s *Server) deleteBoard(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	if err := s.store.Delete(r.Context(), id); err != nil {
		respondStorageError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (s *Server) pixelToCell(w http.ResponseWriter, r *http.Request) {
	x, errX := strconv.ParseFloat(r.URL.Query().Get("x"), 64)
	y, errY := strconv.ParseFloat(r.URL.Query().Get("y"), 64)
	if errX != nil || errY != nil {
		respondError(w, http.StatusBadRequest, "x and y must be numbers")
		return
	}
	respondJSON(w, http.StatusOK, map[string]hex.Axial{
		"cell": s.layout.PixelToCell(hex.Point{X: x, Y: y}),
	})
}

func (s *Server) cellToPixel(w http.ResponseWriter, r *http.Request) {
	q, errQ := strconv.Atoi(r.URL.Query().Get("q"))
	rr, errR := strconv.Atoi(r.URL.Query().Get("r"))
	if errQ != nil || errR != nil {
		respondError(w, http.StatusBadRequest, "q and r must be integers")
		return
	}
	respondJSON(w, http.StatusOK, s.layout.CellToPixel(hex.Axial{Q: q, R: rr}))
}

func respondStorageError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, storage.ErrNotFound):
		respondError(w, http.StatusNotFound, "board not found")
	case errors.Is(err, storage.ErrInvalidID):
		respondError(w, http.StatusBadRequest, err.Error())
	default:
		log.Printf("Storage error: %v", err)
		respondError(w, http.StatusInternalServerError, "storage error")
	}
}

// respondJSON writes a JSON response
func respondJSON(w http.ResponseWriter, status int, data interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(data); err != nil {
		log.Printf("Error encoding JSON: %v", err)
	}
}

// respondError writes an error JSON response
func respondError(w http.ResponseWriter, status int, message string) {
	respondJSON(w, status, map[string]string{"error": message})
}
