package server

import (
	"encoding/json"
	"io"
	"net/http"

	"github.com/gorilla/mux"
	"go.uber.org/zap"

	"entracker/pkg/logger"
	"entracker/pkg/manager"
)

// SearchMedia searches the metadata service for candidate titles.
func (s Server) SearchMedia() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		log := logger.FromCtx(r.Context())
		qps := r.URL.Query()
		mediaType := qps.Get("mediaType")
		name := qps.Get("name")

		if mediaType == "" || name == "" {
			writeError(w, http.StatusBadRequest, "mediaType and name are required.")
			return
		}

		results, err := s.manager.SearchMedia(r.Context(), mediaType, name)
		if err != nil {
			log.Error("media search failed", zap.Error(err))
			writeError(w, statusFromError(err), "Failed to search TMDB.")
			return
		}

		writeResponse(w, http.StatusOK, dataResponse{Data: results})
	}
}

// AddMedia adds a resolved title and kicks off franchise population.
func (s Server) AddMedia() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		log := logger.FromCtx(r.Context())

		b, err := io.ReadAll(r.Body)
		if err != nil {
			writeError(w, http.StatusBadRequest, "invalid request body")
			return
		}

		var request manager.AddMediaRequest
		if err := json.Unmarshal(b, &request); err != nil {
			log.Debug("invalid request body", zap.ByteString("body", b))
			writeError(w, http.StatusBadRequest, "invalid request body")
			return
		}

		if err := s.validate.Struct(request); err != nil {
			writeError(w, http.StatusBadRequest, "mediaType, tmdbId, and watched are required.")
			return
		}

		resp, err := s.manager.AddMedia(r.Context(), request)
		if err != nil {
			log.Error("failed to add media", zap.Error(err))
			writeError(w, statusFromError(err), err.Error())
			return
		}

		writeResponse(w, http.StatusCreated, resp)
	}
}

// GetMedia lists every stored row for a category.
func (s Server) GetMedia() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		log := logger.FromCtx(r.Context())
		mediaType := mux.Vars(r)["mediaType"]

		rows, err := s.manager.GetMedia(r.Context(), mediaType)
		if err != nil {
			log.Error("failed to fetch media list", zap.String("media_type", mediaType), zap.Error(err))
			writeError(w, statusFromError(err), "Failed to fetch data.")
			return
		}

		writeResponse(w, http.StatusOK, dataResponse{Data: rows})
	}
}

// ListFranchises lists the distinct franchise names for a movie category.
func (s Server) ListFranchises() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		log := logger.FromCtx(r.Context())
		mediaType := mux.Vars(r)["mediaType"]

		franchises, err := s.manager.ListFranchises(r.Context(), mediaType)
		if err != nil {
			log.Error("failed to list franchises", zap.String("media_type", mediaType), zap.Error(err))
			writeError(w, statusFromError(err), "Failed to fetch franchises.")
			return
		}

		writeResponse(w, http.StatusOK, dataResponse{Data: franchises})
	}
}

// GetFranchise returns the stored rows of one franchise with collection details.
func (s Server) GetFranchise() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		log := logger.FromCtx(r.Context())
		vars := mux.Vars(r)

		resp, err := s.manager.GetFranchise(r.Context(), vars["mediaType"], vars["name"])
		if err != nil {
			log.Error("failed to fetch franchise", zap.String("franchise", vars["name"]), zap.Error(err))
			writeError(w, statusFromError(err), err.Error())
			return
		}

		writeResponse(w, http.StatusOK, resp)
	}
}

// GetDetails returns metadata details for one stored title.
func (s Server) GetDetails() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		log := logger.FromCtx(r.Context())
		vars := mux.Vars(r)

		details, err := s.manager.GetDetails(r.Context(), vars["mediaType"], vars["name"])
		if err != nil {
			log.Error("failed to fetch details", zap.String("name", vars["name"]), zap.Error(err))
			writeError(w, statusFromError(err), "Failed to fetch details from TMDB.")
			return
		}

		writeResponse(w, http.StatusOK, dataResponse{Data: details})
	}
}

// UpdateMedia applies a sparse field update to one row.
func (s Server) UpdateMedia() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		log := logger.FromCtx(r.Context())

		b, err := io.ReadAll(r.Body)
		if err != nil {
			writeError(w, http.StatusBadRequest, "invalid request body")
			return
		}

		var request manager.UpdateMediaRequest
		if err := json.Unmarshal(b, &request); err != nil {
			log.Debug("invalid request body", zap.ByteString("body", b))
			writeError(w, http.StatusBadRequest, "invalid request body")
			return
		}

		if err := s.validate.Struct(request); err != nil {
			writeError(w, http.StatusBadRequest, "rowIndex and mediaType are required.")
			return
		}

		if err := s.manager.UpdateMedia(r.Context(), request); err != nil {
			log.Error("failed to update media", zap.Int("row_index", request.RowIndex), zap.Error(err))
			writeError(w, statusFromError(err), "Failed to update entry.")
			return
		}

		writeResponse(w, http.StatusOK, messageResponse{Message: "Update successful!"})
	}
}
