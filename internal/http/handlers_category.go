package http

import (
	"net/http"
	"strings"

	"fintrack/internal/core"
	"fintrack/internal/log"
)

type categoryRequest struct {
	Name *string `json:"name"`
}

func (s *Server) handleCreateCategory(w http.ResponseWriter, r *http.Request) {
	var req categoryRequest
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, http.StatusBadRequest, "malformed request body")
		return
	}
	if req.Name == nil || strings.TrimSpace(*req.Name) == "" {
		writeError(w, http.StatusUnprocessableEntity, core.ErrEmptyCategoryName.Error())
		return
	}

	created, err := s.categories.CreateCategory(r.Context(), strings.TrimSpace(*req.Name))
	if err != nil {
		if status := storeErrorStatus(err); status == http.StatusInternalServerError {
			log.FromContext(r.Context()).ErrorContext(r.Context(), "Category create failed",
				log.FieldError, err,
				log.FieldOperation, log.OpCreate,
				log.FieldCategoryName, *req.Name)
		}
		writeError(w, storeErrorStatus(err), err.Error())
		return
	}

	log.FromContext(r.Context()).InfoContext(r.Context(), "Category created",
		log.FieldCategoryID, created.ID,
		log.FieldCategoryName, created.Name,
		log.FieldOperation, log.OpCreate)
	writeJSON(w, http.StatusCreated, created)
}

func (s *Server) handleListCategories(w http.ResponseWriter, r *http.Request) {
	cats, err := s.categories.ListCategories(r.Context())
	if err != nil {
		log.FromContext(r.Context()).ErrorContext(r.Context(), "Category list failed",
			log.FieldError, err,
			log.FieldOperation, log.OpList)
		writeError(w, http.StatusInternalServerError, err.Error())
		return
	}
	writeJSON(w, http.StatusOK, cats)
}

func (s *Server) handleRenameCategory(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r, "category_id")
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	var req categoryRequest
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, http.StatusBadRequest, "malformed request body")
		return
	}
	if req.Name == nil || strings.TrimSpace(*req.Name) == "" {
		writeError(w, http.StatusUnprocessableEntity, core.ErrEmptyCategoryName.Error())
		return
	}

	renamed, err := s.categories.RenameCategory(r.Context(), id, strings.TrimSpace(*req.Name))
	if err != nil {
		if status := storeErrorStatus(err); status == http.StatusInternalServerError {
			log.FromContext(r.Context()).ErrorContext(r.Context(), "Category rename failed",
				log.FieldError, err,
				log.FieldOperation, log.OpUpdate,
				log.FieldCategoryID, id)
		}
		writeError(w, storeErrorStatus(err), err.Error())
		return
	}

	writeJSON(w, http.StatusOK, renamed)
}
