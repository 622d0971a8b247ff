package handler

import (
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/arefin/memotube/internal/repository"
	"github.com/arefin/memotube/internal/service"
)

// VideoHandler owns the saved-video endpoints. Every route here sits behind
// RequireAuth, so the caller identity is always present.
type VideoHandler struct {
	svc    *service.VideoService
	logger *slog.Logger
}

func NewVideoHandler(svc *service.VideoService, logger *slog.Logger) *VideoHandler {
	return &VideoHandler{svc: svc, logger: logger}
}

type createVideoRequest struct {
	URL string `json:"url"`
}

// HandleCreate saves a YouTube video from its URL.
//
// POST /api/videos
func (h *VideoHandler) HandleCreate(w http.ResponseWriter, r *http.Request) {
	identity, ok := callerIdentity(w, r)
	if !ok {
		return
	}

	var req createVideoRequest
	if err := decodeBody(r, &req); err != nil {
		writeError(w, r, err)
		return
	}

	video, err := h.svc.Create(r.Context(), identity.UserID, req.URL)
	if err != nil {
		writeError(w, r, err)
		return
	}

	writeData(w, r, http.StatusCreated, video)
}

// HandleList returns one page of the caller's videos.
//
// GET /api/videos?page=&limit=&sort=&order=&search=&watched=
func (h *VideoHandler) HandleList(w http.ResponseWriter, r *http.Request) {
	identity, ok := callerIdentity(w, r)
	if !ok {
		return
	}

	watched, err := boolQuery(r, "watched")
	if err != nil {
		writeError(w, r, err)
		return
	}

	videos, page, err := h.svc.List(r.Context(), identity.UserID,
		listOptionsFromQuery(r), repository.VideoFilter{Watched: watched})
	if err != nil {
		writeError(w, r, err)
		return
	}

	writeData(w, r, http.StatusOK, listPayload{Items: videos, Pagination: page})
}

// HandleGet returns a single video.
//
// GET /api/videos/{id}
func (h *VideoHandler) HandleGet(w http.ResponseWriter, r *http.Request) {
	identity, ok := callerIdentity(w, r)
	if !ok {
		return
	}

	video, err := h.svc.GetByID(r.Context(), identity.UserID, chi.URLParam(r, "id"))
	if err != nil {
		writeError(w, r, err)
		return
	}

	writeData(w, r, http.StatusOK, video)
}

type updateVideoRequest struct {
	Title       *string `json:"title"`
	Description *string `json:"description"`
	Watched     *bool   `json:"watched"`
}

// HandleUpdate applies partial changes to a video.
//
// PUT /api/videos/{id}
func (h *VideoHandler) HandleUpdate(w http.ResponseWriter, r *http.Request) {
	identity, ok := callerIdentity(w, r)
	if !ok {
		return
	}

	var req updateVideoRequest
	if err := decodeBody(r, &req); err != nil {
		writeError(w, r, err)
		return
	}

	video, err := h.svc.Update(r.Context(), identity.UserID, chi.URLParam(r, "id"),
		service.UpdateVideoInput{
			Title:       req.Title,
			Description: req.Description,
			Watched:     req.Watched,
		})
	if err != nil {
		writeError(w, r, err)
		return
	}

	writeData(w, r, http.StatusOK, video)
}

// HandleDelete removes a video.
//
// DELETE /api/videos/{id}
func (h *VideoHandler) HandleDelete(w http.ResponseWriter, r *http.Request) {
	identity, ok := callerIdentity(w, r)
	if !ok {
		return
	}

	if err := h.svc.Delete(r.Context(), identity.UserID, chi.URLParam(r, "id")); err != nil {
		writeError(w, r, err)
		return
	}

	writeData(w, r, http.StatusOK, map[string]string{"status": "deleted"})
}
