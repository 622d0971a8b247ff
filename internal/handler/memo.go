package handler

import (
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/arefin/memotube/internal/repository"
	"github.com/arefin/memotube/internal/service"
)

// MemoHandler owns the memo endpoints.
type MemoHandler struct {
	svc    *service.MemoService
	logger *slog.Logger
}

func NewMemoHandler(svc *service.MemoService, logger *slog.Logger) *MemoHandler {
	return &MemoHandler{svc: svc, logger: logger}
}

type createMemoRequest struct {
	Content          string  `json:"content"`
	VideoID          *string `json:"videoId"`
	TimestampSeconds *int    `json:"timestampSeconds"`
}

// HandleCreate writes a memo, optionally pinned to a video timestamp.
//
// POST /api/memos
func (h *MemoHandler) HandleCreate(w http.ResponseWriter, r *http.Request) {
	identity, ok := callerIdentity(w, r)
	if !ok {
		return
	}

	var req createMemoRequest
	if err := decodeBody(r, &req); err != nil {
		writeError(w, r, err)
		return
	}

	memo, err := h.svc.Create(r.Context(), identity.UserID, service.CreateMemoInput{
		Content:          req.Content,
		VideoID:          req.VideoID,
		TimestampSeconds: req.TimestampSeconds,
	})
	if err != nil {
		writeError(w, r, err)
		return
	}

	writeData(w, r, http.StatusCreated, memo)
}

// HandleList returns one page of the caller's memos.
//
// GET /api/memos?page=&limit=&sort=&order=&search=&videoId=
func (h *MemoHandler) HandleList(w http.ResponseWriter, r *http.Request) {
	identity, ok := callerIdentity(w, r)
	if !ok {
		return
	}

	filter := repository.MemoFilter{VideoID: r.URL.Query().Get("videoId")}

	memos, page, err := h.svc.List(r.Context(), identity.UserID,
		listOptionsFromQuery(r), filter)
	if err != nil {
		writeError(w, r, err)
		return
	}

	writeData(w, r, http.StatusOK, listPayload{Items: memos, Pagination: page})
}

// HandleGet returns a single memo.
//
// GET /api/memos/{id}
func (h *MemoHandler) HandleGet(w http.ResponseWriter, r *http.Request) {
	identity, ok := callerIdentity(w, r)
	if !ok {
		return
	}

	memo, err := h.svc.GetByID(r.Context(), identity.UserID, chi.URLParam(r, "id"))
	if err != nil {
		writeError(w, r, err)
		return
	}

	writeData(w, r, http.StatusOK, memo)
}

type updateMemoRequest struct {
	Content          *string `json:"content"`
	VideoID          *string `json:"videoId"`
	TimestampSeconds *int    `json:"timestampSeconds"`
}

// HandleUpdate applies partial changes to a memo. Passing "videoId": ""
// detaches it from its video.
//
// PUT /api/memos/{id}
func (h *MemoHandler) HandleUpdate(w http.ResponseWriter, r *http.Request) {
	identity, ok := callerIdentity(w, r)
	if !ok {
		return
	}

	var req updateMemoRequest
	if err := decodeBody(r, &req); err != nil {
		writeError(w, r, err)
		return
	}

	memo, err := h.svc.Update(r.Context(), identity.UserID, chi.URLParam(r, "id"),
		service.UpdateMemoInput{
			Content:          req.Content,
			VideoID:          req.VideoID,
			TimestampSeconds: req.TimestampSeconds,
		})
	if err != nil {
		writeError(w, r, err)
		return
	}

	writeData(w, r, http.StatusOK, memo)
}

// HandleDelete removes a memo.
//
// DELETE /api/memos/{id}
func (h *MemoHandler) HandleDelete(w http.ResponseWriter, r *http.Request) {
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
