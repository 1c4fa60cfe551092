// Package notification exposes the pull side of user notifications.
package notification

import (
	"context"
	"errors"
	"net/http"
	"strconv"
	"time"

	"newshub/internal/domain/entity"
	"newshub/internal/handler/http/pathutil"
	"newshub/internal/handler/http/respond"
)

// Service is the pull surface the handlers need.
type Service interface {
	ListForUser(ctx context.Context, userID int64, limit int) ([]*entity.Notification, error)
	CountUnread(ctx context.Context, userID int64) (int64, error)
	MarkRead(ctx context.Context, id, userID int64) error
	MarkAllRead(ctx context.Context, userID int64) error
}

// DTO is the JSON shape of one notification.
type DTO struct {
	ID        int64     `json:"id"`
	UserID    int64     `json:"user_id"`
	Title     string    `json:"title"`
	Content   string    `json:"content"`
	Type      string    `json:"type"`
	IsRead    bool      `json:"is_read"`
	RelatedID *int64    `json:"related_id,omitempty"`
	CreatedAt time.Time `json:"created_at"`
}

func toDTO(n *entity.Notification) DTO {
	return DTO{
		ID:        n.ID,
		UserID:    n.UserID,
		Title:     n.Title,
		Content:   n.Content,
		Type:      n.Type,
		IsRead:    n.IsRead,
		RelatedID: n.RelatedID,
		CreatedAt: n.CreatedAt,
	}
}

func userID(r *http.Request) (int64, error) {
	raw := r.URL.Query().Get("user_id")
	id, err := strconv.ParseInt(raw, 10, 64)
	if err != nil || id < 1 {
		return 0, errors.New("user_id query parameter is required")
	}
	return id, nil
}

type ListHandler struct{ Svc Service }

func (h ListHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	uid, err := userID(r)
	if err != nil {
		respond.SafeError(w, http.StatusBadRequest, err)
		return
	}

	limit := 20
	if raw := r.URL.Query().Get("limit"); raw != "" {
		if v, err := strconv.Atoi(raw); err == nil && v > 0 {
			limit = v
		}
	}

	items, err := h.Svc.ListForUser(r.Context(), uid, limit)
	if err != nil {
		respond.SafeError(w, http.StatusInternalServerError, err)
		return
	}
	out := make([]DTO, 0, len(items))
	for _, n := range items {
		out = append(out, toDTO(n))
	}
	respond.JSON(w, http.StatusOK, out)
}

type UnreadCountHandler struct{ Svc Service }

func (h UnreadCountHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	uid, err := userID(r)
	if err != nil {
		respond.SafeError(w, http.StatusBadRequest, err)
		return
	}

	count, err := h.Svc.CountUnread(r.Context(), uid)
	if err != nil {
		respond.SafeError(w, http.StatusInternalServerError, err)
		return
	}
	respond.JSON(w, http.StatusOK, map[string]int64{"unread": count})
}

type MarkReadHandler struct{ Svc Service }

// ServeHTTP 既読化。自分の通知以外は404
func (h MarkReadHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	id, err := pathutil.ExtractID(r.URL.Path, "/api/notifications/read/")
	if err != nil {
		respond.SafeError(w, http.StatusBadRequest, err)
		return
	}
	uid, err := userID(r)
	if err != nil {
		respond.SafeError(w, http.StatusBadRequest, err)
		return
	}

	if err := h.Svc.MarkRead(r.Context(), id, uid); err != nil {
		code := http.StatusInternalServerError
		if errors.Is(err, entity.ErrNotFound) {
			code = http.StatusNotFound
		}
		respond.SafeError(w, code, err)
		return
	}
	respond.JSON(w, http.StatusNoContent, nil)
}

type MarkAllReadHandler struct{ Svc Service }

func (h MarkAllReadHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	uid, err := userID(r)
	if err != nil {
		respond.SafeError(w, http.StatusBadRequest, err)
		return
	}

	if err := h.Svc.MarkAllRead(r.Context(), uid); err != nil {
		respond.SafeError(w, http.StatusInternalServerError, err)
		return
	}
	respond.JSON(w, http.StatusNoContent, nil)
}

// Register wires the notification routes onto the mux.
func Register(mux *http.ServeMux, svc Service) {
	mux.Handle("GET /api/notifications", ListHandler{svc})
	mux.Handle("GET /api/notifications/unread-count", UnreadCountHandler{svc})
	mux.Handle("POST /api/notifications/read/", MarkReadHandler{svc})
	mux.Handle("POST /api/notifications/read-all", MarkAllReadHandler{svc})
}
