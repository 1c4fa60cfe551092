// Package admin exposes editorial article management, the dashboard,
// the retention setting, and the manual crawl trigger.
package admin

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"time"

	"golang.org/x/time/rate"

	"newshub/internal/domain/entity"
	"newshub/internal/handler/http/pathutil"
	"newshub/internal/handler/http/respond"
	"newshub/internal/infra/scheduler"
	adminUC "newshub/internal/usecase/admin"
)

// ArticleService is the editorial surface the handlers need.
type ArticleService interface {
	Create(ctx context.Context, in adminUC.CreateInput) (*entity.Article, error)
	Update(ctx context.Context, in adminUC.UpdateInput) (*entity.Article, error)
	Delete(ctx context.Context, id int64) error
	Dashboard(ctx context.Context) (*adminUC.DashboardStats, error)
}

// RetentionService reads and writes the retention window setting.
type RetentionService interface {
	RetentionDays(ctx context.Context) int
	SetRetentionDays(ctx context.Context, days int) error
}

// JobTrigger fires a named crawler job on demand.
type JobTrigger interface {
	Trigger(ctx context.Context, name string) error
}

type articleRequest struct {
	Title       string     `json:"title"`
	Summary     string     `json:"summary"`
	Content     string     `json:"content"`
	SourceURL   string     `json:"source_url"`
	SourceName  string     `json:"source_name"`
	CategoryID  int64      `json:"category_id"`
	PublishTime *time.Time `json:"publish_time,omitempty"`
	Status      string     `json:"status"`
}

type articleUpdateRequest struct {
	Title       *string    `json:"title,omitempty"`
	Summary     *string    `json:"summary,omitempty"`
	Content     *string    `json:"content,omitempty"`
	CategoryID  *int64     `json:"category_id,omitempty"`
	PublishTime *time.Time `json:"publish_time,omitempty"`
	Status      *string    `json:"status,omitempty"`
}

type CreateHandler struct{ Svc ArticleService }

func (h CreateHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	var req articleRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respond.SafeError(w, http.StatusBadRequest, errors.New("invalid request body"))
		return
	}

	in := adminUC.CreateInput{
		Title:      req.Title,
		Summary:    req.Summary,
		Content:    req.Content,
		SourceURL:  req.SourceURL,
		SourceName: req.SourceName,
		CategoryID: req.CategoryID,
		Status:     req.Status,
	}
	if req.PublishTime != nil {
		in.PublishTime = *req.PublishTime
	}

	article, err := h.Svc.Create(r.Context(), in)
	if err != nil {
		code := http.StatusInternalServerError
		switch {
		case errors.Is(err, entity.ErrDuplicateURL):
			code = http.StatusConflict
		case isValidation(err):
			code = http.StatusBadRequest
		}
		respond.SafeError(w, code, err)
		return
	}
	respond.JSON(w, http.StatusCreated, map[string]int64{"id": article.ID})
}

type UpdateHandler struct{ Svc ArticleService }

func (h UpdateHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	id, err := pathutil.ExtractID(r.URL.Path, "/api/admin/articles/")
	if err != nil {
		respond.SafeError(w, http.StatusBadRequest, err)
		return
	}

	var req articleUpdateRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respond.SafeError(w, http.StatusBadRequest, errors.New("invalid request body"))
		return
	}

	_, err = h.Svc.Update(r.Context(), adminUC.UpdateInput{
		ID:          id,
		Title:       req.Title,
		Summary:     req.Summary,
		Content:     req.Content,
		CategoryID:  req.CategoryID,
		PublishTime: req.PublishTime,
		Status:      req.Status,
	})
	if err != nil {
		code := http.StatusInternalServerError
		switch {
		case errors.Is(err, adminUC.ErrArticleNotFound):
			code = http.StatusNotFound
		case errors.Is(err, adminUC.ErrInvalidArticleID), isValidation(err):
			code = http.StatusBadRequest
		}
		respond.SafeError(w, code, err)
		return
	}
	respond.JSON(w, http.StatusNoContent, nil)
}

type DeleteHandler struct{ Svc ArticleService }

func (h DeleteHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	id, err := pathutil.ExtractID(r.URL.Path, "/api/admin/articles/")
	if err != nil {
		respond.SafeError(w, http.StatusBadRequest, err)
		return
	}

	if err := h.Svc.Delete(r.Context(), id); err != nil {
		code := http.StatusInternalServerError
		switch {
		case errors.Is(err, entity.ErrNotFound):
			code = http.StatusNotFound
		case errors.Is(err, adminUC.ErrInvalidArticleID):
			code = http.StatusBadRequest
		}
		respond.SafeError(w, code, err)
		return
	}
	respond.JSON(w, http.StatusNoContent, nil)
}

type DashboardHandler struct{ Svc ArticleService }

func (h DashboardHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	stats, err := h.Svc.Dashboard(r.Context())
	if err != nil {
		respond.SafeError(w, http.StatusInternalServerError, err)
		return
	}
	respond.JSON(w, http.StatusOK, stats)
}

type retentionRequest struct {
	Days int `json:"days"`
}

type RetentionHandler struct{ Svc RetentionService }

func (h RetentionHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	if r.Method == http.MethodGet {
		respond.JSON(w, http.StatusOK, map[string]int{
			"days": h.Svc.RetentionDays(r.Context()),
		})
		return
	}

	var req retentionRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respond.SafeError(w, http.StatusBadRequest, errors.New("invalid request body"))
		return
	}
	if err := h.Svc.SetRetentionDays(r.Context(), req.Days); err != nil {
		code := http.StatusInternalServerError
		if isValidation(err) {
			code = http.StatusBadRequest
		}
		respond.SafeError(w, code, err)
		return
	}
	respond.JSON(w, http.StatusNoContent, nil)
}

// TriggerHandler fires a crawler job on demand. A token bucket keeps
// operators from hammering the crawlers.
type TriggerHandler struct {
	Sched   JobTrigger
	Limiter *rate.Limiter
}

func NewTriggerHandler(sched JobTrigger) TriggerHandler {
	// 手動トリガは毎秒1回、バースト3まで
	return TriggerHandler{Sched: sched, Limiter: rate.NewLimiter(rate.Limit(1), 3)}
}

func (h TriggerHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	if !h.Limiter.Allow() {
		respond.SafeError(w, http.StatusTooManyRequests, errors.New("too many trigger requests"))
		return
	}

	job := r.PathValue("job")
	if job == "" {
		respond.SafeError(w, http.StatusBadRequest, errors.New("job name is required"))
		return
	}

	if err := h.Sched.Trigger(r.Context(), job); err != nil {
		code := http.StatusInternalServerError
		switch {
		case errors.Is(err, scheduler.ErrUnknownJob):
			code = http.StatusNotFound
		case errors.Is(err, scheduler.ErrAlreadyRunning):
			code = http.StatusConflict
		}
		respond.SafeError(w, code, err)
		return
	}
	respond.JSON(w, http.StatusOK, map[string]string{"job": job, "status": "completed"})
}

func isValidation(err error) bool {
	var vErr *entity.ValidationError
	return errors.As(err, &vErr) || errors.Is(err, entity.ErrValidationFailed)
}

// Register wires the admin routes onto the mux.
func Register(mux *http.ServeMux, articles ArticleService, cleanup RetentionService, sched JobTrigger) {
	mux.Handle("POST /api/admin/articles", CreateHandler{articles})
	mux.Handle("PUT /api/admin/articles/", UpdateHandler{articles})
	mux.Handle("DELETE /api/admin/articles/", DeleteHandler{articles})
	mux.Handle("GET /api/admin/dashboard", DashboardHandler{articles})
	mux.Handle("GET /api/admin/retention", RetentionHandler{cleanup})
	mux.Handle("PUT /api/admin/retention", RetentionHandler{cleanup})
	if sched != nil {
		mux.Handle("POST /api/admin/crawl/{job}", NewTriggerHandler(sched))
	}
}
