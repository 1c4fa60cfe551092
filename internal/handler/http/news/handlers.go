// Package news exposes the public read endpoints for articles.
package news

import (
	"context"
	"errors"
	"net/http"
	"strconv"

	"newshub/internal/domain/entity"
	"newshub/internal/handler/http/pathutil"
	"newshub/internal/handler/http/respond"
)

// Service is the read surface the handlers need.
type Service interface {
	GetLatest(ctx context.Context, page, size int) ([]*entity.Article, error)
	GetTrending(ctx context.Context, limit int) ([]*entity.Article, error)
	GetDailyHighlights(ctx context.Context, limit int) ([]*entity.Article, error)
	GetArticleByID(ctx context.Context, id int64) (*entity.Article, error)
	GetByCategory(ctx context.Context, categoryID int64, limit int) ([]*entity.Article, error)
	GetRelated(ctx context.Context, id int64, limit int) ([]*entity.Article, error)
	Search(ctx context.Context, keyword string, limit int) ([]*entity.Article, error)
}

// queryInt parses a positive integer query parameter, falling back to
// def when absent or malformed.
func queryInt(r *http.Request, name string, def int) int {
	raw := r.URL.Query().Get(name)
	if raw == "" {
		return def
	}
	v, err := strconv.Atoi(raw)
	if err != nil || v < 1 {
		return def
	}
	return v
}

type LatestHandler struct{ Svc Service }

// ServeHTTP 最新記事一覧（ページング）
func (h LatestHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	page := queryInt(r, "page", 1)
	size := queryInt(r, "size", 10)

	articles, err := h.Svc.GetLatest(r.Context(), page, size)
	if err != nil {
		respond.SafeError(w, http.StatusInternalServerError, err)
		return
	}
	respond.JSON(w, http.StatusOK, toDTOs(articles))
}

type TrendingHandler struct{ Svc Service }

func (h TrendingHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	articles, err := h.Svc.GetTrending(r.Context(), queryInt(r, "limit", 10))
	if err != nil {
		respond.SafeError(w, http.StatusInternalServerError, err)
		return
	}
	respond.JSON(w, http.StatusOK, toDTOs(articles))
}

type HighlightsHandler struct{ Svc Service }

func (h HighlightsHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	articles, err := h.Svc.GetDailyHighlights(r.Context(), queryInt(r, "limit", 5))
	if err != nil {
		respond.SafeError(w, http.StatusInternalServerError, err)
		return
	}
	respond.JSON(w, http.StatusOK, toDTOs(articles))
}

type GetHandler struct{ Svc Service }

// ServeHTTP 記事詳細取得（閲覧数を加算）
func (h GetHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	id, err := pathutil.ExtractID(r.URL.Path, "/api/public/news/")
	if err != nil {
		respond.SafeError(w, http.StatusBadRequest, err)
		return
	}

	article, err := h.Svc.GetArticleByID(r.Context(), id)
	if err != nil {
		code := http.StatusInternalServerError
		if errors.Is(err, entity.ErrNotFound) {
			code = http.StatusNotFound
		}
		respond.SafeError(w, code, err)
		return
	}
	respond.JSON(w, http.StatusOK, toDTO(article))
}

type CategoryHandler struct{ Svc Service }

func (h CategoryHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	categoryID, err := pathutil.ExtractID(r.URL.Path, "/api/public/news/category/")
	if err != nil {
		respond.SafeError(w, http.StatusBadRequest, err)
		return
	}

	articles, err := h.Svc.GetByCategory(r.Context(), categoryID, queryInt(r, "limit", 20))
	if err != nil {
		respond.SafeError(w, http.StatusInternalServerError, err)
		return
	}
	respond.JSON(w, http.StatusOK, toDTOs(articles))
}

type RelatedHandler struct{ Svc Service }

// ServeHTTP 関連記事（同一カテゴリ、自身を除く）
func (h RelatedHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	id, err := pathutil.ExtractID(r.URL.Path, "/api/public/news/related/")
	if err != nil {
		respond.SafeError(w, http.StatusBadRequest, err)
		return
	}

	articles, err := h.Svc.GetRelated(r.Context(), id, queryInt(r, "limit", 5))
	if err != nil {
		code := http.StatusInternalServerError
		if errors.Is(err, entity.ErrNotFound) {
			code = http.StatusNotFound
		}
		respond.SafeError(w, code, err)
		return
	}
	respond.JSON(w, http.StatusOK, toDTOs(articles))
}

type SearchHandler struct{ Svc Service }

func (h SearchHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	keyword := r.URL.Query().Get("q")
	if keyword == "" {
		respond.SafeError(w, http.StatusBadRequest, errors.New("query parameter q is required"))
		return
	}

	articles, err := h.Svc.Search(r.Context(), keyword, queryInt(r, "limit", 20))
	if err != nil {
		respond.SafeError(w, http.StatusInternalServerError, err)
		return
	}
	respond.JSON(w, http.StatusOK, toDTOs(articles))
}

// Register wires the public news routes onto the mux.
func Register(mux *http.ServeMux, svc Service) {
	mux.Handle("GET /api/public/news/latest", LatestHandler{svc})
	mux.Handle("GET /api/public/news/trending", TrendingHandler{svc})
	mux.Handle("GET /api/public/news/daily-highlights", HighlightsHandler{svc})
	mux.Handle("GET /api/public/news/search", SearchHandler{svc})
	mux.Handle("GET /api/public/news/category/", CategoryHandler{svc})
	mux.Handle("GET /api/public/news/related/", RelatedHandler{svc})
	mux.Handle("GET /api/public/news/", GetHandler{svc})
}
