// Package weather exposes the cached weather endpoints. The GET path
// serves readers; the update path is the crawler's callback.
package weather

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"strings"

	"newshub/internal/handler/http/respond"
	weatherUC "newshub/internal/usecase/weather"
)

// Service is the weather surface the handlers need.
type Service interface {
	Get(ctx context.Context, city string) ([]byte, error)
	Update(ctx context.Context, city string, data []byte) error
	Refresh(ctx context.Context, city string)
}

func cityFromPath(path, prefix string) string {
	return strings.Trim(strings.TrimPrefix(path, prefix), "/")
}

type GetHandler struct{ Svc Service }

// ServeHTTP 都市別の天気データ取得。未取得の場合はクロールを起動して202を返す
func (h GetHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	city := cityFromPath(r.URL.Path, "/api/public/weather/")
	if city == "" {
		respond.SafeError(w, http.StatusBadRequest, errors.New("city is required"))
		return
	}

	data, err := h.Svc.Get(r.Context(), city)
	if err != nil {
		if errors.Is(err, weatherUC.ErrUnavailable) {
			respond.JSON(w, http.StatusAccepted, map[string]string{
				"status": "pending",
				"city":   city,
			})
			return
		}
		respond.SafeError(w, http.StatusInternalServerError, err)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write(data)
}

type updateRequest struct {
	City string          `json:"city"`
	Data json.RawMessage `json:"data"`
}

type UpdateHandler struct{ Svc Service }

func (h UpdateHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	var req updateRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respond.SafeError(w, http.StatusBadRequest, errors.New("invalid request body"))
		return
	}
	if req.City == "" {
		respond.SafeError(w, http.StatusBadRequest, errors.New("city is required"))
		return
	}

	if err := h.Svc.Update(r.Context(), req.City, req.Data); err != nil {
		respond.SafeError(w, http.StatusBadRequest, err)
		return
	}
	respond.JSON(w, http.StatusNoContent, nil)
}

type RefreshHandler struct{ Svc Service }

func (h RefreshHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	city := cityFromPath(r.URL.Path, "/api/public/weather/refresh/")
	if city == "" {
		respond.SafeError(w, http.StatusBadRequest, errors.New("city is required"))
		return
	}

	h.Svc.Refresh(r.Context(), city)
	respond.JSON(w, http.StatusAccepted, map[string]string{
		"status": "refreshing",
		"city":   city,
	})
}

// Register wires the weather routes onto the mux.
func Register(mux *http.ServeMux, svc Service) {
	mux.Handle("POST /api/public/weather/update", UpdateHandler{svc})
	mux.Handle("POST /api/public/weather/refresh/", RefreshHandler{svc})
	mux.Handle("GET /api/public/weather/", GetHandler{svc})
}
