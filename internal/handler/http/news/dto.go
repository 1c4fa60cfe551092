package news

import (
	"time"

	"newshub/internal/domain/entity"
)

// DTO is the JSON shape of an article on the public read endpoints.
type DTO struct {
	ID          int64     `json:"id"`
	Title       string    `json:"title"`
	Summary     string    `json:"summary"`
	Content     string    `json:"content,omitempty"`
	SourceURL   string    `json:"source_url"`
	SourceName  string    `json:"source_name"`
	CategoryID  int64     `json:"category_id"`
	PublishTime time.Time `json:"publish_time"`
	Views       int64     `json:"views"`
	CreatedAt   time.Time `json:"created_at"`
}

func toDTO(a *entity.Article) DTO {
	return DTO{
		ID:          a.ID,
		Title:       a.Title,
		Summary:     a.Summary,
		Content:     a.Content,
		SourceURL:   a.SourceURL,
		SourceName:  a.SourceName,
		CategoryID:  a.CategoryID,
		PublishTime: a.PublishTime,
		Views:       a.Views,
		CreatedAt:   a.CreatedAt,
	}
}

func toDTOs(articles []*entity.Article) []DTO {
	out := make([]DTO, 0, len(articles))
	for _, a := range articles {
		out = append(out, toDTO(a))
	}
	return out
}
