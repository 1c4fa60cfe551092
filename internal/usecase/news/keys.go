package news

import (
	"fmt"
	"time"
)

// Cache TTLs per key family. Hotter, cheaper-to-rebuild entries get
// shorter TTLs so readers never see very stale lists.
const (
	LatestTTL     = 5 * time.Minute
	TrendingTTL   = 10 * time.Minute
	HighlightsTTL = 30 * time.Minute
	ArticleTTL    = time.Hour
)

// Default query shapes. Invalidation deletes the keys for these shapes;
// other shapes are served correct-but-possibly-stale until their TTL.
var defaultPageSizes = []int{5, 10, 20}

const (
	defaultTrendingLimit   = 10
	defaultHighlightsLimit = 5
	defaultRelatedLimit    = 5
)

func latestKey(page, size int) string {
	return fmt.Sprintf("news:latest:%d:%d", page, size)
}

func trendingKey(limit int) string {
	return fmt.Sprintf("news:trending:%d", limit)
}

func highlightsKey(limit int) string {
	return fmt.Sprintf("news:daily-highlights:%d", limit)
}

func articleKey(id int64) string {
	return fmt.Sprintf("news:article:%d", id)
}

// listKeys returns every default-shape list key. Used by invalidation.
func listKeys() []string {
	keys := make([]string, 0, len(defaultPageSizes)+2)
	for _, size := range defaultPageSizes {
		keys = append(keys, latestKey(1, size))
	}
	keys = append(keys, trendingKey(defaultTrendingLimit))
	keys = append(keys, highlightsKey(defaultHighlightsLimit))
	return keys
}
