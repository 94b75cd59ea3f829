package designer

import (
	"context"
	"encoding/json"
	"fmt"
	"strconv"
	"sync/atomic"
	"time"

	meili "github.com/meilisearch/meilisearch-go"
	"github.com/rs/zerolog/log"
)

const indexUID = "hubal_designers"

// Searcher is the full-text side of designer search.
type Searcher interface {
	Healthy() bool
	Search(ctx context.Context, q, city string, limit int) ([]int64, error)
	Index(ctx context.Context, docs ...Document) error
}

// Document is what gets indexed for one designer.
type Document struct {
	ID           int64    `json:"id"`
	Name         string   `json:"name"`
	BusinessName string   `json:"business_name"`
	City         string   `json:"city"`
	Bio          string   `json:"bio"`
	Services     []string `json:"services"`
	Rating       float64  `json:"rating"`
}

func newDocument(v View) Document {
	doc := Document{
		ID:       v.UserID,
		Name:     v.Name,
		City:     v.City,
		Services: v.Services,
		Rating:   v.Rating,
	}
	if v.BusinessName != nil {
		doc.BusinessName = *v.BusinessName
	}
	if v.Bio != nil {
		doc.Bio = *v.Bio
	}
	return doc
}

// MeiliIndex implements Searcher via Meilisearch.
type MeiliIndex struct {
	client  meili.ServiceManager
	healthy atomic.Bool
	done    chan struct{}
}

// NewMeiliIndex never fails: when Meilisearch is down the index reports
// unhealthy and callers fall back to SQL until the health loop sees it again.
func NewMeiliIndex(url, apiKey string) *MeiliIndex {
	m := &MeiliIndex{
		client: meili.New(url, meili.WithAPIKey(apiKey)),
		done:   make(chan struct{}),
	}

	if _, err := m.client.Health(); err != nil {
		log.Warn().Err(err).Str("url", url).Msg("search: meilisearch unavailable")
	} else {
		m.healthy.Store(true)
		m.configure()
	}

	go m.healthLoop()
	return m
}

func (m *MeiliIndex) configure() {
	if _, err := m.client.CreateIndex(&meili.IndexConfig{Uid: indexUID, PrimaryKey: "id"}); err != nil {
		log.Debug().Err(err).Msg("search: create index (may already exist)")
	}

	index := m.client.Index(indexUID)
	filterable := []interface{}{"city"}
	if _, err := index.UpdateFilterableAttributes(&filterable); err != nil {
		log.Warn().Err(err).Msg("search: update filterable attributes")
	}
	searchable := []string{"name", "business_name", "services", "bio"}
	if _, err := index.UpdateSearchableAttributes(&searchable); err != nil {
		log.Warn().Err(err).Msg("search: update searchable attributes")
	}
}

func (m *MeiliIndex) healthLoop() {
	ticker := time.NewTicker(10 * time.Second)
	defer ticker.Stop()
	for {
		select {
		case <-m.done:
			return
		case <-ticker.C:
			_, err := m.client.Health()
			wasHealthy := m.healthy.Load()
			m.healthy.Store(err == nil)
			if err == nil && !wasHealthy {
				log.Info().Msg("search: meilisearch recovered")
				m.configure()
			}
		}
	}
}

func (m *MeiliIndex) Close() {
	close(m.done)
}

func (m *MeiliIndex) Healthy() bool {
	return m.healthy.Load()
}

func (m *MeiliIndex) Search(_ context.Context, q, city string, limit int) ([]int64, error) {
	req := &meili.SearchRequest{Limit: int64(limit)}
	if city != "" {
		req.Filter = []string{fmt.Sprintf("city = %q", city)}
	}

	resp, err := m.client.Index(indexUID).Search(q, req)
	if err != nil {
		m.healthy.Store(false)
		return nil, fmt.Errorf("meilisearch search: %w", err)
	}

	ids := make([]int64, 0, len(resp.Hits))
	for _, hit := range resp.Hits {
		if id, ok := hitID(hit["id"]); ok {
			ids = append(ids, id)
		}
	}
	return ids, nil
}

func (m *MeiliIndex) Index(_ context.Context, docs ...Document) error {
	if len(docs) == 0 {
		return nil
	}
	_, err := m.client.Index(indexUID).AddDocuments(docs, nil)
	return err
}

// hitID accepts the id as a JSON number or string.
func hitID(raw json.RawMessage) (int64, bool) {
	if len(raw) == 0 {
		return 0, false
	}
	var n int64
	if err := json.Unmarshal(raw, &n); err == nil {
		return n, true
	}
	var s string
	if err := json.Unmarshal(raw, &s); err == nil {
		if n, err := strconv.ParseInt(s, 10, 64); err == nil {
			return n, true
		}
	}
	return 0, false
}
