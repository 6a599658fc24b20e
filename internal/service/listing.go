// Пакет service — бизнес-логика Admin UI.
// listing.go — списки документов и объектов хранилища с LRU-кэшем и
// защитой от устаревших ответов.
//
// Кэш ключуется парой (источник, класс, тип); свободный текстовый фильтр
// применяется локально к кэшированному набору и в ключ не входит.
// Каждой выборке присваивается монотонный порядковый номер: завершение
// с номером меньше последнего применённого не перезаписывает кэш.
// Без этого медленный ранний ответ мог бы затереть результат более
// позднего запроса.
package service

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"sync"
	"sync/atomic"
	"time"

	"github.com/hashicorp/golang-lru/v2/expirable"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"

	"github.com/arturkryukov/edustore/admin-ui/internal/apiclient"
	"github.com/arturkryukov/edustore/admin-ui/internal/domain/model"
)

// Prometheus-метрики кэша списков.
var (
	listingCacheHitsTotal = promauto.NewCounter(prometheus.CounterOpts{
		Name: "au_listing_cache_hits_total",
		Help: "Общее количество попаданий в LRU-кэш списков.",
	})
	listingCacheMissesTotal = promauto.NewCounter(prometheus.CounterOpts{
		Name: "au_listing_cache_misses_total",
		Help: "Общее количество промахов LRU-кэша списков.",
	})
	listingStaleDiscardsTotal = promauto.NewCounter(prometheus.CounterOpts{
		Name: "au_listing_stale_discards_total",
		Help: "Количество устаревших ответов листинга, не попавших в кэш.",
	})
)

// listingFetcher — операции портального API, нужные спискам.
// Выделен для подмены в тестах.
type listingFetcher interface {
	ListDocuments(ctx context.Context, token string, q model.ListQuery) (*model.DocumentListResponse, error)
	ListObjects(ctx context.Context, token string, q model.ListQuery) (*model.ObjectListResponse, error)
}

// ListingService — сервис списков с per-instance LRU-кэшем.
// Каждый экземпляр Admin UI кэширует независимо (stateless архитектура).
type ListingService struct {
	client listingFetcher

	docCache *expirable.LRU[string, []model.DocumentRecord]
	objCache *expirable.LRU[string, []model.ObjectRecord]

	// seq — монотонный счётчик выборок.
	seq atomic.Uint64
	// lastApplied — последний применённый номер по ключу кэша.
	mu          sync.Mutex
	lastApplied map[string]uint64

	logger *slog.Logger
}

// NewListingService создаёт сервис списков.
// maxSize — максимальное количество наборов в каждом кэше.
// ttl — время жизни набора после добавления.
func NewListingService(client listingFetcher, maxSize int, ttl time.Duration, logger *slog.Logger) *ListingService {
	return &ListingService{
		client:      client,
		docCache:    expirable.NewLRU[string, []model.DocumentRecord](maxSize, nil, ttl),
		objCache:    expirable.NewLRU[string, []model.ObjectRecord](maxSize, nil, ttl),
		lastApplied: make(map[string]uint64),
		logger:      logger.With(slog.String("service", "listing")),
	}
}

// documentsKey строит ключ кэша для списка документов.
func documentsKey(q model.ListQuery) string {
	return fmt.Sprintf("documents|%s|%s", q.Class, q.TypeName)
}

// objectsKey строит ключ кэша для списка объектов хранилища.
func objectsKey(q model.ListQuery) string {
	return fmt.Sprintf("storage|%s|%s", q.Class, q.TypeName)
}

// ListDocuments возвращает список документов реестра.
// Набор берётся из кэша либо загружается с портального API;
// свободный текстовый фильтр применяется к набору локально.
func (s *ListingService) ListDocuments(ctx context.Context, token string, q model.ListQuery) (*model.DocumentListResponse, error) {
	q = q.Normalize()
	key := documentsKey(q)

	if items, ok := s.docCache.Get(key); ok {
		listingCacheHitsTotal.Inc()
		filtered := filterDocuments(items, q.FreeText)
		return &model.DocumentListResponse{Count: len(filtered), Items: filtered}, nil
	}
	listingCacheMissesTotal.Inc()

	// Загружаем полный набор без текстового фильтра: один набор в кэше
	// обслуживает любые локальные фильтры.
	baseQ := q
	baseQ.FreeText = ""

	seq := s.seq.Add(1)
	resp, err := s.client.ListDocuments(ctx, token, baseQ)
	if err != nil {
		// Сбой сброса не прощает: устаревший набор не должен пережить ошибку
		s.docCache.Remove(key)
		return nil, fmt.Errorf("ошибка загрузки списка документов: %w", err)
	}

	if s.applySeq(key, seq) {
		s.docCache.Add(key, resp.Items)
	} else {
		listingStaleDiscardsTotal.Inc()
		s.logger.Debug("Устаревший ответ листинга отброшен",
			slog.String("key", key),
			slog.Uint64("seq", seq),
		)
	}

	filtered := filterDocuments(resp.Items, q.FreeText)
	return &model.DocumentListResponse{Count: len(filtered), Items: filtered}, nil
}

// ListObjects возвращает список объектов хранилища.
// Семантика кэширования и защиты от устаревших ответов та же,
// что и у ListDocuments.
func (s *ListingService) ListObjects(ctx context.Context, token string, q model.ListQuery) (*model.ObjectListResponse, error) {
	q = q.Normalize()
	key := objectsKey(q)

	if items, ok := s.objCache.Get(key); ok {
		listingCacheHitsTotal.Inc()
		filtered := filterObjects(items, q.FreeText)
		return &model.ObjectListResponse{Count: len(filtered), Items: filtered}, nil
	}
	listingCacheMissesTotal.Inc()

	baseQ := q
	baseQ.FreeText = ""

	seq := s.seq.Add(1)
	resp, err := s.client.ListObjects(ctx, token, baseQ)
	if err != nil {
		s.objCache.Remove(key)
		return nil, fmt.Errorf("ошибка загрузки списка объектов: %w", err)
	}

	if s.applySeq(key, seq) {
		s.objCache.Add(key, resp.Items)
	} else {
		listingStaleDiscardsTotal.Inc()
	}

	filtered := filterObjects(resp.Items, q.FreeText)
	return &model.ObjectListResponse{
		Bucket: resp.Bucket,
		Prefix: resp.Prefix,
		Count:  len(filtered),
		Items:  filtered,
	}, nil
}

// Invalidate сбрасывает кэшированные наборы для пары (класс, тип).
// Вызывается после успешной загрузки файла: наборы устарели.
func (s *ListingService) Invalidate(q model.ListQuery) {
	q = q.Normalize()
	s.docCache.Remove(documentsKey(q))
	s.objCache.Remove(objectsKey(q))
}

// applySeq фиксирует номер выборки по ключу.
// Возвращает false, если более поздняя выборка уже применена —
// такой результат кэшировать нельзя.
func (s *ListingService) applySeq(key string, seq uint64) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	if seq < s.lastApplied[key] {
		return false
	}
	s.lastApplied[key] = seq
	return true
}

// filterDocuments фильтрует набор по подстроке (без учёта регистра)
// в имени и URL документа. Пустой фильтр возвращает набор целиком.
// Тип фильтровать бессмысленно: весь набор одного типа (ключ кэша).
func filterDocuments(items []model.DocumentRecord, freeText string) []model.DocumentRecord {
	if freeText == "" {
		return items
	}
	needle := strings.ToLower(freeText)
	filtered := make([]model.DocumentRecord, 0, len(items))
	for _, it := range items {
		if strings.Contains(strings.ToLower(it.Name), needle) ||
			strings.Contains(strings.ToLower(it.URL), needle) {
			filtered = append(filtered, it)
		}
	}
	return filtered
}

// filterObjects фильтрует набор объектов по подстроке в имени файла
// и имени объекта.
func filterObjects(items []model.ObjectRecord, freeText string) []model.ObjectRecord {
	if freeText == "" {
		return items
	}
	needle := strings.ToLower(freeText)
	filtered := make([]model.ObjectRecord, 0, len(items))
	for _, it := range items {
		if strings.Contains(strings.ToLower(it.Filename), needle) ||
			strings.Contains(strings.ToLower(it.ObjectName), needle) {
			filtered = append(filtered, it)
		}
	}
	return filtered
}

var _ listingFetcher = (*apiclient.Client)(nil)
