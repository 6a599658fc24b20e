// upload.go — сервис загрузки файлов с отслеживанием прогресса.
//
// Загрузка асинхронная: валидация выполняется синхронно (неуспешная
// загрузка никогда не стартует), передача идёт в фоне, прогресс
// опрашивается по идентификатору. Состояния хранятся в expirable LRU,
// завершённые загрузки вычищаются по TTL автоматически.
package service

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/hashicorp/golang-lru/v2/expirable"

	"github.com/arturkryukov/edustore/admin-ui/internal/apiclient"
	"github.com/arturkryukov/edustore/admin-ui/internal/domain/model"
)

// Фазы загрузки.
const (
	UploadPhaseUploading = "uploading"
	UploadPhaseDone      = "done"
	UploadPhaseError     = "error"
)

// UploadState — текущее состояние загрузки.
// Копия возвращается наружу, внутреннее состояние защищено мьютексом.
type UploadState struct {
	ID      string `json:"id"`
	Phase   string `json:"phase"`
	Percent int    `json:"percent"`
	// ObjectName и DocumentURL заполняются в фазе done.
	ObjectName  string `json:"object_name,omitempty"`
	DocumentURL string `json:"document_url,omitempty"`
	// Error заполняется в фазе error.
	Error string `json:"error,omitempty"`
	// AuthExpired — загрузка провалилась из-за истёкшей авторизации (401).
	// Обработчик прогресса по этому признаку завершает сессию.
	AuthExpired bool `json:"auth_expired,omitempty"`
}

// uploadEntry — внутренняя запись трекера.
type uploadEntry struct {
	mu    sync.Mutex
	state UploadState
}

func (e *uploadEntry) snapshot() *UploadState {
	e.mu.Lock()
	defer e.mu.Unlock()
	st := e.state
	return &st
}

func (e *uploadEntry) setPercent(percent int) {
	e.mu.Lock()
	defer e.mu.Unlock()
	if e.state.Phase == UploadPhaseUploading {
		e.state.Percent = percent
	}
}

func (e *uploadEntry) finish(result *model.UploadResult) {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.state.Phase = UploadPhaseDone
	e.state.Percent = 100
	e.state.ObjectName = result.ObjectName
	e.state.DocumentURL = result.DocumentURL
}

func (e *uploadEntry) fail(err error) {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.state.Phase = UploadPhaseError
	e.state.Error = err.Error()
	e.state.AuthExpired = errors.Is(err, apiclient.ErrAuthExpired)
}

// uploader — операция портального API, нужная загрузке.
type uploader interface {
	UploadFile(ctx context.Context, token string, upload *model.UploadRequest, onProgress func(percent int)) (*model.UploadResult, error)
}

// UploadService — сервис загрузки файлов в реестр документов.
type UploadService struct {
	client  uploader
	listing *ListingService
	tracker *expirable.LRU[string, *uploadEntry]
	// timeout — предельная длительность одной фоновой загрузки.
	timeout time.Duration
	logger  *slog.Logger
}

// NewUploadService создаёт сервис загрузки.
// listing может быть nil — тогда инвалидация кэша списков не выполняется.
// trackerTTL — время хранения состояния завершённой загрузки.
func NewUploadService(
	client uploader,
	listing *ListingService,
	trackerSize int,
	trackerTTL time.Duration,
	timeout time.Duration,
	logger *slog.Logger,
) *UploadService {
	return &UploadService{
		client:  client,
		listing: listing,
		tracker: expirable.NewLRU[string, *uploadEntry](trackerSize, nil, trackerTTL),
		timeout: timeout,
		logger:  logger.With(slog.String("service", "upload")),
	}
}

// Validate проверяет параметры загрузки в фиксированном порядке:
// файл → размер → класс → тип → метаданные. Возвращает первую ошибку.
// Метаданные: пустая строка эквивалентна "{}", иначе — JSON-объект.
func (s *UploadService) Validate(req *model.UploadRequest, metadataRaw string) error {
	if req.File == nil || req.Filename == "" {
		return ErrNoFile
	}
	if req.Size <= 0 {
		return ErrEmptyFile
	}
	if !model.IsAllowedClass(req.Class) {
		return ErrInvalidClass
	}
	if !model.IsAllowedType(req.TypeName) {
		return fmt.Errorf("%w: %q", ErrInvalidType, req.TypeName)
	}

	metadata, err := parseMetadata(metadataRaw)
	if err != nil {
		return err
	}
	req.Metadata = metadata
	return nil
}

// parseMetadata разбирает строку метаданных.
// Пустая строка — пустой объект. Массив или скаляр — ошибка.
func parseMetadata(raw string) (map[string]any, error) {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return map[string]any{}, nil
	}
	var metadata map[string]any
	if err := json.Unmarshal([]byte(raw), &metadata); err != nil {
		return nil, fmt.Errorf("%w: %s", ErrInvalidMetadata, err)
	}
	if metadata == nil {
		metadata = map[string]any{}
	}
	return metadata, nil
}

// Start валидирует запрос и запускает фоновую загрузку.
// Возвращает идентификатор для опроса прогресса.
// При ошибке валидации загрузка не стартует и идентификатор не выдаётся.
func (s *UploadService) Start(token string, req *model.UploadRequest, metadataRaw string) (string, error) {
	if err := s.Validate(req, metadataRaw); err != nil {
		return "", err
	}

	id := uuid.NewString()
	entry := &uploadEntry{state: UploadState{ID: id, Phase: UploadPhaseUploading}}
	s.tracker.Add(id, entry)

	s.logger.Info("Загрузка начата",
		slog.String("upload_id", id),
		slog.String("filename", req.Filename),
		slog.String("class", req.Class),
		slog.String("type", req.TypeName),
		slog.Int64("size", req.Size),
	)

	// Передача идёт в фоне: контекст HTTP-запроса страницы к этому
	// моменту уже завершён, поэтому берётся независимый с таймаутом.
	go s.run(id, entry, token, req)

	return id, nil
}

// run выполняет передачу файла и обновляет состояние трекера.
func (s *UploadService) run(id string, entry *uploadEntry, token string, req *model.UploadRequest) {
	ctx, cancel := context.WithTimeout(context.Background(), s.timeout)
	defer cancel()

	result, err := s.client.UploadFile(ctx, token, req, entry.setPercent)
	if err != nil {
		entry.fail(err)
		s.logger.Error("Загрузка завершилась ошибкой",
			slog.String("upload_id", id),
			slog.String("error", err.Error()),
		)
		return
	}

	entry.finish(result)
	if s.listing != nil {
		s.listing.Invalidate(model.ListQuery{Class: req.Class, TypeName: req.TypeName})
	}
	s.logger.Info("Загрузка завершена",
		slog.String("upload_id", id),
		slog.String("object_name", result.ObjectName),
	)
}

// Progress возвращает снимок состояния загрузки по идентификатору.
// Возвращает ErrUploadNotFound для неизвестного или истёкшего идентификатора.
func (s *UploadService) Progress(id string) (*UploadState, error) {
	entry, ok := s.tracker.Get(id)
	if !ok {
		return nil, ErrUploadNotFound
	}
	return entry.snapshot(), nil
}
