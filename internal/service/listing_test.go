package service

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"testing"
	"time"

	"github.com/arturkryukov/edustore/admin-ui/internal/domain/model"
)

func testLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

// fakeFetcher — управляемая подмена портального API.
type fakeFetcher struct {
	docCalls int
	objCalls int
	docResp  *model.DocumentListResponse
	objResp  *model.ObjectListResponse
	err      error
	// onListDocuments позволяет тесту вмешаться в момент выборки.
	onListDocuments func()
}

func (f *fakeFetcher) ListDocuments(_ context.Context, _ string, _ model.ListQuery) (*model.DocumentListResponse, error) {
	f.docCalls++
	if f.onListDocuments != nil {
		f.onListDocuments()
	}
	if f.err != nil {
		return nil, f.err
	}
	return f.docResp, nil
}

func (f *fakeFetcher) ListObjects(_ context.Context, _ string, _ model.ListQuery) (*model.ObjectListResponse, error) {
	f.objCalls++
	if f.err != nil {
		return nil, f.err
	}
	return f.objResp, nil
}

func docs(names ...string) []model.DocumentRecord {
	items := make([]model.DocumentRecord, 0, len(names))
	for _, n := range names {
		items = append(items, model.DocumentRecord{ID: n, Name: n, TypeName: "lesson"})
	}
	return items
}

func TestListingService_CachesPerClassAndType(t *testing.T) {
	fetcher := &fakeFetcher{docResp: &model.DocumentListResponse{Count: 2, Items: docs("алгебра", "геометрия")}}
	svc := NewListingService(fetcher, 16, time.Minute, testLogger())

	q := model.ListQuery{Class: "10", TypeName: "lesson"}

	resp, err := svc.ListDocuments(context.Background(), "token", q)
	if err != nil {
		t.Fatalf("Неожиданная ошибка: %v", err)
	}
	if resp.Count != 2 {
		t.Errorf("Ожидалось 2 документа, получено %d", resp.Count)
	}

	// Повторный запрос того же (класс, тип) — из кэша
	if _, err := svc.ListDocuments(context.Background(), "token", q); err != nil {
		t.Fatalf("Неожиданная ошибка: %v", err)
	}
	if fetcher.docCalls != 1 {
		t.Errorf("Ожидался 1 вызов API, получено %d", fetcher.docCalls)
	}

	// Другой класс — новый ключ, новая выборка
	q2 := model.ListQuery{Class: "11", TypeName: "lesson"}
	if _, err := svc.ListDocuments(context.Background(), "token", q2); err != nil {
		t.Fatalf("Неожиданная ошибка: %v", err)
	}
	if fetcher.docCalls != 2 {
		t.Errorf("Ожидалось 2 вызова API, получено %d", fetcher.docCalls)
	}
}

func TestListingService_FreeTextFiltersLocally(t *testing.T) {
	fetcher := &fakeFetcher{docResp: &model.DocumentListResponse{
		Count: 3,
		Items: docs("Алгебра 10 класс", "Геометрия 10 класс", "Физика 10 класс"),
	}}
	svc := NewListingService(fetcher, 16, time.Minute, testLogger())

	q := model.ListQuery{Class: "10", TypeName: "lesson", FreeText: "геометрия"}
	resp, err := svc.ListDocuments(context.Background(), "token", q)
	if err != nil {
		t.Fatalf("Неожиданная ошибка: %v", err)
	}
	if resp.Count != 1 {
		t.Fatalf("Ожидался 1 документ после фильтра, получено %d", resp.Count)
	}
	if resp.Items[0].Name != "Геометрия 10 класс" {
		t.Errorf("Неожиданный документ: %q", resp.Items[0].Name)
	}

	// Смена текстового фильтра не вызывает новую выборку:
	// фильтр применяется к кэшированному набору
	q.FreeText = "физика"
	resp, err = svc.ListDocuments(context.Background(), "token", q)
	if err != nil {
		t.Fatalf("Неожиданная ошибка: %v", err)
	}
	if resp.Count != 1 {
		t.Errorf("Ожидался 1 документ, получено %d", resp.Count)
	}
	if fetcher.docCalls != 1 {
		t.Errorf("Текстовый фильтр не должен вызывать повторную выборку, вызовов: %d", fetcher.docCalls)
	}
}

func TestListingService_FreeTextMatchesNameAndURL(t *testing.T) {
	fetcher := &fakeFetcher{docResp: &model.DocumentListResponse{
		Count: 2,
		Items: []model.DocumentRecord{
			{ID: "d1", Name: "Bài 1", URL: "https://cdn/algebra-10.pdf", TypeName: "lesson"},
			{ID: "d2", Name: "Bài 2", URL: "https://cdn/geometry-10.pdf", TypeName: "lesson"},
		},
	}}
	svc := NewListingService(fetcher, 16, time.Minute, testLogger())

	// Фильтр по подстроке URL
	q := model.ListQuery{Class: "10", TypeName: "lesson", FreeText: "algebra"}
	resp, err := svc.ListDocuments(context.Background(), "token", q)
	if err != nil {
		t.Fatalf("Неожиданная ошибка: %v", err)
	}
	if resp.Count != 1 || resp.Items[0].ID != "d1" {
		t.Errorf("Фильтр должен совпадать по URL, получено %+v", resp.Items)
	}

	// Тип в фильтре не участвует: весь набор одного типа
	q.FreeText = "lesson"
	resp, err = svc.ListDocuments(context.Background(), "token", q)
	if err != nil {
		t.Fatalf("Неожиданная ошибка: %v", err)
	}
	if resp.Count != 0 {
		t.Errorf("Подстрока типа не должна совпадать, получено %d записей", resp.Count)
	}
}

func TestListingService_ErrorInvalidatesCache(t *testing.T) {
	fetcher := &fakeFetcher{docResp: &model.DocumentListResponse{Count: 1, Items: docs("алгебра")}}
	svc := NewListingService(fetcher, 16, time.Minute, testLogger())

	q := model.ListQuery{Class: "10", TypeName: "lesson"}
	if _, err := svc.ListDocuments(context.Background(), "token", q); err != nil {
		t.Fatalf("Неожиданная ошибка: %v", err)
	}

	// Инвалидация и последующий сбой: ошибка возвращается, кэш пуст
	svc.Invalidate(q)
	fetcher.err = errors.New("портальный API недоступен")
	if _, err := svc.ListDocuments(context.Background(), "token", q); err == nil {
		t.Fatal("Ожидалась ошибка при сбое API")
	}

	// После восстановления — свежая выборка, а не устаревший набор
	fetcher.err = nil
	fetcher.docResp = &model.DocumentListResponse{Count: 2, Items: docs("алгебра", "геометрия")}
	resp, err := svc.ListDocuments(context.Background(), "token", q)
	if err != nil {
		t.Fatalf("Неожиданная ошибка: %v", err)
	}
	if resp.Count != 2 {
		t.Errorf("Ожидался свежий набор из 2 документов, получено %d", resp.Count)
	}
}

func TestListingService_StaleResponseDoesNotOverwrite(t *testing.T) {
	fetcher := &fakeFetcher{}
	svc := NewListingService(fetcher, 16, time.Minute, testLogger())

	q := model.ListQuery{Class: "10", TypeName: "lesson"}
	key := documentsKey(q)

	// Эмулируем гонку: пока «медленная» выборка в полёте, более поздняя
	// уже применила свой результат с большим номером.
	fetcher.docResp = &model.DocumentListResponse{Count: 1, Items: docs("устаревший")}
	fetcher.onListDocuments = func() {
		svc.applySeq(key, 100)
	}

	if _, err := svc.ListDocuments(context.Background(), "token", q); err != nil {
		t.Fatalf("Неожиданная ошибка: %v", err)
	}

	// Устаревший результат не должен был попасть в кэш
	if _, ok := svc.docCache.Get(key); ok {
		t.Error("Устаревший ответ не должен перезаписывать кэш")
	}
}

func TestListingService_ListObjects(t *testing.T) {
	fetcher := &fakeFetcher{objResp: &model.ObjectListResponse{
		Bucket: "edustore",
		Prefix: "10/lesson/",
		Count:  2,
		Items: []model.ObjectRecord{
			{Filename: "урок-1.pdf", ObjectName: "10/lesson/урок-1.pdf"},
			{Filename: "урок-2.pdf", ObjectName: "10/lesson/урок-2.pdf"},
		},
	}}
	svc := NewListingService(fetcher, 16, time.Minute, testLogger())

	q := model.ListQuery{Class: "10", TypeName: "lesson", FreeText: "урок-2"}
	resp, err := svc.ListObjects(context.Background(), "token", q)
	if err != nil {
		t.Fatalf("Неожиданная ошибка: %v", err)
	}
	if resp.Count != 1 {
		t.Fatalf("Ожидался 1 объект после фильтра, получено %d", resp.Count)
	}
	if resp.Items[0].Filename != "урок-2.pdf" {
		t.Errorf("Неожиданный объект: %q", resp.Items[0].Filename)
	}
	if resp.Bucket != "edustore" {
		t.Errorf("Bucket должен сохраняться: %q", resp.Bucket)
	}
}
