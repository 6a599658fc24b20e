// Пакет model — доменные модели Admin UI учебного портала Edustore.
// Записи документов и объектов read-only: они приходят от портального API
// и этим слоем никогда не изменяются, только отображаются.
package model

import "strings"

// Допустимые классы (уровни обучения) для загрузки и фильтрации.
var AllowedClasses = []string{"10", "11", "12"}

// Допустимые типы сущностей документов.
var AllowedTypes = []string{"subject", "topic", "lesson", "chunk", "keyword"}

// IsAllowedClass проверяет принадлежность класса к допустимому набору.
func IsAllowedClass(class string) bool {
	return contains(AllowedClasses, strings.TrimSpace(class))
}

// IsAllowedType проверяет принадлежность типа к допустимому набору.
func IsAllowedType(typeName string) bool {
	return contains(AllowedTypes, strings.ToLower(strings.TrimSpace(typeName)))
}

// DocumentRecord — запись документа из метаданных (GET /admin/documents).
type DocumentRecord struct {
	ID          string `json:"id"`
	Name        string `json:"name"`
	FileType    string `json:"file_type"`
	SizeBytes   int64  `json:"size_bytes"`
	LastUpdated string `json:"last_updated"`
	URL         string `json:"url,omitempty"`
	TypeName    string `json:"type_name,omitempty"`
}

// DocumentListResponse — ответ портального API на листинг документов.
type DocumentListResponse struct {
	Count int              `json:"count"`
	Items []DocumentRecord `json:"items"`
}

// ObjectRecord — запись объекта из листинга объектного хранилища
// (GET /admin/minio/files).
type ObjectRecord struct {
	Filename     string `json:"filename"`
	ObjectName   string `json:"object_name"`
	SizeBytes    int64  `json:"size_bytes"`
	LastModified string `json:"last_modified"`
	PublicURL    string `json:"public_url,omitempty"`
}

// ObjectListResponse — ответ портального API на листинг объектов.
type ObjectListResponse struct {
	Bucket string         `json:"bucket"`
	Prefix string         `json:"prefix"`
	Count  int            `json:"count"`
	Items  []ObjectRecord `json:"items"`
}

// ListQuery — параметры листинга (общие для обоих источников).
// FreeText фильтрует уже полученный набор локально и в запрос
// к объектному хранилищу не попадает.
type ListQuery struct {
	Class    string
	TypeName string
	FreeText string
	Limit    int
}

// Значение limit по умолчанию (совпадает с портальным API).
const DefaultListLimit = 500

// Normalize приводит параметры к канонической форме и
// подставляет limit по умолчанию.
func (q ListQuery) Normalize() ListQuery {
	q.Class = strings.TrimSpace(q.Class)
	q.TypeName = strings.ToLower(strings.TrimSpace(q.TypeName))
	q.FreeText = strings.TrimSpace(q.FreeText)
	if q.Limit <= 0 {
		q.Limit = DefaultListLimit
	}
	return q
}

func contains(set []string, v string) bool {
	for _, s := range set {
		if s == v {
			return true
		}
	}
	return false
}
