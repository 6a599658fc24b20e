package model

import "io"

// UploadRequest — данные одной попытки загрузки файла.
// Конструируется заново на каждую отправку формы и после
// завершения запроса не переиспользуется.
type UploadRequest struct {
	// Class — класс (10/11/12).
	Class string
	// TypeName — тип сущности (subject/topic/lesson/chunk/keyword).
	TypeName string
	// Metadata — дополнительные метаданные; nil означает пустой объект.
	Metadata map[string]any
	// Filename — оригинальное имя файла.
	Filename string
	// Size — размер файла в байтах, должен быть > 0.
	Size int64
	// File — содержимое файла.
	File io.Reader
}

// UploadResult — результат успешной загрузки.
// DocumentURL берётся из echo-документа ответа по приоритету
// {type}_url → url (см. ResolveDocumentURL в apiclient).
type UploadResult struct {
	ObjectName  string
	DocumentURL string
}
