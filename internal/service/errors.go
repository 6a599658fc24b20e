// errors.go — ошибки бизнес-логики сервисного слоя.
package service

import "errors"

var (
	// ErrNoFile — файл для загрузки не передан.
	ErrNoFile = errors.New("файл не выбран")
	// ErrEmptyFile — передан пустой файл.
	ErrEmptyFile = errors.New("файл пустой")
	// ErrInvalidClass — класс вне допустимого набора.
	ErrInvalidClass = errors.New("недопустимый класс: допустимые значения — 10, 11, 12")
	// ErrInvalidType — тип документа вне допустимого набора.
	ErrInvalidType = errors.New("недопустимый тип документа")
	// ErrInvalidMetadata — метаданные не являются JSON-объектом.
	ErrInvalidMetadata = errors.New("метаданные должны быть JSON-объектом")
	// ErrUploadNotFound — неизвестный идентификатор загрузки.
	ErrUploadNotFound = errors.New("загрузка не найдена")
)
