// progress.go — подсчёт прогресса передачи тела запроса.
package apiclient

import "io"

// ClampProgress вычисляет процент загрузки по счётчикам байт
// и ограничивает его диапазоном [0,100]. Несогласованные счётчики
// (total <= 0, loaded > total) не считаются ошибкой.
func ClampProgress(loaded, total int64) int {
	if total <= 0 {
		return 0
	}
	percent := int(loaded * 100 / total)
	if percent < 0 {
		return 0
	}
	if percent > 100 {
		return 100
	}
	return percent
}

// progressReader — io.Reader, вызывающий callback по мере чтения.
// Транспорт читает multipart-тело из этого reader'а, поэтому прогресс
// отражает реально переданные байты.
type progressReader struct {
	r          io.Reader
	total      int64
	loaded     int64
	onProgress func(percent int)
	lastSent   int
}

// newProgressReader оборачивает reader известной длины.
// onProgress может быть nil — тогда подсчёт не ведётся.
func newProgressReader(r io.Reader, total int64, onProgress func(percent int)) *progressReader {
	return &progressReader{r: r, total: total, onProgress: onProgress, lastSent: -1}
}

// Read реализует io.Reader. Callback вызывается только при изменении
// процента, чтобы не зашумлять вызывающий слой.
func (pr *progressReader) Read(p []byte) (int, error) {
	n, err := pr.r.Read(p)
	if n > 0 {
		pr.loaded += int64(n)
		if pr.onProgress != nil {
			percent := ClampProgress(pr.loaded, pr.total)
			if percent != pr.lastSent {
				pr.lastSent = percent
				pr.onProgress(percent)
			}
		}
	}
	return n, err
}
