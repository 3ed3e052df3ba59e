package repository

import "errors"

// ErrDocumentNotFound документ метрики хоста отсутствует в архиве
var ErrDocumentNotFound = errors.New("document not found")
