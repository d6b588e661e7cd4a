package pipeline

import "errors"

// Стабильные виды ошибок конвейера. Обработчики маппят их на HTTP-статусы
// через errors.Is; всё остальное считается внутренней ошибкой.
var (
	ErrInvalidInput         = errors.New("invalid input")
	ErrUnauthorized         = errors.New("unauthorized")
	ErrNotFound             = errors.New("not found")
	ErrDetectionUnavailable = errors.New("detection unavailable")
	ErrCatalogUnavailable   = errors.New("catalog unavailable")
	ErrPersistence          = errors.New("persistence error")
)
