package interfaces

import "context"

// SummaryCache хранит сводки мира по ключу текста истории.
// Get возвращает ("", false, nil), если записи нет.
type SummaryCache interface {
	Get(ctx context.Context, key string) (string, bool, error)
	Set(ctx context.Context, key string, summary string) error
}
