package generator

import "sync"

// NameRegistry - упорядоченное по вставке множество имен, выданных одним генератором.
// Только растет. Не сохраняется между экземплярами генератора.
type NameRegistry struct {
	mu    sync.Mutex
	names []string
	seen  map[string]struct{}
}

func NewNameRegistry() *NameRegistry {
	return &NameRegistry{seen: make(map[string]struct{})}
}

// Add добавляет имя, повторное добавление игнорируется.
func (r *NameRegistry) Add(name string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.seen[name]; ok {
		return
	}
	r.seen[name] = struct{}{}
	r.names = append(r.names, name)
}

// Names возвращает копию имен в порядке добавления.
func (r *NameRegistry) Names() []string {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make([]string, len(r.names))
	copy(out, r.names)
	return out
}

func (r *NameRegistry) Len() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.names)
}
