package repository

// Option applies a configuration option to the MemoryStore.
type Option func(*MemoryStore)

// WithMaxResults bounds how many results are retained. The oldest are
// evicted first.
func WithMaxResults(n int) Option {
	return func(s *MemoryStore) {
		if n > 0 {
			s.maxResults = n
		}
	}
}
