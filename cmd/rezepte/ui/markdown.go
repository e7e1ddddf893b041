package ui

import (
	"hash/fnv"
	"strings"
	"sync"

	"github.com/charmbracelet/glamour"
)

// MarkdownRenderer renders recipe instructions with glamour and caches the
// output per (text, width, theme).
type MarkdownRenderer struct {
	mu        sync.Mutex
	renderers map[rendererKey]*glamour.TermRenderer
	cache     map[uint64]string
	order     []uint64
	maxSize   int
}

type rendererKey struct {
	width int
	dark  bool
}

// NewMarkdownRenderer creates a renderer keeping at most maxSize rendered entries.
func NewMarkdownRenderer(maxSize int) *MarkdownRenderer {
	if maxSize <= 0 {
		maxSize = 64
	}
	return &MarkdownRenderer{
		renderers: make(map[rendererKey]*glamour.TermRenderer),
		cache:     make(map[uint64]string),
		maxSize:   maxSize,
	}
}

// computeKey computes a FNV-1a hash for cache keys.
func computeKey(text string, width int, dark bool) uint64 {
	h := fnv.New64a()
	var b [9]byte
	u := uint64(width)
	for i := 0; i < 8; i++ {
		b[i] = byte(u >> (8 * i))
	}
	if dark {
		b[8] = 1
	}
	h.Write(b[:])
	h.Write([]byte(text))
	return h.Sum64()
}

// Render returns the rendered markdown. If glamour fails the plain text is
// returned.
func (m *MarkdownRenderer) Render(text string, width int, theme Theme) string {
	if strings.TrimSpace(text) == "" {
		return ""
	}
	if width < 20 {
		width = 20
	}

	key := computeKey(text, width, theme.IsDark)

	m.mu.Lock()
	defer m.mu.Unlock()

	if out, ok := m.cache[key]; ok {
		return out
	}

	r, err := m.rendererLocked(width, theme)
	if err != nil {
		return text
	}
	out, err := r.Render(text)
	if err != nil {
		return text
	}
	out = strings.Trim(out, "\n")

	m.cache[key] = out
	m.order = append(m.order, key)
	if len(m.order) > m.maxSize {
		delete(m.cache, m.order[0])
		m.order = m.order[1:]
	}
	return out
}

func (m *MarkdownRenderer) rendererLocked(width int, theme Theme) (*glamour.TermRenderer, error) {
	rk := rendererKey{width: width, dark: theme.IsDark}
	if r, ok := m.renderers[rk]; ok {
		return r, nil
	}
	r, err := glamour.NewTermRenderer(
		glamour.WithStylePath(theme.MarkdownStyle()),
		glamour.WithWordWrap(width),
	)
	if err != nil {
		return nil, err
	}
	m.renderers[rk] = r
	return r, nil
}
