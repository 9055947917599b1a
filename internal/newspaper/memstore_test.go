package newspaper

import (
	"context"
	"errors"
	"slices"
	"sort"
	"sync"

	"github.com/globalnews/navigator/pkg/event"
)

var errStorage = errors.New("storage unavailable")

// memRepo はテスト用のインメモリ Repository。
type memRepo struct {
	mu         sync.Mutex
	newspapers []Newspaper
	failAll    bool
}

func newMemRepo() *memRepo {
	return &memRepo{}
}

var _ Repository = (*memRepo)(nil)

func (m *memRepo) ListNewspapers(_ context.Context) ([]Newspaper, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.failAll {
		return nil, errStorage
	}
	return slices.Clone(m.newspapers), nil
}

func (m *memRepo) ListNewspapersByCountry(_ context.Context, countryCode string) ([]Newspaper, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.failAll {
		return nil, errStorage
	}
	var out []Newspaper
	for _, n := range m.newspapers {
		if n.CountryCode == countryCode {
			out = append(out, n)
		}
	}
	return out, nil
}

func (m *memRepo) FindNewspaper(_ context.Context, id string) (*Newspaper, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.failAll {
		return nil, errStorage
	}
	for _, n := range m.newspapers {
		if n.ID == id {
			return &n, nil
		}
	}
	return nil, nil
}

func (m *memRepo) CreateNewspaper(_ context.Context, n Newspaper) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.failAll {
		return errStorage
	}
	m.newspapers = append(m.newspapers, n)
	return nil
}

func (m *memRepo) UpdateNewspaper(_ context.Context, id string, patch Patch) (*Newspaper, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.failAll {
		return nil, errStorage
	}
	for i := range m.newspapers {
		if m.newspapers[i].ID != id {
			continue
		}
		if patch.Title != nil {
			m.newspapers[i].Title = *patch.Title
		}
		if patch.URL != nil {
			m.newspapers[i].URL = *patch.URL
		}
		if patch.CountryCode != nil {
			m.newspapers[i].CountryCode = *patch.CountryCode
		}
		n := m.newspapers[i]
		return &n, nil
	}
	return nil, nil
}

func (m *memRepo) DeleteNewspaper(_ context.Context, id string) (bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.failAll {
		return false, errStorage
	}
	for i, n := range m.newspapers {
		if n.ID == id {
			m.newspapers = slices.Delete(m.newspapers, i, i+1)
			return true, nil
		}
	}
	return false, nil
}

func (m *memRepo) CountNewspapersByCountry(_ context.Context) ([]CountryInfo, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.failAll {
		return nil, errStorage
	}
	counts := make(map[string]int)
	for _, n := range m.newspapers {
		counts[n.CountryCode]++
	}
	out := make([]CountryInfo, 0, len(counts))
	for code, count := range counts {
		out = append(out, CountryInfo{CountryCode: code, NewspaperCount: count})
	}
	sort.Slice(out, func(i, j int) bool { return out[i].CountryCode < out[j].CountryCode })
	return out, nil
}

// recordingHandler は受け取ったイベントを記録するテスト用 EventHandler。
type recordingHandler struct {
	mu     sync.Mutex
	events []*event.Event
	err    error
}

func (h *recordingHandler) HandleEvent(_ context.Context, e *event.Event) error {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.events = append(h.events, e)
	return h.err
}

func (h *recordingHandler) types() []event.Type {
	h.mu.Lock()
	defer h.mu.Unlock()
	out := make([]event.Type, 0, len(h.events))
	for _, e := range h.events {
		out = append(out, e.EventType)
	}
	return out
}
