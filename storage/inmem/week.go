package inmemdb

import (
	"context"
	"sync"

	"github.com/trezcool/lophoc/core/calendar"
)

type weekStore struct {
	mutex  sync.RWMutex
	starts map[int]string
}

func NewWeekStore() calendar.WeekStore {
	return &weekStore{starts: make(map[int]string)}
}

func (s *weekStore) SetWeekStart(_ context.Context, week int, start string) error {
	s.mutex.Lock()
	defer s.mutex.Unlock()
	s.starts[week] = start
	return nil
}

func (s *weekStore) DeleteWeekStart(_ context.Context, week int) error {
	s.mutex.Lock()
	defer s.mutex.Unlock()
	delete(s.starts, week)
	return nil
}

func (s *weekStore) WeekStarts(_ context.Context) (map[int]string, error) {
	s.mutex.RLock()
	defer s.mutex.RUnlock()

	starts := make(map[int]string, len(s.starts))
	for w, d := range s.starts {
		starts[w] = d
	}
	return starts, nil
}
