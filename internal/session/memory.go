package session

import (
	"context"
	"sync"
	"time"
)

// MemoryStore はプロセス内のマップにセッションを保持します。単一インスタンス向けです。
type MemoryStore struct {
	lock    sync.Mutex
	records map[string]Record
	now     func() time.Time
}

// NewMemoryStore は MemoryStore を作成します。
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{
		records: make(map[string]Record),
		now:     time.Now,
	}
}

// Create はセッションを作成します。
func (s *MemoryStore) Create(ctx context.Context, username string, ttl time.Duration) (string, error) {
	if ttl <= 0 {
		return "", ErrInvalidTTL
	}
	if err := ctx.Err(); err != nil {
		return "", err
	}

	s.lock.Lock()
	defer s.lock.Unlock()

	for {
		id, err := NewID()
		if err != nil {
			return "", err
		}
		if _, exists := s.records[id]; exists {
			continue
		}
		now := s.now().UTC()
		s.records[id] = Record{
			Username:  username,
			CreatedAt: now,
			ExpiresAt: now.Add(ttl),
		}
		return id, nil
	}
}

// Get は有効なセッションを返します。期限切れの記録はその場で削除します。
func (s *MemoryStore) Get(ctx context.Context, id string) (*Record, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	if !validID(id) {
		return nil, nil
	}

	s.lock.Lock()
	defer s.lock.Unlock()

	record, ok := s.records[id]
	if !ok {
		return nil, nil
	}
	if record.Expired(s.now()) {
		delete(s.records, id)
		return nil, nil
	}
	return &record, nil
}

// Delete はセッションを削除します。
func (s *MemoryStore) Delete(ctx context.Context, id string) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	s.lock.Lock()
	defer s.lock.Unlock()
	delete(s.records, id)
	return nil
}

// PurgeExpired は期限切れの記録を削除し、削除件数を返します。
func (s *MemoryStore) PurgeExpired() int {
	s.lock.Lock()
	defer s.lock.Unlock()

	now := s.now()
	removed := 0
	for id, record := range s.records {
		if record.Expired(now) {
			delete(s.records, id)
			removed++
		}
	}
	return removed
}

// Len は保持しているセッション数を返します。
func (s *MemoryStore) Len() int {
	s.lock.Lock()
	defer s.lock.Unlock()
	return len(s.records)
}

// RunJanitor は ctx が終了するまで interval ごとに PurgeExpired を実行します。
func (s *MemoryStore) RunJanitor(ctx context.Context, interval time.Duration, onPurge func(removed int)) {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			removed := s.PurgeExpired()
			if onPurge != nil && removed > 0 {
				onPurge(removed)
			}
		}
	}
}
