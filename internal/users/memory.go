package users

import (
	"context"
	"sort"
	"sync"
	"time"
)

// MemoryStore はプロセス内で完結する Store 実装です。
// DATABASE_URL 未設定の開発環境とテストで利用します。
type MemoryStore struct {
	lock   sync.RWMutex
	nextID int64
	byName map[string]*User
	now    func() time.Time
}

// NewMemoryStore は空の MemoryStore を作成します。
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{
		nextID: 1,
		byName: make(map[string]*User),
		now:    time.Now,
	}
}

// FindByUsername は username でユーザーを検索します。
func (s *MemoryStore) FindByUsername(ctx context.Context, username string) (*User, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	s.lock.RLock()
	defer s.lock.RUnlock()

	u, ok := s.byName[username]
	if !ok {
		return nil, nil
	}
	copied := *u
	return &copied, nil
}

// Insert は存在確認と追加を同じロック内で行います。
func (s *MemoryStore) Insert(ctx context.Context, username, email, passwordHash string) (string, error) {
	if err := ctx.Err(); err != nil {
		return "", err
	}
	s.lock.Lock()
	defer s.lock.Unlock()

	if _, exists := s.byName[username]; exists {
		return "", ErrUsernameTaken
	}
	s.byName[username] = &User{
		ID:             s.nextID,
		Username:       username,
		Email:          email,
		HashedPassword: passwordHash,
		CreatedAt:      s.now().UTC(),
	}
	s.nextID++
	return username, nil
}

// List は全ユーザーを id 順で返します。
func (s *MemoryStore) List(ctx context.Context) ([]User, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	s.lock.RLock()
	defer s.lock.RUnlock()

	list := make([]User, 0, len(s.byName))
	for _, u := range s.byName {
		list = append(list, *u)
	}
	sort.Slice(list, func(i, j int) bool { return list[i].ID < list[j].ID })
	return list, nil
}
