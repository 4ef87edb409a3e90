package cart

import "sync"

// セッションIDごとのカートを持つレジストリ。
// ここのロックはmapの出し入れ用。明細の排他はCart側のmutexが持つ。
type Store struct {
	mu    sync.RWMutex
	carts map[string]*Cart
}

func NewStore() *Store {
	return &Store{carts: map[string]*Cart{}}
}

// セッションのカートを返す。無ければ空カートを作る。
func (s *Store) GetOrCreate(sessionID string) *Cart {
	s.mu.Lock()
	defer s.mu.Unlock()

	if c, ok := s.carts[sessionID]; ok {
		return c
	}
	c := New()
	s.carts[sessionID] = c
	return c
}

// セッションのカートを返す（作成はしない）
func (s *Store) Get(sessionID string) (*Cart, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	c, ok := s.carts[sessionID]
	return c, ok
}

// チェックアウト完了・明示クリアでカートを破棄する
func (s *Store) Discard(sessionID string) {
	s.mu.Lock()
	defer s.mu.Unlock()

	delete(s.carts, sessionID)
}
