package cart

import (
	"errors"
	"path/filepath"
	"sync"

	"github.com/google/uuid"
)

var ErrInvalidSession = errors.New("invalid session id")

// Manager はセッション（ユーザー）ごとにStoreを1つだけ持つ。
// グローバルなカート状態は持たず、ここからDIで配る。
type Manager struct {
	mu     sync.Mutex
	dir    string
	stores map[string]*Store
}

// NewManager はdir以下にセッション別のカートファイルを置くManagerを作る。
func NewManager(dir string) *Manager {
	return &Manager{
		dir:    dir,
		stores: map[string]*Store{},
	}
}

// ForSession はセッションのStoreを返す。初回はSlotから復元して作る。
func (m *Manager) ForSession(sessionID string) (*Store, error) {
	//ファイル名に使うのでUUIDだけ許可
	if _, err := uuid.Parse(sessionID); err != nil {
		return nil, ErrInvalidSession
	}

	m.mu.Lock()
	defer m.mu.Unlock()

	if st, ok := m.stores[sessionID]; ok {
		return st, nil
	}

	slot := NewFileSlot(filepath.Join(m.dir, sessionID+".json"))
	st, err := New(slot)
	if err != nil {
		return nil, err
	}

	m.stores[sessionID] = st
	return st, nil
}

// Drop はセッション終了（ログアウト）時にStoreを破棄する。
// 永続化済みの状態はファイルに残るので、次回ForSessionで復元される。
func (m *Manager) Drop(sessionID string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.stores, sessionID)
}
