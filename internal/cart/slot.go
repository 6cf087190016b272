package cart

import (
	"encoding/json"
	"errors"
	"io/fs"
	"os"
	"path/filepath"
)

// Slot はカート1つ分の永続化先。
// 単一キーにJSON配列をまるごと保存し、読むのはセッション開始時の1回だけ。
type Slot interface {
	// Load は保存済み明細を返す。まだ保存が無ければ ok=false。
	Load() (items []LineItem, ok bool, err error)
	// Save は明細全量を上書き保存する。
	Save(items []LineItem) error
}

// FileSlot は1セッション=1ファイルのSlot実装。
type FileSlot struct {
	path string
}

func NewFileSlot(path string) *FileSlot {
	return &FileSlot{path: path}
}

func (s *FileSlot) Load() ([]LineItem, bool, error) {
	data, err := os.ReadFile(s.path)
	if errors.Is(err, fs.ErrNotExist) {
		return nil, false, nil
	}
	if err != nil {
		return nil, false, err
	}

	var items []LineItem
	if err := json.Unmarshal(data, &items); err != nil {
		return nil, false, err
	}
	return items, true, nil
}

func (s *FileSlot) Save(items []LineItem) error {
	if items == nil {
		items = []LineItem{}
	}

	data, err := json.Marshal(items)
	if err != nil {
		return err
	}

	if err := os.MkdirAll(filepath.Dir(s.path), 0o755); err != nil {
		return err
	}

	//書きかけファイルを見せないよう、tmpに書いてからrename
	tmp := s.path + ".tmp"
	if err := os.WriteFile(tmp, data, 0o644); err != nil {
		return err
	}
	return os.Rename(tmp, s.path)
}

// MemorySlot はテスト用のインメモリSlot。
type MemorySlot struct {
	data []byte
	has  bool

	// SaveErr を入れると保存が常に失敗する（永続化失敗の試験用）
	SaveErr error
}

func NewMemorySlot() *MemorySlot {
	return &MemorySlot{}
}

func (s *MemorySlot) Load() ([]LineItem, bool, error) {
	if !s.has {
		return nil, false, nil
	}
	var items []LineItem
	if err := json.Unmarshal(s.data, &items); err != nil {
		return nil, false, err
	}
	return items, true, nil
}

func (s *MemorySlot) Save(items []LineItem) error {
	if s.SaveErr != nil {
		return s.SaveErr
	}
	if items == nil {
		items = []LineItem{}
	}
	data, err := json.Marshal(items)
	if err != nil {
		return err
	}
	s.data = data
	s.has = true
	return nil
}
