package cart

import (
	"errors"
	"fmt"
	"sync"

	"github.com/shopspring/decimal"
)

var (
	// 数量が1未満・不正
	ErrInvalidQuantity = errors.New("invalid quantity")
	// 商品参照が不正（product_idが空）
	ErrInvalidProduct = errors.New("invalid product")
)

// PersistError は永続化書き込みの失敗。
// メモリ上のカートは既に更新済みなので、呼び出し側は致命扱いにしない。
// 次の変更操作で全量を書き直すので、それがリトライになる。
type PersistError struct {
	Err error
}

func (e *PersistError) Error() string {
	return fmt.Sprintf("cart persist failed: %v", e.Err)
}

func (e *PersistError) Unwrap() error {
	return e.Err
}

// ProductRef はカート追加時に渡す商品参照。
// 価格は追加時点の割引後価格スナップショット。
type ProductRef struct {
	ProductID string
	Name      string
	ImageURL  string
	UnitPrice decimal.Decimal
}

// カートの明細。商品名・画像・単価は追加時点のスナップショット。
type LineItem struct {
	ProductID string          `json:"product_id"`
	Name      string          `json:"name"`
	ImageURL  string          `json:"image_url"`
	UnitPrice decimal.Decimal `json:"unit_price"`
	Quantity  int64           `json:"quantity"`
}

// Snapshot はカートの不変コピー。
// Totalは毎回 unit_price×quantity の合計を計算し直す（キャッシュしない）。
type Snapshot struct {
	Items []LineItem      `json:"items"`
	Total decimal.Decimal `json:"total"`
}

// Store は1セッション分のカート状態。
// 同一product_idは1明細に統合し、変更のたびにSlotへ書き込む。
type Store struct {
	mu    sync.Mutex
	slot  Slot
	items []LineItem // 追加順を保持

	subs    map[int]func(Snapshot)
	nextSub int
}

// New はSlotから前回状態を復元してStoreを作る。
// 保存された状態が無ければ空カートで始まる。
func New(slot Slot) (*Store, error) {
	items, ok, err := slot.Load()
	if err != nil {
		return nil, err
	}
	if !ok {
		items = nil
	}
	return &Store{
		slot:  slot,
		items: items,
		subs:  map[int]func(Snapshot){},
	}, nil
}

// AddItem はカートに追加する。同一商品は数量加算。
// ネットワークには一切触らない。
func (s *Store) AddItem(ref ProductRef, qty int64) (Snapshot, error) {
	if ref.ProductID == "" {
		return Snapshot{}, ErrInvalidProduct
	}
	if qty < 1 {
		return Snapshot{}, ErrInvalidQuantity
	}

	return s.mutate(func() {
		for i := range s.items {
			if s.items[i].ProductID == ref.ProductID {
				s.items[i].Quantity += qty
				return
			}
		}
		s.items = append(s.items, LineItem{
			ProductID: ref.ProductID,
			Name:      ref.Name,
			ImageURL:  ref.ImageURL,
			UnitPrice: ref.UnitPrice,
			Quantity:  qty,
		})
	})
}

// RemoveItem は明細を削除する。無ければ何もしない（エラーにしない）。
func (s *Store) RemoveItem(productID string) (Snapshot, error) {
	return s.mutate(func() {
		s.removeLocked(productID)
	})
}

// UpdateQuantity は数量を上書きする。
// qtyが0以下なら削除として扱う。対象が無ければ何もしない。
func (s *Store) UpdateQuantity(productID string, qty int64) (Snapshot, error) {
	return s.mutate(func() {
		if qty <= 0 {
			s.removeLocked(productID)
			return
		}
		for i := range s.items {
			if s.items[i].ProductID == productID {
				s.items[i].Quantity = qty
				return
			}
		}
	})
}

// Clear はカートを無条件で空にする。チェックアウト完了の合図。
func (s *Store) Clear() (Snapshot, error) {
	return s.mutate(func() {
		s.items = nil
	})
}

// Snapshot は現在の明細と合計の不変コピーを返す。
func (s *Store) Snapshot() Snapshot {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.snapshotLocked()
}

// Subscribe は変更通知を購読する。戻り値で解除する。
func (s *Store) Subscribe(fn func(Snapshot)) (cancel func()) {
	s.mu.Lock()
	defer s.mu.Unlock()

	id := s.nextSub
	s.nextSub++
	s.subs[id] = fn

	return func() {
		s.mu.Lock()
		defer s.mu.Unlock()
		delete(s.subs, id)
	}
}

func (s *Store) removeLocked(productID string) {
	for i := range s.items {
		if s.items[i].ProductID == productID {
			s.items = append(s.items[:i], s.items[i+1:]...)
			return
		}
	}
}

// mutate はロック下でapplyを実行して保存し、ロックを返してから購読者へ通知する。
// ロック解放はdeferに任せるので、Slot.Saveがpanicしてもロックは残らない。
// 保存に失敗してもメモリ上の状態はそのまま（PersistErrorで返す）。
func (s *Store) mutate(apply func()) (Snapshot, error) {
	snap, fns, saveErr := func() (Snapshot, []func(Snapshot), error) {
		s.mu.Lock()
		defer s.mu.Unlock()

		apply()
		snap := s.snapshotLocked()
		saveErr := s.slot.Save(snap.Items)

		fns := make([]func(Snapshot), 0, len(s.subs))
		for _, fn := range s.subs {
			fns = append(fns, fn)
		}
		return snap, fns, saveErr
	}()

	//通知はロック外（購読者がStoreを触っても詰まらない）
	for _, fn := range fns {
		fn(snap)
	}

	if saveErr != nil {
		return snap, &PersistError{Err: saveErr}
	}
	return snap, nil
}

func (s *Store) snapshotLocked() Snapshot {
	items := make([]LineItem, len(s.items))
	copy(items, s.items)

	total := decimal.Zero
	for _, it := range items {
		total = total.Add(it.UnitPrice.Mul(decimal.NewFromInt(it.Quantity)))
	}

	return Snapshot{Items: items, Total: total}
}
