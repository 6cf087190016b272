package cart

import (
	"encoding/json"
	"errors"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func price(s string) decimal.Decimal {
	return decimal.RequireFromString(s)
}

func newTestStore(t *testing.T) (*Store, *MemorySlot) {
	t.Helper()
	slot := NewMemorySlot()
	st, err := New(slot)
	require.NoError(t, err)
	return st, slot
}

// Test: 同一商品は1明細に統合して数量加算
func TestStore_AddItem_MergesSameProduct(t *testing.T) {
	st, _ := newTestStore(t)

	ref := ProductRef{ProductID: "p-1", Name: "Coffee", UnitPrice: price("100")}

	_, err := st.AddItem(ref, 2)
	require.NoError(t, err)

	snap, err := st.AddItem(ref, 3)
	require.NoError(t, err)

	require.Equal(t, 1, len(snap.Items))
	assert.Equal(t, int64(5), snap.Items[0].Quantity)
	assert.True(t, snap.Total.Equal(price("500")), "total=%s", snap.Total)
}

func TestStore_AddItem_KeepsInsertionOrder(t *testing.T) {
	st, _ := newTestStore(t)

	_, err := st.AddItem(ProductRef{ProductID: "p-1", Name: "A", UnitPrice: price("10")}, 1)
	require.NoError(t, err)
	_, err = st.AddItem(ProductRef{ProductID: "p-2", Name: "B", UnitPrice: price("20")}, 1)
	require.NoError(t, err)

	//既存明細への加算で並びは変わらない
	snap, err := st.AddItem(ProductRef{ProductID: "p-1", Name: "A", UnitPrice: price("10")}, 1)
	require.NoError(t, err)

	require.Equal(t, 2, len(snap.Items))
	assert.Equal(t, "p-1", snap.Items[0].ProductID)
	assert.Equal(t, "p-2", snap.Items[1].ProductID)
}

// Test: 価格は追加時点のスナップショットのまま
func TestStore_AddItem_KeepsFirstPriceSnapshot(t *testing.T) {
	st, _ := newTestStore(t)

	_, err := st.AddItem(ProductRef{ProductID: "p-1", Name: "A", UnitPrice: price("100")}, 1)
	require.NoError(t, err)

	//後から値上げされても既存明細の単価は変わらない
	snap, err := st.AddItem(ProductRef{ProductID: "p-1", Name: "A", UnitPrice: price("150")}, 1)
	require.NoError(t, err)

	require.Equal(t, 1, len(snap.Items))
	assert.True(t, snap.Items[0].UnitPrice.Equal(price("100")))
	assert.True(t, snap.Total.Equal(price("200")))
}

func TestStore_AddItem_InvalidQuantity(t *testing.T) {
	st, _ := newTestStore(t)

	_, err := st.AddItem(ProductRef{ProductID: "p-1", UnitPrice: price("10")}, 0)
	assert.ErrorIs(t, err, ErrInvalidQuantity)

	_, err = st.AddItem(ProductRef{ProductID: "p-1", UnitPrice: price("10")}, -2)
	assert.ErrorIs(t, err, ErrInvalidQuantity)
}

func TestStore_AddItem_InvalidProduct(t *testing.T) {
	st, _ := newTestStore(t)

	_, err := st.AddItem(ProductRef{ProductID: "", UnitPrice: price("10")}, 1)
	assert.ErrorIs(t, err, ErrInvalidProduct)
}

// Test: 数量0は削除扱い
func TestStore_UpdateQuantity_ZeroRemoves(t *testing.T) {
	st, _ := newTestStore(t)

	_, err := st.AddItem(ProductRef{ProductID: "p-1", UnitPrice: price("10")}, 3)
	require.NoError(t, err)

	snap, err := st.UpdateQuantity("p-1", 0)
	require.NoError(t, err)

	assert.Equal(t, 0, len(snap.Items))
	assert.True(t, snap.Total.Equal(decimal.Zero))
}

// Test: 負数も削除扱い
func TestStore_UpdateQuantity_NegativeRemoves(t *testing.T) {
	st, _ := newTestStore(t)

	_, err := st.AddItem(ProductRef{ProductID: "p-1", UnitPrice: price("10")}, 3)
	require.NoError(t, err)

	snap, err := st.UpdateQuantity("p-1", -1)
	require.NoError(t, err)

	assert.Equal(t, 0, len(snap.Items))
}

func TestStore_UpdateQuantity_Overwrites(t *testing.T) {
	st, _ := newTestStore(t)

	_, err := st.AddItem(ProductRef{ProductID: "p-1", UnitPrice: price("10")}, 3)
	require.NoError(t, err)

	snap, err := st.UpdateQuantity("p-1", 7)
	require.NoError(t, err)

	require.Equal(t, 1, len(snap.Items))
	assert.Equal(t, int64(7), snap.Items[0].Quantity)
	assert.True(t, snap.Total.Equal(price("70")))
}

// Test: 対象が無ければ何もしない（エラーにもしない）
func TestStore_UpdateQuantity_AbsentNoop(t *testing.T) {
	st, _ := newTestStore(t)

	_, err := st.AddItem(ProductRef{ProductID: "p-1", UnitPrice: price("10")}, 1)
	require.NoError(t, err)

	snap, err := st.UpdateQuantity("p-404", 5)
	require.NoError(t, err)
	assert.Equal(t, 1, len(snap.Items))
}

func TestStore_RemoveItem_AbsentNoop(t *testing.T) {
	st, _ := newTestStore(t)

	snap, err := st.RemoveItem("p-404")
	require.NoError(t, err)
	assert.Equal(t, 0, len(snap.Items))
}

func TestStore_RemoveItem_RemovesOnlyTarget(t *testing.T) {
	st, _ := newTestStore(t)

	_, err := st.AddItem(ProductRef{ProductID: "p-1", UnitPrice: price("10")}, 1)
	require.NoError(t, err)
	_, err = st.AddItem(ProductRef{ProductID: "p-2", UnitPrice: price("20")}, 2)
	require.NoError(t, err)

	snap, err := st.RemoveItem("p-1")
	require.NoError(t, err)

	require.Equal(t, 1, len(snap.Items))
	assert.Equal(t, "p-2", snap.Items[0].ProductID)
	assert.True(t, snap.Total.Equal(price("40")))
}

// Test: Clearは空状態も永続化する
func TestStore_Clear_PersistsEmpty(t *testing.T) {
	st, slot := newTestStore(t)

	_, err := st.AddItem(ProductRef{ProductID: "p-1", UnitPrice: price("10")}, 2)
	require.NoError(t, err)

	snap, err := st.Clear()
	require.NoError(t, err)
	assert.Equal(t, 0, len(snap.Items))

	//同じSlotから復元しても空のまま
	st2, err := New(slot)
	require.NoError(t, err)
	assert.Equal(t, 0, len(st2.Snapshot().Items))
}

// Test: Snapshotは不変コピー（呼び出し側が書き換えてもStoreは汚れない）
func TestStore_Snapshot_IsImmutableCopy(t *testing.T) {
	st, _ := newTestStore(t)

	_, err := st.AddItem(ProductRef{ProductID: "p-1", Name: "A", UnitPrice: price("10")}, 1)
	require.NoError(t, err)

	snap := st.Snapshot()
	snap.Items[0].Quantity = 999
	snap.Items[0].Name = "tampered"

	after := st.Snapshot()
	assert.Equal(t, int64(1), after.Items[0].Quantity)
	assert.Equal(t, "A", after.Items[0].Name)
}

// Test: 保存→復元で明細が完全一致する
func TestStore_ReloadRoundTrip(t *testing.T) {
	slot := NewMemorySlot()
	st, err := New(slot)
	require.NoError(t, err)

	_, err = st.AddItem(ProductRef{ProductID: "p-1", Name: "Coffee", ImageURL: "/img/1.png", UnitPrice: price("19.99")}, 2)
	require.NoError(t, err)
	_, err = st.AddItem(ProductRef{ProductID: "p-2", Name: "Mug", UnitPrice: price("8.50")}, 1)
	require.NoError(t, err)

	before := st.Snapshot()

	st2, err := New(slot)
	require.NoError(t, err)
	after := st2.Snapshot()

	//JSON表現で比較（decimalの内部表現の差を無視する）
	bj, err := json.Marshal(before)
	require.NoError(t, err)
	aj, err := json.Marshal(after)
	require.NoError(t, err)
	assert.Equal(t, string(bj), string(aj))
}

// Test: 永続化失敗してもメモリ上の状態は更新済み、次の保存で書き直る
func TestStore_PersistError_KeepsMemoryState(t *testing.T) {
	slot := NewMemorySlot()
	st, err := New(slot)
	require.NoError(t, err)

	slot.SaveErr = errors.New("disk full")

	snap, err := st.AddItem(ProductRef{ProductID: "p-1", UnitPrice: price("10")}, 2)

	var pe *PersistError
	require.ErrorAs(t, err, &pe)
	//エラーでもスナップショットは更新後の状態
	require.Equal(t, 1, len(snap.Items))
	assert.Equal(t, int64(2), snap.Items[0].Quantity)

	//保存が直ったら、次の変更で全量が書き込まれる
	slot.SaveErr = nil
	_, err = st.AddItem(ProductRef{ProductID: "p-2", UnitPrice: price("5")}, 1)
	require.NoError(t, err)

	st2, err := New(slot)
	require.NoError(t, err)
	assert.Equal(t, 2, len(st2.Snapshot().Items))
}

// Test: 変更通知の購読と解除
func TestStore_Subscribe(t *testing.T) {
	st, _ := newTestStore(t)

	var got []Snapshot
	cancel := st.Subscribe(func(s Snapshot) {
		got = append(got, s)
	})

	_, err := st.AddItem(ProductRef{ProductID: "p-1", UnitPrice: price("10")}, 1)
	require.NoError(t, err)
	require.Equal(t, 1, len(got))
	assert.Equal(t, 1, len(got[0].Items))

	cancel()

	_, err = st.AddItem(ProductRef{ProductID: "p-2", UnitPrice: price("10")}, 1)
	require.NoError(t, err)
	assert.Equal(t, 1, len(got), "解除後は呼ばれない")
}

// Test: 保存に失敗しても購読者には更新後の状態が届く
func TestStore_Subscribe_NotifiedOnPersistError(t *testing.T) {
	slot := NewMemorySlot()
	st, err := New(slot)
	require.NoError(t, err)

	calls := 0
	st.Subscribe(func(s Snapshot) { calls++ })

	slot.SaveErr = errors.New("disk full")

	_, err = st.AddItem(ProductRef{ProductID: "p-1", UnitPrice: price("10")}, 1)
	var pe *PersistError
	require.ErrorAs(t, err, &pe)
	assert.Equal(t, 1, calls)
}

// Test: 通知の中からStoreを読んでもデッドロックしない
func TestStore_Subscribe_CanReadStoreInCallback(t *testing.T) {
	st, _ := newTestStore(t)

	done := make(chan struct{})
	st.Subscribe(func(s Snapshot) {
		_ = st.Snapshot()
		close(done)
	})

	_, err := st.AddItem(ProductRef{ProductID: "p-1", UnitPrice: price("10")}, 1)
	require.NoError(t, err)
	<-done
}

type panicSlot struct {
	MemorySlot
}

func (s *panicSlot) Save(items []LineItem) error {
	panic("save blew up")
}

// Test: 保存中にpanicしてもロックが残らない
func TestStore_SavePanicDoesNotLeaveStoreLocked(t *testing.T) {
	st, err := New(&panicSlot{})
	require.NoError(t, err)

	assert.Panics(t, func() {
		_, _ = st.AddItem(ProductRef{ProductID: "p-1", UnitPrice: price("10")}, 1)
	})

	done := make(chan struct{})
	go func() {
		_ = st.Snapshot()
		close(done)
	}()

	select {
	case <-done:
	case <-time.After(time.Second):
		t.Fatal("store stayed locked after panic")
	}
}
