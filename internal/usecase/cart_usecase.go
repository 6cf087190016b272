package usecase

import (
	"context"
	"errors"
	"net/http"

	"shopifly/internal/cart"
	repo "shopifly/internal/repository"
)

// CartUsecase は /cart の業務ロジックです。
// カート本体はローカルのcart.Store（セッションごと）で、
// DBには商品参照（価格・在庫）の取得にだけ行く。
type CartUsecase struct {
	carts       *cart.Manager
	productRepo repo.ProductRepository
}

func NewCartUsecase(carts *cart.Manager, productRepo repo.ProductRepository) *CartUsecase {
	return &CartUsecase{
		carts:       carts,
		productRepo: productRepo,
	}
}

type AddCartInput struct {
	ProductID string
	Quantity  int64
}

type UpdateCartItemInput struct {
	Quantity int64
}

// GetCart はカート取得（保存済み状態があれば復元して返す）。
func (u *CartUsecase) GetCart(ctx context.Context, userID string) (cart.Snapshot, error) {
	st, err := u.storeFor(userID)
	if err != nil {
		return cart.Snapshot{}, err
	}
	return st.Snapshot(), nil
}

// AddToCart はカートに追加（同一商品は数量加算）。
// 追加時点の割引後価格をスナップショットとして渡す。
func (u *CartUsecase) AddToCart(ctx context.Context, userID string, in AddCartInput) (cart.Snapshot, error) {
	st, err := u.storeFor(userID)
	if err != nil {
		return cart.Snapshot{}, err
	}

	if in.ProductID == "" {
		return cart.Snapshot{}, NewHTTPError(http.StatusBadRequest, "invalid product_id")
	}
	if in.Quantity < 1 {
		return cart.Snapshot{}, NewHTTPError(http.StatusBadRequest, "invalid quantity")
	}

	// 商品チェック（公開のみ）
	p, err := u.productRepo.FindByID(ctx, in.ProductID)
	if err == repo.ErrNotFound {
		return cart.Snapshot{}, NewHTTPError(http.StatusBadRequest, "invalid")
	}
	if err != nil {
		return cart.Snapshot{}, NewHTTPError(http.StatusInternalServerError, "db error")
	}
	if !p.IsActive {
		return cart.Snapshot{}, NewHTTPError(http.StatusBadRequest, "invalid")
	}

	// カート内の既存数量＋追加分が在庫を超えないか
	var existingQty int64 = 0
	for _, it := range st.Snapshot().Items {
		if it.ProductID == in.ProductID {
			existingQty = it.Quantity
			break
		}
	}
	if existingQty+in.Quantity > p.Stock {
		return cart.Snapshot{}, NewHTTPError(http.StatusBadRequest, "stock exceeded")
	}

	snap, err := st.AddItem(cart.ProductRef{
		ProductID: p.ID,
		Name:      p.Name,
		ImageURL:  p.ImageURL,
		UnitPrice: p.DiscountedPrice(),
	}, in.Quantity)

	return u.mapStoreErr(snap, err)
}

// UpdateCartItem は数量変更。0以下は削除扱い（cart.Store側の契約）。
func (u *CartUsecase) UpdateCartItem(ctx context.Context, userID string, productID string, in UpdateCartItemInput) (cart.Snapshot, error) {
	st, err := u.storeFor(userID)
	if err != nil {
		return cart.Snapshot{}, err
	}
	if productID == "" {
		return cart.Snapshot{}, NewHTTPError(http.StatusBadRequest, "invalid product_id")
	}

	// 増やす方向だけ在庫を見る
	if in.Quantity > 0 {
		p, err := u.productRepo.FindByID(ctx, productID)
		if err == repo.ErrNotFound {
			return cart.Snapshot{}, NewHTTPError(http.StatusBadRequest, "invalid")
		}
		if err != nil {
			return cart.Snapshot{}, NewHTTPError(http.StatusInternalServerError, "db error")
		}
		if !p.IsActive {
			return cart.Snapshot{}, NewHTTPError(http.StatusBadRequest, "invalid")
		}
		if in.Quantity > p.Stock {
			return cart.Snapshot{}, NewHTTPError(http.StatusBadRequest, "stock exceeded")
		}
	}

	snap, err := st.UpdateQuantity(productID, in.Quantity)
	return u.mapStoreErr(snap, err)
}

// RemoveCartItem は明細削除。無ければ何もしない。
func (u *CartUsecase) RemoveCartItem(ctx context.Context, userID string, productID string) (cart.Snapshot, error) {
	st, err := u.storeFor(userID)
	if err != nil {
		return cart.Snapshot{}, err
	}
	if productID == "" {
		return cart.Snapshot{}, NewHTTPError(http.StatusBadRequest, "invalid product_id")
	}

	snap, err := st.RemoveItem(productID)
	return u.mapStoreErr(snap, err)
}

// ClearCart はカートを空にする。
func (u *CartUsecase) ClearCart(ctx context.Context, userID string) (cart.Snapshot, error) {
	st, err := u.storeFor(userID)
	if err != nil {
		return cart.Snapshot{}, err
	}
	snap, err := st.Clear()
	return u.mapStoreErr(snap, err)
}

func (u *CartUsecase) storeFor(userID string) (*cart.Store, error) {
	if userID == "" {
		return nil, NewHTTPError(http.StatusUnauthorized, "unauthorized")
	}
	st, err := u.carts.ForSession(userID)
	if errors.Is(err, cart.ErrInvalidSession) {
		return nil, NewHTTPError(http.StatusUnauthorized, "unauthorized")
	}
	if err != nil {
		return nil, NewHTTPError(http.StatusInternalServerError, "cart load failed")
	}
	return st, nil
}

// mapStoreErr はStoreのエラーをHTTPエラーに寄せる。
// PersistErrorは「メモリ上は成功」なのでそのまま上に渡す（handlerがログだけ出す）。
func (u *CartUsecase) mapStoreErr(snap cart.Snapshot, err error) (cart.Snapshot, error) {
	if err == nil {
		return snap, nil
	}

	var pe *cart.PersistError
	if errors.As(err, &pe) {
		return snap, pe
	}

	if errors.Is(err, cart.ErrInvalidQuantity) {
		return cart.Snapshot{}, NewHTTPError(http.StatusBadRequest, "invalid quantity")
	}
	if errors.Is(err, cart.ErrInvalidProduct) {
		return cart.Snapshot{}, NewHTTPError(http.StatusBadRequest, "invalid product_id")
	}
	return cart.Snapshot{}, NewHTTPError(http.StatusInternalServerError, "cart error")
}
