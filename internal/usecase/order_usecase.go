package usecase

import (
	"context"
	"errors"
	"net/http"
	"strings"
	"time"

	"shopifly/internal/cart"
	"shopifly/internal/domain/model"
	repo "shopifly/internal/repository"

	"github.com/shopspring/decimal"
)

// OrderUsecase はチェックアウト（注文確定）と注文履歴。
// カートのSnapshotを入力に、注文作成→在庫減算をDBトランザクションで行い、
// 成功したらcart.Store.Clear()を完了の合図として呼ぶ。
// 注文作成と在庫減算はアトミック、ローカルカートのクリアはその後（非アトミック）。
type OrderUsecase struct {
	tx repo.TransactionManager
}

func NewOrderUsecase(tx repo.TransactionManager) *OrderUsecase {
	return &OrderUsecase{tx: tx}
}

// チェックアウト時の配送先フォーム
type ShippingInput struct {
	Name       string
	PostalCode string
	Prefecture string
	City       string
	Line1      string
	Line2      string
	Phone      string
}

type PlaceOrderInput struct {
	Shipping       ShippingInput
	IdempotencyKey string
}

type OrderItemOutput struct {
	ProductID string          `json:"product_id"`
	Name      string          `json:"name"`
	ImageURL  string          `json:"image_url"`
	Price     decimal.Decimal `json:"price"`
	Quantity  int64           `json:"quantity"`
}

type OrderOutput struct {
	ID         string            `json:"id"`
	UserID     string            `json:"user_id"`
	Status     string            `json:"status"`
	TotalPrice decimal.Decimal   `json:"total_price"`
	CreatedAt  time.Time         `json:"created_at"`
	Items      []OrderItemOutput `json:"items"`
}

func (u *OrderUsecase) PlaceOrder(ctx context.Context, userID string, store *cart.Store, in PlaceOrderInput) (OrderOutput, error) {
	if userID == "" {
		return OrderOutput{}, NewHTTPError(http.StatusUnauthorized, "unauthorized")
	}
	key := strings.TrimSpace(in.IdempotencyKey)
	if key == "" || len(key) > 255 {
		return OrderOutput{}, NewHTTPError(http.StatusBadRequest, "invalid idempotency_key")
	}
	if err := validateShipping(in.Shipping); err != nil {
		return OrderOutput{}, err
	}

	//カートの不変スナップショットがこの注文の入力になる
	snap := store.Snapshot()

	var out OrderOutput
	replayed := false

	//注文処理はトランザクション
	err := u.tx.WithinTx(ctx, func(r repo.TxRepos) error {
		// 同じキーなら同じ結果
		existing, found, err := r.Orders().FindByIdempotencyKey(ctx, userID, key)
		if err != nil {
			return NewHTTPError(http.StatusInternalServerError, "db error")
		}
		if found {
			//既存注文を返す（カートには触らない）
			items, err := r.OrderItems().ListByOrderID(ctx, existing.ID)
			if err != nil {
				return NewHTTPError(http.StatusInternalServerError, "db error")
			}
			out = toOrderOutput(existing, items)
			replayed = true
			return nil
		}

		if len(snap.Items) == 0 {
			return NewHTTPError(http.StatusBadRequest, "cart empty")
		}

		//在庫を確定時に再チェックして減らす
		orderItems := make([]model.OrderItem, 0, len(snap.Items))
		now := time.Now()

		for _, ci := range snap.Items {
			//商品が今も買えるか
			p, err := r.Products().FindByID(ctx, ci.ProductID)
			if err == repo.ErrNotFound {
				return NewHTTPError(http.StatusBadRequest, "invalid")
			}
			if err != nil {
				return NewHTTPError(http.StatusInternalServerError, "db error")
			}
			if !p.IsActive {
				return NewHTTPError(http.StatusBadRequest, "invalid")
			}

			//在庫減算（足りないなら false）
			ok, err := r.Inventory().DecreaseStockIfEnough(ctx, ci.ProductID, ci.Quantity)
			if err != nil {
				return NewHTTPError(http.StatusInternalServerError, "db error")
			}
			if !ok {
				return NewHTTPError(http.StatusBadRequest, "out of stock")
			}

			//明細はカート追加時点のスナップショットを凍結する
			orderItems = append(orderItems, model.OrderItem{
				ProductID:           ci.ProductID,
				ProductNameSnapshot: ci.Name,
				ImageURLSnapshot:    ci.ImageURL,
				UnitPriceSnapshot:   ci.UnitPrice,
				Quantity:            ci.Quantity,
				CreatedAt:           now,
			})
		}

		// 注文作成
		order := model.Order{
			UserID:         userID,
			Status:         model.OrderStatusPending,
			TotalPrice:     snap.Total,
			IdempotencyKey: key,
			ShipName:       strings.TrimSpace(in.Shipping.Name),
			ShipPostalCode: strings.TrimSpace(in.Shipping.PostalCode),
			ShipPrefecture: strings.TrimSpace(in.Shipping.Prefecture),
			ShipCity:       strings.TrimSpace(in.Shipping.City),
			ShipLine1:      strings.TrimSpace(in.Shipping.Line1),
			ShipLine2:      strings.TrimSpace(in.Shipping.Line2),
			ShipPhone:      strings.TrimSpace(in.Shipping.Phone),
			CreatedAt:      now,
			UpdatedAt:      now,
		}

		orderID, err := r.Orders().Create(ctx, order)
		if err != nil {
			//競合（同時に同じキーが入った）はもう一回検索して同じ結果を返す
			if errors.Is(err, repo.ErrIdempotencyConflict) {
				ex2, found2, err2 := r.Orders().FindByIdempotencyKey(ctx, userID, key)
				if err2 == nil && found2 {
					items2, err3 := r.OrderItems().ListByOrderID(ctx, ex2.ID)
					if err3 != nil {
						return NewHTTPError(http.StatusInternalServerError, "db error")
					}
					out = toOrderOutput(ex2, items2)
					replayed = true
					return nil
				}
				return NewHTTPError(http.StatusConflict, "idempotency conflict")
			}
			return NewHTTPError(http.StatusInternalServerError, "db error")
		}

		//注文明細一括作成
		if err := r.OrderItems().CreateBulk(ctx, orderID, orderItems); err != nil {
			return NewHTTPError(http.StatusInternalServerError, "db error")
		}

		order.ID = orderID
		out = toOrderOutput(order, orderItems)
		return nil
	})

	if err != nil {
		return OrderOutput{}, err
	}

	//注文が確定したのでカートを空にする（完了の合図）。
	//永続化書き込みだけ失敗してもメモリ上は空なので、ここでは致命扱いにしない。
	if !replayed {
		if _, err := store.Clear(); err != nil {
			var pe *cart.PersistError
			if !errors.As(err, &pe) {
				return OrderOutput{}, NewHTTPError(http.StatusInternalServerError, "cart clear failed")
			}
		}
	}

	return out, nil
}

func (u *OrderUsecase) ListMyOrders(ctx context.Context, userID string) ([]OrderOutput, error) {
	if userID == "" {
		return []OrderOutput{}, NewHTTPError(http.StatusUnauthorized, "unauthorized")
	}

	//ページングはまず固定で取る
	var outs []OrderOutput

	err := u.tx.WithinTx(ctx, func(r repo.TxRepos) error {
		orders, _, err := r.Orders().ListByUserID(ctx, userID, 1, 50)
		if err != nil {
			return NewHTTPError(http.StatusInternalServerError, "db error")
		}

		outs = make([]OrderOutput, 0, len(orders))
		for _, o := range orders {
			items, err := r.OrderItems().ListByOrderID(ctx, o.ID)
			if err != nil {
				return NewHTTPError(http.StatusInternalServerError, "db error")
			}
			outs = append(outs, toOrderOutput(o, items))
		}
		return nil
	})

	if err != nil {
		return []OrderOutput{}, err
	}
	return outs, nil
}

func (u *OrderUsecase) GetMyOrderDetail(ctx context.Context, userID string, orderID string) (OrderOutput, error) {
	if userID == "" {
		return OrderOutput{}, NewHTTPError(http.StatusUnauthorized, "unauthorized")
	}
	if orderID == "" {
		return OrderOutput{}, NewHTTPError(http.StatusBadRequest, "invalid id")
	}

	var out OrderOutput

	err := u.tx.WithinTx(ctx, func(r repo.TxRepos) error {
		o, err := r.Orders().FindByID(ctx, orderID)
		if err == repo.ErrNotFound {
			return NewHTTPError(http.StatusNotFound, "not found")
		}
		if err != nil {
			return NewHTTPError(http.StatusInternalServerError, "db error")
		}
		if o.UserID != userID {
			//他人の注文は「存在しない扱い」にする
			return NewHTTPError(http.StatusNotFound, "not found")
		}

		items, err := r.OrderItems().ListByOrderID(ctx, orderID)
		if err != nil {
			return NewHTTPError(http.StatusInternalServerError, "db error")
		}

		out = toOrderOutput(o, items)
		return nil
	})

	if err != nil {
		return OrderOutput{}, err
	}
	return out, nil
}

// FindMyOrderWithItems は請求書生成などモデルをそのまま使いたい場面向け。
func (u *OrderUsecase) FindMyOrderWithItems(ctx context.Context, userID string, orderID string) (model.Order, []model.OrderItem, error) {
	if userID == "" {
		return model.Order{}, nil, NewHTTPError(http.StatusUnauthorized, "unauthorized")
	}
	if orderID == "" {
		return model.Order{}, nil, NewHTTPError(http.StatusBadRequest, "invalid id")
	}

	var (
		order model.Order
		items []model.OrderItem
	)

	err := u.tx.WithinTx(ctx, func(r repo.TxRepos) error {
		o, err := r.Orders().FindByID(ctx, orderID)
		if err == repo.ErrNotFound {
			return NewHTTPError(http.StatusNotFound, "not found")
		}
		if err != nil {
			return NewHTTPError(http.StatusInternalServerError, "db error")
		}
		if o.UserID != userID {
			return NewHTTPError(http.StatusNotFound, "not found")
		}

		its, err := r.OrderItems().ListByOrderID(ctx, orderID)
		if err != nil {
			return NewHTTPError(http.StatusInternalServerError, "db error")
		}

		order = o
		items = its
		return nil
	})

	if err != nil {
		return model.Order{}, nil, err
	}
	return order, items, nil
}

func validateShipping(s ShippingInput) error {
	if strings.TrimSpace(s.Name) == "" {
		return NewHTTPError(http.StatusBadRequest, "ship_name required")
	}
	if strings.TrimSpace(s.PostalCode) == "" {
		return NewHTTPError(http.StatusBadRequest, "ship_postal_code required")
	}
	if strings.TrimSpace(s.Prefecture) == "" {
		return NewHTTPError(http.StatusBadRequest, "ship_prefecture required")
	}
	if strings.TrimSpace(s.City) == "" {
		return NewHTTPError(http.StatusBadRequest, "ship_city required")
	}
	if strings.TrimSpace(s.Line1) == "" {
		return NewHTTPError(http.StatusBadRequest, "ship_line1 required")
	}
	return nil
}

func toOrderOutput(o model.Order, items []model.OrderItem) OrderOutput {
	outItems := make([]OrderItemOutput, 0, len(items))
	for _, it := range items {
		outItems = append(outItems, OrderItemOutput{
			ProductID: it.ProductID,
			Name:      it.ProductNameSnapshot,
			ImageURL:  it.ImageURLSnapshot,
			Price:     it.UnitPriceSnapshot,
			Quantity:  it.Quantity,
		})
	}

	return OrderOutput{
		ID:         o.ID,
		UserID:     o.UserID,
		Status:     string(o.Status),
		TotalPrice: o.TotalPrice,
		CreatedAt:  o.CreatedAt,
		Items:      outItems,
	}
}
