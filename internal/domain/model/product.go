package model

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

type Product struct {
	ID          string          `gorm:"type:uuid;primaryKey" json:"id"`
	Name        string          `gorm:"type:varchar(255);not null" json:"name"`
	Description string          `gorm:"type:text" json:"description"`
	ImageURL    string          `gorm:"type:varchar(512)" json:"image_url"`
	Price       decimal.Decimal `gorm:"type:decimal(12,2);not null" json:"price"`
	//割引率（%）。0なら割引なし
	DiscountRate int64          `gorm:"not null;default:0" json:"discount_rate"`
	Stock        int64          `gorm:"not null" json:"stock"`
	IsActive     bool           `gorm:"not null;default:false" json:"is_active"`
	CreatedAt    time.Time      `gorm:"not null;autoCreateTime" json:"created_at"`
	UpdatedAt    time.Time      `gorm:"not null;autoUpdateTime" json:"updated_at"`
	DeletedAt    gorm.DeletedAt `gorm:"index" json:"-"`
}

func (p *Product) BeforeCreate(tx *gorm.DB) error {
	if p.ID == "" {
		p.ID = uuid.NewString()
	}
	return nil
}

// DiscountedPrice は割引後の単価。カート追加時のスナップショットに使う。
func (p *Product) DiscountedPrice() decimal.Decimal {
	if p.DiscountRate <= 0 {
		return p.Price
	}
	rate := decimal.NewFromInt(100 - p.DiscountRate).Div(decimal.NewFromInt(100))
	return p.Price.Mul(rate).Round(2)
}
