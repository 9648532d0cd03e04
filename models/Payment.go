package models

import (
	"encoding/json"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// Payment doubles as the purchase receipt. It is never updated.
type Payment struct {
	ID           string    `gorm:"primaryKey;size:36" json:"_id"`
	CardNumber   string    `gorm:"size:16;not null" json:"cardNumber"`
	CardProvider string    `gorm:"not null" json:"cardProvider"`
	CardExpDate  string    `gorm:"size:5;not null" json:"cardExpDate"`
	CardCVC      string    `gorm:"column:card_cvc;size:4;not null" json:"-"`
	GameID       string    `gorm:"column:game_id;size:36;not null;index" json:"gameId"`
	CustomerID   string    `gorm:"column:customer_id;size:36;not null;index" json:"customerId"`
	CreatedAt    time.Time `json:"createdAt"`
}

func (p *Payment) BeforeCreate(tx *gorm.DB) error {
	if p.ID == "" {
		p.ID = uuid.NewString()
	}
	return nil
}

// MaskedCardNumber keeps only the last four digits.
func (p Payment) MaskedCardNumber() string {
	if len(p.CardNumber) <= 4 {
		return p.CardNumber
	}
	masked := make([]byte, len(p.CardNumber))
	for i := range masked {
		masked[i] = '*'
	}
	copy(masked[len(masked)-4:], p.CardNumber[len(p.CardNumber)-4:])
	return string(masked)
}

func (p Payment) MarshalJSON() ([]byte, error) {
	type payment Payment
	return json.Marshal(struct {
		payment
		CardNumber string `json:"cardNumber"`
	}{payment: payment(p), CardNumber: p.MaskedCardNumber()})
}

// Purchase is a payment joined with the purchased game. Game is nil when
// the game has since been deleted.
type Purchase struct {
	Payment
	Game *GameSummary `json:"game"`
}

func (p Purchase) MarshalJSON() ([]byte, error) {
	type payment Payment
	return json.Marshal(struct {
		payment
		CardNumber string       `json:"cardNumber"`
		Game       *GameSummary `json:"game"`
	}{payment: payment(p.Payment), CardNumber: p.MaskedCardNumber(), Game: p.Game})
}

type PurchaseInput struct {
	GameID       string `json:"gameId" validate:"required"`
	CardNumber   string `json:"cardNumber" validate:"required,len=16,numeric"`
	CardProvider string `json:"cardProvider" validate:"required,oneof=Visa Mastercard AMEX"`
	CardExpDate  string `json:"cardExpDate" validate:"required,cardexp"`
	CardCVC      string `json:"cardCVC" validate:"required,min=3,max=4,numeric"`
}
