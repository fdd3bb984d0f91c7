package model

import "time"

var IconKeys = []string{
	"Wrench",
	"Gauge",
	"Settings",
	"Car",
	"ShieldCheck",
	"Hammer",
	"Sparkles",
	"Zap",
	"BatteryCharging",
}

const PriceDetailCount = 3

type ServiceItem struct {
	ID          string    `json:"id" bson:"_id"`
	IconKey     string    `json:"icon_key" bson:"icon_key" validate:"required,oneof=Wrench Gauge Settings Car ShieldCheck Hammer Sparkles Zap BatteryCharging"`
	Title       string    `json:"title" bson:"title" validate:"required,min=1,max=100"`
	Description string    `json:"description" bson:"description" validate:"max=500"`
	PriceLabel  string    `json:"price_label" bson:"price_label" validate:"max=100"`
	Active      bool      `json:"active" bson:"active"`
	Order       int       `json:"order" bson:"order"`
	CreatedAt   time.Time `json:"created_at" bson:"created_at"`
	UpdatedAt   time.Time `json:"updated_at" bson:"updated_at"`
}

type ServiceItemUpdate struct {
	IconKey     *string `json:"icon_key,omitempty"`
	Title       *string `json:"title,omitempty"`
	Description *string `json:"description,omitempty"`
	PriceLabel  *string `json:"price_label,omitempty"`
}

type PriceItem struct {
	ID        string    `json:"id" bson:"_id"`
	Name      string    `json:"name" bson:"name" validate:"required,min=1,max=100"`
	Price     string    `json:"price" bson:"price" validate:"required,max=50"`
	Details   []string  `json:"details" bson:"details" validate:"len=3,dive,max=200"`
	Currency  string    `json:"currency" bson:"currency" validate:"required,len=3,uppercase"`
	Active    bool      `json:"active" bson:"active"`
	Order     int       `json:"order" bson:"order"`
	CreatedAt time.Time `json:"created_at" bson:"created_at"`
	UpdatedAt time.Time `json:"updated_at" bson:"updated_at"`
}

type PriceItemUpdate struct {
	Name     *string   `json:"name,omitempty"`
	Price    *string   `json:"price,omitempty"`
	Details  *[]string `json:"details,omitempty"`
	Currency *string   `json:"currency,omitempty"`
}

type MoveDirection string

const (
	MoveUp   MoveDirection = "up"
	MoveDown MoveDirection = "down"
)

// Ordering returns the item's id and sort position.
func (s *ServiceItem) Ordering() (string, int) {
	return s.ID, s.Order
}

func (p *PriceItem) Ordering() (string, int) {
	return p.ID, p.Order
}
