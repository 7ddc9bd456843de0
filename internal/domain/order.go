package domain

type OrderStatus string

const (
	OrderStatusNew        OrderStatus = "new"
	OrderStatusProcessing OrderStatus = "processing"
	OrderStatusSent       OrderStatus = "sent"
	OrderStatusDone       OrderStatus = "done"
)

func (s OrderStatus) Valid() bool {
	switch s {
	case OrderStatusNew, OrderStatusProcessing, OrderStatusSent, OrderStatusDone:
		return true
	}
	return false
}

type BadgeType string

const (
	BadgeNone BadgeType = ""
	BadgeNew  BadgeType = "new"
	BadgeSale BadgeType = "sale"
	BadgeBest BadgeType = "best"
)

func (b BadgeType) Valid() bool {
	switch b {
	case BadgeNone, BadgeNew, BadgeSale, BadgeBest:
		return true
	}
	return false
}
