package models

import (
	"time"

	"github.com/Skotchmaster/storefront/internal/domain"
)

type User struct {
	ID           uint      `gorm:"primaryKey"                  json:"id"`
	Username     string    `gorm:"size:50;uniqueIndex;not null" json:"username"`
	Email        string    `gorm:"size:255;uniqueIndex;not null" json:"email"`
	FirstName    string    `gorm:"size:50"                     json:"first_name"`
	LastName     string    `gorm:"size:50"                     json:"last_name"`
	PasswordHash string    `gorm:"not null"                    json:"-"`
	IsActive     bool      `gorm:"default:true"                json:"is_active"`
	IsStaff      bool      `gorm:"default:false"               json:"is_staff"`
	CreatedAt    time.Time `json:"date_joined"`
}

func (u User) FullName() string {
	switch {
	case u.FirstName == "":
		return u.LastName
	case u.LastName == "":
		return u.FirstName
	}
	return u.FirstName + " " + u.LastName
}

type RefreshToken struct {
	ID        uint   `gorm:"primaryKey"`
	Token     string `gorm:"size:64;not null"`
	UserID    uint   `gorm:"index;not null"`
	ExpiresAt int64  `gorm:"not null"`
	JTI       string `gorm:"size:64;uniqueIndex;not null"`
	Revoked   bool   `gorm:"default:false"`
}

// PasswordResetToken stores the sha256 of a mailed reset token. It can be
// used once, before ExpiresAt.
type PasswordResetToken struct {
	ID        uint   `gorm:"primaryKey"`
	TokenHash string `gorm:"size:64;uniqueIndex;not null"`
	UserID    uint   `gorm:"index;not null"`
	ExpiresAt int64  `gorm:"not null"`
	Used      bool   `gorm:"default:false"`
	CreatedAt time.Time
}

type Category struct {
	ID        uint      `gorm:"primaryKey"                   json:"id"`
	Name      string    `gorm:"size:120;uniqueIndex;not null" json:"name"`
	Slug      string    `gorm:"size:140;uniqueIndex"         json:"slug"`
	Image     string    `gorm:"size:500"                     json:"image"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

type Product struct {
	ID             uint             `gorm:"primaryKey"           json:"id"`
	Name           string           `gorm:"size:160;not null"    json:"name"`
	Slug           string           `gorm:"size:200;uniqueIndex" json:"slug"`
	Description    string           `json:"description"`
	Price          int64            `gorm:"not null;check:price>=0" json:"price"`
	OldPrice       *int64           `json:"old_price,omitempty"`
	Watts          int              `gorm:"default:0"            json:"watts"`
	CategoryID     uint             `gorm:"index;not null"       json:"category_id"`
	Category       *Category        `gorm:"constraint:OnDelete:RESTRICT" json:"category,omitempty"`
	MainImage      string           `gorm:"size:500"             json:"main_image"`
	Featured       bool             `gorm:"default:false"        json:"featured"`
	Stock          int              `gorm:"default:0"            json:"stock"`
	BadgeType      domain.BadgeType `gorm:"size:20"              json:"badge_type"`
	WhatsAppNumber string           `gorm:"size:32"              json:"whatsapp_number"`
	Images         []ProductImage   `gorm:"constraint:OnDelete:CASCADE" json:"images,omitempty"`
	CreatedAt      time.Time        `gorm:"index"                json:"created_at"`
	UpdatedAt      time.Time        `json:"updated_at"`
}

func (p Product) OnSale() bool {
	return p.BadgeType == domain.BadgeSale || (p.OldPrice != nil && *p.OldPrice > p.Price)
}

type ProductImage struct {
	ID        uint      `gorm:"primaryKey"      json:"id"`
	ProductID uint      `gorm:"index;not null"  json:"product_id"`
	Image     string    `gorm:"size:500"        json:"image"`
	CreatedAt time.Time `json:"created_at"`
}

type Review struct {
	ID        uint      `gorm:"primaryKey"                json:"id"`
	ProductID uint      `gorm:"index;not null"            json:"product_id"`
	UserID    *uint     `gorm:"index"                     json:"user_id"`
	Rating    int       `gorm:"default:5;check:rating>=1 AND rating<=5" json:"rating"`
	Text      string    `json:"text"`
	CreatedAt time.Time `json:"created_at"`
}

type Address struct {
	ID        uint      `gorm:"primaryKey"         json:"id"`
	UserID    uint      `gorm:"index;not null"     json:"user_id"`
	FullName  string    `gorm:"size:140;not null"  json:"full_name"`
	Phone     string    `gorm:"size:32"            json:"phone"`
	Line1     string    `gorm:"size:160"           json:"line1"`
	Line2     string    `gorm:"size:160"           json:"line2"`
	City      string    `gorm:"size:80"            json:"city"`
	Notes     string    `gorm:"size:200"           json:"notes"`
	CreatedAt time.Time `json:"created_at"`
}

type Order struct {
	ID             uint               `gorm:"primaryKey"           json:"id"`
	UserID         *uint              `gorm:"index"                json:"user_id"`
	Status         domain.OrderStatus `gorm:"size:20;not null"      json:"status"`
	AddressID      *uint              `json:"address_id"`
	Address        *Address           `gorm:"constraint:OnDelete:SET NULL" json:"address,omitempty"`
	Total          int64              `gorm:"not null;default:0"   json:"total"`
	WhatsAppNumber string             `gorm:"size:32"              json:"whatsapp_number"`
	Items          []OrderItem        `gorm:"constraint:OnDelete:CASCADE" json:"items"`
	CreatedAt      time.Time          `gorm:"index"                json:"created_at"`
	UpdatedAt      time.Time          `json:"updated_at"`
}

type OrderItem struct {
	ID        uint      `gorm:"primaryKey"                json:"id"`
	OrderID   uint      `gorm:"index;not null"            json:"order_id"`
	ProductID uint      `gorm:"index;not null"            json:"product_id"`
	Product   *Product  `gorm:"constraint:OnDelete:RESTRICT" json:"product,omitempty"`
	Qty       int       `gorm:"not null;default:1;check:qty>0" json:"qty"`
	PriceEach int64     `gorm:"not null"                  json:"price_each"`
	CreatedAt time.Time `json:"created_at"`
}

func (i OrderItem) Subtotal() int64 {
	return int64(i.Qty) * i.PriceEach
}

type Testimonial struct {
	ID        uint      `gorm:"primaryKey"        json:"id"`
	Name      string    `gorm:"size:100;not null" json:"name"`
	Message   string    `gorm:"not null"          json:"message"`
	Avatar    string    `gorm:"size:500"          json:"avatar"`
	CreatedAt time.Time `gorm:"index"             json:"created_at"`
}

type NewsletterSubscription struct {
	ID        uint      `gorm:"primaryKey"                   json:"id"`
	Email     string    `gorm:"size:255;uniqueIndex;not null" json:"email"`
	CreatedAt time.Time `json:"created_at"`
}

type ContactMessage struct {
	ID        uint      `gorm:"primaryKey"        json:"id"`
	Name      string    `gorm:"size:255;not null" json:"name"`
	Email     string    `gorm:"size:255;not null" json:"email"`
	Subject   string    `gorm:"size:255"          json:"subject"`
	Message   string    `gorm:"not null"          json:"message"`
	CreatedAt time.Time `json:"created_at"`
}

const (
	DefaultSiteName     = "Rian Audio Sounds"
	DefaultWhatsApp     = "+254700000000"
	DefaultSupportEmail = "support@example.com"
)

type SiteConfig struct {
	ID             uint      `gorm:"primaryKey"  json:"id"`
	SiteName       string    `gorm:"size:100"    json:"site_name"`
	WhatsAppNumber string    `gorm:"size:32"     json:"whatsapp_number"`
	PhoneNumber    string    `gorm:"size:32"     json:"phone_number"`
	SupportEmail   string    `gorm:"size:255"    json:"support_email"`
	UpdatedAt      time.Time `json:"updated_at"`
}

func DefaultSiteConfig() SiteConfig {
	return SiteConfig{
		SiteName:       DefaultSiteName,
		WhatsAppNumber: DefaultWhatsApp,
		SupportEmail:   DefaultSupportEmail,
	}
}

// All lists every model in dependency order for AutoMigrate.
func All() []any {
	return []any{
		&User{},
		&RefreshToken{},
		&PasswordResetToken{},
		&Category{},
		&Product{},
		&ProductImage{},
		&Review{},
		&Address{},
		&Order{},
		&OrderItem{},
		&Testimonial{},
		&NewsletterSubscription{},
		&ContactMessage{},
		&SiteConfig{},
	}
}
