package transport

import "github.com/Skotchmaster/storefront/internal/domain"

type CategoryRequest struct {
	Name  string `json:"name"`
	Image string `json:"image"`
}

type CreateProductRequest struct {
	Name           string           `json:"name"`
	Description    string           `json:"description"`
	Price          int64            `json:"price"`
	OldPrice       *int64           `json:"old_price"`
	Watts          int              `json:"watts"`
	CategorySlug   string           `json:"category"`
	MainImage      string           `json:"main_image"`
	Featured       bool             `json:"featured"`
	Stock          int              `json:"stock"`
	BadgeType      domain.BadgeType `json:"badge_type"`
	WhatsAppNumber string           `json:"whatsapp_number"`
}

type PatchProductRequest struct {
	Name           *string           `json:"name"`
	Description    *string           `json:"description"`
	Price          *int64            `json:"price"`
	OldPrice       *int64            `json:"old_price"`
	Watts          *int              `json:"watts"`
	CategorySlug   *string           `json:"category"`
	MainImage      *string           `json:"main_image"`
	Featured       *bool             `json:"featured"`
	Stock          *int              `json:"stock"`
	BadgeType      *domain.BadgeType `json:"badge_type"`
	WhatsAppNumber *string           `json:"whatsapp_number"`
}

type ReviewRequest struct {
	Rating int    `json:"rating"`
	Text   string `json:"text"`
}

type AddressRequest struct {
	FullName string `json:"full_name"`
	Phone    string `json:"phone"`
	Line1    string `json:"line1"`
	Line2    string `json:"line2"`
	City     string `json:"city"`
	Notes    string `json:"notes"`
}

type CartItemRequest struct {
	ProductID uint `json:"product_id"`
	Quantity  int  `json:"quantity"`
	Override  bool `json:"override"`
}

type CheckoutRequest struct {
	AddressID      *uint  `json:"address_id"`
	FullName       string `json:"full_name"`
	Phone          string `json:"phone"`
	Line1          string `json:"line1"`
	Line2          string `json:"line2"`
	City           string `json:"city"`
	Notes          string `json:"notes"`
	WhatsAppNumber string `json:"whatsapp_number"`
}

type OrderStatusRequest struct {
	Status domain.OrderStatus `json:"status"`
}

type OrderItemQtyRequest struct {
	Qty int `json:"qty"`
}

type RegisterRequest struct {
	Username  string `json:"username"`
	Email     string `json:"email"`
	FirstName string `json:"first_name"`
	LastName  string `json:"last_name"`
	Password  string `json:"password"`
	Password2 string `json:"password2"`
}

type ChangePasswordRequest struct {
	OldPassword string `json:"old_password"`
	NewPassword string `json:"new_password"`
}

type ResetPasswordRequest struct {
	Email string `json:"email"`
}

type ResetPasswordConfirmRequest struct {
	Token       string `json:"token"`
	NewPassword string `json:"new_password"`
}

type LoginRequest struct {
	Login    string `json:"login"`
	Password string `json:"password"`
}

type TestimonialRequest struct {
	Name    string `json:"name"`
	Message string `json:"message"`
	Avatar  string `json:"avatar"`
}

type NewsletterRequest struct {
	Email string `json:"email"`
}

type ContactRequest struct {
	Name    string `json:"name"`
	Email   string `json:"email"`
	Subject string `json:"subject"`
	Message string `json:"message"`
}

type SiteConfigRequest struct {
	SiteName       *string `json:"site_name"`
	WhatsAppNumber *string `json:"whatsapp_number"`
	PhoneNumber    *string `json:"phone_number"`
	SupportEmail   *string `json:"support_email"`
}
