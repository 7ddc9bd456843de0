package service

import (
	"context"
	"fmt"
	netmail "net/mail"
	"strings"

	"github.com/Skotchmaster/storefront/internal/domain"
	"github.com/Skotchmaster/storefront/internal/mail"
	"github.com/Skotchmaster/storefront/internal/models"
	"github.com/Skotchmaster/storefront/internal/repo"
	"github.com/Skotchmaster/storefront/internal/transport"
	"github.com/Skotchmaster/storefront/pkg/logging"
)

const testimonialLimit = 20

type ContentService struct {
	Repo   *repo.GormRepo
	Mailer mail.Mailer
}

func (s *ContentService) Testimonials(ctx context.Context) ([]models.Testimonial, error) {
	return s.Repo.ListTestimonials(ctx, testimonialLimit)
}

func (s *ContentService) CreateTestimonial(ctx context.Context, req transport.TestimonialRequest) (*models.Testimonial, error) {
	t := models.Testimonial{
		Name:    strings.TrimSpace(req.Name),
		Message: strings.TrimSpace(req.Message),
		Avatar:  req.Avatar,
	}
	if t.Name == "" || t.Message == "" {
		return nil, fmt.Errorf("%w: name and message are required", domain.ErrValidation)
	}
	if err := s.Repo.CreateTestimonial(ctx, &t); err != nil {
		return nil, err
	}
	return &t, nil
}

func validEmail(email string) bool {
	_, err := netmail.ParseAddress(email)
	return err == nil
}

// Subscribe reports created=false for an address that was already on the list.
// The welcome mail goes out only on the first subscription; a send failure
// does not undo it.
func (s *ContentService) Subscribe(ctx context.Context, req transport.NewsletterRequest) (bool, error) {
	email := strings.TrimSpace(req.Email)
	if !validEmail(email) {
		return false, fmt.Errorf("%w: invalid email", domain.ErrValidation)
	}
	sub, created, err := s.Repo.Subscribe(ctx, email)
	if err != nil {
		return false, err
	}
	if created && s.Mailer != nil {
		siteName := models.DefaultSiteName
		if cfg, err := s.Repo.SiteConfig(ctx); err == nil && cfg.SiteName != "" {
			siteName = cfg.SiteName
		}
		subject, body := mail.WelcomeMessage(siteName)
		if err := s.Mailer.Send(ctx, sub.Email, subject, body); err != nil {
			logging.FromContext(ctx).Warn("welcome_mail_failed", "email", sub.Email, "error", err)
		}
	}
	return created, nil
}

func (s *ContentService) Contact(ctx context.Context, req transport.ContactRequest) (*models.ContactMessage, error) {
	m := models.ContactMessage{
		Name:    strings.TrimSpace(req.Name),
		Email:   strings.TrimSpace(req.Email),
		Subject: strings.TrimSpace(req.Subject),
		Message: strings.TrimSpace(req.Message),
	}
	if m.Name == "" || m.Message == "" {
		return nil, fmt.Errorf("%w: name and message are required", domain.ErrValidation)
	}
	if !validEmail(m.Email) {
		return nil, fmt.Errorf("%w: invalid email", domain.ErrValidation)
	}
	if err := s.Repo.CreateContactMessage(ctx, &m); err != nil {
		return nil, err
	}
	return &m, nil
}

func (s *ContentService) SiteConfig(ctx context.Context) (models.SiteConfig, error) {
	return s.Repo.SiteConfig(ctx)
}

func (s *ContentService) UpdateSiteConfig(ctx context.Context, req transport.SiteConfigRequest) (models.SiteConfig, error) {
	cfg, err := s.Repo.SiteConfig(ctx)
	if err != nil {
		return models.SiteConfig{}, err
	}
	if req.SiteName != nil {
		cfg.SiteName = strings.TrimSpace(*req.SiteName)
	}
	if req.WhatsAppNumber != nil {
		cfg.WhatsAppNumber = strings.TrimSpace(*req.WhatsAppNumber)
	}
	if req.PhoneNumber != nil {
		cfg.PhoneNumber = strings.TrimSpace(*req.PhoneNumber)
	}
	if req.SupportEmail != nil {
		cfg.SupportEmail = strings.TrimSpace(*req.SupportEmail)
		if cfg.SupportEmail != "" && !validEmail(cfg.SupportEmail) {
			return models.SiteConfig{}, fmt.Errorf("%w: invalid support_email", domain.ErrValidation)
		}
	}
	if err := s.Repo.SaveSiteConfig(ctx, &cfg); err != nil {
		return models.SiteConfig{}, err
	}
	return cfg, nil
}
