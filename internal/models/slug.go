package models

import (
	"fmt"
	"strings"
	"unicode"

	"gorm.io/gorm"
)

// Slugify lowercases s, keeps ASCII letters and digits and joins the rest
// with single hyphens.
func Slugify(s string) string {
	var b strings.Builder
	dash := false
	for _, r := range strings.ToLower(strings.TrimSpace(s)) {
		switch {
		case r < unicode.MaxASCII && (unicode.IsLetter(r) || unicode.IsDigit(r)):
			b.WriteRune(r)
			dash = false
		case r == '_' || r == '-' || unicode.IsSpace(r):
			if b.Len() > 0 && !dash {
				b.WriteByte('-')
				dash = true
			}
		}
	}
	return strings.TrimSuffix(b.String(), "-")
}

func uniqueSlug(tx *gorm.DB, model any, base string) (string, error) {
	if base == "" {
		base = "item"
	}
	slug := base
	for n := 2; ; n++ {
		var count int64
		if err := tx.Session(&gorm.Session{NewDB: true}).Model(model).Where("slug = ?", slug).Count(&count).Error; err != nil {
			return "", err
		}
		if count == 0 {
			return slug, nil
		}
		slug = fmt.Sprintf("%s-%d", base, n)
	}
}

func (c *Category) BeforeCreate(tx *gorm.DB) error {
	if c.Slug != "" {
		return nil
	}
	slug, err := uniqueSlug(tx, &Category{}, Slugify(c.Name))
	if err != nil {
		return err
	}
	c.Slug = slug
	return nil
}

func (p *Product) BeforeCreate(tx *gorm.DB) error {
	if p.Slug != "" {
		return nil
	}
	slug, err := uniqueSlug(tx, &Product{}, Slugify(p.Name))
	if err != nil {
		return err
	}
	p.Slug = slug
	return nil
}
