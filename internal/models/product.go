package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// Product is a language-independent catalog entry. It exclusively owns its translations.
type Product struct {
	ID           string               `json:"id" gorm:"primaryKey;type:varchar(36)"`
	Translations []ProductTranslation `json:"translations" gorm:"foreignKey:ProductID;constraint:OnDelete:CASCADE"`
	CreatedAt    time.Time            `json:"createdAt" gorm:"index"`
	UpdatedAt    time.Time            `json:"updatedAt"`
}

// BeforeCreate assigns a UUID to products created without one.
func (p *Product) BeforeCreate(tx *gorm.DB) error {
	if p.ID == "" {
		p.ID = uuid.NewString()
	}
	return nil
}

// Languages lists the language codes of the product's translations in order.
func (p *Product) Languages() []string {
	codes := make([]string, 0, len(p.Translations))
	for _, t := range p.Translations {
		codes = append(codes, t.LanguageCode)
	}
	return codes
}

// ProductTranslation holds the name and description of a product in one language.
type ProductTranslation struct {
	ID           string    `json:"id" gorm:"primaryKey;type:varchar(36)"`
	ProductID    string    `json:"-" gorm:"type:varchar(36);not null;index"`
	LanguageCode string    `json:"languageCode" gorm:"type:varchar(16);not null;index"`
	// Position is the index of the translation in the request that stored it.
	Position     int       `json:"-" gorm:"not null;default:0"`
	Name         string    `json:"name" gorm:"not null"`
	Description  string    `json:"description" gorm:"not null"`
	CreatedAt    time.Time `json:"createdAt"`
	UpdatedAt    time.Time `json:"updatedAt"`
}

// BeforeCreate assigns a UUID to translations created without one.
func (t *ProductTranslation) BeforeCreate(tx *gorm.DB) error {
	if t.ID == "" {
		t.ID = uuid.NewString()
	}
	return nil
}

// SearchResult is one page of products matching a search.
type SearchResult struct {
	Items      []Product `json:"items"`
	Total      int64     `json:"total"`
	Page       int       `json:"page"`
	Limit      int       `json:"limit"`
	TotalPages int       `json:"totalPages"`
}
