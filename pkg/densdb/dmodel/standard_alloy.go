package dmodel

import (
	"fmt"
	"time"

	"github.com/gosimple/slug"
)

type StandardAlloy struct {
	ID        int       `json:"id"`
	UUID      string    `json:"uuid" gorm:"size:64"`
	Slug      string    `json:"slug" gorm:"size:191;uniqueIndex"`
	Country   string    `json:"country" gorm:"size:64"`
	Name      string    `json:"name" gorm:"size:128"`
	Density   float64   `json:"density"`
	Reference string    `json:"reference"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// BaseSlug is the slug an alloy gets before collision suffixes are added.
func (a StandardAlloy) BaseSlug() string {
	return slug.Make(fmt.Sprintf("%s %s", a.Country, a.Name))
}
