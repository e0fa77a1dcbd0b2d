package dmodel

import (
	"time"
)

type Part struct {
	ID              int                `json:"id"`
	UUID            string             `json:"uuid" gorm:"size:64"`
	PartCode        string             `json:"part_code" gorm:"size:64;uniqueIndex"`
	UserID          int                `json:"user_id" gorm:"index"`
	PartName        string             `json:"part_name"`
	Composition     []CompositionEntry `json:"composition" gorm:"foreignKey:PartID"`
	StandardAlloyID *int               `json:"standard_alloy_id"`
	StandardAlloy   *StandardAlloy     `json:"standard_alloy,omitempty" gorm:"foreignKey:StandardAlloyID"`
	CreatedAt       time.Time          `json:"created_at"`
	UpdatedAt       time.Time          `json:"updated_at"`
}

// CompositionEntry references its element by id so that later changes to
// the element's density show up in every part that uses it.
type CompositionEntry struct {
	ID         int      `json:"id"`
	PartID     int      `json:"part_id" gorm:"index"`
	Position   int      `json:"position"`
	ElementID  int      `json:"element_id" gorm:"index"`
	Element    *Element `json:"element,omitempty" gorm:"foreignKey:ElementID"`
	Percentage float64  `json:"percentage"`
}

// UsesAlloy reports whether the part's theoretical density comes from a
// standard alloy. Rows written before the density source was exclusive may
// also carry a composition; the alloy wins for those.
func (p Part) UsesAlloy() bool {
	return p.StandardAlloyID != nil
}

// LotSerialCounter is the last serial handed out for a part on a given day.
type LotSerialCounter struct {
	ID         int       `json:"id"`
	PartCode   string    `json:"part_code" gorm:"size:64;uniqueIndex:idx_serial_part_date"`
	LotDate    string    `json:"lot_date" gorm:"size:10;uniqueIndex:idx_serial_part_date"`
	LastSerial int       `json:"last_serial"`
	CreatedAt  time.Time `json:"created_at"`
	UpdatedAt  time.Time `json:"updated_at"`
}
