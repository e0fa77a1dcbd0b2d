package stor

import (
	"github.com/materials-commons/partdensity/pkg/densdb/dmodel"
	"gorm.io/gorm"
)

type ElementStor interface {
	CreateElement(element *dmodel.Element) (*dmodel.Element, error)
	UpdateElement(element *dmodel.Element) (*dmodel.Element, error)
	GetElementBySymbol(symbol string) (*dmodel.Element, error)
	GetElementsBySymbols(symbols []string) ([]dmodel.Element, error)
	ListElements() ([]dmodel.Element, error)
	FindConflictingElements(element *dmodel.Element) ([]dmodel.Element, error)
	DeleteElement(elementID int) (inUse []string, err error)
}

type AlloyStor interface {
	CreateAlloy(alloy *dmodel.StandardAlloy) (*dmodel.StandardAlloy, error)
	UpdateAlloy(alloy *dmodel.StandardAlloy) (*dmodel.StandardAlloy, error)
	GetAlloyByID(alloyID int) (*dmodel.StandardAlloy, error)
	GetAlloyBySlug(slug string) (*dmodel.StandardAlloy, error)
	ListAlloys() ([]dmodel.StandardAlloy, error)
	DeleteAlloy(alloyID int) (inUse []string, err error)
}

type PartStor interface {
	CreatePart(part *dmodel.Part) (*dmodel.Part, error)
	UpdatePart(part *dmodel.Part) (*dmodel.Part, error)
	GetPartByCode(partCode string) (*dmodel.Part, error)
	ListPartsByOwner(userID int) ([]dmodel.Part, error)
	DeletePart(partCode string) (bool, error)
}

type SerialStor interface {
	// ReserveSerials advances the (partCode, lotDate) counter by count and
	// returns the first serial of the reserved block.
	ReserveSerials(partCode, lotDate string, count int) (int, error)
}

type Stors struct {
	ElementStor ElementStor
	AlloyStor   AlloyStor
	PartStor    PartStor
	SerialStor  SerialStor
}

func NewGormStors(db *gorm.DB) *Stors {
	return &Stors{
		ElementStor: NewGormElementStor(db),
		AlloyStor:   NewGormAlloyStor(db),
		PartStor:    NewGormPartStor(db),
		SerialStor:  NewGormSerialStor(db),
	}
}
