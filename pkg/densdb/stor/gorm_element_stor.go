package stor

import (
	"github.com/hashicorp/go-uuid"
	"github.com/materials-commons/partdensity/pkg/densdb/dmodel"
	"github.com/pkg/errors"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

type GormElementStor struct {
	db *gorm.DB
}

func NewGormElementStor(db *gorm.DB) *GormElementStor {
	return &GormElementStor{db: db}
}

func (s *GormElementStor) CreateElement(element *dmodel.Element) (*dmodel.Element, error) {
	var err error

	if element.UUID, err = uuid.GenerateUUID(); err != nil {
		return nil, err
	}

	err = WithTxRetry(s.db, func(tx *gorm.DB) error {
		return tx.Create(element).Error
	})

	if err != nil {
		return nil, errors.Wrapf(translate(err), "creating element %s", element.Symbol)
	}

	return element, nil
}

func (s *GormElementStor) UpdateElement(element *dmodel.Element) (*dmodel.Element, error) {
	err := WithTxRetry(s.db, func(tx *gorm.DB) error {
		return tx.Model(&dmodel.Element{ID: element.ID}).Updates(map[string]interface{}{
			"name":          element.Name,
			"symbol":        element.Symbol,
			"atomic_number": element.AtomicNumber,
			"density":       element.Density,
		}).Error
	})

	if err != nil {
		return nil, errors.Wrapf(translate(err), "updating element %d", element.ID)
	}

	var updated dmodel.Element
	if err := s.db.First(&updated, element.ID).Error; err != nil {
		return nil, translate(err)
	}

	return &updated, nil
}

func (s *GormElementStor) GetElementBySymbol(symbol string) (*dmodel.Element, error) {
	var element dmodel.Element
	if err := s.db.Where("symbol = ?", symbol).First(&element).Error; err != nil {
		return nil, translate(err)
	}

	return &element, nil
}

func (s *GormElementStor) GetElementsBySymbols(symbols []string) ([]dmodel.Element, error) {
	var elements []dmodel.Element
	if len(symbols) == 0 {
		return elements, nil
	}

	err := s.db.Where("symbol in ?", symbols).Find(&elements).Error
	return elements, err
}

func (s *GormElementStor) ListElements() ([]dmodel.Element, error) {
	var elements []dmodel.Element
	err := s.db.Order("atomic_number").Find(&elements).Error
	return elements, err
}

// FindConflictingElements returns the other elements sharing a name, symbol or
// atomic number with element.
func (s *GormElementStor) FindConflictingElements(element *dmodel.Element) ([]dmodel.Element, error) {
	var conflicts []dmodel.Element
	err := s.db.Where("id <> ?", element.ID).
		Where(s.db.Where("name = ?", element.Name).
			Or("symbol = ?", element.Symbol).
			Or("atomic_number = ?", element.AtomicNumber)).
		Find(&conflicts).Error
	return conflicts, err
}

// DeleteElement removes the element unless a part composition uses it. The
// codes of those parts are returned instead and nothing is deleted.
func (s *GormElementStor) DeleteElement(elementID int) ([]string, error) {
	var inUse []string
	err := WithTxRetry(s.db, func(tx *gorm.DB) error {
		var element dmodel.Element
		if err := tx.Clauses(clause.Locking{Strength: "UPDATE"}).First(&element, elementID).Error; err != nil {
			return err
		}

		codes, err := partCodesUsingElement(tx, elementID)
		if err != nil {
			return err
		}

		if inUse = codes; len(inUse) != 0 {
			return nil
		}

		return tx.Delete(&element).Error
	})

	if err != nil {
		return nil, translate(err)
	}

	return inUse, nil
}
