package stor

import (
	"github.com/hashicorp/go-uuid"
	"github.com/materials-commons/partdensity/pkg/densdb/dmodel"
	"github.com/pkg/errors"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

type GormPartStor struct {
	db *gorm.DB
}

func NewGormPartStor(db *gorm.DB) *GormPartStor {
	return &GormPartStor{db: db}
}

// withJoins preloads what reads need to resolve a part: composition entries in
// insertion order with their elements, and the linked alloy.
func withJoins(db *gorm.DB) *gorm.DB {
	return db.Preload("Composition", func(db *gorm.DB) *gorm.DB {
		return db.Order("position")
	}).Preload("Composition.Element").Preload("StandardAlloy")
}

func numberEntries(part *dmodel.Part) {
	for i := range part.Composition {
		part.Composition[i].ID = 0
		part.Composition[i].PartID = part.ID
		part.Composition[i].Position = i
		part.Composition[i].Element = nil
	}
}

// lockReferences share locks the element and alloy rows part points at so a
// concurrent delete waits for the write, and reports any that are already gone.
func lockReferences(tx *gorm.DB, part *dmodel.Part) error {
	var missing MissingReferencesError

	if len(part.Composition) != 0 {
		ids := make([]int, 0, len(part.Composition))
		for _, entry := range part.Composition {
			ids = append(ids, entry.ElementID)
		}

		var found []int
		err := tx.Model(&dmodel.Element{}).
			Clauses(clause.Locking{Strength: "SHARE"}).
			Where("id in ?", ids).
			Pluck("id", &found).Error
		if err != nil {
			return err
		}

		present := make(map[int]bool, len(found))
		for _, id := range found {
			present[id] = true
		}
		for _, id := range ids {
			if !present[id] {
				missing.ElementIDs = append(missing.ElementIDs, id)
			}
		}
	}

	if part.StandardAlloyID != nil {
		var found []int
		err := tx.Model(&dmodel.StandardAlloy{}).
			Clauses(clause.Locking{Strength: "SHARE"}).
			Where("id = ?", *part.StandardAlloyID).
			Pluck("id", &found).Error
		if err != nil {
			return err
		}
		if len(found) == 0 {
			missing.AlloyID = *part.StandardAlloyID
		}
	}

	if len(missing.ElementIDs) != 0 || missing.AlloyID != 0 {
		return &missing
	}

	return nil
}

func (s *GormPartStor) CreatePart(part *dmodel.Part) (*dmodel.Part, error) {
	var err error

	if part.UUID, err = uuid.GenerateUUID(); err != nil {
		return nil, err
	}

	part.StandardAlloy = nil
	numberEntries(part)

	err = WithTxRetry(s.db, func(tx *gorm.DB) error {
		if err := lockReferences(tx, part); err != nil {
			return err
		}
		return tx.Create(part).Error
	})

	if err != nil {
		return nil, errors.Wrapf(translate(err), "creating part %s", part.PartCode)
	}

	return s.GetPartByCode(part.PartCode)
}

// UpdatePart replaces the name, owner and density source of the part with
// the same code. The old composition is removed in the same transaction.
func (s *GormPartStor) UpdatePart(part *dmodel.Part) (*dmodel.Part, error) {
	err := WithTxRetry(s.db, func(tx *gorm.DB) error {
		var existing dmodel.Part
		if err := tx.Where("part_code = ?", part.PartCode).First(&existing).Error; err != nil {
			return err
		}

		part.ID = existing.ID
		numberEntries(part)

		if err := lockReferences(tx, part); err != nil {
			return err
		}

		if err := tx.Where("part_id = ?", existing.ID).Delete(&dmodel.CompositionEntry{}).Error; err != nil {
			return err
		}

		err := tx.Model(&existing).Updates(map[string]interface{}{
			"part_name":         part.PartName,
			"user_id":           part.UserID,
			"standard_alloy_id": part.StandardAlloyID,
		}).Error
		if err != nil {
			return err
		}

		if len(part.Composition) == 0 {
			return nil
		}

		return tx.Create(&part.Composition).Error
	})

	if err != nil {
		return nil, errors.Wrapf(translate(err), "updating part %s", part.PartCode)
	}

	return s.GetPartByCode(part.PartCode)
}

func (s *GormPartStor) GetPartByCode(partCode string) (*dmodel.Part, error) {
	var part dmodel.Part
	if err := withJoins(s.db).Where("part_code = ?", partCode).First(&part).Error; err != nil {
		return nil, translate(err)
	}

	return &part, nil
}

func (s *GormPartStor) ListPartsByOwner(userID int) ([]dmodel.Part, error) {
	var parts []dmodel.Part
	err := withJoins(s.db).Where("user_id = ?", userID).Order("part_code").Find(&parts).Error
	return parts, err
}

func (s *GormPartStor) DeletePart(partCode string) (bool, error) {
	deleted := false
	err := WithTxRetry(s.db, func(tx *gorm.DB) error {
		var part dmodel.Part
		err := tx.Where("part_code = ?", partCode).Find(&part).Error
		switch {
		case err != nil:
			return err
		case part.ID == 0:
			return nil
		}

		if err := tx.Where("part_id = ?", part.ID).Delete(&dmodel.CompositionEntry{}).Error; err != nil {
			return err
		}

		result := tx.Delete(&part)
		deleted = result.RowsAffected == 1
		return result.Error
	})

	return deleted, err
}

func partCodesUsingElement(db *gorm.DB, elementID int) ([]string, error) {
	var codes []string
	err := db.Model(&dmodel.Part{}).
		Where("id in (?)", db.Model(&dmodel.CompositionEntry{}).Select("part_id").Where("element_id = ?", elementID)).
		Order("part_code").
		Pluck("part_code", &codes).Error
	return codes, err
}

func partCodesUsingAlloy(db *gorm.DB, alloyID int) ([]string, error) {
	var codes []string
	err := db.Model(&dmodel.Part{}).
		Where("standard_alloy_id = ?", alloyID).
		Order("part_code").
		Pluck("part_code", &codes).Error
	return codes, err
}
