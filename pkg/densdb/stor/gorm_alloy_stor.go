package stor

import (
	"fmt"

	"github.com/hashicorp/go-uuid"
	"github.com/materials-commons/partdensity/pkg/densdb/dmodel"
	"github.com/pkg/errors"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

type GormAlloyStor struct {
	db *gorm.DB
}

func NewGormAlloyStor(db *gorm.DB) *GormAlloyStor {
	return &GormAlloyStor{db: db}
}

// CreateAlloy stores a new alloy. Its slug is derived from the country and
// name; when that slug is taken an incrementing suffix is added.
func (s *GormAlloyStor) CreateAlloy(alloy *dmodel.StandardAlloy) (*dmodel.StandardAlloy, error) {
	var err error

	if alloy.UUID, err = uuid.GenerateUUID(); err != nil {
		return nil, err
	}

	err = WithTxRetry(s.db, func(tx *gorm.DB) error {
		slug, err := nextFreeSlug(tx, alloy.BaseSlug(), 0)
		if err != nil {
			return err
		}
		alloy.Slug = slug
		return tx.Create(alloy).Error
	})

	if err != nil {
		return nil, errors.Wrapf(translate(err), "creating alloy %s %s", alloy.Country, alloy.Name)
	}

	return alloy, nil
}

func nextFreeSlug(tx *gorm.DB, base string, ownID int) (string, error) {
	candidate := base
	for next := 1; ; next++ {
		var count int64
		err := tx.Model(&dmodel.StandardAlloy{}).
			Where("slug = ?", candidate).
			Where("id <> ?", ownID).
			Count(&count).Error
		if err != nil {
			return "", err
		}

		if count == 0 {
			return candidate, nil
		}

		candidate = fmt.Sprintf("%s-%d", base, next)
	}
}

func (s *GormAlloyStor) UpdateAlloy(alloy *dmodel.StandardAlloy) (*dmodel.StandardAlloy, error) {
	err := WithTxRetry(s.db, func(tx *gorm.DB) error {
		var existing dmodel.StandardAlloy
		if err := tx.First(&existing, alloy.ID).Error; err != nil {
			return err
		}

		updates := map[string]interface{}{
			"country":   alloy.Country,
			"name":      alloy.Name,
			"density":   alloy.Density,
			"reference": alloy.Reference,
		}

		if alloy.BaseSlug() != existing.BaseSlug() {
			slug, err := nextFreeSlug(tx, alloy.BaseSlug(), alloy.ID)
			if err != nil {
				return err
			}
			updates["slug"] = slug
		}

		return tx.Model(&existing).Updates(updates).Error
	})

	if err != nil {
		return nil, errors.Wrapf(translate(err), "updating alloy %d", alloy.ID)
	}

	return s.GetAlloyByID(alloy.ID)
}

func (s *GormAlloyStor) GetAlloyByID(alloyID int) (*dmodel.StandardAlloy, error) {
	var alloy dmodel.StandardAlloy
	if err := s.db.First(&alloy, alloyID).Error; err != nil {
		return nil, translate(err)
	}

	return &alloy, nil
}

func (s *GormAlloyStor) GetAlloyBySlug(slug string) (*dmodel.StandardAlloy, error) {
	var alloy dmodel.StandardAlloy
	if err := s.db.Where("slug = ?", slug).First(&alloy).Error; err != nil {
		return nil, translate(err)
	}

	return &alloy, nil
}

func (s *GormAlloyStor) ListAlloys() ([]dmodel.StandardAlloy, error) {
	var alloys []dmodel.StandardAlloy
	err := s.db.Order("country, name").Find(&alloys).Error
	return alloys, err
}

// DeleteAlloy removes the alloy unless a part is linked to it. The codes of
// those parts are returned instead and nothing is deleted.
func (s *GormAlloyStor) DeleteAlloy(alloyID int) ([]string, error) {
	var inUse []string
	err := WithTxRetry(s.db, func(tx *gorm.DB) error {
		var alloy dmodel.StandardAlloy
		if err := tx.Clauses(clause.Locking{Strength: "UPDATE"}).First(&alloy, alloyID).Error; err != nil {
			return err
		}

		codes, err := partCodesUsingAlloy(tx, alloyID)
		if err != nil {
			return err
		}

		if inUse = codes; len(inUse) != 0 {
			return nil
		}

		return tx.Delete(&alloy).Error
	})

	if err != nil {
		return nil, translate(err)
	}

	return inUse, nil
}
