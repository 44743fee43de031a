package services

import (
	"errors"

	"gorm.io/gorm"

	apperrors "fintrack/internal/errors"
	"fintrack/internal/models"
	"fintrack/internal/pagination"
)

// categoryService handles category-related business logic.
type categoryService struct {
	db *gorm.DB
}

// NewCategoryService creates a new CategoryServicer.
func NewCategoryService(db *gorm.DB) CategoryServicer {
	return &categoryService{db: db}
}

// CreateCategory creates a new category
func (s *categoryService) CreateCategory(
	name string,
	categoryType models.CategoryType,
	color string,
	description string,
) (*models.Category, error) {
	if name == "" {
		return nil, apperrors.WithMessage(apperrors.ErrInvalidInput, "category name is required")
	}

	// Check if a category with the same name already exists
	var count int64
	if err := s.db.Model(&models.Category{}).
		Where("name = ?", name).
		Count(&count).Error; err != nil {
		return nil, apperrors.Wrap(apperrors.ErrInternalServer, err)
	}

	if count > 0 {
		return nil, apperrors.WithMessage(apperrors.ErrInvalidInput, "category with this name already exists")
	}

	category := &models.Category{
		Name:        name,
		Type:        categoryType,
		Color:       color,
		Description: description,
	}

	if err := s.db.Create(category).Error; err != nil {
		return nil, apperrors.Wrap(apperrors.ErrInternalServer, err)
	}

	return category, nil
}

// GetCategories retrieves a paginated list of categories.
func (s *categoryService) GetCategories(page pagination.PageRequest) (*pagination.PageResponse[models.Category], error) {
	page.Defaults()

	var totalItems int64
	base := s.db.Model(&models.Category{})
	if err := base.Count(&totalItems).Error; err != nil {
		return nil, apperrors.Wrap(apperrors.ErrInternalServer, err)
	}

	var categories []models.Category
	if err := base.Scopes(pagination.Paginate(page)).Find(&categories).Error; err != nil {
		return nil, apperrors.Wrap(apperrors.ErrInternalServer, err)
	}

	result := pagination.NewPageResponse(categories, page.Page, page.PageSize, totalItems)
	return &result, nil
}

// GetCategoriesByType retrieves a paginated list of categories of a specific type.
func (s *categoryService) GetCategoriesByType(categoryType models.CategoryType, page pagination.PageRequest) (*pagination.PageResponse[models.Category], error) {
	page.Defaults()

	var totalItems int64
	base := s.db.Model(&models.Category{}).Where("type = ?", categoryType)
	if err := base.Count(&totalItems).Error; err != nil {
		return nil, apperrors.Wrap(apperrors.ErrInternalServer, err)
	}

	var categories []models.Category
	if err := base.Scopes(pagination.Paginate(page)).Find(&categories).Error; err != nil {
		return nil, apperrors.Wrap(apperrors.ErrInternalServer, err)
	}

	result := pagination.NewPageResponse(categories, page.Page, page.PageSize, totalItems)
	return &result, nil
}

// GetCategoryByID retrieves a category by ID
func (s *categoryService) GetCategoryByID(categoryID string) (*models.Category, error) {
	var category models.Category
	if err := s.db.Where("id = ?", categoryID).First(&category).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperrors.ErrCategoryNotFound
		}
		return nil, apperrors.Wrap(apperrors.ErrInternalServer, err)
	}
	return &category, nil
}

// UpdateCategory updates an existing category. The type taxonomy is
// immutable, so the category type cannot be changed after creation.
func (s *categoryService) UpdateCategory(
	categoryID string,
	name string,
	color string,
	description string,
) (*models.Category, error) {
	category, err := s.GetCategoryByID(categoryID)
	if err != nil {
		return nil, err
	}

	updates := make(map[string]interface{})
	if name != "" {
		updates["name"] = name
	}
	if color != "" {
		updates["color"] = color
	}
	if description != "" {
		updates["description"] = description
	}

	if len(updates) > 0 {
		if err := s.db.Model(category).Updates(updates).Error; err != nil {
			return nil, apperrors.Wrap(apperrors.ErrInternalServer, err)
		}
	}

	return category, nil
}

// DeleteCategory deletes a category and cascades to its dependents:
// recurring rules referencing the category and, transitively, the
// transactions those rules generated. Manual transactions keep their
// category_id for historical records; the aggregator treats them as
// uncategorized once the category is gone.
func (s *categoryService) DeleteCategory(categoryID string) error {
	category, err := s.GetCategoryByID(categoryID)
	if err != nil {
		return err
	}

	if category.IsPredefined {
		return apperrors.ErrCategoryPredefined
	}

	err = s.db.Transaction(func(tx *gorm.DB) error {
		var incomeRules []models.RecurringIncome
		if err := tx.Where("category_id = ?", categoryID).Find(&incomeRules).Error; err != nil {
			return err
		}
		for _, rule := range incomeRules {
			if err := tx.Where("recurring_income_id = ?", rule.ID).Delete(&models.Transaction{}).Error; err != nil {
				return err
			}
		}
		if err := tx.Where("category_id = ?", categoryID).Delete(&models.RecurringIncome{}).Error; err != nil {
			return err
		}

		var expenseRules []models.RecurringExpense
		if err := tx.Where("category_id = ?", categoryID).Find(&expenseRules).Error; err != nil {
			return err
		}
		for _, rule := range expenseRules {
			if err := tx.Where("recurring_expense_id = ?", rule.ID).Delete(&models.Transaction{}).Error; err != nil {
				return err
			}
		}
		if err := tx.Where("category_id = ?", categoryID).Delete(&models.RecurringExpense{}).Error; err != nil {
			return err
		}

		return tx.Delete(category).Error
	})
	if err != nil {
		return apperrors.Wrap(apperrors.ErrInternalServer, err)
	}
	return nil
}
