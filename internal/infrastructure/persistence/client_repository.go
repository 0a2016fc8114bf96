package persistence

import (
	"context"
	"errors"
	"strings"

	"github.com/creditmonitor/backend/internal/domain/ledger"
	"github.com/creditmonitor/backend/internal/domain/shared"
	"github.com/creditmonitor/backend/internal/infrastructure/persistence/models"
	"github.com/google/uuid"
	"gorm.io/gorm"
)

// GormClientRepository implements ledger.ClientRepository using GORM
type GormClientRepository struct {
	db *gorm.DB
}

// NewGormClientRepository creates a new GormClientRepository
func NewGormClientRepository(db *gorm.DB) *GormClientRepository {
	return &GormClientRepository{db: db}
}

// FindByID finds a client by its ID
func (r *GormClientRepository) FindByID(ctx context.Context, id uuid.UUID) (*ledger.Client, error) {
	var model models.ClientModel
	if err := r.db.WithContext(ctx).First(&model, "id = ?", id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, shared.ErrNotFound
		}
		return nil, err
	}
	return model.ToDomain(), nil
}

// FindByName finds a client by exact company name, case-insensitively
func (r *GormClientRepository) FindByName(ctx context.Context, companyName string) (*ledger.Client, error) {
	var model models.ClientModel
	if err := r.db.WithContext(ctx).
		Where("LOWER(company_name) = LOWER(?)", strings.TrimSpace(companyName)).
		First(&model).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, shared.ErrNotFound
		}
		return nil, err
	}
	return model.ToDomain(), nil
}

// FindByIDs finds multiple clients by their IDs
func (r *GormClientRepository) FindByIDs(ctx context.Context, ids []uuid.UUID) ([]ledger.Client, error) {
	if len(ids) == 0 {
		return []ledger.Client{}, nil
	}

	var clientModels []models.ClientModel
	if err := r.db.WithContext(ctx).
		Where("id IN ?", ids).
		Find(&clientModels).Error; err != nil {
		return nil, err
	}

	clients := make([]ledger.Client, len(clientModels))
	for i, model := range clientModels {
		clients[i] = *model.ToDomain()
	}
	return clients, nil
}

// Search lists clients whose company name contains the search term
// (case-insensitive), ordered by company name. An empty term lists all.
func (r *GormClientRepository) Search(ctx context.Context, term string) ([]ledger.Client, error) {
	query := r.db.WithContext(ctx).Model(&models.ClientModel{})

	term = strings.TrimSpace(term)
	if term != "" {
		query = query.Where("LOWER(company_name) LIKE LOWER(?) ESCAPE '\\'", "%"+escapeLike(term)+"%")
	}

	var clientModels []models.ClientModel
	if err := query.Order("company_name ASC").Find(&clientModels).Error; err != nil {
		return nil, err
	}

	clients := make([]ledger.Client, len(clientModels))
	for i, model := range clientModels {
		clients[i] = *model.ToDomain()
	}
	return clients, nil
}

// Save creates or updates a client
func (r *GormClientRepository) Save(ctx context.Context, client *ledger.Client) error {
	model := models.ClientModelFromDomain(client)
	return r.db.WithContext(ctx).Save(model).Error
}

// Delete removes a client; its invoices and their payments cascade
func (r *GormClientRepository) Delete(ctx context.Context, id uuid.UUID) error {
	result := r.db.WithContext(ctx).Delete(&models.ClientModel{}, "id = ?", id)
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return shared.ErrNotFound
	}
	return nil
}

// Count counts all clients
func (r *GormClientRepository) Count(ctx context.Context) (int64, error) {
	var count int64
	err := r.db.WithContext(ctx).Model(&models.ClientModel{}).Count(&count).Error
	return count, err
}

// escapeLike escapes LIKE wildcards in a user-supplied search term
func escapeLike(term string) string {
	replacer := strings.NewReplacer(`\`, `\\`, `%`, `\%`, `_`, `\_`)
	return replacer.Replace(term)
}
