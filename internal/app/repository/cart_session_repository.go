package repository

import (
	"context"
	"errors"
	"time"

	"github.com/storefront/storefront-backend/internal/app/model"
	"github.com/storefront/storefront-backend/pkg/cart"
	"github.com/storefront/storefront-backend/pkg/logger"
	"gorm.io/datatypes"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// CartSessionRepository stores cart sessions. Load returns
// cart.ErrSessionNotFound for unknown ids.
type CartSessionRepository interface {
	Load(ctx context.Context, id string) (cart.Session, error)
	Save(ctx context.Context, session cart.Session) error
	Delete(ctx context.Context, id string) error
	// PurgeOlderThan removes sessions not written since cutoff.
	PurgeOlderThan(ctx context.Context, cutoff time.Time) (int64, error)
}

type cartSessionRepository struct {
	db *gorm.DB
}

func NewCartSessionRepository(db *gorm.DB) CartSessionRepository {
	return &cartSessionRepository{db: db}
}

func (r *cartSessionRepository) Load(ctx context.Context, id string) (cart.Session, error) {
	logger.Debug("Loading cart session from database", map[string]interface{}{
		"session_id": id,
	})

	var row model.CartSession
	if err := r.db.WithContext(ctx).Where("id = ?", id).First(&row).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return cart.Session{}, cart.ErrSessionNotFound
		}
		logger.Error("Failed to load cart session from database", err, map[string]interface{}{
			"session_id": id,
		})
		return cart.Session{}, err
	}

	session := row.Data.Data()
	session.ID = row.ID
	session.UpdatedAt = row.UpdatedAt
	return session, nil
}

func (r *cartSessionRepository) Save(ctx context.Context, session cart.Session) error {
	logger.Debug("Saving cart session to database", map[string]interface{}{
		"session_id": session.ID,
		"items":      len(session.Items),
	})

	row := model.CartSession{
		ID:     session.ID,
		UserID: session.UserID,
		Data:   datatypes.NewJSONType(session),
	}
	err := r.db.WithContext(ctx).Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "id"}},
		DoUpdates: clause.AssignmentColumns([]string{"user_id", "data", "updated_at"}),
	}).Create(&row).Error
	if err != nil {
		logger.Error("Failed to save cart session to database", err, map[string]interface{}{
			"session_id": session.ID,
		})
		return err
	}
	return nil
}

func (r *cartSessionRepository) Delete(ctx context.Context, id string) error {
	if err := r.db.WithContext(ctx).Where("id = ?", id).Delete(&model.CartSession{}).Error; err != nil {
		logger.Error("Failed to delete cart session from database", err, map[string]interface{}{
			"session_id": id,
		})
		return err
	}
	return nil
}

func (r *cartSessionRepository) PurgeOlderThan(ctx context.Context, cutoff time.Time) (int64, error) {
	result := r.db.WithContext(ctx).Where("updated_at < ?", cutoff).Delete(&model.CartSession{})
	if result.Error != nil {
		logger.Error("Failed to purge stale cart sessions", result.Error, map[string]interface{}{
			"cutoff": cutoff,
		})
		return 0, result.Error
	}

	logger.Debug("Stale cart sessions purged", map[string]interface{}{
		"count": result.RowsAffected,
	})
	return result.RowsAffected, nil
}
