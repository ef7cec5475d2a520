package postgres

import (
	"context"
	"errors"
	"time"

	sessionDatamodel "github.com/frahmantamala/tandengan-portal/internal/core/datamodel/session"
	"github.com/frahmantamala/tandengan-portal/internal/session"
	"gorm.io/gorm"
)

type SessionRepository struct {
	db *gorm.DB
}

func NewSessionRepository(db *gorm.DB) session.RepositoryAPI {
	return &SessionRepository{db: db}
}

func (r *SessionRepository) Get(ctx context.Context, id string) (*sessionDatamodel.Session, error) {
	var s sessionDatamodel.Session
	err := r.db.WithContext(ctx).Where("id = ?", id).First(&s).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &s, nil
}

func (r *SessionRepository) Save(ctx context.Context, s *sessionDatamodel.Session) error {
	return r.db.WithContext(ctx).Save(s).Error
}

func (r *SessionRepository) Delete(ctx context.Context, id string) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("session_id = ?", id).Delete(&sessionDatamodel.Notice{}).Error; err != nil {
			return err
		}
		return tx.Where("id = ?", id).Delete(&sessionDatamodel.Session{}).Error
	})
}

func (r *SessionRepository) DeleteExpired(ctx context.Context, before time.Time) (int64, error) {
	var deleted int64
	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		expired := tx.Model(&sessionDatamodel.Session{}).Select("id").Where("expires_at <= ?", before)
		if err := tx.Where("session_id IN (?)", expired).Delete(&sessionDatamodel.Notice{}).Error; err != nil {
			return err
		}
		res := tx.Where("expires_at <= ?", before).Delete(&sessionDatamodel.Session{})
		deleted = res.RowsAffected
		return res.Error
	})
	return deleted, err
}

func (r *SessionRepository) AddNotices(ctx context.Context, notices []*sessionDatamodel.Notice) error {
	if len(notices) == 0 {
		return nil
	}
	return r.db.WithContext(ctx).Create(&notices).Error
}

func (r *SessionRepository) DrainNotices(ctx context.Context, sessionID string) ([]*sessionDatamodel.Notice, error) {
	var notices []*sessionDatamodel.Notice
	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("session_id = ?", sessionID).Order("id ASC").Find(&notices).Error; err != nil {
			return err
		}
		if len(notices) == 0 {
			return nil
		}
		ids := make([]int64, len(notices))
		for i, n := range notices {
			ids[i] = n.ID
		}
		return tx.Where("id IN ?", ids).Delete(&sessionDatamodel.Notice{}).Error
	})
	if err != nil {
		return nil, err
	}
	return notices, nil
}
