package postgres

import (
	"context"
	"errors"
	"strings"

	"github.com/frahmantamala/projecthub/internal/core/database"
	trainingDatamodel "github.com/frahmantamala/projecthub/internal/core/datamodel/training"
	"github.com/frahmantamala/projecthub/internal/training"
	"gorm.io/gorm"
)

type TrainingRepository struct {
	db *gorm.DB
}

func NewTrainingRepository(db *gorm.DB) *TrainingRepository {
	return &TrainingRepository{db: db}
}

func (r *TrainingRepository) Create(ctx context.Context, t *training.Training, participantIDs []int64) error {
	row := training.ToDataModel(t)
	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Create(row).Error; err != nil {
			return err
		}
		if len(participantIDs) == 0 {
			return nil
		}
		participants := make([]trainingDatamodel.TrainingParticipant, len(participantIDs))
		for i, uid := range participantIDs {
			participants[i] = trainingDatamodel.TrainingParticipant{TrainingID: row.ID, UserID: uid}
		}
		return tx.Create(&participants).Error
	})
	if err != nil {
		return err
	}
	*t = *training.FromDataModel(row)
	return nil
}

func (r *TrainingRepository) GetByID(ctx context.Context, id int64) (*training.Training, error) {
	var row trainingDatamodel.Training
	if err := r.db.WithContext(ctx).Where("id = ?", id).First(&row).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, training.ErrNotFound
		}
		return nil, err
	}
	return training.FromDataModel(&row), nil
}

func (r *TrainingRepository) List(ctx context.Context, filter training.ListFilter) ([]*training.Training, int64, error) {
	q := r.db.WithContext(ctx).Model(&trainingDatamodel.Training{})
	if filter.Status != "" {
		q = q.Where("status = ?", filter.Status)
	}
	if s := strings.TrimSpace(filter.Search); s != "" {
		like := "%" + strings.ToLower(s) + "%"
		q = q.Where("(LOWER(title) LIKE ? OR LOWER(location) LIKE ?)", like, like)
	}

	var total int64
	if err := q.Count(&total).Error; err != nil {
		return nil, 0, err
	}
	var rows []trainingDatamodel.Training
	if err := q.Order("start_date DESC, id DESC").Scopes(filter.Page.Scope()).Find(&rows).Error; err != nil {
		return nil, 0, err
	}
	out := make([]*training.Training, len(rows))
	for i := range rows {
		out[i] = training.FromDataModel(&rows[i])
	}
	return out, total, nil
}

func (r *TrainingRepository) Update(ctx context.Context, id int64, fields map[string]interface{}) error {
	return r.db.WithContext(ctx).Model(&trainingDatamodel.Training{}).Where("id = ?", id).Updates(fields).Error
}

func (r *TrainingRepository) Delete(ctx context.Context, id int64) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("training_id = ?", id).Delete(&trainingDatamodel.TrainingParticipant{}).Error; err != nil {
			return err
		}
		res := tx.Where("id = ?", id).Delete(&trainingDatamodel.Training{})
		if res.Error != nil {
			return res.Error
		}
		if res.RowsAffected == 0 {
			return training.ErrNotFound
		}
		return nil
	})
}

func (r *TrainingRepository) ParticipantIDs(ctx context.Context, trainingIDs []int64) (map[int64][]int64, error) {
	var rows []trainingDatamodel.TrainingParticipant
	if err := r.db.WithContext(ctx).Where("training_id IN ?", trainingIDs).Order("id ASC").Find(&rows).Error; err != nil {
		return nil, err
	}
	out := make(map[int64][]int64, len(trainingIDs))
	for _, p := range rows {
		out[p.TrainingID] = append(out[p.TrainingID], p.UserID)
	}
	return out, nil
}

func (r *TrainingRepository) AddParticipant(ctx context.Context, trainingID, userID int64) error {
	err := r.db.WithContext(ctx).Create(&trainingDatamodel.TrainingParticipant{TrainingID: trainingID, UserID: userID}).Error
	if database.IsUniqueViolation(err) {
		return training.ErrAlreadyParticipant
	}
	return err
}

func (r *TrainingRepository) RemoveParticipant(ctx context.Context, trainingID, userID int64) (bool, error) {
	res := r.db.WithContext(ctx).Where("training_id = ? AND user_id = ?", trainingID, userID).Delete(&trainingDatamodel.TrainingParticipant{})
	return res.RowsAffected > 0, res.Error
}
