package billsplit

import (
	"context"
	"errors"
	"strings"

	"budgetbite/models"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// Service 分账单持久化，只能访问自己创建的分账单
type Service struct {
	db *gorm.DB
}

// NewService 创建服务
func NewService(db *gorm.DB) *Service {
	return &Service{db: db}
}

// Create 新建分账单
func (s *Service) Create(ctx context.Context, creatorID uint, in Input) (*models.BillSplit, error) {
	participants, err := BuildParticipants(in)
	if err != nil {
		return nil, err
	}
	title := strings.TrimSpace(in.Title)
	if title == "" {
		title = "Bill Split"
	}
	splitType := in.SplitType
	if splitType == "" {
		splitType = models.SplitEqual
	}

	split := models.BillSplit{
		CreatorID:    creatorID,
		Title:        title,
		TotalAmount:  in.Total,
		Participants: participants,
		SplitType:    splitType,
		IsSettled:    len(participants) == 1,
	}
	if err := s.db.WithContext(ctx).Create(&split).Error; err != nil {
		return nil, err
	}
	return &split, nil
}

// List 创建人的分账单，新的在前
func (s *Service) List(ctx context.Context, creatorID uint) ([]models.BillSplit, error) {
	var splits []models.BillSplit
	err := s.db.WithContext(ctx).
		Where("creator_id = ?", creatorID).
		Order("created_at DESC").
		Find(&splits).Error
	return splits, err
}

// Get 查看单个分账单
func (s *Service) Get(ctx context.Context, creatorID, splitID uint) (*models.BillSplit, error) {
	var split models.BillSplit
	if err := s.db.WithContext(ctx).
		Where("id = ? AND creator_id = ?", splitID, creatorID).
		First(&split).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrSplitNotFound
		}
		return nil, err
	}
	return &split, nil
}

// Settle 标记参与人已付款，行加锁后整体回写参与人列表
func (s *Service) Settle(ctx context.Context, creatorID, splitID uint, idx int) (*models.BillSplit, bool, error) {
	var split models.BillSplit
	var settledNow bool
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Clauses(clause.Locking{Strength: "UPDATE"}).
			Where("id = ? AND creator_id = ?", splitID, creatorID).
			First(&split).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return ErrSplitNotFound
			}
			return err
		}

		var err error
		settledNow, err = Settle(&split, idx)
		if err != nil {
			return err
		}
		return tx.Model(&split).Select("participants", "is_settled").Updates(&split).Error
	})
	if err != nil {
		return nil, false, err
	}
	return &split, settledNow, nil
}

// Delete 删除分账单
func (s *Service) Delete(ctx context.Context, creatorID, splitID uint) error {
	result := s.db.WithContext(ctx).Where("id = ? AND creator_id = ?", splitID, creatorID).Delete(&models.BillSplit{})
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return ErrSplitNotFound
	}
	return nil
}
