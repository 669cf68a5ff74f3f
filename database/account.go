package database

import (
	"errors"

	"budgetbite/models"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// UpsertGoogleUser 先按 google_id、再按邮箱查找用户
// 找到则刷新姓名、头像并绑定 google_id；都找不到则新建（待完成引导）
// 第二个返回值表示是否新建
func UpsertGoogleUser(db *gorm.DB, googleID, email, name, avatar string) (*models.User, bool, error) {
	var user models.User
	err := db.Where("google_id = ?", googleID).First(&user).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		err = db.Where("email = ?", email).First(&user).Error
	}

	switch {
	case err == nil:
		updates := map[string]interface{}{"google_id": googleID, "name": name, "avatar": avatar}
		if err := db.Model(&user).Updates(updates).Error; err != nil {
			return nil, false, err
		}
		user.GoogleID = &googleID
		user.Name = name
		user.Avatar = avatar
		return &user, false, nil
	case errors.Is(err, gorm.ErrRecordNotFound):
		user = models.User{
			GoogleID:       &googleID,
			Name:           name,
			Email:          email,
			Avatar:         avatar,
			MonthlyBudget:  models.DefaultMonthlyBudget,
			LivingType:     models.LivingHostel,
			FoodPreference: models.FoodVegetarian,
		}
		if err := db.Create(&user).Error; err != nil {
			return nil, false, err
		}
		return &user, true, nil
	default:
		return nil, false, err
	}
}

// SaveMonthBudget 写入当月预算，(user_id, month, year) 已存在时覆盖金额与分配
func SaveMonthBudget(db *gorm.DB, budget *models.Budget) error {
	return db.Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "user_id"}, {Name: "month"}, {Name: "year"}},
		DoUpdates: clause.AssignmentColumns([]string{"total_amount", "allocations", "emergency_reserve", "updated_at"}),
	}).Create(budget).Error
}

// DeleteUserCascade 在一个事务内删除用户及其全部数据
func DeleteUserCascade(db *gorm.DB, userID uint) error {
	return db.Transaction(func(tx *gorm.DB) error {
		owned := []interface{}{
			&models.Transaction{},
			&models.Budget{},
			&models.MealPlan{},
			&models.SavingsGoal{},
			&models.Badge{},
			&models.Alert{},
		}
		for _, m := range owned {
			if err := tx.Where("user_id = ?", userID).Delete(m).Error; err != nil {
				return err
			}
		}
		if err := tx.Where("creator_id = ?", userID).Delete(&models.BillSplit{}).Error; err != nil {
			return err
		}

		result := tx.Delete(&models.User{}, userID)
		if result.Error != nil {
			return result.Error
		}
		if result.RowsAffected == 0 {
			return gorm.ErrRecordNotFound
		}
		return nil
	})
}
