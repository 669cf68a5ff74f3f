package database

import (
	"errors"
	"fmt"

	"budgetbite/config"
	"budgetbite/models"

	"github.com/sirupsen/logrus"
	"gorm.io/driver/mysql"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

var DB *gorm.DB

// Init 初始化数据库连接
func Init(cfg *config.Config) error {
	// clientFoundRows: UPDATE 返回匹配行数，值未变化的更新不会被当成记录不存在
	dsn := fmt.Sprintf("%s:%s@tcp(%s:%s)/%s?charset=%s&parseTime=True&loc=Local&clientFoundRows=true",
		cfg.Database.Username,
		cfg.Database.Password,
		cfg.Database.Host,
		cfg.Database.Port,
		cfg.Database.DBName,
		cfg.Database.Charset,
	)

	logLevel := logger.Warn
	if cfg.Server.Mode == "debug" {
		logLevel = logger.Info
	}

	var err error
	DB, err = gorm.Open(mysql.Open(dsn), &gorm.Config{
		Logger: logger.Default.LogMode(logLevel),
	})
	if err != nil {
		return fmt.Errorf("连接数据库失败: %w", err)
	}

	// 获取底层 *sql.DB 连接池配置
	sqlDB, err := DB.DB()
	if err != nil {
		return err
	}

	// 设置连接池参数
	sqlDB.SetMaxIdleConns(10)  // 最大空闲连接数
	sqlDB.SetMaxOpenConns(100) // 最大打开连接数

	if err := AutoMigrate(DB); err != nil {
		return err
	}

	// 初始化演示账号（仅当不存在时）
	if cfg.Demo.Enabled {
		if _, err := EnsureDemoUser(DB, cfg.Demo.Email); err != nil {
			logrus.WithError(err).Warn("初始化演示账号失败")
		}
	}

	logrus.Info("数据库初始化成功")
	return nil
}

// AutoMigrate 自动迁移数据库表
func AutoMigrate(db *gorm.DB) error {
	return db.AutoMigrate(
		&models.User{},
		&models.Transaction{},
		&models.Budget{},
		&models.MealPlan{},
		&models.SavingsGoal{},
		&models.Badge{},
		&models.BillSplit{},
		&models.Alert{},
	)
}

// EnsureDemoUser 按邮箱查找演示账号，不存在则创建并标记已完成引导
func EnsureDemoUser(db *gorm.DB, email string) (*models.User, error) {
	var user models.User
	err := db.Where("email = ?", email).First(&user).Error
	if err == nil {
		return &user, nil
	}
	if !errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, err
	}

	user = models.User{
		Name:               "Demo Student",
		Email:              email,
		MonthlyBudget:      models.DefaultMonthlyBudget,
		LivingType:         models.LivingHostel,
		FoodPreference:     models.FoodVegetarian,
		OnboardingComplete: true,
	}
	if err := db.Create(&user).Error; err != nil {
		return nil, err
	}
	return &user, nil
}
