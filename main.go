package main

import (
	"context"
	"flag"
	"log"
	"strings"

	"budgetbite/config"
	"budgetbite/database"
	"budgetbite/logger"
	"budgetbite/middleware"
	"budgetbite/router"
	"budgetbite/service"

	"github.com/joho/godotenv"
	"github.com/sirupsen/logrus"
)

// @title Budget Bite API
// @version 1.0
// @description 学生预算助手 API：消费记录、日限额、餐食计划、成就、分账与提醒
// @host localhost:8080
// @BasePath /
// @securityDefinitions.apikey BearerAuth
// @in header
// @name Authorization

var (
	configFile  string
	port        string
	showVersion bool
)

func init() {
	flag.StringVar(&configFile, "config", "", "外部配置文件路径（可选）")
	flag.StringVar(&configFile, "c", "", "外部配置文件路径（简写）")
	flag.StringVar(&port, "port", "", "监听端口，如: 8080 或 :8080")
	flag.StringVar(&port, "p", "", "监听端口（简写）")
	flag.BoolVar(&showVersion, "version", false, "显示版本信息")
	flag.BoolVar(&showVersion, "v", false, "显示版本信息（简写）")
}

func main() {
	flag.Parse()

	if showVersion {
		log.Println("Budget Bite v1.0.0")
		return
	}

	// .env 可选，环境变量优先于配置文件
	if err := godotenv.Load(); err == nil {
		log.Println("已加载 .env")
	}

	cfg, err := config.LoadConfig(configFile)
	if err != nil {
		log.Fatalf("加载配置失败: %v", err)
	}

	if port != "" {
		if !strings.HasPrefix(port, ":") {
			port = ":" + port
		}
		cfg.Server.Port = port
		log.Printf("命令行指定端口: %s", port)
	}

	logger.Setup(cfg.Log)
	config.PrintConfig()

	if err := database.Init(cfg); err != nil {
		logrus.WithError(err).Fatal("数据库初始化失败")
	}
	middleware.InitJWT(cfg)

	deps := router.Dependencies{}
	if cfg.OAuth.Enabled() {
		deps.Identity = service.NewGoogleIdentity(cfg.OAuth)
	} else {
		logrus.Warn("未配置 Google 登录，仅可使用演示账号")
	}

	if cfg.Redis.Enabled {
		cache, client, err := service.NewRedisCache(context.Background(), cfg.Redis)
		if err != nil {
			logrus.WithError(err).Warn("Redis 不可用，报表不做缓存")
		} else {
			defer client.Close()
			deps.ReportCache = cache
		}
	}

	if cfg.Email.Enabled {
		deps.Notifier = service.NewEmailService(&cfg.Email)
	}

	r := router.SetupRouter(cfg, deps)

	logrus.WithFields(logrus.Fields{
		"port":    cfg.Server.Port,
		"swagger": "http://localhost" + cfg.Server.Port + "/swagger/index.html",
		"api":     "http://localhost" + cfg.Server.Port + "/api/v1/",
	}).Info("🍱 Budget Bite 已启动")

	if err := r.Run(cfg.Server.Port); err != nil {
		logrus.WithError(err).Fatal("服务器启动失败")
	}
}
