package main

import (
	"flag"
	"log"

	"studybuddy_backend/internal/app"
	"studybuddy_backend/internal/config"
	"studybuddy_backend/pkg/configwatcher"
	"studybuddy_backend/pkg/logger"
)

func main() {
	// 命令行参数
	migrateOnly := flag.Bool("migrate-only", false, "只执行数据库迁移，完成后退出")
	migrate := flag.Bool("migrate", false, "启动时强制执行数据库迁移（即使是 release 模式）")
	flag.Parse()

	cfg, err := config.LoadConfig("configs")
	if err != nil {
		log.Fatalf("Failed to load config: %v", err)
	}

	// 设置迁移标志
	cfg.ForceMigrate = *migrate || *migrateOnly

	application := app.NewApp(cfg)
	defer logger.Sync()

	// 监听配置文件变更，支持热更新
	go configwatcher.WatchConfig("configs/config.yaml", application.ApplyConfig)

	// 迁移完成后直接退出
	if *migrateOnly {
		log.Println("数据库迁移完成，退出程序")
		return
	}

	application.Run()
}
