package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"strings"

	"moodjournal/config"
	"moodjournal/database"
	"moodjournal/logger"
	"moodjournal/middleware"
	"moodjournal/router"
	"moodjournal/service"
)

// @title 情绪日记 API
// @version 1.0
// @description 情绪日记对话服务：发送消息获取 AI 回复并记录情绪，提供历史、统计与导出接口
// @host localhost:5000
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
	flag.StringVar(&port, "port", "", "监听端口，如: 5000 或 :5000")
	flag.StringVar(&port, "p", "", "监听端口（简写）")
	flag.BoolVar(&showVersion, "version", false, "显示版本信息")
	flag.BoolVar(&showVersion, "v", false, "显示版本信息（简写）")
}

func main() {
	flag.Parse()

	if showVersion {
		fmt.Println("moodjournal v1.0.0")
		return
	}

	// 加载配置（内置配置 + 可选的外部配置覆盖）
	cfg, err := config.LoadConfig(configFile)
	if err != nil {
		fmt.Fprintf(os.Stderr, "加载配置失败: %v\n", err)
		os.Exit(1)
	}

	// 命令行参数覆盖端口配置
	if port != "" {
		if !strings.HasPrefix(port, ":") {
			port = ":" + port
		}
		cfg.Server.Port = port
	}

	log, err := logger.New(cfg.Server.Mode, cfg.Log.Level)
	if err != nil {
		fmt.Fprintf(os.Stderr, "初始化日志失败: %v\n", err)
		os.Exit(1)
	}
	defer log.Sync()

	log.Info("配置已加载", cfg.Summary()...)
	if cfg.Completion.APIKey == "" {
		log.Warn("未配置补全服务 api_key，发送消息将返回服务不可用")
	}

	// 初始化数据库
	if err := database.Init(cfg); err != nil {
		log.Fatal("数据库初始化失败", "error", err)
	}

	// 初始化 JWT
	middleware.InitJWT(cfg)

	completer, err := service.NewCompleter(context.Background(), cfg.Completion)
	if err != nil {
		log.Fatal("补全服务初始化失败", "provider", cfg.Completion.Provider, "error", err)
	}

	// 设置路由
	r := router.SetupRouter(cfg, database.GetDB(), completer, log)

	log.Info("服务已启动",
		"addr", cfg.Server.Port,
		"swagger", fmt.Sprintf("http://localhost%s/swagger/index.html", cfg.Server.Port),
	)
	if err := r.Run(cfg.Server.Port); err != nil {
		log.Fatal("服务器启动失败", "error", err)
	}
}
