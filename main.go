package main

import (
	"context"
	"errors"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	_ "github.com/swaggo/swag" // 导入 swag

	"counselor_recommend/config"
	"counselor_recommend/db"
	_ "counselor_recommend/docs" // 导入 swagger 文档
	"counselor_recommend/handlers"
	"counselor_recommend/logger"
	"counselor_recommend/repository"
	"counselor_recommend/scheduler"
	"counselor_recommend/services"
)

func main() {
	cfg := config.Load()

	// 初始化日志系统
	if err := logger.Init(cfg); err != nil {
		log.Fatalf("init logger failed: %v", err)
	}
	logger.Info("日志系统初始化成功", "level", cfg.Log.Level, "format", cfg.Log.Format, "output", cfg.Log.Output)

	conn, err := db.InitMySQLWithConfig(cfg)
	if err != nil {
		logger.Error("初始化MySQL失败", "error", err)
		os.Exit(1)
	}
	defer conn.Close()
	logger.Info("MySQL连接成功",
		"max_open_conns", cfg.DB.MaxOpenConns,
		"max_idle_conns", cfg.DB.MaxIdleConns,
		"conn_max_lifetime", cfg.DB.ConnMaxLifetime)

	counselors := repository.NewCounselorRepository(conn)
	appointments := repository.NewAppointmentRepository(conn)

	// Redis 可选，连接失败时直接查库
	var candidates services.CandidateStore = counselors
	var hotList *repository.HotListCache
	rdb, err := db.InitRedisWithConfig(cfg)
	switch {
	case err != nil:
		logger.Warn("初始化Redis失败，热门列表不走缓存", "addr", cfg.Redis.Addr, "error", err)
	case rdb != nil:
		defer rdb.Close()
		hotList = repository.NewHotListCache(counselors, rdb, cfg.Redis.Prefix,
			time.Duration(cfg.Redis.HotListTTLSec)*time.Second)
		candidates = hotList
		logger.Info("Redis连接成功", "addr", cfg.Redis.Addr, "hot_list_ttl_sec", cfg.Redis.HotListTTLSec)
	}

	availability := services.NewAvailabilityService(counselors, appointments)
	engine := services.NewEngine(cfg, services.EngineDeps{
		Moods:        repository.NewMoodRepository(conn),
		Assessments:  repository.NewAssessmentRepository(conn),
		Bookings:     appointments,
		Candidates:   candidates,
		Availability: availability,
	})
	logger.Info("推荐引擎初始化完成", "stages", engine.Stages(), "max_results", cfg.Recommend.MaxResults)

	r := chi.NewRouter()
	r.Use(middleware.RealIP)
	r.Use(middleware.Logger)
	r.Use(middleware.Recoverer)
	r.Use(middleware.Timeout(time.Duration(cfg.Timeouts.RequestSec) * time.Second))

	handlers.RegisterRoutes(r, cfg, handlers.NewRecommendHandler(engine, availability))

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	// start cron
	var sched *scheduler.Scheduler
	if hotList != nil {
		sched = scheduler.Start(ctx, cfg, hotList)
	}

	srv := &http.Server{
		Addr:         cfg.Server.Addr,
		Handler:      r,
		ReadTimeout:  time.Duration(cfg.Timeouts.RequestSec) * time.Second,
		WriteTimeout: time.Duration(cfg.Timeouts.ResponseSec) * time.Second,
		IdleTimeout:  time.Duration(cfg.Timeouts.IdleSec) * time.Second,
	}

	serverAddr := fmt.Sprintf("%s:%d", cfg.Server.Host, cfg.Server.Port)
	go func() {
		logger.Info("服务器启动", "address", serverAddr)
		logger.Info("Swagger文档可访问", "url", fmt.Sprintf("http://%s/swagger/index.html", serverAddr))
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Error("服务器异常退出", "error", err)
			stop()
		}
	}()

	<-ctx.Done()
	logger.Info("收到退出信号，开始关闭服务")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.Error("关闭HTTP服务失败", "error", err)
	}
	if sched != nil {
		sched.Wait()
	}
	logger.Info("服务已关闭")
}
