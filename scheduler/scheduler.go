package scheduler

import (
	"context"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"counselor_recommend/config"
	"counselor_recommend/logger"
)

// 将秒数转换为时间间隔
func secondsToDuration(seconds int) time.Duration {
	return time.Duration(seconds) * time.Second
}

// HotListRefresher 热门咨询师列表缓存
type HotListRefresher interface {
	Refresh(ctx context.Context) (int, error)
}

// 任务类型
type TaskType int

const (
	TaskHotListRefresh TaskType = iota
)

// 任务状态
type TaskStatus struct {
	LastRun     time.Time
	NextRun     time.Time
	IsRunning   bool
	LastError   string
	Description string
}

// 任务调度器
type Scheduler struct {
	cfg      *config.Config
	hotList  HotListRefresher
	interval time.Duration
	tasks    map[TaskType]*TaskStatus
	log      *slog.Logger
	mutex    sync.Mutex
	wg       sync.WaitGroup
}

// 创建新的调度器
func NewScheduler(cfg *config.Config, hotList HotListRefresher) *Scheduler {
	return &Scheduler{
		cfg:      cfg,
		hotList:  hotList,
		interval: secondsToDuration(cfg.Scheduler.HotListRefreshSec),
		tasks:    make(map[TaskType]*TaskStatus),
		log:      logger.With("scheduler"),
	}
}

// 启动调度器，ctx 取消后主循环退出。没有可执行的任务时返回 nil。
func Start(ctx context.Context, cfg *config.Config, hotList HotListRefresher) *Scheduler {
	if hotList == nil || cfg.Scheduler.HotListRefreshSec <= 0 {
		logger.Info("未启用热门列表刷新任务，调度器不启动")
		return nil
	}

	scheduler := NewScheduler(cfg, hotList)

	// 初始化任务
	scheduler.initTasks(time.Now())

	// 启动主循环
	scheduler.wg.Add(1)
	go scheduler.run(ctx)

	logger.Info("调度器已启动", "check_interval_sec", cfg.Scheduler.CheckIntervalSec)
	return scheduler
}

// 初始化任务。首次刷新立即执行，用于预热缓存。
func (s *Scheduler) initTasks(now time.Time) {
	s.mutex.Lock()
	defer s.mutex.Unlock()

	s.tasks[TaskHotListRefresh] = &TaskStatus{
		NextRun:     now,
		Description: fmt.Sprintf("热门咨询师列表刷新 (每%d秒)", s.cfg.Scheduler.HotListRefreshSec),
	}
	s.log.Info("定时任务初始化完成", "task_count", len(s.tasks))
}

// 主循环
func (s *Scheduler) run(ctx context.Context) {
	defer s.wg.Done()

	checkInterval := s.cfg.Scheduler.CheckIntervalSec
	if checkInterval <= 0 {
		checkInterval = 60 // 默认值
	}
	// 检查间隔不应大于刷新间隔
	tick := secondsToDuration(checkInterval)
	if s.interval > 0 && s.interval < tick {
		tick = s.interval
	}
	ticker := time.NewTicker(tick)
	defer ticker.Stop()

	s.checkTasks(ctx, time.Now())
	for {
		select {
		case <-ctx.Done():
			s.log.Info("调度器已停止")
			return
		case now := <-ticker.C:
			s.checkTasks(ctx, now)
		}
	}
}

// 检查任务
func (s *Scheduler) checkTasks(ctx context.Context, now time.Time) {
	s.mutex.Lock()
	defer s.mutex.Unlock()

	for taskType, status := range s.tasks {
		// 如果任务正在运行，跳过
		if status.IsRunning {
			continue
		}

		// 如果任务的NextRun为零值，跳过（表示不需要定期调度）
		if status.NextRun.IsZero() {
			continue
		}

		// 如果到达或超过下次运行时间，执行任务
		if !now.Before(status.NextRun) {
			status.IsRunning = true
			s.wg.Add(1)
			go s.runTask(ctx, taskType, now)
		}
	}
}

// 运行任务
func (s *Scheduler) runTask(ctx context.Context, taskType TaskType, now time.Time) {
	defer s.wg.Done()

	var taskErr error
	defer func() {
		s.mutex.Lock()
		defer s.mutex.Unlock()

		status := s.tasks[taskType]
		status.IsRunning = false
		status.LastRun = now
		status.NextRun = now.Add(s.interval)
		status.LastError = ""
		if taskErr != nil {
			status.LastError = taskErr.Error()
		}

		s.log.Info("任务执行完成", "task", status.Description, "next_run", status.NextRun.Format("2006-01-02 15:04:05"))
	}()

	switch taskType {
	case TaskHotListRefresh:
		n, err := s.hotList.Refresh(ctx)
		if err != nil {
			taskErr = err
			s.log.Error("刷新热门咨询师列表失败", "error", err)
			return
		}
		s.log.Debug("热门咨询师列表已刷新", "count", n)
	}
}

// Status 返回任务状态快照
func (s *Scheduler) Status(taskType TaskType) (TaskStatus, bool) {
	s.mutex.Lock()
	defer s.mutex.Unlock()

	status, ok := s.tasks[taskType]
	if !ok {
		return TaskStatus{}, false
	}
	return *status, true
}

// Wait 等待主循环和正在执行的任务结束
func (s *Scheduler) Wait() {
	s.wg.Wait()
}
