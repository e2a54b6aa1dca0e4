package logger

import (
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"strings"

	"counselor_recommend/config"
)

// Logger 全局日志记录器，未初始化前使用 slog 默认记录器
var Logger = slog.Default()

// Init 使用配置文件初始化日志系统
func Init(cfg *config.Config) error {
	writer, err := openWriter(cfg.Log.Output, cfg.Log.FilePath)
	if err != nil {
		return err
	}

	Logger = slog.New(newHandler(writer, cfg.Log.Format, parseLevel(cfg.Log.Level)))
	slog.SetDefault(Logger)
	return nil
}

// parseLevel 解析日志级别，无法识别时使用 info
func parseLevel(level string) slog.Level {
	switch strings.ToLower(level) {
	case "debug":
		return slog.LevelDebug
	case "warn", "warning":
		return slog.LevelWarn
	case "error":
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
}

// openWriter 根据 output 配置打开输出目标：stdout / file / both
func openWriter(output, filePath string) (io.Writer, error) {
	mode := strings.ToLower(output)
	if mode != "file" && mode != "both" {
		return os.Stdout, nil
	}
	if filePath == "" {
		return nil, fmt.Errorf("log output %q requires file_path", output)
	}

	if err := os.MkdirAll(filepath.Dir(filePath), 0755); err != nil {
		return nil, err
	}
	file, err := os.OpenFile(filePath, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0666)
	if err != nil {
		return nil, err
	}
	if mode == "both" {
		return io.MultiWriter(os.Stdout, file), nil
	}
	return file, nil
}

func newHandler(w io.Writer, format string, level slog.Level) slog.Handler {
	opts := &slog.HandlerOptions{Level: level}
	if strings.ToLower(format) == "json" {
		return slog.NewJSONHandler(w, opts)
	}
	return slog.NewTextHandler(w, opts)
}

// With 返回带组件名的子记录器
func With(component string) *slog.Logger {
	return Logger.With("component", component)
}

// Debug 记录调试级别的日志
func Debug(msg string, args ...any) {
	Logger.Debug(msg, args...)
}

// Info 记录信息级别的日志
func Info(msg string, args ...any) {
	Logger.Info(msg, args...)
}

// Warn 记录警告级别的日志
func Warn(msg string, args ...any) {
	Logger.Warn(msg, args...)
}

// Error 记录错误级别的日志
func Error(msg string, args ...any) {
	Logger.Error(msg, args...)
}
