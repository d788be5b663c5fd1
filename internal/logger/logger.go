// Package logger 封装 zerolog，提供全局日志实例和按组件打标的子日志
package logger

import (
	"context"
	"io"
	"os"
	"time"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
)

// Logger 全局日志实例
var Logger = log.Logger

// Config 日志配置
type Config struct {
	Level        string `json:"level" yaml:"level"`                 // debug, info, warn, error
	Format       string `json:"format" yaml:"format"`               // json 或 pretty
	TimeFormat   string `json:"time_format" yaml:"time_format"`     // 时间戳格式
	ReportCaller bool   `json:"report_caller" yaml:"report_caller"` // 是否输出调用位置
}

// Init 按配置重建全局日志实例
func Init(cfg Config) {
	level, err := zerolog.ParseLevel(cfg.Level)
	if err != nil || cfg.Level == "" {
		level = zerolog.InfoLevel
	}
	zerolog.SetGlobalLevel(level)

	if cfg.TimeFormat == "" {
		zerolog.TimeFieldFormat = time.RFC3339
	} else {
		zerolog.TimeFieldFormat = cfg.TimeFormat
	}

	Logger = New(os.Stdout, cfg).Level(level)
	log.Logger = Logger
}

// New 基于给定输出创建日志实例，测试中可以传入 buffer
func New(out io.Writer, cfg Config) zerolog.Logger {
	var w io.Writer = out
	if cfg.Format == "pretty" {
		w = zerolog.ConsoleWriter{Out: out, TimeFormat: cfg.TimeFormat}
	}
	ctx := zerolog.New(w).With().Timestamp()
	if cfg.ReportCaller {
		ctx = ctx.Caller()
	}
	return ctx.Logger()
}

// Component 返回带 component 字段的子日志
func Component(name string) zerolog.Logger {
	return Logger.With().Str("component", name).Logger()
}

func Debug() *zerolog.Event { return Logger.Debug() }

func Info() *zerolog.Event { return Logger.Info() }

func Warn() *zerolog.Event { return Logger.Warn() }

func Error() *zerolog.Event { return Logger.Error() }

// Fatal 记录后进程退出
func Fatal() *zerolog.Event { return Logger.Fatal() }

// Ctx 从上下文取出日志实例，没有时返回 disabled logger
func Ctx(ctx context.Context) *zerolog.Logger {
	return zerolog.Ctx(ctx)
}

// WithContext 把全局日志实例放入上下文
func WithContext(ctx context.Context) context.Context {
	return Logger.WithContext(ctx)
}
