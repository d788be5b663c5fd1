package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/cloudwego/hertz/pkg/app"
	"github.com/cloudwego/hertz/pkg/app/server"
	glog "github.com/cloudwego/hertz/pkg/common/hlog"
	"github.com/go-playground/validator/v10"
	hertzadapter "github.com/hertz-contrib/logger/zerolog"
	"github.com/joho/godotenv"
	"github.com/spf13/pflag"

	"resume-match-go/internal/api/handler"
	"resume-match-go/internal/api/router"
	"resume-match-go/internal/config"
	"resume-match-go/internal/embedding"
	"resume-match-go/internal/logger"
	"resume-match-go/internal/matcher"
	"resume-match-go/internal/parser"
	"resume-match-go/internal/processor"
	"resume-match-go/internal/storage"
	"resume-match-go/internal/tracing"
)

var version = "1.0.0" //nolint:gochecknoglobals

func main() {
	_ = godotenv.Load()

	var configPath string
	pflag.StringVarP(&configPath, "config", "c", "", "Path to config file (empty: defaults + environment)")
	pflag.Parse()

	cfg, err := config.LoadConfig(configPath)
	if err != nil {
		logger.Fatal().Err(err).Msg("加载配置失败")
	}
	initLogger(cfg)
	logger.Info().Str("version", version).Str("config", configPath).Msg("配置加载成功")

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	shutdownTracing, err := tracing.Init(ctx, cfg.Tracing)
	if err != nil {
		logger.Warn().Err(err).Msg("初始化链路追踪失败，继续运行")
	}

	st := storage.NewStorage(ctx, cfg)
	defer st.Close()

	embedSvc := embedding.NewService(cfg.Embedding)
	if !embedSvc.Ready() {
		logger.Warn().Err(embedSvc.LoadError()).Msg("向量模型不可用，排名结果将为空")
	}
	var vectorizer embedding.Vectorizer = embedSvc
	if cfg.Embedding.CacheInRedis && st.Redis != nil {
		vectorizer = embedding.NewCachedService(embedSvc, st.Redis)
		logger.Info().Msg("向量缓存使用Redis")
	}

	p := parser.New(parser.OptionsFromConfig(cfg.Parser)...)
	builder := processor.NewProfileBuilder(p, vectorizer)
	ranker := matcher.NewRanker(vectorizer, matcher.WithKeywordLimit(cfg.Ranking.CommonKeywordLimit))

	compOpts := []processor.ComponentOpt{processor.WithRanker(ranker)}
	// 可选组件为 nil 时不能放进接口字段
	if st.MinIO != nil {
		compOpts = append(compOpts, processor.WithArchive(st.MinIO))
	}
	if st.RabbitMQ != nil {
		compOpts = append(compOpts, processor.WithEvents(st.RabbitMQ))
	}
	if st.Redis != nil {
		compOpts = append(compOpts, processor.WithRankingCache(st.Redis))
	}
	components := processor.NewComponents(st.Repository, parser.NewRegistry(ctx), builder, vectorizer, compOpts...)

	settingOpts := []processor.SettingOpt{
		processor.WithWorkers(cfg.Ranking.Workers),
		processor.WithRankingCacheTTL(config.GetDuration(cfg.Ranking.CacheTTL, 10*time.Minute)),
	}
	jobs := processor.NewJobProcessor(components, settingOpts...)
	recruiter := processor.NewRecruiterService(components, settingOpts...)
	candidate := processor.NewCandidateService(components, settingOpts...)

	if cfg.App.SeedDemoJobs {
		if _, err := jobs.SeedDemoJobs(ctx); err != nil {
			logger.Warn().Err(err).Msg("写入演示岗位失败")
		}
	}

	validate := validator.New()
	maxFile := int64(cfg.Server.MaxRequestBodyBytes)
	exitWait := config.GetDuration(cfg.Server.ExitWaitTime, 5*time.Second)

	h := server.New(
		server.WithHostPorts(cfg.Server.Address),
		server.WithMaxRequestBodySize(cfg.Server.MaxRequestBodyBytes),
		server.WithExitWaitTime(exitWait),
		server.WithHandleMethodNotAllowed(true),
	)
	h.Use(func(c context.Context, ctx *app.RequestContext) {
		start := time.Now()
		ctx.Next(c)
		glog.CtxInfof(c, "%s %s -> %d (%s)", string(ctx.Method()), string(ctx.Path()), ctx.Response.StatusCode(), time.Since(start))
	})

	router.RegisterRoutes(h.Engine, router.Handlers{
		System:    handler.NewSystemHandler(cfg.App.Name, embedSvc),
		Recruiter: handler.NewRecruiterHandler(jobs, recruiter, validate, maxFile),
		Candidate: handler.NewCandidateHandler(candidate, validate, maxFile),
	})
	logger.Info().Str("address", cfg.Server.Address).Msg("HTTP 服务器启动中")

	go func() {
		if err := h.Run(); err != nil {
			logger.Fatal().Err(err).Msg("启动HTTP服务器失败")
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	logger.Info().Msg("接收到终止信号，正在优雅退出...")

	shutdownCtx, cancelShutdown := context.WithTimeout(context.Background(), exitWait)
	defer cancelShutdown()
	if err := h.Shutdown(shutdownCtx); err != nil {
		logger.Error().Err(err).Msg("服务器关闭失败")
	}
	if shutdownTracing != nil {
		if err := shutdownTracing(shutdownCtx); err != nil {
			logger.Warn().Err(err).Msg("关闭链路追踪失败")
		}
	}
	logger.Info().Msg("优雅退出完成")
}

// initLogger 初始化 zerolog，并让 Hertz 的 hlog 输出到同一个实例
func initLogger(cfg *config.Config) {
	logger.Init(logger.Config{
		Level:        cfg.Logger.Level,
		Format:       cfg.Logger.Format,
		TimeFormat:   cfg.Logger.TimeFormat,
		ReportCaller: cfg.Logger.ReportCaller,
	})
	glog.SetLogger(hertzadapter.From(logger.Logger))
	if cfg.Logger.Level == "debug" {
		glog.SetLevel(glog.LevelDebug)
	} else {
		glog.SetLevel(glog.LevelInfo)
	}
}
