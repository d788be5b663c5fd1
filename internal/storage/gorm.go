package storage

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
	"gorm.io/driver/mysql"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
	gormlogger "gorm.io/gorm/logger"

	"resume-match-go/internal/config"
	"resume-match-go/internal/storage/models"
	"resume-match-go/internal/tracing"
	"resume-match-go/internal/types"
)

var dbTracer = otel.Tracer("resume-match-go/storage/db")

type spanCtxKey struct{}

// GormTracingPlugin 为 GORM 的 CRUD 回调创建 OpenTelemetry span
type GormTracingPlugin struct {
	tracer   trace.Tracer
	dbSystem string
}

func NewGormTracingPlugin(dbSystem string) *GormTracingPlugin {
	return &GormTracingPlugin{tracer: dbTracer, dbSystem: dbSystem}
}

func (p *GormTracingPlugin) Name() string {
	return "GormOpenTelemetryPlugin"
}

// Initialize 注册 Before/After 回调
func (p *GormTracingPlugin) Initialize(db *gorm.DB) error {
	cb := db.Callback()
	if err := cb.Create().Before("gorm:create").Register("otel:before_create", p.before("INSERT")); err != nil {
		return err
	}
	if err := cb.Create().After("gorm:create").Register("otel:after_create", p.after); err != nil {
		return err
	}
	if err := cb.Query().Before("gorm:query").Register("otel:before_query", p.before("SELECT")); err != nil {
		return err
	}
	if err := cb.Query().After("gorm:query").Register("otel:after_query", p.after); err != nil {
		return err
	}
	if err := cb.Update().Before("gorm:update").Register("otel:before_update", p.before("UPDATE")); err != nil {
		return err
	}
	if err := cb.Update().After("gorm:update").Register("otel:after_update", p.after); err != nil {
		return err
	}
	if err := cb.Delete().Before("gorm:delete").Register("otel:before_delete", p.before("DELETE")); err != nil {
		return err
	}
	return cb.Delete().After("gorm:delete").Register("otel:after_delete", p.after)
}

func (p *GormTracingPlugin) before(operation string) func(*gorm.DB) {
	return func(db *gorm.DB) {
		ctx := db.Statement.Context
		if ctx == nil {
			ctx = context.Background()
		}
		table := db.Statement.Table
		if table == "" {
			table = "unknown"
		}
		ctx, span := p.tracer.Start(ctx, operation+" "+table,
			trace.WithSpanKind(trace.SpanKindClient),
			trace.WithAttributes(
				attribute.String("db.system", p.dbSystem),
				attribute.String("db.operation", operation),
				attribute.String("db.sql.table", table),
			))
		db.Statement.Context = context.WithValue(ctx, spanCtxKey{}, span)
	}
}

func (p *GormTracingPlugin) after(db *gorm.DB) {
	span, ok := db.Statement.Context.Value(spanCtxKey{}).(trace.Span)
	if !ok {
		return
	}
	defer span.End()
	span.SetAttributes(attribute.Int64("db.rows_affected", db.Statement.RowsAffected))
	switch {
	case db.Error == nil:
		span.SetStatus(codes.Ok, "")
	case errors.Is(db.Error, gorm.ErrRecordNotFound):
		// 查不到记录属于正常业务分支
		span.SetAttributes(attribute.String("error.type", "record_not_found"))
		span.SetStatus(codes.Ok, "record not found")
	default:
		tracing.RecordError(span, db.Error, tracing.ErrorTypeDB)
	}
}

// GormStore 基于 GORM 的 Repository，支持 MySQL 和 Postgres
type GormStore struct {
	db *gorm.DB
}

var _ Repository = (*GormStore)(nil)

// OpenDatabase 按 driver 打开数据库连接，注册追踪插件，按需自动迁移
func OpenDatabase(cfg *config.DatabaseConfig) (*GormStore, error) {
	if cfg == nil || cfg.DSN == "" {
		return nil, fmt.Errorf("数据库DSN不能为空")
	}

	var (
		dialector gorm.Dialector
		system    string
	)
	switch strings.ToLower(cfg.Driver) {
	case "", "mysql":
		dialector, system = mysql.Open(cfg.DSN), "mysql"
	case "postgres", "postgresql":
		dialector, system = postgres.Open(cfg.DSN), "postgresql"
	default:
		return nil, fmt.Errorf("不支持的数据库驱动: %s", cfg.Driver)
	}

	var logLevel gormlogger.LogLevel
	switch cfg.LogLevel {
	case 1:
		logLevel = gormlogger.Silent
	case 2:
		logLevel = gormlogger.Error
	case 4:
		logLevel = gormlogger.Info
	default:
		logLevel = gormlogger.Warn
	}

	db, err := gorm.Open(dialector, &gorm.Config{
		DisableForeignKeyConstraintWhenMigrating: true,
		Logger:                                   gormlogger.Default.LogMode(logLevel),
		PrepareStmt:                              true,
	})
	if err != nil {
		return nil, fmt.Errorf("连接数据库失败: %w", err)
	}

	sqlDB, err := db.DB()
	if err != nil {
		return nil, fmt.Errorf("获取底层 sql.DB 失败: %w", err)
	}
	if cfg.MaxIdleConns > 0 {
		sqlDB.SetMaxIdleConns(cfg.MaxIdleConns)
	}
	if cfg.MaxOpenConns > 0 {
		sqlDB.SetMaxOpenConns(cfg.MaxOpenConns)
	}
	if cfg.ConnMaxLifetimeMinutes > 0 {
		sqlDB.SetConnMaxLifetime(time.Duration(cfg.ConnMaxLifetimeMinutes) * time.Minute)
	}

	if err := db.Use(NewGormTracingPlugin(system)); err != nil {
		sqlDB.Close()
		return nil, fmt.Errorf("注册追踪插件失败: %w", err)
	}
	if cfg.AutoMigrate {
		if err := db.AutoMigrate(models.All()...); err != nil {
			sqlDB.Close()
			return nil, fmt.Errorf("自动迁移数据库结构失败: %w", err)
		}
	}
	return &GormStore{db: db}, nil
}

// NewGormStore 包装已有连接
func NewGormStore(db *gorm.DB) *GormStore {
	return &GormStore{db: db}
}

func (s *GormStore) DB() *gorm.DB {
	return s.db
}

func (s *GormStore) Close() error {
	sqlDB, err := s.db.DB()
	if err != nil {
		return err
	}
	return sqlDB.Close()
}

func notFound(err error) error {
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return ErrNotFound
	}
	return err
}

func (s *GormStore) SaveJob(ctx context.Context, job *types.JobDescription) error {
	if err := s.db.WithContext(ctx).Save(models.FromJob(job)).Error; err != nil {
		return fmt.Errorf("保存岗位失败: %w", err)
	}
	return nil
}

func (s *GormStore) GetJob(ctx context.Context, id string) (*types.JobDescription, error) {
	var m models.Job
	if err := s.db.WithContext(ctx).Where("job_id = ?", id).First(&m).Error; err != nil {
		return nil, notFound(err)
	}
	return m.ToDomain()
}

func (s *GormStore) DeleteJob(ctx context.Context, id string) error {
	res := s.db.WithContext(ctx).Where("job_id = ?", id).Delete(&models.Job{})
	if res.Error != nil {
		return fmt.Errorf("删除岗位失败: %w", res.Error)
	}
	if res.RowsAffected == 0 {
		return ErrNotFound
	}
	return nil
}

func (s *GormStore) ListJobs(ctx context.Context, publicOnly bool) ([]*types.JobDescription, error) {
	q := s.db.WithContext(ctx).Order("created_at ASC").Order("job_id ASC")
	if publicOnly {
		q = q.Where("is_public = ?", true)
	}
	var rows []models.Job
	if err := q.Find(&rows).Error; err != nil {
		return nil, fmt.Errorf("查询岗位列表失败: %w", err)
	}
	out := make([]*types.JobDescription, 0, len(rows))
	for i := range rows {
		j, err := rows[i].ToDomain()
		if err != nil {
			return nil, fmt.Errorf("解析岗位 %s 失败: %w", rows[i].JobID, err)
		}
		out = append(out, j)
	}
	return out, nil
}

func (s *GormStore) SaveProfile(ctx context.Context, p *types.CandidateProfile) error {
	if err := s.db.WithContext(ctx).Save(models.FromProfile(p)).Error; err != nil {
		return fmt.Errorf("保存候选人档案失败: %w", err)
	}
	return nil
}

func (s *GormStore) GetProfile(ctx context.Context, id string) (*types.CandidateProfile, error) {
	var m models.CandidateProfile
	if err := s.db.WithContext(ctx).Where("profile_id = ?", id).First(&m).Error; err != nil {
		return nil, notFound(err)
	}
	return m.ToDomain()
}

func (s *GormStore) SaveApplication(ctx context.Context, app *types.Application) error {
	if err := s.db.WithContext(ctx).Save(models.FromApplication(app)).Error; err != nil {
		return fmt.Errorf("保存投递记录失败: %w", err)
	}
	return nil
}

func (s *GormStore) FindApplication(ctx context.Context, userID, jobID string) (*types.Application, error) {
	var m models.Application
	err := s.db.WithContext(ctx).
		Where("candidate_user_id = ? AND job_id = ?", userID, jobID).
		First(&m).Error
	if err != nil {
		return nil, notFound(err)
	}
	return m.ToDomain(), nil
}

func (s *GormStore) ListApplications(ctx context.Context, userID string) ([]*types.Application, error) {
	var rows []models.Application
	err := s.db.WithContext(ctx).
		Where("candidate_user_id = ?", userID).
		Order("applied_at ASC").
		Find(&rows).Error
	if err != nil {
		return nil, fmt.Errorf("查询投递记录失败: %w", err)
	}
	out := make([]*types.Application, 0, len(rows))
	for i := range rows {
		out = append(out, rows[i].ToDomain())
	}
	return out, nil
}
