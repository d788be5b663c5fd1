package storage

import (
	"context"
	"strings"

	"resume-match-go/internal/config"
	"resume-match-go/internal/logger"
)

// Storage 聚合所有存储依赖。Repository 总是可用，其余组件未配置或连接失败时为 nil。
type Storage struct {
	// 岗位、档案、投递记录
	Repository Repository

	// 关系型数据库，未配置 DSN 时为 nil
	DB *GormStore

	// 向量和排名缓存
	Redis *Redis

	// 简历归档
	MinIO *MinIO

	// 领域事件
	RabbitMQ *RabbitMQ
}

// NewStorage 按配置初始化各组件，可选组件失败只记录警告
func NewStorage(ctx context.Context, cfg *config.Config) *Storage {
	log := logger.Component("storage")
	s := &Storage{}
	var initErrors []string

	if cfg.Database.DSN != "" {
		db, err := OpenDatabase(&cfg.Database)
		if err != nil {
			log.Warn().Err(err).Str("driver", cfg.Database.Driver).Msg("初始化数据库失败，使用内存存储")
			initErrors = append(initErrors, "database: "+err.Error())
		} else {
			s.DB = db
			s.Repository = db
			log.Info().Str("driver", cfg.Database.Driver).Msg("数据库连接成功")
		}
	}
	if s.Repository == nil {
		s.Repository = NewMemoryStore()
	}

	if cfg.Redis.Address != "" {
		r, err := NewRedisAdapter(&cfg.Redis)
		if err != nil {
			log.Warn().Err(err).Msg("初始化Redis失败")
			initErrors = append(initErrors, "redis: "+err.Error())
		} else {
			s.Redis = r
		}
	}

	if cfg.MinIO.Endpoint != "" {
		m, err := NewMinIO(ctx, &cfg.MinIO)
		if err != nil {
			log.Warn().Err(err).Msg("初始化MinIO失败")
			initErrors = append(initErrors, "minio: "+err.Error())
		} else {
			s.MinIO = m
		}
	}

	if cfg.RabbitMQ.URL != "" {
		mq, err := NewRabbitMQ(&cfg.RabbitMQ)
		if err != nil {
			log.Warn().Err(err).Msg("初始化RabbitMQ失败")
			initErrors = append(initErrors, "rabbitmq: "+err.Error())
		} else {
			s.RabbitMQ = mq
		}
	}

	if len(initErrors) > 0 {
		log.Warn().Msgf("以下存储组件初始化失败: %s", strings.Join(initErrors, "; "))
	}
	return s
}

// Close 关闭所有连接
func (s *Storage) Close() {
	log := logger.Component("storage")
	if s.RabbitMQ != nil {
		if err := s.RabbitMQ.Close(); err != nil {
			log.Warn().Err(err).Msg("关闭RabbitMQ连接失败")
		}
	}
	if s.DB != nil {
		if err := s.DB.Close(); err != nil {
			log.Warn().Err(err).Msg("关闭数据库连接失败")
		}
	}
	if s.Redis != nil {
		if err := s.Redis.Close(); err != nil {
			log.Warn().Err(err).Msg("关闭Redis连接失败")
		}
	}
}
