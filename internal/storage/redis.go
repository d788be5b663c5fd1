package storage

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/extra/redisotel/v9"
	"github.com/redis/go-redis/v9"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"

	"resume-match-go/internal/config"
	"resume-match-go/internal/constants"
	"resume-match-go/internal/tracing"
	"resume-match-go/internal/types"
)

var redisTracer = otel.Tracer("resume-match-go/storage/redis")

// Redis 向量缓存和排名缓存
type Redis struct {
	Client *redis.Client
	config *config.RedisConfig
}

// NewRedisAdapter 创建 Redis 客户端并注册 OpenTelemetry 钩子
func NewRedisAdapter(cfg *config.RedisConfig) (*Redis, error) {
	if cfg == nil {
		return nil, fmt.Errorf("redis config cannot be nil")
	}
	if cfg.Address == "" {
		return nil, fmt.Errorf("redis address is required")
	}

	client := redis.NewClient(&redis.Options{
		Addr:         cfg.Address,
		Password:     cfg.Password,
		DB:           cfg.DB,
		PoolSize:     cfg.PoolSize,
		MinIdleConns: cfg.MinIdleConns,
		DialTimeout:  time.Duration(cfg.DialTimeoutSeconds) * time.Second,
		ReadTimeout:  time.Duration(cfg.ReadTimeoutSeconds) * time.Second,
		WriteTimeout: time.Duration(cfg.WriteTimeoutSeconds) * time.Second,
		MaxRetries:   cfg.MaxRetries,
	})

	if err := redisotel.InstrumentTracing(client); err != nil {
		return nil, fmt.Errorf("failed to instrument Redis with OpenTelemetry: %w", err)
	}

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := client.Ping(ctx).Err(); err != nil {
		return nil, fmt.Errorf("failed to connect to Redis at %s: %w", cfg.Address, err)
	}
	return &Redis{Client: client, config: cfg}, nil
}

// NewRedisFromClient 使用已有客户端
func NewRedisFromClient(client *redis.Client) *Redis {
	return &Redis{Client: client, config: &config.RedisConfig{}}
}

func (r *Redis) Close() error {
	if r.Client != nil {
		return r.Client.Close()
	}
	return nil
}

func (r *Redis) Ping(ctx context.Context) error {
	if r.Client == nil {
		return fmt.Errorf("redis client is not initialized")
	}
	return r.Client.Ping(ctx).Err()
}

func (r *Redis) startSpan(ctx context.Context, name, key string) (context.Context, trace.Span) {
	return redisTracer.Start(ctx, name,
		trace.WithSpanKind(trace.SpanKindClient),
		trace.WithAttributes(
			attribute.String("db.system", "redis"),
			attribute.String("db.redis.key", tracing.SafeAttributeValue("db.redis.key", key, tracing.DefaultMaxLength)),
		))
}

func endSpan(span trace.Span, err error) {
	if err != nil {
		tracing.RecordError(span, err, tracing.ErrorTypeRedis)
	} else {
		span.SetStatus(codes.Ok, "")
	}
	span.End()
}

// GetVector 读取向量缓存，key 为 embedding.CacheKey 的结果
func (r *Redis) GetVector(ctx context.Context, key string) (vec []float64, ok bool, err error) {
	fullKey := fmt.Sprintf(constants.KeyEmbeddingVector, key)
	ctx, span := r.startSpan(ctx, "Redis.GetVector", fullKey)
	defer func() { endSpan(span, err) }()

	raw, err := r.Client.Get(ctx, fullKey).Bytes()
	if errors.Is(err, redis.Nil) {
		span.SetAttributes(attribute.Bool("cache.hit", false))
		return nil, false, nil
	}
	if err != nil {
		return nil, false, fmt.Errorf("读取向量缓存失败: %w", err)
	}
	if err = json.Unmarshal(raw, &vec); err != nil {
		return nil, false, fmt.Errorf("解析向量缓存失败: %w", err)
	}
	span.SetAttributes(attribute.Bool("cache.hit", true), attribute.Int("vector.dimensions", len(vec)))
	return vec, true, nil
}

// SetVector 写入向量缓存，不过期：相同模型和文本总是得到相同向量
func (r *Redis) SetVector(ctx context.Context, key string, vec []float64) (err error) {
	fullKey := fmt.Sprintf(constants.KeyEmbeddingVector, key)
	ctx, span := r.startSpan(ctx, "Redis.SetVector", fullKey)
	defer func() { endSpan(span, err) }()

	data, err := json.Marshal(vec)
	if err != nil {
		return fmt.Errorf("序列化向量失败: %w", err)
	}
	if err = r.Client.Set(ctx, fullKey, data, 0).Err(); err != nil {
		return fmt.Errorf("写入向量缓存失败: %w", err)
	}
	return nil
}

// GetRanking 读取岗位排名缓存，未命中时 ok 为 false
func (r *Redis) GetRanking(ctx context.Context, jobID, fingerprint string) (results []types.RankedResult, ok bool, err error) {
	key := fmt.Sprintf(constants.KeyJobRanking, jobID, fingerprint)
	ctx, span := r.startSpan(ctx, "Redis.GetRanking", key)
	defer func() { endSpan(span, err) }()

	raw, err := r.Client.Get(ctx, key).Bytes()
	if errors.Is(err, redis.Nil) {
		return nil, false, nil
	}
	if err != nil {
		return nil, false, fmt.Errorf("读取排名缓存失败: %w", err)
	}
	if err = json.Unmarshal(raw, &results); err != nil {
		return nil, false, fmt.Errorf("解析排名缓存失败: %w", err)
	}
	return results, true, nil
}

// SetRanking 写入岗位排名缓存
func (r *Redis) SetRanking(ctx context.Context, jobID, fingerprint string, results []types.RankedResult, ttl time.Duration) (err error) {
	key := fmt.Sprintf(constants.KeyJobRanking, jobID, fingerprint)
	ctx, span := r.startSpan(ctx, "Redis.SetRanking", key)
	defer func() { endSpan(span, err) }()

	data, err := json.Marshal(results)
	if err != nil {
		return fmt.Errorf("序列化排名结果失败: %w", err)
	}
	if err = r.Client.Set(ctx, key, data, ttl).Err(); err != nil {
		return fmt.Errorf("写入排名缓存失败: %w", err)
	}
	return nil
}

// InvalidateRankings 删除岗位的全部排名缓存，返回删除的 key 数
func (r *Redis) InvalidateRankings(ctx context.Context, jobID string) (deleted int64, err error) {
	pattern := fmt.Sprintf(constants.KeyJobRankingPattern, jobID)
	ctx, span := r.startSpan(ctx, "Redis.InvalidateRankings", pattern)
	defer func() { endSpan(span, err) }()

	iter := r.Client.Scan(ctx, 0, pattern, 100).Iterator()
	var keys []string
	for iter.Next(ctx) {
		keys = append(keys, iter.Val())
	}
	if err = iter.Err(); err != nil {
		return 0, fmt.Errorf("扫描排名缓存失败: %w", err)
	}
	if len(keys) == 0 {
		return 0, nil
	}
	deleted, err = r.Client.Del(ctx, keys...).Result()
	if err != nil {
		return 0, fmt.Errorf("删除排名缓存失败: %w", err)
	}
	span.SetAttributes(attribute.Int64("keys.deleted", deleted))
	return deleted, nil
}
