package storage

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"path/filepath"
	"strings"

	"github.com/minio/minio-go/v7"
	"github.com/minio/minio-go/v7/pkg/credentials"
	"github.com/rs/zerolog"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"

	"resume-match-go/internal/config"
	"resume-match-go/internal/constants"
	"resume-match-go/internal/logger"
	"resume-match-go/internal/tracing"
)

var objectTracer = otel.Tracer("resume-match-go/storage/minio")

// ObjectStorage 简历原件和解析文本的归档
type ObjectStorage interface {
	// ArchiveResume 上传原始简历，返回对象键
	ArchiveResume(ctx context.Context, profileID, filename string, data []byte) (string, error)
	// ArchiveParsedText 上传解析后的纯文本，返回对象键
	ArchiveParsedText(ctx context.Context, profileID, text string) (string, error)
	GetObject(ctx context.Context, objectName string) ([]byte, error)
}

var _ ObjectStorage = (*MinIO)(nil)

// MinIO 基于 minio-go 的对象存储
type MinIO struct {
	client *minio.Client
	bucket string
	logger zerolog.Logger
}

// NewMinIO 创建客户端并确保存储桶存在
func NewMinIO(ctx context.Context, cfg *config.MinIOConfig) (*MinIO, error) {
	if cfg == nil || cfg.Endpoint == "" {
		return nil, fmt.Errorf("MinIO配置不能为空")
	}
	client, err := minio.New(cfg.Endpoint, &minio.Options{
		Creds:  credentials.NewStaticV4(cfg.AccessKeyID, cfg.SecretAccessKey, ""),
		Secure: cfg.UseSSL,
	})
	if err != nil {
		return nil, fmt.Errorf("创建MinIO客户端失败: %w", err)
	}
	m := &MinIO{client: client, bucket: cfg.BucketName, logger: logger.Component("minio")}
	if m.bucket == "" {
		m.bucket = "resumes"
	}
	if err := m.ensureBucketExists(ctx, cfg.Location); err != nil {
		return nil, err
	}
	m.logger.Info().Str("endpoint", cfg.Endpoint).Str("bucket", m.bucket).Msg("MinIO客户端初始化成功")
	return m, nil
}

func (m *MinIO) ensureBucketExists(ctx context.Context, location string) error {
	exists, err := m.client.BucketExists(ctx, m.bucket)
	if err != nil {
		return fmt.Errorf("检查存储桶 %s 是否存在时出错: %w", m.bucket, err)
	}
	if exists {
		return nil
	}
	if err := m.client.MakeBucket(ctx, m.bucket, minio.MakeBucketOptions{Region: location}); err != nil {
		return fmt.Errorf("创建存储桶 %s 失败: %w", m.bucket, err)
	}
	m.logger.Info().Str("bucket", m.bucket).Msg("存储桶已创建")
	return nil
}

func (m *MinIO) put(ctx context.Context, objectName string, reader io.Reader, size int64, contentType string) error {
	ctx, span := objectTracer.Start(ctx, "MinIO.PutObject",
		trace.WithSpanKind(trace.SpanKindClient),
		trace.WithAttributes(
			attribute.String("object.bucket", m.bucket),
			attribute.String("object.name", tracing.SafeAttributeValue("object.name", objectName, tracing.DefaultMaxLength)),
			attribute.Int64("object.size", size),
		))
	defer span.End()

	info, err := m.client.PutObject(ctx, m.bucket, objectName, reader, size, minio.PutObjectOptions{ContentType: contentType})
	if err != nil {
		err = fmt.Errorf("上传对象 %s/%s 失败: %w", m.bucket, objectName, err)
		tracing.RecordError(span, err, tracing.ErrorTypeObjectStore)
		return err
	}
	m.logger.Debug().Str("object", objectName).Int64("size", info.Size).Str("etag", info.ETag).Msg("对象已上传")
	return nil
}

// ResumeObjectName 原件对象键: resumes/{profileID}/original{.ext}
func ResumeObjectName(profileID, filename string) string {
	return fmt.Sprintf("%s%s/original%s", constants.ResumeObjectPrefix, profileID, strings.ToLower(filepath.Ext(filename)))
}

// ParsedTextObjectName 解析文本对象键: parsed/{profileID}.txt
func ParsedTextObjectName(profileID string) string {
	return fmt.Sprintf("%s%s.txt", constants.ParsedTextObjectPrefix, profileID)
}

func (m *MinIO) ArchiveResume(ctx context.Context, profileID, filename string, data []byte) (string, error) {
	objectName := ResumeObjectName(profileID, filename)
	if err := m.put(ctx, objectName, bytes.NewReader(data), int64(len(data)), ContentType(filepath.Ext(filename))); err != nil {
		return "", err
	}
	return objectName, nil
}

func (m *MinIO) ArchiveParsedText(ctx context.Context, profileID, text string) (string, error) {
	objectName := ParsedTextObjectName(profileID)
	if err := m.put(ctx, objectName, strings.NewReader(text), int64(len(text)), "text/plain; charset=utf-8"); err != nil {
		return "", err
	}
	return objectName, nil
}

func (m *MinIO) GetObject(ctx context.Context, objectName string) ([]byte, error) {
	obj, err := m.client.GetObject(ctx, m.bucket, objectName, minio.GetObjectOptions{})
	if err != nil {
		return nil, fmt.Errorf("获取对象 %s 失败: %w", objectName, err)
	}
	defer obj.Close()
	data, err := io.ReadAll(obj)
	if err != nil {
		return nil, fmt.Errorf("读取对象 %s 失败: %w", objectName, err)
	}
	return data, nil
}

// ContentType 按扩展名返回 MIME 类型
func ContentType(ext string) string {
	switch strings.ToLower(ext) {
	case ".pdf":
		return "application/pdf"
	case ".docx":
		return "application/vnd.openxmlformats-officedocument.wordprocessingml.document"
	case ".doc":
		return "application/msword"
	case ".txt", ".md":
		return "text/plain"
	default:
		return "application/octet-stream"
	}
}
