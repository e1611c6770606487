// Package storage 提供了与对象存储服务（如 MinIO）交互的功能。
package storage

import (
	"bytes"
	"context"
	"fmt"

	"github.com/minio/minio-go/v7"
	"github.com/minio/minio-go/v7/pkg/credentials"

	"its4teacher-go/internal/config"
	"its4teacher-go/pkg/log"
)

// ArtifactStore 把分析产物上传到 MinIO 存储桶。
type ArtifactStore struct {
	client *minio.Client
	bucket string
}

// NewMinioClient 只创建客户端，不发起网络请求。
func NewMinioClient(cfg config.MinIOConfig) (*minio.Client, error) {
	client, err := minio.New(cfg.Endpoint, &minio.Options{
		Creds:  credentials.NewStaticV4(cfg.AccessKeyID, cfg.SecretAccessKey, ""),
		Secure: cfg.UseSSL,
	})
	if err != nil {
		return nil, fmt.Errorf("初始化 MinIO 客户端失败: %w", err)
	}
	return client, nil
}

// NewArtifactStore 初始化 MinIO 客户端并确保指定的存储桶存在。
func NewArtifactStore(ctx context.Context, cfg config.MinIOConfig) (*ArtifactStore, error) {
	client, err := NewMinioClient(cfg)
	if err != nil {
		return nil, err
	}
	log.Info("MinIO 客户端初始化成功")

	bucketName := cfg.BucketName
	exists, err := client.BucketExists(ctx, bucketName)
	if err != nil {
		return nil, fmt.Errorf("检查 MinIO 存储桶失败: %w", err)
	}
	if !exists {
		log.Infof("存储桶 '%s' 不存在，正在创建...", bucketName)
		if err := client.MakeBucket(ctx, bucketName, minio.MakeBucketOptions{}); err != nil {
			return nil, fmt.Errorf("创建 MinIO 存储桶失败: %w", err)
		}
		log.Infof("存储桶 '%s' 创建成功", bucketName)
	}
	return &ArtifactStore{client: client, bucket: bucketName}, nil
}

// Put 以 JSON 内容类型上传一个对象。
func (s *ArtifactStore) Put(ctx context.Context, name string, data []byte) error {
	_, err := s.client.PutObject(ctx, s.bucket, name, bytes.NewReader(data), int64(len(data)), minio.PutObjectOptions{
		ContentType: "application/json; charset=utf-8",
	})
	if err != nil {
		return fmt.Errorf("上传 %s 失败: %w", name, err)
	}
	log.Infof("产物已上传: %s/%s", s.bucket, name)
	return nil
}
