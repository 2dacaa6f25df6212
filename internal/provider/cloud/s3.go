// Package cloud - провайдер поверх S3-совместимого хранилища объектов.
// Каждое изменение хранится отдельным объектом, ключ которого начинается
// с timestamp, поэтому выборка "после since" - это листинг с StartAfter.
package cloud

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"sort"
	"strings"

	"github.com/aws/aws-sdk-go/aws"
	"github.com/aws/aws-sdk-go/aws/credentials"
	"github.com/aws/aws-sdk-go/aws/session"
	"github.com/aws/aws-sdk-go/service/s3"
	"github.com/aws/aws-sdk-go/service/s3/s3iface"

	"github.com/iudanet/clipsync/internal/provider"
	"github.com/iudanet/clipsync/pkg/api"
)

// DefaultPrefix префикс ключей по умолчанию
const DefaultPrefix = "changes/"

// Config настройки облачного провайдера
type Config struct {
	Endpoint       string `yaml:"endpoint"`
	Region         string `yaml:"region"`
	Bucket         string `yaml:"bucket"`
	AccessKey      string `yaml:"access_key"`
	SecretKey      string `yaml:"secret_key"`
	Prefix         string `yaml:"prefix"`
	ForcePathStyle bool   `yaml:"force_path_style"`
}

// Provider хранит элементы в bucket
type Provider struct {
	client s3iface.S3API
	logger *slog.Logger
	bucket string
	prefix string
}

var _ provider.Provider = (*Provider)(nil)

// New создает S3 клиент по конфигурации. Без ключей доступа используется
// стандартная цепочка учетных данных AWS.
func New(cfg Config, logger *slog.Logger) (*Provider, error) {
	if cfg.Bucket == "" {
		return nil, fmt.Errorf("cloud provider bucket is required")
	}

	awsCfg := &aws.Config{
		Region:           aws.String(cfg.Region),
		S3ForcePathStyle: aws.Bool(cfg.ForcePathStyle),
	}
	if cfg.Endpoint != "" {
		awsCfg.Endpoint = aws.String(cfg.Endpoint)
	}
	if cfg.AccessKey != "" {
		awsCfg.Credentials = credentials.NewStaticCredentials(cfg.AccessKey, cfg.SecretKey, "")
	}

	sess, err := session.NewSession(awsCfg)
	if err != nil {
		return nil, fmt.Errorf("failed to create aws session: %w", err)
	}

	return NewWithClient(s3.New(sess), cfg.Bucket, cfg.Prefix, logger), nil
}

// NewWithClient создает провайдер поверх готового клиента S3
func NewWithClient(client s3iface.S3API, bucket, prefix string, logger *slog.Logger) *Provider {
	if prefix == "" {
		prefix = DefaultPrefix
	}
	if !strings.HasSuffix(prefix, "/") {
		prefix += "/"
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &Provider{client: client, bucket: bucket, prefix: prefix, logger: logger}
}

// Kind returns provider.KindCloud.
func (p *Provider) Kind() provider.Kind {
	return provider.KindCloud
}

// Initialize проверяет, что bucket существует и доступен
func (p *Provider) Initialize(ctx context.Context) error {
	_, err := p.client.HeadBucketWithContext(ctx, &s3.HeadBucketInput{
		Bucket: aws.String(p.bucket),
	})
	if err != nil {
		return provider.Unavailable(provider.KindCloud, fmt.Errorf("head bucket %s: %w", p.bucket, err))
	}
	p.logger.Info("Cloud bucket reachable", "bucket", p.bucket, "prefix", p.prefix)
	return nil
}

// objectKey формирует ключ <prefix><20-значный timestamp>-<id>.json.
// Повторная отправка того же элемента перезаписывает тот же объект.
func (p *Provider) objectKey(item *api.SyncItem) string {
	return fmt.Sprintf("%s%020d-%s.json", p.prefix, item.Timestamp, item.ID)
}

// SyncItem загружает элемент как отдельный объект
func (p *Provider) SyncItem(ctx context.Context, item *api.SyncItem) error {
	data, err := json.Marshal(item)
	if err != nil {
		return fmt.Errorf("failed to marshal item: %w", err)
	}

	_, err = p.client.PutObjectWithContext(ctx, &s3.PutObjectInput{
		Bucket:      aws.String(p.bucket),
		Key:         aws.String(p.objectKey(item)),
		Body:        bytes.NewReader(data),
		ContentType: aws.String("application/json"),
	})
	if err != nil {
		return fmt.Errorf("put object: %w", err)
	}
	return nil
}

// PullChanges перечисляет объекты с timestamp > since и загружает их
func (p *Provider) PullChanges(ctx context.Context, since int64) ([]*api.SyncItem, error) {
	if since < 0 {
		since = 0
	}

	// '.' больше '-', поэтому все ключи с timestamp == since остаются позади
	startAfter := fmt.Sprintf("%s%020d.", p.prefix, since)

	var keys []string
	err := p.client.ListObjectsV2PagesWithContext(ctx, &s3.ListObjectsV2Input{
		Bucket:     aws.String(p.bucket),
		Prefix:     aws.String(p.prefix),
		StartAfter: aws.String(startAfter),
	}, func(page *s3.ListObjectsV2Output, lastPage bool) bool {
		for _, obj := range page.Contents {
			keys = append(keys, aws.StringValue(obj.Key))
		}
		return true
	})
	if err != nil {
		return nil, fmt.Errorf("list objects: %w", err)
	}

	items := make([]*api.SyncItem, 0, len(keys))
	for _, key := range keys {
		item, err := p.getItem(ctx, key)
		if err != nil {
			return nil, err
		}
		if item.Timestamp > since {
			items = append(items, item)
		}
	}

	sort.SliceStable(items, func(i, j int) bool { return items[i].Timestamp < items[j].Timestamp })
	return items, nil
}

func (p *Provider) getItem(ctx context.Context, key string) (*api.SyncItem, error) {
	out, err := p.client.GetObjectWithContext(ctx, &s3.GetObjectInput{
		Bucket: aws.String(p.bucket),
		Key:    aws.String(key),
	})
	if err != nil {
		return nil, fmt.Errorf("get object %s: %w", key, err)
	}
	defer func() {
		_ = out.Body.Close()
	}()

	data, err := io.ReadAll(out.Body)
	if err != nil {
		return nil, fmt.Errorf("read object %s: %w", key, err)
	}

	var item api.SyncItem
	if err := json.Unmarshal(data, &item); err != nil {
		return nil, fmt.Errorf("decode object %s: %w", key, err)
	}
	return &item, nil
}

// Cleanup: у S3 клиента нет долгоживущих ресурсов
func (p *Provider) Cleanup(ctx context.Context) error {
	return nil
}
