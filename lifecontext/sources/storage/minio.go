package storage

import (
	"bytes"
	"context"
	"crypto/md5"
	"encoding/json"
	"fmt"
	"io"
	"path"
	"time"

	"github.com/minio/minio-go/v7"
	"github.com/minio/minio-go/v7/pkg/credentials"

	"lifecontext/lifecontext/config"
	"lifecontext/lifecontext/crawler"
)

type MinIOClient struct {
	client *minio.Client
	bucket string
}

// WebDataObject is the archived form of one capture: the full payload plus
// its dedup hash, for later reprocessing.
type WebDataObject struct {
	Payload     crawler.CrawlPayload `json:"payload"`
	ContentHash string               `json:"content_hash"`
	ArchivedAt  time.Time            `json:"archived_at"`
}

func NewMinIOClient(cfg config.Config) (*MinIOClient, error) {
	// Insecure for local deployments (no HTTPS)
	bucket := cfg.MinIOBucket
	client, err := minio.New(
		cfg.MinIOEndpoint,
		&minio.Options{
			Creds:  credentials.NewStaticV4(cfg.MinIOAccessKey, cfg.MinIOSecretKey, ""),
			Secure: false,
		},
	)
	if err != nil {
		return nil, err
	}
	exists, err := client.BucketExists(context.Background(), bucket)
	if err != nil {
		return nil, err
	}
	if !exists {
		if err := client.MakeBucket(context.Background(), bucket, minio.MakeBucketOptions{}); err != nil {
			return nil, err
		}
	}
	return &MinIOClient{client: client, bucket: bucket}, nil
}

// ArchiveWebData stores one capture under webdata/<md5(url)>-<hash>.json.
func (m *MinIOClient) ArchiveWebData(ctx context.Context, p crawler.CrawlPayload, contentHash string) (string, error) {
	urlHash := fmt.Sprintf("%x", md5.Sum([]byte(p.URL)))
	key := path.Join("webdata", fmt.Sprintf("%s-%s.json", urlHash, contentHash))

	obj := WebDataObject{
		Payload:     p,
		ContentHash: contentHash,
		ArchivedAt:  time.Now(),
	}
	data, err := json.Marshal(obj)
	if err != nil {
		return "", err
	}

	_, err = m.client.PutObject(ctx, m.bucket, key, bytes.NewReader(data), int64(len(data)),
		minio.PutObjectOptions{ContentType: "application/json"})
	if err != nil {
		return "", err
	}
	return key, nil
}

func (m *MinIOClient) GetWebData(ctx context.Context, key string) (*WebDataObject, error) {
	obj, err := m.client.GetObject(ctx, m.bucket, key, minio.GetObjectOptions{})
	if err != nil {
		return nil, err
	}
	defer obj.Close()
	data, err := io.ReadAll(obj)
	if err != nil {
		return nil, err
	}
	var out WebDataObject
	if err := json.Unmarshal(data, &out); err != nil {
		return nil, err
	}
	return &out, nil
}
