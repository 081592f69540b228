package utils

import (
	"bytes"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"time"

	"github.com/aws/aws-sdk-go/aws"
	"github.com/aws/aws-sdk-go/aws/credentials"
	"github.com/aws/aws-sdk-go/aws/session"
	"github.com/aws/aws-sdk-go/service/s3"
	"github.com/google/uuid"
)

// MediaStorage uploads picked files to an S3-compatible bucket and hands back
// durable public URLs. Objects live under requests/<upload-timestamp>.
type MediaStorage struct {
	Bucket    string
	Region    string
	Endpoint  string
	AccessKey string
	SecretKey string
	// CacheDir is the application-owned path a picked file is copied to
	// before upload, so the picker's temporary path going away mid-upload
	// cannot break the transfer.
	CacheDir string

	client *s3.S3
}

func (m *MediaStorage) s3Client() *s3.S3 {
	if m.client == nil {
		sess := session.Must(session.NewSession(&aws.Config{
			Region:   aws.String(m.Region),
			Endpoint: aws.String(m.Endpoint),
			Credentials: credentials.NewStaticCredentials(
				m.AccessKey, m.SecretKey, "",
			),
		}))
		m.client = s3.New(sess)
	}
	return m.client
}

// StageFile copies the picked file into the cache dir and returns the stable
// path. The caller may remove it after upload.
func (m *MediaStorage) StageFile(src io.Reader) (string, error) {
	if err := os.MkdirAll(m.CacheDir, 0o755); err != nil {
		return "", err
	}
	staged := filepath.Join(m.CacheDir, uuid.New().String())
	dst, err := os.Create(staged)
	if err != nil {
		return "", err
	}
	defer dst.Close()
	if _, err := io.Copy(dst, src); err != nil {
		os.Remove(staged)
		return "", err
	}
	return staged, nil
}

// UploadMedia stages the file locally, uploads it keyed by the upload
// timestamp and returns the public URL. Two uploads in the same millisecond
// would collide on the key; the timestamp convention is part of the storage
// contract with existing clients.
func (m *MediaStorage) UploadMedia(src io.Reader, contentType string) (string, error) {
	staged, err := m.StageFile(src)
	if err != nil {
		return "", err
	}
	defer os.Remove(staged)

	data, err := os.ReadFile(staged)
	if err != nil {
		return "", err
	}

	key := fmt.Sprintf("requests/%d", time.Now().UnixMilli())
	_, err = m.s3Client().PutObject(&s3.PutObjectInput{
		Bucket:        aws.String(m.Bucket),
		Key:           aws.String(key),
		Body:          bytes.NewReader(data),
		ContentLength: aws.Int64(int64(len(data))),
		ContentType:   aws.String(contentType),
		ACL:           aws.String("public-read"),
	})
	if err != nil {
		return "", fmt.Errorf("unable to upload file to S3: %v", err)
	}

	return fmt.Sprintf("%s/%s/%s", m.Endpoint, m.Bucket, key), nil
}
