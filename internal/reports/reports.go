// Package reports stores generated company report PDFs in S3 and hands
// out presigned URLs for them.
package reports

import (
	"bytes"
	"context"
	"encoding/base64"
	"errors"
	"fmt"
	"sort"
	"strings"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/service/s3"

	appconfig "github.com/thinkbeforeclick/platform/internal/config"
	"github.com/thinkbeforeclick/platform/internal/domain"
)

var (
	// ErrNotFound means the named report object does not exist.
	ErrNotFound = errors.New("reports: report not found")

	// ErrBadName means the report name failed validation.
	ErrBadName = errors.New("reports: invalid report name")

	// ErrBadContent means the report payload was not valid base64.
	ErrBadContent = errors.New("reports: content is not valid base64")
)

// Store persists report artifacts. Satisfied by *S3Store and the API
// tests' in-memory fake.
type Store interface {
	Upload(ctx context.Context, companyID, contentBase64 string) (*UploadResult, error)
	List(ctx context.Context, companyID string) ([]domain.ReportObject, error)
	PresignDownload(ctx context.Context, companyID, name string) (string, error)
}

// UploadResult describes a stored report artifact.
type UploadResult struct {
	Name        string `json:"reportName"`
	Key         string `json:"key"`
	DownloadURL string `json:"downloadUrl"`
	ExpiresIn   int    `json:"expiresIn"`
}

// S3Store keeps report PDFs under <prefix><companyId>/ in one bucket.
type S3Store struct {
	client  *s3.Client
	presign *s3.PresignClient
	cfg     appconfig.ReportsConfig
	now     func() time.Time
}

// NewS3Store builds an S3-backed report store.
func NewS3Store(ctx context.Context, cfg appconfig.ReportsConfig) (*S3Store, error) {
	awsCfg, err := awsconfig.LoadDefaultConfig(ctx,
		awsconfig.WithRegion(cfg.Region),
	)
	if err != nil {
		return nil, fmt.Errorf("loading AWS config for report store: %w", err)
	}
	client := s3.NewFromConfig(awsCfg)
	return &S3Store{
		client:  client,
		presign: s3.NewPresignClient(client),
		cfg:     cfg,
		now:     time.Now,
	}, nil
}

// NewS3StoreWithClient wraps an existing S3 client.
func NewS3StoreWithClient(client *s3.Client, cfg appconfig.ReportsConfig) *S3Store {
	return &S3Store{
		client:  client,
		presign: s3.NewPresignClient(client),
		cfg:     cfg,
		now:     time.Now,
	}
}

// ValidateName rejects report names that could escape the company's
// prefix when joined into an object key.
func ValidateName(name string) error {
	if name == "" ||
		strings.Contains(name, "/") ||
		strings.Contains(name, "\\") ||
		strings.Contains(name, "..") {
		return ErrBadName
	}
	return nil
}

func (s *S3Store) companyPrefix(companyID string) string {
	return s.cfg.Prefix + companyID + "/"
}

// isReportKey filters listings down to PDFs, whatever case the
// extension was uploaded with.
func isReportKey(key string) bool {
	return strings.HasSuffix(strings.ToLower(key), ".pdf")
}

// Upload decodes the base64 PDF payload and stores it under a
// timestamped name, returning a presigned download URL for the fresh
// object.
func (s *S3Store) Upload(ctx context.Context, companyID, contentBase64 string) (*UploadResult, error) {
	pdf, err := base64.StdEncoding.DecodeString(contentBase64)
	if err != nil {
		return nil, ErrBadContent
	}

	ts := s.now().UTC()
	name := fmt.Sprintf("company_%s.pdf", ts.Format("20060102-150405"))
	key := s.companyPrefix(companyID) + name

	_, err = s.client.PutObject(ctx, &s3.PutObjectInput{
		Bucket:      aws.String(s.cfg.Bucket),
		Key:         aws.String(key),
		Body:        bytes.NewReader(pdf),
		ContentType: aws.String("application/pdf"),
		Metadata: map[string]string{
			"companyId": companyID,
			"timestamp": ts.Format(time.RFC3339),
		},
	})
	if err != nil {
		return nil, fmt.Errorf("uploading report %s: %w", key, err)
	}

	url, err := s.presignKey(ctx, key, s.cfg.UploadTTL())
	if err != nil {
		return nil, err
	}

	return &UploadResult{
		Name:        name,
		Key:         key,
		DownloadURL: url,
		ExpiresIn:   s.cfg.UploadTTLSeconds,
	}, nil
}

// List returns the company's report PDFs, newest first.
func (s *S3Store) List(ctx context.Context, companyID string) ([]domain.ReportObject, error) {
	prefix := s.companyPrefix(companyID)

	var objects []domain.ReportObject
	paginator := s3.NewListObjectsV2Paginator(s.client, &s3.ListObjectsV2Input{
		Bucket: aws.String(s.cfg.Bucket),
		Prefix: aws.String(prefix),
	})
	for paginator.HasMorePages() {
		page, err := paginator.NextPage(ctx)
		if err != nil {
			return nil, fmt.Errorf("listing reports for %s: %w", companyID, err)
		}
		for _, obj := range page.Contents {
			key := aws.ToString(obj.Key)
			if !isReportKey(key) {
				continue
			}
			objects = append(objects, domain.ReportObject{
				Name:         strings.TrimPrefix(key, prefix),
				Size:         aws.ToInt64(obj.Size),
				LastModified: aws.ToTime(obj.LastModified),
			})
		}
	}

	sort.Slice(objects, func(i, j int) bool {
		return objects[i].LastModified.After(objects[j].LastModified)
	})
	return objects, nil
}

// PresignDownload returns a short-lived URL for an existing report. The
// object is verified first so a missing report is a clean ErrNotFound
// rather than a presigned URL that 404s.
func (s *S3Store) PresignDownload(ctx context.Context, companyID, name string) (string, error) {
	if err := ValidateName(name); err != nil {
		return "", err
	}
	key := s.companyPrefix(companyID) + name

	_, err := s.client.HeadObject(ctx, &s3.HeadObjectInput{
		Bucket: aws.String(s.cfg.Bucket),
		Key:    aws.String(key),
	})
	if err != nil {
		return "", ErrNotFound
	}

	return s.presignKey(ctx, key, s.cfg.DownloadTTL())
}

func (s *S3Store) presignKey(ctx context.Context, key string, ttl time.Duration) (string, error) {
	req, err := s.presign.PresignGetObject(ctx, &s3.GetObjectInput{
		Bucket: aws.String(s.cfg.Bucket),
		Key:    aws.String(key),
	}, s3.WithPresignExpires(ttl))
	if err != nil {
		return "", fmt.Errorf("presigning %s: %w", key, err)
	}
	return req.URL, nil
}
