// Package stage resolves upload sources to local files. The CLI accepts
// plain paths as well as http(s) and s3 URLs for anything it sends to the
// remote file system; remote sources are fetched into a working directory
// before the upload happens.
package stage

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"os"
	"path"
	"path/filepath"
	"strings"
	"sync"

	"github.com/aws/aws-sdk-go-v2/aws"
	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/feature/s3/manager"
	"github.com/aws/aws-sdk-go-v2/service/s3"
)

// Stager resolves a source reference to a path on the local filesystem.
type Stager interface {
	Fetch(ctx context.Context, source string) (string, error)
}

// FileStager fetches remote sources into dir. Local paths pass through
// untouched after an existence check.
type FileStager struct {
	dir        string
	httpClient *http.Client
	logger     *slog.Logger

	mu         sync.Mutex
	downloader *manager.Downloader
}

// NewFileStager creates a FileStager that stores fetched files under dir.
// When dir is empty a per-process temporary directory is used.
func NewFileStager(dir string, logger *slog.Logger) (*FileStager, error) {
	if logger == nil {
		logger = slog.New(slog.NewTextHandler(io.Discard, nil))
	}
	if dir == "" {
		tmp, err := os.MkdirTemp("", "slipo-stage-")
		if err != nil {
			return nil, fmt.Errorf("stage: create work dir: %w", err)
		}
		dir = tmp
	}
	return &FileStager{
		dir:        dir,
		httpClient: &http.Client{},
		logger:     logger.With("component", "stager"),
	}, nil
}

// Fetch resolves source and returns a local path for it.
func (s *FileStager) Fetch(ctx context.Context, source string) (string, error) {
	switch {
	case strings.HasPrefix(source, "http://"), strings.HasPrefix(source, "https://"):
		return s.fetchHTTP(ctx, source)
	case strings.HasPrefix(source, "s3://"):
		return s.fetchS3(ctx, source)
	}

	if u, err := url.Parse(source); err == nil && u.Scheme != "" && u.Scheme != "file" && len(u.Scheme) > 1 {
		return "", fmt.Errorf("stage: unsupported scheme %q", u.Scheme)
	}

	local := strings.TrimPrefix(source, "file://")
	if _, err := os.Stat(local); err != nil {
		return "", fmt.Errorf("stage: local source: %w", err)
	}
	return local, nil
}

func (s *FileStager) fetchHTTP(ctx context.Context, source string) (string, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, source, nil)
	if err != nil {
		return "", fmt.Errorf("stage: build request: %w", err)
	}

	s.logger.Debug("fetching http source", "url", source)

	resp, err := s.httpClient.Do(req)
	if err != nil {
		return "", fmt.Errorf("stage: fetch %q: %w", source, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return "", fmt.Errorf("stage: fetch %q: unexpected status %d", source, resp.StatusCode)
	}

	name := path.Base(req.URL.Path)
	if name == "" || name == "/" || name == "." {
		name = "download"
	}

	dest, out, err := s.createDest(name)
	if err != nil {
		return "", err
	}
	defer out.Close()

	if _, err := io.Copy(out, resp.Body); err != nil {
		os.Remove(dest)
		return "", fmt.Errorf("stage: write %q: %w", dest, err)
	}
	return dest, nil
}

func (s *FileStager) fetchS3(ctx context.Context, source string) (string, error) {
	bucket, key, err := splitS3(source)
	if err != nil {
		return "", err
	}

	dl, err := s.s3Downloader(ctx)
	if err != nil {
		return "", err
	}

	s.logger.Debug("fetching s3 source", "bucket", bucket, "key", key)

	dest, out, err := s.createDest(path.Base(key))
	if err != nil {
		return "", err
	}
	defer out.Close()

	_, err = dl.Download(ctx, out, &s3.GetObjectInput{
		Bucket: aws.String(bucket),
		Key:    aws.String(key),
	})
	if err != nil {
		os.Remove(dest)
		return "", fmt.Errorf("stage: download s3://%s/%s: %w", bucket, key, err)
	}
	return dest, nil
}

// createDest opens a fresh file under the work directory, disambiguating
// clashing names with a numeric suffix.
func (s *FileStager) createDest(name string) (string, *os.File, error) {
	if err := os.MkdirAll(s.dir, 0o755); err != nil {
		return "", nil, fmt.Errorf("stage: mkdir %s: %w", s.dir, err)
	}

	dest := filepath.Join(s.dir, name)
	for i := 1; ; i++ {
		f, err := os.OpenFile(dest, os.O_WRONLY|os.O_CREATE|os.O_EXCL, 0o644)
		if err == nil {
			return dest, f, nil
		}
		if !os.IsExist(err) {
			return "", nil, fmt.Errorf("stage: create %s: %w", dest, err)
		}
		dest = filepath.Join(s.dir, fmt.Sprintf("%d-%s", i, name))
	}
}

func (s *FileStager) s3Downloader(ctx context.Context) (*manager.Downloader, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.downloader == nil {
		cfg, err := awsconfig.LoadDefaultConfig(ctx)
		if err != nil {
			return nil, fmt.Errorf("stage: load aws config: %w", err)
		}
		s.downloader = manager.NewDownloader(s3.NewFromConfig(cfg))
	}
	return s.downloader, nil
}

// splitS3 parses s3://bucket/key into its two parts.
func splitS3(source string) (bucket, key string, err error) {
	rest := strings.TrimPrefix(source, "s3://")
	bucket, key, ok := strings.Cut(rest, "/")
	if !ok || bucket == "" || key == "" {
		return "", "", fmt.Errorf("stage: invalid s3 url %q, want s3://bucket/key", source)
	}
	return bucket, key, nil
}
