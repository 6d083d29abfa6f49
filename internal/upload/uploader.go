package upload

import (
	"bytes"
	"context"
	"fmt"
	"log"
	"mime"
	"os"
	"path"
	"path/filepath"
	"strings"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/google/uuid"
	"golang.org/x/sync/errgroup"

	"github.com/Origonlabs/Api-Icons/internal/catalog"
)

// PutObjectAPI is the slice of the S3 client the uploader needs.
type PutObjectAPI interface {
	PutObject(ctx context.Context, params *s3.PutObjectInput, optFns ...func(*s3.Options)) (*s3.PutObjectOutput, error)
}

const cacheControl = "public, max-age=31536000, immutable"

type Options struct {
	Bucket      string
	Prefix      string // optional key prefix
	Extension   string // files discovered; defaults to ".svg"
	BatchSize   int
	MaxAttempts int
	BaseDelay   time.Duration
	MaxDelay    time.Duration
}

func DefaultOptions() Options {
	return Options{
		Extension:   catalog.DefaultExtension,
		BatchSize:   50,
		MaxAttempts: 3,
		BaseDelay:   500 * time.Millisecond,
		MaxDelay:    5 * time.Second,
	}
}

type Failure struct {
	Path     string
	Key      string
	Attempts int
	Err      error
}

type Report struct {
	RunID     string
	Total     int
	Succeeded int
	Failed    []Failure
	Elapsed   time.Duration
}

// Uploader mirrors an asset tree into a bucket in fixed-size concurrent
// batches. A failing file never stops its batch or the batches after it.
type Uploader struct {
	client PutObjectAPI
	opts   Options
	sleep  func(ctx context.Context, d time.Duration) error
}

func New(client PutObjectAPI, opts Options) *Uploader {
	def := DefaultOptions()
	if opts.Extension == "" {
		opts.Extension = def.Extension
	}
	if opts.BatchSize < 1 {
		opts.BatchSize = def.BatchSize
	}
	if opts.MaxAttempts < 1 {
		opts.MaxAttempts = def.MaxAttempts
	}
	if opts.BaseDelay <= 0 {
		opts.BaseDelay = def.BaseDelay
	}
	if opts.MaxDelay < opts.BaseDelay {
		opts.MaxDelay = opts.BaseDelay
	}
	opts.Prefix = strings.Trim(opts.Prefix, "/")
	return &Uploader{client: client, opts: opts, sleep: sleepCtx}
}

// Key maps a path relative to the asset root onto the object key, which
// mirrors the catalog's relativePath.
func (u *Uploader) Key(rel string) string {
	return strings.TrimPrefix(path.Join(u.opts.Prefix, catalog.AssetsSegment, rel), "/")
}

// Run discovers every asset under root and uploads it. The returned error
// is non-nil only when root cannot be walked.
func (u *Uploader) Run(ctx context.Context, root string) (Report, error) {
	files, err := Discover(root, u.opts.Extension)
	if err != nil {
		return Report{}, err
	}
	return u.Upload(ctx, root, files), nil
}

// Upload sends files (relative to root) batch by batch.
func (u *Uploader) Upload(ctx context.Context, root string, files []string) Report {
	start := time.Now()
	rep := Report{RunID: uuid.NewString(), Total: len(files)}
	batches := (len(files) + u.opts.BatchSize - 1) / u.opts.BatchSize

	for b := 0; b < batches; b++ {
		lo := b * u.opts.BatchSize
		hi := min(lo+u.opts.BatchSize, len(files))
		batch := files[lo:hi]

		errs := make([]*Failure, len(batch))
		var g errgroup.Group
		for i, rel := range batch {
			i, rel := i, rel
			g.Go(func() error {
				errs[i] = u.uploadOne(ctx, rep.RunID, root, rel)
				return nil
			})
		}
		_ = g.Wait()

		failed := 0
		for _, f := range errs {
			if f != nil {
				rep.Failed = append(rep.Failed, *f)
				failed++
			}
		}
		rep.Succeeded += len(batch) - failed
		log.Printf("[upload] batch %d/%d: %d ok, %d failed", b+1, batches, len(batch)-failed, failed)
	}

	rep.Elapsed = time.Since(start)
	return rep
}

func (u *Uploader) uploadOne(ctx context.Context, runID, root, rel string) *Failure {
	key := u.Key(rel)

	body, err := os.ReadFile(filepath.Join(root, filepath.FromSlash(rel)))
	if err != nil {
		return &Failure{Path: rel, Key: key, Err: err}
	}

	contentType := mime.TypeByExtension(strings.ToLower(path.Ext(rel)))
	if contentType == "" {
		contentType = "application/octet-stream"
	}

	var lastErr error
	for attempt := 1; attempt <= u.opts.MaxAttempts; attempt++ {
		_, lastErr = u.client.PutObject(ctx, &s3.PutObjectInput{
			Bucket:       aws.String(u.opts.Bucket),
			Key:          aws.String(key),
			Body:         bytes.NewReader(body),
			ContentType:  aws.String(contentType),
			CacheControl: aws.String(cacheControl),
			Metadata:     map[string]string{"upload-run": runID},
		})
		if lastErr == nil {
			return nil
		}
		if attempt == u.opts.MaxAttempts {
			break
		}

		delay := u.backoff(attempt)
		log.Printf("[upload] %s attempt %d failed, retrying in %s: %v", key, attempt, delay, lastErr)
		if err := u.sleep(ctx, delay); err != nil {
			return &Failure{Path: rel, Key: key, Attempts: attempt, Err: fmt.Errorf("%w (after %v)", err, lastErr)}
		}
	}
	return &Failure{Path: rel, Key: key, Attempts: u.opts.MaxAttempts, Err: lastErr}
}

// backoff is the wait after the given failed attempt: BaseDelay doubled per
// attempt, capped at MaxDelay.
func (u *Uploader) backoff(attempt int) time.Duration {
	d := u.opts.BaseDelay
	for i := 1; i < attempt; i++ {
		d *= 2
		if d >= u.opts.MaxDelay {
			return u.opts.MaxDelay
		}
	}
	return min(d, u.opts.MaxDelay)
}

func sleepCtx(ctx context.Context, d time.Duration) error {
	t := time.NewTimer(d)
	defer t.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-t.C:
		return nil
	}
}
