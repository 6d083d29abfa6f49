package upload

import (
	"context"
	"errors"
	"io"
	"os"
	"path/filepath"
	"sort"
	"sync"
	"testing"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// fakeS3 records uploads and fails a key a configured number of times.
type fakeS3 struct {
	mu       sync.Mutex
	objects  map[string][]byte
	inputs   map[string]*s3.PutObjectInput
	calls    map[string]int
	failures map[string]int // key => remaining failures; -1 fails forever
}

func newFakeS3() *fakeS3 {
	return &fakeS3{
		objects:  map[string][]byte{},
		inputs:   map[string]*s3.PutObjectInput{},
		calls:    map[string]int{},
		failures: map[string]int{},
	}
}

func (f *fakeS3) PutObject(_ context.Context, in *s3.PutObjectInput, _ ...func(*s3.Options)) (*s3.PutObjectOutput, error) {
	body, err := io.ReadAll(in.Body)
	if err != nil {
		return nil, err
	}

	f.mu.Lock()
	defer f.mu.Unlock()
	key := aws.ToString(in.Key)
	f.calls[key]++
	if n := f.failures[key]; n != 0 {
		if n > 0 {
			f.failures[key] = n - 1
		}
		return nil, errors.New("503 slow down")
	}
	f.objects[key] = body
	f.inputs[key] = in
	return &s3.PutObjectOutput{}, nil
}

func writeTree(t *testing.T, root string, files ...string) {
	t.Helper()
	for _, f := range files {
		p := filepath.Join(root, filepath.FromSlash(f))
		require.NoError(t, os.MkdirAll(filepath.Dir(p), 0o755))
		require.NoError(t, os.WriteFile(p, []byte("<svg>"+f+"</svg>"), 0o644))
	}
}

func noSleep(u *Uploader) *[]time.Duration {
	var waits []time.Duration
	var mu sync.Mutex
	u.sleep = func(ctx context.Context, d time.Duration) error {
		mu.Lock()
		waits = append(waits, d)
		mu.Unlock()
		return ctx.Err()
	}
	return &waits
}

func TestDiscover(t *testing.T) {
	root := t.TempDir()
	writeTree(t, root,
		"Zoom/SVG/zoom_24_regular.svg",
		"Access Time/SVG/b_20_filled.SVG",
		"Access Time/SVG/a_20_filled.svg",
		"Access Time/metadata.json",
		"Access Time/PDF/a.pdf",
	)

	files, err := Discover(root, ".svg")
	require.NoError(t, err)
	assert.Equal(t, []string{
		"Access Time/SVG/a_20_filled.svg",
		"Access Time/SVG/b_20_filled.SVG",
		"Zoom/SVG/zoom_24_regular.svg",
	}, files)

	all, err := Discover(root, "")
	require.NoError(t, err)
	assert.Len(t, all, 5)

	_, err = Discover(filepath.Join(root, "missing"), ".svg")
	assert.Error(t, err)
}

func TestKeyMirrorsRelativePath(t *testing.T) {
	u := New(newFakeS3(), Options{Bucket: "b"})
	assert.Equal(t, "assets/Access Time/SVG/a.svg", u.Key("Access Time/SVG/a.svg"))

	u = New(newFakeS3(), Options{Bucket: "b", Prefix: "/icons/v2/"})
	assert.Equal(t, "icons/v2/assets/Access Time/SVG/a.svg", u.Key("Access Time/SVG/a.svg"))
}

func TestRunUploadsEverythingInBatches(t *testing.T) {
	root := t.TempDir()
	var files []string
	for _, name := range []string{"a", "b", "c", "d", "e", "f", "g"} {
		files = append(files, "Cat/SVG/"+name+".svg")
	}
	writeTree(t, root, files...)

	fake := newFakeS3()
	u := New(fake, Options{Bucket: "icons", BatchSize: 3})
	noSleep(u)

	rep, err := u.Run(context.Background(), root)
	require.NoError(t, err)
	assert.Equal(t, 7, rep.Total)
	assert.Equal(t, 7, rep.Succeeded)
	assert.Empty(t, rep.Failed)
	assert.NotEmpty(t, rep.RunID)

	in := fake.inputs["assets/Cat/SVG/a.svg"]
	require.NotNil(t, in)
	assert.Equal(t, "icons", aws.ToString(in.Bucket))
	assert.Equal(t, "image/svg+xml", aws.ToString(in.ContentType))
	assert.Equal(t, cacheControl, aws.ToString(in.CacheControl))
	assert.Equal(t, rep.RunID, in.Metadata["upload-run"])
	assert.Equal(t, []byte("<svg>Cat/SVG/a.svg</svg>"), fake.objects["assets/Cat/SVG/a.svg"])
}

func TestRetryThenSucceed(t *testing.T) {
	root := t.TempDir()
	writeTree(t, root, "Cat/SVG/flaky.svg", "Cat/SVG/ok.svg")

	fake := newFakeS3()
	fake.failures["assets/Cat/SVG/flaky.svg"] = 2
	u := New(fake, Options{Bucket: "icons", MaxAttempts: 3, BaseDelay: time.Second, MaxDelay: 10 * time.Second})
	waits := noSleep(u)

	rep, err := u.Run(context.Background(), root)
	require.NoError(t, err)
	assert.Equal(t, 2, rep.Succeeded)
	assert.Empty(t, rep.Failed)
	assert.Equal(t, 3, fake.calls["assets/Cat/SVG/flaky.svg"])
	assert.Equal(t, 1, fake.calls["assets/Cat/SVG/ok.svg"])
	assert.Equal(t, []time.Duration{time.Second, 2 * time.Second}, *waits)
}

func TestPermanentFailureIsIsolated(t *testing.T) {
	root := t.TempDir()
	writeTree(t, root, "A/SVG/1.svg", "A/SVG/2.svg", "B/SVG/3.svg", "B/SVG/4.svg")

	fake := newFakeS3()
	fake.failures["assets/A/SVG/2.svg"] = -1
	u := New(fake, Options{Bucket: "icons", BatchSize: 2, MaxAttempts: 4})
	noSleep(u)

	rep, err := u.Run(context.Background(), root)
	require.NoError(t, err)
	assert.Equal(t, 4, rep.Total)
	assert.Equal(t, 3, rep.Succeeded)
	require.Len(t, rep.Failed, 1)
	assert.Equal(t, "A/SVG/2.svg", rep.Failed[0].Path)
	assert.Equal(t, "assets/A/SVG/2.svg", rep.Failed[0].Key)
	assert.Equal(t, 4, rep.Failed[0].Attempts)
	assert.EqualError(t, rep.Failed[0].Err, "503 slow down")
	assert.Equal(t, 4, fake.calls["assets/A/SVG/2.svg"])

	var stored []string
	for k := range fake.objects {
		stored = append(stored, k)
	}
	sort.Strings(stored)
	assert.Equal(t, []string{"assets/A/SVG/1.svg", "assets/B/SVG/3.svg", "assets/B/SVG/4.svg"}, stored)
}

func TestUnreadableFileIsReported(t *testing.T) {
	root := t.TempDir()
	writeTree(t, root, "A/SVG/1.svg")

	u := New(newFakeS3(), Options{Bucket: "icons"})
	rep := u.Upload(context.Background(), root, []string{"A/SVG/1.svg", "A/SVG/gone.svg"})
	assert.Equal(t, 1, rep.Succeeded)
	require.Len(t, rep.Failed, 1)
	assert.Equal(t, "A/SVG/gone.svg", rep.Failed[0].Path)
	assert.Equal(t, 0, rep.Failed[0].Attempts)
}

func TestCancelledWaitStopsRetrying(t *testing.T) {
	root := t.TempDir()
	writeTree(t, root, "A/SVG/1.svg")

	fake := newFakeS3()
	fake.failures["assets/A/SVG/1.svg"] = -1
	u := New(fake, Options{Bucket: "icons", MaxAttempts: 5})

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	rep, err := u.Run(ctx, root)
	require.NoError(t, err)
	require.Len(t, rep.Failed, 1)
	assert.Equal(t, 1, rep.Failed[0].Attempts)
	assert.ErrorIs(t, rep.Failed[0].Err, context.Canceled)
	assert.Equal(t, 1, fake.calls["assets/A/SVG/1.svg"])
}

func TestBackoffDoublesUpToCap(t *testing.T) {
	u := New(newFakeS3(), Options{BaseDelay: 500 * time.Millisecond, MaxDelay: 3 * time.Second})
	assert.Equal(t, 500*time.Millisecond, u.backoff(1))
	assert.Equal(t, time.Second, u.backoff(2))
	assert.Equal(t, 2*time.Second, u.backoff(3))
	assert.Equal(t, 3*time.Second, u.backoff(4))
	assert.Equal(t, 3*time.Second, u.backoff(20))
}
