package upload_test

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	goerrors "github.com/goliatone/go-errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/goliatone/go-publisher/internal/auth"
	"github.com/goliatone/go-publisher/internal/upload"
)

var pngMagic = []byte("\x89PNG\r\n\x1a\n")

func pngBytes(seed string) []byte {
	return append(append([]byte{}, pngMagic...), seed...)
}

type fakeSource struct {
	forced atomic.Int32
	fail   atomic.Bool
}

func (s *fakeSource) Credential(context.Context) (auth.Credential, error) {
	if s.fail.Load() {
		return auth.Credential{}, &auth.CredentialError{Err: errors.New("issuer down")}
	}
	return auth.Credential{Value: fmt.Sprintf("tok-%d", s.forced.Load())}, nil
}

func (s *fakeSource) ForceRefresh(context.Context, auth.Credential) (auth.Credential, error) {
	n := s.forced.Add(1)
	if s.fail.Load() {
		return auth.Credential{}, &auth.CredentialError{Err: errors.New("issuer down")}
	}
	return auth.Credential{Value: fmt.Sprintf("tok-%d", n)}, nil
}

type fakeUploader struct {
	calls    atomic.Int32
	inflight atomic.Int32
	peak     atomic.Int32
	delay    time.Duration
	// respond decides the result of call n (1-based).
	respond func(n int32, credential string, p upload.Payload) (upload.Remote, error)
}

func (u *fakeUploader) Kind() string { return "image" }

func (u *fakeUploader) Validate(p upload.Payload) error {
	return upload.NewImageUploader(nil).Validate(p)
}

func (u *fakeUploader) Upload(_ context.Context, credential string, p upload.Payload) (upload.Remote, error) {
	n := u.calls.Add(1)
	cur := u.inflight.Add(1)
	defer u.inflight.Add(-1)
	for {
		peak := u.peak.Load()
		if cur <= peak || u.peak.CompareAndSwap(peak, cur) {
			break
		}
	}
	if u.delay > 0 {
		time.Sleep(u.delay)
	}
	if u.respond != nil {
		return u.respond(n, credential, p)
	}
	return upload.Remote{URL: "https://mmbiz.example/" + upload.Hash(p.Data).Short()}, nil
}

func transientErr() error {
	return goerrors.New("rate limited", goerrors.CategoryRateLimit)
}

func newScheduler(u upload.Uploader, src auth.Source, opts ...upload.SchedulerOption) *upload.Scheduler {
	base := []upload.SchedulerOption{upload.WithRetryPolicy(3, time.Millisecond, 5*time.Millisecond)}
	return upload.NewScheduler(u, src, append(base, opts...)...)
}

func TestUploadAll_DeduplicatesIdenticalContent(t *testing.T) {
	uploader := &fakeUploader{delay: 10 * time.Millisecond}
	s := newScheduler(uploader, &fakeSource{})

	items := []upload.Item{
		{Reference: "a.png", Data: pngBytes("same")},
		{Reference: "b.png", Data: pngBytes("same")},
		{Reference: "c.png", Data: pngBytes("other")},
		{Reference: "d.png", Data: pngBytes("same")},
	}
	outcomes := s.UploadAll(context.Background(), items)

	require.Len(t, outcomes, 4)
	assert.Equal(t, int32(2), uploader.calls.Load())
	assert.Equal(t, outcomes[0].Entry.URL, outcomes[1].Entry.URL)
	assert.Equal(t, outcomes[0].Entry.URL, outcomes[3].Entry.URL)
	assert.NotEqual(t, outcomes[0].Entry.URL, outcomes[2].Entry.URL)

	deduplicated := 0
	for _, out := range outcomes {
		require.NoError(t, out.Err)
		if out.Deduplicated {
			deduplicated++
		}
	}
	assert.Equal(t, 2, deduplicated)
	assert.Equal(t, 2, s.Cache().Len())

	again := s.UploadAll(context.Background(), items[:1])
	assert.True(t, again[0].Deduplicated)
	assert.Equal(t, int32(2), uploader.calls.Load())
}

func TestUploadAll_PreservesInputOrder(t *testing.T) {
	uploader := &fakeUploader{
		respond: func(_ int32, _ string, p upload.Payload) (upload.Remote, error) {
			// later items finish first
			if string(p.Data[len(pngMagic):]) == "0" {
				time.Sleep(20 * time.Millisecond)
			}
			return upload.Remote{URL: "url-" + string(p.Data[len(pngMagic):])}, nil
		},
	}
	s := newScheduler(uploader, &fakeSource{})

	var items []upload.Item
	for i := range 6 {
		items = append(items, upload.Item{Reference: fmt.Sprintf("ref-%d", i), Data: pngBytes(fmt.Sprint(i))})
	}
	outcomes := s.UploadAll(context.Background(), items)

	for i, out := range outcomes {
		require.NoError(t, out.Err)
		assert.Equal(t, fmt.Sprintf("ref-%d", i), out.Reference)
		assert.Equal(t, fmt.Sprintf("url-%d", i), out.Entry.URL)
	}

	mapping := upload.BuildMapping(outcomes)
	assert.Len(t, mapping, 6)
	assert.Equal(t, "url-3", mapping["ref-3"])
}

func TestUploadAll_BoundsConcurrency(t *testing.T) {
	uploader := &fakeUploader{delay: 15 * time.Millisecond}
	s := newScheduler(uploader, &fakeSource{}, upload.WithConcurrency(2))

	var items []upload.Item
	for i := range 10 {
		items = append(items, upload.Item{Reference: fmt.Sprint(i), Data: pngBytes(fmt.Sprint(i))})
	}
	s.UploadAll(context.Background(), items)

	assert.Equal(t, int32(10), uploader.calls.Load())
	assert.LessOrEqual(t, uploader.peak.Load(), int32(2))
	assert.Equal(t, int32(2), uploader.peak.Load())
}

func TestUploadAll_PartialFailureKeepsSiblings(t *testing.T) {
	uploader := &fakeUploader{
		respond: func(_ int32, _ string, p upload.Payload) (upload.Remote, error) {
			if string(p.Data[len(pngMagic):]) == "bad" {
				return upload.Remote{}, goerrors.New("invalid media", goerrors.CategoryBadInput)
			}
			return upload.Remote{URL: "ok"}, nil
		},
	}
	s := newScheduler(uploader, &fakeSource{})

	outcomes := s.UploadAll(context.Background(), []upload.Item{
		{Reference: "good-1", Data: pngBytes("g1")},
		{Reference: "bad", Data: pngBytes("bad")},
		{Reference: "good-2", Data: pngBytes("g2")},
	})

	assert.NoError(t, outcomes[0].Err)
	assert.Error(t, outcomes[1].Err)
	assert.NoError(t, outcomes[2].Err)

	mapping := upload.BuildMapping(outcomes)
	assert.Equal(t, map[string]string{"good-1": "ok", "good-2": "ok"}, mapping)

	failed := upload.Failures(outcomes)
	require.Len(t, failed, 1)
	assert.Equal(t, "bad", failed[0].Reference)
	assert.Equal(t, 1, failed[0].Attempts, "terminal errors are not retried")
}

func TestUpload_RetriesTransientThenRecovers(t *testing.T) {
	uploader := &fakeUploader{
		respond: func(n int32, _ string, _ upload.Payload) (upload.Remote, error) {
			if n < 3 {
				return upload.Remote{}, transientErr()
			}
			return upload.Remote{URL: "finally"}, nil
		},
	}
	s := newScheduler(uploader, &fakeSource{})

	out := s.Upload(context.Background(), upload.Item{Reference: "x.png", Data: pngBytes("x")})
	require.NoError(t, out.Err)
	assert.Equal(t, "finally", out.Entry.URL)
	assert.Equal(t, int32(3), uploader.calls.Load())
	assert.Equal(t, 3, out.Attempts)
	assert.False(t, out.Deduplicated)
}

func TestUpload_ExhaustsTransientRetries(t *testing.T) {
	uploader := &fakeUploader{
		respond: func(int32, string, upload.Payload) (upload.Remote, error) {
			return upload.Remote{}, transientErr()
		},
	}
	s := newScheduler(uploader, &fakeSource{})

	out := s.Upload(context.Background(), upload.Item{Reference: "x.png", Data: pngBytes("x")})
	require.Error(t, out.Err)
	assert.ErrorIs(t, out.Err, upload.ErrRetriesExhausted)
	assert.Equal(t, int32(3), uploader.calls.Load())

	var perr *goerrors.Error
	require.ErrorAs(t, out.Err, &perr)
	assert.Equal(t, "UPLOAD_RETRIES_EXHAUSTED", perr.TextCode)
}

func TestUpload_ForcesOneRefreshOnCredentialRejection(t *testing.T) {
	src := &fakeSource{}
	uploader := &fakeUploader{
		respond: func(_ int32, credential string, _ upload.Payload) (upload.Remote, error) {
			if credential == "tok-0" {
				return upload.Remote{}, goerrors.New("invalid credential", goerrors.CategoryAuth)
			}
			return upload.Remote{URL: "after-refresh"}, nil
		},
	}
	s := newScheduler(uploader, src)

	out := s.Upload(context.Background(), upload.Item{Reference: "x.png", Data: pngBytes("x")})
	require.NoError(t, out.Err)
	assert.Equal(t, "after-refresh", out.Entry.URL)
	assert.Equal(t, int32(1), src.forced.Load())
	assert.Equal(t, int32(2), uploader.calls.Load())
}

type sequenceIssuer struct {
	calls atomic.Int32
}

func (i *sequenceIssuer) Issue(context.Context) (auth.Grant, error) {
	n := i.calls.Add(1)
	return auth.Grant{Value: fmt.Sprintf("token-%d", n), Lifetime: 2 * time.Hour}, nil
}

func TestUploadAll_StaggeredRejectionsRefreshOnce(t *testing.T) {
	issuer := &sequenceIssuer{}
	cache := auth.NewCache(issuer)
	uploader := &fakeUploader{
		respond: func(_ int32, credential string, p upload.Payload) (upload.Remote, error) {
			if credential != "token-1" {
				return upload.Remote{URL: "ok-" + credential}, nil
			}
			if string(p.Data[len(pngMagic):]) == "late" {
				// hold the rejection until the other task installed token-2
				deadline := time.Now().Add(time.Second)
				for time.Now().Before(deadline) {
					if cur, ok := cache.Current(); ok && cur.Value != "token-1" {
						break
					}
					time.Sleep(time.Millisecond)
				}
			}
			return upload.Remote{}, goerrors.New("invalid credential", goerrors.CategoryAuth)
		},
	}
	s := newScheduler(uploader, cache)

	outcomes := s.UploadAll(context.Background(), []upload.Item{
		{Reference: "early.png", Data: pngBytes("early")},
		{Reference: "late.png", Data: pngBytes("late")},
	})

	for _, out := range outcomes {
		require.NoError(t, out.Err)
		assert.Equal(t, "ok-token-2", out.Entry.URL)
	}
	assert.Equal(t, int32(2), issuer.calls.Load())
	current, ok := cache.Current()
	require.True(t, ok)
	assert.Equal(t, "token-2", current.Value)
}

func TestUpload_PersistentRejectionIsTerminal(t *testing.T) {
	src := &fakeSource{}
	uploader := &fakeUploader{
		respond: func(int32, string, upload.Payload) (upload.Remote, error) {
			return upload.Remote{}, goerrors.New("invalid credential", goerrors.CategoryAuth)
		},
	}
	s := newScheduler(uploader, src)

	out := s.Upload(context.Background(), upload.Item{Reference: "x.png", Data: pngBytes("x")})
	require.Error(t, out.Err)
	assert.True(t, goerrors.IsCategory(out.Err, goerrors.CategoryAuth))
	assert.Equal(t, int32(1), src.forced.Load())
	assert.Equal(t, int32(2), uploader.calls.Load())
}

func TestUpload_CredentialFailureIsTerminalAfterRefresh(t *testing.T) {
	src := &fakeSource{}
	src.fail.Store(true)
	uploader := &fakeUploader{}
	s := newScheduler(uploader, src)

	out := s.Upload(context.Background(), upload.Item{Reference: "x.png", Data: pngBytes("x")})
	require.Error(t, out.Err)
	assert.ErrorIs(t, out.Err, auth.ErrCredentialUnavailable)
	assert.Equal(t, int32(1), src.forced.Load())
	assert.Zero(t, uploader.calls.Load())
}

func TestUpload_RejectsInvalidContentLocally(t *testing.T) {
	uploader := &fakeUploader{}
	s := newScheduler(uploader, &fakeSource{})

	cases := map[string]upload.Item{
		"empty":        {Reference: "empty.png"},
		"not image":    {Reference: "doc.png", Data: []byte("plain text content")},
		"too large":    {Reference: "huge.png", Data: append(pngBytes(""), make([]byte, upload.MaxImageSize)...)},
		"missing file": {Reference: "gone.png", Path: filepath.Join(t.TempDir(), "gone.png")},
	}
	for name, item := range cases {
		t.Run(name, func(t *testing.T) {
			out := s.Upload(context.Background(), item)
			require.Error(t, out.Err)
			assert.ErrorIs(t, out.Err, upload.ErrInvalidContent)
		})
	}
	assert.Zero(t, uploader.calls.Load())
}

func TestUpload_ReadsFromPath(t *testing.T) {
	path := filepath.Join(t.TempDir(), "pic.png")
	require.NoError(t, os.WriteFile(path, pngBytes("file"), 0o600))

	s := newScheduler(&fakeUploader{}, &fakeSource{})
	out := s.Upload(context.Background(), upload.Item{Reference: "pic.png", Path: path})
	require.NoError(t, out.Err)
	assert.Equal(t, upload.Hash(pngBytes("file")), out.ContentID)
}

func TestUpload_CancelledContextStopsRetries(t *testing.T) {
	uploader := &fakeUploader{
		respond: func(int32, string, upload.Payload) (upload.Remote, error) {
			return upload.Remote{}, transientErr()
		},
	}
	s := upload.NewScheduler(uploader, &fakeSource{}, upload.WithRetryPolicy(10, 50*time.Millisecond, time.Second))

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Millisecond)
	defer cancel()
	out := s.Upload(ctx, upload.Item{Reference: "x.png", Data: pngBytes("x")})
	require.Error(t, out.Err)
	assert.ErrorIs(t, out.Err, context.DeadlineExceeded)
	assert.Less(t, uploader.calls.Load(), int32(3))
}

func TestUploadAll_SharedCacheAcrossCalls(t *testing.T) {
	uploader := &fakeUploader{delay: 5 * time.Millisecond}
	cache := upload.NewCache()
	first := newScheduler(uploader, &fakeSource{}, upload.WithCache(cache))
	second := newScheduler(uploader, &fakeSource{}, upload.WithCache(cache))

	var wg sync.WaitGroup
	wg.Add(2)
	go func() { defer wg.Done(); first.UploadAll(context.Background(), []upload.Item{{Reference: "a", Data: pngBytes("z")}}) }()
	go func() { defer wg.Done(); first.UploadAll(context.Background(), []upload.Item{{Reference: "b", Data: pngBytes("z")}}) }()
	wg.Wait()
	assert.Equal(t, int32(1), uploader.calls.Load())

	out := second.Upload(context.Background(), upload.Item{Reference: "c", Data: pngBytes("z")})
	require.NoError(t, out.Err)
	assert.True(t, out.Deduplicated)
	assert.Equal(t, int32(1), uploader.calls.Load())
}
