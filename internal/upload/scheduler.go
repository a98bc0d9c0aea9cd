package upload

import (
	"context"
	"errors"
	"os"
	"sync"
	"time"

	"github.com/cenkalti/backoff/v4"
	"golang.org/x/sync/semaphore"
	"golang.org/x/sync/singleflight"

	"github.com/goliatone/go-publisher/internal/auth"
	"github.com/goliatone/go-publisher/internal/logging"
	"github.com/goliatone/go-publisher/internal/transport"
	"github.com/goliatone/go-publisher/pkg/interfaces"
)

const (
	DefaultConcurrency = 5
	DefaultMaxAttempts = 3
	DefaultBackoffBase = 500 * time.Millisecond
	DefaultMaxBackoff  = 10 * time.Second
)

// Item is one resource submitted for upload. Data wins over Path when both
// are set.
type Item struct {
	Reference string
	Path      string
	Data      []byte
}

// Outcome is the resolution of one Item. Exactly one of Entry or Err is
// meaningful.
type Outcome struct {
	Reference string
	ContentID ContentID
	Entry     Entry
	Err       error
	// Deduplicated is set when no network call was made for this item,
	// either because the cache had it or another task uploaded the bytes.
	Deduplicated bool
	Attempts     int
}

func (o Outcome) Succeeded() bool {
	return o.Err == nil
}

// Scheduler uploads items through a bounded slot pool, never repeating work
// for identical bytes.
type Scheduler struct {
	uploader    Uploader
	credentials auth.Source
	cache       *Cache
	slots       *semaphore.Weighted
	inflight    singleflight.Group

	maxAttempts int
	backoffBase time.Duration
	maxBackoff  time.Duration

	observer Observer
	logger   interfaces.Logger
}

// SchedulerOption customises a Scheduler.
type SchedulerOption func(*Scheduler)

// WithConcurrency sets the number of slots. Values below one are ignored.
func WithConcurrency(n int) SchedulerOption {
	return func(s *Scheduler) {
		if n > 0 {
			s.slots = semaphore.NewWeighted(int64(n))
		}
	}
}

// WithRetryPolicy sets the attempt budget (first try included) and the
// exponential backoff bounds.
func WithRetryPolicy(maxAttempts int, base, ceiling time.Duration) SchedulerOption {
	return func(s *Scheduler) {
		if maxAttempts > 0 {
			s.maxAttempts = maxAttempts
		}
		if base > 0 {
			s.backoffBase = base
		}
		if ceiling > 0 {
			s.maxBackoff = ceiling
		}
	}
}

// WithCache shares an existing cache between schedulers.
func WithCache(cache *Cache) SchedulerOption {
	return func(s *Scheduler) {
		if cache != nil {
			s.cache = cache
		}
	}
}

func WithObserver(observer Observer) SchedulerOption {
	return func(s *Scheduler) {
		if observer != nil {
			s.observer = observer
		}
	}
}

func WithLogger(logger interfaces.Logger) SchedulerOption {
	return func(s *Scheduler) {
		s.logger = logging.Ensure(logger)
	}
}

// NewScheduler builds a scheduler for uploader using credentials from src.
func NewScheduler(uploader Uploader, src auth.Source, opts ...SchedulerOption) *Scheduler {
	s := &Scheduler{
		uploader:    uploader,
		credentials: src,
		cache:       NewCache(),
		slots:       semaphore.NewWeighted(DefaultConcurrency),
		maxAttempts: DefaultMaxAttempts,
		backoffBase: DefaultBackoffBase,
		maxBackoff:  DefaultMaxBackoff,
		observer:    nopObserver{},
		logger:      logging.NoOp(),
	}
	for _, opt := range opts {
		if opt != nil {
			opt(s)
		}
	}
	if s.maxBackoff < s.backoffBase {
		s.maxBackoff = s.backoffBase
	}
	return s
}

// Cache exposes the scheduler's content cache.
func (s *Scheduler) Cache() *Cache {
	return s.cache
}

// UploadAll resolves every item and returns outcomes in input order. A
// failing item never stops its siblings. Each item gets its own goroutine;
// only network attempts are bounded by the slot pool, so callers with very
// large batches should split them.
func (s *Scheduler) UploadAll(ctx context.Context, items []Item) []Outcome {
	outcomes := make([]Outcome, len(items))
	var wg sync.WaitGroup
	for i, item := range items {
		wg.Add(1)
		go func() {
			defer wg.Done()
			outcomes[i] = s.Upload(ctx, item)
		}()
	}
	wg.Wait()
	return outcomes
}

// Upload resolves a single item.
func (s *Scheduler) Upload(ctx context.Context, item Item) Outcome {
	out := Outcome{Reference: item.Reference}

	data, err := item.load()
	if err != nil {
		out.Err = invalidContent(item.Reference, err.Error())
		return out
	}
	out.ContentID = Hash(data)
	logger := logging.WithTask(s.logger, item.Reference, out.ContentID.Short())

	if entry, ok := s.cache.Lookup(out.ContentID); ok {
		s.observer.RecordCacheHit(s.uploader.Kind())
		logger.Debug("upload.task.cache_hit")
		out.Entry, out.Deduplicated = entry, true
		return out
	}

	payload := sniff(item.name(), data)
	if err := s.uploader.Validate(payload); err != nil {
		out.Err = err
		return out
	}

	for {
		res, led, err := s.join(ctx, out.ContentID, payload, logger)
		if err != nil && !led && isContextError(err) && ctx.Err() == nil {
			// the flight we joined was cancelled by its leader; lead our own
			continue
		}
		out.Entry, out.Err = res.entry, err
		if led {
			out.Attempts = res.attempts
		}
		out.Deduplicated = err == nil && (!led || res.cached)
		break
	}

	if out.Err != nil {
		logger.Warn("upload.task.failed", "error", out.Err, "attempts", out.Attempts)
	} else {
		logger.Debug("upload.task.completed", "url", out.Entry.URL, "deduplicated", out.Deduplicated)
	}
	return out
}

type flightResult struct {
	entry    Entry
	attempts int
	cached   bool
}

// join leads or joins the in-flight upload for id. led reports whether this
// goroutine ran the upload.
func (s *Scheduler) join(ctx context.Context, id ContentID, payload Payload, logger interfaces.Logger) (flightResult, bool, error) {
	led := false
	ch := s.inflight.DoChan(string(id), func() (any, error) {
		led = true
		if entry, ok := s.cache.Lookup(id); ok {
			return flightResult{entry: entry, cached: true}, nil
		}
		remote, attempts, err := s.transfer(ctx, payload, logger)
		if err != nil {
			return flightResult{attempts: attempts}, err
		}
		entry, _ := s.cache.InsertIfAbsent(id, Entry{URL: remote.URL, MediaID: remote.MediaID})
		return flightResult{entry: entry, attempts: attempts}, nil
	})

	select {
	case <-ctx.Done():
		return flightResult{}, false, ctx.Err()
	case res := <-ch:
		fr, _ := res.Val.(flightResult)
		return fr, led, res.Err
	}
}

// transfer runs the retry policy around single network attempts.
func (s *Scheduler) transfer(ctx context.Context, payload Payload, logger interfaces.Logger) (Remote, int, error) {
	kind := s.uploader.Kind()
	calls := 0
	refreshed := false

	operation := func() (Remote, error) {
		calls++
		remote, used, err := s.send(ctx, payload)
		if err == nil {
			return remote, nil
		}
		if ctx.Err() != nil {
			return Remote{}, backoff.Permanent(ctx.Err())
		}
		if needsRefresh(err) && !refreshed {
			refreshed = true
			logger.Info("upload.credential.refresh", "error", err)
			if _, ferr := s.credentials.ForceRefresh(ctx, used); ferr != nil {
				return Remote{}, backoff.Permanent(ferr)
			}
			calls++
			if remote, _, err = s.send(ctx, payload); err == nil {
				return remote, nil
			}
		}
		if transport.IsTransient(err) && !isContextError(err) {
			return Remote{}, err
		}
		return Remote{}, backoff.Permanent(err)
	}

	policy := backoff.WithContext(backoff.WithMaxRetries(s.retryPolicy(), uint64(s.maxAttempts-1)), ctx)
	notify := func(err error, wait time.Duration) {
		s.observer.RecordRetry(kind, err)
		logger.Info("upload.task.retry", "error", err, "wait", wait, "attempt", calls)
	}

	remote, err := backoff.RetryNotifyWithData(operation, policy, notify)
	if err != nil && transport.IsTransient(err) && ctx.Err() == nil {
		err = retriesExhausted(payload.Name, calls, err)
	}
	return remote, calls, err
}

func (s *Scheduler) retryPolicy() backoff.BackOff {
	return backoff.NewExponentialBackOff(
		backoff.WithInitialInterval(s.backoffBase),
		backoff.WithMultiplier(2),
		backoff.WithMaxInterval(s.maxBackoff),
		backoff.WithMaxElapsedTime(0),
	)
}

// send performs one network attempt while holding a slot. It returns the
// credential the attempt used so a rejection refreshes exactly that one.
func (s *Scheduler) send(ctx context.Context, payload Payload) (Remote, auth.Credential, error) {
	if err := s.slots.Acquire(ctx, 1); err != nil {
		return Remote{}, auth.Credential{}, err
	}
	defer s.slots.Release(1)

	cred, err := s.credentials.Credential(ctx)
	if err != nil {
		return Remote{}, auth.Credential{}, err
	}

	started := time.Now()
	remote, err := s.uploader.Upload(ctx, cred.Value, payload)
	s.observer.RecordUpload(s.uploader.Kind(), time.Since(started), len(payload.Data), err)
	return remote, cred, err
}

func needsRefresh(err error) bool {
	return transport.IsCredentialRejected(err) || errors.Is(err, auth.ErrCredentialUnavailable)
}

func isContextError(err error) bool {
	return errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded)
}

func (i Item) load() ([]byte, error) {
	if len(i.Data) > 0 {
		return i.Data, nil
	}
	if i.Path == "" {
		return nil, errors.New("no data or path")
	}
	return os.ReadFile(i.Path)
}

func (i Item) name() string {
	if i.Path != "" {
		return i.Path
	}
	return i.Reference
}
