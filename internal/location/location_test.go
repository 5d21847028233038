package location

import (
	"bytes"
	"context"
	"io"
	"strings"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/tphakala/birdwatcher/internal/conf"
	"github.com/tphakala/birdwatcher/internal/errors"
	"go.uber.org/goleak"
)

func TestMain(m *testing.M) {
	goleak.VerifyTestMain(m)
}

// blockingProvider waits for ctx and reports how often it was called
type blockingProvider struct {
	calls atomic.Int32
}

func (p *blockingProvider) RequestCurrentPosition(ctx context.Context) (Position, error) {
	p.calls.Add(1)
	<-ctx.Done()
	return Position{}, ctx.Err()
}

func TestStaticProvider(t *testing.T) {
	t.Parallel()

	p := NewStaticProvider(60.1699, 24.9384)
	pos, err := p.RequestCurrentPosition(t.Context())
	require.NoError(t, err)
	assert.InDelta(t, 60.1699, pos.Latitude, 1e-9)
	assert.InDelta(t, 24.9384, pos.Longitude, 1e-9)
	assert.False(t, pos.At.IsZero())
	assert.Equal(t, "60.16990, 24.93840", pos.String())

	ctx, cancel := context.WithCancel(t.Context())
	cancel()
	_, err = p.RequestCurrentPosition(ctx)
	require.ErrorIs(t, err, context.Canceled)
}

func TestLocatorGrantedReturnsFix(t *testing.T) {
	t.Parallel()

	l := NewLocator(NewStaticProvider(1, 2), FixedPermission(true), time.Second)
	pos, err := l.RequestCurrentPosition(t.Context())
	require.NoError(t, err)
	assert.InDelta(t, 1.0, pos.Latitude, 0)
	assert.InDelta(t, 2.0, pos.Longitude, 0)
}

func TestLocatorDeniedNeverCallsProvider(t *testing.T) {
	t.Parallel()

	provider := &blockingProvider{}
	l := NewLocator(provider, FixedPermission(false), time.Second)

	_, err := l.RequestCurrentPosition(t.Context())
	require.ErrorIs(t, err, ErrPermissionDenied)
	assert.True(t, errors.IsCategory(err, errors.CategoryPermission))
	assert.Zero(t, provider.calls.Load())
}

func TestLocatorTimeoutIsUnavailable(t *testing.T) {
	t.Parallel()

	l := NewLocator(&blockingProvider{}, FixedPermission(true), 20*time.Millisecond)

	start := time.Now()
	_, err := l.RequestCurrentPosition(t.Context())
	require.ErrorIs(t, err, ErrUnavailable)
	require.ErrorIs(t, err, context.DeadlineExceeded)
	assert.True(t, errors.IsCategory(err, errors.CategoryTimeout))
	assert.Less(t, time.Since(start), 2*time.Second)
}

func TestLocatorHonoursCallerCancellation(t *testing.T) {
	t.Parallel()

	l := NewLocator(&blockingProvider{}, FixedPermission(true), 50*time.Millisecond)

	ctx, cancel := context.WithCancel(t.Context())
	go func() {
		time.Sleep(5 * time.Millisecond)
		cancel()
	}()

	_, err := l.RequestCurrentPosition(ctx)
	require.ErrorIs(t, err, ErrUnavailable)
	require.ErrorIs(t, err, context.Canceled)
}

func TestLocatorProviderErrors(t *testing.T) {
	t.Parallel()

	denied := ProviderFunc(func(context.Context) (Position, error) {
		return Position{}, ErrPermissionDenied
	})
	_, err := NewLocator(denied, FixedPermission(true), time.Second).RequestCurrentPosition(t.Context())
	require.ErrorIs(t, err, ErrPermissionDenied)

	broken := ProviderFunc(func(context.Context) (Position, error) {
		return Position{}, errors.NewStd("gps hardware fault")
	})
	_, err = NewLocator(broken, FixedPermission(true), time.Second).RequestCurrentPosition(t.Context())
	require.ErrorIs(t, err, ErrUnavailable)
	assert.Contains(t, err.Error(), "gps hardware fault")
}

func TestLocatorCollapsesConcurrentRequests(t *testing.T) {
	t.Parallel()

	var calls atomic.Int32
	release := make(chan struct{})
	provider := ProviderFunc(func(ctx context.Context) (Position, error) {
		calls.Add(1)
		select {
		case <-release:
			return Position{Latitude: 10, Longitude: 20}, nil
		case <-ctx.Done():
			return Position{}, ctx.Err()
		}
	})
	l := NewLocator(provider, FixedPermission(true), 5*time.Second)

	const callers = 5
	var (
		wg      sync.WaitGroup
		started sync.WaitGroup
	)
	results := make(chan error, callers)
	started.Add(callers)
	for range callers {
		wg.Go(func() {
			started.Done()
			pos, err := l.RequestCurrentPosition(t.Context())
			if err == nil && pos.Latitude != 10 {
				err = errors.NewStd("wrong position")
			}
			results <- err
		})
	}

	started.Wait()
	// Give every caller time to join the flight before it completes
	require.Eventually(t, func() bool { return calls.Load() == 1 }, time.Second, time.Millisecond)
	time.Sleep(20 * time.Millisecond)
	close(release)
	wg.Wait()
	close(results)

	for err := range results {
		require.NoError(t, err)
	}
	assert.LessOrEqual(t, calls.Load(), int32(2))
}

func TestPromptPermissionAsksOnce(t *testing.T) {
	t.Parallel()

	out := &bytes.Buffer{}
	p := NewPromptPermission(strings.NewReader("Yes\nno\n"), out)

	granted, err := p.Granted(t.Context())
	require.NoError(t, err)
	assert.True(t, granted)

	// The second answer in the input is never read
	granted, err = p.Granted(t.Context())
	require.NoError(t, err)
	assert.True(t, granted)
	assert.Equal(t, 1, strings.Count(out.String(), "[y/N]"))
}

func TestPromptPermissionDefaultsToDenied(t *testing.T) {
	t.Parallel()

	for _, input := range []string{"\n", "n\n", "maybe\n", ""} {
		p := NewPromptPermission(strings.NewReader(input), &bytes.Buffer{})
		granted, err := p.Granted(t.Context())
		require.NoError(t, err, "input %q", input)
		assert.False(t, granted, "input %q", input)
	}
}

func TestNewFromSettings(t *testing.T) {
	t.Parallel()

	settings := &conf.Settings{}
	settings.Location.Permission = conf.PermissionGranted
	settings.Location.Latitude = new(60.1699)
	settings.Location.Longitude = new(24.9384)

	l := New(settings, strings.NewReader(""), &bytes.Buffer{})
	assert.Equal(t, conf.DefaultLocationTimeout, l.timeout)

	pos, err := l.RequestCurrentPosition(t.Context())
	require.NoError(t, err)
	assert.InDelta(t, 60.1699, pos.Latitude, 1e-9)

	settings.Location.Permission = conf.PermissionDenied
	_, err = New(settings, nil, nil).RequestCurrentPosition(t.Context())
	require.ErrorIs(t, err, ErrPermissionDenied)
}

func TestNewWithoutPositionIsUnavailable(t *testing.T) {
	t.Parallel()

	settings := &conf.Settings{}
	settings.Location.Permission = conf.PermissionPrompt

	out := &bytes.Buffer{}
	pos, err := New(settings, strings.NewReader("y\n"), out).RequestCurrentPosition(t.Context())
	require.ErrorIs(t, err, ErrUnavailable)
	assert.NotErrorIs(t, err, ErrPermissionDenied)
	assert.True(t, errors.IsCategory(err, errors.CategoryConfiguration))
	assert.Equal(t, Position{}, pos)
	assert.Contains(t, out.String(), "[y/N]")
}

func TestPromptPermissionHonoursCancellation(t *testing.T) {
	t.Parallel()

	// Nothing is written until the first call has given up
	r, w := io.Pipe()
	t.Cleanup(func() { _ = w.Close() })

	p := NewPromptPermission(r, &bytes.Buffer{})

	ctx, cancel := context.WithTimeout(t.Context(), 50*time.Millisecond)
	defer cancel()

	start := time.Now()
	granted, err := p.Granted(ctx)
	require.ErrorIs(t, err, context.DeadlineExceeded)
	assert.False(t, granted)
	assert.Less(t, time.Since(start), 2*time.Second)

	// The answer typed later still counts
	go func() { _, _ = io.WriteString(w, "y\n") }()
	granted, err = p.Granted(t.Context())
	require.NoError(t, err)
	assert.True(t, granted)
}

func TestLocatorCancelledWhilePrompting(t *testing.T) {
	t.Parallel()

	r, w := io.Pipe()
	t.Cleanup(func() { _ = w.Close() })

	provider := &blockingProvider{}
	l := NewLocator(provider, NewPromptPermission(r, &bytes.Buffer{}), time.Second)

	ctx, cancel := context.WithCancel(t.Context())
	go func() {
		time.Sleep(10 * time.Millisecond)
		cancel()
	}()

	_, err := l.RequestCurrentPosition(ctx)
	require.ErrorIs(t, err, ErrUnavailable)
	require.ErrorIs(t, err, context.Canceled)
	assert.True(t, errors.IsCategory(err, errors.CategoryCancellation))
	assert.Zero(t, provider.calls.Load())
}

func TestNewPermissionModes(t *testing.T) {
	t.Parallel()

	assert.Equal(t, FixedPermission(true), NewPermission("GRANTED", nil, nil))
	assert.Equal(t, FixedPermission(false), NewPermission("denied", nil, nil))
	assert.Equal(t, FixedPermission(false), NewPermission("bogus", nil, nil))
	assert.IsType(t, &PromptPermission{}, NewPermission("prompt", strings.NewReader(""), &bytes.Buffer{}))
}
