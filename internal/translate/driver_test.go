package translate

import (
	"context"
	"errors"
	"fmt"
	"net/url"
	"strings"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

// fakeSession renders its text after a configurable number of polls.
type fakeSession struct {
	rendersAfter int // polls before the text appears; < 0 means never
	rendered     string
	navErr       error
	pollErr      error

	polls      atomic.Int32
	closeCalls atomic.Int32
	navigated  string
}

func (s *fakeSession) Navigate(_ context.Context, rawURL string) error {
	s.navigated = rawURL
	return s.navErr
}

func (s *fakeSession) Poll(_ context.Context) (string, error) {
	if s.pollErr != nil {
		return "", s.pollErr
	}
	n := int(s.polls.Add(1))
	if s.rendersAfter < 0 || n < s.rendersAfter {
		return "", nil
	}
	return s.rendered, nil
}

func (s *fakeSession) Close() error {
	s.closeCalls.Add(1)
	return nil
}

type fakeFactory struct {
	session *fakeSession
	err     error
}

func (f *fakeFactory) NewSession(context.Context) (Session, error) {
	if f.err != nil {
		return nil, f.err
	}
	return f.session, nil
}

func newTestDriver(factory SessionFactory, timeout time.Duration) *Driver {
	return NewDriver(factory, Config{
		From:         English,
		To:           Japanese,
		Timeout:      timeout,
		PollInterval: 5 * time.Millisecond,
	}, zap.NewNop())
}

func TestTranslateReturnsRenderedText(t *testing.T) {
	t.Parallel()

	session := &fakeSession{rendersAfter: 3, rendered: "rendered translation"}
	driver := newTestDriver(&fakeFactory{session: session}, time.Second)

	got, err := driver.Translate(context.Background(), "some text")
	require.NoError(t, err)
	require.Equal(t, "rendered translation", got)
	require.GreaterOrEqual(t, session.polls.Load(), int32(3))
	require.Equal(t, int32(1), session.closeCalls.Load(), "session must be released")
}

func TestTranslateRequestURL(t *testing.T) {
	t.Parallel()

	session := &fakeSession{rendersAfter: 1, rendered: "ok"}
	driver := newTestDriver(&fakeFactory{session: session}, time.Second)

	_, err := driver.Translate(context.Background(), "two words")
	require.NoError(t, err)
	require.True(t, strings.HasPrefix(session.navigated, "https://www.deepl.com/translator#en/ja/"))

	escaped := strings.TrimPrefix(session.navigated, "https://www.deepl.com/translator#en/ja/")
	text, err := url.PathUnescape(escaped)
	require.NoError(t, err)
	require.Equal(t, "two words", text)
}

func TestTranslateTimesOut(t *testing.T) {
	t.Parallel()

	session := &fakeSession{rendersAfter: -1}
	driver := newTestDriver(&fakeFactory{session: session}, 40*time.Millisecond)

	start := time.Now()
	_, err := driver.Translate(context.Background(), "never renders")
	require.ErrorIs(t, err, ErrTimeout)
	require.GreaterOrEqual(t, time.Since(start), 40*time.Millisecond)
	require.Equal(t, int32(1), session.closeCalls.Load(), "session must be released on timeout")

	// cleanup is idempotent
	require.NoError(t, session.Close())
	require.Equal(t, int32(2), session.closeCalls.Load())
}

func TestTranslateSessionOpenFailure(t *testing.T) {
	t.Parallel()

	driver := newTestDriver(&fakeFactory{err: errors.New("no browser")}, time.Second)
	_, err := driver.Translate(context.Background(), "text")
	require.ErrorIs(t, err, ErrUnavailable)
}

func TestTranslateNavigationFailure(t *testing.T) {
	t.Parallel()

	session := &fakeSession{navErr: errors.New("dns lookup failed")}
	driver := newTestDriver(&fakeFactory{session: session}, time.Second)

	_, err := driver.Translate(context.Background(), "text")
	require.ErrorIs(t, err, ErrUnavailable)
	require.Equal(t, int32(1), session.closeCalls.Load())
}

func TestTranslatePollFailure(t *testing.T) {
	t.Parallel()

	session := &fakeSession{pollErr: errors.New("tab crashed")}
	driver := newTestDriver(&fakeFactory{session: session}, time.Second)

	_, err := driver.Translate(context.Background(), "text")
	require.ErrorIs(t, err, ErrUnavailable)
	require.Equal(t, int32(1), session.closeCalls.Load())
}

// pair batches two fields through one request, like an article does.
type pair struct {
	first  string
	second string
}

func (p pair) Encode() string {
	return p.first + "|" + p.second
}

func (p pair) Decode(translated string) (pair, error) {
	parts := strings.SplitN(translated, "|", 2)
	if len(parts) != 2 {
		return pair{}, fmt.Errorf("separator lost in %q", translated)
	}
	return pair{first: parts[0], second: parts[1]}, nil
}

func TestTranslateValueRoundTrip(t *testing.T) {
	t.Parallel()

	session := &fakeSession{rendersAfter: 1, rendered: "TITLE|SUMMARY"}
	driver := newTestDriver(&fakeFactory{session: session}, time.Second)

	got, err := TranslateValue(context.Background(), driver, pair{first: "title", second: "summary"})
	require.NoError(t, err)
	require.Equal(t, pair{first: "TITLE", second: "SUMMARY"}, got)
}

func TestTranslateValueDecodeFailure(t *testing.T) {
	t.Parallel()

	session := &fakeSession{rendersAfter: 1, rendered: "separator went missing"}
	driver := newTestDriver(&fakeFactory{session: session}, time.Second)

	_, err := TranslateValue(context.Background(), driver, pair{first: "a", second: "b"})
	require.ErrorIs(t, err, ErrUnavailable)
}
