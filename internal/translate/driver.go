package translate

import (
	"context"
	"errors"
	"fmt"
	"net/url"
	"time"

	"go.uber.org/zap"
)

// translatorURL is the DeepL web translator page. Source and target language
// plus the URL-escaped text are carried in the fragment.
const translatorURL = "https://www.deepl.com/translator"

// DefaultPollInterval is how often the rendering target is inspected.
const DefaultPollInterval = time.Second

var (
	// ErrTimeout means no translation materialized within the budget.
	ErrTimeout = errors.New("translation timed out")
	// ErrUnavailable means the translation session could not be driven.
	ErrUnavailable = errors.New("translation unavailable")
)

// Session is one stateful interaction with the translation surface.
// Poll returns the rendered translation, or an empty string while the
// client-side rendering has not finished. Close must be idempotent.
type Session interface {
	Navigate(ctx context.Context, url string) error
	Poll(ctx context.Context) (string, error)
	Close() error
}

// SessionFactory opens translation sessions.
type SessionFactory interface {
	NewSession(ctx context.Context) (Session, error)
}

// Translatable is the capability of batching into one translation request
// and recovering the per-field result afterwards.
type Translatable[T any] interface {
	Encode() string
	Decode(translated string) (T, error)
}

// Config controls Driver behavior.
type Config struct {
	From         Language
	To           Language
	Timeout      time.Duration
	PollInterval time.Duration
}

// Driver translates text by loading the translator page and polling the
// rendered output until it becomes non-empty or the timeout elapses. Each
// call owns exactly one session; no state survives between calls.
type Driver struct {
	factory SessionFactory
	cfg     Config
	logger  *zap.Logger
}

// NewDriver builds a Driver around a session factory.
func NewDriver(factory SessionFactory, cfg Config, logger *zap.Logger) *Driver {
	if cfg.From == "" {
		cfg.From = Auto
	}
	if cfg.To == "" {
		cfg.To = Auto
	}
	if cfg.Timeout <= 0 {
		cfg.Timeout = 60 * time.Second
	}
	if cfg.PollInterval <= 0 {
		cfg.PollInterval = DefaultPollInterval
	}
	return &Driver{factory: factory, cfg: cfg, logger: logger}
}

// Translate submits text and waits for the rendered translation. It fails
// with ErrTimeout when nothing renders within the configured timeout and
// with ErrUnavailable on session or navigation errors. The session is
// released on every exit path. Failures are not retried here; retry policy
// belongs to the caller.
func (d *Driver) Translate(ctx context.Context, text string) (string, error) {
	ctx, cancel := context.WithTimeoutCause(ctx, d.cfg.Timeout, ErrTimeout)
	defer cancel()

	session, err := d.factory.NewSession(ctx)
	if err != nil {
		return "", fmt.Errorf("%w: open session: %w", ErrUnavailable, err)
	}
	defer func() {
		if cerr := session.Close(); cerr != nil {
			d.logger.Warn("translation session close failed", zap.Error(cerr))
		}
	}()

	if err := session.Navigate(ctx, d.requestURL(text)); err != nil {
		return "", d.classify(ctx, fmt.Errorf("navigate: %w", err))
	}

	translated, err := d.poll(ctx, session)
	if err != nil {
		return "", err
	}
	return translated, nil
}

// poll inspects the rendering target once per interval until it yields text.
// The deadline on ctx races the loop; whichever resolves first wins.
func (d *Driver) poll(ctx context.Context, session Session) (string, error) {
	ticker := time.NewTicker(d.cfg.PollInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return "", d.classify(ctx, ctx.Err())
		case <-ticker.C:
			translated, err := session.Poll(ctx)
			if err != nil {
				return "", d.classify(ctx, fmt.Errorf("poll: %w", err))
			}
			if translated != "" {
				return translated, nil
			}
		}
	}
}

func (d *Driver) requestURL(text string) string {
	return fmt.Sprintf("%s#%s/%s/%s", translatorURL, d.cfg.From, d.cfg.To, url.PathEscape(text))
}

// classify maps a failure to the driver's error taxonomy: deadline
// expiration is a timeout, everything else means the surface was unusable.
func (d *Driver) classify(ctx context.Context, err error) error {
	if errors.Is(context.Cause(ctx), ErrTimeout) {
		return fmt.Errorf("%w after %s", ErrTimeout, d.cfg.Timeout)
	}
	return fmt.Errorf("%w: %w", ErrUnavailable, err)
}

// TranslateValue batches a value through one translation request and
// decodes the result back into a value of the same type.
func TranslateValue[T Translatable[T]](ctx context.Context, d *Driver, value T) (T, error) {
	translated, err := d.Translate(ctx, value.Encode())
	if err != nil {
		var zero T
		return zero, err
	}
	decoded, err := value.Decode(translated)
	if err != nil {
		var zero T
		return zero, fmt.Errorf("%w: %w", ErrUnavailable, err)
	}
	return decoded, nil
}
