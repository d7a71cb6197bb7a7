package translate

import (
	"context"
	"fmt"
	"strings"
	"sync"

	"github.com/chromedp/cdproto/emulation"
	"github.com/chromedp/cdproto/network"
	"github.com/chromedp/chromedp"
)

// targetSelector is the DeepL element that receives the rendered
// translation. It stays empty until the client-side rendering finishes.
const targetSelector = ".lmt__translations_as_text__text_btn"

const readTargetJS = `(() => {
	const el = document.querySelector(%q);
	return el && el.textContent ? el.textContent : "";
})()`

// ChromeFactory opens translation sessions backed by headless Chrome. One
// exec allocator is shared by all sessions; each session gets its own tab.
type ChromeFactory struct {
	allocator context.Context
	cancel    context.CancelFunc
	userAgent string
}

// NewChromeFactory starts the browser allocator. A non-empty userAgent
// overrides the headless default, which the translator refuses to serve.
func NewChromeFactory(userAgent string) *ChromeFactory {
	opts := append(chromedp.DefaultExecAllocatorOptions[:],
		chromedp.Flag("headless", "new"),
		chromedp.Flag("disable-gpu", true),
		chromedp.Flag("hide-scrollbars", true),
	)
	allocCtx, cancel := chromedp.NewExecAllocator(context.Background(), opts...)
	return &ChromeFactory{allocator: allocCtx, cancel: cancel, userAgent: userAgent}
}

// Close tears down the allocator and every remaining browser process.
func (f *ChromeFactory) Close() {
	f.cancel()
}

// NewSession opens a browser tab for one translation request.
func (f *ChromeFactory) NewSession(ctx context.Context) (Session, error) {
	tabCtx, tabCancel := chromedp.NewContext(f.allocator)

	stop := forwardCancel(ctx, tabCancel)
	err := chromedp.Run(tabCtx, f.setupAction())
	stop()
	if err != nil {
		tabCancel()
		return nil, fmt.Errorf("chromedp warmup: %w", err)
	}
	return &ChromeSession{ctx: tabCtx, cancel: tabCancel}, nil
}

func (f *ChromeFactory) setupAction() chromedp.Action {
	return chromedp.ActionFunc(func(ctx context.Context) error {
		if err := network.Enable().Do(ctx); err != nil {
			return fmt.Errorf("enable network domain: %w", err)
		}
		if f.userAgent != "" {
			if err := emulation.SetUserAgentOverride(f.userAgent).Do(ctx); err != nil {
				return fmt.Errorf("set user-agent: %w", err)
			}
		}
		return nil
	})
}

// ChromeSession is one browser tab driving a single translation.
type ChromeSession struct {
	ctx    context.Context
	cancel context.CancelFunc
	closed sync.Once
}

// Navigate loads the translator page with the encoded text.
func (s *ChromeSession) Navigate(ctx context.Context, rawURL string) error {
	stop := forwardCancel(ctx, s.cancel)
	defer stop()

	if err := chromedp.Run(s.ctx, chromedp.Navigate(rawURL)); err != nil {
		return fmt.Errorf("chromedp navigate: %w", err)
	}
	return nil
}

// Poll reads the rendering target's text content. An empty result means the
// translation has not rendered yet.
func (s *ChromeSession) Poll(ctx context.Context) (string, error) {
	stop := forwardCancel(ctx, s.cancel)
	defer stop()

	var text string
	script := fmt.Sprintf(readTargetJS, targetSelector)
	if err := chromedp.Run(s.ctx, chromedp.Evaluate(script, &text)); err != nil {
		return "", fmt.Errorf("read rendering target: %w", err)
	}
	return strings.TrimSpace(text), nil
}

// Close releases the tab. Safe to call more than once.
func (s *ChromeSession) Close() error {
	s.closed.Do(s.cancel)
	return nil
}

// forwardCancel propagates cancellation of parent onto cancel until the
// returned stop function is called.
func forwardCancel(parent context.Context, cancel context.CancelFunc) func() {
	if parent == nil {
		return func() {}
	}
	done := make(chan struct{})
	go func() {
		select {
		case <-parent.Done():
			cancel()
		case <-done:
		}
	}()
	return func() { close(done) }
}
