package browser

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"math/rand"
	"regexp"
	"strings"
	"sync"
	"time"

	"github.com/chromedp/cdproto/cdp"
	"github.com/chromedp/cdproto/network"
	"github.com/chromedp/cdproto/storage"
	"github.com/chromedp/chromedp"
	derr "github.com/riverplate/ferryfare-provider/internal/domain/errors"
	"github.com/riverplate/ferryfare-provider/internal/domain/models"
	"github.com/riverplate/ferryfare-provider/internal/domain/ports"
	"go.uber.org/zap"
)

// The front-end attaches the credential to its own catalog and pricing
// calls; observing either is enough.
var observedAPIPaths = []string{"/api/products", "/api/priceAvailability"}

// tokenPattern matches a credential literal embedded in page markup, the
// last-resort source when no API call fired.
var tokenPattern = regexp.MustCompile(`"token"\s*:\s*"([A-Za-z0-9\-_.]+)"`)

const (
	firstObserveWait  = 2500 * time.Millisecond
	triggeredWait     = 2 * time.Second
	reloadObserveWait = 2500 * time.Millisecond
)

// triggerCatalogJS fires the same catalog request the front-end issues on
// load, from inside the page context so the app attaches its credential.
const triggerCatalogJS = `(() => {
	if (window.fetch) {
		fetch("/api/products", {
			method: "POST",
			headers: {"content-type": "application/json"},
			body: JSON.stringify({productType: "PASSENGER"})
		}).catch(() => {});
	}
	return true;
})()`

// Acquirer captures a fresh credential by replaying the legitimate client's
// navigation and watching its outgoing network calls.
type Acquirer struct {
	log      *zap.Logger
	sessions ports.SessionStore
	headless bool
	timeout  time.Duration
	tokenTTL time.Duration
}

func NewAcquirer(log *zap.Logger, sessions ports.SessionStore, headless bool, timeout, tokenTTL time.Duration) *Acquirer {
	if log == nil {
		log = zap.NewNop()
	}
	if timeout <= 0 {
		timeout = 60 * time.Second
	}
	if tokenTTL <= 0 {
		tokenTTL = 10 * time.Hour
	}

	return &Acquirer{
		log:      log,
		sessions: sessions,
		headless: headless,
		timeout:  timeout,
		tokenTTL: tokenTTL,
	}
}

func (a *Acquirer) Acquire(ctx context.Context, market models.MarketContext) (ports.Credential, error) {
	const op = "browser.Acquire"

	ctx, cancel := context.WithTimeout(ctx, a.timeout)
	defer cancel()

	logger := a.log.With(zap.String("op", op), zap.String("market", string(market.Code)))
	logger.Info("no valid cached credential, capturing from browser session")

	opts := append(chromedp.DefaultExecAllocatorOptions[:],
		chromedp.Flag("headless", a.headless),
	)
	allocCtx, cancelAlloc := chromedp.NewExecAllocator(ctx, opts...)
	defer cancelAlloc()

	browserCtx, cancelBrowser := chromedp.NewContext(allocCtx)
	defer cancelBrowser()

	watcher := newTokenWatcher()
	chromedp.ListenTarget(browserCtx, func(ev interface{}) {
		e, ok := ev.(*network.EventRequestWillBeSent)
		if !ok || !observedAPIRequest(e.Request.URL) || !e.Request.HasPostData {
			return
		}
		requestID := e.RequestID
		go func() {
			c := chromedp.FromContext(browserCtx)
			execCtx := cdp.WithExecutor(browserCtx, c.Target)
			body, err := network.GetRequestPostData(requestID).Do(execCtx)
			if err != nil {
				return
			}
			if tok := tokenFromRequestBody(body); tok != "" {
				watcher.offer(tok)
			}
		}()
	})

	startActions := []chromedp.Action{network.Enable()}
	if restore := a.restoreSessionAction(ctx, market); restore != nil {
		startActions = append(startActions, restore)
	}
	startActions = append(startActions, chromedp.Navigate(productURLWithBuster(market)))

	if err := chromedp.Run(browserCtx, startActions...); err != nil {
		return ports.Credential{}, fmt.Errorf("%s: navigate: %w", op, err)
	}

	token := watcher.wait(ctx, firstObserveWait)

	if token == "" {
		// The app did not call out on its own; trigger the catalog request
		// it would normally fire.
		var triggered bool
		if err := chromedp.Run(browserCtx, chromedp.Evaluate(triggerCatalogJS, &triggered)); err != nil {
			logger.Debug("catalog trigger failed", zap.Error(err))
		}
		token = watcher.wait(ctx, triggeredWait)
	}

	if token == "" {
		logger.Info("no credential after first pass, reloading with a new cache buster")
		if err := chromedp.Run(browserCtx, chromedp.Navigate(productURLWithBuster(market))); err != nil {
			logger.Debug("reload failed", zap.Error(err))
		}
		token = watcher.wait(ctx, reloadObserveWait)
	}

	if token == "" {
		var html string
		if err := chromedp.Run(browserCtx, chromedp.OuterHTML("html", &html)); err == nil {
			if m := tokenPattern.FindStringSubmatch(html); len(m) == 2 {
				token = m[1]
				logger.Info("credential found embedded in page markup")
			}
		}
	}

	// Persist cookies regardless of outcome so the next capture starts warm.
	a.persistSession(browserCtx, market, logger)

	if token == "" {
		return ports.Credential{}, fmt.Errorf("%s: %w", op, derr.ErrCredentialUnavailable)
	}

	logger.Info("credential captured")
	return ports.Credential{
		Token:     token,
		ExpiresAt: time.Now().Add(a.tokenTTL),
	}, nil
}

func (a *Acquirer) restoreSessionAction(ctx context.Context, market models.MarketContext) chromedp.Action {
	if a.sessions == nil {
		return nil
	}

	snapshot, err := a.sessions.Load(ctx, market.Code)
	if err != nil {
		if !errors.Is(err, derr.ErrSessionNotFound) {
			a.log.Warn("session snapshot load failed", zap.Error(err))
		}
		return nil
	}

	var cookies []*network.CookieParam
	if err := json.Unmarshal(snapshot, &cookies); err != nil || len(cookies) == 0 {
		return nil
	}

	return storage.SetCookies(cookies)
}

func (a *Acquirer) persistSession(browserCtx context.Context, market models.MarketContext, logger *zap.Logger) {
	if a.sessions == nil {
		return
	}

	var cookies []*network.Cookie
	err := chromedp.Run(browserCtx, chromedp.ActionFunc(func(ctx context.Context) error {
		var err error
		cookies, err = storage.GetCookies().Do(ctx)
		return err
	}))
	if err != nil || len(cookies) == 0 {
		return
	}

	params := make([]*network.CookieParam, 0, len(cookies))
	for _, c := range cookies {
		p := &network.CookieParam{
			Name:     c.Name,
			Value:    c.Value,
			Domain:   c.Domain,
			Path:     c.Path,
			Secure:   c.Secure,
			HTTPOnly: c.HTTPOnly,
		}
		if c.Expires > 0 {
			expires := cdp.TimeSinceEpoch(time.Unix(int64(c.Expires), 0))
			p.Expires = &expires
		}
		params = append(params, p)
	}

	snapshot, err := json.Marshal(params)
	if err != nil {
		return
	}

	// The browser context may already be cancelled; the snapshot write gets
	// its own short deadline.
	saveCtx, cancel := context.WithTimeout(context.WithoutCancel(browserCtx), 3*time.Second)
	defer cancel()
	if err := a.sessions.Save(saveCtx, market.Code, snapshot); err != nil {
		logger.Warn("session snapshot save failed", zap.Error(err))
	}
}

func observedAPIRequest(url string) bool {
	for _, p := range observedAPIPaths {
		if strings.Contains(url, p) {
			return true
		}
	}
	return false
}

func tokenFromRequestBody(body string) string {
	var payload struct {
		Token string `json:"token"`
	}
	if err := json.Unmarshal([]byte(body), &payload); err != nil {
		return ""
	}
	return strings.TrimSpace(payload.Token)
}

func productURLWithBuster(market models.MarketContext) string {
	return fmt.Sprintf("%s?_rsc=%s", market.ProductURL(), randomBuster(5))
}

func randomBuster(n int) string {
	const alphabet = "abcdefghijklmnopqrstuvwxyz0123456789"
	b := make([]byte, n)
	for i := range b {
		b[i] = alphabet[rand.Intn(len(alphabet))]
	}
	return string(b)
}

// tokenWatcher hands the first observed token to whoever is waiting.
type tokenWatcher struct {
	mu    sync.Mutex
	token string
	found chan struct{}
}

func newTokenWatcher() *tokenWatcher {
	return &tokenWatcher{found: make(chan struct{})}
}

func (w *tokenWatcher) offer(token string) {
	w.mu.Lock()
	defer w.mu.Unlock()
	if w.token != "" {
		return
	}
	w.token = token
	close(w.found)
}

// wait blocks until a token arrives, the interval elapses, or the context
// ends, and returns whatever is held at that point.
func (w *tokenWatcher) wait(ctx context.Context, interval time.Duration) string {
	select {
	case <-w.found:
	case <-time.After(interval):
	case <-ctx.Done():
	}

	w.mu.Lock()
	defer w.mu.Unlock()
	return w.token
}
