package payout

import (
	"context"
	"fmt"
	"net"
	"net/url"
	"strings"
	"time"

	sonic "github.com/bytedance/sonic"
	crerr "github.com/cockroachdb/errors"
	domain "github.com/riskibarqy/pickleball-fantasy/internal/domain/payout"
	"github.com/riskibarqy/pickleball-fantasy/internal/platform/cache"
	"github.com/riskibarqy/pickleball-fantasy/internal/platform/logging"
	"github.com/riskibarqy/pickleball-fantasy/internal/platform/resilience"
	"github.com/shopspring/decimal"
	"github.com/valyala/bytebufferpool"
	"github.com/valyala/fasthttp"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"
	"golang.org/x/time/rate"
)

var (
	errPayoutTransient = crerr.New("payout provider transient failure")
	ErrRejected        = crerr.New("payout provider rejected request")
)

type ClientConfig struct {
	BaseURL        string
	Token          string
	Timeout        time.Duration
	RatePerSecond  float64
	CircuitBreaker resilience.CircuitBreakerConfig
	// AccountCacheTTL keeps found bank accounts for repeated lookups. Zero disables caching.
	AccountCacheTTL time.Duration
	Logger          *logging.Logger

	// Dial overrides the network dialer. Tests use it with an in-memory listener.
	Dial func(addr string) (net.Conn, error)
}

// Client talks to the payout provider's REST API.
type Client struct {
	http    *fasthttp.Client
	baseURL string
	token   string
	timeout time.Duration
	limiter *rate.Limiter
	breaker *resilience.CircuitBreaker
	// accounts is nil when caching is disabled.
	accounts *cache.Store[domain.Account]
	logger   *logging.Logger
}

var errAccountNotFound = crerr.New("payout account not found")

func NewClient(cfg ClientConfig) (*Client, error) {
	baseURL, err := validateHTTPBaseURL(cfg.BaseURL)
	if err != nil {
		return nil, crerr.Wrap(err, "invalid PAYOUT_BASE_URL")
	}
	timeout := cfg.Timeout
	if timeout <= 0 {
		timeout = 10 * time.Second
	}
	logger := cfg.Logger
	if logger == nil {
		logger = logging.Default()
	}
	limit := rate.Inf
	if cfg.RatePerSecond > 0 {
		limit = rate.Limit(cfg.RatePerSecond)
	}

	var accounts *cache.Store[domain.Account]
	if cfg.AccountCacheTTL > 0 {
		accounts = cache.NewStore[domain.Account](cfg.AccountCacheTTL)
	}

	return &Client{
		http: &fasthttp.Client{
			Name:                "pickleball-fantasy-payout",
			ReadTimeout:         timeout,
			WriteTimeout:        timeout,
			MaxIdleConnDuration: time.Minute,
			Dial:                cfg.Dial,
		},
		baseURL: baseURL,
		token:   strings.TrimSpace(cfg.Token),
		timeout: timeout,
		limiter: rate.NewLimiter(limit, 1),
		breaker:  resilience.NewCircuitBreaker(cfg.CircuitBreaker),
		accounts: accounts,
		logger:   logger.Named("payout"),
	}, nil
}

type accountResponse struct {
	UserID        string `json:"userId"`
	BankCode      string `json:"bankCode"`
	AccountNumber string `json:"accountNumber"`
	HolderName    string `json:"holderName"`
}

type transferPayload struct {
	ReferenceID   string          `json:"referenceId"`
	ContestID     string          `json:"contestId"`
	UserID        string          `json:"userId"`
	Amount        decimal.Decimal `json:"amount"`
	BankCode      string          `json:"bankCode"`
	AccountNumber string          `json:"accountNumber"`
	HolderName    string          `json:"holderName"`
}

type transferResponse struct {
	TransactionRef string `json:"transactionRef"`
	Status         string `json:"status"`
}

func (c *Client) LookupAccount(ctx context.Context, userID string) (domain.Account, bool, error) {
	userID = strings.TrimSpace(userID)
	if userID == "" {
		return domain.Account{}, false, crerr.New("user id is required")
	}

	var (
		acct domain.Account
		err  error
	)
	if c.accounts != nil {
		acct, err = c.accounts.GetOrLoad(ctx, userID, func(ctx context.Context) (domain.Account, error) {
			return c.fetchAccount(ctx, userID)
		})
	} else {
		acct, err = c.fetchAccount(ctx, userID)
	}
	if crerr.Is(err, errAccountNotFound) {
		return domain.Account{}, false, nil
	}
	if err != nil {
		return domain.Account{}, false, err
	}
	return acct, true, nil
}

func (c *Client) fetchAccount(ctx context.Context, userID string) (domain.Account, error) {
	var out accountResponse
	status, err := c.do(ctx, fasthttp.MethodGet, "/v1/accounts/"+url.PathEscape(userID), "", nil, &out)
	if status == fasthttp.StatusNotFound {
		return domain.Account{}, errAccountNotFound
	}
	if err != nil {
		return domain.Account{}, crerr.Wrapf(err, "lookup payout account user_id=%s", userID)
	}

	return domain.Account{
		UserID:        firstNonEmpty(out.UserID, userID),
		BankCode:      out.BankCode,
		AccountNumber: out.AccountNumber,
		HolderName:    out.HolderName,
	}, nil
}

// Transfer requests a bank transfer. The disbursement id is sent as the
// idempotency key so a retried request cannot pay twice.
func (c *Client) Transfer(ctx context.Context, req domain.TransferRequest) (domain.TransferResult, error) {
	if strings.TrimSpace(req.DisbursementID) == "" {
		return domain.TransferResult{}, crerr.New("disbursement id is required")
	}
	if !req.Amount.IsPositive() {
		return domain.TransferResult{}, crerr.Newf("transfer amount must be > 0, got %s", req.Amount)
	}

	payload := transferPayload{
		ReferenceID:   req.DisbursementID,
		ContestID:     req.ContestID,
		UserID:        req.UserID,
		Amount:        req.Amount,
		BankCode:      req.Account.BankCode,
		AccountNumber: req.Account.AccountNumber,
		HolderName:    req.Account.HolderName,
	}

	var out transferResponse
	if _, err := c.do(ctx, fasthttp.MethodPost, "/v1/transfers", req.DisbursementID, payload, &out); err != nil {
		return domain.TransferResult{}, crerr.Wrapf(err, "transfer disbursement_id=%s", req.DisbursementID)
	}
	if strings.TrimSpace(out.TransactionRef) == "" {
		return domain.TransferResult{}, crerr.Newf("transfer disbursement_id=%s: empty transaction reference", req.DisbursementID)
	}
	return domain.TransferResult{TransactionRef: out.TransactionRef}, nil
}

func (c *Client) do(ctx context.Context, method, path, idempotencyKey string, payload, out any) (int, error) {
	if err := c.limiter.Wait(ctx); err != nil {
		return 0, crerr.Wrap(err, "wait for payout rate limit")
	}

	status := 0
	err := c.breaker.Execute(ctx, func(ctx context.Context) error {
		var callErr error
		status, callErr = c.roundTrip(ctx, method, path, idempotencyKey, payload, out)
		return callErr
	}, isTransient)
	if crerr.Is(err, resilience.ErrCircuitOpen) {
		c.logger.WarnContext(ctx, "payout circuit breaker rejected request", "path", path, "state", c.breaker.State())
	}
	return status, err
}

func (c *Client) roundTrip(ctx context.Context, method, path, idempotencyKey string, payload, out any) (int, error) {
	req := fasthttp.AcquireRequest()
	resp := fasthttp.AcquireResponse()
	defer fasthttp.ReleaseRequest(req)
	defer fasthttp.ReleaseResponse(resp)

	endpoint := c.baseURL + path
	req.SetRequestURI(endpoint)
	req.Header.SetMethod(method)
	req.Header.Set(fasthttp.HeaderAccept, "application/json")
	if c.token != "" {
		req.Header.Set(fasthttp.HeaderAuthorization, "Bearer "+c.token)
	}
	if idempotencyKey != "" {
		req.Header.Set("Idempotency-Key", idempotencyKey)
	}

	if payload != nil {
		buf := bytebufferpool.Get()
		defer bytebufferpool.Put(buf)
		if err := sonic.ConfigDefault.NewEncoder(buf).Encode(payload); err != nil {
			return 0, crerr.Wrap(err, "encode payout request")
		}
		req.Header.SetContentType("application/json")
		req.SetBody(buf.B)
	}

	span := trace.SpanFromContext(ctx)
	if span.IsRecording() {
		span.SetAttributes(
			attribute.String("payout.method", method),
			attribute.String("payout.path", path),
		)
	}

	deadline := time.Now().Add(c.timeout)
	if d, ok := ctx.Deadline(); ok && d.Before(deadline) {
		deadline = d
	}
	started := time.Now()
	if err := c.http.DoDeadline(req, resp, deadline); err != nil {
		return 0, fmt.Errorf("%w: %s %s: %v", errPayoutTransient, method, endpoint, err)
	}

	status := resp.StatusCode()
	c.logger.DebugContext(ctx, "payout provider call",
		"method", method,
		"path", path,
		"status", status,
		"duration_ms", time.Since(started).Milliseconds(),
	)
	if span.IsRecording() {
		span.SetAttributes(attribute.Int("payout.status_code", status))
	}

	body := resp.Body()
	switch {
	case status >= 500 || status == fasthttp.StatusTooManyRequests:
		return status, fmt.Errorf("%w: %s %s status=%d body=%s", errPayoutTransient, method, path, status, truncateForLog(string(body), 512))
	case status/100 != 2:
		return status, crerr.Wrapf(ErrRejected, "%s %s status=%d body=%s", method, path, status, truncateForLog(string(body), 512))
	}

	if out != nil && len(body) > 0 {
		if err := sonic.Unmarshal(body, out); err != nil {
			return status, crerr.Wrap(err, "decode payout response")
		}
	}
	return status, nil
}

// isTransient marks failures that should count against the circuit breaker.
func isTransient(err error) bool {
	return crerr.Is(err, errPayoutTransient)
}

func validateHTTPBaseURL(raw string) (string, error) {
	raw = strings.TrimRight(strings.TrimSpace(raw), "/")
	if raw == "" {
		return "", crerr.New("base url is required")
	}
	parsed, err := url.Parse(raw)
	if err != nil {
		return "", crerr.Wrap(err, "parse base url")
	}
	if parsed.Scheme != "http" && parsed.Scheme != "https" {
		return "", crerr.Newf("base url must use http or https, got %q", parsed.Scheme)
	}
	if parsed.Host == "" {
		return "", crerr.New("base url host is required")
	}
	return raw, nil
}

func truncateForLog(v string, limit int) string {
	if len(v) <= limit {
		return v
	}
	return v[:limit] + "...(truncated)"
}

func firstNonEmpty(values ...string) string {
	for _, v := range values {
		if strings.TrimSpace(v) != "" {
			return v
		}
	}
	return ""
}
