package firemon

import (
	"context"
	"fmt"
	"net/http"
	"strconv"
	"sync"

	"github.com/cenkalti/backoff/v4"
	"github.com/hashicorp/go-hclog"
	"golang.org/x/time/rate"

	"github.com/fmapi/firemon-api-go/internal/version"
)

// Well-known FireMon applications.
const (
	AppSecurityManager        = "securitymanager"
	AppPolicyPlanner          = "policyplanner"
	AppPolicyOptimizer        = "policyoptimizer"
	AppGlobalPolicyController = "globalpolicycontroller"
)

// Client is an authenticated FireMon session.
type Client struct {
	cfg       *Config
	http      *http.Client
	log       hclog.Logger
	limiter   *rate.Limiter
	baseURL   string
	userAgent string

	mu                sync.RWMutex
	fmosVersion       string
	domainID          int
	domainName        string
	domainDescription string
}

// New logs in to FireMon and returns a client bound to cfg.DomainID.
// A domain that cannot be verified is logged and kept.
func New(ctx context.Context, cfg *Config) (*Client, error) {
	if cfg == nil {
		return nil, fmt.Errorf("%w: config is required", ErrInvalidArgument)
	}
	cfg.applyDefaults()
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid firemon config: %w", err)
	}

	httpClient, err := cfg.NewHTTPClient()
	if err != nil {
		return nil, err
	}

	c := &Client{
		cfg:       cfg,
		http:      httpClient,
		log:       cfg.Logger.Named("firemon"),
		baseURL:   cfg.BaseURL(),
		userAgent: cfg.UserAgent,
		domainID:  cfg.DomainID,
	}
	if c.userAgent == "" {
		c.userAgent = "firemon-api-go/" + version.Version
	}
	if cfg.RateLimit > 0 {
		burst := int(cfg.RateLimit)
		if burst < 1 {
			burst = 1
		}
		c.limiter = rate.NewLimiter(rate.Limit(cfg.RateLimit), burst)
	}

	if err := c.login(ctx); err != nil {
		return nil, err
	}

	versions, err := c.Versions(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to get FireMon version: %w", err)
	}
	c.fmosVersion = versions.Str("fmosVersion")

	if err := c.verifyDomain(ctx, c.domainID); err != nil {
		c.log.Warn("unable to verify domain, keeping it", "domain_id", c.domainID, "error", err)
	}

	c.log.Info("connected to FireMon",
		"host", cfg.Host,
		"version", c.fmosVersion,
		"domain_id", c.domainID,
	)
	return c, nil
}

func (c *Client) login(ctx context.Context) error {
	c.log.Debug("authenticating", "host", c.cfg.Host, "username", c.cfg.Username)

	_, err := c.NewRequest(c.AppURL(AppSecurityManager), WithKey("authentication/login")).
		Post(ctx, JSONBody(map[string]string{
			"username": c.cfg.Username,
			"password": c.cfg.Password,
		}))
	if err != nil {
		if IsRequestError(err, http.StatusUnauthorized, http.StatusForbidden) {
			return fmt.Errorf("%w: %s", ErrAuthentication, err)
		}
		return fmt.Errorf("failed to log in to %s: %w", c.cfg.Host, err)
	}
	return nil
}

// Versions returns every component version reported by the server.
func (c *Client) Versions(ctx context.Context) (Record, error) {
	return c.NewRequest(c.AppURL(AppSecurityManager), WithKey("version")).Record(ctx, nil)
}

func (c *Client) verifyDomain(ctx context.Context, id int) error {
	rec, err := c.NewRequest(c.AppURL(AppSecurityManager), WithKey("domain/"+strconv.Itoa(id))).
		Record(ctx, nil)
	if err != nil {
		return err
	}

	c.mu.Lock()
	c.domainName = rec.Str("name")
	c.domainDescription = rec.Str("description")
	c.mu.Unlock()
	return nil
}

// SetDomain switches the working domain. The id is set even when it cannot
// be verified; the verification error is returned in that case.
func (c *Client) SetDomain(ctx context.Context, id int) error {
	if id < 1 {
		return fmt.Errorf("%w: domain id must be positive, got %d", ErrInvalidArgument, id)
	}

	err := c.verifyDomain(ctx, id)

	c.mu.Lock()
	c.domainID = id
	if err != nil {
		c.domainName, c.domainDescription = "", ""
	}
	c.mu.Unlock()

	if err != nil {
		c.log.Warn("unable to verify domain, setting it anyway", "domain_id", id, "error", err)
		return fmt.Errorf("failed to verify domain %d: %w", id, err)
	}
	return nil
}

// DomainID returns the working domain.
func (c *Client) DomainID() int {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.domainID
}

// Domain returns the working domain name and description, empty when the
// domain could not be verified.
func (c *Client) Domain() (name, description string) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.domainName, c.domainDescription
}

// Version returns the FMOS version.
func (c *Client) Version() string { return c.fmosVersion }

// Host returns the configured host.
func (c *Client) Host() string { return c.cfg.Host }

// Username returns the session user.
func (c *Client) Username() string { return c.cfg.Username }

// BaseURL returns the scheme and host the API lives under.
func (c *Client) BaseURL() string { return c.baseURL }

// Config returns the client configuration.
func (c *Client) Config() *Config { return c.cfg }

// Logger returns the client logger.
func (c *Client) Logger() hclog.Logger { return c.log }

// HTTPClient returns the session HTTP client.
func (c *Client) HTTPClient() *http.Client { return c.http }

// AppURL returns the API root of a FireMon application.
func (c *Client) AppURL(name string) string {
	return fmt.Sprintf("%s/%s/api", c.baseURL, name)
}

// App returns a handle for a FireMon application.
func (c *Client) App(name string) *App {
	return &App{client: c, name: name}
}

// PolicyOptimizer returns the Policy Optimizer application.
func (c *Client) PolicyOptimizer() *App { return c.App(AppPolicyOptimizer) }

// GPC returns the Global Policy Controller application.
func (c *Client) GPC() *App { return c.App(AppGlobalPolicyController) }

func (c *Client) String() string {
	return fmt.Sprintf("FMOS: %s ver. %s", c.cfg.Host, c.fmosVersion)
}

// wait blocks until the rate limiter allows another request.
func (c *Client) wait(ctx context.Context) error {
	if c.limiter == nil {
		return ctx.Err()
	}
	if err := c.limiter.Wait(ctx); err != nil {
		return fmt.Errorf("rate limiter: %w", err)
	}
	return nil
}

// newBackOff returns the retry policy for one request.
func (c *Client) newBackOff(ctx context.Context) backoff.BackOff {
	b := backoff.NewExponentialBackOff()
	b.InitialInterval = c.cfg.RetryMinWait
	b.MaxInterval = c.cfg.RetryMaxWait
	b.Multiplier = 2
	b.RandomizationFactor = 0
	b.MaxElapsedTime = 0

	retries := c.cfg.MaxAttempts - 1
	if retries < 0 {
		retries = 0
	}
	return backoff.WithContext(backoff.WithMaxRetries(b, uint64(retries)), ctx)
}
