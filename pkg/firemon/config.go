package firemon

import (
	"crypto/tls"
	"crypto/x509"
	"fmt"
	"net"
	"net/http"
	"net/http/cookiejar"
	"net/url"
	"os"
	"strconv"
	"strings"
	"time"

	validation "github.com/go-ozzo/ozzo-validation/v4"
	"github.com/hashicorp/go-hclog"
)

// Config contains configuration for a FireMon client.
//
// Example configuration (HCL):
//
//	profile "lab" {
//	  host       = "fmos.example.com"
//	  username   = "firemon"
//	  password   = env("FIREMON_PASSWORD")
//	  domain_id  = 1
//	  tls_verify = false
//	}
type Config struct {
	// Host is the FireMon server. A bare host name gets an https scheme.
	Host string `hcl:"host" json:"host"`

	Username string `hcl:"username" json:"username"`
	Password string `hcl:"password" json:"-"`

	// DomainID is the working domain. Default: 1
	DomainID int `hcl:"domain_id,optional" json:"domainId,omitempty"`

	// Timeout for a single HTTP request. Default: 20 seconds
	Timeout time.Duration `json:"timeout,omitempty"`

	// TLSVerify controls certificate verification. Default: true
	TLSVerify *bool `hcl:"tls_verify,optional" json:"tlsVerify,omitempty"`

	// CACertFile is a PEM bundle added to the system roots.
	CACertFile string `hcl:"ca_cert_file,optional" json:"caCertFile,omitempty"`

	// Proxy is an http(s) proxy URL used for all requests.
	Proxy string `hcl:"proxy,optional" json:"proxy,omitempty"`

	// MaxAttempts is the number of tries for a request that fails in transport.
	// Default: 5
	MaxAttempts int `hcl:"max_attempts,optional" json:"maxAttempts,omitempty"`

	// RetryMinWait and RetryMaxWait clamp the exponential wait between attempts.
	// Default: 4s and 10s
	RetryMinWait time.Duration `json:"retryMinWait,omitempty"`
	RetryMaxWait time.Duration `json:"retryMaxWait,omitempty"`

	// PageSize for paged GET requests. Default: 100
	PageSize int `hcl:"page_size,optional" json:"pageSize,omitempty"`

	// Concurrency is the number of pages fetched at once. Default: 4
	Concurrency int `hcl:"concurrency,optional" json:"concurrency,omitempty"`

	// RateLimit is the maximum requests per second. Zero disables limiting.
	RateLimit float64 `hcl:"rate_limit,optional" json:"rateLimit,omitempty"`

	// ControlPanelPort is where the Control Panel API listens. Default: 55555
	ControlPanelPort int `hcl:"control_panel_port,optional" json:"controlPanelPort,omitempty"`

	// ControlPanelURL overrides the URL derived from Host and ControlPanelPort.
	ControlPanelURL string `hcl:"control_panel_url,optional" json:"controlPanelUrl,omitempty"`

	// UserAgent overrides the default "firemon-api-go/<version>".
	UserAgent string `hcl:"user_agent,optional" json:"userAgent,omitempty"`

	Logger     hclog.Logger `json:"-"`
	HTTPClient *http.Client `json:"-"`
}

// DefaultConfig returns a Config with sensible defaults.
func DefaultConfig() *Config {
	tlsVerify := true
	return &Config{
		DomainID:         1,
		Timeout:          20 * time.Second,
		TLSVerify:        &tlsVerify,
		MaxAttempts:      5,
		RetryMinWait:     4 * time.Second,
		RetryMaxWait:     10 * time.Second,
		PageSize:         100,
		Concurrency:      4,
		ControlPanelPort: 55555,
	}
}

// applyDefaults fills every zero field from DefaultConfig.
func (c *Config) applyDefaults() {
	d := DefaultConfig()
	if c.DomainID == 0 {
		c.DomainID = d.DomainID
	}
	if c.Timeout == 0 {
		c.Timeout = d.Timeout
	}
	if c.TLSVerify == nil {
		c.TLSVerify = d.TLSVerify
	}
	if c.MaxAttempts == 0 {
		c.MaxAttempts = d.MaxAttempts
	}
	if c.RetryMinWait == 0 {
		c.RetryMinWait = d.RetryMinWait
	}
	if c.RetryMaxWait == 0 {
		c.RetryMaxWait = d.RetryMaxWait
	}
	if c.PageSize == 0 {
		c.PageSize = d.PageSize
	}
	if c.Concurrency == 0 {
		c.Concurrency = d.Concurrency
	}
	if c.ControlPanelPort == 0 {
		c.ControlPanelPort = d.ControlPanelPort
	}
	if c.Logger == nil {
		c.Logger = hclog.NewNullLogger()
	}
}

// Validate checks if the configuration is valid.
func (c *Config) Validate() error {
	if err := validation.ValidateStruct(c,
		validation.Field(&c.Host, validation.Required),
		validation.Field(&c.Username, validation.Required),
		validation.Field(&c.Password, validation.Required),
		validation.Field(&c.DomainID, validation.Min(1)),
		validation.Field(&c.MaxAttempts, validation.Min(1)),
		validation.Field(&c.PageSize, validation.Min(1)),
		validation.Field(&c.Concurrency, validation.Min(1)),
		validation.Field(&c.RateLimit, validation.Min(0.0)),
		validation.Field(&c.ControlPanelPort, validation.Min(1), validation.Max(65535)),
	); err != nil {
		return err
	}

	if c.Timeout <= 0 {
		return fmt.Errorf("timeout must be positive, got: %v", c.Timeout)
	}
	if c.RetryMinWait < 0 || c.RetryMaxWait < c.RetryMinWait {
		return fmt.Errorf("retry wait must satisfy 0 <= min <= max, got: %v..%v",
			c.RetryMinWait, c.RetryMaxWait)
	}

	base, err := url.Parse(c.BaseURL())
	if err != nil {
		return fmt.Errorf("invalid host: %w", err)
	}
	if base.Scheme != "http" && base.Scheme != "https" {
		return fmt.Errorf("host must use http or https scheme, got: %s", base.Scheme)
	}

	if c.Proxy != "" {
		if _, err := url.Parse(c.Proxy); err != nil {
			return fmt.Errorf("invalid proxy: %w", err)
		}
	}

	return nil
}

// BaseURL returns the scheme and host every app URL is built on.
func (c *Config) BaseURL() string {
	host := strings.TrimRight(c.Host, "/")
	if strings.Contains(host, "://") {
		return host
	}
	return "https://" + host
}

// ControlPanelBaseURL returns the Control Panel API root.
func (c *Config) ControlPanelBaseURL() string {
	if c.ControlPanelURL != "" {
		return strings.TrimRight(c.ControlPanelURL, "/")
	}

	hostname := c.Host
	if u, err := url.Parse(c.BaseURL()); err == nil {
		hostname = u.Hostname()
	}
	port := c.ControlPanelPort
	if port == 0 {
		port = DefaultConfig().ControlPanelPort
	}
	return "https://" + net.JoinHostPort(hostname, strconv.Itoa(port)) + "/api"
}

// NewHTTPClient creates the HTTP client used for the session. The client
// keeps the session cookie between requests.
func (c *Config) NewHTTPClient() (*http.Client, error) {
	if c.HTTPClient != nil {
		if c.HTTPClient.Jar == nil {
			jar, err := cookiejar.New(nil)
			if err != nil {
				return nil, fmt.Errorf("failed to create cookie jar: %w", err)
			}
			c.HTTPClient.Jar = jar
		}
		return c.HTTPClient, nil
	}

	transport := &http.Transport{
		Proxy:               http.ProxyFromEnvironment,
		MaxIdleConns:        100,
		MaxIdleConnsPerHost: 10,
		IdleConnTimeout:     90 * time.Second,
		TLSHandshakeTimeout: 10 * time.Second,
	}

	tlsConfig := &tls.Config{MinVersion: tls.VersionTLS12}
	if c.TLSVerify != nil && !*c.TLSVerify {
		tlsConfig.InsecureSkipVerify = true
	}
	if c.CACertFile != "" {
		pem, err := os.ReadFile(c.CACertFile)
		if err != nil {
			return nil, fmt.Errorf("failed to read ca_cert_file: %w", err)
		}
		pool, err := x509.SystemCertPool()
		if err != nil || pool == nil {
			pool = x509.NewCertPool()
		}
		if !pool.AppendCertsFromPEM(pem) {
			return nil, fmt.Errorf("no certificates found in %s", c.CACertFile)
		}
		tlsConfig.RootCAs = pool
	}
	transport.TLSClientConfig = tlsConfig

	if c.Proxy != "" {
		proxyURL, err := url.Parse(c.Proxy)
		if err != nil {
			return nil, fmt.Errorf("invalid proxy: %w", err)
		}
		transport.Proxy = http.ProxyURL(proxyURL)
	}

	jar, err := cookiejar.New(nil)
	if err != nil {
		return nil, fmt.Errorf("failed to create cookie jar: %w", err)
	}

	return &http.Client{
		Timeout:   c.Timeout,
		Transport: transport,
		Jar:       jar,
	}, nil
}
