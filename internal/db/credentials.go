package db

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"
	"sync"
	"time"

	"golang.org/x/term"

	"github.com/vvka-141/pg2duck/pkg/pg2duck"
)

// errNoPassword is returned by a provider that has nothing to offer, so a
// ChainProvider moves on to the next one.
var errNoPassword = errors.New("no password available")

// StaticProvider returns a fixed password, typically from $PGPASSWORD.
type StaticProvider struct {
	password string
	source   string
}

// NewStaticProvider creates a provider for a known password. source names
// where it came from, for logging.
func NewStaticProvider(password, source string) *StaticProvider {
	return &StaticProvider{password: password, source: source}
}

func (p *StaticProvider) Password(ctx context.Context) (string, time.Time, error) {
	if p.password == "" {
		return "", time.Time{}, errNoPassword
	}
	return p.password, time.Time{}, nil
}

func (p *StaticProvider) String() string {
	return fmt.Sprintf("Static(%s)", p.source)
}

// PromptProvider asks for the password on the terminal with echo disabled.
type PromptProvider struct {
	username string
	out      io.Writer
	read     func() ([]byte, error)
}

// NewPromptProvider creates a provider reading from the process's terminal.
func NewPromptProvider(username string) *PromptProvider {
	fd := int(os.Stdin.Fd())
	return &PromptProvider{
		username: username,
		out:      os.Stderr,
		read:     func() ([]byte, error) { return term.ReadPassword(fd) },
	}
}

func (p *PromptProvider) Password(ctx context.Context) (string, time.Time, error) {
	fmt.Fprintf(p.out, "Username %s, please enter your password: ", p.username)
	secret, err := p.read()
	fmt.Fprintln(p.out)
	if err != nil {
		return "", time.Time{}, fmt.Errorf("failed to read password: %w", err)
	}
	// An empty answer is a valid password for trust-authenticated servers.
	return strings.TrimRight(string(secret), "\r\n"), time.Time{}, nil
}

func (p *PromptProvider) String() string {
	return fmt.Sprintf("Prompt(user=%s)", p.username)
}

// ChainProvider returns the first password any of its providers yields.
type ChainProvider struct {
	providers []pg2duck.CredentialProvider
}

// NewChainProvider creates a chain tried in order.
func NewChainProvider(providers ...pg2duck.CredentialProvider) *ChainProvider {
	return &ChainProvider{providers: providers}
}

func (c *ChainProvider) Password(ctx context.Context) (string, time.Time, error) {
	var errs []error
	for _, p := range c.providers {
		password, expiresOn, err := p.Password(ctx)
		if err == nil {
			return password, expiresOn, nil
		}
		if !errors.Is(err, errNoPassword) {
			errs = append(errs, fmt.Errorf("%s: %w", p, err))
		}
	}
	if len(errs) > 0 {
		return "", time.Time{}, fmt.Errorf("%w: %w", pg2duck.ErrCredentialsUnavailable, errors.Join(errs...))
	}
	return "", time.Time{}, pg2duck.ErrCredentialsUnavailable
}

func (c *ChainProvider) String() string {
	names := make([]string, len(c.providers))
	for i, p := range c.providers {
		names[i] = p.String()
	}
	return "Chain(" + strings.Join(names, ", ") + ")"
}

// expiryMargin is how long before expiry a cached secret is refreshed.
const expiryMargin = time.Minute

// CachedProvider asks its inner provider once and reuses the answer until
// shortly before it expires.
type CachedProvider struct {
	inner pg2duck.CredentialProvider
	now   func() time.Time

	mu        sync.Mutex
	password  string
	expiresOn time.Time
	cached    bool
}

// NewCachedProvider wraps inner.
func NewCachedProvider(inner pg2duck.CredentialProvider) *CachedProvider {
	return &CachedProvider{inner: inner, now: time.Now}
}

func (c *CachedProvider) Password(ctx context.Context) (string, time.Time, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.cached && (c.expiresOn.IsZero() || c.now().Add(expiryMargin).Before(c.expiresOn)) {
		return c.password, c.expiresOn, nil
	}

	password, expiresOn, err := c.inner.Password(ctx)
	if err != nil {
		return "", time.Time{}, err
	}
	c.password, c.expiresOn, c.cached = password, expiresOn, true
	return password, expiresOn, nil
}

func (c *CachedProvider) String() string {
	return "Cached(" + c.inner.String() + ")"
}

// ProviderOptions controls which standard providers NewCredentialProvider
// may use.
type ProviderOptions struct {
	// Interactive allows falling back to a terminal prompt.
	Interactive bool
	// PassFile overrides the password file location ($PGPASSFILE).
	PassFile string
}

// NewCredentialProvider builds the provider for cfg.AuthMethod. The result
// is always cached so the password is asked for at most once per run.
//
// Standard authentication tries, in order: the resolved password
// ($PGPASSWORD or DATABASE_URL), the password file, and the prompt.
func NewCredentialProvider(cfg *pg2duck.ConnectionConfig, opts ProviderOptions) (pg2duck.CredentialProvider, error) {
	switch cfg.AuthMethod {
	case pg2duck.AuthMethodStandard:
		chain := []pg2duck.CredentialProvider{
			NewStaticProvider(cfg.Password, "PGPASSWORD"),
			NewPgpassProvider(opts.PassFile, cfg),
		}
		if opts.Interactive {
			chain = append(chain, NewPromptProvider(cfg.Username))
		}
		return NewCachedProvider(NewChainProvider(chain...)), nil

	case pg2duck.AuthMethodAWSIAM:
		p, err := NewAWSIAMTokenProvider(fmt.Sprintf("%s:%d", cfg.Host, cfg.Port), cfg.AWSRegion, cfg.Username)
		if err != nil {
			return nil, fmt.Errorf("failed to create AWS IAM token provider: %w", err)
		}
		return NewCachedProvider(p), nil

	case pg2duck.AuthMethodAzureEntraID:
		if cfg.AzureTenantID != "" && cfg.AzureClientID != "" && cfg.AzureClientSecret != "" {
			p, err := NewAzureServicePrincipalProvider(cfg.AzureTenantID, cfg.AzureClientID, cfg.AzureClientSecret)
			if err != nil {
				return nil, fmt.Errorf("failed to create Azure Service Principal provider: %w", err)
			}
			return NewCachedProvider(p), nil
		}
		p, err := NewAzureDefaultCredentialProvider()
		if err != nil {
			return nil, fmt.Errorf("failed to create Azure Default Credential provider: %w", err)
		}
		return NewCachedProvider(p), nil

	default:
		return nil, fmt.Errorf("unsupported auth method %v: %w", cfg.AuthMethod, pg2duck.ErrUnsupportedAuthMethod)
	}
}
