package youtube

import (
	"bufio"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/url"
	"os"
	"strings"
	"sync"

	"github.com/google/uuid"
	"golang.org/x/oauth2"
	"golang.org/x/oauth2/google"
	"google.golang.org/api/youtube/v3"

	"github.com/antoniolg/agent-kit/internal/utils"
)

// Scopes requested for upload, metadata updates and comments
var Scopes = []string{
	youtube.YoutubeUploadScope,
	youtube.YoutubeScope,
	youtube.YoutubeForceSslScope,
}

// AuthOptions locates the OAuth client secret and the cached token
type AuthOptions struct {
	ClientSecretPath string
	TokenPath        string
	// CallbackPort > 0 receives the authorization code on a local server
	// instead of asking the user to paste the redirect URL.
	CallbackPort int
	In           io.Reader
	Out          io.Writer
}

// CredentialState is a step of the cached credential flow
type CredentialState int

const (
	StateNoCredential CredentialState = iota
	StateValid
	StateExpiredRefreshable
	StateRefreshed
	StateInteractive
	StateObtained
)

func (s CredentialState) String() string {
	switch s {
	case StateNoCredential:
		return "no-credential"
	case StateValid:
		return "valid"
	case StateExpiredRefreshable:
		return "expired-refreshable"
	case StateRefreshed:
		return "refreshed"
	case StateInteractive:
		return "interactive"
	case StateObtained:
		return "obtained"
	default:
		return fmt.Sprintf("state(%d)", int(s))
	}
}

// ClassifyToken picks the starting state for a cached token
func ClassifyToken(tok *oauth2.Token) CredentialState {
	switch {
	case tok == nil:
		return StateNoCredential
	case tok.Valid():
		return StateValid
	case tok.RefreshToken != "":
		return StateExpiredRefreshable
	default:
		return StateNoCredential
	}
}

// TokenStore persists a single OAuth token as JSON
type TokenStore struct {
	path string
}

// NewTokenStore creates a store backed by path
func NewTokenStore(path string) *TokenStore {
	return &TokenStore{path: path}
}

// Load returns the cached token, or nil when there is none
func (s *TokenStore) Load() (*oauth2.Token, error) {
	data, err := os.ReadFile(s.path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to read token file: %w", err)
	}

	var token oauth2.Token
	if err := json.Unmarshal(data, &token); err != nil {
		utils.LogWarning("Ignoring unreadable token file %s: %v", s.path, err)
		return nil, nil
	}
	return &token, nil
}

// Save writes the token with owner-only permissions
func (s *TokenStore) Save(token *oauth2.Token) error {
	if err := utils.EnsureParentDir(s.path); err != nil {
		return err
	}
	data, err := json.Marshal(token)
	if err != nil {
		return fmt.Errorf("failed to marshal token: %w", err)
	}
	if err := os.WriteFile(s.path, data, 0600); err != nil {
		return fmt.Errorf("failed to write token file: %w", err)
	}
	return nil
}

// CodePrompter obtains an authorization code for the consent URL
type CodePrompter interface {
	AuthorizationCode(ctx context.Context, authURL, state string) (string, error)
}

// Authenticator drives the credential state machine
type Authenticator struct {
	config *oauth2.Config
	store  *TokenStore
	prompt CodePrompter
}

// NewAuthenticator reads the client secret and prepares the flow
func NewAuthenticator(opts AuthOptions) (*Authenticator, error) {
	secret, err := os.ReadFile(opts.ClientSecretPath)
	if err != nil {
		return nil, fmt.Errorf("failed to read client secret: %w", err)
	}

	config, err := google.ConfigFromJSON(secret, Scopes...)
	if err != nil {
		return nil, fmt.Errorf("failed to create OAuth config: %w", err)
	}

	tokenPath, err := utils.ExpandHomeDir(opts.TokenPath)
	if err != nil {
		return nil, err
	}

	var prompt CodePrompter
	if opts.CallbackPort > 0 {
		config.RedirectURL = fmt.Sprintf("http://localhost:%d", opts.CallbackPort)
		prompt = &CallbackPrompter{Port: opts.CallbackPort}
	} else {
		prompt = &PastePrompter{In: opts.In, Out: opts.Out}
	}

	return newAuthenticator(config, NewTokenStore(tokenPath), prompt), nil
}

func newAuthenticator(config *oauth2.Config, store *TokenStore, prompt CodePrompter) *Authenticator {
	return &Authenticator{config: config, store: store, prompt: prompt}
}

// Token walks the state machine until a usable token is available,
// persisting it on every transition that produced a new one.
func (a *Authenticator) Token(ctx context.Context) (*oauth2.Token, error) {
	token, err := a.store.Load()
	if err != nil {
		return nil, err
	}

	state := ClassifyToken(token)
	for {
		utils.LogDebug("Credential state: %s", state)
		switch state {
		case StateValid:
			utils.LogVerbose("Using existing authorization token")
			return token, nil

		case StateExpiredRefreshable:
			token, err = a.config.TokenSource(ctx, token).Token()
			if err != nil {
				return nil, fmt.Errorf("failed to refresh token (delete %s to re-authorize): %w", a.store.path, err)
			}
			state = StateRefreshed

		case StateNoCredential:
			state = StateInteractive

		case StateInteractive:
			token, err = a.exchange(ctx)
			if err != nil {
				return nil, err
			}
			state = StateObtained

		case StateRefreshed, StateObtained:
			if err := a.store.Save(token); err != nil {
				return nil, err
			}
			utils.LogVerbose("Saved %s token to %s", state, a.store.path)
			return token, nil

		default:
			return nil, fmt.Errorf("unexpected credential state %s", state)
		}
	}
}

// TokenSource returns a source that persists refreshed tokens
func (a *Authenticator) TokenSource(ctx context.Context) (oauth2.TokenSource, error) {
	token, err := a.Token(ctx)
	if err != nil {
		return nil, err
	}
	return &persistingSource{
		src:   a.config.TokenSource(ctx, token),
		store: a.store,
		last:  token.AccessToken,
	}, nil
}

func (a *Authenticator) exchange(ctx context.Context) (*oauth2.Token, error) {
	state := uuid.NewString()
	authURL := a.config.AuthCodeURL(state, oauth2.AccessTypeOffline, oauth2.ApprovalForce)

	code, err := a.prompt.AuthorizationCode(ctx, authURL, state)
	if err != nil {
		return nil, fmt.Errorf("failed to obtain authorization code: %w", err)
	}

	token, err := a.config.Exchange(ctx, code)
	if err != nil {
		return nil, fmt.Errorf("failed to exchange authorization code: %w", err)
	}
	return token, nil
}

// persistingSource saves the token whenever the wrapped source refreshes it
type persistingSource struct {
	mu    sync.Mutex
	src   oauth2.TokenSource
	store *TokenStore
	last  string
}

func (p *persistingSource) Token() (*oauth2.Token, error) {
	token, err := p.src.Token()
	if err != nil {
		return nil, err
	}

	p.mu.Lock()
	defer p.mu.Unlock()
	if token.AccessToken != p.last {
		p.last = token.AccessToken
		if err := p.store.Save(token); err != nil {
			utils.LogWarning("Failed to save refreshed token: %v", err)
		}
	}
	return token, nil
}

// ErrStateMismatch means the redirect did not come from our consent request
var ErrStateMismatch = errors.New("oauth state mismatch")

// ParseAuthorizationResponse extracts the code from a pasted redirect URL.
// A bare code is accepted as is.
func ParseAuthorizationResponse(input, wantState string) (string, error) {
	input = strings.TrimSpace(input)
	if input == "" {
		return "", errors.New("empty authorization response")
	}

	u, err := url.Parse(input)
	if err != nil || u.RawQuery == "" {
		return input, nil
	}

	query := u.Query()
	if msg := query.Get("error"); msg != "" {
		return "", fmt.Errorf("authorization denied: %s", msg)
	}
	code := query.Get("code")
	if code == "" {
		return "", fmt.Errorf("no code parameter in %q", input)
	}
	if state := query.Get("state"); state != "" && wantState != "" && state != wantState {
		return "", ErrStateMismatch
	}
	return code, nil
}

// PastePrompter prints the consent URL and reads the redirect URL back
type PastePrompter struct {
	In  io.Reader
	Out io.Writer
}

// AuthorizationCode implements CodePrompter
func (p *PastePrompter) AuthorizationCode(ctx context.Context, authURL, state string) (string, error) {
	in, out := p.In, p.Out
	if in == nil {
		in = os.Stdin
	}
	if out == nil {
		out = os.Stdout
	}

	fmt.Fprintln(out, "Open this URL in your browser, approve access, then paste the final URL:")
	fmt.Fprintln(out, authURL)
	fmt.Fprint(out, "Paste full redirect URL: ")

	line, err := bufio.NewReader(in).ReadString('\n')
	if err != nil && !(errors.Is(err, io.EOF) && line != "") {
		return "", fmt.Errorf("failed to read redirect URL: %w", err)
	}
	return ParseAuthorizationResponse(line, state)
}
