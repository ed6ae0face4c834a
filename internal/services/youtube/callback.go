package youtube

import (
	"context"
	"errors"
	"fmt"
	"net"
	"net/http"
	"os/exec"
	"runtime"
	"sync"

	"github.com/antoniolg/agent-kit/internal/utils"
)

const callbackPage = `<html>
	<head><title>Authorization Successful</title></head>
	<body style="font-family: Arial, sans-serif; text-align: center; padding-top: 20vh;">
		<h1 style="color: #1a73e8;">Authorization Successful</h1>
		<p>You can now close this window and return to the terminal.</p>
	</body>
</html>`

type callbackResult struct {
	code  string
	state string
	err   error
}

// OAuthCallbackServer receives the redirect from the consent screen
type OAuthCallbackServer struct {
	results  chan callbackResult
	server   *http.Server
	listener net.Listener
	wg       sync.WaitGroup
}

// NewOAuthCallbackServer creates a new OAuth callback server
func NewOAuthCallbackServer() *OAuthCallbackServer {
	return &OAuthCallbackServer{
		results: make(chan callbackResult, 1),
	}
}

// Start listens on localhost:port. Port 0 picks a free port.
func (s *OAuthCallbackServer) Start(port int) error {
	listener, err := net.Listen("tcp", fmt.Sprintf("localhost:%d", port))
	if err != nil {
		return fmt.Errorf("failed to listen for OAuth callback: %w", err)
	}
	s.listener = listener

	mux := http.NewServeMux()
	mux.HandleFunc("/", s.handleCallback)
	s.server = &http.Server{Handler: mux}

	s.wg.Add(1)
	go func() {
		defer s.wg.Done()
		if err := s.server.Serve(listener); err != nil && !errors.Is(err, http.ErrServerClosed) {
			utils.LogError("Callback server error: %v", err)
		}
	}()
	return nil
}

// Addr returns the address the server is bound to
func (s *OAuthCallbackServer) Addr() string {
	if s.listener == nil {
		return ""
	}
	return s.listener.Addr().String()
}

func (s *OAuthCallbackServer) handleCallback(w http.ResponseWriter, r *http.Request) {
	query := r.URL.Query()
	if msg := query.Get("error"); msg != "" {
		s.deliver(callbackResult{err: fmt.Errorf("authorization denied: %s", msg)})
		http.Error(w, "Authorization denied", http.StatusBadRequest)
		return
	}

	code := query.Get("code")
	if code == "" {
		http.Error(w, "No authorization code received", http.StatusBadRequest)
		return
	}
	s.deliver(callbackResult{code: code, state: query.Get("state")})

	w.Header().Set("Content-Type", "text/html")
	if _, err := fmt.Fprint(w, callbackPage); err != nil {
		utils.LogWarning("Failed to write response: %v", err)
	}
}

// deliver keeps only the first result; browsers may hit the page twice
func (s *OAuthCallbackServer) deliver(res callbackResult) {
	select {
	case s.results <- res:
	default:
	}
}

// WaitForCode blocks until a code arrives or ctx is done
func (s *OAuthCallbackServer) WaitForCode(ctx context.Context, wantState string) (string, error) {
	select {
	case <-ctx.Done():
		return "", ctx.Err()
	case res := <-s.results:
		if res.err != nil {
			return "", res.err
		}
		if wantState != "" && res.state != wantState {
			return "", ErrStateMismatch
		}
		return res.code, nil
	}
}

// Stop stops the callback server
func (s *OAuthCallbackServer) Stop() error {
	if s.server != nil {
		if err := s.server.Close(); err != nil {
			return fmt.Errorf("failed to stop callback server: %w", err)
		}
		s.wg.Wait()
	}
	return nil
}

// CallbackPrompter opens the browser and waits on a local callback server
type CallbackPrompter struct {
	Port int
}

// AuthorizationCode implements CodePrompter
func (p *CallbackPrompter) AuthorizationCode(ctx context.Context, authURL, state string) (string, error) {
	server := NewOAuthCallbackServer()
	if err := server.Start(p.Port); err != nil {
		return "", err
	}
	defer func() {
		if err := server.Stop(); err != nil {
			utils.LogWarning("Failed to stop callback server: %v", err)
		}
	}()

	utils.LogInfo("Open this URL in your browser to authorize access:")
	utils.Println(authURL)
	if err := openURL(authURL); err != nil {
		utils.LogVerbose("Could not open browser: %v", err)
	}
	return server.WaitForCode(ctx, state)
}

// openURL opens the specified URL in the default browser
func openURL(url string) error {
	switch runtime.GOOS {
	case "linux":
		return exec.Command("xdg-open", url).Start()
	case "windows":
		return exec.Command("rundll32", "url.dll,FileProtocolHandler", url).Start()
	case "darwin":
		return exec.Command("open", url).Start()
	default:
		return fmt.Errorf("cannot open URL %s on this platform", url)
	}
}
