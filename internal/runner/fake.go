package runner

import (
	"context"
	"fmt"
	"sync"
)

// Call records one invocation made through a Fake
type Call struct {
	Name string
	Args []string
}

// Fake is a scripted Runner for tests of the modules that shell out.
// Responses are matched by command name and returned in order.
type Fake struct {
	mu        sync.Mutex
	Calls     []Call
	responses map[string][]fakeResponse
}

type fakeResponse struct {
	out string
	err error
}

// NewFake creates an empty scripted runner
func NewFake() *Fake {
	return &Fake{responses: make(map[string][]fakeResponse)}
}

// On queues the output (or error) for the next call to name
func (f *Fake) On(name, out string, err error) *Fake {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.responses[name] = append(f.responses[name], fakeResponse{out: out, err: err})
	return f
}

// Run records the call and pops the next queued response for name
func (f *Fake) Run(ctx context.Context, name string, args ...string) (string, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.Calls = append(f.Calls, Call{Name: name, Args: append([]string(nil), args...)})

	queue := f.responses[name]
	if len(queue) == 0 {
		return "", fmt.Errorf("fake runner: unexpected call to %s", name)
	}
	resp := queue[0]
	f.responses[name] = queue[1:]
	return resp.out, resp.err
}
