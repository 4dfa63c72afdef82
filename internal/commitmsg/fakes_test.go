package commitmsg

import (
	"context"
	"sync"

	"github.com/huimingz/commitflow/internal/llm"
)

type fakeCompleter struct {
	mu       sync.Mutex
	result   *llm.ChatResult
	err      error
	requests []llm.CompletionRequest

	// block, when set, is waited on before answering.
	block   chan struct{}
	started chan struct{}
}

func (f *fakeCompleter) Complete(ctx context.Context, req llm.CompletionRequest) (*llm.ChatResult, error) {
	f.mu.Lock()
	f.requests = append(f.requests, req)
	f.mu.Unlock()

	if f.started != nil {
		close(f.started)
	}
	if f.block != nil {
		<-f.block
	}
	return f.result, f.err
}

func (f *fakeCompleter) calls() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return len(f.requests)
}

func (f *fakeCompleter) lastPrompt() string {
	f.mu.Lock()
	defer f.mu.Unlock()
	if len(f.requests) == 0 {
		return ""
	}
	return f.requests[len(f.requests)-1].Prompt
}

type fakeSource struct {
	diff      string
	diffErr   error
	branch    string
	branchErr error
	panics    bool

	committed []string
	commitErr error
}

func (f *fakeSource) StagedDiff(ctx context.Context) (string, error) {
	return f.diff, f.diffErr
}

func (f *fakeSource) CurrentBranch(ctx context.Context) (string, error) {
	if f.panics {
		panic("repository unavailable")
	}
	return f.branch, f.branchErr
}

func (f *fakeSource) Commit(ctx context.Context, message string) error {
	if f.commitErr != nil {
		return f.commitErr
	}
	f.committed = append(f.committed, message)
	return nil
}

// listingSource also lists staged paths, like the git executor.
type listingSource struct {
	fakeSource
	staged  []string
	listErr error
}

func (l *listingSource) StagedFiles(ctx context.Context) ([]string, error) {
	return l.staged, l.listErr
}

type stateRecorder struct {
	mu     sync.Mutex
	states []State
}

func (r *stateRecorder) record(s State) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.states = append(r.states, s)
}

func (r *stateRecorder) all() []State {
	r.mu.Lock()
	defer r.mu.Unlock()
	return append([]State(nil), r.states...)
}
