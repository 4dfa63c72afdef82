package commitmsg

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/huimingz/commitflow/internal/config"
	"github.com/huimingz/commitflow/internal/llm"
	"github.com/huimingz/commitflow/internal/scope"
)

const billingDiff = `diff --git a/src/flows/billing/invoice.ts b/src/flows/billing/invoice.ts
--- a/src/flows/billing/invoice.ts
+++ b/src/flows/billing/invoice.ts
@@ -1 +1,2 @@
 export const total = 1
+export const tax = 2
`

func TestService_Generate(t *testing.T) {
	rec := &stateRecorder{}
	fc := &fakeCompleter{result: &llm.ChatResult{
		Content: "feat(billing): add tax constant",
		Usage:   llm.Usage{PromptTokens: 200, CompletionTokens: 8, TotalTokens: 208},
	}}
	src := &fakeSource{diff: billingDiff, branch: "feature/JIRA-7-tax"}

	svc := NewService(ServiceOptions{
		Source:    src,
		Completer: fc,
		Options:   DefaultOptions(),
		OnState:   rec.record,
	})

	res, err := svc.Generate(context.Background(), Request{})
	require.NoError(t, err)

	assert.Equal(t, "feat(billing): add tax constant", res.Message)
	assert.Equal(t, "billing", res.Scope)
	assert.Equal(t, "billing", res.Signals.Flow)
	assert.Equal(t, []string{"src/flows/billing/invoice.ts"}, res.Signals.Files)
	assert.Equal(t, Validated, res.State)
	assert.Equal(t, 208, res.Usage.TotalTokens)
	assert.Equal(t, []State{BuildingPrompt, AwaitingProvider, Validated, Idle}, rec.all())
	assert.Equal(t, 1, fc.calls())
	assert.Empty(t, src.committed)
}

func TestService_NoChanges(t *testing.T) {
	rec := &stateRecorder{}
	fc := &fakeCompleter{}
	svc := NewService(ServiceOptions{Source: &fakeSource{}, Completer: fc, OnState: rec.record})

	_, err := svc.Generate(context.Background(), Request{})
	assert.ErrorIs(t, err, ErrNoChanges)
	assert.Zero(t, fc.calls())
	assert.Equal(t, []State{BuildingPrompt, Idle}, rec.all())
}

func TestService_DiffError(t *testing.T) {
	cause := errors.New("not a git repository")
	svc := NewService(ServiceOptions{Source: &fakeSource{diffErr: cause}, Completer: &fakeCompleter{}})

	_, err := svc.Generate(context.Background(), Request{})
	assert.ErrorIs(t, err, cause)
	assert.Contains(t, err.Error(), "failed to get staged changes")
}

func TestService_MissingCompleter(t *testing.T) {
	src := &fakeSource{diffErr: errors.New("must not be read")}
	svc := NewService(ServiceOptions{Source: src})

	_, err := svc.Generate(context.Background(), Request{})
	var cerr *ConfigurationError
	require.True(t, errors.As(err, &cerr))
}

func TestService_BranchFailuresAreIgnored(t *testing.T) {
	sources := map[string]*fakeSource{
		"error":    {diff: plainDiff, branchErr: errors.New("fatal: not a git repository")},
		"panic":    {diff: plainDiff, panics: true},
		"detached": {diff: plainDiff, branch: "HEAD"},
	}

	for name, src := range sources {
		t.Run(name, func(t *testing.T) {
			fc := &fakeCompleter{result: &llm.ChatResult{Content: "chore: tidy notes"}}
			svc := NewService(ServiceOptions{Source: src, Completer: fc})

			res, err := svc.Generate(context.Background(), Request{})
			require.NoError(t, err)
			assert.Empty(t, res.Signals.Branch)
			assert.Empty(t, res.Scope)
			assert.Contains(t, fc.lastPrompt(), "<type>: <subject>")
		})
	}
}

func TestService_ProviderError(t *testing.T) {
	rec := &stateRecorder{}
	fc := &fakeCompleter{result: &llm.ChatResult{ErrorMessage: "rate limited"}}
	svc := NewService(ServiceOptions{Source: &fakeSource{diff: billingDiff}, Completer: fc, OnState: rec.record})

	_, err := svc.Generate(context.Background(), Request{})
	var perr *ProviderError
	require.True(t, errors.As(err, &perr))
	assert.Equal(t, "rate limited", err.Error())
	assert.Equal(t, []State{BuildingPrompt, AwaitingProvider, Failed, Idle}, rec.all())

	// The guard is released after a failure.
	fc.result = &llm.ChatResult{Content: "fix: x"}
	_, err = svc.Generate(context.Background(), Request{})
	assert.NoError(t, err)
}

func TestService_InFlightGuard(t *testing.T) {
	fc := &fakeCompleter{
		result:  &llm.ChatResult{Content: "feat(billing): add tax"},
		block:   make(chan struct{}),
		started: make(chan struct{}),
	}
	svc := NewService(ServiceOptions{Source: &fakeSource{diff: billingDiff}, Completer: fc})

	type outcome struct {
		res *Result
		err error
	}
	done := make(chan outcome, 1)
	go func() {
		res, err := svc.Generate(context.Background(), Request{})
		done <- outcome{res, err}
	}()

	<-fc.started
	_, err := svc.Generate(context.Background(), Request{})
	assert.ErrorIs(t, err, ErrInFlight)

	close(fc.block)
	first := <-done
	require.NoError(t, first.err)
	assert.Equal(t, "feat(billing): add tax", first.res.Message)
	assert.Equal(t, 1, fc.calls())
}

func TestService_Prepare(t *testing.T) {
	src := &fakeSource{diff: plainDiff, branch: "fix/login_page"}
	svc := NewService(ServiceOptions{Source: src})

	t.Run("language and context", func(t *testing.T) {
		p, err := svc.Prepare(context.Background(), Request{Language: "ja", Context: "users reported a crash"})
		require.NoError(t, err)
		assert.Equal(t, "fix/login_page", p.Branch)
		assert.Equal(t, "login-page", p.Signals.Branch)
		assert.Equal(t, "login-page", p.Signals.Scope)
		assert.Contains(t, p.Prompt, "written in Japanese")
		assert.Contains(t, p.Prompt, "users reported a crash")
		assert.Contains(t, p.Prompt, "- notes.txt")
	})

	t.Run("english adds no language line", func(t *testing.T) {
		p, err := svc.Prepare(context.Background(), Request{Language: "en"})
		require.NoError(t, err)
		assert.NotContains(t, p.Prompt, "written in")
	})
}

func TestService_PrepareUnlisted(t *testing.T) {
	t.Run("binary file has no header", func(t *testing.T) {
		src := &listingSource{
			fakeSource: fakeSource{diff: plainDiff + "diff --git a/logo.png b/logo.png\nBinary files /dev/null and b/logo.png differ\n"},
			staged:     []string{"logo.png", "notes.txt"},
		}
		p, err := NewService(ServiceOptions{Source: src}).Prepare(context.Background(), Request{})
		require.NoError(t, err)
		assert.Equal(t, []string{"notes.txt"}, p.Signals.Files)
		assert.Equal(t, []string{"logo.png"}, p.Unlisted)
	})

	t.Run("headers cover every staged file", func(t *testing.T) {
		src := &listingSource{fakeSource: fakeSource{diff: plainDiff}, staged: []string{"notes.txt"}}
		p, err := NewService(ServiceOptions{Source: src}).Prepare(context.Background(), Request{})
		require.NoError(t, err)
		assert.Empty(t, p.Unlisted)
	})

	t.Run("listing failure is ignored", func(t *testing.T) {
		src := &listingSource{fakeSource: fakeSource{diff: plainDiff}, listErr: errors.New("git failed")}
		p, err := NewService(ServiceOptions{Source: src}).Prepare(context.Background(), Request{})
		require.NoError(t, err)
		assert.Nil(t, p.Unlisted)
	})
}

func TestService_PrepareLimits(t *testing.T) {
	diffText := "--- a/a.txt\n+++ b/a.txt\n+1\n--- a/b.txt\n+++ b/b.txt\n+2\n"
	svc := NewService(ServiceOptions{
		Source:    &fakeSource{diff: diffText},
		FileLimit: 1,
		DiffLimit: 20,
	})

	p, err := svc.Prepare(context.Background(), Request{})
	require.NoError(t, err)
	assert.Contains(t, p.Prompt, "- a.txt")
	assert.NotContains(t, p.Prompt, "- b.txt")
	assert.NotContains(t, p.Prompt, "+++ b/b.txt")
}

func TestService_CustomRules(t *testing.T) {
	rules := scope.DefaultRules()
	rules.FeaturesRoot = "modules"
	diffText := "--- a/app/modules/payments/api.go\n+++ b/app/modules/payments/api.go\n+x\n"

	fc := &fakeCompleter{result: &llm.ChatResult{Content: "feat(payments): x"}}
	svc := NewService(ServiceOptions{
		Source:    &fakeSource{diff: diffText},
		Completer: fc,
		Resolver:  scope.NewResolver(rules),
	})

	res, err := svc.Generate(context.Background(), Request{})
	require.NoError(t, err)
	assert.Equal(t, "payments", res.Scope)
}

func TestService_Commit(t *testing.T) {
	src := &fakeSource{}
	svc := NewService(ServiceOptions{Source: src})

	assert.ErrorIs(t, svc.Commit(context.Background(), "   "), ErrEmptyMessage)
	assert.Empty(t, src.committed)

	require.NoError(t, svc.Commit(context.Background(), "  fix: handle nil \n"))
	assert.Equal(t, []string{"fix: handle nil"}, src.committed)

	src.commitErr = errors.New("hook rejected")
	err := svc.Commit(context.Background(), "fix: again")
	assert.ErrorContains(t, err, "hook rejected")
}

func TestCheckModel(t *testing.T) {
	var cerr *ConfigurationError

	err := CheckModel(nil)
	require.True(t, errors.As(err, &cerr))
	assert.Equal(t, "model", cerr.Field)

	err = CheckModel(&config.ModelConfig{Provider: "openrouter", Model: "x"})
	require.True(t, errors.As(err, &cerr))
	assert.Equal(t, "api_key", cerr.Field)
	assert.Contains(t, err.Error(), "api_key is required")

	assert.NoError(t, CheckModel(&config.ModelConfig{Provider: "ollama", Model: "llama3.2"}))
}

func TestAsConfigurationError(t *testing.T) {
	assert.NoError(t, AsConfigurationError(nil))

	plain := errors.New("model 'x' not found in configuration")
	assert.Equal(t, plain, AsConfigurationError(plain))

	var cerr *ConfigurationError
	require.True(t, errors.As(AsConfigurationError(&config.FieldError{Field: "default_model", Reason: "is not set"}), &cerr))
	assert.Equal(t, "default_model", cerr.Field)
}

func TestState_String(t *testing.T) {
	assert.Equal(t, "idle", Idle.String())
	assert.Equal(t, "fallback applied", FallbackApplied.String())
	assert.Equal(t, "unknown", State(99).String())
	assert.True(t, Failed.Terminal())
	assert.False(t, AwaitingProvider.Terminal())
}
