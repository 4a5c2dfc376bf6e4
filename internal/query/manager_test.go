package query

import (
	"context"
	"errors"
	"testing"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"autosearch/internal/domain"
)

var errBackend = errors.New("backend unavailable")

// scripted answers queries from a fixed table; unknown queries fail
func scripted(results map[string][]domain.Suggestion) Executor {
	return ExecutorFunc(func(ctx context.Context, text string) ([]domain.Suggestion, error) {
		items, ok := results[text]
		if !ok {
			return nil, errBackend
		}
		return items, nil
	})
}

func run(t *testing.T, cmd tea.Cmd) ResultMsg {
	t.Helper()
	require.NotNil(t, cmd)
	msg, ok := cmd().(ResultMsg)
	require.True(t, ok)
	return msg
}

func suggestions(ids ...string) []domain.Suggestion {
	out := make([]domain.Suggestion, 0, len(ids))
	for _, id := range ids {
		out = append(out, domain.Suggestion{ID: id, Text: "text-" + id})
	}
	return out
}

func newTestManager(exec Executor, obsolete *[]*Handle) *Manager {
	return NewManager(Options{
		Owner:    "w",
		Executor: exec,
		OnObsolete: func(h *Handle) {
			if obsolete != nil {
				*obsolete = append(*obsolete, h)
			}
		},
	})
}

func TestAcceptsSingleResult(t *testing.T) {
	m := newTestManager(scripted(map[string][]domain.Suggestion{"abc": suggestions("1", "2")}), nil)

	cmd := m.PerformQuery("abc")
	require.True(t, m.IsFetching())
	require.Equal(t, 1, m.InFlight())

	out := m.Resolve(run(t, cmd))
	require.Equal(t, Accepted, out.Resolution)
	require.Len(t, out.Suggestions, 2)
	require.False(t, m.IsFetching())
	require.Equal(t, 0, m.InFlight())
}

func TestOutOfOrderReplyIsRejected(t *testing.T) {
	// A is dispatched first, B second; B's reply arrives first
	m := newTestManager(scripted(map[string][]domain.Suggestion{
		"ab":  suggestions("1"),
		"abc": suggestions("2"),
	}), nil)

	cmdA := m.PerformQuery("ab")
	cmdB := m.PerformQuery("abc")
	resA, resB := run(t, cmdA), run(t, cmdB)

	outB := m.Resolve(resB)
	require.Equal(t, Accepted, outB.Resolution)
	require.Equal(t, "2", outB.Suggestions[0].ID)

	outA := m.Resolve(resA)
	require.Equal(t, Stale, outA.Resolution)
	require.Nil(t, outA.Suggestions)
	require.Equal(t, 0, m.InFlight())
}

func TestInOrderRepliesAreBothAccepted(t *testing.T) {
	m := newTestManager(scripted(map[string][]domain.Suggestion{
		"ab":  suggestions("1"),
		"abc": suggestions("2"),
	}), nil)

	resA := run(t, m.PerformQuery("ab"))
	resB := run(t, m.PerformQuery("abc"))

	require.Equal(t, Accepted, m.Resolve(resA).Resolution)
	require.Equal(t, Accepted, m.Resolve(resB).Resolution)
}

func TestDisposalGate(t *testing.T) {
	m := newTestManager(scripted(map[string][]domain.Suggestion{"abc": suggestions("1")}), nil)

	res := run(t, m.PerformQuery("abc"))
	m.DisposeQueries()
	require.False(t, m.IsFetching())
	require.Equal(t, 0, m.InFlight(), "disposed handle leaves the in-flight set at once")

	out := m.Resolve(res)
	require.Equal(t, Disposed, out.Resolution)
	require.Nil(t, out.Suggestions)
}

func TestDisposalGateCoversDisplacedQueries(t *testing.T) {
	m := newTestManager(scripted(map[string][]domain.Suggestion{
		"ab":  suggestions("1"),
		"abc": suggestions("2"),
	}), nil)

	resA := run(t, m.PerformQuery("ab"))
	resB := run(t, m.PerformQuery("abc"))
	m.DisposeQueries()

	// A was displaced, not disposed, yet it was dispatched before the disposal
	require.Equal(t, Disposed, m.Resolve(resA).Resolution)
	require.Equal(t, Disposed, m.Resolve(resB).Resolution)
}

func TestQueriesAfterDisposalAreAccepted(t *testing.T) {
	m := newTestManager(scripted(map[string][]domain.Suggestion{"abc": suggestions("1")}), nil)

	old := run(t, m.PerformQuery("abc"))
	m.DisposeQueries()
	fresh := run(t, m.PerformQuery("abc"))

	require.Equal(t, Accepted, m.Resolve(fresh).Resolution)
	require.Equal(t, Disposed, m.Resolve(old).Resolution)
}

func TestDisplacedQueryIsReportedObsoleteBeforeReplacement(t *testing.T) {
	var obsolete []*Handle
	var m *Manager
	m = NewManager(Options{
		Owner:    "w",
		Executor: scripted(nil),
		OnObsolete: func(h *Handle) {
			// The new handle is not current yet when we are told
			require.Equal(t, h, m.Current())
			obsolete = append(obsolete, h)
		},
	})

	m.PerformQuery("abc")
	first := m.Current()
	require.Empty(t, obsolete)

	m.PerformQuery("abcd")
	require.Len(t, obsolete, 1)
	require.Same(t, first, obsolete[0])
	require.True(t, first.Obsolete())
	require.Equal(t, "abcd", m.Current().Query)
	require.False(t, m.Current().Obsolete())
}

func TestDisposeNotifiesOnceAndOnlyWithCurrent(t *testing.T) {
	var obsolete []*Handle
	m := newTestManager(scripted(nil), &obsolete)

	require.False(t, m.DisposeQueries())
	require.Empty(t, obsolete, "nothing to dispose")

	m.PerformQuery("abc")
	require.True(t, m.DisposeQueries())
	require.False(t, m.DisposeQueries())
	require.Len(t, obsolete, 1)
}

func TestFailureOfCurrentQueryIsShown(t *testing.T) {
	m := newTestManager(scripted(nil), nil)

	out := m.Resolve(run(t, m.PerformQuery("abc")))
	require.Equal(t, Failed, out.Resolution)
	require.ErrorIs(t, out.Err, errBackend)
	require.False(t, m.IsFetching())
}

func TestFailureOfObsoleteQueryIsSuppressed(t *testing.T) {
	m := newTestManager(scripted(map[string][]domain.Suggestion{"abcd": suggestions("2")}), nil)

	resA := run(t, m.PerformQuery("abc"))
	cmdB := m.PerformQuery("abcd")

	require.Equal(t, FailureSuppressed, m.Resolve(resA).Resolution)
	require.True(t, m.IsFetching(), "the newer query is still current")
	require.Equal(t, Accepted, m.Resolve(run(t, cmdB)).Resolution)
}

func TestFailureAfterDisposalIsSuppressed(t *testing.T) {
	m := newTestManager(scripted(nil), nil)

	res := run(t, m.PerformQuery("abc"))
	m.DisposeQueries()
	require.Equal(t, FailureSuppressed, m.Resolve(res).Resolution)
}

func TestShownFailureBlocksOlderResults(t *testing.T) {
	m := newTestManager(scripted(map[string][]domain.Suggestion{"ab": suggestions("1")}), nil)

	resA := run(t, m.PerformQuery("ab"))
	resB := run(t, m.PerformQuery("abc"))

	require.Equal(t, Failed, m.Resolve(resB).Resolution)
	require.Equal(t, Stale, m.Resolve(resA).Resolution)
}

func TestMalformedResultIsAFailure(t *testing.T) {
	exec := ExecutorFunc(func(context.Context, string) ([]domain.Suggestion, error) {
		return []domain.Suggestion{{ID: "1"}, {ID: "1"}}, nil
	})
	m := newTestManager(exec, nil)

	out := m.Resolve(run(t, m.PerformQuery("abc")))
	require.Equal(t, Failed, out.Resolution)
	require.ErrorIs(t, out.Err, domain.ErrDuplicateID)
}

func TestResultIsTruncatedToLimit(t *testing.T) {
	exec := scripted(map[string][]domain.Suggestion{
		"abc": suggestions("1", "2", "3", "4", "5", "6", "7", "8", "9"),
	})
	m := NewManager(Options{Owner: "w", Executor: exec})
	out := m.Resolve(run(t, m.PerformQuery("abc")))
	require.Len(t, out.Suggestions, DefaultLimit)

	m = NewManager(Options{Owner: "w", Executor: exec, Limit: 3})
	out = m.Resolve(run(t, m.PerformQuery("abc")))
	assert.Equal(t, []string{"1", "2", "3"}, ids(out.Suggestions))
}

func TestForeignAndDuplicateMessages(t *testing.T) {
	m := newTestManager(scripted(map[string][]domain.Suggestion{"abc": suggestions("1")}), nil)
	res := run(t, m.PerformQuery("abc"))

	foreign := res
	foreign.Owner = "someone-else"
	require.Equal(t, Unknown, m.Resolve(foreign).Resolution)
	require.True(t, m.IsFetching(), "a foreign message must not touch state")

	never := res
	never.Seq = 99
	require.Equal(t, Unknown, m.Resolve(never).Resolution)

	require.Equal(t, Accepted, m.Resolve(res).Resolution)
	require.Equal(t, Stale, m.Resolve(res).Resolution, "a second delivery is never authoritative")
}

func TestHandleRecordsDispatchTime(t *testing.T) {
	at := time.Date(2024, 5, 1, 12, 0, 0, 0, time.UTC)
	m := NewManager(Options{Owner: "w", Executor: scripted(nil), Now: func() time.Time { return at }})
	m.PerformQuery("abc")
	require.Equal(t, at, m.Current().DispatchedAt)
	require.Equal(t, uint64(1), m.Current().Seq)
}

func TestCancelReachesExecutor(t *testing.T) {
	started := make(chan struct{})
	exec := ExecutorFunc(func(ctx context.Context, text string) ([]domain.Suggestion, error) {
		close(started)
		<-ctx.Done()
		return nil, ctx.Err()
	})
	m := NewManager(Options{Owner: "w", Executor: exec, OnObsolete: func(h *Handle) { h.Cancel() }})

	cmd := m.PerformQuery("abc")
	done := make(chan ResultMsg, 1)
	go func() { done <- cmd().(ResultMsg) }()
	<-started
	m.DisposeQueries()

	select {
	case res := <-done:
		require.ErrorIs(t, res.Err, context.Canceled)
		require.Equal(t, FailureSuppressed, m.Resolve(res).Resolution)
	case <-time.After(2 * time.Second):
		t.Fatal("executor was not cancelled")
	}
}

func ids(items []domain.Suggestion) []string {
	out := make([]string, len(items))
	for i, s := range items {
		out[i] = s.ID
	}
	return out
}
