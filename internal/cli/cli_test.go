package cli

import (
	"bytes"
	"context"
	"io"
	"log"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"autosearch/internal/config"
	"autosearch/internal/domain"
	"autosearch/internal/eventbus"
	"autosearch/internal/query"
	"autosearch/internal/source"
)

const fruitYAML = `
- id: "1"
  text: apple
- id: "2"
  text: apricot
- id: "3"
  name: banana
`

func writeFile(t *testing.T, name, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), name)
	require.NoError(t, os.WriteFile(path, []byte(content), 0644))
	return path
}

// execute runs the command tree with a hermetic config and log file
func execute(t *testing.T, args ...string) (string, error) {
	t.Helper()
	dir := t.TempDir()
	cfgPath := filepath.Join(dir, "config.toml")
	require.NoError(t, config.NewConfigService().SaveToPath(config.DefaultConfig(), cfgPath))

	cmd := NewRootCmd()
	var out bytes.Buffer
	cmd.SetOut(&out)
	cmd.SetErr(&out)
	cmd.SetArgs(append([]string{"--config", cfgPath, "--log-file", filepath.Join(dir, "test.log")}, args...))
	err := cmd.Execute()
	return out.String(), err
}

func TestQueryCommandPrintsTable(t *testing.T) {
	data := writeFile(t, "fruit.yaml", fruitYAML)

	out, err := execute(t, "query", "--data", data, "ap")
	require.NoError(t, err)
	assert.Contains(t, out, "ID")
	assert.Contains(t, out, "apple")
	assert.Contains(t, out, "apricot")
	assert.NotContains(t, out, "banana")
}

func TestQueryCommandNoResults(t *testing.T) {
	data := writeFile(t, "fruit.yaml", fruitYAML)

	out, err := execute(t, "query", "--data", data, "cherry")
	require.NoError(t, err)
	assert.Contains(t, out, "No results")
}

func TestQueryCommandUsesSampleData(t *testing.T) {
	out, err := execute(t, "query", "swe")
	require.NoError(t, err)
	assert.Contains(t, out, "Sweden")
}

func TestQueryCommandInjectedFailure(t *testing.T) {
	_, err := execute(t, "query", "--fail-rate", "1", "swe")
	assert.ErrorIs(t, err, source.ErrSimulatedFailure)
}

func TestFailedCommandRestoresLogOutput(t *testing.T) {
	dir := t.TempDir()
	cfgPath := filepath.Join(dir, "config.toml")
	require.NoError(t, config.NewConfigService().SaveToPath(config.DefaultConfig(), cfgPath))
	log.SetOutput(os.Stderr)

	err := Execute(context.Background(), []string{
		"--config", cfgPath, "--log-file", filepath.Join(dir, "test.log"),
		"query", "--fail-rate", "1", "swe",
	})
	require.ErrorIs(t, err, source.ErrSimulatedFailure)
	assert.Equal(t, io.Writer(os.Stderr), log.Writer(), "log output still points at the closed file")
}

func TestSourceFlagsAreExclusive(t *testing.T) {
	_, err := execute(t, "query", "--data", "a.yaml", "--repos", ".", "x")
	assert.Error(t, err)
}

func TestInvalidFlagValueFailsValidation(t *testing.T) {
	_, err := execute(t, "query", "--fail-rate", "2", "x")
	assert.ErrorIs(t, err, config.ErrInvalidConfig)
}

func TestInitWritesEffectiveConfig(t *testing.T) {
	path := filepath.Join(t.TempDir(), "out.toml")

	out, err := execute(t, "init", "--latency", "250ms", path)
	require.NoError(t, err)
	assert.Contains(t, out, "Wrote")

	cfg, err := config.NewConfigService().LoadFromPath(path)
	require.NoError(t, err)
	assert.Equal(t, "250ms", cfg.Source.Latency.String())

	_, err = execute(t, "init", path)
	assert.ErrorContains(t, err, "already exists")

	_, err = execute(t, "init", "--force", path)
	assert.NoError(t, err)
}

func TestWidgetOptionsFromConfig(t *testing.T) {
	cfg := config.DefaultConfig()
	cfg.Widget.MinChars = 2
	cfg.Widget.SuggestionsLimit = 4
	cfg.Keys.Submit = []string{"tab"}

	opts := widgetOptions(cfg)
	assert.Equal(t, 2, opts.MinChars)
	assert.Equal(t, 4, opts.Limit)
	assert.Equal(t, cfg.Widget.Debounce.Duration, opts.Debounce)
	assert.Equal(t, []string{"tab"}, opts.KeyMap.Submit.Keys())
	assert.Equal(t, []string{"up", "ctrl+p"}, opts.KeyMap.Up.Keys())
}

func TestBuildExecutorRepos(t *testing.T) {
	root := t.TempDir()
	require.NoError(t, os.MkdirAll(filepath.Join(root, "project", ".git"), 0755))

	cfg := config.DefaultConfig()
	cfg.Source.Kind = config.SourceRepos
	cfg.Source.Path = root

	exec, err := buildExecutor(context.Background(), cfg, eventbus.NullBus{}, log.New(io.Discard, "", 0))
	require.NoError(t, err)
	defer exec.Close()
	assert.Contains(t, exec.Description(), "1 found")

	got, err := exec.Query(context.Background(), "proj")
	require.NoError(t, err)
	require.Len(t, got, 1)
	assert.Equal(t, filepath.Join(root, "project"), got[0].ID)
}

func TestBuildExecutorWrapsSimulation(t *testing.T) {
	cfg := config.DefaultConfig()
	cfg.Source.FailureRate = 0.5

	exec, err := buildExecutor(context.Background(), cfg, eventbus.NullBus{}, log.New(io.Discard, "", 0))
	require.NoError(t, err)
	_, ok := exec.Executor.(*source.Simulated)
	assert.True(t, ok)
	assert.Contains(t, exec.Description(), "50% failures")
}

func TestRunQueryRejectsMalformedResults(t *testing.T) {
	dup := query.ExecutorFunc(func(context.Context, string) ([]domain.Suggestion, error) {
		return []domain.Suggestion{{ID: "a", Text: "x"}, {ID: "a", Text: "y"}}, nil
	})
	_, err := runQuery(context.Background(), dup, "x", 5)
	assert.ErrorIs(t, err, domain.ErrDuplicateID)
}

func TestRunQueryLimit(t *testing.T) {
	got, err := runQuery(context.Background(), source.NewDataset(sampleSuggestions()), "s", 2)
	require.NoError(t, err)
	assert.Len(t, got, 2)
}
