package cli

import (
	"bytes"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/rustyeddy/tradegame/config"
)

func run(t *testing.T, stdin string, args ...string) (string, error) {
	t.Helper()
	cmd := NewRootCmd()
	var out bytes.Buffer
	cmd.SetOut(&out)
	cmd.SetErr(&bytes.Buffer{})
	cmd.SetIn(strings.NewReader(stdin))
	cmd.SetArgs(args)
	err := cmd.Execute()
	return out.String(), err
}

// demoConfig writes a config that plays generated prices and journals to
// SQLite inside dir.
func demoConfig(t *testing.T, dir string) (string, string) {
	t.Helper()
	cfg := config.Default()
	cfg.Instruments = []config.InstrumentConfig{{Name: "OTP", Symbol: "OTP.BD"}, {Name: "Apple", Symbol: "AAPL"}}
	cfg.Data = config.DataConfig{Source: config.SourceStatic}
	cfg.Journal.DBPath = filepath.Join(dir, "game.sqlite")
	cfg.Log.Level = "error"

	path := filepath.Join(dir, "game.yaml")
	require.NoError(t, cfg.SaveToFile(path))
	return path, cfg.Journal.DBPath
}

func TestVersion(t *testing.T) {
	out, err := run(t, "", "version")
	require.NoError(t, err)
	assert.Equal(t, "tradegame version 1.0.0\n", out)
}

func TestConfigInitAndValidate(t *testing.T) {
	path := filepath.Join(t.TempDir(), "game.yaml")

	out, err := run(t, "", "config", "init", "-o", path)
	require.NoError(t, err)
	assert.Contains(t, out, "Created default configuration")

	out, err = run(t, "", "config", "validate", path)
	require.NoError(t, err)
	assert.Contains(t, out, "Configuration valid")
	assert.Contains(t, out, "Instruments: 8")
	assert.Contains(t, out, "Journal: sqlite")
}

func TestConfigValidateRejects(t *testing.T) {
	path := filepath.Join(t.TempDir(), "bad.yaml")
	require.NoError(t, os.WriteFile(path, []byte("game:\n  player: x\n"), 0644))

	_, err := run(t, "", "config", "validate", path)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "validation failed")

	_, err = run(t, "", "config", "validate")
	assert.Error(t, err)
}

func TestPlayAndReport(t *testing.T) {
	dir := t.TempDir()
	cfgPath, dbPath := demoConfig(t, dir)

	out, err := run(t, "status\nmax buy otp\ngo 30\nreport\nquit\n", "play", "-c", cfgPath, "--player", "alice")
	require.NoError(t, err)
	assert.Contains(t, out, "[day 30] > ")
	assert.Contains(t, out, "day 30  funds 1000.00")
	assert.Contains(t, out, "salary 1000.00")
	assert.Contains(t, out, "* GAME: alice")

	out, err = run(t, "", "report", "--db", dbPath)
	require.NoError(t, err)
	assert.Contains(t, out, "* GAME: alice")
}

func TestFetchWritesCSV(t *testing.T) {
	dir := t.TempDir()
	cfgPath, _ := demoConfig(t, dir)
	outDir := filepath.Join(dir, "data")

	out, err := run(t, "", "fetch", "-c", cfgPath, "--out", outDir)
	require.NoError(t, err)
	assert.Contains(t, out, "OTP")
	assert.Contains(t, out, "AAPL")

	for _, sym := range []string{"OTP.BD", "AAPL"} {
		_, err := os.Stat(filepath.Join(outDir, sym+".csv"))
		assert.NoError(t, err, sym)
	}

	// the written files feed the csv source
	cfg, err := config.LoadFromFile(cfgPath)
	require.NoError(t, err)
	cfg.Data = config.DataConfig{Source: config.SourceCSV, Dir: outDir}
	csvPath := filepath.Join(dir, "csv.yaml")
	require.NoError(t, cfg.SaveToFile(csvPath))

	out, err = run(t, "quit\n", "play", "-c", csvPath)
	require.NoError(t, err)
	assert.Contains(t, out, "[day 30] > ")
}

func TestPlayDemoOverridesSource(t *testing.T) {
	dir := t.TempDir()
	cfg := config.Default()
	cfg.Data = config.DataConfig{Source: config.SourceCSV, Dir: filepath.Join(dir, "missing")}
	cfg.Journal = config.JournalConfig{Type: config.JournalNone}
	path := filepath.Join(dir, "game.yaml")
	require.NoError(t, cfg.SaveToFile(path))

	_, err := run(t, "quit\n", "play", "-c", path, "--log-level", "error")
	assert.Error(t, err)

	_, err = run(t, "quit\n", "play", "-c", path, "--demo", "--log-level", "error")
	assert.NoError(t, err)
}
