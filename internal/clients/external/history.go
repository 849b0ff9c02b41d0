package external

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"os"
	"os/exec"
	"path/filepath"
	"sort"
	"strconv"
	"strings"
	"time"

	"github.com/sagaforge/saga-api/internal/errors"
)

const (
	defaultSimulateTimeout = 5 * time.Minute
	defaultExportTimeout   = 30 * time.Second

	seedFileName   = "seed_state.json"
	exportFileName = "master_export.json"
	historyDirName = "history"
)

// HistoryEngine drives the headless world-history generator. The
// binary is external; it reads a seed state, simulates the requested
// span, and writes a master export plus per-year snapshots.
type HistoryEngine interface {
	// Simulate runs the engine for the given years and returns the
	// master export it produced
	Simulate(ctx context.Context, agents []AgentSeed, years int) (*MasterExport, error)

	// ExportSnapshot re-exports a historical snapshot into the master
	// export file and returns it
	ExportSnapshot(ctx context.Context, year int) (*MasterExport, error)

	// Years lists the snapshot years available on disk
	Years() ([]int, error)
}

// ExecHistoryEngine shells out to the engine binary.
type ExecHistoryEngine struct {
	binPath string
	dataDir string
}

// ExecHistoryEngineConfig holds the engine settings.
type ExecHistoryEngineConfig struct {
	// BinPath is the engine executable.
	BinPath string
	// DataDir holds seed_state.json, master_export.json, history/.
	DataDir string
}

// Validate checks required fields.
func (cfg *ExecHistoryEngineConfig) Validate() error {
	if cfg == nil {
		return errors.InvalidArgument("config is required")
	}
	if cfg.BinPath == "" {
		return errors.InvalidArgument("engine binary path is required")
	}
	if cfg.DataDir == "" {
		return errors.InvalidArgument("data directory is required")
	}
	return nil
}

// NewExecHistoryEngine creates an exec-backed history engine.
func NewExecHistoryEngine(cfg *ExecHistoryEngineConfig) (*ExecHistoryEngine, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &ExecHistoryEngine{binPath: cfg.BinPath, dataDir: cfg.DataDir}, nil
}

// Simulate implements HistoryEngine.
func (e *ExecHistoryEngine) Simulate(ctx context.Context, agents []AgentSeed, years int) (*MasterExport, error) {
	if years <= 0 {
		return nil, errors.InvalidArgumentf("cannot simulate %d years", years)
	}
	if _, err := os.Stat(e.binPath); err != nil {
		return nil, errors.Unavailablef("history engine binary missing at %s", e.binPath)
	}

	seed, err := json.Marshal(map[string]interface{}{"agents": agents})
	if err != nil {
		return nil, errors.Wrap(err, "failed to encode seed state")
	}
	seedPath := filepath.Join(e.dataDir, seedFileName)
	if err := os.WriteFile(seedPath, seed, 0o644); err != nil {
		return nil, errors.Wrapf(err, "failed to write seed state %s", seedPath)
	}

	runCtx, cancel := context.WithTimeout(ctx, defaultSimulateTimeout)
	defer cancel()

	cmd := exec.CommandContext(runCtx, e.binPath, strconv.Itoa(years))
	cmd.Dir = e.dataDir
	out, err := cmd.CombinedOutput()
	if err != nil {
		return nil, errors.Internalf("history engine failed: %v: %s", err, tail(string(out), 5))
	}
	slog.InfoContext(ctx, "history simulation finished",
		"years", years,
		"output_tail", tail(string(out), 5),
	)

	return e.readExport()
}

// ExportSnapshot implements HistoryEngine.
func (e *ExecHistoryEngine) ExportSnapshot(ctx context.Context, year int) (*MasterExport, error) {
	snapshot := filepath.Join(e.dataDir, historyDirName, fmt.Sprintf("year_%d.map", year))
	if _, err := os.Stat(snapshot); err != nil {
		return nil, errors.NotFoundf("snapshot for year %d", year)
	}

	runCtx, cancel := context.WithTimeout(ctx, defaultExportTimeout)
	defer cancel()

	cmd := exec.CommandContext(runCtx, e.binPath, "--export", snapshot)
	cmd.Dir = e.dataDir
	if out, err := cmd.CombinedOutput(); err != nil {
		return nil, errors.Internalf("snapshot export failed: %v: %s", err, tail(string(out), 5))
	}
	return e.readExport()
}

// Years implements HistoryEngine.
func (e *ExecHistoryEngine) Years() ([]int, error) {
	dir := filepath.Join(e.dataDir, historyDirName)
	dirents, err := os.ReadDir(dir)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, nil
		}
		return nil, errors.Wrapf(err, "failed to read history directory %s", dir)
	}

	var years []int
	for _, d := range dirents {
		name := d.Name()
		if !strings.HasPrefix(name, "year_") || !strings.HasSuffix(name, ".map") {
			continue
		}
		y, err := strconv.Atoi(strings.TrimSuffix(strings.TrimPrefix(name, "year_"), ".map"))
		if err != nil {
			continue
		}
		years = append(years, y)
	}
	sort.Ints(years)
	return years, nil
}

func (e *ExecHistoryEngine) readExport() (*MasterExport, error) {
	path := filepath.Join(e.dataDir, exportFileName)
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, errors.Wrapf(err, "failed to read master export %s", path)
	}
	var export MasterExport
	if err := json.Unmarshal(data, &export); err != nil {
		return nil, errors.Wrapf(err, "failed to decode master export %s", path)
	}
	return &export, nil
}

func tail(s string, n int) string {
	lines := strings.Split(strings.TrimSpace(s), "\n")
	if len(lines) > n {
		lines = lines[len(lines)-n:]
	}
	return strings.Join(lines, " | ")
}
