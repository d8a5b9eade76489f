package workflows

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"runtime"
	"sort"
	"sync"

	"github.com/PolarWolf314/pulse/internal/audit"
	"github.com/PolarWolf314/pulse/internal/cipher"
	"github.com/PolarWolf314/pulse/internal/configs"
	perrors "github.com/PolarWolf314/pulse/internal/errors"
	"github.com/PolarWolf314/pulse/internal/kvstore"
	"github.com/PolarWolf314/pulse/internal/securefs"
	"github.com/PolarWolf314/pulse/internal/tracker"
	"github.com/PolarWolf314/pulse/internal/utils"
	"golang.org/x/sync/errgroup"
)

// CheckStatus represents the result status of a health check.
type CheckStatus int

const (
	// CheckPass means the check passed.
	CheckPass CheckStatus = iota
	// CheckWarning means the check found a non-critical issue.
	CheckWarning
	// CheckError means the check found a critical issue.
	CheckError
)

// String returns a string representation of CheckStatus.
func (s CheckStatus) String() string {
	switch s {
	case CheckPass:
		return "pass"
	case CheckWarning:
		return "warning"
	case CheckError:
		return "error"
	default:
		return "unknown"
	}
}

// MarshalJSON implements json.Marshaler for CheckStatus.
func (s CheckStatus) MarshalJSON() ([]byte, error) {
	return json.Marshal(s.String())
}

// CheckResult holds the result of a single health check.
type CheckResult struct {
	Name       string      `json:"name"`
	Status     CheckStatus `json:"status"`
	Message    string      `json:"message"`
	Suggestion string      `json:"suggestion,omitempty"`
}

// DoctorResult holds the complete result of the doctor workflow.
type DoctorResult struct {
	Checks      []CheckResult `json:"checks"`
	Summary     DoctorSummary `json:"summary"`
	Suggestions []string      `json:"suggestions,omitempty"`
}

// DoctorSummary holds counts of checks by status.
type DoctorSummary struct {
	Passed   int `json:"passed"`
	Warnings int `json:"warnings"`
	Errors   int `json:"errors"`
}

// DoctorOptions configures the doctor workflow.
type DoctorOptions struct {
	// DataPath overrides the configured data directory.
	DataPath string

	// Concurrency bounds parallel record verification. 0 means GOMAXPROCS.
	Concurrency int
}

// doctorState carries what earlier checks learned to later ones.
type doctorState struct {
	opts     DoctorOptions
	settings *configs.Settings
	cipher   *cipher.Cipher
	dataPath string
}

// Doctor runs health checks on the configuration and data directory.
//
// The doctor workflow checks:
//   - settings.toml validity
//   - Key mode, key file presence and permissions
//   - The encrypted app config
//   - Data directory existence and writability
//   - That every record decrypts and parses
//   - The audit log
func Doctor(ctx context.Context, opts DoctorOptions) (*DoctorResult, error) {
	state := &doctorState{opts: opts}

	checks := []func(context.Context, *doctorState) CheckResult{
		checkSettings,
		checkKey,
		checkAppConfig,
		checkDataDirectory,
		checkRecords,
		checkAuditLog,
	}

	var results []CheckResult
	for _, check := range checks {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		results = append(results, check(ctx, state))
	}

	summary := calculateDoctorSummary(results)

	// Collect suggestions (deduplicated).
	var suggestions []string
	seen := make(map[string]bool)
	for _, result := range results {
		if result.Suggestion != "" && result.Status != CheckPass && !seen[result.Suggestion] {
			suggestions = append(suggestions, result.Suggestion)
			seen[result.Suggestion] = true
		}
	}

	return &DoctorResult{
		Checks:      results,
		Summary:     summary,
		Suggestions: suggestions,
	}, nil
}

// checkSettings checks that settings.toml parses. Later checks fall back to
// the defaults when it does not.
func checkSettings(_ context.Context, state *doctorState) CheckResult {
	settings, err := configs.LoadSettings()
	if err != nil {
		state.settings = configs.DefaultSettings()
		return CheckResult{
			Name:       "Settings",
			Status:     CheckError,
			Message:    fmt.Sprintf("Failed to load settings: %v", err),
			Suggestion: fmt.Sprintf("Check %s for syntax errors", configs.UserPulseSettings.SettingsPath),
		}
	}
	state.settings = settings

	return CheckResult{
		Name:    "Settings",
		Status:  CheckPass,
		Message: fmt.Sprintf("Settings valid (storage: %s, key: %s)", settings.Storage.Backend, settings.Key.Mode),
	}
}

// checkKey checks the key for the configured mode, including key file permissions.
func checkKey(_ context.Context, state *doctorState) CheckResult {
	if state.settings.Key.Mode != configs.KeyModeKeyFile {
		c, err := cipher.Default()
		if err != nil {
			return CheckResult{Name: "Encryption key", Status: CheckError, Message: err.Error()}
		}
		state.cipher = c
		return CheckResult{
			Name:       "Encryption key",
			Status:     CheckWarning,
			Message:    "Using the legacy key shared by every installation",
			Suggestion: "Run 'pulse rekey --to keyfile' to switch to a per-installation key",
		}
	}

	keyPath := state.settings.KeyPath()
	info, err := os.Stat(keyPath)
	if os.IsNotExist(err) {
		return CheckResult{
			Name:       "Encryption key",
			Status:     CheckError,
			Message:    fmt.Sprintf("Key file not found at %s", keyPath),
			Suggestion: "Run 'pulse init' to generate a key, or restore the key file from a backup",
		}
	}
	if err != nil {
		return CheckResult{
			Name:       "Encryption key",
			Status:     CheckError,
			Message:    fmt.Sprintf("Failed to stat key file: %v", err),
			Suggestion: "Check that the key file is accessible",
		}
	}

	c, _, err := loadCipher(state.settings, false)
	if err != nil {
		return CheckResult{
			Name:       "Encryption key",
			Status:     CheckError,
			Message:    fmt.Sprintf("Key file is unusable: %v", err),
			Suggestion: "Restore the key file from a backup",
		}
	}
	state.cipher = c

	// Check permissions (should be 0600).
	mode := info.Mode().Perm()
	if mode != 0600 {
		return CheckResult{
			Name:       "Encryption key",
			Status:     CheckWarning,
			Message:    fmt.Sprintf("Key file has insecure permissions (%04o)", mode),
			Suggestion: fmt.Sprintf("Run 'chmod 600 %s' to fix permissions", keyPath),
		}
	}

	return CheckResult{
		Name:    "Encryption key",
		Status:  CheckPass,
		Message: "Key file present with correct permissions (0600)",
	}
}

// checkAppConfig checks that the app config decrypts and names a data directory.
func checkAppConfig(_ context.Context, state *doctorState) CheckResult {
	if state.cipher == nil {
		return CheckResult{
			Name:    "App configuration",
			Status:  CheckWarning,
			Message: "Skipped: no usable key",
		}
	}

	cfg, err := configs.LoadAppConfig(securefs.New(state.cipher))
	if err != nil {
		suggestion := fmt.Sprintf("Remove %s and run 'pulse init' again", configs.UserPulseSettings.AppConfigPath)
		if errors.Is(err, perrors.ErrAuthentication) {
			suggestion = "The app config was written with a different key; check the key mode in settings.toml"
		}
		return CheckResult{
			Name:       "App configuration",
			Status:     CheckError,
			Message:    fmt.Sprintf("Failed to read app config: %v", err),
			Suggestion: suggestion,
		}
	}

	path, err := configs.ResolveDataPath(state.opts.DataPath, cfg)
	if err == nil {
		state.dataPath = path
	}

	if cfg.ProjectDataPath == "" {
		return CheckResult{
			Name:       "App configuration",
			Status:     CheckWarning,
			Message:    "No data directory saved in the app config",
			Suggestion: "Run 'pulse init' to choose a data directory",
		}
	}

	return CheckResult{
		Name:    "App configuration",
		Status:  CheckPass,
		Message: fmt.Sprintf("App config readable (data directory: %s)", cfg.ProjectDataPath),
	}
}

// checkDataDirectory checks the data directory exists and is writable.
func checkDataDirectory(_ context.Context, state *doctorState) CheckResult {
	path := state.dataPath
	if path == "" {
		var err error
		path, err = configs.ResolveDataPath(state.opts.DataPath, nil)
		if err != nil {
			return CheckResult{
				Name:       "Data directory",
				Status:     CheckError,
				Message:    fmt.Sprintf("Data directory unavailable: %v", err),
				Suggestion: "Run 'pulse init --path DIR' to choose a data directory",
			}
		}
		state.dataPath = path
	}

	if err := utils.CheckWritableDir(path); err != nil {
		return CheckResult{
			Name:       "Data directory",
			Status:     CheckError,
			Message:    fmt.Sprintf("Data directory %s is not writable: %v", path, err),
			Suggestion: "Check the permissions of the data directory",
		}
	}

	return CheckResult{
		Name:    "Data directory",
		Status:  CheckPass,
		Message: fmt.Sprintf("Data directory %s is writable", path),
	}
}

// checkRecords decrypts and parses every record in parallel.
func checkRecords(ctx context.Context, state *doctorState) CheckResult {
	if state.cipher == nil || state.dataPath == "" {
		return CheckResult{
			Name:    "Records",
			Status:  CheckWarning,
			Message: "Skipped: no usable key or data directory",
		}
	}

	var (
		total  int
		failed []string
		err    error
	)
	if state.settings.Storage.Backend == configs.BackendSQLite {
		total, failed, err = verifyDatabase(state.dataPath, state.cipher)
	} else {
		total, failed, err = verifyRecordFiles(ctx, state.dataPath, state.cipher, state.opts.Concurrency)
	}
	if err != nil {
		return CheckResult{
			Name:       "Records",
			Status:     CheckError,
			Message:    fmt.Sprintf("Failed to enumerate records: %v", err),
			Suggestion: "Check that the data directory is readable",
		}
	}

	if len(failed) > 0 {
		return CheckResult{
			Name:       "Records",
			Status:     CheckError,
			Message:    fmt.Sprintf("%d of %d records cannot be read:%s", len(failed), total, utils.FormatPaths(failed)),
			Suggestion: "Restore the damaged records with 'pulse import' from a recent backup",
		}
	}

	return CheckResult{
		Name:    "Records",
		Status:  CheckPass,
		Message: fmt.Sprintf("All %d records decrypt and parse", total),
	}
}

// FindRecordFiles lists the record files of a data directory, relative to
// dir. It matches the records the file backend loads and saves.
func FindRecordFiles(dir string) ([]string, error) {
	names, err := tracker.NewFileBackend(dir, nil).Names()
	if err != nil {
		return nil, err
	}

	files := make([]string, len(names))
	for i, name := range names {
		files[i] = name + ".json"
	}
	return files, nil
}

func concurrencyLimit(n int) int {
	if n > 0 {
		return n
	}
	return runtime.GOMAXPROCS(0)
}

func verifyRecordFiles(ctx context.Context, dir string, c *cipher.Cipher, concurrency int) (int, []string, error) {
	files, err := FindRecordFiles(dir)
	if err != nil {
		return 0, nil, err
	}

	store := securefs.New(c)
	var (
		mu     sync.Mutex
		failed []string
	)

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(concurrencyLimit(concurrency))
	for _, rel := range files {
		g.Go(func() error {
			if err := gctx.Err(); err != nil {
				return err
			}
			if _, _, err := store.ReadRaw(filepath.Join(dir, filepath.FromSlash(rel))); err != nil {
				mu.Lock()
				failed = append(failed, fmt.Sprintf("%s: %v", rel, err))
				mu.Unlock()
			}
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return 0, nil, err
	}

	sort.Strings(failed)
	return len(files), failed, nil
}

func verifyDatabase(dataPath string, c *cipher.Cipher) (int, []string, error) {
	if _, err := os.Stat(DatabasePath(dataPath)); os.IsNotExist(err) {
		return 0, nil, nil
	}

	kv, err := kvstore.Open(DatabasePath(dataPath), c)
	if err != nil {
		return 0, nil, err
	}
	defer kv.Close()

	keys, err := kv.Keys()
	if err != nil {
		return 0, nil, err
	}

	var failed []string
	for _, k := range keys {
		var v any
		if _, err := kv.Get(k, &v); err != nil {
			failed = append(failed, fmt.Sprintf("%s: %v", k, err))
		}
	}
	return len(keys), failed, nil
}

// checkAuditLog reports how many audit entries the data directory has.
func checkAuditLog(_ context.Context, state *doctorState) CheckResult {
	if state.dataPath == "" {
		return CheckResult{
			Name:    "Audit log",
			Status:  CheckWarning,
			Message: "Skipped: no data directory",
		}
	}

	entries, err := audit.ReadEntries(state.dataPath)
	if err != nil {
		return CheckResult{
			Name:       "Audit log",
			Status:     CheckWarning,
			Message:    fmt.Sprintf("Failed to read audit log: %v", err),
			Suggestion: fmt.Sprintf("Check the permissions of %s", audit.LogPath(state.dataPath)),
		}
	}

	return CheckResult{
		Name:    "Audit log",
		Status:  CheckPass,
		Message: fmt.Sprintf("Audit log has %d entries", len(entries)),
	}
}

// calculateDoctorSummary calculates the counts of checks by status.
func calculateDoctorSummary(results []CheckResult) DoctorSummary {
	var summary DoctorSummary
	for _, result := range results {
		switch result.Status {
		case CheckPass:
			summary.Passed++
		case CheckWarning:
			summary.Warnings++
		case CheckError:
			summary.Errors++
		}
	}
	return summary
}
