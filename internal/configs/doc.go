// Package configs manages pulse's per-user configuration.
//
// Two files live in the user config directory (<UserConfigDir>/pulse):
//
//   - settings.toml: plain TOML chosen by the user (storage backend, key
//     mode, default task color). A missing file means defaults.
//   - app-config.json: the project data directory, encrypted with the same
//     envelope as the data files so the desktop application can read it.
//
// UserPulseSettings is initialized at startup and may be replaced in tests.
package configs
