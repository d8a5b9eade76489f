package utils

import (
	"os"
	"os/user"
	"path/filepath"
	"strconv"
	"strings"
)

// GetUsername returns the current username.
func GetUsername() (string, error) {
	user, err := user.Current()
	if err != nil {
		return "", err
	}
	return user.Username, nil
}

// GetHostname returns the system hostname.
func GetHostname() (string, error) {
	hostname, err := os.Hostname()
	if err != nil {
		return "", err
	}
	return hostname, nil
}

// UniquePath returns path unchanged if nothing exists there. Otherwise it
// appends a number suffix before the extension (-2, -3, etc.) until the name
// is free.
func UniquePath(path string) string {
	if _, err := os.Lstat(path); os.IsNotExist(err) {
		return path
	}

	ext := filepath.Ext(path)
	base := strings.TrimSuffix(path, ext)
	for suffix := 2; ; suffix++ {
		candidate := base + "-" + strconv.Itoa(suffix) + ext
		if _, err := os.Lstat(candidate); os.IsNotExist(err) {
			return candidate
		}
	}
}
