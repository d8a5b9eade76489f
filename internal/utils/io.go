package utils

import (
	"bufio"
	"fmt"
	"io"
	"strings"
)

// ReadLine reads the first line from r without its line ending.
func ReadLine(r io.Reader) (string, error) {
	line, err := bufio.NewReader(r).ReadString('\n')
	if err != nil && err != io.EOF {
		return "", fmt.Errorf("failed to read input: %w", err)
	}
	line = strings.TrimRight(line, "\r\n")
	if line == "" {
		return "", fmt.Errorf("input is empty")
	}
	return line, nil
}
