package logger

import (
	"bytes"
	"strings"
	"testing"

	"github.com/fatih/color"
)

func newTestLogger(verbose, debug bool) (Logger, *bytes.Buffer, *bytes.Buffer) {
	var out, errOut bytes.Buffer
	return Logger{Verbose: verbose, Debug: debug, Out: &out, Err: &errOut}, &out, &errOut
}

func TestLogger_Levels(t *testing.T) {
	color.NoColor = true

	tests := []struct {
		name        string
		verbose     bool
		debug       bool
		wantInfo    bool
		wantDebug   bool
		wantWarn    bool
		wantErrLine bool
	}{
		{"quiet", false, false, false, false, false, false},
		{"verbose", true, false, true, false, true, false},
		{"debug", false, true, true, true, true, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			l, out, errOut := newTestLogger(tt.verbose, tt.debug)
			l.Infof("info %d", 1)
			l.Debugf("debug %d", 2)
			l.Warnf("warn %d", 3)
			l.Errorf("error %d", 4)

			if got := strings.Contains(out.String(), "[info] info 1"); got != tt.wantInfo {
				t.Errorf("info shown = %v, want %v", got, tt.wantInfo)
			}
			if got := strings.Contains(out.String(), "[debug] debug 2"); got != tt.wantDebug {
				t.Errorf("debug shown = %v, want %v", got, tt.wantDebug)
			}
			if got := strings.Contains(errOut.String(), "[warn] warn 3"); got != tt.wantWarn {
				t.Errorf("warn shown = %v, want %v", got, tt.wantWarn)
			}
			if got := strings.Contains(errOut.String(), "[error] error 4"); got != tt.wantErrLine {
				t.Errorf("error shown = %v, want %v", got, tt.wantErrLine)
			}
		})
	}
}

func TestLogger_WarnfAlways(t *testing.T) {
	color.NoColor = true
	l, _, errOut := newTestLogger(false, false)

	l.WarnfAlways("key file %s is world readable", "/tmp/key")
	l.WarnfUser("backup not verified")

	if !strings.Contains(errOut.String(), "[warn] key file /tmp/key is world readable") {
		t.Errorf("WarnfAlways output missing: %q", errOut.String())
	}
	if !strings.Contains(errOut.String(), "Warning: backup not verified") {
		t.Errorf("WarnfUser output missing: %q", errOut.String())
	}
}

func TestLogger_ErrorfAndReturn(t *testing.T) {
	l, _, _ := newTestLogger(false, false)

	err := l.ErrorfAndReturn("failed to load %s", "projects")
	if err == nil || err.Error() != "failed to load projects" {
		t.Fatalf("unexpected error: %v", err)
	}
}
