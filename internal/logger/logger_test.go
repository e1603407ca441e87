package logger

import (
	"bytes"
	"os"
	"strings"
	"testing"
)

func TestInfo_Success_Warn_Error_Output(t *testing.T) {
	var buf bytes.Buffer
	log.SetOutput(&buf)
	defer log.SetOutput(os.Stdout)

	Info("TAG", "message")
	Success("TAG", "done")
	Warn("TAG", "careful")
	Error("TAG", "broken")

	out := buf.String()
	for _, want := range []string{"message", "done", "careful", "broken", "TAG"} {
		if !strings.Contains(out, want) {
			t.Errorf("log output missing %q:\n%s", want, out)
		}
	}
}

func TestDebug_HiddenAtInfoLevel(t *testing.T) {
	var buf bytes.Buffer
	log.SetOutput(&buf)
	defer log.SetOutput(os.Stdout)

	Debug("TAG", "invisible")
	if strings.Contains(buf.String(), "invisible") {
		t.Errorf("debug message logged at info level:\n%s", buf.String())
	}
}

func TestBanner_NoPanic(t *testing.T) {
	old := os.Stdout
	r, w, _ := os.Pipe()
	os.Stdout = w
	defer func() { os.Stdout = old }()

	Banner("v1.0.0")
	Banner("")

	w.Close()
	var buf bytes.Buffer
	buf.ReadFrom(r)
}
