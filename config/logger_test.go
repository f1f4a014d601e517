package config

import (
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

func TestLoggingPrepare_FileOnly(t *testing.T) {
	dest := filepath.Join(t.TempDir(), "run.log")
	conf := LoggingConfig{
		ConsoleLogger: LoggerConfig{Level: "none"},
		FileLogger:    LoggerConfig{Level: "normal", Destination: dest, Mode: "overwrite"},
	}

	log, err := conf.Prepare(nil)
	if err != nil {
		t.Fatalf("Prepare() error: %v", err)
	}
	log.Debug("hidden message")
	log.Info("visible message", zap.Int("part", 2))
	_ = log.Sync()

	data, err := os.ReadFile(dest)
	if err != nil {
		t.Fatalf("log file was not created: %v", err)
	}
	if !strings.Contains(string(data), "visible message") {
		t.Errorf("log misses info message: %q", data)
	}
	if strings.Contains(string(data), "hidden message") {
		t.Errorf("log has debug message at normal level: %q", data)
	}
}

func TestLoggingPrepare_ReportForcesDebug(t *testing.T) {
	dir := t.TempDir()
	rpt, err := (&ReporterConfig{Destination: filepath.Join(dir, "report.zip")}).Prepare()
	if err != nil {
		t.Fatalf("report Prepare() error: %v", err)
	}
	defer rpt.Close()

	conf := LoggingConfig{
		ConsoleLogger: LoggerConfig{Level: "none"},
		FileLogger:    LoggerConfig{Level: "none", Destination: filepath.Join(dir, "run.log")},
	}
	log, err := conf.Prepare(rpt)
	if err != nil {
		t.Fatalf("Prepare() error: %v", err)
	}
	log.Debug("debug message")
	_ = log.Sync()

	data, err := os.ReadFile(filepath.Join(dir, "run.log"))
	if err != nil {
		t.Fatalf("log file was not created: %v", err)
	}
	if !strings.Contains(string(data), "debug message") {
		t.Errorf("debug report must force debug file log: %q", data)
	}
	if _, ok := rpt.entries["final.log"]; !ok {
		t.Error("log file was not added to the report")
	}
}

func TestConsoleEncoder_DropsVerboseErrors(t *testing.T) {
	enc := newEncoder(zap.NewDevelopmentEncoderConfig())

	err := errors.New("short")
	buf, eerr := enc.EncodeEntry(zapcore.Entry{Message: "failed"}, []zapcore.Field{zap.Error(err)})
	if eerr != nil {
		t.Fatalf("EncodeEntry() error: %v", eerr)
	}
	if !strings.Contains(buf.String(), "short") {
		t.Errorf("error text lost: %q", buf.String())
	}
	if strings.Contains(buf.String(), "errorVerbose") {
		t.Errorf("verbose error kept: %q", buf.String())
	}
}
