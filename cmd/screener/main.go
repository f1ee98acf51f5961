package main

import (
	"context"
	"errors"
	"log"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"

	"PatternScout/internal/config"
	"PatternScout/internal/loader"
	"PatternScout/internal/notifier"
	"PatternScout/internal/pattern"
	"PatternScout/internal/recorder"
	"PatternScout/internal/registry"
	"PatternScout/internal/report"
	"PatternScout/internal/scan"
	"PatternScout/internal/scheduler"
)

func newLogger() *zap.Logger {
	zcfg := zap.NewProductionConfig()
	zcfg.EncoderConfig.EncodeTime = zapcore.ISO8601TimeEncoder
	zcfg.EncoderConfig.TimeKey = "time"
	logger, err := zcfg.Build()
	if err != nil {
		log.Fatalf("init logger: %v", err)
	}
	return logger
}

func main() {
	logger := newLogger()
	defer logger.Sync()

	logger.Info("PatternScout starting")

	cfgPath := "configs/config.yaml"
	if v := os.Getenv("CONFIG_PATH"); v != "" {
		cfgPath = v
	}
	cfg, err := config.Load(cfgPath)
	if err != nil {
		logger.Fatal("load config", zap.Error(err))
	}
	if err := cfg.Validate(); err != nil {
		logger.Fatal("config validation", zap.Error(err))
	}

	reg, err := registry.Load(cfg.Data.NamesFile)
	if err != nil {
		logger.Fatal("load name registry", zap.String("path", cfg.Data.NamesFile), zap.Error(err))
	}
	logger.Info("name registry loaded", zap.Int("entries", reg.Len()))

	spec := pattern.Find(cfg.Specs(), cfg.Scan.Pattern)
	logger.Info("pattern selected", zap.String("pattern", spec.Name), zap.String("label", spec.Label))

	bars := loader.NewCSVLoader(cfg.Data.BarsDir)
	scanner := scan.New(bars, bars, reg, cfg.Scan.Workers, logger)
	writer := report.NewCSVWriter(cfg.Output.ResultsDir)

	var rec recorder.Recorder
	if cfg.Output.SQLitePath != "" {
		sr, err := recorder.NewSQLiteRecorder(cfg.Output.SQLitePath, logger)
		if err != nil {
			logger.Warn("init sqlite recorder failed, using noop", zap.Error(err))
			rec = recorder.NewNoopRecorder()
		} else {
			rec = sr
			defer sr.Close()
		}
	} else {
		rec = recorder.NewNoopRecorder()
	}

	var tn *notifier.TelegramNotifier
	if cfg.Telegram.BotToken != "" && cfg.Telegram.ChatID != "" {
		tn = notifier.NewTelegramNotifier(cfg.Telegram.BotToken, cfg.Telegram.ChatID, cfg.Proxy, logger)
		logger.Info("telegram notifier enabled", zap.String("chat_id", cfg.Telegram.ChatID))
	}

	runScan := func() {
		runID := uuid.NewString()
		runLog := logger.With(zap.String("run_id", runID))

		summary, err := scanner.Run(spec)
		if err != nil {
			if errors.Is(err, scan.ErrEmptyUniverse) {
				runLog.Warn("no symbols to scan", zap.String("bars_dir", cfg.Data.BarsDir))
				return
			}
			runLog.Error("scan failed", zap.Error(err))
			return
		}

		ranked := scan.Rank(summary.Signals)
		topN := cfg.Scan.TopN
		if topN <= 0 {
			topN = spec.TopN
		}
		ranked = scan.Truncate(ranked, topN)

		var outputPath string
		if len(ranked) > 0 {
			outputPath, err = writer.Write(spec.Name, time.Now(), ranked)
			if err != nil {
				runLog.Error("write report", zap.Error(err))
			} else {
				runLog.Info("report written",
					zap.String("path", outputPath),
					zap.Int("signals", len(ranked)),
				)
			}
		} else {
			runLog.Info("no matches today", zap.String("pattern", spec.Name))
		}

		scanRec := &recorder.ScanRecord{
			RunID:        runID,
			Pattern:      summary.Pattern,
			UniverseSize: summary.UniverseSize,
			Matched:      len(summary.Signals),
			Failed:       summary.Failed,
			Elapsed:      summary.Elapsed,
			OutputPath:   outputPath,
		}
		if err := rec.RecordScan(scanRec, ranked); err != nil {
			runLog.Error("record scan", zap.Error(err))
		}

		if tn != nil {
			ctx, cancel := context.WithTimeout(context.Background(), 2*time.Minute)
			defer cancel()
			msg := notifier.FormatScanReport(summary, ranked)
			if err := tn.SendWithRetry(ctx, msg, 3); err != nil {
				runLog.Error("telegram notify", zap.Error(err))
			}
		}
	}

	// No cron expression means a one-shot scan, the batch mode used in CI
	// and ad-hoc backfills.
	if cfg.Schedule.ScanCron == "" {
		runScan()
		return
	}

	sched := scheduler.New(logger)
	if err := sched.RegisterScan(cfg.Schedule.ScanCron, runScan); err != nil {
		logger.Fatal("register scan task", zap.Error(err))
	}
	sched.Start()
	defer sched.Stop()

	if os.Getenv("RUN_ON_START") == "true" {
		logger.Info("RUN_ON_START enabled, scanning now")
		go runScan()
	}

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
	<-sigCh
	logger.Info("shutdown signal received, stopping")
}
