// Command atomspace-server hosts the JSON/WebSocket frontend over a
// fresh in-memory AtomSpace, wired to an attention bank and a small
// Deduction rule catalog. It loads atomspace.snapshot.json from the
// working directory if present and saves it on shutdown, so a restart
// never loses the atoms it was given.
package main

import (
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"go.uber.org/zap"

	"github.com/EchoCog/atomspace/core/atomspace"
	"github.com/EchoCog/atomspace/core/ecan"
	"github.com/EchoCog/atomspace/core/storage"
	"github.com/EchoCog/atomspace/core/ure"
	"github.com/EchoCog/atomspace/internal/config"
	"github.com/EchoCog/atomspace/server"
)

func main() {
	if err := run(); err != nil {
		fmt.Fprintln(os.Stderr, "error:", err)
		os.Exit(1)
	}
}

func run() error {
	cfg := config.Default()

	logger, err := zap.NewProduction()
	if err != nil {
		return fmt.Errorf("build logger: %w", err)
	}
	defer logger.Sync()
	sugar := logger.Sugar()

	as := atomspace.New(sugar)

	snapshotPath := "atomspace.snapshot.json"
	writer := storage.NewSnapshotWriter(snapshotPath)
	if _, err := os.Stat(snapshotPath); err == nil {
		if err := writer.LoadInto(as); err != nil {
			return fmt.Errorf("load snapshot: %w", err)
		}
		sugar.Infow("loaded snapshot", "path", snapshotPath, "atoms", as.Size())
	}

	bankCfg := ecan.Config{
		STIFund:                cfg.Attention.STIFund,
		LTIFund:                cfg.Attention.LTIFund,
		ThresholdSTI:           cfg.Attention.ThresholdSTI,
		ThresholdLTI:           cfg.Attention.ThresholdLTI,
		RentRateSTI:            cfg.Attention.RentRateSTI,
		RentRateLTI:            cfg.Attention.RentRateLTI,
		ForgettingThresholdSTI: cfg.Attention.ForgettingThresholdSTI,
		SpreadThresholdSTI:     cfg.Attention.SpreadThresholdSTI,
		SpreadFraction:         cfg.Attention.SpreadFraction,
	}
	bank := ecan.New(as, bankCfg)

	engine := ure.New(as, []ure.Rule{ure.Deduction(atomspace.InheritanceLink)}, ure.Config{
		StepBudget: cfg.Reasoning.ChainStepBudget,
		MaxDepth:   cfg.Reasoning.MaxDepth,
	})
	const hebbianBoost = 1.1
	engine.OnCooccurrence = func(a, b atomspace.Handle) {
		bank.RecordCooccurrence(a, b, hebbianBoost)
	}

	srv := server.New(as, bank, engine, sugar)

	errCh := make(chan error, 1)
	go func() { errCh <- srv.Run("0.0.0.0:5000") }()

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)

	select {
	case err := <-errCh:
		if err != nil {
			return fmt.Errorf("server: %w", err)
		}
	case <-sigCh:
		sugar.Info("shutting down")
	}

	if err := writer.Save(as); err != nil {
		return fmt.Errorf("save snapshot on shutdown: %w", err)
	}
	return nil
}
