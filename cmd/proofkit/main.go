// Command proofkit loads a .pk formula file into a knowledge base and
// proves one query, printing each resulting proof's substitution. It
// generalizes gitrdm-gokando/cmd/example's fixed in-source demo goal
// into a file-driven tool, grounded on lirlia/day1_todo_app and
// lirlia/day29-fireworks-controller's cobra wiring for a
// database-backed CLI.
package main

import (
	"context"
	"fmt"
	"os"

	"github.com/pkg/errors"
	"github.com/spf13/cobra"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"

	"github.com/corvidlabs/proofkit/pkg/kb"
	"github.com/corvidlabs/proofkit/pkg/kb/parse"
	"github.com/corvidlabs/proofkit/pkg/storage"
	"github.com/corvidlabs/proofkit/pkg/term"
)

var (
	configPath  string
	formulaPath string
	queryText   string
)

func main() {
	if err := newRootCmd().Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func newRootCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "proofkit",
		Short: "Assert formulas and prove a query against a first-order-logic knowledge base",
		RunE:  runProve,
	}
	cmd.Flags().StringVar(&configPath, "config", "proofkit.yaml", "path to proofkit.yaml")
	cmd.Flags().StringVar(&formulaPath, "formulas", "", "path to a .pk file of formulas to assert (required)")
	cmd.Flags().StringVar(&queryText, "query", "", "s-expression query to prove (required)")
	_ = cmd.MarkFlagRequired("formulas")
	_ = cmd.MarkFlagRequired("query")
	return cmd
}

func runProve(cmd *cobra.Command, args []string) error {
	cfg, err := LoadConfig(configPath)
	if err != nil {
		return err
	}

	logger, err := buildLogger(cfg.LogLevel)
	if err != nil {
		return err
	}
	defer logger.Sync() //nolint:errcheck

	consts := term.NewConstantSource()
	backend, closeBackend, err := buildBackend(cfg, consts)
	if err != nil {
		return err
	}
	defer closeBackend()

	kbase := kb.NewKnowledgeBase(
		kb.WithStorage(backend),
		kb.WithLogger(logger),
		kb.WithBufferSize(cfg.BufferSize),
		kb.WithConstantSource(consts),
	)
	parser := parse.New(kbase.ConstantSource(), kbase.VariableSource())

	formulaSrc, err := os.ReadFile(formulaPath)
	if err != nil {
		return errors.Wrap(err, "read formulas file")
	}
	formulas, err := parser.Formulas(string(formulaSrc))
	if err != nil {
		return errors.Wrap(err, "parse formulas")
	}
	if err := kbase.AddFormulas(formulas...); err != nil {
		return errors.Wrap(err, "assert formulas")
	}

	query, err := parser.Formula(queryText)
	if err != nil {
		return errors.Wrap(err, "parse query")
	}

	ch, cancel, err := kbase.Prove(context.Background(), query, nil, false)
	if err != nil {
		return errors.Wrap(err, "prove")
	}
	defer cancel()

	count := 0
	for res := range ch {
		if res.Err != nil {
			return errors.Wrap(res.Err, "proof stream")
		}
		count++
		fmt.Printf("proof %d: %s  [%s]\n", count, res.Proof.Conclusion, res.Proof.Substitution)
	}
	if count == 0 {
		fmt.Println("no proofs found")
	}
	return nil
}

func buildLogger(level string) (*zap.Logger, error) {
	var zapLevel zapcore.Level
	if err := zapLevel.UnmarshalText([]byte(level)); err != nil {
		return nil, errors.Wrapf(err, "invalid log_level %q", level)
	}
	cfg := zap.NewProductionConfig()
	cfg.Level = zap.NewAtomicLevelAt(zapLevel)
	return cfg.Build()
}

// buildBackend boots the storage.Backend named by cfg.Storage. The
// returned close function releases any resources the backend holds
// (a no-op for the in-memory backend).
func buildBackend(cfg *Config, consts *term.ConstantSource) (storage.Backend, func(), error) {
	switch cfg.Storage {
	case "bolt":
		b, err := storage.OpenBolt(cfg.BoltPath, consts)
		if err != nil {
			return nil, nil, errors.Wrap(err, "open bolt backend")
		}
		return b, func() { _ = b.Close() }, nil
	default:
		return storage.NewMemory(), func() {}, nil
	}
}
