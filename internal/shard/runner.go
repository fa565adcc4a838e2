package shard

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log"
	"os"
	"os/exec"
	"path/filepath"
	"strconv"

	"golang.org/x/sync/errgroup"

	"github.com/themizzi/bookstore/internal/config"
)

// DefaultCommand runs the Gherkin suite for a single feature file
var DefaultCommand = []string{"go", "test", "-tags", "e2e", "-count=1", "-run", "TestFeatures", "./e2e/saucedemo"}

// ExecFunc runs one command to completion
type ExecFunc func(ctx context.Context, args []string, env []string, stdout, stderr io.Writer) error

// Result is the outcome of one feature run
type Result struct {
	Feature string
	Report  string
	Err     error
}

// Summary collects the results of one shard
type Summary struct {
	Shard   config.ShardConfig
	Results []Result
}

// Failed counts the feature runs that returned an error
func (s Summary) Failed() int {
	failed := 0
	for _, r := range s.Results {
		if r.Err != nil {
			failed++
		}
	}
	return failed
}

// Runner executes the features of a shard one after another
type Runner struct {
	FeaturesDir string
	ReportsDir  string
	Command     []string
	Stdout      io.Writer
	Stderr      io.Writer
	Exec        ExecFunc
}

// NewRunner creates a runner with the default command and process execution
func NewRunner(featuresDir, reportsDir string) *Runner {
	return &Runner{
		FeaturesDir: featuresDir,
		ReportsDir:  reportsDir,
		Command:     DefaultCommand,
		Stdout:      os.Stdout,
		Stderr:      os.Stderr,
		Exec:        execCommand,
	}
}

// ReportPath returns the JSON report location for the i-th feature (0-based) of a shard
func (r *Runner) ReportPath(shardIndex, i int) string {
	return filepath.Join(r.ReportsDir, fmt.Sprintf("cucumber-report-%d-%d.json", shardIndex, i))
}

// Files returns the feature files owned by the shard
func (r *Runner) Files(shard config.ShardConfig) ([]string, error) {
	files, err := Discover(r.FeaturesDir)
	if err != nil {
		return nil, err
	}
	return Partition(files, shard.Index, shard.Total)
}

// Run executes every feature of the shard. A failing feature is logged and
// recorded in the summary; the remaining features still run.
func (r *Runner) Run(ctx context.Context, shard config.ShardConfig) (Summary, error) {
	summary := Summary{Shard: shard, Results: []Result{}}

	files, err := r.Files(shard)
	if err != nil {
		return summary, err
	}

	log.Printf("Shard %d/%d running %d features", shard.Index, shard.Total, len(files))
	if len(files) == 0 {
		return summary, nil
	}

	if err := os.MkdirAll(r.ReportsDir, 0o755); err != nil {
		return summary, fmt.Errorf("failed to create reports directory: %w", err)
	}

	for i, feature := range files {
		if err := ctx.Err(); err != nil {
			return summary, err
		}

		// go test runs in the package directory, so hand it absolute paths
		featurePath, err := filepath.Abs(filepath.Join(r.FeaturesDir, feature))
		if err != nil {
			return summary, fmt.Errorf("failed to resolve %s: %w", feature, err)
		}
		report, err := filepath.Abs(r.ReportPath(shard.Index, i))
		if err != nil {
			return summary, fmt.Errorf("failed to resolve report path: %w", err)
		}
		log.Printf("Running feature %d/%d: %s", i+1, len(files), feature)

		env := append(os.Environ(),
			"FEATURE_PATH="+featurePath,
			"REPORT_PATH="+report,
			"SHARD="+strconv.Itoa(shard.Index),
			"SHARD_COUNT="+strconv.Itoa(shard.Total),
		)
		err = r.Exec(ctx, r.Command, env, r.Stdout, r.Stderr)
		if err != nil {
			log.Printf("Error running feature %s: %v", feature, err)
		}
		summary.Results = append(summary.Results, Result{Feature: feature, Report: report, Err: err})
	}

	return summary, nil
}

// RunAll launches one process per shard concurrently and waits for all of
// them. self is the command that runs a single shard; SHARD and SHARD_COUNT
// are set for each process.
func RunAll(ctx context.Context, total int, self []string, run ExecFunc, stdout, stderr io.Writer) error {
	if total < 1 {
		return fmt.Errorf("%w: shard count %d", ErrInvalidShard, total)
	}
	if run == nil {
		run = execCommand
	}

	errs := make([]error, total)
	var g errgroup.Group
	for i := 1; i <= total; i++ {
		index := i
		g.Go(func() error {
			env := append(os.Environ(),
				"SHARD="+strconv.Itoa(index),
				"SHARD_COUNT="+strconv.Itoa(total),
			)
			if err := run(ctx, self, env, stdout, stderr); err != nil {
				log.Printf("Shard %d/%d failed: %v", index, total, err)
				errs[index-1] = fmt.Errorf("shard %d: %w", index, err)
			}
			return nil
		})
	}
	g.Wait()

	return errors.Join(errs...)
}

func execCommand(ctx context.Context, args []string, env []string, stdout, stderr io.Writer) error {
	if len(args) == 0 {
		return errors.New("empty command")
	}
	cmd := exec.CommandContext(ctx, args[0], args[1:]...)
	cmd.Env = env
	cmd.Stdout = stdout
	cmd.Stderr = stderr
	return cmd.Run()
}
