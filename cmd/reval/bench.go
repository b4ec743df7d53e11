package main

import (
	"fmt"
	"sort"
	"time"

	"github.com/spf13/cobra"

	"github.com/reval-dev/reval/pkg/reval"
)

type benchConfig struct {
	depth  int
	fanout int
	sets   int
}

type benchResult struct {
	config     benchConfig
	total      time.Duration
	deliveries int
	latencies  []time.Duration
}

func benchCmd() *cobra.Command {
	cfg := benchConfig{}

	cmd := &cobra.Command{
		Use:   "bench",
		Short: "Run a propagation micro-benchmark",
		Long: `Build a derivation chain of the given depth, attach the given
number of observers to its tail, then time how long a burst of writes
takes to propagate from the source to every observer.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			if cfg.depth < 1 || cfg.fanout < 1 || cfg.sets < 1 {
				return fmt.Errorf("depth, fanout and sets must all be >= 1")
			}
			res := runBench(cfg)
			printBenchResult(cmd, res)
			return nil
		},
	}

	cmd.Flags().IntVar(&cfg.depth, "depth", 32, "Length of the derivation chain")
	cmd.Flags().IntVar(&cfg.fanout, "fanout", 100, "Observers attached to the chain tail")
	cmd.Flags().IntVar(&cfg.sets, "sets", 10000, "Number of source writes")

	return cmd
}

func runBench(cfg benchConfig) benchResult {
	src := reval.New(0)

	tail := reval.Readable[int](src)
	for i := 0; i < cfg.depth; i++ {
		tail = reval.Map(tail, func(v, _ int) int { return v + 1 })
	}

	deliveries := 0
	for i := 0; i < cfg.fanout; i++ {
		tail.AddObserver(func(int, int) { deliveries++ }, reval.UpdatesOnly())
	}

	latencies := make([]time.Duration, 0, cfg.sets)
	start := time.Now()
	for i := 1; i <= cfg.sets; i++ {
		t0 := time.Now()
		src.Set(i)
		latencies = append(latencies, time.Since(t0))
	}
	total := time.Since(start)

	return benchResult{
		config:     cfg,
		total:      total,
		deliveries: deliveries,
		latencies:  latencies,
	}
}

func printBenchResult(cmd *cobra.Command, res benchResult) {
	sort.Slice(res.latencies, func(a, b int) bool {
		return res.latencies[a] < res.latencies[b]
	})
	pct := func(p float64) time.Duration {
		if len(res.latencies) == 0 {
			return 0
		}
		i := int(p * float64(len(res.latencies)-1))
		return res.latencies[i]
	}

	perSet := res.total / time.Duration(res.config.sets)
	cmd.Printf("depth=%d fanout=%d sets=%d\n",
		res.config.depth, res.config.fanout, res.config.sets)
	cmd.Printf("  total:       %s\n", res.total)
	cmd.Printf("  per set:     %s\n", perSet)
	cmd.Printf("  p50 set:     %s\n", pct(0.50))
	cmd.Printf("  p99 set:     %s\n", pct(0.99))
	cmd.Printf("  deliveries:  %d\n", res.deliveries)
}
