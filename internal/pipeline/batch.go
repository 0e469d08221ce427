package pipeline

import (
	"context"
	"runtime"

	"golang.org/x/sync/errgroup"

	"prose_lens/internal/analysis"
)

type Input struct {
	Name string
	Text string
}

type Output struct {
	Name   string          `json:"name"`
	Result analysis.Result `json:"result"`
}

// AnalyzeAll analyses every input on a bounded pool of workers. Outputs keep
// the order of inputs.
func AnalyzeAll(ctx context.Context, inputs []Input, workers int) ([]Output, error) {
	if len(inputs) == 0 {
		return nil, nil
	}
	if workers <= 0 {
		workers = runtime.NumCPU()
		if workers < 1 {
			workers = 1
		}
	}

	out := make([]Output, len(inputs))
	g, ctx := errgroup.WithContext(ctx)
	g.SetLimit(workers)
	for i, in := range inputs {
		g.Go(func() error {
			if err := ctx.Err(); err != nil {
				return err
			}
			out[i] = Output{Name: in.Name, Result: analysis.Analyze(in.Text)}
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}
	return out, nil
}
