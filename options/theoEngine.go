package options

import (
	"fmt"
	"runtime"
	"sync"

	"github.com/tantralabs/fxpricer/models"
)

// TheoEngine prices a batch of options over a pool of workers.
type TheoEngine struct {
	Workers int // 0 uses one worker per CPU, 1 prices sequentially
}

// TradeError is a trade that could not be priced.
type TradeError struct {
	Index int
	ID    string
	Err   error
}

func (e TradeError) Error() string {
	return fmt.Sprintf("trade %d (%s): %v", e.Index, e.ID, e.Err)
}

func (e TradeError) Unwrap() error {
	return e.Err
}

func NewTheoEngine(workers int) *TheoEngine {
	return &TheoEngine{Workers: workers}
}

func (t *TheoEngine) workers(n int) int {
	w := t.Workers
	if w <= 0 {
		w = runtime.NumCPU()
	}
	if w > n {
		w = n
	}
	return w
}

// Price returns one Result per successfully priced option, in input order, and the failures sorted
// by index. Completion order of the workers never affects the output.
func (t *TheoEngine) Price(opts []models.Option) ([]models.Result, []TradeError) {
	results := make([]models.Result, len(opts))
	errs := make([]error, len(opts))

	workers := t.workers(len(opts))
	if workers <= 1 {
		for i := range opts {
			results[i], errs[i] = CalcGreeksAndPV(opts[i])
		}
	} else {
		jobs := make(chan int)
		var wg sync.WaitGroup
		wg.Add(workers)
		for w := 0; w < workers; w++ {
			go func() {
				defer wg.Done()
				for i := range jobs {
					results[i], errs[i] = CalcGreeksAndPV(opts[i])
				}
			}()
		}
		for i := range opts {
			jobs <- i
		}
		close(jobs)
		wg.Wait()
	}

	priced := make([]models.Result, 0, len(opts))
	var failed []TradeError
	for i := range opts {
		if errs[i] != nil {
			failed = append(failed, TradeError{Index: i, ID: opts[i].ID(), Err: errs[i]})
			continue
		}
		priced = append(priced, results[i])
	}
	return priced, failed
}
