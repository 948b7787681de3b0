package batch

import (
	"context"
)

// Result represents the outcome of a single item in a batch.
type Result struct {
	ID      string `json:"id"`
	Success bool   `json:"success"`
	Error   string `json:"error,omitempty"`
}

// Summary aggregates the results of a batch operation.
type Summary struct {
	Total      int      `json:"total"`
	Successful int      `json:"successful"`
	Failed     int      `json:"failed"`
	Results    []Result `json:"results"`
}

// Process runs fn for every id in order and records one Result per id.
// A failing item never stops the batch. Once ctx is done the remaining items
// are recorded as failed with the context error.
func Process(ctx context.Context, ids []string, fn func(ctx context.Context, id string) error) []Result {
	results := make([]Result, 0, len(ids))

	for _, id := range ids {
		if err := ctx.Err(); err != nil {
			results = append(results, NewErrorResult(id, err))
			continue
		}
		if err := fn(ctx, id); err != nil {
			results = append(results, NewErrorResult(id, err))
			continue
		}
		results = append(results, NewSuccessResult(id))
	}

	return results
}

// Summarize counts successes and failures.
func Summarize(results []Result) Summary {
	s := Summary{
		Total:   len(results),
		Results: results,
	}
	if s.Results == nil {
		s.Results = []Result{}
	}
	for _, r := range results {
		if r.Success {
			s.Successful++
		} else {
			s.Failed++
		}
	}
	return s
}

// Payload renders results as envelope payload fields.
func Payload(results []Result) map[string]any {
	s := Summarize(results)
	return map[string]any{
		"total":      s.Total,
		"successful": s.Successful,
		"failed":     s.Failed,
		"results":    s.Results,
	}
}

// NewSuccessResult creates a success result.
func NewSuccessResult(id string) Result {
	return Result{ID: id, Success: true}
}

// NewErrorResult creates an error result.
func NewErrorResult(id string, err error) Result {
	return Result{
		ID:      id,
		Success: false,
		Error:   err.Error(),
	}
}
