package batch

import (
	"context"
	"encoding/json"
	"errors"
	"testing"
)

func TestProcess(t *testing.T) {
	tests := []struct {
		name      string
		ids       []string
		failOn    map[string]bool
		wantOK    int
		wantError int
	}{
		{
			name:   "all succeed",
			ids:    []string{"a", "b", "c"},
			wantOK: 3,
		},
		{
			name:      "middle fails",
			ids:       []string{"a", "b", "c"},
			failOn:    map[string]bool{"b": true},
			wantOK:    2,
			wantError: 1,
		},
		{
			name:      "all fail",
			ids:       []string{"x", "y"},
			failOn:    map[string]bool{"x": true, "y": true},
			wantError: 2,
		},
		{
			name: "empty",
			ids:  []string{},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var seen []string
			results := Process(context.Background(), tt.ids, func(ctx context.Context, id string) error {
				seen = append(seen, id)
				if tt.failOn[id] {
					return errors.New("failed " + id)
				}
				return nil
			})

			if len(results) != len(tt.ids) {
				t.Fatalf("got %d results, want %d", len(results), len(tt.ids))
			}
			for i, id := range tt.ids {
				if seen[i] != id {
					t.Errorf("call %d: got id %q, want %q", i, seen[i], id)
				}
				if results[i].ID != id {
					t.Errorf("result %d: got id %q, want %q", i, results[i].ID, id)
				}
			}

			s := Summarize(results)
			if s.Successful != tt.wantOK {
				t.Errorf("Successful = %d, want %d", s.Successful, tt.wantOK)
			}
			if s.Failed != tt.wantError {
				t.Errorf("Failed = %d, want %d", s.Failed, tt.wantError)
			}
			if s.Total != len(tt.ids) {
				t.Errorf("Total = %d, want %d", s.Total, len(tt.ids))
			}
		})
	}
}

func TestProcess_CancelledContext(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())

	calls := 0
	results := Process(ctx, []string{"a", "b", "c"}, func(ctx context.Context, id string) error {
		calls++
		cancel()
		return nil
	})

	if calls != 1 {
		t.Errorf("fn called %d times, want 1", calls)
	}
	if !results[0].Success {
		t.Error("first item should succeed")
	}
	for _, r := range results[1:] {
		if r.Success {
			t.Errorf("item %s should fail after cancellation", r.ID)
		}
		if r.Error != context.Canceled.Error() {
			t.Errorf("item %s error = %q", r.ID, r.Error)
		}
	}
}

func TestResultJSON(t *testing.T) {
	data, err := json.Marshal([]Result{
		NewSuccessResult("a"),
		NewErrorResult("b", errors.New("not found")),
	})
	if err != nil {
		t.Fatalf("marshal: %v", err)
	}

	want := `[{"id":"a","success":true},{"id":"b","success":false,"error":"not found"}]`
	if string(data) != want {
		t.Errorf("got %s, want %s", data, want)
	}
}

func TestPayload(t *testing.T) {
	p := Payload(nil)
	if p["total"] != 0 || p["successful"] != 0 || p["failed"] != 0 {
		t.Errorf("unexpected counts: %v", p)
	}
	if results, ok := p["results"].([]Result); !ok || results == nil {
		t.Errorf("results should be an empty slice, got %#v", p["results"])
	}
}
