package journal

import (
	"context"
	"encoding/json"

	"github.com/mizuchi-dev/cellar/internal/files"
)

type exportRecord struct {
	Kind    string   `json:"kind"`
	Outcome *Outcome `json:"outcome,omitempty"`
	Trace   *Trace   `json:"trace,omitempty"`
}

// Export writes a JSON-lines snapshot of all outcomes and traces to dst.
// The file appears atomically: readers never observe a partial snapshot.
func (j *DB) Export(ctx context.Context, dst string) error {
	outcomes, err := j.ListOutcomes(ctx, "", 0)
	if err != nil {
		return err
	}
	traces, err := j.ListTraces(ctx, 0)
	if err != nil {
		return err
	}

	w := files.NewWriter(dst)
	defer w.Cleanup()

	enc := json.NewEncoder(w)
	for i := range outcomes {
		if err := enc.Encode(exportRecord{Kind: "outcome", Outcome: &outcomes[i]}); err != nil {
			return err
		}
	}
	for i := range traces {
		if err := enc.Encode(exportRecord{Kind: "trace", Trace: &traces[i]}); err != nil {
			return err
		}
	}

	return w.Close()
}
