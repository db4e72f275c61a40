package pipeline

import (
	"context"
	"errors"
	"io/fs"
	"path/filepath"
	"strings"
	"sync/atomic"

	"golang.org/x/sync/errgroup"

	"github.com/ade-labs/invoice-pipeline/constants"
	"github.com/ade-labs/invoice-pipeline/internal/ade"
)

// Outcome is one document's result: either both responses or the error
// that stopped it. Exactly one of (Parse+Extract) or Err is set.
type Outcome struct {
	Path    string
	Parse   *ade.ParseResponse
	Extract *ade.ExtractResponse
	Err     error
}

// Ok reports whether the document processed successfully.
func (o Outcome) Ok() bool { return o.Err == nil }

// Summary is the terminal state of one batch invocation.
type Summary struct {
	Total     int
	Succeeded int
	Failed    int
	Outcomes  []Outcome
}

// Failures returns the (document, error) records for the failed tasks.
func (s Summary) Failures() []Outcome {
	var out []Outcome
	for _, o := range s.Outcomes {
		if !o.Ok() {
			out = append(out, o)
		}
	}
	return out
}

// ListDocuments walks root and returns the supported documents, skipping
// hidden files and directories. Unsupported extensions are excluded here,
// before submission, and never appear in the batch tallies.
func ListDocuments(root string) ([]string, error) {
	if strings.TrimSpace(root) == "" {
		return nil, errors.New("root path is required")
	}

	var docs []string
	err := filepath.WalkDir(root, func(path string, d fs.DirEntry, walkErr error) error {
		if walkErr != nil {
			return walkErr
		}
		if isHidden(path) && path != root {
			if d.IsDir() {
				return filepath.SkipDir
			}
			return nil
		}
		if d.IsDir() {
			return nil
		}
		if !constants.AllowedExt(filepath.Ext(path)) {
			return nil
		}
		docs = append(docs, path)
		return nil
	})
	if err != nil {
		return nil, err
	}
	return docs, nil
}

func isHidden(path string) bool {
	return strings.HasPrefix(filepath.Base(path), ".")
}

// RunBatch submits one ProcessDocument invocation per document to a worker
// pool of size maxWorkers and collects every task's outcome. A document's
// failure never cancels or blocks the others; the batch is complete when
// every task has produced a result or an error. onProgress, when non-nil,
// is called after each completion with (done, total).
func RunBatch(ctx context.Context, proc *Processor, documents []string, maxWorkers int, onProgress func(done, total int)) Summary {
	if maxWorkers <= 0 {
		maxWorkers = 1
	}

	total := len(documents)
	outcomes := make([]Outcome, total)
	var done atomic.Int64

	var g errgroup.Group
	g.SetLimit(maxWorkers)
	for i, doc := range documents {
		g.Go(func() error {
			parseRes, extractRes, err := proc.ProcessDocument(ctx, doc)
			outcomes[i] = Outcome{Path: doc, Parse: parseRes, Extract: extractRes, Err: err}
			if err != nil {
				proc.Logger.Error("batch.task.failed", "document", doc, "error", err)
			}
			n := int(done.Add(1))
			if onProgress != nil {
				onProgress(n, total)
			}
			return nil
		})
	}
	// tasks never return errors; Wait only fences completion
	_ = g.Wait()

	summary := Summary{Total: total, Outcomes: outcomes}
	for _, o := range outcomes {
		if o.Ok() {
			summary.Succeeded++
		} else {
			summary.Failed++
		}
	}

	proc.Logger.Info("batch.complete",
		"total", summary.Total,
		"succeeded", summary.Succeeded,
		"failed", summary.Failed,
	)
	return summary
}
