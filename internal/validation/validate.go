// Package validation checks every page document of a store offline.
package validation

import (
	"context"
	"errors"
	"runtime"
	"sort"

	"github.com/jonathan/services-gateway/internal/rendering"
	"github.com/jonathan/services-gateway/internal/schemas"
	"github.com/jonathan/services-gateway/internal/store"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"
)

// Status classifies a single page document.
type Status string

const (
	StatusOK              Status = "ok"
	StatusMalformed       Status = "malformed"
	StatusSchemaViolation Status = "schema_violation"
)

// Result is the outcome for one page document.
type Result struct {
	Path   string   `json:"path"` // logical path, e.g. /services/a
	Name   string   `json:"name"` // file name relative to the store
	Status Status   `json:"status"`
	Errors []string `json:"errors,omitempty"`
}

// Report collects the results of a store validation, sorted by path.
type Report struct {
	Store   string   `json:"store"`
	Schema  string   `json:"schema,omitempty"`
	Results []Result `json:"results"`
}

// Count returns the number of results with the given status.
func (r *Report) Count(status Status) int {
	n := 0
	for _, res := range r.Results {
		if res.Status == status {
			n++
		}
	}
	return n
}

// Failed returns the number of documents that did not pass.
func (r *Report) Failed() int {
	return len(r.Results) - r.Count(StatusOK)
}

// OK reports whether every document passed.
func (r *Report) OK() bool {
	return r.Failed() == 0
}

// Options configures Validate.
type Options struct {
	Schema  *schemas.Schema // optional; nil only checks syntax
	Workers int             // defaults to GOMAXPROCS
	Logger  *zap.Logger
}

// Validate checks every page document in st. A document is malformed when the
// HTML view would fail to render it. Documents that render are additionally
// checked against opts.Schema when one is set.
func Validate(ctx context.Context, st *store.Store, opts Options) (*Report, error) {
	logger := opts.Logger
	if logger == nil {
		logger = zap.NewNop()
	}
	workers := opts.Workers
	if workers <= 0 {
		workers = runtime.GOMAXPROCS(0)
	}

	var docs []*store.ResolvedRequest
	err := st.Walk(ctx, func(req *store.ResolvedRequest) error {
		docs = append(docs, req)
		return nil
	})
	if err != nil {
		return nil, &Error{Message: "failed to walk store", Cause: err}
	}

	results := make([]Result, len(docs))
	g, gCtx := errgroup.WithContext(ctx)
	g.SetLimit(workers)

	for i, doc := range docs {
		g.Go(func() error {
			if err := gCtx.Err(); err != nil {
				return err
			}
			results[i] = checkDocument(st, doc, opts.Schema)
			logger.Debug("validated document",
				zap.String("path", doc.LogicalPath),
				zap.String("status", string(results[i].Status)),
			)
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, &Error{Message: "validation interrupted", Cause: err}
	}

	sort.Slice(results, func(i, j int) bool { return results[i].Path < results[j].Path })

	report := &Report{Store: st.Dir(), Results: results}
	if opts.Schema != nil {
		report.Schema = opts.Schema.Name()
	}
	return report, nil
}

func checkDocument(st *store.Store, doc *store.ResolvedRequest, schema *schemas.Schema) Result {
	result := Result{Path: doc.LogicalPath, Name: doc.Name, Status: StatusOK}

	data, err := st.ReadFile(doc)
	if err != nil {
		result.Status = StatusMalformed
		result.Errors = []string{err.Error()}
		return result
	}
	if _, err := rendering.IndentDocument(data); err != nil {
		result.Status = StatusMalformed
		result.Errors = []string{err.Error()}
		return result
	}
	if schema == nil {
		return result
	}

	if err := schema.Validate(data); err != nil {
		result.Status = StatusSchemaViolation
		var validationErr *schemas.ValidationError
		if errors.As(err, &validationErr) {
			for _, fe := range validationErr.Errors {
				result.Errors = append(result.Errors, fe.Field+": "+fe.Message)
			}
		} else {
			result.Errors = []string{err.Error()}
		}
	}
	return result
}
