// Package pipeline drives the discover-retrieve-normalize-validate flow.
// Discovery is a single call; everything after is independent per file and
// runs under a bounded worker pool.
package pipeline

import (
	"context"
	"fmt"
	"sort"
	"sync"

	"golang.org/x/sync/errgroup"

	"github.com/valuationkit/mpfcore/internal/retriever"
	"github.com/valuationkit/mpfcore/internal/schema"
	"github.com/valuationkit/mpfcore/internal/storage"
	"github.com/valuationkit/mpfcore/internal/validate"
	"github.com/valuationkit/mpfcore/pkg/logger"
)

// Run executes the full pipeline against opts.ModelPointsPath.
//
// Per-file failures (store access, corrupt content, schema mismatch) are
// recorded in the result, not fatal; the run only errors when discovery
// fails, the rule table cannot be loaded, or every file fails. On
// cancellation, in-flight files finish, no new file starts, and the partial
// result is returned alongside the context error.
func Run(ctx context.Context, store storage.ObjectStorage, opts Options) (*RunResult, error) {
	log := logger.For("pipeline")

	path, err := storage.ParseRemotePath(opts.ModelPointsPath)
	if err != nil {
		return nil, err
	}

	aliases := opts.Aliases
	if aliases == nil {
		aliases = schema.DefaultAliases()
	}
	workers := opts.WorkerCount
	if workers < 1 {
		workers = DefaultWorkerCount
	}

	ret := retriever.New(store, opts.Retrieval)

	refs, err := ret.Discover(ctx, path)
	if err != nil {
		return nil, err
	}
	log.Info().Str("path", path.String()).Int("files", len(refs)).Msg("discovered model point files")

	rules, err := buildRules(ctx, ret, opts)
	if err != nil {
		return nil, err
	}

	result := &RunResult{Files: make([]FileOutcome, 0, len(refs))}
	var mu sync.Mutex
	collect := func(o FileOutcome) {
		mu.Lock()
		result.Files = append(result.Files, o)
		mu.Unlock()
	}

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(workers)

	for _, obj := range refs {
		if gctx.Err() != nil {
			break // no new per-file work after cancellation
		}
		obj := obj
		g.Go(func() error {
			collect(processFile(gctx, ret, obj.ObjectRef, aliases, rules))
			return nil
		})
	}
	_ = g.Wait()

	sort.Slice(result.Files, func(i, j int) bool {
		return result.Files[i].Ref.Key < result.Files[j].Ref.Key
	})

	if err := ctx.Err(); err != nil {
		return result, err
	}
	if len(result.Validated()) == 0 {
		return result, &retriever.NoValidFilesError{Failed: len(result.Files)}
	}
	return result, nil
}

func processFile(ctx context.Context, ret *retriever.Retriever, ref storage.ObjectRef,
	aliases schema.AliasTable, rules []validate.Rule) FileOutcome {

	log := logger.For("pipeline")
	outcome := FileOutcome{Ref: ref, Source: retriever.SourceName(ref.Key)}

	raw, err := ret.RetrieveOne(ctx, ref)
	if err != nil {
		outcome.Err = err
		log.Warn().Str("key", ref.Key).Err(err).Msg("file retrieval failed")
		return outcome
	}

	canonical, err := schema.Normalize(raw, aliases)
	if err != nil {
		outcome.Err = err
		log.Warn().Str("key", ref.Key).Err(err).Msg("schema mismatch")
		return outcome
	}

	report, err := validate.Evaluate(canonical, rules, schema.FieldPolicyNumber)
	if err != nil {
		outcome.Err = err
		return outcome
	}

	outcome.Dataset = canonical
	outcome.Report = report
	log.Info().Str("source", outcome.Source).Int("rows", len(canonical.Rows)).
		Int("issues", len(report.Issues)).Msg("file validated")
	return outcome
}

// buildRules assembles the run's rule set: hard-configured defaults, then
// enum rules from the optional remote rule table, then caller extras.
func buildRules(ctx context.Context, ret *retriever.Retriever, opts Options) ([]validate.Rule, error) {
	rules := validate.DefaultRules(opts.Product, opts.ValuationDate)

	if opts.RuleTablePath != "" {
		path, err := storage.ParseRemotePath(opts.RuleTablePath)
		if err != nil {
			return nil, err
		}
		ds, err := ret.RetrieveOne(ctx, storage.ObjectRef{Bucket: path.Bucket, Key: path.Prefix})
		if err != nil {
			return nil, fmt.Errorf("failed to load rule table: %w", err)
		}
		tableRules, err := validate.LoadRuleTable(ds)
		if err != nil {
			return nil, err
		}
		rules = append(rules, tableRules...)
	}

	return append(rules, opts.ExtraRules...), nil
}
