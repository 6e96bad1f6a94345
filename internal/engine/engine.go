// Package engine runs the full generation pipeline over a set of source
// units: scan, register, order, flatten, emit. Output is atomic; any failure
// after scanning yields diagnostics and no generated units.
package engine

import (
	"golang.org/x/sync/errgroup"

	"github.com/zig-whatwg/zoop/internal/emit"
	"github.com/zig-whatwg/zoop/internal/flatten"
	"github.com/zig-whatwg/zoop/internal/graph"
	"github.com/zig-whatwg/zoop/internal/registry"
	"github.com/zig-whatwg/zoop/internal/scanner"
	"github.com/zig-whatwg/zoop/zooperr"
)

// UnitSource is one input unit: its name (file stem) and full source text.
// Path is carried through for reporting only.
type UnitSource struct {
	Name   string
	Path   string
	Source string
}

// Options tunes a generation run. Zero values mean defaults: no configured
// field ceiling beyond the counting type, and get/set accessor prefixes.
type Options struct {
	MaxFieldCount int
	GetterPrefix  string
	SetterPrefix  string
}

// GeneratedUnit is the rendered output for one input unit.
type GeneratedUnit struct {
	Unit    string
	Content string
}

// Result carries the generated units and the full diagnostics list. On
// failure Units is empty; Diagnostics is populated either way.
type Result struct {
	Units       []GeneratedUnit
	Diagnostics []zooperr.Diagnostic
}

// Generate runs the pipeline. Units are scanned concurrently; a parse error
// aborts only its own unit's scan, and the run continues scanning the rest
// so the diagnostics list is complete. Any error at all means no output.
func Generate(units []UnitSource, opts Options) (*Result, error) {
	diags := &zooperr.Diagnostics{}
	fail := func(err error) (*Result, error) {
		return &Result{Diagnostics: diags.List()}, err
	}

	// Scan fan-out, one goroutine per unit. Each goroutine writes only its
	// own slot, so no lock is needed around the slices.
	decls := make([][]*scanner.Declaration, len(units))
	scanErrs := make([]error, len(units))
	var sg errgroup.Group
	for i, u := range units {
		i, u := i, u
		sg.Go(func() error {
			decls[i], scanErrs[i] = scanner.ScanUnit(u.Name, u.Source)
			return nil
		})
	}
	_ = sg.Wait()

	var scanFailures []error
	for i := range units {
		if err := scanErrs[i]; err != nil {
			diags.AppendError("", err)
			scanFailures = append(scanFailures, err)
		}
	}
	if len(scanFailures) == 1 {
		return fail(scanFailures[0])
	}
	if len(scanFailures) > 1 {
		return fail(&zooperr.MultiError{Errors: scanFailures})
	}

	// Registration runs in input order so duplicate reporting and the
	// generated output are deterministic.
	reg := registry.New()
	for i := range units {
		for _, d := range decls[i] {
			if err := reg.Register(d); err != nil {
				diags.AppendError(d.QualifiedName(), err)
				return fail(err)
			}
		}
	}
	reg.Freeze()

	builder := graph.NewBuilder(reg)
	order, err := builder.Order()
	if err != nil {
		diags.AppendError("", err)
		return fail(err)
	}

	// Generation fan-out over the ready set: each declaration waits for its
	// dependencies' flattened results, then flattens. Independent subtrees
	// proceed concurrently.
	fl := flatten.New(reg, opts.MaxFieldCount)

	done := make(map[string]chan struct{}, len(order))
	for _, e := range order {
		done[e.Decl.QualifiedName()] = make(chan struct{})
	}

	var fg errgroup.Group
	for _, e := range order {
		e := e
		fg.Go(func() error {
			qn := e.Decl.QualifiedName()
			defer close(done[qn])

			edges, err := builder.Dependencies(e.Decl)
			if err != nil {
				diags.AppendError(qn, err)
				return err
			}
			for _, edge := range edges {
				dep := edge.To.Decl.QualifiedName()
				<-done[dep]
				if fl.Result(dep) == nil {
					// The dependency failed; its error is already recorded
					// and will abort the run.
					return nil
				}
			}

			if _, err := fl.Flatten(e.Decl); err != nil {
				diags.AppendError(qn, err)
				return err
			}
			return nil
		})
	}
	if err := fg.Wait(); err != nil {
		return fail(err)
	}

	eopts := emit.Options{GetterPrefix: opts.GetterPrefix, SetterPrefix: opts.SetterPrefix}
	res := &Result{Diagnostics: diags.List()}
	for i, u := range units {
		results := make([]*flatten.Result, 0, len(decls[i]))
		for _, d := range decls[i] {
			results = append(results, fl.Result(d.QualifiedName()))
		}
		res.Units = append(res.Units, GeneratedUnit{
			Unit:    u.Name,
			Content: emit.Unit(u.Name, results, eopts),
		})
	}
	return res, nil
}
