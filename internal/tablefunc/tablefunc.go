// Package tablefunc exposes the collector snapshots as named tables with a
// fixed column list: one row for cpu, memory, os and process status, one
// row per entry for disks and network interfaces.
package tablefunc

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"strings"

	"go.uber.org/zap"

	"github.com/Guliveer/sysstats/internal/collector"
	"github.com/Guliveer/sysstats/internal/units"
)

var (
	// ErrInvalidInput is returned when a caller-supplied parameter fails validation.
	ErrInvalidInput = errors.New("invalid input")

	// ErrUnknownFunction is returned for names no table function is registered under.
	ErrUnknownFunction = errors.New("unknown table function")
)

// UnitParam is the named parameter selecting the unit of byte columns.
const UnitParam = "unit"

// ColumnType is the SQL affinity of a column.
type ColumnType int

const (
	Text ColumnType = iota
	Integer
)

// String returns the SQL type name.
func (t ColumnType) String() string {
	if t == Integer {
		return "INTEGER"
	}
	return "TEXT"
}

// Column describes one output column.
type Column struct {
	Name string
	Type ColumnType
}

// Params are the named parameters of a call.
type Params map[string]string

// Result is the materialized output of one call.
type Result struct {
	Function string
	Columns  []Column
	// Records holds the typed snapshot or entries after unit conversion.
	Records interface{}
	Rows    [][]interface{}
}

// ColumnNames returns the column names in order.
func (r *Result) ColumnNames() []string {
	names := make([]string, len(r.Columns))
	for i, c := range r.Columns {
		names[i] = c.Name
	}
	return names
}

type buildFunc func(data interface{}, unit units.MemoryUnit) (records interface{}, rows [][]interface{}, err error)

// Function is a registered table function.
type Function struct {
	Name        string
	Description string
	Collector   string
	Columns     []Column
	AcceptsUnit bool

	build buildFunc
}

// Registry resolves table functions and runs them against a collector registry.
type Registry struct {
	functions  []*Function
	byName     map[string]*Function
	collectors *collector.Registry
	logger     *zap.Logger
}

// NewRegistry creates a registry with the built-in table functions.
func NewRegistry(collectors *collector.Registry, logger *zap.Logger) *Registry {
	if logger == nil {
		logger = zap.NewNop()
	}
	r := &Registry{
		byName:     make(map[string]*Function),
		collectors: collectors,
		logger:     logger,
	}
	for _, fn := range builtins() {
		r.functions = append(r.functions, fn)
		r.byName[fn.Name] = fn
	}
	return r
}

// Functions returns the registered functions in registration order.
func (r *Registry) Functions() []*Function {
	out := make([]*Function, len(r.functions))
	copy(out, r.functions)
	return out
}

// Lookup returns the function registered under name.
func (r *Registry) Lookup(name string) (*Function, bool) {
	fn, ok := r.byName[name]
	return fn, ok
}

// Bind validates params for fn and resolves the unit. Functions without a
// unit parameter reject it; an unrecognized unit is an error naming the
// supported set.
func Bind(fn *Function, params Params) (units.MemoryUnit, error) {
	unit := units.Bytes
	keys := make([]string, 0, len(params))
	for k := range params {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	for _, key := range keys {
		value := params[key]
		switch {
		case strings.EqualFold(key, UnitParam) && fn.AcceptsUnit:
			u, err := units.ParseUnit(value)
			if err != nil {
				return units.Bytes, fmt.Errorf("%s: %w: %w", fn.Name, ErrInvalidInput, err)
			}
			unit = u
		case strings.EqualFold(key, UnitParam):
			return units.Bytes, fmt.Errorf("%s: %w: function does not accept a %s parameter", fn.Name, ErrInvalidInput, UnitParam)
		default:
			return units.Bytes, fmt.Errorf("%s: %w: unknown parameter %q", fn.Name, ErrInvalidInput, key)
		}
	}
	return unit, nil
}

// Call validates params, collects the backing snapshot and builds the rows.
func (r *Registry) Call(ctx context.Context, name string, params Params) (*Result, error) {
	fn, ok := r.Lookup(name)
	if !ok {
		return nil, fmt.Errorf("%w: %q", ErrUnknownFunction, name)
	}
	unit, err := Bind(fn, params)
	if err != nil {
		return nil, err
	}
	data, err := r.collectors.Collect(ctx, fn.Collector)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", fn.Name, err)
	}
	return fn.result(data, unit)
}

// CallAll runs the named functions, or every function when names is empty,
// collecting their snapshots concurrently. The unit parameter applies only
// to functions that accept it. Results keep the order of names; failed
// functions are left out and their errors joined.
func (r *Registry) CallAll(ctx context.Context, names []string, params Params) ([]*Result, error) {
	fns := r.functions
	if len(names) > 0 {
		fns = make([]*Function, 0, len(names))
		for _, name := range names {
			fn, ok := r.Lookup(name)
			if !ok {
				return nil, fmt.Errorf("%w: %q", ErrUnknownFunction, name)
			}
			fns = append(fns, fn)
		}
	}

	unitParams := make([]units.MemoryUnit, len(fns))
	for i, fn := range fns {
		p := params
		if !fn.AcceptsUnit {
			p = withoutUnit(params)
		}
		unit, err := Bind(fn, p)
		if err != nil {
			return nil, err
		}
		unitParams[i] = unit
	}

	needed := make([]string, len(fns))
	for i, fn := range fns {
		needed[i] = fn.Collector
	}
	collected := r.collectors.CollectNames(ctx, needed)

	var (
		results []*Result
		errs    []error
	)
	for i, fn := range fns {
		res := collected[fn.Collector]
		if res.Error != nil {
			errs = append(errs, fmt.Errorf("%s: %w", fn.Name, res.Error))
			continue
		}
		out, err := fn.result(res.Data, unitParams[i])
		if err != nil {
			errs = append(errs, err)
			continue
		}
		results = append(results, out)
	}
	return results, errors.Join(errs...)
}

func withoutUnit(params Params) Params {
	out := make(Params, len(params))
	for k, v := range params {
		if !strings.EqualFold(k, UnitParam) {
			out[k] = v
		}
	}
	return out
}

func (fn *Function) result(data interface{}, unit units.MemoryUnit) (*Result, error) {
	records, rows, err := fn.build(data, unit)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", fn.Name, err)
	}
	return &Result{
		Function: fn.Name,
		Columns:  fn.Columns,
		Records:  records,
		Rows:     rows,
	}, nil
}
