// Package reconcile joins two extracted datasets on their key column and
// flags rows where both sides report a problem.
package reconcile

import (
	"sort"

	"github.com/rotisserie/eris"

	"github.com/sells-group/review-cli/internal/model"
)

// Sentinel errors reported in Result.Err. Neither is fatal: the joined
// dataset carries a marker the user can read.
var (
	ErrMissingKey       = eris.New("reconcile: key column missing")
	ErrMissingIndicator = eris.New("reconcile: comparison columns missing")
)

// Output markers.
const (
	ErrorColumn      = "Error"
	HighlightColumn  = "Highlight"
	MissingKeyMsg    = "Module component column missing in one or both files"
	MissingColumnMsg = "Error: Missing comparison columns"
	highlightYes     = "Yes"
)

// Options configures a reconciliation.
type Options struct {
	Key         string
	Indicator   string
	LeftSuffix  string
	RightSuffix string
}

// DefaultOptions joins on "Module component" and compares "Problem identified?".
func DefaultOptions() Options {
	return Options{
		Key:         model.FieldModuleComponent,
		Indicator:   model.FieldProblemIdentifiedQ,
		LeftSuffix:  "_File1",
		RightSuffix: "_File2",
	}
}

func (o Options) withDefaults() Options {
	d := DefaultOptions()
	if o.Key == "" {
		o.Key = d.Key
	}
	if o.Indicator == "" {
		o.Indicator = d.Indicator
	}
	if o.LeftSuffix == "" {
		o.LeftSuffix = d.LeftSuffix
	}
	if o.RightSuffix == "" {
		o.RightSuffix = d.RightSuffix
	}
	return o
}

// Result holds both inputs unchanged and their joined dataset.
type Result struct {
	Left   *model.Dataset
	Right  *model.Dataset
	Joined *model.Dataset

	// Err is ErrMissingKey or ErrMissingIndicator when Joined holds an
	// error marker instead of a comparison.
	Err error

	// DroppedDuplicates counts rows discarded because an earlier row on the
	// same side had the same key.
	DroppedDuplicates int
}

// Highlighted returns the number of joined rows flagged "Yes".
func (r *Result) Highlighted() int {
	if r.Err != nil {
		return 0
	}
	n := 0
	for _, rec := range r.Joined.Rows {
		if v, ok := rec.Get(HighlightColumn); ok && v == highlightYes {
			n++
		}
	}
	return n
}

// side indexes one input by key. A nil key is kept under its own flag
// since null keys form a single group.
type side struct {
	byKey   map[string]model.Record
	null    model.Record
	dropped int
}

func index(ds *model.Dataset, key string) side {
	s := side{byKey: make(map[string]model.Record, ds.Len())}
	for _, rec := range ds.Rows {
		k := rec[key]
		switch {
		case k == nil && s.null == nil:
			s.null = rec
		case k == nil:
			s.dropped++
		default:
			if _, dup := s.byKey[*k]; dup {
				s.dropped++
				continue
			}
			s.byKey[*k] = rec
		}
	}
	return s
}

func (s side) get(k *string) model.Record {
	if k == nil {
		return s.null
	}
	return s.byKey[*k]
}

// Reconcile outer-joins left and right on opts.Key. Rows are ordered by key,
// with the null key last. Non-key columns of each side are renamed with the
// side's suffix, and a Highlight column is appended.
func Reconcile(left, right *model.Dataset, opts Options) *Result {
	opts = opts.withDefaults()
	res := &Result{Left: left, Right: right}

	if !left.HasColumn(opts.Key) || !right.HasColumn(opts.Key) {
		res.Joined = model.NewDataset([]string{ErrorColumn})
		res.Joined.Append(model.Record{ErrorColumn: model.Str(MissingKeyMsg)})
		res.Err = ErrMissingKey
		return res
	}

	l := index(left, opts.Key)
	r := index(right, opts.Key)
	res.DroppedDuplicates = l.dropped + r.dropped

	leftCols := suffixed(left.Columns, opts.Key, opts.LeftSuffix)
	rightCols := suffixed(right.Columns, opts.Key, opts.RightSuffix)

	columns := make([]string, 0, 2+len(leftCols)+len(rightCols))
	columns = append(columns, opts.Key)
	for _, c := range leftCols {
		columns = append(columns, c[1])
	}
	for _, c := range rightCols {
		columns = append(columns, c[1])
	}
	columns = append(columns, HighlightColumn)
	res.Joined = model.NewDataset(columns)

	leftInd := opts.Indicator + opts.LeftSuffix
	rightInd := opts.Indicator + opts.RightSuffix
	compare := res.Joined.HasColumn(leftInd) && res.Joined.HasColumn(rightInd)
	if !compare {
		res.Err = ErrMissingIndicator
	}

	for _, k := range keys(l, r) {
		rec := model.NewRecord(columns)
		rec[opts.Key] = k
		if src := l.get(k); src != nil {
			for _, c := range leftCols {
				rec[c[1]] = src[c[0]]
			}
		}
		if src := r.get(k); src != nil {
			for _, c := range rightCols {
				rec[c[1]] = src[c[0]]
			}
		}

		switch {
		case !compare:
			rec[HighlightColumn] = model.Str(MissingColumnMsg)
		case model.IsAffirmative(rec[leftInd]) && model.IsAffirmative(rec[rightInd]):
			rec[HighlightColumn] = model.Str(highlightYes)
		default:
			rec[HighlightColumn] = model.Str("")
		}
		res.Joined.Append(rec)
	}
	return res
}

// suffixed pairs each non-key column with its renamed form.
func suffixed(columns []string, key, suffix string) [][2]string {
	out := make([][2]string, 0, len(columns))
	for _, c := range columns {
		if c == key {
			continue
		}
		out = append(out, [2]string{c, c + suffix})
	}
	return out
}

// keys returns the union of both sides' keys, sorted, null last.
func keys(l, r side) []*string {
	seen := make(map[string]struct{}, len(l.byKey)+len(r.byKey))
	var out []string
	for _, s := range []side{l, r} {
		for k := range s.byKey {
			if _, ok := seen[k]; ok {
				continue
			}
			seen[k] = struct{}{}
			out = append(out, k)
		}
	}
	sort.Strings(out)

	ptrs := make([]*string, 0, len(out)+1)
	for _, k := range out {
		ptrs = append(ptrs, model.Str(k))
	}
	if l.null != nil || r.null != nil {
		ptrs = append(ptrs, nil)
	}
	return ptrs
}
