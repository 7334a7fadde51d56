package rwerr

import (
	"fmt"
	"log/slog"
)

// Errors collects the failures of a batch, keyed by the position of the failing input
type Errors struct {
	errs []Indexed
}

type Indexed struct {
	Index int
	Err   error
}

func (r *Errors) With(index int, err error) *Errors {
	if r == nil {
		return &Errors{errs: []Indexed{{index, err}}}
	}
	r.errs = append(r.errs, Indexed{index, err})
	return r
}

func (r *Errors) Merge(err *Errors) *Errors {
	if r == nil {
		return err
	}
	if err == nil || len(err.errs) == 0 {
		return r
	}
	r.errs = append(r.errs, err.errs...)
	return r
}

func (r *Errors) Errors() []Indexed {
	if r == nil {
		return nil
	}
	return r.errs
}

func (r *Errors) HasError() bool {
	if r == nil {
		return false
	}
	return len(r.errs) > 0
}

func (r *Errors) LogValue() slog.Value {
	var vals []slog.Attr
	for i, v := range r.Errors() {
		vals = append(vals, slog.Attr{
			Key: fmt.Sprint("e", i),
			Value: slog.GroupValue(
				slog.Int("input", v.Index),
				slog.String("msg", FormatWithCode(v.Err)),
			),
		})
	}
	return slog.GroupValue(vals...)
}
