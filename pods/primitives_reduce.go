package pods

import (
	"fmt"
	"math"
)

// ReduceKind selects the statistic ReducePod computes.
type ReduceKind string

const (
	ReduceSum  ReduceKind = "sum"
	ReduceMin  ReduceKind = "min"
	ReduceMax  ReduceKind = "max"
	ReduceMean ReduceKind = "mean"
	ReduceStd  ReduceKind = "std" // population standard deviation
)

type ReduceIn struct {
	In   []float32
	Kind ReduceKind
}
type ReduceOut struct {
	Value float64
}

type ReducePod struct{}

func (ReducePod) Name() string { return "primitives/reduce" }

func (ReducePod) Run(x *ExecContext, in any) (any, error) {
	args, ok := in.(ReduceIn)
	if !ok {
		return nil, fmt.Errorf("%w: ReduceIn expected, got %T", ErrBadInput, in)
	}
	if len(args.In) == 0 {
		return ReduceOut{0}, nil
	}
	switch args.Kind {
	case ReduceSum:
		return ReduceOut{Value: sum(args.In)}, nil
	case ReduceMean:
		return ReduceOut{Value: sum(args.In) / float64(len(args.In))}, nil
	case ReduceStd:
		mean := sum(args.In) / float64(len(args.In))
		var sq float64
		for _, v := range args.In {
			d := float64(v) - mean
			sq += d * d
		}
		return ReduceOut{Value: math.Sqrt(sq / float64(len(args.In)))}, nil
	case ReduceMin:
		m := args.In[0]
		for _, v := range args.In[1:] {
			if v < m {
				m = v
			}
		}
		return ReduceOut{Value: float64(m)}, nil
	case ReduceMax:
		m := args.In[0]
		for _, v := range args.In[1:] {
			if v > m {
				m = v
			}
		}
		return ReduceOut{Value: float64(m)}, nil
	default:
		return nil, fmt.Errorf("unknown reduce kind %q", args.Kind)
	}
}

func sum(in []float32) float64 {
	var s float64
	for _, v := range in {
		s += float64(v)
	}
	return s
}
