package pods

import (
	"context"
	"time"

	"github.com/openfluke/augment/detector"
)

// Pod is a unit of work (augment, mean, reduce, …).
type Pod interface {
	Name() string
	Run(ctx *ExecContext, in any) (out any, err error)
}

// ExecContext carries execution choices and capabilities.
type ExecContext struct {
	Ctx     context.Context
	Report  *detector.Report // detector output (workers, features)
	Workers int              // explicit worker bound; 0 = use Report
	Now     time.Time
}

func NewContext(rep *detector.Report) *ExecContext {
	return &ExecContext{
		Ctx:    context.Background(),
		Report: rep,
		Now:    time.Now(),
	}
}

func (ec *ExecContext) WithWorkers(n int) *ExecContext {
	ec.Workers = n
	return ec
}

// WorkersFor resolves the worker count for n items of work.
func (ec *ExecContext) WorkersFor(n int) int {
	if ec.Workers > 0 {
		return ec.Workers
	}
	return ec.Report.WorkersFor(n)
}

func (ec *ExecContext) baseContext() context.Context {
	if ec.Ctx == nil {
		return context.Background()
	}
	return ec.Ctx
}
