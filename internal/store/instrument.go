package store

import (
	"context"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var opsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
	Name: "rollcall_store_operations_total",
	Help: "Store operations by table, verb and outcome.",
}, []string{"table", "op", "outcome"})

// Instrumented wraps a Client and counts every operation.
type Instrumented struct {
	next Client
}

// Instrument decorates any Client with Prometheus counters.
func Instrument(next Client) *Instrumented {
	return &Instrumented{next: next}
}

func (c *Instrumented) Select(ctx context.Context, table Table, orderBy string) ([]Row, error) {
	rows, err := c.next.Select(ctx, table, orderBy)
	count(table, "select", err)
	return rows, err
}

func (c *Instrumented) Insert(ctx context.Context, table Table, row Row) (Row, error) {
	inserted, err := c.next.Insert(ctx, table, row)
	count(table, "insert", err)
	return inserted, err
}

func (c *Instrumented) Update(ctx context.Context, table Table, id string, patch Row) error {
	err := c.next.Update(ctx, table, id, patch)
	count(table, "update", err)
	return err
}

func (c *Instrumented) Delete(ctx context.Context, table Table, id string) error {
	err := c.next.Delete(ctx, table, id)
	count(table, "delete", err)
	return err
}

func count(table Table, op string, err error) {
	outcome := "ok"
	if err != nil {
		outcome = "error"
	}
	opsTotal.WithLabelValues(string(table), op, outcome).Inc()
}
