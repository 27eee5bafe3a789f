package qnascot

import (
	"context"
	"time"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/metric"
)

const (
	outcomeCreated     = "created"
	outcomeConflict    = "conflict"
	outcomeRejected    = "rejected"
	outcomeMissing     = "missing"
	outcomeFailed      = "failed"
	reactionApplied    = "applied"
	reactionIgnored    = "ignored"
	reactionUnresolved = "unresolved"
	reactionDropped    = "dropped"
)

// instrumenter holds the engine's instruments
type instrumenter struct {
	commandsProcessed      metric.Int64Counter
	reactionsSeen          metric.Int64Counter
	reactionsReconciled    metric.Int64Counter
	voteApplyLatencyMillis metric.Int64Histogram
	nameAttr               attribute.KeyValue
}

// newInstrumenter creates a new engine instrumenter on the given meter
func newInstrumenter(appName string, meter metric.Meter) (ins *instrumenter, err error) {
	ins = new(instrumenter)
	ins.nameAttr = attribute.String("name", appName)

	ins.commandsProcessed, err = meter.Int64Counter("commandsProcessed", metric.WithDescription("Count of slash commands processed by outcome"))
	if err != nil {
		return nil, err
	}

	ins.reactionsSeen, err = meter.Int64Counter("reactionsSeen", metric.WithDescription("Count of reaction events received"))
	if err != nil {
		return nil, err
	}

	ins.reactionsReconciled, err = meter.Int64Counter("reactionsReconciled", metric.WithDescription("Count of reaction events by reconciliation result"))
	if err != nil {
		return nil, err
	}

	ins.voteApplyLatencyMillis, err = meter.Int64Histogram("voteApplyLatencyMillis", metric.WithDescription("Latency of atomic vote delta applications"))
	if err != nil {
		return nil, err
	}

	return ins, nil
}

// countCommand records a processed command with its outcome
func (ins *instrumenter) countCommand(ctx context.Context, outcome string) {
	ins.commandsProcessed.Add(ctx, 1, metric.WithAttributes(ins.nameAttr, attribute.String("outcome", outcome)))
}

// countReactionSeen records an inbound reaction event
func (ins *instrumenter) countReactionSeen(ctx context.Context) {
	ins.reactionsSeen.Add(ctx, 1, metric.WithAttributes(ins.nameAttr))
}

// countReactionResult records the reconciliation result of a reaction event
func (ins *instrumenter) countReactionResult(ctx context.Context, result string) {
	ins.reactionsReconciled.Add(ctx, 1, metric.WithAttributes(ins.nameAttr, attribute.String("result", result)))
}

// recordVoteApplyLatency records the duration of one atomic vote delta application
func (ins *instrumenter) recordVoteApplyLatency(ctx context.Context, d time.Duration) {
	ins.voteApplyLatencyMillis.Record(ctx, d.Milliseconds(), metric.WithAttributes(ins.nameAttr))
}

type timed func()

// measure runs the operation and returns its wall-clock duration
func measure(operation timed) (d time.Duration) {
	before := time.Now()

	operation()

	return time.Since(before)
}
