package executor

import (
	"context"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"
)

const tracerName = "github.com/openclaw/reconloop/internal/executor"

func (o *Orchestrator) startSessionSpan(ctx context.Context, sessionID string) (context.Context, trace.Span) {
	return otel.Tracer(tracerName).Start(ctx, "session.run",
		trace.WithAttributes(
			attribute.String("session.id", sessionID),
			attribute.String("session.target", o.cfg.Target),
			attribute.Int("session.max_steps", o.cfg.Limits.MaxSteps),
		))
}

func (o *Orchestrator) endSessionSpan(span trace.Span, sum *Summary) {
	span.SetAttributes(
		attribute.String("session.state", string(sum.State)),
		attribute.Int("session.steps", sum.Steps),
		attribute.Int("session.vulnerabilities", sum.Vulnerabilities),
		attribute.Int("session.live_hosts", sum.LiveHosts),
		attribute.Int("session.subdomains", sum.Subdomains),
	)
}

func (o *Orchestrator) startStepSpan(ctx context.Context, step int, phase string) (context.Context, trace.Span) {
	return otel.Tracer(tracerName).Start(ctx, "session.step",
		trace.WithAttributes(
			attribute.Int("step.number", step),
			attribute.String("step.phase", phase),
		))
}

func (o *Orchestrator) endStepSpan(span trace.Span, command string, success, stopped bool) {
	span.SetAttributes(
		attribute.String("step.command", command),
		attribute.Bool("step.success", success),
		attribute.Bool("step.stopped", stopped),
	)
	span.End()
}
