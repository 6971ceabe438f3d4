package agent

import (
	"context"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"

	"github.com/nextlevelbuilder/gptrelay/internal/bus"
	"github.com/nextlevelbuilder/gptrelay/internal/providers"
)

const tracerName = "github.com/nextlevelbuilder/gptrelay/internal/agent"

// tracer resolves lazily so spans follow whatever provider tracing.Init installed.
// Without one, the global noop provider makes every span free.
func tracer() trace.Tracer { return otel.Tracer(tracerName) }

func startRelaySpan(ctx context.Context, runID string, msg bus.InboundMessage) (context.Context, trace.Span) {
	return tracer().Start(ctx, "relay.message",
		trace.WithSpanKind(trace.SpanKindConsumer),
		trace.WithAttributes(
			attribute.String("relay.run_id", runID),
			attribute.String("chat.channel_id", msg.ChannelID),
			attribute.String("chat.guild_id", msg.GuildID),
			attribute.String("chat.message_id", msg.ID),
		),
	)
}

func startCompletionSpan(ctx context.Context, runID string, p providers.Provider, window []providers.Message) (context.Context, trace.Span) {
	return tracer().Start(ctx, "llm.complete",
		trace.WithSpanKind(trace.SpanKindClient),
		trace.WithAttributes(
			attribute.String("relay.run_id", runID),
			attribute.String("llm.vendor", p.Name()),
			attribute.String("llm.request.model", p.Model()),
			attribute.Int("llm.window.turns", len(window)),
		),
	)
}

func recordCompletion(span trace.Span, text string) {
	span.SetAttributes(attribute.Int("llm.completion.chars", len([]rune(text))))
}

func recordSpanError(span trace.Span, err error) {
	span.RecordError(err)
	span.SetStatus(codes.Error, err.Error())
}
