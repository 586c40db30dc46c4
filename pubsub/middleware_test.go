package pubsub

import (
	"context"
	"testing"

	"github.com/ThreeDotsLabs/watermill"
	"github.com/ThreeDotsLabs/watermill/message"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/propagation"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"
	"go.opentelemetry.io/otel/sdk/trace/tracetest"
	"go.opentelemetry.io/otel/trace"

	"pousada/tracing"
)

type capturingPublisher struct {
	published []*message.Message
}

func (p *capturingPublisher) Publish(topic string, messages ...*message.Message) error {
	p.published = append(p.published, messages...)
	return nil
}

func (p *capturingPublisher) Close() error { return nil }

func TestTraceMessages_ContinuesPublishedTrace(t *testing.T) {
	recorder := tracetest.NewSpanRecorder()
	otel.SetTracerProvider(sdktrace.NewTracerProvider(sdktrace.WithSpanProcessor(recorder)))
	otel.SetTextMapPropagator(propagation.TraceContext{})

	// publish side: a span is active, the decorator injects it into metadata
	publishCtx, publishSpan := otel.Tracer("").Start(context.Background(), "store booking")
	publishedTraceID := publishSpan.SpanContext().TraceID()

	capturing := &capturingPublisher{}
	decorated := tracing.PublisherDecorator{Publisher: capturing}

	msg := message.NewMessage(watermill.NewUUID(), []byte(`{}`))
	msg.SetContext(publishCtx)
	require.NoError(t, decorated.Publish("events.BookingMade", msg))
	publishSpan.End()

	require.Len(t, capturing.published, 1)
	assert.NotEmpty(t, capturing.published[0].Metadata.Get("traceparent"))

	// consume side: the middleware picks the trace back up and starts a span
	var handledTraceID trace.TraceID
	handler := traceMessages(func(msg *message.Message) ([]*message.Message, error) {
		handledTraceID = trace.SpanFromContext(msg.Context()).SpanContext().TraceID()
		return nil, nil
	})

	consumed := message.NewMessage(watermill.NewUUID(), []byte(`{}`))
	consumed.Metadata = capturing.published[0].Metadata
	consumed.SetContext(context.Background())

	_, err := handler(consumed)
	require.NoError(t, err)

	assert.Equal(t, publishedTraceID, handledTraceID)

	ended := recorder.Ended()
	require.NotEmpty(t, ended)
	last := ended[len(ended)-1]
	assert.Equal(t, publishedTraceID, last.SpanContext().TraceID())
}
