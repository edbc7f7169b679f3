package messaging

import (
	"context"
	"testing"

	"medbook/config"

	"github.com/segmentio/kafka-go"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/propagation"
	"go.opentelemetry.io/otel/trace"
)

func TestSplitBrokers(t *testing.T) {
	got := SplitBrokers(" kafka-1:9092, ,kafka-2:9092 ")
	if len(got) != 2 || got[0] != "kafka-1:9092" || got[1] != "kafka-2:9092" {
		t.Fatalf("unexpected brokers %v", got)
	}
	if SplitBrokers("") != nil {
		t.Fatal("expected no brokers for empty input")
	}
}

func TestNewKafkaWriterDisabledWithoutBrokers(t *testing.T) {
	if w := NewKafkaWriter(config.KafkaConfig{}); w != nil {
		t.Fatal("expected nil writer")
	}
	if w := NewKafkaWriter(config.KafkaConfig{Brokers: "localhost:9092"}); w == nil {
		t.Fatal("expected a writer")
	}
}

func TestInjectTraceHeaders(t *testing.T) {
	otel.SetTextMapPropagator(propagation.TraceContext{})

	traceID, _ := trace.TraceIDFromHex("4bf92f3577b34da6a3ce929d0e0e4736")
	spanID, _ := trace.SpanIDFromHex("00f067aa0ba902b7")
	ctx := trace.ContextWithSpanContext(context.Background(), trace.NewSpanContext(trace.SpanContextConfig{
		TraceID:    traceID,
		SpanID:     spanID,
		TraceFlags: trace.FlagsSampled,
	}))

	headers := InjectTraceHeaders(ctx, []kafka.Header{{Key: "event_type", Value: []byte("appointment.booked")}})

	want := "00-4bf92f3577b34da6a3ce929d0e0e4736-00f067aa0ba902b7-01"
	if got := HeaderValue(headers, "traceparent"); got != want {
		t.Fatalf("expected traceparent %q, got %q", want, got)
	}
	if got := HeaderValue(headers, "event_type"); got != "appointment.booked" {
		t.Fatalf("existing header lost: %q", got)
	}
}
