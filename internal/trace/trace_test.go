package trace

import (
	"bytes"
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/trace/noop"
)

func TestInit_Disabled(t *testing.T) {
	p, err := Init(false, nil)
	require.NoError(t, err)
	assert.NoError(t, p.Shutdown(context.Background()))

	_, span := StartSpan(context.Background(), "noop")
	span.End()
}

func TestInit_ExportsSpans(t *testing.T) {
	defer otel.SetTracerProvider(noop.NewTracerProvider())

	var buf bytes.Buffer
	p, err := Init(true, &buf)
	require.NoError(t, err)

	_, span := StartSpan(context.Background(), "screener.AnalyzeDate")
	span.End()
	require.NoError(t, p.Shutdown(context.Background()))

	assert.Contains(t, buf.String(), "screener.AnalyzeDate")
}
