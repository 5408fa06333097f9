package trace

import (
	"bytes"
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestStartSpan_DisabledIsNoop(t *testing.T) {
	ctx, span := StartSpan(context.Background(), "noop", Symbol("AAPL"))
	End(span, nil)
	_, _, ok := IDs(ctx)
	assert.False(t, ok)
}

func TestInit_ExportsSpans(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, Init(Config{Enabled: true, ServiceName: "stockx-test", Writer: &buf}))

	ctx, span := StartSpan(context.Background(), "train", Symbol("MSFT"))
	traceID, _, ok := IDs(ctx)
	assert.True(t, ok)
	assert.NotEmpty(t, traceID)
	End(span, errors.New("boom"))

	require.NoError(t, Shutdown(context.Background()))
	assert.Contains(t, buf.String(), "train")
	assert.Contains(t, buf.String(), "MSFT")
}
