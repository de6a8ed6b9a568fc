package observability

import (
	"context"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/yungbote/examgenius-backend/internal/pkg/logger"
)

func TestParseHeaders(t *testing.T) {
	got := ParseHeaders(" api-key = abc ,broken,=x, tenant=t1 ,")
	require.Equal(t, map[string]string{"api-key": "abc", "tenant": "t1"}, got)
	require.Nil(t, ParseHeaders(""))
	require.Nil(t, ParseHeaders("nokey"))
}

func TestClampRatio(t *testing.T) {
	require.Equal(t, 0.0, clampRatio(-1))
	require.Equal(t, 1.0, clampRatio(3))
	require.Equal(t, 0.25, clampRatio(0.25))
}

func TestInitTracingDisabled(t *testing.T) {
	shutdown := InitTracing(context.Background(), logger.Nop(), TracingConfig{Enabled: false})
	if err := shutdown(context.Background()); err != nil {
		t.Fatalf("shutdown: %v", err)
	}
}
