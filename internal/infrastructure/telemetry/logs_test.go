package telemetry_test

import (
	"context"
	"testing"

	"github.com/printcloud/backend/internal/infrastructure/telemetry"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"
)

func TestNewLoggerProvider_Disabled(t *testing.T) {
	lp, err := telemetry.NewLoggerProvider(context.Background(), telemetry.LogsConfig{
		Enabled: false,
	}, zap.NewNop())
	require.NoError(t, err)

	assert.False(t, lp.IsEnabled())
	assert.NoError(t, lp.Shutdown(context.Background()))
	assert.NoError(t, lp.ForceFlush(context.Background()))
}

func TestNewZapOTELCore_DisabledProviderIsNop(t *testing.T) {
	lp, err := telemetry.NewLoggerProvider(context.Background(), telemetry.LogsConfig{
		Enabled: false,
	}, zap.NewNop())
	require.NoError(t, err)

	core := telemetry.NewZapOTELCore(telemetry.ZapBridgeConfig{
		ServiceName:    "printcloud-backend",
		LoggerProvider: lp,
		Level:          zapcore.InfoLevel,
	})

	assert.False(t, core.Enabled(zapcore.ErrorLevel))
}

func TestNewZapOTELCore_NilProviderIsNop(t *testing.T) {
	core := telemetry.NewZapOTELCore(telemetry.ZapBridgeConfig{
		ServiceName: "printcloud-backend",
	})
	assert.False(t, core.Enabled(zapcore.ErrorLevel))
}

func TestNewBridgedLogger_WritesToBothCores(t *testing.T) {
	baseCore, baseLogs := observer.New(zapcore.DebugLevel)
	secondCore, secondLogs := observer.New(zapcore.DebugLevel)

	logger := telemetry.NewBridgedLogger(baseCore, secondCore)
	logger.Info("invoice issued", zap.String("invoice_number", "INV-2026-0001"))

	require.Equal(t, 1, baseLogs.Len())
	require.Equal(t, 1, secondLogs.Len())
	assert.Equal(t, "invoice issued", baseLogs.All()[0].Message)
	assert.Equal(t, "invoice issued", secondLogs.All()[0].Message)
}
