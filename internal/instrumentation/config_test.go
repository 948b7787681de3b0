package instrumentation

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestDefaultConfig(t *testing.T) {
	for _, key := range []string{"OTEL_SERVICE_NAME", "INSTRUMENTATION_ENABLED", "METRICS_EXPORTER",
		"TRACING_EXPORTER", "OTEL_TRACES_SAMPLER_ARG", "AUDIT_LOGGING_INCLUDE_PII"} {
		t.Setenv(key, "")
	}

	config := DefaultConfig()

	assert.Equal(t, "gmailmcp", config.ServiceName)
	assert.True(t, config.Enabled)
	assert.Equal(t, ExporterPrometheus, config.MetricsExporter)
	assert.Equal(t, ExporterNone, config.TracingExporter)
	assert.Equal(t, 0.1, config.TraceSamplingRate)
	assert.True(t, config.AuditLogging.Enabled)
	assert.False(t, config.AuditLogging.IncludePII)
	assert.NoError(t, config.Validate())
}

func TestDefaultConfig_FromEnv(t *testing.T) {
	t.Setenv("OTEL_SERVICE_NAME", "test-service")
	t.Setenv("INSTRUMENTATION_ENABLED", "false")
	t.Setenv("METRICS_EXPORTER", "stdout")
	t.Setenv("TRACING_EXPORTER", "stdout")
	t.Setenv("OTEL_TRACES_SAMPLER_ARG", "0.5")
	t.Setenv("AUDIT_LOGGING_INCLUDE_PII", "true")

	config := DefaultConfig()

	assert.Equal(t, "test-service", config.ServiceName)
	assert.False(t, config.Enabled)
	assert.Equal(t, ExporterStdout, config.MetricsExporter)
	assert.Equal(t, ExporterStdout, config.TracingExporter)
	assert.Equal(t, 0.5, config.TraceSamplingRate)
	assert.True(t, config.AuditLogging.IncludePII)
}

func TestDefaultConfig_BadValuesFallBack(t *testing.T) {
	t.Setenv("INSTRUMENTATION_ENABLED", "perhaps")
	t.Setenv("OTEL_TRACES_SAMPLER_ARG", "lots")

	config := DefaultConfig()
	assert.True(t, config.Enabled)
	assert.Equal(t, 0.1, config.TraceSamplingRate)
}

func TestConfig_Validate(t *testing.T) {
	tests := []struct {
		name    string
		config  Config
		wantErr bool
	}{
		{"defaults", Config{MetricsExporter: ExporterPrometheus, TracingExporter: ExporterNone, TraceSamplingRate: 0.1}, false},
		{"empty exporters", Config{}, false},
		{"negative sampling", Config{TraceSamplingRate: -0.1}, true},
		{"sampling above one", Config{TraceSamplingRate: 1.5}, true},
		{"unknown metrics exporter", Config{MetricsExporter: "graphite"}, true},
		{"unknown tracing exporter", Config{TracingExporter: "jaeger"}, true},
		{"otlp tracing without endpoint", Config{TracingExporter: ExporterOTLP}, true},
		{"otlp metrics without endpoint", Config{MetricsExporter: ExporterOTLP}, true},
		{"otlp with endpoint", Config{MetricsExporter: ExporterOTLP, TracingExporter: ExporterOTLP, OTLPEndpoint: "localhost:4318"}, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.config.Validate()
			if (err != nil) != tt.wantErr {
				t.Errorf("Validate() error = %v, wantErr %v", err, tt.wantErr)
			}
		})
	}
}
