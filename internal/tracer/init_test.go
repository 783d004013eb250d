package tracer

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestInitTracer_DisabledByDefault(t *testing.T) {
	t.Setenv("OTEL_ENABLED", "")

	shutdown := InitTracer("")
	assert.NoError(t, shutdown(context.Background()))
}

func TestSettingsFromEnv(t *testing.T) {
	tests := []struct {
		name string
		env  map[string]string
		want Settings
	}{
		{
			name: "defaults",
			env:  map[string]string{"OTEL_ENABLED": "", "OTEL_EXPORTER_OTLP_ENDPOINT": "", "OTEL_SAMPLE_RATIO": ""},
			want: Settings{Endpoint: defaultEndpoint, ServiceName: DefaultServiceName, SampleRatio: 1},
		},
		{
			name: "overrides",
			env:  map[string]string{"OTEL_ENABLED": "true", "OTEL_EXPORTER_OTLP_ENDPOINT": "jaeger:4318", "OTEL_SAMPLE_RATIO": "0.25"},
			want: Settings{Enabled: true, Endpoint: "jaeger:4318", ServiceName: DefaultServiceName, SampleRatio: 0.25},
		},
		{
			name: "ratio out of range ignored",
			env:  map[string]string{"OTEL_ENABLED": "", "OTEL_EXPORTER_OTLP_ENDPOINT": "", "OTEL_SAMPLE_RATIO": "3"},
			want: Settings{Endpoint: defaultEndpoint, ServiceName: DefaultServiceName, SampleRatio: 1},
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			for k, v := range tt.env {
				t.Setenv(k, v)
			}
			assert.Equal(t, tt.want, SettingsFromEnv(""))
		})
	}
}
