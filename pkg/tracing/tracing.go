package tracing

import (
	"context"
	"fmt"

	"signal_bot/pkg/logger"

	"github.com/opentracing/opentracing-go"
	"github.com/opentracing/opentracing-go/ext"
	"github.com/pkg/errors"
	"github.com/uber/jaeger-client-go"
	jCfg "github.com/uber/jaeger-client-go/config"
	"github.com/uber/jaeger-lib/metrics"
)

var serviceName = "default"

func SetServiceName(newName string) string {
	oldName := serviceName
	serviceName = newName

	return oldName
}

type Config struct {
	Enabled bool
	Host    string
	Port    int
	// SampleRate: >= 1 (или 0) пишет все спаны, иначе вероятностный сэмплер.
	SampleRate float64
}

func samplerFor(rate float64) *jCfg.SamplerConfig {
	if rate <= 0 || rate >= 1 {
		return &jCfg.SamplerConfig{Type: jaeger.SamplerTypeConst, Param: 1}
	}
	return &jCfg.SamplerConfig{Type: jaeger.SamplerTypeProbabilistic, Param: rate}
}

// InitTracer ставит глобальный jaeger-трейсер. Если трейсинг выключен,
// остаётся noop-трейсер opentracing и closer ничего не делает.
func InitTracer(conf Config) (opentracing.Tracer, func(), error) {
	if !conf.Enabled {
		return opentracing.NoopTracer{}, func() {}, nil
	}

	cfg := &jCfg.Configuration{
		ServiceName: serviceName,
		Sampler:     samplerFor(conf.SampleRate),
		Reporter: &jCfg.ReporterConfig{
			LocalAgentHostPort: fmt.Sprintf("%s:%d", conf.Host, conf.Port),
		},
	}

	tracer, closer, err := cfg.NewTracer(jCfg.Metrics(metrics.NullFactory))
	if err != nil {
		return nil, nil, errors.Wrap(err, "jaeger tracer")
	}

	opentracing.SetGlobalTracer(tracer)
	return tracer, func() {
		if err := closer.Close(); err != nil {
			logger.Error("Error closing Jaeger tracer: %v", err)
		}
	}, nil
}

// StartSpan: span от глобального трейсера с тегом symbol.
func StartSpan(ctx context.Context, operation, symbol string) (opentracing.Span, context.Context) {
	span, ctx := opentracing.StartSpanFromContext(ctx, operation)
	if symbol != "" {
		span.SetTag("symbol", symbol)
	}
	return span, ctx
}

// MarkError помечает span ошибочным.
func MarkError(span opentracing.Span, err error) {
	if err == nil {
		return
	}
	ext.Error.Set(span, true)
	span.LogKV("error", err.Error())
}
