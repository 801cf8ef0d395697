package health

import (
	"context"
	"net"
	"net/http"
	"time"

	"signal_bot/internal/metrics"
	"signal_bot/internal/modules/config"
	"signal_bot/internal/modules/health/service"
	"signal_bot/internal/runner"

	"github.com/bytedance/sonic"
	"go.uber.org/fx"
	"go.uber.org/zap"
)

type Config struct {
	Addr string // например ":8080"
}

func NewConfig(cfg *config.Config) Config {
	return Config{Addr: cfg.HTTPAddr}
}

type healthResponse struct {
	Ready         bool  `json:"ready"`
	UptimeSec     int64 `json:"uptimeSec"`
	LastSweepUnix int64 `json:"lastSweepUnix"`
	Sweeps        int64 `json:"sweeps"`
	Executed      int64 `json:"executed"`
	Denied        int64 `json:"denied"`
	Failed        int64 `json:"failed"`
}

func NewMux(state *service.State, m *metrics.Metrics) *http.ServeMux {
	mux := http.NewServeMux()

	mux.HandleFunc("/livez", func(w http.ResponseWriter, r *http.Request) {
		// liveness: процесс жив
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte("ok"))
	})

	mux.HandleFunc("/readyz", func(w http.ResponseWriter, r *http.Request) {
		// readiness: первый проход по списку завершён
		if !state.Ready() {
			http.Error(w, "not ready", http.StatusServiceUnavailable)
			return
		}
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte("ready"))
	})

	mux.HandleFunc("/healthz", func(w http.ResponseWriter, r *http.Request) {
		executed, denied, failed := state.LastCounts()
		resp := healthResponse{
			Ready:     state.Ready(),
			UptimeSec: int64(state.Uptime().Seconds()),
			Sweeps:    state.Sweeps(),
			Executed:  executed,
			Denied:    denied,
			Failed:    failed,
		}
		if t := state.LastSweep(); !t.IsZero() {
			resp.LastSweepUnix = t.Unix()
		}
		body, err := sonic.Marshal(resp)
		if err != nil {
			http.Error(w, err.Error(), http.StatusInternalServerError)
			return
		}
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write(body)
	})

	mux.Handle("/metrics", m.Handler())

	return mux
}

// RunHTTP поднимает сервер на время жизни приложения. На остановке
// /readyz сразу начинает отвечать 503.
func RunHTTP(lc fx.Lifecycle, cfg Config, state *service.State, mux *http.ServeMux, log *zap.Logger) {
	srv := &http.Server{
		Addr:              cfg.Addr,
		Handler:           mux,
		ReadHeaderTimeout: 5 * time.Second,
	}

	lc.Append(fx.Hook{
		OnStart: func(ctx context.Context) error {
			ln, err := net.Listen("tcp", cfg.Addr)
			if err != nil {
				return err
			}
			log.Info("health server listening", zap.String("addr", cfg.Addr))
			go func() { _ = srv.Serve(ln) }()
			return nil
		},
		OnStop: func(ctx context.Context) error {
			state.SetReady(false)
			return srv.Shutdown(ctx)
		},
	})
}

func Module() fx.Option {
	return fx.Module("health",
		fx.Provide(
			service.NewState,
			func(s *service.State) runner.SweepObserver { return s },
			NewConfig,
			NewMux,
		),
		fx.Invoke(RunHTTP),
	)
}
