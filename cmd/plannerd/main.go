// Command plannerd is the daemon entrypoint: it owns the sqlite store,
// binds the request router to an HTTP surface, watches the store file for
// on-disk changes, and reports op/query metrics.
package main

import (
	"context"
	"encoding/json"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/Taj-Howe/planner-kernel/internal/config"
	"github.com/Taj-Howe/planner-kernel/internal/kernel"
	"github.com/Taj-Howe/planner-kernel/internal/log"
	"github.com/Taj-Howe/planner-kernel/internal/notify"
	"github.com/Taj-Howe/planner-kernel/internal/router"
	"github.com/Taj-Howe/planner-kernel/internal/store/sqlite"
	"github.com/Taj-Howe/planner-kernel/internal/telemetry"
	"github.com/Taj-Howe/planner-kernel/internal/view"
)

func main() {
	v := viper.New()
	var cfgDir string

	root := &cobra.Command{
		Use:   "plannerd",
		Short: "Planning kernel daemon",
		RunE: func(cmd *cobra.Command, args []string) error {
			return run(cmd.Context(), cfgDir, v)
		},
	}
	root.PersistentFlags().StringVar(&cfgDir, "config-dir", ".", "directory holding planner.yaml/planner.toml")
	root.PersistentFlags().String("store-path", "", "override store-path")
	root.PersistentFlags().String("listen-addr", "", "override listen-addr")
	_ = v.BindPFlag("store-path", root.PersistentFlags().Lookup("store-path"))
	_ = v.BindPFlag("listen-addr", root.PersistentFlags().Lookup("listen-addr"))

	ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer cancel()

	if err := root.ExecuteContext(ctx); err != nil {
		log.L().Fatalw("plannerd exited with error", "err", err)
	}
}

func run(ctx context.Context, cfgDir string, v *viper.Viper) error {
	cfg, err := config.Load(cfgDir, v)
	if err != nil {
		return err
	}

	st, err := sqlite.Open(ctx, cfg.StorePath)
	if err != nil {
		return err
	}
	defer st.Close()

	rec, provider, err := telemetry.Setup(cfg.MetricsEnabled, os.Stdout, 30*time.Second)
	if err != nil {
		return err
	}
	defer provider.Shutdown(context.Background())

	k := kernel.New(st)
	vw := view.New(st)
	rt := router.New(k, vw)

	mux := http.NewServeMux()
	mux.HandleFunc("/op", handleOp(ctx, rt, rec))
	mux.HandleFunc("/query", handleQuery(ctx, rt, rec))
	mux.HandleFunc("/healthz", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
	})

	srv := &http.Server{Addr: cfg.ListenAddr, Handler: mux}
	go watchExportInvalidation(ctx, cfg.StorePath)

	go func() {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		_ = srv.Shutdown(shutdownCtx)
	}()

	log.L().Infow("plannerd listening", "addr", cfg.ListenAddr, "store", cfg.StorePath)
	if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		return err
	}
	return nil
}

func watchExportInvalidation(ctx context.Context, storePath string) {
	w, err := notify.New(storePath)
	if err != nil {
		log.L().Warnw("invalidation watch disabled", "err", err)
		return
	}
	defer w.Close()
	w.Run(ctx, func(tag string) {
		log.L().Infow("store changed on disk", "tag", tag)
	})
}

type opRequest struct {
	Name      string         `json:"name"`
	Args      map[string]any `json:"args"`
	OpID      string         `json:"opId"`
	ActorType string         `json:"actorType"`
	ActorID   string         `json:"actorId"`
}

func handleOp(ctx context.Context, rt *router.Router, rec *telemetry.Recorder) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req opRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			http.Error(w, err.Error(), http.StatusBadRequest)
			return
		}
		start := time.Now()
		res := rt.ExecuteOp(r.Context(), kernel.Envelope{
			Name:      req.Name,
			Args:      req.Args,
			OpID:      req.OpID,
			OpName:    req.Name,
			ActorType: req.ActorType,
			ActorID:   req.ActorID,
			TS:        time.Now().UnixMilli(),
		})
		rec.ObserveOp(ctx, req.Name, start, res.OK)
		w.Header().Set("Content-Type", "application/json")
		_ = json.NewEncoder(w).Encode(res)
	}
}

type queryRequest struct {
	Name string         `json:"name"`
	Args map[string]any `json:"args"`
}

func handleQuery(ctx context.Context, rt *router.Router, rec *telemetry.Recorder) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req queryRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			http.Error(w, err.Error(), http.StatusBadRequest)
			return
		}
		start := time.Now()
		res := rt.Query(r.Context(), req.Name, req.Args)
		rec.ObserveQuery(ctx, req.Name, start, res.OK)
		w.Header().Set("Content-Type", "application/json")
		_ = json.NewEncoder(w).Encode(res)
	}
}
