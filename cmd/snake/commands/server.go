package commands

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/battlesnakeio/classic/api"
	"github.com/battlesnakeio/classic/config"
	"github.com/battlesnakeio/classic/worker"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	log "github.com/sirupsen/logrus"
	"github.com/spf13/cobra"
)

var (
	apiListen  = ":3005"
	promEnable = true
	promListen = ":9000"
)

func init() {
	serverCmd.Flags().StringVarP(&apiListen, "listen", "l", apiListen, "api address to listen on")
	serverCmd.Flags().StringVarP(&backend, "backend", "b", backend, backendUsage)
	serverCmd.Flags().StringVarP(&backendArgs, "backend-args", "a", backendArgs, "options to pass to the backend being used")
	serverCmd.Flags().BoolVar(&promEnable, "prometheus", promEnable, "enable prometheus metrics")
	serverCmd.Flags().StringVar(&promListen, "prometheus-listen", promListen, "prometheus http endpoint")
}

var serverCmd = &cobra.Command{
	Use:    "server",
	Short:  "serves snake games over http",
	PreRun: func(c *cobra.Command, args []string) { prometheus() },
	Run: func(c *cobra.Command, args []string) {
		s, err := openStore(backend, backendArgs)
		if err != nil {
			log.WithError(err).
				WithField("backend", backend).
				Fatal("unable to start up backend store")
		}
		defer closeStore(s)

		pool := worker.NewPool(config.MaxGames)
		srv := api.New(apiListen, s, pool)

		go func() {
			sig := make(chan os.Signal, 1)
			signal.Notify(sig, os.Interrupt, syscall.SIGTERM)
			<-sig

			log.Info("shutting down")
			ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
			defer cancel()
			if err := srv.Shutdown(ctx); err != nil {
				log.WithError(err).Warn("api shutdown failed")
			}
		}()

		log.WithFields(log.Fields{
			"listen":  apiListen,
			"backend": backend,
		}).Info("snake api serving")
		if err := srv.WaitForExit(); err != nil {
			log.WithError(err).
				WithField("listen", apiListen).
				Error("api server failed")
		}
		pool.StopAll()
	},
}

func prometheus() {
	if !promEnable {
		log.Info("prometheus exporter not enabled")
		return
	}

	log.WithField("addr", promListen).Info("starting prometheus exporter")
	go func() {
		r := http.NewServeMux()
		r.Handle("/metrics", promhttp.Handler())
		if err := http.ListenAndServe(promListen, r); err != nil {
			log.WithError(err).Warn("prometheus failed to listen")
		}
	}()
}
