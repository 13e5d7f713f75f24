package cmd

import (
	"context"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/luma/respwire/gateway"
)

var (
	// The host to listen on
	httpHost string

	// The port to listen for http requests on
	httpPort int
)

func init() {
	flags := GatewayCmd.Flags()

	flags.StringVar(&httpHost, "http-host", "", "The host to listen to HTTP requests on")
	flags.IntVar(&httpPort, "http-port", 0, "The port to listen to HTTP requests on")
}

var GatewayCmd = &cobra.Command{
	Use:   "gateway",
	Short: "Serve an HTTP gateway in front of the server",
	Long: `Serve an HTTP gateway in front of the server

Every POST /query request with a body of {"args": ["GET", "key"]} is sent
to the server over its own connection and answered with the reply as JSON.

Usage
	respwire gateway --http-port 7380

`,
	RunE: func(cmd *cobra.Command, args []string) (err error) {
		ctx, signalStop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
		defer signalStop()

		conf, log, err := setup(ctx)
		if err != nil {
			return err
		}

		defer log.Sync() // nolint: errcheck

		if httpHost != "" {
			conf.HTTPHost = httpHost
		}

		if httpPort != 0 {
			conf.HTTPPort = httpPort
		}

		server := gateway.New(gateway.Options{
			Host:      conf.HTTPHost,
			Port:      conf.HTTPPort,
			Client:    clientOptions(conf, log),
			DebugHTTP: conf.DebugHTTP,
			Log:       log.Named("gateway"),
		})

		if err := server.Start(ctx); err != nil {
			return err
		}

		log.Info("Gateway started",
			zap.Any("config", conf),
			zap.String("addr", server.Addr()))

		// Listen for the interrupt signal.
		<-ctx.Done()

		// Restore default behavior on the interrupt signal and notify user of shutdown.
		signalStop()
		log.Info("Shutting down gracefully, press Ctrl+C again to force")

		// The context is used to inform the server it has 5 seconds to finish
		// the request it is currently handling
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()

		if err := server.Shutdown(shutdownCtx); err != nil {
			log.Error("Http server forced to shutdown", zap.Error(err))
		}

		log.Info("Exiting")
		return nil
	},
}
