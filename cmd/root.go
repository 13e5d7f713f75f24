package cmd

import (
	"context"
	"fmt"
	"os"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/luma/respwire/client"
	"github.com/luma/respwire/cmd/gen"
	"github.com/luma/respwire/internal/env"
	"github.com/luma/respwire/transport"
)

var (
	// Optional TOML config file
	configPath string

	// The server to connect to, overriding the config
	host string
	port int
)

var RootCmd = &cobra.Command{
	Use:   "respwire",
	Short: "Talk RESP to a Redis compatible server",
	Long: `respwire sends commands to a Redis compatible server using the
Redis Serialization Protocol and prints the decoded replies. It can also
expose the same round trip over HTTP.`,
	SilenceUsage: true,
}

func init() {
	flags := RootCmd.PersistentFlags()

	flags.StringVarP(&configPath, "config", "c", "", "Path to a TOML config file")
	flags.StringVarP(&host, "host", "a", "", "The server host, overrides RESPWIRE_HOST")
	flags.IntVarP(&port, "port", "p", 0, "The server port, overrides RESPWIRE_PORT")

	RootCmd.AddCommand(QueryCmd)
	RootCmd.AddCommand(GatewayCmd)
	RootCmd.AddCommand(VersionCmd)
	RootCmd.AddCommand(gen.RootCmd)
}

func Execute() {
	if err := RootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

// setup loads the config, applies the command line overrides and builds
// the logger.
func setup(ctx context.Context) (*env.Config, *zap.Logger, error) {
	conf, err := env.LoadConfig(ctx, configPath)
	if err != nil {
		return nil, nil, err
	}

	if host != "" {
		conf.Host = host
	}

	if port != 0 {
		conf.Port = port
	}

	log, err := env.MakeLogger(conf.LogLevel)
	if err != nil {
		return nil, nil, err
	}

	return conf, log, nil
}

func clientOptions(conf *env.Config, log *zap.Logger) client.Options {
	return client.Options{
		Options: transport.Options{
			Host:        conf.Host,
			Port:        conf.Port,
			DialTimeout: conf.DialTimeout,
			Trace:       conf.Trace,
			Log:         log.Named("transport"),
		},
		ReadTimeout:  conf.ReadTimeout,
		WriteTimeout: conf.WriteTimeout,
	}
}
