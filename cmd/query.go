package cmd

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/luma/respwire/client"
	"github.com/luma/respwire/protocol"
)

var (
	// Print bulk payloads as they are instead of quoted
	raw bool
)

func init() {
	QueryCmd.Flags().BoolVarP(&raw, "raw", "r", false, "Print bulk strings without quoting")
}

var QueryCmd = &cobra.Command{
	Use:   "query COMMAND [ARG...]",
	Short: "Send a single command and print the reply",
	Long: `Send a single command and print the reply

Usage
	respwire query SET key value
	respwire query --raw GET key
`,
	Args: cobra.MinimumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx, signalStop := signal.NotifyContext(context.Background(), os.Interrupt)
		defer signalStop()

		conf, log, err := setup(ctx)
		if err != nil {
			return err
		}

		defer log.Sync() // nolint: errcheck

		var reply protocol.Reply

		err = client.WithConn(ctx, clientOptions(conf, log), func(conn *client.Conn) (err error) {
			reply, err = conn.DoStrings(ctx, args...)
			return err
		})

		var serverErr *protocol.ServerError
		if errors.As(err, &serverErr) {
			// The exchange worked, show the error the way the server sent it
			fmt.Fprintln(cmd.OutOrStdout(), protocol.ErrorReply(serverErr.Message).String())
			return err
		}

		if err != nil {
			log.Debug("Query failed", zap.Strings("args", args), zap.Error(err))
			return err
		}

		if raw && reply.Kind == protocol.KindBulkString && !reply.IsNull() {
			_, err = cmd.OutOrStdout().Write(append(reply.Str, '\n'))
			return err
		}

		fmt.Fprintln(cmd.OutOrStdout(), reply.String())
		return nil
	},
}
