package main

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os"
	"strconv"

	"github.com/spf13/cobra"

	"github.com/chenwencheng/jsonrpc/pkg/jsonrpc"
	"github.com/chenwencheng/jsonrpc/pkg/log"
)

// app carries what the subcommands share once the root command has set up.
type app struct {
	url    string
	logger log.Logger
	client *jsonrpc.Client
}

func newRootCmd() *cobra.Command {
	a := &app{}

	root := &cobra.Command{
		Use:   "jsonrpc-call",
		Short: "Send JSON-RPC 2.0 calls from the command line",
		Long: `Send JSON-RPC 2.0 calls, notifications and batches to a server.

Configuration is read from JSONRPC_* environment variables and from a .env
file in JSONRPC_CONFIG_DIR_PATH (default: current directory).`,
		SilenceUsage:      true,
		PersistentPreRunE: a.setup,
	}
	root.PersistentFlags().StringVar(&a.url, "url", "", "endpoint URL, overrides JSONRPC_URL")

	root.AddCommand(newCallCmd(a), newNotifyCmd(a), newBatchCmd(a))
	return root
}

func (a *app) setup(cmd *cobra.Command, args []string) error {
	conf, err := LoadConfig(log.NewIPFSLogger("jsonrpc-call"), func(c *Config) {
		if a.url != "" {
			c.URL = a.url
		}
	})
	if err != nil {
		return err
	}

	a.logger = log.NewZapLogger(conf.Log).WithName("jsonrpc-call")

	signer, err := conf.Signer()
	if err != nil {
		return fmt.Errorf("failed to initialise signer: %w", err)
	}

	opts := []jsonrpc.Option{
		jsonrpc.WithLogger(a.logger),
		jsonrpc.WithTransport(conf.NewTransport()),
	}
	if signer != nil {
		opts = append(opts, jsonrpc.WithSigner(signer))
		a.logger.Debug("signing enabled", "appKey", signer.AppKey())
	}

	a.client = jsonrpc.NewClient(conf.URL, opts...)
	return nil
}

func newCallCmd(a *app) *cobra.Command {
	var id string

	cmd := &cobra.Command{
		Use:   "call METHOD [PARAMS]",
		Short: "Call a method and print its result",
		Long:  "Call a method and print its result. PARAMS is a JSON array or object.",
		Args:  cobra.RangeArgs(1, 2),
		RunE: func(cmd *cobra.Command, args []string) error {
			params, err := parseParams(args[1:])
			if err != nil {
				return err
			}

			var opts []jsonrpc.CallOption
			if id != "" {
				opts = append(opts, jsonrpc.WithID(parseID(id)))
			}

			res, err := a.client.Call(cmd.Context(), args[0], params, opts...)
			if err != nil {
				return err
			}
			return printJSON(cmd.OutOrStdout(), res.Value())
		},
	}
	cmd.Flags().StringVar(&id, "id", "", "request id; integers are sent as numbers")
	return cmd
}

func newNotifyCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "notify METHOD [PARAMS]",
		Short: "Send a notification",
		Args:  cobra.RangeArgs(1, 2),
		RunE: func(cmd *cobra.Command, args []string) error {
			params, err := parseParams(args[1:])
			if err != nil {
				return err
			}
			return a.client.Notify(cmd.Context(), args[0], params)
		},
	}
}

// batchEntry is one line of a batch file.
type batchEntry struct {
	Method string          `json:"method"`
	Params json.RawMessage `json:"params,omitempty"`
	Notify bool            `json:"notify,omitempty"`
}

// batchOutput is one response printed by the batch command.
type batchOutput struct {
	ID     jsonrpc.ID      `json:"id"`
	Result json.RawMessage `json:"result,omitempty"`
	Error  *jsonrpc.Error  `json:"error,omitempty"`
}

func newBatchCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "batch [FILE]",
		Short: "Send a batch read from FILE or stdin",
		Long: `Send a batch read from FILE, or from stdin when FILE is "-" or missing.
The input is a JSON array of {"method": ..., "params": ..., "notify": bool}.
Responses are printed in request order.`,
		Args: cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			entries, err := readBatch(cmd.InOrStdin(), args)
			if err != nil {
				return err
			}

			batch := a.client.Batch()
			for _, e := range entries {
				var params any
				if len(e.Params) > 0 {
					params = e.Params
				}
				if e.Notify {
					err = batch.Notify(e.Method, params)
				} else {
					_, err = batch.Call(e.Method, params)
				}
				if err != nil {
					return err
				}
			}

			res, err := batch.Send(cmd.Context())
			if err != nil {
				return err
			}

			out := make([]batchOutput, 0, len(res.Responses))
			for _, msg := range res.Responses {
				out = append(out, batchOutput{ID: msg.ID, Result: msg.Result, Error: msg.Error})
			}
			return printJSON(cmd.OutOrStdout(), out)
		},
	}
}

func readBatch(stdin io.Reader, args []string) ([]batchEntry, error) {
	r := stdin
	if len(args) == 1 && args[0] != "-" {
		f, err := os.Open(args[0])
		if err != nil {
			return nil, err
		}
		defer f.Close()
		r = f
	}

	var entries []batchEntry
	if err := json.NewDecoder(r).Decode(&entries); err != nil {
		return nil, fmt.Errorf("failed to read batch: %w", err)
	}
	return entries, nil
}

func parseParams(args []string) (any, error) {
	if len(args) == 0 {
		return nil, nil
	}
	if !json.Valid([]byte(args[0])) {
		return nil, errors.New("params must be valid JSON")
	}
	return json.RawMessage(args[0]), nil
}

func parseID(s string) jsonrpc.ID {
	if n, err := strconv.ParseInt(s, 10, 64); err == nil {
		return jsonrpc.NewIntID(n)
	}
	return jsonrpc.NewStringID(s)
}

func printJSON(w io.Writer, v any) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}
