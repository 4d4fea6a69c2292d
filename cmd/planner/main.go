// Command planner is the thin CLI client: it either talks to a running
// plannerd over HTTP (--addr) or opens the store directly in-process for
// single-user/offline use, executing operations and queries through the
// same request router either way.
package main

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"os"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/Taj-Howe/planner-kernel/internal/config"
	"github.com/Taj-Howe/planner-kernel/internal/kernel"
	"github.com/Taj-Howe/planner-kernel/internal/router"
	"github.com/Taj-Howe/planner-kernel/internal/store/sqlite"
	"github.com/Taj-Howe/planner-kernel/internal/view"
)

var (
	addr      string
	storePath string
	actorID   string
)

func main() {
	root := &cobra.Command{Use: "planner", Short: "Planning kernel CLI"}
	root.PersistentFlags().StringVar(&addr, "addr", "", "plannerd HTTP address; empty opens the store directly")
	root.PersistentFlags().StringVar(&storePath, "store-path", "", "sqlite store path for direct mode")
	root.PersistentFlags().StringVar(&actorID, "actor", "cli", "actor id recorded on every operation")

	root.AddCommand(opCmd(), queryCmd())

	if err := root.ExecuteContext(context.Background()); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func opCmd() *cobra.Command {
	var argsJSON string
	cmd := &cobra.Command{
		Use:   "op <name>",
		Short: "Execute a named kernel operation with --args '{...}' JSON",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			parsed, err := parseArgs(argsJSON)
			if err != nil {
				return err
			}
			res, err := dispatchOp(cmd.Context(), args[0], parsed)
			if err != nil {
				return err
			}
			return printResult(res)
		},
	}
	cmd.Flags().StringVar(&argsJSON, "args", "{}", "operation arguments as a JSON object")
	return cmd
}

func queryCmd() *cobra.Command {
	var argsJSON string
	cmd := &cobra.Command{
		Use:   "query <name>",
		Short: "Run a named view query with --args '{...}' JSON",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			parsed, err := parseArgs(argsJSON)
			if err != nil {
				return err
			}
			res, err := dispatchQuery(cmd.Context(), args[0], parsed)
			if err != nil {
				return err
			}
			return printResult(res)
		},
	}
	cmd.Flags().StringVar(&argsJSON, "args", "{}", "query arguments as a JSON object")
	return cmd
}

func parseArgs(raw string) (map[string]any, error) {
	if raw == "" {
		return map[string]any{}, nil
	}
	var m map[string]any
	if err := json.Unmarshal([]byte(raw), &m); err != nil {
		return nil, fmt.Errorf("parse --args: %w", err)
	}
	return m, nil
}

func dispatchOp(ctx context.Context, name string, args map[string]any) (any, error) {
	if addr != "" {
		return postJSON(ctx, addr+"/op", map[string]any{
			"name": name, "args": args, "actorType": "user", "actorId": actorID,
		})
	}
	rt, closeFn, err := openDirect(ctx)
	if err != nil {
		return nil, err
	}
	defer closeFn()
	return rt.ExecuteOp(ctx, kernel.Envelope{
		Name: name, Args: args, ActorType: "user", ActorID: actorID,
	}), nil
}

func dispatchQuery(ctx context.Context, name string, args map[string]any) (any, error) {
	if addr != "" {
		return postJSON(ctx, addr+"/query", map[string]any{"name": name, "args": args})
	}
	rt, closeFn, err := openDirect(ctx)
	if err != nil {
		return nil, err
	}
	defer closeFn()
	return rt.Query(ctx, name, args), nil
}

func openDirect(ctx context.Context) (*router.Router, func(), error) {
	path := storePath
	if path == "" {
		cfg, err := config.Load(".", viper.New())
		if err != nil {
			return nil, nil, err
		}
		path = cfg.StorePath
	}
	st, err := sqlite.Open(ctx, path)
	if err != nil {
		return nil, nil, err
	}
	rt := router.New(kernel.New(st), view.New(st))
	return rt, func() { st.Close() }, nil
}

func postJSON(ctx context.Context, url string, body map[string]any) (any, error) {
	buf, err := json.Marshal(body)
	if err != nil {
		return nil, err
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(buf))
	if err != nil {
		return nil, err
	}
	req.Header.Set("Content-Type", "application/json")
	resp, err := http.DefaultClient.Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()
	var out any
	if err := json.NewDecoder(resp.Body).Decode(&out); err != nil {
		return nil, err
	}
	return out, nil
}

func printResult(res any) error {
	enc := json.NewEncoder(os.Stdout)
	enc.SetIndent("", "  ")
	return enc.Encode(res)
}
