package main

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"vegan-agent-be/internal/dto"
	"vegan-agent-be/pkg/events"
	pktNats "vegan-agent-be/pkg/nats"

	"github.com/spf13/cobra"
)

var (
	searchImage  string
	lookupPolicy string
	watchDurable string
)

var scanCmd = &cobra.Command{
	Use:   "scan <image>",
	Short: "Scan a label photo (.jpg, .jpeg or .png)",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		data, err := os.ReadFile(args[0])
		if err != nil {
			return fmt.Errorf("failed to read image: %w", err)
		}
		if err := ensureKey(cmd.Context(), stdinPrompter()); err != nil {
			return err
		}

		resp := container.ScanService.Scan(cmd.Context(), cliSession, &dto.ScanRequest{
			Image:    data,
			Filename: filepath.Base(args[0]),
		})
		return report(newPrinter(cmd.OutOrStdout(), !noColor), resp)
	},
}

var searchCmd = &cobra.Command{
	Use:   "search <query>",
	Short: "Look a product up on the web",
	Args:  cobra.MinimumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		req := &dto.SearchRequest{Query: strings.Join(args, " ")}
		if searchImage != "" {
			data, err := os.ReadFile(searchImage)
			if err != nil {
				return fmt.Errorf("failed to read image: %w", err)
			}
			req.Image = data
			req.Filename = filepath.Base(searchImage)
		}
		if err := ensureKey(cmd.Context(), stdinPrompter()); err != nil {
			return err
		}

		resp := container.ScanService.Search(cmd.Context(), cliSession, req)
		return report(newPrinter(cmd.OutOrStdout(), !noColor), resp)
	},
}

var lookupCmd = &cobra.Command{
	Use:   "lookup <ingredient>...",
	Short: "Match ingredients against the built-in knowledge table",
	Args:  cobra.MinimumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		res, err := container.IngredientService.Lookup(&dto.LookupRequest{
			Ingredients: args,
			Policy:      lookupPolicy,
		})
		if err != nil {
			return err
		}
		newPrinter(cmd.OutOrStdout(), !noColor).lookup(res)
		return nil
	},
}

var keyCmd = &cobra.Command{
	Use:   "key",
	Short: "Show where the API key comes from without revealing it",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		st, err := container.SessionService.CredentialStatus(cmd.Context(), cliSession)
		if err != nil {
			return err
		}
		newPrinter(cmd.OutOrStdout(), !noColor).credential(st)
		if st.Required && !st.Found {
			return &exitError{code: 1}
		}
		return nil
	},
}

var watchCmd = &cobra.Command{
	Use:   "watch",
	Short: "Print scan events from the NATS stream as they arrive",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		if cfg.Events.NatsURL == "" {
			return &exitError{code: 1, msg: "NATS_URL is not set"}
		}
		sub, err := pktNats.NewSubscriber(cfg.Events.NatsURL)
		if err != nil {
			return err
		}
		defer sub.Close()

		p := newPrinter(cmd.OutOrStdout(), !noColor)
		err = sub.Subscribe(cmd.Context(), events.TypeScanCompleted, watchDurable, func(ctx context.Context, evt events.Event) error {
			p.event(evt)
			return nil
		})
		if err != nil {
			return err
		}

		<-cmd.Context().Done()
		return nil
	},
}

func init() {
	searchCmd.Flags().StringVar(&searchImage, "image", "", "Optional product photo")
	lookupCmd.Flags().StringVar(&lookupPolicy, "policy", "", "Unknown ingredient policy: omit or report")
	watchCmd.Flags().StringVar(&watchDurable, "durable", "", "Durable consumer name (empty follows new events only)")
}

// report prints the outcome and turns a failed one into exit code 1.
func report(p *printer, resp *dto.ScanResponse) error {
	p.result(resp)
	if !resp.OK() {
		return &exitError{code: 1}
	}
	return nil
}
