package cmd

import (
	"bufio"
	"context"
	"fmt"
	"io"
	"os"
	"os/signal"
	"strings"

	"github.com/spf13/cobra"

	"github.com/nextlevelbuilder/gptrelay/internal/agent"
	"github.com/nextlevelbuilder/gptrelay/internal/config"
	"github.com/nextlevelbuilder/gptrelay/internal/routing"
)

func chatCmd() *cobra.Command {
	var message string
	cmd := &cobra.Command{
		Use:   "chat",
		Short: "Talk to the completion service from the terminal",
		Long:  "Send prompts through the same system prompt, flattening and reply handling the Discord relay uses. Without -m an interactive session starts.",
		Run: func(cmd *cobra.Command, args []string) {
			runChat(message)
		},
	}
	cmd.Flags().StringVarP(&message, "message", "m", "", "send a single message and exit")
	return cmd
}

func runChat(message string) {
	cfg, err := config.Load(resolveConfigPath())
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}

	loop := agent.NewLoop(agent.LoopConfig{
		Provider:     newProvider(cfg),
		Routing:      routing.New(),
		SystemPrompt: cfg.Completion.SystemPrompt,
		HistoryLimit: cfg.Discord.HistoryLimit,
		IgnorePrefix: cfg.Discord.IgnorePrefix,
	})

	if message != "" {
		resp, err := loop.Ask(context.Background(), message)
		if err != nil {
			fmt.Fprintf(os.Stderr, "Error: %v\n", err)
			os.Exit(1)
		}
		fmt.Println(resp)
		return
	}

	fmt.Fprintf(os.Stderr, "\ngptrelay interactive chat\n")
	fmt.Fprintf(os.Stderr, "Endpoint: %s | Model: %s\n", cfg.Completion.Endpoint, cfg.Completion.Model)
	fmt.Fprintf(os.Stderr, "Type \"exit\" to quit\n\n")

	ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt)
	defer cancel()

	chatREPL(ctx, loop, os.Stdin, os.Stdout, os.Stderr)
}

// chatREPL reads prompts line by line until EOF, "exit" or ctx cancellation.
func chatREPL(ctx context.Context, loop *agent.Loop, in io.Reader, out, errOut io.Writer) {
	scanner := bufio.NewScanner(in)
	for {
		select {
		case <-ctx.Done():
			fmt.Fprintln(errOut, "\nGoodbye!")
			return
		default:
		}

		fmt.Fprint(errOut, "You: ")
		if !scanner.Scan() {
			return
		}
		input := strings.TrimSpace(scanner.Text())
		if input == "" {
			continue
		}
		if input == "exit" || input == "quit" {
			fmt.Fprintln(errOut, "Goodbye!")
			return
		}

		resp, err := loop.Ask(ctx, input)
		if err != nil {
			fmt.Fprintf(errOut, "Error: %v\n\n", err)
			continue
		}
		fmt.Fprintf(out, "\n%s\n\n", resp)
	}
}
