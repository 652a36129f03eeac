package commands

import (
	"context"
	"errors"
	"fmt"
	"io"
	"path/filepath"
	"strings"

	"github.com/chzyer/readline"
	"github.com/spf13/cobra"
	"github.com/starbridge-labs/starbridge/internal/bridge"
	"github.com/starbridge-labs/starbridge/internal/model"
)

const (
	replPrompt         = "starbridge> "
	replContinuePrompt = "       ...> "
)

func runQueryREPL(cmd *cobra.Command, cc *CommandContext, opts *QueryOptions) error {
	ctx := cmd.Context()

	// Setup history file (project-local, next to the run ledger)
	historyFile := filepath.Join(filepath.Dir(cc.Cfg.StatePath), "query_history")

	// Table names for completion come from the declared model, not discovery
	completer := newTableCompleter(cc.Engine.Model(), cc.Engine.BridgeTable())

	// Configure readline
	rl, err := readline.NewEx(&readline.Config{
		Prompt:          replPrompt,
		HistoryFile:     historyFile,
		AutoComplete:    completer,
		InterruptPrompt: "^C",
		EOFPrompt:       ".quit",
	})
	if err != nil {
		return fmt.Errorf("failed to initialize REPL: %w", err)
	}
	defer func() { _ = rl.Close() }()

	// Print welcome message
	label := cc.Cfg.Target.Path
	if cc.Cfg.Target.Type != "duckdb" {
		label = fmt.Sprintf("%s:%s", cc.Cfg.Target.Type, cc.Cfg.Target.Database)
	}
	_, _ = fmt.Fprintf(cmd.OutOrStdout(), "starbridge SQL REPL (database: %s)\n", label)
	_, _ = fmt.Fprintln(cmd.OutOrStdout(), "Type .help for commands, .quit to exit")
	_, _ = fmt.Fprintln(cmd.OutOrStdout())

	// REPL loop
	var multiLineBuffer strings.Builder
	for {
		line, err := rl.Readline()
		if errors.Is(err, readline.ErrInterrupt) {
			multiLineBuffer.Reset()
			rl.SetPrompt(replPrompt)
			continue
		}
		if errors.Is(err, io.EOF) {
			break
		}

		line = strings.TrimSpace(line)
		if line == "" {
			continue
		}

		// Handle dot-commands
		if strings.HasPrefix(line, ".") {
			if handled := handleDotCommand(ctx, cmd, cc, line, opts.Format); handled {
				if line == ".quit" || line == ".exit" {
					break
				}
				continue
			}
		}

		// Accumulate multi-line SQL until semicolon
		multiLineBuffer.WriteString(line)
		if !strings.HasSuffix(line, ";") {
			multiLineBuffer.WriteString(" ")
			rl.SetPrompt(replContinuePrompt)
			continue
		}
		rl.SetPrompt(replPrompt)

		// Execute query
		query := strings.TrimSuffix(multiLineBuffer.String(), ";")
		multiLineBuffer.Reset()

		if err := executeAndRender(ctx, cc, cmd.OutOrStdout(), query, opts.Format); err != nil {
			_, _ = fmt.Fprintf(cmd.ErrOrStderr(), "Error: %v\n", err)
		}
		_, _ = fmt.Fprintln(cmd.OutOrStdout())
	}

	return nil
}

func handleDotCommand(ctx context.Context, cmd *cobra.Command, cc *CommandContext, line, format string) bool {
	parts := strings.Fields(line)
	command := strings.ToLower(parts[0])

	switch command {
	case ".quit", ".exit":
		return true

	case ".help":
		printREPLHelp(cmd.OutOrStdout())
		return true

	case ".tables":
		if err := listWarehouseTables(ctx, cc, cmd.OutOrStdout(), format); err != nil {
			_, _ = fmt.Fprintf(cmd.ErrOrStderr(), "Error: %v\n", err)
		}
		return true

	case ".schema":
		if len(parts) < 2 {
			_, _ = fmt.Fprintln(cmd.ErrOrStderr(), "Usage: .schema <table>")
			return true
		}
		meta, err := cc.Engine.Schema(ctx, parts[1])
		if err != nil {
			_, _ = fmt.Fprintf(cmd.ErrOrStderr(), "Error: %v\n", err)
			return true
		}
		if err := renderSchema(cmd.OutOrStdout(), meta, format); err != nil {
			_, _ = fmt.Fprintf(cmd.ErrOrStderr(), "Error: %v\n", err)
		}
		return true

	case ".bridge":
		sql, err := bridge.CreateSQL(cc.Engine.Model(), cc.Engine.BridgeTable())
		if err != nil {
			_, _ = fmt.Fprintf(cmd.ErrOrStderr(), "Error: %v\n", err)
			return true
		}
		_, _ = fmt.Fprintln(cmd.OutOrStdout(), sql)
		return true

	case ".clear":
		fmt.Print("\033[H\033[2J")
		return true

	default:
		_, _ = fmt.Fprintf(cmd.ErrOrStderr(), "Unknown command: %s (type .help for commands)\n", command)
		return true
	}
}

func printREPLHelp(w io.Writer) {
	help := `
Commands:
  .help           Show this help message
  .tables         List all tables in the warehouse
  .schema <name>  Show schema for a table
  .bridge         Print the generated bridge statement
  .clear          Clear the screen
  .quit / .exit   Exit the REPL

Tips:
  - SQL statements must end with a semicolon (;)
  - Use arrow keys to navigate history
  - Tab completion works for table names
`
	_, _ = fmt.Fprintln(w, help)
}

// newTableCompleter creates a readline completer for the declared tables,
// the bridge table, and the REPL dot-commands.
func newTableCompleter(schema model.Schema, bridgeTable string) *readline.PrefixCompleter {
	var items []readline.PrefixCompleterInterface
	for _, t := range schema.Tables {
		items = append(items, readline.PcItem(t.Name))
	}
	if bridgeTable != "" {
		items = append(items, readline.PcItem(bridgeTable))
	}

	// Add dot-commands
	items = append(items,
		readline.PcItem(".help"),
		readline.PcItem(".tables"),
		readline.PcItem(".schema"),
		readline.PcItem(".bridge"),
		readline.PcItem(".clear"),
		readline.PcItem(".quit"),
		readline.PcItem(".exit"),
	)

	return readline.NewPrefixCompleter(items...)
}
