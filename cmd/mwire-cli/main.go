package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/chzyer/readline"

	"github.com/pior/mwire"
	"github.com/pior/mwire/wire"
)

func main() {
	var (
		configPath = flag.String("config", "", "YAML connection profile")
		host       = flag.String("host", mwire.DefaultHost, "gateway host")
		port       = flag.Int("port", mwire.DefaultPort, "gateway port")
		timeout    = flag.Duration("timeout", mwire.DefaultTimeout, "connect and round trip timeout")
		debug      = flag.Bool("debug", false, "log connection events to stderr")
	)
	flag.Parse()

	p := defaultProfile()
	if *configPath != "" {
		var err error
		if p, err = loadProfile(*configPath); err != nil {
			fmt.Fprintln(os.Stderr, err)
			os.Exit(1)
		}
	}

	// Flags given explicitly win over the profile.
	flag.Visit(func(f *flag.Flag) {
		switch f.Name {
		case "host":
			p.Host = *host
		case "port":
			p.Port = *port
		case "timeout":
			p.Timeout = *timeout
		case "debug":
			p.Debug = *debug
		}
	})

	logger, err := p.logger()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to create logger: %v\n", err)
		os.Exit(1)
	}
	defer logger.Sync()

	client, err := mwire.NewClient(p.clientConfig(logger))
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to create client: %v\n", err)
		os.Exit(1)
	}
	defer client.Close()

	rl, err := readline.NewEx(&readline.Config{
		Prompt:          "mwire> ",
		InterruptPrompt: "^C",
		EOFPrompt:       "quit",
	})
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to create readline: %v\n", err)
		os.Exit(1)
	}
	defer rl.Close()

	out := rl.Stdout()
	fmt.Fprintf(out, "M/Wire CLI - %s\n", client.Addr())
	fmt.Fprintln(out, "Type 'help' for available commands.")

	for {
		line, err := rl.Readline()
		if err != nil {
			if errors.Is(err, readline.ErrInterrupt) {
				continue
			}
			return
		}

		if quit := execute(context.Background(), client, out, line); quit {
			fmt.Fprintln(out, "Goodbye!")
			return
		}
	}
}

// execute runs one input line. It returns true when the user asked to quit.
func execute(ctx context.Context, client *mwire.Client, out io.Writer, line string) bool {
	line = strings.TrimSpace(line)
	if line == "" {
		return false
	}

	command, rest, _ := strings.Cut(line, " ")
	command = strings.ToLower(command)
	rest = strings.TrimSpace(rest)

	start := time.Now()
	var err error

	switch command {
	case "quit", "exit":
		return true

	case "help":
		printHelp(out)
		return false

	case "stats":
		printStats(out, client.Stats())
		return false

	case "ping":
		var ok bool
		if ok, err = client.Ping(ctx); err == nil {
			fmt.Fprintln(out, ok)
		}

	case "halt":
		if _, err = client.Halt(ctx); err == nil {
			fmt.Fprintln(out, "halt sent")
		}

	case "get", "set", "kill", "exists", "incr", "decr",
		"next", "prev", "previous", "query", "queryget", "subs", "subtree":
		err = addressed(ctx, client, out, command, rest)

	default:
		fmt.Fprintf(out, "Unknown command: %s. Type 'help' for available commands.\n", command)
		return false
	}

	if err != nil {
		fmt.Fprintf(out, "Error: %v (took %v)\n", err, time.Since(start))
	}
	return false
}

func addressed(ctx context.Context, client *mwire.Client, out io.Writer, command, rest string) error {
	addrText, arg := splitAddress(rest)
	if addrText == "" {
		return fmt.Errorf("usage: %s <address>", command)
	}
	addr, err := wire.ParseAddress(addrText)
	if err != nil {
		return err
	}

	switch command {
	case "get":
		value, err := client.Get(ctx, addr)
		if err != nil {
			return err
		}
		printValue(out, value)

	case "set":
		ok, err := client.Set(ctx, addr, []byte(arg))
		if err != nil {
			return err
		}
		fmt.Fprintln(out, ok)

	case "kill":
		ok, err := client.Kill(ctx, addr)
		if err != nil {
			return err
		}
		fmt.Fprintln(out, ok)

	case "exists":
		e, err := client.Exists(ctx, addr)
		if err != nil {
			return err
		}
		fmt.Fprintf(out, "%d (value=%t descendants=%t)\n", e, e.HasValue(), e.HasDescendants())

	case "incr", "decr":
		amount := int64(1)
		if arg != "" {
			if amount, err = strconv.ParseInt(arg, 10, 64); err != nil {
				return fmt.Errorf("invalid amount %q", arg)
			}
		}
		var n int64
		if command == "incr" {
			n, err = client.IncrementBy(ctx, addr, amount)
		} else {
			n, err = client.DecrementBy(ctx, addr, amount)
		}
		if err != nil {
			return err
		}
		fmt.Fprintln(out, n)

	case "next", "prev", "previous", "query":
		var (
			text string
			ok   bool
		)
		switch command {
		case "next":
			text, ok, err = client.Next(ctx, addr)
		case "query":
			text, ok, err = client.Query(ctx, addr)
		default:
			text, ok, err = client.Previous(ctx, addr)
		}
		if err != nil {
			return err
		}
		if !ok {
			fmt.Fprintln(out, "(nil)")
			return nil
		}
		fmt.Fprintln(out, text)

	case "queryget":
		result, err := client.QueryGet(ctx, addr)
		if err != nil {
			return err
		}
		if !result.Found {
			fmt.Fprintln(out, "(nil)")
			return nil
		}
		fmt.Fprintf(out, "%s = ", result.Address)
		printValue(out, result.Value)

	case "subs", "subtree":
		var items []mwire.SubValue
		if command == "subs" {
			items, err = client.GetAllSubs(ctx, addr)
		} else {
			items, err = client.GetSubtree(ctx, addr)
		}
		if err != nil {
			return err
		}
		if len(items) == 0 {
			fmt.Fprintln(out, "(empty)")
		}
		for _, item := range items {
			sub := string(item.Subscript)
			if item.Subscript == nil {
				sub = "(nil)"
			}
			fmt.Fprintf(out, "%s = ", sub)
			printValue(out, item.Value)
		}
	}
	return nil
}

// splitAddress splits the address from the rest of the input. Spaces inside
// quoted subscripts belong to the address.
func splitAddress(input string) (string, string) {
	quoted := false
	for i := 0; i < len(input); i++ {
		switch input[i] {
		case '"':
			quoted = !quoted
		case ' ':
			if !quoted {
				return input[:i], strings.TrimSpace(input[i+1:])
			}
		}
	}
	return input, ""
}

func printValue(out io.Writer, value []byte) {
	switch {
	case value == nil:
		fmt.Fprintln(out, "(nil)")
	case len(value) == 0:
		fmt.Fprintln(out, `""`)
	default:
		fmt.Fprintf(out, "%q\n", value)
	}
}

func printStats(out io.Writer, stats mwire.ClientStats) {
	fmt.Fprintf(out, "Gets:         %d (hits %d)\n", stats.Gets, stats.GetHits)
	fmt.Fprintf(out, "Sets:         %d\n", stats.Sets)
	fmt.Fprintf(out, "Kills:        %d\n", stats.Kills)
	fmt.Fprintf(out, "Exists:       %d\n", stats.Exists)
	fmt.Fprintf(out, "Increments:   %d\n", stats.Increments)
	fmt.Fprintf(out, "Traversals:   %d\n", stats.Traversals)
	fmt.Fprintf(out, "Enumerations: %d\n", stats.Enumerations)
	fmt.Fprintf(out, "Pings:        %d\n", stats.Pings)
	fmt.Fprintf(out, "Connects:     %d\n", stats.Connects)
	fmt.Fprintf(out, "Disconnects:  %d\n", stats.Disconnects)
	fmt.Fprintf(out, "Errors:       %d\n", stats.Errors)
}

func printHelp(out io.Writer) {
	fmt.Fprintln(out, "Addresses use the wire form: root or root[1,\"text\"]")
	fmt.Fprintln(out, "Commands:")
	fmt.Fprintln(out, "  get <addr>            - Get the value of a node")
	fmt.Fprintln(out, "  set <addr> <value>    - Set the value of a node (rest of the line)")
	fmt.Fprintln(out, "  kill <addr>           - Delete a node and its descendants")
	fmt.Fprintln(out, "  exists <addr>         - Show the existence code (0, 1, 10, 11)")
	fmt.Fprintln(out, "  incr <addr> [n]       - Increment a node")
	fmt.Fprintln(out, "  decr <addr> [n]       - Decrement a node")
	fmt.Fprintln(out, "  next <addr>           - Next sibling subscript (use \"\" to start)")
	fmt.Fprintln(out, "  prev <addr>           - Previous sibling subscript")
	fmt.Fprintln(out, "  query <addr>          - Next node holding a value")
	fmt.Fprintln(out, "  queryget <addr>       - Next node holding a value, with its value")
	fmt.Fprintln(out, "  subs <addr>           - Children with their values")
	fmt.Fprintln(out, "  subtree <addr>        - Node and descendants holding a value")
	fmt.Fprintln(out, "  ping                  - Ping the gateway")
	fmt.Fprintln(out, "  halt                  - Stop the gateway")
	fmt.Fprintln(out, "  stats                 - Show client statistics")
	fmt.Fprintln(out, "  quit                  - Exit the CLI")
}
