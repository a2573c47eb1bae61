// companion follows a shared walk from the terminal, printing a line each
// time the companion view changes.
package main

import (
	"context"
	"fmt"
	"io"
	"os"
	"os/signal"
	"syscall"

	"backend-safewalk/internal/companion"
	"backend-safewalk/internal/config"
	"backend-safewalk/internal/shared/logging"

	"github.com/spf13/pflag"
)

func main() {
	if err := run(os.Args[1:], os.Stdout); err != nil {
		fmt.Fprintf(os.Stderr, "error: %v\n", err)
		os.Exit(1)
	}
}

func run(args []string, out io.Writer) error {
	var env config.ClientEnv
	if err := config.ParseEnv(&env); err != nil {
		return err
	}

	apiURL := env.APIURL
	logLevel := env.LogLevel
	flagSet := pflag.NewFlagSet("companion", pflag.ContinueOnError)
	flagSet.StringVar(&apiURL, "api", apiURL, "API base URL")
	flagSet.StringVar(&logLevel, "log-level", logLevel, "debug, info, warn or error")
	flagSet.Usage = func() {
		fmt.Fprintf(os.Stderr, "Usage: companion [flags] <share-token>\n\n%s", flagSet.FlagUsages())
	}
	if err := flagSet.Parse(args); err != nil {
		if err == pflag.ErrHelp {
			return nil
		}
		return err
	}
	if flagSet.NArg() != 1 {
		flagSet.Usage()
		return companion.ErrNoShareToken
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	client := companion.NewClient(apiURL, logging.New(os.Stderr, logLevel))
	return watch(ctx, client, flagSet.Arg(0), out)
}

func watch(ctx context.Context, client *companion.Client, token string, out io.Writer) error {
	var last string
	return client.Watch(ctx, token, func(v *companion.View) {
		line := v.String()
		if line == last {
			return
		}
		last = line
		fmt.Fprintln(out, line)
	})
}
