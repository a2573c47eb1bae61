// simwalk plays a demo walk against a running API: it creates a session,
// posts interpolated GPS samples on the progress schedule of the walk
// screen and marks the walk arrived at 100%.
package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"backend-safewalk/internal/config"
	"backend-safewalk/internal/shared/logging"
	"backend-safewalk/internal/walk"

	"github.com/spf13/pflag"
)

func main() {
	if err := run(os.Args[1:]); err != nil {
		fmt.Fprintf(os.Stderr, "error: %v\n", err)
		os.Exit(1)
	}
}

type options struct {
	apiURL   string
	token    string
	logLevel string
	sim      walk.SimOptions
}

func parseFlags(args []string, env config.ClientEnv) (options, error) {
	opts := options{
		apiURL:   env.APIURL,
		token:    env.Token,
		logLevel: env.LogLevel,
		sim: walk.SimOptions{
			Start: walk.DemoStart,
			End:   walk.DemoEnd,
		},
	}

	flagSet := pflag.NewFlagSet("simwalk", pflag.ContinueOnError)
	flagSet.StringVar(&opts.apiURL, "api", opts.apiURL, "API base URL")
	flagSet.StringVar(&opts.token, "token", opts.token, "bearer token to own the session")
	flagSet.StringVar(&opts.sim.UserName, "name", "Demo Walker", "walker name shown to companions")
	flagSet.Float64Var(&opts.sim.Start.Lat, "start-lat", opts.sim.Start.Lat, "start latitude")
	flagSet.Float64Var(&opts.sim.Start.Lng, "start-lng", opts.sim.Start.Lng, "start longitude")
	flagSet.Float64Var(&opts.sim.End.Lat, "end-lat", opts.sim.End.Lat, "destination latitude")
	flagSet.Float64Var(&opts.sim.End.Lng, "end-lng", opts.sim.End.Lng, "destination longitude")
	flagSet.IntVar(&opts.sim.PanicAt, "panic-at", 0, "press panic at this progress percentage (0 disables)")
	flagSet.DurationVar(&opts.sim.Interval, "tick", walk.DefaultTickInterval, "time between samples")
	flagSet.BoolVar(&opts.sim.Companion, "companion", true, "enable the live companion link")
	flagSet.StringVar(&opts.sim.AutoNotify.ContactName, "notify-name", "", "contact to notify on arrival")
	flagSet.StringVar(&opts.sim.AutoNotify.ContactValue, "notify-value", "", "phone number or email of the contact")
	flagSet.StringVar(&opts.sim.AutoNotify.ContactChannel, "notify-channel", "sms", "sms or email")
	flagSet.StringVar(&opts.logLevel, "log-level", opts.logLevel, "debug, info, warn or error")

	if err := flagSet.Parse(args); err != nil {
		return options{}, err
	}
	if rest := flagSet.Args(); len(rest) > 0 {
		return options{}, fmt.Errorf("unexpected argument: %s", rest[0])
	}
	if opts.sim.PanicAt < 0 || opts.sim.PanicAt > 100 {
		return options{}, fmt.Errorf("--panic-at must be between 0 and 100")
	}
	if opts.sim.Interval <= 0 {
		return options{}, fmt.Errorf("--tick must be positive")
	}
	opts.sim.AutoNotify.Enabled = opts.sim.AutoNotify.ContactValue != ""
	if opts.sim.Start != walk.DemoStart {
		opts.sim.Start.Label = ""
	}
	if opts.sim.End != walk.DemoEnd {
		opts.sim.End.Label = ""
	}
	return opts, nil
}

func run(args []string) error {
	var env config.ClientEnv
	if err := config.ParseEnv(&env); err != nil {
		return err
	}
	opts, err := parseFlags(args, env)
	if err != nil {
		if err == pflag.ErrHelp {
			return nil
		}
		return err
	}

	logger := logging.New(os.Stderr, opts.logLevel)
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	started := time.Now()
	created, err := walk.NewSimulator(opts.apiURL, opts.token, logger).Run(ctx, opts.sim)
	if err != nil {
		return err
	}
	fmt.Printf("walk %s finished in %s\nshare: %s\n", created.SessionID, time.Since(started).Round(time.Second), created.ShareURL)
	return nil
}
