// Command farmcli is a terminal front-end for the marketplace: it signs in,
// lists orders with their classification, and applies the actions the
// signed-in role is permitted to take.
package main

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"os/signal"
	"path/filepath"
	"sort"
	"strings"
	"syscall"

	"github.com/spf13/pflag"
	"github.com/spf13/viper"

	"farmtoclick/internal/config"
	"farmtoclick/pkg/apiclient"
	"farmtoclick/pkg/kvstore"
	"farmtoclick/pkg/marketplace"
	"farmtoclick/pkg/session"
)

var errUsage = errors.New("usage")

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	err := run(ctx, os.Args[1:], os.Stdin, os.Stdout)
	stop()
	switch {
	case errors.Is(err, errUsage):
		if err != errUsage {
			fmt.Fprintln(os.Stderr, "farmcli:", err)
		}
		os.Exit(2)
	case err != nil:
		fmt.Fprintln(os.Stderr, "farmcli:", err)
		os.Exit(1)
	}
}

// cli holds what every command needs once flags are parsed.
type cli struct {
	cfg    config.Client
	store  *session.Store
	market *marketplace.Client
	in     *bufio.Reader
	out    io.Writer
}

func run(ctx context.Context, args []string, in io.Reader, out io.Writer) error {
	if len(args) == 0 || args[0] == "help" || args[0] == "-h" || args[0] == "--help" {
		printUsage(out)
		if len(args) == 0 {
			return errUsage
		}
		return nil
	}
	name := args[0]
	cmd, ok := commands[name]
	if !ok {
		fmt.Fprintf(out, "unknown command %q\n\n", name)
		printUsage(out)
		return errUsage
	}

	fs := pflag.NewFlagSet("farmcli "+name, pflag.ContinueOnError)
	fs.SetOutput(out)
	v := viper.New()
	bindGlobalFlags(fs, v)
	act := cmd.setup(fs)
	if err := fs.Parse(args[1:]); err != nil {
		if errors.Is(err, pflag.ErrHelp) {
			return nil
		}
		return errUsage
	}

	cfg := config.LoadClient(v)
	storage, closeStorage, err := openStorage(ctx, cfg)
	if err != nil {
		return err
	}
	defer closeStorage()

	api, err := apiclient.New(apiclient.Config{BaseURL: cfg.APIURL, Timeout: cfg.Timeout})
	if err != nil {
		return err
	}
	c := &cli{
		cfg:    cfg,
		store:  session.New(api, storage),
		market: marketplace.New(api),
		in:     bufio.NewReader(in),
		out:    out,
	}
	c.store.Restore(ctx)

	err = act(ctx, c, fs.Args())
	if apiclient.IsUnauthorized(err) && !c.store.Authenticated() {
		return fmt.Errorf("%w (session ended, run farmcli login)", err)
	}
	return err
}

func bindGlobalFlags(fs *pflag.FlagSet, v *viper.Viper) {
	fs.String("api-url", "", "backend base URL, e.g. http://localhost:8080/api (env FARM_API_URL)")
	fs.Duration("timeout", 0, "per-request timeout (env FARM_TIMEOUT)")
	fs.String("session-db", "", "SQLite file holding the session (env FARM_SESSION_DB)")
	fs.String("redis-url", "", "keep the session in Redis instead (env FARM_REDIS_URL)")

	_ = v.BindPFlag("FARM_API_URL", fs.Lookup("api-url"))
	_ = v.BindPFlag("FARM_TIMEOUT", fs.Lookup("timeout"))
	_ = v.BindPFlag("FARM_SESSION_DB", fs.Lookup("session-db"))
	_ = v.BindPFlag("FARM_REDIS_URL", fs.Lookup("redis-url"))
}

// openStorage picks Redis when a URL is configured and the SQLite file
// otherwise.
func openStorage(ctx context.Context, cfg config.Client) (kvstore.Store, func(), error) {
	if cfg.RedisURL != "" {
		r, err := kvstore.DialRedis(ctx, cfg.RedisURL, cfg.RedisPrefix)
		if err != nil {
			return nil, nil, err
		}
		return r, func() { _ = r.Close() }, nil
	}
	if dir := filepath.Dir(cfg.SessionDB); dir != "" {
		if err := os.MkdirAll(dir, 0o700); err != nil {
			return nil, nil, fmt.Errorf("failed to create session dir: %w", err)
		}
	}
	s, err := kvstore.OpenSQLite(cfg.SessionDB)
	if err != nil {
		return nil, nil, err
	}
	return s, func() { _ = s.Close() }, nil
}

func printUsage(out io.Writer) {
	fmt.Fprintln(out, "Usage: farmcli <command> [flags]")
	fmt.Fprintln(out)
	fmt.Fprintln(out, "Commands:")
	names := make([]string, 0, len(commands))
	for name := range commands {
		names = append(names, name)
	}
	sort.Strings(names)
	for _, name := range names {
		fmt.Fprintf(out, "  %-10s %s\n", name, commands[name].summary)
	}
	fmt.Fprintln(out)
	fmt.Fprintln(out, "Run farmcli <command> --help for its flags.")
}

// prompt asks for one line on the CLI's input.
func (c *cli) prompt(label string) (string, error) {
	fmt.Fprint(c.out, label)
	line, err := c.in.ReadString('\n')
	if err != nil && !(errors.Is(err, io.EOF) && line != "") {
		return "", fmt.Errorf("read input: %w", err)
	}
	return strings.TrimSpace(line), nil
}

func (c *cli) identity() (*session.Identity, error) {
	id := c.store.Identity()
	if id == nil {
		return nil, errors.New("not signed in, run farmcli login")
	}
	return id, nil
}
