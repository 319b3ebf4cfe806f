package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"time"

	"github.com/spf13/pflag"
	"go.uber.org/zap"

	"ProductDesk/internal/catalogclient"
	"ProductDesk/internal/config"
	"ProductDesk/internal/listing"
	"ProductDesk/internal/product"
	"ProductDesk/pkg/kit"
)

const usage = `usage: catalogctl [flags] <command> [args]

commands:
  list                 show every product
  add                  create a product (--title, --price, --category required)
  edit <id>            update a product; unset fields keep their value
  delete <id>          delete a product
  categories           print the known categories

flags:
`

func main() {
	os.Exit(run(os.Args[1:], os.Stdout, os.Stderr))
}

func run(args []string, stdout, stderr io.Writer) int {
	fs := pflag.NewFlagSet("catalogctl", pflag.ContinueOnError)
	fs.SetOutput(stderr)
	fs.Usage = func() {
		fmt.Fprint(stderr, usage)
		fs.PrintDefaults()
	}

	cfgFile := fs.String("config", "", "config file (yaml, json or toml)")
	fs.String("base-url", "", "catalog base url")
	fs.String("token", "", "bearer token for write requests")
	fs.Duration("connect-timeout", 0, "connect timeout")
	fs.Duration("read-timeout", 0, "read timeout")
	fs.String("log-level", "", "debug, info, warn or error")
	quiet := fs.BoolP("quiet", "q", false, "do not print the product table")

	fs.String("title", "", "product title")
	fs.String("price", "", "product price")
	fs.String("category", "", "product category")
	fs.String("description", "", "product description")
	fs.String("image", "", "product image url")

	if err := fs.Parse(args); err != nil {
		if errors.Is(err, pflag.ErrHelp) {
			return 0
		}
		return 2
	}
	if fs.NArg() == 0 {
		fs.Usage()
		return 2
	}

	cmd := fs.Arg(0)
	if cmd == "categories" {
		for _, c := range product.Categories {
			fmt.Fprintln(stdout, c)
		}
		return 0
	}

	cfg, err := config.LoadClient(*cfgFile, fs)
	if err != nil {
		fmt.Fprintln(stderr, err)
		return 2
	}

	log := kit.NewLoggerLevel("catalogctl", cfg.LogLevel)
	defer func() { _ = log.Sync() }()

	client := catalogclient.New(catalogclient.Config{
		BaseURL:        cfg.BaseURL,
		ConnectTimeout: cfg.ConnectTimeout,
		ReadTimeout:    cfg.ReadTimeout,
		Token:          cfg.Token,
	})
	client.Log = log

	loop := listing.NewLoop()
	defer loop.Close()

	view := &console{out: stdout, errOut: stderr, quiet: *quiet}
	c := listing.NewController(client, view, loop, log)

	// covers a mutation and its reload
	ctx, cancel := context.WithTimeout(context.Background(), 3*(cfg.ConnectTimeout+cfg.ReadTimeout))
	defer cancel()

	switch cmd {
	case "list":
		return wait(ctx, stderr, log)(c.Load(ctx))

	case "add":
		return wait(ctx, stderr, log)(c.Add(ctx, draftFrom(fs, product.Product{})))

	case "edit", "delete":
		if fs.NArg() != 2 {
			fmt.Fprintf(stderr, "%s needs a product id\n", cmd)
			return 2
		}
		id := fs.Arg(1)

		// the lookup load is not shown
		view.silent = true
		if code := wait(ctx, stderr, log)(c.Load(ctx)); code != 0 {
			return code
		}
		view.silent = false

		existing, ok := c.Find(id)
		if !ok {
			fmt.Fprintf(stderr, "product %q not found\n", id)
			return 1
		}
		if cmd == "edit" {
			return wait(ctx, stderr, log)(c.Edit(ctx, existing, draftFrom(fs, existing)))
		}
		return wait(ctx, stderr, log)(c.Remove(ctx, existing))
	}

	fmt.Fprintf(stderr, "unknown command %q\n", cmd)
	fs.Usage()
	return 2
}

// draftFrom takes each field from its flag when set and from base otherwise.
func draftFrom(fs *pflag.FlagSet, base product.Product) listing.Draft {
	d := listing.Draft{
		Title:       base.Title,
		Description: base.Description,
		Category:    base.Category,
		Image:       base.Image,
	}
	if base.ID != "" {
		d.Price = fmt.Sprintf("%g", base.Price)
	}

	pick := func(name string, dst *string) {
		if f := fs.Lookup(name); f != nil && f.Changed {
			*dst = f.Value.String()
		}
	}
	pick("title", &d.Title)
	pick("price", &d.Price)
	pick("category", &d.Category)
	pick("description", &d.Description)
	pick("image", &d.Image)
	return d
}

func wait(ctx context.Context, stderr io.Writer, log *zap.Logger) func(*listing.Task, error) int {
	return func(t *listing.Task, err error) int {
		if err != nil {
			var verr *product.ValidationError
			if errors.As(err, &verr) {
				fmt.Fprintln(stderr, "error:", verr.Msg)
				return 2
			}
			fmt.Fprintln(stderr, "error:", err)
			return 1
		}

		start := time.Now()
		if err := t.Wait(ctx); err != nil {
			log.Debug("operation failed", zap.Duration("elapsed", time.Since(start)), zap.Error(err))
			return 1
		}
		return 0
	}
}
