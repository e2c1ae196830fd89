package main

import (
	"context"
	"io"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/alecthomas/kong"
	"github.com/lmittmann/tint"
	"github.com/mattn/go-colorable"
	"github.com/mattn/go-isatty"
)

type CLI struct {
	LogLevel slog.Level `name:"log-level" help:"Log level." env:"MAILADDR_LOG_LEVEL" default:"WARN" enum:"DEBUG,INFO,WARN,ERROR"`

	Parse           ParseCmd           `cmd:"" help:"Parse address header values."`
	Format          FormatCmd          `cmd:"" help:"Parse address header values and write them back in canonical form."`
	ContentType     ContentTypeCmd     `cmd:"" name:"content-type" help:"Parse a Content-Type value."`
	IsAddressHeader IsAddressHeaderCmd `cmd:"" name:"is-address-header" help:"Tell whether header names carry addresses."`
	Normalize       NormalizeCmd       `cmd:"" help:"Normalize the address headers of message files."`
}

// runContext is passed to every command's Run method.
type runContext struct {
	Ctx    context.Context
	Logger *slog.Logger
	Stdin  io.Reader
	Stdout io.Writer
}

func (CLI *CLI) initLogger(*kong.Context) *slog.Logger {
	var handler slog.Handler
	if isatty.IsTerminal(os.Stdout.Fd()) {
		handler = tint.NewHandler(colorable.NewColorable(os.Stderr), &tint.Options{Level: CLI.LogLevel})
	} else {
		handler = slog.NewJSONHandler(os.Stderr, &slog.HandlerOptions{Level: CLI.LogLevel})
	}
	return slog.New(handler)
}

func main() {
	ctx, cancel := signal.NotifyContext(context.Background(), syscall.SIGTERM, syscall.SIGINT)
	defer cancel()
	var CLI CLI
	kongCtx := kong.Parse(
		&CLI,
		kong.Name("mailaddr"),
		kong.Description("Lenient RFC 822 address header parser and formatter."),
		kong.UsageOnError(),
	)
	logger := CLI.initLogger(kongCtx)
	err := kongCtx.Run(&runContext{
		Ctx:    ctx,
		Logger: logger,
		Stdin:  os.Stdin,
		Stdout: os.Stdout,
	})
	kongCtx.FatalIfErrorf(err)
}
