package main

import (
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"strings"

	yaml "gopkg.in/yaml.v3"

	"github.com/moriyoshi/mailaddr/address"
	"github.com/moriyoshi/mailaddr/contenttype"
)

// values returns vs, or the whole of stdin as a single value.
func values(rc *runContext, vs []string) ([]string, error) {
	if len(vs) > 0 {
		return vs, nil
	}
	b, err := io.ReadAll(rc.Stdin)
	if err != nil {
		return nil, fmt.Errorf("failed to read standard input: %w", err)
	}
	return []string{strings.TrimRight(string(b), "\r\n")}, nil
}

type ParseCmd struct {
	MaxAddresses int      `name:"max-addresses" help:"Maximum number of top-level addresses." env:"MAILADDR_MAX_ADDRESSES" default:"100"`
	FillMissing  bool     `name:"fill-missing" help:"Use MISSING_MAILBOX / MISSING_DOMAIN for absent parts." env:"MAILADDR_FILL_MISSING"`
	Format       string   `name:"format" short:"f" help:"Output format." default:"text" enum:"text,json,yaml"`
	Values       []string `arg:"" optional:"" help:"Header values. Standard input is read when omitted."`
}

func writeText(w io.Writer, l address.List) error {
	for _, a := range l {
		var sb strings.Builder
		sb.WriteString(a.Kind.String())
		for _, kv := range [][2]string{{"name", a.Name}, {"route", a.Route}, {"mailbox", a.Mailbox}, {"domain", a.Domain}} {
			if kv[1] != "" {
				fmt.Fprintf(&sb, " %s=%q", kv[0], kv[1])
			}
		}
		if a.InvalidSyntax {
			sb.WriteString(" invalid")
		}
		sb.WriteByte('\n')
		if _, err := io.WriteString(w, sb.String()); err != nil {
			return err
		}
	}
	return nil
}

func (cmd *ParseCmd) Run(rc *runContext) error {
	vs, err := values(rc, cmd.Values)
	if err != nil {
		return err
	}
	p := &address.AddressParser{MaxAddresses: cmd.MaxAddresses, FillMissing: cmd.FillMissing}
	var ye *yaml.Encoder
	if cmd.Format == "yaml" {
		ye = yaml.NewEncoder(rc.Stdout)
		defer ye.Close()
	}
	je := json.NewEncoder(rc.Stdout)
	for _, v := range vs {
		l := p.Parse(v)
		if l.HasInvalid() {
			rc.Logger.Warn("malformed addresses", slog.String("value", v))
		}
		switch cmd.Format {
		case "json":
			if l == nil {
				l = address.List{}
			}
			err = je.Encode(l)
		case "yaml":
			err = ye.Encode(l)
		default:
			err = writeText(rc.Stdout, l)
		}
		if err != nil {
			return fmt.Errorf("failed to write result: %w", err)
		}
	}
	return nil
}

type FormatCmd struct {
	Quote  bool     `name:"quote" help:"Quote names and local-parts where needed." env:"MAILADDR_QUOTE"`
	Values []string `arg:"" optional:"" help:"Header values. Standard input is read when omitted."`
}

func (cmd *FormatCmd) Run(rc *runContext) error {
	vs, err := values(rc, cmd.Values)
	if err != nil {
		return err
	}
	r := &address.AddressRenderer{Quote: cmd.Quote}
	for _, v := range vs {
		if _, err := fmt.Fprintln(rc.Stdout, r.String(address.Parse(v))); err != nil {
			return err
		}
	}
	return nil
}

type ContentTypeCmd struct {
	Value string `arg:"" help:"Content-Type value."`
}

func (cmd *ContentTypeCmd) Run(rc *runContext) error {
	ct, err := contenttype.ParseString(cmd.Value)
	if ct == nil {
		return err
	}
	if err != nil {
		rc.Logger.Warn("broken parameters", slog.Any("error", err))
	}
	fmt.Fprintln(rc.Stdout, ct.MediaType())
	for _, p := range ct.Params {
		fmt.Fprintf(rc.Stdout, "%s=%s\n", p.Key, p.Value)
	}
	return nil
}

type IsAddressHeaderCmd struct {
	Names []string `arg:"" help:"Header names."`
}

func (cmd *IsAddressHeaderCmd) Run(rc *runContext) error {
	for _, name := range cmd.Names {
		fmt.Fprintf(rc.Stdout, "%s: %t\n", name, address.IsAddressHeader(name))
	}
	return nil
}
