package main

import (
	"bytes"
	"crypto"
	"crypto/x509"
	"encoding/pem"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strings"

	"github.com/emersion/go-msgauth/dkim"
	"golang.org/x/sync/errgroup"

	"github.com/moriyoshi/mailaddr/normalizer"
)

type NormalizeCmd struct {
	Config         string   `name:"config" short:"c" help:"Path to the normalizer configuration file." env:"MAILADDR_CONFIG" type:"existingfile" optional:""`
	OutputDir      string   `name:"output-dir" short:"o" help:"Directory to write normalized messages to. Standard output is used when omitted." env:"MAILADDR_OUTPUT_DIR" type:"existingdir" optional:""`
	Jobs           int      `name:"jobs" short:"j" help:"Number of files processed at once." env:"MAILADDR_JOBS" default:"4"`
	MaxAddresses   int      `name:"max-addresses" help:"Maximum number of top-level addresses per header; 0 keeps the configured value." env:"MAILADDR_MAX_ADDRESSES" default:"0"`
	FillMissing    bool     `name:"fill-missing" help:"Rewrite malformed headers with placeholders." env:"MAILADDR_FILL_MISSING"`
	NoQuote        bool     `name:"no-quote" help:"Do not quote names and local-parts that need it." env:"MAILADDR_NO_QUOTE"`
	ASCIIDomains   bool     `name:"ascii-domains" help:"Convert internationalized domains to A-labels." env:"MAILADDR_ASCII_DOMAINS"`
	ContentType    bool     `name:"content-type" help:"Canonicalize Content-Type." env:"MAILADDR_CONTENT_TYPE"`
	DKIMDomain     string   `name:"dkim-domain" help:"Sign the result for this domain." env:"MAILADDR_DKIM_DOMAIN" optional:""`
	DKIMSelector   string   `name:"dkim-selector" help:"DKIM selector." env:"MAILADDR_DKIM_SELECTOR" default:"default"`
	DKIMPrivateKey string   `name:"dkim-private-key" help:"Path to the PEM encoded signing key." env:"MAILADDR_DKIM_PRIVATE_KEY" optional:""`
	DKIMPassphrase string   `name:"dkim-passphrase" help:"Passphrase for the signing key." env:"MAILADDR_DKIM_PASSPHRASE" optional:""`
	DKIMHeaders    []string `name:"dkim-headers" help:"Header fields to sign." env:"MAILADDR_DKIM_HEADERS" default:"From,To,Cc,Subject,Date,Message-ID,Content-Type,MIME-Version"`
	Files          []string `arg:"" type:"existingfile" help:"Message files."`
}

func loadSigningKey(keyFile string, passphrase string) (crypto.Signer, error) {
	b, err := os.ReadFile(keyFile)
	if err != nil {
		return nil, err
	}
	var keyPEMBlock *pem.Block
	for {
		var block *pem.Block
		block, b = pem.Decode(b)
		if block == nil {
			break
		}
		if strings.HasSuffix(block.Type, "PRIVATE KEY") {
			keyPEMBlock = block
			break
		}
	}
	if keyPEMBlock == nil {
		return nil, fmt.Errorf("no private key found in %s", keyFile)
	}
	der := keyPEMBlock.Bytes
	if passphrase != "" {
		der, err = x509.DecryptPEMBlock(keyPEMBlock, []byte(passphrase))
		if err != nil {
			return nil, err
		}
	}
	if key, err := x509.ParsePKCS8PrivateKey(der); err == nil {
		if signer, ok := key.(crypto.Signer); ok {
			return signer, nil
		}
		return nil, fmt.Errorf("unsupported key type %T in %s", key, keyFile)
	}
	if key, err := x509.ParsePKCS1PrivateKey(der); err == nil {
		return key, nil
	}
	return nil, fmt.Errorf("failed to parse private key in %s", keyFile)
}

func (cmd *NormalizeCmd) options(rc *runContext) ([]normalizer.NormalizerOptionFunc, error) {
	var options []normalizer.NormalizerOptionFunc
	if cmd.Config != "" {
		c, err := normalizer.LoadConfigFile(cmd.Config)
		if err != nil {
			return nil, err
		}
		rc.Logger.Info("configuration loaded", slog.String("path", cmd.Config))
		options = c.Options()
	}
	options = append(options, normalizer.WithLogger(rc.Logger))
	if cmd.MaxAddresses > 0 {
		options = append(options, normalizer.WithMaxAddresses(cmd.MaxAddresses))
	}
	if cmd.FillMissing {
		options = append(options, normalizer.WithFillMissing(true))
	}
	if cmd.NoQuote {
		options = append(options, normalizer.WithQuote(false))
	}
	if cmd.ASCIIDomains {
		options = append(options, normalizer.WithASCIIDomains(true))
	}
	if cmd.ContentType {
		options = append(options, normalizer.WithContentType(true))
	}
	if cmd.DKIMDomain != "" {
		if cmd.DKIMPrivateKey == "" {
			return nil, fmt.Errorf("--dkim-private-key is required for signing")
		}
		signer, err := loadSigningKey(cmd.DKIMPrivateKey, cmd.DKIMPassphrase)
		if err != nil {
			return nil, err
		}
		options = append(options, normalizer.WithDKIMSignOptions(&dkim.SignOptions{
			Domain:     cmd.DKIMDomain,
			Selector:   cmd.DKIMSelector,
			Signer:     signer,
			Hash:       crypto.SHA256,
			HeaderKeys: cmd.DKIMHeaders,
		}))
	}
	return options, nil
}

func (cmd *NormalizeCmd) Run(rc *runContext) error {
	options, err := cmd.options(rc)
	if err != nil {
		return err
	}
	n, err := normalizer.NewNormalizer(options...)
	if err != nil {
		return err
	}

	results := make([][]byte, len(cmd.Files))
	g, ctx := errgroup.WithContext(rc.Ctx)
	if cmd.Jobs > 0 {
		g.SetLimit(cmd.Jobs)
	}
	for i, path := range cmd.Files {
		g.Go(func() error {
			if err := ctx.Err(); err != nil {
				return err
			}
			logger := rc.Logger.With(slog.String("path", path))
			f, err := os.Open(path)
			if err != nil {
				return err
			}
			defer f.Close()
			var b bytes.Buffer
			report, err := n.NormalizeTo(&b, f)
			if err != nil {
				return fmt.Errorf("%s: %w", path, err)
			}
			logger.Info(
				"normalized",
				slog.Int("headers", len(report.Headers)),
				slog.Int("invalid", report.Invalid()),
				slog.Bool("signed", report.Signed),
			)
			if cmd.OutputDir != "" {
				out := filepath.Join(cmd.OutputDir, filepath.Base(path))
				if err := os.WriteFile(out, b.Bytes(), 0o644); err != nil {
					return err
				}
				logger.Debug("written", slog.String("output", out))
				return nil
			}
			results[i] = b.Bytes()
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return err
	}
	for _, r := range results {
		if _, err := rc.Stdout.Write(r); err != nil {
			return err
		}
	}
	return nil
}
