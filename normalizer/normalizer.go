// Package normalizer rewrites the address headers of a message into their
// canonical form.
//
// Every address header (From, To, Cc and the others reported by
// address.IsAddressHeader, plus any configured extra headers) is parsed
// leniently and written back folded at 78 columns. Rewrite rules can map
// addresses to other addresses on the way, Content-Type can be
// canonicalized too, and the result can be re-signed with DKIM.
package normalizer

import (
	"bytes"
	"fmt"
	"io"
	"log/slog"
	"strings"

	"github.com/emersion/go-msgauth/dkim"
	"golang.org/x/net/idna"

	"github.com/moriyoshi/mailaddr/address"
	"github.com/moriyoshi/mailaddr/contenttype"
	"github.com/moriyoshi/mailaddr/internal/bufio"
	"github.com/moriyoshi/mailaddr/internal/logging"
	"github.com/moriyoshi/mailaddr/internal/rfc5322"
)

const (
	dkimSignatureHeader = "DKIM-Signature"
	contentTypeHeader   = "Content-Type"
	defaultLineLength   = 78
)

var folding = []byte{'\r', '\n', ' '}

// HeaderReport describes what happened to one address header.
type HeaderReport struct {
	Name string `json:"name" yaml:"name"`
	// Addresses is the number of top-level addresses found.
	Addresses int `json:"addresses" yaml:"addresses"`
	Invalid   int `json:"invalid" yaml:"invalid"`
	Rewritten int `json:"rewritten" yaml:"rewritten"`
	// Kept is set when the header was left as it was.
	Kept bool `json:"kept" yaml:"kept"`
}

type Report struct {
	Headers []HeaderReport `json:"headers" yaml:"headers"`
	Signed  bool           `json:"signed" yaml:"signed"`
}

// Invalid returns the number of malformed entries over all headers.
func (r *Report) Invalid() int {
	n := 0
	for _, h := range r.Headers {
		n += h.Invalid
	}
	return n
}

type Normalizer struct {
	Rules           RewriteRules
	logger          *slog.Logger
	parser          *address.AddressParser
	renderer        *address.AddressRenderer
	extraHeaders    []string
	contentType     bool
	asciiDomains    bool
	dkimSignOptions *dkim.SignOptions
}

type NormalizerOptionFunc func(*Normalizer) (*Normalizer, error)

func WithLogger(logger *slog.Logger) NormalizerOptionFunc {
	return func(n *Normalizer) (*Normalizer, error) {
		n.logger = logging.OrDiscard(logger)
		return n, nil
	}
}

// WithMaxAddresses bounds the number of top-level addresses kept per
// header.
func WithMaxAddresses(limit int) NormalizerOptionFunc {
	return func(n *Normalizer) (*Normalizer, error) {
		if limit < 1 {
			return nil, fmt.Errorf("max addresses must be positive, got %d", limit)
		}
		n.parser.MaxAddresses = limit
		return n, nil
	}
}

// WithFillMissing makes headers with malformed addresses be rewritten
// with placeholders. Without it such headers are left untouched.
func WithFillMissing(enabled bool) NormalizerOptionFunc {
	return func(n *Normalizer) (*Normalizer, error) {
		n.parser.FillMissing = enabled
		return n, nil
	}
}

// WithQuote controls quoting of display names and local-parts that would
// not parse back unchanged. It is on by default; turning it off emits the
// plain format, which may read back as different addresses.
func WithQuote(enabled bool) NormalizerOptionFunc {
	return func(n *Normalizer) (*Normalizer, error) {
		n.renderer.Quote = enabled
		return n, nil
	}
}

// WithASCIIDomains converts internationalized domains to A-labels.
func WithASCIIDomains(enabled bool) NormalizerOptionFunc {
	return func(n *Normalizer) (*Normalizer, error) {
		n.asciiDomains = enabled
		return n, nil
	}
}

// WithExtraHeaders treats the named headers as address headers as well.
func WithExtraHeaders(names ...string) NormalizerOptionFunc {
	return func(n *Normalizer) (*Normalizer, error) {
		n.extraHeaders = append(n.extraHeaders, names...)
		return n, nil
	}
}

// WithContentType canonicalizes the Content-Type header.
func WithContentType(enabled bool) NormalizerOptionFunc {
	return func(n *Normalizer) (*Normalizer, error) {
		n.contentType = enabled
		return n, nil
	}
}

func WithRewriteRules(rules RewriteRules) NormalizerOptionFunc {
	return func(n *Normalizer) (*Normalizer, error) {
		n.Rules = append(n.Rules, rules...)
		return n, nil
	}
}

// WithDKIMSignOptions signs the normalized message. Existing
// DKIM-Signature headers are removed since they no longer verify.
func WithDKIMSignOptions(options *dkim.SignOptions) NormalizerOptionFunc {
	return func(n *Normalizer) (*Normalizer, error) {
		n.dkimSignOptions = options
		return n, nil
	}
}

func NewNormalizer(options ...NormalizerOptionFunc) (*Normalizer, error) {
	n := &Normalizer{
		logger: logging.Discard(),
		parser: &address.AddressParser{MaxAddresses: address.DefaultMaxAddresses},
		renderer: &address.AddressRenderer{
			Wrap:    folding,
			WrapLen: defaultLineLength,
			Quote:   true,
		},
	}
	for _, option := range options {
		var err error
		n, err = option(n)
		if err != nil {
			return nil, err
		}
	}
	n.logger.Info(
		"normalizer created",
		slog.Int("rules", len(n.Rules)),
		slog.Int("max_addresses", n.parser.MaxAddresses),
		slog.Bool("fill_missing", n.parser.FillMissing),
		slog.Bool("dkim", n.dkimSignOptions != nil),
	)
	for i, rule := range n.Rules {
		n.logger.Debug("rule", slog.Int("precedence", i), slog.String("match", rule.R.String()), slog.String("substitution", rule.S))
	}
	return n, nil
}

func (n *Normalizer) isAddressHeader(name string) bool {
	if address.IsAddressHeader(name) {
		return true
	}
	for _, h := range n.extraHeaders {
		if strings.EqualFold(h, name) {
			return true
		}
	}
	return false
}

// Normalize returns the normalized form of message.
func (n *Normalizer) Normalize(message []byte) ([]byte, *Report, error) {
	var b bytes.Buffer
	b.Grow(len(message))
	report, err := n.NormalizeTo(&b, bufio.NewBytesReader(message))
	if err != nil {
		return nil, nil, err
	}
	return b.Bytes(), report, nil
}

// NormalizeTo reads a message from r and writes the normalized form to w.
// Lines are written with CRLF endings.
func (n *Normalizer) NormalizeTo(w io.Writer, r io.Reader) (*Report, error) {
	report := &Report{}
	var s rfc5322.Store
	err := rfc5322.Scan(
		bufio.NewReader(r),
		rfc5322.ScannerHandlerFromFunctions(
			s.HandleStraggler,
			func(f *rfc5322.Field) error {
				if n.dkimSignOptions != nil && f.Is(dkimSignatureHeader) {
					n.logger.Debug("dropping stale signature")
					return nil
				}
				return s.HandleField(n.normalizeField(f, report))
			},
			s.HandleBody,
		),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to read message: %w", err)
	}
	if n.dkimSignOptions != nil {
		if err := n.sign(&s); err != nil {
			return nil, err
		}
		report.Signed = true
	}
	bl := &rfc5322.Builder{Writer: w}
	if err := s.Replay(bl); err != nil {
		return nil, fmt.Errorf("failed to write message: %w", err)
	}
	return report, nil
}

func (n *Normalizer) normalizeField(f *rfc5322.Field, report *Report) *rfc5322.Field {
	if !f.Valid() {
		return f
	}
	name := string(f.Name())
	switch {
	case n.isAddressHeader(name):
		nf, hr := n.normalizeAddressField(name, f)
		report.Headers = append(report.Headers, hr)
		return nf
	case n.contentType && strings.EqualFold(name, contentTypeHeader):
		return n.normalizeContentType(name, f)
	}
	return f
}

func (n *Normalizer) normalizeAddressField(name string, f *rfc5322.Field) (*rfc5322.Field, HeaderReport) {
	logger := n.logger.With(slog.String("header", name))
	value := f.Value()
	l := n.parser.ParseBytes(value)
	hr := HeaderReport{Name: name, Addresses: l.TopLevelCount()}
	if l == nil {
		hr.Kept = true
		return f, hr
	}

	for i := range l {
		a := &l[i]
		if a.InvalidSyntax {
			hr.Invalid++
			logger.Warn(
				"invalid address",
				slog.String("kind", a.Kind.String()),
				slog.String("name", a.Name),
				slog.String("mailbox", a.Mailbox),
				slog.String("domain", a.Domain),
			)
			continue
		}
		if a.Kind != address.Mailbox {
			continue
		}
		if n.rewrite(logger, a) {
			hr.Rewritten++
		}
		if n.asciiDomains {
			n.toASCII(logger, a)
		}
	}

	if hr.Invalid > 0 && !n.parser.FillMissing {
		hr.Kept = true
		return f, hr
	}

	offset := len(name) + 2
	b := make([]byte, offset, offset+len(value))
	b = n.renderer.AppendList(b, l)
	return rfc5322.NewField(name, b[offset:]), hr
}

// rewrite applies the first matching rule to a.
func (n *Normalizer) rewrite(logger *slog.Logger, a *address.Address) bool {
	old := a.Addr()
	for i, rule := range n.Rules {
		addr, ok := rule.Rewrite(old)
		if !ok {
			continue
		}
		logger := logger.With(slog.Int("precedence", i), slog.String("old_address", old), slog.String("new_address", addr))
		nl := address.ParseList([]byte(addr), 1, false)
		if len(nl) != 1 || nl[0].Kind != address.Mailbox || nl[0].InvalidSyntax || nl[0].Name != "" || nl[0].Route != "" {
			logger.Warn("substitution is not a plain address; ignored")
			return false
		}
		logger.Info("rewritten")
		a.Mailbox = nl[0].Mailbox
		a.Domain = nl[0].Domain
		return true
	}
	return false
}

func isASCII(s string) bool {
	for i := 0; i < len(s); i++ {
		if s[i] >= 0x80 {
			return false
		}
	}
	return true
}

func (n *Normalizer) toASCII(logger *slog.Logger, a *address.Address) {
	if isASCII(a.Domain) || strings.HasPrefix(a.Domain, "[") {
		return
	}
	d, err := idna.Lookup.ToASCII(a.Domain)
	if err != nil {
		logger.Warn("failed to convert domain", slog.String("domain", a.Domain), slog.Any("error", err))
		return
	}
	a.Domain = d
}

func (n *Normalizer) normalizeContentType(name string, f *rfc5322.Field) *rfc5322.Field {
	ct, err := contenttype.Parse(f.Value())
	if err != nil {
		n.logger.Warn("malformed content type; left untouched", slog.String("header", name), slog.Any("error", err))
		return f
	}
	return rfc5322.NewField(name, []byte(ct.String()))
}

func (n *Normalizer) sign(s *rfc5322.Store) error {
	var b bytes.Buffer
	if err := s.Replay(&rfc5322.Builder{Writer: &b}); err != nil {
		return err
	}
	signer, err := dkim.NewSigner(n.dkimSignOptions)
	if err != nil {
		return fmt.Errorf("failed to create signer: %w", err)
	}
	if _, err := signer.Write(b.Bytes()); err != nil {
		signer.Close()
		return fmt.Errorf("failed to sign message: %w", err)
	}
	if err := signer.Close(); err != nil {
		return fmt.Errorf("failed to sign message: %w", err)
	}
	sig := strings.TrimSuffix(signer.Signature(), "\r\n")
	name, value, _ := strings.Cut(sig, ":")
	s.Prepend(rfc5322.NewField(name, []byte(strings.TrimPrefix(value, " "))))
	return nil
}
