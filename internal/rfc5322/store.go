package rfc5322

import (
	"io"

	"github.com/moriyoshi/mailaddr/internal/bufio"
)

type ComponentType int

const (
	FieldComponent ComponentType = iota
	StragglerComponent
	BodyComponent
)

type Component struct {
	Type  ComponentType
	Field *Field
	Data  []byte
}

// Store keeps the parts of a message so that they can be edited and
// replayed to another handler.
type Store []Component

func (s *Store) HandleStraggler(b []byte) error {
	b = append([]byte(nil), b...)
	*s = append(*s, Component{Type: StragglerComponent, Data: b})
	return nil
}

func (s *Store) HandleField(f *Field) error {
	*s = append(*s, Component{Type: FieldComponent, Field: f})
	return nil
}

func (s *Store) HandleBody(r bufio.Reader) error {
	body, err := io.ReadAll(r)
	if err != nil {
		return err
	}
	*s = append(*s, Component{Type: BodyComponent, Data: body})
	return nil
}

// Prepend inserts f before everything else.
func (s *Store) Prepend(f *Field) {
	*s = append(Store{{Type: FieldComponent, Field: f}}, *s...)
}

// Fields returns the stored fields in order.
func (s Store) Fields() []*Field {
	var fs []*Field
	for _, c := range s {
		if c.Type == FieldComponent {
			fs = append(fs, c.Field)
		}
	}
	return fs
}

func (s Store) Replay(h ScannerHandler) error {
	for _, c := range s {
		switch c.Type {
		case FieldComponent:
			if err := h.HandleField(c.Field); err != nil {
				return err
			}
		case StragglerComponent:
			if err := h.HandleStraggler(c.Data); err != nil {
				return err
			}
		case BodyComponent:
			if err := h.HandleBody(bufio.NewBytesReader(c.Data)); err != nil {
				return err
			}
		}
	}
	return nil
}
