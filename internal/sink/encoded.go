package sink

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"time"

	"github.com/vmihailenco/msgpack/v5"
)

// Encoding of an EncodedSink document
type Encoding string

const (
	EncodingJSON    Encoding = "json"
	EncodingMsgPack Encoding = "msgpack"
)

// Document is the encoded form of a report. Columns keeps the table order,
// every record maps column names to values and omits absent values.
type Document struct {
	RunID     string           `json:"run_id"`
	CreatedAt string           `json:"created_at"`
	Columns   []string         `json:"columns"`
	Records   []map[string]any `json:"records"`
}

// EncodedSink writes the report as a single JSON or MessagePack document
type EncodedSink struct {
	path     string
	encoding Encoding
}

// NewEncodedSink writes to path using encoding
func NewEncodedSink(path string, encoding Encoding) (*EncodedSink, error) {
	switch encoding {
	case EncodingJSON, EncodingMsgPack:
	default:
		return nil, fmt.Errorf("unsupported encoding %q", encoding)
	}
	return &EncodedSink{path: path, encoding: encoding}, nil
}

func (s *EncodedSink) Name() string {
	return string(s.encoding)
}

func (s *EncodedSink) Write(_ context.Context, r *Report) error {
	f, err := os.Create(s.path)
	if err != nil {
		return fmt.Errorf("failed to create %s report: %w", s.encoding, err)
	}

	if err := Encode(f, s.encoding, NewDocument(r)); err != nil {
		f.Close()
		return fmt.Errorf("failed to encode %s report: %w", s.encoding, err)
	}
	return f.Close()
}

func (s *EncodedSink) Close() error {
	return nil
}

// NewDocument builds the encoded form of r
func NewDocument(r *Report) Document {
	t := r.Table()

	doc := Document{
		RunID:     r.RunID.String(),
		CreatedAt: r.CreatedAt.UTC().Format(time.RFC3339),
		Columns:   t.Columns,
		Records:   make([]map[string]any, len(t.Rows)),
	}
	for i, row := range t.Rows {
		m := make(map[string]any, len(row))
		for j, v := range row {
			if v != nil {
				m[t.Columns[j]] = v
			}
		}
		doc.Records[i] = m
	}
	return doc
}

// Encode writes data to w in the given encoding. MessagePack uses the json
// struct tags so both encodings share field names.
func Encode(w io.Writer, encoding Encoding, data any) error {
	switch encoding {
	case EncodingMsgPack:
		encoder := msgpack.NewEncoder(w)
		encoder.SetCustomStructTag("json")
		return encoder.Encode(data)
	case EncodingJSON:
		encoder := json.NewEncoder(w)
		encoder.SetIndent("", "  ")
		return encoder.Encode(data)
	default:
		return fmt.Errorf("unsupported encoding %q", encoding)
	}
}
