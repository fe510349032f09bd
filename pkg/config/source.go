package config

import (
	stderrors "errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/ajitpratap0/hablo/pkg/errors"
	jsonpool "github.com/ajitpratap0/hablo/pkg/json"
)

// Source produces a fresh raw tree each time it is loaded.
type Source interface {
	Load() (*Node, error)
	Format() Format
	String() string
}

// FileSource reads a JSON or YAML file, chosen by suffix. A trailing .gz,
// .zst or .lz4 suffix decompresses the file first.
type FileSource struct {
	path string
}

// NewFileSource returns a source for path.
func NewFileSource(path string) *FileSource {
	return &FileSource{path: path}
}

// Path returns the file path.
func (s *FileSource) Path() string { return s.path }

// Format derives the format from the suffix: .json, .yaml or .yml, after
// any compression suffix. It is empty for any other suffix.
func (s *FileSource) Format() Format {
	f, _ := formatForPath(s.path)
	return f
}

// Compression returns the codec named by the outer suffix.
func (s *FileSource) Compression() Compression {
	_, c := splitCompression(s.path)
	return c
}

func (s *FileSource) String() string { return s.path }

// Load reads and parses the file.
func (s *FileSource) Load() (*Node, error) {
	format, err := formatForPath(s.path)
	if err != nil {
		return nil, err
	}
	f, err := os.Open(s.path) //nolint:gosec // G304: path is chosen by the caller
	if err != nil {
		return nil, errors.Wrap(err, errors.ErrorTypeFile, "failed to open config file").
			WithDetail("path", s.path)
	}
	defer f.Close()

	r, err := decompress(f, s.Compression())
	if err != nil {
		return nil, errors.Wrap(err, errors.ErrorTypeParse, "failed to decompress config file").
			WithDetail("path", s.path)
	}
	defer r.Close()
	return decode(r, format, s.path)
}

func formatForPath(path string) (Format, error) {
	path, _ = splitCompression(path)
	switch strings.ToLower(filepath.Ext(path)) {
	case ".json":
		return FormatJSON, nil
	case ".yaml", ".yml":
		return FormatYAML, nil
	default:
		return "", errors.Newf(errors.ErrorTypeUnsupportedFormat, "unsupported config file suffix %q", filepath.Ext(path)).
			WithDetail("path", path)
	}
}

// StreamSource reads a seekable stream in a declared format, rewinding to
// the start before every load.
type StreamSource struct {
	r      io.ReadSeeker
	format Format
}

// NewStreamSource returns a source over r.
func NewStreamSource(r io.ReadSeeker, format Format) *StreamSource {
	return &StreamSource{r: r, format: format}
}

// Format returns the declared format.
func (s *StreamSource) Format() Format { return s.format }

func (s *StreamSource) String() string { return string(s.format) + " stream" }

// Load rewinds and parses the stream.
func (s *StreamSource) Load() (*Node, error) {
	if s.format != FormatJSON && s.format != FormatYAML {
		return nil, errors.Newf(errors.ErrorTypeUnsupportedFormat, "unsupported stream format %q", s.format)
	}
	if _, err := s.r.Seek(0, io.SeekStart); err != nil {
		return nil, errors.Wrap(err, errors.ErrorTypeFile, "failed to rewind config stream")
	}
	return decode(s.r, s.format, s.String())
}

func decode(r io.Reader, format Format, origin string) (*Node, error) {
	var (
		n   *Node
		err error
	)
	switch format {
	case FormatJSON:
		n, err = DecodeJSON(r)
	case FormatYAML:
		n, err = DecodeYAML(r)
	default:
		return nil, errors.Newf(errors.ErrorTypeUnsupportedFormat, "unsupported format %q", format)
	}
	if err != nil {
		return nil, errors.Wrap(err, errors.ErrorTypeParse, fmt.Sprintf("failed to parse %s", format)).
			WithDetail("source", origin)
	}
	return n, nil
}

// DecodeYAML parses the first YAML document in r, keeping key order. An
// empty stream yields an empty mapping.
func DecodeYAML(r io.Reader) (*Node, error) {
	var doc yaml.Node
	if err := yaml.NewDecoder(r).Decode(&doc); err != nil {
		if stderrors.Is(err, io.EOF) {
			return NewMapping(), nil
		}
		return nil, err
	}
	n, err := fromYAML(&doc)
	if err != nil {
		return nil, err
	}
	if n.Kind == ScalarNode && n.Value == nil {
		return NewMapping(), nil
	}
	return n, nil
}

func fromYAML(y *yaml.Node) (*Node, error) {
	switch y.Kind {
	case yaml.DocumentNode:
		if len(y.Content) == 0 {
			return NewMapping(), nil
		}
		return fromYAML(y.Content[0])
	case yaml.AliasNode:
		return fromYAML(y.Alias)
	case yaml.MappingNode:
		m := NewMapping()
		for i := 0; i+1 < len(y.Content); i += 2 {
			if isMergeKey(y.Content[i]) {
				if err := mergeYAML(m, y.Content[i+1]); err != nil {
					return nil, err
				}
			}
		}
		for i := 0; i+1 < len(y.Content); i += 2 {
			if isMergeKey(y.Content[i]) {
				continue
			}
			val, err := fromYAML(y.Content[i+1])
			if err != nil {
				return nil, err
			}
			m.Set(y.Content[i].Value, val)
		}
		return m, nil
	case yaml.SequenceNode:
		s := Sequence()
		for _, c := range y.Content {
			item, err := fromYAML(c)
			if err != nil {
				return nil, err
			}
			s.Items = append(s.Items, item)
		}
		return s, nil
	case yaml.ScalarNode:
		var v any
		if err := y.Decode(&v); err != nil {
			return nil, err
		}
		return Scalar(v), nil
	default:
		return nil, fmt.Errorf("unexpected YAML node kind %d at line %d", y.Kind, y.Line)
	}
}

func isMergeKey(y *yaml.Node) bool {
	return y.Kind == yaml.ScalarNode && y.ShortTag() == "!!merge"
}

// mergeYAML copies the keys of a merged mapping into m. With a sequence of
// mappings, earlier ones win; explicit keys of m are applied afterwards.
func mergeYAML(m *Node, y *yaml.Node) error {
	if y.Kind == yaml.SequenceNode {
		for _, item := range y.Content {
			if err := mergeYAML(m, item); err != nil {
				return err
			}
		}
		return nil
	}
	src, err := fromYAML(y)
	if err != nil {
		return err
	}
	if src.Kind != MappingNode {
		return fmt.Errorf("merge key at line %d needs a mapping, got a %s", y.Line, src.Kind)
	}
	for _, k := range src.Keys {
		if _, ok := m.Field(k); !ok {
			m.Set(k, src.Fields[k])
		}
	}
	return nil
}

// DecodeJSON parses a single JSON value from r, keeping key order. Integral
// numbers become int, the rest float64.
func DecodeJSON(r io.Reader) (*Node, error) {
	dec := jsonpool.NewDecoder(r)
	n, err := readJSON(dec)
	if err != nil {
		if stderrors.Is(err, io.EOF) {
			return nil, io.ErrUnexpectedEOF
		}
		return nil, err
	}
	if _, err := dec.Token(); !stderrors.Is(err, io.EOF) {
		if err != nil {
			return nil, err
		}
		return nil, fmt.Errorf("unexpected data after top-level JSON value")
	}
	return n, nil
}

func readJSON(dec *jsonpool.Decoder) (*Node, error) {
	tok, err := dec.Token()
	if err != nil {
		return nil, err
	}
	switch v := tok.(type) {
	case jsonpool.Delim:
		switch v {
		case '{':
			m := NewMapping()
			for dec.More() {
				keyTok, err := dec.Token()
				if err != nil {
					return nil, err
				}
				key, ok := keyTok.(string)
				if !ok {
					return nil, fmt.Errorf("expected object key, got %v", keyTok)
				}
				val, err := readJSON(dec)
				if err != nil {
					return nil, err
				}
				m.Set(key, val)
			}
			if _, err := dec.Token(); err != nil {
				return nil, err
			}
			return m, nil
		case '[':
			s := Sequence()
			for dec.More() {
				item, err := readJSON(dec)
				if err != nil {
					return nil, err
				}
				s.Items = append(s.Items, item)
			}
			if _, err := dec.Token(); err != nil {
				return nil, err
			}
			return s, nil
		default:
			return nil, fmt.Errorf("unexpected delimiter %q", rune(v))
		}
	case jsonpool.Number:
		if i, err := v.Int64(); err == nil {
			return Scalar(int(i)), nil
		}
		f, err := v.Float64()
		if err != nil {
			return nil, err
		}
		return Scalar(f), nil
	case string, bool, nil:
		return Scalar(v), nil
	default:
		return nil, fmt.Errorf("unexpected JSON token %v", tok)
	}
}
