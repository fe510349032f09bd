package config

import (
	"io"
	"path/filepath"
	"strings"

	"github.com/klauspost/compress/gzip"
	"github.com/klauspost/compress/zstd"
	"github.com/pierrec/lz4/v4"
)

// Compression names the codec wrapped around a config file. It is chosen by
// the outer suffix, so flow.yaml.gz is gzip-compressed YAML.
type Compression string

const (
	// CompressionNone reads and writes the file as is
	CompressionNone Compression = "none"
	// CompressionGzip handles .gz files
	CompressionGzip Compression = "gzip"
	// CompressionZstd handles .zst files
	CompressionZstd Compression = "zstd"
	// CompressionLZ4 handles .lz4 files
	CompressionLZ4 Compression = "lz4"
)

var compressionSuffixes = map[string]Compression{
	".gz":  CompressionGzip,
	".zst": CompressionZstd,
	".lz4": CompressionLZ4,
}

// splitCompression strips a compression suffix from path, returning the
// remaining path and the codec it names.
func splitCompression(path string) (string, Compression) {
	ext := strings.ToLower(filepath.Ext(path))
	if c, ok := compressionSuffixes[ext]; ok {
		return path[:len(path)-len(ext)], c
	}
	return path, CompressionNone
}

type readCloser struct {
	io.Reader
	close func() error
}

func (r readCloser) Close() error { return r.close() }

// decompress wraps r in the reader for c. Closing the result releases the
// codec but leaves r open.
func decompress(r io.Reader, c Compression) (io.ReadCloser, error) {
	switch c {
	case CompressionGzip:
		gz, err := gzip.NewReader(r)
		if err != nil {
			return nil, err
		}
		return gz, nil
	case CompressionZstd:
		dec, err := zstd.NewReader(r)
		if err != nil {
			return nil, err
		}
		return readCloser{Reader: dec, close: func() error { dec.Close(); return nil }}, nil
	case CompressionLZ4:
		return io.NopCloser(lz4.NewReader(r)), nil
	default:
		return io.NopCloser(r), nil
	}
}

type nopWriteCloser struct{ io.Writer }

func (nopWriteCloser) Close() error { return nil }

// compress wraps w in the writer for c. Close flushes the codec but leaves w
// open.
func compress(w io.Writer, c Compression) (io.WriteCloser, error) {
	switch c {
	case CompressionGzip:
		return gzip.NewWriter(w), nil
	case CompressionZstd:
		return zstd.NewWriter(w)
	case CompressionLZ4:
		return lz4.NewWriter(w), nil
	default:
		return nopWriteCloser{w}, nil
	}
}
