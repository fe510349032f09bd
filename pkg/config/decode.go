package config

import (
	"io"
	"os"

	"github.com/go-viper/mapstructure/v2"

	"github.com/ajitpratap0/hablo/pkg/errors"
)

// Decode copies the resolved tree into target, which must be a pointer.
// Struct fields match their mapstructure tag, or their name ignoring case.
// Strings such as "30s" decode into time.Duration fields.
func (t *Tree) Decode(target any) error {
	dec, err := mapstructure.NewDecoder(&mapstructure.DecoderConfig{
		Result:           target,
		WeaklyTypedInput: true,
		DecodeHook: mapstructure.ComposeDecodeHookFunc(
			mapstructure.StringToTimeDurationHookFunc(),
			mapstructure.StringToSliceHookFunc(","),
		),
	})
	if err != nil {
		return errors.Wrap(err, errors.ErrorTypeInternal, "failed to build decoder")
	}
	if err := dec.Decode(t.Native()); err != nil {
		return errors.Wrap(err, errors.ErrorTypeValidation, "failed to decode configuration")
	}
	return nil
}

// Save writes the tree to path in the format named by its suffix, compressed
// when the suffix asks for it. raw keeps ${name} placeholders so the file
// can be loaded again as a template.
func (t *Tree) Save(path string, raw bool) error {
	format, err := formatForPath(path)
	if err != nil {
		return err
	}
	out, err := t.Dump(format, raw)
	if err != nil {
		return err
	}
	f, err := os.OpenFile(path, os.O_CREATE|os.O_TRUNC|os.O_WRONLY, 0o600) //nolint:gosec // G304: path is chosen by the caller
	if err != nil {
		return errors.Wrap(err, errors.ErrorTypeFile, "failed to write config file").
			WithDetail("path", path)
	}
	if err := writeCompressed(f, path, out+"\n"); err != nil {
		_ = f.Close()
		return err
	}
	if err := f.Close(); err != nil {
		return errors.Wrap(err, errors.ErrorTypeFile, "failed to write config file").
			WithDetail("path", path)
	}
	return nil
}

func writeCompressed(w io.Writer, path, content string) error {
	_, codec := splitCompression(path)
	cw, err := compress(w, codec)
	if err != nil {
		return errors.Wrap(err, errors.ErrorTypeInternal, "failed to build compressor").
			WithDetail("compression", string(codec))
	}
	if _, err := io.WriteString(cw, content); err != nil {
		_ = cw.Close()
		return errors.Wrap(err, errors.ErrorTypeFile, "failed to write config file").
			WithDetail("path", path)
	}
	if err := cw.Close(); err != nil {
		return errors.Wrap(err, errors.ErrorTypeFile, "failed to write config file").
			WithDetail("path", path)
	}
	return nil
}
