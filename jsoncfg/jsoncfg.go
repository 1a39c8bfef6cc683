// Package jsoncfg loads and saves JSON configuration files.
package jsoncfg

import (
	"bytes"
	"encoding/json"
	"fmt"
	"os"
	"time"
)

// Open reads the JSON file at path and decodes it into v.
// Unknown fields are rejected.
func Open(path string, v any) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return err
	}
	return Unmarshal(data, v)
}

// Unmarshal decodes data into v, rejecting unknown fields and trailing data.
func Unmarshal(data []byte, v any) error {
	d := json.NewDecoder(bytes.NewReader(data))
	d.DisallowUnknownFields()
	if err := d.Decode(v); err != nil {
		return err
	}
	if d.More() {
		return fmt.Errorf("unexpected data after top-level value at offset %d", d.InputOffset())
	}
	return nil
}

// Save encodes v as indented JSON and writes it to path.
func Save(path string, v any) error {
	f, err := os.OpenFile(path, os.O_WRONLY|os.O_CREATE|os.O_TRUNC, 0644)
	if err != nil {
		return err
	}

	e := json.NewEncoder(f)
	e.SetIndent("", "    ")
	if err = e.Encode(v); err != nil {
		f.Close()
		return err
	}
	return f.Close()
}

// Duration is [time.Duration] but implements [encoding.TextMarshaler] and [encoding.TextUnmarshaler].
type Duration time.Duration

// Value returns the duration as [time.Duration].
func (d Duration) Value() time.Duration {
	return time.Duration(d)
}

// MarshalText implements [encoding.TextMarshaler.MarshalText].
func (d Duration) MarshalText() ([]byte, error) {
	return []byte(time.Duration(d).String()), nil
}

// UnmarshalText implements [encoding.TextUnmarshaler.UnmarshalText].
func (d *Duration) UnmarshalText(text []byte) error {
	duration, err := time.ParseDuration(string(text))
	if err != nil {
		return err
	}
	*d = Duration(duration)
	return nil
}
