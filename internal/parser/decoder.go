package parser

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"path/filepath"
	"strings"

	"github.com/vmihailenco/msgpack/v5"
	"gopkg.in/yaml.v3"

	"github.com/pid-digitizer/backend/internal/models"
)

// Decoder reads an export request in one wire format.
type Decoder interface {
	// Name returns the unique name of the decoder.
	Name() string
	// CanDecode reports whether this decoder handles the given file name or content type.
	CanDecode(filename, contentType string) bool
	// Decode fills req from r. Fields absent from the input keep their current values.
	Decode(r io.Reader, req *models.ExportRequest) error
}

func hasExt(filename string, exts ...string) bool {
	ext := strings.ToLower(filepath.Ext(filename))
	for _, e := range exts {
		if ext == e {
			return true
		}
	}
	return false
}

func mediaType(contentType string) string {
	mt, _, _ := strings.Cut(contentType, ";")
	return strings.ToLower(strings.TrimSpace(mt))
}

// JSONDecoder decodes JSON requests.
type JSONDecoder struct{}

func NewJSONDecoder() *JSONDecoder { return &JSONDecoder{} }

func (d *JSONDecoder) Name() string { return "json" }

func (d *JSONDecoder) CanDecode(filename, contentType string) bool {
	return mediaType(contentType) == "application/json" || hasExt(filename, ".json")
}

func (d *JSONDecoder) Decode(r io.Reader, req *models.ExportRequest) error {
	if err := json.NewDecoder(r).Decode(req); err != nil {
		return fmt.Errorf("decode json: %w", err)
	}
	return nil
}

// YAMLDecoder decodes YAML requests. Keys use snake_case.
type YAMLDecoder struct{}

func NewYAMLDecoder() *YAMLDecoder { return &YAMLDecoder{} }

func (d *YAMLDecoder) Name() string { return "yaml" }

func (d *YAMLDecoder) CanDecode(filename, contentType string) bool {
	switch mediaType(contentType) {
	case "application/yaml", "application/x-yaml", "text/yaml", "text/x-yaml":
		return true
	}
	return hasExt(filename, ".yaml", ".yml")
}

func (d *YAMLDecoder) Decode(r io.Reader, req *models.ExportRequest) error {
	if err := yaml.NewDecoder(r).Decode(req); err != nil {
		return fmt.Errorf("decode yaml: %w", err)
	}
	return nil
}

// MsgpackDecoder decodes MessagePack requests using the JSON field names.
type MsgpackDecoder struct{}

func NewMsgpackDecoder() *MsgpackDecoder { return &MsgpackDecoder{} }

func (d *MsgpackDecoder) Name() string { return "msgpack" }

func (d *MsgpackDecoder) CanDecode(filename, contentType string) bool {
	switch mediaType(contentType) {
	case "application/msgpack", "application/x-msgpack", "application/vnd.msgpack":
		return true
	}
	return hasExt(filename, ".msgpack", ".mpk")
}

func (d *MsgpackDecoder) Decode(r io.Reader, req *models.ExportRequest) error {
	dec := msgpack.NewDecoder(r)
	dec.SetCustomStructTag("json")
	if err := dec.Decode(req); err != nil {
		return fmt.Errorf("decode msgpack: %w", err)
	}
	return nil
}

// MarshalMsgpack encodes v with the JSON field names, matching MsgpackDecoder.
func MarshalMsgpack(v interface{}) ([]byte, error) {
	var buf bytes.Buffer
	enc := msgpack.NewEncoder(&buf)
	enc.SetCustomStructTag("json")
	if err := enc.Encode(v); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}
