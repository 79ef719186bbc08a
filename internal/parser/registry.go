package parser

import (
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/pid-digitizer/backend/internal/models"
)

// Registry holds all available decoders and picks one per request.
type Registry struct {
	decoders []Decoder
}

// Global registry instance
var globalRegistry = NewRegistry()

func NewRegistry() *Registry {
	return &Registry{
		decoders: []Decoder{
			NewJSONDecoder(),
			NewYAMLDecoder(),
			NewMsgpackDecoder(),
		},
	}
}

// GetGlobalRegistry returns the singleton registry.
func GetGlobalRegistry() *Registry {
	return globalRegistry
}

// Names lists the registered decoders.
func (r *Registry) Names() []string {
	names := make([]string, len(r.decoders))
	for i, d := range r.decoders {
		names[i] = d.Name()
	}
	return names
}

// FindDecoder picks the decoder for a file name or content type.
func (r *Registry) FindDecoder(filename, contentType string) (Decoder, error) {
	for _, d := range r.decoders {
		if d.CanDecode(filename, contentType) {
			return d, nil
		}
	}
	return nil, fmt.Errorf("no suitable decoder for %q (%s)", filename, contentType)
}

// GetDecoderByName returns a decoder by its name.
func (r *Registry) GetDecoderByName(name string) (Decoder, error) {
	name = strings.ToLower(name)
	for _, d := range r.decoders {
		if strings.ToLower(d.Name()) == name {
			return d, nil
		}
	}
	return nil, fmt.Errorf("decoder not found: %s", name)
}

// DecodeRequest reads one export request, starting from the given default options.
func (r *Registry) DecodeRequest(in io.Reader, filename, contentType string, defaults models.ExportOptions) (*models.ExportRequest, error) {
	d, err := r.FindDecoder(filename, contentType)
	if err != nil {
		return nil, err
	}
	req := models.NewExportRequest(defaults)
	if err := d.Decode(in, req); err != nil {
		return nil, err
	}
	return req, nil
}

// DecodeFile reads an export request from disk, choosing the decoder by extension.
func (r *Registry) DecodeFile(path string, defaults models.ExportOptions) (*models.ExportRequest, error) {
	file, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer file.Close()

	return r.DecodeRequest(file, path, "", defaults)
}

// DecodeFileAs reads an export request from disk with the named decoder,
// ignoring the file extension.
func (r *Registry) DecodeFileAs(path, format string, defaults models.ExportOptions) (*models.ExportRequest, error) {
	d, err := r.GetDecoderByName(format)
	if err != nil {
		return nil, err
	}
	file, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer file.Close()

	req := models.NewExportRequest(defaults)
	if err := d.Decode(file, req); err != nil {
		return nil, err
	}
	return req, nil
}
