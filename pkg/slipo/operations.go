package slipo

import (
	"context"
	"net/http"
)

// TransformOptions tune a TripleGeo transformation. Zero-valued fields are
// omitted and take server-side profile defaults.
type TransformOptions struct {
	// FeatureSource names the data source provider of the input features.
	FeatureSource string `json:"featureSource,omitempty"`

	// Encoding is the character set of the input data (default UTF-8).
	Encoding string `json:"encoding,omitempty"`

	// AttrKey is the field holding the unique identifier of each entity.
	AttrKey string `json:"attrKey,omitempty"`

	// AttrName is the field holding name literals.
	AttrName string `json:"attrName,omitempty"`

	// AttrCategory is the field holding category classification literals.
	AttrCategory string `json:"attrCategory,omitempty"`

	// AttrGeometry is the geometry column of the input dataset.
	AttrGeometry string `json:"attrGeometry,omitempty"`

	// Delimiter separates attribute values in delimited input.
	Delimiter string `json:"delimiter,omitempty"`

	// Quote is the quote character for string values in delimited input.
	Quote string `json:"quote,omitempty"`

	// AttrX and AttrY hold point coordinates in delimited input.
	AttrX string `json:"attrX,omitempty"`
	AttrY string `json:"attrY,omitempty"`

	// SourceCRS and TargetCRS are EPSG codes (default EPSG:4326).
	SourceCRS string `json:"sourceCRS,omitempty"`
	TargetCRS string `json:"targetCRS,omitempty"`

	// DefaultLang is the language tag for created labels (default en).
	DefaultLang string `json:"defaultLang,omitempty"`
}

type operationRequest struct {
	Profile string     `json:"profile"`
	Inputs  []inputRef `json:"inputs"`

	// Format is the input data format for transform operations.
	Format string `json:"format,omitempty"`

	// Options carries tool-specific settings.
	Options *TransformOptions `json:"options,omitempty"`
}

// runOperation submits a toolkit operation and wraps the returned flat
// status as a Process.
func (c *Client) runOperation(ctx context.Context, op, path string, req operationRequest) (*Process, error) {
	result, err := c.call(ctx, op, http.MethodPost, path, nil, req)
	if err != nil {
		return nil, err
	}
	return decodeProcess(op, result)
}

// TransformCSV transforms a CSV file on the remote user file system into
// an RDF dataset using the named TripleGeo profile.
func (c *Client) TransformCSV(ctx context.Context, path, profile string, opts *TransformOptions) (*Process, error) {
	return c.runOperation(ctx, "TransformCSV", "api/v1/toolkit/transform", operationRequest{
		Profile: profile,
		Inputs:  normalizeInputs(PathInput(path)),
		Format:  "CSV",
		Options: opts,
	})
}

// TransformShapefile transforms a shapefile on the remote user file
// system into an RDF dataset using the named TripleGeo profile.
func (c *Client) TransformShapefile(ctx context.Context, path, profile string, opts *TransformOptions) (*Process, error) {
	return c.runOperation(ctx, "TransformShapefile", "api/v1/toolkit/transform", operationRequest{
		Profile: profile,
		Inputs:  normalizeInputs(PathInput(path)),
		Format:  "SHAPEFILE",
		Options: opts,
	})
}

// Interlink generates links between two RDF datasets with LIMES.
func (c *Client) Interlink(ctx context.Context, profile string, left, right Input) (*Process, error) {
	return c.runOperation(ctx, "Interlink", "api/v1/toolkit/interlink", operationRequest{
		Profile: profile,
		Inputs:  normalizeInputs(left, right),
	})
}

// Fuse fuses two linked RDF datasets into one with FAGI.
func (c *Client) Fuse(ctx context.Context, profile string, left, right, links Input) (*Process, error) {
	return c.runOperation(ctx, "Fuse", "api/v1/toolkit/fuse", operationRequest{
		Profile: profile,
		Inputs:  normalizeInputs(left, right, links),
	})
}

// Enrich enriches an RDF dataset with DEER.
func (c *Client) Enrich(ctx context.Context, profile string, source Input) (*Process, error) {
	return c.runOperation(ctx, "Enrich", "api/v1/toolkit/enrich", operationRequest{
		Profile: profile,
		Inputs:  normalizeInputs(source),
	})
}

// Export exports an RDF dataset back to a tabular format with reverse
// TripleGeo.
func (c *Client) Export(ctx context.Context, profile string, source Input) (*Process, error) {
	return c.runOperation(ctx, "Export", "api/v1/toolkit/export", operationRequest{
		Profile: profile,
		Inputs:  normalizeInputs(source),
	})
}
