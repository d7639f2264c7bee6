// Package handlers provides HTTP API handlers for eventexport.
package handlers

import (
	"context"

	"github.com/danielgtaylor/huma/v2"

	"github.com/jmylchreest/eventexport/internal/export/catalog"
)

// BundleHandler serves the bundle catalog.
type BundleHandler struct {
	catalog *catalog.Catalog
}

// NewBundleHandler creates a new bundle handler.
func NewBundleHandler(cat *catalog.Catalog) *BundleHandler {
	return &BundleHandler{catalog: cat}
}

// Register registers the bundle routes with the API.
func (h *BundleHandler) Register(api huma.API) {
	huma.Register(api, huma.Operation{
		OperationID: "listBundles",
		Method:      "GET",
		Path:        "/api/v1/bundles",
		Summary:     "List bundles",
		Description: "Returns every exportable bundle in catalog order",
		Tags:        []string{"Bundles"},
	}, h.List)

	huma.Register(api, huma.Operation{
		OperationID: "getBundle",
		Method:      "GET",
		Path:        "/api/v1/bundles/{id}",
		Summary:     "Get bundle",
		Description: "Returns a bundle descriptor by ID",
		Tags:        []string{"Bundles"},
	}, h.Get)
}

// ListBundlesInput is the input for listing bundles.
type ListBundlesInput struct {
	Category string `query:"category" doc:"Only return bundles of this category"`
}

// ListBundlesOutput is the output for listing bundles.
type ListBundlesOutput struct {
	Body struct {
		Bundles []catalog.BundleDescriptor `json:"bundles"`
	}
}

// List returns the catalog, optionally filtered by category.
func (h *BundleHandler) List(ctx context.Context, input *ListBundlesInput) (*ListBundlesOutput, error) {
	out := &ListBundlesOutput{}
	out.Body.Bundles = make([]catalog.BundleDescriptor, 0, len(h.catalog.All()))
	for _, b := range h.catalog.All() {
		if input.Category != "" && b.Category != input.Category {
			continue
		}
		out.Body.Bundles = append(out.Body.Bundles, b)
	}
	return out, nil
}

// GetBundleInput is the input for getting a bundle.
type GetBundleInput struct {
	ID string `path:"id" doc:"Bundle ID"`
}

// GetBundleOutput is the output for getting a bundle.
type GetBundleOutput struct {
	Body catalog.BundleDescriptor
}

// Get returns one bundle descriptor.
func (h *BundleHandler) Get(ctx context.Context, input *GetBundleInput) (*GetBundleOutput, error) {
	b, ok := h.catalog.Lookup(input.ID)
	if !ok {
		return nil, huma.Error404NotFound("bundle not found: " + input.ID)
	}
	return &GetBundleOutput{Body: b}, nil
}
