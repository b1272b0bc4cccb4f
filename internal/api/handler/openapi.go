package handler

import (
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"net/http"

	"sigs.k8s.io/yaml"
)

// OpenAPIHandler serves the embedded OpenAPI document as JSON.
type OpenAPIHandler struct {
	doc []byte
}

// NewOpenAPIHandler converts the YAML document to JSON once, at construction.
// The document must be a mapping declaring the openapi version and paths.
func NewOpenAPIHandler(yamlSpec []byte) (*OpenAPIHandler, error) {
	doc, err := yaml.YAMLToJSON(yamlSpec)
	if err != nil {
		return nil, fmt.Errorf("converting OpenAPI document: %w", err)
	}

	var head struct {
		OpenAPI string          `json:"openapi"`
		Paths   json.RawMessage `json:"paths"`
	}
	if err := json.Unmarshal(doc, &head); err != nil {
		return nil, fmt.Errorf("reading OpenAPI document: %w", err)
	}
	if head.OpenAPI == "" {
		return nil, errors.New("OpenAPI document has no openapi version")
	}
	if len(head.Paths) == 0 {
		return nil, errors.New("OpenAPI document has no paths")
	}

	return &OpenAPIHandler{doc: doc}, nil
}

// ServeHTTP writes the converted document.
func (h *OpenAPIHandler) ServeHTTP(w http.ResponseWriter, _ *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusOK)
	if _, err := w.Write(h.doc); err != nil {
		slog.Error("failed to write OpenAPI document", "error", err)
	}
}
