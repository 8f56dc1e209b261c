// Package jsonld validates that a credential's JSON-LD contexts are
// resolvable and the document expands cleanly. This is a shape check layered
// on top of signature verification, not part of the signing byte contract.
package jsonld

import (
	"fmt"

	"github.com/piprate/json-gold/ld"
)

// defaultDocumentLoader is a shared caching loader to prevent repeated
// fetches of remote contexts across calls.
var defaultDocumentLoader ld.DocumentLoader

func init() {
	innerLoader := ld.NewDefaultDocumentLoader(nil)
	defaultDocumentLoader = ld.NewCachingDocumentLoader(innerLoader)
}

// ValidateDocument expands the document against its declared contexts and
// fails if any context cannot be loaded or any term fails to expand.
func ValidateDocument(doc map[string]interface{}) error {
	if doc == nil {
		return fmt.Errorf("failed to validate JSON-LD document: document is nil")
	}
	if _, ok := doc["@context"]; !ok {
		return fmt.Errorf("failed to validate JSON-LD document: missing @context")
	}

	processor := ld.NewJsonLdProcessor()
	options := ld.NewJsonLdOptions("")
	options.DocumentLoader = defaultDocumentLoader

	expanded, err := processor.Expand(doc, options)
	if err != nil {
		return fmt.Errorf("failed to expand JSON-LD document: %w", err)
	}
	if len(expanded) == 0 {
		return fmt.Errorf("failed to validate JSON-LD document: document expands to nothing")
	}

	return nil
}
