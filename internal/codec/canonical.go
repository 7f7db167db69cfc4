// Package codec implements the canonical serialization contract and the
// multi-document manifest codec used throughout manifestlock.
//
// The canonical form of a governed object is its decoded document minus
// runtime noise: the top-level status, server-managed metadata fields, and
// any identity annotations a previous update run wrote. Canonical bytes are
// UTF-8 JSON with keys sorted at every depth and no insignificant
// whitespace, so two semantically equal documents always hash identically
// regardless of the key order in the source file. List order is preserved
// exactly; it is semantically meaningful.
package codec

import (
	"encoding/json"
	"fmt"
	"strings"

	"manifestlock/internal/domain"
)

// metadataNoise lists the metadata fields stripped before hashing. They are
// written by the API server or client tooling and carry no declarative
// intent.
var metadataNoise = []string{
	"creationTimestamp",
	"generation",
	"managedFields",
	"resourceVersion",
	"uid",
}

// CanonicalForm returns a deep copy of the document with runtime noise
// removed. The copy never contains the object's own identity annotations;
// including them would make the content hash depend on its prior value and
// never converge across repeated runs.
func CanonicalForm(doc map[string]any) map[string]any {
	out := CloneDoc(doc)
	delete(out, "status")

	meta, _ := out["metadata"].(map[string]any)
	if meta == nil {
		return out
	}
	for _, field := range metadataNoise {
		delete(meta, field)
	}
	if ann, ok := meta["annotations"].(map[string]any); ok {
		for key := range ann {
			if strings.HasPrefix(key, domain.AnnotationPrefix+"/") {
				delete(ann, key)
			}
		}
		// "never had annotations" and "had annotations, now empty" must
		// serialize identically
		if len(ann) == 0 {
			delete(meta, "annotations")
		}
	}
	return out
}

// CanonicalBytes serializes the canonical form of doc. The output is the
// hash input for the object's content-addressed identity.
func CanonicalBytes(doc map[string]any) ([]byte, error) {
	data, err := json.Marshal(CanonicalForm(doc))
	if err != nil {
		return nil, fmt.Errorf("serialize canonical form: %w", err)
	}
	return data, nil
}

// CloneDoc deep-copies a decoded manifest document so canonicalization never
// aliases the orchestrator-owned original.
func CloneDoc(doc map[string]any) map[string]any {
	return cloneMap(doc)
}

func cloneMap(m map[string]any) map[string]any {
	out := make(map[string]any, len(m))
	for k, v := range m {
		out[k] = cloneValue(v)
	}
	return out
}

func cloneValue(v any) any {
	switch val := v.(type) {
	case map[string]any:
		return cloneMap(val)
	case []any:
		out := make([]any, len(val))
		for i, item := range val {
			out[i] = cloneValue(item)
		}
		return out
	default:
		// scalars decoded from YAML are immutable values
		return val
	}
}
