package codec

import (
	"bytes"
	"reflect"
	"testing"

	"manifestlock/internal/domain"
)

const keyOrderA = `
apiVersion: v1
kind: ConfigMap
metadata:
  name: settings
  namespace: prod
data:
  retries: "3"
  timeout: 30s
`

// same document, keys written in a different order
const keyOrderB = `
kind: ConfigMap
apiVersion: v1
data:
  timeout: 30s
  retries: "3"
metadata:
  namespace: prod
  name: settings
`

func decodeOne(t *testing.T, src string) map[string]any {
	t.Helper()
	docs, err := DecodeManifest([]byte(src))
	if err != nil {
		t.Fatalf("failed to decode test document: %v", err)
	}
	if len(docs) != 1 {
		t.Fatalf("expected 1 document, got %d", len(docs))
	}
	return docs[0]
}

func TestCanonicalBytesDeterminism(t *testing.T) {
	a, err := CanonicalBytes(decodeOne(t, keyOrderA))
	if err != nil {
		t.Fatalf("canonicalize a: %v", err)
	}
	b, err := CanonicalBytes(decodeOne(t, keyOrderB))
	if err != nil {
		t.Fatalf("canonicalize b: %v", err)
	}
	if !bytes.Equal(a, b) {
		t.Errorf("key order changed canonical bytes:\n%s\n%s", a, b)
	}
}

func TestCanonicalBytesSensitivity(t *testing.T) {
	base := decodeOne(t, keyOrderA)
	baseBytes, err := CanonicalBytes(base)
	if err != nil {
		t.Fatalf("canonicalize base: %v", err)
	}

	t.Run("spec change changes the bytes", func(t *testing.T) {
		changed := decodeOne(t, keyOrderA)
		changed["data"].(map[string]any)["timeout"] = "60s"
		changedBytes, err := CanonicalBytes(changed)
		if err != nil {
			t.Fatalf("canonicalize changed: %v", err)
		}
		if bytes.Equal(baseBytes, changedBytes) {
			t.Error("expected a data change to change the canonical bytes")
		}
	})

	t.Run("excluded fields do not change the bytes", func(t *testing.T) {
		noisy := decodeOne(t, keyOrderA)
		noisy["status"] = map[string]any{"observedGeneration": 4}
		meta := noisy["metadata"].(map[string]any)
		meta["resourceVersion"] = "12345"
		meta["uid"] = "d4f1"
		meta["generation"] = 7
		meta["creationTimestamp"] = "2026-01-01T00:00:00Z"
		meta["managedFields"] = []any{map[string]any{"manager": "kubectl"}}

		noisyBytes, err := CanonicalBytes(noisy)
		if err != nil {
			t.Fatalf("canonicalize noisy: %v", err)
		}
		if !bytes.Equal(baseBytes, noisyBytes) {
			t.Errorf("expected runtime noise to be stripped:\n%s\n%s", baseBytes, noisyBytes)
		}
	})

	t.Run("identity annotations do not change the bytes", func(t *testing.T) {
		annotated := decodeOne(t, keyOrderA)
		meta := annotated["metadata"].(map[string]any)
		meta["annotations"] = map[string]any{
			domain.URIAnnotation: "manifestlock://k8s/core/configmap/settings",
			domain.URNAnnotation: "urn:manifestlock:k8s:core:configmap:settings:sha256-0000",
		}

		annotatedBytes, err := CanonicalBytes(annotated)
		if err != nil {
			t.Fatalf("canonicalize annotated: %v", err)
		}
		if !bytes.Equal(baseBytes, annotatedBytes) {
			t.Error("expected identity annotations to be excluded from the hash input")
		}
	})

	t.Run("foreign annotations are kept", func(t *testing.T) {
		annotated := decodeOne(t, keyOrderA)
		meta := annotated["metadata"].(map[string]any)
		meta["annotations"] = map[string]any{"team": "payments"}

		annotatedBytes, err := CanonicalBytes(annotated)
		if err != nil {
			t.Fatalf("canonicalize annotated: %v", err)
		}
		if bytes.Equal(baseBytes, annotatedBytes) {
			t.Error("expected non-identity annotations to affect the hash input")
		}
	})
}

func TestCanonicalFormEmptiedAnnotations(t *testing.T) {
	doc := decodeOne(t, keyOrderA)
	doc["metadata"].(map[string]any)["annotations"] = map[string]any{
		domain.URNAnnotation: "urn:manifestlock:k8s:core:configmap:settings:sha256-0000",
	}

	canonical := CanonicalForm(doc)
	meta := canonical["metadata"].(map[string]any)
	if _, ok := meta["annotations"]; ok {
		t.Error("expected an emptied annotations map to be removed entirely")
	}
}

func TestCanonicalFormPreservesListOrder(t *testing.T) {
	const ordered = `
apiVersion: apps/v1
kind: Deployment
metadata:
  name: web
spec:
  template:
    spec:
      containers:
        - name: web
          args: ["--first", "--second", "--third"]
`
	doc := decodeOne(t, ordered)
	canonical := CanonicalForm(doc)

	containers := canonical["spec"].(map[string]any)["template"].(map[string]any)["spec"].(map[string]any)["containers"].([]any)
	args := containers[0].(map[string]any)["args"].([]any)
	want := []any{"--first", "--second", "--third"}
	if !reflect.DeepEqual(args, want) {
		t.Errorf("expected args order preserved, got %v", args)
	}
}

func TestCanonicalFormDoesNotAliasInput(t *testing.T) {
	doc := decodeOne(t, keyOrderA)
	canonical := CanonicalForm(doc)

	canonical["data"].(map[string]any)["timeout"] = "mutated"
	if doc["data"].(map[string]any)["timeout"] != "30s" {
		t.Error("expected canonical form to be a deep copy of the input")
	}
}

func TestCanonicalRoundTripIdempotence(t *testing.T) {
	doc := decodeOne(t, keyOrderA)
	first, err := CanonicalBytes(doc)
	if err != nil {
		t.Fatalf("canonicalize: %v", err)
	}

	// serialize the canonical form to YAML, re-parse, canonicalize again
	encoded, err := EncodeManifest([]map[string]any{CanonicalForm(doc)})
	if err != nil {
		t.Fatalf("encode: %v", err)
	}
	reparsed, err := DecodeManifest(encoded)
	if err != nil {
		t.Fatalf("re-parse: %v", err)
	}
	second, err := CanonicalBytes(reparsed[0])
	if err != nil {
		t.Fatalf("canonicalize again: %v", err)
	}

	if !bytes.Equal(first, second) {
		t.Errorf("canonicalization not idempotent across a round trip:\n%s\n%s", first, second)
	}
}
