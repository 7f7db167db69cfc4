package domain

import (
	"testing"
)

func deploymentDoc() map[string]any {
	return map[string]any{
		"apiVersion": "apps/v1",
		"kind":       "Deployment",
		"metadata": map[string]any{
			"name":      "web",
			"namespace": "prod",
			"labels": map[string]any{
				PlatformLabel: "core",
				"app":         "web",
			},
		},
		"spec": map[string]any{
			"replicas": 3,
		},
	}
}

func TestParseObject(t *testing.T) {
	t.Run("parses a governed document", func(t *testing.T) {
		obj, ok := ParseObject(deploymentDoc())
		if !ok {
			t.Fatal("expected document to be governed")
		}
		if obj.APIVersion != "apps/v1" {
			t.Errorf("expected apiVersion apps/v1, got %q", obj.APIVersion)
		}
		if obj.Kind != "Deployment" {
			t.Errorf("expected kind Deployment, got %q", obj.Kind)
		}
		if obj.Namespace != "prod" {
			t.Errorf("expected namespace prod, got %q", obj.Namespace)
		}
		if obj.Name != "web" {
			t.Errorf("expected name web, got %q", obj.Name)
		}
		if obj.Labels[PlatformLabel] != "core" {
			t.Errorf("expected platform label core, got %q", obj.Labels[PlatformLabel])
		}
		if obj.Component() != "deployment" {
			t.Errorf("expected component deployment, got %q", obj.Component())
		}
	})

	t.Run("skips unknown kinds", func(t *testing.T) {
		doc := deploymentDoc()
		doc["kind"] = "CustomWidget"
		if _, ok := ParseObject(doc); ok {
			t.Error("expected unknown kind to be skipped")
		}
	})

	t.Run("skips documents without a name", func(t *testing.T) {
		doc := deploymentDoc()
		delete(doc["metadata"].(map[string]any), "name")
		if _, ok := ParseObject(doc); ok {
			t.Error("expected nameless document to be skipped")
		}
	})

	t.Run("skips documents without metadata", func(t *testing.T) {
		doc := deploymentDoc()
		delete(doc, "metadata")
		if _, ok := ParseObject(doc); ok {
			t.Error("expected document without metadata to be skipped")
		}
	})

	t.Run("namespace may be empty", func(t *testing.T) {
		doc := deploymentDoc()
		delete(doc["metadata"].(map[string]any), "namespace")
		obj, ok := ParseObject(doc)
		if !ok {
			t.Fatal("expected cluster-scoped document to be governed")
		}
		if obj.Namespace != "" {
			t.Errorf("expected empty namespace, got %q", obj.Namespace)
		}
	})
}

func TestObjectRef(t *testing.T) {
	obj, _ := ParseObject(deploymentDoc())
	if got := obj.Ref(); got != "Deployment prod/web" {
		t.Errorf("expected ref %q, got %q", "Deployment prod/web", got)
	}

	doc := deploymentDoc()
	delete(doc["metadata"].(map[string]any), "namespace")
	obj, _ = ParseObject(doc)
	if got := obj.Ref(); got != "Deployment web" {
		t.Errorf("expected ref %q, got %q", "Deployment web", got)
	}
}

func TestSetIdentity(t *testing.T) {
	id := Identity{
		URI: "manifestlock://k8s/core/deployment/web",
		URN: "urn:manifestlock:k8s:core:deployment:web:sha256-" + hexDigest('a'),
	}

	t.Run("creates annotations when missing", func(t *testing.T) {
		obj, _ := ParseObject(deploymentDoc())
		if !obj.SetIdentity(id) {
			t.Fatal("expected first write to report a change")
		}

		meta := obj.Doc["metadata"].(map[string]any)
		ann := meta["annotations"].(map[string]any)
		if ann[URIAnnotation] != id.URI {
			t.Errorf("expected uri annotation %q, got %v", id.URI, ann[URIAnnotation])
		}
		if ann[URNAnnotation] != id.URN {
			t.Errorf("expected urn annotation %q, got %v", id.URN, ann[URNAnnotation])
		}

		uri, urn := obj.StoredIdentity()
		if uri != id.URI || urn != id.URN {
			t.Errorf("expected stored identity to reflect the write, got %q %q", uri, urn)
		}
	})

	t.Run("unchanged identity is not a change", func(t *testing.T) {
		obj, _ := ParseObject(deploymentDoc())
		obj.SetIdentity(id)
		if obj.SetIdentity(id) {
			t.Error("expected second identical write to report no change")
		}
	})

	t.Run("different identity is a change", func(t *testing.T) {
		obj, _ := ParseObject(deploymentDoc())
		obj.SetIdentity(id)

		next := id
		next.URN = "urn:manifestlock:k8s:core:deployment:web:sha256-" + hexDigest('b')
		if !obj.SetIdentity(next) {
			t.Error("expected changed urn to report a change")
		}
	})
}

// hexDigest builds a 64-character digest from a single hex digit
func hexDigest(c byte) string {
	b := make([]byte, 64)
	for i := range b {
		b[i] = c
	}
	return string(b)
}
