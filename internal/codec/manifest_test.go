package codec

import (
	"bytes"
	"os"
	"path/filepath"
	"strings"
	"testing"
)

const multiDoc = `
apiVersion: v1
kind: Service
metadata:
  name: web
  namespace: prod
spec:
  ports:
    - port: 80
---
apiVersion: apps/v1
kind: Deployment
metadata:
  name: web
  namespace: prod
spec:
  replicas: 2
`

func TestDecodeManifest(t *testing.T) {
	t.Run("splits documents", func(t *testing.T) {
		docs, err := DecodeManifest([]byte(multiDoc))
		if err != nil {
			t.Fatalf("decode: %v", err)
		}
		if len(docs) != 2 {
			t.Fatalf("expected 2 documents, got %d", len(docs))
		}
		if docs[0]["kind"] != "Service" || docs[1]["kind"] != "Deployment" {
			t.Errorf("unexpected document order: %v, %v", docs[0]["kind"], docs[1]["kind"])
		}
	})

	t.Run("drops empty documents", func(t *testing.T) {
		docs, err := DecodeManifest([]byte("---\n---\nkind: Service\nmetadata:\n  name: a\n"))
		if err != nil {
			t.Fatalf("decode: %v", err)
		}
		if len(docs) != 1 {
			t.Errorf("expected 1 document, got %d", len(docs))
		}
	})

	t.Run("reports malformed yaml", func(t *testing.T) {
		if _, err := DecodeManifest([]byte("kind: [unclosed")); err == nil {
			t.Error("expected a parse error")
		}
	})
}

func TestEncodeManifest(t *testing.T) {
	docs, err := DecodeManifest([]byte(multiDoc))
	if err != nil {
		t.Fatalf("decode: %v", err)
	}

	encoded, err := EncodeManifest(docs)
	if err != nil {
		t.Fatalf("encode: %v", err)
	}

	t.Run("every document gets an explicit separator", func(t *testing.T) {
		if got := strings.Count(string(encoded), "---\n"); got != 2 {
			t.Errorf("expected 2 separators, got %d in:\n%s", got, encoded)
		}
		if !bytes.HasPrefix(encoded, []byte("---\n")) {
			t.Errorf("expected output to start with a separator:\n%s", encoded)
		}
	})

	t.Run("encoding is byte-stable", func(t *testing.T) {
		reparsed, err := DecodeManifest(encoded)
		if err != nil {
			t.Fatalf("re-parse: %v", err)
		}
		again, err := EncodeManifest(reparsed)
		if err != nil {
			t.Fatalf("re-encode: %v", err)
		}
		if !bytes.Equal(encoded, again) {
			t.Errorf("re-encoding changed bytes:\n%s\n%s", encoded, again)
		}
	})
}

func TestWriteManifest(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "web.yaml")

	docs, err := DecodeManifest([]byte(multiDoc))
	if err != nil {
		t.Fatalf("decode: %v", err)
	}

	if err := WriteManifest(path, docs); err != nil {
		t.Fatalf("write: %v", err)
	}

	t.Run("round trips through disk", func(t *testing.T) {
		loaded, err := ReadManifest(path)
		if err != nil {
			t.Fatalf("read back: %v", err)
		}
		if len(loaded) != 2 {
			t.Fatalf("expected 2 documents, got %d", len(loaded))
		}
	})

	t.Run("rewrite is byte-identical", func(t *testing.T) {
		before, err := os.ReadFile(path)
		if err != nil {
			t.Fatalf("read: %v", err)
		}
		loaded, err := ReadManifest(path)
		if err != nil {
			t.Fatalf("read back: %v", err)
		}
		if err := WriteManifest(path, loaded); err != nil {
			t.Fatalf("rewrite: %v", err)
		}
		after, err := os.ReadFile(path)
		if err != nil {
			t.Fatalf("read: %v", err)
		}
		if !bytes.Equal(before, after) {
			t.Errorf("rewrite changed bytes:\n%s\n%s", before, after)
		}
	})

	t.Run("leaves no temp files behind", func(t *testing.T) {
		entries, err := os.ReadDir(dir)
		if err != nil {
			t.Fatalf("readdir: %v", err)
		}
		for _, e := range entries {
			if e.Name() != "web.yaml" {
				t.Errorf("unexpected leftover file %s", e.Name())
			}
		}
	})
}
