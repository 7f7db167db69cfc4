package domain

// Identity annotation and label keys carried on governed objects.
const (
	// AnnotationPrefix namespaces every key manifestlock writes or reads.
	AnnotationPrefix = "manifestlock.io"
	// URIAnnotation stores the object's location URI.
	URIAnnotation = AnnotationPrefix + "/uri"
	// URNAnnotation stores the object's content-addressed URN.
	URNAnnotation = AnnotationPrefix + "/urn"
	// PlatformLabel classifies the object into a platform.
	PlatformLabel = AnnotationPrefix + "/platform"
)

// GovernedKinds maps a manifest kind to its identity component segment.
// Kinds absent from this table are not governed and are silently skipped.
var GovernedKinds = map[string]string{
	"Deployment":            "deployment",
	"StatefulSet":           "statefulset",
	"DaemonSet":             "daemonset",
	"Service":               "service",
	"ConfigMap":             "configmap",
	"Secret":                "secret",
	"Ingress":               "ingress",
	"Job":                   "job",
	"CronJob":               "cronjob",
	"ServiceAccount":        "serviceaccount",
	"Namespace":             "namespace",
	"PersistentVolumeClaim": "persistentvolumeclaim",
}

// GovernedObject is one parsed manifest document subject to identity locking.
// It is created fresh per document on each run and never persisted directly;
// only its derived identity and, in update mode, its mutated annotations
// reach disk.
type GovernedObject struct {
	APIVersion  string
	Kind        string
	Namespace   string
	Name        string
	Labels      map[string]string
	Annotations map[string]string

	// Doc is the full decoded document including the spec/status payload.
	// The orchestrator owns it exclusively for the duration of one file pass.
	Doc map[string]any
}

// ParseObject extracts a GovernedObject from a decoded manifest document.
// It returns false when the document is not governed: an unknown kind, or a
// missing metadata.name.
func ParseObject(doc map[string]any) (*GovernedObject, bool) {
	kind, _ := doc["kind"].(string)
	if _, ok := GovernedKinds[kind]; !ok {
		return nil, false
	}

	meta, _ := doc["metadata"].(map[string]any)
	if meta == nil {
		return nil, false
	}
	name, _ := meta["name"].(string)
	if name == "" {
		return nil, false
	}

	obj := &GovernedObject{
		Kind: kind,
		Name: name,
		Doc:  doc,
	}
	obj.APIVersion, _ = doc["apiVersion"].(string)
	obj.Namespace, _ = meta["namespace"].(string)
	obj.Labels = stringMap(meta["labels"])
	obj.Annotations = stringMap(meta["annotations"])

	return obj, true
}

// Component returns the identity component segment for the object's kind.
func (o *GovernedObject) Component() string {
	return GovernedKinds[o.Kind]
}

// Ref returns a human-readable reference for reporting, namespace-qualified
// when the object has one.
func (o *GovernedObject) Ref() string {
	if o.Namespace != "" {
		return o.Kind + " " + o.Namespace + "/" + o.Name
	}
	return o.Kind + " " + o.Name
}

// StoredIdentity returns the identity annotations currently on the object.
// Either value is empty when the annotation has never been written.
func (o *GovernedObject) StoredIdentity() (uri, urn string) {
	return o.Annotations[URIAnnotation], o.Annotations[URNAnnotation]
}

// SetIdentity writes the identity annotations into the underlying document,
// creating the annotations map when needed. It reports whether either
// annotation actually changed, so callers can track dirty files.
func (o *GovernedObject) SetIdentity(id Identity) bool {
	uri, urn := o.StoredIdentity()
	if uri == id.URI && urn == id.URN {
		return false
	}

	meta, _ := o.Doc["metadata"].(map[string]any)
	if meta == nil {
		meta = map[string]any{}
		o.Doc["metadata"] = meta
	}
	ann, _ := meta["annotations"].(map[string]any)
	if ann == nil {
		ann = map[string]any{}
		meta["annotations"] = ann
	}
	ann[URIAnnotation] = id.URI
	ann[URNAnnotation] = id.URN

	if o.Annotations == nil {
		o.Annotations = map[string]string{}
	}
	o.Annotations[URIAnnotation] = id.URI
	o.Annotations[URNAnnotation] = id.URN

	return true
}

// stringMap converts a decoded YAML mapping into a string map, skipping any
// non-string values. Returns nil for absent or empty input.
func stringMap(v any) map[string]string {
	raw, _ := v.(map[string]any)
	if len(raw) == 0 {
		return nil
	}
	out := make(map[string]string, len(raw))
	for k, val := range raw {
		if s, ok := val.(string); ok {
			out[k] = s
		}
	}
	if len(out) == 0 {
		return nil
	}
	return out
}
