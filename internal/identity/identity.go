// Package identity derives the stable identity triple (URI, URN, content
// hash) for governed manifest objects.
package identity

import (
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"path/filepath"
	"strings"

	"manifestlock/internal/codec"
	"manifestlock/internal/domain"
)

// corePathSegments lists path segments that classify a manifest into the
// shared core platform: GitOps controllers, CI systems, monitoring and
// ingress stacks, and general infrastructure trees.
var corePathSegments = []string{
	"argocd",
	"flux",
	"gitops",
	"jenkins",
	"ci",
	"monitoring",
	"prometheus",
	"grafana",
	"ingress",
	"infra",
}

// ResolvePlatform determines the platform segment for an object. The
// platform label wins; otherwise the source path is matched against the core
// segments and then against platforms/<name> or apps/<name> path layouts.
// The boolean result reports whether the caller should warn about falling
// back to the default platform.
func ResolvePlatform(obj *domain.GovernedObject, source string) (string, bool) {
	if p := obj.Labels[domain.PlatformLabel]; p != "" {
		return p, false
	}

	segments := strings.Split(strings.ToLower(filepath.ToSlash(source)), "/")
	for _, seg := range segments {
		for _, core := range corePathSegments {
			if seg == core {
				return domain.DefaultPlatform, false
			}
		}
	}
	for i, seg := range segments {
		if (seg == "platforms" || seg == "apps") && i+1 < len(segments)-1 {
			if name := segments[i+1]; name != "" {
				return name, false
			}
		}
	}

	return domain.DefaultPlatform, true
}

// Compute derives the identity triple from an object's canonical form and
// its resolved platform. It is a pure function of its inputs.
func Compute(obj *domain.GovernedObject, platform string) (domain.Identity, error) {
	data, err := codec.CanonicalBytes(obj.Doc)
	if err != nil {
		return domain.Identity{}, fmt.Errorf("canonicalize %s: %w", obj.Ref(), err)
	}
	sum := sha256.Sum256(data)
	hash := hex.EncodeToString(sum[:])
	component := obj.Component()

	id := domain.Identity{
		Platform:    platform,
		Component:   component,
		ContentHash: hash,
		URI: fmt.Sprintf("%s://k8s/%s/%s/%s",
			domain.URIScheme, platform, component, obj.Name),
		URN: fmt.Sprintf("urn:%s:k8s:%s:%s:%s:sha256-%s",
			domain.URNAuthority, platform, component, obj.Name, hash),
	}
	if err := domain.ValidateURN(id.URN); err != nil {
		return domain.Identity{}, fmt.Errorf("identity for %s: %w", obj.Ref(), err)
	}
	return id, nil
}

// Entry builds the hashlock entry pinning the computed identity of an object
// found at the given source path.
func Entry(obj *domain.GovernedObject, id domain.Identity, source string) domain.HashlockEntry {
	return domain.HashlockEntry{
		APIVersion:    obj.APIVersion,
		Kind:          obj.Kind,
		Namespace:     obj.Namespace,
		Name:          obj.Name,
		Platform:      id.Platform,
		Component:     id.Component,
		URI:           id.URI,
		URN:           id.URN,
		ContentSHA256: id.ContentHash,
		Source:        source,
	}
}
