package types

import (
	"fmt"
	"iter"
	"os"

	yaml "gopkg.in/yaml.v3"
)

// Manifest is an unstructured deployable resource descriptor. It keeps the
// full YAML document as parsed so that fields this subsystem does not know
// about survive a load/annotate/save cycle untouched.
//
// Annotations live at metadata.annotations. Sub-templates embedded in the
// manifest (spec.template and each element of spec.templates) carry their
// own annotation maps, discoverable via TemplateAnnotations.
type Manifest map[string]any

// ParseManifest parses a single YAML document into a Manifest.
func ParseManifest(data []byte) (Manifest, error) {
	var m Manifest
	if err := yaml.Unmarshal(data, &m); err != nil {
		return nil, fmt.Errorf("failed to parse manifest: %w", err)
	}
	if m == nil {
		m = Manifest{}
	}
	return m, nil
}

// ParseManifestFile reads and parses a manifest YAML file.
func ParseManifestFile(filename string) (Manifest, error) {
	data, err := os.ReadFile(filename)
	if err != nil {
		return nil, fmt.Errorf("failed to read manifest file: %w", err)
	}
	return ParseManifest(data)
}

// Bytes marshals the manifest back to YAML.
func (m Manifest) Bytes() ([]byte, error) {
	return yaml.Marshal(map[string]any(m))
}

// Kind returns the manifest's resource kind, or "" when unset.
func (m Manifest) Kind() string {
	kind, _ := m["kind"].(string)
	return kind
}

// Name returns the manifest's metadata.name, or "" when unset.
func (m Manifest) Name() string {
	metadata, ok := m["metadata"].(map[string]any)
	if !ok {
		return ""
	}
	name, _ := metadata["name"].(string)
	return name
}

// Namespace returns the manifest's metadata.namespace, or "" when unset.
func (m Manifest) Namespace() string {
	metadata, ok := m["metadata"].(map[string]any)
	if !ok {
		return ""
	}
	namespace, _ := metadata["namespace"].(string)
	return namespace
}

// Annotations returns the manifest's top-level annotation map, creating it
// if absent. The returned map is the manifest's own: mutations land in the
// manifest and survive Bytes.
func (m Manifest) Annotations() map[string]string {
	return annotationsOf(m)
}

// TemplateAnnotations enumerates the annotation maps of the sub-templates
// embedded in the manifest: spec.template, then each element of
// spec.templates, in declaration order. The sequence is finite, re-iterable
// and empty when the manifest embeds no templates. Each yielded map is
// created on the template if absent, so writes through it stick.
func (m Manifest) TemplateAnnotations() iter.Seq[map[string]string] {
	return func(yield func(map[string]string) bool) {
		spec, ok := m["spec"].(map[string]any)
		if !ok {
			return
		}
		if template, ok := spec["template"].(map[string]any); ok {
			if !yield(annotationsOf(template)) {
				return
			}
		}
		templates, ok := spec["templates"].([]any)
		if !ok {
			return
		}
		for _, entry := range templates {
			template, ok := entry.(map[string]any)
			if !ok {
				continue
			}
			if !yield(annotationsOf(template)) {
				return
			}
		}
	}
}

// annotationsOf returns obj's metadata.annotations as a map[string]string,
// normalizing the YAML-parsed form in place on first access so that the
// returned map stays referenced by obj.
func annotationsOf(obj map[string]any) map[string]string {
	metadata, ok := obj["metadata"].(map[string]any)
	if !ok {
		metadata = map[string]any{}
		obj["metadata"] = metadata
	}

	switch annotations := metadata["annotations"].(type) {
	case map[string]string:
		return annotations
	case map[string]any:
		normalized := make(map[string]string, len(annotations))
		for key, value := range annotations {
			if s, ok := value.(string); ok {
				normalized[key] = s
			} else {
				normalized[key] = fmt.Sprint(value)
			}
		}
		metadata["annotations"] = normalized
		return normalized
	default:
		normalized := map[string]string{}
		metadata["annotations"] = normalized
		return normalized
	}
}
