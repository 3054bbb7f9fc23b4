package types

import (
	"testing"

	"github.com/google/go-cmp/cmp"
)

const deploymentYAML = `
kind: Deployment
metadata:
  name: billing-api
  namespace: billing
  annotations:
    custom/foo: bar
spec:
  replicas: 2
  template:
    metadata:
      labels:
        app: billing
    spec:
      image: registry.example.com/billing:1.4.2
`

func TestParseManifest(t *testing.T) {
	manifest, err := ParseManifest([]byte(deploymentYAML))
	if err != nil {
		t.Fatalf("ParseManifest() error = %v", err)
	}

	if got := manifest.Kind(); got != "Deployment" {
		t.Errorf("Kind() = %q, want Deployment", got)
	}
	if got := manifest.Name(); got != "billing-api" {
		t.Errorf("Name() = %q, want billing-api", got)
	}
	if got := manifest.Namespace(); got != "billing" {
		t.Errorf("Namespace() = %q, want billing", got)
	}
	if got := manifest.Annotations()["custom/foo"]; got != "bar" {
		t.Errorf(`Annotations()["custom/foo"] = %q, want bar`, got)
	}
}

func TestManifest_AnnotationsCreatedWhenAbsent(t *testing.T) {
	manifest, err := ParseManifest([]byte("kind: Service\n"))
	if err != nil {
		t.Fatalf("ParseManifest() error = %v", err)
	}

	annotations := manifest.Annotations()
	if annotations == nil {
		t.Fatal("Annotations() = nil, want empty map")
	}

	// The returned map must be the manifest's own: mutations survive.
	annotations["custom/foo"] = "bar"
	if got := manifest.Annotations()["custom/foo"]; got != "bar" {
		t.Errorf("mutation did not stick, got %q", got)
	}
}

func TestManifest_TemplateAnnotations(t *testing.T) {
	tests := []struct {
		name string
		yaml string
		want int
	}{
		{
			name: "no spec",
			yaml: "kind: Service\n",
			want: 0,
		},
		{
			name: "spec without templates",
			yaml: "kind: Service\nspec:\n  replicas: 1\n",
			want: 0,
		},
		{
			name: "single template",
			yaml: deploymentYAML,
			want: 1,
		},
		{
			name: "template list",
			yaml: `
kind: Workflow
spec:
  templates:
    - metadata:
        name: step-a
    - metadata:
        name: step-b
    - metadata:
        name: step-c
`,
			want: 3,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			manifest, err := ParseManifest([]byte(tt.yaml))
			if err != nil {
				t.Fatalf("ParseManifest() error = %v", err)
			}

			count := 0
			for annotations := range manifest.TemplateAnnotations() {
				if annotations == nil {
					t.Error("yielded nil annotation map")
				}
				annotations["custom/marker"] = "set"
				count++
			}
			if count != tt.want {
				t.Errorf("template count = %d, want %d", count, tt.want)
			}

			// The sequence is re-iterable and writes through it stick.
			seen := 0
			for annotations := range manifest.TemplateAnnotations() {
				if got := annotations["custom/marker"]; got != "set" {
					t.Errorf("template %d lost mutation, got %q", seen, got)
				}
				seen++
			}
			if seen != tt.want {
				t.Errorf("second iteration count = %d, want %d", seen, tt.want)
			}
		})
	}
}

func TestManifest_BytesRoundTrip(t *testing.T) {
	manifest, err := ParseManifest([]byte(deploymentYAML))
	if err != nil {
		t.Fatalf("ParseManifest() error = %v", err)
	}

	manifest.Annotations()["ownership.rivet.dev/application"] = `"billing"`

	data, err := manifest.Bytes()
	if err != nil {
		t.Fatalf("Bytes() error = %v", err)
	}

	reparsed, err := ParseManifest(data)
	if err != nil {
		t.Fatalf("ParseManifest(Bytes()) error = %v", err)
	}

	if diff := cmp.Diff(manifest.Annotations(), reparsed.Annotations()); diff != "" {
		t.Errorf("annotations changed across round-trip (-want +got):\n%s", diff)
	}
	if got := reparsed.Name(); got != "billing-api" {
		t.Errorf("Name() after round-trip = %q, want billing-api", got)
	}
	spec, ok := reparsed["spec"].(map[string]any)
	if !ok {
		t.Fatal("spec lost across round-trip")
	}
	if got := spec["replicas"]; got != 2 {
		t.Errorf("spec.replicas after round-trip = %v, want 2", got)
	}
}
