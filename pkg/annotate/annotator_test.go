package annotate

import (
	"errors"
	"iter"
	"maps"
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/rivetship/rivet/pkg/types"
)

// fakeManifest is a minimal Manifest for exercising template propagation
// without pulling in YAML parsing.
type fakeManifest struct {
	annotations map[string]string
	templates   []map[string]string
}

func newFakeManifest(templateCount int) *fakeManifest {
	m := &fakeManifest{annotations: map[string]string{}}
	for i := 0; i < templateCount; i++ {
		m.templates = append(m.templates, map[string]string{})
	}
	return m
}

func (m *fakeManifest) Annotations() map[string]string { return m.annotations }

func (m *fakeManifest) TemplateAnnotations() iter.Seq[map[string]string] {
	return func(yield func(map[string]string) bool) {
		for _, annotations := range m.templates {
			if !yield(annotations) {
				return
			}
		}
	}
}

func TestAnnotator_OwnershipRoundTrip(t *testing.T) {
	tests := []struct {
		name      string
		ownership *types.Ownership
	}{
		{
			name: "all fields set",
			ownership: &types.Ownership{
				Cluster:     types.StrPtr("billing-api"),
				Application: types.StrPtr("billing"),
				Sequence:    types.IntPtr(3),
				Detail:      types.StrPtr("canary"),
			},
		},
		{
			name: "application only",
			ownership: &types.Ownership{
				Application: types.StrPtr("billing"),
			},
		},
		{
			name:      "all fields unset",
			ownership: &types.Ownership{},
		},
		{
			name: "empty strings are not unset",
			ownership: &types.Ownership{
				Cluster:     types.StrPtr(""),
				Application: types.StrPtr(""),
			},
		},
		{
			name: "sequence zero",
			ownership: &types.Ownership{
				Application: types.StrPtr("billing"),
				Sequence:    types.IntPtr(0),
			},
		},
	}

	annotator := NewAnnotator(Serializer{})
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			annotations := map[string]string{}
			if err := annotator.WriteOwnership(annotations, tt.ownership); err != nil {
				t.Fatalf("WriteOwnership() error = %v", err)
			}

			got, err := annotator.ReadOwnership(annotations)
			if err != nil {
				t.Fatalf("ReadOwnership() error = %v", err)
			}
			if diff := cmp.Diff(tt.ownership, got); diff != "" {
				t.Errorf("round-trip mismatch (-want +got):\n%s", diff)
			}
		})
	}
}

func TestAnnotator_ProvenanceRoundTrip(t *testing.T) {
	tests := []struct {
		name       string
		provenance *types.Provenance
	}{
		{
			name: "all fields set",
			provenance: &types.Provenance{
				Type:     types.StrPtr("oci/image"),
				Name:     types.StrPtr("billing"),
				Location: types.StrPtr("registry.example.com/billing"),
				Version:  types.StrPtr("1.4.2"),
			},
		},
		{
			name: "version only",
			provenance: &types.Provenance{
				Version: types.StrPtr("1.4.2"),
			},
		},
		{
			name:       "all fields unset",
			provenance: &types.Provenance{},
		},
	}

	annotator := NewAnnotator(Serializer{})
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			annotations := map[string]string{}
			if err := annotator.WriteProvenance(annotations, tt.provenance); err != nil {
				t.Fatalf("WriteProvenance() error = %v", err)
			}

			got, err := annotator.ReadProvenance(annotations)
			if err != nil {
				t.Fatalf("ReadProvenance() error = %v", err)
			}
			if diff := cmp.Diff(tt.provenance, got); diff != "" {
				t.Errorf("round-trip mismatch (-want +got):\n%s", diff)
			}
		})
	}
}

func TestAnnotator_RelationshipsRoundTrip(t *testing.T) {
	tests := []struct {
		name          string
		relationships *types.Relationships
	}{
		{
			name: "both lists populated",
			relationships: &types.Relationships{
				LoadBalancers:  []string{"lb-a", "lb-b"},
				SecurityGroups: []string{"sg-1"},
			},
		},
		{
			name: "declared empty is not absent",
			relationships: &types.Relationships{
				LoadBalancers:  []string{},
				SecurityGroups: []string{},
			},
		},
		{
			name: "one list absent",
			relationships: &types.Relationships{
				LoadBalancers: []string{"lb-a"},
			},
		},
		{
			name:          "both lists absent",
			relationships: &types.Relationships{},
		},
	}

	annotator := NewAnnotator(Serializer{})
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			annotations := map[string]string{}
			if err := annotator.WriteRelationships(annotations, tt.relationships); err != nil {
				t.Fatalf("WriteRelationships() error = %v", err)
			}

			got, err := annotator.ReadRelationships(annotations)
			if err != nil {
				t.Fatalf("ReadRelationships() error = %v", err)
			}
			if diff := cmp.Diff(tt.relationships, got); diff != "" {
				t.Errorf("round-trip mismatch (-want +got):\n%s", diff)
			}
		})
	}
}

func TestAnnotator_OrderPreservation(t *testing.T) {
	annotator := NewAnnotator(Serializer{})
	annotations := map[string]string{}

	want := []string{"lb-a", "lb-b"}
	err := annotator.WriteRelationships(annotations, &types.Relationships{LoadBalancers: want})
	if err != nil {
		t.Fatalf("WriteRelationships() error = %v", err)
	}

	got, err := annotator.ReadRelationships(annotations)
	if err != nil {
		t.Fatalf("ReadRelationships() error = %v", err)
	}
	if diff := cmp.Diff(want, got.LoadBalancers); diff != "" {
		t.Errorf("LoadBalancers order not preserved (-want +got):\n%s", diff)
	}
}

func TestAnnotator_WriteOwnershipNilDescriptor(t *testing.T) {
	annotator := NewAnnotator(Serializer{})
	annotations := map[string]string{"custom/foo": "bar"}
	before := maps.Clone(annotations)

	err := annotator.WriteOwnership(annotations, nil)
	if err == nil {
		t.Fatal("WriteOwnership(nil) succeeded, want *MissingOwnershipError")
	}

	var missing *MissingOwnershipError
	if !errors.As(err, &missing) {
		t.Fatalf("WriteOwnership(nil) error = %T, want *MissingOwnershipError", err)
	}
	if diff := cmp.Diff(before, annotations); diff != "" {
		t.Errorf("map changed by rejected write (-want +got):\n%s", diff)
	}
}

func TestAnnotator_NilOptionalDescriptorsNoOp(t *testing.T) {
	annotator := NewAnnotator(Serializer{})
	annotations := map[string]string{"custom/foo": "bar"}
	before := maps.Clone(annotations)

	if err := annotator.WriteProvenance(annotations, nil); err != nil {
		t.Fatalf("WriteProvenance(nil) error = %v", err)
	}
	if err := annotator.WriteRelationships(annotations, nil); err != nil {
		t.Fatalf("WriteRelationships(nil) error = %v", err)
	}
	if diff := cmp.Diff(before, annotations); diff != "" {
		t.Errorf("map changed by nil descriptor write (-want +got):\n%s", diff)
	}
}

func TestAnnotator_NamespaceIsolation(t *testing.T) {
	annotator := NewAnnotator(Serializer{})
	annotations := map[string]string{
		"custom/foo":               "bar",
		"other.example.com/keep":   "untouched",
		"ownership.unrelated/name": "someone-else",
	}

	err := annotator.WriteOwnership(annotations, &types.Ownership{
		Cluster:     types.StrPtr("billing-api"),
		Application: types.StrPtr("billing"),
	})
	if err != nil {
		t.Fatalf("WriteOwnership() error = %v", err)
	}
	err = annotator.WriteProvenance(annotations, &types.Provenance{Version: types.StrPtr("1.0.0")})
	if err != nil {
		t.Fatalf("WriteProvenance() error = %v", err)
	}
	err = annotator.WriteRelationships(annotations, &types.Relationships{LoadBalancers: []string{"lb-a"}})
	if err != nil {
		t.Fatalf("WriteRelationships() error = %v", err)
	}

	for key, want := range map[string]string{
		"custom/foo":               "bar",
		"other.example.com/keep":   "untouched",
		"ownership.unrelated/name": "someone-else",
	} {
		if got := annotations[key]; got != want {
			t.Errorf("foreign key %q = %q, want %q", key, got, want)
		}
	}
}

func TestAnnotator_UnsetFieldDoesNotClear(t *testing.T) {
	annotator := NewAnnotator(Serializer{})
	annotations := map[string]string{}

	err := annotator.WriteOwnership(annotations, &types.Ownership{
		Cluster:     types.StrPtr("billing-api"),
		Application: types.StrPtr("billing"),
	})
	if err != nil {
		t.Fatalf("WriteOwnership() error = %v", err)
	}

	// A later write with only the application set must leave the stored
	// cluster annotation alone.
	err = annotator.WriteOwnership(annotations, &types.Ownership{
		Application: types.StrPtr("billing-v2"),
	})
	if err != nil {
		t.Fatalf("WriteOwnership() error = %v", err)
	}

	got, err := annotator.ReadOwnership(annotations)
	if err != nil {
		t.Fatalf("ReadOwnership() error = %v", err)
	}
	if got.Cluster == nil || *got.Cluster != "billing-api" {
		t.Errorf("Cluster = %v, want billing-api", got.Cluster)
	}
	if got.Application == nil || *got.Application != "billing-v2" {
		t.Errorf("Application = %v, want billing-v2", got.Application)
	}
}

func TestAnnotator_PropagationFanOut(t *testing.T) {
	ownership := &types.Ownership{
		Cluster:     types.StrPtr("billing-api"),
		Application: types.StrPtr("billing"),
	}
	relationships := &types.Relationships{LoadBalancers: []string{"lb-a", "lb-b"}}

	annotator := NewAnnotator(Serializer{})
	for _, templateCount := range []int{0, 1, 3} {
		manifest := newFakeManifest(templateCount)

		if err := annotator.AnnotateOwnership(manifest, ownership); err != nil {
			t.Fatalf("AnnotateOwnership() error = %v", err)
		}
		if err := annotator.AnnotateRelationships(manifest, relationships); err != nil {
			t.Fatalf("AnnotateRelationships() error = %v", err)
		}

		for i, templateAnnotations := range manifest.templates {
			if diff := cmp.Diff(manifest.annotations, templateAnnotations); diff != "" {
				t.Errorf("templates=%d: template %d diverges from top-level map (-want +got):\n%s",
					templateCount, i, diff)
			}
		}
	}
}

func TestAnnotator_ReadsIgnoreTemplates(t *testing.T) {
	annotator := NewAnnotator(Serializer{})
	manifest := newFakeManifest(1)

	// Annotate only the sub-template; the top-level read must not see it.
	err := annotator.WriteOwnership(manifest.templates[0], &types.Ownership{
		Application: types.StrPtr("billing"),
	})
	if err != nil {
		t.Fatalf("WriteOwnership() error = %v", err)
	}

	got, err := annotator.OwnershipOf(manifest)
	if err != nil {
		t.Fatalf("OwnershipOf() error = %v", err)
	}
	if diff := cmp.Diff(&types.Ownership{}, got); diff != "" {
		t.Errorf("OwnershipOf() read template annotations (-want +got):\n%s", diff)
	}
}

func TestAnnotator_MalformedValueRejection(t *testing.T) {
	annotator := NewAnnotator(Serializer{})
	annotations := map[string]string{
		keyCluster:              `"billing`, // truncated
		keyProvenanceVersion:    `"1.0.0"`,
		"custom/not-ours-atall": "bar",
	}

	_, err := annotator.ReadOwnership(annotations)
	if err == nil {
		t.Fatal("ReadOwnership() succeeded on malformed value, want *DecodeError")
	}
	var decodeErr *DecodeError
	if !errors.As(err, &decodeErr) {
		t.Fatalf("ReadOwnership() error = %T, want *DecodeError", err)
	}
	if decodeErr.Key != keyCluster {
		t.Errorf("DecodeError.Key = %q, want %q", decodeErr.Key, keyCluster)
	}

	// A malformed ownership value must not poison reads of other families.
	provenance, err := annotator.ReadProvenance(annotations)
	if err != nil {
		t.Fatalf("ReadProvenance() error = %v", err)
	}
	if provenance.Version == nil || *provenance.Version != "1.0.0" {
		t.Errorf("Provenance.Version = %v, want 1.0.0", provenance.Version)
	}
}
