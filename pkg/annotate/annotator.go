// Package annotate encodes ownership, provenance and relationship
// descriptors into a manifest's flat annotation map and decodes them back.
// The annotation map is the only metadata channel the platform's resources
// expose, so the codec keeps to its own namespaced keys and leaves every
// other entry in the map alone.
package annotate

import (
	"iter"

	"github.com/rivetship/rivet/pkg/types"
)

// Manifest is the slice of a deployable resource the annotator works
// against: its own mutable annotation map, plus the annotation maps of any
// sub-templates it embeds.
type Manifest interface {
	// Annotations returns the manifest's top-level annotation map. The map
	// is mutated in place; its concurrency discipline belongs to the caller.
	Annotations() map[string]string

	// TemplateAnnotations enumerates the annotation maps of embedded
	// sub-templates. The sequence is finite, re-iterable and may be empty.
	TemplateAnnotations() iter.Seq[map[string]string]
}

var _ Manifest = (types.Manifest)(nil)

// Annotator is the annotation codec. It is constructed once with its
// serializer and holds no other state, so a single instance is safe for
// concurrent use.
//
// Writes are field-level atomic, not descriptor-level: each field is
// encoded before the map is touched for it, but fields already stored
// earlier in the same call are not rolled back when a later field fails.
// Callers that observe an error may therefore find a partially annotated
// map; this matches how the rest of the platform treats annotations as
// independently meaningful entries.
type Annotator struct {
	serializer Serializer
}

// NewAnnotator creates an Annotator using the given serializer.
func NewAnnotator(serializer Serializer) *Annotator {
	return &Annotator{serializer: serializer}
}

// WriteOwnership stores each set field of the ownership descriptor into the
// annotation map under its schema key. A nil descriptor fails with
// *MissingOwnershipError and leaves the map untouched. Unset fields are
// skipped: they neither write nor clear a previously stored value.
func (a *Annotator) WriteOwnership(annotations map[string]string, ownership *types.Ownership) error {
	if ownership == nil {
		return &MissingOwnershipError{}
	}

	if err := a.storeString(annotations, keyCluster, ownership.Cluster); err != nil {
		return err
	}
	if err := a.storeString(annotations, keyApplication, ownership.Application); err != nil {
		return err
	}
	if err := a.storeInt(annotations, keySequence, ownership.Sequence); err != nil {
		return err
	}
	return a.storeString(annotations, keyDetail, ownership.Detail)
}

// WriteProvenance stores each set field of the provenance descriptor under
// its schema key. A nil descriptor is a no-op.
func (a *Annotator) WriteProvenance(annotations map[string]string, provenance *types.Provenance) error {
	if provenance == nil {
		return nil
	}

	if err := a.storeString(annotations, keyProvenanceType, provenance.Type); err != nil {
		return err
	}
	if err := a.storeString(annotations, keyProvenanceName, provenance.Name); err != nil {
		return err
	}
	if err := a.storeString(annotations, keyProvenanceLocation, provenance.Location); err != nil {
		return err
	}
	return a.storeString(annotations, keyProvenanceVersion, provenance.Version)
}

// WriteRelationships stores each declared relationship list under its
// schema key, preserving element order. A nil descriptor is a no-op; a nil
// list within a non-nil descriptor is skipped, while an empty non-nil list
// is stored as a declared-empty list.
func (a *Annotator) WriteRelationships(annotations map[string]string, relationships *types.Relationships) error {
	if relationships == nil {
		return nil
	}

	if err := a.storeStringList(annotations, keyLoadBalancers, relationships.LoadBalancers); err != nil {
		return err
	}
	return a.storeStringList(annotations, keySecurityGroups, relationships.SecurityGroups)
}

// ReadOwnership reconstructs the ownership descriptor from the annotation
// map. Absent keys yield nil fields; a manifest with no ownership
// annotations yields an all-nil descriptor rather than an error. Any
// malformed stored value fails the whole read with a key-qualified
// *DecodeError.
func (a *Annotator) ReadOwnership(annotations map[string]string) (*types.Ownership, error) {
	ownership := &types.Ownership{}
	var err error

	if ownership.Cluster, err = a.loadString(annotations, keyCluster); err != nil {
		return nil, err
	}
	if ownership.Application, err = a.loadString(annotations, keyApplication); err != nil {
		return nil, err
	}
	if ownership.Sequence, err = a.loadInt(annotations, keySequence); err != nil {
		return nil, err
	}
	if ownership.Detail, err = a.loadString(annotations, keyDetail); err != nil {
		return nil, err
	}
	return ownership, nil
}

// ReadProvenance reconstructs the provenance descriptor from the annotation
// map, with the same absent-key and malformed-value semantics as
// ReadOwnership.
func (a *Annotator) ReadProvenance(annotations map[string]string) (*types.Provenance, error) {
	provenance := &types.Provenance{}
	var err error

	if provenance.Type, err = a.loadString(annotations, keyProvenanceType); err != nil {
		return nil, err
	}
	if provenance.Name, err = a.loadString(annotations, keyProvenanceName); err != nil {
		return nil, err
	}
	if provenance.Location, err = a.loadString(annotations, keyProvenanceLocation); err != nil {
		return nil, err
	}
	if provenance.Version, err = a.loadString(annotations, keyProvenanceVersion); err != nil {
		return nil, err
	}
	return provenance, nil
}

// ReadRelationships reconstructs the relationship descriptor from the
// annotation map, with the same absent-key and malformed-value semantics as
// ReadOwnership. Stored lists come back in their stored order.
func (a *Annotator) ReadRelationships(annotations map[string]string) (*types.Relationships, error) {
	relationships := &types.Relationships{}
	var err error

	if relationships.LoadBalancers, err = a.loadStringList(annotations, keyLoadBalancers); err != nil {
		return nil, err
	}
	if relationships.SecurityGroups, err = a.loadStringList(annotations, keySecurityGroups); err != nil {
		return nil, err
	}
	return relationships, nil
}

// AnnotateOwnership writes the ownership descriptor to the manifest's own
// annotation map and to every embedded sub-template's map, so that
// resources materialized from those templates stay identifiable. All
// targets receive identical values.
func (a *Annotator) AnnotateOwnership(manifest Manifest, ownership *types.Ownership) error {
	if err := a.WriteOwnership(manifest.Annotations(), ownership); err != nil {
		return err
	}
	for annotations := range manifest.TemplateAnnotations() {
		if err := a.WriteOwnership(annotations, ownership); err != nil {
			return err
		}
	}
	return nil
}

// AnnotateProvenance fans the provenance descriptor out to the manifest and
// its embedded sub-templates.
func (a *Annotator) AnnotateProvenance(manifest Manifest, provenance *types.Provenance) error {
	if err := a.WriteProvenance(manifest.Annotations(), provenance); err != nil {
		return err
	}
	for annotations := range manifest.TemplateAnnotations() {
		if err := a.WriteProvenance(annotations, provenance); err != nil {
			return err
		}
	}
	return nil
}

// AnnotateRelationships fans the relationship descriptor out to the
// manifest and its embedded sub-templates.
func (a *Annotator) AnnotateRelationships(manifest Manifest, relationships *types.Relationships) error {
	if err := a.WriteRelationships(manifest.Annotations(), relationships); err != nil {
		return err
	}
	for annotations := range manifest.TemplateAnnotations() {
		if err := a.WriteRelationships(annotations, relationships); err != nil {
			return err
		}
	}
	return nil
}

// OwnershipOf reads the ownership descriptor from the manifest's top-level
// annotation map. Sub-template maps are write targets only; they are never
// consulted on read.
func (a *Annotator) OwnershipOf(manifest Manifest) (*types.Ownership, error) {
	return a.ReadOwnership(manifest.Annotations())
}

// ProvenanceOf reads the provenance descriptor from the manifest's
// top-level annotation map.
func (a *Annotator) ProvenanceOf(manifest Manifest) (*types.Provenance, error) {
	return a.ReadProvenance(manifest.Annotations())
}

// RelationshipsOf reads the relationship descriptor from the manifest's
// top-level annotation map.
func (a *Annotator) RelationshipsOf(manifest Manifest) (*types.Relationships, error) {
	return a.ReadRelationships(manifest.Annotations())
}

func (a *Annotator) storeString(annotations map[string]string, key string, value *string) error {
	if value == nil {
		return nil
	}
	raw, err := a.serializer.EncodeString(key, *value)
	if err != nil {
		return err
	}
	annotations[key] = raw
	return nil
}

func (a *Annotator) storeInt(annotations map[string]string, key string, value *int) error {
	if value == nil {
		return nil
	}
	raw, err := a.serializer.EncodeInt(key, *value)
	if err != nil {
		return err
	}
	annotations[key] = raw
	return nil
}

func (a *Annotator) storeStringList(annotations map[string]string, key string, value []string) error {
	if value == nil {
		return nil
	}
	raw, err := a.serializer.EncodeStringList(key, value)
	if err != nil {
		return err
	}
	annotations[key] = raw
	return nil
}

func (a *Annotator) loadString(annotations map[string]string, key string) (*string, error) {
	raw, ok := annotations[key]
	if !ok {
		return nil, nil
	}
	value, err := a.serializer.DecodeString(key, raw)
	if err != nil {
		return nil, err
	}
	return &value, nil
}

func (a *Annotator) loadInt(annotations map[string]string, key string) (*int, error) {
	raw, ok := annotations[key]
	if !ok {
		return nil, nil
	}
	value, err := a.serializer.DecodeInt(key, raw)
	if err != nil {
		return nil, err
	}
	return &value, nil
}

func (a *Annotator) loadStringList(annotations map[string]string, key string) ([]string, error) {
	raw, ok := annotations[key]
	if !ok {
		return nil, nil
	}
	return a.serializer.DecodeStringList(key, raw)
}
