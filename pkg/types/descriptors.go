package types

// Ownership names the application and cluster a deployed resource belongs
// to. Every resource deployed via Rivet must be assigned one at write time,
// though any individual field may be left unset.
type Ownership struct {
	// Cluster identifier the resource is grouped under
	Cluster *string `json:"cluster,omitempty" yaml:"cluster,omitempty"`

	// Application name that owns the resource
	Application *string `json:"application,omitempty" yaml:"application,omitempty"`

	// Ordinal of the resource within its cluster (optional)
	Sequence *int `json:"sequence,omitempty" yaml:"sequence,omitempty"`

	// Free-text detail distinguishing otherwise identical resources (optional)
	Detail *string `json:"detail,omitempty" yaml:"detail,omitempty"`
}

// Provenance records which artifact a deployed resource was materialized
// from. All fields are optional; a wholly unset descriptor carries no
// information and writing it is a no-op.
type Provenance struct {
	// Artifact type (e.g. "oci/image", "bundle")
	Type *string `json:"type,omitempty" yaml:"type,omitempty"`

	// Artifact name
	Name *string `json:"name,omitempty" yaml:"name,omitempty"`

	// Location the artifact was fetched from
	Location *string `json:"location,omitempty" yaml:"location,omitempty"`

	// Artifact version or digest
	Version *string `json:"version,omitempty" yaml:"version,omitempty"`
}

// Relationships links a deployed resource to other managed resources.
// Element order reflects declaration order and is preserved across
// round-trip; a nil slice means "not declared" while an empty non-nil slice
// means "declared empty".
type Relationships struct {
	// Load balancer identifiers fronting the resource
	LoadBalancers []string `json:"loadBalancers,omitempty" yaml:"loadBalancers,omitempty"`

	// Security group identifiers attached to the resource
	SecurityGroups []string `json:"securityGroups,omitempty" yaml:"securityGroups,omitempty"`
}

// StrPtr returns a pointer to s.
func StrPtr(s string) *string { return &s }

// IntPtr returns a pointer to i.
func IntPtr(i int) *int { return &i }
