package annotate

// Annotation keys are wire format: they are read back by every Rivet
// component that inspects deployed resources, so renaming one is a breaking
// change that needs a migration path. Each descriptor family owns its own
// namespace under rivet.dev, keeping it clear of annotations placed in the
// same map by other actors.
const (
	annotationDomain = "rivet.dev"

	ownershipPrefix     = "ownership." + annotationDomain
	provenancePrefix    = "provenance." + annotationDomain
	relationshipsPrefix = "relationships." + annotationDomain

	keyCluster     = ownershipPrefix + "/cluster"
	keyApplication = ownershipPrefix + "/application"
	keySequence    = ownershipPrefix + "/sequence"
	keyDetail      = ownershipPrefix + "/detail"

	keyProvenanceType     = provenancePrefix + "/type"
	keyProvenanceName     = provenancePrefix + "/name"
	keyProvenanceLocation = provenancePrefix + "/location"
	keyProvenanceVersion  = provenancePrefix + "/version"

	keyLoadBalancers  = relationshipsPrefix + "/loadBalancers"
	keySecurityGroups = relationshipsPrefix + "/securityGroups"
)
