package cmd

import (
	"context"
	"fmt"
	"os"
	"path/filepath"

	"github.com/pterm/pterm"
	"github.com/spf13/cobra"

	"github.com/rivetship/rivet/pkg/annotate"
	"github.com/rivetship/rivet/pkg/cache"
	"github.com/rivetship/rivet/pkg/log"
	"github.com/rivetship/rivet/pkg/types"
)

type annotateOptions struct {
	file string

	cluster     string
	application string
	sequence    int
	detail      string

	provenanceType     string
	provenanceName     string
	provenanceLocation string
	provenanceVersion  string

	loadBalancers  []string
	securityGroups []string

	record bool
}

func newAnnotateCmd() *cobra.Command {
	opts := &annotateOptions{}

	cmd := &cobra.Command{
		Use:   "annotate",
		Short: "Apply ownership, provenance and relationship annotations to a manifest",
		Long: `Annotate writes the platform's ownership, provenance and relationship
annotations into a manifest YAML file, fanning them out to any embedded
sub-templates, and rewrites the file in place.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runAnnotate(cmd, opts)
		},
	}

	cmd.Flags().StringVarP(&opts.file, "file", "f", "", "manifest YAML file to annotate")

	cmd.Flags().StringVar(&opts.application, "app", "", "application that owns the resource")
	cmd.Flags().StringVar(&opts.cluster, "cluster", "", "cluster the resource is grouped under")
	cmd.Flags().IntVar(&opts.sequence, "sequence", 0, "ordinal of the resource within its cluster")
	cmd.Flags().StringVar(&opts.detail, "detail", "", "free-text ownership detail")

	cmd.Flags().StringVar(&opts.provenanceType, "provenance-type", "", "artifact type the resource came from")
	cmd.Flags().StringVar(&opts.provenanceName, "provenance-name", "", "artifact name")
	cmd.Flags().StringVar(&opts.provenanceLocation, "provenance-location", "", "artifact location")
	cmd.Flags().StringVar(&opts.provenanceVersion, "provenance-version", "", "artifact version")

	cmd.Flags().StringArrayVar(&opts.loadBalancers, "load-balancer", nil, "load balancer linked to the resource (repeatable)")
	cmd.Flags().StringArrayVar(&opts.securityGroups, "security-group", nil, "security group linked to the resource (repeatable)")

	cmd.Flags().BoolVar(&opts.record, "record", false, "record the annotated manifest in the local cache")

	cmd.MarkFlagRequired("file")
	cmd.MarkFlagRequired("app")

	return cmd
}

func runAnnotate(cmd *cobra.Command, opts *annotateOptions) error {
	manifest, err := types.ParseManifestFile(opts.file)
	if err != nil {
		return err
	}

	ownership := &types.Ownership{
		Application: types.StrPtr(opts.application),
		Cluster:     stringFlag(cmd, "cluster", opts.cluster),
		Detail:      stringFlag(cmd, "detail", opts.detail),
	}
	if cmd.Flags().Changed("sequence") {
		ownership.Sequence = types.IntPtr(opts.sequence)
	}

	var provenance *types.Provenance
	if anyFlagChanged(cmd, "provenance-type", "provenance-name", "provenance-location", "provenance-version") {
		provenance = &types.Provenance{
			Type:     stringFlag(cmd, "provenance-type", opts.provenanceType),
			Name:     stringFlag(cmd, "provenance-name", opts.provenanceName),
			Location: stringFlag(cmd, "provenance-location", opts.provenanceLocation),
			Version:  stringFlag(cmd, "provenance-version", opts.provenanceVersion),
		}
	}

	var relationships *types.Relationships
	if anyFlagChanged(cmd, "load-balancer", "security-group") {
		relationships = &types.Relationships{}
		if cmd.Flags().Changed("load-balancer") {
			relationships.LoadBalancers = opts.loadBalancers
		}
		if cmd.Flags().Changed("security-group") {
			relationships.SecurityGroups = opts.securityGroups
		}
	}

	annotator := annotate.NewAnnotator(annotate.Serializer{})
	if err := annotator.AnnotateOwnership(manifest, ownership); err != nil {
		return err
	}
	if err := annotator.AnnotateProvenance(manifest, provenance); err != nil {
		return err
	}
	if err := annotator.AnnotateRelationships(manifest, relationships); err != nil {
		return err
	}

	data, err := manifest.Bytes()
	if err != nil {
		return err
	}
	if err := os.WriteFile(opts.file, data, 0o644); err != nil {
		return fmt.Errorf("failed to write manifest file: %w", err)
	}

	if opts.record {
		if err := recordManifest(cmd.Context(), manifest, ownership, relationships); err != nil {
			return err
		}
	}

	pterm.Success.Printfln("Annotated %s", opts.file)
	return nil
}

// recordManifest merges the annotated manifest's identity into the local
// "manifests" cache region so later lookups can find it without re-reading
// the file.
func recordManifest(ctx context.Context, manifest types.Manifest, ownership *types.Ownership, relationships *types.Relationships) error {
	factory, err := cache.OpenBadgerCacheFactory(
		filepath.Join(cfg.DataDir, "cache"),
		cache.Options{
			MergeBatchSize: cfg.Cache.MergeBatchSize,
			ScanBatchSize:  cfg.Cache.ScanBatchSize,
			MemorySize:     cfg.Cache.MemorySize,
		},
		nil,
		log.GetDefaultLogger(),
	)
	if err != nil {
		return err
	}
	defer factory.Close()

	item := cache.CacheData{
		ID: manifest.Namespace() + "/" + manifest.Name(),
		Attributes: map[string]interface{}{
			"kind": manifest.Kind(),
			"name": manifest.Name(),
		},
	}
	if ownership.Application != nil {
		item.Attributes["application"] = *ownership.Application
	}
	if ownership.Cluster != nil {
		item.Attributes["cluster"] = *ownership.Cluster
	}
	if relationships != nil {
		item.Relationships = map[string][]string{}
		if relationships.LoadBalancers != nil {
			item.Relationships["loadBalancers"] = relationships.LoadBalancers
		}
		if relationships.SecurityGroups != nil {
			item.Relationships["securityGroups"] = relationships.SecurityGroups
		}
	}

	return factory.GetCache("manifests").Merge(ctx, item)
}

// stringFlag returns a pointer to value when the named flag was set on the
// command line, nil otherwise.
func stringFlag(cmd *cobra.Command, name, value string) *string {
	if !cmd.Flags().Changed(name) {
		return nil
	}
	return types.StrPtr(value)
}

func anyFlagChanged(cmd *cobra.Command, names ...string) bool {
	for _, name := range names {
		if cmd.Flags().Changed(name) {
			return true
		}
	}
	return false
}
