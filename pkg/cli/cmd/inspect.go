package cmd

import (
	"strconv"
	"strings"

	"github.com/pterm/pterm"
	"github.com/spf13/cobra"

	"github.com/rivetship/rivet/pkg/annotate"
	"github.com/rivetship/rivet/pkg/types"
)

func newInspectCmd() *cobra.Command {
	var file string

	cmd := &cobra.Command{
		Use:   "inspect",
		Short: "Read the platform annotations of a manifest",
		Long: `Inspect decodes the ownership, provenance and relationship annotations
from a manifest file's top-level metadata and prints them. Malformed
annotation values are reported with the offending key.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runInspect(file)
		},
	}

	cmd.Flags().StringVarP(&file, "file", "f", "", "manifest YAML file to inspect")
	cmd.MarkFlagRequired("file")

	return cmd
}

func runInspect(file string) error {
	manifest, err := types.ParseManifestFile(file)
	if err != nil {
		return err
	}

	annotator := annotate.NewAnnotator(annotate.Serializer{})

	ownership, err := annotator.OwnershipOf(manifest)
	if err != nil {
		return err
	}
	provenance, err := annotator.ProvenanceOf(manifest)
	if err != nil {
		return err
	}
	relationships, err := annotator.RelationshipsOf(manifest)
	if err != nil {
		return err
	}

	tableData := pterm.TableData{
		{"FIELD", "VALUE"},
		{"Application", orUnset(ownership.Application)},
		{"Cluster", orUnset(ownership.Cluster)},
		{"Sequence", intOrUnset(ownership.Sequence)},
		{"Detail", orUnset(ownership.Detail)},
		{"Provenance Type", orUnset(provenance.Type)},
		{"Provenance Name", orUnset(provenance.Name)},
		{"Provenance Location", orUnset(provenance.Location)},
		{"Provenance Version", orUnset(provenance.Version)},
		{"Load Balancers", listOrUnset(relationships.LoadBalancers)},
		{"Security Groups", listOrUnset(relationships.SecurityGroups)},
	}

	pterm.DefaultSection.Println(manifest.Kind() + " " + manifest.Name())
	return pterm.DefaultTable.WithHasHeader(true).WithData(tableData).Render()
}

func orUnset(value *string) string {
	if value == nil {
		return "<unset>"
	}
	return *value
}

func intOrUnset(value *int) string {
	if value == nil {
		return "<unset>"
	}
	return strconv.Itoa(*value)
}

func listOrUnset(values []string) string {
	if values == nil {
		return "<unset>"
	}
	if len(values) == 0 {
		return "<none>"
	}
	return strings.Join(values, ", ")
}
