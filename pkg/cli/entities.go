package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/getmockd/fieldmap/pkg/cli/internal/output"
	"github.com/getmockd/fieldmap/pkg/mapping"
)

var entitiesCmd = &cobra.Command{
	Use:   "entities",
	Short: "List the entity types that can be mapped",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		a, err := newApp(cmd, appOptions{})
		if err != nil {
			return err
		}
		defer a.close()

		opts := a.svc.EntityTypes()
		stored, err := a.svc.StoredEntities(cmd.Context())
		if err != nil {
			return err
		}

		if jsonOutput {
			return output.JSON(cmd.OutOrStdout(), map[string]any{"entity_types": opts})
		}

		saved := make(map[mapping.EntityType]bool, len(stored))
		for _, e := range stored {
			saved[e] = true
		}
		tw := output.Table(cmd.OutOrStdout())
		fmt.Fprintln(tw, "ENTITY\tLABEL\tMAPPING")
		for _, o := range opts {
			state := "defaults"
			if saved[o.Value] {
				state = "saved"
			}
			fmt.Fprintf(tw, "%s\t%s\t%s\n", o.Value, o.Label, state)
		}
		return tw.Flush()
	},
}

var fieldsTarget bool

var fieldsCmd = &cobra.Command{
	Use:   "fields <entity>",
	Short: "List the source (or target) fields of an entity type",
	Long: `List the source fields of an entity type as reported by the source API.
When the source API cannot be reached the built-in catalog is shown instead.
With --target, list the fields the target CRM accepts.`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		a, err := newApp(cmd, appOptions{})
		if err != nil {
			return err
		}
		defer a.close()

		entity, err := a.entityArg(args[0])
		if err != nil {
			return err
		}

		var fields []mapping.Field
		fallback := false
		if fieldsTarget {
			fields, err = a.svc.TargetFields(cmd.Context(), entity)
		} else {
			fields, fallback, err = a.svc.SourceFields(cmd.Context(), entity)
		}
		if err != nil {
			return err
		}

		if jsonOutput {
			body := map[string]any{"fields": fields}
			if !fieldsTarget {
				body["fallback"] = fallback
			}
			return output.JSON(cmd.OutOrStdout(), body)
		}

		if fallback {
			output.Warn(cmd.ErrOrStderr(), "source API unavailable, showing built-in fields for %s", entity)
		}
		tw := output.Table(cmd.OutOrStdout())
		fmt.Fprintln(tw, "PATH\tLABEL")
		for _, f := range fields {
			fmt.Fprintf(tw, "%s\t%s\n", f.Path, f.Label)
		}
		return tw.Flush()
	},
}

func init() {
	rootCmd.AddCommand(entitiesCmd)
	rootCmd.AddCommand(fieldsCmd)
	fieldsCmd.Flags().BoolVar(&fieldsTarget, "target", false, "List target fields instead of source fields")
}
