package cli

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"

	"github.com/getmockd/fieldmap/pkg/cli/internal/output"
	"github.com/getmockd/fieldmap/pkg/cli/internal/parse"
	"github.com/getmockd/fieldmap/pkg/mapping"
	"github.com/getmockd/fieldmap/pkg/service"
)

var (
	saveSets     []string
	saveFormat   string
	saveStrict   bool
	testSets     []string
	testFormat   string
	validateSets []string
	exportFormat string
	exportOut    string
	importFormat string
	importStrict bool
	importDryRun bool
)

var mappingCmd = &cobra.Command{
	Use:     "mapping",
	Aliases: []string{"mappings", "map"},
	Short:   "Manage the field mapping of an entity type",
	Long: `Manage the rule set that maps source fields of an entity type onto target
fields. An entity type without a saved rule set uses the built-in defaults.`,
}

var mappingGetCmd = &cobra.Command{
	Use:   "get <entity>",
	Short: "Show the current rule set (saved or defaults)",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		a, entity, err := appForEntity(cmd, args[0])
		if err != nil {
			return err
		}
		defer a.close()

		rs, src, err := a.svc.GetRuleSet(cmd.Context(), entity)
		if err != nil {
			return err
		}
		if jsonOutput {
			return output.JSON(cmd.OutOrStdout(), map[string]any{
				"entity": entity,
				"source": src,
				"rules":  rs.Flat(),
			})
		}
		fmt.Fprintf(cmd.OutOrStdout(), "%s mapping (%s, %d rules)\n\n", entity, src, rs.Len())
		return printRules(cmd.OutOrStdout(), rs.Flat())
	},
}

var mappingSaveCmd = &cobra.Command{
	Use:   "save <entity> [file|-]",
	Short: "Validate and save a rule set",
	Long: `Validate and save a rule set for an entity type. The rules are read from a
JSON or YAML flat mapping file ("-" reads stdin), then adjusted with --set.
Without a file, --set edits the current rule set. "--set source=" removes a rule.`,
	Example: `  fieldmap mapping save contact contact_mapping.json
  fieldmap mapping save contact --set first_name=properties.firstname
  fieldmap mapping get contact --json | fieldmap mapping save contact -`,
	Args: cobra.RangeArgs(1, 2),
	RunE: func(cmd *cobra.Command, args []string) error {
		a, entity, err := appForEntity(cmd, args[0])
		if err != nil {
			return err
		}
		defer a.close()

		path := optionalArg(args, 1)
		if path == "" && len(saveSets) == 0 {
			return fmt.Errorf("nothing to save: pass a file, - for stdin, or --set source=target")
		}
		flat, err := resolveFlat(cmd, a, entity, path, saveFormat, saveSets)
		if err != nil {
			return err
		}
		return saveAndReport(cmd, a, entity, flat, saveStrict)
	},
}

var mappingTestCmd = &cobra.Command{
	Use:   "test <entity> [file|-]",
	Short: "Apply a rule set to a sample record",
	Long: `Apply a rule set to one sample record fetched from the source API and show
the resulting target record. Without a file or --set the current rule set is
tested. When the source API is unreachable a built-in sample is used.`,
	Args: cobra.RangeArgs(1, 2),
	RunE: func(cmd *cobra.Command, args []string) error {
		a, entity, err := appForEntity(cmd, args[0])
		if err != nil {
			return err
		}
		defer a.close()

		var flat mapping.FlatMapping
		path := optionalArg(args, 1)
		if path != "" || len(testSets) > 0 {
			if flat, err = resolveFlat(cmd, a, entity, path, testFormat, testSets); err != nil {
				return err
			}
		}

		report, err := a.svc.TestMapping(cmd.Context(), entity, flat)
		if err != nil {
			return err
		}
		return printTestReport(cmd, report)
	},
}

var mappingValidateCmd = &cobra.Command{
	Use:   "validate <entity> [file|-]",
	Short: "Check a rule set against the field catalogs without saving",
	Long: `Check a rule set against the source and target field catalogs. Without a
file the current rule set is checked. Exits non-zero when issues are found.`,
	Args: cobra.RangeArgs(1, 2),
	RunE: func(cmd *cobra.Command, args []string) error {
		a, entity, err := appForEntity(cmd, args[0])
		if err != nil {
			return err
		}
		defer a.close()

		flat, err := resolveFlat(cmd, a, entity, optionalArg(args, 1), "", validateSets)
		if err != nil {
			return err
		}
		rs, issues, err := a.svc.ValidateRuleSet(cmd.Context(), entity, flat)
		if err != nil {
			return err
		}

		if jsonOutput {
			if err := output.JSON(cmd.OutOrStdout(), map[string]any{
				"entity": entity,
				"valid":  len(issues) == 0,
				"rules":  rs.Flat(),
				"issues": nonNilIssues(issues),
			}); err != nil {
				return err
			}
		} else if len(issues) == 0 {
			fmt.Fprintf(cmd.OutOrStdout(), "%s mapping is valid (%d rules)\n", entity, rs.Len())
		} else {
			for _, issue := range issues {
				fmt.Fprintln(cmd.OutOrStdout(), issue.String())
			}
		}

		if len(issues) > 0 {
			return fmt.Errorf("%d validation issue(s) found", len(issues))
		}
		return nil
	},
}

var mappingExportCmd = &cobra.Command{
	Use:   "export <entity>",
	Short: "Export the current rule set as JSON or YAML",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		a, entity, err := appForEntity(cmd, args[0])
		if err != nil {
			return err
		}
		defer a.close()

		f, err := formatArg(exportFormat, exportOut)
		if err != nil {
			return err
		}
		data, err := a.svc.ExportRuleSet(cmd.Context(), entity, f)
		if err != nil {
			return err
		}

		if exportOut == "" || exportOut == "-" {
			_, err = cmd.OutOrStdout().Write(data)
			return err
		}
		if err := os.WriteFile(exportOut, data, 0o644); err != nil {
			return fmt.Errorf("write export: %w", err)
		}
		fmt.Fprintf(cmd.OutOrStdout(), "Exported %s mapping to %s\n", entity, exportOut)
		return nil
	},
}

var mappingImportCmd = &cobra.Command{
	Use:   "import <entity> <file|->",
	Short: "Import an exported rule set and save it",
	Args:  cobra.ExactArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		a, entity, err := appForEntity(cmd, args[0])
		if err != nil {
			return err
		}
		defer a.close()

		flat, err := readFlatFile(cmd, a, args[1], importFormat)
		if err != nil {
			return err
		}
		if importDryRun {
			if jsonOutput {
				return output.JSON(cmd.OutOrStdout(), map[string]any{"entity": entity, "rules": flat})
			}
			return printRules(cmd.OutOrStdout(), flat)
		}
		return saveAndReport(cmd, a, entity, flat, importStrict)
	},
}

var mappingDeleteCmd = &cobra.Command{
	Use:     "delete <entity>",
	Aliases: []string{"rm", "reset"},
	Short:   "Delete the saved rule set so the defaults apply again",
	Args:    cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		a, entity, err := appForEntity(cmd, args[0])
		if err != nil {
			return err
		}
		defer a.close()

		if err := a.svc.DeleteRuleSet(cmd.Context(), entity); err != nil {
			return err
		}
		if jsonOutput {
			return output.JSON(cmd.OutOrStdout(), map[string]any{"entity": entity, "status": "deleted"})
		}
		fmt.Fprintf(cmd.OutOrStdout(), "Deleted %s mapping; defaults apply again\n", entity)
		return nil
	},
}

// appForEntity builds the app and checks the entity argument.
func appForEntity(cmd *cobra.Command, arg string) (*app, mapping.EntityType, error) {
	a, err := newApp(cmd, appOptions{})
	if err != nil {
		return nil, "", err
	}
	entity, err := a.entityArg(arg)
	if err != nil {
		a.close()
		return nil, "", err
	}
	return a, entity, nil
}

func optionalArg(args []string, i int) string {
	if len(args) > i {
		return args[i]
	}
	return ""
}

// resolveFlat reads path when given, otherwise starts from the current rule
// set, then applies the --set assignments.
func resolveFlat(cmd *cobra.Command, a *app, entity mapping.EntityType, path, format string, sets []string) (mapping.FlatMapping, error) {
	assigns, err := parse.Assignments(sets)
	if err != nil {
		return nil, err
	}

	var base mapping.FlatMapping
	if path != "" {
		if base, err = readFlatFile(cmd, a, path, format); err != nil {
			return nil, err
		}
	} else {
		rs, _, err := a.svc.GetRuleSet(cmd.Context(), entity)
		if err != nil {
			return nil, err
		}
		base = rs.Flat()
	}
	return applyAssignments(base, assigns), nil
}

// readFlatFile reads a flat mapping from path ("-" is stdin). A JSON
// document may also be the {"rules": {...}} envelope printed by get --json.
func readFlatFile(cmd *cobra.Command, a *app, path, format string) (mapping.FlatMapping, error) {
	f, err := formatArg(format, path)
	if err != nil {
		return nil, err
	}

	var data []byte
	if path == "-" {
		data, err = io.ReadAll(cmd.InOrStdin())
	} else {
		data, err = os.ReadFile(path)
	}
	if err != nil {
		return nil, fmt.Errorf("read %s: %w", path, err)
	}

	if f == mapping.FormatJSON {
		data = unwrapRules(data)
	}
	return a.svc.ImportRuleSet(data, f)
}

func unwrapRules(data []byte) []byte {
	var envelope map[string]json.RawMessage
	if json.Unmarshal(data, &envelope) != nil {
		return data
	}
	inner, ok := envelope["rules"]
	if !ok || !bytes.HasPrefix(bytes.TrimSpace(inner), []byte("{")) {
		return data
	}
	for k := range envelope {
		if k != "rules" && k != "entity" && k != "source" {
			return data
		}
	}
	return inner
}

// formatArg resolves an explicit --format, or infers one from path's
// extension. Unknown extensions are read as JSON.
func formatArg(name, path string) (mapping.Format, error) {
	if name != "" {
		f := mapping.ParseFormat(name)
		if f == mapping.FormatUnknown {
			return f, fmt.Errorf("unsupported format %q (use json or yaml)", name)
		}
		return f, nil
	}
	if path != "" && path != "-" {
		if f := mapping.ParseFormat(filepath.Ext(path)); f != mapping.FormatUnknown {
			return f, nil
		}
	}
	return mapping.FormatJSON, nil
}

// applyAssignments returns a copy of flat with each assignment applied in
// order: an existing source keeps its position, a new one is appended and an
// empty target removes the rule.
func applyAssignments(flat mapping.FlatMapping, assigns []parse.Assignment) mapping.FlatMapping {
	out := make(mapping.FlatMapping, len(flat), len(flat)+len(assigns))
	copy(out, flat)
	for _, as := range assigns {
		idx := -1
		for i, p := range out {
			if p.Source == as.Source {
				idx = i
				break
			}
		}
		switch {
		case as.Target == "" && idx >= 0:
			out = append(out[:idx], out[idx+1:]...)
		case as.Target == "":
		case idx >= 0:
			out[idx].Target = as.Target
		default:
			out = append(out, mapping.Pair{Source: as.Source, Target: as.Target})
		}
	}
	return out
}

func saveAndReport(cmd *cobra.Command, a *app, entity mapping.EntityType, flat mapping.FlatMapping, strict bool) error {
	rs, issues, err := a.svc.SaveRuleSet(cmd.Context(), entity, flat, service.SaveOptions{Strict: strict})
	if err != nil {
		return err
	}
	if jsonOutput {
		return output.JSON(cmd.OutOrStdout(), map[string]any{
			"status": "saved",
			"entity": entity,
			"rules":  rs.Flat(),
			"issues": nonNilIssues(issues),
		})
	}
	for _, issue := range issues {
		output.Warn(cmd.ErrOrStderr(), "%s", issue)
	}
	fmt.Fprintf(cmd.OutOrStdout(), "Saved %d rules for %s\n", rs.Len(), entity)
	return nil
}

func printRules(w io.Writer, flat mapping.FlatMapping) error {
	tw := output.Table(w)
	fmt.Fprintln(tw, "SOURCE\tTARGET")
	for _, p := range flat {
		fmt.Fprintf(tw, "%s\t%s\n", p.Source, p.Target)
	}
	return tw.Flush()
}

// testReportJSON mirrors the body of POST /test-mapping/{entity}.
type testReportJSON struct {
	Entity         mapping.EntityType  `json:"entity"`
	Rules          mapping.FlatMapping `json:"rules"`
	SampleOutput   map[string]any      `json:"sample_output"`
	Unresolved     []string            `json:"unresolved"`
	Collisions     []string            `json:"collisions"`
	Issues         []mapping.Issue     `json:"issues"`
	Sample         map[string]any      `json:"sample"`
	SampleFallback bool                `json:"sample_fallback"`
}

func printTestReport(cmd *cobra.Command, report *service.TestReport) error {
	body := testReportJSON{
		Entity:         report.Entity,
		Rules:          report.Rules,
		SampleOutput:   report.Result.Output,
		Unresolved:     nonNilStrings(report.Result.UnresolvedPaths()),
		Collisions:     nonNilStrings(report.Result.CollisionPaths()),
		Issues:         nonNilIssues(report.Issues),
		Sample:         report.Sample,
		SampleFallback: report.SampleFallback,
	}
	if jsonOutput {
		return output.JSON(cmd.OutOrStdout(), body)
	}

	w := cmd.OutOrStdout()
	if body.SampleFallback {
		output.Warn(cmd.ErrOrStderr(), "source API unavailable, using built-in %s sample", report.Entity)
	}
	fmt.Fprintln(w, "Output:")
	if err := output.JSON(w, body.SampleOutput); err != nil {
		return err
	}
	for _, p := range body.Unresolved {
		fmt.Fprintf(w, "unresolved: %s\n", p)
	}
	for _, p := range body.Collisions {
		fmt.Fprintf(w, "collision: %s\n", p)
	}
	for _, issue := range body.Issues {
		output.Warn(cmd.ErrOrStderr(), "%s", issue)
	}
	return nil
}

func nonNilStrings(s []string) []string {
	if s == nil {
		return []string{}
	}
	return s
}

func nonNilIssues(issues []mapping.Issue) []mapping.Issue {
	if issues == nil {
		return []mapping.Issue{}
	}
	return issues
}

func init() {
	rootCmd.AddCommand(mappingCmd)
	mappingCmd.AddCommand(mappingGetCmd, mappingSaveCmd, mappingTestCmd, mappingValidateCmd,
		mappingExportCmd, mappingImportCmd, mappingDeleteCmd)

	mappingSaveCmd.Flags().StringArrayVar(&saveSets, "set", nil, "Set a rule as source=target (repeatable; empty target removes)")
	mappingSaveCmd.Flags().StringVar(&saveFormat, "format", "", "Input format: json or yaml (default: from file extension)")
	mappingSaveCmd.Flags().BoolVar(&saveStrict, "strict", false, "Reject rule sets that map two sources onto one target")

	mappingTestCmd.Flags().StringArrayVar(&testSets, "set", nil, "Set a rule as source=target (repeatable)")
	mappingTestCmd.Flags().StringVar(&testFormat, "format", "", "Input format: json or yaml (default: from file extension)")

	mappingValidateCmd.Flags().StringArrayVar(&validateSets, "set", nil, "Set a rule as source=target (repeatable)")

	mappingExportCmd.Flags().StringVar(&exportFormat, "format", "", "Output format: json or yaml (default: from -o extension, else json)")
	mappingExportCmd.Flags().StringVarP(&exportOut, "output", "o", "", "Write to file instead of stdout")

	mappingImportCmd.Flags().StringVar(&importFormat, "format", "", "Input format: json or yaml (default: from file extension)")
	mappingImportCmd.Flags().BoolVar(&importStrict, "strict", false, "Reject rule sets that map two sources onto one target")
	mappingImportCmd.Flags().BoolVar(&importDryRun, "dry-run", false, "Print the parsed rules without saving")
}
