package cli

import (
	"errors"
	"fmt"
	"io"
	"os"

	"github.com/charmbracelet/huh"
	"github.com/mattn/go-isatty"
	"github.com/spf13/cobra"

	"github.com/getmockd/fieldmap/pkg/cli/internal/parse"
	"github.com/getmockd/fieldmap/pkg/mapping"
)

var editSets []string

// usageError is a command error that carries a suggestion.
type usageError struct {
	msg  string
	hint string
}

func (e *usageError) Error() string { return e.msg }
func (e *usageError) Hint() string  { return e.hint }

var mappingEditCmd = &cobra.Command{
	Use:   "edit <entity>",
	Short: "Edit a rule set with an interactive form",
	Long: `Edit the rule set of an entity type. On a terminal a form lists every source
field with a picker of target fields. Elsewhere, pass the changes with --set.`,
	Example: `  fieldmap mapping edit contact
  fieldmap mapping edit contact --set company=properties.company --set phone=`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		a, entity, err := appForEntity(cmd, args[0])
		if err != nil {
			return err
		}
		defer a.close()

		if len(editSets) > 0 {
			flat, err := resolveFlat(cmd, a, entity, "", "", editSets)
			if err != nil {
				return err
			}
			return saveAndReport(cmd, a, entity, flat, false)
		}

		if !isTerminal(cmd.InOrStdin()) {
			return &usageError{
				msg:  "mapping edit needs a terminal",
				hint: fmt.Sprintf("pass changes with --set, e.g. fieldmap mapping edit %s --set source=target", entity),
			}
		}

		flat, err := runEditForm(cmd, a, entity)
		if errors.Is(err, huh.ErrUserAborted) {
			fmt.Fprintln(cmd.OutOrStdout(), "Edit canceled; nothing saved")
			return nil
		}
		if err != nil {
			return err
		}
		return saveAndReport(cmd, a, entity, flat, false)
	},
}

func isTerminal(r io.Reader) bool {
	f, ok := r.(*os.File)
	if !ok {
		return false
	}
	return isatty.IsTerminal(f.Fd()) || isatty.IsCygwinTerminal(f.Fd())
}

// editRow is one source field in the edit form.
type editRow struct {
	Source string
	Label  string
	Target string
}

// editRows lists every catalog source field with its current target, then
// mapped sources the catalog does not know, in rule order.
func editRows(current mapping.FlatMapping, sources []mapping.Field) []editRow {
	targets := current.Map()
	rows := make([]editRow, 0, len(sources)+len(current))
	seen := make(map[string]bool, len(sources))
	for _, f := range sources {
		if seen[f.Path] {
			continue
		}
		seen[f.Path] = true
		label := f.Label
		if label == "" {
			label = f.Path
		}
		rows = append(rows, editRow{Source: f.Path, Label: label, Target: targets[f.Path]})
	}
	for _, p := range current {
		if !seen[p.Source] {
			seen[p.Source] = true
			rows = append(rows, editRow{Source: p.Source, Label: p.Source, Target: p.Target})
		}
	}
	return rows
}

// targetOptions builds the picker for one row. current is kept as an option
// even when the target catalog does not list it.
func targetOptions(targets []mapping.Field, current string) []huh.Option[string] {
	opts := make([]huh.Option[string], 0, len(targets)+2)
	opts = append(opts, huh.NewOption("(not mapped)", ""))
	found := current == ""
	for _, f := range targets {
		if f.Path == current {
			found = true
		}
		opts = append(opts, huh.NewOption(fmt.Sprintf("%s (%s)", f.Label, f.Path), f.Path))
	}
	if !found {
		opts = append(opts, huh.NewOption(current, current))
	}
	return opts
}

// rowsToFlat applies the form result to current. Rows left unmapped drop
// their rule; existing rules keep their position.
func rowsToFlat(current mapping.FlatMapping, rows []editRow) mapping.FlatMapping {
	assigns := make([]parse.Assignment, 0, len(rows))
	for _, r := range rows {
		assigns = append(assigns, parse.Assignment{Source: r.Source, Target: r.Target})
	}
	return applyAssignments(current, assigns)
}

func runEditForm(cmd *cobra.Command, a *app, entity mapping.EntityType) (mapping.FlatMapping, error) {
	ctx := cmd.Context()
	rs, src, err := a.svc.GetRuleSet(ctx, entity)
	if err != nil {
		return nil, err
	}
	sources, _, err := a.svc.SourceFields(ctx, entity)
	if err != nil {
		return nil, err
	}
	targets, err := a.svc.TargetFields(ctx, entity)
	if err != nil {
		return nil, err
	}

	current := rs.Flat()
	rows := editRows(current, sources)
	fields := make([]huh.Field, 0, len(rows))
	for i := range rows {
		fields = append(fields, huh.NewSelect[string]().
			Title(rows[i].Label).
			Description(rows[i].Source).
			Options(targetOptions(targets, rows[i].Target)...).
			Height(8).
			Value(&rows[i].Target))
	}

	save := true
	form := huh.NewForm(
		huh.NewGroup(fields...).
			Title(fmt.Sprintf("%s mapping", entity.Label())).
			Description(fmt.Sprintf("Starting from the %s rule set", src)),
		huh.NewGroup(
			huh.NewConfirm().
				Title("Save this mapping?").
				Affirmative("Save").
				Negative("Cancel").
				Value(&save),
		),
	).WithInput(cmd.InOrStdin()).WithOutput(cmd.OutOrStdout())

	if err := form.Run(); err != nil {
		return nil, err
	}
	if !save {
		return nil, huh.ErrUserAborted
	}
	return rowsToFlat(current, rows), nil
}

func init() {
	mappingCmd.AddCommand(mappingEditCmd)
	mappingEditCmd.Flags().StringArrayVar(&editSets, "set", nil, "Set a rule as source=target instead of opening the form (repeatable; empty target removes)")
}
