package cli

import (
	"fmt"
	"io"
	"os"

	"github.com/bytedance/sonic"
	"github.com/spf13/cobra"

	"intakeform/pkg/autosave"
	"intakeform/pkg/config"
	"intakeform/pkg/evaluator"
	"intakeform/pkg/form"
)

func newCheckCommand() *cobra.Command {
	var formConfig string
	cmd := &cobra.Command{
		Use:   "check <snapshot.json>",
		Short: "Validate a form snapshot or a saved draft record",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			raw, err := os.ReadFile(args[0])
			if err != nil {
				return fmt.Errorf("failed to read '%s': %w", args[0], err)
			}
			snap, err := decodeSnapshot(raw)
			if err != nil {
				return fmt.Errorf("'%s': %w", args[0], err)
			}
			forms, err := config.LoadFormConfig(formConfig)
			if err != nil {
				return err
			}
			return report(cmd.OutOrStdout(), forms, snap)
		},
	}
	cmd.Flags().StringVar(&formConfig, "form", "", "form catalogue yaml (default: embedded)")
	return cmd
}

// decodeSnapshot accepts a bare snapshot or a saved {data, timestamp} record.
func decodeSnapshot(raw []byte) (form.Snapshot, error) {
	if rec, err := autosave.Decode(string(raw)); err == nil {
		return rec.Data, nil
	}
	var snap form.Snapshot
	if err := sonic.ConfigStd.Unmarshal(raw, &snap); err != nil {
		return nil, err
	}
	return snap, nil
}

func completionColor(c evaluator.Completion) func(a ...interface{}) string {
	switch c {
	case evaluator.CompletionComplete:
		return green
	case evaluator.CompletionPartial:
		return yellow
	default:
		return gray
	}
}

// report prints section completion and submit-time errors. It returns an
// error when the form would be blocked.
func report(w io.Writer, forms *config.FormConfig, snap form.Snapshot) error {
	fmt.Fprintln(w, bold("Sections"))
	for _, section := range form.Sections() {
		c := evaluator.SectionCompletion(section.ID, snap)
		fmt.Fprintf(w, "  %-24s %s\n", forms.SectionTitle(section.ID), completionColor(c)(string(c)))
	}

	errs := evaluator.ValidateForm(snap, nil)
	if len(errs) == 0 {
		fmt.Fprintln(w, green("Ready to submit."))
		return nil
	}

	fmt.Fprintln(w, bold("Errors"))
	for _, f := range form.Fields() {
		if msg, ok := errs[f.ID]; ok {
			fmt.Fprintf(w, "  %s %s\n", red(forms.FieldLabel(f.ID)+":"), msg)
		}
	}
	return fmt.Errorf("form has %d validation error(s)", len(errs))
}
