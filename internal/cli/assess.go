package cli

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"os"

	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"

	"github.com/ppiankov/creditwatch/internal/tools"
	"github.com/ppiankov/creditwatch/internal/underwrite"
)

var (
	assessFile   string
	assessFormat string
)

func init() {
	rootCmd.AddCommand(assessCmd)
	assessCmd.Flags().StringVar(&assessFile, "file", "", "Applicant YAML or JSON file (- for stdin)")
	assessCmd.Flags().StringVarP(&assessFormat, "format", "f", "text", "Output format (text|json)")
	assessCmd.MarkFlagRequired("file")
}

var assessCmd = &cobra.Command{
	Use:   "assess",
	Short: "Assess a loan applicant",
	Long: "Runs every calculator whose inputs are present in the applicant file,\n" +
		"then the risk profile and composite score. Calculators with missing\n" +
		"inputs are skipped and listed in the report.",
	RunE: runAssess,
}

func runAssess(cmd *cobra.Command, args []string) error {
	applicant, err := loadApplicant(assessFile, cmd.InOrStdin())
	if err != nil {
		return err
	}
	raw, err := json.Marshal(applicant)
	if err != nil {
		return fmt.Errorf("encode applicant: %w", err)
	}

	reg, _, err := loadRegistry(configPath)
	if err != nil {
		return err
	}
	out, err := reg.Call(commandContext(cmd), tools.NameAssessApplicant, raw)
	if err != nil {
		return err
	}
	a := out.(underwrite.Assessment)

	switch assessFormat {
	case "json":
		s, err := underwrite.FormatJSON(a)
		if err != nil {
			return err
		}
		fmt.Fprintln(cmd.OutOrStdout(), s)
	default:
		fmt.Fprint(cmd.OutOrStdout(), underwrite.FormatText(a))
	}
	return nil
}

// loadApplicant decodes an applicant document. YAML is a superset of JSON,
// so one decoder serves both. Unknown keys are rejected.
func loadApplicant(path string, stdin io.Reader) (underwrite.Applicant, error) {
	var (
		data []byte
		err  error
	)
	if path == "-" {
		data, err = io.ReadAll(stdin)
	} else {
		data, err = os.ReadFile(path)
	}
	if err != nil {
		return underwrite.Applicant{}, fmt.Errorf("read applicant: %w", err)
	}

	var a underwrite.Applicant
	dec := yaml.NewDecoder(bytes.NewReader(data))
	dec.KnownFields(true)
	if err := dec.Decode(&a); err != nil && err != io.EOF {
		return underwrite.Applicant{}, fmt.Errorf("parse applicant %s: %w", path, err)
	}
	return a, nil
}
