// Package envdoctor implements the diagnostic CLI that reports on the bot's
// environment contract, resolved configuration and code store.
package envdoctor

import (
	"context"
	"fmt"
	"io"
	"os"
	"strings"
	"time"

	"github.com/olekukonko/tablewriter"
	"github.com/spf13/cobra"

	"aesthetic_doctor_bot/internal/config"
	"aesthetic_doctor_bot/internal/store"
)

type ExitCode int

const (
	exitCodeSuccess ExitCode = 0
	exitCodeError   ExitCode = 1

	storeTimeout = 10 * time.Second
)

// Variable states reported by the contract table.
const (
	StateSet     = "set"
	StateDefault = "default"
	StateUnset   = "unset"
	StateMissing = "MISSING"
)

var (
	lookupEnv  = os.LookupEnv
	loadConfig = config.Load
	countCodes = countMongoCodes
)

// VarStatus is the resolved state of one contract variable.
type VarStatus struct {
	Key      string
	Required bool
	State    string
	Value    string
}

// ContractStatus inspects every contract variable through lookup. Secret
// values are masked and URIs lose their credentials.
func ContractStatus(lookup func(string) (string, bool)) []VarStatus {
	statuses := make([]VarStatus, 0, len(config.Contract))

	for _, spec := range config.Contract {
		raw, _ := lookup(spec.Key)
		raw = strings.TrimSpace(raw)

		status := VarStatus{Key: spec.Key, Required: spec.Required}
		switch {
		case raw != "":
			status.State = StateSet
			status.Value = displayValue(spec, raw)
		case spec.Default != "":
			status.State = StateDefault
			status.Value = spec.Default
		case spec.Required:
			status.State = StateMissing
		default:
			status.State = StateUnset
		}

		statuses = append(statuses, status)
	}

	return statuses
}

func displayValue(spec config.VarSpec, raw string) string {
	if spec.Secret {
		if strings.Contains(raw, "://") {
			return config.RedactURI(raw)
		}
		return config.MaskSecret(raw)
	}
	return raw
}

// WriteContractTable renders statuses as a table.
func WriteContractTable(w io.Writer, statuses []VarStatus) {
	table := tablewriter.NewWriter(w)
	table.SetAutoWrapText(false)
	table.SetAutoFormatHeaders(false)
	table.SetHeaderAlignment(tablewriter.ALIGN_LEFT)
	table.SetAlignment(tablewriter.ALIGN_LEFT)
	table.SetBorder(true)
	table.SetHeader([]string{"Variable", "Required", "State", "Value"})

	for _, status := range statuses {
		required := ""
		if status.Required {
			required = "yes"
		}
		table.Append([]string{status.Key, required, status.State, status.Value})
	}

	table.Render()
}

// NewRootCmd builds the envdoctor command tree writing to out.
func NewRootCmd(out io.Writer) *cobra.Command {
	rootCmd := &cobra.Command{
		Use:           "envdoctor",
		Short:         "Diagnose the Aesthetic Doctor bot environment.",
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runContract(cmd.OutOrStdout())
		},
	}
	rootCmd.SetOut(out)

	rootCmd.AddCommand(
		&cobra.Command{
			Use:   "contract",
			Short: "Show which contract variables are set.",
			RunE: func(cmd *cobra.Command, args []string) error {
				return runContract(cmd.OutOrStdout())
			},
		},
		&cobra.Command{
			Use:   "config",
			Short: "Load the configuration and print it redacted.",
			RunE: func(cmd *cobra.Command, args []string) error {
				return runConfig(cmd.OutOrStdout())
			},
		},
		&cobra.Command{
			Use:   "codes",
			Short: "Count stored activation codes (mongo backend).",
			RunE: func(cmd *cobra.Command, args []string) error {
				return runCodes(cmd.Context(), cmd.OutOrStdout())
			},
		},
	)

	return rootCmd
}

// Run executes the CLI against the process arguments.
func Run() ExitCode {
	rootCmd := NewRootCmd(os.Stdout)
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "envdoctor: %v\n", err)
		return exitCodeError
	}
	return exitCodeSuccess
}

func runContract(out io.Writer) error {
	statuses := ContractStatus(lookupEnv)
	WriteContractTable(out, statuses)

	var missing []string
	for _, status := range statuses {
		if status.State == StateMissing {
			missing = append(missing, status.Key)
		}
	}
	if len(missing) > 0 {
		return fmt.Errorf("missing required variable(s): %s", strings.Join(missing, ", "))
	}
	return nil
}

func runConfig(out io.Writer) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}

	fmt.Fprintln(out, config.FormatRedacted(cfg))

	switch {
	case cfg.SupabaseURL == "" || cfg.SupabaseProdHost == "":
		fmt.Fprintln(out, "supabase host guard: inactive")
	default:
		host, _ := config.ExtractHost(cfg.SupabaseURL)
		fmt.Fprintf(out, "supabase host guard: ok (%s targets %s)\n", cfg.AppEnv, host)
	}
	return nil
}

func runCodes(ctx context.Context, out io.Writer) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}
	if cfg.CodesBackend != config.BackendMongo {
		return fmt.Errorf("code stats are only available for %s=%s", config.KeyCodesBackend, config.BackendMongo)
	}

	if ctx == nil {
		ctx = context.Background()
	}
	ctx, cancel := context.WithTimeout(ctx, storeTimeout)
	defer cancel()

	stats, err := countCodes(ctx, cfg)
	if err != nil {
		return err
	}

	fmt.Fprintf(out, "activation codes: %d total, %d active\n", stats.Total, stats.Active)
	return nil
}

func countMongoCodes(ctx context.Context, cfg config.Config) (store.CodeStats, error) {
	manager, err := store.NewManager(ctx, cfg)
	if err != nil {
		return store.CodeStats{}, err
	}
	defer manager.Close(context.Background())

	return store.NewStatsProvider(manager.Codes()).CountCodes(ctx, time.Now())
}
