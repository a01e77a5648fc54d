package main

import (
	"encoding/hex"
	"encoding/json"
	"strings"

	"github.com/spf13/cobra"

	"arc56/internal/arc56"
	"arc56/internal/client"
)

// configFile is the optional yaml/json/toml configuration file
var configFile string

func newRootCmd() *cobra.Command {
	rootCmd := &cobra.Command{
		Use:           "arc56 [command] [flags]",
		Short:         "Typed client for Algorand applications described by an ARC-56 document.",
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	flags := rootCmd.PersistentFlags()
	flags.StringVarP(&configFile, "config", "c", "", "Configuration file; ARC56_* environment variables and flags override it.")
	flags.String("algod-url", "", "Algod node URL.")
	flags.String("algod-token", "", "Algod API token.")
	flags.String("spec", "", "Path to the ARC-56 document.")
	flags.Uint64("app-id", 0, "Application to bind; 0 when it has not been created.")
	flags.String("sender", "", "Default sender address.")
	flags.String("log-level", "", "Log level: debug, info, warn or error.")
	flags.String("log-format", "", "Log format: console, json or text.")
	flags.String("store", "", "History store: none, postgres or bolt.")
	flags.String("database", "", "Postgres connection URL.")
	flags.String("bolt-path", "", "Bolt database file.")

	rootCmd.AddCommand(
		newInspectCmd(),
		newParamsCmd(),
		newCallCmd(),
		newCreateCmd(),
		newUpdateCmd(),
		newStateCmd(),
		newServeCmd(),
		newDeploymentsCmd(),
		newActivitiesCmd(),
	)
	return rootCmd
}

// callFlags holds the transaction options shared by every submitting command
type callFlags struct {
	fee            uint64
	flatFee        bool
	note           string
	validityWindow uint64
	extra          map[string]string
}

func (f *callFlags) register(cmd *cobra.Command) {
	cmd.Flags().Uint64Var(&f.fee, "fee", 0, "Fee per byte, or the total fee with --flat-fee.")
	cmd.Flags().BoolVar(&f.flatFee, "flat-fee", false, "Use --fee as the total fee.")
	cmd.Flags().StringVar(&f.note, "note", "", "Transaction note.")
	cmd.Flags().Uint64Var(&f.validityWindow, "validity-window", 0, "Rounds the transaction stays valid.")
	cmd.Flags().StringToStringVar(&f.extra, "option", nil, "Additional call option as key=value.")
}

// options converts the flags and the JSON arguments of method into call options
func (f *callFlags) options(c *client.AppClient, method string, rawArgs []string) (client.CallOptions, error) {
	raw := make([]json.RawMessage, len(rawArgs))
	for i, a := range rawArgs {
		raw[i] = json.RawMessage(a)
	}
	args, err := c.ArgsFromJSON(method, raw)
	if err != nil {
		return client.CallOptions{}, err
	}

	opts := client.CallOptions{
		Args:           args,
		Fee:            f.fee,
		FlatFee:        f.flatFee,
		Note:           f.note,
		ValidityWindow: f.validityWindow,
	}
	if len(f.extra) > 0 {
		opts.Extra = make(map[string]any, len(f.extra))
		for k, v := range f.extra {
			opts.Extra[k] = v
		}
	}
	return opts, nil
}

// templateValues converts name=value flags into substitution values.
// Byte variables given as 0x-prefixed hex are decoded, other values are passed as text.
func templateValues(contract *arc56.Contract, raw map[string]string) (map[string]any, error) {
	values := make(map[string]any, len(raw))
	for name, value := range raw {
		typ := contract.TemplateVariables[name]
		if typ != "uint64" && typ != "AVMUint64" && strings.HasPrefix(value, "0x") {
			decoded, err := hex.DecodeString(value[2:])
			if err != nil {
				return nil, err
			}
			values[name] = decoded
			continue
		}
		values[name] = value
	}
	return values, nil
}

func printJSON(cmd *cobra.Command, v any) error {
	out, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return err
	}
	_, err = cmd.OutOrStdout().Write(append(out, '\n'))
	return err
}
