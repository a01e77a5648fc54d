package main

import (
	"context"
	"encoding/hex"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/pkg/errors"
	"github.com/spf13/cobra"

	"arc56/internal/api"
	"arc56/internal/arc56"
	"arc56/internal/client"
	"arc56/internal/models"
	"arc56/internal/state"
)

// withEnv runs fn with a wired environment and closes it afterwards
func withEnv(fn func(cmd *cobra.Command, args []string, e *env) error) func(*cobra.Command, []string) error {
	return func(cmd *cobra.Command, args []string) error {
		e, err := newEnv(cmd.Context(), cmd, configFile)
		if err != nil {
			return err
		}
		defer e.Close()
		return fn(cmd, args, e)
	}
}

func newInspectCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "inspect",
		Short: "Describe the contract and its methods.",
		Args:  cobra.NoArgs,
		RunE: withEnv(func(cmd *cobra.Command, _ []string, e *env) error {
			contract := e.client.Contract()
			methods := make([]models.MethodResponse, len(contract.Methods))
			for i := range contract.Methods {
				methods[i] = api.BuildMethodResponse(&contract.Methods[i])
			}
			return printJSON(cmd, map[string]any{
				"contract": api.BuildContractResponse(e.client),
				"methods":  methods,
			})
		}),
	}
}

func newParamsCmd() *cobra.Command {
	var flags callFlags
	cmd := &cobra.Command{
		Use:   "params <method> [json-arg...]",
		Short: "Build the parameters of a call without submitting it.",
		Args:  cobra.MinimumNArgs(1),
		RunE: withEnv(func(cmd *cobra.Command, args []string, e *env) error {
			opts, err := flags.options(e.client, args[0], args[1:])
			if err != nil {
				return err
			}
			call, err := e.client.Params(args[0], opts)
			if err != nil {
				return err
			}
			method, _ := e.client.Contract().Method(args[0])
			return printJSON(cmd, api.BuildParamsResponse(method, call))
		}),
	}
	flags.register(cmd)
	return cmd
}

func newCallCmd() *cobra.Command {
	var (
		flags  callFlags
		action string
	)
	cmd := &cobra.Command{
		Use:   "call <method> [json-arg...]",
		Short: "Submit a method call and print its decoded return value.",
		Args:  cobra.MinimumNArgs(1),
		RunE: withEnv(func(cmd *cobra.Command, args []string, e *env) error {
			oc, err := arc56.ParseOnComplete(action)
			if err != nil {
				return err
			}
			opts, err := flags.options(e.client, args[0], args[1:])
			if err != nil {
				return err
			}
			result, err := e.client.CallWithAction(cmd.Context(), args[0], oc, opts)
			if err != nil {
				return err
			}
			return printJSON(cmd, models.CallResponse{
				TxIDs:       result.TxIDs,
				Round:       result.Round,
				ReturnValue: result.ReturnValue,
			})
		}),
	}
	flags.register(cmd)
	cmd.Flags().StringVar(&action, "action", string(arc56.NoOp), "OnComplete action: NoOp, OptIn, CloseOut, ClearState, UpdateApplication or DeleteApplication.")
	return cmd
}

func newCreateCmd() *cobra.Command {
	var (
		flags      callFlags
		onComplete string
		templates  map[string]string
		extraPages uint32
	)
	cmd := &cobra.Command{
		Use:   "create <method> [json-arg...]",
		Short: "Compile the programs and create the application.",
		Args:  cobra.MinimumNArgs(1),
		RunE: withEnv(func(cmd *cobra.Command, args []string, e *env) error {
			oc, err := arc56.ParseOnComplete(onComplete)
			if err != nil {
				return err
			}
			opts, err := flags.options(e.client, args[0], args[1:])
			if err != nil {
				return err
			}
			values, err := templateValues(e.client.Contract(), templates)
			if err != nil {
				return err
			}

			result, err := e.client.Create(cmd.Context(), args[0], client.CreateOptions{
				CallOptions:       opts,
				OnComplete:        oc,
				TemplateVariables: values,
				ExtraPages:        extraPages,
			})
			if err != nil {
				return err
			}
			return printJSON(cmd, map[string]any{
				"app_id":       result.AppID,
				"app_address":  result.AppAddress,
				"tx_ids":       result.TxIDs,
				"round":        result.Round,
				"return_value": result.ReturnValue,
			})
		}),
	}
	flags.register(cmd)
	cmd.Flags().StringVar(&onComplete, "on-complete", string(arc56.NoOp), "OnComplete action of the creating call.")
	cmd.Flags().StringToStringVar(&templates, "template", nil, "Template variable as name=value; byte values may be 0x hex.")
	cmd.Flags().Uint32Var(&extraPages, "extra-pages", 0, "Extra program pages to reserve.")
	return cmd
}

func newUpdateCmd() *cobra.Command {
	var (
		flags     callFlags
		templates map[string]string
	)
	cmd := &cobra.Command{
		Use:   "update <method> [json-arg...]",
		Short: "Recompile the programs and update the bound application.",
		Args:  cobra.MinimumNArgs(1),
		RunE: withEnv(func(cmd *cobra.Command, args []string, e *env) error {
			opts, err := flags.options(e.client, args[0], args[1:])
			if err != nil {
				return err
			}
			values, err := templateValues(e.client.Contract(), templates)
			if err != nil {
				return err
			}
			result, err := e.client.Update(cmd.Context(), args[0], client.UpdateOptions{
				CallOptions:       opts,
				TemplateVariables: values,
			})
			if err != nil {
				return err
			}
			return printJSON(cmd, models.CallResponse{TxIDs: result.TxIDs, Round: result.Round, ReturnValue: result.ReturnValue})
		}),
	}
	flags.register(cmd)
	cmd.Flags().StringToStringVar(&templates, "template", nil, "Template variable as name=value; byte values may be 0x hex.")
	return cmd
}

func newStateCmd() *cobra.Command {
	var address string
	stateCmd := &cobra.Command{
		Use:   "state",
		Short: "Read the storage of the bound application.",
	}
	stateCmd.PersistentFlags().StringVar(&address, "address", "", "Account whose local state is read.")

	keyCmd := &cobra.Command{
		Use:   "key <name>",
		Short: "Read a declared storage key.",
		Args:  cobra.ExactArgs(1),
		RunE: withEnv(func(cmd *cobra.Command, args []string, e *env) error {
			ns, _, _ := e.client.Contract().State.Key(args[0])
			value, err := e.client.State().Key(cmd.Context(), args[0], address)
			if err != nil {
				return err
			}
			return printJSON(cmd, models.StateValueResponse{Name: args[0], Namespace: string(ns), Value: value})
		}),
	}

	var showKey bool
	mapCmd := &cobra.Command{
		Use:   "map <name> <json-key>",
		Short: "Read one entry of a declared storage map.",
		Args:  cobra.ExactArgs(2),
		RunE: withEnv(func(cmd *cobra.Command, args []string, e *env) error {
			ns, m, ok := e.client.Contract().State.Map(args[0])
			if !ok {
				return errors.Wrapf(state.ErrUnknownStorageName, "map %q", args[0])
			}
			mapKey, err := e.client.Codec().FromJSON(m.KeyType, []byte(args[1]))
			if err != nil {
				return err
			}

			if showKey {
				_, storageKey, err := e.client.State().MapKey(args[0], mapKey)
				if err != nil {
					return err
				}
				return printJSON(cmd, map[string]string{"namespace": string(ns), "key": hex.EncodeToString(storageKey)})
			}

			value, err := e.client.State().Map(cmd.Context(), args[0], mapKey, address)
			if err != nil {
				return err
			}
			return printJSON(cmd, models.StateValueResponse{Name: args[0], Namespace: string(ns), Value: value})
		}),
	}
	mapCmd.Flags().BoolVar(&showKey, "show-key", false, "Print the computed storage key instead of reading it.")

	dumpCmd := &cobra.Command{
		Use:   "dump",
		Short: "Read every declared storage key.",
		Args:  cobra.NoArgs,
		RunE: withEnv(func(cmd *cobra.Command, _ []string, e *env) error {
			values, err := e.client.State().Dump(cmd.Context(), address)
			if err != nil {
				return err
			}
			return printJSON(cmd, values)
		}),
	}

	stateCmd.AddCommand(keyCmd, mapCmd, dumpCmd)
	return stateCmd
}

func newServeCmd() *cobra.Command {
	var port int
	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Serve the client, the recorded history and metrics over HTTP.",
		Args:  cobra.NoArgs,
		RunE: withEnv(func(cmd *cobra.Command, _ []string, e *env) error {
			if !cmd.Flags().Changed("port") {
				port = e.cfg.APIPort
			}
			server := api.NewServer(port, e.client, e.repository, e.log)
			if err := server.Start(); err != nil {
				return err
			}

			// Wait for interrupt
			sigChan := make(chan os.Signal, 1)
			signal.Notify(sigChan, os.Interrupt, syscall.SIGTERM)
			select {
			case <-sigChan:
				e.log.Warnw("Interrupt received, shutting down")
			case <-cmd.Context().Done():
			}

			ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
			defer cancel()
			return server.Shutdown(ctx)
		}),
	}
	cmd.Flags().IntVar(&port, "port", 0, "Port to listen on (defaults to the configured api_port).")
	return cmd
}

func newDeploymentsCmd() *cobra.Command {
	var limit, offset int
	cmd := &cobra.Command{
		Use:   "deployments",
		Short: "List recorded deployments.",
		Args:  cobra.NoArgs,
		RunE: withEnv(func(cmd *cobra.Command, _ []string, e *env) error {
			deployments, err := e.repository.ListDeployments(cmd.Context(), limit, offset)
			if err != nil {
				return err
			}
			return printJSON(cmd, deployments)
		}),
	}
	cmd.Flags().IntVar(&limit, "limit", 50, "Maximum number of deployments.")
	cmd.Flags().IntVar(&offset, "offset", 0, "Deployments to skip.")
	return cmd
}

func newActivitiesCmd() *cobra.Command {
	var filter models.ActivityFilter
	cmd := &cobra.Command{
		Use:   "activities",
		Short: "List recorded calls of the bound application.",
		Args:  cobra.NoArgs,
		RunE: withEnv(func(cmd *cobra.Command, _ []string, e *env) error {
			filter.AppID = e.client.AppID()
			activities, err := e.repository.ListActivities(cmd.Context(), filter)
			if err != nil {
				return err
			}
			return printJSON(cmd, activities)
		}),
	}
	cmd.Flags().StringVar(&filter.Method, "method", "", "Only calls of this method.")
	cmd.Flags().StringVar(&filter.Sender, "from", "", "Only calls from this sender.")
	cmd.Flags().BoolVar(&filter.SuccessOnly, "success-only", false, "Only successful calls.")
	cmd.Flags().IntVar(&filter.Limit, "limit", 50, "Maximum number of calls.")
	cmd.Flags().IntVar(&filter.Offset, "offset", 0, "Calls to skip.")
	return cmd
}
