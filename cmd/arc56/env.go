package main

import (
	"context"

	"github.com/algorand/go-algorand-sdk/v2/crypto"
	"github.com/algorand/go-algorand-sdk/v2/mnemonic"
	"github.com/algorand/go-algorand-sdk/v2/transaction"
	"github.com/pkg/errors"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"arc56/internal/arc56"
	"arc56/internal/client"
	"arc56/internal/config"
	"arc56/internal/ledger"
	"arc56/internal/logging"
	"arc56/internal/orchestrator"
	"arc56/internal/services"
	"arc56/internal/storage"
)

// flagKeys maps persistent flags onto configuration keys
var flagKeys = map[string]string{
	"algod-url":   "algod_url",
	"algod-token": "algod_token",
	"spec":        "spec_path",
	"app-id":      "app_id",
	"sender":      "sender",
	"log-level":   "log_level",
	"log-format":  "log_format",
	"store":       "store_driver",
	"database":    "database_url",
	"bolt-path":   "bolt_path",
}

// env is everything a command needs, built once from configuration
type env struct {
	cfg        *config.Config
	log        logging.Logger
	repository storage.Repository
	client     *client.AppClient
}

func bindFlags(v *viper.Viper, cmd *cobra.Command) error {
	for flag, key := range flagKeys {
		if f := cmd.Flags().Lookup(flag); f != nil {
			if err := v.BindPFlag(key, f); err != nil {
				return err
			}
		}
	}
	return nil
}

// newEnv loads configuration and wires the ledger, the history repository and the client
func newEnv(ctx context.Context, cmd *cobra.Command, configFile string) (*env, error) {
	v := config.New()
	if err := bindFlags(v, cmd); err != nil {
		return nil, err
	}
	cfg, err := config.Load(v, configFile)
	if err != nil {
		return nil, err
	}

	var level logging.LogLevel
	if err := level.Set(cfg.LogLevel); err != nil {
		return nil, err
	}
	log, err := logging.New(level, cfg.LogFormat)
	if err != nil {
		return nil, err
	}

	contract, err := arc56.Load(cfg.SpecPath)
	if err != nil {
		return nil, err
	}

	sender := cfg.Sender
	var signer transaction.TransactionSigner
	if cfg.CanSign() {
		account, err := accountFromMnemonic(cfg.SenderMnemonic)
		if err != nil {
			return nil, err
		}
		signer = transaction.BasicAccountTransactionSigner{Account: account}
		if sender == "" {
			sender = account.Address.String()
		}
	}

	algodLedger, err := ledger.NewAlgodLedger(cfg.AlgodURL, cfg.AlgodToken, signer, cfg.WaitRounds, log)
	if err != nil {
		return nil, err
	}

	repository, err := storage.Open(ctx, cfg.StoreDriver, cfg.DatabaseURL, cfg.BoltPath)
	if err != nil {
		return nil, err
	}

	hooks := orchestrator.New(log,
		services.NewDeploymentService(repository, log),
		services.NewActivityService(repository, log),
	)

	appClient, err := client.New(client.Config{
		Contract:      contract,
		Ledger:        algodLedger,
		AppID:         cfg.AppID,
		DefaultSender: sender,
		CacheSize:     cfg.ResolverCacheSize,
		Hooks:         hooks,
		Logger:        log,
	})
	if err != nil {
		repository.Close()
		return nil, err
	}

	log.Debugw("Configuration loaded",
		"algod_url", cfg.AlgodURL,
		"contract", contract.Name,
		"app_id", cfg.AppID,
		"store", cfg.StoreDriver,
		"can_sign", signer != nil,
	)

	return &env{
		cfg:        cfg,
		log:        log,
		repository: repository,
		client:     appClient,
	}, nil
}

func (e *env) Close() {
	if err := e.repository.Close(); err != nil {
		e.log.Warnw("Failed to close repository", "error", err)
	}
}

func accountFromMnemonic(phrase string) (crypto.Account, error) {
	key, err := mnemonic.ToPrivateKey(phrase)
	if err != nil {
		return crypto.Account{}, errors.Wrap(err, "invalid sender mnemonic")
	}
	account, err := crypto.AccountFromPrivateKey(key)
	if err != nil {
		return crypto.Account{}, errors.Wrap(err, "invalid sender key")
	}
	return account, nil
}
