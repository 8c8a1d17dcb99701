// lwallet is a CLI wallet client for a ledger network.
package main

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/urfave/cli/v2"

	"github.com/ledgerwallet/wallet-engine/pkg/amount"
	"github.com/ledgerwallet/wallet-engine/pkg/codec"
	"github.com/ledgerwallet/wallet-engine/pkg/journal"
	"github.com/ledgerwallet/wallet-engine/pkg/keys"
	"github.com/ledgerwallet/wallet-engine/pkg/ledger"
	"github.com/ledgerwallet/wallet-engine/pkg/lifecycle"
	"github.com/ledgerwallet/wallet-engine/pkg/log"
	"github.com/ledgerwallet/wallet-engine/pkg/tx"
)

func main() {
	logger, err := log.NewDefaultProductionLogger()
	if err != nil {
		panic(err)
	}
	configFlag := &cli.StringFlag{
		Name:     "config",
		Aliases:  []string{"c"},
		Usage:    "Path to wallet config",
		Required: true,
	}
	app := cli.App{
		Usage: "Ledger wallet client",
		Commands: []*cli.Command{
			{
				Name:  "send",
				Usage: "Sign and submit a payment, then await its outcome",
				Flags: []cli.Flag{
					configFlag,
					&cli.StringFlag{Name: "to", Usage: "Destination address", Required: true},
					&cli.Uint64Flag{Name: "tag", Usage: "Destination tag"},
					&cli.StringFlag{Name: "value", Usage: "Amount value (minor units for native)", Required: true},
					&cli.StringFlag{Name: "currency", Usage: "Currency code, empty for native"},
					&cli.StringFlag{Name: "issuer", Usage: "Issuer address for issued currency"},
					&cli.UintFlag{Name: "nft", Usage: "NFT ordinal to send instead of a quantity"},
				},
				Action: func(c *cli.Context) error {
					return sendAction(c, logger)
				},
			},
			{
				Name:      "status",
				Usage:     "Re-query the outcome of a recorded transaction hash",
				ArgsUsage: "<hash>",
				Flags:     []cli.Flag{configFlag},
				Action: func(c *cli.Context) error {
					return statusAction(c, logger)
				},
			},
			{
				Name:  "history",
				Usage: "List recorded transactions, newest first",
				Flags: []cli.Flag{configFlag},
				Action: func(c *cli.Context) error {
					return historyAction(c, logger)
				},
			},
			{
				Name:      "account",
				Usage:     "Show on-ledger state of an account",
				ArgsUsage: "<address>",
				Flags:     []cli.Flag{configFlag},
				Action: func(c *cli.Context) error {
					return accountAction(c, logger)
				},
			},
		},
	}
	if err := app.Run(os.Args); err != nil {
		logger.Errorf("Command failed with %v", err)
		os.Exit(1)
	}
}

func signalContext() (context.Context, context.CancelFunc) {
	return signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
}

func setup(c *cli.Context, logger log.Logger) (*Config, *ledger.Client, *journal.Journal, error) {
	config, err := loadConfig(c.String("config"))
	if err != nil {
		return nil, nil, nil, err
	}
	client, err := ledger.Dial(c.Context, &ledger.ClientConfig{URL: config.NodeURL}, logger)
	if err != nil {
		return nil, nil, nil, err
	}
	jrnl, err := journal.Open(config.JournalPath)
	if err != nil {
		client.Close()
		return nil, nil, nil, err
	}
	return config, client, jrnl, nil
}

func sendAction(c *cli.Context, logger log.Logger) error {
	ctx, cancel := signalContext()
	defer cancel()

	config, client, jrnl, err := setup(c, logger)
	if err != nil {
		return err
	}
	defer client.Close()
	defer jrnl.Close()

	passphrase, err := config.passphrase()
	if err != nil {
		return err
	}
	signer, err := keys.FromPassphrase(passphrase)
	if err != nil {
		return err
	}
	address, err := signer.Address()
	if err != nil {
		return err
	}

	amountCodec, err := amount.NewCodec(&config.Amount)
	if err != nil {
		return err
	}
	payment := tx.NewPaymentWithCodec(amountCodec)
	if err := payment.SetAccount(address.String()); err != nil {
		return err
	}
	if err := payment.SetDestination(c.String("to")); err != nil {
		return err
	}
	if tag := c.Uint64("tag"); tag != 0 {
		if err := payment.SetDestinationTag(tag); err != nil {
			return err
		}
	}
	amt, err := buildAmount(c, amountCodec)
	if err != nil {
		return err
	}
	if err := payment.SetAmount(amt); err != nil {
		return err
	}

	controller := lifecycle.NewController(&config.Lifecycle)
	controller.Init(logger, client, jrnl)
	defer controller.End()

	flow := controller.NewFlow(payment, signer)
	logger.Infof("Submitting payment from %s to %s as flow %s", address, c.String("to"), flow.ID())
	result, err := flow.Run(ctx)
	if err != nil {
		if result == nil {
			return err
		}
		logger.Warningf("Flow ended with %v", err)
	}
	return printJSON(result)
}

func statusAction(c *cli.Context, logger log.Logger) error {
	ctx, cancel := signalContext()
	defer cancel()

	hashArg := c.Args().First()
	if hashArg == "" {
		return fmt.Errorf("transaction hash is required")
	}
	hash, err := codec.ParseHex(hashArg)
	if err != nil {
		return err
	}
	_, client, jrnl, err := setup(c, logger)
	if err != nil {
		return err
	}
	defer client.Close()
	defer jrnl.Close()

	if entry, err := jrnl.GetByHash(hash); err == nil {
		logger.Infof("Recorded flow %s last seen as %s", entry.FlowID, entry.Status)
	}
	outcome, err := client.QueryOutcome(ctx, hash)
	if err != nil {
		return err
	}
	return printJSON(outcome)
}

// historyAction reads the journal only; no node connection is needed.
func historyAction(c *cli.Context, _ log.Logger) error {
	config, err := loadConfig(c.String("config"))
	if err != nil {
		return err
	}
	jrnl, err := journal.Open(config.JournalPath)
	if err != nil {
		return err
	}
	defer jrnl.Close()

	entries, err := jrnl.List()
	if err != nil {
		return err
	}
	return printJSON(entries)
}

func accountAction(c *cli.Context, logger log.Logger) error {
	ctx, cancel := signalContext()
	defer cancel()

	addressArg := c.Args().First()
	if addressArg == "" {
		return fmt.Errorf("account address is required")
	}
	address := codec.Address(addressArg)
	if err := address.Validate(); err != nil {
		return err
	}
	_, client, jrnl, err := setup(c, logger)
	if err != nil {
		return err
	}
	defer client.Close()
	defer jrnl.Close()

	info, err := client.AccountInfo(ctx, address)
	if err != nil {
		return err
	}
	return printJSON(info)
}

func buildAmount(c *cli.Context, amountCodec *amount.Codec) (*amount.Amount, error) {
	currency := c.String("currency")
	issuer := codec.Address(c.String("issuer"))
	if ordinal := c.Uint("nft"); ordinal != 0 {
		return amount.NewNFT(currency, issuer, uint32(ordinal), amountCodec)
	}
	if currency == "" {
		return amount.NewNative(c.String("value"))
	}
	return amount.NewIssued(currency, issuer, c.String("value"))
}

func printJSON(value interface{}) error {
	encoded, err := json.MarshalIndent(value, "", "  ")
	if err != nil {
		return err
	}
	fmt.Println(string(encoded))
	return nil
}
