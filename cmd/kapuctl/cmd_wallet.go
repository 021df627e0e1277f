package main

import (
	"fmt"

	"github.com/urfave/cli"

	"github.com/dtroode/kapu-recovery/internal/wallet"
)

var walletCommand = cli.Command{
	Name:     "wallet",
	Category: "Wallet",
	Usage:    "Generate or import a wallet.",
	Subcommands: []cli.Command{
		{
			Name:   "new",
			Usage:  "Generate a wallet from a fresh 24-word mnemonic.",
			Action: walletNew,
		},
		{
			Name:      "import",
			Usage:     "Derive a wallet from a mnemonic or a hex private key.",
			ArgsUsage: "secret",
			Description: `
	Import accepts either a BIP-39 mnemonic (quote it as one argument) or a
	hex-encoded private key, optionally with the compression suffix 01.
	`,
			Action: walletImport,
		},
	},
}

func walletNew(ctx *cli.Context) error {
	gen, err := wallet.NewGenerator(ctx.GlobalString("network"))
	if err != nil {
		return err
	}

	w, err := gen.New()
	if err != nil {
		return fmt.Errorf("unable to generate wallet: %w", err)
	}
	return printJSON(ctx, w)
}

func walletImport(ctx *cli.Context) error {
	if ctx.NArg() != 1 {
		return cli.ShowCommandHelp(ctx, "import")
	}

	gen, err := wallet.NewGenerator(ctx.GlobalString("network"))
	if err != nil {
		return err
	}

	w, err := gen.Import(ctx.Args().First())
	if err != nil {
		return err
	}
	return printJSON(ctx, w)
}
