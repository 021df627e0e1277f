package main

import (
	"context"
	"fmt"
	"time"

	"github.com/urfave/cli"

	"github.com/dtroode/kapu-recovery/internal/api/grpc/recoveryrpc"
)

const rpcTimeout = 30 * time.Second

var backupCommand = cli.Command{
	Name:     "backup",
	Category: "Recovery",
	Usage:    "Issue, check and redeem encrypted wallet backups.",
	Subcommands: []cli.Command{
		{
			Name:  "issue",
			Usage: "Encrypt a wallet on the server and email a recovery link.",
			Flags: []cli.Flag{
				cli.StringFlag{Name: "email", Usage: "address the recovery link is sent to"},
				cli.StringFlag{Name: "private_key", Usage: "hex private key of the wallet"},
				cli.StringFlag{Name: "address", Usage: "wallet address"},
				cli.StringFlag{Name: "mnemonic", Usage: "optional seed phrase"},
			},
			Action: backupIssue,
		},
		{
			Name:      "validate",
			Usage:     "Check whether a recovery token is still redeemable.",
			ArgsUsage: "token",
			Action:    backupValidate,
		},
		{
			Name:      "redeem",
			Usage:     "Decrypt and consume a backup. Works once per token.",
			ArgsUsage: "token",
			Action:    backupRedeem,
		},
	},
}

func backupIssue(ctx *cli.Context) error {
	email := ctx.String("email")
	key := ctx.String("private_key")
	address := ctx.String("address")
	if email == "" || key == "" || address == "" {
		return cli.ShowCommandHelp(ctx, "issue")
	}

	password, err := readPassword("Backup password: ")
	if err != nil {
		return err
	}
	confirm, err := readPassword("Confirm password: ")
	if err != nil {
		return err
	}
	if password != confirm {
		return fmt.Errorf("passwords do not match")
	}

	client, cleanUp, err := getRecoveryClient(ctx)
	if err != nil {
		return err
	}
	defer cleanUp()

	rpcCtx, cancel := context.WithTimeout(context.Background(), rpcTimeout)
	defer cancel()

	resp, err := client.IssueBackup(rpcCtx, &recoveryrpc.IssueBackupRequest{
		Email:    email,
		Password: password,
		Wallet: &recoveryrpc.Wallet{
			PrivateKey: key,
			Address:    address,
			Mnemonic:   ctx.String("mnemonic"),
		},
	})
	if err != nil {
		return err
	}
	return printJSON(ctx, resp)
}

func backupValidate(ctx *cli.Context) error {
	if ctx.NArg() != 1 {
		return cli.ShowCommandHelp(ctx, "validate")
	}

	client, cleanUp, err := getRecoveryClient(ctx)
	if err != nil {
		return err
	}
	defer cleanUp()

	rpcCtx, cancel := context.WithTimeout(context.Background(), rpcTimeout)
	defer cancel()

	resp, err := client.ValidateToken(rpcCtx, &recoveryrpc.ValidateTokenRequest{Token: ctx.Args().First()})
	if err != nil {
		return err
	}
	return printJSON(ctx, resp)
}

func backupRedeem(ctx *cli.Context) error {
	if ctx.NArg() != 1 {
		return cli.ShowCommandHelp(ctx, "redeem")
	}

	password, err := readPassword("Backup password: ")
	if err != nil {
		return err
	}

	client, cleanUp, err := getRecoveryClient(ctx)
	if err != nil {
		return err
	}
	defer cleanUp()

	rpcCtx, cancel := context.WithTimeout(context.Background(), rpcTimeout)
	defer cancel()

	resp, err := client.RedeemBackup(rpcCtx, &recoveryrpc.RedeemBackupRequest{
		Token:    ctx.Args().First(),
		Password: password,
	})
	if err != nil {
		return err
	}
	return printJSON(ctx, resp.Wallet)
}
