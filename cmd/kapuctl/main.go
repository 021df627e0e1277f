// Command kapuctl generates wallets, manages the local session and talks to the
// recovery service over gRPC.
package main

import (
	"crypto/tls"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"syscall"

	"github.com/urfave/cli"
	"golang.org/x/term"
	"google.golang.org/grpc"
	"google.golang.org/grpc/credentials"
	"google.golang.org/grpc/credentials/insecure"

	"github.com/dtroode/kapu-recovery/internal/api/grpc/recoveryrpc"
)

var (
	buildVersion = "N/A" // set by ldflags
	buildCommit  = "N/A" // set by ldflags
)

const defaultRPCServer = "localhost:50051"

func fatal(err error) {
	fmt.Fprintf(os.Stderr, "[kapuctl] %v\n", err)
	os.Exit(1)
}

func defaultSessionFile() string {
	dir, err := os.UserConfigDir()
	if err != nil {
		dir = "."
	}
	return filepath.Join(dir, "kapu", "session.db")
}

func newApp(out io.Writer) *cli.App {
	app := cli.NewApp()
	app.Name = "kapuctl"
	app.Version = buildVersion + " commit=" + buildCommit
	app.Usage = "control plane for Kapu wallets and recovery backups"
	app.Writer = out
	app.Flags = []cli.Flag{
		cli.StringFlag{
			Name:   "rpcserver",
			Value:  defaultRPCServer,
			Usage:  "host:port of the recovery gRPC service",
			EnvVar: "KAPU_RPCSERVER",
		},
		cli.BoolFlag{
			Name:  "tls",
			Usage: "connect to the recovery service over TLS",
		},
		cli.StringFlag{
			Name:   "session_file",
			Value:  defaultSessionFile(),
			Usage:  "path of the local session database",
			EnvVar: "KAPU_SESSION_FILE",
		},
		cli.StringFlag{
			Name:  "network",
			Value: "mainnet",
			Usage: "address network, mainnet or testnet",
		},
	}
	app.Commands = []cli.Command{
		walletCommand,
		backupCommand,
		sessionCommand,
	}
	return app
}

func main() {
	if err := newApp(os.Stdout).Run(os.Args); err != nil {
		fatal(err)
	}
}

// readPassword reads a password from the terminal without echo.
// Tests replace it.
var readPassword = func(prompt string) (string, error) {
	fmt.Fprint(os.Stderr, prompt)
	pw, err := term.ReadPassword(int(syscall.Stdin)) // nolint:unconvert
	fmt.Fprintln(os.Stderr)
	return string(pw), err
}

func getRecoveryClient(ctx *cli.Context) (recoveryrpc.RecoveryClient, func(), error) {
	creds := insecure.NewCredentials()
	if ctx.GlobalBool("tls") {
		creds = credentials.NewTLS(&tls.Config{MinVersion: tls.VersionTLS12})
	}

	conn, err := grpc.NewClient(ctx.GlobalString("rpcserver"), grpc.WithTransportCredentials(creds))
	if err != nil {
		return nil, nil, fmt.Errorf("unable to connect to RPC server: %w", err)
	}

	cleanUp := func() {
		_ = conn.Close()
	}
	return recoveryrpc.NewRecoveryClient(conn), cleanUp, nil
}

func printJSON(ctx *cli.Context, v interface{}) error {
	b, err := json.MarshalIndent(v, "", "    ")
	if err != nil {
		return fmt.Errorf("unable to encode output: %w", err)
	}
	_, err = fmt.Fprintf(ctx.App.Writer, "%s\n", b)
	return err
}
