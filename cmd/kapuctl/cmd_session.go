package main

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/urfave/cli"
	"golang.org/x/time/rate"

	"github.com/dtroode/kapu-recovery/internal/crypto"
	"github.com/dtroode/kapu-recovery/internal/logger"
	"github.com/dtroode/kapu-recovery/internal/model"
	"github.com/dtroode/kapu-recovery/internal/session"
	"github.com/dtroode/kapu-recovery/internal/token"
)

var sessionCommand = cli.Command{
	Name:     "session",
	Category: "Session",
	Usage:    "Manage the local, optionally password-protected wallet session.",
	Subcommands: []cli.Command{
		{
			Name:  "create",
			Usage: "Store a wallet as the local session.",
			Flags: []cli.Flag{
				cli.StringFlag{Name: "private_key", Usage: "hex private key of the wallet"},
				cli.StringFlag{Name: "address", Usage: "wallet address"},
				cli.BoolFlag{Name: "no_password", Usage: "store the session without a password"},
			},
			Action: sessionCreate,
		},
		{
			Name:   "status",
			Usage:  "Show the session state.",
			Action: sessionStatus,
		},
		{
			Name:   "unlock",
			Usage:  "Unlock the session and print the wallet.",
			Action: sessionUnlock,
		},
		{
			Name:   "signout",
			Usage:  "Remove the local session.",
			Action: sessionSignOut,
		},
	},
}

type sessionOutput struct {
	State             string `json:"state"`
	Address           string `json:"address,omitempty"`
	PasswordProtected bool   `json:"passwordProtected"`
	PrivateKey        string `json:"stxPrivateKey,omitempty"`
}

// openSession builds a manager over the session file. The unlock cache lives
// only as long as this process.
func openSession(ctx *cli.Context) (*session.Manager, func(), error) {
	path := ctx.GlobalString("session_file")
	if err := os.MkdirAll(filepath.Dir(path), 0o700); err != nil {
		return nil, nil, fmt.Errorf("unable to create session directory: %w", err)
	}

	store, err := session.OpenBoltStore(path)
	if err != nil {
		return nil, nil, err
	}

	hasher, err := crypto.NewCipher(crypto.DefaultKDF())
	if err != nil {
		_ = store.Close()
		return nil, nil, err
	}

	tickets, err := token.NewEphemeralJWT(model.UnlockTicketTTL)
	if err != nil {
		_ = store.Close()
		return nil, nil, err
	}

	m := session.NewManager(store, session.NewMemoryCache(), hasher, tickets,
		rate.NewLimiter(rate.Every(time.Second), 3), logger.NewWithWriter(os.Stderr, 4))

	cleanUp := func() {
		_ = store.Close()
	}
	return m, cleanUp, nil
}

func sessionCreate(ctx *cli.Context) error {
	key := ctx.String("private_key")
	address := ctx.String("address")
	if key == "" || address == "" {
		return cli.ShowCommandHelp(ctx, "create")
	}

	var password string
	if !ctx.Bool("no_password") {
		var err error
		password, err = readPassword("Session password: ")
		if err != nil {
			return err
		}
		if strength := crypto.ValidatePasswordStrength(password); !strength.IsValid {
			return &model.WeakPasswordError{Violations: strength.Errors}
		}
	}

	m, cleanUp, err := openSession(ctx)
	if err != nil {
		return err
	}
	defer cleanUp()

	state, err := m.Create(context.Background(), session.CreateParams{
		PrivateKey: key,
		Address:    address,
		Password:   password,
	})
	if err != nil {
		return err
	}
	return printJSON(ctx, sessionOutput{
		State:             state.String(),
		Address:           address,
		PasswordProtected: password != "",
	})
}

func sessionStatus(ctx *cli.Context) error {
	m, cleanUp, err := openSession(ctx)
	if err != nil {
		return err
	}
	defer cleanUp()

	st, err := m.Check(context.Background())
	if err != nil {
		return err
	}
	return printJSON(ctx, sessionOutput{
		State:             st.State.String(),
		Address:           st.Record.Address,
		PasswordProtected: st.Record.PasswordProtected,
	})
}

func sessionUnlock(ctx *cli.Context) error {
	m, cleanUp, err := openSession(ctx)
	if err != nil {
		return err
	}
	defer cleanUp()

	bg := context.Background()
	st, err := m.Check(bg)
	if err != nil {
		return err
	}

	if st.State == session.LockedSession {
		password, err := readPassword("Session password: ")
		if err != nil {
			return err
		}
		if err := m.Unlock(bg, password); err != nil {
			return err
		}
	}

	rec, err := m.Current(bg)
	if err != nil {
		return err
	}
	return printJSON(ctx, sessionOutput{
		State:             session.UnlockedSession.String(),
		Address:           rec.Address,
		PasswordProtected: rec.PasswordProtected,
		PrivateKey:        rec.PrivateKey,
	})
}

func sessionSignOut(ctx *cli.Context) error {
	m, cleanUp, err := openSession(ctx)
	if err != nil {
		return err
	}
	defer cleanUp()

	if err := m.SignOut(context.Background()); err != nil {
		return err
	}
	return printJSON(ctx, sessionOutput{State: session.NoSession.String()})
}
