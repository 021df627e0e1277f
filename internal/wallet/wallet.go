// Package wallet derives wallet keys and addresses from BIP-39 mnemonics.
package wallet

import (
	"encoding/hex"
	"errors"
	"fmt"
	"strings"

	"github.com/btcsuite/btcd/btcec/v2"
	"github.com/btcsuite/btcd/btcutil"
	"github.com/btcsuite/btcd/btcutil/hdkeychain"
	"github.com/btcsuite/btcd/chaincfg"
	"github.com/tyler-smith/go-bip39"

	"github.com/dtroode/kapu-recovery/internal/model"
)

// coinType is the SLIP-44 coin type of the account keys.
const coinType = 5757

// entropyBits gives a 24-word mnemonic.
const entropyBits = 256

var ErrInvalidSecret = errors.New("secret is neither a valid mnemonic nor a private key")

// Generator creates and imports wallets for one network.
type Generator struct {
	version byte
}

// NewGenerator returns a generator for "mainnet" or "testnet".
func NewGenerator(network string) (*Generator, error) {
	switch network {
	case "", "mainnet":
		return &Generator{version: VersionMainnet}, nil
	case "testnet":
		return &Generator{version: VersionTestnet}, nil
	default:
		return nil, fmt.Errorf("unknown network %q", network)
	}
}

// New creates a wallet from a fresh 24-word mnemonic.
func (g *Generator) New() (model.SecretPayload, error) {
	entropy, err := bip39.NewEntropy(entropyBits)
	if err != nil {
		return model.SecretPayload{}, fmt.Errorf("failed to generate entropy: %w", err)
	}
	defer clear(entropy)

	mnemonic, err := bip39.NewMnemonic(entropy)
	if err != nil {
		return model.SecretPayload{}, fmt.Errorf("failed to create mnemonic: %w", err)
	}

	return g.FromMnemonic(mnemonic)
}

// Import accepts a mnemonic or a hex private key. A private key import has no mnemonic.
func (g *Generator) Import(secret string) (model.SecretPayload, error) {
	secret = strings.Join(strings.Fields(secret), " ")
	if bip39.IsMnemonicValid(secret) {
		return g.FromMnemonic(secret)
	}
	return g.FromPrivateKey(secret)
}

// FromMnemonic derives the first account key at m/44'/5757'/0'/0/0.
func (g *Generator) FromMnemonic(mnemonic string) (model.SecretPayload, error) {
	seed, err := bip39.NewSeedWithErrorChecking(mnemonic, "")
	if err != nil {
		return model.SecretPayload{}, fmt.Errorf("invalid mnemonic: %w", err)
	}
	defer clear(seed)

	master, err := hdkeychain.NewMaster(seed, &chaincfg.MainNetParams)
	if err != nil {
		return model.SecretPayload{}, fmt.Errorf("failed to derive master key: %w", err)
	}

	key := master
	for _, idx := range []uint32{
		hdkeychain.HardenedKeyStart + 44,
		hdkeychain.HardenedKeyStart + coinType,
		hdkeychain.HardenedKeyStart + 0,
		0,
		0,
	} {
		key, err = key.Derive(idx)
		if err != nil {
			return model.SecretPayload{}, fmt.Errorf("failed to derive child key: %w", err)
		}
	}

	priv, err := key.ECPrivKey()
	if err != nil {
		return model.SecretPayload{}, fmt.Errorf("failed to get private key: %w", err)
	}

	payload := g.fromKey(priv)
	payload.Mnemonic = mnemonic
	return payload, nil
}

// FromPrivateKey imports a 32-byte hex key, optionally with the 01 compression suffix.
func (g *Generator) FromPrivateKey(keyHex string) (model.SecretPayload, error) {
	keyHex = strings.TrimPrefix(strings.ToLower(strings.TrimSpace(keyHex)), "0x")
	raw, err := hex.DecodeString(keyHex)
	if err != nil {
		return model.SecretPayload{}, ErrInvalidSecret
	}
	defer clear(raw)

	switch {
	case len(raw) == 33 && raw[32] == 0x01:
		raw = raw[:32]
	case len(raw) != 32:
		return model.SecretPayload{}, ErrInvalidSecret
	}

	priv, _ := btcec.PrivKeyFromBytes(raw)
	if priv.Key.IsZero() {
		return model.SecretPayload{}, ErrInvalidSecret
	}
	return g.fromKey(priv), nil
}

func (g *Generator) fromKey(priv *btcec.PrivateKey) model.SecretPayload {
	hash := btcutil.Hash160(priv.PubKey().SerializeCompressed())
	return model.SecretPayload{
		PrivateKey: hex.EncodeToString(priv.Serialize()) + "01",
		Address:    c32Address(g.version, hash),
	}
}
