// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

package commands

import (
	"fmt"
	"io"
	"os"
	"strings"
	"text/tabwriter"

	"github.com/spf13/pflag"

	"github.com/bureau-foundation/glass/cmd/glass/cli"
	"github.com/bureau-foundation/glass/lib/keyring"
	"github.com/bureau-foundation/glass/lib/sealed"
)

// maxKeyInput bounds key material read by import.
const maxKeyInput = 1 << 20

func keyringCommand() *cli.Command {
	return &cli.Command{
		Name:    "keyring",
		Summary: "Manage the local keyring",
		Description: `Manage the local keyring.

The keyring holds public keys by user id in keyring.jsonc and the
operator's own private identities in secring.age, sealed under a
passphrase.`,
		Subcommands: []*cli.Command{
			keyringInitCommand(),
			keyringImportCommand(),
			keyringExportCommand(),
			keyringListCommand(),
		},
	}
}

type keyringInitParams struct {
	configOptions
	UID            string `flag:"uid" desc:"user id for the new identity, e.g. 'Alice <alice@example.com>'"`
	PassphraseFile string `flag:"passphrase-file" desc:"read the keyring passphrase from a file ('-' for stdin) instead of the terminal"`
}

func keyringInitCommand() *cli.Command {
	var params keyringInitParams
	return &cli.Command{
		Name:    "init",
		Summary: "Create a keyring with a new identity",
		Description: `Create a keyring with a freshly generated identity for --uid and print
its public key block, ready to share.`,
		Usage: "glass keyring init --uid <uid> [--passphrase-file <path>]",
		Flags: func() *pflag.FlagSet { return cli.FlagsFromParams("init", &params) },
		Run: func(args []string) error {
			if err := noArguments(args); err != nil {
				return err
			}
			return runKeyringInit(params, os.Stdout)
		},
	}
}

func runKeyringInit(params keyringInitParams, stdout io.Writer) error {
	if params.UID == "" {
		return cli.Validation("--uid is required")
	}
	cfg, err := params.load()
	if err != nil {
		return err
	}
	logger := commandLogger(cfg, "keyring/init")

	if _, err := keyring.Open(cfg.Paths.Keyring, logger); err == nil {
		return cli.Conflict("a keyring already exists in %s", cfg.Paths.Keyring)
	}
	if err := cfg.EnsurePaths(); err != nil {
		return cli.Internal("%w", err)
	}

	passphrase, err := cli.ConfirmPassphrase(params.PassphraseFile, "New keyring passphrase")
	if err != nil {
		return err
	}
	defer passphrase.Close()

	keys, err := keyring.Create(cfg.Paths.Keyring, passphrase, params.UID, logger)
	if err != nil {
		return cli.Internal("creating keyring: %w", err)
	}
	defer keys.Lock()

	for _, key := range keys.List() {
		fmt.Fprint(stdout, sealed.FormatPublicKey(key.UID, key.Key))
	}
	return nil
}

type keyringImportParams struct {
	configOptions
	UID string `flag:"uid" desc:"user id for a bare age recipient (age1...)"`
}

func keyringImportCommand() *cli.Command {
	var params keyringImportParams
	return &cli.Command{
		Name:    "import",
		Summary: "Import public keys",
		Description: `Import public keys from a file, or stdin when the file is '-' or
omitted. The input holds one or more public key blocks, or a single bare
age recipient together with --uid.`,
		Usage: "glass keyring import [file] [--uid <uid>]",
		Examples: []cli.Example{
			{Description: "Import a shared key block", Command: "glass keyring import bob.key"},
			{Description: "Import a bare recipient", Command: "echo age1... | glass keyring import --uid 'Bob <bob@example.com>'"},
		},
		Flags: func() *pflag.FlagSet { return cli.FlagsFromParams("import", &params) },
		Run: func(args []string) error {
			if len(args) > 1 {
				return cli.Validation("unexpected argument: %s", args[1])
			}
			input := io.Reader(os.Stdin)
			if len(args) == 1 && args[0] != "-" {
				file, err := os.Open(args[0])
				if err != nil {
					return cli.NotFound("%v", err)
				}
				defer file.Close()
				input = file
			}
			return runKeyringImport(params, input, os.Stdout)
		},
	}
}

func runKeyringImport(params keyringImportParams, input io.Reader, stdout io.Writer) error {
	cfg, err := params.load()
	if err != nil {
		return err
	}
	logger := commandLogger(cfg, "keyring/import")
	keys, err := openKeyring(cfg, logger)
	if err != nil {
		return err
	}
	content, err := cli.ReadAll(input, maxKeyInput)
	if err != nil {
		return err
	}

	var blocks []sealed.PublicKeyBlock
	if sealed.Classify(content) == sealed.KindPublicKey {
		if params.UID != "" {
			return cli.Validation("--uid applies only to a bare recipient; key blocks carry their own uid")
		}
		blocks, err = sealed.ParsePublicKeys(content)
		if err != nil {
			return cli.Validation("%v", err)
		}
	} else {
		if params.UID == "" {
			return cli.Validation("input holds no public key block").
				WithHint("For a bare age recipient, pass --uid.")
		}
		blocks = []sealed.PublicKeyBlock{{UID: params.UID, Key: strings.TrimSpace(content)}}
	}

	for _, block := range blocks {
		if err := keys.Import(block.UID, block.Key); err != nil {
			return cli.Validation("importing %s: %v", block.UID, err)
		}
		fmt.Fprintf(stdout, "imported %s\n", block.UID)
	}
	return nil
}

type keyringExportParams struct {
	configOptions
}

func keyringExportCommand() *cli.Command {
	var params keyringExportParams
	return &cli.Command{
		Name:    "export",
		Summary: "Print public key blocks",
		Description: `Print the public key block for each named user id, or for every own
identity when none is named.`,
		Usage: "glass keyring export [uid...]",
		Flags: func() *pflag.FlagSet { return cli.FlagsFromParams("export", &params) },
		Run: func(args []string) error {
			return runKeyringExport(params, args, os.Stdout)
		},
	}
}

func runKeyringExport(params keyringExportParams, uids []string, stdout io.Writer) error {
	cfg, err := params.load()
	if err != nil {
		return err
	}
	keys, err := openKeyring(cfg, commandLogger(cfg, "keyring/export"))
	if err != nil {
		return err
	}

	available := keys.PublicKeys()
	if len(uids) == 0 {
		for _, key := range keys.List() {
			if key.Own {
				uids = append(uids, key.UID)
			}
		}
	}
	var missing []string
	for _, uid := range uids {
		key, ok := available[uid]
		if !ok {
			missing = append(missing, uid)
			continue
		}
		fmt.Fprint(stdout, sealed.FormatPublicKey(uid, key))
	}
	if len(missing) > 0 {
		return cli.NotFound("no key for %s", strings.Join(missing, ", "))
	}
	return nil
}

type keyringListParams struct {
	configOptions
	cli.JSONOutput
}

type keyringListEntry struct {
	UID string `json:"uid"`
	Key string `json:"key"`
	Own bool   `json:"own"`
}

func keyringListCommand() *cli.Command {
	var params keyringListParams
	return &cli.Command{
		Name:    "list",
		Summary: "List keys",
		Usage:   "glass keyring list [--json]",
		Flags:   func() *pflag.FlagSet { return cli.FlagsFromParams("list", &params) },
		Run: func(args []string) error {
			if err := noArguments(args); err != nil {
				return err
			}
			params.Stdout = os.Stdout
			return runKeyringList(params, os.Stdout)
		},
	}
}

func runKeyringList(params keyringListParams, stdout io.Writer) error {
	cfg, err := params.load()
	if err != nil {
		return err
	}
	keys, err := openKeyring(cfg, commandLogger(cfg, "keyring/list"))
	if err != nil {
		return err
	}

	var entries []keyringListEntry
	for _, key := range keys.List() {
		entries = append(entries, keyringListEntry{UID: key.UID, Key: key.Key, Own: key.Own})
	}
	if done, err := params.EmitJSON(entries); done {
		return err
	}

	if len(entries) == 0 {
		fmt.Fprintln(stdout, "keyring is empty")
		return nil
	}
	writer := tabwriter.NewWriter(stdout, 0, 0, 3, ' ', 0)
	fmt.Fprintln(writer, "UID\tKEY\tOWN")
	for _, entry := range entries {
		own := ""
		if entry.Own {
			own = "yes"
		}
		fmt.Fprintf(writer, "%s\t%s\t%s\n", entry.UID, entry.Key, own)
	}
	return writer.Flush()
}

