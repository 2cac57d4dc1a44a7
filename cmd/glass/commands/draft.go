// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

package commands

import (
	"context"
	"fmt"
	"io"
	"os"
	"text/tabwriter"
	"time"

	"github.com/spf13/pflag"

	"github.com/bureau-foundation/glass/cmd/glass/cli"
	"github.com/bureau-foundation/glass/lib/clock"
	"github.com/bureau-foundation/glass/lib/config"
	"github.com/bureau-foundation/glass/lib/draft"
)

func draftCommand() *cli.Command {
	return &cli.Command{
		Name:    "draft",
		Summary: "Inspect and clear saved drafts",
		Description: `Inspect and clear saved drafts.

Drafts are stored encrypted to the operator's own key. The context a
draft belongs to is stored only as a keyed digest, so listing shows
digests, sizes and times, never origins or content.`,
		Subcommands: []*cli.Command{
			draftListCommand(),
			draftClearCommand(),
		},
	}
}

func openDrafts(cfg *config.Config, command string) (*draft.SQLiteStore, error) {
	if err := cfg.EnsurePaths(); err != nil {
		return nil, cli.Internal("%w", err)
	}
	store, err := draft.OpenSQLite(draft.SQLiteConfig{
		Path:   cfg.Paths.Drafts,
		Clock:  clock.Real(),
		Logger: commandLogger(cfg, command),
	})
	if err != nil {
		return nil, cli.Internal("opening draft store: %w", err)
	}
	return store, nil
}

type draftListParams struct {
	configOptions
	cli.JSONOutput
}

type draftListEntry struct {
	Digest    string    `json:"digest"`
	Size      int       `json:"size"`
	UpdatedAt time.Time `json:"updated_at"`
}

func draftListCommand() *cli.Command {
	var params draftListParams
	return &cli.Command{
		Name:    "list",
		Summary: "List saved drafts",
		Usage:   "glass draft list [--json]",
		Flags:   func() *pflag.FlagSet { return cli.FlagsFromParams("list", &params) },
		Run: func(args []string) error {
			if err := noArguments(args); err != nil {
				return err
			}
			params.Stdout = os.Stdout
			return runDraftList(params, os.Stdout)
		},
	}
}

func runDraftList(params draftListParams, stdout io.Writer) error {
	cfg, err := params.load()
	if err != nil {
		return err
	}
	store, err := openDrafts(cfg, "draft/list")
	if err != nil {
		return err
	}
	defer store.Close()

	records, err := store.List(context.Background())
	if err != nil {
		return cli.Internal("%w", err)
	}
	entries := make([]draftListEntry, 0, len(records))
	for _, record := range records {
		entries = append(entries, draftListEntry{Digest: record.Digest, Size: record.Size, UpdatedAt: record.UpdatedAt})
	}
	if done, err := params.EmitJSON(entries); done {
		return err
	}

	if len(entries) == 0 {
		fmt.Fprintln(stdout, "no saved drafts")
		return nil
	}
	writer := tabwriter.NewWriter(stdout, 0, 0, 3, ' ', 0)
	fmt.Fprintln(writer, "DIGEST\tSIZE\tUPDATED")
	for _, entry := range entries {
		fmt.Fprintf(writer, "%s\t%d\t%s\n", entry.Digest, entry.Size, entry.UpdatedAt.Local().Format(time.DateTime))
	}
	return writer.Flush()
}

type draftClearParams struct {
	configOptions
	Origin string `flag:"origin" desc:"clear the draft saved for this origin"`
	All    bool   `flag:"all" desc:"clear every draft"`
}

func draftClearCommand() *cli.Command {
	var params draftClearParams
	return &cli.Command{
		Name:    "clear",
		Summary: "Remove saved drafts",
		Usage:   "glass draft clear (<digest>... | --origin <origin> | --all)",
		Examples: []cli.Example{
			{Description: "Clear the draft for a conversation", Command: "glass draft clear --origin thread-42"},
			{Description: "Clear drafts by listed digest", Command: "glass draft clear 3f9a...e1"},
		},
		Flags: func() *pflag.FlagSet { return cli.FlagsFromParams("clear", &params) },
		Run: func(args []string) error {
			return runDraftClear(params, args, os.Stdout)
		},
	}
}

func runDraftClear(params draftClearParams, digests []string, stdout io.Writer) error {
	selectors := 0
	if len(digests) > 0 {
		selectors++
	}
	if params.Origin != "" {
		selectors++
	}
	if params.All {
		selectors++
	}
	if selectors != 1 {
		return cli.Validation("name exactly one of: digests, --origin, --all")
	}

	cfg, err := params.load()
	if err != nil {
		return err
	}
	store, err := openDrafts(cfg, "draft/clear")
	if err != nil {
		return err
	}
	defer store.Close()
	ctx := context.Background()

	switch {
	case params.All:
		removed, err := store.ClearAll(ctx)
		if err != nil {
			return cli.Internal("%w", err)
		}
		fmt.Fprintf(stdout, "cleared %d drafts\n", removed)
	case params.Origin != "":
		if err := store.ClearDraft(ctx, params.Origin); err != nil {
			return cli.Internal("%w", err)
		}
		fmt.Fprintf(stdout, "cleared %s\n", draft.Digest(params.Origin))
	default:
		for _, digest := range digests {
			if err := store.ClearDigest(ctx, digest); err != nil {
				return cli.Internal("%w", err)
			}
			fmt.Fprintf(stdout, "cleared %s\n", digest)
		}
	}
	return nil
}
