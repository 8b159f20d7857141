package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/spacelens/spacelens/pkg/scan"
	"github.com/spacelens/spacelens/pkg/snapshot"
)

// snapshotCommand creates the snapshot management command.
func (c *CLI) snapshotCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "snapshot",
		Short: "Manage persisted scans",
	}

	cmd.AddCommand(c.snapshotCreateCommand())
	cmd.AddCommand(c.snapshotListCommand())
	cmd.AddCommand(c.snapshotDeleteCommand())

	return cmd
}

// snapshotCreateCommand creates the "snapshot create" subcommand.
func (c *CLI) snapshotCreateCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "create [path]",
		Short: "Scan a path and persist the result",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := c.loadConfig()
			if err != nil {
				return err
			}
			store, err := newSnapshotStore(cfg)
			if err != nil {
				return err
			}

			p := newProgress(c.Logger)
			entries, err := scan.Walk(cmd.Context(), args[0], c.Logger)
			if err != nil {
				return err
			}
			p.done(fmt.Sprintf("Scanned %d entries", len(entries)))

			snap := snapshot.New(args[0], entries)
			if err := store.Put(cmd.Context(), snap); err != nil {
				return err
			}
			printSuccess("Saved snapshot %s", snap.ID)
			return nil
		},
	}
}

// snapshotListCommand creates the "snapshot list" subcommand.
func (c *CLI) snapshotListCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "list",
		Short: "List stored snapshots",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := c.loadConfig()
			if err != nil {
				return err
			}
			store, err := newSnapshotStore(cfg)
			if err != nil {
				return err
			}
			infos, err := store.List(cmd.Context())
			if err != nil {
				return err
			}
			if len(infos) == 0 {
				printInfo("No snapshots stored")
				return nil
			}
			for _, info := range infos {
				fmt.Println(StyleValue.Render(info.ID))
				printDetail("%s · %d files · %s · %s",
					info.Root, info.NumFiles, humanBytes(info.TotalSize),
					info.CreatedAt.Local().Format("2006-01-02 15:04"))
			}
			return nil
		},
	}
}

// snapshotDeleteCommand creates the "snapshot delete" subcommand.
func (c *CLI) snapshotDeleteCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "delete [id]",
		Short: "Delete a stored snapshot",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := c.loadConfig()
			if err != nil {
				return err
			}
			store, err := newSnapshotStore(cfg)
			if err != nil {
				return err
			}
			if err := store.Delete(cmd.Context(), args[0]); err != nil {
				return err
			}
			printSuccess("Deleted snapshot %s", args[0])
			return nil
		},
	}
}
