package main

import (
	"fmt"
	"strconv"

	"github.com/spf13/cobra"

	"prose_lens/internal/db"
	"prose_lens/internal/ingest"
	"prose_lens/internal/render"
	"prose_lens/internal/workspace"
)

func newImportCmd(opts *rootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "import <file>",
		Short: "Store a document as a draft in the workspace",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			root, _, err := opts.open()
			if err != nil {
				return err
			}
			parsed, err := ingest.ParseFile(args[0])
			if err != nil {
				return fmt.Errorf("%s: %w", args[0], err)
			}
			id, err := db.SaveDraft(workspace.DraftsPath(root), db.Draft{
				Title:      parsed.Title,
				SourcePath: parsed.SourcePath,
				Blocks:     parsed.Blocks,
			})
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Imported %q as %s%d\n", parsed.Title, draftPrefix, id)
			return nil
		},
	}
}

func newDraftsCmd(opts *rootOptions) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "drafts",
		Short: "List stored drafts",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			root, settings, err := opts.open()
			if err != nil {
				return err
			}
			list, err := db.ListDrafts(workspace.DraftsPath(root))
			if err != nil {
				return err
			}
			w := cmd.OutOrStdout()
			if settings.Output.Format == "json" {
				if list == nil {
					list = []db.DraftInfo{}
				}
				return render.WriteJSON(w, list)
			}
			if len(list) == 0 {
				fmt.Fprintln(w, "No drafts.")
				return nil
			}
			for _, d := range list {
				fmt.Fprintf(w, "%s%-5d %-32s %8d bytes  %s\n", draftPrefix, d.ID, d.Title, d.Size, d.UpdatedAt.Format("2006-01-02 15:04"))
			}
			return nil
		},
	}
	cmd.AddCommand(&cobra.Command{
		Use:   "delete <id>",
		Short: "Delete a stored draft",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			root, _, err := opts.open()
			if err != nil {
				return err
			}
			id, err := strconv.ParseInt(args[0], 10, 64)
			if err != nil {
				return fmt.Errorf("invalid draft id %q: %w", args[0], err)
			}
			if err := db.DeleteDraft(workspace.DraftsPath(root), id); err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Deleted %s%d\n", draftPrefix, id)
			return nil
		},
	})
	return cmd
}
