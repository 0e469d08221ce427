package main

import (
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"prose_lens/internal/doc"
	"prose_lens/internal/pipeline"
	"prose_lens/internal/render"
	"prose_lens/internal/workspace"
)

func newAnalyzeCmd(opts *rootOptions) *cobra.Command {
	var width int
	cmd := &cobra.Command{
		Use:   "analyze <file|draft:id>...",
		Short: "Print readability metrics and issues for documents",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			root, settings, err := opts.open()
			if err != nil {
				return err
			}
			out, err := analyzeSources(cmd, root, settings, args)
			if err != nil {
				return err
			}
			if settings.Output.Format == "json" {
				return render.WriteJSON(cmd.OutOrStdout(), out)
			}
			for _, o := range out {
				if err := render.WriteResult(cmd.OutOrStdout(), o.Name, o.Result, width); err != nil {
					return err
				}
			}
			return nil
		},
	}
	cmd.Flags().IntVar(&width, "width", render.DefaultExcerptWidth, "maximum width of issue excerpts")
	return cmd
}

func newReportCmd(opts *rootOptions) *cobra.Command {
	var title string
	cmd := &cobra.Command{
		Use:   "report <file|draft:id>...",
		Short: "Analyse documents and store a JSON report in the workspace",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			root, settings, err := opts.open()
			if err != nil {
				return err
			}
			out, err := analyzeSources(cmd, root, settings, args)
			if err != nil {
				return err
			}
			report := workspace.Report{Title: title, GeneratedAt: time.Now(), Documents: out}
			info, err := workspace.WriteReport(root, report)
			if err != nil {
				return err
			}
			if settings.Output.Format == "json" {
				return render.WriteJSON(cmd.OutOrStdout(), report)
			}
			w := cmd.OutOrStdout()
			for _, o := range out {
				fmt.Fprintf(w, "%-32s score %3d  grade %2d  issues %d\n", o.Name, o.Result.Score, o.Result.GradeLevel, len(o.Result.Issues))
			}
			fmt.Fprintf(w, "Report written to: %s\n", info.Path)
			return nil
		},
	}
	cmd.Flags().StringVar(&title, "title", "report", "report title; reports with the same title overwrite each other")
	return cmd
}

func analyzeSources(cmd *cobra.Command, root string, settings workspace.Settings, args []string) ([]pipeline.Output, error) {
	inputs := make([]pipeline.Input, 0, len(args))
	for _, arg := range args {
		src, err := loadSource(root, arg)
		if err != nil {
			return nil, err
		}
		inputs = append(inputs, pipeline.Input{Name: src.Title, Text: doc.FromBlocks(src.Blocks).Flatten()})
	}
	return pipeline.AnalyzeAll(cmd.Context(), inputs, settings.Analysis.Workers)
}
