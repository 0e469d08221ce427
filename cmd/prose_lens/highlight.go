package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"prose_lens/internal/analysis"
	"prose_lens/internal/doc"
	"prose_lens/internal/pipeline"
	"prose_lens/internal/render"
	"prose_lens/internal/visibility"
)

type highlightView struct {
	Category string `json:"category"`
	Text     string `json:"text"`
	Visible  bool   `json:"visible"`
}

func newHighlightCmd(opts *rootOptions) *cobra.Command {
	var (
		hover string
		plain bool
	)
	cmd := &cobra.Command{
		Use:   "highlight <file|draft:id>",
		Short: "Print a document with its issues marked in place",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if hover != "" && hover != visibility.AllCategories && !analysis.IssueType(hover).Valid() {
				return fmt.Errorf("invalid --hover value %q", hover)
			}
			root, settings, err := opts.open()
			if err != nil {
				return err
			}
			src, err := loadSource(root, args[0])
			if err != nil {
				return err
			}

			d := doc.FromBlocks(src.Blocks)
			d.Register(doc.KindHighlight)
			session, err := pipeline.NewSession(d, pipeline.Options{
				AnalysisDelay:  settings.AnalysisDelay(),
				HighlightDelay: settings.HighlightDelay(),
				Categories:     settings.IssueTypes(),
			})
			if err != nil {
				return err
			}
			defer session.Close()
			res := session.AnalyzeNow()

			state := visibility.NewState(settings.IssueTypes()...)
			state.SetAllOn(settings.Highlight.AllOn)
			state.Hover(hover)
			visible := state.Snapshot().Apply(d.TaggedNodes())

			w := cmd.OutOrStdout()
			if settings.Output.Format == "json" {
				var views []highlightView
				d.View(func(tx *doc.Tx) {
					for _, tn := range tx.TaggedNodes() {
						views = append(views, highlightView{Category: tn.Category, Text: tx.Text(tn.ID), Visible: visible[tn.ID]})
					}
				})
				return render.WriteJSON(w, struct {
					Name       string          `json:"name"`
					Result     analysis.Result `json:"result"`
					Highlights []highlightView `json:"highlights"`
				}{src.Title, res, views})
			}
			if err := render.WriteResult(w, src.Title, res, 0); err != nil {
				return err
			}
			fmt.Fprintln(w)
			return render.WriteTree(w, d, render.TreeOptions{Visible: visible, Plain: plain})
		},
	}
	cmd.Flags().StringVar(&hover, "hover", "", "show only this category, or "+visibility.AllCategories+" for every enabled one")
	cmd.Flags().BoolVar(&plain, "plain", false, "mark issues as {category:text} instead of styling them")
	return cmd
}
