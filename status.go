package main

import (
	"context"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/chxlky/trello-cards/internal/listsync"
	"github.com/jedib0t/go-pretty/v6/table"
	"github.com/jedib0t/go-pretty/v6/text"
	"github.com/spf13/cobra"
)

func newStatusCommand() *cobra.Command {
	statusCmd := &cobra.Command{
		Use:           "status",
		Short:         "Refresh every configured list once and print the result",
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE:          runStatus,
	}
	statusCmd.Flags().Bool("markdown", false, "render tables as markdown")
	return statusCmd
}

func runStatus(cmd *cobra.Command, args []string) error {
	markdown, _ := cmd.Flags().GetBool("markdown")

	a, err := newApp()
	if err != nil {
		return err
	}
	defer a.close()

	summary := a.lists.RefreshAll(context.Background())
	renderViews(os.Stdout, a.lists.Views(), markdown)
	fmt.Fprintln(os.Stdout, summary.String())
	return nil
}

// renderViews prints one row per target followed by the cards of every
// matched list.
func renderViews(w io.Writer, views []listsync.View, markdown bool) {
	if len(views) == 0 {
		fmt.Fprintln(w, "No lists configured")
		return
	}

	t := table.NewWriter()
	t.SetOutputMirror(w)
	t.AppendHeader(table.Row{"Panel", "Pattern", "Board", "State", "Detail"})

	for _, v := range views {
		board := v.BoardName
		if board == "" {
			board = v.BoardID
		}
		detail := v.Error
		if len(v.Available) > 0 {
			detail += "\nAvailable lists: " + strings.Join(v.Available, ", ")
		}
		t.AppendRow(table.Row{v.Label, v.Target.ListName, board, string(v.State), detail})
		t.AppendSeparator()
	}

	t.SetStyle(table.StyleLight)
	t.Style().Color.Header = text.Colors{text.FgHiGreen, text.Bold}
	render(t, markdown)

	cards := table.NewWriter()
	cards.SetOutputMirror(w)
	cards.AppendHeader(table.Row{"List", "Card", "Labels", "Card ID", "URL"})
	rows := 0
	for _, v := range views {
		if v.Result == nil {
			continue
		}
		for _, l := range v.Result.MatchedLists {
			for _, card := range l.Cards {
				var labels []string
				for _, label := range card.Labels {
					if label.Color == "" {
						labels = append(labels, "No Color")
						continue
					}
					labels = append(labels, label.Color)
				}
				cards.AppendRow(table.Row{l.Name, card.Name, strings.Join(labels, ", "), card.ID, card.URL})
				rows++
			}
		}
	}
	if rows == 0 {
		return
	}
	cards.SetStyle(table.StyleLight)
	cards.Style().Color.Header = text.Colors{text.FgHiGreen, text.Bold}
	render(cards, markdown)
}

func render(t table.Writer, markdown bool) {
	if markdown {
		t.RenderMarkdown()
		return
	}
	t.Render()
}
