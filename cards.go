package main

import (
	"context"
	"errors"
	"fmt"
	"os"

	"github.com/chxlky/trello-cards/internal/models"
	"github.com/spf13/cobra"
)

func newCloseCardCommand() *cobra.Command {
	return &cobra.Command{
		Use:           "close-card <card-id>",
		Short:         "Archive a card",
		Args:          cobra.ExactArgs(1),
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE:          runCloseCard,
	}
}

func runCloseCard(cmd *cobra.Command, args []string) error {
	a, err := newApp()
	if err != nil {
		return err
	}
	defer a.close()

	cardID := args[0]
	if err := a.lists.CloseCard(context.Background(), cardID); err != nil {
		return errors.New(models.UserMessage(err))
	}
	fmt.Fprintf(os.Stdout, "Closed card %s\n", cardID)
	return nil
}
