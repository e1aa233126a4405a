package cmd

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/manifoldco/promptui"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/spigell/job-advisor/internal/dialogue"
	"github.com/spigell/job-advisor/internal/logger"
)

var errExit = errors.New("exit requested")

var chatCmd = &cobra.Command{
	Use:   "chat",
	Short: "Talk to the job advisor in the terminal",
	Run: func(cmd *cobra.Command, _ []string) {
		chat(cmd.Context())
	},
}

func init() {
	rootCmd.AddCommand(chatCmd)
}

func chat(ctx context.Context) {
	c := setup(ctx)
	defer c.Close()

	engine, err := c.newEngine(ctx)
	if err != nil {
		c.logger.Fatal("preparing the dialogue", zap.Error(err))
	}

	session := dialogue.NewSession("local")
	log := logger.WithSession(c.logger, session.ID)
	printAssistant(session.Greeting())

	prompt := promptui.Prompt{
		Label: "You",
		Validate: func(input string) error {
			if strings.TrimSpace(input) == "" {
				return errors.New("type something")
			}
			return nil
		},
	}

	for {
		if err := chatTurn(ctx, engine, session, prompt); err != nil {
			if errors.Is(err, errExit) {
				return
			}
			log.Fatal("exiting", zap.Error(err))
		}
	}
}

func chatTurn(ctx context.Context, engine *dialogue.Engine, session *dialogue.Session, prompt promptui.Prompt) error {
	input, err := prompt.Run()
	if errors.Is(err, promptui.ErrInterrupt) || errors.Is(err, promptui.ErrEOF) {
		return errExit
	}
	if err != nil {
		return fmt.Errorf("reading input: %w", err)
	}

	reply, err := engine.Handle(ctx, session, input)
	if err != nil {
		return err
	}

	printAssistant(reply)
	if session.Ended() {
		return errExit
	}
	return nil
}

func printAssistant(text string) {
	fmt.Printf("\nAdvisor:\n%s\n\n", text)
}
