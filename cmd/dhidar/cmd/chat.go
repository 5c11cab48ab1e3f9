package cmd

import (
	"errors"
	"fmt"
	"strings"

	"github.com/dhidargpt/dhidar/internal/llm"
	"github.com/spf13/cobra"
)

var chatModel string

var chatCmd = &cobra.Command{
	Use:   "chat [message]",
	Short: "Pose une question et affiche la réponse",
	Long: `Envoie un message unique au chat et affiche la réponse.
Sans argument, le message est lu depuis stdin.`,
	Args: cobra.ArbitraryArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		message, err := readInput(cmd, args)
		if err != nil {
			return err
		}
		if strings.TrimSpace(message) == "" {
			return errors.New(llm.EmptyMessageMessage)
		}

		gw := dhidarApp.Gateway
		model := chatModel
		if model == "" {
			model = gw.Models().DefaultChat()
		}

		session := gw.StartChat(cmd.Context(), model, nil)
		_, result := gw.SendChatMessage(cmd.Context(), session, message)
		if err := resultError(result, llm.ChatFailureMessage); err != nil {
			return err
		}
		fmt.Fprintln(cmd.OutOrStdout(), result.Payload)
		return nil
	},
}

func init() {
	chatCmd.Flags().StringVarP(&chatModel, "model", "m", "", "Chat model id (default: first configured model)")
}
