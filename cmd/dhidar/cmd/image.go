package cmd

import (
	"errors"
	"fmt"
	"strings"

	"github.com/dhidargpt/dhidar/internal/llm"
	"github.com/dhidargpt/dhidar/internal/media"
	"github.com/dhidargpt/dhidar/internal/page"
	"github.com/spf13/cobra"
)

var (
	imagePrompt string
	imageInput  string
)

var imageCmd = &cobra.Command{
	Use:   "image",
	Short: "Génère ou modifie une image",
	Long: `Génère une image à partir d'une description, ou modifie l'image passée
avec --input. L'image produite est affichée sous forme de data URL.`,
	Args: cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		if strings.TrimSpace(imagePrompt) == "" {
			return errors.New(llm.EmptyPromptMessage)
		}

		var input *llm.ImageInput
		if imageInput != "" {
			f, err := media.OpenFile(imageInput)
			if err != nil {
				return err
			}
			if !f.IsImage() {
				return &media.ValidationError{Message: media.InvalidImageMessage, Err: media.ErrNotImage}
			}
			payload, err := f.Base64Payload()
			if err != nil {
				return err
			}
			input = &llm.ImageInput{Payload: payload, MIMEType: f.MIMEType}
		}

		result := dhidarApp.Gateway.GenerateOrEditImage(cmd.Context(), imagePrompt, input)
		if err := resultError(result, page.PolicyRejectedMessage); err != nil {
			return err
		}
		fmt.Fprintln(cmd.OutOrStdout(), result.Payload)
		return nil
	},
}

func init() {
	imageCmd.Flags().StringVarP(&imagePrompt, "prompt", "p", "", "Description of the image to create or of the edit")
	imageCmd.Flags().StringVarP(&imageInput, "input", "i", "", "Image file to edit")
	_ = imageCmd.MarkFlagRequired("prompt")
}
