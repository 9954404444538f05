package main

import (
	"fmt"

	"github.com/spf13/cobra"
	"github.com/t-hirai03/webmaka/email"
	"github.com/t-hirai03/webmaka/global"
	"github.com/t-hirai03/webmaka/types"
	"github.com/t-hirai03/webmaka/util"
)

var (
	previewKind     string
	previewText     bool
	previewSiteName string
	previewSiteURL  string
	previewTo       string
)

func init() {
	previewCmd.Flags().StringVarP(&payloadFile, "file", "f", "", "JSON payload file (default is stdin)")
	previewCmd.Flags().StringVarP(&previewKind, "kind", "k", "admin", "email to render: admin or ack")
	previewCmd.Flags().BoolVarP(&previewText, "text", "t", false, "print the plain text part instead of HTML")
	previewCmd.Flags().StringVar(&previewSiteName, "site-name", "webmaka", "site name used in the acknowledgment")
	previewCmd.Flags().StringVar(&previewSiteURL, "site-url", "https://webmaka.com", "site URL used in the acknowledgment")
	previewCmd.Flags().StringVar(&previewTo, "to", "owner@webmaka.com", "destination of the admin notification")
	rootCmd.AddCommand(previewCmd)
}

func renderPreview(payload interface{}, kind string) (*types.OutgoingEmail, error) {
	form, ok := util.AsContactFormData(payload)
	if !ok {
		return nil, fmt.Errorf("payload is not a valid contact form: %v", util.ValidateContactForm(payload).Errors.Keys())
	}
	composer := email.NewComposer(global.DefaultFromAddress, previewSiteName, previewSiteURL)
	switch kind {
	case "admin":
		return composer.AdminNotification(&form, previewTo)
	case "ack":
		return composer.Acknowledgment(&form)
	}
	return nil, fmt.Errorf("unknown kind %q, expected admin or ack", kind)
}

// previewCmd prints the notification email a payload would produce without sending it
var previewCmd = &cobra.Command{
	Use:   "preview",
	Short: "Render a notification email",
	Long:  "Render the admin notification or the acknowledgment email for a contact form payload",
	Run: func(cmd *cobra.Command, args []string) {
		payload, err := readPayload(payloadFile)
		check(err)
		msg, err := renderPreview(payload, previewKind)
		check(err)
		fmt.Printf("From: %s\nTo: %v\nSubject: %s\n\n", msg.From, msg.To, msg.Subject)
		if previewText {
			fmt.Printf("%s\n", msg.Text)
			return
		}
		fmt.Printf("%s\n", msg.HTML)
	},
}
