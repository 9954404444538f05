package main

import (
	"encoding/json"
	"fmt"
	"io"
	"os"

	"github.com/spf13/cobra"
	"github.com/t-hirai03/webmaka/util"
)

var payloadFile string

func init() {
	validateCmd.Flags().StringVarP(&payloadFile, "file", "f", "", "JSON payload file (default is stdin)")
	rootCmd.AddCommand(validateCmd)
}

// readPayload decodes a JSON value from the file or stdin
func readPayload(path string) (interface{}, error) {
	var r io.Reader = os.Stdin
	if path != "" {
		f, err := os.Open(path)
		if err != nil {
			return nil, err
		}
		defer f.Close()
		r = f
	}
	var payload interface{}
	if err := json.NewDecoder(r).Decode(&payload); err != nil {
		return nil, fmt.Errorf("invalid JSON payload: %w", err)
	}
	return payload, nil
}

// validateCmd runs the contact form validation over a payload and prints the result
var validateCmd = &cobra.Command{
	Use:   "validate",
	Short: "Validate a contact form payload",
	Long:  "Validate a contact form JSON payload with the same rules as the contact endpoint",
	Run: func(cmd *cobra.Command, args []string) {
		payload, err := readPayload(payloadFile)
		check(err)
		result := util.ValidateContactForm(payload)
		out, err := json.MarshalIndent(result, "", "  ")
		check(err)
		fmt.Printf("%s\n", string(out))
		if !result.Valid {
			os.Exit(2)
		}
	},
}
