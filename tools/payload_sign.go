package main

import (
	"fmt"
	"os"

	"payrelay/internal/crypto"

	"github.com/spf13/cobra"
)

// Signs or checks a storefront checkout payload the same way POST /pay does.
//
//	go run ./tools sign payload.json --secret s3cret
//	go run ./tools verify payload.json <signature>
func main() {
	rootCmd := &cobra.Command{
		Use:   "payload-sign",
		Short: "Sign and verify storefront checkout payloads",
	}
	rootCmd.PersistentFlags().String("secret", "", "signing secret (defaults to ECWID_SIGNING_SECRET)")

	rootCmd.AddCommand(signCmd())
	rootCmd.AddCommand(verifyCmd())

	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func signCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "sign [file]",
		Short: "Print the x-ecwid-signature value for a payload file",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			payload, secret, err := load(cmd, args[0])
			if err != nil {
				return err
			}
			sig, err := crypto.Sign(payload, secret)
			if err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), sig)
			return nil
		},
	}
}

func verifyCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "verify [file] [signature]",
		Short: "Check a signature against a payload file",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			payload, secret, err := load(cmd, args[0])
			if err != nil {
				return err
			}
			if !crypto.Verify(payload, args[1], secret) {
				return fmt.Errorf("signature mismatch")
			}
			fmt.Fprintln(cmd.OutOrStdout(), "ok")
			return nil
		},
	}
}

func load(cmd *cobra.Command, path string) ([]byte, string, error) {
	secret, _ := cmd.Flags().GetString("secret")
	if secret == "" {
		secret = os.Getenv("ECWID_SIGNING_SECRET")
	}
	if secret == "" {
		return nil, "", crypto.ErrEmptySecret
	}
	payload, err := os.ReadFile(path)
	if err != nil {
		return nil, "", err
	}
	return payload, secret, nil
}
