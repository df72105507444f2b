package main

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"
)

func newRenderCommand() *cobra.Command {
	var dir string

	cmd := &cobra.Command{
		Use:   "render <template> [key=value...]",
		Short: "Print the subject and HTML of a composed email",
		Example: `  usermgmt render email_verification name=Ann email=ann@example.com verification_url=http://localhost/verify
  usermgmt render account_locked name=Ann email=ann@example.com --templates ./templates`,
		Args: cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			vars := make(map[string]any, len(args)-1)
			for _, arg := range args[1:] {
				key, value, ok := strings.Cut(arg, "=")
				if !ok || key == "" {
					return fmt.Errorf("invalid variable %q: expected key=value", arg)
				}
				vars[key] = value
			}

			msg, err := newComposer(dir).RenderMessage(args[0], vars)
			if err != nil {
				return err
			}

			out := cmd.OutOrStdout()
			if msg.Subject != "" {
				fmt.Fprintf(out, "Subject: %s\n\n", msg.Subject)
			}
			fmt.Fprintln(out, msg.HTML)
			return nil
		},
	}
	cmd.Flags().StringVar(&dir, "templates", "", "directory with markdown fragments (defaults to the embedded set)")
	return cmd
}
