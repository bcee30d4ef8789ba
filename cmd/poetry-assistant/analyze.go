package main

import (
	"errors"
	"fmt"
	"io"
	"net/http"
	"os"
	"time"

	"github.com/spf13/cobra"

	"github.com/sozercan/poetry-assistant/internal/client"
	"github.com/sozercan/poetry-assistant/internal/forms"
	"github.com/sozercan/poetry-assistant/internal/render"
)

var (
	analyzeForm    string
	analyzeServer  string
	analyzeTimeout time.Duration
)

var analyzeCmd = &cobra.Command{
	Use:   "analyze [file|-]",
	Short: "Critique a poem using a running server",
	Long: `Send a poem to the /analyze endpoint of a running poetry-assistant and
print the critique. The poem is read from the named file, or from stdin
when the argument is "-" or omitted.`,
	Args: cobra.MaximumNArgs(1),
	RunE: runAnalyze,
}

func init() {
	analyzeCmd.Flags().StringVarP(&analyzeForm, "form", "f", forms.Default(), "poetic form of the poem")
	analyzeCmd.Flags().StringVarP(&analyzeServer, "server", "s", envOr("POETRY_SERVER", "http://localhost:8000"), "base URL of the server")
	analyzeCmd.Flags().DurationVar(&analyzeTimeout, "timeout", 5*time.Minute, "give up on the server after this long")
}

func runAnalyze(cmd *cobra.Command, args []string) error {
	poem, err := readPoem(cmd.InOrStdin(), args)
	if err != nil {
		return err
	}

	c := client.New(analyzeServer, client.WithHTTPClient(&http.Client{Timeout: analyzeTimeout}))
	session := client.NewSession(c, analyzeForm)
	session.SetPoem(poem)
	if err := session.Submit(cmd.Context()); err != nil {
		printAlert(cmd.ErrOrStderr(), err)
		return err
	}

	return render.WriteText(cmd.OutOrStdout(), render.NewReport(*session.Result()))
}

func readPoem(stdin io.Reader, args []string) (string, error) {
	var (
		data []byte
		err  error
	)
	if len(args) == 0 || args[0] == "-" {
		data, err = io.ReadAll(stdin)
	} else {
		data, err = os.ReadFile(args[0])
	}
	if err != nil {
		return "", fmt.Errorf("failed to read poem: %w", err)
	}
	return string(data), nil
}

func printAlert(w io.Writer, err error) {
	if errors.Is(err, client.ErrEmptyPoem) {
		fmt.Fprintln(w, "Nothing to analyze: the poem is empty.")
		return
	}
	alert := render.AlertFromError(err)
	fmt.Fprintln(w, alert.Message)
	if alert.Details != "" {
		fmt.Fprintf(w, "Details: %s\n", alert.Details)
	}
}

func envOr(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}
