package cmd

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/cobra"

	"github.com/nity4jain/skillbridge-mvp/internal/document"
)

// addInputFlags registers the profile input flags shared by extract, match and analyze.
func addInputFlags(c *cobra.Command) {
	c.Flags().StringP("file", "f", "", "resume file (pdf, docx or txt); '-' reads stdin")
	c.Flags().Bool("output-json", false, "print the result as json")
}

// readProfile returns the profile text and the filename it came from, if any.
func readProfile(c *cobra.Command, args []string) (string, string, error) {
	path, _ := c.Flags().GetString("file")

	switch {
	case path == "-":
		data, err := io.ReadAll(c.InOrStdin())
		if err != nil {
			return "", "", fmt.Errorf("reading stdin: %w", err)
		}
		return string(data), "", nil
	case path != "":
		data, err := os.ReadFile(path)
		if err != nil {
			return "", "", err
		}
		text, err := document.ExtractText(path, data)
		if err != nil {
			return "", "", err
		}
		return text, filepath.Base(path), nil
	case len(args) > 0:
		return strings.Join(args, " "), "", nil
	default:
		return "", "", errors.New("profile text is required: pass it as arguments or use --file")
	}
}

func printJSON(c *cobra.Command, v any) error {
	enc := json.NewEncoder(c.OutOrStdout())
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}
