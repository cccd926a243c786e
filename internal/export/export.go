// Package export writes a stored session in a portable format.
package export

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/rossmatican/thoughtleaderai/internal/model"
	"github.com/rossmatican/thoughtleaderai/internal/stats"
	"gopkg.in/yaml.v3"
)

// Supported formats.
const (
	FormatJSON = "json"
	FormatYAML = "yaml"
	FormatText = "text"
)

// ErrUnknownFormat is returned for formats other than json, yaml and text.
var ErrUnknownFormat = errors.New("unknown export format")

// Write renders detail to w in the given format.
func Write(w io.Writer, detail model.SessionDetail, format string) error {
	switch strings.ToLower(format) {
	case FormatJSON, "":
		enc := json.NewEncoder(w)
		enc.SetIndent("", "  ")
		return enc.Encode(detail)
	case FormatYAML, "yml":
		enc := yaml.NewEncoder(w)
		enc.SetIndent(2)
		if err := enc.Encode(detail); err != nil {
			return fmt.Errorf("failed to encode yaml: %w", err)
		}
		return enc.Close()
	case FormatText:
		return writeText(w, detail)
	default:
		return fmt.Errorf("%w: %s", ErrUnknownFormat, format)
	}
}

func writeText(w io.Writer, detail model.SessionDetail) error {
	rec := detail.Session
	var b strings.Builder
	fmt.Fprintf(&b, "--- %s ---\n", rec.StartedAt.UTC().Format(time.RFC3339))
	b.WriteString(rec.FinalText)
	b.WriteString("\n\n")
	reading := stats.Interpret(rec.FinalScore)
	fmt.Fprintf(&b, "Feedback: %d - %s. %s\n", rec.FinalScore, reading.Title, reading.Description)
	if len(detail.Interventions) == 0 {
		b.WriteString("Prompts: N/A\n")
	}
	for _, iv := range detail.Interventions {
		fmt.Fprintf(&b, "\nPrompt (%s, score %d): %s\n", iv.Category, iv.TriggerScore, iv.PromptText)
		if iv.Response != "" {
			fmt.Fprintf(&b, "Response: %s\n", iv.Response)
		} else if iv.Dismissed {
			b.WriteString("Response: dismissed\n")
		}
	}
	_, err := io.WriteString(w, b.String())
	return err
}
