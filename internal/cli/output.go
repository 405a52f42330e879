package cli

import (
	"encoding/json"
	"fmt"
	"io"

	"github.com/spf13/cobra"
	"go.uber.org/zap/zapcore"
	"gopkg.in/yaml.v3"
)

// ValidFormats defines the allowed export formats.
var ValidFormats = []string{"json", "yaml"}

func isValidFormat(format string) bool {
	for _, f := range ValidFormats {
		if f == format {
			return true
		}
	}
	return false
}

func encode(w io.Writer, format string, v interface{}) error {
	switch format {
	case "json":
		enc := json.NewEncoder(w)
		enc.SetIndent("", "  ")
		return enc.Encode(v)
	case "yaml":
		enc := yaml.NewEncoder(w)
		enc.SetIndent(2)
		if err := enc.Encode(v); err != nil {
			return err
		}
		return enc.Close()
	}
	return fmt.Errorf("invalid format %q: must be one of %v", format, ValidFormats)
}

// stderrSyncer sends verbose logs to stderr so they never mix with exports.
func stderrSyncer(cmd *cobra.Command) zapcore.WriteSyncer {
	return zapcore.AddSync(cmd.ErrOrStderr())
}
