package patch

import (
	"encoding/json"
	"os"
	"path/filepath"
	"strings"

	"github.com/goccy/go-yaml"
	"github.com/tidwall/jsonc"

	"github.com/agentstation/tablemerge/pkg/constants"
	"github.com/agentstation/tablemerge/pkg/errors"
)

func isYAML(path string) bool {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".yaml", ".yml":
		return true
	}
	return false
}

// readFile decodes a YAML file, or JSON allowing comments and trailing commas.
func readFile(path string, v any) error {
	data, err := os.ReadFile(path) //nolint:gosec // caller-supplied path
	if err != nil {
		return errors.WrapIO("read", path, err)
	}

	if isYAML(path) {
		if err := yaml.Unmarshal(data, v); err != nil {
			return errors.WrapParse("yaml", path, err)
		}
		return nil
	}

	if err := json.Unmarshal(jsonc.ToJSON(data), v); err != nil {
		return errors.WrapParse("json", path, err)
	}
	return nil
}

func writeFile(path string, v any) error {
	var (
		data []byte
		err  error
	)
	if isYAML(path) {
		data, err = yaml.Marshal(v)
	} else {
		data, err = json.MarshalIndent(v, "", "  ")
		data = append(data, '\n')
	}
	if err != nil {
		return errors.WrapParse(formatOf(path), path, err)
	}
	return errors.WrapIO("write", path, os.WriteFile(path, data, constants.FilePermissions))
}

func formatOf(path string) string {
	if isYAML(path) {
		return "yaml"
	}
	return "json"
}
