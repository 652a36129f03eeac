package duckdb

import (
	"fmt"
	"regexp"
	"sort"
	"strings"
)

// Session settings arrive as free-form config options. Keys are interpolated
// into SET statements, so they must be plain identifiers.
var settingKeyPattern = regexp.MustCompile(`^[A-Za-z_][A-Za-z0-9_]*$`)

// setting is one rendered session setting.
type setting struct {
	Key string
	SQL string
}

// sessionSettings renders config options as SET statements in sorted key
// order so reconnects apply them identically.
func sessionSettings(options map[string]string) ([]setting, error) {
	if len(options) == 0 {
		return nil, nil
	}

	keys := make([]string, 0, len(options))
	for k := range options {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	settings := make([]setting, 0, len(keys))
	for _, k := range keys {
		if !settingKeyPattern.MatchString(k) {
			return nil, fmt.Errorf("invalid setting name %q", k)
		}
		settings = append(settings, setting{
			Key: k,
			SQL: fmt.Sprintf("SET %s = '%s'", k, strings.ReplaceAll(options[k], "'", "''")),
		})
	}
	return settings, nil
}
