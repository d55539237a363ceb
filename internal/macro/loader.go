package macro

import (
	"errors"
	"fmt"
	"os"
	"path"
	"path/filepath"

	"gopkg.in/yaml.v3"
)

// ConfigError reports a missing or malformed macro mapping document.
// It is fatal: the caller must not start processing files with a broken
// mapping.
type ConfigError struct {
	Path    string
	Message string
}

func (e *ConfigError) Error() string {
	if e.Path == "" {
		return fmt.Sprintf("macro mapping: %s", e.Message)
	}
	return fmt.Sprintf("macro mapping %s: %s", filepath.Base(e.Path), e.Message)
}

// LoadMapping reads and parses a macro mapping YAML file into a Table.
func LoadMapping(mappingPath string) (*Table, error) {
	content, err := os.ReadFile(mappingPath) //nolint:gosec // G304: path comes from user configuration
	if err != nil {
		return nil, &ConfigError{Path: mappingPath, Message: fmt.Sprintf("failed to read file: %v", err)}
	}

	table, err := ParseMapping(content)
	if err != nil {
		var cfgErr *ConfigError
		if errors.As(err, &cfgErr) {
			cfgErr.Path = mappingPath
		}
		return nil, err
	}
	return table, nil
}

// ParseMapping parses a macro mapping document of the form:
//
//	macros:
//	  '*.sql':
//	    '${MACRO_1}': 'my_table'
//	  '2.sql':
//	    'templated_column': 'replacing_column'
//
// Pattern order and key order within a pattern follow document order, so
// substitution scan order is deterministic. Every pattern value must be a
// flat string-to-string mapping.
func ParseMapping(content []byte) (*Table, error) {
	var doc yaml.Node
	if err := yaml.Unmarshal(content, &doc); err != nil {
		return nil, &ConfigError{Message: fmt.Sprintf("invalid YAML: %v", err)}
	}
	if doc.Kind == 0 || len(doc.Content) == 0 {
		return nil, &ConfigError{Message: "document is empty"}
	}

	root := doc.Content[0]
	if root.Kind != yaml.MappingNode {
		return nil, &ConfigError{Message: "top level must be a mapping"}
	}

	macros := mappingValue(root, "macros")
	if macros == nil {
		return nil, &ConfigError{Message: "missing required 'macros' key"}
	}
	if macros.Kind != yaml.MappingNode {
		return nil, &ConfigError{Message: "'macros' must be a mapping of file patterns"}
	}

	table := &Table{}
	for i := 0; i < len(macros.Content); i += 2 {
		patternNode := macros.Content[i]
		setNode := macros.Content[i+1]

		pattern := patternNode.Value
		if patternNode.Kind != yaml.ScalarNode || pattern == "" {
			return nil, &ConfigError{Message: fmt.Sprintf("line %d: file pattern must be a non-empty string", patternNode.Line)}
		}
		// Reject patterns path.Match would choke on at resolve time.
		if _, err := path.Match(pattern, ""); err != nil {
			return nil, &ConfigError{Message: fmt.Sprintf("invalid glob pattern %q", pattern)}
		}
		for _, e := range table.entries {
			if e.Pattern == pattern {
				return nil, &ConfigError{Message: fmt.Sprintf("duplicate pattern %q", pattern)}
			}
		}

		set, err := parseSet(pattern, setNode)
		if err != nil {
			return nil, err
		}
		table.entries = append(table.entries, PatternEntry{Pattern: pattern, Set: set})
	}

	return table, nil
}

// parseSet parses a single pattern's key/value block.
func parseSet(pattern string, node *yaml.Node) (*Set, error) {
	if node.Kind != yaml.MappingNode {
		return nil, &ConfigError{Message: fmt.Sprintf("pattern %q: value must be a string-to-string mapping", pattern)}
	}

	set := NewSet()
	for i := 0; i < len(node.Content); i += 2 {
		keyNode := node.Content[i]
		valNode := node.Content[i+1]

		if keyNode.Kind != yaml.ScalarNode || valNode.Kind != yaml.ScalarNode {
			return nil, &ConfigError{Message: fmt.Sprintf("pattern %q: macro entries must map strings to strings", pattern)}
		}
		if keyNode.Value == "" {
			return nil, &ConfigError{Message: fmt.Sprintf("pattern %q: macro key must not be empty", pattern)}
		}
		if _, dup := set.Get(keyNode.Value); dup {
			return nil, &ConfigError{Message: fmt.Sprintf("pattern %q: duplicate macro key %q", pattern, keyNode.Value)}
		}
		set.Put(keyNode.Value, valNode.Value)
	}

	return set, nil
}

// mappingValue returns the value node for key in a mapping node, or nil.
func mappingValue(mapping *yaml.Node, key string) *yaml.Node {
	for i := 0; i+1 < len(mapping.Content); i += 2 {
		if mapping.Content[i].Value == key {
			return mapping.Content[i+1]
		}
	}
	return nil
}
