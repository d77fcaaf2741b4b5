package config

import (
	"os"
)

// EnvironmentExpander expands environment variable placeholders in raw configuration bytes.
type EnvironmentExpander interface {
	Expand(input []byte) ([]byte, error)
}

// OsEnvironmentExpander expands ${VAR} and $VAR with os.ExpandEnv.
// ${VAR:-default} is supported so that application.yaml can carry fallbacks.
type OsEnvironmentExpander struct{}

// NewOsEnvironmentExpander creates a new OsEnvironmentExpander.
func NewOsEnvironmentExpander() *OsEnvironmentExpander {
	return &OsEnvironmentExpander{}
}

// Expand replaces placeholders with environment values. Unset variables without a
// default expand to the empty string. It never returns an error.
func (e *OsEnvironmentExpander) Expand(input []byte) ([]byte, error) {
	return []byte(os.Expand(string(input), lookupWithDefault)), nil
}

func lookupWithDefault(key string) string {
	name, def, hasDefault := cutDefault(key)
	if v, ok := os.LookupEnv(name); ok && v != "" {
		return v
	}
	if hasDefault {
		return def
	}
	return ""
}

func cutDefault(key string) (name, def string, ok bool) {
	for i := 0; i+1 < len(key); i++ {
		if key[i] == ':' && key[i+1] == '-' {
			return key[:i], key[i+2:], true
		}
	}
	return key, "", false
}
