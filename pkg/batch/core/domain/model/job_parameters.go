package model

import (
	"encoding/json"
	"fmt"
	"strings"
	"sync"
)

const maskedValue = "********"

var (
	maskedKeysMu sync.RWMutex
	maskedKeys   = []string{"password", "api_key", "secret", "credential"}
)

// SetMaskedParameterKeys replaces the key fragments whose values JobParameters.String masks.
func SetMaskedParameterKeys(keys []string) {
	maskedKeysMu.Lock()
	defer maskedKeysMu.Unlock()
	maskedKeys = append([]string(nil), keys...)
}

func isMaskedKey(key string) bool {
	maskedKeysMu.RLock()
	defer maskedKeysMu.RUnlock()
	lower := strings.ToLower(key)
	for _, k := range maskedKeys {
		if k != "" && strings.Contains(lower, strings.ToLower(k)) {
			return true
		}
	}
	return false
}

// JobParameters holds the parameters a job execution was launched with.
type JobParameters struct {
	Params map[string]interface{} `json:"params"`
}

// NewJobParameters creates an empty JobParameters.
func NewJobParameters() JobParameters {
	return JobParameters{Params: make(map[string]interface{})}
}

// Put sets a parameter.
func (jp JobParameters) Put(key string, value interface{}) {
	jp.Params[key] = value
}

// Get returns a parameter, or nil.
func (jp JobParameters) Get(key string) interface{} {
	return jp.Params[key]
}

// GetString retrieves a parameter as a string.
func (jp JobParameters) GetString(key string) (string, bool) {
	s, ok := jp.Params[key].(string)
	return s, ok
}

// GetBool retrieves a parameter as a bool.
func (jp JobParameters) GetBool(key string) (bool, bool) {
	b, ok := jp.Params[key].(bool)
	return b, ok
}

// GetInt retrieves a parameter as an int. Values decoded from JSON arrive as float64.
func (jp JobParameters) GetInt(key string) (int, bool) {
	switch v := jp.Params[key].(type) {
	case int:
		return v, true
	case int64:
		return int(v), true
	case float64:
		return int(v), true
	default:
		return 0, false
	}
}

// String renders the parameters as JSON with sensitive values masked.
func (jp JobParameters) String() string {
	masked := make(map[string]interface{}, len(jp.Params))
	for k, v := range jp.Params {
		if isMaskedKey(k) {
			masked[k] = maskedValue
			continue
		}
		masked[k] = v
	}
	data, err := json.Marshal(masked)
	if err != nil {
		return fmt.Sprintf("{[ERROR: failed to marshal parameters: %v]}", err)
	}
	return string(data)
}
