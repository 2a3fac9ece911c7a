package messages

import (
	_ "embed"
	"encoding/json"
	"fmt"
	"os"
	"strings"
)

//go:embed messages.json
var defaultMessages []byte

// Messages holds every user-facing notification text.
// ConnectSuccess takes the provider display name as its only verb.
type Messages struct {
	PushTitle         string `json:"push_title"`
	ConnectSuccess    string `json:"connect_success"`
	Disconnected      string `json:"disconnected"`
	EmptyLink         string `json:"empty_link"`
	InvalidLink       string `json:"invalid_link"`
	LinkTooLong       string `json:"link_too_long"`
	ConnectInProgress string `json:"connect_in_progress"`
	ConnectFailed     string `json:"connect_failed"`
	GenericError      string `json:"generic_error"`
}

// Default returns the built-in English messages.
func Default() *Messages {
	var m Messages
	if err := json.Unmarshal(defaultMessages, &m); err != nil {
		panic(fmt.Sprintf("embedded messages.json is invalid: %v", err))
	}
	return &m
}

// Load reads a messages JSON file over the defaults, so a partial file only
// overrides the texts it names. An empty path returns the defaults.
func Load(path string) (*Messages, error) {
	m := Default()
	if path == "" {
		return m, nil
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read messages file: %w", err)
	}
	if err := json.Unmarshal(data, m); err != nil {
		return nil, fmt.Errorf("failed to parse messages file: %w", err)
	}
	if strings.Count(m.ConnectSuccess, "%s") != 1 {
		return nil, fmt.Errorf("connect_success must contain exactly one %%s")
	}
	return m, nil
}

// Connected formats the success text for a provider.
func (m *Messages) Connected(providerName string) string {
	return fmt.Sprintf(m.ConnectSuccess, providerName)
}
