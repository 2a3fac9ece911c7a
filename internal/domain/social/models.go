package social

import (
	"errors"
	"fmt"
	"net/url"
	"strings"
)

// Provider identifies an external platform a user can link a profile from.
type Provider string

const (
	YouTube   Provider = "youtube"
	Instagram Provider = "instagram"
)

// DefaultProvider is the tab shown when a panel is opened.
const DefaultProvider = YouTube

// MaxLinkLength caps the stored link size.
const MaxLinkLength = 2048

var (
	ErrUnknownProvider   = errors.New("unknown provider")
	ErrConnectInProgress = errors.New("connect already in progress")
	ErrNotConnected      = errors.New("provider is not connected")
	ErrPersistence       = errors.New("link storage failed")
)

// Providers lists every supported provider in display order.
func Providers() []Provider {
	return []Provider{YouTube, Instagram}
}

// ParseProvider converts a request value into a Provider.
func ParseProvider(s string) (Provider, error) {
	switch Provider(strings.ToLower(strings.TrimSpace(s))) {
	case YouTube:
		return YouTube, nil
	case Instagram:
		return Instagram, nil
	default:
		return "", fmt.Errorf("%w: %q", ErrUnknownProvider, s)
	}
}

// DisplayName is the human readable provider name used in notifications.
func (p Provider) DisplayName() string {
	switch p {
	case YouTube:
		return "YouTube"
	case Instagram:
		return "Instagram"
	default:
		return string(p)
	}
}

// keyPrefix returns the storage key prefix for the provider.
func (p Provider) keyPrefix() string {
	switch p {
	case YouTube:
		return "social_yt_"
	case Instagram:
		return "social_ig_"
	default:
		return "social_" + string(p) + "_"
	}
}

// StorageKey builds the key a provider link is stored under for a user.
func StorageKey(userID string, p Provider) string {
	return p.keyPrefix() + userID
}

// ParseStorageKey splits a key built by StorageKey.
func ParseStorageKey(key string) (userID string, p Provider, ok bool) {
	for _, prov := range Providers() {
		if rest, found := strings.CutPrefix(key, prov.keyPrefix()); found && rest != "" {
			return rest, prov, true
		}
	}
	return "", "", false
}

// ValidationReason classifies why input was rejected.
type ValidationReason string

const (
	ReasonEmpty   ValidationReason = "empty"
	ReasonInvalid ValidationReason = "invalid"
	ReasonTooLong ValidationReason = "too_long"
)

// ValidationError is returned when submitted input cannot become a link.
type ValidationError struct {
	Reason ValidationReason
}

func (e *ValidationError) Error() string {
	switch e.Reason {
	case ReasonEmpty:
		return "link is required"
	case ReasonTooLong:
		return fmt.Sprintf("link must be %d characters or less", MaxLinkLength)
	default:
		return "link must be an absolute URL"
	}
}

// ValidateLink checks raw input and returns the link to store.
// Leading and trailing whitespace is trimmed and the trimmed form is what
// gets stored. Only syntax is checked: the link must parse as an absolute
// URL, and http(s) links must name a host.
func ValidateLink(raw string) (string, error) {
	link := strings.TrimSpace(raw)
	if link == "" {
		return "", &ValidationError{Reason: ReasonEmpty}
	}
	if len(link) > MaxLinkLength {
		return "", &ValidationError{Reason: ReasonTooLong}
	}

	u, err := url.Parse(link)
	if err != nil || !u.IsAbs() {
		return "", &ValidationError{Reason: ReasonInvalid}
	}
	if u.Host == "" && u.Opaque == "" {
		return "", &ValidationError{Reason: ReasonInvalid}
	}
	if (u.Scheme == "http" || u.Scheme == "https") && u.Host == "" {
		return "", &ValidationError{Reason: ReasonInvalid}
	}

	return link, nil
}

// Status is the view state of one provider.
type Status int

const (
	Disconnected Status = iota
	Connecting
	Connected
)

func (s Status) String() string {
	switch s {
	case Connecting:
		return "connecting"
	case Connected:
		return "connected"
	default:
		return "disconnected"
	}
}

// ConnectionState is the tagged state of one provider on a panel.
// Link holds the pending link while Connecting and the stored link while Connected.
type ConnectionState struct {
	Status Status
	Link   string
}

func disconnected() ConnectionState { return ConnectionState{Status: Disconnected} }

func connected(link string) ConnectionState {
	return ConnectionState{Status: Connected, Link: link}
}
