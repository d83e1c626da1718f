package donation

import (
	"strconv"
	"strings"
)

const (
	// MetadataNameKey is the metadata key that holds the donor display name.
	MetadataNameKey = "name"
	// MetadataShowOnListKey is the metadata key that holds the donor consent
	// to be publicly acknowledged. Its presence marks an object as created by
	// a donation.
	MetadataShowOnListKey = "showOnList"
)

// Metadata is the part of a donation attached to the charge or subscription
// on the payments processor, read back when its webhook events arrive.
type Metadata struct {
	Name       string
	ShowOnList bool
}

// Encode returns the metadata as the string map stored by the payments
// processor. Booleans are stored as "true" or "false".
func (m Metadata) Encode() map[string]string {
	return map[string]string{
		MetadataNameKey:       m.Name,
		MetadataShowOnListKey: strconv.FormatBool(m.ShowOnList),
	}
}

// HasDonationMetadata returns true if the metadata bag contains the
// showOnList key, whatever its value.
func HasDonationMetadata(raw map[string]any) bool {
	if raw == nil {
		return false
	}
	_, ok := raw[MetadataShowOnListKey]
	return ok
}

// DecodeMetadata reads the metadata bag of a processor object. The showOnList
// value is accepted both as a JSON boolean and as its string form; any other
// value, or a missing one, decodes to false. ShowOnList is never reported as
// true when no name is present. The second return value is false when the bag
// does not carry donation metadata at all.
func DecodeMetadata(raw map[string]any) (Metadata, bool) {
	if !HasDonationMetadata(raw) {
		return Metadata{}, false
	}
	var m Metadata
	if name, ok := raw[MetadataNameKey].(string); ok {
		m.Name = strings.TrimSpace(name)
	}
	switch v := raw[MetadataShowOnListKey].(type) {
	case bool:
		m.ShowOnList = v
	case string:
		m.ShowOnList = v == "true"
	}
	if m.Name == "" {
		m.ShowOnList = false
	}
	return m, true
}
