package domain

import (
	"encoding/json"
	"errors"
	"strings"

	"github.com/google/uuid"
)

const (
	QRSchemaVersion = 2

	legacyExpiryField = "validUntil"
)

// QRPayload is one of LegacyQRPayload, CurrentQRPayload or
// UnparseableQRPayload.
type QRPayload interface {
	qrPayload()
}

// LegacyQRPayload is the deprecated schema that embedded the card expiry.
type LegacyQRPayload struct {
	ValidUntil string
	Raw        map[string]json.RawMessage
}

type CurrentQRPayload struct {
	Version  int    `json:"v"`
	MemberID string `json:"memberId"`
	CardID   string `json:"cardId,omitempty"`
	Name     string `json:"name,omitempty"`
}

type UnparseableQRPayload struct {
	Err error
}

func (LegacyQRPayload) qrPayload() {}
func (CurrentQRPayload) qrPayload() {}
func (UnparseableQRPayload) qrPayload() {}

var errEmptyQRPayload = errors.New("empty qr payload")

// ParseQRPayload classifies a stored payload. It never fails: anything that
// is not a JSON object comes back as UnparseableQRPayload.
func ParseQRPayload(raw *string) QRPayload {
	if raw == nil || strings.TrimSpace(*raw) == "" {
		return UnparseableQRPayload{Err: errEmptyQRPayload}
	}

	var fields map[string]json.RawMessage
	if err := json.Unmarshal([]byte(*raw), &fields); err != nil {
		return UnparseableQRPayload{Err: err}
	}
	if fields == nil {
		return UnparseableQRPayload{Err: errEmptyQRPayload}
	}

	if v, ok := fields[legacyExpiryField]; ok {
		var validUntil string
		if err := json.Unmarshal(v, &validUntil); err != nil {
			validUntil = string(v)
		}
		return LegacyQRPayload{ValidUntil: validUntil, Raw: fields}
	}

	var current CurrentQRPayload
	if err := json.Unmarshal([]byte(*raw), &current); err != nil {
		return UnparseableQRPayload{Err: err}
	}
	return current
}

func NewQRPayload(member *Member, card *Card) CurrentQRPayload {
	p := CurrentQRPayload{
		Version:  QRSchemaVersion,
		MemberID: member.ID.String(),
		Name:     member.FullName,
	}
	if card != nil && card.GeneratedID != nil {
		p.CardID = *card.GeneratedID
	}
	return p
}

func (p CurrentQRPayload) Encode() (string, error) {
	b, err := json.Marshal(p)
	if err != nil {
		return "", err
	}
	return string(b), nil
}

func (p CurrentQRPayload) ParsedMemberID() (uuid.UUID, error) {
	return uuid.Parse(p.MemberID)
}
