package domain

import (
	"encoding/json"
	"fmt"
	"strconv"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"
)

// validate checks the required top-level presence of decoded messages.
// A *validator.Validate caches struct metadata and is safe for concurrent use.
var validate = validator.New()

// tafNamespace scopes name-based message IDs.
var tafNamespace = uuid.NewSHA1(uuid.NameSpaceURL, []byte("urn:taf-iwxxm-etl:taf"))

// ParseTAF decodes a GeoWeb TAF JSON document and checks that metadata and the
// base forecast are present. Optional fields are not validated here; the
// converter reports them as issues.
func ParseTAF(data []byte) (TAF, error) {
	var taf TAF
	if err := json.Unmarshal(data, &taf); err != nil {
		return TAF{}, fmt.Errorf("parse taf: %w", err)
	}
	if err := validate.Struct(taf); err != nil {
		return TAF{}, fmt.Errorf("validate taf: %w", err)
	}
	return taf, nil
}

// MessageID returns the message UUID from the metadata when it is valid, and
// otherwise a deterministic name-based UUID over location, type and issue
// time so that replays map to the same key.
func MessageID(m Metadata) string {
	if id, err := uuid.Parse(m.UUID); err == nil {
		return id.String()
	}
	name := fmt.Sprintf("%s|%s|%s", m.Location, m.Type, m.IssueTime.UTC().Format(time.RFC3339))
	return uuid.NewSHA1(tafNamespace, []byte(name)).String()
}

// ConvertedMessage is the envelope published for every converted TAF.
type ConvertedMessage struct {
	ID     string            `json:"id"`
	Report *Report           `json:"report"`
	Issues []ConversionIssue `json:"issues"`
}

// NewConvertedMessage wraps a conversion result for publication.
func NewConvertedMessage(taf TAF, res Result) ConvertedMessage {
	issues := res.Issues
	if issues == nil {
		issues = []ConversionIssue{}
	}
	return ConvertedMessage{
		ID:     MessageID(taf.Metadata),
		Report: res.Report,
		Issues: issues,
	}
}

// SerializeResult marshals a conversion result into an output event keyed by
// the message ID and stamped with the processing time.
func SerializeResult(taf TAF, res Result) (OutputEvent, error) {
	msg := NewConvertedMessage(taf, res)
	data, err := json.Marshal(msg)
	if err != nil {
		return OutputEvent{}, fmt.Errorf("serialize converted taf: %w", err)
	}
	return OutputEvent{
		Key:   []byte(msg.ID),
		Value: data,
		Headers: map[string]string{
			"location":     taf.Metadata.Location,
			"status":       string(res.Report.Status),
			"issue_count":  strconv.Itoa(len(msg.Issues)),
			"processed_at": clock.Now().UTC().Format(time.RFC3339),
		},
	}, nil
}
