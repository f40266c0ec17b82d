package docgenjob

import (
	"encoding/json"
	"fmt"

	"github.com/goliatone/go-docgen/docgen"
	job "github.com/goliatone/go-job"
)

// Payload captures the job execution input.
type Payload struct {
	DocumentID string                 `json:"document_id"`
	Actor      docgen.Actor           `json:"actor"`
	Request    docgen.DocumentRequest `json:"request"`
}

func encodePayload(payload Payload) (json.RawMessage, error) {
	raw, err := json.Marshal(payload)
	if err != nil {
		return nil, docgen.NewError(docgen.KindValidation, "payload is not serializable", err)
	}
	return json.RawMessage(raw), nil
}

// decodePayload accepts the payload however the queue delivered it: as the
// typed struct on in-process paths, or as JSON in one of several encodings
// after a round trip through storage.
func decodePayload(msg *job.ExecutionMessage) (Payload, error) {
	if msg == nil || msg.Parameters == nil {
		return Payload{}, docgen.NewError(docgen.KindValidation, "job payload is required", nil)
	}
	raw, ok := msg.Parameters["payload"]
	if !ok {
		return Payload{}, docgen.NewError(docgen.KindValidation, "job payload missing", nil)
	}

	switch value := raw.(type) {
	case Payload:
		return value, nil
	case *Payload:
		if value == nil {
			return Payload{}, docgen.NewError(docgen.KindValidation, "job payload is nil", nil)
		}
		return *value, nil
	}

	data, err := payloadBytes(raw)
	if err != nil {
		return Payload{}, err
	}
	if len(data) == 0 {
		return Payload{}, docgen.NewError(docgen.KindValidation, "job payload is empty", nil)
	}
	var payload Payload
	if err := json.Unmarshal(data, &payload); err != nil {
		return Payload{}, docgen.NewError(docgen.KindValidation, "job payload is invalid", err)
	}
	return payload, nil
}

func payloadBytes(raw any) ([]byte, error) {
	switch value := raw.(type) {
	case json.RawMessage:
		return value, nil
	case []byte:
		return value, nil
	case string:
		return []byte(value), nil
	default:
		data, err := json.Marshal(value)
		if err != nil {
			return nil, docgen.NewError(docgen.KindValidation, "job payload is invalid", err)
		}
		return data, nil
	}
}

func artifactKey(documentID string, format docgen.Format) string {
	if documentID == "" {
		return ""
	}
	if format == "" {
		format = docgen.FormatPDF
	}
	return fmt.Sprintf("documents/%s.%s", documentID, format)
}
