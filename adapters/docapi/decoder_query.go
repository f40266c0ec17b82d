package docapi

import (
	"encoding/json"

	"github.com/goliatone/go-docgen/docgen"
)

// QueryRequestDecoder builds document requests from query string values.
// It covers form posts and quick links where a JSON body is inconvenient.
type QueryRequestDecoder struct{}

// Decode reads the request fields from query parameters.
func (QueryRequestDecoder) Decode(req Request) (docgen.DocumentRequest, error) {
	if req == nil {
		return docgen.DocumentRequest{}, docgen.NewError(docgen.KindInternal, "request is nil", nil)
	}

	spec := docgen.ContentSpec{
		Slug:         req.Query("slug"),
		Instructions: req.Query("instructions"),
		Locale:       req.Query("spec_locale"),
	}
	if raw := req.Query("spec_params"); raw != "" {
		var params map[string]any
		if err := json.Unmarshal([]byte(raw), &params); err != nil {
			return docgen.DocumentRequest{}, docgen.NewError(docgen.KindValidation, "invalid spec params", err)
		}
		spec.Params = params
	}

	decoded := docgen.DocumentRequest{
		Definition:     req.Query("definition"),
		SourceVariant:  req.Query("source_variant"),
		Title:          req.Query("title"),
		Spec:           spec,
		Format:         docgen.NormalizeFormat(docgen.Format(req.Query("format"))),
		Theme:          req.Query("theme"),
		Locale:         req.Query("locale"),
		Timezone:       req.Query("timezone"),
		Delivery:       docgen.DeliveryMode(req.Query("delivery")),
		IdempotencyKey: req.Query("idempotency_key"),
	}

	return decoded, nil
}
