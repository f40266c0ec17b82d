package docgen

import "context"

// maxInstructionBytes bounds free-form generation instructions.
const maxInstructionBytes = 8 << 10

// applySpecDefaults fills an empty request spec from the definition's
// content policy, falling back to the definition's static default spec.
// Requests that already carry a spec pass through untouched.
func applySpecDefaults(ctx context.Context, actor Actor, req DocumentRequest, def ResolvedDefinition) (DocumentRequest, bool, error) {
	if !req.Spec.isZero() {
		if err := validateSpec(req.Spec); err != nil {
			return req, false, err
		}
		return req, false, nil
	}

	spec := ContentSpec{}
	applied := false

	if def.ContentPolicy != nil {
		policySpec, ok, err := def.ContentPolicy.DefaultSpec(ctx, actor, req, def)
		if err != nil {
			return req, false, err
		}
		if ok {
			spec = policySpec
			applied = true
		}
	}

	if spec.isZero() && !def.DefaultSpec.isZero() {
		spec = def.DefaultSpec
		applied = true
	}

	if spec.Locale == "" {
		spec.Locale = req.Locale
	}

	req.Spec = spec
	if err := validateSpec(req.Spec); err != nil {
		return req, false, err
	}

	return req, applied, nil
}

func validateSpec(spec ContentSpec) error {
	if len(spec.Instructions) > maxInstructionBytes {
		return NewError(KindValidation, "content instructions exceed the size limit", nil)
	}
	return nil
}
