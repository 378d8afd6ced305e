package fal

// Model selects which upstream image-to-image endpoint an edit uses.
type Model string

const (
	// ModelFlux is the primary general-purpose editing model.
	ModelFlux Model = "flux"
	// ModelFluxSchnell trades fidelity for speed.
	ModelFluxSchnell Model = "flux-schnell"
	// ModelFluxPro is the high-fidelity variant.
	ModelFluxPro Model = "flux-pro"
)

// orPrimary resolves unknown selector values to ModelFlux. Lenient on
// purpose: callers sending a selector this build doesn't know still get an
// edit rather than a failure.
func (m Model) orPrimary() Model {
	switch m {
	case ModelFlux, ModelFluxSchnell, ModelFluxPro:
		return m
	default:
		return ModelFlux
	}
}

// endpoint returns the API path for the model.
func (m Model) endpoint() string {
	switch m {
	case ModelFluxSchnell:
		return "/fal-ai/flux/schnell/image-to-image"
	case ModelFluxPro:
		return "/fal-ai/flux-pro/v1.1"
	default:
		return "/fal-ai/flux/dev/image-to-image"
	}
}

// Label returns the human-readable name used in rendered summaries.
func (m Model) Label() string {
	switch m {
	case ModelFluxSchnell:
		return "FLUX Schnell"
	case ModelFluxPro:
		return "FLUX Pro"
	default:
		return "FLUX Dev"
	}
}
