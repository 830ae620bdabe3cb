// Package domain exposes the methods of application objects as tools once an object of the
// right type shows up.
//
// Sources are registered up front with explicit method expressions:
//
//	tracker, err := domain.NewTracker(domain.WithDomainToolsFrom(
//		domain.NewSource[*Order](
//			domain.Method((*Order).Cancel, tool.Description("Cancel the order")),
//			domain.Method((*Order).AddLine, tool.Params("sku", "quantity")),
//		),
//	))
//
// Until an *Order is bound the tracker offers placeholders that explain the order must be
// retrieved first. The first *Order seen through TryBindArtifact is bound for good; later
// orders are ignored. Collections are never bound.
//
// The cmd/embabel-tool-gen generator writes these registrations from annotated methods.
package domain
