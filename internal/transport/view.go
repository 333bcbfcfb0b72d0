package transport

import "shopfront/internal/domain"

// View is what every admin operation yields: a view name and the data the
// template (or SPA) renders it with.
type View struct {
	Name string   `json:"view"`
	Data ViewData `json:"data"`
}

// ViewData carries the entity or list being displayed. Key names are part
// of the presentation contract and never change shape per endpoint.
type ViewData struct {
	Product    *domain.Product    `json:"Product,omitempty"`
	Category   *domain.Category   `json:"Category,omitempty"`
	Categories []*domain.Category `json:"Categories,omitempty"`
	Products   []*domain.Product  `json:"Products,omitempty"`
	Content    *domain.Content    `json:"Content,omitempty"`
	Contents   []*domain.Content  `json:"Contents,omitempty"`
}
