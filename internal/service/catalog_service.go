package service

import "agenda-rural/internal/model"

// Option is one selectable value with its display label.
type Option struct {
	Value string `json:"value"`
	Label string `json:"label"`
}

// MonthOption is a seasonal month; Value is 0-based like monthReference.
type MonthOption struct {
	Value int    `json:"value"`
	Label string `json:"label"`
}

// Catalog lists every value a task form can offer.
type Catalog struct {
	Categories  []Option      `json:"categories"`
	Urgencies   []Option      `json:"urgencies"`
	Recurrences []Option      `json:"recurrences"`
	Months      []MonthOption `json:"months"`
}

// CatalogService provides the fixed labels of categories, urgencies,
// recurrences and months.
type CatalogService struct {
	catalog Catalog
}

func NewCatalogService() *CatalogService {
	c := Catalog{}
	for _, cat := range model.Categories {
		c.Categories = append(c.Categories, Option{Value: string(cat), Label: cat.Label()})
	}
	for _, u := range model.Urgencies {
		c.Urgencies = append(c.Urgencies, Option{Value: string(u), Label: u.Label()})
	}
	for _, r := range model.Recurrences {
		c.Recurrences = append(c.Recurrences, Option{Value: string(r), Label: r.Label()})
	}
	for i, name := range model.MonthNames {
		c.Months = append(c.Months, MonthOption{Value: i, Label: name})
	}
	return &CatalogService{catalog: c}
}

func (s *CatalogService) Catalog() Catalog {
	return s.catalog
}
