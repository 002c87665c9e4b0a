package model

import "strings"

// Category groups chores by area of the property.
type Category string

const (
	CategoryPlanting    Category = "planting"
	CategoryMaintenance Category = "maintenance"
	CategoryAnimals     Category = "animals"
	CategoryGeneral     Category = "general"
)

// Categories lists every category in display order.
var Categories = []Category{CategoryPlanting, CategoryMaintenance, CategoryAnimals, CategoryGeneral}

var categoryLabels = map[Category]string{
	CategoryPlanting:    "Plantio & Colheita",
	CategoryMaintenance: "Manutenção",
	CategoryAnimals:     "Animais",
	CategoryGeneral:     "Geral",
}

func (c Category) Valid() bool {
	_, ok := categoryLabels[c]
	return ok
}

func (c Category) Label() string {
	return categoryLabels[c]
}

// Urgency ranks how soon a chore needs attention.
type Urgency string

const (
	UrgencyLow    Urgency = "low"
	UrgencyMedium Urgency = "medium"
	UrgencyHigh   Urgency = "high"
)

var Urgencies = []Urgency{UrgencyLow, UrgencyMedium, UrgencyHigh}

var urgencyLabels = map[Urgency]string{
	UrgencyLow:    "Baixa",
	UrgencyMedium: "Média",
	UrgencyHigh:   "Alta",
}

func (u Urgency) Valid() bool {
	_, ok := urgencyLabels[u]
	return ok
}

func (u Urgency) Label() string {
	return urgencyLabels[u]
}

// Recurrence is an open set of repetition kinds. Unknown kinds are carried
// verbatim; only a few of them have matching rules in the agenda package.
type Recurrence string

const (
	RecurrenceNone       Recurrence = "none"
	RecurrenceDaily      Recurrence = "daily"
	RecurrenceWeekly     Recurrence = "weekly"
	RecurrenceMonthly    Recurrence = "monthly"
	RecurrenceQuarterly  Recurrence = "quarterly"
	RecurrenceSemiannual Recurrence = "semiannual"
	RecurrenceYearly     Recurrence = "yearly"
)

var Recurrences = []Recurrence{
	RecurrenceNone, RecurrenceDaily, RecurrenceWeekly, RecurrenceMonthly,
	RecurrenceQuarterly, RecurrenceSemiannual, RecurrenceYearly,
}

var recurrenceLabels = map[Recurrence]string{
	RecurrenceNone:       "Não repetir",
	RecurrenceDaily:      "Diário",
	RecurrenceWeekly:     "Semanal",
	RecurrenceMonthly:    "Mensal",
	RecurrenceQuarterly:  "Trimestral (3 em 3 meses)",
	RecurrenceSemiannual: "Semestral (6 em 6 meses)",
	RecurrenceYearly:     "Anual",
}

// Known reports whether r is one of the kinds accepted on input.
func (r Recurrence) Known() bool {
	_, ok := recurrenceLabels[r]
	return ok
}

func (r Recurrence) Label() string {
	if label, ok := recurrenceLabels[r]; ok {
		return label
	}
	return string(r)
}

func (r Recurrence) Repeats() bool {
	return r != RecurrenceNone && r != ""
}

func normalizeToken(value string) string {
	return strings.ToLower(strings.TrimSpace(value))
}
