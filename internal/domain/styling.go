package domain

// Styling holds the six color roles of a journal card. After normalization
// every role is set to a non-empty class string.
type Styling struct {
	Background  string `json:"backgroundColor"`
	Border      string `json:"borderColor"`
	Title       string `json:"titleColor"`
	Company     string `json:"companyColor"`
	Description string `json:"descriptionColor"`
	Date        string `json:"dateColor"`
}

const darkBackground = "bg-neutral-900"

// DefaultStyling returns the styling used when a record stores none.
func DefaultStyling() Styling {
	return Styling{
		Background:  "bg-white",
		Border:      "border-neutral-200",
		Title:       "text-neutral-900",
		Company:     "text-neutral-700",
		Description: "text-neutral-600",
		Date:        "text-neutral-500",
	}
}

// Complete returns a copy with every empty role taken from DefaultStyling.
func (s Styling) Complete() Styling {
	def := DefaultStyling()
	if s.Background == "" {
		s.Background = def.Background
	}
	if s.Border == "" {
		s.Border = def.Border
	}
	if s.Title == "" {
		s.Title = def.Title
	}
	if s.Company == "" {
		s.Company = def.Company
	}
	if s.Description == "" {
		s.Description = def.Description
	}
	if s.Date == "" {
		s.Date = def.Date
	}
	return s
}

// IsDark reports whether the card uses the dark background variant.
func (s Styling) IsDark() bool {
	return s.Background == darkBackground
}

// Roles returns the six roles in declaration order.
func (s Styling) Roles() []string {
	return []string{s.Background, s.Border, s.Title, s.Company, s.Description, s.Date}
}
