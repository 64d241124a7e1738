package domain

// ParsedQuery is the structured form of a free-text question.
//
// Parameter is always set after a successful parse. Year is nil when the text
// named no year. Target is nil when neither a registry place nor an explicit
// coordinate pair was found; the resolver then substitutes a default location.
type ParsedQuery struct {
	Text      string
	Parameter Parameter
	Year      *int
	Place     string
	Target    *Coordinates
}
