package feed

// Feed retrieval types

type Item struct {
	Link      string
	Title     string
	Summary   string
	Published string // As published by the source, never parsed for routing
	Media     MediaRefs
}

// MediaRefs holds the typed attachment descriptors found on a feed item,
// grouped by where they were declared.
type MediaRefs struct {
	Contents   []MediaRef // media:content, including entries nested in media:group
	Enclosures []MediaRef // RSS enclosures
	Links      []MediaRef // typed links (atom:link in RSS, <link type=...> in Atom)
}

type MediaRef struct {
	URL  string
	Type string
}

// Routing types

type Normalized struct {
	Title    string
	Summary  string
	PhotoURL string
	VideoURL string
}

// Valid reports whether the item carries the identity fields required for routing.
func (i Item) Valid() bool {
	return i.Link != "" && i.Title != ""
}
