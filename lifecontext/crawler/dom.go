package crawler

// Node is the narrow view of a DOM node the significance classifier needs.
// Implementations may panic on unparseable selectors (goquery does); callers
// in this package treat a panic from Matches/Closest as "no match".
type Node interface {
	IsElement() bool
	Matches(selector string) bool
	Closest(selector string) bool
	Text() string
	Children() []Node
}

// Document is the view of a loaded page the extractor and payload builder
// consume. URL must return the live location at call time, never a cached
// value from navigation start.
type Document interface {
	Title() string
	URL() string
	QueryAll(selector string) []Node
	BodyText() string
	MetaKeywords() string
}

type MutationKind string

const (
	MutationChildList     MutationKind = "childList"
	MutationCharacterData MutationKind = "characterData"
)

// MutationRecord is a tagged union of the two observed change shapes:
// structural additions carry the added nodes, text-only changes carry the
// new text.
type MutationRecord struct {
	Kind       MutationKind
	AddedNodes []Node
	Text       string
}

// DocumentSource yields the page's current Document. The manager fetches a
// fresh one per crawl attempt: extraction must see the page as it is now,
// and the payload URL must be the live location, so a captured-once document
// is never enough.
type DocumentSource interface {
	Document() (Document, error)
}

// MutationSource delivers batches of mutation records to a handler. Observe
// may be called again after Disconnect; Disconnect must stop delivery
// synchronously and is idempotent.
type MutationSource interface {
	Observe(handler func(batch []MutationRecord)) error
	Disconnect()
}
