package feed

import (
	"bytes"
	"cmp"
	"fmt"

	"github.com/mmcdole/gofeed"
	"github.com/mmcdole/gofeed/atom"
	ext "github.com/mmcdole/gofeed/extensions"
)

type Metadata struct {
	Title string
	Link  string
}

type Parser struct {
	gofeedParser   *gofeed.Parser
	atomParser     *atom.Parser
	atomTranslator *gofeed.DefaultAtomTranslator
}

func NewParser() *Parser {
	return &Parser{
		gofeedParser:   gofeed.NewParser(),
		atomParser:     &atom.Parser{},
		atomTranslator: &gofeed.DefaultAtomTranslator{},
	}
}

func (p *Parser) Run(data []byte) (*Metadata, []Item, error) {
	if gofeed.DetectFeedType(bytes.NewReader(data)) == gofeed.FeedTypeAtom {
		return p.runAtom(data)
	}

	feed, err := p.gofeedParser.Parse(bytes.NewReader(data))
	if err != nil {
		return nil, nil, fmt.Errorf("failed to parse feed: %w", err)
	}

	items := make([]Item, 0, len(feed.Items))
	for _, item := range feed.Items {
		items = append(items, p.normalizeItem(item))
	}

	return &Metadata{Title: feed.Title, Link: feed.Link}, items, nil
}

// runAtom parses Atom documents directly so that the type attribute of entry
// links survives; the universal translator flattens links to bare hrefs.
func (p *Parser) runAtom(data []byte) (*Metadata, []Item, error) {
	atomFeed, err := p.atomParser.Parse(bytes.NewReader(data))
	if err != nil {
		return nil, nil, fmt.Errorf("failed to parse feed: %w", err)
	}

	feed, err := p.atomTranslator.Translate(atomFeed)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to translate atom feed: %w", err)
	}

	items := make([]Item, 0, len(feed.Items))
	for i, item := range feed.Items {
		normalized := p.normalizeItem(item)
		if i < len(atomFeed.Entries) && atomFeed.Entries[i] != nil {
			for _, link := range atomFeed.Entries[i].Links {
				if link == nil || link.Href == "" || link.Type == "" {
					continue
				}
				normalized.Media.Links = append(normalized.Media.Links, MediaRef{URL: link.Href, Type: link.Type})
			}
		}
		items = append(items, normalized)
	}

	return &Metadata{Title: feed.Title, Link: feed.Link}, items, nil
}

func (p *Parser) normalizeItem(item *gofeed.Item) Item {
	normalized := Item{
		Link:      item.Link,
		Title:     item.Title,
		Summary:   cmp.Or(item.Description, item.Content),
		Published: cmp.Or(item.Published, item.Updated),
	}

	normalized.Media.Contents = mediaContents(item.Extensions)

	for _, enclosure := range item.Enclosures {
		if enclosure == nil || enclosure.URL == "" {
			continue
		}
		normalized.Media.Enclosures = append(normalized.Media.Enclosures, MediaRef{URL: enclosure.URL, Type: enclosure.Type})
	}

	for _, link := range item.Extensions["atom"]["link"] {
		href, typ := link.Attrs["href"], link.Attrs["type"]
		if href == "" || typ == "" {
			continue
		}
		normalized.Media.Links = append(normalized.Media.Links, MediaRef{URL: href, Type: typ})
	}

	return normalized
}

// mediaContents collects Media RSS content descriptors in document order,
// descending into media:group. The medium attribute stands in for a missing type.
func mediaContents(extensions ext.Extensions) []MediaRef {
	media, ok := extensions["media"]
	if !ok {
		return nil
	}

	var refs []MediaRef
	add := func(list []ext.Extension) {
		for _, content := range list {
			url := content.Attrs["url"]
			if url == "" {
				continue
			}
			refs = append(refs, MediaRef{URL: url, Type: cmp.Or(content.Attrs["type"], content.Attrs["medium"])})
		}
	}

	add(media["content"])
	for _, group := range media["group"] {
		add(group.Children["content"])
	}

	return refs
}
