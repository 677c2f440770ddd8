package feed

import "strings"

// ExtractMedia picks at most one photo and one video to accompany an item.
// Media contents are consulted first, enclosures override them, and typed
// links may only fill a photo that is still missing.
func ExtractMedia(item Item) (photoURL, videoURL string) {
	photoURL, videoURL = firstByKind(item.Media.Contents)

	if photo, video := firstByKind(item.Media.Enclosures); photo != "" || video != "" {
		if photo != "" {
			photoURL = photo
		}
		if video != "" {
			videoURL = video
		}
	}

	if photoURL == "" {
		for _, link := range item.Media.Links {
			if isKind(link.Type, "image") && link.URL != "" {
				photoURL = link.URL
				break
			}
		}
	}

	return photoURL, videoURL
}

// Normalize derives the display form of an item: cleaned text plus media.
func (i Item) Normalize() Normalized {
	photo, video := ExtractMedia(i)
	return Normalized{
		Title:    Normalize(i.Title),
		Summary:  Normalize(i.Summary),
		PhotoURL: photo,
		VideoURL: video,
	}
}

func firstByKind(refs []MediaRef) (photoURL, videoURL string) {
	for _, ref := range refs {
		if ref.URL == "" {
			continue
		}
		switch {
		case isKind(ref.Type, "image"):
			if photoURL == "" {
				photoURL = ref.URL
			}
		case isKind(ref.Type, "video"):
			if videoURL == "" {
				videoURL = ref.URL
			}
		}
	}
	return photoURL, videoURL
}

func isKind(mediaType, kind string) bool {
	return strings.Contains(strings.ToLower(mediaType), kind)
}
