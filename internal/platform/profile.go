package platform

// Profile describes per-platform posting constraints. Values mirror the
// published platform limits; publishers use them to trim content before
// delivery and UIs can surface them when composing.
type Profile struct {
	MaxTextLen  int
	MaxHashtags int
	Video       bool
	Images      bool
}

var profiles = map[Platform]Profile{
	Telegram:   {MaxTextLen: 4096, MaxHashtags: 20, Video: true, Images: true},
	Twitter:    {MaxTextLen: 280, MaxHashtags: 5, Video: true, Images: true},
	LinkedIn:   {MaxTextLen: 3000, MaxHashtags: 10, Video: true, Images: true},
	Pinterest:  {MaxTextLen: 500, MaxHashtags: 8, Video: true, Images: true},
	YouTube:    {MaxTextLen: 5000, MaxHashtags: 15, Video: true},
	Instagram:  {MaxTextLen: 2200, MaxHashtags: 30, Video: true, Images: true},
	TikTok:     {MaxTextLen: 2200, MaxHashtags: 20, Video: true},
	Threads:    {MaxTextLen: 500, MaxHashtags: 10, Video: true, Images: true},
	ArtStation: {MaxTextLen: 10000, MaxHashtags: 25, Video: true, Images: true},
}

// ProfileFor returns the posting profile for p. Unknown platforms get a
// conservative default rather than a zero value.
func ProfileFor(p Platform) Profile {
	if pr, ok := profiles[p]; ok {
		return pr
	}
	return Profile{MaxTextLen: 280, MaxHashtags: 5, Images: true}
}

// TrimToProfile shortens text to the platform limit, cutting on a rune
// boundary and appending an ellipsis when truncation happened.
func TrimToProfile(p Platform, text string) string {
	limit := ProfileFor(p).MaxTextLen
	rs := []rune(text)
	if limit <= 0 || len(rs) <= limit {
		return text
	}
	if limit <= 1 {
		return string(rs[:limit])
	}
	return string(rs[:limit-1]) + "…"
}
