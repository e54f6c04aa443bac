package domain

import (
	"bytes"
	"encoding/json"
)

// PlatformLink is a resolved link for one platform. At least one of WebURL
// and DeepLinkURI is non-empty.
type PlatformLink struct {
	Platform    Platform `json:"platform"`
	WebURL      string   `json:"web_url,omitempty"`
	DeepLinkURI string   `json:"deep_link_uri,omitempty"`
}

// LinkSet is an immutable platform→link map that remembers insertion order.
// The zero value is an empty set.
type LinkSet struct {
	links []PlatformLink
}

// NewLinkSet builds a LinkSet from links in priority order. Links with
// neither a web URL nor a deep link are dropped, and a later link for an
// already present platform is ignored.
func NewLinkSet(links ...PlatformLink) LinkSet {
	out := make([]PlatformLink, 0, len(links))
	seen := make(map[Platform]struct{}, len(links))
	for _, l := range links {
		if l.WebURL == "" && l.DeepLinkURI == "" {
			continue
		}
		if _, dup := seen[l.Platform]; dup {
			continue
		}
		seen[l.Platform] = struct{}{}
		out = append(out, l)
	}
	return LinkSet{links: out}
}

// Len returns the number of platforms in the set.
func (s LinkSet) Len() int { return len(s.links) }

// Get returns the link for p.
func (s LinkSet) Get(p Platform) (PlatformLink, bool) {
	for _, l := range s.links {
		if l.Platform == p {
			return l, true
		}
	}
	return PlatformLink{}, false
}

// Has reports whether p is present.
func (s LinkSet) Has(p Platform) bool {
	_, ok := s.Get(p)
	return ok
}

// All returns a copy of the links in priority order.
func (s LinkSet) All() []PlatformLink {
	out := make([]PlatformLink, len(s.links))
	copy(out, s.links)
	return out
}

// Platforms returns the platforms in priority order.
func (s LinkSet) Platforms() []Platform {
	out := make([]Platform, 0, len(s.links))
	for _, l := range s.links {
		out = append(out, l.Platform)
	}
	return out
}

type linkBody struct {
	WebURL      string `json:"web_url,omitempty"`
	DeepLinkURI string `json:"deep_link_uri,omitempty"`
}

// MarshalJSON encodes the set as a JSON object whose key order is the
// platform priority order.
func (s LinkSet) MarshalJSON() ([]byte, error) {
	var buf bytes.Buffer
	buf.WriteByte('{')
	for i, l := range s.links {
		if i > 0 {
			buf.WriteByte(',')
		}
		key, err := json.Marshal(string(l.Platform))
		if err != nil {
			return nil, err
		}
		val, err := json.Marshal(linkBody{WebURL: l.WebURL, DeepLinkURI: l.DeepLinkURI})
		if err != nil {
			return nil, err
		}
		buf.Write(key)
		buf.WriteByte(':')
		buf.Write(val)
	}
	buf.WriteByte('}')
	return buf.Bytes(), nil
}

// UnmarshalJSON decodes an object produced by MarshalJSON, keeping the key
// order of the document.
func (s *LinkSet) UnmarshalJSON(data []byte) error {
	dec := json.NewDecoder(bytes.NewReader(data))
	if _, err := dec.Token(); err != nil {
		return err
	}
	var links []PlatformLink
	for dec.More() {
		tok, err := dec.Token()
		if err != nil {
			return err
		}
		key, _ := tok.(string)
		var body linkBody
		if err := dec.Decode(&body); err != nil {
			return err
		}
		links = append(links, PlatformLink{Platform: Platform(key), WebURL: body.WebURL, DeepLinkURI: body.DeepLinkURI})
	}
	*s = NewLinkSet(links...)
	return nil
}
