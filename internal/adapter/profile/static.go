package profile

import (
	mrand "math/rand/v2"
)

// Profile is a coherent set of browser identification headers. The client
// hints must agree with the User-Agent or the gate may refuse the answer.
type Profile struct {
	UserAgent       string
	SecCHUA         string
	SecCHUAMobile   string
	SecCHUAPlatform string
	AcceptLanguage  string
}

type Static struct {
	list []Profile
	r    *mrand.Rand
}

func NewStatic() *Static {
	return &Static{
		list: []Profile{
			{
				UserAgent:       "Mozilla/5.0 (X11; Linux x86_64) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/135.0.0.0 Safari/537.36",
				SecCHUA:         `"Brave";v="135", "Not-A.Brand";v="8", "Chromium";v="135"`,
				SecCHUAMobile:   "?0",
				SecCHUAPlatform: `"Linux"`,
				AcceptLanguage:  "en-US,en;q=0.5",
			},
			{
				UserAgent:       "Mozilla/5.0 (Windows NT 10.0; Win64; x64) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/135.0.0.0 Safari/537.36",
				SecCHUA:         `"Google Chrome";v="135", "Not-A.Brand";v="8", "Chromium";v="135"`,
				SecCHUAMobile:   "?0",
				SecCHUAPlatform: `"Windows"`,
				AcceptLanguage:  "en-US,en;q=0.9",
			},
			{
				UserAgent:       "Mozilla/5.0 (Macintosh; Intel Mac OS X 10_15_7) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/135.0.0.0 Safari/537.36",
				SecCHUA:         `"Google Chrome";v="135", "Not-A.Brand";v="8", "Chromium";v="135"`,
				SecCHUAMobile:   "?0",
				SecCHUAPlatform: `"macOS"`,
				AcceptLanguage:  "en-US,en;q=0.9",
			},
		},
	}
}

// NewStaticWith is for tests and callers that pin the profile set.
func NewStaticWith(list []Profile, r *mrand.Rand) *Static {
	return &Static{list: list, r: r}
}

// Random returns the zero Profile when the list is empty.
func (s *Static) Random() Profile {
	if len(s.list) == 0 {
		return Profile{}
	}
	if s.r != nil {
		return s.list[s.r.IntN(len(s.list))]
	}
	return s.list[mrand.IntN(len(s.list))]
}
