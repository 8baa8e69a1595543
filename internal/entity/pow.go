package entity

import "time"

// Challenge is what the gate embeds in the protected page.
type Challenge struct {
	Salt       string        `json:"salt"`
	Difficulty int           `json:"difficulty"`
	Timeout    time.Duration `json:"timeout"`
}

type Solution struct {
	Attempt string `json:"attempt"`
	Hash    string `json:"hash"`
}

type Clearance struct {
	Token   string `json:"token"`
	Checked bool   `json:"checked"`
}
