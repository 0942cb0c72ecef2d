// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package types

import "time"

// NewsItem is one candidate news story offered to the selection stage.
type NewsItem struct {
	// Title is the story headline.
	Title string `json:"title" yaml:"title"`

	// Source identifies the outlet or feed the item came from.
	Source string `json:"source" yaml:"source"`

	// Summary is a short description of the story, possibly empty.
	Summary string `json:"summary,omitempty" yaml:"summary,omitempty"`

	// Link is the story URL.
	Link string `json:"link" yaml:"link"`

	// Published is the story's publication time. Zero when the feed omits it.
	Published time.Time `json:"published" yaml:"published"`
}
