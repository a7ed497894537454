package domain

import "fmt"

// Rating is the user's recall quality for a reviewed card.
// Ratings below Good count as failures and reset the review schedule.
type Rating int

const (
	Again   Rating = 1
	Hard    Rating = 2
	Good    Rating = 3
	Easy    Rating = 4
	Perfect Rating = 5
)

var ratingNames = map[Rating]string{
	Again:   "Again",
	Hard:    "Hard",
	Good:    "Good",
	Easy:    "Easy",
	Perfect: "Perfect",
}

// IsValid reports whether r is in the accepted 1-5 range.
func (r Rating) IsValid() bool {
	return r >= Again && r <= Perfect
}

// Failed reports whether r counts as a failed recall.
func (r Rating) Failed() bool {
	return r < Good
}

func (r Rating) String() string {
	if name, ok := ratingNames[r]; ok {
		return name
	}
	return fmt.Sprintf("Rating(%d)", int(r))
}
