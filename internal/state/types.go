package state

import (
	"slices"
	"time"

	"github.com/spaceai/spaceai/internal/payload"
)

type Resolution string

const (
	Resolution1K Resolution = "1K"
	Resolution2K Resolution = "2K"
	Resolution4K Resolution = "4K"
)

func ValidResolutions() []Resolution {
	return []Resolution{Resolution1K, Resolution2K, Resolution4K}
}

func (r Resolution) IsValid() bool {
	return slices.Contains(ValidResolutions(), r)
}

func (r Resolution) String() string {
	return string(r)
}

type AspectRatio string

const (
	AspectSquare    AspectRatio = "1:1"
	AspectLandscape AspectRatio = "16:9"
	AspectPortrait  AspectRatio = "9:16"
	AspectPhoto     AspectRatio = "4:3"
	AspectTall      AspectRatio = "3:4"
)

func ValidAspectRatios() []AspectRatio {
	return []AspectRatio{AspectSquare, AspectLandscape, AspectPortrait, AspectPhoto, AspectTall}
}

func (a AspectRatio) IsValid() bool {
	return slices.Contains(ValidAspectRatios(), a)
}

func (a AspectRatio) String() string {
	return string(a)
}

// Image is one entry of the session history. Immutable once created.
type Image struct {
	ID         string
	Payload    payload.Payload
	Prompt     string
	Timestamp  time.Time
	Resolution Resolution
}
