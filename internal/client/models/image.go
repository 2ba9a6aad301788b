package models

import (
	"fmt"

	"github.com/dmitrijs2005/cardkeeper/internal/common"
)

// ImageLocation names one of the three card images.
type ImageLocation int

const (
	ImageFront ImageLocation = iota
	ImageBack
	ImageIcon
)

// ImageLocations lists every location in storage order.
var ImageLocations = []ImageLocation{ImageFront, ImageBack, ImageIcon}

func (l ImageLocation) String() string {
	switch l {
	case ImageFront:
		return "front"
	case ImageBack:
		return "back"
	case ImageIcon:
		return "icon"
	}
	return fmt.Sprintf("ImageLocation(%d)", int(l))
}

func ParseImageLocation(s string) (ImageLocation, error) {
	for _, l := range ImageLocations {
		if l.String() == s {
			return l, nil
		}
	}
	return 0, fmt.Errorf("%w: image location %q", common.ErrParse, s)
}
