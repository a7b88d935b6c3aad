package engine

import (
	"strings"

	"github.com/google/uuid"
)

const (
	groupIDPrefix  = "grp"
	mediaIDPrefix  = "med"
	folderIDPrefix = "fld"
)

// newRandomID returns prefix-<uuid without dashes>.
func newRandomID(prefix string) string {
	return prefix + "-" + strings.ReplaceAll(uuid.NewString(), "-", "")
}
