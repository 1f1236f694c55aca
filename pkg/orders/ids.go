package orders

import (
	"encoding/binary"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/google/uuid"
)

const externalIDSuffixLen = 9

// newExternalOrderID returns ORD-<unix ms>-<9 uppercase base36 chars>.
func newExternalOrderID(now time.Time) string {
	u := uuid.New()
	suffix := strings.ToUpper(strconv.FormatUint(binary.BigEndian.Uint64(u[:8]), 36))
	if len(suffix) < externalIDSuffixLen {
		suffix = strings.Repeat("0", externalIDSuffixLen-len(suffix)) + suffix
	}
	return fmt.Sprintf("ORD-%d-%s", now.UnixMilli(), suffix[:externalIDSuffixLen])
}
