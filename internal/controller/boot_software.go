package controller

import (
	"context"
	"fmt"

	"github.com/openlumen/rdm-gateway/internal/rdm"
)

// readBootSoftware runs the boot-software chain: version label first,
// numeric version second. Renders "<label> (<version>)" when the label
// is non-empty, the bare version when only the number came back, and
// the bare label when the number fetch failed softly.
func (c *Controller) readBootSoftware(ctx context.Context, universe uint, uid rdm.UID, params Params) (*Section, error) {
	label := ""

	payload, status, err := c.get(universe, uid, rdm.PIDBootSoftwareVersionName, nil)
	if err != nil {
		return nil, err
	}
	if status.Type == rdm.ResponseTransportError {
		return nil, statusFailure(status)
	}
	if status.Succeeded() {
		label, _ = payload.(string)
	}

	payload, status, err = c.get(universe, uid, rdm.PIDBootSoftwareVersionID, nil)
	if err != nil {
		return nil, err
	}
	if status.Type == rdm.ResponseTransportError {
		return nil, statusFailure(status)
	}

	rendered := label
	if status.Succeeded() {
		version, ok := payload.(uint32)
		if ok {
			if label != "" {
				rendered = fmt.Sprintf("%s (%d)", label, version)
			} else {
				rendered = fmt.Sprintf("%d", version)
			}
		}
	}

	section := &Section{}
	section.AddString("Boot Software", rendered)
	return section, nil
}
